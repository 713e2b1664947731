// Package expectations implements the YAML-backed ExpectationStore
// (SPEC_FULL.md §4.11): the concrete implementation of the "external"
// expectations contract spec.md leaves unopinionated.
//
// Grounded on the teacher's internal/config/config.go YAML-unmarshal-with-
// defaults idiom.
package expectations

import (
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"actiondriver/internal/model"
)

// entry is the on-disk shape of one expectations.yaml record.
type entry struct {
	Name   string       `yaml:"name"`
	Result model.Result `yaml:"result"`
	Tags   []string     `yaml:"tags"`
}

// file is the top-level expectations.yaml document.
type file struct {
	Expectations []entry `yaml:"expectations"`
}

// Store resolves an Expectation for an action or outcome name.
type Store struct {
	mu     sync.RWMutex
	byName map[string]model.Expectation
}

// New builds an empty Store.
func New() *Store {
	return &Store{byName: make(map[string]model.Expectation)}
}

// Load reads and parses an expectations YAML file at path and returns a new
// Store holding its entries.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	s := New()
	for _, e := range f.Expectations {
		tags := make(map[string]struct{}, len(e.Tags))
		for _, t := range e.Tags {
			tags[t] = struct{}{}
		}
		result := e.Result
		if result == "" {
			result = model.ResultSuccess
		}
		s.byName[e.Name] = model.Expectation{Name: e.Name, Result: result, Tags: tags}
	}
	return s, nil
}

// Get resolves the Expectation for name: an exact match first, then a
// suite-level prefix match for hierarchical names ("action#method" falls
// back to "action"), then the implicit default (SUCCESS, no tags).
func (s *Store) Get(name string) model.Expectation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.byName[name]; ok {
		return e
	}
	if idx := strings.IndexByte(name, '#'); idx >= 0 {
		if e, ok := s.byName[name[:idx]]; ok {
			return e
		}
	}
	return model.DefaultExpectation(name)
}

// Set installs or replaces the Expectation for name, mainly used by tests
// and by callers building a Store programmatically instead of from YAML.
func (s *Store) Set(e model.Expectation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byName[e.Name] = e
}

// Lookup adapts Get to the ledger.ExpectationLookup / runner.Deps.Expectations
// function signature.
func (s *Store) Lookup(name string) model.Expectation {
	return s.Get(name)
}
