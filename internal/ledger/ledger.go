// Package ledger holds the thread-safe outcome ledger: the insertion-ordered
// mapping from action name to recorded outcome, plus the aggregate pass/
// fail/skip counters the final report is built from.
//
// Every counted mutation goes through Record, which is the single critical
// section that keeps the Ledger's counters and the caller-supplied
// classification in lockstep; Stash stores an outcome without counting it.
// This mirrors the single-mutex discipline the scheduler and
// event gateway use to guard their own shared maps.
package ledger

import (
	"sort"
	"strings"
	"sync"

	"actiondriver/internal/model"
)

// Evaluator classifies an outcome against its expectation. Supplied by the
// caller so the Ledger stays decoupled from the expectation store.
type Evaluator func(model.Outcome, model.Expectation) model.ResultValue

// ExpectationLookup resolves the expectation for an outcome name.
type ExpectationLookup func(name string) model.Expectation

// Ledger is the shared outcome store. Safe for concurrent use.
type Ledger struct {
	mu       sync.Mutex
	outcomes map[string]model.Outcome
	order    []string

	successes int
	failures  int
	skipped   int

	failureNames []string
	skippedNames []string
}

// New creates an empty Ledger.
func New() *Ledger {
	return &Ledger{outcomes: make(map[string]model.Outcome)}
}

// Has reports whether an outcome has already been recorded for name.
func (l *Ledger) Has(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.outcomes[name]
	return ok
}

// HasAnyWithPrefix reports whether an outcome has been recorded either under
// name itself or under a per-method name derived from it (e.g. "D#m1" derives
// from action "D", per spec.md §3's suite naming convention). Used to decide
// whether a suite action that only reports per-method outcomes still needs a
// synthetic terminal outcome recorded under its bare name.
func (l *Ledger) HasAnyWithPrefix(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.outcomes[name]; ok {
		return true
	}
	prefix := name + "#"
	for _, n := range l.order {
		if strings.HasPrefix(n, prefix) {
			return true
		}
	}
	return false
}

// Get returns the recorded outcome for name, if any.
func (l *Ledger) Get(name string) (model.Outcome, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	o, ok := l.outcomes[name]
	return o, ok
}

// Stash stores outcome without touching the aggregate counters. Used by
// the Builder Worker Pool when mode.BuildAndInstall returns an early
// failure Outcome (spec.md §4.2 step 1): the action still flows through
// the ready queue so the runner stage sees exactly totalToRun items, and
// it is the runner — not the builder — that ultimately counts the result
// via classify.RecordEarly.
func (l *Ledger) Stash(outcome model.Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.outcomes[outcome.Name]; !exists {
		l.order = append(l.order, outcome.Name)
	}
	l.outcomes[outcome.Name] = outcome
}

// Record stores outcome and updates the aggregate counters according to
// resultValue. Each action contributes at most one terminal outcome for
// counting purposes, but per-method outcomes from a suite action each count
// independently — the caller controls that by calling Record once per
// outcome it wants counted.
func (l *Ledger) Record(outcome model.Outcome, resultValue model.ResultValue) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.outcomes[outcome.Name]; !exists {
		l.order = append(l.order, outcome.Name)
	}
	l.outcomes[outcome.Name] = outcome

	switch resultValue {
	case model.ResultValueOK:
		l.successes++
	case model.ResultValueFail:
		l.failures++
		l.failureNames = append(l.failureNames, outcome.Name)
	case model.ResultValueIgnore:
		l.skipped++
		l.skippedNames = append(l.skippedNames, outcome.Name)
	}
}

// Counts returns the current successes/failures/skipped totals.
func (l *Ledger) Counts() (successes, failures, skipped int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.successes, l.failures, l.skipped
}

// FailureNames returns the failing action names, sorted ascending.
func (l *Ledger) FailureNames() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := append([]string(nil), l.failureNames...)
	sort.Strings(names)
	return names
}

// SkippedNames returns the skipped action names, sorted ascending.
func (l *Ledger) SkippedNames() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := append([]string(nil), l.skippedNames...)
	sort.Strings(names)
	return names
}

// Outcomes returns every recorded outcome in insertion order.
func (l *Ledger) Outcomes() []model.Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.Outcome, 0, len(l.order))
	for _, name := range l.order {
		out = append(out, l.outcomes[name])
	}
	return out
}

// Len returns the number of distinct recorded outcomes.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.outcomes)
}
