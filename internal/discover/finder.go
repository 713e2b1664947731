// Package discover implements the filesystem-backed Action Finder
// (SPEC_FULL.md §4.12): it turns the buildAndRun(files, classNames)
// parameters from spec.md §4.1 into concrete Actions.
//
// Grounded on the general discovery/registration scanning pattern used
// across the teacher's setup code: walk a root, filter by suffix, register
// one entry per match.
package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"actiondriver/internal/model"
)

// Finder discovers Actions from source files and bare class names.
type Finder struct {
	// SourceSuffix is the file suffix identifying an action's source
	// ("_test.go" by default).
	SourceSuffix string
}

// New builds a Finder with the default Go test-file suffix.
func New() *Finder {
	return &Finder{SourceSuffix: "_test.go"}
}

// FromFiles walks each root in files and returns one Action per package
// directory holding at least one matching source file, named after the
// slash-separated path of that directory. The Action's SourcePath is the
// first matching file found in the directory.
func (f *Finder) FromFiles(files []string) ([]model.Action, error) {
	suffix := f.SourceSuffix
	if suffix == "" {
		suffix = "_test.go"
	}

	var actions []model.Action
	seen := make(map[string]bool)
	add := func(root, path string) {
		a := actionFromPath(root, path)
		if seen[a.Name] {
			return
		}
		seen[a.Name] = true
		actions = append(actions, a)
	}
	for _, root := range files {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("discover: stat %s: %w", root, err)
		}

		if !info.IsDir() {
			if strings.HasSuffix(root, suffix) {
				add(root, root)
			}
			continue
		}

		err = filepath.Walk(root, func(path string, walkInfo os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if walkInfo.IsDir() || !strings.HasSuffix(path, suffix) {
				return nil
			}
			add(root, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("discover: walk %s: %w", root, err)
		}
	}
	return actions, nil
}

// FromClassNames returns one Action per bare class name, with no backing
// source or resource path (spec.md §4.1 step 2: "unsupported-by-source"
// actions still flow through the whole pipeline, they just cannot be
// built).
func (f *Finder) FromClassNames(classNames []string) []model.Action {
	actions := make([]model.Action, 0, len(classNames))
	for _, name := range classNames {
		actions = append(actions, model.Action{
			Name:          name,
			QualifiedName: name,
			ActionClass:   "class",
		})
	}
	return actions
}

func actionFromPath(root, path string) model.Action {
	dir := filepath.Dir(path)
	name := filepath.ToSlash(dir)
	return model.Action{
		Name:          name,
		QualifiedName: name,
		ActionClass:   "package",
		SourcePath:    path,
	}
}
