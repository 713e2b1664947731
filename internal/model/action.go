// Package model defines the core data types shared across the driver:
// Actions, Outcomes, Expectations and the small ResultValue enum the
// expectation evaluator produces.
package model

// Action is a unit of test work discovered from source files or class
// names. Actions are immutable once discovered and uniquely identified by
// Name.
type Action struct {
	Name          string // unique identifier, e.g. "pkg/foo" or "pkg/foo#TestBar"
	QualifiedName string // fully qualified class/package name
	ActionClass   string // discovered action "kind" (test, benchmark, ...)
	SourcePath    string // empty when the action has no backing source file
	ResourcePath  string // empty when the action has no resource directory
	RunnerSpec    string // hint for which runner variant builds/runs this action
}

// HasSource reports whether the action was discovered from a source file,
// as opposed to a bare class name with no backing file.
func (a Action) HasSource() bool {
	return a.SourcePath != ""
}
