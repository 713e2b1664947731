package model

// Expectation is the pre-declared expected Outcome for an action name, plus
// tags that control which timeout class applies.
type Expectation struct {
	Name   string
	Result Result
	Tags   map[string]struct{}
}

// HasTag reports whether tag is present on the expectation.
func (e Expectation) HasTag(tag string) bool {
	_, ok := e.Tags[tag]
	return ok
}

// Matches compares the expected result against an outcome's actual result.
func (e Expectation) Matches(outcome Outcome) bool {
	return e.Result == outcome.Result
}

// DefaultExpectation is used when no expectation entry exists for a name:
// a bare SUCCESS with no tags.
func DefaultExpectation(name string) Expectation {
	return Expectation{Name: name, Result: ResultSuccess}
}
