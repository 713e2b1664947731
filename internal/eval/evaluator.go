// Package eval implements the expectation evaluator: a pure function from
// (outcome, expectation) to a ResultValue.
package eval

import "actiondriver/internal/model"

// Evaluate classifies outcome against expectation.
//
//   - !outcome.Matters()  -> IGNORE
//   - expectation.Matches -> OK
//   - otherwise           -> FAIL
func Evaluate(outcome model.Outcome, expectation model.Expectation) model.ResultValue {
	if !outcome.Matters {
		return model.ResultValueIgnore
	}
	if expectation.Matches(outcome) {
		return model.ResultValueOK
	}
	return model.ResultValueFail
}
