// Package classify holds the one piece of policy shared by the Driver
// Orchestrator and the Runner Worker: how an "early" outcome — one that
// arrives before or instead of the normal monitor-reported path — gets
// counted into the ledger.
//
// Grounded on vogar's Driver.addEarlyResult: an UNSUPPORTED outcome always
// counts as a skip, bypassing the expectation evaluator entirely; anything
// else goes through the evaluator like a normally-reported outcome.
package classify

import (
	"actiondriver/internal/eval"
	"actiondriver/internal/ledger"
	"actiondriver/internal/model"
)

// RecordEarly records outcome into l, classifying it as a skip directly
// when the result is UNSUPPORTED, or by evaluating it against expectation
// otherwise.
func RecordEarly(l *ledger.Ledger, outcome model.Outcome, expectation model.Expectation) {
	if outcome.Result == model.ResultUnsupported {
		l.Record(outcome, model.ResultValueIgnore)
		return
	}
	l.Record(outcome, eval.Evaluate(outcome, expectation))
}
