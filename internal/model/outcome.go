package model

// Outcome is a single named verdict produced by building or running an
// action. One action may produce many outcomes when it is itself a suite
// of tests: names are hierarchical ("action.name" or "action.name#method").
type Outcome struct {
	Name        string
	Result      Result
	OutputLines []string
	// Matters is false for informational outcomes that should never cause
	// a FAIL classification (IGNORE only).
	Matters bool
}

// NewOutcome builds an Outcome that counts toward pass/fail (Matters=true).
func NewOutcome(name string, result Result, outputLines ...string) Outcome {
	return Outcome{Name: name, Result: result, OutputLines: outputLines, Matters: true}
}

// NewInformationalOutcome builds an Outcome that the evaluator always
// classifies as IGNORE, regardless of expectations.
func NewInformationalOutcome(name string, result Result, outputLines ...string) Outcome {
	return Outcome{Name: name, Result: result, OutputLines: outputLines, Matters: false}
}
