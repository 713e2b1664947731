package monitor

import "actiondriver/internal/model"

// EnvelopeKind discriminates the frames a child action process streams back
// over the monitor connection.
type EnvelopeKind string

const (
	// KindOutput carries one line of interleaved stdout/stderr.
	KindOutput EnvelopeKind = "output"
	// KindOutcome carries one completed Outcome (one per test method for a
	// suite action).
	KindOutcome EnvelopeKind = "outcome"
	// KindDone signals a clean end of stream; no more frames follow.
	KindDone EnvelopeKind = "done"
)

// Envelope is the JSON wire frame sent by the child action process to its
// assigned monitor port. The core does not prescribe a wire format beyond
// this framing (spec.md §4.6); this is this repo's concrete choice.
type Envelope struct {
	Kind EnvelopeKind `json:"kind"`

	// Set when Kind == KindOutput.
	OutcomeName string `json:"outcome_name,omitempty"`
	Line        string `json:"line,omitempty"`

	// Set when Kind == KindOutcome.
	Name        string       `json:"name,omitempty"`
	Result      model.Result `json:"result,omitempty"`
	OutputLines []string     `json:"output_lines,omitempty"`
	Matters     bool         `json:"matters,omitempty"`
}

// Outcome converts an outcome-kind envelope into a model.Outcome.
func (e Envelope) Outcome() model.Outcome {
	return model.Outcome{
		Name:        e.Name,
		Result:      e.Result,
		OutputLines: e.OutputLines,
		Matters:     e.Matters,
	}
}
