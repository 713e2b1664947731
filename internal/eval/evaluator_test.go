package eval

import (
	"testing"

	"actiondriver/internal/model"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name        string
		outcome     model.Outcome
		expectation model.Expectation
		want        model.ResultValue
	}{
		{
			name:        "matching success is OK",
			outcome:     model.NewOutcome("pkg.A", model.ResultSuccess),
			expectation: model.Expectation{Result: model.ResultSuccess},
			want:        model.ResultValueOK,
		},
		{
			name:        "mismatched result is FAIL",
			outcome:     model.NewOutcome("pkg.B", model.ResultExecFailed),
			expectation: model.Expectation{Result: model.ResultSuccess},
			want:        model.ResultValueFail,
		},
		{
			name:        "informational outcome is always IGNORE",
			outcome:     model.NewInformationalOutcome("pkg.C#progress", model.ResultExecFailed),
			expectation: model.Expectation{Result: model.ResultSuccess},
			want:        model.ResultValueIgnore,
		},
		{
			name:        "matching timeout expectation is OK",
			outcome:     model.NewOutcome("pkg.D", model.ResultExecTimeout),
			expectation: model.Expectation{Result: model.ResultExecTimeout},
			want:        model.ResultValueOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.outcome, tt.expectation)
			if got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}
