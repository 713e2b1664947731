package ledger

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"actiondriver/internal/model"
)

func TestLedger_RecordAndCounts(t *testing.T) {
	l := New()

	l.Record(model.NewOutcome("pkg.A", model.ResultSuccess), model.ResultValueOK)
	l.Record(model.NewOutcome("pkg.B", model.ResultExecFailed), model.ResultValueFail)
	l.Record(model.NewOutcome("pkg.C", model.ResultUnsupported), model.ResultValueIgnore)

	successes, failures, skipped := l.Counts()
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, failures)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, []string{"pkg.B"}, l.FailureNames())
	assert.Equal(t, []string{"pkg.C"}, l.SkippedNames())
	assert.True(t, l.Has("pkg.A"))
	assert.False(t, l.Has("pkg.Z"))
}

func TestLedger_NamesSortedAscending(t *testing.T) {
	l := New()
	l.Record(model.NewOutcome("z.Test", model.ResultExecFailed), model.ResultValueFail)
	l.Record(model.NewOutcome("a.Test", model.ResultExecFailed), model.ResultValueFail)
	l.Record(model.NewOutcome("m.Test", model.ResultExecFailed), model.ResultValueFail)

	assert.Equal(t, []string{"a.Test", "m.Test", "z.Test"}, l.FailureNames())
}

func TestLedger_InsertionOrderPreserved(t *testing.T) {
	l := New()
	names := []string{"c.Test", "a.Test", "b.Test"}
	for _, n := range names {
		l.Record(model.NewOutcome(n, model.ResultSuccess), model.ResultValueOK)
	}

	var got []string
	for _, o := range l.Outcomes() {
		got = append(got, o.Name)
	}
	assert.Equal(t, names, got)
}

func TestLedger_ConcurrentRecord(t *testing.T) {
	l := New()
	var wg sync.WaitGroup
	const n = 200
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Record(model.NewOutcome(string(rune('a'+i%26))+"action", model.ResultSuccess), model.ResultValueOK)
		}(i)
	}
	wg.Wait()

	successes, failures, skipped := l.Counts()
	assert.Equal(t, n, successes)
	assert.Equal(t, 0, failures)
	assert.Equal(t, 0, skipped)
}
