package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"actiondriver/internal/discover"
	"actiondriver/internal/expectations"
	"actiondriver/internal/ledger"
	"actiondriver/internal/mode"
	"actiondriver/internal/model"
	"actiondriver/internal/report"
)

// fakeCommand/fakeMode stand in for the external Mode contract the same way
// the runner package's own fakes do: a fast, predictable Command that never
// touches a real process.
type fakeCommand struct {
	lines []string
	err   error
}

func (c *fakeCommand) ExecuteLater(ctx context.Context) mode.Future { return &fakeFuture{c} }
func (c *fakeCommand) Destroy()                                     {}

type fakeFuture struct{ cmd *fakeCommand }

func (f *fakeFuture) Wait() ([]string, error) { return f.cmd.lines, f.cmd.err }

type fakeMode struct {
	buildFailFor map[string]bool
	shutdownErr  error
}

func (m *fakeMode) Prepare(ctx context.Context) error { return nil }

func (m *fakeMode) BuildAndInstall(ctx context.Context, action model.Action) (*model.Outcome, error) {
	if m.buildFailFor[action.Name] {
		outcome := model.NewOutcome(action.Name, model.ResultCompileFailed, "build broke")
		return &outcome, nil
	}
	return nil, nil
}

func (m *fakeMode) CreateActionCommand(ctx context.Context, action model.Action, monitorPort int) (mode.Command, error) {
	return &fakeCommand{lines: []string{"ok"}}, nil
}

func (m *fakeMode) Cleanup(ctx context.Context, action model.Action) error { return nil }
func (m *fakeMode) Shutdown(ctx context.Context) error                    { return m.shutdownErr }
func (m *fakeMode) GetClasspath() []string                                { return nil }

func newTestDriver(fm *fakeMode, store *expectations.Store) *Driver {
	return New(Config{
		NumBuilderThreads:    2,
		NumRunnerThreads:     2,
		ReadyQueueSize:       4,
		DefaultMonitorPort:   0,
		MonitorAcceptTimeout: 20 * time.Millisecond,
		SmallTimeout:         200 * time.Millisecond,
		LargeTimeout:         time.Second,
	}, Deps{
		Mode:        fm,
		Expectation: store,
		Finder:      discover.New(),
	})
}

func TestDriver_RunsClassNamesAndReportsSuccess(t *testing.T) {
	fm := &fakeMode{}
	store := expectations.New()
	d := newTestDriver(fm, store)

	summary, err := d.BuildAndRun(context.Background(), nil, []string{"pkg.A", "pkg.B"})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Successes)
	assert.Equal(t, 0, summary.Failures)
	assert.Empty(t, summary.DriverErrors)
}

func TestDriver_SecondCallFailsWithErrAlreadyUsed(t *testing.T) {
	fm := &fakeMode{}
	d := newTestDriver(fm, expectations.New())

	_, err := d.BuildAndRun(context.Background(), nil, []string{"pkg.A"})
	require.NoError(t, err)

	_, err = d.BuildAndRun(context.Background(), nil, []string{"pkg.A"})
	assert.ErrorIs(t, err, ErrAlreadyUsed)
}

func TestDriver_UnsupportedExpectationSkipsBuildAndRun(t *testing.T) {
	fm := &fakeMode{}
	store := expectations.New()
	store.Set(model.Expectation{Name: "pkg.Skip", Result: model.ResultUnsupported})
	d := newTestDriver(fm, store)

	summary, err := d.BuildAndRun(context.Background(), nil, []string{"pkg.Skip"})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Successes)
	assert.Equal(t, 0, summary.Failures)
	assert.Equal(t, 1, summary.Skipped)
}

func TestDriver_BuildFailurePropagatesAsCompileFailed(t *testing.T) {
	fm := &fakeMode{buildFailFor: map[string]bool{"pkg.Broken": true}}
	d := newTestDriver(fm, expectations.New())

	summary, err := d.BuildAndRun(context.Background(), nil, []string{"pkg.Broken"})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failures)
	assert.Equal(t, []string{"pkg.Broken"}, summary.FailureNames)
}

func TestDriver_NoActionsReturnsEmptySummary(t *testing.T) {
	fm := &fakeMode{}
	d := newTestDriver(fm, expectations.New())

	summary, err := d.BuildAndRun(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, &report.Summary{}, summary)
}

func TestDriver_ShutdownErrorRecordedAsLedgerFailure(t *testing.T) {
	fm := &fakeMode{shutdownErr: errors.New("disk full")}
	d := newTestDriver(fm, expectations.New())

	summary, err := d.BuildAndRun(context.Background(), nil, []string{"pkg.A"})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Successes)
	assert.Equal(t, 1, summary.Failures)
	assert.Equal(t, []string{"disk full"}, summary.DriverErrors)
}

func TestDriver_RecordDriverErrorCountsAsLedgerFailure(t *testing.T) {
	d := newTestDriver(&fakeMode{}, expectations.New())
	l := ledger.New()

	driverErrors := d.recordDriverError(l, nil, "starvation", "expected 3 actions but found fewer")

	assert.Equal(t, []string{"expected 3 actions but found fewer"}, driverErrors)
	outcome, ok := l.Get(driverOutcomeName + "#starvation")
	require.True(t, ok)
	assert.Equal(t, model.ResultError, outcome.Result)
	_, failures, _ := l.Counts()
	assert.Equal(t, 1, failures)
}

func TestDriver_WritesXMLReportWhenWired(t *testing.T) {
	fm := &fakeMode{}
	var buf bytes.Buffer
	d := New(Config{
		NumBuilderThreads:    1,
		NumRunnerThreads:     1,
		ReadyQueueSize:       2,
		MonitorAcceptTimeout: 20 * time.Millisecond,
		SmallTimeout:         200 * time.Millisecond,
		LargeTimeout:         time.Second,
	}, Deps{
		Mode:        fm,
		Expectation: expectations.New(),
		Finder:      discover.New(),
		ReportOut:   &buf,
	})

	_, err := d.BuildAndRun(context.Background(), nil, []string{"pkg.A"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `name="pkg.A"`)
}
