// Package orchestrator implements the Driver Orchestrator (spec.md §4.1):
// it owns the Builder Worker Pool, the Runner Worker Pool, the bounded
// ready queue connecting them, and assembles the final RunSummary.
//
// Grounded on the teacher's scheduler dual-path coordination shape
// (internal/apiserver/scheduler/scheduler.go): one coordinator owning
// several worker pools, joined through channels and a sync.WaitGroup.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"actiondriver/internal/builder"
	"actiondriver/internal/classify"
	"actiondriver/internal/discover"
	"actiondriver/internal/eval"
	"actiondriver/internal/ledger"
	"actiondriver/internal/logging"
	"actiondriver/internal/metrics"
	"actiondriver/internal/mode"
	"actiondriver/internal/model"
	"actiondriver/internal/report"
	"actiondriver/internal/runner"
)

// ErrAlreadyUsed is returned by BuildAndRun on a Driver that has already
// run once (spec.md §3: "the Driver is single-use").
var ErrAlreadyUsed = errors.New("orchestrator: driver already used")

// ExpectationStore resolves the Expectation for an action or outcome name.
type ExpectationStore interface {
	Get(name string) model.Expectation
}

// Config holds the constructor parameters spec.md §6 enumerates.
type Config struct {
	NumBuilderThreads    int
	NumRunnerThreads     int
	ReadyQueueSize       int
	FirstMonitorPort     int
	DefaultMonitorPort   int
	MonitorAcceptTimeout time.Duration
	SmallTimeout         time.Duration
	LargeTimeout         time.Duration
}

// Deps are the Driver's external collaborators.
type Deps struct {
	Mode        mode.Mode
	Expectation ExpectationStore
	Finder      *discover.Finder
	Classpath   *report.ClassFileIndex
	ReportOut   io.Writer // if non-nil, the XML report is written here
	Logger      *logging.Logger
	Metrics     *metrics.Metrics
}

// Driver orchestrates one build→run pipeline invocation. A Driver is
// single-use: a second call to BuildAndRun fails with ErrAlreadyUsed.
type Driver struct {
	cfg  Config
	deps Deps
	used atomic.Bool
}

// New builds a Driver.
func New(cfg Config, deps Deps) *Driver {
	return &Driver{cfg: cfg, deps: deps}
}

// BuildAndRun discovers Actions from files and classNames, builds and runs
// each one under supervision, and returns the final RunSummary (spec.md
// §4.1). It fails with ErrAlreadyUsed if called more than once.
func (d *Driver) BuildAndRun(ctx context.Context, files, classNames []string) (*report.Summary, error) {
	if !d.used.CompareAndSwap(false, true) {
		return nil, ErrAlreadyUsed
	}

	l := ledger.New()
	var driverErrors []string

	actions, err := d.discoverActions(files, classNames)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: discover: %w", err)
	}
	if len(actions) == 0 {
		return &report.Summary{}, nil
	}

	if err := d.deps.Mode.Prepare(ctx); err != nil {
		return nil, fmt.Errorf("orchestrator: mode prepare: %w", err)
	}

	toBuild, totalToRun := d.classifyActions(l, actions)

	bPool := builder.New(builder.Config{
		NumBuilderThreads: d.cfg.NumBuilderThreads,
		ReadyQueueSize:    d.cfg.ReadyQueueSize,
	}, builder.Deps{
		Mode:    d.deps.Mode,
		Ledger:  l,
		Logger:  d.deps.Logger,
		Metrics: d.deps.Metrics,
	})
	ready := bPool.Run(ctx, toBuild)

	rPool := runner.New(runner.Config{
		NumRunnerThreads:     d.cfg.NumRunnerThreads,
		FirstMonitorPort:     d.cfg.FirstMonitorPort,
		DefaultMonitorPort:   d.cfg.DefaultMonitorPort,
		MonitorAcceptTimeout: d.cfg.MonitorAcceptTimeout,
		SmallTimeout:         d.cfg.SmallTimeout,
		LargeTimeout:         d.cfg.LargeTimeout,
	}, runner.Deps{
		Mode:         d.deps.Mode,
		Ledger:       l,
		Expectations: d.deps.Expectation.Get,
		Logger:       d.deps.Logger,
		Metrics:      d.deps.Metrics,
	})
	rPool.Run(ctx, ready, len(toBuild))

	if rPool.Starved() {
		msg := fmt.Sprintf("expected %d actions but found fewer", totalToRun)
		driverErrors = d.recordDriverError(l, driverErrors, "starvation", msg)
	}

	if err := d.deps.Mode.Shutdown(ctx); err != nil {
		driverErrors = d.recordDriverError(l, driverErrors, "shutdown", err.Error())
	}

	return d.summarize(l, driverErrors), nil
}

// driverOutcomeName is the hierarchical name under which driver-level
// failures (starvation, mode shutdown errors) are recorded, mirroring
// vogar's own "vogar.Vogar" pseudo-action. key distinguishes the failure
// site so two driver errors in one run don't collide on the same ledger
// entry.
const driverOutcomeName = "actiondriver.Driver"

// recordDriverError both appends msg to the printable driver error list and
// records it in the ledger as a failing ERROR outcome (spec.md §8 scenario
// 6: "Ledger contains driver ERROR"), so it affects the run's failure count
// the same way a real action failure would.
func (d *Driver) recordDriverError(l *ledger.Ledger, driverErrors []string, key, msg string) []string {
	if d.deps.Logger != nil {
		d.deps.Logger.Error(msg)
	}
	outcome := model.NewOutcome(driverOutcomeName+"#"+key, model.ResultError, msg)
	l.Record(outcome, model.ResultValueFail)
	return append(driverErrors, msg)
}

// discoverActions delegates to the Action Finder (spec.md §4.1 step 2).
func (d *Driver) discoverActions(files, classNames []string) ([]model.Action, error) {
	var actions []model.Action
	if len(files) > 0 {
		fromFiles, err := d.deps.Finder.FromFiles(files)
		if err != nil {
			return nil, err
		}
		actions = append(actions, fromFiles...)
	}
	actions = append(actions, d.deps.Finder.FromClassNames(classNames)...)
	return actions, nil
}

// classifyActions partitions actions into "build this" vs. "already
// resolved" (spec.md §4.1 step 5): an UNSUPPORTED expectation is recorded
// immediately, without reaching the queue at all.
func (d *Driver) classifyActions(l *ledger.Ledger, actions []model.Action) (toBuild []model.Action, totalToRun int) {
	for _, action := range actions {
		expectation := d.deps.Expectation.Get(action.Name)
		if expectation.Result == model.ResultUnsupported {
			outcome := model.NewOutcome(action.Name, model.ResultUnsupported, "Unsupported according to expectations file")
			classify.RecordEarly(l, outcome, expectation)
			continue
		}
		toBuild = append(toBuild, action)
		totalToRun++
	}
	return toBuild, totalToRun
}

// summarize builds the final RunSummary and, if a report writer and
// classpath index are wired, emits the XML report and classpath hints
// (spec.md §4.1 steps 10, 12).
func (d *Driver) summarize(l *ledger.Ledger, driverErrors []string) *report.Summary {
	successes, failures, skipped := l.Counts()
	summary := &report.Summary{
		Successes:    successes,
		Failures:     failures,
		Skipped:      skipped,
		FailureNames: l.FailureNames(),
		SkippedNames: l.SkippedNames(),
		DriverErrors: driverErrors,
	}

	outcomes := l.Outcomes()
	evaluations := make(map[string]model.ResultValue, len(outcomes))
	for _, o := range outcomes {
		evaluations[o.Name] = eval.Evaluate(o, d.deps.Expectation.Get(o.Name))
	}

	if d.deps.ReportOut != nil {
		if err := report.WriteXML(d.deps.ReportOut, outcomes, evaluations); err != nil && d.deps.Logger != nil {
			d.deps.Logger.Error("report emit failed", "error", err)
		}
	}

	if d.deps.Classpath != nil {
		classpath := d.deps.Mode.GetClasspath()
		var failingOutput []string
		for _, name := range summary.FailureNames {
			if o, ok := l.Get(name); ok {
				failingOutput = append(failingOutput, o.OutputLines...)
			}
		}
		summary.ClasspathSuggestions = d.deps.Classpath.Suggest(failingOutput, classpath)
	}

	return summary
}
