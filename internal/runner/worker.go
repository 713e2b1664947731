// Package runner implements the Runner Worker Pool described in spec.md
// §4.4: a fixed number of persistent goroutines drain the ready queue,
// spawn one child process per action, arm a renewable kill-timer, and race
// the monitor-reported outcome against the kill-timer to decide who gets to
// record the action's terminal result.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"actiondriver/internal/classify"
	"actiondriver/internal/eval"
	"actiondriver/internal/killtimer"
	"actiondriver/internal/ledger"
	"actiondriver/internal/logging"
	"actiondriver/internal/metrics"
	"actiondriver/internal/mode"
	"actiondriver/internal/model"
	"actiondriver/internal/monitor"
	"actiondriver/internal/port"
)

// killGrace is added on top of an action's nominal timeout before the
// kill-timer is armed, giving a slow-but-still-progressing action a little
// room past the classification boundary before it is destroyed outright.
const killGrace = 2 * time.Second

// queueStarvation bounds how long an idle runner goroutine waits on an
// empty ready queue before giving up. A healthy pipeline never hits this;
// it exists so a stalled Builder Worker Pool doesn't leave runners blocked
// forever.
const queueStarvation = 5 * time.Minute

// Config tunes the Pool.
type Config struct {
	NumRunnerThreads     int
	FirstMonitorPort     int
	DefaultMonitorPort   int // used only when NumRunnerThreads == 1
	MonitorAcceptTimeout time.Duration
	SmallTimeout         time.Duration
	LargeTimeout         time.Duration
}

// Deps are the Pool's external collaborators.
type Deps struct {
	Mode         mode.Mode
	Ledger       *ledger.Ledger
	Expectations func(name string) model.Expectation
	Logger       *logging.Logger
	Metrics      *metrics.Metrics
}

// Pool runs actions pulled from a ready queue across a fixed number of
// runner goroutines, each bound to its own stable monitor port.
type Pool struct {
	cfg       Config
	deps      Deps
	allocator *port.Allocator
	starved   atomic.Bool
}

// New builds a Pool.
func New(cfg Config, deps Deps) *Pool {
	return &Pool{cfg: cfg, deps: deps, allocator: port.NewAllocator()}
}

// Starved reports whether any runner goroutine gave up waiting on an empty
// ready queue (spec.md §4.4 step 2), or whether the queue was closed before
// totalToRun actions had arrived on it. The Driver Orchestrator checks this
// after Run returns to decide whether to record a driver-level ERROR.
func (p *Pool) Starved() bool {
	return p.starved.Load()
}

// Run drains queue until totalToRun actions have been processed, then
// returns. Each of NumRunnerThreads goroutines claims a stable runner
// index exactly once, on first run, and reuses the same monitor port for
// every action it handles thereafter.
func (p *Pool) Run(ctx context.Context, queue <-chan model.Action, totalToRun int) {
	var remaining atomic.Int64
	remaining.Store(int64(totalToRun))

	threads := p.cfg.NumRunnerThreads
	if threads < 1 {
		threads = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runnerIndex := p.allocator.NextIndex()
			for remaining.Load() > 0 {
				if p.starved.Load() {
					return
				}
				select {
				case action, ok := <-queue:
					if !ok {
						return
					}
					if p.deps.Metrics != nil {
						p.deps.Metrics.ReadyQueueDepth.Dec()
					}
					p.runOne(ctx, runnerIndex, action)
					remaining.Add(-1)
				case <-time.After(queueStarvation):
					p.starved.Store(true)
					if p.deps.Logger != nil {
						p.deps.Logger.Warn("runner starved waiting on ready queue", "runner_id", runnerIndex)
					}
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	wg.Wait()

	// The queue closed (or every runner starved) before totalToRun actions
	// arrived: some action never reached the queue.
	if remaining.Load() > 0 && ctx.Err() == nil {
		p.starved.Store(true)
	}
}

// resultSlot arbitrates which of {kill-timer, normal completion path} gets
// to record the action's terminal outcome. The loser backs off silently.
type resultSlot struct {
	settled atomic.Bool
}

func (s *resultSlot) claim() bool {
	return s.settled.CompareAndSwap(false, true)
}

func (p *Pool) runOne(ctx context.Context, runnerIndex int, action model.Action) {
	actionCtx := logging.WithRunnerID(logging.WithAction(ctx, action.Name), runnerIndex)
	log := p.deps.Logger

	// An action that already has a stashed outcome came out of
	// mode.BuildAndInstall with an early failure (spec.md §4.2 step 1): the
	// builder stage stored it without counting it, and it falls to us to
	// finish the job via classify.RecordEarly.
	if existing, ok := p.deps.Ledger.Get(action.Name); ok {
		classify.RecordEarly(p.deps.Ledger, existing, p.expectationFor(action.Name))
		if log != nil {
			log.WithContext(actionCtx).Info("counted early outcome from build stage", "result", existing.Result)
		}
		return
	}

	expectation := p.expectationFor(action.Name)
	timeout := p.cfg.SmallTimeout
	if expectation.HasTag("large") {
		timeout = p.cfg.LargeTimeout
	}

	monitorPort := port.MonitorPort(runnerIndex, p.cfg.NumRunnerThreads, p.cfg.FirstMonitorPort, p.cfg.DefaultMonitorPort)

	cmd, err := p.deps.Mode.CreateActionCommand(ctx, action, monitorPort)
	if err != nil {
		outcome := model.NewOutcome(action.Name, model.ResultError, err.Error())
		p.deps.Ledger.Record(outcome, eval.Evaluate(outcome, expectation))
		return
	}

	slot := &resultSlot{}
	future := cmd.ExecuteLater(ctx)

	kt := killtimer.New(time.Now().Add(timeout+killGrace), func() {
		if !slot.claim() {
			return
		}
		cmd.Destroy()
		if p.deps.Metrics != nil {
			p.deps.Metrics.KillTimerFires.Inc()
		}
		outcome := model.NewOutcome(action.Name, model.ResultExecTimeout, "killed after exceeding timeout")
		p.deps.Ledger.Record(outcome, eval.Evaluate(outcome, expectation))
	})

	handler := &monitorHandler{pool: p, action: action, expectation: expectation, timer: kt, smallTimeout: p.cfg.SmallTimeout}
	var slogLogger *slog.Logger
	if log != nil {
		slogLogger = log.Logger
	}
	var conns *prometheus.CounterVec
	if p.deps.Metrics != nil {
		conns = p.deps.Metrics.MonitorConnections
	}
	completed := monitor.Listen(monitorPort, handler, p.cfg.MonitorAcceptTimeout, slogLogger, conns)

	outputLines, waitErr := future.Wait()
	kt.Stop()

	if !slot.claim() {
		// The kill-timer already won the race and recorded EXEC_TIMEOUT.
		p.cleanup(ctx, action, log)
		return
	}

	if !completed && log != nil {
		log.WithContext(actionCtx).Warn("monitor stream did not end cleanly", "wait_error", waitErr)
	}

	switch {
	case waitErr != nil:
		var failure *mode.CommandFailure
		if errors.As(waitErr, &failure) {
			outcome := model.NewOutcome(action.Name, model.ResultExecFailed, failure.OutputLines...)
			p.deps.Ledger.Record(outcome, eval.Evaluate(outcome, expectation))
		} else {
			outcome := model.NewOutcome(action.Name, model.ResultError, waitErr.Error())
			p.deps.Ledger.Record(outcome, eval.Evaluate(outcome, expectation))
		}
	case !p.deps.Ledger.HasAnyWithPrefix(action.Name):
		// A suite action that only reports per-method outcomes (e.g. "D#m1",
		// "D#m2") never claims its own bare name; synthesizing a SUCCESS here
		// would double-count it. Only actions that completed with nothing
		// recorded at all get a synthetic SUCCESS.
		outcome := model.NewOutcome(action.Name, model.ResultSuccess, outputLines...)
		p.deps.Ledger.Record(outcome, eval.Evaluate(outcome, expectation))
	}

	p.cleanup(ctx, action, log)
}

func (p *Pool) cleanup(ctx context.Context, action model.Action, log *logging.Logger) {
	if err := p.deps.Mode.Cleanup(ctx, action); err != nil && log != nil {
		log.Warn("cleanup failed", "action", action.Name, "error", err)
	}
}

func (p *Pool) expectationFor(name string) model.Expectation {
	if p.deps.Expectations != nil {
		return p.deps.Expectations(name)
	}
	return model.DefaultExpectation(name)
}

// monitorHandler adapts one action's ledger/timer state to the monitor.Handler
// contract.
type monitorHandler struct {
	pool         *Pool
	action       model.Action
	expectation  model.Expectation
	timer        *killtimer.Timer
	smallTimeout time.Duration
}

func (h *monitorHandler) Output(outcomeName, line string) {
	if h.pool.deps.Logger != nil {
		h.pool.deps.Logger.Debug("action output", "action", outcomeName, "line", line)
	}
}

// OutcomeReceived renews the kill-timer to smallTimeout regardless of the
// action's overall timeout class, so one slow method in a suite doesn't let
// the whole suite run unbounded, while a still-progressing suite doesn't get
// killed early either (spec.md §4.4 step 7).
func (h *monitorHandler) OutcomeReceived(env monitor.Envelope) {
	h.timer.Renew(h.smallTimeout + killGrace)

	outcome := env.Outcome()
	expectation := h.expectation
	if outcome.Name != h.action.Name {
		expectation = h.pool.expectationFor(outcome.Name)
	}
	h.pool.deps.Ledger.Record(outcome, eval.Evaluate(outcome, expectation))
}
