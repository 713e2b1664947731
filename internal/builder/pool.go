// Package builder implements the Builder Worker Pool described in spec.md
// §4.2 and §4.3: a bounded number of goroutines pull discovered actions off
// a work list, call mode.BuildAndInstall, and hand the result to a bounded
// ready queue for the Runner Worker Pool to drain.
//
// Grounded on the teacher's scheduler dual-path concurrency shape
// (internal/apiserver/scheduler/scheduler.go): a fixed worker count, a
// sync.WaitGroup join, and a stop channel for early cancellation.
package builder

import (
	"context"
	"sync"

	"actiondriver/internal/ledger"
	"actiondriver/internal/logging"
	"actiondriver/internal/metrics"
	"actiondriver/internal/mode"
	"actiondriver/internal/model"
)

// Config tunes the Pool.
type Config struct {
	NumBuilderThreads int
	ReadyQueueSize    int // spec.md §5: bounded backpressure between stages
}

// Deps are the Pool's external collaborators.
type Deps struct {
	Mode    mode.Mode
	Ledger  *ledger.Ledger
	Logger  *logging.Logger
	Metrics *metrics.Metrics
}

// Pool drives actions through mode.BuildAndInstall and onto a ready queue.
type Pool struct {
	cfg  Config
	deps Deps
}

// New builds a Pool.
func New(cfg Config, deps Deps) *Pool {
	return &Pool{cfg: cfg, deps: deps}
}

// Run spawns NumBuilderThreads goroutines to build every action in actions,
// pushing each onto the returned ready queue as soon as its build finishes,
// whether it built cleanly or returned an early failure Outcome (spec.md
// §4.2 step 1). An action whose build returns an error is not pushed (see
// buildOne). The returned channel is closed once every action has been
// built.
func (p *Pool) Run(ctx context.Context, actions []model.Action) <-chan model.Action {
	queueSize := p.cfg.ReadyQueueSize
	if queueSize < 1 {
		queueSize = 1
	}
	ready := make(chan model.Action, queueSize)

	threads := p.cfg.NumBuilderThreads
	if threads < 1 {
		threads = 1
	}

	work := make(chan model.Action)
	go func() {
		defer close(work)
		for _, a := range actions {
			select {
			case work <- a:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case action, ok := <-work:
					if !ok {
						return
					}
					if !p.buildOne(ctx, action) {
						continue
					}
					select {
					case ready <- action:
						if p.deps.Metrics != nil {
							p.deps.Metrics.ActionsEnqueued.Inc()
							p.deps.Metrics.ReadyQueueDepth.Inc()
						}
					case <-ctx.Done():
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(ready)
	}()

	return ready
}

// buildOne calls mode.BuildAndInstall. A non-nil Outcome is an early
// (classified) result such as COMPILE_FAILED or UNSUPPORTED: it is stashed
// into the ledger without counting it, and buildOne still reports the
// action as enqueueable so the runner stage classifies and counts it via
// classify.RecordEarly, mirroring vogar's Driver: the builder thread stores
// the outcome map entry directly, the runner thread's addEarlyResult does
// the actual accounting.
//
// A non-nil error is a different thing entirely: the builder itself failed
// (a crash, not a classified build result), so there is no Outcome to
// stash. buildOne reports the action as not enqueueable, and it never
// reaches the ready queue at all — the runner stage's starvation detection
// is what ultimately surfaces it (spec.md §4.1).
func (p *Pool) buildOne(ctx context.Context, action model.Action) (enqueue bool) {
	outcome, err := p.deps.Mode.BuildAndInstall(ctx, action)
	if p.deps.Metrics != nil {
		p.deps.Metrics.ActionsBuilt.Inc()
	}
	if err != nil {
		if p.deps.Logger != nil {
			p.deps.Logger.Error("builder crashed", "action", action.Name, "error", err)
		}
		return false
	}
	if outcome != nil {
		p.deps.Ledger.Stash(*outcome)
	}
	return true
}
