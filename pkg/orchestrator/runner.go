package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/randalmurphal/debategraph/pkg/debate"
	"github.com/randalmurphal/debategraph/pkg/events"
	"github.com/randalmurphal/debategraph/pkg/flowgraph"
	"github.com/randalmurphal/debategraph/pkg/llm"
	"github.com/randalmurphal/debategraph/pkg/memory"
)

// ErrDebateInProgress is returned when a debate is already running.
var ErrDebateInProgress = errors.New("debate already in progress")

// RunRequest identifies a debate to run.
type RunRequest struct {
	OrgID    string `json:"-"`
	DebateID string `json:"-"`
	Verbose  bool   `json:"verbose"`
}

// SinkFactory returns the sink for one debate of a RunMany batch.
type SinkFactory func(req RunRequest) events.Sink

// Runner runs debates.
type Runner struct {
	graph *flowgraph.CompiledGraph[debate.State]
	opts  options

	mu     sync.Mutex
	active map[string]struct{}
}

// NewRunner compiles the debate graph.
func NewRunner(s Store, inv Invoker, opts ...Option) (*Runner, error) {
	o := buildOptions(opts)
	mem := memory.NewManager(s, inv, append([]memory.Option{memory.WithLogger(o.logger)}, o.memory...)...)

	g, err := debate.NewGraph(debate.Deps{Store: s, Invoker: inv, Memory: mem})
	if err != nil {
		return nil, err
	}
	return &Runner{graph: g, opts: o, active: make(map[string]struct{})}, nil
}

// Run drives the debate until its final decision, streaming progress to
// sink. It returns ErrDebateInProgress if the debate is already running.
//
// A failed run emits an error event before returning. If sink fails, the
// run is cancelled, including any model call in flight.
func (r *Runner) Run(ctx context.Context, req RunRequest, sink events.Sink) error {
	release, err := r.acquire(req)
	if err != nil {
		return err
	}
	defer release()

	if err := sink.Emit(ctx, events.New(events.DebateStarted, map[string]string{"debate_id": req.DebateID})); err != nil {
		return err
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	rl := newRelay(ctx, sink, cancel)
	fctx := flowgraph.NewContext(llm.WithDeltaObserver(ctx, rl.observe), flowgraph.WithLogger(r.opts.logger))
	opts := append([]flowgraph.RunOption{flowgraph.WithGraphName("debate")}, r.opts.runOpts...)

	var runErr error
	for step := range r.graph.Stream(fctx, debate.State{OrgID: req.OrgID, DebateID: req.DebateID, Verbose: req.Verbose}, opts...) {
		if step.Err != nil {
			runErr = step.Err
			break
		}
		rl.completed(step.NodeID)
		if rl.err != nil {
			break
		}
	}

	if rl.err != nil {
		return rl.err
	}
	if runErr != nil {
		if cause := context.Cause(ctx); cause != nil && !errors.Is(runErr, cause) {
			runErr = fmt.Errorf("%w: %w", runErr, cause)
		}
		_ = sink.Emit(context.WithoutCancel(ctx), events.New(events.Error, map[string]string{"message": runErr.Error()}))
		return runErr
	}
	return nil
}

// RunMany runs distinct debates concurrently, at most WithMaxConcurrent at
// a time, and joins their errors. Each debate gets its own sink.
func (r *Runner) RunMany(ctx context.Context, reqs []RunRequest, sinks SinkFactory) error {
	p := pool.New().WithMaxGoroutines(r.opts.maxConcurrent).WithErrors().WithContext(ctx)
	for _, req := range reqs {
		p.Go(func(ctx context.Context) error {
			if err := r.Run(ctx, req, sinks(req)); err != nil {
				return fmt.Errorf("debate %s: %w", req.DebateID, err)
			}
			return nil
		})
	}
	return p.Wait()
}

// acquire marks the debate as running.
func (r *Runner) acquire(req RunRequest) (func(), error) {
	key := req.OrgID + "/" + req.DebateID

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.active[key]; busy {
		return nil, fmt.Errorf("%w: %s", ErrDebateInProgress, req.DebateID)
	}
	r.active[key] = struct{}{}

	return func() {
		r.mu.Lock()
		delete(r.active, key)
		r.mu.Unlock()
	}, nil
}
