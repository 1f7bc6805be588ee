package runner

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"blazehammer/internal/placeholder"
	"blazehammer/internal/stats"

	"github.com/segmentio/ksuid"
	"golang.org/x/sync/semaphore"
)

// OutputFunc receives successful outcomes when a print flag is set. ts is the
// completion time. Calls may be concurrent.
type OutputFunc func(ts time.Time, o Outcome)

// Observer is told about in-flight changes and every recorded outcome.
type Observer interface {
	ObserveInflight(n int64)
	ObserveOutcome(o Outcome)
}

type Runner struct {
	ID      string
	Cfg     Config
	Stats   *stats.Stats
	Client  *http.Client
	Exec    *Executor
	Updates StatsUpdateChan

	output   OutputFunc
	observer Observer
	obsMu    sync.Mutex
	logger   *slog.Logger

	sem *semaphore.Weighted

	mu      sync.Mutex
	results []Record

	inflight atomic.Int64
	peak     atomic.Int64
	start    time.Time
}

type Option func(*Runner)

// WithEngine sets the placeholder engine used for payloads and headers.
func WithEngine(e *placeholder.Engine) Option {
	return func(r *Runner) {
		r.Exec.Engine = e
	}
}

func WithOutput(fn OutputFunc) Option {
	return func(r *Runner) {
		r.output = fn
	}
}

// SetObserver attaches o to the run. It must be called before Run.
func (r *Runner) SetObserver(o Observer) {
	r.observer = o
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// NewRunner validates cfg and prepares a run. The transport allows twice the
// concurrency in connections and keeps as many idle ones as there are slots.
func NewRunner(cfg Config, updates StatsUpdateChan, opts ...Option) (*Runner, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.PostType == "" {
		cfg.PostType = PostJSON
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxConnsPerHost = 2 * cfg.Concurrency
	t.MaxIdleConns = cfg.Concurrency
	t.MaxIdleConnsPerHost = cfg.Concurrency

	client := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: t,
	}

	if updates == nil {
		updates = make(StatsUpdateChan, 10)
	}

	r := &Runner{
		ID:      ksuid.New().String(),
		Cfg:     cfg,
		Stats:   stats.NewStats(),
		Client:  client,
		Updates: updates,
		logger:  slog.Default(),
		sem:     semaphore.NewWeighted(int64(cfg.Concurrency)),
		results: make([]Record, 0, cfg.Requests),
	}

	r.Exec = &Executor{Client: client, Cfg: cfg}

	for _, opt := range opts {
		opt(r)
	}

	if r.Exec.Engine == nil {
		r.Exec.Engine = placeholder.NewEngine()
	}

	return r, nil
}

// StartTickLoop starts a goroutine that pushes stats updates
func (r *Runner) StartTickLoop(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.sendUpdate()
			}
		}
	}()
}

func (r *Runner) snapshot() StatsSnapshot {
	snap := r.Stats.Snapshot()

	return StatsSnapshot{
		Total:        r.Cfg.Requests,
		Completed:    snap.Completed,
		Success:      snap.Success,
		Failure:      snap.Failure,
		Bytes:        snap.Bytes,
		Inflight:     r.inflight.Load(),
		PeakInflight: r.peak.Load(),
		Elapsed:      time.Since(r.start),
		MeanMs:       float64(snap.Mean) / float64(time.Millisecond),
		P99Ms:        float64(snap.P99) / float64(time.Millisecond),
	}
}

func (r *Runner) sendUpdate() {
	s := r.snapshot()

	// a slow reader loses snapshots, never blocks the run
	select {
	case r.Updates <- s:
	default:
	}
}

// Run dispatches Cfg.Requests requests, at most Cfg.Concurrency at a time, and
// returns once every one of them has either succeeded or failed. A canceled ctx turns
// the requests that have not finished into failures.
func (r *Runner) Run(ctx context.Context) stats.Summary {
	r.start = time.Now()

	tickCtx, stop := context.WithCancel(ctx)
	r.StartTickLoop(tickCtx, 200*time.Millisecond)

	r.logger.Info("run started",
		"run", r.ID, "url", r.Cfg.URL, "method", r.Cfg.Method,
		"requests", r.Cfg.Requests, "concurrency", r.Cfg.Concurrency)

	var wg sync.WaitGroup
	for i := 0; i < r.Cfg.Requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.dispatch(ctx)
		}()
	}
	wg.Wait()

	stop()
	r.sendUpdate()
	r.Client.CloseIdleConnections()

	summary := r.Stats.Summarize(r.Cfg.Requests, time.Since(r.start))

	r.logger.Info("run finished",
		"run", r.ID, "success", summary.Success, "failure", summary.Failure,
		"duration", summary.Duration, "peak_inflight", r.PeakInflight())

	return summary
}

func (r *Runner) dispatch(ctx context.Context) {
	if r.Cfg.Delay > 0 {
		timer := time.NewTimer(r.Cfg.Delay)

		select {
		case <-ctx.Done():
			timer.Stop()
			r.record(Outcome{Err: ctx.Err().Error()})

			return
		case <-timer.C:
		}
	}

	if err := r.sem.Acquire(ctx, 1); err != nil {
		r.record(Outcome{Err: err.Error()})
		return
	}
	defer r.sem.Release(1)

	r.enter()
	out := r.Exec.Do(ctx)
	r.leave()

	r.record(out)
}

func (r *Runner) enter() {
	n := r.adjustInflight(1)

	for {
		peak := r.peak.Load()
		if n <= peak || r.peak.CompareAndSwap(peak, n) {
			break
		}
	}
}

func (r *Runner) leave() {
	r.adjustInflight(-1)
}

// adjustInflight applies delta and reports the new value. With an observer attached
// the update and the report happen under obsMu so the observer never sees them
// out of order.
func (r *Runner) adjustInflight(delta int64) int64 {
	if r.observer == nil {
		return r.inflight.Add(delta)
	}

	r.obsMu.Lock()
	defer r.obsMu.Unlock()

	n := r.inflight.Add(delta)
	r.observer.ObserveInflight(n)

	return n
}

func (r *Runner) record(out Outcome) {
	now := time.Now()
	rec := Record{
		Timestamp: now,
		Elapsed:   out.Elapsed,
		Success:   out.Success,
		Err:       out.Err,
	}

	if out.Success {
		if out.Response != nil {
			rec.Bytes = int64(len(out.Response.Body))
		}
		rec.Status = out.StatusCode

		r.Stats.RecordSuccess(out.StatusCode, out.Elapsed, rec.Bytes)

		if r.output != nil && r.Cfg.Print.Any() {
			r.output(now, out)
		}
	} else {
		r.Stats.RecordFailure(out.Err)
		r.logger.Debug("request failed", "run", r.ID, "error", out.Err)
	}

	if r.observer != nil {
		r.observer.ObserveOutcome(out)
	}

	// only the record outlives this call; the response body is dropped here
	r.mu.Lock()
	r.results = append(r.results, rec)
	r.mu.Unlock()

	r.Stats.MarkCompleted()
}

// Results returns a copy of the per-request records in completion order.
func (r *Runner) Results() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Record, len(r.results))
	copy(out, r.results)

	return out
}

func (r *Runner) GetInflight() int64 {
	return r.inflight.Load()
}

// PeakInflight is the highest number of requests that were executing at once.
func (r *Runner) PeakInflight() int64 {
	return r.peak.Load()
}
