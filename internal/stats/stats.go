package stats

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Stats aggregates the outcomes of one run. Every recorder takes the same mutex; the
// completed counter is atomic so progress can be read without it.
type Stats struct {
	mu sync.Mutex

	success       int
	failure       int
	statusCodes   map[int]int
	responseTimes []time.Duration
	errors        map[string]struct{}
	bytes         int64

	// successful latencies only
	Latency *SafeHistogram

	completed atomic.Int64
}

func NewStats() *Stats {
	return &Stats{
		statusCodes: make(map[int]int),
		errors:      make(map[string]struct{}),
		Latency:     NewSafeHistogram(),
	}
}

// RecordSuccess counts a request that got any HTTP response.
func (s *Stats) RecordSuccess(status int, elapsed time.Duration, bytes int64) {
	s.mu.Lock()
	s.success++
	s.statusCodes[status]++
	s.responseTimes = append(s.responseTimes, elapsed)
	s.bytes += bytes
	s.mu.Unlock()

	s.Latency.Record(elapsed)
}

// RecordFailure counts a request that never got a response.
func (s *Stats) RecordFailure(errText string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failure++
	s.errors[errText] = struct{}{}
}

// MarkCompleted advances the progress counter and returns the new value.
func (s *Stats) MarkCompleted() int64 {
	return s.completed.Add(1)
}

func (s *Stats) Completed() int64 {
	return s.completed.Load()
}

// Snapshot is a point-in-time view for progress displays.
type Snapshot struct {
	Completed int64
	Success   int
	Failure   int
	Bytes     int64
	Mean      time.Duration
	P99       time.Duration
}

func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{
		Success: s.success,
		Failure: s.failure,
		Bytes:   s.bytes,
	}
	s.mu.Unlock()

	snap.Completed = s.Completed()
	snap.Mean = s.Latency.Mean()
	snap.P99 = s.Latency.Quantile(99)

	return snap
}

// ErrorRate is the failure share in percent of everything recorded so far.
func (s *Stats) ErrorRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.success + s.failure
	if total == 0 {
		return 0
	}

	return float64(s.failure) / float64(total) * 100
}

// StatusShare is one row of the status code distribution.
type StatusShare struct {
	Code    int     `json:"code"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Summary is the final report of a run.
type Summary struct {
	Total    int
	Success  int
	Failure  int
	Bytes    int64
	Duration time.Duration

	// RPS is Total divided by Duration.
	RPS float64

	// Average is taken over successful requests only, zero when there were none.
	Average time.Duration
	P50     time.Duration
	P90     time.Duration
	P99     time.Duration
	Max     time.Duration

	// Percent is relative to successful requests. Sorted by code.
	StatusCodes []StatusShare

	// Distinct error texts, sorted.
	Errors []string
}

// Summarize reads the aggregate once at the end of a run.
func (s *Stats) Summarize(total int, wall time.Duration) Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{
		Total:    total,
		Success:  s.success,
		Failure:  s.failure,
		Bytes:    s.bytes,
		Duration: wall,
	}

	if wall > 0 {
		sum.RPS = float64(total) / wall.Seconds()
	}

	if len(s.responseTimes) > 0 {
		var acc time.Duration
		for _, rt := range s.responseTimes {
			acc += rt
		}

		sum.Average = acc / time.Duration(len(s.responseTimes))
		sum.P50 = s.Latency.Quantile(50)
		sum.P90 = s.Latency.Quantile(90)
		sum.P99 = s.Latency.Quantile(99)
		sum.Max = s.Latency.Max()
	}

	codes := make([]int, 0, len(s.statusCodes))
	for code := range s.statusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	for _, code := range codes {
		count := s.statusCodes[code]

		var pct float64
		if s.success > 0 {
			pct = float64(count) / float64(s.success) * 100
		}

		sum.StatusCodes = append(sum.StatusCodes, StatusShare{Code: code, Count: count, Percent: pct})
	}

	for e := range s.errors {
		sum.Errors = append(sum.Errors, e)
	}
	sort.Strings(sum.Errors)

	return sum
}

// SampleErrors returns at most n distinct errors.
func (s Summary) SampleErrors(n int) []string {
	if len(s.Errors) <= n {
		return s.Errors
	}

	return s.Errors[:n]
}

// ResponseTimes returns a copy of the successful response times in completion order.
func (s *Stats) ResponseTimes() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]time.Duration, len(s.responseTimes))
	copy(out, s.responseTimes)

	return out
}
