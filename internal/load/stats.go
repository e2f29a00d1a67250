package load

import (
	"fmt"
	"io"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Stats aggregates request outcomes across users.
type Stats struct {
	mu    sync.Mutex
	order []string
	tasks map[string]*taskStats
}

type taskStats struct {
	requests  int
	failures  int
	latencies []time.Duration
}

// NewStats returns an empty aggregator.
func NewStats() *Stats {
	return &Stats{tasks: make(map[string]*taskStats)}
}

// Record adds one request. A transport error or a status of 400 or above is
// a failure.
func (s *Stats) Record(task string, status int, latency time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts, ok := s.tasks[task]
	if !ok {
		ts = &taskStats{}
		s.tasks[task] = ts
		s.order = append(s.order, task)
	}
	ts.requests++
	if err != nil || status >= 400 {
		ts.failures++
	}
	ts.latencies = append(ts.latencies, latency)
}

// TaskSummary describes one task, or the whole run for the total row.
type TaskSummary struct {
	Name     string
	Requests int
	Failures int
	Min      time.Duration
	Avg      time.Duration
	P95      time.Duration
	Max      time.Duration
	RPS      float64
}

// Summary is the end-of-run report.
type Summary struct {
	Tasks   []TaskSummary
	Total   TaskSummary
	Elapsed time.Duration
}

// Summary computes per-task and overall figures over elapsed.
func (s *Stats) Summary(elapsed time.Duration) Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := Summary{Elapsed: elapsed}
	var all []time.Duration
	total := TaskSummary{Name: "total"}
	for _, name := range s.order {
		ts := s.tasks[name]
		out.Tasks = append(out.Tasks, summarize(name, ts.requests, ts.failures, ts.latencies, elapsed))
		total.Requests += ts.requests
		total.Failures += ts.failures
		all = append(all, ts.latencies...)
	}
	out.Total = summarize(total.Name, total.Requests, total.Failures, all, elapsed)
	return out
}

func summarize(name string, requests, failures int, latencies []time.Duration, elapsed time.Duration) TaskSummary {
	ts := TaskSummary{Name: name, Requests: requests, Failures: failures}
	if elapsed > 0 {
		ts.RPS = float64(requests) / elapsed.Seconds()
	}
	if len(latencies) == 0 {
		return ts
	}
	sorted := slices.Clone(latencies)
	slices.Sort(sorted)

	var sum time.Duration
	for _, l := range sorted {
		sum += l
	}
	ts.Min = sorted[0]
	ts.Max = sorted[len(sorted)-1]
	ts.Avg = sum / time.Duration(len(sorted))
	ts.P95 = percentile(sorted, 0.95)
	return ts
}

// percentile uses the nearest-rank method on sorted input.
func percentile(sorted []time.Duration, p float64) time.Duration {
	rank := int(math.Ceil(p * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}

var (
	header  = color.New(color.Bold).SprintFunc()
	failing = color.New(color.FgRed).SprintFunc()
)

// Print writes the summary as a table.
func (s Summary) Print(w io.Writer) {
	row := "%-14s %9s %9s %9s %9s %9s %9s %8s\n"
	fmt.Fprint(w, header(fmt.Sprintf(row, "task", "reqs", "fails", "min", "avg", "p95", "max", "req/s")))
	for _, t := range append(slices.Clone(s.Tasks), s.Total) {
		fails := fmt.Sprintf("%9d", t.Failures)
		if t.Failures > 0 {
			fails = failing(fails)
		}
		fmt.Fprintf(w, "%-14s %9d %s %9s %9s %9s %9s %8.2f\n",
			t.Name, t.Requests, fails, ms(t.Min), ms(t.Avg), ms(t.P95), ms(t.Max), t.RPS)
	}
	fmt.Fprintf(w, "\nelapsed %s\n", s.Elapsed.Round(time.Millisecond))
}

func ms(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}
