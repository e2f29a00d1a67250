package load

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Options controls the size and length of a run.
type Options struct {
	Users      int
	SpawnRate  float64 // users started per second; 0 starts them all at once
	Duration   time.Duration
	Iterations int // per user; 0 means until Duration or cancellation
	Seed       uint64
	Client     *http.Client
	Metrics    *Metrics
	Logger     logrus.FieldLogger
}

// Runner drives simulated users against one base URL.
type Runner struct {
	base    *url.URL
	profile Profile
	table   *Table
	opts    Options
	stats   *Stats
	client  *http.Client
	log     logrus.FieldLogger
}

// NewRunner validates the profile and options.
func NewRunner(base *url.URL, profile Profile, opts Options) (*Runner, error) {
	if base == nil || base.Host == "" {
		return nil, errors.New("load target needs a host")
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if opts.Users <= 0 {
		return nil, fmt.Errorf("users must be positive, got %d", opts.Users)
	}
	if opts.SpawnRate < 0 || opts.Iterations < 0 || opts.Duration < 0 {
		return nil, errors.New("spawn rate, iterations and duration must not be negative")
	}
	table, err := NewTable(profile.Tasks)
	if err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Seed == 0 {
		opts.Seed = uint64(time.Now().UnixNano())
	}
	r := &Runner{
		base:    base,
		profile: profile,
		table:   table,
		opts:    opts,
		stats:   NewStats(),
		log:     opts.Logger,
	}
	r.client = confine(opts.Client, base)
	return r, nil
}

// confine returns a client that refuses to follow redirects off the base
// host.
func confine(c *http.Client, base *url.URL) *http.Client {
	var cp http.Client
	if c != nil {
		cp = *c
	} else {
		cp.Timeout = 30 * time.Second
	}
	cp.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if !strings.EqualFold(req.URL.Host, base.Host) {
			return http.ErrUseLastResponse
		}
		if len(via) >= 10 {
			return errors.New("stopped after 10 redirects")
		}
		return nil
	}
	return &cp
}

// Run starts the users, waits for them to finish and summarizes the run.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	if r.opts.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Duration)
		defer cancel()
	}

	limit := rate.Inf
	if r.opts.SpawnRate > 0 {
		limit = rate.Limit(r.opts.SpawnRate)
	}
	spawner := rate.NewLimiter(limit, 1)

	r.log.WithFields(logrus.Fields{
		"users":      r.opts.Users,
		"spawn_rate": r.opts.SpawnRate,
		"duration":   r.opts.Duration,
		"target":     r.base.String(),
	}).Info("Starting load run")

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < r.opts.Users; i++ {
		if err := spawner.Wait(gctx); err != nil {
			r.log.WithField("started", i).Debug("Stopped spawning users")
			break
		}
		id := i
		g.Go(func() error {
			return r.user(gctx, id)
		})
	}
	err := g.Wait()
	summary := r.stats.Summary(time.Since(start))

	r.log.WithFields(logrus.Fields{
		"requests": summary.Total.Requests,
		"failures": summary.Total.Failures,
	}).Info("Load run finished")
	return summary, err
}

// user loops think, pick, request until its iterations run out or ctx ends.
func (r *Runner) user(ctx context.Context, id int) error {
	r.opts.Metrics.userStarted()
	defer r.opts.Metrics.userStopped()

	rng := rand.New(rand.NewPCG(r.opts.Seed, uint64(id)))
	log := r.log.WithField("user", id)
	for n := 0; r.opts.Iterations == 0 || n < r.opts.Iterations; n++ {
		if !sleep(ctx, r.profile.think(rng)) {
			return nil
		}
		task := r.table.Pick(rng)
		r.do(ctx, log, task)
	}
	return nil
}

func (r *Runner) do(ctx context.Context, log logrus.FieldLogger, task Task) {
	target := r.base.ResolveReference(&url.URL{Path: task.Path})

	var body io.Reader
	if task.Body != nil {
		body = bytes.NewReader(task.Body)
	}
	req, err := http.NewRequestWithContext(ctx, task.Method, target.String(), body)
	if err != nil {
		r.stats.Record(task.Name, 0, 0, err)
		return
	}
	if task.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	status := 0
	if err == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		status = resp.StatusCode
	} else if ctx.Err() != nil {
		// Cut off by the end of the run.
		return
	}
	latency := time.Since(start)

	r.stats.Record(task.Name, status, latency, err)
	r.opts.Metrics.Observe(task.Name, status, latency)

	entry := log.WithFields(logrus.Fields{"task": task.Name, "status": status, "latency": latency})
	if err != nil {
		entry.WithError(err).Warn("Request failed")
	} else {
		entry.Debug("Request done")
	}
}

// sleep waits for d and reports whether ctx is still live.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
