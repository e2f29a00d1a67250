// Package runner executes scenarios one after another, each in its own
// browser, and reports how they ended.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/v0xg/shopcheck/internal/browser"
	"github.com/v0xg/shopcheck/internal/capture"
	"github.com/v0xg/shopcheck/internal/config"
	"github.com/v0xg/shopcheck/internal/executor"
	"github.com/v0xg/shopcheck/internal/scenario"
)

// ErrFailed is returned by Run when at least one scenario failed.
var ErrFailed = errors.New("scenarios failed")

// Status is how a scenario ended.
type Status string

const (
	Passed  Status = "passed"
	Failed  Status = "failed"
	Aborted Status = "aborted" // a tolerated timeout ended it early
)

// Result is the outcome of one scenario.
type Result struct {
	Name       string
	Suite      string
	Status     Status
	Elapsed    time.Duration
	Step       int // 1-based failing step, 0 when none
	Err        error
	Screenshot string
}

// Driver executes steps in one isolated browser.
type Driver interface {
	io.Closer
	Run(ctx context.Context, steps []executor.Action, timeout time.Duration) error
	// Capture saves a screenshot of the failure at path.
	Capture(ctx context.Context, failure error, path string) error
}

// Opener provides a fresh Driver per scenario.
type Opener func(ctx context.Context) (Driver, error)

// Runner runs scenarios sequentially.
type Runner struct {
	cfg              config.Config
	open             Opener
	log              logrus.FieldLogger
	out              io.Writer
	tolerateTimeouts bool
	artifactDir      string
}

// Option customizes a Runner.
type Option func(*Runner)

// WithOpener replaces the browser launcher.
func WithOpener(open Opener) Option {
	return func(r *Runner) { r.open = open }
}

// WithOutput sets where legacy timeout messages are printed.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// TolerateTimeouts ends a scenario as aborted instead of failed when an
// element never shows up.
func TolerateTimeouts(on bool) Option {
	return func(r *Runner) { r.tolerateTimeouts = on }
}

// WithArtifacts saves a screenshot of every failure under dir.
func WithArtifacts(dir string) Option {
	return func(r *Runner) { r.artifactDir = dir }
}

// New builds a runner that launches Chrome for every scenario.
func New(cfg config.Config, log logrus.FieldLogger, opts ...Option) *Runner {
	if log == nil {
		log = logrus.StandardLogger()
	}
	r := &Runner{
		cfg:         cfg,
		log:         log,
		out:         os.Stdout,
		artifactDir: cfg.ArtifactDir,
	}
	r.open = r.launch
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every scenario in order. The returned error wraps ErrFailed
// when any scenario failed; aborted scenarios do not count.
func (r *Runner) Run(ctx context.Context, scenarios []scenario.Scenario) (*Report, error) {
	report := &Report{}
	start := time.Now()
	for _, s := range scenarios {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Results = append(report.Results, r.runOne(ctx, s))
	}
	report.Elapsed = time.Since(start)

	if n := report.Count(Failed); n > 0 {
		return report, fmt.Errorf("%w: %d of %d", ErrFailed, n, len(report.Results))
	}
	return report, nil
}

func (r *Runner) runOne(ctx context.Context, s scenario.Scenario) (res Result) {
	log := r.log.WithFields(logrus.Fields{"scenario": s.Name, "suite": s.Suite})
	log.Infof("Starting test: %s", s.Description)

	res = Result{Name: s.Name, Suite: s.Suite}
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("panic: %v", p)
		}
		res.Elapsed = time.Since(start)
		r.settle(log, s, &res)
	}()

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = r.cfg.Timeout
	}
	res.Err = browser.Use(func() (Driver, error) { return r.open(ctx) }, func(d Driver) error {
		err := d.Run(ctx, s.Steps(r.cfg), timeout)
		if err != nil && r.artifactDir != "" {
			path := filepath.Join(r.artifactDir, artifactName(s.Name, start))
			if cerr := d.Capture(ctx, err, path); cerr != nil {
				log.WithError(cerr).Warn("Failure screenshot not saved")
			} else {
				res.Screenshot = path
			}
		}
		return err
	})
	return res
}

func (r *Runner) settle(log logrus.FieldLogger, s scenario.Scenario, res *Result) {
	var stepErr *executor.StepError
	if errors.As(res.Err, &stepErr) {
		res.Step = stepErr.Index + 1
	}

	switch {
	case res.Err == nil:
		res.Status = Passed
		if s.Success != "" {
			log.Info(s.Success)
		}
	case r.tolerateTimeouts && executor.Tolerable(res.Err):
		res.Status = Aborted
		fmt.Fprintln(r.out, s.FailureMessage())
		log.WithError(res.Err).Warn("Scenario aborted")
	default:
		res.Status = Failed
		log.WithError(res.Err).Error("Scenario failed")
	}
}

func artifactName(scenario string, at time.Time) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, scenario)
	return fmt.Sprintf("%s-%s.png", name, at.Format("20060102-150405"))
}

// launch opens a real browser session for one scenario.
func (r *Runner) launch(ctx context.Context) (Driver, error) {
	sess, err := browser.Launch(ctx, r.cfg.Base(), browser.OptionsFrom(r.cfg, r.log))
	if err != nil {
		return nil, err
	}
	return &sessionDriver{sess: sess, log: r.log}, nil
}

type sessionDriver struct {
	sess *browser.Session
	log  logrus.FieldLogger
}

func (d *sessionDriver) Run(ctx context.Context, steps []executor.Action, timeout time.Duration) error {
	x := executor.New(d.sess, executor.Options{Timeout: timeout, Logger: d.log})
	_, err := x.Run(ctx, steps)
	return err
}

func (d *sessionDriver) Capture(ctx context.Context, failure error, path string) error {
	var target *executor.Locator
	var stepErr *executor.StepError
	if errors.As(failure, &stepErr) {
		target = stepErr.Action.Target
	}
	return capture.Failure(ctx, d.sess, target, path, capture.DefaultOptions())
}

func (d *sessionDriver) Close() error {
	return d.sess.Close()
}
