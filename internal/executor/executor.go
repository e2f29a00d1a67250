package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"

	"github.com/v0xg/shopcheck/internal/browser"
)

// DefaultTimeout bounds every wait that does not set its own.
const DefaultTimeout = 20 * time.Second

const pollInterval = 200 * time.Millisecond

// Options configures execution behavior.
type Options struct {
	Timeout time.Duration
	Logger  logrus.FieldLogger
}

// StepResult records one executed step.
type StepResult struct {
	Index   int
	Action  Action
	Elapsed time.Duration
}

// Result holds the steps that ran before the sequence ended.
type Result struct {
	Steps []StepResult
}

// Executor runs actions against one browser session.
type Executor struct {
	sess    *browser.Session
	timeout time.Duration
	log     logrus.FieldLogger
}

// New binds an executor to a session.
func New(sess *browser.Session, opts Options) *Executor {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Executor{sess: sess, timeout: opts.Timeout, log: opts.Logger}
}

// Session returns the session the executor drives.
func (x *Executor) Session() *browser.Session {
	return x.sess
}

// Logger returns the logger steps report to.
func (x *Executor) Logger() logrus.FieldLogger {
	return x.log
}

// Run executes actions in order and stops at the first failure, which is
// returned as a *StepError.
func (x *Executor) Run(ctx context.Context, actions []Action) (*Result, error) {
	result := &Result{}
	for i, action := range actions {
		if err := action.Validate(); err != nil {
			return result, &StepError{Index: i, Action: action, Err: err}
		}
		log := x.log.WithFields(logrus.Fields{"step": i + 1, "of": len(actions)})
		log.Debug(action.String())

		start := time.Now()
		if err := x.execute(ctx, action); err != nil {
			log.WithError(err).Debug("Step failed")
			return result, &StepError{Index: i, Action: action, Err: err}
		}
		result.Steps = append(result.Steps, StepResult{Index: i, Action: action, Elapsed: time.Since(start)})

		if action.Note != "" {
			x.log.Info(action.Note)
		}
	}
	return result, nil
}

func (x *Executor) execute(ctx context.Context, a Action) error {
	ctx, cancel := context.WithTimeout(ctx, x.stepTimeout(a))
	defer cancel()

	switch a.Type {
	case Navigate:
		return x.sess.Navigate(ctx, a.URL)
	case Refresh:
		return x.sess.Reload(ctx)
	case Wait:
		_, err := x.Find(ctx, a.Target, a.condition())
		return err
	case Click:
		return x.click(ctx, a)
	case Type:
		return x.typeText(ctx, a)
	case Clear:
		el, err := x.Find(ctx, a.Target, Visible)
		if err != nil {
			return err
		}
		return clearInput(el)
	case Upload:
		el, err := x.Find(ctx, a.Target, Present)
		if err != nil {
			return err
		}
		if err := el.SetFiles(a.Files); err != nil {
			return fmt.Errorf("uploading to %s: %w", a.Target, err)
		}
		return nil
	case Assert:
		return x.assert(ctx, a)
	case Viewport:
		return x.sess.Resize(a.Width, a.Height)
	case Check:
		return a.Check(ctx, x)
	default:
		return fmt.Errorf("unknown action type: %s", a.Type)
	}
}

func (x *Executor) stepTimeout(a Action) time.Duration {
	if a.Timeout > 0 {
		return a.Timeout
	}
	return x.timeout
}

// Find locates loc and waits for cond, bounded by ctx.
func (x *Executor) Find(ctx context.Context, loc *Locator, cond Condition) (*rod.Element, error) {
	page := x.sess.Page().Context(ctx)
	what := loc.String()

	if cond == Gone {
		return nil, waitGone(ctx, page, loc)
	}

	css, xpath := loc.Query()
	var (
		el  *rod.Element
		err error
	)
	if xpath != "" {
		el, err = page.ElementX(xpath)
	} else {
		el, err = page.Element(css)
	}
	if err != nil {
		// Present waits report the expired wait; the others never got an
		// element to wait on.
		return nil, classify(err, cond != Present, what)
	}

	switch cond {
	case Visible:
		err = el.WaitVisible()
	case Clickable:
		if err = el.WaitVisible(); err == nil {
			err = el.WaitEnabled()
		}
	}
	if err != nil {
		return nil, classify(err, false, what+" to be "+string(cond))
	}
	return el, nil
}

// All returns every element matching loc right now, without waiting.
func (x *Executor) All(ctx context.Context, loc *Locator) (rod.Elements, error) {
	page := x.sess.Page().Context(ctx)
	css, xpath := loc.Query()
	var (
		els rod.Elements
		err error
	)
	if xpath != "" {
		els, err = page.ElementsX(xpath)
	} else {
		els, err = page.Elements(css)
	}
	if err != nil {
		return nil, classify(err, false, loc.String())
	}
	return els, nil
}

// Text waits for loc to be present and returns its visible text.
func (x *Executor) Text(ctx context.Context, loc *Locator) (string, error) {
	el, err := x.Find(ctx, loc, Present)
	if err != nil {
		return "", err
	}
	text, err := el.Text()
	if err != nil {
		return "", classify(err, false, "text of "+loc.String())
	}
	return text, nil
}

func waitGone(ctx context.Context, page *rod.Page, loc *Locator) error {
	css, xpath := loc.Query()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		var (
			has bool
			el  *rod.Element
			err error
		)
		if xpath != "" {
			has, el, err = page.HasX(xpath)
		} else {
			has, el, err = page.Has(css)
		}
		if err != nil {
			return classify(err, false, loc.String()+" to disappear")
		}
		if !has {
			return nil
		}
		// A node detached between Has and Visible counts as gone.
		if visible, err := el.Visible(); err != nil || !visible {
			return nil
		}

		select {
		case <-ctx.Done():
			return classify(ctx.Err(), false, loc.String()+" to disappear")
		case <-ticker.C:
		}
	}
}

func (x *Executor) click(ctx context.Context, a Action) error {
	el, err := x.Find(ctx, a.Target, Clickable)
	if err != nil {
		return err
	}
	if a.Dialog != DialogNone {
		return x.clickWithDialog(ctx, a, el)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return classify(err, false, "click on "+a.Target.String())
	}
	return nil
}

// settleTimeout is how long page-level assertions keep re-checking, so a
// navigation started by the previous click can land first.
const settleTimeout = 3 * time.Second

// settle retries check until it passes or settleTimeout elapses, and
// returns the last failure. Reads can fail while a document is swapped, so
// every error is retried.
func (x *Executor) settle(ctx context.Context, check func() error) error {
	ctx, cancel := context.WithTimeout(ctx, settleTimeout)
	defer cancel()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		err := check()
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return err
		case <-ticker.C:
		}
	}
}

func (x *Executor) assertPage(a Action) error {
	switch a.Assert {
	case TitleContains:
		title, err := x.sess.Title()
		if err != nil {
			return err
		}
		if !strings.Contains(title, a.Text) {
			return assertionf("title %q does not contain %q", title, a.Text)
		}
	case URLContains:
		u, err := x.sess.URL()
		if err != nil {
			return err
		}
		if !strings.Contains(u, a.Text) {
			return assertionf("url %q does not contain %q", u, a.Text)
		}
	default:
		html, err := x.sess.HTML()
		if err != nil {
			return err
		}
		has := strings.Contains(html, a.Text)
		if a.Assert == SourceContains && !has {
			return assertionf("page source does not contain %q", a.Text)
		}
		if a.Assert == SourceNotContains && has {
			return assertionf("page source contains %q", a.Text)
		}
	}
	return nil
}

// clickWithDialog clicks while listening for a JavaScript dialog. The click
// runs in the background because an open alert blocks input dispatch until
// it is handled.
func (x *Executor) clickWithDialog(ctx context.Context, a Action, el *rod.Element) error {
	wait, handle := x.sess.Page().Context(ctx).HandleDialog()

	clicked := make(chan error, 1)
	go func() {
		clicked <- el.Click(proto.InputMouseButtonLeft, 1)
	}()

	dialog := wait()
	if ctx.Err() != nil {
		if err := <-clicked; err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return classify(err, false, "click on "+a.Target.String())
		}
		if a.Dialog == DialogAcceptIfPresent {
			x.log.Info("No alert popup found, skipping")
			return nil
		}
		return fmt.Errorf("%w waiting for a dialog after clicking %s", ErrTimeout, a.Target)
	}

	if err := handle(&proto.PageHandleJavaScriptDialog{Accept: true}); err != nil {
		return fmt.Errorf("accepting dialog: %w", err)
	}
	x.log.WithField("message", dialog.Message).Debug("Accepted dialog")

	if err := <-clicked; err != nil {
		return classify(err, false, "click on "+a.Target.String())
	}
	return nil
}

func (x *Executor) typeText(ctx context.Context, a Action) error {
	el, err := x.Find(ctx, a.Target, Visible)
	if err != nil {
		return err
	}
	if a.Clear {
		if err := clearInput(el); err != nil {
			return err
		}
	}
	if err := el.Input(a.Text); err != nil {
		return classify(err, false, "typing into "+a.Target.String())
	}
	return nil
}

func clearInput(el *rod.Element) error {
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("selecting text: %w", err)
	}
	if err := el.Input(""); err != nil {
		return fmt.Errorf("clearing input: %w", err)
	}
	return nil
}

func (x *Executor) assert(ctx context.Context, a Action) error {
	switch a.Assert {
	case TitleContains, URLContains, SourceContains, SourceNotContains:
		return x.settle(ctx, func() error { return x.assertPage(a) })
	case TextContains, TextNotContains:
		text, err := x.Text(ctx, a.Target)
		if err != nil {
			return err
		}
		has := strings.Contains(text, a.Text)
		if a.Assert == TextContains && !has {
			return assertionf("%s text %q does not contain %q", a.Target, text, a.Text)
		}
		if a.Assert == TextNotContains && has {
			return assertionf("%s text contains %q", a.Target, a.Text)
		}
	case AnyTextContains:
		els, err := x.All(ctx, a.Target)
		if err != nil {
			return err
		}
		for _, el := range els {
			if text, err := el.Text(); err == nil && strings.Contains(text, a.Text) {
				return nil
			}
		}
		return assertionf("none of %d %s elements contain %q", len(els), a.Target, a.Text)
	case CountAtLeast, CountAtMost:
		els, err := x.All(ctx, a.Target)
		if err != nil {
			return err
		}
		n := len(els)
		if a.Assert == CountAtLeast && n < a.Count {
			return assertionf("found %d %s elements, want at least %d", n, a.Target, a.Count)
		}
		if a.Assert == CountAtMost && n > a.Count {
			return assertionf("found %d %s elements, want at most %d", n, a.Target, a.Count)
		}
	default:
		return fmt.Errorf("unknown assertion: %s", a.Assert)
	}
	return nil
}
