//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/shopcheck/internal/browser"
	"github.com/v0xg/shopcheck/internal/catalog"
	"github.com/v0xg/shopcheck/internal/config"
	"github.com/v0xg/shopcheck/internal/executor"
	"github.com/v0xg/shopcheck/internal/runner"
	"github.com/v0xg/shopcheck/internal/scenario"
	"github.com/v0xg/shopcheck/internal/testshop"
)

// startShop serves the test storefront and returns a config pointing at it.
func startShop(t *testing.T) (*testshop.Server, config.Config) {
	t.Helper()
	shopCfg := testshop.DefaultConfig()
	srv := testshop.NewServer(shopCfg)
	_, err := srv.Start()
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			t.Errorf("server shutdown error: %v", err)
		}
	})

	cfg := config.Default()
	cfg.BaseURL = srv.URL()
	cfg.ValidPassword = shopCfg.Password
	cfg.Timeout = 10 * time.Second
	cfg.StrictHost = true
	return srv, cfg
}

func logger(t *testing.T) logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.DebugLevel)
	l.SetOutput(testWriter{t})
	return l
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(bytes.TrimRight(p, "\n")))
	return len(p), nil
}

func runCatalog(t *testing.T, cfg config.Config, names ...string) *runner.Report {
	t.Helper()
	reg, err := catalog.Registry(cfg)
	require.NoError(t, err)
	scenarios, err := reg.Select(names...)
	require.NoError(t, err)

	report, err := runner.New(cfg, logger(t), runner.WithArtifacts(t.TempDir())).Run(context.Background(), scenarios)
	for _, res := range report.Results {
		assert.Equal(t, runner.Passed, res.Status, "%s: %v", res.Name, res.Err)
	}
	require.NoError(t, err)
	return report
}

func TestAddToCart(t *testing.T) {
	srv, cfg := startShop(t)
	runCatalog(t, cfg, "cart-add")
	assert.Positive(t, srv.Hits("GET /en/cards/cart"))
}

func TestAuthSuite(t *testing.T) {
	_, cfg := startShop(t)
	runCatalog(t, cfg, "auth")
}

func TestLoginErrorMessage(t *testing.T) {
	_, cfg := startShop(t)
	runCatalog(t, cfg, "ux-error-messages")
}

func TestNoBrokenLinksOnHome(t *testing.T) {
	srv, cfg := startShop(t)
	runCatalog(t, cfg, "ux-broken-links")
	assert.Positive(t, srv.Hits("HEAD /static/logo.png"))
}

// TestCartLifecycle runs add, quantity and remove in one browser, since the
// cart lives in that browser's cookies.
func TestCartLifecycle(t *testing.T) {
	_, cfg := startShop(t)
	reg, err := catalog.Registry(cfg)
	require.NoError(t, err)
	scenarios, err := reg.Select("cart-add", "cart-quantity", "cart-remove")
	require.NoError(t, err)

	var steps []executor.Action
	for _, s := range scenarios {
		steps = append(steps, s.Steps(cfg)...)
	}

	err = browser.With(context.Background(), cfg.Base(), browser.OptionsFrom(cfg, logger(t)), func(sess *browser.Session) error {
		_, err := executor.New(sess, executor.Options{Timeout: cfg.Timeout, Logger: logger(t)}).Run(context.Background(), steps)
		return err
	})
	require.NoError(t, err)
}

func TestTimeoutsCanBeTolerated(t *testing.T) {
	_, cfg := startShop(t)
	missing := scenario.Scenario{
		Name:    "missing-banner",
		Failure: "Banner never showed up.",
		Actions: []executor.Action{
			{Type: executor.Navigate, URL: "/en/"},
			{Type: executor.Wait, Target: executor.ByClass("promo-banner"), Until: executor.Visible, Timeout: time.Second},
		},
	}

	var out bytes.Buffer
	r := runner.New(cfg, logger(t), runner.TolerateTimeouts(true), runner.WithOutput(&out), runner.WithArtifacts(""))
	report, err := r.Run(context.Background(), []scenario.Scenario{missing})
	require.NoError(t, err)
	assert.Equal(t, runner.Aborted, report.Results[0].Status)
	assert.Equal(t, "TimeoutException: Banner never showed up.\n", out.String())

	strict := runner.New(cfg, logger(t), runner.WithArtifacts(t.TempDir()))
	report, err = strict.Run(context.Background(), []scenario.Scenario{missing})
	require.ErrorIs(t, err, runner.ErrFailed)
	assert.Equal(t, runner.Failed, report.Results[0].Status)
	assert.Equal(t, 2, report.Results[0].Step)
	assert.FileExists(t, report.Results[0].Screenshot)
}

func TestSessionReleasedOnPanic(t *testing.T) {
	_, cfg := startShop(t)

	var sess *browser.Session
	func() {
		defer func() {
			assert.Equal(t, "boom", recover())
		}()
		_ = browser.With(context.Background(), cfg.Base(), browser.OptionsFrom(cfg, logger(t)), func(s *browser.Session) error {
			sess = s
			require.NoError(t, s.Navigate(context.Background(), "/en/"))
			panic("boom")
		})
	}()

	require.NotNil(t, sess)
	_, err := sess.Title()
	assert.Error(t, err, "page still answers after the fixture closed")
}

func TestForeignNavigationRejected(t *testing.T) {
	_, cfg := startShop(t)
	err := browser.With(context.Background(), cfg.Base(), browser.OptionsFrom(cfg, logger(t)), func(s *browser.Session) error {
		return s.Navigate(context.Background(), "https://example.com/")
	})
	assert.True(t, errors.Is(err, browser.ErrForeignHost), "got %v", err)
}

// withExecutor opens a session on path and runs fn with an executor that
// logs to the returned hook.
func withExecutor(t *testing.T, cfg config.Config, path string, fn func(x *executor.Executor) error) (*test.Hook, error) {
	t.Helper()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	err := browser.With(context.Background(), cfg.Base(), browser.OptionsFrom(cfg, logger(t)), func(s *browser.Session) error {
		if err := s.Navigate(context.Background(), path); err != nil {
			return err
		}
		return fn(executor.New(s, executor.Options{Timeout: cfg.Timeout, Logger: log}))
	})
	return hook, err
}

func TestClickAcceptsConfirmDialog(t *testing.T) {
	_, cfg := startShop(t)
	_, err := withExecutor(t, cfg, "/en/orders", func(x *executor.Executor) error {
		_, err := x.Run(context.Background(), []executor.Action{
			{Type: executor.Click, Target: executor.ByClass("cancel-order"), Dialog: executor.DialogAccept},
			{Type: executor.Assert, Assert: executor.TextContains, Target: executor.ByClass("order-status"), Text: "Cancelled"},
		})
		return err
	})
	require.NoError(t, err)
}

func TestClickSkipsMissingOptionalDialog(t *testing.T) {
	_, cfg := startShop(t)
	hook, err := withExecutor(t, cfg, "/en/orders", func(x *executor.Executor) error {
		_, err := x.Run(context.Background(), []executor.Action{
			{Type: executor.Click, Target: executor.ByLink("Order History"), Dialog: executor.DialogAcceptIfPresent, Timeout: 2 * time.Second},
		})
		return err
	})
	require.NoError(t, err)

	var messages []string
	for _, e := range hook.AllEntries() {
		messages = append(messages, e.Message)
	}
	assert.Contains(t, messages, "No alert popup found, skipping")
}

func TestClickWithoutExpectedDialogTimesOut(t *testing.T) {
	_, cfg := startShop(t)
	_, err := withExecutor(t, cfg, "/en/orders", func(x *executor.Executor) error {
		_, err := x.Run(context.Background(), []executor.Action{
			{Type: executor.Click, Target: executor.ByLink("Order History"), Dialog: executor.DialogAccept, Timeout: 2 * time.Second},
		})
		return err
	})
	require.ErrorIs(t, err, executor.ErrTimeout)
	assert.True(t, executor.Tolerable(err))

	var stepErr *executor.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, 0, stepErr.Index)
}

func TestButtonsMenusPopups(t *testing.T) {
	_, cfg := startShop(t)
	runCatalog(t, cfg, "ux-buttons-menus-popups")
}
