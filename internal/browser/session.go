// Package browser launches and tears down the Chromium instance each scenario
// drives. It wraps Rod so callers only see a Session bound to one base host.
package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"

	"github.com/v0xg/shopcheck/internal/config"
)

// ErrForeignHost is returned when a navigation target leaves the base host.
var ErrForeignHost = errors.New("target is outside the configured host")

// Options configures the launched browser.
type Options struct {
	Width      int
	Height     int
	Headless   bool
	Bin        string // browser binary; looked up on PATH, then downloaded by Rod
	ProfileDir string // user data dir for authenticated sessions (close the browser first)
	StrictHost bool   // fail every request that leaves the base host
	Logger     logrus.FieldLogger
}

// OptionsFrom maps the shared configuration onto launch options.
func OptionsFrom(cfg config.Config, logger logrus.FieldLogger) Options {
	return Options{
		Width:      cfg.Width,
		Height:     cfg.Height,
		Headless:   cfg.Headless,
		Bin:        cfg.BrowserBin,
		ProfileDir: cfg.ProfileDir,
		StrictHost: cfg.StrictHost,
		Logger:     logger,
	}
}

// Session is one browser process with a single page, confined to a base URL.
type Session struct {
	base     *url.URL
	opts     Options
	log      logrus.FieldLogger
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	router   *rod.HijackRouter

	mu      sync.Mutex
	blocked []string

	closeOnce sync.Once
	closeErr  error
}

// Launch starts a fresh browser and opens a blank page sized to the options.
// The caller owns the session and must Close it.
func Launch(ctx context.Context, base *url.URL, opts Options) (*Session, error) {
	if base == nil || base.Host == "" {
		return nil, errors.New("base URL with a host is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	l := launcher.New().
		Context(ctx).
		Headless(opts.Headless).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("window-size", fmt.Sprintf("%d,%d", opts.Width, opts.Height))
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	} else if path, ok := launcher.LookPath(); ok {
		l = l.Bin(path)
	}
	if opts.ProfileDir != "" {
		l = l.UserDataDir(opts.ProfileDir)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	s := &Session{base: base, opts: opts, log: logger, launcher: l}

	s.browser = rod.New().ControlURL(controlURL)
	if err := s.browser.Connect(); err != nil {
		s.browser = nil
		_ = s.Close()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	s.page, err = s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	if err := s.Resize(opts.Width, opts.Height); err != nil {
		_ = s.Close()
		return nil, err
	}

	if opts.StrictHost {
		if err := s.guardHost(); err != nil {
			_ = s.Close()
			return nil, err
		}
	}

	logger.WithFields(logrus.Fields{
		"headless": opts.Headless,
		"viewport": fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"strict":   opts.StrictHost,
	}).Debug("Browser launched")
	return s, nil
}

// Close shuts the browser down. It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if s.router != nil {
			_ = s.router.Stop()
		}
		if s.browser != nil {
			s.closeErr = s.browser.Close()
		}
		if s.launcher != nil {
			s.launcher.Kill()
			// Cleanup removes the user data dir, which must survive when the
			// caller supplied their own profile.
			if s.opts.ProfileDir == "" {
				s.launcher.Cleanup()
			}
		}
		s.log.Debug("Browser closed")
	})
	return s.closeErr
}

// Page returns the underlying Rod page.
func (s *Session) Page() *rod.Page {
	return s.page
}

// Base returns the URL every navigation is resolved against.
func (s *Session) Base() *url.URL {
	return s.base
}

// Navigate resolves target against the base URL and waits for the load event.
func (s *Session) Navigate(ctx context.Context, target string) error {
	u, err := Resolve(s.base, target)
	if err != nil {
		return err
	}
	page := s.page.Context(ctx)
	if err := page.Navigate(u.String()); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", u, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("waiting for %s to load: %w", u, err)
	}
	return nil
}

// Reload refreshes the current page and waits for it to load.
func (s *Session) Reload(ctx context.Context) error {
	page := s.page.Context(ctx)
	if err := page.Reload(); err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}
	return page.WaitLoad()
}

// Resize changes the viewport, emulating a device of that size.
func (s *Session) Resize(width, height int) error {
	err := s.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
		Mobile:            width < 768,
	})
	if err != nil {
		return fmt.Errorf("failed to set viewport %dx%d: %w", width, height, err)
	}
	return nil
}

// Title returns the current document title.
func (s *Session) Title() (string, error) {
	info, err := s.page.Info()
	if err != nil {
		return "", fmt.Errorf("reading page info: %w", err)
	}
	return info.Title, nil
}

// HTML returns the serialized DOM of the current page.
func (s *Session) HTML() (string, error) {
	html, err := s.page.HTML()
	if err != nil {
		return "", fmt.Errorf("reading page source: %w", err)
	}
	return html, nil
}

// URL returns the address of the current page.
func (s *Session) URL() (string, error) {
	info, err := s.page.Info()
	if err != nil {
		return "", fmt.Errorf("reading page info: %w", err)
	}
	return info.URL, nil
}

// Screenshot captures the visible viewport as PNG.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	return s.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

// WaitIdle waits for network requests to settle, giving up after timeout.
func (s *Session) WaitIdle(timeout time.Duration) {
	s.page.Timeout(timeout).WaitRequestIdle(500*time.Millisecond, nil, nil, nil)()
}

// Blocked lists requests refused by the strict host guard.
func (s *Session) Blocked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.blocked...)
}

func (s *Session) guardHost() error {
	router := s.page.HijackRequests()
	err := router.Add("*", "", func(h *rod.Hijack) {
		u := h.Request.URL()
		if !isNetwork(u) || SameHost(s.base, u) {
			h.ContinueRequest(&proto.FetchContinueRequest{})
			return
		}
		s.mu.Lock()
		s.blocked = append(s.blocked, u.String())
		s.mu.Unlock()
		s.log.WithField("url", u.String()).Warn("Blocked request to foreign host")
		h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
	})
	if err != nil {
		return fmt.Errorf("installing host guard: %w", err)
	}
	go router.Run()
	s.router = router
	return nil
}

// Resolve joins target onto base and rejects anything on a different host.
func Resolve(base *url.URL, target string) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimSpace(target))
	if err != nil {
		return nil, fmt.Errorf("invalid target %q: %w", target, err)
	}
	u := base.ResolveReference(ref)
	if !SameHost(base, u) {
		return nil, fmt.Errorf("%w: %s", ErrForeignHost, u)
	}
	return u, nil
}

// SameHost reports whether u points at the host (and port) of base. The
// scheme may differ; the storefront is reachable over http and https.
func SameHost(base, u *url.URL) bool {
	return strings.EqualFold(base.Host, u.Host)
}

func isNetwork(u *url.URL) bool {
	return u.Scheme == "http" || u.Scheme == "https"
}
