// Package linkcheck finds broken links and missing images on a page.
package linkcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/v0xg/shopcheck/internal/browser"
)

// Kind tells links and images apart.
type Kind string

const (
	KindLink  Kind = "link"
	KindImage Kind = "image"
)

// Link is one absolute http(s) reference found on a page.
type Link struct {
	URL  string
	Kind Kind
}

// Result is the outcome of checking one link.
type Result struct {
	Link
	Status  int
	Err     error
	Skipped bool // off-host and external checks disabled
}

// OK reports whether the link resolved with a status below 400.
func (r Result) OK() bool {
	return r.Skipped || (r.Err == nil && r.Status > 0 && r.Status < http.StatusBadRequest)
}

func (r Result) String() string {
	switch {
	case r.Skipped:
		return fmt.Sprintf("%s skipped (external): %s", r.Kind, r.URL)
	case r.Err != nil:
		return fmt.Sprintf("%s broken: %s - %v", r.Kind, r.URL, r.Err)
	default:
		return fmt.Sprintf("%s %d: %s", r.Kind, r.Status, r.URL)
	}
}

// Collect extracts <a href> and <img src> references from an HTML document,
// resolved against base. Non-http(s) references and duplicates are dropped.
func Collect(r io.Reader, base *url.URL) ([]Link, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	seen := map[string]bool{}
	var links []Link
	add := func(raw string, kind Kind) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return
		}
		ref, err := url.Parse(raw)
		if err != nil {
			return
		}
		u := base.ResolveReference(ref)
		if u.Scheme != "http" && u.Scheme != "https" {
			return
		}
		u.Fragment = ""
		key := string(kind) + " " + u.String()
		if seen[key] {
			return
		}
		seen[key] = true
		links = append(links, Link{URL: u.String(), Kind: kind})
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		add(href, KindLink)
	})
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		add(src, KindImage)
	})
	return links, nil
}

// Checker issues HEAD requests for collected links.
type Checker struct {
	Client      *http.Client
	Base        *url.URL
	External    bool          // also check links that leave Base's host
	Timeout     time.Duration // per request
	Concurrency int
	Logger      logrus.FieldLogger
}

// NewChecker returns a checker confined to base with the suite's defaults.
func NewChecker(base *url.URL, logger logrus.FieldLogger) *Checker {
	return &Checker{
		Client:      &http.Client{},
		Base:        base,
		Timeout:     10 * time.Second,
		Concurrency: 8,
		Logger:      logger,
	}
}

// Check verifies every link and returns results in input order.
func (c *Checker) Check(ctx context.Context, links []Link) []Result {
	results := make([]Result, len(links))

	g, ctx := errgroup.WithContext(ctx)
	if c.Concurrency > 0 {
		g.SetLimit(c.Concurrency)
	}
	for i, link := range links {
		g.Go(func() error {
			results[i] = c.checkOne(ctx, link)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		entry := c.log().WithField("kind", r.Kind)
		if r.OK() {
			entry.Debug(r.String())
		} else {
			entry.Warn(r.String())
		}
	}
	return results
}

// Page fetches path over plain HTTP, collects its references and checks
// them. The page itself must be on Base's host, whatever External says.
func (c *Checker) Page(ctx context.Context, path string) ([]Result, error) {
	target, err := browser.Resolve(c.Base, path)
	if err != nil {
		return nil, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()
	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%s returned status %d", target, resp.StatusCode)
	}

	links, err := Collect(resp.Body, target)
	if err != nil {
		return nil, err
	}
	return c.Check(ctx, links), nil
}

// Broken filters results down to failures.
func Broken(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

func (c *Checker) checkOne(ctx context.Context, link Link) Result {
	res := Result{Link: link}
	u, err := url.Parse(link.URL)
	if err != nil {
		res.Err = err
		return res
	}
	if !c.External && c.Base != nil && !browser.SameHost(c.Base, u) {
		res.Skipped = true
		return res
	}

	res.Status, res.Err = c.status(ctx, http.MethodHead, link.URL)
	if res.Err == nil && res.Status == http.StatusMethodNotAllowed {
		res.Status, res.Err = c.status(ctx, http.MethodGet, link.URL)
	}
	if res.Err == nil && res.Status >= http.StatusBadRequest {
		res.Err = fmt.Errorf("status %d", res.Status)
	}
	return res
}

func (c *Checker) status(ctx context.Context, method, target string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.client().Do(req)
	if err != nil {
		return 0, err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode, nil
}

// client returns the configured client. Unless External is set, redirects
// that leave Base's host are reported as-is instead of followed.
func (c *Checker) client() *http.Client {
	cl := c.Client
	if cl == nil {
		cl = http.DefaultClient
	}
	if c.External || c.Base == nil {
		return cl
	}
	confined := *cl
	confined.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if !browser.SameHost(c.Base, req.URL) {
			return http.ErrUseLastResponse
		}
		if len(via) >= 10 {
			return errors.New("stopped after 10 redirects")
		}
		return nil
	}
	return &confined
}

func (c *Checker) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 10 * time.Second
	}
	return c.Timeout
}

func (c *Checker) log() logrus.FieldLogger {
	if c.Logger == nil {
		return logrus.StandardLogger()
	}
	return c.Logger
}
