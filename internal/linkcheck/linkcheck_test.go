package linkcheck

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/shopcheck/internal/browser"
)

const page = `<html><body>
<nav><a href="/en/products">Products</a><a href="/en/cart#top">Cart</a></nav>
<a href="/en/products">Products again</a>
<a href="mailto:help@lazylizard.click">Mail</a>
<a href="javascript:void(0)">Nothing</a>
<a href="https://partner.example/deal">Partner</a>
<a href="/en/gone">Gone</a>
<img src="/static/logo.png"><img src="/static/missing.png"><img src="data:image/png;base64,AAAA">
</body></html>`

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestCollect(t *testing.T) {
	base, _ := url.Parse("https://lazylizard.click/en/")
	links, err := Collect(strings.NewReader(page), base)
	require.NoError(t, err)

	assert.Equal(t, []Link{
		{URL: "https://lazylizard.click/en/products", Kind: KindLink},
		{URL: "https://lazylizard.click/en/cart", Kind: KindLink},
		{URL: "https://partner.example/deal", Kind: KindLink},
		{URL: "https://lazylizard.click/en/gone", Kind: KindLink},
		{URL: "https://lazylizard.click/static/logo.png", Kind: KindImage},
		{URL: "https://lazylizard.click/static/missing.png", Kind: KindImage},
	}, links)
}

func newSite(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var (
		mu   sync.Mutex
		hits []string
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/en/", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits = append(hits, r.Method+" "+r.URL.Path)
		mu.Unlock()
		switch r.URL.Path {
		case "/en/":
			io.WriteString(w, page)
		case "/en/products":
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
		case "/en/cart":
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/static/logo.png", func(w http.ResponseWriter, r *http.Request) {})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestCheckerPage(t *testing.T) {
	srv, hits := newSite(t)
	base, _ := url.Parse(srv.URL)

	checker := NewChecker(base, quietLogger())
	results, err := checker.Page(context.Background(), "/en/")
	require.NoError(t, err)
	require.Len(t, results, 6)

	broken := Broken(results)
	var urls []string
	for _, r := range broken {
		urls = append(urls, strings.TrimPrefix(r.URL, srv.URL))
	}
	assert.ElementsMatch(t, []string{"/en/gone", "/static/missing.png"}, urls)

	for _, r := range results {
		if strings.HasPrefix(r.URL, "https://partner.example") {
			assert.True(t, r.Skipped)
			assert.True(t, r.OK())
		}
	}
	assert.Contains(t, *hits, "GET /en/products", "HEAD rejected with 405 falls back to GET")
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "link 200: http://x/a", Result{Link: Link{URL: "http://x/a", Kind: KindLink}, Status: 200}.String())
	assert.False(t, Result{}.OK())
}

func TestCheckerDoesNotFollowForeignRedirects(t *testing.T) {
	var foreignHits int
	var mu sync.Mutex
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		foreignHits++
		mu.Unlock()
	}))
	defer foreign.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/go", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, foreign.URL+"/landing", http.StatusFound)
	})
	mux.HandleFunc("/hop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/en/", http.StatusFound)
	})
	mux.HandleFunc("/en/", func(w http.ResponseWriter, r *http.Request) {})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	base, _ := url.Parse(srv.URL)

	results := NewChecker(base, quietLogger()).Check(context.Background(), []Link{
		{URL: srv.URL + "/go", Kind: KindLink},
		{URL: srv.URL + "/hop", Kind: KindLink},
	})
	require.Len(t, results, 2)
	assert.Equal(t, http.StatusFound, results[0].Status)
	assert.Equal(t, http.StatusOK, results[1].Status, "same-host redirects are followed")
	mu.Lock()
	assert.Zero(t, foreignHits)
	mu.Unlock()

	checker := NewChecker(base, quietLogger())
	checker.External = true
	results = checker.Check(context.Background(), []Link{{URL: srv.URL + "/go", Kind: KindLink}})
	assert.Equal(t, http.StatusOK, results[0].Status)
	mu.Lock()
	assert.Equal(t, 1, foreignHits)
	mu.Unlock()
}

func TestCheckerPageRejectsForeignHost(t *testing.T) {
	var hits int
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		io.WriteString(w, page)
	}))
	defer foreign.Close()

	srv, _ := newSite(t)
	base, _ := url.Parse(srv.URL)

	_, err := NewChecker(base, quietLogger()).Page(context.Background(), foreign.URL+"/en/")
	require.ErrorIs(t, err, browser.ErrForeignHost)
	assert.Zero(t, hits)
}
