package testshop

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/shopcheck/internal/linkcheck"
)

func get(t *testing.T, c *http.Client, u string) (int, string) {
	t.Helper()
	resp, err := c.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServerStartStop(t *testing.T) {
	srv := NewServer(DefaultConfig())
	addr, err := srv.Start()
	require.NoError(t, err)
	assert.NotEqual(t, "127.0.0.1:0", addr)

	again, err := srv.Start()
	require.NoError(t, err)
	assert.Equal(t, addr, again)

	status, body := get(t, http.DefaultClient, srv.URL()+"/en/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Home | LazyLizard")
	assert.Equal(t, 1, srv.Hits("GET /en/"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	require.NoError(t, srv.Shutdown(ctx))
}

func TestLoginFlow(t *testing.T) {
	ts := httptest.NewServer(NewServer(DefaultConfig()).Handler())
	defer ts.Close()

	jar, _ := cookiejar.New(nil)
	c := &http.Client{Jar: jar}

	resp, err := c.PostForm(ts.URL+"/en/login", url.Values{"password": {"nope"}})
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), "Invalid credentials")
	assert.Contains(t, string(body), `class="error-message"`)

	resp, err = c.PostForm(ts.URL+"/en/login", url.Values{"username": {"anyone"}, "password": {"valid_password"}})
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "/en/dashboard", resp.Request.URL.Path)
	assert.Contains(t, string(body), "Dashboard | LazyLizard")
	assert.Contains(t, string(body), "Profile")
	assert.Contains(t, string(body), `name="logout"`)

	resp, err = c.PostForm(ts.URL+"/en/logout", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "/en/login", resp.Request.URL.Path)

	_, body2 := get(t, c, ts.URL+"/en/dashboard")
	assert.Contains(t, body2, "Login | LazyLizard")
}

func TestCartReadsCookie(t *testing.T) {
	ts := httptest.NewServer(NewServer(DefaultConfig()).Handler())
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/en/cards/cart", nil)
	req.AddCookie(&http.Cookie{Name: cartCookie, Value: "1.2.99"})
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, 2, strings.Count(string(body), `class="cart-item"`))
	assert.Contains(t, string(body), `<span class="total-price">36.50</span>`)
	assert.Contains(t, string(body), "View cart (2)")
}

func TestCartAddEndpoint(t *testing.T) {
	ts := httptest.NewServer(NewServer(DefaultConfig()).Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/en/cart/add", "application/json", strings.NewReader(`{"product_id":1,"quantity":1}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/en/cart/add", "application/json", strings.NewReader(`{"product_id":42,"quantity":1}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestNoBrokenLinks(t *testing.T) {
	ts := httptest.NewServer(NewServer(DefaultConfig()).Handler())
	defer ts.Close()
	base, _ := url.Parse(ts.URL)

	checker := linkcheck.NewChecker(base, nil)
	checker.Client = ts.Client()
	results, err := checker.Page(context.Background(), "/en/")
	require.NoError(t, err)
	assert.NotEmpty(t, results)
	assert.Empty(t, linkcheck.Broken(results))
}

func TestOrdersPageOffersCancelConfirm(t *testing.T) {
	ts := httptest.NewServer(NewServer(DefaultConfig()).Handler())
	defer ts.Close()

	status, body := get(t, ts.Client(), ts.URL+"/en/orders")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `class="cancel-order"`)
	assert.Contains(t, body, "confirm('Cancel order 1001?')")
	assert.Contains(t, body, `<span class="order-status">Shipped</span>`)
}
