package browser

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestResolve(t *testing.T) {
	base := mustParse(t, "https://lazylizard.click")

	tests := []struct {
		target string
		want   string
	}{
		{"/en/login", "https://lazylizard.click/en/login"},
		{"en/products", "https://lazylizard.click/en/products"},
		{"http://lazylizard.click/en/", "http://lazylizard.click/en/"},
		{"https://LAZYLIZARD.click/en/cart", "https://LAZYLIZARD.click/en/cart"},
		{"", "https://lazylizard.click"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got, err := Resolve(base, tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestResolveRejectsForeignHost(t *testing.T) {
	base := mustParse(t, "http://127.0.0.1:8080")

	for _, target := range []string{
		"https://example.com/",
		"//evil.test/path",
		"http://127.0.0.1:9090/en/",
	} {
		_, err := Resolve(base, target)
		assert.ErrorIs(t, err, ErrForeignHost, target)
	}
}

func TestSameHost(t *testing.T) {
	base := mustParse(t, "https://lazylizard.click")
	assert.True(t, SameHost(base, mustParse(t, "http://lazylizard.click/x")))
	assert.False(t, SameHost(base, mustParse(t, "https://cdn.lazylizard.click/x")))
	assert.False(t, isNetwork(mustParse(t, "data:image/png;base64,AAAA")))
}

type fakeCloser struct{ closed int }

func (f *fakeCloser) Close() error {
	f.closed++
	return nil
}

func TestUseReleasesOnSuccess(t *testing.T) {
	res := &fakeCloser{}
	err := Use(func() (*fakeCloser, error) { return res, nil }, func(*fakeCloser) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 1, res.closed)
}

func TestUseReleasesOnError(t *testing.T) {
	res := &fakeCloser{}
	boom := errors.New("timeout waiting for cart-items")
	err := Use(func() (*fakeCloser, error) { return res, nil }, func(*fakeCloser) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, res.closed)
}

func TestUseReleasesOnPanic(t *testing.T) {
	res := &fakeCloser{}
	assert.PanicsWithValue(t, "assertion exploded", func() {
		_ = Use(func() (*fakeCloser, error) { return res, nil }, func(*fakeCloser) error {
			panic("assertion exploded")
		})
	})
	assert.Equal(t, 1, res.closed)
}

func TestUseOpenFailureSkipsFn(t *testing.T) {
	called := false
	err := Use(func() (*fakeCloser, error) { return nil, errors.New("no chrome") }, func(*fakeCloser) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}

type failingCloser struct{}

func (failingCloser) Close() error { return errors.New("already gone") }

func TestUseReportsCloseError(t *testing.T) {
	err := Use(func() (failingCloser, error) { return failingCloser{}, nil }, func(failingCloser) error { return nil })
	assert.ErrorContains(t, err, "closing: already gone")
}

func TestElementSelector(t *testing.T) {
	assert.Equal(t, `input[name="password"]`, Element{Tag: "input", Name: "password", ID: "pw"}.Selector())
	assert.Equal(t, "#cart", Element{Tag: "a", ID: "cart"}.Selector())
	assert.Equal(t, "div.cart-icon", Element{Tag: "div", Class: "cart-icon big"}.Selector())
	assert.Equal(t, "button", Element{Tag: "button"}.Selector())
}
