package executor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-rod/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLocatorQuery(t *testing.T) {
	tests := []struct {
		loc   *Locator
		css   string
		xpath string
	}{
		{ByName("add-to-cart"), `[name="add-to-cart"]`, ""},
		{ByClass("cart-item"), ".cart-item", ""},
		{ByCSS("form#login input"), "form#login input", ""},
		{ByTag("img"), "img", ""},
		{ByLink("Cart"), "", `//a[normalize-space(.)="Cart"]`},
		{Heading("Admin Dashboard"), "", `//h1[contains(text(),"Admin Dashboard")]`},
	}
	for _, tt := range tests {
		t.Run(tt.loc.String(), func(t *testing.T) {
			css, xpath := tt.loc.Query()
			assert.Equal(t, tt.css, css)
			assert.Equal(t, tt.xpath, xpath)
			assert.NoError(t, tt.loc.Validate())
		})
	}
}

func TestLocatorValidate(t *testing.T) {
	assert.Error(t, (&Locator{}).Validate())
	assert.Error(t, (&Locator{Name: "a", Class: "b"}).Validate())
	assert.ErrorContains(t, ByClass("cart-icon big").Validate(), "single class name")
	assert.Error(t, ByClass("cart-icon\tbig").Validate())
}

func TestLocatorEscapesCSS(t *testing.T) {
	tests := []struct {
		loc *Locator
		css string
	}{
		{ByClass("2col"), `.\32 col`},
		{ByClass("-1x"), `.-\31 x`},
		{ByClass("-"), `.\-`},
		{ByClass("price:now"), `.price\:now`},
		{ByClass("größe_2"), ".größe_2"},
		{ByName(`say "hi"`), `[name="say \"hi\""]`},
		{ByName(`a\b`), `[name="a\\b"]`},
	}
	for _, tt := range tests {
		t.Run(tt.loc.String(), func(t *testing.T) {
			css, xpath := tt.loc.Query()
			assert.Equal(t, tt.css, css)
			assert.Empty(t, xpath)
		})
	}
}

func TestXPathLiteral(t *testing.T) {
	assert.Equal(t, `"Cart"`, xpathLiteral("Cart"))
	assert.Equal(t, `'say "hi"'`, xpathLiteral(`say "hi"`))
	assert.Equal(t, `concat("it's ", '"', "quoted", '"', "")`, xpathLiteral(`it's "quoted"`))
}

func TestActionValidate(t *testing.T) {
	valid := []Action{
		{Type: Navigate, URL: "/en/login"},
		{Type: Refresh},
		{Type: Wait, Target: ByName("password"), Until: Visible},
		{Type: Click, Target: ByLink("Product Listing"), Dialog: DialogAcceptIfPresent},
		{Type: Type, Target: ByName("username"), Text: "buyer"},
		{Type: Upload, Target: ByName("product_image"), Files: []string{"/tmp/x.jpg"}},
		{Type: Assert, Assert: TitleContains, Text: "Dashboard"},
		{Type: Assert, Assert: CountAtMost, Target: ByClass("cart-item"), Count: 0},
		{Type: Viewport, Width: 375, Height: 667},
		{Type: Check, Check: func(context.Context, *Executor) error { return nil }},
	}
	for _, a := range valid {
		assert.NoError(t, a.Validate(), a.String())
	}

	invalid := []Action{
		{Type: "hover", Target: ByName("x")},
		{Type: Navigate},
		{Type: Wait, Target: ByName("x"), Until: "shiny"},
		{Type: Click},
		{Type: Click, Target: ByName("x"), Dialog: "dismiss"},
		{Type: Upload, Target: ByName("x")},
		{Type: Assert, Assert: TextContains, Text: "x"},
		{Type: Assert, Assert: SourceContains},
		{Type: Assert, Assert: "matches", Text: "x"},
		{Type: Viewport, Width: 10},
		{Type: Check},
	}
	for _, a := range invalid {
		assert.Error(t, a.Validate(), a.String())
	}
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "navigate → /en/", Action{Type: Navigate, URL: "/en/"}.String())
	assert.Equal(t, "wait → class=cart-items present", Action{Type: Wait, Target: ByClass("cart-items")}.String())
	assert.Equal(t, `type → name=password (text: "pw")`, Action{Type: Type, Target: ByName("password"), Text: "pw"}.String())
	assert.Equal(t, `assert title-contains "Login"`, Action{Type: Assert, Assert: TitleContains, Text: "Login"}.String())
	assert.Equal(t, "click → link=Cart", Action{Type: Click, Target: ByLink("Cart")}.String())
}

func TestActionYAML(t *testing.T) {
	src := `
- action: wait
  target: {name: password}
  until: visible
  timeout: 10s
- action: click
  target: {link: Checkout}
  dialog: accept-if-present
`
	var actions []Action
	require.NoError(t, yaml.Unmarshal([]byte(src), &actions))
	require.Len(t, actions, 2)
	assert.Equal(t, Wait, actions[0].Type)
	assert.Equal(t, "password", actions[0].Target.Name)
	assert.Equal(t, 10*time.Second, actions[0].Timeout)
	assert.Equal(t, DialogAcceptIfPresent, actions[1].Dialog)
}

func TestClassify(t *testing.T) {
	err := classify(context.DeadlineExceeded, true, "name=login")
	assert.ErrorIs(t, err, ErrElementNotFound)
	assert.True(t, Tolerable(err))

	err = classify(fmt.Errorf("wrapped: %w", context.DeadlineExceeded), false, "class=cart-items")
	assert.ErrorIs(t, err, ErrTimeout)
	assert.True(t, Tolerable(err))

	err = classify(&rod.ElementNotFoundError{}, false, "name=x")
	assert.ErrorIs(t, err, ErrElementNotFound)

	err = classify(errors.New("websocket closed"), false, "name=x")
	assert.False(t, Tolerable(err))
	assert.NoError(t, classify(nil, true, "x"))
}

func TestStepError(t *testing.T) {
	err := &StepError{
		Index:  2,
		Action: Action{Type: Assert, Assert: SourceContains, Text: "Profile"},
		Err:    assertionf("page source does not contain %q", "Profile"),
	}
	assert.ErrorIs(t, err, ErrAssertion)
	assert.False(t, Tolerable(err))
	assert.Equal(t, `step 3 (assert source-contains "Profile"): assertion failed: page source does not contain "Profile"`, err.Error())
}
