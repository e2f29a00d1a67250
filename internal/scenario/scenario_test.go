package scenario

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/shopcheck/internal/config"
	"github.com/v0xg/shopcheck/internal/executor"
)

func sample(name, suite string) Scenario {
	return Scenario{
		Name:  name,
		Suite: suite,
		Actions: []executor.Action{
			{Type: executor.Navigate, URL: "/en/"},
		},
	}
}

func TestLoginWithUsername(t *testing.T) {
	steps := Login(LoginPath, config.Credentials{Username: "buyer_username", Password: "buyer_password"})
	require.Len(t, steps, 5)
	assert.Equal(t, executor.Navigate, steps[0].Type)
	assert.Equal(t, "/en/login", steps[0].URL)
	assert.Equal(t, "username", steps[1].Target.Name)
	assert.Equal(t, "buyer_username", steps[2].Text)
	assert.Equal(t, "buyer_password", steps[3].Text)
	assert.Equal(t, "login", steps[4].Target.Name)
}

func TestLoginPasswordOnly(t *testing.T) {
	steps := Login("/en/", config.Credentials{Password: "admin_password"})
	require.Len(t, steps, 4)
	assert.Equal(t, "password", steps[1].Target.Name)
	assert.Equal(t, executor.Visible, steps[1].Until)
	assert.Equal(t, "admin_password", steps[2].Text)
}

func TestStepsPrependsLogin(t *testing.T) {
	s := sample("cart-add", "checkout")
	assert.Len(t, s.Steps(config.Default()), 1)

	s.LoginAs = Seller
	steps := s.Steps(config.Default())
	require.Len(t, steps, 6)
	assert.Equal(t, "seller_username", steps[2].Text)
	assert.Equal(t, "/en/", steps[5].URL)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, sample("a", "x").Validate())
	assert.Error(t, Scenario{Actions: sample("a", "").Actions}.Validate())
	assert.Error(t, Scenario{Name: "empty"}.Validate())

	bad := sample("a", "x")
	bad.LoginAs = "guest"
	assert.Error(t, bad.Validate())

	bad = sample("a", "x")
	bad.Actions = append(bad.Actions, executor.Action{Type: executor.Click})
	assert.ErrorContains(t, bad.Validate(), "step 2")
}

func TestFailureMessage(t *testing.T) {
	s := sample("a", "x")
	assert.Equal(t, "TimeoutException: Element not found in time", s.FailureMessage())
	s.Failure = "Admin login failed."
	assert.Equal(t, "TimeoutException: Admin login failed.", s.FailureMessage())
}

func TestRegistrySelect(t *testing.T) {
	r, err := NewRegistry(sample("login", "auth"), sample("logout", "auth"), sample("add", "cart"))
	require.NoError(t, err)

	assert.Equal(t, []string{"auth", "cart"}, r.Suites())
	assert.Len(t, r.Suite("auth"), 2)

	all, err := r.Select()
	require.NoError(t, err)
	assert.Len(t, all, 3)

	got, err := r.Select("add", "auth", "login")
	require.NoError(t, err)
	names := []string{}
	for _, s := range got {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"login", "logout", "add"}, names)

	_, err = r.Select("nope")
	assert.Error(t, err)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(sample("login", "auth"), sample("login", "ux"))
	assert.ErrorContains(t, err, "duplicate")
}

func TestDecodeEncode(t *testing.T) {
	src := `
scenarios:
  - name: buyer-cart
    suite: custom
    login_as: buyer
    timeout: 30s
    steps:
      - action: navigate
        url: /en/product/1
      - action: click
        target: {name: add_to_cart}
      - action: assert
        assert: count-at-least
        target: {class: cart-item}
        count: 1
`
	scenarios, err := Decode(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	assert.Equal(t, Buyer, scenarios[0].LoginAs)
	assert.Len(t, scenarios[0].Actions, 3)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, scenarios))
	again, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, scenarios, again)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode(strings.NewReader("scenarios:\n  - name: x\n    stepz: []\n"))
	assert.Error(t, err)
}
