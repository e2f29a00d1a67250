package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/shopcheck/internal/config"
	"github.com/v0xg/shopcheck/internal/executor"
	"github.com/v0xg/shopcheck/internal/scenario"
)

func TestRegistryBuilds(t *testing.T) {
	reg, err := Registry(config.Default())
	require.NoError(t, err)

	assert.Equal(t, []string{"admin", "auth", "cart", "checkout", "orders", "products", "ux"}, reg.Suites())
	assert.Len(t, reg.All(), 26)
	for _, s := range reg.All() {
		assert.NotEmpty(t, s.Description, s.Name)
	}
}

func TestCartAddMatchesListingFlow(t *testing.T) {
	reg, err := Registry(config.Default())
	require.NoError(t, err)

	got, err := reg.Select("cart-add")
	require.NoError(t, err)
	require.Len(t, got, 1)

	steps := got[0].Steps(config.Default())
	require.NotEmpty(t, steps)
	last := steps[len(steps)-1]
	assert.Equal(t, executor.Assert, last.Type)
	assert.Equal(t, executor.CountAtLeast, last.Assert)
	assert.Equal(t, "cart-item", last.Target.Class)
	assert.Equal(t, 1, last.Count)
}

func TestCredentialsComeFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.SellerUsername = "shopkeeper"
	cfg.AdminPassword = "s3cret"

	reg, err := Registry(cfg)
	require.NoError(t, err)

	seller, err := reg.Select("product-add")
	require.NoError(t, err)
	assert.Equal(t, scenario.Seller, seller[0].LoginAs)
	assert.Equal(t, "shopkeeper", seller[0].Steps(cfg)[2].Text)

	admin, err := reg.Select("admin-login")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", admin[0].Actions[2].Text)
}

func TestProductImageComesFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.ProductImage = "/tmp/lizard.jpg"

	var uploads [][]string
	for _, s := range Products(cfg) {
		for _, a := range s.Actions {
			if a.Type == executor.Upload {
				uploads = append(uploads, a.Files)
			}
		}
	}
	assert.Equal(t, [][]string{{"/tmp/lizard.jpg"}}, uploads)
}

func TestEveryNavigationStaysRelative(t *testing.T) {
	for _, s := range All(config.Default()) {
		for _, a := range s.Steps(config.Default()) {
			if a.Type == executor.Navigate {
				assert.True(t, len(a.URL) > 0 && a.URL[0] == '/', "%s navigates to %q", s.Name, a.URL)
			}
		}
	}
}

func TestParsePrice(t *testing.T) {
	tests := map[string]float64{
		"12.50":     12.5,
		"$1,299.00": 1299,
		"24.00 €":   24,
	}
	for in, want := range tests {
		got, err := parsePrice(in)
		require.NoError(t, err, in)
		assert.InDelta(t, want, got, 0.0001, in)
	}
	_, err := parsePrice("free")
	assert.Error(t, err)
}
