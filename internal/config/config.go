// Package config holds the settings shared by the scenario runner, the load
// generator and the link checker.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mstoykov/envconfig"
)

// DefaultBaseURL is the storefront the suite was written against.
const DefaultBaseURL = "https://lazylizard.click"

// Credentials is a username/password pair for one storefront role.
type Credentials struct {
	Username string
	Password string
}

// Config is the resolved configuration. Zero values are not meaningful; start
// from Default.
type Config struct {
	BaseURL     string        `envconfig:"SHOPCHECK_BASE_URL"`
	Headless    bool          `envconfig:"SHOPCHECK_HEADLESS"`
	Timeout     time.Duration `envconfig:"SHOPCHECK_TIMEOUT"`
	BrowserBin  string        `envconfig:"SHOPCHECK_BROWSER_BIN"`
	ProfileDir  string        `envconfig:"SHOPCHECK_PROFILE_DIR"`
	Width       int           `envconfig:"SHOPCHECK_WIDTH"`
	Height      int           `envconfig:"SHOPCHECK_HEIGHT"`
	StrictHost  bool          `envconfig:"SHOPCHECK_STRICT_HOST"`
	ArtifactDir string        `envconfig:"SHOPCHECK_ARTIFACT_DIR"`

	// ProductImage is the file the add-product scenario uploads.
	ProductImage string `envconfig:"SHOPCHECK_PRODUCT_IMAGE"`

	// ValidPassword is accepted by the password-only login form.
	ValidPassword  string `envconfig:"SHOPCHECK_VALID_PASSWORD"`
	BuyerUsername  string `envconfig:"SHOPCHECK_BUYER_USERNAME"`
	BuyerPassword  string `envconfig:"SHOPCHECK_BUYER_PASSWORD"`
	SellerUsername string `envconfig:"SHOPCHECK_SELLER_USERNAME"`
	SellerPassword string `envconfig:"SHOPCHECK_SELLER_PASSWORD"`
	AdminUsername  string `envconfig:"SHOPCHECK_ADMIN_USERNAME"`
	AdminPassword  string `envconfig:"SHOPCHECK_ADMIN_PASSWORD"`

	DraftProvider string `envconfig:"SHOPCHECK_DRAFT_PROVIDER"`
	DraftModel    string `envconfig:"SHOPCHECK_DRAFT_MODEL"`
	AnthropicKey  string `envconfig:"SHOPCHECK_ANTHROPIC_KEY"`
	OpenAIKey     string `envconfig:"SHOPCHECK_OPENAI_KEY"`
}

// Default returns the values the suite uses when nothing is configured.
func Default() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		Headless:       true,
		Timeout:        20 * time.Second,
		Width:          1920,
		Height:         1080,
		ProductImage:   "/path/to/product_image.jpg",
		ValidPassword:  "valid_password",
		BuyerUsername:  "buyer_username",
		BuyerPassword:  "buyer_password",
		SellerUsername: "seller_username",
		SellerPassword: "seller_password",
		AdminUsername:  "admin_username",
		AdminPassword:  "admin_password",
		DraftProvider:  "claude",
	}
}

// Load reads .env files (missing files are ignored) and overlays the process
// environment on top of Default.
func Load(envFiles ...string) (Config, error) {
	if err := loadDotEnv(envFiles...); err != nil {
		return Config{}, err
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup overlays values found through lookup on top of Default.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if err := envconfig.Process("", &cfg, lookup); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.AnthropicKey == "" {
		cfg.AnthropicKey, _ = lookup("ANTHROPIC_API_KEY")
	}
	if cfg.OpenAIKey == "" {
		cfg.OpenAIKey, _ = lookup("OPENAI_API_KEY")
	}
	return cfg, nil
}

func loadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL %q must use http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base URL %q has no host", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("viewport must be positive, got %dx%d", c.Width, c.Height)
	}
	return nil
}

// Base parses BaseURL. Call Validate first.
func (c Config) Base() *url.URL {
	u, _ := url.Parse(c.BaseURL)
	return u
}

// DraftKey returns the API key for the configured draft provider.
func (c Config) DraftKey() string {
	switch c.DraftProvider {
	case "openai", "gpt":
		return c.OpenAIKey
	default:
		return c.AnthropicKey
	}
}

// Credentials returns the login pair for a role name (buyer, seller, admin).
// Unknown roles get an empty pair.
func (c Config) Credentials(role string) Credentials {
	switch role {
	case "buyer":
		return Credentials{Username: c.BuyerUsername, Password: c.BuyerPassword}
	case "seller":
		return Credentials{Username: c.SellerUsername, Password: c.SellerPassword}
	case "admin":
		return Credentials{Username: c.AdminUsername, Password: c.AdminPassword}
	default:
		return Credentials{}
	}
}
