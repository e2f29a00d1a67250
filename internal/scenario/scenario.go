// Package scenario defines end-to-end scenarios: a named, linear list of
// browser steps, optionally preceded by a login as one of the storefront
// roles.
package scenario

import (
	"errors"
	"fmt"
	"time"

	"github.com/v0xg/shopcheck/internal/config"
	"github.com/v0xg/shopcheck/internal/executor"
)

// Role is a storefront account type.
type Role string

const (
	Anonymous Role = ""
	Buyer     Role = "buyer"
	Seller    Role = "seller"
	Admin     Role = "admin"
)

// LoginPath is where the shared login prelude starts.
const LoginPath = "/en/login"

// Scenario is one end-to-end check.
type Scenario struct {
	Name        string            `yaml:"name"`
	Suite       string            `yaml:"suite,omitempty"`
	Description string            `yaml:"description,omitempty"`
	LoginAs     Role              `yaml:"login_as,omitempty"`
	Timeout     time.Duration     `yaml:"timeout,omitempty"`
	Success     string            `yaml:"success,omitempty"` // logged when every step passed
	Failure     string            `yaml:"failure,omitempty"` // logged when a tolerated timeout ends the run
	Actions     []executor.Action `yaml:"steps"`
}

// Validate checks the scenario without resolving credentials.
func (s Scenario) Validate() error {
	if s.Name == "" {
		return errors.New("scenario needs a name")
	}
	switch s.LoginAs {
	case Anonymous, Buyer, Seller, Admin:
	default:
		return fmt.Errorf("scenario %s: unknown role %q", s.Name, s.LoginAs)
	}
	if len(s.Actions) == 0 {
		return fmt.Errorf("scenario %s has no steps", s.Name)
	}
	for i, a := range s.Actions {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("scenario %s step %d: %w", s.Name, i+1, err)
		}
	}
	return nil
}

// Steps returns the actions to execute, with the login prelude for LoginAs
// prepended.
func (s Scenario) Steps(cfg config.Config) []executor.Action {
	if s.LoginAs == Anonymous {
		return s.Actions
	}
	steps := Login(LoginPath, cfg.Credentials(string(s.LoginAs)))
	return append(steps, s.Actions...)
}

// FailureMessage is the legacy narrative printed when a wait expires.
func (s Scenario) FailureMessage() string {
	if s.Failure != "" {
		return "TimeoutException: " + s.Failure
	}
	return "TimeoutException: Element not found in time"
}

// Login opens path and signs in. An empty username means the form only asks
// for a password.
func Login(path string, creds config.Credentials) []executor.Action {
	first := executor.ByName("username")
	if creds.Username == "" {
		first = executor.ByName("password")
	}
	steps := []executor.Action{
		{Type: executor.Navigate, URL: path},
		{Type: executor.Wait, Target: first, Until: executor.Visible},
	}
	if creds.Username != "" {
		steps = append(steps, executor.Action{Type: executor.Type, Target: executor.ByName("username"), Text: creds.Username})
	}
	return append(steps,
		executor.Action{Type: executor.Type, Target: executor.ByName("password"), Text: creds.Password},
		executor.Action{Type: executor.Click, Target: executor.ByName("login")},
	)
}
