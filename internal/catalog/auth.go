package catalog

import (
	"github.com/v0xg/shopcheck/internal/config"
	"github.com/v0xg/shopcheck/internal/executor"
	"github.com/v0xg/shopcheck/internal/scenario"
)

// Auth covers password login, rejected credentials and logout.
func Auth(cfg config.Config) []scenario.Scenario {
	validLogin := scenario.Login(scenario.LoginPath, config.Credentials{Password: cfg.ValidPassword})
	validLogin[1].Timeout = longWait

	invalidLogin := scenario.Login("/en/", config.Credentials{Password: "invalid_password"})
	invalidLogin[1].Timeout = longWait

	logoutLogin := scenario.Login("/en/", config.Credentials{Password: cfg.ValidPassword})
	logoutLogin[1].Timeout = shortWait

	return []scenario.Scenario{
		{
			Name:        "login-valid",
			Suite:       "auth",
			Description: "Login with valid credentials (valid password)",
			Success:     "Login successful with valid credentials",
			Actions: append(validLogin,
				assertPage(executor.TitleContains, "Dashboard"),
				assertPage(executor.SourceContains, "Profile"),
				executor.Action{Type: executor.Refresh},
				assertPage(executor.SourceContains, "Profile"),
			),
		},
		{
			Name:        "login-invalid",
			Suite:       "auth",
			Description: "Login with invalid credentials",
			Success:     "Invalid credentials rejected",
			Actions: append(invalidLogin,
				assertPage(executor.SourceContains, "Invalid credentials"),
			),
		},
		{
			Name:        "logout",
			Suite:       "auth",
			Description: "Logout functionality",
			Success:     "Logout redirected to the login page",
			Actions: append(logoutLogin,
				assertPage(executor.TitleContains, "Dashboard"),
				assertPage(executor.SourceContains, "Profile"),
				click(byName("logout")),
				assertPage(executor.TitleContains, "Login"),
			),
		},
	}
}
