package catalog

import (
	"github.com/v0xg/shopcheck/internal/config"
	"github.com/v0xg/shopcheck/internal/executor"
	"github.com/v0xg/shopcheck/internal/scenario"
)

// adminLogin signs in through the password-only form on the landing page.
func adminLogin(cfg config.Config) []executor.Action {
	steps := scenario.Login("/en/", config.Credentials{Password: cfg.AdminPassword})
	steps[1].Timeout = longWait
	steps = append(steps, dashboard("Admin")...)
	steps[len(steps)-1].Note = "Admin login successful, dashboard accessible."
	return steps
}

// Admin covers the moderation tools.
func Admin(cfg config.Config) []scenario.Scenario {
	return []scenario.Scenario{
		{
			Name:        "admin-login",
			Suite:       "admin",
			Description: "Admin login and dashboard access",
			Failure:     "Admin login failed.",
			Actions:     adminLogin(cfg),
		},
		{
			Name:        "admin-product-moderation",
			Suite:       "admin",
			Description: "Product moderation",
			Failure:     "Product moderation test failed.",
			Actions: append(adminLogin(cfg),
				waitFor(byLink("Product Moderation"), executor.Clickable, shortWait),
				click(byLink("Product Moderation")),
				waitFor(byClass("product-list"), executor.Present, shortWait),
				click(byName("approve_product")),
				note(assertPage(executor.SourceContains, "Product approved"), "Product approved successfully."),
				click(byName("reject_product")),
				note(assertPage(executor.SourceContains, "Product rejected"), "Product rejected successfully."),
			),
		},
		{
			Name:        "admin-user-management",
			Suite:       "admin",
			Description: "Admin user management",
			Failure:     "User management test failed.",
			Actions: append(adminLogin(cfg),
				waitFor(byLink("User Management"), executor.Clickable, shortWait),
				click(byLink("User Management")),
				waitFor(byClass("user-list"), executor.Present, shortWait),
				click(byName("ban_user")),
				note(assertPage(executor.SourceContains, "User banned"), "User banned successfully."),
				click(byName("unban_user")),
				note(assertPage(executor.SourceContains, "User unbanned"), "User unbanned successfully."),
				click(byName("change_role")),
				note(assertPage(executor.SourceContains, "User role updated"), "User role changed successfully."),
			),
		},
	}
}
