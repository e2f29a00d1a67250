package catalog

import (
	"github.com/v0xg/shopcheck/internal/config"
	"github.com/v0xg/shopcheck/internal/executor"
	"github.com/v0xg/shopcheck/internal/scenario"
)

func dashboard(role string) []executor.Action {
	heading := role + " Dashboard"
	return []executor.Action{
		waitFor(executor.Heading(heading), executor.Present, shortWait),
		assertPage(executor.SourceContains, heading),
	}
}

// Orders checks order visibility for each role.
func Orders(cfg config.Config) []scenario.Scenario {
	buyerLogin := scenario.Login(scenario.LoginPath, config.Credentials{Password: cfg.BuyerPassword})
	buyerLogin[1].Timeout = longWait

	return []scenario.Scenario{
		{
			Name:        "orders-buyer-history",
			Suite:       "orders",
			Description: "Buyers' order history",
			Success:     "Order history displayed correctly.",
			Failure:     "Buyers' order history test failed.",
			Actions: append(append(buyerLogin, dashboard("Buyer")...),
				waitFor(byLink("Order History"), executor.Clickable, shortWait),
				click(byLink("Order History")),
				waitFor(byClass("order-list"), executor.Present, shortWait),
				assertCount(byClass("order-item"), executor.CountAtLeast, 1),
				assertText(byClass("order-item"), executor.TextContains, "order_id"),
			),
		},
		{
			Name:        "orders-seller-notification",
			Suite:       "orders",
			Description: "Sellers' notifications on new order",
			LoginAs:     scenario.Seller,
			Success:     "Seller received order notification.",
			Failure:     "Sellers' notification test failed.",
			Actions: append(dashboard("Seller"),
				navigate("/en/products"),
				click(byName("place_order")),
				waitFor(byClass("notification"), executor.Present, shortWait),
				assertText(byClass("notification"), executor.AnyTextContains, "New Order"),
			),
		},
		{
			Name:        "orders-admin-manage",
			Suite:       "orders",
			Description: "Admin order management",
			LoginAs:     scenario.Admin,
			Success:     "Order managed (marked as shipped) successfully.",
			Failure:     "Admin order management test failed.",
			Actions: append(dashboard("Admin"),
				waitFor(byLink("Order Management"), executor.Clickable, shortWait),
				click(byLink("Order Management")),
				waitFor(byClass("order-list"), executor.Present, shortWait),
				note(assertCount(byClass("order-item"), executor.CountAtLeast, 1), "Admin can view all orders."),
				click(byName("manage_order")),
				waitFor(byClass("order-status-shipped"), executor.Present, shortWait),
				assertPage(executor.SourceContains, "Shipped"),
			),
		},
	}
}
