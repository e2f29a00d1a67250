package catalog

import (
	"github.com/v0xg/shopcheck/internal/config"
	"github.com/v0xg/shopcheck/internal/executor"
	"github.com/v0xg/shopcheck/internal/scenario"
)

// addFirstProduct puts product 1 in the cart and opens the cart page.
func addFirstProduct() []executor.Action {
	return []executor.Action{
		navigate("/en/product/1"),
		waitFor(byName("add_to_cart"), executor.Clickable, shortWait),
		click(byName("add_to_cart")),
		waitFor(byLink("Cart"), executor.Clickable, shortWait),
		click(byLink("Cart")),
		waitFor(byClass("cart-item"), executor.Present, shortWait),
	}
}

// Checkout repeats the cart checks as a logged-in buyer.
func Checkout(config.Config) []scenario.Scenario {
	return []scenario.Scenario{
		{
			Name:        "checkout-add",
			Suite:       "checkout",
			Description: "Add items to cart and verify",
			LoginAs:     scenario.Buyer,
			Success:     "Item successfully added to cart.",
			Failure:     "Add item to cart test failed.",
			Actions: append(addFirstProduct(),
				assertCount(byClass("cart-item"), executor.CountAtLeast, 1),
			),
		},
		{
			Name:        "checkout-quantity",
			Suite:       "checkout",
			Description: "Update item quantity and verify price update",
			LoginAs:     scenario.Buyer,
			Success:     "Item quantity decreased and price verified.",
			Failure:     "Quantity update test failed.",
			Actions: append(addFirstProduct(),
				click(byName("increase_quantity")),
				waitFor(byClass("cart-total"), executor.Present, shortWait),
				note(assertText(byClass("cart-total"), executor.TextContains, "Total Price"),
					"Item quantity updated and price verified."),
				click(byName("decrease_quantity")),
				waitFor(byClass("cart-total"), executor.Present, shortWait),
				assertText(byClass("cart-total"), executor.TextContains, "Total Price"),
			),
		},
		{
			Name:        "checkout-remove",
			Suite:       "checkout",
			Description: "Remove item from cart and confirm deletion",
			LoginAs:     scenario.Buyer,
			Success:     "Item successfully removed from cart.",
			Failure:     "Remove item from cart test failed.",
			Actions: append(addFirstProduct(),
				click(byName("remove_item")),
				waitFor(byClass("empty-cart-message"), executor.Present, shortWait),
				assertText(byClass("empty-cart-message"), executor.TextContains, "Your cart is empty"),
			),
		},
		{
			Name:        "checkout-empty",
			Suite:       "checkout",
			Description: "Checkout with empty cart and verify error",
			LoginAs:     scenario.Buyer,
			Success:     "Error verified: Cannot checkout with empty cart.",
			Failure:     "Checkout with empty cart test failed.",
			Actions: []executor.Action{
				waitFor(byLink("Cart"), executor.Clickable, shortWait),
				click(byLink("Cart")),
				waitFor(byClass("cart-empty-message"), executor.Present, shortWait),
				waitFor(byLink("Checkout"), executor.Clickable, shortWait),
				click(byLink("Checkout")),
				waitFor(byClass("cart-empty-error"), executor.Present, shortWait),
				assertText(byClass("cart-empty-error"), executor.TextContains, "Your cart is empty"),
			},
		},
	}
}
