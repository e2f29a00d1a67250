package catalog

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/v0xg/shopcheck/internal/config"
	"github.com/v0xg/shopcheck/internal/executor"
	"github.com/v0xg/shopcheck/internal/scenario"
)

const cartPath = "/en/cards/cart"

// Cart drives the anonymous cart: add, change quantity, remove and the empty
// checkout error.
func Cart(config.Config) []scenario.Scenario {
	return []scenario.Scenario{
		{
			Name:        "cart-add",
			Suite:       "cart",
			Description: "Add items to the cart and verify they appear correctly",
			Success:     "Item successfully added to the cart.",
			Actions: []executor.Action{
				navigate("/en/"),
				waitFor(byClass("product-item"), executor.Present, longWait),
				click(byClass("product-item")),
				waitFor(byName("add-to-cart"), executor.Visible, longWait),
				click(byName("add-to-cart")),
				click(byClass("cart-icon")),
				waitFor(byClass("cart-items"), executor.Present, longWait),
				assertCount(byClass("cart-item"), executor.CountAtLeast, 1),
			},
		},
		{
			Name:        "cart-quantity",
			Suite:       "cart",
			Description: "Increase/Decrease item quantity and ensure price updates",
			Success:     "Quantity updated and price is correct.",
			Actions: []executor.Action{
				navigate(cartPath),
				waitFor(byClass("cart-items"), executor.Present, longWait),
				replace(byName("quantity"), "2"),
				check(totalIs(2)),
				replace(byName("quantity"), "1"),
				check(totalIs(1)),
			},
		},
		{
			Name:        "cart-remove",
			Suite:       "cart",
			Description: "Remove item from the cart and confirm it's deleted",
			Success:     "Item successfully removed from the cart.",
			Actions: []executor.Action{
				navigate(cartPath),
				waitFor(byClass("cart-items"), executor.Present, longWait),
				click(byClass("remove-item")),
				waitFor(byClass("remove-item"), executor.Gone, longWait),
				assertCount(byClass("cart-item"), executor.CountAtMost, 0),
			},
		},
		{
			Name:        "cart-checkout-empty",
			Suite:       "cart",
			Description: "Attempt checkout with an empty cart and check for errors",
			Success:     "Correct error displayed for empty cart during checkout.",
			Actions: []executor.Action{
				navigate(cartPath),
				waitFor(byClass("cart-items"), executor.Present, longWait),
				assertCount(byClass("cart-item"), executor.CountAtMost, 0),
				click(byName("checkout")),
				waitFor(byClass("error-message"), executor.Present, longWait),
				assertText(byClass("error-message"), executor.TextContains, "Your cart is empty"),
			},
		},
	}
}

// totalIs checks that the cart total equals the unit price times qty.
func totalIs(qty int) executor.CheckFunc {
	return func(ctx context.Context, x *executor.Executor) error {
		price, err := readPrice(ctx, x, "item-price")
		if err != nil {
			return err
		}
		total, err := readPrice(ctx, x, "total-price")
		if err != nil {
			return err
		}
		if want := price * float64(qty); math.Abs(total-want) > 0.005 {
			return fmt.Errorf("%w: total %.2f, want %.2f for quantity %d",
				executor.ErrAssertion, total, want, qty)
		}
		return nil
	}
}

func readPrice(ctx context.Context, x *executor.Executor, class string) (float64, error) {
	text, err := x.Text(ctx, byClass(class))
	if err != nil {
		return 0, err
	}
	v, err := parsePrice(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", executor.ErrAssertion, class, err)
	}
	return v, nil
}

// parsePrice reads a displayed amount such as "$1,299.50" or "12.00 €".
func parsePrice(s string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return 0, fmt.Errorf("no amount in %q", s)
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("no amount in %q", s)
	}
	return v, nil
}
