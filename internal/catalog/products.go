package catalog

import (
	"github.com/v0xg/shopcheck/internal/config"
	"github.com/v0xg/shopcheck/internal/executor"
	"github.com/v0xg/shopcheck/internal/scenario"
)

func openProductManagement() []executor.Action {
	return []executor.Action{
		waitFor(byLink("Product Management"), executor.Clickable, shortWait),
		click(byLink("Product Management")),
	}
}

// Products covers the seller's product form: create, validate, edit and
// delete.
func Products(cfg config.Config) []scenario.Scenario {
	return []scenario.Scenario{
		{
			Name:        "product-add",
			Suite:       "products",
			Description: "Add a new product",
			LoginAs:     scenario.Seller,
			Success:     "Product successfully added.",
			Failure:     "Add new product test failed.",
			Actions: append(openProductManagement(),
				waitFor(byName("add_product"), executor.Clickable, shortWait),
				click(byName("add_product")),
				typeInto(byName("product_name"), "New Product"),
				typeInto(byName("product_price"), "100"),
				typeInto(byName("product_description"), "This is a new product."),
				executor.Action{Type: executor.Upload, Target: byName("product_image"), Files: []string{cfg.ProductImage}},
				typeInto(byName("product_category"), "Electronics"),
				click(byName("submit_product")),
				waitFor(byClass("product-list"), executor.Present, shortWait),
				assertText(byClass("product-list"), executor.TextContains, "New Product"),
			),
		},
		{
			Name:        "product-missing-name",
			Suite:       "products",
			Description: "Add product with missing details",
			LoginAs:     scenario.Seller,
			Success:     "Validation message for missing name verified.",
			Failure:     "Add product with missing details test failed.",
			Actions: append(openProductManagement(),
				waitFor(byName("add_product"), executor.Clickable, shortWait),
				click(byName("add_product")),
				typeInto(byName("product_price"), "100"),
				typeInto(byName("product_description"), "This is a new product."),
				click(byName("submit_product")),
				waitFor(byClass("validation-message"), executor.Present, shortWait),
				assertText(byClass("validation-message"), executor.TextContains, "Product name is required"),
			),
		},
		{
			Name:        "product-edit",
			Suite:       "products",
			Description: "Edit an existing product",
			LoginAs:     scenario.Seller,
			Success:     "Product edited successfully.",
			Failure:     "Edit product test failed.",
			Actions: append(openProductManagement(),
				waitFor(byName("edit_product"), executor.Clickable, shortWait),
				click(byName("edit_product")),
				replace(byName("product_name"), "Updated Product Name"),
				replace(byName("product_price"), "120"),
				replace(byName("product_description"), "Updated description for the product."),
				click(byName("submit_product")),
				waitFor(byClass("product-list"), executor.Present, shortWait),
				assertText(byClass("product-list"), executor.TextContains, "Updated Product Name"),
			),
		},
		{
			Name:        "product-delete",
			Suite:       "products",
			Description: "Delete a product and confirm deletion",
			LoginAs:     scenario.Seller,
			Success:     "Product deleted successfully.",
			Failure:     "Delete product test failed.",
			Actions: append(openProductManagement(),
				waitFor(byName("delete_product"), executor.Clickable, shortWait),
				click(byName("delete_product")),
				waitFor(byName("confirm_delete"), executor.Clickable, shortWait),
				click(byName("confirm_delete")),
				waitFor(byClass("product-list"), executor.Present, shortWait),
				assertText(byClass("product-list"), executor.TextNotContains, "Updated Product Name"),
			),
		},
	}
}
