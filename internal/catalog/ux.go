package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/v0xg/shopcheck/internal/config"
	"github.com/v0xg/shopcheck/internal/executor"
	"github.com/v0xg/shopcheck/internal/linkcheck"
	"github.com/v0xg/shopcheck/internal/scenario"
)

const navWait = 30 * time.Second

// Devices are the viewports the responsiveness scenario walks through.
var Devices = []struct {
	Name          string
	Width, Height int
}{
	{"desktop", 1920, 1080},
	{"tablet", 768, 1024},
	{"mobile", 375, 667},
}

// UX covers navigation, responsiveness, broken links, popups and error
// messages.
func UX(config.Config) []scenario.Scenario {
	navigation := []executor.Action{
		navigate(scenario.LoginPath),
		waitFor(byName("username"), executor.Visible, navWait),
		click(byName("login")),
	}
	for _, link := range []string{"Product Listing", "Cart", "Checkout", "Order History"} {
		navigation = append(navigation,
			waitFor(byLink(link), executor.Visible, navWait),
			click(byLink(link)),
		)
	}

	var responsive []executor.Action
	for _, d := range Devices {
		responsive = append(responsive,
			executor.Action{Type: executor.Viewport, Width: d.Width, Height: d.Height},
			navigate(scenario.LoginPath),
			note(assertPage(executor.TitleContains, "LazyLizard"),
				fmt.Sprintf("Responsive test passed at resolution %dx%d", d.Width, d.Height)),
		)
	}

	return []scenario.Scenario{
		{
			Name:        "ux-navigation",
			Suite:       "ux",
			Description: "Navigation across pages",
			Success:     "Successfully navigated through all pages.",
			Failure:     "Navigation test failed.",
			Actions:     navigation,
		},
		{
			Name:        "ux-responsiveness",
			Suite:       "ux",
			Description: "Responsiveness on different devices",
			Success:     "Successfully tested responsiveness on desktop, tablet, and mobile views.",
			Actions:     responsive,
		},
		{
			Name:        "ux-broken-links",
			Suite:       "ux",
			Description: "Broken links and missing images",
			Success:     "No broken links or missing images.",
			Actions: []executor.Action{
				navigate("/en/"),
				{Type: executor.Check, Check: noBrokenLinks, Timeout: 2 * time.Minute},
			},
		},
		{
			Name:        "ux-buttons-menus-popups",
			Suite:       "ux",
			Description: "Buttons, menus, and popups functionality",
			Success:     "Buttons, menus, and popups function as expected.",
			Failure:     "Buttons, menus, and popups test failed.",
			Actions: []executor.Action{
				navigate(scenario.LoginPath),
				waitFor(byName("login"), executor.Clickable, shortWait),
				click(byName("login")),
				waitFor(byLink("Product Listing"), executor.Clickable, shortWait),
				{
					Type:    executor.Click,
					Target:  byLink("Product Listing"),
					Dialog:  executor.DialogAcceptIfPresent,
					Timeout: 5 * time.Second,
				},
			},
		},
		{
			Name:        "ux-error-messages",
			Suite:       "ux",
			Description: "Error messages for incorrect user actions",
			Success:     "Error message for incorrect login credentials verified.",
			Failure:     "Failed to verify error message.",
			Actions: []executor.Action{
				navigate(scenario.LoginPath),
				waitFor(byName("username"), executor.Present, shortWait),
				typeInto(byName("username"), "wronguser"),
				typeInto(byName("password"), "wrongpass"),
				click(byName("login")),
				waitFor(byClass("error-message"), executor.Visible, shortWait),
				check(loginErrorShown),
			},
		},
	}
}

func loginErrorShown(ctx context.Context, x *executor.Executor) error {
	text, err := x.Text(ctx, byClass("error-message"))
	if err != nil {
		return err
	}
	if strings.Contains(text, "Invalid username") || strings.Contains(strings.ToLower(text), "password") {
		return nil
	}
	return fmt.Errorf("%w: error message %q does not mention the credentials", executor.ErrAssertion, text)
}

// noBrokenLinks HEAD-checks every same-host link and image on the current
// page.
func noBrokenLinks(ctx context.Context, x *executor.Executor) error {
	sess := x.Session()
	html, err := sess.HTML()
	if err != nil {
		return err
	}
	current, err := sess.URL()
	if err != nil {
		return err
	}
	pageURL, err := url.Parse(current)
	if err != nil {
		return fmt.Errorf("parsing page url %q: %w", current, err)
	}

	links, err := linkcheck.Collect(strings.NewReader(html), pageURL)
	if err != nil {
		return err
	}
	results := linkcheck.NewChecker(sess.Base(), x.Logger()).Check(ctx, links)

	broken := linkcheck.Broken(results)
	if len(broken) == 0 {
		return nil
	}
	lines := make([]string, 0, len(broken))
	for _, r := range broken {
		lines = append(lines, r.String())
	}
	return fmt.Errorf("%w: %d of %d references broken:\n  %s",
		executor.ErrAssertion, len(broken), len(results), strings.Join(lines, "\n  "))
}
