// Package catalog holds the storefront scenarios: authentication, cart,
// checkout, seller product management, orders, admin moderation and UI/UX.
package catalog

import (
	"time"

	"github.com/v0xg/shopcheck/internal/config"
	"github.com/v0xg/shopcheck/internal/executor"
	"github.com/v0xg/shopcheck/internal/scenario"
)

const (
	shortWait = 10 * time.Second
	longWait  = 20 * time.Second
)

// All returns every catalog scenario, credentials resolved from cfg.
func All(cfg config.Config) []scenario.Scenario {
	var out []scenario.Scenario
	for _, suite := range [][]scenario.Scenario{
		Auth(cfg),
		Cart(cfg),
		Checkout(cfg),
		Products(cfg),
		Orders(cfg),
		Admin(cfg),
		UX(cfg),
	} {
		out = append(out, suite...)
	}
	return out
}

// Registry indexes All.
func Registry(cfg config.Config) (*scenario.Registry, error) {
	return scenario.NewRegistry(All(cfg)...)
}

func navigate(path string) executor.Action {
	return executor.Action{Type: executor.Navigate, URL: path}
}

func waitFor(loc *executor.Locator, until executor.Condition, timeout time.Duration) executor.Action {
	return executor.Action{Type: executor.Wait, Target: loc, Until: until, Timeout: timeout}
}

func click(loc *executor.Locator) executor.Action {
	return executor.Action{Type: executor.Click, Target: loc}
}

func typeInto(loc *executor.Locator, text string) executor.Action {
	return executor.Action{Type: executor.Type, Target: loc, Text: text}
}

func replace(loc *executor.Locator, text string) executor.Action {
	return executor.Action{Type: executor.Type, Target: loc, Text: text, Clear: true}
}

func assertPage(kind executor.AssertKind, text string) executor.Action {
	return executor.Action{Type: executor.Assert, Assert: kind, Text: text}
}

func assertText(loc *executor.Locator, kind executor.AssertKind, text string) executor.Action {
	return executor.Action{Type: executor.Assert, Assert: kind, Target: loc, Text: text}
}

func assertCount(loc *executor.Locator, kind executor.AssertKind, n int) executor.Action {
	return executor.Action{Type: executor.Assert, Assert: kind, Target: loc, Count: n}
}

func check(fn executor.CheckFunc) executor.Action {
	return executor.Action{Type: executor.Check, Check: fn}
}

func note(a executor.Action, msg string) executor.Action {
	a.Note = msg
	return a
}

var (
	byName  = executor.ByName
	byClass = executor.ByClass
	byLink  = executor.ByLink
)
