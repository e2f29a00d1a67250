//go:build e2e

// Package e2e runs the scenarios in a real Chrome against the local test
// storefront.
//
// The tests are kept out of the default build by a tag and need a Chrome or
// Chromium binary (rod downloads one when none is found):
//
//	go test -tags=e2e ./e2e/...
//
// Each test starts its own storefront on a random port and every scenario
// launches its own browser.
package e2e
