package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/v0xg/shopcheck/internal/browser"
	"github.com/v0xg/shopcheck/internal/executor"
	"github.com/v0xg/shopcheck/internal/scenario"
)

// Drafter asks a provider for steps and turns the answer into a scenario.
type Drafter struct {
	provider Provider
	log      logrus.FieldLogger
}

// NewDrafter wraps p.
func NewDrafter(p Provider, log logrus.FieldLogger) *Drafter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Drafter{provider: p, log: log}
}

// Actions drafts the steps that fulfil request on the mapped page.
func (d *Drafter) Actions(ctx context.Context, pm *browser.PageMap, request string) ([]executor.Action, error) {
	pageMapJSON, err := json.MarshalIndent(pm, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal page map: %w", err)
	}

	d.log.WithFields(logrus.Fields{
		"provider": d.provider.Name(),
		"page":     pm.URL,
		"elements": len(pm.Elements),
	}).Info("Drafting steps")

	reply, err := d.provider.Complete(ctx, systemPrompt, buildUserPrompt(string(pageMapJSON), request))
	if err != nil {
		return nil, err
	}
	actions, err := parseActions(reply)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %w\nResponse: %s", d.provider.Name(), err, reply)
	}
	return actions, nil
}

// Scenario drafts a complete scenario that starts by opening the mapped page.
func (d *Drafter) Scenario(ctx context.Context, name string, pm *browser.PageMap, request string) (scenario.Scenario, error) {
	actions, err := d.Actions(ctx, pm, request)
	if err != nil {
		return scenario.Scenario{}, err
	}
	s := scenario.Scenario{
		Name:        name,
		Suite:       "drafted",
		Description: request,
		Actions:     append([]executor.Action{{Type: executor.Navigate, URL: pagePath(pm.URL)}}, actions...),
	}
	return s, s.Validate()
}

// pagePath reduces an absolute page URL to the path the scenario navigates
// to, so drafted files stay portable across base URLs.
func pagePath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return "/"
	}
	u.Scheme, u.Host, u.User, u.Fragment = "", "", nil, ""
	return u.String()
}

// parseActions reads the first JSON array in reply, tolerating surrounding
// prose or code fences, and validates every step.
func parseActions(reply string) ([]executor.Action, error) {
	start := strings.Index(reply, "[")
	if start == -1 {
		return nil, errors.New("no JSON array found in response")
	}
	var actions []executor.Action
	if err := json.NewDecoder(strings.NewReader(reply[start:])).Decode(&actions); err != nil {
		return nil, fmt.Errorf("decoding steps: %w", err)
	}
	if len(actions) == 0 {
		return nil, errors.New("model returned no steps")
	}
	for i, a := range actions {
		if a.Type == executor.Check {
			return nil, fmt.Errorf("step %d: check steps cannot be drafted", i+1)
		}
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return actions, nil
}
