package executor

import (
	"context"
	"fmt"
	"time"
)

// ActionType names one kind of step.
type ActionType string

const (
	Navigate ActionType = "navigate"
	Refresh  ActionType = "refresh"
	Wait     ActionType = "wait"
	Click    ActionType = "click"
	Type     ActionType = "type"
	Clear    ActionType = "clear"
	Upload   ActionType = "upload"
	Assert   ActionType = "assert"
	Viewport ActionType = "viewport"
	Check    ActionType = "check"
)

// Condition is what a wait polls for.
type Condition string

const (
	Present   Condition = "present"
	Visible   Condition = "visible"
	Clickable Condition = "clickable"
	Gone      Condition = "gone" // hidden or detached
)

// AssertKind selects the comparison an assert step makes.
type AssertKind string

const (
	TitleContains     AssertKind = "title-contains"
	URLContains       AssertKind = "url-contains"
	SourceContains    AssertKind = "source-contains"
	SourceNotContains AssertKind = "source-not-contains"
	TextContains      AssertKind = "text-contains"
	TextNotContains   AssertKind = "text-not-contains"
	AnyTextContains   AssertKind = "any-text-contains"
	CountAtLeast      AssertKind = "count-at-least"
	CountAtMost       AssertKind = "count-at-most"
)

// DialogPolicy tells a click what to do about a JavaScript dialog it opens.
type DialogPolicy string

const (
	DialogNone            DialogPolicy = ""
	DialogAccept          DialogPolicy = "accept"
	DialogAcceptIfPresent DialogPolicy = "accept-if-present"
)

// CheckFunc is a computed assertion that cannot be expressed declaratively.
type CheckFunc func(ctx context.Context, x *Executor) error

// Action represents a single step of a scenario.
type Action struct {
	Type    ActionType    `yaml:"action" json:"action"`
	Target  *Locator      `yaml:"target,omitempty" json:"target,omitempty"`
	URL     string        `yaml:"url,omitempty" json:"url,omitempty"`         // navigate; relative to the base URL
	Text    string        `yaml:"text,omitempty" json:"text,omitempty"`       // type input, or expected substring
	Clear   bool          `yaml:"clear,omitempty" json:"clear,omitempty"`     // type: empty the field first
	Files   []string      `yaml:"files,omitempty" json:"files,omitempty"`     // upload
	Until   Condition     `yaml:"until,omitempty" json:"until,omitempty"`     // wait
	Assert  AssertKind    `yaml:"assert,omitempty" json:"assert,omitempty"`   // assert
	Count   int           `yaml:"count,omitempty" json:"count,omitempty"`     // count assertions
	Width   int           `yaml:"width,omitempty" json:"width,omitempty"`     // viewport
	Height  int           `yaml:"height,omitempty" json:"height,omitempty"`   // viewport
	Dialog  DialogPolicy  `yaml:"dialog,omitempty" json:"dialog,omitempty"`   // click
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"` // overrides the executor default
	Note    string        `yaml:"note,omitempty" json:"note,omitempty"`       // logged once the step succeeds

	Check CheckFunc `yaml:"-" json:"-"`
}

// Validate reports whether the action carries what its type needs.
func (a Action) Validate() error {
	needsTarget := func() error {
		if a.Target == nil {
			return fmt.Errorf("%s needs a target", a.Type)
		}
		return a.Target.Validate()
	}

	switch a.Type {
	case Navigate:
		if a.URL == "" {
			return fmt.Errorf("navigate needs a url")
		}
	case Refresh:
	case Wait:
		switch a.Until {
		case "", Present, Visible, Clickable, Gone:
		default:
			return fmt.Errorf("unknown wait condition %q", a.Until)
		}
		return needsTarget()
	case Click:
		switch a.Dialog {
		case DialogNone, DialogAccept, DialogAcceptIfPresent:
		default:
			return fmt.Errorf("unknown dialog policy %q", a.Dialog)
		}
		return needsTarget()
	case Type:
		return needsTarget()
	case Clear:
		return needsTarget()
	case Upload:
		if len(a.Files) == 0 {
			return fmt.Errorf("upload needs at least one file")
		}
		return needsTarget()
	case Assert:
		switch a.Assert {
		case TitleContains, URLContains, SourceContains, SourceNotContains:
			if a.Text == "" {
				return fmt.Errorf("%s needs text", a.Assert)
			}
		case TextContains, TextNotContains, AnyTextContains:
			if a.Text == "" {
				return fmt.Errorf("%s needs text", a.Assert)
			}
			return needsTarget()
		case CountAtLeast, CountAtMost:
			if a.Count < 0 {
				return fmt.Errorf("%s needs a non-negative count", a.Assert)
			}
			return needsTarget()
		default:
			return fmt.Errorf("unknown assertion %q", a.Assert)
		}
	case Viewport:
		if a.Width <= 0 || a.Height <= 0 {
			return fmt.Errorf("viewport needs a positive size, got %dx%d", a.Width, a.Height)
		}
	case Check:
		if a.Check == nil {
			return fmt.Errorf("check needs a function")
		}
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
	return nil
}

// String describes the action for logs.
func (a Action) String() string {
	switch a.Type {
	case Navigate:
		return fmt.Sprintf("navigate → %s", a.URL)
	case Wait:
		return fmt.Sprintf("wait → %s %s", a.Target, a.condition())
	case Type:
		return fmt.Sprintf("type → %s (text: %q)", a.Target, a.Text)
	case Assert:
		if a.Target != nil {
			return fmt.Sprintf("assert %s → %s %q", a.Assert, a.Target, a.Text)
		}
		return fmt.Sprintf("assert %s %q", a.Assert, a.Text)
	case Viewport:
		return fmt.Sprintf("viewport → %dx%d", a.Width, a.Height)
	case Refresh, Check:
		return string(a.Type)
	default:
		return fmt.Sprintf("%s → %s", a.Type, a.Target)
	}
}

func (a Action) condition() Condition {
	if a.Until == "" {
		return Present
	}
	return a.Until
}
