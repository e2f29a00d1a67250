package executor

import (
	"fmt"
	"strings"
	"unicode"
)

// Locator identifies elements on a page. Exactly one field is set.
type Locator struct {
	Name  string `yaml:"name,omitempty" json:"name,omitempty"`
	Class string `yaml:"class,omitempty" json:"class,omitempty"`
	CSS   string `yaml:"css,omitempty" json:"css,omitempty"`
	Tag   string `yaml:"tag,omitempty" json:"tag,omitempty"`
	Link  string `yaml:"link,omitempty" json:"link,omitempty"` // exact visible link text
	XPath string `yaml:"xpath,omitempty" json:"xpath,omitempty"`
}

func ByName(v string) *Locator  { return &Locator{Name: v} }
func ByClass(v string) *Locator { return &Locator{Class: v} }
func ByCSS(v string) *Locator   { return &Locator{CSS: v} }
func ByTag(v string) *Locator   { return &Locator{Tag: v} }
func ByLink(v string) *Locator  { return &Locator{Link: v} }
func ByXPath(v string) *Locator { return &Locator{XPath: v} }

// Heading matches an h1 whose text contains s.
func Heading(s string) *Locator {
	return ByXPath(fmt.Sprintf("//h1[contains(text(),%s)]", xpathLiteral(s)))
}

// Validate checks that exactly one strategy is set.
func (l *Locator) Validate() error {
	n := 0
	for _, v := range []string{l.Name, l.Class, l.CSS, l.Tag, l.Link, l.XPath} {
		if v != "" {
			n++
		}
	}
	if n != 1 {
		return fmt.Errorf("locator must set exactly one of name, class, css, tag, link, xpath (got %d)", n)
	}
	if strings.ContainsFunc(l.Class, unicode.IsSpace) {
		return fmt.Errorf("class %q must be a single class name", l.Class)
	}
	return nil
}

// Query translates the locator into either a CSS selector or an XPath
// expression; the other return value is empty.
func (l *Locator) Query() (css, xpath string) {
	switch {
	case l.Name != "":
		return "[name=" + cssString(l.Name) + "]", ""
	case l.Class != "":
		return "." + cssIdent(l.Class), ""
	case l.CSS != "":
		return l.CSS, ""
	case l.Tag != "":
		return l.Tag, ""
	case l.Link != "":
		return "", fmt.Sprintf("//a[normalize-space(.)=%s]", xpathLiteral(l.Link))
	default:
		return "", l.XPath
	}
}

func (l *Locator) String() string {
	if l == nil {
		return "<none>"
	}
	switch {
	case l.Name != "":
		return "name=" + l.Name
	case l.Class != "":
		return "class=" + l.Class
	case l.CSS != "":
		return "css=" + l.CSS
	case l.Tag != "":
		return "tag=" + l.Tag
	case l.Link != "":
		return "link=" + l.Link
	default:
		return "xpath=" + l.XPath
	}
}

// xpathLiteral quotes s for use inside an XPath expression.
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	for i, p := range parts {
		parts[i] = `"` + p + `"`
	}
	return "concat(" + strings.Join(parts, `, '"', `) + ")"
}

// cssIdent escapes s for use as a CSS identifier, following CSS.escape().
func cssIdent(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == 0:
			b.WriteRune('\uFFFD')
		case r < 0x20 || r == 0x7f,
			i == 0 && r >= '0' && r <= '9',
			i == 1 && r >= '0' && r <= '9' && runes[0] == '-':
			fmt.Fprintf(&b, "\\%x ", r)
		case i == 0 && r == '-' && len(runes) == 1:
			b.WriteString(`\-`)
		case r >= 0x80, r == '-', r == '_',
			r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}

// cssString quotes s as a double-quoted CSS string.
func cssString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"', r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, "\\%x ", r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
