package browser

import (
	"fmt"
	"time"
)

// PageMap summarizes the interactive surface of the current page.
type PageMap struct {
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	Elements   []Element `json:"elements"`
	Navigation []NavItem `json:"navigation"`
}

// Element is an interactive element and the attributes a locator can use.
type Element struct {
	Tag         string `json:"tag"`
	Kind        string `json:"kind"` // button, link, select, or the input type
	Name        string `json:"name,omitempty"`
	ID          string `json:"id,omitempty"`
	Class       string `json:"class,omitempty"`
	Text        string `json:"text,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
}

// NavItem is a link found in the page's navigation areas.
type NavItem struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

const elementsJS = `() => {
	const out = [];
	const visible = el => !!el.offsetParent;
	const trim = s => (s || '').trim().replace(/\s+/g, ' ').slice(0, 60);
	const kind = el => {
		const tag = el.tagName.toLowerCase();
		if (tag === 'a') return 'link';
		if (tag === 'button' || el.getAttribute('role') === 'button') return 'button';
		if (tag === 'select' || tag === 'textarea') return tag;
		return el.type || 'text';
	};
	document.querySelectorAll('a[href], button, [role="button"], input:not([type="hidden"]), textarea, select').forEach(el => {
		if (!visible(el)) return;
		out.push({
			tag: el.tagName.toLowerCase(),
			kind: kind(el),
			name: el.getAttribute('name') || '',
			id: el.id || '',
			class: typeof el.className === 'string' ? el.className.trim() : '',
			text: trim(el.textContent || el.value),
			placeholder: el.placeholder || ''
		});
	});
	return out;
}`

const navigationJS = `() => {
	const seen = new Set();
	const out = [];
	document.querySelectorAll('nav a, header a, [role="navigation"] a').forEach(el => {
		const href = el.getAttribute('href');
		if (!el.offsetParent || !href || href === '#' || href.startsWith('javascript:') || seen.has(href)) return;
		seen.add(href);
		out.push({text: (el.textContent || '').trim().slice(0, 30), href: href});
	});
	return out;
}`

// PageMap waits briefly for the page to settle and extracts its interactive
// elements and navigation links.
func (s *Session) PageMap() (*PageMap, error) {
	if err := s.page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("waiting for load: %w", err)
	}
	s.WaitIdle(5 * time.Second)

	info, err := s.page.Info()
	if err != nil {
		return nil, fmt.Errorf("reading page info: %w", err)
	}

	res, err := s.page.Eval(elementsJS)
	if err != nil {
		return nil, fmt.Errorf("extracting elements: %w", err)
	}
	var elements []Element
	if err := res.Value.Unmarshal(&elements); err != nil {
		return nil, fmt.Errorf("decoding elements: %w", err)
	}

	res, err = s.page.Eval(navigationJS)
	if err != nil {
		return nil, fmt.Errorf("extracting navigation: %w", err)
	}
	var nav []NavItem
	if err := res.Value.Unmarshal(&nav); err != nil {
		return nil, fmt.Errorf("decoding navigation: %w", err)
	}

	return &PageMap{
		URL:        info.URL,
		Title:      info.Title,
		Elements:   elements,
		Navigation: nav,
	}, nil
}

// Selector returns a CSS selector for e, preferring name, then id, then the
// first class.
func (e Element) Selector() string {
	switch {
	case e.Name != "":
		return fmt.Sprintf("%s[name=%q]", e.Tag, e.Name)
	case e.ID != "":
		return "#" + e.ID
	case e.Class != "":
		cls := e.Class
		for i, r := range cls {
			if r == ' ' || r == '\t' {
				cls = cls[:i]
				break
			}
		}
		return e.Tag + "." + cls
	default:
		return e.Tag
	}
}
