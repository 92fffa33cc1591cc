package catalog

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Cascade is an ordered list of selector patterns for one logical
// field. Patterns are compiled once at build time; a pattern that does
// not compile is discarded, so resolution can never fail structurally.
type Cascade struct {
	Field    string
	matchers []cascadia.Selector
	raw      []string
}

func NewCascade(field string, selectors ...string) Cascade {
	c := Cascade{Field: field}
	for _, s := range selectors {
		sel, err := cascadia.Compile(s)
		if err != nil {
			continue
		}
		c.matchers = append(c.matchers, sel)
		c.raw = append(c.raw, s)
	}
	return c
}

// Len reports how many usable patterns the cascade holds.
func (c Cascade) Len() int { return len(c.matchers) }

// resolveText returns the trimmed text of the first pattern that
// matches an element with non-empty text. Earlier patterns win;
// whitespace-only text counts as no match.
func (c Cascade) resolveText(sel *goquery.Selection) (string, bool) {
	for _, m := range c.matchers {
		text := strings.TrimSpace(sel.FindMatcher(m).First().Text())
		if text != "" {
			return text, true
		}
	}
	return "", false
}

// resolveAttr returns the named attribute of the first pattern that
// matches an element carrying a non-empty value for it.
func (c Cascade) resolveAttr(sel *goquery.Selection, attr string) (string, bool) {
	for _, m := range c.matchers {
		var found string
		sel.FindMatcher(m).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
				found = strings.TrimSpace(v)
				return false
			}
			return true
		})
		if found != "" {
			return found, true
		}
	}
	return "", false
}

// matches is the existence test used for boolean flags.
func (c Cascade) matches(sel *goquery.Selection) bool {
	for _, m := range c.matchers {
		if sel.FindMatcher(m).Length() > 0 {
			return true
		}
	}
	return false
}
