// Package scrape extracts card records from the two card databases: the
// Limitless TCG site for English printings and pokemon-card.com for Japanese
// ones. Both sites serve plain server-rendered HTML, so extraction is
// regex-based against the stable class names in their markup.
package scrape

import (
	"html"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// CardRef identifies one English card to fetch.
type CardRef struct {
	Set    string
	Number string
}

var cardRefPatterns = []*regexp.Regexp{
	// Direct format: OBF-125, OBF 125
	regexp.MustCompile(`([A-Z]{2,4})[-\s](\d+[a-z]?)`),
	// Parentheses format: Charizard ex (OBF 125)
	regexp.MustCompile(`\(([A-Z]{2,4})\s+(\d+[a-z]?)\)`),
}

// ParseCardRef parses a card reference like "OBF-125", "OBF 125" or
// "Charizard ex (OBF 125)".
func ParseCardRef(s string) (CardRef, error) {
	for _, p := range cardRefPatterns {
		if m := p.FindStringSubmatch(s); m != nil {
			return CardRef{Set: m[1], Number: m[2]}, nil
		}
	}
	return CardRef{}, eris.Errorf("scrape: cannot parse card reference %q", s)
}

var (
	tagRe = regexp.MustCompile(`<[^>]*>`)
	wsRe  = regexp.MustCompile(`\s+`)
)

// stripTags flattens an HTML fragment to its text content.
func stripTags(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.TrimSpace(wsRe.ReplaceAllString(s, " "))
}

// elementRe matches the inner HTML of elements of one tag carrying the
// class. Matching closes on the same tag, so container divs whose children
// are p/span elements extract whole. Elements nesting their own tag are not
// handled; the markup targeted here never does that.
func elementRe(tag, class string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)<` + tag + `[^>]*class="[^"]*` +
		regexp.QuoteMeta(class) + `[^"]*"[^>]*>(.*?)</` + tag + `>`)
}

// firstElement returns the text of the first matching element.
func firstElement(page, tag, class string) string {
	if m := elementRe(tag, class).FindStringSubmatch(page); m != nil {
		return stripTags(m[1])
	}
	return ""
}

// elements returns the raw inner HTML of every matching element.
func elements(page, tag, class string) []string {
	var out []string
	for _, m := range elementRe(tag, class).FindAllStringSubmatch(page, -1) {
		out = append(out, m[1])
	}
	return out
}

var h1Re = regexp.MustCompile(`(?s)<h1[^>]*>(.*?)</h1>`)

// pageTitle returns the text of the page's first h1.
func pageTitle(page string) string {
	if m := h1Re.FindStringSubmatch(page); m != nil {
		return stripTags(m[1])
	}
	return ""
}
