// Package normalize builds comparison projections of scraped card records.
// The projection is used only for matching; original records are never
// mutated. Missing or unparsable fields become unknown, and unknown fields
// contribute zero evidence during scoring rather than false agreement.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/pokemon-tcg-ai/cardsync/internal/model"
)

// Normalized is the comparison shape of one card record.
type Normalized struct {
	// Name is the folded display name; MatchName additionally has variant
	// suffixes (ex, GX, V, ...) stripped for similarity comparison.
	Name      string
	MatchName string
	// Variants holds the canonical variant tokens found on the name,
	// in strip order ("ex", "gx", "v", "vmax", "vstar", "break",
	// "prime", "tag team").
	Variants []string

	Category      model.Category
	CategoryKnown bool

	HP      int
	HPKnown bool

	Type      string
	TypeKnown bool

	// Set is the English-side set code; Japanese records are mapped
	// through the set table. Number is the leading numeric component of
	// the card number.
	Set      string
	SetKnown bool
	Number   string
}

// HasKey reports whether the record has enough identity to take part in
// exact-key matching.
func (n Normalized) HasKey() bool {
	return n.SetKnown && n.Number != ""
}

var foldMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold canonicalizes text for comparison: trims, lowercases, converts
// full-width forms to half-width, strips combining marks (Pokémon→pokemon)
// and collapses runs of whitespace.
func Fold(s string) string {
	s = width.Fold.String(s)
	if out, _, err := transform.String(foldMarks, s); err == nil {
		s = out
	}
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), " ")
}

type variantToken struct {
	token     string
	canonical string
}

// variantTokens in strip order: longer tokens first so "vmax" is not eaten
// as "v". Katakana aliases map to the same canonical token as their English
// counterpart. Tokens are stored folded, since StripVariants only ever sees
// folded names and Fold strips kana voicing marks (プ→フ).
var variantTokens = foldTokens([]variantToken{
	{"tag team", "tag team"},
	{"タッグチーム", "tag team"},
	{"vstar", "vstar"},
	{"vmax", "vmax"},
	{"break", "break"},
	{"ブレイク", "break"},
	{"prime", "prime"},
	{"プライム", "prime"},
	{"gx", "gx"},
	{"ex", "ex"},
	{"v", "v"},
})

func foldTokens(tokens []variantToken) []variantToken {
	for i := range tokens {
		tokens[i].token = Fold(tokens[i].token)
	}
	return tokens
}

// StripVariants removes trailing variant tokens from a folded name and
// returns the canonical tokens found. Japanese names attach the token
// directly (リザードンex), so a token is also stripped without a separating
// space when the rune before it is non-ASCII.
func StripVariants(name string) (string, []string) {
	var found []string
	for changed := true; changed; {
		changed = false
		for _, vt := range variantTokens {
			if name == vt.token {
				// Never strip the whole name away.
				continue
			}
			if strings.HasSuffix(name, " "+vt.token) {
				name = strings.TrimSpace(strings.TrimSuffix(name, vt.token))
				found = append(found, vt.canonical)
				changed = true
				continue
			}
			if strings.HasSuffix(name, vt.token) {
				head := strings.TrimSuffix(name, vt.token)
				r := lastRune(head)
				if r > unicode.MaxASCII {
					name = strings.TrimSpace(head)
					found = append(found, vt.canonical)
					changed = true
				}
			}
		}
	}
	return name, found
}

func lastRune(s string) rune {
	var last rune
	for _, r := range s {
		last = r
	}
	return last
}

var digits = regexp.MustCompile(`\d+`)

// ParseNumber extracts the leading numeric component of a card number,
// tolerating formats like "125", "125a", "125/197".
func ParseNumber(s string) string {
	return digits.FindString(s)
}

// MalformedReason reports why a record cannot take part in matching, or ""
// if it can. Records missing a name or a category are skipped per-record,
// never aborting the run.
func MalformedReason(c model.Card) string {
	if c.Name == "" && c.NameJA == "" {
		return "missing name"
	}
	if c.Category == "" {
		return "missing category"
	}
	return ""
}

// English builds the comparison projection of an English card record.
func English(c model.Card, table SetTable) Normalized {
	n := Normalized{
		Category:      c.Category,
		CategoryKnown: knownCategory(c.Category),
	}
	n.Name = Fold(c.Name)
	n.MatchName, n.Variants = StripVariants(n.Name)
	if c.HP.Valid {
		n.HP = c.HP.Int
		n.HPKnown = true
	}
	if c.Type != "" {
		n.Type = Fold(c.Type)
		n.TypeKnown = true
	}
	if c.Set != "" {
		n.Set = c.Set
		n.SetKnown = true
	}
	n.Number = ParseNumber(c.Number)
	return n
}

// Japanese builds the comparison projection of a Japanese card record,
// mapping its set code onto the English side of the table. Unknown set codes
// pass through unchanged so exact-key matching still works for sets the
// table does not list yet.
func Japanese(c model.Card, table SetTable) Normalized {
	n := Normalized{
		Category:      c.Category,
		CategoryKnown: knownCategory(c.Category),
	}

	name := c.NameJA
	if name == "" {
		name = c.Name
	}
	n.Name = Fold(name)
	n.MatchName, n.Variants = StripVariants(n.Name)

	if c.HP.Valid {
		n.HP = c.HP.Int
		n.HPKnown = true
	}

	// The Japanese scraper already maps type glyphs to English names;
	// fall back to the raw Japanese type when only that is present.
	typ := c.Type
	if typ == "" {
		typ = c.TypeJA
	}
	if typ != "" {
		n.Type = Fold(typ)
		n.TypeKnown = true
	}

	if set := japaneseSetCode(c); set != "" {
		n.Set, _ = table.ToEnglish(set)
		n.SetKnown = true
	}
	n.Number = japaneseNumber(c)
	return n
}

// japaneseSetCode finds the Japanese set code on a record: the explicit set
// field when present, otherwise the prefix of japanese_id ("sv3-101"→"sv3").
func japaneseSetCode(c model.Card) string {
	if c.Set != "" {
		return c.Set
	}
	if i := strings.IndexByte(c.JapaneseID, '-'); i > 0 {
		return c.JapaneseID[:i]
	}
	return ""
}

func japaneseNumber(c model.Card) string {
	if c.Number != "" {
		return ParseNumber(c.Number)
	}
	id := c.JapaneseID
	if i := strings.LastIndexByte(id, '-'); i >= 0 {
		id = id[i+1:]
	}
	return ParseNumber(id)
}

func knownCategory(c model.Category) bool {
	switch c {
	case model.CategoryPokemon, model.CategoryTrainer, model.CategoryEnergy:
		return true
	}
	return false
}
