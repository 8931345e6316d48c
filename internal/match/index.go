// Package match implements the cross-language reconciliation engine: a
// candidate index over the English collection, a blended similarity scorer,
// the staged matcher with its claim registry, and the merger that produces
// the enriched output collection.
package match

import (
	"sort"

	"go.uber.org/zap"

	"github.com/pokemon-tcg-ai/cardsync/internal/model"
	"github.com/pokemon-tcg-ai/cardsync/internal/normalize"
)

// Key identifies a card by English-side set code and leading card number.
type Key struct {
	Set    string
	Number string
}

// Index holds lookup structures over the English target collection. It is
// built once per run; candidates may include false positives, the scorer
// filters them.
type Index struct {
	cards   []model.Card
	norm    []normalize.Normalized
	exact   map[Key]int
	byRune  map[rune][]int
	byCat   map[model.Category][]int
	all     []int
	skipped int
}

// NewIndex builds the candidate index over the target collection. Malformed
// target records are excluded and counted, never fatal.
func NewIndex(cards []model.Card, table normalize.SetTable) *Index {
	ix := &Index{
		cards:  cards,
		norm:   make([]normalize.Normalized, len(cards)),
		exact:  make(map[Key]int, len(cards)),
		byRune: make(map[rune][]int),
		byCat:  make(map[model.Category][]int),
	}

	for i, c := range cards {
		if reason := normalize.MalformedReason(c); reason != "" {
			ix.skipped++
			zap.L().Warn("index: skipping malformed target record",
				zap.String("id", c.ID),
				zap.String("reason", reason),
			)
			continue
		}

		n := normalize.English(c, table)
		ix.norm[i] = n
		ix.all = append(ix.all, i)

		if n.HasKey() {
			k := Key{Set: n.Set, Number: n.Number}
			if _, dup := ix.exact[k]; !dup {
				ix.exact[k] = i
			}
		}
		if n.MatchName != "" {
			r := firstRune(n.MatchName)
			ix.byRune[r] = append(ix.byRune[r], i)
		}
		if n.CategoryKnown {
			ix.byCat[n.Category] = append(ix.byCat[n.Category], i)
		}
	}

	return ix
}

// Len returns the number of indexed target records.
func (ix *Index) Len() int { return len(ix.all) }

// Skipped returns how many target records were excluded as malformed.
func (ix *Index) Skipped() int { return ix.skipped }

// Card returns the target record at position i with its projection.
func (ix *Index) Card(i int) (model.Card, normalize.Normalized) {
	return ix.cards[i], ix.norm[i]
}

// LookupExact returns the position of the target with the given key.
func (ix *Index) LookupExact(k Key) (int, bool) {
	i, ok := ix.exact[k]
	return i, ok
}

// Candidates returns target positions worth scoring against the source
// projection: the first-rune name bucket unioned with the category bucket.
// Cross-language pairs rarely share a first rune, so the category bucket
// carries most of the load; when the category is unknown every target is a
// candidate. Order is ascending position, which makes tie-breaking
// deterministic.
func (ix *Index) Candidates(n normalize.Normalized) []int {
	if !n.CategoryKnown {
		return ix.all
	}

	seen := make(map[int]bool)
	var out []int
	add := func(idxs []int) {
		for _, i := range idxs {
			if !seen[i] {
				seen[i] = true
				out = append(out, i)
			}
		}
	}

	if n.MatchName != "" {
		add(ix.byRune[firstRune(n.MatchName)])
	}
	add(ix.byCat[n.Category])

	sort.Ints(out)
	return out
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}
