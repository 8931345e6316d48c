package match

import (
	"strings"

	"github.com/pokemon-tcg-ai/cardsync/internal/normalize"
)

// namePatterns pairs well-known English card names with their Japanese
// renderings. The pattern stage uses these for cards whose names translate
// rather than transliterate (trainers and energies especially), where edit
// distance alone is useless.
var namePatterns = []struct {
	en string
	ja []string
}{
	// Trainers
	{"professor's research", []string{"博士の研究"}},
	{"boss's orders", []string{"ボスの指令"}},
	{"quick ball", []string{"クイックボール"}},
	{"ultra ball", []string{"ハイパーボール"}},
	{"professor oak", []string{"オーキド博士"}},

	// Energies
	{"basic energy", []string{"基本エネルギー"}},
	{"double colorless energy", []string{"ダブル無色エネルギー"}},
}

// aliasNameScore is the name-signal value a dictionary alias pair asserts.
// Below exact equality, since the alias list links names, not printings.
const aliasNameScore = 0.8

// patternEvidence reports whether a Japanese source record and an English
// target correspond under the pattern heuristics, and the name-signal floor
// that correspondence justifies. A dictionary alias pair asserts the names
// correspond; a shared variant token (ex, GX, VMAX, ...) asserts nothing
// about the name, so those pairs must earn their score from the other
// signals.
func patternEvidence(src, tgt normalize.Normalized) (float64, bool) {
	for _, p := range namePatterns {
		if !strings.Contains(tgt.Name, p.en) {
			continue
		}
		for _, ja := range p.ja {
			if strings.Contains(src.Name, normalize.Fold(ja)) {
				return aliasNameScore, true
			}
		}
	}
	if sharesVariant(src.Variants, tgt.Variants) {
		return 0, true
	}
	return 0, false
}

func sharesVariant(a, b []string) bool {
	for _, va := range a {
		for _, vb := range b {
			if va == vb {
				return true
			}
		}
	}
	return false
}
