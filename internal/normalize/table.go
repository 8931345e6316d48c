package normalize

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// SetTable maps English set codes to the Japanese set code printed on cards
// of the corresponding Japanese release. Several English sets collapse onto
// one Japanese code (the English release combines two Japanese expansions),
// so the reverse lookup returns the first code in stable order.
type SetTable map[string]string

// DefaultSetTable returns the built-in English↔Japanese set-code table.
func DefaultSetTable() SetTable {
	return SetTable{
		// Scarlet & Violet era
		"PAL": "sv1S", // Paldea Evolved
		"OBF": "sv3",  // Obsidian Flames
		"MEW": "sv2D", // 151
		"PAR": "sv1V", // Paradox Rift
		"TEF": "sv2P", // Temporal Forces

		// Sword & Shield era
		"BST": "S6",   // Battle Styles
		"CRE": "S7",   // Chilling Reign
		"EVS": "S7",   // Evolving Skies
		"CEL": "S8",   // Celebrations
		"BRS": "S9",   // Brilliant Stars
		"ASR": "S10",  // Astral Radiance
		"PGO": "S-P",  // Pokémon GO
		"LOR": "S11",  // Lost Origin
		"SIT": "S12",  // Silver Tempest
		"CRZ": "S12a", // Crown Zenith
	}
}

// LoadSetTable reads extra English→Japanese set-code pairs from a YAML file
// and merges them over the defaults. File entries win on conflict.
func LoadSetTable(path string) (SetTable, error) {
	t := DefaultSetTable()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "normalize: read set table %s", path)
	}

	var extra map[string]string
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, eris.Wrapf(err, "normalize: parse set table %s", path)
	}
	for en, ja := range extra {
		t[en] = ja
	}
	return t, nil
}

// ToJapanese maps an English set code to its Japanese counterpart.
// Unknown codes pass through unchanged with ok=false.
func (t SetTable) ToJapanese(en string) (string, bool) {
	if ja, ok := t[en]; ok {
		return ja, true
	}
	return en, false
}

// ToEnglish maps a Japanese set code back to an English set code. When more
// than one English set shares the Japanese code, the lexicographically first
// English code wins so runs stay deterministic.
func (t SetTable) ToEnglish(ja string) (string, bool) {
	best := ""
	for en, j := range t {
		if j != ja {
			continue
		}
		if best == "" || en < best {
			best = en
		}
	}
	if best == "" {
		return ja, false
	}
	return best, true
}
