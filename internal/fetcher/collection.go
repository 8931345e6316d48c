package fetcher

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/pokemon-tcg-ai/cardsync/internal/model"
)

// collectionEnvelope is the wrapped form some collection files use.
type collectionEnvelope struct {
	Cards []model.Card `json:"cards"`
}

// LoadCards reads a card collection file. Both layouts in the wild are
// accepted: a bare JSON array, or an object with a "cards" key.
func LoadCards(path string) ([]model.Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "collection: read %s", path)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var cards []model.Card
		if err := json.Unmarshal(trimmed, &cards); err != nil {
			return nil, eris.Wrapf(err, "collection: parse %s", path)
		}
		return cards, nil
	}

	var env collectionEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, eris.Wrapf(err, "collection: parse %s", path)
	}
	return env.Cards, nil
}

// SaveCards writes a card collection as a bare JSON array, creating parent
// directories as needed. Japanese names must survive byte-for-byte, so HTML
// escaping is off.
func SaveCards(path string, cards []model.Card) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "collection: create dir %s", dir)
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cards); err != nil {
		return eris.Wrapf(err, "collection: encode %s", path)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return eris.Wrapf(err, "collection: write %s", path)
	}
	return nil
}
