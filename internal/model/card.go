package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Category classifies a card. Every card is exactly one of these.
type Category string

const (
	CategoryPokemon Category = "pokemon"
	CategoryTrainer Category = "trainer"
	CategoryEnergy  Category = "energy"
)

// Regulation marks for Japanese cards. XY is the legacy mark.
const (
	RegulationH  = "H"
	RegulationI  = "I"
	RegulationJ  = "J"
	RegulationXY = "XY"
)

// FlexInt is an int that tolerates the noise in scraped JSON: numbers,
// numeric strings ("330"), strings with trailing junk ("330+"), and null all
// decode without error. Valid reports whether a usable value was present, so
// a missing HP is distinguishable from HP 0.
type FlexInt struct {
	Int   int
	Valid bool
}

// FlexIntOf returns a valid FlexInt holding v.
func FlexIntOf(v int) FlexInt {
	return FlexInt{Int: v, Valid: true}
}

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = FlexInt{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*f = FlexInt{}
			return nil
		}
		b = []byte(s)
	}
	// Take the leading digit run so "330+" parses as 330.
	i := 0
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
	}
	n, err := strconv.Atoi(string(b[:i]))
	if err != nil {
		*f = FlexInt{}
		return nil
	}
	*f = FlexInt{Int: n, Valid: true}
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(f.Int)), nil
}

// IsZero lets omitzero drop unknown values from output.
func (f FlexInt) IsZero() bool { return !f.Valid }

// Ability is a named ability with its effect text.
type Ability struct {
	Name string `json:"name"`
	Text string `json:"text,omitempty"`
}

// Attack is one attack line on a Pokémon card. Cost is the ordered sequence
// of energy-type tokens; Damage keeps its modifier suffix ("120+", "50×").
type Attack struct {
	Name   string   `json:"name"`
	Cost   []string `json:"cost,omitempty"`
	Damage string   `json:"damage,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// Card is one card record as scraped from either source site. Field names
// match the existing cards_detailed.json datasets; Japanese records carry the
// *_ja shadow fields plus japanese_id and regulation.
type Card struct {
	ID       string   `json:"id,omitempty"`
	Set      string   `json:"set,omitempty"`
	Number   string   `json:"number,omitempty"`
	Name     string   `json:"name,omitempty"`
	Category Category `json:"category,omitempty"`

	Type        string    `json:"type,omitempty"`
	HP          FlexInt   `json:"hp,omitzero"`
	Stage       string    `json:"stage,omitempty"`
	EvolvesFrom string    `json:"evolvesFrom,omitempty"`
	Abilities   []Ability `json:"abilities,omitempty"`
	Attacks     []Attack  `json:"attacks,omitempty"`
	Weakness    string    `json:"weakness,omitempty"`
	RetreatCost FlexInt   `json:"retreatCost,omitzero"`

	SourceURL string    `json:"source_url,omitempty"`
	FetchedAt time.Time `json:"fetched_at,omitzero"`

	// Japanese shadow fields.
	NameJA        string    `json:"name_ja,omitempty"`
	TypeJA        string    `json:"type_ja,omitempty"`
	TextJA        string    `json:"text_ja,omitempty"`
	AbilitiesJA   []Ability `json:"abilities_ja,omitempty"`
	AttacksJA     []Attack  `json:"attacks_ja,omitempty"`
	WeaknessJA    string    `json:"weakness_ja,omitempty"`
	EvolvesFromJA string    `json:"evolvesFrom_ja,omitempty"`
	ImageURLJA    string    `json:"image_url_ja,omitempty"`

	JapaneseID        string `json:"japanese_id,omitempty"`
	Regulation        string `json:"regulation,omitempty"`
	JapaneseExclusive bool   `json:"japanese_exclusive,omitempty"`

	JapaneseSource *JapaneseSource `json:"japanese_source,omitempty"`
}

// DisplayName returns the best available name for logs and reports,
// regardless of which language the record came from.
func (c Card) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.NameJA
}

// JapaneseSource records which Japanese card was merged onto an English card
// and how the pair was established.
type JapaneseSource struct {
	JapaneseID      string      `json:"japanese_id,omitempty"`
	Regulation      string      `json:"regulation,omitempty"`
	SourceURL       string      `json:"source_url,omitempty"`
	MappingType     MappingType `json:"mapping_type"`
	SimilarityScore float64     `json:"similarity_score"`
	MatchedOn       []string    `json:"matched_on,omitempty"`
}
