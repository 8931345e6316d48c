package match

import (
	"fmt"

	"github.com/pokemon-tcg-ai/cardsync/internal/model"
	"github.com/pokemon-tcg-ai/cardsync/internal/normalize"
)

// Merge folds the Japanese source collection into the English collection
// according to a matching result. Matched English cards gain the Japanese
// shadow fields and a japanese_source block; existing English fields are
// never overwritten. Japanese records with no match are appended as
// exclusive cards. The inputs are not mutated.
func Merge(english, japanese []model.Card, res *Result, table normalize.SetTable) ([]model.Card, *model.Report) {
	merged := make([]model.Card, len(english))
	copy(merged, english)

	targetOf := make(map[int]int, len(res.Assignment))
	for src, tgt := range res.Assignment {
		targetOf[src] = tgt
	}

	meta := model.ReportMetadata{
		TotalEnglish:    len(english),
		TotalJapanese:   len(japanese),
		SkippedJapanese: res.SkippedSource,
		SkippedEnglish:  res.SkippedTarget,
	}

	// Japanese ids already carried into the merged set by a matched entry.
	// A duplicate source record that lost the exact-key race must not come
	// back as a second copy of the same card.
	mappedID := make(map[string]bool)
	for k, entry := range res.Entries {
		if entry.Outcome != model.OutcomeMatched {
			continue
		}
		if id := japanese[res.Sources[k]].JapaneseID; id != "" {
			mappedID[id] = true
		}
	}

	var simSum float64
	for k, entry := range res.Entries {
		i := res.Sources[k]
		ja := japanese[i]

		if entry.Outcome != model.OutcomeMatched {
			meta.Unmatched++
			if ja.JapaneseID != "" && mappedID[ja.JapaneseID] {
				continue
			}
			merged = append(merged, exclusiveCard(ja))
			meta.ExclusiveAdded++
			continue
		}

		switch entry.MappingType {
		case model.MappingExactKey:
			meta.ExactMatches++
		case model.MappingNameSimilarity:
			meta.SimilarityMatches++
		case model.MappingPattern:
			meta.PatternMatches++
		}
		meta.TotalMappings++
		simSum += entry.SimilarityScore

		overlayJapanese(&merged[targetOf[i]], ja, entry)
	}

	if meta.TotalMappings > 0 {
		meta.AverageSimilarity = simSum / float64(meta.TotalMappings)
	}

	report := &model.Report{
		Metadata:    meta,
		SetMappings: map[string]string(table),
		Mappings:    res.Entries,
	}
	return merged, report
}

// overlayJapanese copies the Japanese shadow fields onto an English card.
// Fields already populated on the English side stay untouched; only empty
// slots are filled.
func overlayJapanese(en *model.Card, ja model.Card, entry model.MappingEntry) {
	if en.NameJA == "" {
		en.NameJA = ja.NameJA
	}
	if en.TypeJA == "" {
		en.TypeJA = ja.TypeJA
	}
	if en.TextJA == "" {
		en.TextJA = ja.TextJA
	}
	if len(en.AbilitiesJA) == 0 {
		en.AbilitiesJA = ja.AbilitiesJA
	}
	if len(en.AttacksJA) == 0 {
		en.AttacksJA = ja.AttacksJA
	}
	if en.WeaknessJA == "" {
		en.WeaknessJA = ja.WeaknessJA
	}
	if en.EvolvesFromJA == "" {
		en.EvolvesFromJA = ja.EvolvesFromJA
	}
	if en.ImageURLJA == "" {
		en.ImageURLJA = ja.ImageURLJA
	}
	if en.JapaneseID == "" {
		en.JapaneseID = ja.JapaneseID
	}
	if en.Regulation == "" {
		en.Regulation = ja.Regulation
	}

	en.JapaneseSource = &model.JapaneseSource{
		JapaneseID:      ja.JapaneseID,
		Regulation:      ja.Regulation,
		SourceURL:       ja.SourceURL,
		MappingType:     entry.MappingType,
		SimilarityScore: entry.SimilarityScore,
		MatchedOn:       entry.MatchedOn,
	}
}

// exclusiveCard turns an unmatched Japanese record into a standalone card in
// the merged collection. The synthetic id and set are prefixed so they can
// never collide with English ids.
func exclusiveCard(ja model.Card) model.Card {
	id := ja.JapaneseID
	if id == "" {
		id = "unknown"
	}
	reg := ja.Regulation
	if reg == "" {
		reg = "unknown"
	}

	out := ja
	out.ID = fmt.Sprintf("JA-%s", id)
	out.Set = fmt.Sprintf("JA-%s", reg)
	if out.Number == "" {
		out.Number = ja.JapaneseID
	}
	if out.Name == "" {
		out.Name = ja.NameJA
	}
	if out.Category == "" {
		out.Category = model.CategoryPokemon
	}
	out.JapaneseExclusive = true
	return out
}
