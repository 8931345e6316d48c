package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokemon-tcg-ai/cardsync/internal/model"
	"github.com/pokemon-tcg-ai/cardsync/internal/normalize"
)

func newTestMatcher(t *testing.T) *Matcher {
	t.Helper()
	m, err := NewMatcher(DefaultConfig(), normalize.DefaultSetTable())
	require.NoError(t, err)
	return m
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.SimilarityThreshold = 1.5
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.PatternThreshold = -0.1
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.Weights = Weights{}
	assert.Error(t, bad.Validate())
}

func TestRun_EmptyCollectionsFailFast(t *testing.T) {
	m := newTestMatcher(t)
	card := []model.Card{{Name: "Pikachu", Category: model.CategoryPokemon}}

	_, err := m.Run(nil, card)
	assert.Error(t, err)

	_, err = m.Run(card, nil)
	assert.Error(t, err)
}

func TestRun_ExactKeyWinsOverName(t *testing.T) {
	m := newTestMatcher(t)
	english := []model.Card{
		{ID: "sv3-101", Set: "OBF", Number: "101", Name: "Charizard ex", Category: model.CategoryPokemon},
	}
	japanese := []model.Card{
		// The Japanese name shares nothing with the English one; the key
		// sv3-101 maps through the set table to OBF/101.
		{JapaneseID: "sv3-101", NameJA: "リザードンex", Category: model.CategoryPokemon, Regulation: model.RegulationH},
	}

	res, err := m.Run(english, japanese)
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)

	e := res.Entries[0]
	assert.Equal(t, model.OutcomeMatched, e.Outcome)
	assert.Equal(t, model.MappingExactKey, e.MappingType)
	assert.Equal(t, 1.0, e.SimilarityScore)
	assert.Equal(t, []string{"set", "number"}, e.MatchedOn)
	assert.Equal(t, "sv3-101", e.EnglishID)
	assert.Equal(t, model.RegulationH, e.Regulation)
	assert.Equal(t, map[int]int{0: 0}, res.Assignment)
}

func TestRun_DuplicateExactKeyIsTerminal(t *testing.T) {
	m := newTestMatcher(t)
	english := []model.Card{
		{ID: "sv3-101", Set: "OBF", Number: "101", Name: "Charizard ex", Category: model.CategoryPokemon},
	}
	japanese := []model.Card{
		{JapaneseID: "sv3-101", NameJA: "リザードンex", Category: model.CategoryPokemon},
		{JapaneseID: "sv3-101", NameJA: "リザードンex", Category: model.CategoryPokemon},
	}

	res, err := m.Run(english, japanese)
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)

	assert.Equal(t, model.OutcomeMatched, res.Entries[0].Outcome)

	// The duplicate must not fall through to similarity against the very
	// card its twin already claimed.
	dup := res.Entries[1]
	assert.Equal(t, model.OutcomeUnmatched, dup.Outcome)
	assert.Equal(t, "exact-key target already claimed", dup.Reason)
	assert.Zero(t, dup.SimilarityScore)
	assert.Empty(t, dup.MatchedOn)
	assert.Equal(t, map[int]int{0: 0}, res.Assignment)
}

func TestRun_SimilarityStage(t *testing.T) {
	m := newTestMatcher(t)
	english := []model.Card{
		{ID: "sv2d-25", Set: "MEW", Number: "25", Name: "Pikachu", Category: model.CategoryPokemon, HP: model.FlexIntOf(60), Type: "Lightning"},
	}
	japanese := []model.Card{
		// No japanese_id, so no key: the similarity stage has to carry it.
		{Name: "Pikachu", Category: model.CategoryPokemon, HP: model.FlexIntOf(60), Type: "Lightning"},
	}

	res, err := m.Run(english, japanese)
	require.NoError(t, err)

	e := res.Entries[0]
	assert.Equal(t, model.OutcomeMatched, e.Outcome)
	assert.Equal(t, model.MappingNameSimilarity, e.MappingType)
	assert.InDelta(t, 1.0, e.SimilarityScore, 1e-9)
	assert.Equal(t, []string{"name", "hp", "category", "type"}, e.MatchedOn)
	assert.False(t, e.Ambiguous)
}

func TestRun_HigherScoreStealsClaim(t *testing.T) {
	m := newTestMatcher(t)
	english := []model.Card{
		{ID: "sv2d-25", Set: "MEW", Number: "25", Name: "Pikachu", Category: model.CategoryPokemon},
	}
	japanese := []model.Card{
		// Processed first, claims the target at 1 - 1/7 name similarity.
		{Name: "Pikachi", Category: model.CategoryPokemon},
		// Exact name, strictly higher score, steals the claim.
		{Name: "Pikachu", Category: model.CategoryPokemon},
	}

	res, err := m.Run(english, japanese)
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)

	loser := res.Entries[0]
	assert.Equal(t, model.OutcomeUnmatched, loser.Outcome)
	assert.Equal(t, "target already claimed", loser.Reason)
	// (0.5*(6/7) + 0.15) / 0.65, the near-miss score, kept for tuning.
	assert.InDelta(t, (0.5*6.0/7.0+0.15)/0.65, loser.BestScore, 1e-9)

	winner := res.Entries[1]
	assert.Equal(t, model.OutcomeMatched, winner.Outcome)
	assert.InDelta(t, 1.0, winner.SimilarityScore, 1e-9)
	assert.Equal(t, map[int]int{1: 0}, res.Assignment)
}

func TestRun_EqualScoreTieKeepsFirstAndFlagsAmbiguous(t *testing.T) {
	m := newTestMatcher(t)
	english := []model.Card{
		{ID: "sv3-133", Set: "OBF", Number: "133", Name: "Eevee", Category: model.CategoryPokemon},
		{ID: "sv2d-133", Set: "MEW", Number: "133", Name: "Eevee", Category: model.CategoryPokemon},
	}
	japanese := []model.Card{
		{Name: "Eevee", Category: model.CategoryPokemon},
	}

	res, err := m.Run(english, japanese)
	require.NoError(t, err)

	e := res.Entries[0]
	assert.Equal(t, model.OutcomeMatched, e.Outcome)
	assert.True(t, e.Ambiguous)
	assert.Equal(t, "sv3-133", e.EnglishID)
}

func TestRun_PatternStageMatchesTranslatedTrainer(t *testing.T) {
	m := newTestMatcher(t)
	english := []model.Card{
		{ID: "sv1-196", Set: "SVI", Number: "196", Name: "Ultra Ball", Category: model.CategoryTrainer},
	}
	japanese := []model.Card{
		{NameJA: "ハイパーボール", Category: model.CategoryTrainer},
	}

	res, err := m.Run(english, japanese)
	require.NoError(t, err)

	e := res.Entries[0]
	assert.Equal(t, model.OutcomeMatched, e.Outcome)
	assert.Equal(t, model.MappingPattern, e.MappingType)
	// Alias floor 0.8 on the name: (0.5*0.8 + 0.15) / 0.65.
	assert.InDelta(t, 0.55/0.65, e.SimilarityScore, 1e-9)
}

func TestRun_BelowThresholdRecordsNearMiss(t *testing.T) {
	m := newTestMatcher(t)
	english := []model.Card{
		{ID: "sv3-143", Set: "OBF", Number: "143", Name: "Snorlax", Category: model.CategoryPokemon},
	}
	japanese := []model.Card{
		{Name: "Mewtwo", Category: model.CategoryPokemon},
	}

	res, err := m.Run(english, japanese)
	require.NoError(t, err)

	e := res.Entries[0]
	assert.Equal(t, model.OutcomeUnmatched, e.Outcome)
	assert.Equal(t, "below threshold", e.Reason)
	// Only the category agrees: 0.15 / 0.65.
	assert.InDelta(t, 0.15/0.65, e.BestScore, 1e-9)
	assert.Empty(t, res.Assignment)
}

func TestRun_SkipsMalformedSources(t *testing.T) {
	m := newTestMatcher(t)
	english := []model.Card{
		{ID: "sv3-143", Set: "OBF", Number: "143", Name: "Snorlax", Category: model.CategoryPokemon},
	}
	japanese := []model.Card{
		{JapaneseID: "broken-1"}, // no name at all
		{Name: "Snorlax", Category: model.CategoryPokemon},
	}

	res, err := m.Run(english, japanese)
	require.NoError(t, err)

	assert.Equal(t, 1, res.SkippedSource)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, []int{1}, res.Sources)
	assert.Equal(t, model.OutcomeMatched, res.Entries[0].Outcome)
}

func TestRun_Deterministic(t *testing.T) {
	m := newTestMatcher(t)
	english := []model.Card{
		{ID: "sv3-101", Set: "OBF", Number: "101", Name: "Charizard ex", Category: model.CategoryPokemon, HP: model.FlexIntOf(330), Type: "Fire"},
		{ID: "sv2d-25", Set: "MEW", Number: "25", Name: "Pikachu", Category: model.CategoryPokemon, HP: model.FlexIntOf(60), Type: "Lightning"},
		{ID: "sv1-196", Set: "SVI", Number: "196", Name: "Ultra Ball", Category: model.CategoryTrainer},
	}
	japanese := []model.Card{
		{JapaneseID: "sv3-101", NameJA: "リザードンex", Category: model.CategoryPokemon, HP: model.FlexIntOf(330)},
		{Name: "Pikachu", Category: model.CategoryPokemon, HP: model.FlexIntOf(60), Type: "Lightning"},
		{NameJA: "ハイパーボール", Category: model.CategoryTrainer},
	}

	first, err := m.Run(english, japanese)
	require.NoError(t, err)
	second, err := m.Run(english, japanese)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
