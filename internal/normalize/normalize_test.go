package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pokemon-tcg-ai/cardsync/internal/model"
)

func TestFold_Diacritics(t *testing.T) {
	assert.Equal(t, "pokemon", Fold("Pokémon"))
}

func TestFold_FullWidth(t *testing.T) {
	// Full-width Latin letters fold to ASCII.
	assert.Equal(t, "gx", Fold("ＧＸ"))
}

func TestFold_Whitespace(t *testing.T) {
	assert.Equal(t, "quick ball", Fold("  Quick   Ball "))
}

func TestStripVariants_English(t *testing.T) {
	name, variants := StripVariants("charizard ex")
	assert.Equal(t, "charizard", name)
	assert.Equal(t, []string{"ex"}, variants)

	name, variants = StripVariants("pikachu vmax")
	assert.Equal(t, "pikachu", name)
	assert.Equal(t, []string{"vmax"}, variants)

	name, variants = StripVariants("arceus vstar")
	assert.Equal(t, "arceus", name)
	assert.Equal(t, []string{"vstar"}, variants)
}

func TestStripVariants_JapaneseAttached(t *testing.T) {
	name, variants := StripVariants(Fold("リザードンex"))
	assert.Equal(t, Fold("リザードン"), name)
	assert.Equal(t, []string{"ex"}, variants)

	name, variants = StripVariants(Fold("ピカチュウV"))
	assert.Equal(t, Fold("ピカチュウ"), name)
	assert.Equal(t, []string{"v"}, variants)
}

func TestStripVariants_KatakanaAlias(t *testing.T) {
	name, variants := StripVariants(Fold("アブソル プライム"))
	assert.Equal(t, Fold("アブソル"), name)
	assert.Equal(t, []string{"prime"}, variants)
}

func TestStripVariants_VoicedKanaAliases(t *testing.T) {
	// Fold strips kana voicing marks (ブ→フ, グ→ク); the token table has to
	// match the folded form or these suffixes would never strip.
	name, variants := StripVariants(Fold("ヨノワール ブレイク"))
	assert.Equal(t, Fold("ヨノワール"), name)
	assert.Equal(t, []string{"break"}, variants)

	name, variants = StripVariants(Fold("ピカチュウ タッグチーム"))
	assert.Equal(t, Fold("ピカチュウ"), name)
	assert.Equal(t, []string{"tag team"}, variants)
}

func TestStripVariants_DoesNotEatWords(t *testing.T) {
	// "vortex" ends in "ex" but the preceding rune is ASCII.
	name, variants := StripVariants("vortex")
	assert.Equal(t, "vortex", name)
	assert.Empty(t, variants)

	// A name that IS a token is left alone.
	name, _ = StripVariants("ex")
	assert.Equal(t, "ex", name)
}

func TestStripVariants_VmaxNotEatenAsV(t *testing.T) {
	name, variants := StripVariants(Fold("ムゲンダイナVMAX"))
	assert.Equal(t, Fold("ムゲンダイナ"), name)
	assert.Equal(t, []string{"vmax"}, variants)
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, "125", ParseNumber("125"))
	assert.Equal(t, "125", ParseNumber("125a"))
	assert.Equal(t, "125", ParseNumber("125/197"))
	assert.Equal(t, "", ParseNumber("promo"))
}

func TestMalformedReason(t *testing.T) {
	assert.Equal(t, "missing name", MalformedReason(model.Card{Category: model.CategoryPokemon}))
	assert.Equal(t, "missing category", MalformedReason(model.Card{Name: "Potion"}))
	assert.Equal(t, "", MalformedReason(model.Card{NameJA: "キズぐすり", Category: model.CategoryTrainer}))
}

func TestEnglish_Projection(t *testing.T) {
	c := model.Card{
		Set:      "OBF",
		Number:   "125",
		Name:     "Charizard ex",
		Category: model.CategoryPokemon,
		HP:       model.FlexIntOf(330),
		Type:     "Fire",
	}
	n := English(c, DefaultSetTable())

	assert.Equal(t, "charizard", n.MatchName)
	assert.Equal(t, []string{"ex"}, n.Variants)
	assert.True(t, n.CategoryKnown)
	assert.True(t, n.HPKnown)
	assert.Equal(t, 330, n.HP)
	assert.Equal(t, "fire", n.Type)
	assert.Equal(t, "OBF", n.Set)
	assert.Equal(t, "125", n.Number)
	assert.True(t, n.HasKey())
}

func TestEnglish_UnknownHPIsNotZero(t *testing.T) {
	n := English(model.Card{Name: "Pidgey", Category: model.CategoryPokemon}, DefaultSetTable())
	assert.False(t, n.HPKnown)
	assert.Equal(t, 0, n.HP)
}

func TestJapanese_SetMappedToEnglish(t *testing.T) {
	c := model.Card{
		NameJA:     "リザードンex",
		Category:   model.CategoryPokemon,
		JapaneseID: "sv3-101",
		HP:         model.FlexIntOf(330),
	}
	n := Japanese(c, DefaultSetTable())

	assert.Equal(t, "OBF", n.Set)
	assert.True(t, n.SetKnown)
	assert.Equal(t, "101", n.Number)
	assert.Equal(t, []string{"ex"}, n.Variants)
}

func TestJapanese_UnknownSetPassesThrough(t *testing.T) {
	c := model.Card{NameJA: "ピカチュウ", Category: model.CategoryPokemon, JapaneseID: "svX-001"}
	n := Japanese(c, DefaultSetTable())
	assert.Equal(t, "svX", n.Set)
	assert.True(t, n.SetKnown)
}

func TestSetTable_Lookups(t *testing.T) {
	table := DefaultSetTable()

	ja, ok := table.ToJapanese("PAL")
	assert.True(t, ok)
	assert.Equal(t, "sv1S", ja)

	en, ok := table.ToEnglish("sv3")
	assert.True(t, ok)
	assert.Equal(t, "OBF", en)

	// CRE and EVS both map to S7; lexicographically first wins.
	en, ok = table.ToEnglish("S7")
	assert.True(t, ok)
	assert.Equal(t, "CRE", en)

	// Unknown codes pass through unchanged.
	same, ok := table.ToJapanese("ZZZ")
	assert.False(t, ok)
	assert.Equal(t, "ZZZ", same)
}
