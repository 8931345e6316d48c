package scrape

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pokemon-tcg-ai/cardsync/internal/fetcher"
	"github.com/pokemon-tcg-ai/cardsync/internal/model"
)

// typeJAToEN maps the Japanese type glyphs printed on cards to the English
// type names the datasets use.
var typeJAToEN = map[string]string{
	"炎":     "Fire",
	"水":     "Water",
	"草":     "Grass",
	"雷":     "Electric",
	"超":     "Psychic",
	"闘":     "Fighting",
	"悪":     "Dark",
	"鋼":     "Metal",
	"フェアリー": "Fairy",
	"ドラゴン":  "Dragon",
	"無色":    "Colorless",
}

// Failure records one card page that could not be scraped.
type Failure struct {
	CardID     string
	Regulation string
	Reason     string
}

// PokemonCard scrapes Japanese card records from pokemon-card.com.
type PokemonCard struct {
	fetcher  fetcher.Fetcher
	baseURL  string
	now      func() time.Time
	failures []Failure
}

// NewPokemonCard creates a pokemon-card.com scraper.
func NewPokemonCard(f fetcher.Fetcher, baseURL string) *PokemonCard {
	if baseURL == "" {
		baseURL = "https://www.pokemon-card.com"
	}
	return &PokemonCard{fetcher: f, baseURL: strings.TrimRight(baseURL, "/"), now: time.Now}
}

// Failures returns the card pages that failed during this scraper's lifetime.
func (p *PokemonCard) Failures() []Failure {
	return p.failures
}

// JapaneseRef is one search hit: a Japanese card id plus its regulation.
type JapaneseRef struct {
	ID         string
	Regulation string
	NameJA     string
}

var detailLinkRe = regexp.MustCompile(`href="[^"]*details\.php/card/(\d+)/regu/(\w+)[^"]*"[^>]*>(.*?)</a>`)

// Search lists the cards of one regulation from the card search pages.
func (p *PokemonCard) Search(ctx context.Context, regulation string, limit int) ([]JapaneseRef, error) {
	url := fmt.Sprintf("%s/card-search/index.php?regu=%s", p.baseURL, regulation)
	page, err := p.fetcher.Get(ctx, url)
	if err != nil {
		return nil, eris.Wrapf(err, "pokemoncard: search regulation %s", regulation)
	}

	var refs []JapaneseRef
	seen := make(map[string]bool)
	for _, m := range detailLinkRe.FindAllStringSubmatch(string(page), -1) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		refs = append(refs, JapaneseRef{ID: m[1], Regulation: m[2], NameJA: stripTags(m[3])})
		if limit > 0 && len(refs) >= limit {
			break
		}
	}

	zap.L().Info("pokemoncard: search complete",
		zap.String("regulation", regulation),
		zap.Int("cards", len(refs)),
	)
	return refs, nil
}

// FetchCard retrieves and parses one Japanese card page. Pages that redirect
// back to the search index are recorded as failures, not errors; a missing
// card must not abort a whole regulation scrape.
func (p *PokemonCard) FetchCard(ctx context.Context, ref JapaneseRef) (model.Card, bool, error) {
	url := fmt.Sprintf("%s/card-search/details.php/card/%s/regu/%s", p.baseURL, ref.ID, ref.Regulation)
	page, err := p.fetcher.Get(ctx, url)
	if err != nil {
		return model.Card{}, false, eris.Wrapf(err, "pokemoncard: fetch card %s", ref.ID)
	}

	body := string(page)
	if strings.Contains(pageHTMLTitle(body), "カード検索") {
		p.failures = append(p.failures, Failure{
			CardID:     ref.ID,
			Regulation: ref.Regulation,
			Reason:     "card not found or redirected",
		})
		zap.L().Warn("pokemoncard: card page redirected to search",
			zap.String("card_id", ref.ID),
			zap.String("regulation", ref.Regulation),
		)
		return model.Card{}, false, nil
	}

	card := ParsePokemonCardPage(body, ref.ID, ref.Regulation)
	card.SourceURL = url
	card.FetchedAt = p.now().UTC()

	zap.L().Debug("pokemoncard: scraped card",
		zap.String("japanese_id", card.JapaneseID),
		zap.String("name_ja", card.NameJA),
	)
	return card, true, nil
}

var (
	htmlTitleRe  = regexp.MustCompile(`(?s)<title[^>]*>(.*?)</title>`)
	cardImageRe  = regexp.MustCompile(`<img[^>]*src="([^"]*card[^"]*\.jpg)"[^>]*>`)
	jaHPRe       = regexp.MustCompile(`HP\s*(\d+)`)
	jaEvolvesRe  = regexp.MustCompile(`([\p{Hiragana}\p{Katakana}\p{Han}ー]+)から進化`)
	jaWeaknessRe = regexp.MustCompile(`弱点[：:]\s*([炎水草雷超闘悪鋼]|フェアリー|ドラゴン|無色)`)
	jaRetreatRe  = regexp.MustCompile(`にげる[：:]\s*無?色?(\d+)`)
	jaDamageRe   = regexp.MustCompile(`(\d+[+×x]?)\s*ダメージ`)
)

func pageHTMLTitle(page string) string {
	if m := htmlTitleRe.FindStringSubmatch(page); m != nil {
		return stripTags(m[1])
	}
	return ""
}

// ParsePokemonCardPage extracts a Japanese card record from a card details
// page.
func ParsePokemonCardPage(page, cardID, regulation string) model.Card {
	card := model.Card{
		JapaneseID: cardID,
		Regulation: regulation,
	}

	card.NameJA = pageTitle(page)

	if m := cardImageRe.FindStringSubmatch(page); m != nil {
		card.ImageURLJA = m[1]
	}

	text := stripTags(page)

	for _, block := range elements(page, "span", "type") {
		t := stripTags(block)
		if _, ok := typeJAToEN[t]; ok {
			card.TypeJA = t
			card.Type = typeJAToEN[t]
			break
		}
	}

	if m := jaHPRe.FindStringSubmatch(text); m != nil {
		card.HP = model.FlexIntOf(atoi(m[1]))
		card.Category = model.CategoryPokemon
	}

	if m := jaEvolvesRe.FindStringSubmatch(text); m != nil {
		card.EvolvesFromJA = m[1]
	}

	card.AttacksJA = parseJapaneseAttacks(page)
	card.AbilitiesJA = parseJapaneseAbilities(page)

	if m := jaWeaknessRe.FindStringSubmatch(text); m != nil {
		card.WeaknessJA = m[1]
		if en, ok := typeJAToEN[m[1]]; ok {
			card.Weakness = en
		}
	}
	if m := jaRetreatRe.FindStringSubmatch(text); m != nil {
		card.RetreatCost = model.FlexIntOf(atoi(m[1]))
	}

	// Pages without HP, attacks or abilities describe trainer cards.
	if card.Category == "" && !strings.Contains(text, "特性") && !strings.Contains(text, "ワザ") {
		card.Category = model.CategoryTrainer
	}

	if texts := collectCardText(page); len(texts) > 0 {
		card.TextJA = strings.Join(texts, "\n\n")
	}

	return card
}

func parseJapaneseAttacks(page string) []model.Attack {
	var attacks []model.Attack
	for _, block := range append(elements(page, "section", "waza"), elements(page, "div", "attack")...) {
		name := firstHeading(block)
		if name == "" {
			continue
		}
		attack := model.Attack{Name: name}
		// Effect text can mention damage amounts too; the printed damage
		// is the last one.
		if ms := jaDamageRe.FindAllStringSubmatch(stripTags(block), -1); len(ms) > 0 {
			attack.Damage = ms[len(ms)-1][1]
		}
		if effect := firstElement(block, "p", "effect"); effect != "" {
			attack.Text = effect
		}
		attacks = append(attacks, attack)
	}
	return attacks
}

func parseJapaneseAbilities(page string) []model.Ability {
	var abilities []model.Ability
	for _, block := range append(elements(page, "section", "tokusei"), elements(page, "div", "ability")...) {
		name := firstHeading(block)
		if name == "" {
			continue
		}
		ability := model.Ability{Name: name}
		if effect := firstElement(block, "p", "effect"); effect != "" {
			ability.Text = effect
		}
		abilities = append(abilities, ability)
	}
	return abilities
}

var headingRe = regexp.MustCompile(`(?s)<(?:h3|strong)[^>]*>(.*?)</(?:h3|strong)>`)

func firstHeading(block string) string {
	if m := headingRe.FindStringSubmatch(block); m != nil {
		return stripTags(m[1])
	}
	return ""
}

// collectCardText gathers the free-text effect sections, skipping short
// fragments that are layout noise.
func collectCardText(page string) []string {
	var texts []string
	for _, block := range elements(page, "div", "card-text") {
		t := stripTags(block)
		if len([]rune(t)) > 10 {
			texts = append(texts, t)
		}
	}
	return texts
}
