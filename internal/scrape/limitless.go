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

// Limitless scrapes English card records from limitlesstcg.com.
type Limitless struct {
	fetcher fetcher.Fetcher
	baseURL string
	now     func() time.Time
}

// NewLimitless creates a Limitless scraper.
func NewLimitless(f fetcher.Fetcher, baseURL string) *Limitless {
	if baseURL == "" {
		baseURL = "https://limitlesstcg.com"
	}
	return &Limitless{fetcher: f, baseURL: strings.TrimRight(baseURL, "/"), now: time.Now}
}

// FetchCard retrieves and parses one English card page.
func (l *Limitless) FetchCard(ctx context.Context, ref CardRef) (model.Card, error) {
	url := fmt.Sprintf("%s/cards/%s/%s", l.baseURL, ref.Set, ref.Number)
	page, err := l.fetcher.Get(ctx, url)
	if err != nil {
		return model.Card{}, eris.Wrapf(err, "limitless: fetch %s-%s", ref.Set, ref.Number)
	}

	card := ParseLimitlessPage(string(page), ref)
	card.SourceURL = url
	card.FetchedAt = l.now().UTC()

	zap.L().Debug("limitless: scraped card",
		zap.String("id", card.ID),
		zap.String("name", card.Name),
	)
	return card, nil
}

// FetchSetRefs lists the card references on a set index page, in page order
// with duplicates removed.
func (l *Limitless) FetchSetRefs(ctx context.Context, set string) ([]CardRef, error) {
	url := fmt.Sprintf("%s/cards/%s", l.baseURL, set)
	page, err := l.fetcher.Get(ctx, url)
	if err != nil {
		return nil, eris.Wrapf(err, "limitless: fetch set %s", set)
	}

	var refs []CardRef
	seen := make(map[string]bool)
	for _, m := range cardHrefRe.FindAllStringSubmatch(string(page), -1) {
		// Index pages link related cards from other sets too.
		if !strings.EqualFold(m[1], set) || seen[m[2]] {
			continue
		}
		seen[m[2]] = true
		refs = append(refs, CardRef{Set: set, Number: m[2]})
	}
	if len(refs) == 0 {
		return nil, eris.Errorf("limitless: no cards found for set %s", set)
	}

	zap.L().Info("limitless: listed set",
		zap.String("set", set),
		zap.Int("cards", len(refs)),
	)
	return refs, nil
}

var (
	cardHrefRe        = regexp.MustCompile(`href="/cards/([A-Z0-9]{2,5})/(\d+[a-z]?)"`)
	nameBeforeParenRe = regexp.MustCompile(`^(.+?)\s*\(`)
	hpRe              = regexp.MustCompile(`(\d+)\s*HP`)
	enTypeRe          = regexp.MustCompile(`-\s*(Fire|Water|Grass|Electric|Psychic|Fighting|Darkness|Metal|Fairy|Dragon|Colorless)`)
	stageRe           = regexp.MustCompile(`(Basic|Stage\s*[12])`)
	evolvesRe         = regexp.MustCompile(`Evolves from\s+(.+)`)
	weaknessRe        = regexp.MustCompile(`Weakness:\s*([^\n\r]+?)(?:\s*Resistance:|\s*Retreat:|$)`)
	retreatRe         = regexp.MustCompile(`Retreat:\s*(\d+)`)
	attackLineRe      = regexp.MustCompile(`(.+?)\s+(\d+[+×x]?)$`)
	symbolRe          = regexp.MustCompile(`(?s)<span[^>]*class="[^"]*ptcg-symbol[^"]*"[^>]*>(.*?)</span>`)
)

// energyLetters maps Limitless cost symbols to energy type names.
var energyLetters = map[rune]string{
	'R': "Fire", 'W': "Water", 'G': "Grass", 'L': "Electric",
	'P': "Psychic", 'F': "Fighting", 'D': "Dark", 'M': "Metal",
	'Y': "Fairy", 'N': "Dragon", 'C': "Colorless",
}

// ParseLimitlessPage extracts a card record from a Limitless card page.
func ParseLimitlessPage(page string, ref CardRef) model.Card {
	card := model.Card{
		ID:     fmt.Sprintf("%s-%s", ref.Set, ref.Number),
		Set:    ref.Set,
		Number: ref.Number,
	}

	if title := pageTitle(page); title != "" {
		if m := nameBeforeParenRe.FindStringSubmatch(title); m != nil {
			card.Name = strings.TrimSpace(m[1])
		} else {
			card.Name = strings.TrimSpace(strings.SplitN(title, " - ", 2)[0])
		}
	}

	titleText := firstElement(page, "p", "card-text-title")
	if m := hpRe.FindStringSubmatch(titleText); m != nil {
		card.HP = model.FlexIntOf(atoi(m[1]))
		card.Category = model.CategoryPokemon
	}
	if m := enTypeRe.FindStringSubmatch(titleText); m != nil {
		typ := m[1]
		// The site uses "Darkness"; the datasets use "Dark".
		if typ == "Darkness" {
			typ = "Dark"
		}
		card.Type = typ
	}

	typeText := firstElement(page, "p", "card-text-type")
	if m := stageRe.FindStringSubmatch(typeText); m != nil {
		card.Stage = m[1]
	}
	if m := evolvesRe.FindStringSubmatch(typeText); m != nil {
		card.EvolvesFrom = strings.TrimSpace(m[1])
	}
	for _, tt := range []string{"Supporter", "Item", "Stadium", "Tool"} {
		if strings.Contains(typeText, tt) {
			card.Category = model.CategoryTrainer
			break
		}
	}
	if card.Category == "" && strings.Contains(strings.ToLower(card.Name), "energy") {
		card.Category = model.CategoryEnergy
	}

	card.Abilities = parseLimitlessAbilities(page)
	card.Attacks = parseLimitlessAttacks(page)

	wrrText := firstElement(page, "p", "card-text-wrr")
	if m := weaknessRe.FindStringSubmatch(wrrText); m != nil {
		w := strings.TrimSpace(m[1])
		if !strings.EqualFold(w, "none") {
			card.Weakness = w
		}
	}
	if m := retreatRe.FindStringSubmatch(wrrText); m != nil {
		card.RetreatCost = model.FlexIntOf(atoi(m[1]))
	}

	return card
}

func parseLimitlessAbilities(page string) []model.Ability {
	var abilities []model.Ability
	for _, block := range elements(page, "div", "card-text-ability") {
		info := firstElement(block, "p", "card-text-ability-info")
		effect := firstElement(block, "p", "card-text-ability-effect")
		if info == "" {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(info, "Ability:"))
		if name == "" {
			continue
		}
		abilities = append(abilities, model.Ability{Name: name, Text: effect})
	}
	return abilities
}

func parseLimitlessAttacks(page string) []model.Attack {
	var attacks []model.Attack
	for _, block := range elements(page, "div", "card-text-attack") {
		infoHTML := elementRe("p", "card-text-attack-info").FindStringSubmatch(block)
		if infoHTML == nil {
			continue
		}
		// Cost symbols precede the attack name in the info line; parse
		// them out before flattening so they do not leak into the name.
		effect := firstElement(block, "p", "card-text-attack-effect")
		attack := model.Attack{Text: effect}
		for _, sm := range symbolRe.FindAllStringSubmatch(infoHTML[1], -1) {
			for _, r := range stripTags(sm[1]) {
				if e, ok := energyLetters[r]; ok {
					attack.Cost = append(attack.Cost, e)
				}
			}
		}

		info := stripTags(symbolRe.ReplaceAllString(infoHTML[1], " "))
		if m := attackLineRe.FindStringSubmatch(info); m != nil {
			attack.Name = strings.TrimSpace(m[1])
			attack.Damage = m[2]
		} else {
			attack.Name = info
		}
		if attack.Name == "" {
			continue
		}
		attacks = append(attacks, attack)
	}
	return attacks
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}
