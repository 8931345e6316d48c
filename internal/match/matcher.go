package match

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pokemon-tcg-ai/cardsync/internal/model"
	"github.com/pokemon-tcg-ai/cardsync/internal/normalize"
)

// Config holds the matching thresholds and signal weights.
type Config struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
	PatternThreshold    float64 `yaml:"pattern_threshold" mapstructure:"pattern_threshold"`
	Weights             Weights `yaml:"weights" mapstructure:"weights"`
}

// DefaultConfig returns the standard thresholds and weights.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.6,
		PatternThreshold:    0.4,
		Weights:             DefaultWeights(),
	}
}

// Validate rejects configurations that would make a run meaningless.
// Invalid config fails fast before any matching begins.
func (c Config) Validate() error {
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return eris.Errorf("match: similarity threshold %.3f outside [0,1]", c.SimilarityThreshold)
	}
	if c.PatternThreshold < 0 || c.PatternThreshold > 1 {
		return eris.Errorf("match: pattern threshold %.3f outside [0,1]", c.PatternThreshold)
	}
	w := c.Weights
	if w.Name < 0 || w.HP < 0 || w.Category < 0 || w.Type < 0 {
		return eris.New("match: signal weights must be non-negative")
	}
	if w.Name+w.HP+w.Category+w.Type == 0 {
		return eris.New("match: all signal weights are zero")
	}
	return nil
}

// claim records which source record currently holds a target and at what
// confidence.
type claim struct {
	source int
	score  float64
}

// Claims is the claim registry enforcing the 1:1 constraint. It is owned by
// a single Run and mutated strictly in source-processing order; that
// sequential mutation is the tie-break mechanism.
type Claims struct {
	byTarget map[int]claim
	bySource map[int]int
}

// NewClaims returns an empty registry.
func NewClaims() *Claims {
	return &Claims{
		byTarget: make(map[int]claim),
		bySource: make(map[int]int),
	}
}

// Holder returns the claim currently on a target.
func (c *Claims) Holder(target int) (claim, bool) {
	cl, ok := c.byTarget[target]
	return cl, ok
}

// TargetOf returns the target a source has claimed.
func (c *Claims) TargetOf(source int) (int, bool) {
	t, ok := c.bySource[source]
	return t, ok
}

// take assigns target to source, evicting any weaker holder. It returns the
// evicted source and whether an eviction happened. Callers must only take
// when unclaimed or strictly stronger; equal scores never steal.
func (c *Claims) take(target, source int, score float64) (int, bool) {
	evicted := -1
	hadEvicted := false
	if prev, ok := c.byTarget[target]; ok {
		evicted = prev.source
		hadEvicted = true
		delete(c.bySource, prev.source)
	}
	c.byTarget[target] = claim{source: source, score: score}
	c.bySource[source] = target
	return evicted, hadEvicted
}

// Matcher runs the staged matching pipeline over a source collection
// against a candidate index.
type Matcher struct {
	cfg    Config
	scorer *Scorer
	table  normalize.SetTable
}

// NewMatcher validates the config and builds a Matcher.
func NewMatcher(cfg Config, table normalize.SetTable) (*Matcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if table == nil {
		table = normalize.DefaultSetTable()
	}
	return &Matcher{cfg: cfg, scorer: NewScorer(cfg.Weights), table: table}, nil
}

// Result is the outcome of one matching run.
type Result struct {
	// Entries holds one mapping entry per processed Japanese source
	// record, in input order. Skipped (malformed) records have no entry.
	// Sources holds the source position behind each entry.
	Entries []model.MappingEntry
	Sources []int
	// Assignment maps source position to claimed target position.
	Assignment map[int]int
	// SkippedSource and SkippedTarget count malformed records excluded
	// from each side.
	SkippedSource int
	SkippedTarget int
}

// Run matches every Japanese source record against the English target
// collection. It is deterministic: identical inputs and config always
// produce identical results.
func (m *Matcher) Run(english, japanese []model.Card) (*Result, error) {
	if len(english) == 0 {
		return nil, eris.New("match: english target collection is empty")
	}
	if len(japanese) == 0 {
		return nil, eris.New("match: japanese source collection is empty")
	}

	ix := NewIndex(english, m.table)

	type source struct {
		norm    normalize.Normalized
		skipped bool
	}
	sources := make([]source, len(japanese))
	skippedSource := 0
	for i, c := range japanese {
		if reason := normalize.MalformedReason(c); reason != "" {
			sources[i] = source{skipped: true}
			skippedSource++
			zap.L().Warn("match: skipping malformed source record",
				zap.String("japanese_id", c.JapaneseID),
				zap.String("reason", reason),
			)
			continue
		}
		sources[i] = source{norm: normalize.Japanese(c, m.table)}
	}

	entries := make([]model.MappingEntry, len(japanese))
	claims := NewClaims()

	// Source records are processed in input order. A stolen claim puts
	// its previous holder back on the queue to be re-evaluated against
	// the remaining unclaimed candidates. Steals require a strictly
	// higher score, so every re-queue strictly raises some target's
	// claim score and the loop terminates.
	queue := make([]int, 0, len(japanese))
	for i := range japanese {
		if !sources[i].skipped {
			queue = append(queue, i)
		}
	}

	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]

		entry, evicted, hasEvicted := m.matchOne(i, sources[i].norm, japanese[i], ix, claims)
		entries[i] = entry
		if hasEvicted {
			entries[evicted] = model.MappingEntry{}
			queue = append(queue, evicted)
		}
	}

	res := &Result{
		Assignment:    make(map[int]int),
		SkippedSource: skippedSource,
		SkippedTarget: ix.Skipped(),
	}
	for i := range japanese {
		if sources[i].skipped {
			continue
		}
		if t, ok := claims.TargetOf(i); ok {
			res.Assignment[i] = t
		}
		res.Entries = append(res.Entries, entries[i])
		res.Sources = append(res.Sources, i)
	}
	return res, nil
}

// matchOne runs the stages for a single source record: exact key, then
// similarity, then pattern. First success wins.
func (m *Matcher) matchOne(i int, n normalize.Normalized, raw model.Card, ix *Index, claims *Claims) (model.MappingEntry, int, bool) {
	entry := model.MappingEntry{
		JapaneseID:   raw.JapaneseID,
		JapaneseName: raw.NameJA,
		Regulation:   raw.Regulation,
	}

	// Stage 1: exact key. Keys are unique within the index, so losing
	// here means another source resolved to the same key. That is
	// terminal: duplicates get no similarity fallback.
	if n.HasKey() {
		if t, ok := ix.LookupExact(Key{Set: n.Set, Number: n.Number}); ok {
			if holder, held := claims.Holder(t); held && holder.score >= 1.0 {
				entry.Outcome = model.OutcomeUnmatched
				entry.Reason = "exact-key target already claimed"
				return entry, -1, false
			}
			evicted, hasEvicted := claims.take(t, i, 1.0)
			tc, _ := ix.Card(t)
			m.fillMatched(&entry, tc, model.MappingExactKey, Score{Value: 1.0, MatchedOn: []string{"set", "number"}}, false)
			return entry, evicted, hasEvicted
		}
	}

	cands := ix.Candidates(n)

	// Stage 2: similarity. Track the best overall score for near-miss
	// reporting, and the best claimable candidate for matching. A
	// candidate is claimable when unclaimed or held at a strictly lower
	// score. Ties go to the first-seen candidate and are flagged.
	var bestOverall float64
	bestClaimable := -1
	var bestScore Score
	ambiguous := false
	for _, t := range cands {
		_, tn := ix.Card(t)
		sc := m.scorer.Compare(n, tn)
		if sc.Value > bestOverall {
			bestOverall = sc.Value
		}
		if holder, held := claims.Holder(t); held && holder.score >= sc.Value {
			continue
		}
		switch {
		case sc.Value > bestScore.Value:
			bestClaimable = t
			bestScore = sc
			ambiguous = false
		case sc.Value == bestScore.Value && bestClaimable >= 0 && sc.Value > 0 && t != bestClaimable:
			ambiguous = true
		}
	}

	if bestClaimable >= 0 && bestScore.Value >= m.cfg.SimilarityThreshold {
		evicted, hasEvicted := claims.take(bestClaimable, i, bestScore.Value)
		tc, _ := ix.Card(bestClaimable)
		m.fillMatched(&entry, tc, model.MappingNameSimilarity, bestScore, ambiguous)
		return entry, evicted, hasEvicted
	}

	// Stage 3: pattern. Variant-suffix or name-alias correspondence
	// lowers the bar for pairs whose names translate rather than
	// transliterate.
	patBest := -1
	var patScore Score
	for _, t := range cands {
		_, tn := ix.Card(t)
		nameFloor, ok := patternEvidence(n, tn)
		if !ok {
			continue
		}
		sc := m.scorer.CompareWithName(n, tn, nameFloor)
		if holder, held := claims.Holder(t); held && holder.score >= sc.Value {
			continue
		}
		if sc.Value > patScore.Value {
			patBest = t
			patScore = sc
		}
	}
	if patBest >= 0 && patScore.Value >= m.cfg.PatternThreshold {
		evicted, hasEvicted := claims.take(patBest, i, patScore.Value)
		tc, _ := ix.Card(patBest)
		m.fillMatched(&entry, tc, model.MappingPattern, patScore, false)
		return entry, evicted, hasEvicted
	}

	entry.Outcome = model.OutcomeUnmatched
	entry.BestScore = bestOverall
	if bestOverall >= m.cfg.SimilarityThreshold {
		entry.Reason = "target already claimed"
	} else {
		entry.Reason = "below threshold"
	}
	return entry, -1, false
}

func (m *Matcher) fillMatched(entry *model.MappingEntry, target model.Card, mt model.MappingType, sc Score, ambiguous bool) {
	entry.Outcome = model.OutcomeMatched
	entry.MappingType = mt
	entry.SimilarityScore = sc.Value
	entry.MatchedOn = sc.MatchedOn
	entry.Ambiguous = ambiguous
	entry.EnglishID = target.ID
	entry.EnglishName = target.Name
	entry.Set = target.Set
	entry.Reason = ""
	entry.BestScore = 0
}
