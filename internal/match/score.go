package match

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/pokemon-tcg-ai/cardsync/internal/normalize"
)

// Weights holds the blend weights for the similarity signals. A signal is
// only evaluated when both sides have a known value; the final score is
// renormalized by the weights actually evaluated so sparse records are not
// penalized for fields both sides lack.
type Weights struct {
	Name     float64 `yaml:"name" mapstructure:"name"`
	HP       float64 `yaml:"hp" mapstructure:"hp"`
	Category float64 `yaml:"category" mapstructure:"category"`
	Type     float64 `yaml:"type" mapstructure:"type"`
}

// DefaultWeights returns the standard signal blend.
func DefaultWeights() Weights {
	return Weights{Name: 0.5, HP: 0.2, Category: 0.15, Type: 0.15}
}

// Score is one scored source/target comparison. MatchedOn lists the field
// names that contributed positive evidence.
type Score struct {
	Value     float64
	MatchedOn []string
}

// Scorer computes blended confidence scores between normalized records.
type Scorer struct {
	weights Weights
}

// NewScorer creates a Scorer with the given weights.
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Compare scores a source record against a candidate target. Cards of
// different known categories never match: the category gate forces the score
// to zero regardless of the other signals.
func (s *Scorer) Compare(src, tgt normalize.Normalized) Score {
	return s.compare(src, tgt, nameSimilarity(src.MatchName, tgt.MatchName))
}

// CompareWithName scores like Compare but floors the name signal at sim.
// The pattern stage uses this for dictionary alias pairs, which assert a
// name correspondence that edit distance cannot see across scripts.
func (s *Scorer) CompareWithName(src, tgt normalize.Normalized, sim float64) Score {
	if computed := nameSimilarity(src.MatchName, tgt.MatchName); computed > sim {
		sim = computed
	}
	return s.compare(src, tgt, sim)
}

func (s *Scorer) compare(src, tgt normalize.Normalized, sim float64) Score {
	if src.CategoryKnown && tgt.CategoryKnown && src.Category != tgt.Category {
		return Score{}
	}

	var sum, weight float64
	var matched []string

	// Name similarity is always evaluated; records without a name never
	// reach the scorer.
	sum += s.weights.Name * sim
	weight += s.weights.Name
	if sim > 0 {
		matched = append(matched, "name")
	}

	if src.HPKnown && tgt.HPKnown {
		weight += s.weights.HP
		if src.HP == tgt.HP {
			sum += s.weights.HP
			matched = append(matched, "hp")
		}
	}

	if src.CategoryKnown && tgt.CategoryKnown {
		// The gate above already rejected disagreement.
		weight += s.weights.Category
		sum += s.weights.Category
		matched = append(matched, "category")
	}

	if src.TypeKnown && tgt.TypeKnown {
		weight += s.weights.Type
		if src.Type == tgt.Type {
			sum += s.weights.Type
			matched = append(matched, "type")
		}
	}

	if weight == 0 {
		return Score{}
	}
	return Score{Value: sum / weight, MatchedOn: matched}
}

// nameSimilarity returns a [0,1] similarity between two folded,
// suffix-stripped names. Containment gets a high floor so "pikachu" scores
// well against "surfing pikachu"; otherwise normalized edit distance.
func nameSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	la := len([]rune(a))
	lb := len([]rune(b))
	if strings.Contains(a, b) || strings.Contains(b, a) {
		shorter, longer := la, lb
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		return 0.85 + 0.15*float64(shorter)/float64(longer)
	}

	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	sim := 1 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
	if sim < 0 {
		return 0
	}
	return sim
}
