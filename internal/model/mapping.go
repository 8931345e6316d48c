package model

// MappingType says which matching stage established a pair.
type MappingType string

const (
	MappingExactKey       MappingType = "exact_key"
	MappingNameSimilarity MappingType = "name_similarity"
	MappingPattern        MappingType = "pattern"
	MappingManual         MappingType = "manual"
)

// Outcome is the terminal state for one source record.
type Outcome string

const (
	OutcomeMatched   Outcome = "matched"
	OutcomeUnmatched Outcome = "unmatched"
)

// MappingEntry relates one Japanese source record to at most one English
// target record. Entries are immutable once the run completes; no two matched
// entries reference the same target.
type MappingEntry struct {
	Outcome         Outcome     `json:"outcome"`
	MappingType     MappingType `json:"mapping_type,omitempty"`
	SimilarityScore float64     `json:"similarity_score"`
	MatchedOn       []string    `json:"matched_on,omitempty"`

	// Ambiguous marks a similarity tie resolved by candidate order.
	Ambiguous bool `json:"ambiguous,omitempty"`
	// Reason explains an unmatched outcome ("below threshold",
	// "target already claimed", ...). BestScore is the near-miss score
	// considered before falling below threshold, kept for tuning.
	Reason    string  `json:"reason,omitempty"`
	BestScore float64 `json:"best_score,omitempty"`

	JapaneseID   string `json:"japanese_id,omitempty"`
	JapaneseName string `json:"japanese_name,omitempty"`
	Regulation   string `json:"regulation,omitempty"`
	EnglishID    string `json:"english_id,omitempty"`
	EnglishName  string `json:"english_name,omitempty"`
	Set          string `json:"set,omitempty"`
}

// ReportMetadata summarizes one integration run.
type ReportMetadata struct {
	TotalEnglish      int     `json:"total_english"`
	TotalJapanese     int     `json:"total_japanese"`
	TotalMappings     int     `json:"total_mappings"`
	ExactMatches      int     `json:"exact_matches"`
	SimilarityMatches int     `json:"similarity_matches"`
	PatternMatches    int     `json:"pattern_matches"`
	Unmatched         int     `json:"unmatched"`
	SkippedJapanese   int     `json:"skipped_japanese,omitempty"`
	SkippedEnglish    int     `json:"skipped_english,omitempty"`
	ExclusiveAdded    int     `json:"exclusive_added"`
	AverageSimilarity float64 `json:"average_similarity"`
}

// Report is the auditable mapping report: one entry per Japanese source
// record processed, in input order, including unmatched entries.
type Report struct {
	Metadata    ReportMetadata    `json:"metadata"`
	SetMappings map[string]string `json:"set_mappings"`
	Mappings    []MappingEntry    `json:"mappings"`
}
