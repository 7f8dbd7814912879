// Package config holds citeright's tunable CitationConfig, its
// defaults, and validation — small YAML-backed config value types
// combined into a single options table.
package config

import (
	"math"

	"github.com/evidentlabs/citeright/pkg/citeright/internalerr"
)

// Weights are the linear combination weights for the score composer.
type Weights struct {
	Alignment        float64 `yaml:"alignment"`
	AnswerCoverage   float64 `yaml:"answer_coverage"`
	EvidenceCoverage float64 `yaml:"evidence_coverage"`
	Lexical          float64 `yaml:"lexical"`
	Embedding        float64 `yaml:"embedding"`
}

// DefaultWeights returns citeright's default score-composer weights.
func DefaultWeights() Weights {
	return Weights{
		Alignment:        1.0,
		AnswerCoverage:   1.0,
		EvidenceCoverage: 0.0,
		Lexical:          0.5,
		Embedding:        0.5,
	}
}

// CitationConfig is the full set of recognised options.
// The zero value is not generally valid; use DefaultCitationConfig.
type CitationConfig struct {
	TopK                         int     `yaml:"top_k"`
	MinFinalScore                float64 `yaml:"min_final_score"`
	MinAlignmentScore            int     `yaml:"min_alignment_score"`
	MinAnswerCoverage            float64 `yaml:"min_answer_coverage"`
	SupportedAnswerCoverage      float64 `yaml:"supported_answer_coverage"`
	AllowEmbeddingOnly           bool    `yaml:"allow_embedding_only"`
	MinEmbeddingSimilarity       float64 `yaml:"min_embedding_similarity"`
	SupportedEmbeddingSimilarity float64 `yaml:"supported_embedding_similarity"`

	WindowSizeSentences   int `yaml:"window_size_sentences"`
	WindowStrideSentences int `yaml:"window_stride_sentences"`

	MaxCandidatesLexical   int `yaml:"max_candidates_lexical"`
	MaxCandidatesEmbedding int `yaml:"max_candidates_embedding"`
	MaxCandidatesTotal     int `yaml:"max_candidates_total"`

	MaxCitationsPerSource int `yaml:"max_citations_per_source"`

	Weights Weights `yaml:"weights"`

	MatchScore    int `yaml:"match_score"`
	MismatchScore int `yaml:"mismatch_score"`
	GapScore      int `yaml:"gap_score"`

	PreferSourceOrder bool `yaml:"prefer_source_order"`

	MultiSpanEvidence      bool `yaml:"multi_span_evidence"`
	MultiSpanMergeGapChars int  `yaml:"multi_span_merge_gap_chars"`
	MultiSpanMaxSpans      int  `yaml:"multi_span_max_spans"`

	// Backend selects the aligner implementation: "auto" (default),
	// "reference", or "accelerated". See package align.
	Backend string `yaml:"backend"`
}

// DefaultCitationConfig returns citeright's default configuration.
func DefaultCitationConfig() CitationConfig {
	return CitationConfig{
		TopK:                         3,
		MinFinalScore:                0.0,
		MinAlignmentScore:            0,
		MinAnswerCoverage:            0.2,
		SupportedAnswerCoverage:      0.6,
		AllowEmbeddingOnly:           false,
		MinEmbeddingSimilarity:       0.3,
		SupportedEmbeddingSimilarity: 0.6,
		WindowSizeSentences:          1,
		WindowStrideSentences:        1,
		MaxCandidatesLexical:         200,
		MaxCandidatesEmbedding:       200,
		MaxCandidatesTotal:           400,
		MaxCitationsPerSource:        2,
		Weights:                      DefaultWeights(),
		MatchScore:                   2,
		MismatchScore:                -1,
		GapScore:                     -1,
		PreferSourceOrder:            true,
		MultiSpanEvidence:            false,
		MultiSpanMergeGapChars:       16,
		MultiSpanMaxSpans:            5,
		Backend:                      "auto",
	}
}

// Validate rejects configuration errors at call start:
// window/stride below 1, negative caps, an unknown backend, and
// non-finite weights.
func (c CitationConfig) Validate() error {
	if c.WindowSizeSentences < 1 {
		return &internalerr.ConfigError{Option: "window_size_sentences", Reason: "must be >= 1"}
	}
	if c.WindowStrideSentences < 1 {
		return &internalerr.ConfigError{Option: "window_stride_sentences", Reason: "must be >= 1"}
	}
	if c.MaxCandidatesLexical < 0 {
		return &internalerr.ConfigError{Option: "max_candidates_lexical", Reason: "must be >= 0"}
	}
	if c.MaxCandidatesEmbedding < 0 {
		return &internalerr.ConfigError{Option: "max_candidates_embedding", Reason: "must be >= 0"}
	}
	if c.MaxCandidatesTotal < 0 {
		return &internalerr.ConfigError{Option: "max_candidates_total", Reason: "must be >= 0"}
	}
	if c.MaxCitationsPerSource < 0 {
		return &internalerr.ConfigError{Option: "max_citations_per_source", Reason: "must be >= 0"}
	}
	if c.MultiSpanMergeGapChars < 0 {
		return &internalerr.ConfigError{Option: "multi_span_merge_gap_chars", Reason: "must be >= 0"}
	}
	if c.MultiSpanMaxSpans < 0 {
		return &internalerr.ConfigError{Option: "multi_span_max_spans", Reason: "must be >= 0"}
	}
	switch c.Backend {
	case "", "auto", "reference", "accelerated":
	default:
		return &internalerr.ConfigError{Option: "backend", Reason: "must be one of auto|reference|accelerated"}
	}
	for name, w := range map[string]float64{
		"weights.alignment":         c.Weights.Alignment,
		"weights.answer_coverage":   c.Weights.AnswerCoverage,
		"weights.evidence_coverage": c.Weights.EvidenceCoverage,
		"weights.lexical":           c.Weights.Lexical,
		"weights.embedding":         c.Weights.Embedding,
	} {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return &internalerr.ConfigError{Option: name, Reason: "must be a finite number"}
		}
	}
	return nil
}
