// Package score implements the Score Composer:
// combining an alignment, answer coverage, evidence coverage, lexical
// overlap, and embedding similarity into one final float with a
// component breakdown, following a weighted multi-signal
// Scorer/ScoreBreakdown pair.
package score

import (
	"github.com/evidentlabs/citeright/pkg/citeright/align"
	"github.com/evidentlabs/citeright/pkg/citeright/config"
)

// Input is everything the composer needs for one (answer span,
// candidate passage, alignment) triple.
type Input struct {
	Alignment         align.Alignment
	MatchScore        int
	AnswerTokenCount  int
	PassageTokenCount int
	LexicalScore      float64 // |answer ∩ passage| / |answer|, precomputed by candidate generation
	EmbeddingScore    float64
	HasEmbedding      bool
}

// Breakdown is the composed final score plus every named signal that
// went into it.
type Breakdown struct {
	AlignmentScore      int // raw Smith-Waterman score, recorded verbatim rather than normalized
	NormalizedAlignment float64
	AnswerCoverage      float64
	EvidenceCoverage    float64
	LexicalScore        float64
	EmbeddingScore      float64
	Total               float64
}

// Composer holds the configured weights used to combine signals.
type Composer struct {
	weights config.Weights
}

// NewComposer builds a composer from configuration weights.
func NewComposer(w config.Weights) *Composer {
	return &Composer{weights: w}
}

// Score computes the weighted final score and its component
// breakdown for one candidate.
func (c *Composer) Score(in Input) Breakdown {
	b := Breakdown{
		AlignmentScore:      in.Alignment.Score,
		NormalizedAlignment: normalizedAlignment(in.Alignment.Score, in.MatchScore, in.AnswerTokenCount),
		AnswerCoverage:      answerCoverage(in.Alignment, in.AnswerTokenCount),
		EvidenceCoverage:    evidenceCoverage(in.Alignment, in.PassageTokenCount),
		LexicalScore:        in.LexicalScore,
	}
	if in.HasEmbedding {
		b.EmbeddingScore = in.EmbeddingScore
	}

	b.Total = c.weights.Alignment*b.NormalizedAlignment +
		c.weights.AnswerCoverage*b.AnswerCoverage +
		c.weights.EvidenceCoverage*b.EvidenceCoverage +
		c.weights.Lexical*b.LexicalScore +
		c.weights.Embedding*b.EmbeddingScore

	return b
}

// Components renders a Breakdown as a Citation.Components map, before
// num_evidence_spans (added once evidence is resolved) and
// embedding_only (added by the orchestrator when applicable) are
// known.
func (b Breakdown) Components() map[string]float64 {
	return map[string]float64{
		"alignment_score":      float64(b.AlignmentScore),
		"normalized_alignment": b.NormalizedAlignment,
		"answer_coverage":      b.AnswerCoverage,
		"evidence_coverage":    b.EvidenceCoverage,
		"lexical_score":        b.LexicalScore,
		"embedding_score":      b.EmbeddingScore,
	}
}

func normalizedAlignment(alignmentScore, matchScore, answerTokenCount int) float64 {
	denom := float64(matchScore * answerTokenCount)
	if denom <= 0 {
		return 0
	}
	return clamp01(float64(alignmentScore) / denom)
}

func answerCoverage(a align.Alignment, answerTokenCount int) float64 {
	if answerTokenCount <= 0 {
		return 0
	}
	return clamp01(float64(a.QueryEnd-a.QueryStart) / float64(answerTokenCount))
}

func evidenceCoverage(a align.Alignment, passageTokenCount int) float64 {
	if passageTokenCount <= 0 {
		return 0
	}
	return clamp01(float64(a.TokenEnd-a.TokenStart) / float64(passageTokenCount))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
