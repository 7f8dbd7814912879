// Package orchestrate implements the Citation Orchestrator: for one
// answer span, it drives candidate generation, scoring, gating,
// evidence resolution, ordering, and the per-source/top-k caps, then
// derives the span's support status. The shape — build candidates,
// score, sort, truncate, wrap into a result record — generalizes a
// single ranked-search pipeline into one ranked citation list per
// answer span.
package orchestrate

import (
	"context"
	"sort"

	"github.com/evidentlabs/citeright/pkg/citeright/align"
	"github.com/evidentlabs/citeright/pkg/citeright/candidate"
	"github.com/evidentlabs/citeright/pkg/citeright/config"
	"github.com/evidentlabs/citeright/pkg/citeright/embed"
	"github.com/evidentlabs/citeright/pkg/citeright/evidence"
	"github.com/evidentlabs/citeright/pkg/citeright/score"
	"github.com/evidentlabs/citeright/pkg/citeright/types"
)

// scoreEpsilon is the near-tie tolerance prefer_source_order applies
// around the top score.
const scoreEpsilon = 1e-9

// Resolve runs the full per-span pipeline for one answer span and
// returns its ordered citations plus derived status.
func Resolve(
	ctx context.Context,
	span types.AnswerSpan,
	answerTokens types.TokenizedText,
	sources []candidate.SourcePassages,
	cfg config.CitationConfig,
	embedder embed.Embedder,
) (types.SpanCitations, error) {
	if len(sources) == 0 {
		return types.SpanCitations{AnswerSpan: span, Status: types.StatusUnsupported}, nil
	}

	candidates, err := candidate.Generate(ctx, span.Text, answerTokens, sources, cfg, embedder)
	if err != nil {
		return types.SpanCitations{}, err
	}
	if len(candidates) == 0 {
		return types.SpanCitations{AnswerSpan: span, Status: types.StatusUnsupported}, nil
	}

	aligner := align.Select(cfg.Backend, align.Params{
		MatchScore:    cfg.MatchScore,
		MismatchScore: cfg.MismatchScore,
		GapScore:      cfg.GapScore,
	})

	scored := make([]scoredCitation, 0, len(candidates))
	composer := score.NewComposer(cfg.Weights)
	for i, c := range candidates {
		var alignment align.Alignment
		if cfg.MultiSpanEvidence {
			alignment = aligner.AlignWithBlocks(answerTokens.TokenIDs, c.Tokenized.TokenIDs)
		} else {
			alignment = aligner.Align(answerTokens.TokenIDs, c.Tokenized.TokenIDs)
		}

		breakdown := composer.Score(score.Input{
			Alignment:         alignment,
			MatchScore:        cfg.MatchScore,
			AnswerTokenCount:  len(answerTokens.TokenIDs),
			PassageTokenCount: len(c.Tokenized.TokenIDs),
			LexicalScore:      c.LexicalScore,
			EmbeddingScore:    c.EmbeddingScore,
			HasEmbedding:      c.HasEmbedding,
		})

		embeddingOnly := cfg.AllowEmbeddingOnly && c.HasEmbedding && c.EmbeddingScore >= cfg.MinEmbeddingSimilarity

		if !gate(alignment, breakdown, cfg, embeddingOnly) {
			continue
		}

		var ev evidence.Result
		if embeddingOnly {
			ev = evidence.ResolveWhole(c)
		} else {
			ev = evidence.Resolve(c, alignment, cfg)
		}

		components := breakdown.Components()
		components["num_evidence_spans"] = float64(ev.NumEvidenceSpans)
		if embeddingOnly {
			components["embedding_only"] = 1
		}

		scored = append(scored, scoredCitation{
			citation: types.Citation{
				Score:          breakdown.Total,
				SourceID:       c.SourceID,
				SourceIndex:    c.SourceIndex,
				CandidateIndex: i,
				CharStart:      ev.CharStart,
				CharEnd:        ev.CharEnd,
				Evidence:       ev.Evidence,
				EvidenceSpans:  ev.Spans,
				Components:     components,
			},
			answerCoverage: breakdown.AnswerCoverage,
			embeddingScore: c.EmbeddingScore,
			embeddingOnly:  embeddingOnly,
		})
	}

	if len(scored) == 0 {
		return types.SpanCitations{AnswerSpan: span, Status: types.StatusUnsupported}, nil
	}

	order(scored, cfg.PreferSourceOrder)
	scored = capPerSource(scored, cfg.MaxCitationsPerSource)
	if cfg.TopK >= 0 && len(scored) > cfg.TopK {
		scored = scored[:cfg.TopK]
	}

	citations := make([]types.Citation, len(scored))
	for i, sc := range scored {
		citations[i] = sc.citation
	}

	return types.SpanCitations{
		AnswerSpan: span,
		Citations:  citations,
		Status:     status(scored, cfg),
	}, nil
}

// scoredCitation carries the signals needed for gating, ordering, and
// status derivation alongside the Citation that survives to the
// caller.
type scoredCitation struct {
	citation       types.Citation
	answerCoverage float64
	embeddingScore float64
	embeddingOnly  bool
}

// gate decides whether a candidate clears the admission floors:
// integer alignment score and answer-coverage floors are waived for
// embedding-only admissions; the final composed score floor always
// applies.
func gate(a align.Alignment, b score.Breakdown, cfg config.CitationConfig, embeddingOnly bool) bool {
	if !embeddingOnly && a.Score < cfg.MinAlignmentScore {
		return false
	}
	if !embeddingOnly && b.AnswerCoverage < cfg.MinAnswerCoverage {
		return false
	}
	if b.Total < cfg.MinFinalScore {
		return false
	}
	return true
}

// order sorts by final score descending with the deterministic
// tie-break (source_index, candidate_index, char_start, char_end), then
// optionally applies a secondary stable pass preferring earlier
// source_index among citations within scoreEpsilon of the top score.
func order(scored []scoredCitation, preferSourceOrder bool) {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].citation.Score != scored[j].citation.Score {
			return scored[i].citation.Score > scored[j].citation.Score
		}
		return tieBreakLess(scored[i].citation, scored[j].citation)
	})

	if !preferSourceOrder || len(scored) == 0 {
		return
	}
	top := scored[0].citation.Score
	cut := 0
	for cut < len(scored) && top-scored[cut].citation.Score <= scoreEpsilon {
		cut++
	}
	sort.SliceStable(scored[:cut], func(i, j int) bool {
		a, b := scored[i].citation, scored[j].citation
		if a.SourceIndex != b.SourceIndex {
			return a.SourceIndex < b.SourceIndex
		}
		return tieBreakLess(a, b)
	})
}

func tieBreakLess(a, b types.Citation) bool {
	if a.SourceIndex != b.SourceIndex {
		return a.SourceIndex < b.SourceIndex
	}
	if a.CandidateIndex != b.CandidateIndex {
		return a.CandidateIndex < b.CandidateIndex
	}
	if a.CharStart != b.CharStart {
		return a.CharStart < b.CharStart
	}
	return a.CharEnd < b.CharEnd
}

// capPerSource keeps at most maxPerSource citations for each source,
// in the already-established order. maxPerSource <= 0 means unlimited.
func capPerSource(scored []scoredCitation, maxPerSource int) []scoredCitation {
	if maxPerSource <= 0 {
		return scored
	}
	counts := make(map[int]int)
	out := scored[:0]
	for _, sc := range scored {
		if counts[sc.citation.SourceIndex] >= maxPerSource {
			continue
		}
		counts[sc.citation.SourceIndex]++
		out = append(out, sc)
	}
	return out
}

// status derives the three-valued support judgment from the retained,
// ordered citations.
func status(scored []scoredCitation, cfg config.CitationConfig) types.Status {
	if len(scored) == 0 {
		return types.StatusUnsupported
	}
	for _, sc := range scored {
		if sc.embeddingOnly {
			if sc.embeddingScore >= cfg.SupportedEmbeddingSimilarity {
				return types.StatusSupported
			}
			continue
		}
		if sc.answerCoverage >= cfg.SupportedAnswerCoverage {
			return types.StatusSupported
		}
	}
	return types.StatusPartial
}
