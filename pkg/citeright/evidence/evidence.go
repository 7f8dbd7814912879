// Package evidence implements the Evidence Resolver:
// converting a candidate passage's token-index alignment into absolute
// document character offsets and verbatim evidence text.
package evidence

import (
	"sort"

	"github.com/evidentlabs/citeright/pkg/citeright/align"
	"github.com/evidentlabs/citeright/pkg/citeright/candidate"
	"github.com/evidentlabs/citeright/pkg/citeright/config"
	"github.com/evidentlabs/citeright/pkg/citeright/types"
)

// Result is the resolved evidence for one candidate's alignment: the
// enclosing citation range and, when multi-span evidence applies and
// stays under the span cap, the disjoint spans within it.
type Result struct {
	CharStart        int
	CharEnd          int
	Evidence         string
	Spans            []types.EvidenceSpan // nil unless multi-span evidence was emitted
	NumEvidenceSpans int
}

// ResolveWhole returns the candidate's entire passage as a single
// evidence span. Embedding-only citations are admitted precisely
// because the alignment signal was too weak to trust for span
// extraction, so their evidence is the whole passage rather than
// whatever fragment the weak alignment happened to touch.
func ResolveWhole(c candidate.Candidate) Result {
	start := c.Passage.DocCharStart
	end := c.Passage.DocCharEnd
	return Result{
		CharStart:        start,
		CharEnd:          end,
		Evidence:         substring(c.DocumentText, start-c.DocumentBase, end-c.DocumentBase),
		NumEvidenceSpans: 1,
	}
}

// Resolve converts one candidate's alignment into absolute document
// offsets, using the candidate's containing document text: the
// chunk's document_text when present, otherwise the passage's own
// source text — sources.Normalize already resolves that fallback
// into DocumentText.
func Resolve(c candidate.Candidate, a align.Alignment, cfg config.CitationConfig) Result {
	doc := c.DocumentText
	base := c.DocumentBase
	p0 := c.Passage.DocCharStart
	spans := c.Tokenized.TokenSpans

	start := p0 + spans[a.TokenStart].Start
	end := p0 + spans[a.TokenEnd-1].End

	result := Result{
		CharStart:        start,
		CharEnd:          end,
		Evidence:         substring(doc, start-base, end-base),
		NumEvidenceSpans: 1,
	}

	if cfg.MultiSpanEvidence && len(a.MatchBlocks) > 1 {
		multi := blocksToSpans(a.MatchBlocks, spans, p0, base, doc)
		multi = mergeAdjacent(multi, cfg.MultiSpanMergeGapChars, base, doc)
		if len(multi) <= cfg.MultiSpanMaxSpans {
			result.Spans = multi
			result.NumEvidenceSpans = len(multi)
		}
		// else: fall back to the single enclosing span already set above,
		// NumEvidenceSpans stays 1.
	}

	return result
}

// blocksToSpans converts each match block's half-open candidate-token
// range into a character range via the same token-span lookup Resolve
// uses for the enclosing citation. CharStart/CharEnd are absolute;
// doc is indexed locally at offset-base.
func blocksToSpans(blocks [][2]int, spans []types.Span, p0, base int, doc string) []types.EvidenceSpan {
	out := make([]types.EvidenceSpan, 0, len(blocks))
	for _, blk := range blocks {
		start := p0 + spans[blk[0]].Start
		end := p0 + spans[blk[1]-1].End
		out = append(out, types.EvidenceSpan{
			CharStart: start,
			CharEnd:   end,
			Evidence:  substring(doc, start-base, end-base),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CharStart < out[j].CharStart })
	return out
}

// mergeAdjacent repeatedly merges neighboring spans whose character
// gap is <= maxGap, assuming spans is sorted by
// CharStart and disjoint. A merged span's evidence is re-sliced from
// doc (indexed locally at offset-base) so it includes the gap text
// verbatim, not a concatenation.
func mergeAdjacent(spans []types.EvidenceSpan, maxGap, base int, doc string) []types.EvidenceSpan {
	if len(spans) == 0 {
		return spans
	}
	merged := []types.EvidenceSpan{spans[0]}
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.CharStart-last.CharEnd <= maxGap {
			last.CharEnd = s.CharEnd
			last.Evidence = substring(doc, last.CharStart-base, last.CharEnd-base)
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

func substring(s string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(s) {
		end = len(s)
	}
	if start >= end {
		return ""
	}
	return s[start:end]
}
