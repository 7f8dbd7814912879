package evidence

import (
	"testing"

	"github.com/evidentlabs/citeright/pkg/citeright/align"
	"github.com/evidentlabs/citeright/pkg/citeright/candidate"
	"github.com/evidentlabs/citeright/pkg/citeright/config"
	"github.com/evidentlabs/citeright/pkg/citeright/types"
)

func mkCandidate(docText string, passageStart int, passage string, spans []types.Span) candidate.Candidate {
	return candidate.Candidate{
		DocumentText: docText,
		Passage: types.Passage{
			Text:         passage,
			DocCharStart: passageStart,
			DocCharEnd:   passageStart + len(passage),
		},
		Tokenized: types.TokenizedText{
			Text:       passage,
			TokenSpans: spans,
		},
	}
}

func TestResolveWholeReturnsFullPassage(t *testing.T) {
	doc := "intro. the whole passage text. outro."
	passage := "the whole passage text."
	c := mkCandidate(doc, 7, passage, []types.Span{{Start: 0, End: 4}})

	got := ResolveWhole(c)
	if got.CharStart != 7 || got.CharEnd != 7+len(passage) {
		t.Fatalf("CharStart/End = %d/%d, want %d/%d", got.CharStart, got.CharEnd, 7, 7+len(passage))
	}
	if got.Evidence != passage {
		t.Errorf("Evidence = %q, want %q", got.Evidence, passage)
	}
	if got.NumEvidenceSpans != 1 {
		t.Errorf("NumEvidenceSpans = %d, want 1", got.NumEvidenceSpans)
	}
}

func TestResolveSingleSpan(t *testing.T) {
	// document: "intro. the quick fox jumps. outro."
	// passage:  "the quick fox jumps." starts at offset 7
	doc := "intro. the quick fox jumps. outro."
	passage := "the quick fox jumps."
	spans := []types.Span{
		{Start: 0, End: 3},   // the
		{Start: 4, End: 9},   // quick
		{Start: 10, End: 13}, // fox
		{Start: 14, End: 19}, // jumps
	}
	c := mkCandidate(doc, 7, passage, spans)
	a := align.Alignment{Score: 8, TokenStart: 1, TokenEnd: 3, QueryStart: 0, QueryEnd: 2}

	cfg := config.DefaultCitationConfig()
	got := Resolve(c, a, cfg)

	wantStart := 7 + 4
	wantEnd := 7 + 13
	if got.CharStart != wantStart || got.CharEnd != wantEnd {
		t.Fatalf("CharStart/End = %d/%d, want %d/%d", got.CharStart, got.CharEnd, wantStart, wantEnd)
	}
	if got.Evidence != doc[wantStart:wantEnd] {
		t.Errorf("Evidence = %q, want %q", got.Evidence, doc[wantStart:wantEnd])
	}
	if got.NumEvidenceSpans != 1 {
		t.Errorf("NumEvidenceSpans = %d, want 1", got.NumEvidenceSpans)
	}
	if got.Spans != nil {
		t.Errorf("Spans = %v, want nil (multi-span disabled)", got.Spans)
	}
}

func TestResolveUsesChunkTextWhenNoDocumentText(t *testing.T) {
	passage := "standalone text"
	spans := []types.Span{{Start: 0, End: 10}}
	c := mkCandidate(passage, 0, passage, spans) // DocumentText == chunk's own text, passage starts at 0
	a := align.Alignment{Score: 2, TokenStart: 0, TokenEnd: 1, QueryStart: 0, QueryEnd: 1}

	got := Resolve(c, a, config.DefaultCitationConfig())
	if got.Evidence != "standalone" {
		t.Errorf("Evidence = %q, want %q", got.Evidence, "standalone")
	}
}

func TestResolveMultiSpanMerge(t *testing.T) {
	doc := "AA gap BB"
	passage := doc
	spans := []types.Span{
		{Start: 0, End: 2}, // AA
		{Start: 3, End: 6}, // gap
		{Start: 7, End: 9}, // BB
	}
	c := mkCandidate(doc, 0, passage, spans)
	a := align.Alignment{
		Score:       4,
		TokenStart:  0,
		TokenEnd:    3,
		QueryStart:  0,
		QueryEnd:    2,
		MatchBlocks: [][2]int{{0, 1}, {2, 3}}, // token 0 ("AA") and token 2 ("BB")
	}

	cfg := config.DefaultCitationConfig()
	cfg.MultiSpanEvidence = true
	cfg.MultiSpanMergeGapChars = 16 // gap of " gap " (5 chars) merges

	got := Resolve(c, a, cfg)
	if len(got.Spans) != 1 {
		t.Fatalf("expected merge into 1 span, got %d: %+v", len(got.Spans), got.Spans)
	}
	if got.Spans[0].Evidence != doc {
		t.Errorf("merged span evidence = %q, want whole doc %q", got.Spans[0].Evidence, doc)
	}
}

func TestResolveMultiSpanDisjointWhenGapTooLarge(t *testing.T) {
	doc := "AA..........BB"
	passage := doc
	spans := []types.Span{
		{Start: 0, End: 2},
		{Start: 12, End: 14},
	}
	c := mkCandidate(doc, 0, passage, spans)
	a := align.Alignment{
		Score:       4,
		TokenStart:  0,
		TokenEnd:    2,
		QueryStart:  0,
		QueryEnd:    2,
		MatchBlocks: [][2]int{{0, 1}, {1, 2}},
	}

	cfg := config.DefaultCitationConfig()
	cfg.MultiSpanEvidence = true
	cfg.MultiSpanMergeGapChars = 1

	got := Resolve(c, a, cfg)
	if len(got.Spans) != 2 {
		t.Fatalf("expected 2 disjoint spans, got %d", len(got.Spans))
	}
	if got.Spans[0].Evidence != "AA" || got.Spans[1].Evidence != "BB" {
		t.Errorf("unexpected span evidence: %+v", got.Spans)
	}
}

func TestResolveSourceChunkWithoutDocumentTextAtNonzeroBase(t *testing.T) {
	// A SourceChunk with no document_text reports absolute offsets
	// starting at base=123, but DocumentText is only the chunk's own
	// local text (length len(passage)), so evidence must be sliced at
	// offset-base, not offset.
	const base = 123
	passage := "the quick fox jumps"
	spans := []types.Span{
		{Start: 0, End: 3},   // the
		{Start: 4, End: 9},   // quick
		{Start: 10, End: 13}, // fox
		{Start: 14, End: 19}, // jumps
	}
	c := candidate.Candidate{
		DocumentText: passage, // chunk's own text, not a containing document
		DocumentBase: base,
		Passage: types.Passage{
			Text:         passage,
			DocCharStart: base,
			DocCharEnd:   base + len(passage),
		},
		Tokenized: types.TokenizedText{Text: passage, TokenSpans: spans},
	}
	a := align.Alignment{Score: 8, TokenStart: 1, TokenEnd: 3, QueryStart: 0, QueryEnd: 2}

	got := Resolve(c, a, config.DefaultCitationConfig())

	wantStart := base + 4
	wantEnd := base + 13
	if got.CharStart != wantStart || got.CharEnd != wantEnd {
		t.Fatalf("CharStart/End = %d/%d, want %d/%d", got.CharStart, got.CharEnd, wantStart, wantEnd)
	}
	if got.Evidence != "quick fox" {
		t.Errorf("Evidence = %q, want %q", got.Evidence, "quick fox")
	}
}

func TestResolveWholeSourceChunkWithoutDocumentTextAtNonzeroBase(t *testing.T) {
	const base = 123
	passage := "standalone text"
	c := candidate.Candidate{
		DocumentText: passage,
		DocumentBase: base,
		Passage: types.Passage{
			Text:         passage,
			DocCharStart: base,
			DocCharEnd:   base + len(passage),
		},
	}

	got := ResolveWhole(c)
	if got.CharStart != base || got.CharEnd != base+len(passage) {
		t.Fatalf("CharStart/End = %d/%d, want %d/%d", got.CharStart, got.CharEnd, base, base+len(passage))
	}
	if got.Evidence != passage {
		t.Errorf("Evidence = %q, want %q", got.Evidence, passage)
	}
}

func TestResolveMultiSpanFallsBackWhenOverMaxSpans(t *testing.T) {
	doc := "A.B.C.D"
	passage := doc
	spans := []types.Span{
		{Start: 0, End: 1},
		{Start: 2, End: 3},
		{Start: 4, End: 5},
		{Start: 6, End: 7},
	}
	c := mkCandidate(doc, 0, passage, spans)
	a := align.Alignment{
		Score:       8,
		TokenStart:  0,
		TokenEnd:    4,
		QueryStart:  0,
		QueryEnd:    4,
		MatchBlocks: [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 4}},
	}

	cfg := config.DefaultCitationConfig()
	cfg.MultiSpanEvidence = true
	cfg.MultiSpanMergeGapChars = 0 // no merging, stays 4 disjoint spans
	cfg.MultiSpanMaxSpans = 2

	got := Resolve(c, a, cfg)
	if got.Spans != nil {
		t.Errorf("expected fallback to nil Spans, got %v", got.Spans)
	}
	if got.NumEvidenceSpans != 1 {
		t.Errorf("NumEvidenceSpans = %d, want 1 on fallback", got.NumEvidenceSpans)
	}
	if got.CharStart != 0 || got.CharEnd != 7 {
		t.Errorf("enclosing span = [%d,%d), want [0,7)", got.CharStart, got.CharEnd)
	}
}
