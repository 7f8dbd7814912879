package align

import (
	"reflect"
	"testing"
)

func TestTopKOrdersByScoreDescending(t *testing.T) {
	r := NewReference(defaultParams())
	query := []int{1, 2, 3}
	candidates := [][]int{
		{9, 9, 9},       // no match, excluded
		{1, 2, 3},       // full match, score 6
		{1, 2, 100},     // partial match, lower score
		{0, 1, 2, 3, 0}, // full match, same score as index 1
	}

	results := TopK(r, query, candidates, -1, false)
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3 (zero-score candidate excluded)", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Alignment.Score > results[i-1].Alignment.Score {
			t.Fatalf("results not sorted by descending score: %+v", results)
		}
	}
}

func TestTopKTruncatesToK(t *testing.T) {
	r := NewReference(defaultParams())
	query := []int{1, 2}
	candidates := [][]int{{1, 2}, {1, 2, 9}, {9, 1, 2}}

	results := TopK(r, query, candidates, 1, false)
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
}

func TestTopKBreaksTiesByCandidateIndex(t *testing.T) {
	r := NewReference(defaultParams())
	query := []int{1, 2}
	// Identical candidates score and tie-break identically; index order
	// must decide, not map/slice iteration order.
	candidates := [][]int{{1, 2}, {1, 2}, {1, 2}}

	results := TopK(r, query, candidates, -1, false)
	for i, res := range results {
		if res.Index != i {
			t.Errorf("results[%d].Index = %d, want %d", i, res.Index, i)
		}
	}
}

// fixedAligner returns a canned Alignment per candidate index,
// regardless of the actual query/candidate contents, so tie-break
// ordering can be tested in isolation from the scoring DP.
type fixedAligner struct {
	byCandidate map[int]Alignment
	next        int
}

func (f *fixedAligner) Align(query, candidate []int) Alignment {
	a := f.byCandidate[f.next]
	f.next++
	return a
}

func (f *fixedAligner) AlignWithBlocks(query, candidate []int) Alignment {
	return f.Align(query, candidate)
}

func TestTopKBreaksTokenEndQueryEndTiesByCandidateIndexFirst(t *testing.T) {
	// Two candidates tie on (score, token_start, span, query_start) but
	// differ on query_end; candidate index must decide before
	// token_end/query_end do, so candidate 0 (higher query_end) must
	// still sort ahead of candidate 1 despite its larger query_end.
	aligner := &fixedAligner{byCandidate: map[int]Alignment{
		0: {Score: 10, TokenStart: 2, TokenEnd: 6, QueryStart: 0, QueryEnd: 9},
		1: {Score: 10, TokenStart: 2, TokenEnd: 6, QueryStart: 0, QueryEnd: 3},
	}}
	candidates := [][]int{{0}, {0}}

	results := TopK(aligner, []int{0}, candidates, -1, false)
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].Index != 0 || results[1].Index != 1 {
		t.Fatalf("results not ordered by candidate index ahead of query_end: %+v", results)
	}
}

func TestBatchAlignMatchesSequential(t *testing.T) {
	r := NewReference(defaultParams())
	query := []int{1, 2, 3}
	candidates := make([][]int, 20)
	for i := range candidates {
		candidates[i] = []int{i % 5, 1, 2, 3, i % 7}
	}

	sequential := make([]Alignment, len(candidates))
	for i, c := range candidates {
		sequential[i] = Best(r, query, c, false)
	}

	parallel := BatchAlign(r, query, candidates, 4, false)
	if len(parallel) != len(sequential) {
		t.Fatalf("len(parallel) = %d, want %d", len(parallel), len(sequential))
	}
	for i := range sequential {
		if !reflect.DeepEqual(parallel[i], sequential[i]) {
			t.Errorf("candidate %d: parallel=%+v sequential=%+v", i, parallel[i], sequential[i])
		}
	}
}
