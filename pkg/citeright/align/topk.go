package align

import (
	"runtime"
	"sort"
	"sync"
)

// Aligner is the interface the rest of the pipeline depends on, so
// that the reference and accelerated implementations (and any test
// doubles) are interchangeable.
type Aligner interface {
	Align(query, candidate []int) Alignment
	AlignWithBlocks(query, candidate []int) Alignment
}

// Scored pairs a candidate's index (its position in the candidates
// slice passed to TopK) with its alignment result, so callers can
// recover which passage produced it.
type Scored struct {
	Index     int
	Alignment Alignment
}

// TopK aligns a single query token sequence against every candidate
// and returns the k best-scoring alignments in deterministic order:
// score descending, then the tie-break tuple (token_start,
// -(token_end-token_start), query_start, candidate index, token_end,
// query_end) ascending. Candidate index sits ahead of token_end/
// query_end so ties are broken by input order before either endpoint,
// and since index is already unique this tuple alone ensures ordering
// never depends on slice iteration order. Alignments with Score <= 0
// (no match found) are excluded. k < 0 means unbounded.
func TopK(a Aligner, query []int, candidates [][]int, k int, withBlocks bool) []Scored {
	results := make([]Scored, 0, len(candidates))
	for i, c := range candidates {
		var aln Alignment
		if withBlocks {
			aln = a.AlignWithBlocks(query, c)
		} else {
			aln = a.Align(query, c)
		}
		if aln.Score <= 0 {
			continue
		}
		results = append(results, Scored{Index: i, Alignment: aln})
	}

	sort.Slice(results, func(i, j int) bool {
		ri, rj := results[i], results[j]
		if ri.Alignment.Score != rj.Alignment.Score {
			return ri.Alignment.Score > rj.Alignment.Score
		}
		ki := [6]int{ri.Alignment.TokenStart, -(ri.Alignment.TokenEnd - ri.Alignment.TokenStart), ri.Alignment.QueryStart, ri.Index, ri.Alignment.TokenEnd, ri.Alignment.QueryEnd}
		kj := [6]int{rj.Alignment.TokenStart, -(rj.Alignment.TokenEnd - rj.Alignment.TokenStart), rj.Alignment.QueryStart, rj.Index, rj.Alignment.TokenEnd, rj.Alignment.QueryEnd}
		for idx := range ki {
			if ki[idx] != kj[idx] {
				return ki[idx] < kj[idx]
			}
		}
		return false
	})

	if k >= 0 && len(results) > k {
		results = results[:k]
	}
	return results
}

// Best returns the single top alignment, equivalent to TopK(..., 1,
// ...)[0] but without allocating a result slice for the common
// single-candidate case a scorer needs per (answer span, passage) pair.
func Best(a Aligner, query, candidate []int, withBlocks bool) Alignment {
	if withBlocks {
		return a.AlignWithBlocks(query, candidate)
	}
	return a.Align(query, candidate)
}

// BatchAlign aligns query against every candidate concurrently, one
// alignment per goroutine bounded by a semaphore of size numWorkers
// (0 = GOMAXPROCS), mirroring pgfp's ConcurrentSmithWatermanBatch.
// Alignment is a pure function of its inputs, so this is safe
// to call from TopK's candidate loop whenever there are enough
// candidates to be worth the dispatch cost; the returned slice is
// aligned with candidates by index and unsorted — pass it through
// TopK-style sorting, not iterate it directly, if order matters.
func BatchAlign(a Aligner, query []int, candidates [][]int, numWorkers int, withBlocks bool) []Alignment {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numWorkers > len(candidates) {
		numWorkers = len(candidates)
	}
	if numWorkers <= 1 {
		out := make([]Alignment, len(candidates))
		for i, c := range candidates {
			out[i] = Best(a, query, c, withBlocks)
		}
		return out
	}

	out := make([]Alignment, len(candidates))
	sem := make(chan struct{}, numWorkers)
	var wg sync.WaitGroup
	for i, c := range candidates {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, cand []int) {
			defer wg.Done()
			defer func() { <-sem }()
			out[idx] = Best(a, query, cand, withBlocks)
		}(i, c)
	}
	wg.Wait()
	return out
}
