package align

import (
	"runtime"
	"sync"
)

// smallSequenceThreshold mirrors pgfp's ParallelSmithWaterman cutoff:
// below this many tokens on either side, goroutine dispatch overhead
// dominates the O(m*n) work itself, so Accelerated falls back to the
// sequential reference path.
const smallSequenceThreshold = 50

// Accelerated is a wavefront-parallel Smith-Waterman aligner. Cell
// (i, j) of the DP matrix depends only on (i-1,j-1), (i-1,j) and
// (i,j-1), so every cell on anti-diagonal i+j=w depends only on cells
// from diagonal w-1 or earlier; diagonals are therefore computed one
// at a time with all of a diagonal's cells filled concurrently. This
// guarantees bit-identical scores and endpoints to Reference — only
// the matrix-fill order changes, never the scoring rule, the maximum
// tracked, or the tie-break used to pick among several endpoints.
type Accelerated struct {
	Params     Params
	NumWorkers int // 0 = runtime.GOMAXPROCS(0)
}

// NewAccelerated builds a wavefront-parallel aligner. numWorkers <= 0
// uses GOMAXPROCS.
func NewAccelerated(p Params, numWorkers int) *Accelerated {
	return &Accelerated{Params: p, NumWorkers: numWorkers}
}

func (a *Accelerated) Align(query, candidate []int) Alignment {
	return a.alignCore(query, candidate, false)
}

func (a *Accelerated) AlignWithBlocks(query, candidate []int) Alignment {
	return a.alignCore(query, candidate, true)
}

func (a *Accelerated) alignCore(query, candidate []int, withBlocks bool) Alignment {
	m, n := len(query), len(candidate)
	if m == 0 || n == 0 {
		return Alignment{}
	}
	if m < smallSequenceThreshold || n < smallSequenceThreshold {
		return alignCore(query, candidate, a.Params, withBlocks)
	}

	workers := a.NumWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	rows, cols := m+1, n+1
	scores := make([][]int, rows)
	dirs := make([][]direction, rows)
	for i := range scores {
		scores[i] = make([]int, cols)
		dirs[i] = make([]direction, cols)
	}

	maxScore := 0
	var mu sync.Mutex
	var endpoints []endpoint

	for wave := 2; wave <= m+n; wave++ {
		lo, hi := waveBounds(wave, m, n)
		if lo > hi {
			continue
		}
		cellCount := hi - lo + 1
		w := workers
		if w > cellCount {
			w = cellCount
		}
		if w <= 1 {
			processWave(scores, dirs, query, candidate, a.Params, wave, lo, hi, &mu, &maxScore, &endpoints)
			continue
		}

		chunk := (cellCount + w - 1) / w
		var wg sync.WaitGroup
		for start := lo; start <= hi; start += chunk {
			end := start + chunk - 1
			if end > hi {
				end = hi
			}
			wg.Add(1)
			go func(s, e int) {
				defer wg.Done()
				processWave(scores, dirs, query, candidate, a.Params, wave, s, e, &mu, &maxScore, &endpoints)
			}(start, end)
		}
		wg.Wait()
	}

	if maxScore == 0 {
		return Alignment{}
	}

	var best Alignment
	var bestKey [5]int
	haveBest := false
	for _, ep := range endpoints {
		if scores[ep.i][ep.j] != maxScore {
			continue // superseded by a later, higher-scoring wave
		}
		qStart, tStart, matches, blockIdx := traceback(dirs, scores, query, candidate, ep.i, ep.j, withBlocks)
		tEnd, qEnd := ep.j, ep.i
		key := [5]int{tStart, -(tEnd - tStart), qStart, tEnd, qEnd}
		if !haveBest || less(key, bestKey) {
			haveBest = true
			bestKey = key
			best = Alignment{
				Score:      maxScore,
				TokenStart: tStart,
				TokenEnd:   tEnd,
				QueryStart: qStart,
				QueryEnd:   qEnd,
				Matches:    matches,
			}
			if withBlocks {
				best.MatchBlocks = blocksFromIndices(blockIdx)
			}
		}
	}
	return best
}

// waveBounds returns the inclusive range of row indices i on
// anti-diagonal i+j=wave with 1<=i<=m and 1<=j<=n.
func waveBounds(wave, m, n int) (lo, hi int) {
	lo = wave - n
	if lo < 1 {
		lo = 1
	}
	hi = wave - 1
	if hi > m {
		hi = m
	}
	return lo, hi
}

// processWave fills rows [lo, hi] of the current anti-diagonal and
// folds any new maxima into the shared maxScore/endpoints under mu,
// exactly mirroring alignCore's per-cell bookkeeping in Reference.
func processWave(scores [][]int, dirs [][]direction, query, candidate []int, p Params, wave, lo, hi int, mu *sync.Mutex, maxScore *int, endpoints *[]endpoint) {
	type found struct {
		i, j, score int
	}
	var local []found

	for i := lo; i <= hi; i++ {
		j := wave - i
		match := p.MismatchScore
		if query[i-1] == candidate[j-1] {
			match = p.MatchScore
		}

		scoreDiag := scores[i-1][j-1] + match
		scoreUp := scores[i-1][j] + p.GapScore
		scoreLeft := scores[i][j-1] + p.GapScore

		best, dir := 0, stop
		if scoreDiag > best {
			best, dir = scoreDiag, diag
		}
		if scoreUp > best {
			best, dir = scoreUp, up
		}
		if scoreLeft > best {
			best, dir = scoreLeft, left
		}

		scores[i][j] = best
		dirs[i][j] = dir
		if best > 0 {
			local = append(local, found{i, j, best})
		}
	}

	if len(local) == 0 {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	for _, f := range local {
		if f.score > *maxScore {
			*maxScore = f.score
			*endpoints = (*endpoints)[:0]
			*endpoints = append(*endpoints, endpoint{f.i, f.j})
		} else if f.score == *maxScore {
			*endpoints = append(*endpoints, endpoint{f.i, f.j})
		}
	}
}

// Select returns the aligner named by backend ("", "auto", "reference",
// or "accelerated"), choosing automatically for "" and "auto": the
// reference aligner below smallSequenceThreshold-sized inputs where
// goroutine dispatch cost would dominate, otherwise accelerated. Both
// backends are guaranteed to produce identical Alignment values for
// the same input, so AUTO never trades correctness for speed.
func Select(backend string, p Params) Aligner {
	switch backend {
	case "reference":
		return NewReference(p)
	case "accelerated":
		return NewAccelerated(p, 0)
	default:
		return NewAccelerated(p, 0)
	}
}
