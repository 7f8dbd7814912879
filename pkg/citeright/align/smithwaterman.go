// Package align implements the local sequence aligner
// and the top-k candidate selector that the rest of the
// citeright pipeline scores passages with. The dynamic-programming core
// is adapted from a DNA Smith-Waterman implementation to operate over
// arbitrary integer token ID sequences, with deterministic
// tie-break and match-block extraction rules added on top.
package align

// direction is the traceback pointer recorded per matrix cell.
type direction uint8

const (
	stop direction = iota
	diag
	up
	left
)

// Params are the aligner's scoring parameters.
type Params struct {
	MatchScore    int
	MismatchScore int
	GapScore      int
}

// Reference is the straightforward O(m*n) Smith-Waterman aligner: a
// full score matrix plus a full direction matrix, generalizing
// pgfp's SmithWaterman/traceback pair from DNA bases to token IDs.
type Reference struct {
	Params Params
}

// NewReference builds a reference aligner with the given parameters.
func NewReference(p Params) *Reference {
	return &Reference{Params: p}
}

// Align computes the best local alignment of query against candidate
// under this aligner's scoring parameters.
func (r *Reference) Align(query, candidate []int) Alignment {
	return alignCore(query, candidate, r.Params, false)
}

// AlignWithBlocks is Align but additionally decomposes the traceback
// into match blocks.
func (r *Reference) AlignWithBlocks(query, candidate []int) Alignment {
	return alignCore(query, candidate, r.Params, true)
}

// Alignment is the result of a local (Smith-Waterman) alignment of a
// query token sequence against a candidate token sequence. Score is
// always >= 0. Either all index fields are zero (no alignment found)
// or QueryStart < QueryEnd and TokenStart < TokenEnd. The rest of the
// pipeline (candidate, evidence, orchestrate, score) consumes this
// type directly rather than a converted copy.
type Alignment struct {
	Score       int
	TokenStart  int
	TokenEnd    int
	QueryStart  int
	QueryEnd    int
	Matches     int
	MatchBlocks [][2]int // half-open [start, end) candidate-token ranges
}

// Found reports whether this alignment represents an actual local
// match rather than the zero value returned for disjoint inputs.
func (a Alignment) Found() bool {
	return a.Score > 0 && a.TokenEnd > a.TokenStart && a.QueryEnd > a.QueryStart
}

// endpoint is a cell (i, j) attaining the global maximum score.
type endpoint struct {
	i, j int
}

// alignCore runs the shared scoring + traceback + tie-break logic.
// withBlocks controls whether matched candidate indices are recorded
// for match-block decomposition (skipped when not requested, since it
// costs an extra pass per candidate end-point).
func alignCore(query, candidate []int, p Params, withBlocks bool) Alignment {
	m, n := len(query), len(candidate)
	if m == 0 || n == 0 {
		return Alignment{}
	}

	rows, cols := m+1, n+1
	scores := make([][]int, rows)
	dirs := make([][]direction, rows)
	for i := range scores {
		scores[i] = make([]int, cols)
		dirs[i] = make([]direction, cols)
	}

	maxScore := 0
	var endpoints []endpoint

	for i := 1; i < rows; i++ {
		qi := query[i-1]
		for j := 1; j < cols; j++ {
			match := p.MismatchScore
			if qi == candidate[j-1] {
				match = p.MatchScore
			}

			scoreDiag := scores[i-1][j-1] + match
			scoreUp := scores[i-1][j] + p.GapScore
			scoreLeft := scores[i][j-1] + p.GapScore

			best, dir := 0, stop
			// Priority DIAG > UP > LEFT on ties.
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

			if best > maxScore {
				maxScore = best
				endpoints = endpoints[:0]
				endpoints = append(endpoints, endpoint{i, j})
			} else if best == maxScore && best > 0 {
				endpoints = append(endpoints, endpoint{i, j})
			}
		}
	}

	if maxScore == 0 {
		return Alignment{}
	}

	var best Alignment
	var bestKey [5]int
	haveBest := false

	for _, ep := range endpoints {
		qStart, tStart, matches, blockIdx := traceback(dirs, scores, query, candidate, ep.i, ep.j, withBlocks)
		tEnd, qEnd := ep.j, ep.i

		// Tie-break among candidate end-points: token_start asc,
		// -(token_end-token_start) asc (i.e. longer span first),
		// query_start asc, token_end asc, query_end asc.
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

func less(a, b [5]int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// traceback follows pointers from (i, j) back to the first STOP cell,
// counting exact matches along DIAG steps and, if withBlocks, recording
// every matched candidate index for later block decomposition.
func traceback(dirs [][]direction, scores [][]int, query, candidate []int, i, j int, withBlocks bool) (queryStart, tokenStart, matches int, matchedIdx []int) {
	for i > 0 && j > 0 && dirs[i][j] != stop {
		switch dirs[i][j] {
		case diag:
			if query[i-1] == candidate[j-1] {
				matches++
				if withBlocks {
					matchedIdx = append(matchedIdx, j-1)
				}
			}
			i--
			j--
		case up:
			i--
		case left:
			j--
		}
	}
	return i, j, matches, matchedIdx
}

// blocksFromIndices sorts matched candidate indices and groups maximal
// runs of consecutive integers into half-open [start, end) blocks.
func blocksFromIndices(idx []int) [][2]int {
	if len(idx) == 0 {
		return nil
	}
	sorted := append([]int(nil), idx...)
	// traceback walks backward, so indices arrive in descending order;
	// a plain reverse suffices instead of a full sort.
	for l, r := 0, len(sorted)-1; l < r; l, r = l+1, r-1 {
		sorted[l], sorted[r] = sorted[r], sorted[l]
	}

	var blocks [][2]int
	start := sorted[0]
	prev := sorted[0]
	for _, v := range sorted[1:] {
		if v == prev+1 {
			prev = v
			continue
		}
		blocks = append(blocks, [2]int{start, prev + 1})
		start, prev = v, v
	}
	blocks = append(blocks, [2]int{start, prev + 1})
	return blocks
}
