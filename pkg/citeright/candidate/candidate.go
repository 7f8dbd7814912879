// Package candidate implements the Candidate Generator:
// for one answer span, it produces the ordered, deduplicated list of
// passages across every source that the score composer and orchestrator
// go on to evaluate.
package candidate

import (
	"context"
	"sort"

	"github.com/evidentlabs/citeright/pkg/citeright/config"
	"github.com/evidentlabs/citeright/pkg/citeright/embed"
	"github.com/evidentlabs/citeright/pkg/citeright/types"
)

// SourcePassages bundles one normalized source's passages with their
// tokenizations, parallel by index, so Generate can score every
// passage of every source against one answer span.
type SourcePassages struct {
	SourceID     string
	SourceIndex  int
	DocumentText string
	DocumentBase int // DocumentText[0] corresponds to this absolute char offset
	Passages     []types.Passage
	Tokenized    []types.TokenizedText // Tokenized[i] tokenizes Passages[i].Text
}

// Candidate is one (source, passage) pair produced for a single answer
// span, carrying everything downstream scoring and evidence resolution
// need. EmbeddingScore/HasEmbedding are populated whenever an embedder
// was active, independent of whether the candidate was admitted via
// the embedding prefilter or the lexical one.
type Candidate struct {
	SourceID       string
	SourceIndex    int
	PassageIndex   int
	Passage        types.Passage
	Tokenized      types.TokenizedText
	DocumentText   string
	DocumentBase   int // DocumentText[0] corresponds to this absolute char offset
	LexicalOverlap int
	LexicalScore   float64 // |answer ∩ passage| / |answer|, 0 if answer has no tokens
	EmbeddingScore float64
	HasEmbedding   bool
}

// globalID totally orders every (source, passage) pair by
// (SourceIndex, PassageIndex) ascending, the tiebreak both prefilters
// sort on.
type globalID struct {
	sourceIndex, passageIndex, flat int
}

// Generate produces the final candidate list for one answer span:
// lexical prefilter, optional embedding prefilter, union with
// first-occurrence precedence, capped to max_candidates_total.
func Generate(ctx context.Context, answerText string, answerTokens types.TokenizedText, sources []SourcePassages, cfg config.CitationConfig, embedder embed.Embedder) ([]Candidate, error) {
	all, ids := flatten(sources)
	if len(all) == 0 {
		return nil, nil
	}

	answerSet := tokenSet(answerTokens.TokenIDs)

	for i := range all {
		all[i].LexicalOverlap = overlapCount(answerSet, all[i].Tokenized.TokenIDs)
		if len(answerSet) > 0 {
			all[i].LexicalScore = float64(all[i].LexicalOverlap) / float64(len(answerSet))
		}
	}

	var lexicalOrder []int
	if cfg.MaxCandidatesLexical > 0 {
		lexicalOrder = topByLexical(all, ids, cfg.MaxCandidatesLexical)
	}

	embeddingActive := embedder != nil && (cfg.MaxCandidatesEmbedding > 0 || cfg.AllowEmbeddingOnly)
	var embeddingOrder []int
	if embeddingActive {
		if err := attachEmbeddings(ctx, answerText, all, embedder); err != nil {
			return nil, err
		}
		if cfg.MaxCandidatesEmbedding > 0 {
			embeddingOrder = topByEmbedding(all, ids, cfg.MaxCandidatesEmbedding)
		}
	}

	union := unionPreservingOrder(lexicalOrder, embeddingOrder)
	if cfg.MaxCandidatesTotal >= 0 && len(union) > cfg.MaxCandidatesTotal {
		union = union[:cfg.MaxCandidatesTotal]
	}

	out := make([]Candidate, 0, len(union))
	for _, idx := range union {
		out = append(out, all[idx])
	}
	return out, nil
}

// flatten lays out every passage of every source in (SourceIndex,
// PassageIndex) order and returns both the Candidate skeletons and
// their globalID ordering keys at the same positions.
func flatten(sources []SourcePassages) ([]Candidate, []globalID) {
	var all []Candidate
	var ids []globalID
	flat := 0
	for _, src := range sources {
		for pi, passage := range src.Passages {
			if len(src.Tokenized[pi].TokenIDs) == 0 {
				// Empty passage token list: the candidate is skipped.
				continue
			}
			all = append(all, Candidate{
				SourceID:     src.SourceID,
				SourceIndex:  src.SourceIndex,
				PassageIndex: pi,
				Passage:      passage,
				Tokenized:    src.Tokenized[pi],
				DocumentText: src.DocumentText,
				DocumentBase: src.DocumentBase,
			})
			ids = append(ids, globalID{sourceIndex: src.SourceIndex, passageIndex: pi, flat: flat})
			flat++
		}
	}
	return all, ids
}

func tokenSet(ids []int) map[int]struct{} {
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func overlapCount(set map[int]struct{}, ids []int) int {
	seen := make(map[int]struct{}, len(ids))
	count := 0
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := set[id]; ok {
			count++
		}
	}
	return count
}

// topByLexical returns the indices (into all/ids) of the top n
// candidates by LexicalOverlap descending, ties by (source_index,
// passage_index) ascending.
func topByLexical(all []Candidate, ids []globalID, n int) []int {
	order := make([]int, len(all))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		i, j := order[a], order[b]
		if all[i].LexicalOverlap != all[j].LexicalOverlap {
			return all[i].LexicalOverlap > all[j].LexicalOverlap
		}
		if ids[i].sourceIndex != ids[j].sourceIndex {
			return ids[i].sourceIndex < ids[j].sourceIndex
		}
		return ids[i].passageIndex < ids[j].passageIndex
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}

// topByEmbedding returns the indices of the top n candidates by
// EmbeddingScore descending, ties by ascending global index.
func topByEmbedding(all []Candidate, ids []globalID, n int) []int {
	order := make([]int, len(all))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		i, j := order[a], order[b]
		if all[i].EmbeddingScore != all[j].EmbeddingScore {
			return all[i].EmbeddingScore > all[j].EmbeddingScore
		}
		return ids[i].flat < ids[j].flat
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}

// unionPreservingOrder merges two index lists, keeping each index's
// first occurrence and dropping later duplicates.
func unionPreservingOrder(lists ...[]int) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, list := range lists {
		for _, idx := range list {
			if _, ok := seen[idx]; ok {
				continue
			}
			seen[idx] = struct{}{}
			out = append(out, idx)
		}
	}
	return out
}

// attachEmbeddings embeds the answer text and every candidate's
// passage text, then records each candidate's cosine similarity to
// the answer as EmbeddingScore.
func attachEmbeddings(ctx context.Context, answerText string, all []Candidate, embedder embed.Embedder) error {
	texts := make([]string, 0, len(all)+1)
	texts = append(texts, answerText)
	for _, c := range all {
		texts = append(texts, c.Passage.Text)
	}
	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return err
	}
	answerVec := vectors[0]
	for i := range all {
		all[i].EmbeddingScore = embed.CosineSimilarity(answerVec, vectors[i+1])
		all[i].HasEmbedding = true
	}
	return nil
}
