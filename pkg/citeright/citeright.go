// Package citeright implements a citation and attribution alignment
// engine: given an answer string and a list of sources, it finds,
// scores, and returns the evidence spans that best back each sentence
// of the answer. The public surface is a constructor plus one
// pipeline method: New(Options) to build an Engine, then
// AlignCitations(ctx, answer, sources) to run it.
package citeright

import (
	"context"

	"github.com/evidentlabs/citeright/pkg/citeright/candidate"
	"github.com/evidentlabs/citeright/pkg/citeright/config"
	"github.com/evidentlabs/citeright/pkg/citeright/embed"
	"github.com/evidentlabs/citeright/pkg/citeright/orchestrate"
	"github.com/evidentlabs/citeright/pkg/citeright/sources"
	"github.com/evidentlabs/citeright/pkg/citeright/text"
	"github.com/evidentlabs/citeright/pkg/citeright/types"
)

// Tokenizer is anything that turns text into token IDs with character
// spans. *text.Tokenizer is the
// default implementation.
type Tokenizer interface {
	Tokenize(text string) types.TokenizedText
}

// SourceSegmenter splits a source document's text into sentence-like
// segments for passage windowing. *text.Segmenter is the default.
type SourceSegmenter interface {
	Segment(text string) []types.Segment
}

// AnswerSegmenter splits the answer string into attributable spans.
// *text.AnswerSegmenter is the default.
type AnswerSegmenter interface {
	Segment(text string) []types.AnswerSpan
}

// Embedder is the optional embedding collaborator; absent
// means the embedding prefilter and embedding-only admission are
// disabled, which is not an error.
type Embedder = embed.Embedder

// Options configures an Engine. Every field is optional; a nil field
// falls back to citeright's default for that collaborator.
type Options struct {
	Config          *config.CitationConfig
	Tokenizer       Tokenizer
	SourceSegmenter SourceSegmenter
	AnswerSegmenter AnswerSegmenter
	Embedder        Embedder
}

// Engine is citeright's entry point: a configured pipeline ready to
// align an answer against a set of sources. It holds no per-call
// state and AlignCitations may be called repeatedly. The default
// Tokenizer grows its vocabulary across calls without locking, so
// concurrent AlignCitations calls are not safe when it is in use.
type Engine struct {
	cfg             config.CitationConfig
	tokenizer       Tokenizer
	sourceSegmenter SourceSegmenter
	answerSegmenter AnswerSegmenter
	embedder        Embedder
}

// New validates the configuration and builds an Engine, filling in
// citeright's default segmenter, tokenizer, and answer segmenter for
// any collaborator left nil. Configuration errors are rejected here,
// at construction, not on the first call to AlignCitations.
func New(opts Options) (*Engine, error) {
	cfg := config.DefaultCitationConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tokenizer := opts.Tokenizer
	if tokenizer == nil {
		tokenizer = text.NewDefaultTokenizer()
	}
	sourceSeg := opts.SourceSegmenter
	if sourceSeg == nil {
		sourceSeg = text.NewDefaultSegmenter()
	}
	answerSeg := opts.AnswerSegmenter
	if answerSeg == nil {
		answerSeg = text.NewAnswerSegmenter()
	}

	return &Engine{
		cfg:             cfg,
		tokenizer:       tokenizer,
		sourceSegmenter: sourceSeg,
		answerSegmenter: answerSeg,
		embedder:        opts.Embedder,
	}, nil
}

// AlignCitations runs the full pipeline:
// segment the answer, normalize and window the sources, then for each
// answer span generate candidates, score, gate, resolve evidence, and
// order the result. Empty or whitespace-only answers return a nil,
// nil result: the segmenter produces no
// spans, so there is nothing to iterate.
func (e *Engine) AlignCitations(ctx context.Context, answer string, rawSources []any) ([]types.SpanCitations, error) {
	spans := e.answerSegmenter.Segment(answer)
	if len(spans) == 0 {
		return nil, nil
	}

	chunks, err := sources.Normalize(rawSources)
	if err != nil {
		return nil, err
	}

	sourcePassages := make([]candidate.SourcePassages, 0, len(chunks))
	for _, chunk := range chunks {
		sourcePassages = append(sourcePassages, e.windowChunk(chunk))
	}

	results := make([]types.SpanCitations, len(spans))
	for i, span := range spans {
		answerTokens := e.tokenizer.Tokenize(span.Text)
		sc, err := orchestrate.Resolve(ctx, span, answerTokens, sourcePassages, e.cfg, e.embedder)
		if err != nil {
			return nil, err
		}
		results[i] = sc
	}

	return results, nil
}

// windowChunk segments one normalized source chunk into passages
// and tokenizes each, translating passage offsets from
// the chunk's own text into the chunk's containing document's
// coordinate space.
func (e *Engine) windowChunk(chunk sources.Chunk) candidate.SourcePassages {
	passages := text.GeneratePassages(chunk.Text, e.sourceSegmenter, e.cfg.WindowSizeSentences, e.cfg.WindowStrideSentences)

	tokenized := make([]types.TokenizedText, len(passages))
	for i := range passages {
		passages[i].DocCharStart += chunk.DocCharStart
		passages[i].DocCharEnd += chunk.DocCharStart
		tokenized[i] = e.tokenizer.Tokenize(passages[i].Text)
	}

	return candidate.SourcePassages{
		SourceID:     chunk.SourceID,
		SourceIndex:  chunk.SourceIndex,
		DocumentText: chunk.DocumentText,
		DocumentBase: chunk.DocumentBase,
		Passages:     passages,
		Tokenized:    tokenized,
	}
}
