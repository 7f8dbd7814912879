// Package text holds the default tokenizer, sentence/paragraph
// segmenter, and passage windower citeright uses unless a caller
// supplies its own collaborators.
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/evidentlabs/citeright/pkg/citeright/types"
)

// TokenizerOptions controls the default tokenizer's normalization
// behavior.
type TokenizerOptions struct {
	NormalizeNumbers  bool
	NormalizePercent  bool
	NormalizeCurrency bool
}

// DefaultTokenizerOptions enables every normalization rule, matching
// the reference tokenizer's defaults.
func DefaultTokenizerOptions() TokenizerOptions {
	return TokenizerOptions{
		NormalizeNumbers:  true,
		NormalizePercent:  true,
		NormalizeCurrency: true,
	}
}

// Tokenizer splits text into alphanumeric and currency/percent-symbol
// tokens, assigning each distinct normalized form a stable integer ID.
// The vocabulary grows across calls and is this collaborator's only
// mutable state; it is not safe for
// concurrent Tokenize calls on the same *Tokenizer.
type Tokenizer struct {
	opts   TokenizerOptions
	vocab  map[string]int
	nextID int
}

// NewTokenizer builds a tokenizer with the given normalization options.
func NewTokenizer(opts TokenizerOptions) *Tokenizer {
	return &Tokenizer{opts: opts, vocab: make(map[string]int), nextID: 1}
}

// NewDefaultTokenizer builds a tokenizer with every normalization rule
// enabled, the configuration citeright falls back to when no Tokenizer
// collaborator is supplied.
func NewDefaultTokenizer() *Tokenizer {
	return NewTokenizer(DefaultTokenizerOptions())
}

// Tokenize scans text left to right, assigning each run it recognizes
// as a token a token ID and a character span into text.
// Empty or whitespace-only text yields zero tokens, not an error.
func (t *Tokenizer) Tokenize(text string) types.TokenizedText {
	runes := []rune(text)
	var ids []int
	var spans []types.Span

	for _, sp := range tokenSpans(runes) {
		start, end := sp[0], sp[1]
		raw := string(runes[start:end])
		normalized := t.normalize(raw)
		if normalized == "" {
			continue
		}
		id, ok := t.vocab[normalized]
		if !ok {
			id = t.nextID
			t.vocab[normalized] = id
			t.nextID++
		}
		ids = append(ids, id)
		spans = append(spans, types.Span{Start: runeOffsetToByte(text, runes, start), End: runeOffsetToByte(text, runes, end)})
	}

	return types.TokenizedText{Text: text, TokenIDs: ids, TokenSpans: spans}
}

// runeOffsetToByte converts a rune index into runes (which came from
// text) back to the byte offset text uses, so spans line up with the
// byte offsets the rest of the pipeline (and Go string slicing) uses.
func runeOffsetToByte(text string, runes []rune, runeIdx int) int {
	if runeIdx <= 0 {
		return 0
	}
	if runeIdx >= len(runes) {
		return len(text)
	}
	return len(string(runes[:runeIdx]))
}

// tokenSpans walks runes and returns half-open [start, end) rune index
// ranges for each recognized token: a run of digits (optionally with
// embedded '.' or ',' between two digits), a single currency or
// percent symbol, or a run of letters/digits with embedded internal
// apostrophes or hyphens.
func tokenSpans(runes []rune) [][2]int {
	var spans [][2]int
	idx := 0
	n := len(runes)
	for idx < n {
		r := runes[idx]

		if unicode.IsDigit(r) {
			start := idx
			idx++
			for idx < n {
				c := runes[idx]
				if unicode.IsDigit(c) {
					idx++
					continue
				}
				if (c == '.' || c == ',') && idx+1 < n &&
					unicode.IsDigit(runes[idx-1]) && unicode.IsDigit(runes[idx+1]) {
					idx++
					continue
				}
				break
			}
			spans = append(spans, [2]int{start, idx})
			continue
		}

		if isCurrencyOrPercent(r) {
			spans = append(spans, [2]int{idx, idx + 1})
			idx++
			continue
		}

		if isAlnum(r) {
			start := idx
			idx++
			for idx < n {
				c := runes[idx]
				if isAlnum(c) {
					idx++
					continue
				}
				if (c == '\'' || c == '’') && idx+1 < n &&
					isAlnum(runes[idx-1]) && isAlnum(runes[idx+1]) {
					idx++
					continue
				}
				if c == '-' && idx+1 < n &&
					isAlnum(runes[idx-1]) && isAlnum(runes[idx+1]) {
					idx++
					continue
				}
				break
			}
			spans = append(spans, [2]int{start, idx})
			continue
		}

		idx++
	}
	return spans
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isCurrencyOrPercent(r rune) bool {
	switch r {
	case '%', '$', '€', '£': // %, $, €, £
		return true
	}
	return false
}

// normalize applies NFKC normalization, casefolding, curly-apostrophe
// unification, digit-internal comma stripping, and percent/currency
// symbol spelling-out.
func (t *Tokenizer) normalize(token string) string {
	normalized := strings.ToLower(norm.NFKC.String(token))
	normalized = strings.ReplaceAll(normalized, "’", "'")

	if t.opts.NormalizeNumbers && normalized != "" && unicode.IsDigit([]rune(normalized)[0]) {
		normalized = strings.ReplaceAll(normalized, ",", "")
	}

	if t.opts.NormalizePercent && normalized == "%" {
		return "percent"
	}
	if t.opts.NormalizeCurrency {
		switch normalized {
		case "$":
			return "dollar"
		case "€":
			return "euro"
		case "£":
			return "pound"
		}
	}

	return normalized
}
