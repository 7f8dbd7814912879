package text

import (
	"regexp"
	"strings"

	"github.com/evidentlabs/citeright/pkg/citeright/types"
)

// Segmenter splits source text into sentence-like Segments, used by
// the passage builder to window source documents.
type Segmenter struct {
	splitOnNewlines bool
}

// NewSegmenter builds a segmenter. splitOnNewlines treats every
// newline as an additional sentence boundary, the behavior the
// default source segmenter uses and the default answer segmenter
// does not (it segments one paragraph's text at a time, where
// newlines have already been consumed as paragraph breaks).
func NewSegmenter(splitOnNewlines bool) *Segmenter {
	return &Segmenter{splitOnNewlines: splitOnNewlines}
}

// NewDefaultSegmenter builds the segmenter citeright falls back to
// for source documents: sentence boundaries on '.', '?', '!', ';' and
// on every newline.
func NewDefaultSegmenter() *Segmenter {
	return NewSegmenter(true)
}

// Segment splits text into trimmed, non-empty Segments with absolute
// character offsets into text. A run of '.', '?', '!' is treated as
// one boundary (so "..." and "?!" don't produce empty segments), and
// a boundary character must either end the text or be followed by
// whitespace to count — "3.5" is not split mid-number. ';' always
// splits, and (when enabled) so does every '\n'.
func (s *Segmenter) Segment(text string) []types.Segment {
	var segments []types.Segment
	start := 0
	idx := 0
	length := len(text)

	for idx < length {
		c := text[idx]

		if c == '\n' && s.splitOnNewlines {
			appendSegment(text, start, idx, &segments)
			start = idx + 1
			idx++
			continue
		}

		if (c == '.' || c == '?' || c == '!') && isSentenceBoundary(text, idx) {
			end := idx + 1
			for end < length && (text[end] == '.' || text[end] == '?' || text[end] == '!') {
				end++
			}
			appendSegment(text, start, end, &segments)
			start = end
			idx = end
			continue
		}

		if c == ';' {
			appendSegment(text, start, idx+1, &segments)
			start = idx + 1
			idx++
			continue
		}

		idx++
	}

	appendSegment(text, start, length, &segments)
	return segments
}

// isSentenceBoundary reports whether the boundary character at idx is
// followed by whitespace or end of text, so numbers like "3.5" and
// abbreviations glued to the next word are not split mid-token.
func isSentenceBoundary(text string, idx int) bool {
	if idx+1 >= len(text) {
		return true
	}
	r := rune(text[idx+1])
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// appendSegment trims whitespace from [start, end) and, if anything
// non-blank remains, appends it to *segments with offsets into the
// original text.
func appendSegment(text string, start, end int, segments *[]types.Segment) {
	if start >= end {
		return
	}
	snippet := text[start:end]
	if strings.TrimSpace(snippet) == "" {
		return
	}
	leftTrim := len(snippet) - len(strings.TrimLeft(snippet, " \t\n\r"))
	rightTrim := len(snippet) - len(strings.TrimRight(snippet, " \t\n\r"))
	segStart := start + leftTrim
	segEnd := end - rightTrim
	if segStart >= segEnd {
		return
	}
	*segments = append(*segments, types.Segment{
		Text:         text[segStart:segEnd],
		DocCharStart: segStart,
		DocCharEnd:   segEnd,
	})
}

// paragraphBreak matches a newline, optional horizontal whitespace,
// then one or more further newlines — a blank line between paragraphs.
var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n+`)

// AnswerSegmenter splits an answer string into AnswerSpans: first into
// paragraphs on blank lines, then each paragraph into sentences with
// NewSegmenter(false).
type AnswerSegmenter struct {
	sentences *Segmenter
}

// NewAnswerSegmenter builds the default answer segmenter.
func NewAnswerSegmenter() *AnswerSegmenter {
	return &AnswerSegmenter{sentences: NewSegmenter(false)}
}

// Segment splits text into sentence AnswerSpans, numbering paragraphs
// and sentences in document order. Empty or whitespace-only text
// yields zero spans.
func (s *AnswerSegmenter) Segment(text string) []types.AnswerSpan {
	var spans []types.AnswerSpan
	sentenceIndex := 0

	for paraIdx, para := range paragraphSpans(text) {
		paragraphText := text[para[0]:para[1]]
		for _, sentence := range s.sentences.Segment(paragraphText) {
			spans = append(spans, types.AnswerSpan{
				Text:           sentence.Text,
				CharStart:      para[0] + sentence.DocCharStart,
				CharEnd:        para[0] + sentence.DocCharEnd,
				Kind:           types.KindSentence,
				ParagraphIndex: paraIdx,
				SentenceIndex:  sentenceIndex,
			})
			sentenceIndex++
		}
	}

	return spans
}

// paragraphSpans splits text on blank lines into trimmed, non-empty
// [start, end) byte ranges.
func paragraphSpans(text string) [][2]int {
	var spans [][2]int
	start := 0

	for _, loc := range paragraphBreak.FindAllStringIndex(text, -1) {
		if span, ok := trimSpan(text, start, loc[0]); ok {
			spans = append(spans, span)
		}
		start = loc[1]
	}
	if span, ok := trimSpan(text, start, len(text)); ok {
		spans = append(spans, span)
	}
	return spans
}

func trimSpan(text string, start, end int) ([2]int, bool) {
	if start >= end {
		return [2]int{}, false
	}
	snippet := text[start:end]
	if strings.TrimSpace(snippet) == "" {
		return [2]int{}, false
	}
	leftTrim := len(snippet) - len(strings.TrimLeft(snippet, " \t\n\r"))
	rightTrim := len(snippet) - len(strings.TrimRight(snippet, " \t\n\r"))
	trimmedStart := start + leftTrim
	trimmedEnd := end - rightTrim
	if trimmedStart >= trimmedEnd {
		return [2]int{}, false
	}
	return [2]int{trimmedStart, trimmedEnd}, true
}
