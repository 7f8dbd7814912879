package text

import "github.com/evidentlabs/citeright/pkg/citeright/types"

// segmenterIface is anything that splits text into sentence-like
// Segments; GeneratePassages accepts this instead of the concrete
// *Segmenter so a caller-supplied source segmenter can be windowed
// the same way the default one is.
type segmenterIface interface {
	Segment(text string) []types.Segment
}

// GeneratePassages slides a window of windowSize consecutive segments
// (as produced by segmenter) over text, advancing by windowStride
// segments each step, and stops after the window reaches the final
// segment. windowSize and
// windowStride are each floored to 1 so a caller-supplied 0 never
// causes an infinite loop or a degenerate empty window. Text with no
// segments yields no passages.
func GeneratePassages(text string, segmenter segmenterIface, windowSize, windowStride int) []types.Passage {
	segments := segmenter.Segment(text)
	if len(segments) == 0 {
		return nil
	}

	window := windowSize
	if window < 1 {
		window = 1
	}
	stride := windowStride
	if stride < 1 {
		stride = 1
	}

	var passages []types.Passage
	idx := 0
	for idx < len(segments) {
		endIdx := idx + window
		if endIdx > len(segments) {
			endIdx = len(segments)
		}
		passages = append(passages, windowFromSegments(text, segments, idx, endIdx))
		if endIdx == len(segments) {
			break
		}
		idx += stride
	}
	return passages
}

func windowFromSegments(text string, segments []types.Segment, startIdx, endIdx int) types.Passage {
	start := segments[startIdx].DocCharStart
	end := segments[endIdx-1].DocCharEnd
	return types.Passage{
		Text:         text[start:end],
		DocCharStart: start,
		DocCharEnd:   end,
		SegmentStart: startIdx,
		SegmentEnd:   endIdx,
	}
}
