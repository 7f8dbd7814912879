// Package sources normalizes the caller-supplied source inputs
// citeright accepts (a bare string, a SourceDocument, or a
// SourceChunk) into a single uniform Chunk shape the rest of the
// pipeline operates on.
package sources

import (
	"fmt"

	"github.com/evidentlabs/citeright/pkg/citeright/internalerr"
	"github.com/evidentlabs/citeright/pkg/citeright/types"
)

// Chunk is the uniform internal representation every accepted source
// input is normalized to: a span of text, the authoritative document
// it came from (for offset resolution), and the index of the original
// source it belongs to (for per-source citation caps and
// prefer_source_order tie-breaking).
type Chunk struct {
	SourceID     string
	SourceIndex  int
	Text         string
	DocCharStart int
	DocCharEnd   int
	DocumentText string // authoritative text for offset resolution
	DocumentBase int    // DocumentText[0] corresponds to this absolute char offset
	Metadata     map[string]any
}

// Normalize converts a slice of raw inputs (each a string,
// types.SourceDocument, or types.SourceChunk) into Chunks. Any other
// element type is a collaborator invariant violation, not a silent
// skip, since a caller passing the wrong type almost always indicates
// a bug upstream of citeright.
func Normalize(raw []any) ([]Chunk, error) {
	chunks := make([]Chunk, 0, len(raw))
	for i, item := range raw {
		switch v := item.(type) {
		case string:
			chunks = append(chunks, Chunk{
				// A bare string is lifted to SourceDocument{id=str(index), text}.
				SourceID:     fmt.Sprintf("%d", i),
				SourceIndex:  i,
				Text:         v,
				DocCharStart: 0,
				DocCharEnd:   len(v),
				DocumentText: v,
				DocumentBase: 0,
			})
		case types.SourceDocument:
			chunks = append(chunks, Chunk{
				SourceID:     v.ID,
				SourceIndex:  i,
				Text:         v.Text,
				DocCharStart: 0,
				DocCharEnd:   len(v.Text),
				DocumentText: v.Text,
				DocumentBase: 0,
				Metadata:     v.Metadata,
			})
		case types.SourceChunk:
			documentText := v.DocumentText
			documentBase := 0
			if documentText == "" {
				// No document available: the chunk is its own virtual
				// document, but DocCharStart/DocCharEnd still name its
				// absolute position, so local slicing must subtract it
				// back out.
				documentText = v.Text
				documentBase = v.DocCharStart
			}
			chunks = append(chunks, Chunk{
				SourceID:     v.SourceID,
				SourceIndex:  i,
				Text:         v.Text,
				DocCharStart: v.DocCharStart,
				DocCharEnd:   v.DocCharEnd,
				DocumentText: documentText,
				DocumentBase: documentBase,
				Metadata:     v.Metadata,
			})
		default:
			return nil, &internalerr.CollaboratorError{
				Collaborator: "sources.Normalize",
				InputIndex:   i,
				Reason:       fmt.Sprintf("unsupported source type %T: must be string, types.SourceDocument, or types.SourceChunk", item),
			}
		}
	}
	return chunks, nil
}
