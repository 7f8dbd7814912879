package sources

import (
	"testing"

	"github.com/evidentlabs/citeright/pkg/citeright/types"
)

func TestNormalizeString(t *testing.T) {
	got, err := Normalize([]any{"plain text source"})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
	if got[0].Text != "plain text source" || got[0].DocumentText != "plain text source" {
		t.Errorf("unexpected chunk: %+v", got[0])
	}
	if got[0].DocCharStart != 0 || got[0].DocCharEnd != len("plain text source") {
		t.Errorf("unexpected offsets: %+v", got[0])
	}
}

func TestNormalizeSourceDocument(t *testing.T) {
	doc := types.SourceDocument{ID: "doc-1", Text: "hello", Metadata: map[string]any{"k": "v"}}
	got, err := Normalize([]any{doc})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got[0].SourceID != "doc-1" || got[0].Text != "hello" {
		t.Errorf("unexpected chunk: %+v", got[0])
	}
}

func TestNormalizeSourceChunkWithDocumentText(t *testing.T) {
	chunk := types.SourceChunk{
		SourceID:     "doc-2",
		Text:         "world",
		DocCharStart: 6,
		DocCharEnd:   11,
		DocumentText: "hello world",
	}
	got, err := Normalize([]any{chunk})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got[0].DocumentText != "hello world" {
		t.Errorf("DocumentText = %q, want %q", got[0].DocumentText, "hello world")
	}
	if got[0].DocCharStart != 6 || got[0].DocCharEnd != 11 {
		t.Errorf("unexpected offsets: %+v", got[0])
	}
	if got[0].DocumentBase != 0 {
		t.Errorf("DocumentBase = %d, want 0 when document_text is supplied", got[0].DocumentBase)
	}
}

func TestNormalizeSourceChunkWithoutDocumentTextUsesItselfAsDocument(t *testing.T) {
	chunk := types.SourceChunk{
		SourceID:     "doc-3",
		Text:         "standalone chunk",
		DocCharStart: 100, // absolute position in a document we never see
		DocCharEnd:   117,
	}
	got, err := Normalize([]any{chunk})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got[0].DocumentText != "standalone chunk" {
		t.Errorf("DocumentText = %q, want the chunk's own text", got[0].DocumentText)
	}
	if got[0].DocumentBase != 100 {
		t.Errorf("DocumentBase = %d, want 100 so evidence can be sliced locally", got[0].DocumentBase)
	}
}

func TestNormalizeRejectsUnsupportedType(t *testing.T) {
	_, err := Normalize([]any{42})
	if err == nil {
		t.Fatal("expected error for unsupported source type")
	}
}

func TestNormalizePreservesSourceIndexOrder(t *testing.T) {
	got, err := Normalize([]any{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	for i, c := range got {
		if c.SourceIndex != i {
			t.Errorf("chunk %d: SourceIndex = %d, want %d", i, c.SourceIndex, i)
		}
	}
}

func TestFromHTMLStripsTags(t *testing.T) {
	got := FromHTML("<html><body><p>Hello <b>world</b>.</p></body></html>")
	if got != "Hello world." {
		t.Errorf("FromHTML = %q, want %q", got, "Hello world.")
	}
}

func TestFromHTMLDropsScriptAndStyleContent(t *testing.T) {
	got := FromHTML("<div><style>.a{color:red}</style><script>alert(1)</script>Visible text</div>")
	if got != "Visible text" {
		t.Errorf("FromHTML = %q, want %q", got, "Visible text")
	}
}
