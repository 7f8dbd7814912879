// Package report turns an AlignCitations result into a human-readable
// citation report, stamped with a monotonic run ID so one call's
// output can be correlated across logs.
package report

import (
	"crypto/rand"
	"fmt"
	"io"
	"log"

	"github.com/oklog/ulid/v2"

	"github.com/evidentlabs/citeright/pkg/citeright/types"
)

// Builder stamps each report it builds with a fresh, monotonically
// increasing ULID.
type Builder struct {
	entropy *ulid.MonotonicEntropy
}

// New creates a report builder.
func New() *Builder {
	return &Builder{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// Line is one retained citation, flattened for display.
type Line struct {
	SourceID  string
	Score     float64
	CharStart int
	CharEnd   int
	Evidence  string
}

// Section is one answer span's citation report.
type Section struct {
	AnswerSpan types.AnswerSpan
	Status     types.Status
	Lines      []Line
}

// Report is the full human-readable result of one AlignCitations call.
type Report struct {
	RunID    string
	Answer   string
	Sections []Section
}

// Build assembles a Report from an answer string and its per-span
// citation results, stamping it with a new run ID.
func (b *Builder) Build(answer string, spans []types.SpanCitations) Report {
	sections := make([]Section, 0, len(spans))
	for _, sc := range spans {
		lines := make([]Line, 0, len(sc.Citations))
		for _, c := range sc.Citations {
			lines = append(lines, Line{
				SourceID:  c.SourceID,
				Score:     c.Score,
				CharStart: c.CharStart,
				CharEnd:   c.CharEnd,
				Evidence:  c.Evidence,
			})
		}
		sections = append(sections, Section{
			AnswerSpan: sc.AnswerSpan,
			Status:     sc.Status,
			Lines:      lines,
		})
	}

	return Report{
		RunID:    ulid.MustNew(ulid.Now(), b.entropy).String(),
		Answer:   answer,
		Sections: sections,
	}
}

// Print writes r to w as a plain-text citation report, in the style of
// cmd/chat-cli/main.go's printCard: one block per answer span, its
// status, and its retained evidence lines.
func Print(w io.Writer, r Report) {
	fmt.Fprintf(w, "Citation report %s\n", r.RunID)
	fmt.Fprintln(w, "===========================================")
	for i, section := range r.Sections {
		fmt.Fprintf(w, "\n[%d] %q — %s\n", i+1, section.AnswerSpan.Text, section.Status)
		if len(section.Lines) == 0 {
			fmt.Fprintln(w, "  (no citations retained)")
			continue
		}
		for _, line := range section.Lines {
			fmt.Fprintf(w, "  - %s [%d:%d] score=%.3f\n", line.SourceID, line.CharStart, line.CharEnd, line.Score)
			fmt.Fprintf(w, "    %q\n", line.Evidence)
		}
	}
}

// LogSummary writes a one-line-per-span summary through the stdlib
// logger, in the style of cmd/download-hn/main.go's progress logging —
// for callers that want a terse trace of a run rather than the full
// Print report.
func LogSummary(r Report) {
	log.Printf("citation report %s: %d span(s)", r.RunID, len(r.Sections))
	for i, section := range r.Sections {
		log.Printf("  span %d: status=%s citations=%d", i, section.Status, len(section.Lines))
	}
}
