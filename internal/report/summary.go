// Package report renders the user-visible summary of one pipeline run.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"fashionetl/internal/models"
	"fashionetl/internal/sink"
)

// RunSummary aggregates everything the driver reports at the end of a run.
type RunSummary struct {
	RunID       string
	Report      models.TransformReport
	Fingerprint string
	Outcomes    []sink.Outcome
	Duration    time.Duration
}

// Failed reports whether any sink failed.
func (s *RunSummary) Failed() bool {
	for _, out := range s.Outcomes {
		if out.Status != sink.StatusSuccess {
			return true
		}
	}

	return false
}

// Succeeded counts the sinks that completed their load.
func (s *RunSummary) Succeeded() int {
	n := 0

	for _, out := range s.Outcomes {
		if out.Status == sink.StatusSuccess {
			n++
		}
	}

	return n
}

// Render formats the summary for terminal output: transform counters plus
// one aligned status line per sink.
func (s *RunSummary) Render() string {
	var b strings.Builder

	rule := strings.Repeat("-", 50)

	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "📊 Run Summary (%s)\n", s.RunID)
	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "Records  : total=%d accepted=%d rejected=%d corrected=%d\n",
		s.Report.Total, s.Report.Accepted, s.Report.Rejected, s.Report.Corrected)
	fmt.Fprintf(&b, "Dataset  : %s\n", s.Fingerprint)

	// Align sink names so statuses line up in one column.
	width := 0
	for _, out := range s.Outcomes {
		if w := runewidth.StringWidth(out.Sink); w > width {
			width = w
		}
	}

	for _, out := range s.Outcomes {
		name := runewidth.FillRight(out.Sink, width)

		if out.Status == sink.StatusSuccess {
			fmt.Fprintf(&b, "✅ %s : %d rows written\n", name, out.RowsWritten)
		} else {
			fmt.Fprintf(&b, "❌ %s : %v\n", name, out.Err)
		}
	}

	fmt.Fprintf(&b, "Sinks    : %d/%d succeeded\n", s.Succeeded(), len(s.Outcomes))
	fmt.Fprintf(&b, "Duration : %v\n", s.Duration)
	fmt.Fprintf(&b, "%s\n", rule)

	return b.String()
}
