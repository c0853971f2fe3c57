package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/aspp/pkg/runner"
)

const (
	summaryDividerWidth = 40
	wordFile            = "file"
	wordFiles           = "files"
)

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "Preprocessed 3 files (412 lines, 9.1 KiB), 1 failed".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	var builder strings.Builder

	if stats.FilesProcessed == 0 && stats.FilesErrored == 0 {
		return s.Dim.Render("No assembler sources found") + "\n"
	}

	builder.WriteString(s.Success.Render(fmt.Sprintf("Preprocessed %d %s",
		stats.FilesProcessed, plural(stats.FilesProcessed, wordFile, wordFiles))))
	builder.WriteString(s.Dim.Render(fmt.Sprintf(" (%d %s, %s)",
		stats.Lines, plural(stats.Lines, "line", "lines"), FormatBytes(stats.BytesOut))))

	if stats.FilesErrored > 0 {
		builder.WriteString(", " + s.Failure.Render(fmt.Sprintf("%d failed", stats.FilesErrored)))
	}

	return builder.String() + "\n"
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	row := func(label, value string) {
		fmt.Fprintf(&builder, "  %-18s %s\n", label+":", value)
	}

	row("Files discovered", s.SummaryValue.Render(strconv.Itoa(stats.FilesDiscovered)))
	row("Files processed", s.SummaryValue.Render(strconv.Itoa(stats.FilesProcessed)))
	if stats.FilesErrored > 0 {
		row("Files failed", s.Failure.Render(strconv.Itoa(stats.FilesErrored)))
	}
	row("Lines", s.SummaryValue.Render(strconv.Itoa(stats.Lines)))
	row("Bytes in", s.SummaryValue.Render(FormatBytes(stats.BytesIn)))
	row("Bytes out", s.SummaryValue.Render(FormatBytes(stats.BytesOut)))

	builder.WriteString("\n")
	if stats.FilesErrored > 0 {
		builder.WriteString(s.Failure.Render("Preprocessing failed"))
	} else {
		builder.WriteString(s.Success.Render("Preprocessing complete"))
	}
	builder.WriteString("\n")

	return builder.String()
}

// FormatFailure formats one file that could not be processed.
func (s *Styles) FormatFailure(outcome runner.FileOutcome) string {
	return fmt.Sprintf("  %s  %s  %s\n",
		s.FilePath.Render(outcome.Name),
		s.Error.Render("error"),
		s.Message.Render(outcome.Error.Error()),
	)
}

// FormatBytes renders n with a binary unit suffix.
func FormatBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
