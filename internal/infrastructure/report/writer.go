package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/felixgeelhaar/covrun/internal/application"
)

type Writer struct{}

func (Writer) Write(w io.Writer, result application.ReportResult, format application.OutputFormat) error {
	switch format {
	case application.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case application.OutputText, "":
		return writeText(w, result)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func writeText(w io.Writer, result application.ReportResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "File\tLines\tBranches")

	colorize := colorEnabled(w)

	for _, f := range result.Files {
		lines := fmt.Sprintf("%.1f%%", f.Coverage.LinePercent())
		branches := "-"
		if f.Coverage.BranchesTotal > 0 {
			branches = fmt.Sprintf("%.1f%%", f.Coverage.BranchPercent())
		}
		if colorize {
			lines = styleFor(f.Coverage.LinePercent()).Render(lines)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", f.File, lines, branches)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	summary := result.Summary.String()
	if colorize {
		summary = styleFor(result.Summary.LinePercent()).Render(summary)
	}
	fmt.Fprintf(w, "\nTotal: %s\n", summary)

	if result.Delta != nil {
		fmt.Fprintf(w, "Change since last recorded run: %+.1f%%\n", *result.Delta)
	}
	return nil
}

func styleFor(percent float64) lipgloss.Style {
	switch {
	case percent >= 80:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A")).Bold(true)
	case percent >= 50:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#CA8A04")).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")).Bold(true)
	}
}

func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
