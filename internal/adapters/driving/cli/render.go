package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/custodia-labs/harvester/internal/core/domain"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(11)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// renderSummary writes the outcome of a run, styled when w is a terminal.
func renderSummary(w io.Writer, summary *domain.RunSummary, stored string) {
	rows := [][2]string{
		{"Run", summary.RunID},
		{"Submitted", fmt.Sprint(summary.Submitted)},
		{"Finished", fmt.Sprint(summary.Finished)},
		{"Discarded", fmt.Sprint(summary.Discarded)},
		{"Failed", fmt.Sprint(summary.Failed)},
		{"Elapsed", summary.Elapsed.Round(time.Millisecond).String()},
		{"Stored in", stored},
	}

	if !isTerminal(w) {
		for _, r := range rows {
			fmt.Fprintf(w, "%-10s %s\n", r[0]+":", r[1])
		}
		return
	}

	lines := []string{titleStyle.Render("Harvest complete")}
	for _, r := range rows {
		value := r[1]
		switch {
		case r[0] == "Failed" && summary.Failed > 0:
			value = errStyle.Render(value)
		case r[0] == "Discarded" && summary.Discarded > 0:
			value = warnStyle.Render(value)
		case r[0] == "Finished":
			value = okStyle.Render(value)
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(r[0]), value))
	}
	fmt.Fprintln(w, boxStyle.Render(strings.Join(lines, "\n")))
}

// renderFailures writes failure records, one block per record.
func renderFailures(w io.Writer, records []domain.FailureRecord) {
	styled := isTerminal(w)
	for _, rec := range records {
		kind := rec.ErrorKind
		if styled {
			kind = errStyle.Render(kind)
		}
		fmt.Fprintf(w, "%s  %s  %s\n", rec.RecordedAt.Local().Format(time.DateTime), kind, rec.URL)
		fmt.Fprintf(w, "  run:   %s\n", rec.RunID)
		if rec.Cause != "" {
			fmt.Fprintf(w, "  cause: %s\n", rec.Cause)
		}
	}
}
