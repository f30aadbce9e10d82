package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/claimflow/internal/pipeline"
)

var (
	labelStyleReady   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	labelStyleBlocked = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	labelStyleRunning = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	labelStyleSkipped = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	labelStyleDefault = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	detailTextStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	warnTextStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801"))

	summaryBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	summaryHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
)

// SummaryOptions tunes RenderSummary.
type SummaryOptions struct {
	// Journal lines are shown under the stage list, newest last.
	Journal []string
	// ShowWarnings lists every stage warning instead of only the count.
	ShowWarnings bool
}

// RenderSummary formats a finished (or failed) pipeline run for the terminal.
func RenderSummary(state pipeline.State, opts SummaryOptions) string {
	var b strings.Builder
	title := fmt.Sprintf("Job %s · %s", state.Job, friendlyLabel(string(state.Status)))
	b.WriteString(summaryHeaderStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(detailTextStyle.Render(fmt.Sprintf("run %s · pipeline %s", state.RunID, state.PipelineID)))
	b.WriteString("\n\n")

	for _, run := range state.Stages {
		b.WriteString(stageLine(run))
		b.WriteString("\n")
		if run.Error != "" {
			b.WriteString("    ")
			b.WriteString(labelStyleBlocked.Render(run.Error))
			b.WriteString("\n")
		}
		if opts.ShowWarnings {
			for _, warning := range run.Warnings {
				b.WriteString("    ")
				b.WriteString(warnTextStyle.Render("! " + warning))
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n")
	footer := fmt.Sprintf("%d stage(s) · %d warning(s)", len(state.Stages), state.WarningCount())
	if !state.FinishedAt.IsZero() && !state.StartedAt.IsZero() {
		footer += " · " + state.FinishedAt.Sub(state.StartedAt).Round(time.Millisecond).String()
	}
	if state.Reason != "" {
		footer += " · " + state.Reason
	}
	b.WriteString(detailTextStyle.Render(footer))

	out := summaryBoxStyle.Render(b.String())
	if len(opts.Journal) > 0 {
		out += "\n" + renderJournal(state.Job, opts.Journal)
	}
	return out
}

func stageLine(run pipeline.StageRun) string {
	name := run.Name
	if name == "" {
		name = friendlyLabel(run.ID)
	}
	label := friendlyLabel(string(run.Status))
	line := fmt.Sprintf("%-14s %s", label, name)
	styled := labelStyleForStatus(run.Status).Render(line)
	var details []string
	if run.Status == pipeline.StageCompleted {
		details = append(details, fmt.Sprintf("%d row(s)", run.Rows))
	}
	if n := len(run.Warnings); n > 0 {
		details = append(details, fmt.Sprintf("%d warning(s)", n))
	}
	if run.Optional {
		details = append(details, "optional")
	}
	if len(details) == 0 {
		return styled
	}
	return styled + "  " + detailTextStyle.Render(strings.Join(details, " · "))
}

func renderJournal(job string, lines []string) string {
	var b strings.Builder
	b.WriteString(labelStyleRunning.Render(fmt.Sprintf("LOG · %s", job)))
	for _, line := range lines {
		b.WriteString("\n")
		b.WriteString(labelStyleDefault.Render(line))
	}
	return summaryBoxStyle.Render(b.String())
}

func labelStyleForStatus(status pipeline.StageStatus) lipgloss.Style {
	switch status {
	case pipeline.StageCompleted:
		return labelStyleReady
	case pipeline.StageFailed:
		return labelStyleBlocked
	case pipeline.StageSkipped:
		return labelStyleSkipped
	default:
		return labelStyleDefault
	}
}

func friendlyLabel(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	replacer := strings.NewReplacer("_", " ", "-", " ")
	words := strings.Fields(replacer.Replace(strings.ToLower(value)))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
