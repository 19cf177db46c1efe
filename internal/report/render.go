package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	colorPrimary = lipgloss.Color("#00BFFF")
	colorSuccess = lipgloss.Color("#00E676")
	colorAccent  = lipgloss.Color("#FFD700")
	colorMuted   = lipgloss.Color("#8C8C8C")

	styleTitle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleLabel = lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(22)

	styleValue = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleReason = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	styleBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)
)

// maxListedPatterns bounds how many patterns Render lists individually.
const maxListedPatterns = 10

// Render formats a summary of f for the terminal.
func Render(f File) string {
	var b strings.Builder
	title := "multiple CEGAR"
	if f.Run.Task != "" {
		title += " · " + f.Run.Task
	}
	b.WriteString(styleTitle.Render(title))
	b.WriteByte('\n')

	row := func(label, value string) {
		b.WriteString(styleLabel.Render(label))
		b.WriteString(styleValue.Render(value))
		b.WriteByte('\n')
	}
	if f.Run.ID != "" {
		row("run", f.Run.ID)
	}
	row("iterations", fmt.Sprintf("%d", f.Stats.Iterations))
	row("elapsed", time.Duration(f.Stats.ElapsedNs).Round(time.Millisecond).String())
	row("mean iteration time", time.Duration(f.Stats.MeanIterationNs).Round(time.Microsecond).String())
	row("patterns", fmt.Sprintf("%d (%d duplicates)", len(f.Patterns), f.Stats.Duplicates))
	row("collection size", humanize.Comma(int64(f.Stats.CollectionSize))+" / "+humanize.Comma(int64(f.Budgets.MaxCollectionSize)))
	if f.Stats.BlacklistingEnabled {
		row("blacklisting since", time.Duration(f.Stats.BlacklistingEnabledNs).Round(time.Millisecond).String())
	} else {
		row("blacklisting", "off")
	}
	b.WriteString(styleLabel.Render("stopped by"))
	b.WriteString(styleReason.Render(f.Stats.StopReason))

	if len(f.Patterns) > 0 {
		b.WriteByte('\n')
		for i, p := range f.Patterns {
			if i == maxListedPatterns {
				fmt.Fprintf(&b, "\n  … %d more", len(f.Patterns)-maxListedPatterns)
				break
			}
			fmt.Fprintf(&b, "\n  %s size=%s", strings.Join(p.Names, ", "), humanize.Comma(int64(p.Size)))
		}
	}
	return styleBox.Render(b.String())
}
