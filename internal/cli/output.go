package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/pablasso/goalplan/internal/plan"
)

const defaultTerminalWidth = 80

// printPlan writes a plan in display order.
func printPlan(w io.Writer, p *plan.Plan, timeline bool) {
	summary := plan.Summarize(p.Tasks)

	fmt.Fprintf(w, "Goal: %s\n", p.Goal)
	if p.Saved() {
		fmt.Fprintf(w, "Saved: %s (%s)\n", p.CreatedAt.Local().Format(plan.DisplayDateLayout), p.ID)
	}
	fmt.Fprintf(w, "Progress: %s (%d%%)\n", summary.CompletedLabel(), summary.Percent)

	if cycle := plan.DepCycle(p.Tasks); len(cycle) > 0 {
		fmt.Fprintf(w, "Warning: dependency cycle between tasks %s; order is approximate\n", strings.Join(cycle, ", "))
	}
	fmt.Fprintln(w)

	ordered := plan.SortForDisplay(p.Tasks)
	if len(ordered) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return
	}
	for i, t := range ordered {
		fmt.Fprintf(w, "%2d. %s %s\n", i+1, statusMark(t.Status), t.Title)

		var details []string
		if t.Deadline != "" {
			details = append(details, "due "+t.FormattedDeadline())
		}
		if t.EstimatedDuration != "" {
			details = append(details, t.EstimatedDuration)
		}
		if deps := plan.DependencyTitles(p.Tasks, t); len(deps) > 0 {
			details = append(details, "after "+strings.Join(deps, ", "))
		}
		if len(details) > 0 {
			fmt.Fprintf(w, "    %s\n", strings.Join(details, " · "))
		}
		if desc := strings.TrimSpace(t.Description); desc != "" {
			fmt.Fprintf(w, "    %s\n", desc)
		}
	}

	if !timeline {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Timeline:")
	for _, e := range plan.Timeline(p.Tasks) {
		date := e.Date
		if date == "" {
			date = "-"
		}
		fmt.Fprintf(w, "  %-13s %s\n", date, e.Title)
	}
}

func statusMark(s plan.Status) string {
	switch s {
	case plan.StatusCompleted:
		return "[x]"
	case plan.StatusInProgress:
		return "[~]"
	default:
		return "[ ]"
	}
}

// formatAge returns a human-readable relative time string.
func formatAge(t time.Time, now time.Time) string {
	duration := now.Sub(t)

	if duration < time.Minute {
		return "just now"
	}

	minutes := int(duration.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%dm ago", minutes)
	}

	hours := int(duration.Hours())
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}

	days := hours / 24
	if days < 30 {
		return fmt.Sprintf("%dd ago", days)
	}
	return t.Local().Format(plan.DisplayDateLayout)
}

// terminalWidth returns the width of stdout, or a default when stdout is
// not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultTerminalWidth
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return defaultTerminalWidth
	}
	return width
}

// truncate shortens s to at most max runes, marking the cut with "...".
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
