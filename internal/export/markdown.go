// Package export renders plans as Markdown documents.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pablasso/goalplan/internal/plan"
	"github.com/pablasso/goalplan/internal/util"
)

// Markdown renders p with tasks in display order, followed by a timeline.
func Markdown(p *plan.Plan) string {
	var b strings.Builder
	summary := plan.Summarize(p.Tasks)

	fmt.Fprintf(&b, "# %s\n\n", oneLine(p.Goal))
	if p.Saved() {
		fmt.Fprintf(&b, "Created %s\n\n", p.CreatedAt.Local().Format(plan.DisplayDateLayout))
	}
	fmt.Fprintf(&b, "**Progress:** %s (%d%%)\n\n", summary.CompletedLabel(), summary.Percent)

	if cycle := plan.DepCycle(p.Tasks); len(cycle) > 0 {
		fmt.Fprintf(&b, "> **Warning:** dependency cycle between tasks %s; order is approximate.\n\n", strings.Join(cycle, ", "))
	}

	ordered := plan.SortForDisplay(p.Tasks)
	b.WriteString("## Tasks\n\n")
	if len(ordered) == 0 {
		b.WriteString("_No tasks._\n\n")
	}
	for i, t := range ordered {
		fmt.Fprintf(&b, "### %d. %s %s\n\n", i+1, checkbox(t.Status), oneLine(t.Title))
		fmt.Fprintf(&b, "- **Status:** %s\n", t.Status.OrDefault())
		if t.Deadline != "" {
			fmt.Fprintf(&b, "- **Deadline:** %s\n", t.FormattedDeadline())
		}
		if t.EstimatedDuration != "" {
			fmt.Fprintf(&b, "- **Estimated duration:** %s\n", t.EstimatedDuration)
		}
		if deps := plan.DependencyTitles(p.Tasks, t); len(deps) > 0 {
			fmt.Fprintf(&b, "- **Depends on:** %s\n", strings.Join(deps, ", "))
		}
		b.WriteString("\n")
		if desc := strings.TrimSpace(t.Description); desc != "" {
			b.WriteString(desc)
			b.WriteString("\n\n")
		}
	}

	timeline := plan.Timeline(p.Tasks)
	if len(timeline) > 0 {
		b.WriteString("## Timeline\n\n")
		b.WriteString("| Date | Task | Status |\n")
		b.WriteString("|------|------|--------|\n")
		for _, e := range timeline {
			date := e.Date
			if date == "" {
				date = "-"
			}
			fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(date), cell(e.Title), e.Status)
		}
	}

	return b.String()
}

// Filename returns a file name for p derived from its goal. Saved plans get
// a suffix from their id so exports of different plans do not collide.
func Filename(p *plan.Plan) (string, error) {
	slug := util.Slug(p.Goal)
	if slug == "" {
		slug = "plan"
	}

	suffix := p.ID
	if suffix == "" {
		id, err := util.GenerateShortID()
		if err != nil {
			return "", fmt.Errorf("failed to generate file suffix: %w", err)
		}
		suffix = id
	}
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return slug + "-" + suffix + ".md", nil
}

// WriteFile renders p into dir and returns the written path.
func WriteFile(dir string, p *plan.Plan) (string, error) {
	name, err := Filename(p)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(Markdown(p)), 0644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}

func checkbox(s plan.Status) string {
	switch s.OrDefault() {
	case plan.StatusCompleted:
		return "[x]"
	case plan.StatusInProgress:
		return "[~]"
	default:
		return "[ ]"
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func cell(s string) string {
	return strings.ReplaceAll(oneLine(s), "|", `\|`)
}
