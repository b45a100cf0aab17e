package plan

import (
	"fmt"
	"math"
)

// Completion returns round(100 * completed / total), or 0 for no tasks.
func Completion(tasks []Task) int {
	if len(tasks) == 0 {
		return 0
	}
	completed := 0
	for _, t := range tasks {
		if t.Status == StatusCompleted {
			completed++
		}
	}
	return int(math.Round(float64(completed) * 100 / float64(len(tasks))))
}

// Summary holds aggregate task counts for a plan.
type Summary struct {
	Total      int `json:"total"`
	NotStarted int `json:"notStarted"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Percent    int `json:"percent"`
}

// Summarize counts tasks by status.
func Summarize(tasks []Task) Summary {
	s := Summary{Total: len(tasks), Percent: Completion(tasks)}
	for _, t := range tasks {
		switch t.Status.OrDefault() {
		case StatusInProgress:
			s.InProgress++
		case StatusCompleted:
			s.Completed++
		default:
			s.NotStarted++
		}
	}
	return s
}

// TaskCountLabel returns "1 task" or "N tasks".
func (s Summary) TaskCountLabel() string {
	if s.Total == 1 {
		return "1 task"
	}
	return fmt.Sprintf("%d tasks", s.Total)
}

// CompletedLabel returns "completed/total completed".
func (s Summary) CompletedLabel() string {
	return fmt.Sprintf("%d/%d completed", s.Completed, s.Total)
}

// TimelineEntry is one row of the deadline timeline.
type TimelineEntry struct {
	TaskID      string `json:"taskId"`
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

// Timeline returns the tasks in display order as timeline rows.
func Timeline(tasks []Task) []TimelineEntry {
	ordered := SortForDisplay(tasks)
	entries := make([]TimelineEntry, len(ordered))
	for i, t := range ordered {
		entries[i] = TimelineEntry{
			TaskID:      t.ID,
			Date:        t.FormattedDeadline(),
			Title:       t.Title,
			Description: t.Description,
			Status:      t.Status.OrDefault(),
		}
	}
	return entries
}
