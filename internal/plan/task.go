package plan

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Status is the lifecycle state of a single task.
type Status string

// Task status constants. The string values match what saved plans contain.
const (
	StatusNotStarted Status = "Not Started"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// DateLayout is the deadline format the generator is asked to produce.
const DateLayout = "2006-01-02"

// DisplayDateLayout is used when a deadline or timestamp is shown to the user.
const DisplayDateLayout = "Jan 2, 2006"

// Task represents a single actionable unit within a plan.
type Task struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	EstimatedDuration string   `json:"estimatedDuration"`
	Deadline          string   `json:"deadline"`
	Dependencies      []string `json:"dependencies"`
	Status            Status   `json:"status"`
}

// ParseStatus validates and parses a status string.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return Status(s), true
	default:
		return "", false
	}
}

// OrDefault returns s, or StatusNotStarted when s is not a known status.
func (s Status) OrDefault() Status {
	if _, ok := ParseStatus(string(s)); ok {
		return s
	}
	return StatusNotStarted
}

// DeadlineTime parses the deadline. Both plain dates and RFC 3339 timestamps
// are accepted; ok is false when the deadline is empty or malformed.
func (t Task) DeadlineTime() (time.Time, bool) {
	if t.Deadline == "" {
		return time.Time{}, false
	}
	if d, err := time.Parse(DateLayout, t.Deadline); err == nil {
		return d, true
	}
	if d, err := time.Parse(time.RFC3339, t.Deadline); err == nil {
		return d, true
	}
	return time.Time{}, false
}

// FormattedDeadline returns the deadline as "Jan 2, 2006", or the raw string
// when it cannot be parsed.
func (t Task) FormattedDeadline() string {
	d, ok := t.DeadlineTime()
	if !ok {
		return t.Deadline
	}
	return d.Format(DisplayDateLayout)
}

// DependsOn reports whether id is listed in the task's dependencies.
func (t Task) DependsOn(id string) bool {
	for _, dep := range t.Dependencies {
		if dep == id {
			return true
		}
	}
	return false
}

// UnmarshalJSON decodes a task leniently. Generated output is trusted for its
// shape but not its types: numeric ids are converted to strings, malformed
// dependency lists become empty and unknown statuses become StatusNotStarted.
func (t *Task) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID                json.RawMessage `json:"id"`
		Title             string          `json:"title"`
		Description       string          `json:"description"`
		EstimatedDuration string          `json:"estimatedDuration"`
		Deadline          string          `json:"deadline"`
		Dependencies      json.RawMessage `json:"dependencies"`
		Status            string          `json:"status"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*t = Task{
		ID:                scalarString(raw.ID),
		Title:             raw.Title,
		Description:       raw.Description,
		EstimatedDuration: raw.EstimatedDuration,
		Deadline:          raw.Deadline,
		Dependencies:      decodeDependencies(raw.Dependencies),
		Status:            Status(raw.Status).OrDefault(),
	}
	return nil
}

// scalarString returns the string form of a JSON string or number.
// Anything else yields "".
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}
	return ""
}

func decodeDependencies(raw json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []string{}
	}
	deps := make([]string, 0, len(items))
	for _, item := range items {
		if id := scalarString(item); id != "" {
			deps = append(deps, id)
		}
	}
	return deps
}

func cloneTask(t Task) Task {
	out := t
	if t.Dependencies != nil {
		out.Dependencies = append([]string{}, t.Dependencies...)
	}
	return out
}

// CloneTasks returns a deep copy of tasks.
func CloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = cloneTask(t)
	}
	return out
}

// Normalize returns a copy of tasks with defaults applied: missing ids become
// the 1-based position, nil dependency lists become empty, and unknown
// statuses become StatusNotStarted. A repeated id is kept by its first task;
// later tasks get a fresh id, so every id names one task. Dependencies on a
// repeated id keep pointing at the first task.
func Normalize(tasks []Task) []Task {
	out := CloneTasks(tasks)
	if out == nil {
		out = []Task{}
	}

	taken := make(map[string]bool, len(out))
	for _, t := range out {
		if t.ID != "" {
			taken[t.ID] = true
		}
	}
	seen := make(map[string]bool, len(out))
	for i := range out {
		if out[i].ID == "" || seen[out[i].ID] {
			out[i].ID = freshID(i, taken)
			taken[out[i].ID] = true
		}
		seen[out[i].ID] = true
		if out[i].Dependencies == nil {
			out[i].Dependencies = []string{}
		}
		out[i].Status = out[i].Status.OrDefault()
	}
	return out
}

// freshID returns the 1-based position of task i, suffixed when another task
// already uses it.
func freshID(i int, taken map[string]bool) string {
	base := strconv.Itoa(i + 1)
	id := base
	for n := 2; taken[id]; n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	return id
}
