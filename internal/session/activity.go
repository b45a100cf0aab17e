package session

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ActivityFileName is the JSON Lines file activity is appended to.
const ActivityFileName = "activity.log"

// Event type constants for the activity log.
const (
	EventPlanGenerated     = "plan_generated"
	EventGenerationFailed  = "generation_failed"
	EventTaskStatusChanged = "task_status_changed"
	EventPlanSaved         = "plan_saved"
	EventPlanOpened        = "plan_opened"
)

// ActivityEvent represents a single activity log entry.
type ActivityEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	Event     string         `json:"event"`
	Data      map[string]any `json:"data,omitempty"`
}

// ActivityLog appends events to a JSON Lines file. A nil *ActivityLog
// discards everything.
type ActivityLog struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewActivityLog creates an activity log writing to dir/activity.log.
func NewActivityLog(dir string) *ActivityLog {
	return &ActivityLog{
		path: filepath.Join(dir, ActivityFileName),
		now:  time.Now,
	}
}

// Path returns the log file location.
func (a *ActivityLog) Path() string {
	if a == nil {
		return ""
	}
	return a.path
}

// Log appends an event to the log file.
func (a *ActivityLog) Log(event string, data map[string]any) error {
	if a == nil {
		return nil
	}
	entry := ActivityEvent{
		Timestamp: a.now().UTC(),
		Event:     event,
		Data:      data,
	}

	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	jsonBytes = append(jsonBytes, '\n')

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(a.path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(jsonBytes)
	return err
}

// PlanGenerated logs a plan_generated event.
func (a *ActivityLog) PlanGenerated(goal string, taskCount int) error {
	return a.Log(EventPlanGenerated, map[string]any{
		"goal":  goal,
		"tasks": taskCount,
	})
}

// GenerationFailed logs a generation_failed event.
func (a *ActivityLog) GenerationFailed(goal string, cause error) error {
	return a.Log(EventGenerationFailed, map[string]any{
		"goal":  goal,
		"error": cause.Error(),
	})
}

// TaskStatusChanged logs a task_status_changed event.
func (a *ActivityLog) TaskStatusChanged(planID, taskID string, from, to string) error {
	data := map[string]any{
		"task_id": taskID,
		"from":    from,
		"to":      to,
	}
	if planID != "" {
		data["plan_id"] = planID
	}
	return a.Log(EventTaskStatusChanged, data)
}

// PlanSaved logs a plan_saved event.
func (a *ActivityLog) PlanSaved(planID string, taskCount, completion int) error {
	return a.Log(EventPlanSaved, map[string]any{
		"plan_id":    planID,
		"tasks":      taskCount,
		"completion": completion,
	})
}

// PlanOpened logs a plan_opened event.
func (a *ActivityLog) PlanOpened(planID string) error {
	return a.Log(EventPlanOpened, map[string]any{
		"plan_id": planID,
	})
}

// ReadActivity returns the last limit events from the log at path, oldest
// first. A limit of zero or less returns every event. A missing file yields
// no events. Lines that fail to parse are skipped.
func ReadActivity(path string, limit int) ([]ActivityEvent, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open activity log: %w", err)
	}
	defer f.Close()

	var events []ActivityEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var event ActivityEvent
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			continue
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read activity log: %w", err)
	}

	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events, nil
}
