package plan

import "errors"

// ErrTaskNotFound is returned when a status change names a task that is not
// in the plan.
var ErrTaskNotFound = errors.New("task not found")

// Next returns the status that follows s in the cycle
// Not Started -> In Progress -> Completed -> Not Started.
func (s Status) Next() Status {
	switch s.OrDefault() {
	case StatusNotStarted:
		return StatusInProgress
	case StatusInProgress:
		return StatusCompleted
	default:
		return StatusNotStarted
	}
}

// AdvanceTask moves the task with the given id one step through the status
// cycle, in place, and returns its new status.
func AdvanceTask(tasks []Task, id string) (Status, error) {
	i := indexByID(tasks, id)
	if i < 0 {
		return "", ErrTaskNotFound
	}
	tasks[i].Status = tasks[i].Status.Next()
	return tasks[i].Status, nil
}

// AdvanceTaskByTitle is AdvanceTask keyed on the title. When several tasks
// share the title the first one in generation order is advanced; when none
// match nothing changes and ErrTaskNotFound is returned.
func AdvanceTaskByTitle(tasks []Task, title string) (Status, error) {
	for i := range tasks {
		if tasks[i].Title == title {
			tasks[i].Status = tasks[i].Status.Next()
			return tasks[i].Status, nil
		}
	}
	return "", ErrTaskNotFound
}
