package plan

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrDependencyCycle is returned when task dependencies form a cycle.
var ErrDependencyCycle = errors.New("dependency cycle")

// CycleError reports one dependency cycle. Path repeats its first id at the
// end, e.g. ["A", "B", "C", "A"].
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDependencyCycle, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error {
	return ErrDependencyCycle
}

// indexByID maps ids to the position of their first occurrence.
func indexByID(tasks []Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func idIndex(tasks []Task) map[string]int {
	idx := make(map[string]int, len(tasks))
	for i, t := range tasks {
		if _, seen := idx[t.ID]; !seen {
			idx[t.ID] = i
		}
	}
	return idx
}

// Dependents returns the ids of tasks that directly depend on id.
// Output is sorted for stable display.
func Dependents(tasks []Task, id string) []string {
	out := make([]string, 0)
	for _, t := range tasks {
		if t.DependsOn(id) {
			out = append(out, t.ID)
		}
	}
	sort.Strings(out)
	return out
}

// DependencyTitles returns the titles of the task's dependencies in the order
// they are listed. Dangling references are skipped.
func DependencyTitles(tasks []Task, t Task) []string {
	if len(t.Dependencies) == 0 {
		return nil
	}
	idx := idIndex(tasks)
	out := make([]string, 0, len(t.Dependencies))
	for _, dep := range t.Dependencies {
		if i, ok := idx[dep]; ok {
			out = append(out, tasks[i].Title)
		}
	}
	return out
}

type visitState int

const (
	visitNew visitState = iota
	visitVisiting
	visitDone
)

// DepCycle returns a dependency cycle path if one exists, else nil.
// Tasks are visited in input order so the reported cycle is deterministic.
func DepCycle(tasks []Task) []string {
	idx := idIndex(tasks)
	state := map[string]visitState{}
	onStack := map[string]int{}
	var stack []string
	var cycle []string

	var dfs func(id string)
	dfs = func(id string) {
		state[id] = visitVisiting
		onStack[id] = len(stack)
		stack = append(stack, id)

		for _, dep := range tasks[idx[id]].Dependencies {
			if len(cycle) > 0 {
				return
			}
			if _, ok := idx[dep]; !ok {
				continue
			}
			switch state[dep] {
			case visitNew:
				dfs(dep)
			case visitVisiting:
				cycle = append([]string{}, stack[onStack[dep]:]...)
				cycle = append(cycle, dep)
				return
			}
		}

		stack = stack[:len(stack)-1]
		delete(onStack, id)
		state[id] = visitDone
	}

	for _, t := range tasks {
		if state[t.ID] == visitNew {
			dfs(t.ID)
			if len(cycle) > 0 {
				return cycle
			}
		}
	}
	return nil
}

// Issue is a non-fatal problem found in a task list.
type Issue struct {
	TaskID  string
	Message string
}

func (i Issue) String() string {
	if i.TaskID == "" {
		return i.Message
	}
	return fmt.Sprintf("task %s: %s", i.TaskID, i.Message)
}

// Validate reports structural problems in tasks. Plans are still displayed
// and saved when issues exist.
func Validate(tasks []Task) []Issue {
	var issues []Issue
	idx := idIndex(tasks)
	seen := map[string]bool{}

	for i, t := range tasks {
		if t.ID == "" {
			issues = append(issues, Issue{Message: fmt.Sprintf("task %d has no id", i+1)})
		} else if seen[t.ID] {
			issues = append(issues, Issue{TaskID: t.ID, Message: "duplicate id"})
		}
		seen[t.ID] = true

		if strings.TrimSpace(t.Title) == "" {
			issues = append(issues, Issue{TaskID: t.ID, Message: "missing title"})
		}
		for _, dep := range t.Dependencies {
			if _, ok := idx[dep]; !ok {
				issues = append(issues, Issue{TaskID: t.ID, Message: fmt.Sprintf("unknown dependency %q", dep)})
			}
		}
	}

	if cycle := DepCycle(tasks); cycle != nil {
		issues = append(issues, Issue{Message: (&CycleError{Path: cycle}).Error()})
	}
	return issues
}
