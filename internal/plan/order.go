package plan

import (
	"container/heap"
	"sort"
)

// CompareForDisplay is the pairwise display rule: a task sorts after a task
// it depends on and before a task that depends on it; otherwise the earlier
// deadline goes first. Unparsable deadlines express no preference.
//
// The rule is not transitive for deeper dependency graphs. SortForDisplay
// only uses it to place tasks that sit on a dependency cycle.
func CompareForDisplay(a, b Task) int {
	if a.DependsOn(b.ID) {
		return 1
	}
	if b.DependsOn(a.ID) {
		return -1
	}
	da, okA := a.DeadlineTime()
	db, okB := b.DeadlineTime()
	if !okA || !okB {
		return 0
	}
	return da.Compare(db)
}

// SortForDisplay returns tasks in display order without modifying the input.
//
// Tasks are ordered topologically by dependency. Among tasks whose
// dependencies have all been placed, the earliest deadline goes first, undated
// tasks follow dated ones and ties keep input order. Input order is kept only
// among tasks that become ready together: a task waiting on a later-dated
// dependency is placed after that dependency, even when an unrelated task with
// the same deadline came after it in the input. Dependencies on unknown ids
// are ignored. Tasks involved in a dependency cycle are appended after
// the rest using CompareForDisplay.
func SortForDisplay(tasks []Task) []Task {
	ordered, _ := order(tasks)
	return ordered
}

// Order returns the same ordering as SortForDisplay, or a *CycleError when
// the dependencies are cyclic.
func Order(tasks []Task) ([]Task, error) {
	ordered, acyclic := order(tasks)
	if !acyclic {
		return nil, &CycleError{Path: DepCycle(tasks)}
	}
	return ordered, nil
}

func order(tasks []Task) ([]Task, bool) {
	n := len(tasks)
	out := make([]Task, 0, n)
	if n == 0 {
		return out, true
	}

	idx := idIndex(tasks)
	indegree := make([]int, n)
	dependents := make([][]int, n)
	for i, t := range tasks {
		seen := map[int]bool{}
		for _, dep := range t.Dependencies {
			j, ok := idx[dep]
			if !ok || seen[j] {
				continue
			}
			seen[j] = true
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	ready := &readyQueue{}
	for i := range tasks {
		if indegree[i] == 0 {
			ready.items = append(ready.items, newReadyItem(tasks, i))
		}
	}
	heap.Init(ready)

	placed := make([]bool, n)
	for ready.Len() > 0 {
		i := heap.Pop(ready).(readyItem).index
		placed[i] = true
		out = append(out, cloneTask(tasks[i]))
		for _, d := range dependents[i] {
			indegree[d]--
			if indegree[d] == 0 {
				heap.Push(ready, newReadyItem(tasks, d))
			}
		}
	}

	if len(out) == n {
		return out, true
	}

	var rest []Task
	for i := range tasks {
		if !placed[i] {
			rest = append(rest, cloneTask(tasks[i]))
		}
	}
	sort.SliceStable(rest, func(a, b int) bool {
		return CompareForDisplay(rest[a], rest[b]) < 0
	})
	return append(out, rest...), false
}

type readyItem struct {
	index    int
	deadline int64
	dated    bool
}

func newReadyItem(tasks []Task, i int) readyItem {
	item := readyItem{index: i}
	if d, ok := tasks[i].DeadlineTime(); ok {
		item.deadline = d.Unix()
		item.dated = true
	}
	return item
}

// readyQueue is a min-heap of tasks whose dependencies have been placed.
type readyQueue struct {
	items []readyItem
}

func (q readyQueue) Len() int { return len(q.items) }

func (q readyQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.dated != b.dated {
		return a.dated
	}
	if a.dated && a.deadline != b.deadline {
		return a.deadline < b.deadline
	}
	return a.index < b.index
}

func (q readyQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *readyQueue) Push(x any) { q.items = append(q.items, x.(readyItem)) }

func (q *readyQueue) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	q.items = old[:n-1]
	return item
}
