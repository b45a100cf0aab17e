package plan

import "time"

// Plan is a goal together with the tasks generated for it.
//
// A plan built straight from generation has no ID and a zero CreatedAt; both
// are assigned when the plan is persisted.
type Plan struct {
	ID        string    `json:"id"`
	Goal      string    `json:"goal"`
	Tasks     []Task    `json:"tasks"`
	CreatedAt time.Time `json:"createdAt"`
}

// New returns an unsaved plan for goal with a normalized copy of tasks.
func New(goal string, tasks []Task) *Plan {
	return &Plan{
		Goal:  goal,
		Tasks: Normalize(tasks),
	}
}

// Saved reports whether the plan has been persisted.
func (p *Plan) Saved() bool {
	return p.ID != "" && !p.CreatedAt.IsZero()
}

// Clone returns a deep copy of the plan.
func (p *Plan) Clone() *Plan {
	out := *p
	out.Tasks = CloneTasks(p.Tasks)
	return &out
}

// Completion returns the plan's completion percentage.
func (p *Plan) Completion() int {
	return Completion(p.Tasks)
}

// AllTasksCompleted returns true if all tasks have status completed.
func (p *Plan) AllTasksCompleted() bool {
	for i := range p.Tasks {
		if p.Tasks[i].Status != StatusCompleted {
			return false
		}
	}
	return len(p.Tasks) > 0
}

// FindTask returns the index of the task with the given id, or -1.
func (p *Plan) FindTask(id string) int {
	return indexByID(p.Tasks, id)
}
