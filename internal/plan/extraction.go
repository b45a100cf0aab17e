package plan

import (
	"errors"
	"fmt"
	"strings"
)

// GenerationResult is the structured response expected from a plan generator.
type GenerationResult struct {
	Tasks []Task `json:"tasks"`
}

// Validate checks that the generation result contains usable tasks.
func (r *GenerationResult) Validate() error {
	if len(r.Tasks) == 0 {
		return errors.New("no tasks generated")
	}
	for i, task := range r.Tasks {
		if strings.TrimSpace(task.Title) == "" {
			return fmt.Errorf("task %d missing title", i+1)
		}
	}
	return nil
}
