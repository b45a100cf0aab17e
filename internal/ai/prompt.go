package ai

import (
	"strings"
	"text/template"
)

// SystemMessage sets the model's role for every generation request.
const SystemMessage = "You are an AI task planner that breaks down goals into actionable tasks with realistic timelines and dependencies. Provide detailed, actionable tasks with clear deadlines."

const promptTemplate = `Break down this goal into actionable tasks with suggested deadlines and dependencies:

Goal: {{.Goal}}

Today's date is {{.Today}}.

Please format your response as a JSON object with the following structure:
{
  "tasks": [
    {
      "id": "1",
      "title": "Task title",
      "description": "Detailed description of the task",
      "estimatedDuration": "X days/hours",
      "deadline": "YYYY-MM-DD",
      "dependencies": []
    }
  ]
}

"dependencies" lists the ids of tasks that must be finished first.

Consider logical dependencies between tasks, provide realistic timelines, and ensure the entire plan can be completed by the deadline if specified in the goal.

Return ONLY the JSON, no markdown formatting or explanation.`

var generationPrompt = template.Must(template.New("generate").Parse(promptTemplate))

type promptData struct {
	Goal  string
	Today string
}

// buildPrompt renders the user prompt for goal. today is a YYYY-MM-DD date.
func buildPrompt(goal, today string) string {
	var sb strings.Builder
	// The template and its data are fixed, so Execute cannot fail.
	_ = generationPrompt.Execute(&sb, promptData{Goal: goal, Today: today})
	return sb.String()
}
