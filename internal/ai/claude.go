package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/pablasso/goalplan/internal/plan"
)

// claudeResponse is the wrapper printed by `claude --output-format json`.
type claudeResponse struct {
	Type    string `json:"type"`
	Result  string `json:"result"`
	IsError bool   `json:"is_error"`
}

// CommandContext is the function used to create exec.Cmd instances.
// It can be replaced in tests to mock command execution.
var CommandContext = exec.CommandContext

// IsClaudeAvailable checks if the claude command exists in PATH.
func IsClaudeAvailable() bool {
	_, err := exec.LookPath("claude")
	return err == nil
}

// ClaudeCLIGenerator generates plans by running the Claude Code CLI.
type ClaudeCLIGenerator struct {
	timeout time.Duration
	now     func() time.Time
}

// NewClaudeCLIGenerator returns a generator that shells out to `claude -p`.
func NewClaudeCLIGenerator(timeout time.Duration) *ClaudeCLIGenerator {
	return &ClaudeCLIGenerator{timeout: timeout, now: time.Now}
}

// Generate runs the CLI with the generation prompt and parses its result.
func (g *ClaudeCLIGenerator) Generate(ctx context.Context, goal string) ([]plan.Task, error) {
	goal, err := cleanGoal(goal)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withDefaultTimeout(ctx, g.timeout)
	defer cancel()

	prompt := SystemMessage + "\n\n" + buildPrompt(goal, g.now().Format(plan.DateLayout))

	// The goal is user text inside the prompt. Permission prompts stay on, and
	// -p cannot answer them, so the session cannot use tools.
	cmd := CommandContext(ctx, "claude", "-p", prompt, "--output-format", "json")
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if ctx.Err() == nil && errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w: claude command failed: %s", ErrGeneration, string(exitErr.Stderr))
		}
		return nil, callError(ctx, "claude", err)
	}

	raw, err := unwrapClaudeResponse(output)
	if err != nil {
		return nil, err
	}
	return parseTasks(raw)
}

// unwrapClaudeResponse returns the model text inside the CLI's JSON wrapper.
// Output that is not a wrapper is returned unchanged.
func unwrapClaudeResponse(output []byte) (string, error) {
	var resp claudeResponse
	if err := json.Unmarshal(output, &resp); err != nil || resp.Type != "result" {
		return string(output), nil
	}
	if resp.IsError {
		return "", fmt.Errorf("%w: claude returned an error: %s", ErrGeneration, resp.Result)
	}
	return resp.Result, nil
}
