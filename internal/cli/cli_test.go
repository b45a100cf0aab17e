package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pablasso/goalplan/internal/config"
	"github.com/pablasso/goalplan/internal/plan"
	"github.com/pablasso/goalplan/internal/testutil"
)

// setupHome points the data directory at a temp dir and forces demo data.
func setupHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.HomeEnv, dir)
	t.Setenv("GOALPLAN_PROVIDER", "demo")
	for _, key := range []string{"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GOALPLAN_OPENAI_API_KEY", "GOALPLAN_ANTHROPIC_API_KEY"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func generateSaved(t *testing.T, goal string) plan.Plan {
	t.Helper()
	out, err := runCLI(t, "generate", "--save", "--json", goal)
	if err != nil {
		t.Fatalf("generate failed: %v\n%s", err, out)
	}
	var p plan.Plan
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("generate --json output is not a plan: %v\n%s", err, out)
	}
	if p.ID == "" {
		t.Fatal("saved plan has no id")
	}
	return p
}

func TestGenerate_PrintsOrderedPlan(t *testing.T) {
	setupHome(t)

	out, err := runCLI(t, "generate", "--demo", "--timeline", "Launch", "a", "new", "product")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"Goal: Launch a new product",
		"Progress: 0/5 completed (0%)",
		" 1. [ ] Finalize product features",
		" 5. [ ] Launch product",
		"Timeline:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Saved plan") {
		t.Error("plan should not be saved without --save")
	}
}

func TestGenerate_EmptyGoal(t *testing.T) {
	setupHome(t)

	_, err := runCLI(t, "generate", "   ")
	if err == nil || !strings.Contains(err.Error(), "goal text is required") {
		t.Fatalf("expected goal required error, got %v", err)
	}

	if _, err := runCLI(t, "generate"); err == nil {
		t.Fatal("expected error without a goal")
	}
}

func TestGenerate_SaveThenBrowse(t *testing.T) {
	setupHome(t)
	p := generateSaved(t, "Build a personal website")

	if len(p.Tasks) != 5 || p.Tasks[0].Title != "Create website wireframes" {
		t.Fatalf("unexpected tasks: %+v", p.Tasks)
	}

	t.Run("list", func(t *testing.T) {
		out, err := runCLI(t, "plans", "list")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "ID") || !strings.Contains(out, "PROGRESS") {
			t.Errorf("missing header:\n%s", out)
		}
		if !strings.Contains(out, p.ID[:8]) || !strings.Contains(out, "Build a personal website") {
			t.Errorf("missing saved plan:\n%s", out)
		}
		if !strings.Contains(out, "0/5 (0%)") {
			t.Errorf("missing progress:\n%s", out)
		}
	})

	t.Run("list json", func(t *testing.T) {
		out, err := runCLI(t, "plans", "list", "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var plans []plan.Plan
		if err := json.Unmarshal([]byte(out), &plans); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if len(plans) != 1 || plans[0].ID != p.ID {
			t.Errorf("unexpected plans: %+v", plans)
		}
	})

	t.Run("show by prefix", func(t *testing.T) {
		out, err := runCLI(t, "plans", "show", p.ID[:6])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Saved: ") || !strings.Contains(out, p.ID) {
			t.Errorf("expected saved header:\n%s", out)
		}
		if !strings.Contains(out, "after Create website wireframes") {
			t.Errorf("expected dependency titles:\n%s", out)
		}
	})

	t.Run("export", func(t *testing.T) {
		dir := t.TempDir()
		out, err := runCLI(t, "plans", "export", p.ID, "--dir", dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Exported plan to ") {
			t.Errorf("unexpected output: %s", out)
		}
		matches, _ := filepath.Glob(filepath.Join(dir, "*.md"))
		if len(matches) != 1 {
			t.Fatalf("expected one markdown file, got %v", matches)
		}
		data, err := os.ReadFile(matches[0])
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(string(data), "# Build a personal website") {
			t.Errorf("unexpected export:\n%s", data)
		}
	})

	t.Run("activity", func(t *testing.T) {
		out, err := runCLI(t, "activity")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"plan_generated", "plan_saved", "plan_opened"} {
			if !strings.Contains(out, want) {
				t.Errorf("activity missing %q:\n%s", want, out)
			}
		}
	})
}

func TestPlansExport_DefaultsToWorkingDirectory(t *testing.T) {
	setupHome(t)
	p := generateSaved(t, "Launch a product")
	dir := testutil.SetupTestDir(t)

	if _, err := runCLI(t, "plans", "export", p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "launch-a-product-*.md"))
	if len(matches) != 1 {
		t.Fatalf("expected export in working directory, got %v", matches)
	}
}

func TestPlansShow_NotFound(t *testing.T) {
	setupHome(t)
	generateSaved(t, "Launch a product")

	_, err := runCLI(t, "plans", "show", "no-such-plan")
	if err == nil || !strings.Contains(err.Error(), "plan not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestPlansList_Empty(t *testing.T) {
	setupHome(t)

	out, err := runCLI(t, "plans", "list")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No saved plans yet.") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestActivity_Empty(t *testing.T) {
	setupHome(t)

	out, err := runCLI(t, "activity")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No activity yet.") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	dir := setupHome(t)
	path := filepath.Join(dir, "config.yaml")

	out, err := runCLI(t, "config", "init")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("expected path in output: %s", out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	if _, err := runCLI(t, "config", "init"); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected already exists error, got %v", err)
	}
	if _, err := runCLI(t, "config", "init", "--force"); err != nil {
		t.Errorf("--force should overwrite: %v", err)
	}

	t.Setenv("OPENAI_API_KEY", "sk-abcdefghijklmnop")
	out, err = runCLI(t, "config", "show")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "abcdefgh") {
		t.Errorf("api key should be redacted:\n%s", out)
	}
	if !strings.Contains(out, "****mnop") {
		t.Errorf("expected redacted key:\n%s", out)
	}
}

func TestConfig_MissingExplicitFile(t *testing.T) {
	dir := setupHome(t)

	_, err := runCLI(t, "--config", filepath.Join(dir, "missing.yaml"), "plans", "list")
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestServe_RefusesClaudeCLI(t *testing.T) {
	setupHome(t)
	t.Setenv("GOALPLAN_PROVIDER", "claude-cli")

	out, err := runCLI(t, "serve", "--addr", "127.0.0.1:0")
	if !errors.Is(err, errClaudeCLIRemote) {
		t.Fatalf("expected claude-cli to be refused, got %v", err)
	}
	if strings.Contains(out, "Serving on") {
		t.Errorf("server should not start:\n%s", out)
	}
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "goalplan dev") {
		t.Errorf("unexpected version output: %s", out)
	}
}
