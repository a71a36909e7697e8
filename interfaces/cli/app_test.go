package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ssumakant/abp-agent/domain/workflow"
)

// testConfig writes a config file using the memory backend so commands
// leave no database files behind.
func testConfig(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
user:
  email: sam@acme.com
  name: Sam
  calendar_ids: [primary]
storage:
  backend: memory
logging:
  level: error
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

// newTestApp builds an App with captured output.
func newTestApp() (*App, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	app := New().WithOutput(stdout, stderr)
	return app, stdout, stderr
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	app, stdout, _ := newTestApp()

	if err := app.ExecuteWithArgs(context.Background(), []string{"version"}); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(stdout.String(), "abp-agent version") {
		t.Errorf("output = %q, want version banner", stdout.String())
	}
}

func TestQueryCommand(t *testing.T) {
	cfgPath := testConfig(t)

	t.Run("busyness query completes", func(t *testing.T) {
		app, stdout, _ := newTestApp()

		err := app.ExecuteWithArgs(context.Background(), []string{"-c", cfgPath, "query", "how busy am I"})
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if !strings.Contains(stdout.String(), "capacity") {
			t.Errorf("output = %q, want the capacity report for an empty calendar", stdout.String())
		}
	})

	t.Run("json output is a full state", func(t *testing.T) {
		app, stdout, _ := newTestApp()

		err := app.ExecuteWithArgs(context.Background(), []string{"-c", cfgPath, "query", "--json", "how busy am I"})
		if err != nil {
			t.Fatalf("query --json: %v", err)
		}

		var state workflow.AgentState
		if err := json.Unmarshal(stdout.Bytes(), &state); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, stdout.String())
		}
		if state.Status != workflow.StatusCompleted {
			t.Errorf("status = %s, want completed", state.Status)
		}
		if state.ThreadID == "" {
			t.Error("expected a thread ID")
		}
	})

	t.Run("requires a request argument", func(t *testing.T) {
		app, _, _ := newTestApp()

		if err := app.ExecuteWithArgs(context.Background(), []string{"-c", cfgPath, "query"}); err == nil {
			t.Error("expected an error for a missing request")
		}
	})
}

func TestUnknownCommand(t *testing.T) {
	t.Parallel()

	app, _, _ := newTestApp()

	if err := app.ExecuteWithArgs(context.Background(), []string{"nope"}); err == nil {
		t.Error("expected an error for an unknown command")
	}
}

func TestConstitutionCommand(t *testing.T) {
	cfgPath := testConfig(t)

	app, stdout, _ := newTestApp()

	if err := app.ExecuteWithArgs(context.Background(), []string{"-c", cfgPath, "constitution"}); err != nil {
		t.Fatalf("constitution: %v", err)
	}
	if !strings.Contains(stdout.String(), "09:00") {
		t.Errorf("output = %q, want the default work hours", stdout.String())
	}
}
