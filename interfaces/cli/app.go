// Package cli provides the command-line interface for the scheduling
// assistant.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssumakant/abp-agent/application"
	"github.com/ssumakant/abp-agent/domain/checkpoint"
	"github.com/ssumakant/abp-agent/domain/workflow"
	calmemory "github.com/ssumakant/abp-agent/infrastructure/calendar/memory"
	"github.com/ssumakant/abp-agent/infrastructure/config"
	emailinfra "github.com/ssumakant/abp-agent/infrastructure/email"
	intentinfra "github.com/ssumakant/abp-agent/infrastructure/intent"
	"github.com/ssumakant/abp-agent/infrastructure/logging"
	"github.com/ssumakant/abp-agent/infrastructure/resilience"
	"github.com/ssumakant/abp-agent/infrastructure/storage/memory"
	redisstore "github.com/ssumakant/abp-agent/infrastructure/storage/redis"
	"github.com/ssumakant/abp-agent/infrastructure/storage/sqlite"
)

// Version information set at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App represents the CLI application.
type App struct {
	root   *cobra.Command
	stdout io.Writer
	stderr io.Writer

	configPath string
}

// New creates a new CLI application.
func New() *App {
	app := &App{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	app.root = &cobra.Command{
		Use:   "abp-agent",
		Short: "Approval-gated calendar assistant",
		Long: `abp-agent interprets scheduling requests, checks them against your
declared constraints, and proposes calendar changes that execute only
after your explicit approval. Nothing on your calendar moves without
a yes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	app.root.PersistentFlags().StringVarP(&app.configPath, "config", "c", "", "Path to configuration file")

	app.root.AddCommand(
		app.newVersionCmd(),
		app.newQueryCmd(),
		app.newApproveCmd(),
		app.newThreadsCmd(),
		app.newConstitutionCmd(),
	)

	return app
}

// WithOutput sets custom output writers.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// Execute runs the CLI application.
func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments (useful for testing).
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

// newVersionCmd creates the version command.
func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "abp-agent version %s\n", Version)
			fmt.Fprintf(a.stdout, "  Git commit: %s\n", GitCommit)
			fmt.Fprintf(a.stdout, "  Build date: %s\n", BuildDate)
		},
	}
}

// loadConfig loads the configuration file named by --config, falling back
// to defaults when none is given.
func (a *App) loadConfig() (*config.Config, error) {
	if a.configPath == "" {
		cfg := config.Default()
		if cfg.User.Email == "" {
			cfg.User.Email = os.Getenv("ABP_USER_EMAIL")
		}
		return cfg, nil
	}
	return config.NewLoader().LoadFile(a.configPath)
}

// runtime bundles everything a command needs, plus the store handles to
// close when done.
type runtime struct {
	orchestrator *application.Orchestrator
	closers      []io.Closer
}

// Close releases the runtime's store handles.
func (r *runtime) Close() {
	for _, c := range r.closers {
		_ = c.Close()
	}
}

// buildRuntime wires the orchestrator from configuration.
func (a *App) buildRuntime(cfg *config.Config) (*runtime, error) {
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})

	rt := &runtime{}

	var checkpoints checkpoint.Store
	var approvals workflow.ApprovalStore

	switch cfg.Storage.Backend {
	case "memory":
		checkpoints = memory.NewCheckpointStore()
		approvals = memory.NewApprovalStore()

	case "redis":
		store := redisstore.NewCheckpointStore(redisstore.Config{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
		rt.closers = append(rt.closers, store)
		checkpoints = store
		// Approval archival stays local; Redis holds only live checkpoints.
		approvals = memory.NewApprovalStore()

	default:
		store, err := sqlite.NewCheckpointStore(sqlite.DefaultConfig(), sqlite.WithDSN(cfg.Storage.SQLite.DSN))
		if err != nil {
			return nil, fmt.Errorf("opening checkpoint store: %w", err)
		}
		rt.closers = append(rt.closers, store)
		checkpoints = store

		approvalStore, err := sqlite.NewApprovalStoreFromDB(store.DB())
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("opening approval store: %w", err)
		}
		approvals = approvalStore
	}

	// TODO: swap the in-memory calendar for the Google Calendar store once
	// the OAuth flow lands.
	calendarStore := resilience.NewDefaultCalendarStore(calmemory.NewStore())

	orchestrator, err := application.New(
		application.Config{
			UserEmail:      cfg.User.Email,
			UserName:       cfg.User.Name,
			InternalDomain: cfg.User.InternalDomain,
			CalendarIDs:    cfg.User.CalendarIDs,
			Constitution:   cfg.Constitution,
		},
		application.Dependencies{
			Classifier:  intentinfra.NewKeywordClassifier(),
			Calendar:    calendarStore,
			Checkpoints: checkpoints,
			Approvals:   approvals,
			Drafter:     emailinfra.NewTemplateDrafter(),
			Sender:      emailinfra.NewMemorySender(),
		},
	)
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.orchestrator = orchestrator
	return rt, nil
}
