package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// threadsOptions holds options for the threads command.
type threadsOptions struct {
	showApprovals bool
	jsonOutput    bool
}

// newThreadsCmd creates the threads command.
func (a *App) newThreadsCmd() *cobra.Command {
	opts := &threadsOptions{}

	cmd := &cobra.Command{
		Use:   "threads [thread-id]",
		Short: "List workflow threads or inspect one",
		Long: `Without arguments, list every checkpointed workflow thread. With a
thread ID, print that thread's state and, with --approvals, its
approval history.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return a.showThread(cmd.Context(), args[0], opts)
			}
			return a.listThreads(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.showApprovals, "approvals", false, "Include resolved approvals")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func (a *App) listThreads(ctx context.Context, opts *threadsOptions) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	rt, err := a.buildRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	ids, err := rt.orchestrator.ListThreads(ctx)
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		encoded, err := json.MarshalIndent(ids, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, string(encoded))
		return nil
	}

	if len(ids) == 0 {
		fmt.Fprintln(a.stdout, "No threads.")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(a.stdout, id)
	}
	return nil
}

func (a *App) showThread(ctx context.Context, threadID string, opts *threadsOptions) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	rt, err := a.buildRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	state, err := rt.orchestrator.GetState(ctx, threadID)
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		encoded, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, string(encoded))
	} else {
		fmt.Fprintf(a.stdout, "Thread:   %s\n", state.ThreadID)
		fmt.Fprintf(a.stdout, "User:     %s\n", state.UserID)
		fmt.Fprintf(a.stdout, "Request:  %s\n", state.OriginalRequest)
		fmt.Fprintf(a.stdout, "State:    %s (%s)\n", state.Current, state.Status)
		if state.DetectedIntent != "" {
			fmt.Fprintf(a.stdout, "Intent:   %s\n", state.DetectedIntent)
		}
		if state.FinalResponse != "" {
			fmt.Fprintf(a.stdout, "Response: %s\n", state.FinalResponse)
		}
	}

	if !opts.showApprovals {
		return nil
	}

	records, err := rt.orchestrator.ApprovalHistory(ctx, threadID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(a.stdout, "No resolved approvals.")
		return nil
	}
	for _, r := range records {
		verdict := "declined"
		if r.Approved {
			verdict = "approved"
		}
		fmt.Fprintf(a.stdout, "%s  %s  %s\n", r.ResolvedAt.Format("2006-01-02 15:04:05"), r.ApprovalType, verdict)
	}
	return nil
}
