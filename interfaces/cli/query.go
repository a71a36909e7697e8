package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssumakant/abp-agent/domain/workflow"
)

// queryOptions holds options for the query command.
type queryOptions struct {
	userID     string
	jsonOutput bool
}

// newQueryCmd creates the query command.
func (a *App) newQueryCmd() *cobra.Command {
	opts := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query [request]",
		Short: "Run a scheduling request",
		Long: `Run a natural-language scheduling request through the workflow.

The workflow runs until it either completes or suspends for your
approval. A suspended thread prints its thread ID; resolve it with
"abp-agent approve".

Examples:
  abp-agent query "free up some time on friday"
  abp-agent query "book a 1:1 with sam tomorrow at 10am"
  abp-agent query --json "how busy am I this week"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd.Context(), strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVar(&opts.userID, "user", "default", "User ID to run the request as")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output the full state as JSON")

	return cmd
}

func (a *App) runQuery(ctx context.Context, request string, opts *queryOptions) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	rt, err := a.buildRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	state, err := rt.orchestrator.Start(ctx, opts.userID, request)
	if err != nil {
		return err
	}

	return a.printState(state, opts.jsonOutput)
}

// printState renders a workflow state for the terminal.
func (a *App) printState(state *workflow.AgentState, asJSON bool) error {
	if asJSON {
		encoded, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, string(encoded))
		return nil
	}

	fmt.Fprintln(a.stdout, state.FinalResponse)
	if state.HasPendingApproval() {
		fmt.Fprintf(a.stdout, "\nAwaiting approval (%s).\n", state.ApprovalType)
		fmt.Fprintf(a.stdout, "Approve with: abp-agent approve %s\n", state.ThreadID)
		fmt.Fprintf(a.stdout, "Decline with: abp-agent approve --no %s\n", state.ThreadID)
		if state.PendingAction != nil && state.PendingAction.Email != nil {
			fmt.Fprintf(a.stdout, "\nDraft notification to %s:\n%s\n",
				strings.Join(state.PendingAction.Email.To, ", "), state.PendingAction.Email.Body)
		}
	}
	return nil
}
