package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssumakant/abp-agent/domain/workflow"
)

// approveOptions holds options for the approve command.
type approveOptions struct {
	decline    bool
	editedBody string
	bodyFile   string
	decidedBy  string
	jsonOutput bool
}

// newApproveCmd creates the approve command.
func (a *App) newApproveCmd() *cobra.Command {
	opts := &approveOptions{}

	cmd := &cobra.Command{
		Use:   "approve [thread-id]",
		Short: "Resolve a pending approval",
		Long: `Resolve a workflow thread suspended for approval.

By default the pending action is approved and executed. Pass --no to
decline; the thread completes without touching your calendar.

Examples:
  abp-agent approve 4f8a2c…
  abp-agent approve --no 4f8a2c…
  abp-agent approve --body-file edited.txt 4f8a2c…`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runApprove(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.decline, "no", false, "Decline the pending action")
	cmd.Flags().StringVar(&opts.editedBody, "body", "", "Replace the drafted notification body")
	cmd.Flags().StringVar(&opts.bodyFile, "body-file", "", "Replace the drafted notification body from a file")
	cmd.Flags().StringVar(&opts.decidedBy, "by", "", "Who made the decision")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output the full state as JSON")

	return cmd
}

func (a *App) runApprove(ctx context.Context, threadID string, opts *approveOptions) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	rt, err := a.buildRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	editedBody := opts.editedBody
	if opts.bodyFile != "" {
		data, err := os.ReadFile(opts.bodyFile)
		if err != nil {
			return err
		}
		editedBody = string(data)
	}

	state, err := rt.orchestrator.Resume(ctx, threadID, workflow.Decision{
		Approved:   !opts.decline,
		EditedBody: editedBody,
		DecidedBy:  opts.decidedBy,
	})
	if err != nil {
		return err
	}

	return a.printState(state, opts.jsonOutput)
}
