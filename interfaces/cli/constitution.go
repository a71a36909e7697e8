package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// newConstitutionCmd creates the constitution command.
func (a *App) newConstitutionCmd() *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "constitution",
		Short: "Show the active scheduling rules",
		Long: `Print the constitution the agent enforces: working hours, protected
time blocks, weekend policy, and the busyness threshold.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			c := cfg.Constitution
			if asYAML {
				encoded, err := yaml.Marshal(c)
				if err != nil {
					return err
				}
				fmt.Fprint(a.stdout, string(encoded))
				return nil
			}

			fmt.Fprintf(a.stdout, "Work hours:        %s-%s (%s)\n", c.WorkHours.Start, c.WorkHours.End, c.WorkHours.Timezone)
			fmt.Fprintf(a.stdout, "Weekend days:      %s (%s)\n", strings.Join(c.WeekendDays, ", "), c.WeekendPolicy)
			fmt.Fprintf(a.stdout, "Busyness threshold: %.0f%% over %d days\n", c.BusynessThreshold*100, c.BusynessWindowDays)
			fmt.Fprintf(a.stdout, "Reschedule lookahead: %d days\n", c.LookaheadDays)
			if len(c.ProtectedBlocks) == 0 {
				fmt.Fprintln(a.stdout, "Protected blocks:  none")
				return nil
			}
			fmt.Fprintln(a.stdout, "Protected blocks:")
			for _, b := range c.ProtectedBlocks {
				fmt.Fprintf(a.stdout, "  %s: %s-%s on %s\n", b.Name, b.Start, b.End, strings.Join(b.Days, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Output as YAML")

	return cmd
}
