package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewTickCommand creates the tick command
func NewTickCommand() *cobra.Command {
	var manual bool

	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Trigger a tick run",
		Long: `Trigger a tick run on the daemon.

A scheduled trigger (the default) is a no-op until the clock's next
scheduled time has passed. A manual trigger (--manual) always advances
the simulation and leaves the automatic cadence untouched.

Example:
  tycoonctl tick --manual`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewDaemonClient(daemonAddr)

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			result, err := client.RunTick(ctx, manual)
			if err != nil {
				return fmt.Errorf("tick failed: %w", err)
			}

			if result.NotDue {
				remaining := time.Duration(result.SecondsRemaining * float64(time.Second))
				fmt.Println("Tick not due yet")
				fmt.Printf("  Time remaining: %s\n", remaining.Round(time.Second))
				return nil
			}

			fmt.Println("✓ Tick completed")
			fmt.Printf("  Tick:       %d\n", result.Clock.Tick)
			fmt.Printf("  Date:       day %d, month %d, year %d\n",
				result.Clock.Day, result.Clock.Month, result.Clock.Year)
			fmt.Printf("  Facilities: %d advanced\n", result.FacilitiesAdvanced)
			if result.Manual {
				fmt.Printf("  Next scheduled tick unchanged: %s\n",
					result.Clock.NextScheduledTime.Format(time.RFC3339))
			} else {
				fmt.Printf("  Next scheduled tick: %s\n",
					result.Clock.NextScheduledTime.Format(time.RFC3339))
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&manual, "manual", false, "Force the tick regardless of schedule")

	return cmd
}
