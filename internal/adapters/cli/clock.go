package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewClockCommand creates the clock command
func NewClockCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clock",
		Short: "Show the current simulation clock",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewDaemonClient(daemonAddr)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			clock, err := client.GetClock(ctx)
			if err != nil {
				return fmt.Errorf("clock query failed: %w", err)
			}

			fmt.Printf("Tick:           %d\n", clock.Tick)
			fmt.Printf("Date:           day %d, month %d, year %d\n",
				clock.Day, clock.Month, clock.Year)
			fmt.Printf("Last advance:   %s\n", clock.LastAdvanceTime.Format(time.RFC3339))
			fmt.Printf("Next scheduled: %s\n", clock.NextScheduledTime.Format(time.RFC3339))

			return nil
		},
	}

	return cmd
}
