package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tycoonsim/tycoon-go/internal/adapters/httpapi/dto"
)

// NewFacilityCommand creates the facility command group
func NewFacilityCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "facility",
		Short: "Inspect and manage facilities",
	}

	cmd.AddCommand(newFacilityListCommand())
	cmd.AddCommand(newFacilityShowCommand())
	cmd.AddCommand(newFacilityCreateCommand())
	cmd.AddCommand(newFacilitySetRecipeCommand())
	cmd.AddCommand(newFacilityStartCommand())
	cmd.AddCommand(newFacilityStopCommand())

	return cmd
}

func newFacilityListCommand() *cobra.Command {
	var productionOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List facilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewDaemonClient(daemonAddr)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			facilities, err := client.ListFacilities(ctx, productionOnly)
			if err != nil {
				return fmt.Errorf("facility listing failed: %w", err)
			}

			if len(facilities) == 0 {
				fmt.Println("No facilities")
				return nil
			}

			for _, f := range facilities {
				state := "idle"
				if f.IsProducing {
					state = fmt.Sprintf("producing %s (%d ticks done)", f.ActiveRecipeID, f.ProgressTicks)
				} else if f.ActiveRecipeID != "" {
					state = fmt.Sprintf("assigned %s", f.ActiveRecipeID)
				}
				fmt.Printf("%-28s %-10s %3d/%3d  %s\n",
					f.ID, f.Kind, f.Usage, f.Capacity, state)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&productionOnly, "production", false, "Only production facilities")

	return cmd
}

func newFacilityShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <facility-id>",
		Short: "Show one facility in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewDaemonClient(daemonAddr)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			f, err := client.GetFacility(ctx, args[0])
			if err != nil {
				return fmt.Errorf("facility lookup failed: %w", err)
			}

			printFacility(f)
			return nil
		},
	}

	return cmd
}

func newFacilityCreateCommand() *cobra.Command {
	var (
		ownerID  string
		kind     string
		capacity uint
		allowed  []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a facility",
		Long: `Create a facility.

Example:
  tycoonctl facility create --owner player-1 --kind production --capacity 100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ownerID == "" {
				return fmt.Errorf("--owner flag is required")
			}

			client := NewDaemonClient(daemonAddr)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			f, err := client.CreateFacility(ctx, dto.CreateFacilityRequest{
				OwnerID:          ownerID,
				Kind:             kind,
				Capacity:         capacity,
				AllowedRecipeIDs: allowed,
			})
			if err != nil {
				return fmt.Errorf("facility creation failed: %w", err)
			}

			fmt.Println("✓ Facility created")
			printFacility(f)
			return nil
		},
	}

	cmd.Flags().StringVar(&ownerID, "owner", "", "Owner id (required)")
	cmd.Flags().StringVar(&kind, "kind", "production", "Facility kind (production, warehouse, retail)")
	cmd.Flags().UintVar(&capacity, "capacity", 100, "Inventory capacity in units")
	cmd.Flags().StringSliceVar(&allowed, "allow", nil, "Allowed recipe ids (empty allows all)")

	return cmd
}

func newFacilitySetRecipeCommand() *cobra.Command {
	var recipeID string

	cmd := &cobra.Command{
		Use:   "set-recipe <facility-id>",
		Short: "Assign or clear a facility's active recipe",
		Long: `Assign a recipe to a production facility. Any in-flight cycle stops
and its progress is lost. Omitting --recipe clears the assignment.

Example:
  tycoonctl facility set-recipe production-a1b2c3d4 --recipe iron-smelting`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewDaemonClient(daemonAddr)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			f, err := client.SetRecipe(ctx, args[0], recipeID)
			if err != nil {
				return fmt.Errorf("recipe assignment failed: %w", err)
			}

			if recipeID == "" {
				fmt.Println("✓ Recipe cleared")
			} else {
				fmt.Println("✓ Recipe assigned")
			}
			printFacility(f)
			return nil
		},
	}

	cmd.Flags().StringVar(&recipeID, "recipe", "", "Recipe id (empty clears the assignment)")

	return cmd
}

func newFacilityStartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start <facility-id>",
		Short: "Start a facility's production cycle immediately",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewDaemonClient(daemonAddr)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			f, err := client.StartProduction(ctx, args[0])
			if err != nil {
				return fmt.Errorf("start failed: %w", err)
			}

			fmt.Println("✓ Production started")
			printFacility(f)
			return nil
		},
	}

	return cmd
}

func newFacilityStopCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop <facility-id>",
		Short: "Stop a facility's current production cycle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewDaemonClient(daemonAddr)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			f, err := client.StopProduction(ctx, args[0])
			if err != nil {
				return fmt.Errorf("stop failed: %w", err)
			}

			fmt.Println("✓ Production stopped")
			printFacility(f)
			return nil
		},
	}

	return cmd
}

func printFacility(f *dto.FacilityResponse) {
	fmt.Printf("  ID:          %s\n", f.ID)
	fmt.Printf("  Owner:       %s\n", f.OwnerID)
	fmt.Printf("  Kind:        %s\n", f.Kind)
	fmt.Printf("  Inventory:   %d/%d units\n", f.Usage, f.Capacity)
	for _, item := range f.Items {
		fmt.Printf("    %-20s %d\n", item.Resource, item.Quantity)
	}
	if f.ActiveRecipeID != "" {
		fmt.Printf("  Recipe:      %s\n", f.ActiveRecipeID)
	}
	fmt.Printf("  Producing:   %t\n", f.IsProducing)
	if f.IsProducing {
		fmt.Printf("  Progress:    %d ticks\n", f.ProgressTicks)
	}
	fmt.Printf("  Effectivity: %.0f%%\n", f.Effectivity)
}
