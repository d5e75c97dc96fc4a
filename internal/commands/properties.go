package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"rentctl/internal/rental"
	"rentctl/internal/shell"
)

func PropertiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "properties",
		Short: "List properties available for rent",
		Long:  "List properties available for rent, cheapest first. Out-of-range filters are clamped the same way the interactive search clamps them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := filterFromFlags(cmd)
			if err != nil {
				return err
			}

			rt, err := getDB()
			if err != nil {
				return err
			}
			defer rt.close()

			properties, err := rt.services().Rentals.SearchProperties(cmd.Context(), filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(properties) == 0 {
				fmt.Fprintln(out, "No available properties found matching your criteria.")
				return nil
			}
			fmt.Fprintln(out, shell.PropertyTable(properties))
			return nil
		},
	}

	cmd.Flags().String("city", "", "Only properties in this city")
	cmd.Flags().String("state", "", "Only properties in this state")
	cmd.Flags().Float64("min-price", 0, "Minimum monthly price")
	cmd.Flags().Float64("max-price", 0, "Maximum monthly price")
	cmd.Flags().Float64("min-sqft", 0, "Minimum square footage")
	cmd.Flags().Int("min-rooms", 0, "Minimum number of rooms")

	return cmd
}

// filterFromFlags builds a filter from the flags the user actually set.
func filterFromFlags(cmd *cobra.Command) (rental.Filter, error) {
	flags := cmd.Flags()

	var f rental.Filter
	var err error
	if f.City, err = flags.GetString("city"); err != nil {
		return f, err
	}
	if f.State, err = flags.GetString("state"); err != nil {
		return f, err
	}

	decimal := func(name string) (*float64, error) {
		if !flags.Changed(name) {
			return nil, nil
		}
		v, err := flags.GetFloat64(name)
		return &v, err
	}
	if f.MinPrice, err = decimal("min-price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = decimal("max-price"); err != nil {
		return f, err
	}
	if f.MinSquareFoot, err = decimal("min-sqft"); err != nil {
		return f, err
	}
	if flags.Changed("min-rooms") {
		rooms, err := flags.GetInt("min-rooms")
		if err != nil {
			return f, err
		}
		f.MinRooms = &rooms
	}
	return f, nil
}
