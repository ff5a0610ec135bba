package main

import (
	"github.com/esiegel/seamcarve"
	"github.com/spf13/cobra"
)

var energyCmd = &cobra.Command{
	Use:   "energy",
	Short: "Render the energy map of an image for debugging",
	RunE:  runEnergy,
}

func init() {
	addIOFlags(energyCmd)
	energyCmd.Flags().String("start", "#0000ff", "Color of the lowest energy")
	energyCmd.Flags().String("end", "#ffa500", "Color of the highest energy")
	rootCmd.AddCommand(energyCmd)
}

func runEnergy(cmd *cobra.Command, args []string) error {
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")

	grad, err := seamcarve.ParseGradient(start, end)
	if err != nil {
		return err
	}
	fn, err := energyFn(cmd)
	if err != nil {
		return err
	}
	return execute(cmd, &seamcarve.Processor{
		EnergyFn: fn,
		Energy:   true,
		Gradient: grad,
	})
}
