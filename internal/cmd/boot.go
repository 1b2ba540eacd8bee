package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xbuild-dev/xbuild/internal/config"
	"github.com/xbuild-dev/xbuild/internal/runner"
	"github.com/xbuild-dev/xbuild/internal/simulator"
)

var bootCmd = &cobra.Command{
	Use:   "boot [udid]",
	Short: "Boot a simulator",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBoot,
}

func init() {
	rootCmd.AddCommand(bootCmd)
}

func runBoot(cmd *cobra.Command, args []string) error {
	exec := runner.System()

	if len(args) == 0 {
		fmt.Println("Simulator device id is required. Available simulators:")
		sims, err := simulator.List(exec)
		if err != nil {
			return fmt.Errorf("failed to list simulators: %w", err)
		}
		for _, sim := range sims {
			fmt.Printf("  %s  %s (%s)\n", sim.UDID, sim.Name, sim.State)
		}
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := simulator.Boot(exec, args[0]); err != nil {
		return err
	}
	if cfg.Simulator.ShouldOpenApp() {
		return simulator.OpenSimulatorApp(exec)
	}
	return nil
}
