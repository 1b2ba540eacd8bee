package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xbuild-dev/xbuild/internal/mobiledevice"
	"github.com/xbuild-dev/xbuild/internal/runner"
	"github.com/xbuild-dev/xbuild/internal/simulator"
)

var devicesCmd = &cobra.Command{
	Use:     "devices",
	Aliases: []string{"d"},
	Short:   "List booted simulators and connected devices",
	RunE:    runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	exec := runner.System()

	fmt.Println("Booted simulators:")
	sims, err := simulator.List(exec)
	if err != nil {
		log.Debug().Err(err).Msg("simulator listing failed")
	}
	for _, sim := range sims {
		if sim.State == simulator.StateBooted {
			fmt.Printf("  %s  %s\n", sim.UDID, sim.Name)
		}
	}

	var devices []mobiledevice.Device
	if svc, err := mobiledevice.NewService(); err == nil {
		devices = mobiledevice.ListDevices(svc)
	} else {
		log.Debug().Err(err).Msg("device management service unavailable")
	}

	fmt.Printf("Connected devices: %d\n", len(devices))
	for _, dev := range devices {
		fmt.Printf("  %s  %s (%s, %s, iOS %s, %s)\n",
			dev.Identifier, dev.Name, dev.Connection, dev.CPUArchitecture, dev.ProductVersion, dev.HardwareModel)
	}
	return nil
}
