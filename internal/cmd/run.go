package cmd

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:     "run [-- cargo args]",
	Aliases: []string{"r"},
	Short:   "Build, then install and launch on a device or simulator",
	RunE:    runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	p, cfg, err := newPipeline()
	if err != nil {
		return err
	}

	bt := buildType(cfg)
	if err := p.Build(args, bt); err != nil {
		return err
	}
	return p.Run(bt)
}
