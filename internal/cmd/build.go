package cmd

import (
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:     "build [-- cargo args]",
	Aliases: []string{"b"},
	Short:   "Compile the package and create the Xcode project",
	RunE:    runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	p, cfg, err := newPipeline()
	if err != nil {
		return err
	}
	return p.Build(args, buildType(cfg))
}
