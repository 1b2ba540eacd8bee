package cmd

import (
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:     "check [-- cargo args]",
	Aliases: []string{"c"},
	Short:   "Check the package builds without creating the Xcode project",
	RunE:    runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	p, _, err := newPipeline()
	if err != nil {
		return err
	}
	return p.Check(args)
}
