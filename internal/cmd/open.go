package cmd

import (
	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:     "open",
	Aliases: []string{"o"},
	Short:   "Open the generated project in Xcode",
	RunE:    runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	p, _, err := newPipeline()
	if err != nil {
		return err
	}
	return p.OpenProject()
}
