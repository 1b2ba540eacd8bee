package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xbuild-dev/xbuild/internal/runner"
	"github.com/xbuild-dev/xbuild/internal/teams"
)

var teamsCmd = &cobra.Command{
	Use:     "teams",
	Aliases: []string{"t"},
	Short:   "List code-signing development teams",
	RunE:    runTeams,
}

func init() {
	rootCmd.AddCommand(teamsCmd)
}

func runTeams(cmd *cobra.Command, args []string) error {
	fmt.Println("Signing teams:")
	for _, team := range teams.Find(runner.System()) {
		fmt.Printf("  %s  %s (%s)\n", team.OrganizationUnit, team.Organization, team.CommonName)
	}
	return nil
}
