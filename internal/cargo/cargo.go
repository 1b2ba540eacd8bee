// Package cargo invokes the Rust build tool that produces the static
// libraries the generated project links against.
package cargo

import (
	"github.com/rs/zerolog/log"

	"github.com/xbuild-dev/xbuild/internal/runner"
)

// Run executes `cargo <subcommand>` with the user's extra arguments,
// optionally constrained to one compilation target. The process
// inherits stdio so compiler progress and diagnostics stream through.
func Run(exec runner.Executor, subcommand string, args []string, target string) error {
	cmdArgs := []string{subcommand}
	if target != "" {
		cmdArgs = append(cmdArgs, "--target", target)
	}
	cmdArgs = append(cmdArgs, args...)

	log.Debug().Strs("args", cmdArgs).Msg("running cargo")
	return exec.RunInteractive(runner.Command{Name: "cargo", Args: cmdArgs})
}
