package cmd

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xbuild-dev/xbuild/internal/config"
	"github.com/xbuild-dev/xbuild/internal/deploy"
	"github.com/xbuild-dev/xbuild/internal/mobiledevice"
	"github.com/xbuild-dev/xbuild/internal/runner"
	"github.com/xbuild-dev/xbuild/internal/xcodebuild"
)

var (
	manifestPath string
	targetDir    string
	releaseBuild bool
	debug        bool
	trace        bool
)

var rootCmd = &cobra.Command{
	Use:   "xbuild",
	Short: "xbuild - build and run Rust apps on iOS devices and simulators",
	Long: `xbuild compiles a Rust package for iOS, wraps it in a generated
Xcode project and deploys it to a connected device or a simulator.

Build and run:
  xbuild build
  xbuild run

Inspect the environment:
  xbuild devices
  xbuild teams

Boot a simulator:
  xbuild boot <udid>`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		if debug {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
		if trace {
			zerolog.SetGlobalLevel(zerolog.TraceLevel)
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&manifestPath, "manifest-path", "Cargo.toml", "path to the package's Cargo.toml")
	rootCmd.PersistentFlags().StringVar(&targetDir, "target-dir", "", "build output directory (default: <package>/target)")
	rootCmd.PersistentFlags().BoolVar(&releaseBuild, "release", false, "build the Release configuration")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&trace, "trace", false, "enable trace logging")
}

// newPipeline wires the pipeline from flags and the tool config. The
// device management service is optional: without it only simulator
// deployment works.
func newPipeline() (*xcodebuild.Pipeline, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	svc, err := mobiledevice.NewService()
	if err != nil {
		log.Debug().Err(err).Msg("device management service unavailable")
		svc = nil
	}

	dir := targetDir
	if dir == "" {
		dir = filepath.Join(filepath.Dir(manifestPath), cfg.Defaults.TargetDir)
	}

	p, err := xcodebuild.New(manifestPath, dir, runner.System(), svc)
	if err != nil {
		return nil, nil, err
	}
	return p, cfg, nil
}

// buildType resolves the configuration from the --release flag and the
// configured default.
func buildType(cfg *config.Config) deploy.BuildType {
	if releaseBuild || cfg.Defaults.Configuration == "release" {
		return deploy.Release
	}
	return deploy.Debug
}
