package xcodebuild

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbuild-dev/xbuild/internal/deploy"
	"github.com/xbuild-dev/xbuild/internal/runner"
)

const testManifest = `
[package]
name = "my-app"
version = "0.1.0"

[lib]
crate-type = ["staticlib"]

[package.metadata.ios]
build_targets = ["aarch64-apple-ios-sim"]
bundle_id_prefix = "com.rust"
`

// routingExecutor answers each known tool with a canned response and
// records everything it ran.
type routingExecutor struct {
	cmds        []runner.Command
	interactive []runner.Command
	simListing  string
}

func (f *routingExecutor) Run(cmd runner.Command) (runner.Output, error) {
	f.cmds = append(f.cmds, cmd)
	switch {
	case cmd.Name == "xcodegen" && len(cmd.Args) > 0 && cmd.Args[0] == "version":
		return runner.Output{Stdout: "Version: 2.38.0\n"}, nil
	case cmd.Name == "xcrun" && strings.Contains(cmd.String(), "simctl list"):
		return runner.Output{Stdout: f.simListing}, nil
	default:
		return runner.Output{}, nil
	}
}

func (f *routingExecutor) RunInteractive(cmd runner.Command) error {
	f.interactive = append(f.interactive, cmd)
	return nil
}

func (f *routingExecutor) find(t *testing.T, name string) runner.Command {
	t.Helper()
	for _, cmd := range f.cmds {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("no %s invocation recorded", name)
	return runner.Command{}
}

func writeManifest(t *testing.T) (manifestPath, targetDir string) {
	t.Helper()
	dir := t.TempDir()
	manifestPath = filepath.Join(dir, "Cargo.toml")
	require.NoError(t, os.WriteFile(manifestPath, []byte(testManifest), 0o644))
	return manifestPath, filepath.Join(dir, "target")
}

func newTestExecutor() *routingExecutor {
	return &routingExecutor{
		simListing: `{
		  "devices": {
		    "com.apple.CoreSimulator.SimRuntime.iOS-15-2": [
		      {"udid": "SIM-1", "name": "iPhone 8", "state": "Booted"}
		    ]
		  }
		}`,
	}
}

func TestCheckRunsCargoPerTarget(t *testing.T) {
	manifestPath, targetDir := writeManifest(t)
	exec := newTestExecutor()

	p, err := New(manifestPath, targetDir, exec, nil)
	require.NoError(t, err)
	require.NoError(t, p.Check([]string{"--all-features"}))

	require.Len(t, exec.interactive, 1)
	assert.Equal(t, "cargo", exec.interactive[0].Name)
	assert.Equal(t, []string{"check", "--target", "aarch64-apple-ios-sim", "--all-features"}, exec.interactive[0].Args)
}

func TestBuildAndRunOnSimulator(t *testing.T) {
	manifestPath, targetDir := writeManifest(t)
	exec := newTestExecutor()

	p, err := New(manifestPath, targetDir, exec, nil)
	require.NoError(t, err)
	require.NoError(t, p.Build(nil, deploy.Debug))

	// cargo build ran for the configured triple.
	require.Len(t, exec.interactive, 1)
	assert.Equal(t, []string{"build", "--target", "aarch64-apple-ios-sim"}, exec.interactive[0].Args)

	// xcodebuild targeted the booted simulator in the generated
	// project directory.
	build := exec.find(t, "xcodebuild")
	assert.Contains(t, build.Args, "-destination")
	assert.Contains(t, build.Args, "platform=iOS Simulator,id=SIM-1")
	assert.Equal(t, filepath.Join(targetDir, "xcodegen", "my_app"), build.Dir)

	// project.yml and scaffolds were written.
	_, err = os.Stat(filepath.Join(targetDir, "xcodegen", "my_app", "project.yml"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(targetDir, "xcodegen", "src", "main.m"))
	assert.NoError(t, err)

	exec.cmds = nil
	require.NoError(t, p.Run(deploy.Debug))

	var installArgs, launchArgs []string
	for _, cmd := range exec.cmds {
		if cmd.Name != "xcrun" {
			continue
		}
		switch cmd.Args[1] {
		case "install":
			installArgs = cmd.Args
			assert.Equal(t, filepath.Join(targetDir, "xcodegen", "my_app"), cmd.Dir)
		case "launch":
			launchArgs = cmd.Args
		}
	}
	assert.Equal(t, []string{"simctl", "install", "SIM-1", "build/Build/Products/Debug-iphonesimulator/my_app.app"}, installArgs)
	assert.Equal(t, []string{"simctl", "launch", "SIM-1", "com.rust.my-app"}, launchArgs)
}

func TestRunWithoutBuild(t *testing.T) {
	manifestPath, targetDir := writeManifest(t)

	p, err := New(manifestPath, targetDir, newTestExecutor(), nil)
	require.NoError(t, err)
	assert.Error(t, p.Run(deploy.Debug))
}

func TestOpenProjectMissing(t *testing.T) {
	manifestPath, targetDir := writeManifest(t)

	p, err := New(manifestPath, targetDir, newTestExecutor(), nil)
	require.NoError(t, err)
	assert.ErrorContains(t, p.OpenProject(), "build it first")
}
