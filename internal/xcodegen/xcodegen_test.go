package xcodegen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/xbuild-dev/xbuild/internal/manifest"
	"github.com/xbuild-dev/xbuild/internal/runner"
	"github.com/xbuild-dev/xbuild/internal/teams"
)

type fakeExecutor struct {
	out  runner.Output
	err  error
	cmds []runner.Command
}

func (f *fakeExecutor) Run(cmd runner.Command) (runner.Output, error) {
	f.cmds = append(f.cmds, cmd)
	return f.out, f.err
}

func (f *fakeExecutor) RunInteractive(cmd runner.Command) error {
	f.cmds = append(f.cmds, cmd)
	return f.err
}

func testManifest(t *testing.T) *manifest.Root {
	t.Helper()
	root, err := manifest.Parse([]byte(`
[package]
name = "my-app"
version = "0.1.0"

[lib]
crate-type = ["staticlib"]

[package.metadata.ios]
build_targets = ["aarch64-apple-ios"]
bundle_id_prefix = "com.rust"
deployment_target = "13.0"
dependencies = ["Metal.framework"]
assets = ["assets"]
`))
	require.NoError(t, err)
	return root
}

func TestFromManifest(t *testing.T) {
	team := &teams.Team{
		CommonName:       "Apple Development: dev@example.com",
		Organization:     "Example Org",
		OrganizationUnit: "TEAM123456",
	}

	project, err := FromManifest("/proj/Cargo.toml", testManifest(t), team)
	require.NoError(t, err)

	assert.Equal(t, "my_app", project.Name)
	assert.Equal(t, "com.rust", project.Options.BundleIDPrefix)
	assert.Equal(t, map[string]string{"Debug": "debug", "Release": "release"}, project.Configs)

	assert.Equal(t, "Automatic", project.Settings["CODE_SIGN_STYLE"])
	assert.Equal(t, "iPhone Developer", project.Settings["CODE_SIGN_IDENTITY"])
	assert.Equal(t, "TEAM123456", project.Settings["DEVELOPMENT_TEAM"])

	target, ok := project.Targets["my_app"]
	require.True(t, ok)
	assert.Equal(t, "application", target.Type)
	assert.Equal(t, "iOS", target.Platform)
	assert.Equal(t, "13.0", target.DeploymentTarget)
	assert.Equal(t, []Dependency{{SDK: "Metal.framework"}}, target.Dependencies)

	require.Len(t, target.Sources, 2)
	assert.Equal(t, "../src/", target.Sources[0])
	asset := target.Sources[1].(assetSource)
	assert.Equal(t, filepath.Join("/proj", "assets"), asset.Path)
}

func TestFromManifestNoTeamDisablesSigning(t *testing.T) {
	project, err := FromManifest("/proj/Cargo.toml", testManifest(t), nil)
	require.NoError(t, err)

	assert.Equal(t, "NO", project.Settings["CODE_SIGNING_ALLOWED"])
	assert.Equal(t, "NO", project.Settings["CODE_SIGNING_REQUIRED"])
	assert.Equal(t, "", project.Settings["CODE_SIGN_IDENTITY"])
}

func TestFromManifestExplicitSigningWins(t *testing.T) {
	root := testManifest(t)
	ios, err := root.IOS()
	require.NoError(t, err)
	ios.CodeSignIdentity = "iPhone Distribution"
	ios.DevelopmentTeam = "OTHER67890"

	project, err := FromManifest("/proj/Cargo.toml", root, &teams.Team{OrganizationUnit: "TEAM123456"})
	require.NoError(t, err)

	assert.Equal(t, "iPhone Distribution", project.Settings["CODE_SIGN_IDENTITY"])
	assert.Equal(t, "OTHER67890", project.Settings["DEVELOPMENT_TEAM"])
}

func TestMarshalRoundTrips(t *testing.T) {
	project, err := FromManifest("/proj/Cargo.toml", testManifest(t), nil)
	require.NoError(t, err)

	data, err := project.Marshal()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "my_app", decoded["name"])

	options := decoded["options"].(map[string]any)
	assert.Equal(t, "com.rust", options["bundleIdPrefix"])
}

func TestCheckInstalled(t *testing.T) {
	ok := &fakeExecutor{out: runner.Output{Stdout: "Version: 2.38.0\n"}}
	assert.NoError(t, CheckInstalled(ok))
	assert.Equal(t, []string{"version"}, ok.cmds[0].Args)

	wrongOutput := &fakeExecutor{out: runner.Output{Stdout: "zsh: command not found"}}
	assert.Error(t, CheckInstalled(wrongOutput))

	failing := &fakeExecutor{err: &runner.ExitError{Cmd: "xcodegen version"}}
	assert.Error(t, CheckInstalled(failing))
}

func TestGenerateWritesScaffolds(t *testing.T) {
	dir := t.TempDir()
	srcDir := filepath.Join(dir, "src")
	projectDir := filepath.Join(dir, "my_app")

	project, err := FromManifest("/proj/Cargo.toml", testManifest(t), nil)
	require.NoError(t, err)

	exec := &fakeExecutor{}
	require.NoError(t, Generate(exec, project, srcDir, projectDir))

	for _, name := range []string{"bindings.h", "main.m"} {
		_, err := os.Stat(filepath.Join(srcDir, name))
		assert.NoError(t, err, name)
	}
	_, err = os.Stat(filepath.Join(projectDir, "project.yml"))
	assert.NoError(t, err)

	require.Len(t, exec.cmds, 1)
	assert.Equal(t, "xcodegen", exec.cmds[0].Name)
	assert.Equal(t, []string{"--use-cache"}, exec.cmds[0].Args)
	assert.Equal(t, projectDir, exec.cmds[0].Dir)
}
