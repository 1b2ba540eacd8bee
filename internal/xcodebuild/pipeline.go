// Package xcodebuild orchestrates the full build-and-deploy flow: the
// Rust build per target triple, Xcode project generation, the
// xcodebuild invocation, and finally deployment to the selected device
// or simulator.
package xcodebuild

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/xbuild-dev/xbuild/internal/cargo"
	"github.com/xbuild-dev/xbuild/internal/deploy"
	"github.com/xbuild-dev/xbuild/internal/manifest"
	"github.com/xbuild-dev/xbuild/internal/mobiledevice"
	"github.com/xbuild-dev/xbuild/internal/runner"
	"github.com/xbuild-dev/xbuild/internal/teams"
	"github.com/xbuild-dev/xbuild/internal/xcodegen"
)

// Pipeline drives one build/run invocation for a single package.
type Pipeline struct {
	manifestPath string
	targetDir    string
	srcDir       string
	root         *manifest.Root

	exec runner.Executor
	svc  mobiledevice.Service

	// populated by Build for a following Run
	projectDir   string
	appName      string
	bundlePrefix string
	target       *deploy.Target
}

// New loads the manifest and prepares a pipeline rooted at
// <targetDir>/xcodegen. svc may be nil on hosts without the device
// management framework; physical-device deployment is then unavailable.
func New(manifestPath, targetDir string, exec runner.Executor, svc mobiledevice.Service) (*Pipeline, error) {
	root, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	base := filepath.Join(targetDir, "xcodegen")
	log.Trace().Str("dir", base).Msg("pipeline target dir")
	return &Pipeline{
		manifestPath: manifestPath,
		targetDir:    base,
		srcDir:       filepath.Join(base, "src"),
		root:         root,
		exec:         exec,
		svc:          svc,
	}, nil
}

// Check runs `cargo check` for every configured build target without
// generating a project.
func (p *Pipeline) Check(args []string) error {
	if err := p.root.ValidateBuildTargets(); err != nil {
		return err
	}
	ios, err := p.root.IOS()
	if err != nil {
		return err
	}
	for _, target := range ios.BuildTargets {
		if err := cargo.Run(p.exec, "check", args, target.RustcTarget()); err != nil {
			return err
		}
	}
	return nil
}

// Build compiles the package for every target triple, generates the
// Xcode project, selects the deployment target and builds the app with
// xcodebuild. The selection made here is reused by Run.
func (p *Pipeline) Build(args []string, buildType deploy.BuildType) error {
	log.Info().Msg("building project")

	if err := xcodegen.CheckInstalled(p.exec); err != nil {
		return err
	}
	if err := p.root.ValidateCrateType(); err != nil {
		return err
	}
	if err := p.root.ValidateBuildTargets(); err != nil {
		return err
	}
	ios, err := p.root.IOS()
	if err != nil {
		return err
	}

	for _, target := range ios.BuildTargets {
		log.Info().Str("target", target.RustcTarget()).Msg("building package for target")
		if err := cargo.Run(p.exec, "build", args, target.RustcTarget()); err != nil {
			return err
		}
	}

	team := firstTeam(p.exec)
	project, err := xcodegen.FromManifest(p.manifestPath, p.root, team)
	if err != nil {
		return err
	}

	appName := p.root.AppName()
	projectDir := filepath.Join(p.targetDir, appName)
	if err := xcodegen.Generate(p.exec, project, p.srcDir, projectDir); err != nil {
		return err
	}
	p.projectDir = projectDir

	target, err := deploy.SelectTarget(deploy.Override{
		DeviceID:   ios.DeviceID,
		DeviceType: ios.DeviceType,
	}, p.svc, p.exec)
	if err != nil {
		return err
	}
	log.Info().Str("target", target.String()).Msg("selected deployment target")

	if err := p.buildProject(target, buildType, appName); err != nil {
		return err
	}

	p.appName = appName
	p.bundlePrefix = project.Options.BundleIDPrefix
	p.target = &target
	return nil
}

// Run deploys the app built by a preceding Build to the selected
// target and, on simulators, launches it.
func (p *Pipeline) Run(buildType deploy.BuildType) error {
	if p.target == nil {
		return errors.New("run requires a completed build")
	}

	runID := uuid.NewString()
	target := *p.target
	appRelPath := deploy.AppRelPath(target, buildType, p.appName)
	bundleID := deploy.BundleID(p.bundlePrefix, p.appName)

	logger := log.With().Str("run_id", runID).Str("bundle", bundleID).Logger()
	logger.Debug().Str("app", appRelPath).Msg("deploying")

	if target.IsSimulator() {
		if err := deploy.InstallToSimulator(p.exec, p.projectDir, target.SimulatorUDID, appRelPath); err != nil {
			return err
		}
		return deploy.LaunchOnSimulator(p.exec, target.SimulatorUDID, bundleID)
	}

	logger.Info().Str("device", target.Device.Identifier).Msg("installing app on connected device")
	if err := deploy.InstallToDevice(p.svc, *target.Device, filepath.Join(p.projectDir, appRelPath)); err != nil {
		return err
	}
	fmt.Printf("%s is installed to device %s. Please run it.\n", bundleID, target.Device.Identifier)
	return nil
}

// GenerateProject generates the Xcode project without building.
func (p *Pipeline) GenerateProject() error {
	log.Info().Msg("generating xcode project")

	if err := p.root.ValidateCrateType(); err != nil {
		return err
	}

	team := firstTeam(p.exec)
	project, err := xcodegen.FromManifest(p.manifestPath, p.root, team)
	if err != nil {
		return err
	}
	projectDir := filepath.Join(p.targetDir, p.root.AppName())
	return xcodegen.Generate(p.exec, project, p.srcDir, projectDir)
}

// OpenProject opens the generated .xcodeproj in Xcode.
func (p *Pipeline) OpenProject() error {
	projectPath := p.xcodeprojPath()
	if fi, err := os.Stat(projectPath); err != nil || !fi.IsDir() {
		log.Debug().Str("path", projectPath).Msg("xcodeproj does not exist")
		return errors.New("can't find xcodeproj, build it first")
	}
	return p.openPath(projectPath)
}

func (p *Pipeline) xcodeprojPath() string {
	name := p.root.AppName()
	return filepath.Join(p.targetDir, name, name+".xcodeproj")
}

func (p *Pipeline) openPath(path string) error {
	log.Trace().Str("path", path).Msg("opening xcode project")
	if _, err := p.exec.Run(runner.Command{Name: "open", Args: []string{path}}); err != nil {
		return fmt.Errorf("failed to open xcodeproject %s: %w", path, err)
	}
	return nil
}

// buildProject invokes xcodebuild for the selected target. Physical
// devices build against the iphoneos SDK with an explicit arch
// (arm64e devices build arm64 binaries); simulators build against a
// destination id.
func (p *Pipeline) buildProject(target deploy.Target, buildType deploy.BuildType, scheme string) error {
	configuration := buildType.Configuration()

	args := []string{
		"-derivedDataPath", "build",
		"-scheme", scheme,
		"-configuration", configuration,
		"-allowProvisioningUpdates",
	}

	if target.IsSimulator() {
		destination := fmt.Sprintf("platform=iOS Simulator,id=%s", target.SimulatorUDID)
		args = append(args, "-destination", destination)
	} else {
		arch := target.Device.CPUArchitecture
		if arch == "arm64e" {
			arch = "arm64"
		}
		args = append(args, "-sdk", "iphoneos", "-arch", arch)
	}

	log.Info().
		Str("configuration", configuration).
		Str("scheme", scheme).
		Str("args", strings.Join(args, " ")).
		Msg("building with xcodebuild")

	if _, err := p.exec.Run(runner.Command{Name: "xcodebuild", Args: args, Dir: p.projectDir}); err != nil {
		return fmt.Errorf("failed to build project with xcodebuild: %w", err)
	}
	return nil
}

// firstTeam picks the first discovered signing team, if any.
func firstTeam(exec runner.Executor) *teams.Team {
	found := teams.Find(exec)
	if len(found) == 0 {
		log.Info().Msg("no signing team found")
		return nil
	}
	log.Info().Str("team", found[0].OrganizationUnit).Msg("selected signing team")
	return &found[0]
}
