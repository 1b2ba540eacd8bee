// Package xcodegen describes the generated Xcode project and drives
// the xcodegen tool that materializes it.
package xcodegen

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/xbuild-dev/xbuild/internal/manifest"
	"github.com/xbuild-dev/xbuild/internal/teams"
)

const inherited = "$(INHERITED)"

// Project is the project.yml document fed to xcodegen.
type Project struct {
	Name     string            `yaml:"name"`
	Configs  map[string]string `yaml:"configs"`
	Settings map[string]any    `yaml:"settings"`
	Options  Options           `yaml:"options"`
	Targets  map[string]Target `yaml:"targets"`
}

type Options struct {
	BundleIDPrefix string `yaml:"bundleIdPrefix"`
}

type Target struct {
	Type             string         `yaml:"type"`
	Platform         string         `yaml:"platform"`
	DeploymentTarget string         `yaml:"deploymentTarget"`
	Sources          []any          `yaml:"sources"`
	Settings         map[string]any `yaml:"settings"`
	Dependencies     []Dependency   `yaml:"dependencies"`
	Info             Plist          `yaml:"info"`
	Scheme           TargetScheme   `yaml:"scheme"`
}

type Dependency struct {
	SDK   string `yaml:"sdk,omitempty"`
	Embed *bool  `yaml:"embed,omitempty"`
}

type Plist struct {
	Path       string         `yaml:"path"`
	Properties map[string]any `yaml:"properties"`
}

type TargetScheme struct {
	EnvironmentVariables []EnvironmentVariable `yaml:"environmentVariables"`
}

type EnvironmentVariable struct {
	Variable  string `yaml:"variable"`
	Value     string `yaml:"value"`
	IsEnabled bool   `yaml:"isEnabled"`
}

// assetSource is a sources entry that copies an asset folder into the
// bundle's resources.
type assetSource struct {
	Path       string         `yaml:"path"`
	BuildPhase map[string]any `yaml:"buildPhase"`
}

// FromManifest builds the project description for the manifest's app
// target. team supplies signing defaults when the manifest does not pin
// an identity; with neither, code signing is disabled entirely.
func FromManifest(manifestPath string, root *manifest.Root, team *teams.Team) (*Project, error) {
	ios, err := root.IOS()
	if err != nil {
		return nil, err
	}
	name := root.AppName()

	deploymentTarget := ios.DeploymentTarget
	if deploymentTarget == "" {
		deploymentTarget = "12"
	}

	sources := []any{"../src/"}
	projectFolder := filepath.Dir(manifestPath)
	for _, asset := range ios.Assets {
		sources = append(sources, assetSource{
			Path: filepath.Join(projectFolder, asset),
			BuildPhase: map[string]any{
				"copyFiles": map[string]any{
					"destination": "resources",
					"subpath":     asset,
				},
			},
		})
	}

	var dependencies []Dependency
	for _, sdk := range ios.Dependencies {
		dependencies = append(dependencies, Dependency{SDK: sdk})
	}

	properties := map[string]any{"UILaunchStoryboardName": "LaunchScreen"}
	if len(ios.Orientations) > 0 {
		properties["UISupportedInterfaceOrientations"] = ios.Orientations
	}

	bundlePrefix := ios.BundleIDPrefix
	if bundlePrefix == "" {
		bundlePrefix = "com.rust"
	}

	project := &Project{
		Name: name,
		Configs: map[string]string{
			"Debug":   "debug",
			"Release": "release",
		},
		Settings: signingSettings(ios, team),
		Options:  Options{BundleIDPrefix: bundlePrefix},
		Targets: map[string]Target{
			name: {
				Type:             "application",
				Platform:         "iOS",
				DeploymentTarget: deploymentTarget,
				Sources:          sources,
				Settings: map[string]any{
					"base":    baseSettings(name, "../src/"),
					"configs": libraryConfigs(),
				},
				Dependencies: dependencies,
				Info:         Plist{Path: "../src/Info.plist", Properties: properties},
				Scheme: TargetScheme{
					EnvironmentVariables: []EnvironmentVariable{
						{Variable: "RUST_BACKTRACE", Value: "full", IsEnabled: true},
						{Variable: "RUST_LOG", Value: "info", IsEnabled: true},
					},
				},
			},
		},
	}
	return project, nil
}

// signingSettings derives the project-level code-signing settings. An
// explicit manifest identity/team wins; otherwise the discovered team
// enables automatic signing; with nothing, signing is switched off so
// simulator-only workflows keep working.
func signingSettings(ios *manifest.IOSMetadata, team *teams.Team) map[string]any {
	identity := ios.CodeSignIdentity
	teamID := ios.DevelopmentTeam

	if identity == "" && team != nil {
		identity = "iPhone Developer"
	}
	if teamID == "" && team != nil {
		teamID = team.OrganizationUnit
	}

	if identity == "" && teamID == "" {
		log.Debug().Msg("code signing disabled")
		return map[string]any{
			"CODE_SIGN_IDENTITY":     "",
			"CODE_SIGNING_REQUIRED":  "NO",
			"CODE_SIGN_ENTITLEMENTS": "",
			"CODE_SIGNING_ALLOWED":   "NO",
		}
	}

	log.Debug().Str("identity", identity).Str("team", teamID).Msg("code signing enabled")
	return map[string]any{
		"CODE_SIGN_STYLE":    "Automatic",
		"CODE_SIGN_IDENTITY": identity,
		"DEVELOPMENT_TEAM":   teamID,
	}
}

func baseSettings(libName, headerPath string) map[string]any {
	return map[string]any{
		"ENABLE_BITCODE":              "NO",
		"CLANG_CXX_LANGUAGE_STANDARD": "c++11",
		"CLANG_CXX_LIBRARY":           "libc++",
		"OTHER_LDFLAGS":               []string{inherited, "-lc++abi", "-l" + libName},
		"HEADER_SEARCH_PATHS":         []string{inherited, headerPath},
	}
}

// libraryConfigs points each SDK/arch combination at the build tool's
// per-triple output directory.
func libraryConfigs() map[string]any {
	paths := func(profile string) map[string]any {
		m := map[string]any{}
		m["LIBRARY_SEARCH_PATHS[sdk=iphoneos*]"] = []string{inherited, "../../aarch64-apple-ios/" + profile}
		m["LIBRARY_SEARCH_PATHS[sdk=iphonesimulator*][arch=arm64]"] = []string{inherited, "../../aarch64-apple-ios-sim/" + profile}
		m["LIBRARY_SEARCH_PATHS[sdk=iphonesimulator*][arch=x86_64]"] = []string{inherited, "../../x86_64-apple-ios/" + profile}
		return m
	}
	return map[string]any{
		"debug":   paths("debug"),
		"release": paths("release"),
	}
}

// Marshal renders the project as project.yml content.
func (p *Project) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to render project.yml: %w", err)
	}
	return data, nil
}
