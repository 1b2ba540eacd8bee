// Package manifest reads the Cargo.toml of the package being built and
// exposes the `package.metadata.ios` section that configures bundling,
// signing and deployment.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Root is the subset of Cargo.toml this tool cares about.
type Root struct {
	Package Package `toml:"package"`
	Lib     *Lib    `toml:"lib"`
}

type Package struct {
	Name     string    `toml:"name"`
	Version  string    `toml:"version"`
	Metadata *Metadata `toml:"metadata"`
}

type Lib struct {
	Name      string   `toml:"name"`
	CrateType []string `toml:"crate-type"`
}

type Metadata struct {
	IOS *IOSMetadata `toml:"ios"`
}

// IOSMetadata is the `[package.metadata.ios]` table.
type IOSMetadata struct {
	BuildTargets     []TargetTriple `toml:"build_targets"`
	DeploymentTarget string         `toml:"deployment_target"`
	Dependencies     []string       `toml:"dependencies"`
	Orientations     []Orientation  `toml:"supported_interface_orientations"`
	BundleIDPrefix   string         `toml:"bundle_id_prefix"`
	CodeSignIdentity string         `toml:"code_sign_identity"`
	DevelopmentTeam  string         `toml:"development_team"`
	DeviceID         string         `toml:"device_id"`
	DeviceType       DeviceType     `toml:"device_type"`
	Assets           []string       `toml:"assets"`
}

// DeviceType says which class of deployment target the manifest pins.
type DeviceType string

const (
	DeviceTypeUnset     DeviceType = ""
	DeviceTypeDevice    DeviceType = "device"
	DeviceTypeSimulator DeviceType = "simulator"
)

func (d *DeviceType) UnmarshalText(text []byte) error {
	switch DeviceType(strings.ToLower(string(text))) {
	case DeviceTypeDevice:
		*d = DeviceTypeDevice
	case DeviceTypeSimulator:
		*d = DeviceTypeSimulator
	default:
		return fmt.Errorf("unknown device_type %q (want \"device\" or \"simulator\")", text)
	}
	return nil
}

// TargetTriple is a supported iOS compilation target.
type TargetTriple string

const (
	TargetArm    TargetTriple = "aarch64-apple-ios"
	TargetArmSim TargetTriple = "aarch64-apple-ios-sim"
	TargetX86Sim TargetTriple = "x86_64-apple-ios"
)

func (t *TargetTriple) UnmarshalText(text []byte) error {
	switch TargetTriple(text) {
	case TargetArm, TargetArmSim, TargetX86Sim:
		*t = TargetTriple(text)
		return nil
	default:
		return fmt.Errorf("unsupported build target %q", text)
	}
}

// RustcTarget returns the triple as passed to the build tool.
func (t TargetTriple) RustcTarget() string {
	return string(t)
}

// Orientation is a UIKit interface orientation name.
type Orientation string

const (
	OrientationUnknown            Orientation = "UIInterfaceOrientationUnknown"
	OrientationPortrait           Orientation = "UIInterfaceOrientationPortrait"
	OrientationPortraitUpsideDown Orientation = "UIInterfaceOrientationPortraitUpsideDown"
	OrientationLandscapeLeft      Orientation = "UIInterfaceOrientationLandscapeLeft"
	OrientationLandscapeRight     Orientation = "UIInterfaceOrientationLandscapeRight"
)

func (o *Orientation) UnmarshalText(text []byte) error {
	switch Orientation(text) {
	case OrientationUnknown, OrientationPortrait, OrientationPortraitUpsideDown,
		OrientationLandscapeLeft, OrientationLandscapeRight:
		*o = Orientation(text)
		return nil
	default:
		return fmt.Errorf("unknown interface orientation %q", text)
	}
}

// Load reads and decodes the manifest at path.
func Load(path string) (*Root, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a manifest from raw TOML.
func Parse(data []byte) (*Root, error) {
	var root Root
	if err := toml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &root, nil
}

// IOS returns the `[package.metadata.ios]` table, erroring when the
// manifest lacks it.
func (r *Root) IOS() (*IOSMetadata, error) {
	if r.Package.Metadata == nil {
		return nil, errors.New("missing `metadata` section, please check Cargo.toml")
	}
	if r.Package.Metadata.IOS == nil {
		return nil, errors.New("missing `ios` section, please check Cargo.toml")
	}
	return r.Package.Metadata.IOS, nil
}

// ValidateCrateType checks that the package builds a static library the
// generated project can link against.
func (r *Root) ValidateCrateType() error {
	if r.Lib != nil {
		for _, ct := range r.Lib.CrateType {
			if ct == "staticlib" {
				return nil
			}
		}
	}
	return errors.New("missing `staticlib` crate-type in `lib` section, please check Cargo.toml")
}

// ValidateBuildTargets checks that at least one build target is
// configured.
func (r *Root) ValidateBuildTargets() error {
	ios, err := r.IOS()
	if err != nil {
		return err
	}
	if len(ios.BuildTargets) == 0 {
		return errors.New("missing `build_targets` in `package.metadata.ios` section, please check Cargo.toml")
	}
	return nil
}

// AppName is the target name used for the generated project and the
// .app bundle: the lib name when set, else the package name, with
// hyphens normalized to underscores.
func (r *Root) AppName() string {
	name := r.Package.Name
	if r.Lib != nil && r.Lib.Name != "" {
		name = r.Lib.Name
	}
	return strings.ReplaceAll(name, "-", "_")
}
