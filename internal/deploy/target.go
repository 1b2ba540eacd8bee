// Package deploy picks the device a build is aimed at and puts the
// built app bundle onto it, over the device management service for
// physical devices and over simctl for simulators.
package deploy

import (
	"fmt"
	"strings"

	"github.com/xbuild-dev/xbuild/internal/mobiledevice"
)

// Target is the one device a deployment run is aimed at: either a
// connected physical device or a simulator known only by udid. Exactly
// one of the two is set.
type Target struct {
	Device        *mobiledevice.Device
	SimulatorUDID string
}

// IsSimulator reports whether the target is a simulator instance.
func (t Target) IsSimulator() bool {
	return t.Device == nil
}

func (t Target) String() string {
	if t.IsSimulator() {
		return "simulator " + t.SimulatorUDID
	}
	return fmt.Sprintf("device %s (%s)", t.Device.Identifier, t.Device.Name)
}

// BuildType selects the build configuration and the conventions used to
// locate the built bundle.
type BuildType int

const (
	Debug BuildType = iota
	Release
)

// Configuration returns the Xcode configuration name.
func (b BuildType) Configuration() string {
	if b == Release {
		return "Release"
	}
	return "Debug"
}

// AppRelPath is the path of the built .app bundle relative to the
// generated project directory, following the derived-data layout.
func AppRelPath(target Target, buildType BuildType, appName string) string {
	sdk := "iphoneos"
	if target.IsSimulator() {
		sdk = "iphonesimulator"
	}
	return fmt.Sprintf("build/Build/Products/%s-%s/%s.app", buildType.Configuration(), sdk, appName)
}

// BundleID builds the fully-qualified bundle identifier. Underscores in
// the app name are not valid in bundle identifiers and become hyphens.
func BundleID(prefix, appName string) string {
	return prefix + "." + strings.ReplaceAll(appName, "_", "-")
}
