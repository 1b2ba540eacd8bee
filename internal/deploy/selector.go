package deploy

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/xbuild-dev/xbuild/internal/manifest"
	"github.com/xbuild-dev/xbuild/internal/mobiledevice"
	"github.com/xbuild-dev/xbuild/internal/runner"
	"github.com/xbuild-dev/xbuild/internal/simulator"
)

// ErrNoDevice is returned when neither a connected device nor a booted
// simulator could be resolved.
var ErrNoDevice = errors.New("no device found: connect a device or boot a simulator (see `xbuild boot`)")

// ErrDeviceNotFound is returned when the manifest pins a physical
// device id that is not among the connected devices.
var ErrDeviceNotFound = errors.New("device not found")

// Override pins the deployment target from the manifest. It only takes
// effect when both fields are set.
type Override struct {
	DeviceID   string
	DeviceType manifest.DeviceType
}

// SelectTarget resolves the device a deployment run is aimed at.
//
// With a full override, a simulator id is taken on faith with no
// existence or boot check, while a device id must match a connected
// physical device. The asymmetry is deliberate and kept as-is.
//
// Without an override, any connected physical device outranks every
// simulator; among simulators the first booted one wins.
func SelectTarget(override Override, svc mobiledevice.Service, exec runner.Executor) (Target, error) {
	if override.DeviceID != "" && override.DeviceType != manifest.DeviceTypeUnset {
		log.Info().Str("device_id", override.DeviceID).Msg("device is pinned in Cargo.toml")

		if override.DeviceType == manifest.DeviceTypeSimulator {
			return Target{SimulatorUDID: override.DeviceID}, nil
		}

		dev, found := lo.Find(listDevices(svc), func(d mobiledevice.Device) bool {
			return d.Identifier == override.DeviceID
		})
		if !found {
			return Target{}, fmt.Errorf("%w: no connected device with id %s", ErrDeviceNotFound, override.DeviceID)
		}
		return Target{Device: &dev}, nil
	}

	// Connected devices first, then simulators.
	if devices := listDevices(svc); len(devices) > 0 {
		return Target{Device: &devices[0]}, nil
	}

	log.Info().Msg("no connected device, searching for a booted simulator")
	sims, err := simulator.List(exec)
	if err != nil {
		log.Debug().Err(err).Msg("simulator listing failed")
		sims = nil
	}
	booted, found := lo.Find(sims, func(d simulator.Device) bool {
		return d.State == simulator.StateBooted
	})
	if !found {
		return Target{}, ErrNoDevice
	}
	return Target{SimulatorUDID: booted.UDID}, nil
}

// listDevices tolerates a nil service: on hosts without the device
// management framework there simply are no physical devices.
func listDevices(svc mobiledevice.Service) []mobiledevice.Device {
	if svc == nil {
		return nil
	}
	return mobiledevice.ListDevices(svc)
}
