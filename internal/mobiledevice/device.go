package mobiledevice

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// ConnectionKind says how a physical device is attached to the host.
type ConnectionKind int

const (
	ConnectionUSB ConnectionKind = iota + 1
	ConnectionNetwork
)

func (k ConnectionKind) String() string {
	switch k {
	case ConnectionUSB:
		return "usb"
	case ConnectionNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Device is an owned snapshot of one connected physical device. It is
// built from an ephemeral service handle during enumeration and never
// references the handle afterwards. A Device is only constructed when
// every identity attribute resolved; records are never partial.
type Device struct {
	Identifier      string
	Name            string
	Connection      ConnectionKind
	CPUArchitecture string
	DeviceClass     string
	ProductVersion  string
	HardwareModel   string
}

// identity attribute keys read from the device's global property domain.
const (
	keyDeviceName      = "DeviceName"
	keyCPUArchitecture = "CPUArchitecture"
	keyDeviceClass     = "DeviceClass"
	keyProductVersion  = "ProductVersion"
	keyHardwareModel   = "HardwareModel"
)

// ListDevices enumerates the physical devices currently visible to the
// management service. Each handle is connected, read and disconnected
// in turn; a device whose identity cannot be fully resolved is logged
// and skipped rather than failing the enumeration. ListDevices itself
// never fails: an unreachable service simply yields no devices.
func ListDevices(svc Service) []Device {
	handles, err := svc.DeviceHandles()
	if err != nil {
		log.Debug().Err(err).Msg("device enumeration unavailable")
		return nil
	}

	devices := make([]Device, 0, len(handles))
	for _, h := range handles {
		dev, err := readDevice(svc, h)
		if err != nil {
			log.Debug().Err(err).Msg("skipping device")
			continue
		}
		devices = append(devices, dev)
	}
	return devices
}

// LookupHandle re-resolves a live handle for the device with the given
// identifier. Enumeration snapshots are racy: a device selected earlier
// may have been unplugged since, in which case the lookup misses and ok
// is false.
func LookupHandle(svc Service, identifier string) (Handle, bool) {
	handles, err := svc.DeviceHandles()
	if err != nil {
		return nil, false
	}
	for _, h := range handles {
		if err := CheckReturn(svc.Connect(h)); err != nil {
			continue
		}
		id, ok := svc.Identifier(h)
		svc.Disconnect(h)
		if ok && id == identifier {
			return h, true
		}
	}
	return nil, false
}

// readDevice borrows the handle just long enough to copy out the
// identity attributes, then disconnects.
func readDevice(svc Service, h Handle) (Device, error) {
	if err := CheckReturn(svc.Connect(h)); err != nil {
		return Device{}, err
	}
	defer svc.Disconnect(h)

	id, ok := svc.Identifier(h)
	if !ok {
		return Device{}, &attributeError{attr: "identifier"}
	}

	var conn ConnectionKind
	switch ifType := svc.InterfaceType(h); ifType {
	case 1:
		conn = ConnectionUSB
	case 2:
		conn = ConnectionNetwork
	default:
		return Device{}, &interfaceTypeError{ifType: ifType}
	}

	dev := Device{Identifier: id, Connection: conn}
	for _, attr := range []struct {
		key  string
		dest *string
	}{
		{keyDeviceName, &dev.Name},
		{keyCPUArchitecture, &dev.CPUArchitecture},
		{keyDeviceClass, &dev.DeviceClass},
		{keyProductVersion, &dev.ProductVersion},
		{keyHardwareModel, &dev.HardwareModel},
	} {
		value, ok := svc.Value(h, "", attr.key)
		if !ok {
			return Device{}, &attributeError{attr: attr.key}
		}
		*attr.dest = value
	}

	return dev, nil
}

type attributeError struct {
	attr string
}

func (e *attributeError) Error() string {
	return fmt.Sprintf("device attribute `%s` did not resolve", e.attr)
}

type interfaceTypeError struct {
	ifType int
}

func (e *interfaceTypeError) Error() string {
	return fmt.Sprintf("unknown device interface type %d", e.ifType)
}
