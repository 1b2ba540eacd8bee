// Package mobiledevice talks to the platform's private device management
// service to discover, pair with and install onto physically connected
// iOS devices.
//
// The real binding lives in amdevice_darwin.go and links against
// MobileDevice.framework; on other platforms NewService returns an error,
// the same split used for platform frameworks elsewhere in this codebase.
package mobiledevice

// Handle is an opaque reference to a connected device as handed out by
// the management service. Handles are ephemeral: they are only valid
// within the operation that enumerated them and must never be persisted.
type Handle interface{}

// Service is the low-level surface of the device management daemon.
// Every call returns the service's raw signed status code where the
// native API does; 0 means success and anything else is decoded through
// CheckReturn.
type Service interface {
	// DeviceHandles enumerates the currently visible devices.
	DeviceHandles() ([]Handle, error)

	Connect(h Handle) int
	Disconnect(h Handle) int

	// Identifier returns the device's stable unique identifier.
	// ok is false when the service could not produce one.
	Identifier(h Handle) (id string, ok bool)

	// Value reads a named attribute from the device's property domain.
	// An empty domain selects the global domain.
	Value(h Handle, domain, key string) (value string, ok bool)

	// InterfaceType reports how the device is attached:
	// 0 unknown, 1 direct/USB, 2 indirect/network, 3 companion proxy.
	InterfaceType(h Handle) int

	IsPaired(h Handle) bool
	ValidatePairing(h Handle) int
	StartSession(h Handle) int
	StopSession(h Handle) int

	// SecureTransferPath streams the app bundle at bundlePath to the
	// device. Requires an active session.
	SecureTransferPath(h Handle, bundlePath string, options map[string]string) int

	// SecureInstallApplication installs a previously transferred bundle.
	// Requires an active session.
	SecureInstallApplication(h Handle, bundlePath string, options map[string]string) int
}

// TransferOptions is the fixed option set passed to both phases of the
// secure install protocol.
func TransferOptions() map[string]string {
	return map[string]string{"PackageType": "Developper"}
}
