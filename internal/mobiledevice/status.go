package mobiledevice

import "fmt"

// StatusError is a non-zero status code returned by the device
// management service, decoded to a human-readable reason where the code
// is known.
type StatusError struct {
	Code   uint32
	Reason string
}

func (e *StatusError) Error() string {
	return e.Reason
}

// Known service status codes.
const (
	statusOK               = 0x00000000
	statusNotFound         = 0xe8000008
	statusNotConnected     = 0xe800000b
	statusMuxConnect       = 0xe8000065
	statusNoProfile        = 0xe8008015
	statusAppLimitExceeded = 0xe8008021
)

var statusReasons = map[uint32]string{
	statusNotFound:         "the file could not be found (kAMDNotFoundError)",
	statusNoProfile:        "a valid provisioning profile for this executable was not found",
	statusMuxConnect:       "could not connect to the device (kAMDMuxConnectError)",
	statusNotConnected:     "not connected to the device (kAMDNotConnectedError)",
	statusAppLimitExceeded: "the maximum number of apps for free development profiles has been reached",
}

// CheckReturn maps a raw service status code to an error. Zero is
// success; any other code yields a *StatusError, falling back to a
// generic message that carries the raw code in hex for diagnostics.
func CheckReturn(code int) error {
	c := uint32(code)
	if c == statusOK {
		return nil
	}
	if reason, ok := statusReasons[c]; ok {
		return &StatusError{Code: c, Reason: reason}
	}
	return &StatusError{Code: c, Reason: fmt.Sprintf("unknown device service error code: 0x%x", c)}
}
