//go:build !darwin

package mobiledevice

import "errors"

// NewService is only functional on macOS, where the device management
// framework lives. Elsewhere callers fall back to simulator-less flows.
func NewService() (Service, error) {
	return nil, errors.New("the device management framework is only available on macOS")
}
