package deploy

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/xbuild-dev/xbuild/internal/mobiledevice"
	"github.com/xbuild-dev/xbuild/internal/runner"
	"github.com/xbuild-dev/xbuild/internal/simulator"
)

// ErrBundleNotFound is returned when the built .app bundle is missing
// or is not a directory.
var ErrBundleNotFound = errors.New("app bundle not found")

// InstallToDevice performs the two-phase secure install of the bundle
// at appPath onto a connected physical device.
//
// Each phase opens its own session: the transfer and the install run in
// independent session scopes, and a session that was opened is always
// stopped and disconnected whether its phase succeeded or not. A failed
// transfer aborts before the install phase.
func InstallToDevice(svc mobiledevice.Service, dev mobiledevice.Device, appPath string) error {
	info, err := os.Stat(appPath)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory or does not exist", ErrBundleNotFound, appPath)
	}

	// Enumeration snapshots are racy; re-resolve a live handle now.
	handle, ok := mobiledevice.LookupHandle(svc, dev.Identifier)
	if !ok {
		return fmt.Errorf("%w: device %s is no longer connected", ErrDeviceNotFound, dev.Identifier)
	}

	options := mobiledevice.TransferOptions()

	log.Info().Str("device", dev.Identifier).Str("app", appPath).Msg("transferring app bundle")
	if err := withSession(svc, handle, func(s *mobiledevice.Session) error {
		return mobiledevice.CheckReturn(svc.SecureTransferPath(s.Handle(), appPath, options))
	}); err != nil {
		return fmt.Errorf("secure transfer failed: %w", err)
	}

	log.Info().Str("device", dev.Identifier).Msg("installing app bundle")
	if err := withSession(svc, handle, func(s *mobiledevice.Session) error {
		return mobiledevice.CheckReturn(svc.SecureInstallApplication(s.Handle(), appPath, options))
	}); err != nil {
		return fmt.Errorf("secure install failed: %w", err)
	}

	return nil
}

// withSession opens a fresh single-use session, runs fn, and releases
// the session on every exit path.
func withSession(svc mobiledevice.Service, h mobiledevice.Handle, fn func(*mobiledevice.Session) error) error {
	sess, err := mobiledevice.OpenSession(svc, h)
	if err != nil {
		return err
	}
	defer sess.Close()
	return fn(sess)
}

// InstallToSimulator installs the bundle at appRelPath (relative to the
// generated project directory) onto the simulator with the given udid.
func InstallToSimulator(exec runner.Executor, projectDir, udid, appRelPath string) error {
	return simulator.Install(exec, projectDir, udid, appRelPath)
}

// LaunchOnSimulator launches the installed app. Launch failures do not
// roll back the install.
func LaunchOnSimulator(exec runner.Executor, udid, bundleID string) error {
	return simulator.Launch(exec, udid, bundleID)
}
