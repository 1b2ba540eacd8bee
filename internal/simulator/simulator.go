// Package simulator drives `xcrun simctl` to list, boot and install
// onto iOS simulator instances.
package simulator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/xbuild-dev/xbuild/internal/runner"
)

// DeviceState is a simulator lifecycle state as reported by simctl.
type DeviceState string

const (
	StateShutdown DeviceState = "Shutdown"
	StateBooted   DeviceState = "Booted"
)

// UnmarshalJSON accepts only the two states this tool acts on; any
// other value is a decode failure for the device's whole runtime group.
func (s *DeviceState) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch DeviceState(raw) {
	case StateShutdown, StateBooted:
		*s = DeviceState(raw)
		return nil
	default:
		return fmt.Errorf("unknown simulator state %q", raw)
	}
}

// Device is one simulator instance from the simctl listing.
type Device struct {
	UDID  string      `json:"udid"`
	Name  string      `json:"name"`
	State DeviceState `json:"state"`
}

// runtimeGroup is one runtime key from the simctl payload, e.g.
// "com.apple.CoreSimulator.SimRuntime.iOS-15-2", with its raw device
// array. Groups keep the order the document listed them in.
type runtimeGroup struct {
	key string
	raw json.RawMessage
}

// List returns the iOS simulator devices known to simctl.
//
// Only runtime keys containing the literal substring ".iOS" are
// included. This is a substring match, not a platform-type match; it is
// kept exactly as-is because real-world runtime key naming beyond the
// observed format is unverified. Devices are concatenated per key in
// encounter order. A payload under a matching key that fails to decode
// fails the whole listing.
func List(exec runner.Executor) ([]Device, error) {
	out, err := exec.Run(runner.Command{
		Name: "xcrun",
		Args: []string{"simctl", "list", "devices", "iOS", "--json"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list simulators: %w", err)
	}

	return decodeListing([]byte(out.Stdout))
}

func decodeListing(payload []byte) ([]Device, error) {
	var envelope struct {
		Devices json.RawMessage `json:"devices"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode simctl listing: %w", err)
	}

	groups, err := decodeRuntimeGroups(envelope.Devices)
	if err != nil {
		return nil, err
	}

	iosGroups := lo.Filter(groups, func(g runtimeGroup, _ int) bool {
		return strings.Contains(g.key, ".iOS")
	})

	var all []Device
	for _, g := range iosGroups {
		var devices []Device
		if err := json.Unmarshal(g.raw, &devices); err != nil {
			return nil, fmt.Errorf("failed to decode devices under runtime %q: %w", g.key, err)
		}
		all = append(all, devices...)
	}
	return all, nil
}

// decodeRuntimeGroups walks the "devices" object token by token so
// runtime keys come back in document order, which a plain map decode
// would scramble.
func decodeRuntimeGroups(raw json.RawMessage) ([]runtimeGroup, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("simctl listing has no `devices` object")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to decode simctl listing: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("simctl listing `devices` is not an object")
	}

	var groups []runtimeGroup
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to decode simctl listing: %w", err)
		}
		key := keyTok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("failed to decode runtime %q: %w", key, err)
		}
		groups = append(groups, runtimeGroup{key: key, raw: value})
	}
	return groups, nil
}

// Install installs the app bundle at appPath onto the simulator with
// the given udid. appPath may be relative to dir.
func Install(exec runner.Executor, dir, udid, appPath string) error {
	log.Info().Str("udid", udid).Str("app", appPath).Msg("installing app on simulator")
	_, err := exec.Run(runner.Command{
		Name: "xcrun",
		Args: []string{"simctl", "install", udid, appPath},
		Dir:  dir,
	})
	if err != nil {
		return fmt.Errorf("failed to install app on simulator %s: %w", udid, err)
	}
	return nil
}

// Launch starts the app with the given bundle identifier on the
// simulator. A failed launch does not undo a preceding install.
func Launch(exec runner.Executor, udid, bundleID string) error {
	log.Info().Str("udid", udid).Str("bundle", bundleID).Msg("launching app on simulator")
	_, err := exec.Run(runner.Command{
		Name: "xcrun",
		Args: []string{"simctl", "launch", udid, bundleID},
	})
	if err != nil {
		return fmt.Errorf("failed to launch %s on simulator %s: %w", bundleID, udid, err)
	}
	return nil
}

// Boot boots the simulator with the given udid.
func Boot(exec runner.Executor, udid string) error {
	log.Info().Str("udid", udid).Msg("booting simulator")
	_, err := exec.Run(runner.Command{
		Name: "xcrun",
		Args: []string{"simctl", "boot", udid},
	})
	if err != nil {
		return fmt.Errorf("failed to boot simulator %s: %w", udid, err)
	}
	return nil
}

// OpenSimulatorApp brings the Simulator app window to the front.
func OpenSimulatorApp(exec runner.Executor) error {
	if _, err := exec.Run(runner.Command{Name: "open", Args: []string{"-a", "Simulator.app"}}); err != nil {
		return fmt.Errorf("failed to open Simulator.app: %w", err)
	}
	return nil
}
