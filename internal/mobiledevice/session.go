package mobiledevice

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// ErrNotPaired reports a device that is reachable but has not trusted
// this host. Distinct from protocol errors so callers can tell the user
// to accept the trust prompt rather than chase a cable problem.
var ErrNotPaired = errors.New("device is not paired with this host; tap \"Trust\" on the device and retry")

// Session is an authenticated, single-use channel to one physical
// device. It covers exactly one logical operation (one transfer or one
// install); callers open a fresh Session per phase rather than reusing
// one.
//
// Every Session that reached the connected state must be released with
// Close, on success and failure paths alike.
type Session struct {
	svc    Service
	handle Handle
	closed bool
}

// OpenSession connects to the device, verifies it is paired with this
// host, validates the pairing record and starts a session.
//
// If any step past the initial connect fails the connection is torn
// down before returning, so a failed OpenSession never leaks service
// state.
func OpenSession(svc Service, h Handle) (*Session, error) {
	if err := CheckReturn(svc.Connect(h)); err != nil {
		return nil, fmt.Errorf("failed to connect to device: %w", err)
	}

	s := &Session{svc: svc, handle: h}

	if !svc.IsPaired(h) {
		s.Close()
		return nil, ErrNotPaired
	}
	if err := CheckReturn(svc.ValidatePairing(h)); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to validate pairing: %w", err)
	}
	if err := CheckReturn(svc.StartSession(h)); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	return s, nil
}

// Handle returns the device handle this session is bound to.
func (s *Session) Handle() Handle {
	return s.handle
}

// Close stops the session and disconnects, in that order. Both calls
// are best effort: teardown failures are logged and swallowed so they
// can never mask the primary error of the enclosing operation. Close is
// idempotent.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true

	if code := s.svc.StopSession(s.handle); uint32(code) != statusOK {
		log.Debug().Int("code", code).Msg("stop-session failed during teardown")
	}
	if code := s.svc.Disconnect(s.handle); uint32(code) != statusOK {
		log.Debug().Int("code", code).Msg("disconnect failed during teardown")
	}
}
