package mobiledevice

// fakeService scripts the management service for tests and counts every
// call so session open/close discipline can be asserted.
type fakeService struct {
	devices []fakeDevice

	connectErr         int
	validatePairingErr int
	startSessionErr    int
	transferErr        int
	installErr         int
	unpaired           bool

	connects    int
	disconnects int
	starts      int
	stops       int
	transfers   int
	installs    int
}

type fakeDevice struct {
	identifier string
	noID       bool
	ifType     int
	values     map[string]string
}

func okFakeDevice(id string) fakeDevice {
	return fakeDevice{
		identifier: id,
		ifType:     1,
		values: map[string]string{
			keyDeviceName:      "Test iPhone",
			keyCPUArchitecture: "arm64",
			keyDeviceClass:     "iPhone",
			keyProductVersion:  "15.2",
			keyHardwareModel:   "D79AP",
		},
	}
}

func (f *fakeService) DeviceHandles() ([]Handle, error) {
	handles := make([]Handle, len(f.devices))
	for i := range f.devices {
		handles[i] = i
	}
	return handles, nil
}

func (f *fakeService) dev(h Handle) *fakeDevice {
	return &f.devices[h.(int)]
}

func (f *fakeService) Connect(h Handle) int {
	f.connects++
	return f.connectErr
}

func (f *fakeService) Disconnect(h Handle) int {
	f.disconnects++
	return 0
}

func (f *fakeService) Identifier(h Handle) (string, bool) {
	d := f.dev(h)
	if d.noID {
		return "", false
	}
	return d.identifier, true
}

func (f *fakeService) Value(h Handle, domain, key string) (string, bool) {
	v, ok := f.dev(h).values[key]
	return v, ok
}

func (f *fakeService) InterfaceType(h Handle) int {
	return f.dev(h).ifType
}

func (f *fakeService) IsPaired(h Handle) bool {
	return !f.unpaired
}

func (f *fakeService) ValidatePairing(h Handle) int {
	return f.validatePairingErr
}

func (f *fakeService) StartSession(h Handle) int {
	f.starts++
	return f.startSessionErr
}

func (f *fakeService) StopSession(h Handle) int {
	f.stops++
	return 0
}

func (f *fakeService) SecureTransferPath(h Handle, bundlePath string, options map[string]string) int {
	f.transfers++
	return f.transferErr
}

func (f *fakeService) SecureInstallApplication(h Handle, bundlePath string, options map[string]string) int {
	f.installs++
	return f.installErr
}
