//go:build darwin

package mobiledevice

/*
#cgo LDFLAGS: -F/Library/Apple/System/Library/PrivateFrameworks -F/System/Library/PrivateFrameworks -framework MobileDevice -framework CoreFoundation
#include <stdlib.h>
#include <CoreFoundation/CoreFoundation.h>

typedef const void *AMDeviceRef;

extern CFArrayRef AMDCreateDeviceList(void);
extern CFStringRef AMDeviceCopyDeviceIdentifier(AMDeviceRef device);
extern const void *AMDeviceCopyValue(AMDeviceRef device, CFStringRef domain, CFStringRef key);
extern int AMDeviceGetInterfaceType(AMDeviceRef device);
extern int AMDeviceConnect(AMDeviceRef device);
extern int AMDeviceDisconnect(AMDeviceRef device);
extern int AMDeviceIsPaired(AMDeviceRef device);
extern int AMDeviceValidatePairing(AMDeviceRef device);
extern int AMDeviceStartSession(AMDeviceRef device);
extern int AMDeviceStopSession(AMDeviceRef device);
extern int AMDeviceSecureTransferPath(int zero, AMDeviceRef device, CFURLRef url, CFDictionaryRef options, const void *callback, const void *cbarg);
extern int AMDeviceSecureInstallApplication(int zero, AMDeviceRef device, CFURLRef url, CFDictionaryRef options, const void *callback, const void *cbarg);
*/
import "C"

import (
	"unsafe"
)

// amService is the MobileDevice.framework-backed Service.
type amService struct{}

// NewService returns the Service bound to the platform's device
// management framework.
func NewService() (Service, error) {
	return amService{}, nil
}

func deviceRef(h Handle) C.AMDeviceRef {
	return C.AMDeviceRef(h.(unsafe.Pointer))
}

func (amService) DeviceHandles() ([]Handle, error) {
	list := C.AMDCreateDeviceList()
	if list == 0 {
		return nil, nil
	}
	defer C.CFRelease(C.CFTypeRef(list))

	count := int(C.CFArrayGetCount(list))
	handles := make([]Handle, 0, count)
	for i := 0; i < count; i++ {
		ptr := C.CFArrayGetValueAtIndex(list, C.CFIndex(i))
		handles = append(handles, Handle(unsafe.Pointer(ptr)))
	}
	return handles, nil
}

func (amService) Connect(h Handle) int    { return int(C.AMDeviceConnect(deviceRef(h))) }
func (amService) Disconnect(h Handle) int { return int(C.AMDeviceDisconnect(deviceRef(h))) }

func (amService) Identifier(h Handle) (string, bool) {
	ref := C.AMDeviceCopyDeviceIdentifier(deviceRef(h))
	if ref == 0 {
		return "", false
	}
	defer C.CFRelease(C.CFTypeRef(ref))
	return goString(ref), true
}

func (amService) Value(h Handle, domain, key string) (string, bool) {
	var cfDomain C.CFStringRef
	if domain != "" {
		cfDomain = cfString(domain)
		defer C.CFRelease(C.CFTypeRef(cfDomain))
	}
	cfKey := cfString(key)
	defer C.CFRelease(C.CFTypeRef(cfKey))

	raw := C.AMDeviceCopyValue(deviceRef(h), cfDomain, cfKey)
	if raw == nil {
		return "", false
	}
	ref := C.CFTypeRef(uintptr(raw))
	defer C.CFRelease(ref)

	// Identity attributes are all string-typed; anything else is
	// treated as unresolved.
	if C.CFGetTypeID(ref) != C.CFStringGetTypeID() {
		return "", false
	}
	return goString(C.CFStringRef(ref)), true
}

func (amService) InterfaceType(h Handle) int {
	return int(C.AMDeviceGetInterfaceType(deviceRef(h)))
}

func (amService) IsPaired(h Handle) bool {
	return C.AMDeviceIsPaired(deviceRef(h)) != 0
}

func (amService) ValidatePairing(h Handle) int { return int(C.AMDeviceValidatePairing(deviceRef(h))) }
func (amService) StartSession(h Handle) int    { return int(C.AMDeviceStartSession(deviceRef(h))) }
func (amService) StopSession(h Handle) int     { return int(C.AMDeviceStopSession(deviceRef(h))) }

func (amService) SecureTransferPath(h Handle, bundlePath string, options map[string]string) int {
	url, opts := installArgs(bundlePath, options)
	defer C.CFRelease(C.CFTypeRef(url))
	defer C.CFRelease(C.CFTypeRef(opts))
	return int(C.AMDeviceSecureTransferPath(0, deviceRef(h), url, opts, nil, nil))
}

func (amService) SecureInstallApplication(h Handle, bundlePath string, options map[string]string) int {
	url, opts := installArgs(bundlePath, options)
	defer C.CFRelease(C.CFTypeRef(url))
	defer C.CFRelease(C.CFTypeRef(opts))
	return int(C.AMDeviceSecureInstallApplication(0, deviceRef(h), url, opts, nil, nil))
}

func installArgs(bundlePath string, options map[string]string) (C.CFURLRef, C.CFDictionaryRef) {
	cfPath := cfString(bundlePath)
	defer C.CFRelease(C.CFTypeRef(cfPath))
	url := C.CFURLCreateWithFileSystemPath(C.kCFAllocatorDefault, cfPath, C.kCFURLPOSIXPathStyle, C.Boolean(1))

	keys := make([]unsafe.Pointer, 0, len(options))
	values := make([]unsafe.Pointer, 0, len(options))
	for k, v := range options {
		ck := cfString(k)
		cv := cfString(v)
		defer C.CFRelease(C.CFTypeRef(ck))
		defer C.CFRelease(C.CFTypeRef(cv))
		keys = append(keys, unsafe.Pointer(ck))
		values = append(values, unsafe.Pointer(cv))
	}
	var keysPtr, valuesPtr *unsafe.Pointer
	if len(options) > 0 {
		keysPtr = &keys[0]
		valuesPtr = &values[0]
	}
	dict := C.CFDictionaryCreate(C.kCFAllocatorDefault,
		keysPtr, valuesPtr, C.CFIndex(len(options)),
		&C.kCFTypeDictionaryKeyCallBacks, &C.kCFTypeDictionaryValueCallBacks)

	return url, dict
}

func cfString(s string) C.CFStringRef {
	cs := C.CString(s)
	defer C.free(unsafe.Pointer(cs))
	return C.CFStringCreateWithCString(C.kCFAllocatorDefault, cs, C.kCFStringEncodingUTF8)
}

func goString(ref C.CFStringRef) string {
	if ptr := C.CFStringGetCStringPtr(ref, C.kCFStringEncodingUTF8); ptr != nil {
		return C.GoString(ptr)
	}
	length := C.CFStringGetLength(ref)
	max := C.CFStringGetMaximumSizeForEncoding(length, C.kCFStringEncodingUTF8) + 1
	buf := make([]byte, int(max))
	if C.CFStringGetCString(ref, (*C.char)(unsafe.Pointer(&buf[0])), max, C.kCFStringEncodingUTF8) == 0 {
		return ""
	}
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}
