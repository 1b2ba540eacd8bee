package mobiledevice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckReturnSuccess(t *testing.T) {
	assert.NoError(t, CheckReturn(0))
}

func TestCheckReturnKnownCodes(t *testing.T) {
	tests := []struct {
		name string
		code uint32
		want string
	}{
		{"not found", 0xe8000008, "could not be found"},
		{"no provisioning profile", 0xe8008015, "provisioning profile"},
		{"mux connect", 0xe8000065, "could not connect"},
		{"not connected", 0xe800000b, "not connected"},
		{"app limit", 0xe8008021, "maximum number of apps"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckReturn(int(int32(tt.code)))
			require.Error(t, err)

			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.code, statusErr.Code)
			assert.Contains(t, statusErr.Error(), tt.want)
		})
	}
}

func TestCheckReturnUnknownCodeKeepsRawValue(t *testing.T) {
	err := CheckReturn(0x12345678)
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, uint32(0x12345678), statusErr.Code)
	assert.Contains(t, statusErr.Error(), "0x12345678")
}
