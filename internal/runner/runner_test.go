package runner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCapturesStdout(t *testing.T) {
	out, err := System().Run(Command{Name: "sh", Args: []string{"-c", "echo hello; echo oops >&2"}})
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out.Stdout)
	assert.Equal(t, "oops\n", out.Stderr)
}

func TestRunNonZeroExit(t *testing.T) {
	out, err := System().Run(Command{Name: "sh", Args: []string{"-c", "echo partial; exit 3"}})
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, "partial\n", exitErr.Stdout)
	assert.Equal(t, "partial\n", out.Stdout)
	assert.Contains(t, exitErr.Error(), "sh -c")
}

func TestRunMissingBinary(t *testing.T) {
	_, err := System().Run(Command{Name: "definitely-not-a-binary-xbuild"})
	require.Error(t, err)

	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr), "start failure must not be an ExitError")
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "xcodegen", Command{Name: "xcodegen"}.String())
	assert.Equal(t, "xcrun simctl boot ABC", Command{Name: "xcrun", Args: []string{"simctl", "boot", "ABC"}}.String())
}
