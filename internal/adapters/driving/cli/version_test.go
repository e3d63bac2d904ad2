package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
	assert.Equal(t, "Print the version number", versionCmd.Short)
}

func TestVersionCmd_PrintsVersion(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	oldWire := wireServices
	wireServices = false
	defer func() {
		version = originalVersion
		wireServices = oldWire
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "lingua version test-version-1.0.0")
}
