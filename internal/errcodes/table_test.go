// ABOUTME: Tests for the error-code table
// ABOUTME: Covers the embedded defaults, custom tables, and key validation

package errcodes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Loads(t *testing.T) {
	table := Default()
	require.NotNil(t, table)
	assert.Greater(t, table.Len(), 0)

	text, ok := table.Lookup("ERR10003")
	assert.True(t, ok)
	assert.Equal(t, "Merchant user password is incorrect", text)
}

func TestDefault_IsShared(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestDefault_AllKeysWellFormed(t *testing.T) {
	for _, code := range Default().Codes() {
		assert.Regexp(t, `^ERR\d{5}$`, code)
	}
}

func TestLookup_Unknown(t *testing.T) {
	table, err := New(map[string]string{"ERR00001": "Invalid merchant"})
	require.NoError(t, err)

	_, ok := table.Lookup("ERR99999")
	assert.False(t, ok)

	_, ok = table.Lookup("")
	assert.False(t, ok)
}

func TestNew_CopiesEntries(t *testing.T) {
	entries := map[string]string{"ERR00001": "Invalid merchant"}
	table, err := New(entries)
	require.NoError(t, err)

	entries["ERR00001"] = "changed"
	entries["ERR00002"] = "added"

	text, ok := table.Lookup("ERR00001")
	require.True(t, ok)
	assert.Equal(t, "Invalid merchant", text)
	assert.Equal(t, 1, table.Len())
}

func TestNew_RejectsMalformedCodes(t *testing.T) {
	tests := []string{"ERR1234", "ERR123456", "err12345", "E12345", "ERR1234a"}
	for _, code := range tests {
		t.Run(code, func(t *testing.T) {
			_, err := New(map[string]string{code: "x"})
			assert.Error(t, err)
		})
	}
}

func TestParse(t *testing.T) {
	table, err := Parse([]byte("ERR00001: \"Invalid merchant\"\nERR00002: Unknown user\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ERR00001", "ERR00002"}, table.Codes())

	_, err = Parse([]byte("ERR00001: [unterminated"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ERR55555: \"Official explanation\"\n"), 0o600))

	table, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
	text, ok := table.Lookup("ERR55555")
	require.True(t, ok)
	assert.Equal(t, "Official explanation", text)

	_, ok = table.Lookup("ERR10003")
	assert.False(t, ok, "a loaded table replaces the built-in one")

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("E1: short\n"), 0o600))
	_, err = LoadFile(bad)
	assert.Error(t, err)
}
