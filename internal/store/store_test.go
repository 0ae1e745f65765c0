package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPair(t *testing.T) Pair {
	t.Helper()
	tmpDir := t.TempDir()
	return Pair{
		HashPath:    filepath.Join(tmpDir, ".docver", "hash"),
		VersionPath: filepath.Join(tmpDir, "version.dat"),
	}
}

func TestBootstrap_CreatesBothStores(t *testing.T) {
	p := testPair(t)

	created, err := p.Bootstrap()
	require.NoError(t, err)
	assert.True(t, created)

	hashData, err := os.ReadFile(p.HashPath)
	require.NoError(t, err)
	assert.Empty(t, hashData)

	versionData, err := os.ReadFile(p.VersionPath)
	require.NoError(t, err)
	assert.Equal(t, "Version: 0\n", string(versionData))
}

func TestBootstrap_PreservesExistingContent(t *testing.T) {
	p := testPair(t)

	require.NoError(t, os.MkdirAll(filepath.Dir(p.HashPath), 0755))
	require.NoError(t, os.WriteFile(p.HashPath, []byte("deadbeef\n"), 0644))
	require.NoError(t, os.WriteFile(p.VersionPath, []byte("Version: 7\n"), 0644))

	created, err := p.Bootstrap()
	require.NoError(t, err)
	assert.False(t, created)

	fp, err := p.ReadFingerprint()
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", fp)

	v, err := p.ReadVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)
}

func TestBootstrap_PartiallyMissing(t *testing.T) {
	p := testPair(t)

	require.NoError(t, os.WriteFile(p.VersionPath, []byte("Version: 3\n"), 0644))

	created, err := p.Bootstrap()
	require.NoError(t, err)
	assert.True(t, created)

	v, err := p.ReadVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
}

func TestReadFingerprint_FirstNonBlankLine(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "single line", content: "abc123\n", want: "abc123"},
		{name: "no trailing newline", content: "abc123", want: "abc123"},
		{name: "leading blank lines", content: "\n  \n\nabc123\n", want: "abc123"},
		{name: "surrounding whitespace", content: "  abc123  \n", want: "abc123"},
		{name: "empty file", content: "", want: ""},
		{name: "only blank lines", content: "\n   \n\t\n", want: ""},
		{name: "later lines ignored", content: "abc123\ndef456\n", want: "abc123"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := testPair(t)
			require.NoError(t, os.MkdirAll(filepath.Dir(p.HashPath), 0755))
			require.NoError(t, os.WriteFile(p.HashPath, []byte(tc.content), 0644))

			got, err := p.ReadFingerprint()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestReadFingerprint_MissingStore(t *testing.T) {
	p := testPair(t)

	_, err := p.ReadFingerprint()
	require.Error(t, err)
}

func TestReadVersion_Grammar(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int64
		wantErr bool
	}{
		{name: "canonical", content: "Version: 5\n", want: 5},
		{name: "zero", content: "Version: 0\n", want: 0},
		{name: "multiple spaces", content: "Version:   42\n", want: 42},
		{name: "tab separated", content: "Version:\t9\n", want: 9},
		{name: "trailing whitespace", content: "Version: 12  \n", want: 12},
		{name: "crlf line ending", content: "Version: 3\r\n", want: 3},
		{name: "first matching line wins", content: "% comment\nVersion: 8\nVersion: 9\n", want: 8},
		{name: "no space after colon", content: "Version:5\n", wantErr: true},
		{name: "lowercase keyword", content: "version: 5\n", wantErr: true},
		{name: "trailing garbage", content: "Version: 5x\n", wantErr: true},
		{name: "negative number", content: "Version: -1\n", wantErr: true},
		{name: "no version line", content: "nothing relevant here\n", wantErr: true},
		{name: "empty file", content: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := testPair(t)
			require.NoError(t, os.WriteFile(p.VersionPath, []byte(tc.content), 0644))

			got, err := p.ReadVersion()
			if tc.wantErr {
				require.ErrorIs(t, err, ErrNoVersionLine)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWriteVersion_RoundTrip(t *testing.T) {
	p := testPair(t)

	require.NoError(t, p.WriteVersion(41))

	data, err := os.ReadFile(p.VersionPath)
	require.NoError(t, err)
	assert.Equal(t, "Version: 41\n", string(data))

	v, err := p.ReadVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(41), v)
}

func TestWriteFingerprint_ReplacesContent(t *testing.T) {
	p := testPair(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(p.HashPath), 0755))
	require.NoError(t, os.WriteFile(p.HashPath, []byte("old-fingerprint\nextra line\n"), 0644))

	require.NoError(t, p.WriteFingerprint("new-fingerprint"))

	data, err := os.ReadFile(p.HashPath)
	require.NoError(t, err)
	assert.Equal(t, "new-fingerprint\n", string(data))
}
