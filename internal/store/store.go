// Package store persists the two files the reconciler works against: the
// hash store holding the last committed fingerprint and the version store
// holding the current counter in its "Version: N" shape.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoVersionLine is returned when the version store contains no line
// matching the version grammar.
var ErrNoVersionLine = errors.New("unable to extract current version")

// versionLine is the version grammar: "Version:" SP+ digits. Surrounding
// whitespace around the digits is tolerated, nothing else is.
var versionLine = regexp.MustCompile(`^Version:[ \t]+([0-9]+)[ \t]*$`)

// Pair holds the paths of the two persisted store files. Passing a Pair
// around (instead of reaching for ambient working-directory paths) lets
// tests run against temp-directory stores.
type Pair struct {
	HashPath    string
	VersionPath string
}

// Bootstrap ensures both store files exist: the hash store as an empty file
// and the version store as "Version: 0". Existing files are left untouched.
// It reports whether any file had to be created.
func (p Pair) Bootstrap() (bool, error) {
	createdHash, err := ensureFile(p.HashPath, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create hash store %s: %w", p.HashPath, err)
	}

	createdVersion, err := ensureFile(p.VersionPath, []byte("Version: 0\n"))
	if err != nil {
		return false, fmt.Errorf("failed to create version store %s: %w", p.VersionPath, err)
	}

	return createdHash || createdVersion, nil
}

// ReadFingerprint returns the first non-blank line of the hash store, or the
// empty string when the store has no non-blank line.
func (p Pair) ReadFingerprint() (string, error) {
	data, err := os.ReadFile(p.HashPath)
	if err != nil {
		return "", fmt.Errorf("failed to read hash store %s: %w", p.HashPath, err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed, nil
		}
	}

	return "", nil
}

// ReadVersion scans the version store for the first line matching the
// version grammar and returns its integer. A store with no matching line
// yields ErrNoVersionLine.
func (p Pair) ReadVersion() (int64, error) {
	data, err := os.ReadFile(p.VersionPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read version store %s: %w", p.VersionPath, err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		m := versionLine.FindStringSubmatch(strings.TrimSuffix(line, "\r"))
		if m == nil {
			continue
		}

		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			// Digits too large for the counter type count as malformed.
			return 0, fmt.Errorf("%w: %v", ErrNoVersionLine, err)
		}
		return n, nil
	}

	return 0, fmt.Errorf("%w: no \"Version: <int>\" line in %s", ErrNoVersionLine, p.VersionPath)
}

// WriteFingerprint replaces the hash store content with the fingerprint.
func (p Pair) WriteFingerprint(fp string) error {
	if err := writeFileAtomic(p.HashPath, []byte(fp+"\n")); err != nil {
		return fmt.Errorf("failed to write hash store %s: %w", p.HashPath, err)
	}
	return nil
}

// WriteVersion replaces the version store content with "Version: <n>". The
// exact textual shape is a compatibility contract: the document build reads
// this file as its displayed version number.
func (p Pair) WriteVersion(n int64) error {
	content := fmt.Sprintf("Version: %d\n", n)
	if err := writeFileAtomic(p.VersionPath, []byte(content)); err != nil {
		return fmt.Errorf("failed to write version store %s: %w", p.VersionPath, err)
	}
	return nil
}

// ensureFile creates the file with the given initial content if it does not
// exist yet, including missing parent directories.
func ensureFile(path string, initial []byte) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, err
	}

	if err := writeFileAtomic(path, initial); err != nil {
		return false, err
	}
	return true, nil
}

// writeFileAtomic replaces the file content via temp-file-then-rename so a
// crash mid-write never leaves a truncated store.
func writeFileAtomic(path string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".docver-tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}() // cleanup on error

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}

	if err := tmpFile.Chmod(0644); err != nil {
		_ = tmpFile.Close()
		return err
	}

	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}
