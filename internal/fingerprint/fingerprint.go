// Package fingerprint computes the combined content digest of the watched
// file set.
package fingerprint

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Compute streams the byte content of every path, in slice order, through a
// single 160-bit digest with no separators between files, and returns it as
// lowercase hex. SHA-1 is fine here: the digest detects accidental content
// drift, not tampering.
//
// Any unreadable file aborts the computation; there is no partial
// fingerprint.
func Compute(paths []string) (string, error) {
	h := sha1.New()

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("failed to read watched file %s: %w", path, err)
		}

		_, err = io.Copy(h, f)
		_ = f.Close()
		if err != nil {
			return "", fmt.Errorf("failed to read watched file %s: %w", path, err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
