package loadorder

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// hashPrefixSize is how much of a file feeds the fingerprint. Hashing only
// the head keeps the cost bounded on multi-gigabyte archives; the total
// size is mixed in and returned so identical-prefix files of different
// lengths stay distinguishable.
const hashPrefixSize = 64 * 1024

// FileHash computes a fast build fingerprint for a mod file: SHA-256 over
// the first 64 KiB plus the little-endian total size, truncated to 16 hex
// characters. The file's total size is returned alongside the hash.
func FileHash(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return "", 0, fmt.Errorf("failed to stat file: %w", err)
	}
	size := fi.Size()

	h := sha256.New()
	if _, err := io.CopyN(h, f, hashPrefixSize); err != nil && err != io.EOF {
		return "", 0, fmt.Errorf("failed to read file: %w", err)
	}

	var sizeLE [8]byte
	binary.LittleEndian.PutUint64(sizeLE[:], uint64(size))
	h.Write(sizeLE[:])

	return hex.EncodeToString(h.Sum(nil)[:8]), size, nil
}
