package loadorder

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileHash(t *testing.T) {
	path := writeTemp(t, "mod.esp", []byte("some plugin bytes"))

	hash, size, err := FileHash(path)
	if err != nil {
		t.Fatal(err)
	}
	assert.Len(t, hash, 16)
	assert.Equal(t, int64(17), size)

	// stable across calls
	again, _, err := FileHash(path)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, hash, again)
}

func TestFileHashSizeDisambiguates(t *testing.T) {
	// Two files sharing a 64 KiB prefix but with different total sizes
	// must hash differently.
	prefix := bytes.Repeat([]byte{0xAB}, hashPrefixSize)
	short := writeTemp(t, "short.archive", prefix)
	long := writeTemp(t, "long.archive", append(bytes.Repeat([]byte{0xAB}, hashPrefixSize), 0xCD))

	h1, s1, err := FileHash(short)
	if err != nil {
		t.Fatal(err)
	}
	h2, s2, err := FileHash(long)
	if err != nil {
		t.Fatal(err)
	}
	assert.NotEqual(t, h1, h2)
	assert.Equal(t, int64(hashPrefixSize), s1)
	assert.Equal(t, int64(hashPrefixSize+1), s2)
}

func TestFileHashContentSensitive(t *testing.T) {
	h1, _, err := FileHash(writeTemp(t, "a.bsa", []byte("aaaa")))
	if err != nil {
		t.Fatal(err)
	}
	h2, _, err := FileHash(writeTemp(t, "b.bsa", []byte("aaab")))
	if err != nil {
		t.Fatal(err)
	}
	assert.NotEqual(t, h1, h2)
}

func TestFileHashMissingFile(t *testing.T) {
	_, _, err := FileHash(filepath.Join(t.TempDir(), "nope.esp"))
	assert.Error(t, err)
}

func TestFileHashEmptyFile(t *testing.T) {
	hash, size, err := FileHash(writeTemp(t, "empty.esm", nil))
	if err != nil {
		t.Fatal(err)
	}
	assert.Len(t, hash, 16)
	assert.Zero(t, size)
}
