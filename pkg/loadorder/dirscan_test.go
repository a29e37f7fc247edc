package loadorder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func mkMod(t *testing.T, root, name string, enabled bool, payload string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if enabled {
		if err := os.WriteFile(filepath.Join(dir, "enabled.txt"), []byte("1\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if payload != "" {
		path := filepath.Join(dir, payload)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("payload bytes"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDirectoryScan(t *testing.T) {
	root := t.TempDir()
	mkMod(t, root, "BetterUI", true, filepath.Join("dlls", "main.dll"))
	mkMod(t, root, "DisabledMod", false, "")
	mkMod(t, root, "shared", true, "")   // reserved
	mkMod(t, root, "Keybinds", true, "") // reserved
	// loose file at root is not a mod
	if err := os.WriteFile(filepath.Join(root, "readme.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	scan := &DirectoryScan{Root: root, Fingerprint: true}
	list, err := scan.Collect()
	if err != nil {
		t.Fatal(err)
	}

	if len(list) != 2 {
		t.Fatalf("got %d mods, want 2: %+v", len(list), list)
	}

	byName := map[string]ModEntry{}
	for _, m := range list {
		byName[m.Name] = m
	}
	better, ok := byName["BetterUI"]
	if !ok {
		t.Fatal("BetterUI missing from scan")
	}
	assert.True(t, better.Enabled)
	assert.Len(t, better.FileHash, 16)
	assert.Equal(t, int64(len("payload bytes")), better.FileSize)

	disabled := byName["DisabledMod"]
	assert.False(t, disabled.Enabled)
	assert.Empty(t, disabled.FileHash)
}

func TestDirectoryScanMissingRoot(t *testing.T) {
	scan := &DirectoryScan{Root: filepath.Join(t.TempDir(), "nope")}
	list, err := scan.Collect()
	assert.NoError(t, err)
	assert.Empty(t, list)
}

func TestDirectoryScanLuaPayloadFallback(t *testing.T) {
	root := t.TempDir()
	mkMod(t, root, "LuaMod", true, filepath.Join("Scripts", "main.lua"))

	scan := &DirectoryScan{Root: root, Fingerprint: true}
	list, err := scan.Collect()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d mods, want 1", len(list))
	}
	assert.Len(t, list[0].FileHash, 16)
}

func TestArchiveScan(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zmod.archive", "amod.archive", "notes.txt", "old.bsa"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	scan := &ArchiveScan{Dir: dir, Fingerprint: true}
	list, err := scan.Collect()
	if err != nil {
		t.Fatal(err)
	}

	if len(list) != 3 {
		t.Fatalf("got %d archives, want 3: %+v", len(list), list)
	}
	// deterministic name order
	assert.Equal(t, "amod.archive", list[0].Name)
	assert.Equal(t, "old.bsa", list[1].Name)
	assert.Equal(t, "zmod.archive", list[2].Name)
	for i, m := range list {
		assert.True(t, m.Enabled)
		assert.Equal(t, i, *m.Index)
		assert.Len(t, m.FileHash, 16)
	}
}

func TestArchiveScanPrefix(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "cool.archive"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	scan := &ArchiveScan{Dir: dir, Prefix: "[REDmod]"}
	list, err := scan.Collect()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "[REDmod]cool.archive", list[0].Name)
}

func TestArchiveScanMissingDir(t *testing.T) {
	scan := &ArchiveScan{Dir: filepath.Join(t.TempDir(), "nope")}
	list, err := scan.Collect()
	assert.NoError(t, err)
	assert.Empty(t, list)
}
