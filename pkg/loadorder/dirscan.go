package loadorder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
)

// reservedDirs are folder names that live inside a mods directory but are
// not mods themselves.
var reservedDirs = map[string]bool{
	"shared":   true,
	"keybinds": true,
}

// DirectoryScan enumerates mod folders when no structured plugin list
// exists (UE4SS-style layouts: one folder per mod under Mods/). This is
// the fallback variant; a structured list is always preferred when the
// engine provides one.
type DirectoryScan struct {
	// Root is the mods directory; each immediate subdirectory is a mod.
	Root string
	// Fingerprint, when true, hashes each mod's payload file.
	Fingerprint bool
}

// Collect scans Root. A missing root yields an empty list, not an error:
// a machine without a mods folder simply has no mods.
func (d *DirectoryScan) Collect() (ModList, error) {
	entries, err := os.ReadDir(d.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return ModList{}, nil
		}
		return nil, fmt.Errorf("failed to read mods directory: %w", err)
	}

	var list ModList
	for _, ent := range entries {
		if !ent.IsDir() || reservedDirs[strings.ToLower(ent.Name())] {
			continue
		}

		modDir := filepath.Join(d.Root, ent.Name())
		mod := ModEntry{
			Name:    ent.Name(),
			Enabled: modEnabled(modDir),
		}.WithIndex(len(list))

		if d.Fingerprint {
			if path, ok := payloadFile(modDir); ok {
				if hash, size, err := FileHash(path); err == nil {
					mod.FileHash = hash
					mod.FileSize = size
				} else {
					log.WithError(err).WithField("mod", ent.Name()).Debug("failed to fingerprint mod")
				}
				if strings.HasSuffix(path, ".dll") {
					mod.Version = fileVersion(path)
				}
			}
		}

		list = append(list, mod)
	}

	return list, nil
}

// modEnabled reads the enabled.txt marker; a mod is enabled only when the
// marker exists and contains "1".
func modEnabled(modDir string) bool {
	b, err := os.ReadFile(filepath.Join(modDir, "enabled.txt"))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(b)) == "1"
}

// payloadFile locates the file that identifies a mod's build: the native
// payload first, the script entry point second.
func payloadFile(modDir string) (string, bool) {
	for _, rel := range []string{
		filepath.Join("dlls", "main.dll"),
		filepath.Join("Scripts", "main.lua"),
	} {
		path := filepath.Join(modDir, rel)
		if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}
