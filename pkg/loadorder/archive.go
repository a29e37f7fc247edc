package loadorder

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// archiveExts are the package formats recognized by the flat scan.
var archiveExts = map[string]bool{
	".archive": true,
	".bsa":     true,
	".ba2":     true,
}

// ArchiveScan enumerates loose archive files in a package directory
// (Cyberpunk-style archive/pc/mod layouts). Files present in the directory
// are considered enabled; the engine loads whatever is there.
type ArchiveScan struct {
	// Dir is the archive directory.
	Dir string
	// Prefix, when set, is prepended to every entry name to mark the mod
	// family it was discovered in (e.g. "[REDmod]").
	Prefix string
	// Fingerprint, when true, hashes each archive.
	Fingerprint bool
}

// Collect lists archive files in Dir, sorted by name for a deterministic
// order. A missing directory yields an empty list.
func (a *ArchiveScan) Collect() (ModList, error) {
	entries, err := os.ReadDir(a.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return ModList{}, nil
		}
		return nil, fmt.Errorf("failed to read archive directory: %w", err)
	}

	var names []string
	for _, ent := range entries {
		if ent.IsDir() || !archiveExts[strings.ToLower(filepath.Ext(ent.Name()))] {
			continue
		}
		names = append(names, ent.Name())
	}
	sort.Strings(names)

	var list ModList
	for _, name := range names {
		display := name
		if a.Prefix != "" {
			display = a.Prefix + name
		}
		mod := ModEntry{Name: display, Enabled: true}.WithIndex(len(list))
		if a.Fingerprint {
			if hash, size, err := FileHash(filepath.Join(a.Dir, name)); err == nil {
				mod.FileHash = hash
				mod.FileSize = size
			}
		}
		list = append(list, mod)
	}

	return list, nil
}
