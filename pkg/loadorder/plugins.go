package loadorder

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apex/log"
)

// PluginList reads a structured "name : enabled" plugin list, the format
// written by Bethesda-engine mod managers.
type PluginList struct {
	// Path to the plugins file.
	Path string
}

// Collect parses the plugin list. A missing file is an error so the caller
// can fall back to a directory scan.
func (p *PluginList) Collect() (ModList, error) {
	f, err := os.Open(p.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open plugin list: %w", err)
	}
	defer f.Close()

	list, err := ParsePluginList(f)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"path":    p.Path,
		"plugins": len(list),
	}).Debug("parsed plugin list")

	return list, nil
}

// ParsePluginList parses "name : enabled" lines. Blank lines and lines
// starting with '#' are skipped; the split is on the first ':'; both sides
// are trimmed. An empty or non-matching enabled token means disabled, and
// disabled entries are excluded from the result. Encounter order among
// enabled entries is preserved, with load-order indices assigned in that
// order.
func ParsePluginList(r io.Reader) (ModList, error) {
	var list ModList

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, flag, _ := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if strings.TrimSpace(flag) != "1" {
			continue
		}

		entry := ModEntry{Name: name, Enabled: true}.WithIndex(len(list))
		list = append(list, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read plugin list: %w", err)
	}

	return list, nil
}
