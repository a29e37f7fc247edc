// Package loadorder enumerates the mods active in a game session.
//
// Each supported engine family gets one Collector variant: a structured
// plugin list (Bethesda-style plugins.txt), a mod-directory scan (UE4SS
// layout), or a flat archive scan. All variants produce the same ordered
// ModEntry sequence; an empty result is valid and still gets reported.
package loadorder

import "encoding/json"

// ModEntry is one active (or known-disabled) mod. Entries are produced
// fresh per capture from the live environment and carry no identity beyond
// the current report.
type ModEntry struct {
	Name     string `json:"name"`
	Enabled  bool   `json:"enabled"`
	Index    *int   `json:"index,omitempty"`
	FileHash string `json:"fileHash,omitempty"`
	FileSize int64  `json:"fileSize,omitempty"`
	Version  string `json:"version,omitempty"`
}

// WithIndex sets the load-order position.
func (m ModEntry) WithIndex(idx int) ModEntry {
	m.Index = &idx
	return m
}

// ModList is a complete load order.
type ModList []ModEntry

// ToJSON serializes the list for the report's loadOrderJson field. An
// empty list serializes to "[]", never null.
func (l ModList) ToJSON() (string, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]ModEntry(l))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FromJSON parses a loadOrderJson string back into a list.
func FromJSON(s string) (ModList, error) {
	var l ModList
	if err := json.Unmarshal([]byte(s), &l); err != nil {
		return nil, err
	}
	return l, nil
}

// Collector is the uniform contract over the per-engine variants. New
// engines are supported by adding a new variant, not by branching inside
// the pipeline.
type Collector interface {
	// Collect returns the ordered active mod list. An empty list with a
	// nil error is a valid outcome (pluginCount 0 still submits).
	Collect() (ModList, error)
}
