// Package symbolicate resolves (module, offset) pairs to function names
// using lazily parsed per-module symbol tables.
//
// Tables are built on the first lookup for a module and cached for the
// life of the process; modules are not expected to reload inside a
// crashing process, so nothing is ever invalidated. Lookups must stay
// safe when two threads fault at once, so the first-parse path is guarded
// by a lock a second faulting thread can wait on without deadlocking.
package symbolicate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/apex/log"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ezmodegames/crashmon/internal/utils"
	"github.com/ezmodegames/crashmon/pkg/stackwalk"
)

// ErrNoSymbols is returned when no symbol data exists for a module;
// callers fall back to displaying the raw offset.
var ErrNoSymbols = fmt.Errorf("no symbols for module")

// defaultCacheSize bounds the number of parsed per-module tables held in
// memory at once.
const defaultCacheSize = 64

// Resolver maps (module, offset) to function names.
type Resolver struct {
	searchDirs []string
	cacheDir   string

	mu     sync.Mutex
	tables *lru.Cache[string, *Table]
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSearchDirs adds directories searched for <module>.sym files, after
// the directory alongside the binary and before the local cache dir.
func WithSearchDirs(dirs ...string) Option {
	return func(r *Resolver) {
		r.searchDirs = append(r.searchDirs, dirs...)
	}
}

// WithCacheDir sets the local symbol cache directory, searched last.
func WithCacheDir(dir string) Option {
	return func(r *Resolver) {
		r.cacheDir = dir
	}
}

// NewResolver creates a symbol resolver. Discovery never reaches out to a
// network symbol server; only local paths are consulted.
func NewResolver(opts ...Option) (*Resolver, error) {
	tables, err := lru.New[string, *Table](defaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create symbol table cache: %w", err)
	}
	r := &Resolver{tables: tables}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Resolve maps a module-relative offset to a function name. module may be
// a bare image name ("SkyrimSE.exe") or a full path; the path's directory
// is searched first when present. Returns ErrNoSymbols when no table
// exists or no entry covers the offset.
func (r *Resolver) Resolve(module string, offset uint64) (string, error) {
	table := r.tableFor(module)
	if table.Len() == 0 {
		return "", ErrNoSymbols
	}
	name, ok := table.Lookup(offset)
	if !ok {
		return "", ErrNoSymbols
	}
	return name, nil
}

// Symbolicate decorates walked frames with resolved names where symbol
// data exists. Frames without symbols keep their raw offsets; the trace
// shape is never altered.
func (r *Resolver) Symbolicate(frames []stackwalk.Frame) []stackwalk.Frame {
	out := make([]stackwalk.Frame, len(frames))
	copy(out, frames)
	for i := range out {
		if out[i].Module == stackwalk.UnknownModule {
			continue
		}
		if name, err := r.Resolve(out[i].Module, out[i].Offset); err == nil {
			out[i].Symbol = name
		}
	}
	return out
}

// LoadedTables returns how many module tables are currently cached.
func (r *Resolver) LoadedTables() int {
	return r.tables.Len()
}

// tableFor returns the cached table for the module, parsing it on first
// request. A missing or malformed symbol file caches an empty table so
// the filesystem probe happens once per module, not once per frame.
func (r *Resolver) tableFor(module string) *Table {
	key := moduleKey(module)

	if t, ok := r.tables.Get(key); ok {
		return t
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// another faulting thread may have parsed it while we waited
	if t, ok := r.tables.Get(key); ok {
		return t
	}

	t := r.parse(module, key)
	r.tables.Add(key, t)
	return t
}

func (r *Resolver) parse(module, key string) *Table {
	path, ok := r.findSymbolFile(module, key)
	if !ok {
		log.WithField("module", key).Debug("no symbol file found")
		return &Table{}
	}

	f, err := os.Open(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Debug("failed to open symbol file")
		return &Table{}
	}
	defer f.Close()

	table, err := ParseSymbolFile(f)
	if err != nil {
		// fail closed: a bad symbol file must never abort the crash pipeline
		log.WithError(err).WithField("path", path).Debug("failed to parse symbol file")
		return &Table{}
	}

	log.WithFields(log.Fields{
		"module":  key,
		"symbols": table.Len(),
	}).Debug("loaded symbol table")

	return table
}

// findSymbolFile probes for <stem>.sym alongside the binary, then the
// configured search dirs, then the local cache dir. First match wins.
func (r *Resolver) findSymbolFile(module, key string) (string, bool) {
	symName := key + ".sym"

	var dirs []string
	if dir := filepath.Dir(module); dir != "." && dir != string(filepath.Separator) {
		dirs = append(dirs, dir)
	}
	dirs = append(dirs, r.searchDirs...)
	if r.cacheDir != "" {
		dirs = append(dirs, r.cacheDir)
	}

	for _, dir := range dirs {
		path := filepath.Join(dir, symName)
		if utils.IsFile(path) {
			return path, true
		}
	}
	return "", false
}

// moduleKey normalizes a module path or name to its lowercase stem:
// "C:\Game\SkyrimSE.exe" -> "skyrimse".
func moduleKey(module string) string {
	base := filepath.Base(strings.ReplaceAll(module, `\`, "/"))
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}
