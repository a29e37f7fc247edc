// Package host defines the contract between the crash engine and the
// game-specific plugin shell embedding it, plus the engine that wires the
// capture pipeline together. All collaboration is through explicit values
// passed at Init; there are no ambient globals.
package host

import "github.com/ezmodegames/crashmon/pkg/exception"

// PluginInfo is one plugin as the script extender sees it.
type PluginInfo struct {
	Name string
	// Index is the runtime load-order slot.
	Index int
	// Light marks small-form plugins that share a slot space.
	Light bool
}

// Adapter is what a plugin shell must provide about its game. Methods are
// called outside the fault window except where noted.
type Adapter interface {
	// GameVersion returns the running game build (e.g. "1.6.640").
	GameVersion() string
	// ScriptExtenderVersion returns the extender build, or "" when the
	// shell runs without one.
	ScriptExtenderVersion() string
	// LoadOrder returns the live plugin list. Called at DataLoaded, never
	// during a fault.
	LoadOrder() []PluginInfo
}

// Core is the engine surface a shell drives. Init installs the handler,
// DataLoaded snapshots the load order once gameplay data is resolved,
// HandleCrash runs the capture pipeline (shells normally never call it
// directly; the installed handler does), Shutdown removes the handler.
type Core interface {
	Init(Adapter) error
	DataLoaded()
	HandleCrash(*exception.Context)
	Shutdown()
}
