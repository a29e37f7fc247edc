// Package stackwalk unwinds a captured thread context into an ordered
// sequence of module-relative frames. Offsets are relative to each module's
// load base so traces compare equal across address-space randomization.
package stackwalk

import (
	"sort"
	"strings"

	"github.com/ezmodegames/crashmon/pkg/exception"
)

// MaxFrames bounds the walk; hanging inside a fault handler is worse than a
// short trace.
const MaxFrames = 64

// UnknownModule tags frames whose instruction pointer is not inside any
// known module range. The frame keeps its position in the trace.
const UnknownModule = "unknown"

// Frame is a single resolved stack location, outermost call first within a
// walked trace.
type Frame struct {
	Index  int    `json:"index"`
	Addr   uint64 `json:"address,omitempty"`
	Module string `json:"module"`
	Offset uint64 `json:"offset"`
	Symbol string `json:"symbol,omitempty"`
	System bool   `json:"system"`
}

// Module is a loaded image with its address range.
type Module struct {
	Name string
	Base uint64
	End  uint64
}

// ModuleList resolves an instruction pointer to its owning module.
type ModuleList interface {
	// Find returns the module whose range contains addr.
	Find(addr uint64) (Module, bool)
}

// Modules is an in-memory ModuleList over a snapshot of loaded images.
type Modules []Module

// Find resolves addr by address-range containment.
func (m Modules) Find(addr uint64) (Module, bool) {
	// snapshot is small (a few hundred images at most); the sort amortizes
	// over the whole episode
	idx := sort.Search(len(m), func(i int) bool { return m[i].End > addr })
	if idx < len(m) && m[idx].Base <= addr && addr < m[idx].End {
		return m[idx], true
	}
	return Module{}, false
}

// Sort orders the modules by base address so Find can binary search.
func (m Modules) Sort() {
	sort.Slice(m, func(i, j int) bool { return m[i].Base < m[j].Base })
}

// Memory reads pointer-sized words from the faulted address space. The
// walker tolerates any read error by terminating the walk.
type Memory interface {
	ReadPtr(addr uint64) (uint64, error)
}

// Walker unwinds frame-pointer chains from a captured context.
type Walker struct {
	Modules ModuleList
	Memory  Memory
	// Max caps the number of frames; 0 means MaxFrames.
	Max int
}

// Walk unwinds from regs until the pc reaches zero, a read fails, or the
// frame ceiling is hit. Frames outside any known module are tagged
// "unknown" rather than dropped.
func (w *Walker) Walk(regs exception.Registers) []Frame {
	maxf := w.Max
	if maxf <= 0 || maxf > MaxFrames {
		maxf = MaxFrames
	}

	var frames []Frame
	pc, fp := regs.PC, regs.FP

	for i := 0; i < maxf; i++ {
		if pc == 0 {
			break
		}
		frames = append(frames, w.frameFor(i, pc))

		if w.Memory == nil || fp == 0 {
			break
		}
		// standard frame layout: [fp] = caller fp, [fp+8] = return address
		ret, err := w.Memory.ReadPtr(fp + 8)
		if err != nil {
			break
		}
		next, err := w.Memory.ReadPtr(fp)
		if err != nil {
			break
		}
		if next != 0 && next <= fp {
			// frame chain must grow upward; anything else is corruption
			break
		}
		pc, fp = ret, next
	}

	return frames
}

func (w *Walker) frameFor(idx int, pc uint64) Frame {
	f := Frame{Index: idx, Addr: pc, Module: UnknownModule}
	if w.Modules == nil {
		return f
	}
	if mod, ok := w.Modules.Find(pc); ok {
		f.Module = mod.Name
		f.Offset = pc - mod.Base
		f.System = IsSystemModule(mod.Name)
	}
	return f
}

// systemModules is the fixed set of OS runtime images whose frames are
// noise for cross-user grouping. Matched case-insensitively.
var systemModules = map[string]bool{
	"ntdll.dll":          true,
	"kernel32.dll":       true,
	"kernelbase.dll":     true,
	"user32.dll":         true,
	"gdi32.dll":          true,
	"win32u.dll":         true,
	"msvcrt.dll":         true,
	"ucrtbase.dll":       true,
	"msvcp140.dll":       true,
	"vcruntime140.dll":   true,
	"vcruntime140_1.dll": true,
	"combase.dll":        true,
	"ole32.dll":          true,
	"rpcrt4.dll":         true,
	"advapi32.dll":       true,
	"sechost.dll":        true,
	"ws2_32.dll":         true,
	"dxgi.dll":           true,
	"d3d11.dll":          true,
	"d3d12.dll":          true,
}

// IsSystemModule reports whether name belongs to the OS runtime set.
func IsSystemModule(name string) bool {
	return systemModules[strings.ToLower(name)]
}
