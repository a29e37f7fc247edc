//go:build windows

package stackwalk

import (
	"encoding/binary"
	"fmt"
	"io"
	"unsafe"

	"golang.org/x/sys/windows"
)

// LoadedModules snapshots the images mapped into the current process.
func LoadedModules() (Modules, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPMODULE, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot modules: %w", err)
	}
	defer windows.CloseHandle(snap)

	var me windows.ModuleEntry32
	me.Size = uint32(unsafe.Sizeof(me))

	var mods Modules
	for err = windows.Module32First(snap, &me); err == nil; err = windows.Module32Next(snap, &me) {
		base := uint64(me.ModBaseAddr)
		mods = append(mods, Module{
			Name: windows.UTF16ToString(me.Module[:]),
			Base: base,
			End:  base + uint64(me.ModBaseSize),
		})
	}
	mods.Sort()
	return mods, nil
}

// ProcessMemory reads the current process through ReadProcessMemory, which
// fails cleanly on unmapped pages instead of faulting the reader. That
// matters here: the walker runs inside an exception handler chasing
// possibly garbage frame pointers.
type ProcessMemory struct{}

// ReadPtr reads one little-endian pointer-sized word.
func (ProcessMemory) ReadPtr(addr uint64) (uint64, error) {
	var buf [8]byte
	var n uintptr
	if err := windows.ReadProcessMemory(windows.CurrentProcess(), uintptr(addr), &buf[0], 8, &n); err != nil {
		return 0, err
	}
	if n != 8 {
		return 0, io.ErrUnexpectedEOF
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}
