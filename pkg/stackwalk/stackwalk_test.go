package stackwalk

import (
	"fmt"
	"testing"

	"github.com/ezmodegames/crashmon/pkg/exception"
)

// fakeMemory is a little-endian word map standing in for the faulted
// address space.
type fakeMemory map[uint64]uint64

func (m fakeMemory) ReadPtr(addr uint64) (uint64, error) {
	v, ok := m[addr]
	if !ok {
		return 0, fmt.Errorf("read fault at %#x", addr)
	}
	return v, nil
}

func testModules() Modules {
	mods := Modules{
		{Name: "SkyrimSE.exe", Base: 0x7FF700000000, End: 0x7FF704000000},
		{Name: "skse64_1_6_1170.dll", Base: 0x7FF800000000, End: 0x7FF800800000},
		{Name: "ntdll.dll", Base: 0x7FFC00000000, End: 0x7FFC00200000},
	}
	mods.Sort()
	return mods
}

func TestModulesFind(t *testing.T) {
	mods := testModules()

	mod, ok := mods.Find(0x7FF700012345)
	if !ok || mod.Name != "SkyrimSE.exe" {
		t.Fatalf("Find = %v, %v; want SkyrimSE.exe", mod, ok)
	}
	if _, ok := mods.Find(0x1000); ok {
		t.Error("Find should miss addresses outside all module ranges")
	}
	if _, ok := mods.Find(0x7FF704000000); ok {
		t.Error("module end is exclusive")
	}
}

func TestWalkFrameChain(t *testing.T) {
	// three frames: game -> skse plugin -> ntdll
	mem := fakeMemory{
		// frame 0: fp=0x1000
		0x1008: 0x7FF800000500, // return into skse dll
		0x1000: 0x2000,         // caller fp
		// frame 1: fp=0x2000
		0x2008: 0x7FFC00001000, // return into ntdll
		0x2000: 0x3000,
		// frame 2: fp=0x3000
		0x3008: 0, // pc 0 terminates
		0x3000: 0,
	}

	w := &Walker{Modules: testModules(), Memory: mem}
	frames := w.Walk(exception.Registers{PC: 0x7FF700012345, FP: 0x1000})

	if len(frames) != 3 {
		t.Fatalf("got %d frames, want 3: %+v", len(frames), frames)
	}
	if frames[0].Module != "SkyrimSE.exe" || frames[0].Offset != 0x12345 {
		t.Errorf("frame 0 = %+v", frames[0])
	}
	if frames[1].Module != "skse64_1_6_1170.dll" || frames[1].Offset != 0x500 {
		t.Errorf("frame 1 = %+v", frames[1])
	}
	if frames[2].Module != "ntdll.dll" || !frames[2].System {
		t.Errorf("frame 2 = %+v, want system ntdll frame", frames[2])
	}
	for i, f := range frames {
		if f.Index != i {
			t.Errorf("frame %d has index %d", i, f.Index)
		}
	}
}

func TestWalkUnknownModulePreservesPosition(t *testing.T) {
	mem := fakeMemory{
		0x1008: 0xDEAD0000, // not in any module
		0x1000: 0x2000,
		0x2008: 0x7FF700000100,
		0x2000: 0,
	}
	w := &Walker{Modules: testModules(), Memory: mem}
	frames := w.Walk(exception.Registers{PC: 0x7FF700012345, FP: 0x1000})

	if len(frames) != 3 {
		t.Fatalf("got %d frames, want 3: %+v", len(frames), frames)
	}
	if frames[1].Module != UnknownModule {
		t.Errorf("frame 1 module = %q, want %q", frames[1].Module, UnknownModule)
	}
	if frames[2].Module != "SkyrimSE.exe" {
		t.Errorf("frame after unknown = %+v", frames[2])
	}
}

func TestWalkTerminatesOnReadFault(t *testing.T) {
	w := &Walker{Modules: testModules(), Memory: fakeMemory{}}
	frames := w.Walk(exception.Registers{PC: 0x7FF700012345, FP: 0xBAD0})
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
}

func TestWalkFrameCeiling(t *testing.T) {
	// self-referential chain that would loop forever without the cap
	mem := fakeMemory{}
	fp := uint64(0x1000)
	for i := 0; i < 200; i++ {
		mem[fp+8] = 0x7FF700000100
		mem[fp] = fp + 0x10
		fp += 0x10
	}
	w := &Walker{Modules: testModules(), Memory: mem}
	frames := w.Walk(exception.Registers{PC: 0x7FF700012345, FP: 0x1000})
	if len(frames) != MaxFrames {
		t.Errorf("got %d frames, want ceiling %d", len(frames), MaxFrames)
	}
}

func TestWalkRejectsDescendingFramePointer(t *testing.T) {
	mem := fakeMemory{
		0x2008: 0x7FF700000100,
		0x2000: 0x1000, // frame chain going down: corrupt
	}
	w := &Walker{Modules: testModules(), Memory: mem}
	frames := w.Walk(exception.Registers{PC: 0x7FF700012345, FP: 0x2000})
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
}

func TestIsSystemModule(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"ntdll.dll", true},
		{"NTDLL.DLL", true},
		{"KernelBase.dll", true},
		{"SkyrimSE.exe", false},
		{"skse64_1_6_1170.dll", false},
	}
	for _, tt := range tests {
		if got := IsSystemModule(tt.name); got != tt.want {
			t.Errorf("IsSystemModule(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
