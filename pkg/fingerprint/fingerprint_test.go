package fingerprint

import (
	"regexp"
	"testing"

	"github.com/ezmodegames/crashmon/pkg/stackwalk"
)

var hexRE = regexp.MustCompile(`^[0-9a-f]{16}$`)

func frame(module string, offset uint64, system bool) stackwalk.Frame {
	return stackwalk.Frame{Module: module, Offset: offset, System: system}
}

func TestComputeShape(t *testing.T) {
	traces := []string{
		"[0] 0x7FF712345678 SkyrimSE.exe+0x12345",
		"ntdll.dll+0x12345\nkernel32.dll+0x67890",
		"",
		"complete garbage, no frames at all",
	}
	for _, trace := range traces {
		got := ComputeFromTrace(trace)
		if !hexRE.MatchString(got) {
			t.Errorf("ComputeFromTrace(%q) = %q, want 16 lowercase hex chars", trace, got)
		}
	}
}

func TestAddressIndependence(t *testing.T) {
	a := ComputeFromTrace("[0] 0x7FF712345678 SkyrimSE.exe+0x12345\n[1] 0x7FF712399999 hdtSMP64.dll+0x400")
	b := ComputeFromTrace("[0] 0x7FF799999999 SkyrimSE.exe+0x12345\n[1] 0x6FF000000000 hdtSMP64.dll+0x400")
	if a != b {
		t.Errorf("identical module+offset sequences with different addresses: %s != %s", a, b)
	}
}

func TestModuleCaseFolding(t *testing.T) {
	a := Compute([]stackwalk.Frame{frame("SkyrimSE.exe", 0x12345, false)}, "")
	b := Compute([]stackwalk.Frame{frame("skyrimse.EXE", 0x12345, false)}, "")
	if a != b {
		t.Errorf("case variants of module names should fingerprint equal: %s != %s", a, b)
	}
}

func TestDifferentTopFramesDiffer(t *testing.T) {
	a := Compute([]stackwalk.Frame{frame("SkyrimSE.exe", 0x12345, false)}, "")
	b := Compute([]stackwalk.Frame{frame("SkyrimSE.exe", 0x54321, false)}, "")
	if a == b {
		t.Error("different offsets in the same module must not collide")
	}
}

func TestSystemFramesExcluded(t *testing.T) {
	bare := []stackwalk.Frame{frame("SkyrimSE.exe", 0x12345, false)}
	noisy := []stackwalk.Frame{
		frame("ntdll.dll", 0x111, true),
		frame("SkyrimSE.exe", 0x12345, false),
		frame("kernel32.dll", 0x222, true),
	}
	if Compute(bare, "") != Compute(noisy, "") {
		t.Error("system frames must not affect the fingerprint")
	}
}

func TestOnlyFirstTenNonSystemFramesCount(t *testing.T) {
	base := make([]stackwalk.Frame, 0, 12)
	for i := 0; i < 10; i++ {
		base = append(base, frame("SkyrimSE.exe", uint64(0x1000+i), false))
	}
	extended := append(append([]stackwalk.Frame{}, base...),
		frame("extra.dll", 0xAAAA, false),
		frame("more.dll", 0xBBBB, false))

	if Compute(base, "") != Compute(extended, "") {
		t.Error("frames beyond the tenth must not change the fingerprint")
	}

	// but the tenth itself does
	mutated := append(append([]stackwalk.Frame{}, base[:9]...), frame("other.dll", 0x9999, false))
	if Compute(base, "") == Compute(mutated, "") {
		t.Error("the tenth frame is part of the identity")
	}
}

func TestSystemOnlyTraceFallsBack(t *testing.T) {
	trace := "ntdll.dll+0x12345\nkernel32.dll+0x67890"
	got := ComputeFromTrace(trace)
	if !hexRE.MatchString(got) {
		t.Fatalf("fallback fingerprint = %q, want 16 hex chars", got)
	}
	// fallback hashes the whole text, so the raw text matters here
	other := ComputeFromTrace("ntdll.dll+0x12345\nkernel32.dll+0x11111")
	if got == other {
		t.Error("distinct system-only traces should produce distinct fallback fingerprints")
	}
}

func TestSignature(t *testing.T) {
	frames := []stackwalk.Frame{
		frame("ntdll.dll", 0x10, true),
		frame("SkyrimSE.exe", 0x12345, false),
		frame("HDTSmp64.dll", 0x400, false),
	}
	want := "skyrimse.exe+0x12345|hdtsmp64.dll+0x400"
	if got := Signature(frames); got != want {
		t.Errorf("Signature = %q, want %q", got, want)
	}
	if got := Signature(nil); got != "" {
		t.Errorf("Signature(nil) = %q, want empty", got)
	}
}

func TestDeterminism(t *testing.T) {
	trace := "[0] 0x7FF712345678 SkyrimSE.exe+0x12345"
	first := ComputeFromTrace(trace)
	for i := 0; i < 8; i++ {
		if got := ComputeFromTrace(trace); got != first {
			t.Fatalf("iteration %d: %s != %s", i, got, first)
		}
	}
}
