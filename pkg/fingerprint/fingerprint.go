// Package fingerprint derives the stable crash identity used to group
// occurrences of the same defect across unrelated users and load orders.
//
// The identity deliberately ignores absolute addresses and OS runtime
// frames: two machines with different address-space layouts and different
// mod sets produce the same fingerprint for the same top-of-stack shape.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ezmodegames/crashmon/pkg/stackwalk"
)

// HashLen is the hex length of a crash fingerprint (64 bits).
const HashLen = 16

// maxFrames caps how many non-system frames feed the signature; frames
// past the cap never change the identity.
const maxFrames = 10

// Compute derives the 16-hex-char fingerprint for a walked trace. When no
// non-system frame exists (a crash entirely inside OS code, or an empty
// trace), the raw trace text is hashed instead so a grouping key always
// exists.
//
// The exception code and faulting module deliberately take no part in the
// identity: traces with equal frame signatures must always group together,
// even when different fault codes led to them.
func Compute(frames []stackwalk.Frame, rawTrace string) string {
	sig := Signature(frames)
	if sig == "" {
		return hashText(rawTrace)
	}
	return hashText(sig)
}

// ComputeFromTrace parses a wire-format trace and fingerprints it.
func ComputeFromTrace(trace string) string {
	return Compute(stackwalk.Parse(trace), trace)
}

// Signature renders the fingerprint input: the first 10 non-system frames
// as lowercase "module+0xOFF" signatures joined with "|". Empty when the
// trace holds no non-system frames.
func Signature(frames []stackwalk.Frame) string {
	var parts []string
	for _, f := range frames {
		if f.System {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s+0x%X", strings.ToLower(f.Module), f.Offset))
		if len(parts) == maxFrames {
			break
		}
	}
	return strings.Join(parts, "|")
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:HashLen]
}
