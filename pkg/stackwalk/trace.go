package stackwalk

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ezmodegames/crashmon/internal/utils"
)

// Trace line forms accepted by Parse:
//
//	[0] 0x7FF712345678 SkyrimSE.exe+0x12345
//	SkyrimSE.exe+0x12345
//
// The first is what Format emits; the bare form shows up in reports
// assembled by older plugin shells.
var (
	numberedRE = regexp.MustCompile(`^\[(?P<num>\d+)\]\s+(?P<addr>0x[[:xdigit:]]+)\s+(?P<mod>\S+?)\+(?P<off>0x[[:xdigit:]]+|\d+)(?:\s+\((?P<sym>.+)\))?\s*$`)
	bareRE     = regexp.MustCompile(`^(?P<mod>\S+?)\+(?P<off>0x[[:xdigit:]]+|\d+)(?:\s+\((?P<sym>.+)\))?\s*$`)
)

// Format renders frames as the newline-delimited wire trace, one
// `[idx] 0xADDR module+0xOFFSET` line per frame, with the resolved symbol
// appended in parentheses when present.
func Format(frames []Frame) string {
	var b strings.Builder
	for i, f := range frames {
		if i > 0 {
			b.WriteByte('\n')
		}
		if f.Addr != 0 {
			fmt.Fprintf(&b, "[%d] 0x%X %s+0x%X", f.Index, f.Addr, f.Module, f.Offset)
		} else {
			fmt.Fprintf(&b, "[%d] %s+0x%X", f.Index, f.Module, f.Offset)
		}
		if f.Symbol != "" {
			fmt.Fprintf(&b, " (%s)", f.Symbol)
		}
	}
	return b.String()
}

// Parse reads a trace back into frames. Lines that match neither form are
// skipped; offsets accept hex (0x-prefixed) or decimal.
func Parse(text string) []Frame {
	var frames []Frame
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var f Frame
		if m := numberedRE.FindStringSubmatch(line); m != nil {
			num, err := utils.ConvertStrToInt(m[numberedRE.SubexpIndex("num")])
			if err != nil {
				continue
			}
			addr, err := utils.ConvertStrToInt(m[numberedRE.SubexpIndex("addr")])
			if err != nil {
				continue
			}
			off, err := utils.ConvertStrToInt(m[numberedRE.SubexpIndex("off")])
			if err != nil {
				continue
			}
			f = Frame{
				Index:  int(num),
				Addr:   addr,
				Module: m[numberedRE.SubexpIndex("mod")],
				Offset: off,
				Symbol: m[numberedRE.SubexpIndex("sym")],
			}
		} else if m := bareRE.FindStringSubmatch(line); m != nil {
			off, err := utils.ConvertStrToInt(m[bareRE.SubexpIndex("off")])
			if err != nil {
				continue
			}
			f = Frame{
				Index:  len(frames),
				Module: m[bareRE.SubexpIndex("mod")],
				Offset: off,
				Symbol: m[bareRE.SubexpIndex("sym")],
			}
		} else {
			continue
		}
		f.System = IsSystemModule(f.Module)
		frames = append(frames, f)
	}
	return frames
}
