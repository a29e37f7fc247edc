package symbolicate

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Table maps module-relative offsets to function names. Entries are sorted
// by offset so lookup can binary search for the greatest symbol offset that
// does not exceed the query.
type Table struct {
	Module  string // debug module name from the MODULE record, may be empty
	entries []entry
}

type entry struct {
	offset uint64
	name   string
	public bool
}

// Len returns the number of symbols in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Lookup returns the name of the function containing offset: the entry with
// the greatest offset ≤ the query. ok is false when the table is empty or
// the offset precedes the first symbol.
func (t *Table) Lookup(offset uint64) (string, bool) {
	if t == nil || len(t.entries) == 0 {
		return "", false
	}
	idx := sort.Search(len(t.entries), func(i int) bool { return t.entries[i].offset > offset })
	if idx == 0 {
		return "", false
	}
	return t.entries[idx-1].name, true
}

// ParseSymbolFile reads Breakpad text symbols (the dump_syms format:
// MODULE/FILE/FUNC/PUBLIC records). Only FUNC and PUBLIC records feed the
// table; line records and STACK data are skipped. Individual malformed
// records are dropped; a file yielding no usable record at all is an error
// so callers can treat it as "no symbols".
func ParseSymbolFile(r io.Reader) (*Table, error) {
	t := &Table{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	sawRecord := false
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "MODULE":
			// MODULE os arch id name
			if len(fields) >= 5 {
				t.Module = fields[4]
				sawRecord = true
			}
		case "FUNC":
			// FUNC [m] address size parameter_size name
			rest := fields[1:]
			if len(rest) > 0 && rest[0] == "m" {
				rest = rest[1:]
			}
			if len(rest) < 4 {
				continue
			}
			off, err := strconv.ParseUint(rest[0], 16, 64)
			if err != nil {
				continue
			}
			t.entries = append(t.entries, entry{offset: off, name: strings.Join(rest[3:], " ")})
			sawRecord = true
		case "PUBLIC":
			// PUBLIC [m] address parameter_size name
			rest := fields[1:]
			if len(rest) > 0 && rest[0] == "m" {
				rest = rest[1:]
			}
			if len(rest) < 3 {
				continue
			}
			off, err := strconv.ParseUint(rest[0], 16, 64)
			if err != nil {
				continue
			}
			t.entries = append(t.entries, entry{offset: off, name: strings.Join(rest[2:], " "), public: true})
			sawRecord = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read symbol file: %w", err)
	}
	if !sawRecord {
		return nil, fmt.Errorf("no usable records in symbol file")
	}

	sort.SliceStable(t.entries, func(i, j int) bool { return t.entries[i].offset < t.entries[j].offset })
	// one entry per offset; a FUNC name beats a PUBLIC one at the same
	// address regardless of record order in the file
	dedup := t.entries[:0]
	for _, e := range t.entries {
		if n := len(dedup); n > 0 && dedup[n-1].offset == e.offset {
			if dedup[n-1].public && !e.public {
				dedup[n-1] = e
			}
			continue
		}
		dedup = append(dedup, e)
	}
	t.entries = dedup

	return t, nil
}
