// Package exception classifies native fault codes and carries the raw
// context captured at the point of failure.
package exception

import (
	"fmt"
	"strings"
)

// Code is a native structured-exception code (e.g. 0xC0000005).
type Code uint32

const (
	AccessViolation    Code = 0xC0000005
	InPageError        Code = 0xC0000006
	InvalidHandle      Code = 0xC0000008
	IllegalInstruction Code = 0xC000001D
	IntDivideByZero    Code = 0xC0000094
	IntOverflow        Code = 0xC0000095
	PrivilegedInstr    Code = 0xC0000096
	StackOverflow      Code = 0xC00000FD
	HeapCorruption     Code = 0xC0000374
	StackBufferOverrun Code = 0xC0000409
)

var codeNames = map[Code]string{
	AccessViolation:    "ACCESS_VIOLATION",
	InPageError:        "IN_PAGE_ERROR",
	InvalidHandle:      "INVALID_HANDLE",
	IllegalInstruction: "ILLEGAL_INSTRUCTION",
	IntDivideByZero:    "INT_DIVIDE_BY_ZERO",
	IntOverflow:        "INT_OVERFLOW",
	PrivilegedInstr:    "PRIV_INSTRUCTION",
	StackOverflow:      "STACK_OVERFLOW",
	HeapCorruption:     "HEAP_CORRUPTION",
	StackBufferOverrun: "STACK_BUFFER_OVERRUN",
}

// IsFatal reports whether the code belongs to the enumerated fatal set.
// Codes outside the set (breakpoints, C++ exceptions, debugger chatter)
// must be passed through to the rest of the handler chain untouched.
func (c Code) IsFatal() bool {
	_, ok := codeNames[c]
	return ok
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return fmt.Sprintf("%s (0x%08X)", name, uint32(c))
	}
	return fmt.Sprintf("0x%08X", uint32(c))
}

// Hex returns the wire form of the code ("0xC0000005").
func (c Code) Hex() string {
	return fmt.Sprintf("0x%08X", uint32(c))
}

// Registers is the minimal register state the stack walker needs.
type Registers struct {
	PC uint64 // instruction pointer at the fault
	SP uint64 // stack pointer
	FP uint64 // frame pointer
}

// Context is the raw state captured exactly once per fault. It is created
// by the interceptor on the faulting thread, consumed synchronously by the
// capture pipeline, and never persisted beyond the current submission.
type Context struct {
	Code           Code
	Address        uint64
	Registers      Registers
	FaultingModule string
}

// AddressHex returns the wire form of the faulting address.
func (c *Context) AddressHex() string {
	return fmt.Sprintf("0x%016X", c.Address)
}

func (c *Context) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Exception:       %s\n", c.Code)
	fmt.Fprintf(&b, "Address:         %s\n", c.AddressHex())
	if c.FaultingModule != "" {
		fmt.Fprintf(&b, "Faulting Module: %s\n", c.FaultingModule)
	}
	fmt.Fprintf(&b, "    pc: %#016x  sp: %#016x  fp: %#016x\n",
		c.Registers.PC, c.Registers.SP, c.Registers.FP)
	return b.String()
}
