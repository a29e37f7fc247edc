//go:build windows && amd64

package interceptor

import (
	"fmt"

	"golang.org/x/sys/windows"

	"github.com/ezmodegames/crashmon/pkg/exception"
	"github.com/ezmodegames/crashmon/pkg/stackwalk"
)

// Registered CALL_FIRST so the capture runs before SEH unwinding can
// destroy the faulting frame chain.
const callFirst = 1

// EXCEPTION_CONTINUE_SEARCH; the fault is never swallowed.
const continueSearch uintptr = 0

var (
	kernel32                           = windows.NewLazySystemDLL("kernel32.dll")
	procAddVectoredExceptionHandler    = kernel32.NewProc("AddVectoredExceptionHandler")
	procRemoveVectoredExceptionHandler = kernel32.NewProc("RemoveVectoredExceptionHandler")
)

func (i *Interceptor) platformInstall() error {
	i.cbOnce.Do(func() {
		i.cb = windows.NewCallback(i.vehHandler)
	})
	h, _, err := procAddVectoredExceptionHandler.Call(callFirst, i.cb)
	if h == 0 {
		return fmt.Errorf("failed to register vectored exception handler: %w", err)
	}
	i.vehHandle = h
	return nil
}

func (i *Interceptor) platformUninstall() error {
	if i.vehHandle == 0 {
		return nil
	}
	r, _, err := procRemoveVectoredExceptionHandler.Call(i.vehHandle)
	if r == 0 {
		return fmt.Errorf("failed to remove vectored exception handler: %w", err)
	}
	i.vehHandle = 0
	return nil
}

// vehHandler runs inside the OS exception dispatcher on the faulting
// thread. Everything it touches must already be resident; no allocation
// beyond the capture structs themselves.
func (i *Interceptor) vehHandler(info *windows.EXCEPTION_POINTERS) uintptr {
	rec := info.ExceptionRecord
	code := exception.Code(rec.ExceptionCode)
	if !code.IsFatal() {
		return continueSearch
	}

	c := info.ContextRecord
	ctx := &exception.Context{
		Code:    code,
		Address: uint64(rec.ExceptionAddress),
		Registers: exception.Registers{
			PC: c.Rip,
			SP: c.Rsp,
			FP: c.Rbp,
		},
	}
	if mods, err := stackwalk.LoadedModules(); err == nil {
		if m, ok := mods.Find(ctx.Address); ok {
			ctx.FaultingModule = m.Name
		}
	}

	i.Dispatch(uint64(windows.GetCurrentThreadId()), ctx)
	return continueSearch
}
