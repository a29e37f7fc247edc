// Package interceptor owns the process-wide exception handler lifecycle
// and drives the capture pipeline when a fatal fault is delivered.
//
// The handler is registered first in the vectored-exception chain, runs
// the pipeline synchronously on the faulting thread, and always lets the
// fault continue to whatever handlers the host installed. Interception is
// observation only; the host's crash behavior must be identical with and
// without it.
package interceptor

import (
	"sync"

	"github.com/apex/log"

	"github.com/ezmodegames/crashmon/pkg/exception"
)

// Handler is the capture pipeline entry point. It runs on the faulting
// thread while the process is dying, so it must not assume any lock or
// allocator in the host is usable.
type Handler func(*exception.Context)

// Interceptor installs and removes the process-wide handler. The zero
// value is not usable; construct with New.
type Interceptor struct {
	mu        sync.Mutex
	installed bool
	handler   Handler

	// vehHandle is the registration cookie on Windows, zero elsewhere.
	vehHandle uintptr
	cbOnce    sync.Once
	cb        uintptr

	// inFlight tracks faulting thread ids with a capture in progress, so
	// a fault raised by the pipeline itself is skipped instead of
	// recursing.
	inFlight sync.Map
}

// New returns an interceptor that feeds fatal faults to h.
func New(h Handler) *Interceptor {
	return &Interceptor{handler: h}
}

// Install registers the handler. Calling it again while installed is a
// no-op, so hosts with sloppy plugin lifecycles cannot double-register.
func (i *Interceptor) Install() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.installed {
		return nil
	}
	if err := i.platformInstall(); err != nil {
		return err
	}
	i.installed = true
	log.Debug("exception handler installed")
	return nil
}

// Uninstall removes the handler. Safe to call when not installed.
func (i *Interceptor) Uninstall() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.installed {
		return nil
	}
	if err := i.platformUninstall(); err != nil {
		return err
	}
	i.installed = false
	log.Debug("exception handler removed")
	return nil
}

// Installed reports whether the handler is currently registered.
func (i *Interceptor) Installed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.installed
}

// Dispatch classifies a delivered fault and, when fatal, runs the capture
// pipeline on the calling thread. The return value reports whether a
// capture ran; the fault itself always continues down the handler chain
// regardless.
func (i *Interceptor) Dispatch(threadID uint64, ctx *exception.Context) bool {
	if ctx == nil || !ctx.Code.IsFatal() {
		return false
	}
	if _, busy := i.inFlight.LoadOrStore(threadID, struct{}{}); busy {
		return false
	}
	defer i.inFlight.Delete(threadID)

	defer func() {
		// A panic in the pipeline must not alter the host's fault path.
		if r := recover(); r != nil {
			log.Errorf("capture pipeline panicked: %v", r)
		}
	}()

	if i.handler != nil {
		i.handler(ctx)
	}
	return true
}
