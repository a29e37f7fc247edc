package host

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/apex/log"

	"github.com/ezmodegames/crashmon/pkg/client"
	"github.com/ezmodegames/crashmon/pkg/exception"
	"github.com/ezmodegames/crashmon/pkg/interceptor"
	"github.com/ezmodegames/crashmon/pkg/loadorder"
	"github.com/ezmodegames/crashmon/pkg/report"
	"github.com/ezmodegames/crashmon/pkg/stackwalk"
	"github.com/ezmodegames/crashmon/pkg/symbolicate"
)

// Engine is the concrete Core. Construct with fields set, then hand it to
// the shell's lifecycle; everything it needs arrives through Init or its
// exported fields.
type Engine struct {
	// GameID identifies the game on the collector ("skyrimse",
	// "cyberpunk2077", ...).
	GameID string
	// OSVersion is reported as-is when set.
	OSVersion string

	// Client submits reports; nil disables submission (capture still runs
	// and logs, useful for dry runs).
	Client *client.Client
	// Resolver decorates frames with symbol names; nil skips resolution.
	Resolver *symbolicate.Resolver
	// Collector overrides the adapter's plugin list with a richer scan
	// (file hashes, directory mods). Nil falls back to Adapter.LoadOrder.
	Collector loadorder.Collector
	// Walk overrides stack unwinding; the default walks the live process
	// on Windows and yields no frames elsewhere.
	Walk func(exception.Registers) []stackwalk.Frame
	// SubmitTimeout bounds the blocking POST; 0 uses the client default.
	SubmitTimeout time.Duration

	adapter     Adapter
	interceptor *interceptor.Interceptor

	mu         sync.Mutex
	dataLoaded bool
	mods       loadorder.ModList
}

var _ Core = (*Engine)(nil)

// Init wires the adapter in and installs the exception handler.
func (e *Engine) Init(a Adapter) error {
	if a == nil {
		return fmt.Errorf("adapter is required")
	}
	e.adapter = a
	e.interceptor = interceptor.New(e.HandleCrash)
	if err := e.interceptor.Install(); err != nil {
		return fmt.Errorf("failed to install exception handler: %w", err)
	}
	log.WithField("game", e.GameID).Debug("crash engine initialized")
	return nil
}

// DataLoaded snapshots the load order. Until it is called, crashes report
// an empty list; plugin state before this point is not trustworthy.
func (e *Engine) DataLoaded() {
	mods, err := e.collectMods()
	if err != nil {
		log.WithError(err).Warn("failed to collect load order")
		mods = loadorder.ModList{}
	}

	e.mu.Lock()
	e.mods = mods
	e.dataLoaded = true
	e.mu.Unlock()

	log.WithField("plugins", len(mods)).Debug("load order snapshot taken")
}

func (e *Engine) collectMods() (loadorder.ModList, error) {
	if e.Collector != nil {
		return e.Collector.Collect()
	}
	var list loadorder.ModList
	for _, p := range e.adapter.LoadOrder() {
		entry := loadorder.ModEntry{Name: p.Name, Enabled: true}.WithIndex(p.Index)
		list = append(list, entry)
	}
	return list, nil
}

// HandleCrash runs the capture pipeline synchronously on the calling
// thread: walk, symbolicate, assemble, submit. Failures end the pipeline
// quietly; the process is crashing and there is no one to retry for.
func (e *Engine) HandleCrash(ctx *exception.Context) {
	frames := e.walk(ctx.Registers)
	if e.Resolver != nil {
		frames = e.Resolver.Symbolicate(frames)
	}

	e.mu.Lock()
	mods := e.mods
	loaded := e.dataLoaded
	e.mu.Unlock()
	if !loaded {
		mods = loadorder.ModList{}
	}

	b := &report.Builder{
		GameID:      e.GameID,
		GameVersion: e.adapter.GameVersion(),
		OSVersion:   e.OSVersion,
		Exception:   ctx,
		Frames:      frames,
		RawTrace:    ctx.String(),
		Mods:        mods,

		ScriptExtenderVersion: e.adapter.ScriptExtenderVersion(),
	}
	r, err := b.Build()
	if err != nil {
		log.WithError(err).Error("failed to assemble crash report")
		return
	}

	// the token exists before submission so the user still has a
	// reference when the response never arrives
	token, err := report.NewShareToken()
	if err != nil {
		log.WithError(err).Warn("failed to generate share token")
	}

	log.WithFields(log.Fields{
		"code":       ctx.Code.Hex(),
		"hash":       r.CrashHash,
		"shareToken": token,
	}).Info("crash captured")

	if e.Client == nil {
		return
	}

	timeout := e.SubmitTimeout
	if timeout <= 0 {
		timeout = client.DefaultTimeout
	}
	cctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ack, err := e.Client.Submit(cctx, r)
	if err != nil {
		log.WithError(err).WithField("shareToken", token).Error("failed to submit crash report")
		return
	}
	if ack.ShareToken != "" {
		// the collector's token supersedes the local one
		token = ack.ShareToken
	}
	log.WithFields(log.Fields{
		"id":         ack.ID,
		"shareToken": token,
	}).Info("crash report submitted")
}

func (e *Engine) walk(regs exception.Registers) []stackwalk.Frame {
	if e.Walk != nil {
		return e.Walk(regs)
	}
	return defaultWalk(regs)
}

// Shutdown removes the exception handler. Safe to call more than once.
func (e *Engine) Shutdown() {
	if e.interceptor == nil {
		return
	}
	if err := e.interceptor.Uninstall(); err != nil {
		log.WithError(err).Warn("failed to remove exception handler")
	}
}
