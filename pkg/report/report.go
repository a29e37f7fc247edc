// Package report assembles and validates crash reports before submission.
//
// The wire schema matches the collector service's intake endpoint; field
// limits mirror what the service enforces so a report rejected remotely is
// caught locally first.
package report

import (
	"fmt"
	"time"

	"github.com/ezmodegames/crashmon/pkg/exception"
	"github.com/ezmodegames/crashmon/pkg/fingerprint"
	"github.com/ezmodegames/crashmon/pkg/loadorder"
	"github.com/ezmodegames/crashmon/pkg/stackwalk"
)

// SchemaVersion is the current report schema. Version 2 added per-mod
// fileHash/fileSize/version to loadOrderJson.
const SchemaVersion = 2

// Field limits enforced by the intake endpoint.
const (
	MaxStackTrace     = 100000
	MaxGameVersion    = 50
	MaxCrashHash      = 64
	MaxExceptionField = 50
	MaxFaultingModule = 255
	MaxScriptExtender = 50
	MaxOSVersion      = 100
	MaxNotes          = 5000
	MaxPluginCount    = 10000
)

// CrashReport is the submission payload.
type CrashReport struct {
	SchemaVersion         int    `json:"schemaVersion"`
	GameID                string `json:"gameId"`
	StackTrace            string `json:"stackTrace"`
	CrashHash             string `json:"crashHash,omitempty"`
	ExceptionCode         string `json:"exceptionCode,omitempty"`
	ExceptionAddress      string `json:"exceptionAddress,omitempty"`
	FaultingModule        string `json:"faultingModule,omitempty"`
	GameVersion           string `json:"gameVersion"`
	ScriptExtenderVersion string `json:"scriptExtenderVersion,omitempty"`
	OSVersion             string `json:"osVersion,omitempty"`
	LoadOrderJSON         string `json:"loadOrderJson"`
	PluginCount           int    `json:"pluginCount"`
	CrashedAt             int64  `json:"crashedAt"`
	Notes                 string `json:"notes,omitempty"`
}

// Validate checks the report against the intake limits.
func (r *CrashReport) Validate() error {
	if r.GameID == "" {
		return fmt.Errorf("gameId is required")
	}
	if r.StackTrace == "" {
		return fmt.Errorf("stackTrace is required")
	}
	if len(r.StackTrace) > MaxStackTrace {
		return fmt.Errorf("stackTrace exceeds %d characters", MaxStackTrace)
	}
	if r.GameVersion == "" {
		return fmt.Errorf("gameVersion is required")
	}
	if len(r.GameVersion) > MaxGameVersion {
		return fmt.Errorf("gameVersion exceeds %d characters", MaxGameVersion)
	}
	if r.CrashHash != "" && len(r.CrashHash) > MaxCrashHash {
		return fmt.Errorf("crashHash exceeds %d characters", MaxCrashHash)
	}
	if len(r.ExceptionCode) > MaxExceptionField {
		return fmt.Errorf("exceptionCode exceeds %d characters", MaxExceptionField)
	}
	if len(r.ExceptionAddress) > MaxExceptionField {
		return fmt.Errorf("exceptionAddress exceeds %d characters", MaxExceptionField)
	}
	if len(r.FaultingModule) > MaxFaultingModule {
		return fmt.Errorf("faultingModule exceeds %d characters", MaxFaultingModule)
	}
	if len(r.ScriptExtenderVersion) > MaxScriptExtender {
		return fmt.Errorf("scriptExtenderVersion exceeds %d characters", MaxScriptExtender)
	}
	if len(r.OSVersion) > MaxOSVersion {
		return fmt.Errorf("osVersion exceeds %d characters", MaxOSVersion)
	}
	if len(r.Notes) > MaxNotes {
		return fmt.Errorf("notes exceeds %d characters", MaxNotes)
	}
	if r.PluginCount < 0 || r.PluginCount > MaxPluginCount {
		return fmt.Errorf("pluginCount %d out of range 0..%d", r.PluginCount, MaxPluginCount)
	}
	if r.LoadOrderJSON == "" {
		return fmt.Errorf("loadOrderJson is required")
	}
	return nil
}

// Builder assembles a CrashReport from the capture pipeline's pieces.
// Zero-value optional fields are omitted from the payload.
type Builder struct {
	GameID                string
	GameVersion           string
	ScriptExtenderVersion string
	OSVersion             string
	Notes                 string

	// Exception is the captured fault context; nil when assembling from a
	// trace that arrived as text.
	Exception *exception.Context
	// Frames is the walked stack. When empty, RawTrace is used as the
	// stackTrace body instead.
	Frames   []stackwalk.Frame
	RawTrace string
	Mods     loadorder.ModList

	// Now stubs the clock in tests; defaults to time.Now.
	Now func() time.Time
}

// Build produces a validated report. Free-text fields past their limit are
// truncated rather than rejected; structural problems return an error.
func (b *Builder) Build() (*CrashReport, error) {
	trace := b.RawTrace
	if len(b.Frames) > 0 {
		trace = stackwalk.Format(b.Frames)
	}

	loadJSON, err := b.Mods.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize load order: %w", err)
	}

	now := time.Now
	if b.Now != nil {
		now = b.Now
	}

	r := &CrashReport{
		SchemaVersion:         SchemaVersion,
		GameID:                b.GameID,
		StackTrace:            truncate(trace, MaxStackTrace),
		CrashHash:             fingerprint.Compute(b.Frames, trace),
		GameVersion:           b.GameVersion,
		ScriptExtenderVersion: b.ScriptExtenderVersion,
		OSVersion:             truncate(b.OSVersion, MaxOSVersion),
		LoadOrderJSON:         loadJSON,
		PluginCount:           len(b.Mods),
		CrashedAt:             now().UnixMilli(),
		Notes:                 truncate(b.Notes, MaxNotes),
	}
	if b.Exception != nil {
		r.ExceptionCode = b.Exception.Code.Hex()
		r.ExceptionAddress = b.Exception.AddressHex()
		r.FaultingModule = truncate(b.Exception.FaultingModule, MaxFaultingModule)
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
