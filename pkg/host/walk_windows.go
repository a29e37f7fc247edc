//go:build windows

package host

import (
	"github.com/ezmodegames/crashmon/pkg/exception"
	"github.com/ezmodegames/crashmon/pkg/stackwalk"
)

func defaultWalk(regs exception.Registers) []stackwalk.Frame {
	mods, err := stackwalk.LoadedModules()
	if err != nil {
		mods = nil
	}
	w := &stackwalk.Walker{Modules: mods, Memory: stackwalk.ProcessMemory{}}
	return w.Walk(regs)
}
