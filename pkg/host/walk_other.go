//go:build !windows

package host

import (
	"github.com/ezmodegames/crashmon/pkg/exception"
	"github.com/ezmodegames/crashmon/pkg/stackwalk"
)

// No live-process unwinding off Windows; shells there provide Walk.
func defaultWalk(exception.Registers) []stackwalk.Frame {
	return nil
}
