// Package process terminates the headless browser launched for rasterization,
// including the renderer and GPU child processes it spawns.
package process

import (
	"errors"
	"fmt"
)

// ErrInvalidPID is returned for PIDs that would target the caller's own
// process group or init.
var ErrInvalidPID = errors.New("invalid pid")

// KillTree kills a process and all of its children.
// Best-effort: the launcher's own Kill is still expected to run afterwards.
func KillTree(pid int) error {
	if pid <= 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPID, pid)
	}
	return killTree(pid)
}
