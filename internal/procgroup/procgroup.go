// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package procgroup runs helper binaries in their own process group so a
// cancelled context reaps the whole tree, not only the leader.
package procgroup

import (
	"os/exec"
	"time"
)

// Bind configures cmd to start as a process group leader and to kill the
// whole group when its context is cancelled. waitDelay bounds how long Wait
// keeps pipes open after cancellation.
func Bind(cmd *exec.Cmd, waitDelay time.Duration) {
	Set(cmd)
	cmd.Cancel = func() error {
		return KillGroup(cmd)
	}
	if waitDelay > 0 {
		cmd.WaitDelay = waitDelay
	}
}
