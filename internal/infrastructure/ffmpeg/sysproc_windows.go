//go:build windows

package ffmpeg

import (
	"os/exec"
	"syscall"
)

// CREATE_NO_WINDOW keeps encoder child processes from opening a console.
const createNoWindow = 0x08000000

func hideWindow(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: createNoWindow}
}
