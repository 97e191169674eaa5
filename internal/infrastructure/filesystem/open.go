package filesystem

import (
	"os/exec"
	"runtime"
)

// OpenFolder reveals dir in the host file manager. The child process is
// not waited on beyond reaping; its exit status is ignored.
func (l *Library) OpenFolder(dir string) error {
	name, args := openFolderArgs(runtime.GOOS, dir)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func openFolderArgs(goos, dir string) (string, []string) {
	switch goos {
	case "windows":
		return "explorer", []string{dir}
	case "darwin":
		return "open", []string{dir}
	default:
		return "xdg-open", []string{dir}
	}
}
