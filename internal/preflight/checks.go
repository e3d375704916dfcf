package preflight

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"pagesmith/internal/deps"
	"pagesmith/internal/upload"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckDirectoryReadable verifies that the directory exists and can be listed.
func CheckDirectoryReadable(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.X_OK, "read ok")
}

func checkDirectory(name, path string, mode uint32, okDetail string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, okDetail)}
}

// CheckHelper verifies that the upload helper resolves to an executable.
func CheckHelper(helper string) Result {
	status := deps.CheckBinary(deps.Requirement{
		Name:        "Upload helper",
		Command:     helper,
		Description: "Uploads inbox images and prints their URL",
	})
	if !status.Available {
		return Result{Name: status.Name, Detail: status.Detail}
	}
	return Result{Name: status.Name, Passed: true, Detail: status.Path}
}

// CheckClipboard reports whether URLs can be placed on the system clipboard.
func CheckClipboard() Result {
	const name = "Clipboard"
	if err := upload.ClipboardAvailable(); err != nil {
		return Result{Name: name, Optional: true, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Optional: true, Detail: "available"}
}
