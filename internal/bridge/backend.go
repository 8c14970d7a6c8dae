package bridge

import "path/filepath"

const (
	// WindowsBackendFileName is the backend executable shipped for Windows.
	WindowsBackendFileName = "ppb_backend_win.exe"
	// LinuxBackendFileName is the backend executable shipped for Unix-like systems.
	LinuxBackendFileName = "ppb_backend_linux.bin"

	// DefaultBackendSubdir is where the backend lives relative to the base directory.
	DefaultBackendSubdir = "addons/ppb_backend"
)

// BackendFileName returns the backend executable name for the build target.
func BackendFileName() string {
	return backendFileName
}

// BackendPath returns the full path of the backend executable under baseDir.
// An empty subdir means DefaultBackendSubdir.
func BackendPath(baseDir, subdir string) string {
	if subdir == "" {
		subdir = DefaultBackendSubdir
	}
	return filepath.Join(baseDir, filepath.FromSlash(subdir), BackendFileName())
}
