//go:build !windows

package bridge

const backendFileName = LinuxBackendFileName
