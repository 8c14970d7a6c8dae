//go:build windows

package bridge

const backendFileName = WindowsBackendFileName
