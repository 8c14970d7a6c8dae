package bridge

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

// WriteFile writes data to path, creating or truncating the file.
//
// A path that does not exist yet or is not absolute is logged but the write
// is attempted anyway; whatever the OS reports comes back as an *IOError.
// A nil logger discards the messages.
func WriteFile(path string, data []byte, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if !filepath.IsAbs(path) {
		logger.Printf("warning: file path is not absolute: %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		logger.Printf("file does not exist yet: %s", path)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		ioErr := &IOError{Op: "write", Path: path, Err: err}
		logger.Printf("failed to write file: %v", ioErr)
		return ioErr
	}
	logger.Printf("wrote %d byte(s) to %s", len(data), path)
	return nil
}

// WriteFile writes data to path using the bridge's logger.
func (b *Bridge) WriteFile(path string, data []byte) error {
	return WriteFile(path, data, b.logger)
}
