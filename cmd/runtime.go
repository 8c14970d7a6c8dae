package cmd

import (
	"io"
	"log"
	"os"

	"github.com/positivepasswordbook/ppbbridge/internal/bridge"
	"github.com/positivepasswordbook/ppbbridge/internal/config"
	"github.com/positivepasswordbook/ppbbridge/internal/history"
)

// newLogger returns a stderr logger when logging is on and a silent one otherwise
func newLogger(prefix string, enabled bool) *log.Logger {
	if !enabled {
		return log.New(io.Discard, prefix, 0)
	}
	return log.New(os.Stderr, prefix, log.LstdFlags)
}

// historyStore opens the call history configured in cfg
func historyStore(cfg *config.Config) (*history.Store, error) {
	dir := cfg.HistoryDir
	if dir == "" {
		var err error
		dir, err = history.DefaultDir()
		if err != nil {
			return nil, err
		}
	}
	return history.NewStore(dir), nil
}

// newBridge creates a bridge from the configuration
func newBridge(cfg *config.Config, recordHistory bool) (*bridge.Bridge, error) {
	logger := newLogger("[bridge] ", verbose || cfg.Logging)

	opts := []bridge.Option{
		bridge.WithLogger(logger),
		bridge.WithBackendSubdir(cfg.BackendSubdir),
		bridge.WithIgnoreExitCode(cfg.IgnoreExitCode),
		bridge.WithInvoker(&bridge.ProcessInvoker{Args: cfg.BackendArgs}),
	}

	if recordHistory && cfg.HistoryEnabled {
		store, err := historyStore(cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, bridge.WithRecorder(store))
	}

	return bridge.New(opts...), nil
}
