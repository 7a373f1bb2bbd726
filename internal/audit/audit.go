// Package audit owns the append-only webhook payload log. It is a debugging
// side channel: nothing in the request path depends on it succeeding.
package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.Mutex
	loggers = map[string]*zap.Logger{}
)

// Init returns the process-wide audit logger for path, creating it (and the
// parent directory) on first use. Calling Init again with the same path
// returns the existing logger instead of attaching a second sink to the
// same file.
func Init(path string) (*zap.Logger, error) {
	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[path]; ok {
		return l, nil
	}

	l, err := open(path)
	if err != nil {
		return nil, err
	}
	loggers[path] = l
	return l, nil
}

func open(path string) (*zap.Logger, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("audit: create log dir: %w", err)
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{"stderr"}

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("audit: open %s: %w", path, err)
	}
	return l, nil
}
