package log

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LevelEnv overrides the level passed to InitLogger.
const LevelEnv = "REDIS_COMMANDS_LOG_LEVEL"

// Logger is the process logger. It discards everything until InitLogger runs.
var Logger = zap.NewNop()

// InitLogger replaces Logger with a production logger writing to stderr.
// Level names are colored when stderr is a terminal.
func InitLogger(level string) error {
	if env := os.Getenv(LevelEnv); env != "" {
		level = env
	}
	logger, err := NewLogger(level, isatty.IsTerminal(os.Stderr.Fd()))
	if err != nil {
		return err
	}
	Logger = logger
	return nil
}

// NewLogger builds a logger at the given level ("debug", "info", ...).
// An empty level means info.
func NewLogger(level string, color bool) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("log level %q: %w", level, err)
		}
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.Encoding = "console"
	config.Sampling = nil
	config.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format(time.RFC3339))
	}
	if color {
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return config.Build()
}
