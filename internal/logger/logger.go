package logger

import (
	"io"
	stdlog "log"

	"github.com/rs/zerolog"
)

// New creates a configured zerolog logger. Console output is always enabled;
// a rotating file writer is added when the config asks for one.
func New(cfg FileLogConfig) (zerolog.Logger, error) {
	if cfg.MaxLogSizeMB <= 0 {
		cfg.MaxLogSizeMB = DefaultMaxLogSizeMB
	}

	factory := NewWriterFactory()

	writers := []io.Writer{factory.CreateConsoleWriter(parseFormat(cfg.LogFormat))}
	if cfg.EnableFile && cfg.LogFile != "" {
		writers = append(writers, factory.CreateFileWriter(cfg))
	}

	level := parseLevel(cfg.LogLevel)
	multiWriter := zerolog.MultiLevelWriter(writers...)
	zerologInstance := zerolog.New(multiWriter).
		Level(level).
		With().
		Timestamp().
		Logger()

	zerolog.SetGlobalLevel(level)
	stdlog.SetOutput(zerologInstance)
	stdlog.SetFlags(0)

	return zerologInstance, nil
}
