package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// WriterFactory creates log writers for the configured outputs
type WriterFactory struct{}

// NewWriterFactory creates a new writer factory
func NewWriterFactory() *WriterFactory {
	return &WriterFactory{}
}

// CreateConsoleWriter creates a stderr writer in the requested format
func (wf *WriterFactory) CreateConsoleWriter(format LogFormat) io.Writer {
	if format == FormatJSON {
		return os.Stderr
	}
	return zerolog.ConsoleWriter{Out: os.Stderr, NoColor: format == FormatText}
}

// CreateFileWriter creates a rotating file writer
func (wf *WriterFactory) CreateFileWriter(cfg FileLogConfig) io.Writer {
	finalPath := cfg.LogFile
	if err := os.MkdirAll(filepath.Dir(finalPath), 0755); err != nil {
		// If directory creation fails, lumberjack will surface the open error
		finalPath = filepath.Base(cfg.LogFile)
	}

	rotator := &lumberjack.Logger{
		Filename:   finalPath,
		MaxSize:    cfg.MaxLogSizeMB,
		LocalTime:  true,
		MaxBackups: cfg.MaxLogBackups,
	}

	if parseFormat(cfg.LogFormat) == FormatJSON {
		return rotator
	}
	return zerolog.ConsoleWriter{Out: rotator, NoColor: true}
}
