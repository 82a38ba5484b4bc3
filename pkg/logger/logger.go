// Package logger configures the process-wide zerolog logger.
package logger

import (
	"io"
	"os"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options configures Init.
type Options struct {
	Level string // zerolog level name; empty means info
	File  string // Optional rotating JSON log file
}

// Rotation limits for the log file.
const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 28
)

// Init points log.Logger at a console writer on stderr, plus a rotating
// file when opts.File is set, and returns the logger. Stdout stays free
// for the MCP transport. The returned closer flushes and closes the file.
func Init(opts Options) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		var err error
		level, err = zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Nop(), nil, err
		}
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var (
		out    io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
		closer io.Closer = nopCloser{}
	)
	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
		}
		out = zerolog.MultiLevelWriter(out, file)
		closer = file
	}

	log.Logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
	return log.Logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
