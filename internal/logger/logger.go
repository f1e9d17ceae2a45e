// Package logger holds the process-wide zerolog logger.
//
// Call Init once from the composition root; everything else uses Get().
package logger

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	log  zerolog.Logger
	once sync.Once
)

// Init configures the global logger. An empty file path logs to stderr.
// Unknown levels fall back to info.
func Init(level, file string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	out := os.Stderr
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		out = f
	}

	once.Do(func() {})
	log = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	return nil
}

// Get returns the global logger. Usable before Init; defaults to stderr at
// info level. The pointer lets event chains hang off the call directly.
func Get() *zerolog.Logger {
	once.Do(func() {
		log = zerolog.New(os.Stderr).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	})
	return &log
}
