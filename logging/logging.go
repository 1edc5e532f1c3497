// Package logging builds the go-kit loggers used throughout rowstream
package logging

import (
	"io"
	"sort"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	errors "github.com/go-sif/rowstream/errors"
)

// go-kit has no trace or fatal levels; they collapse onto debug and error
var levels = map[string]func() level.Option{
	"trace":   level.AllowDebug,
	"debug":   level.AllowDebug,
	"info":    level.AllowInfo,
	"warn":    level.AllowWarn,
	"warning": level.AllowWarn,
	"error":   level.AllowError,
	"fatal":   level.AllowError,
	"none":    level.AllowNone,
}

// ParseLevel returns the filter admitting messages at least as critical as the named level,
// such as "info" or "WARN". An unknown name is an errors.ConfigurationError.
func ParseLevel(name string) (level.Option, error) {
	allow, ok := levels[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errors.ConfigurationError{
			Name:   "log level " + name,
			Reason: "expected one of " + strings.Join(LevelNames(), ", "),
		}
	}
	return allow(), nil
}

// LevelNames returns the names accepted by ParseLevel, sorted
func LevelNames() []string {
	names := make([]string, 0, len(levels))
	for name := range levels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewLogger produces a logfmt logger writing to w, stamped with UTC timestamps,
// which drops messages the filter does not allow
func NewLogger(w io.Writer, filter level.Option) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	return level.NewFilter(logger, filter)
}

// OrNop returns logger, or a logger which discards everything if logger is nil
func OrNop(logger log.Logger) log.Logger {
	if logger == nil {
		return log.NewNopLogger()
	}
	return logger
}
