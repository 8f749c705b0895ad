package mitigate

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/oarkflow/log"
)

// NewLogger builds the service logger. Output always goes to the console;
// when logDir is set, entries are duplicated into a date-stamped security
// log under it.
func NewLogger(level string, logDir string) *log.Logger {
	writers := log.MultiEntryWriter{
		&log.ConsoleWriter{ColorOutput: true},
	}
	if logDir != "" {
		writers = append(writers, &log.FileWriter{
			Filename:     filepath.Join(logDir, fmt.Sprintf("security_logs_%s.log", time.Now().Format("20060102"))),
			MaxSize:      50 << 20,
			MaxBackups:   7,
			EnsureFolder: true,
			LocalTime:    true,
		})
	}
	return &log.Logger{
		Level:      parseLogLevel(level),
		TimeFormat: "2006-01-02 15:04:05",
		Writer:     &writers,
	}
}

func parseLogLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
