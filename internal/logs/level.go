// Package logs re-creates the small leveled-logging library that
// daglabs-btcd's logger package builds on top of (backend + per-subsystem
// loggers writing to stdout and a rotated log file).
package logs

import "strings"

// Level is a logging severity.
type Level uint8

// Supported levels, lowest to highest severity.
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
	LevelOff
)

var levelStrings = map[Level]string{
	LevelTrace:    "TRC",
	LevelDebug:    "DBG",
	LevelInfo:     "INF",
	LevelWarn:     "WRN",
	LevelError:    "ERR",
	LevelCritical: "CRT",
	LevelOff:      "OFF",
}

func (l Level) String() string {
	if s, ok := levelStrings[l]; ok {
		return s
	}
	return "UNK"
}

// LevelFromString converts a level name to a Level, defaulting to LevelInfo
// for unrecognized names (mirrors the teacher's permissive parsing).
func LevelFromString(s string) (Level, bool) {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace, true
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	case "critical":
		return LevelCritical, true
	case "off":
		return LevelOff, true
	default:
		return LevelInfo, false
	}
}
