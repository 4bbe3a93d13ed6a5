// Package logger wires the per-subsystem loggers used across the indexer,
// query engine, aggregates, HTTP surface and chain client, and rotates their
// output to disk. Grounded on daglabs-btcd/logger (same Backend/Logger split,
// same logWriter-to-stdout-and-rotator pattern), rebuilt against the
// from-scratch internal/logs package since the upstream logs library itself
// wasn't retrieved in the example pack.
package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jrick/logrotate/rotator"

	"github.com/dxpool/hns-backend/internal/logs"
)

type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	if initiated {
		os.Stdout.Write(p)
		LogRotator.Write(p)
	}
	return len(p), nil
}

type errLogWriter struct{}

func (errLogWriter) Write(p []byte) (int, error) {
	if initiated {
		os.Stdout.Write(p)
		ErrLogRotator.Write(p)
	}
	return len(p), nil
}

var (
	backendLog = logs.NewBackend([]*logs.BackendWriter{
		logs.NewAllLevelsBackendWriter(logWriter{}),
		logs.NewErrorBackendWriter(errLogWriter{}),
	})

	// LogRotator rotates the all-levels log file. Must be initialized via
	// InitLogRotators before any subsystem logger is used for output to hit
	// disk; until then, messages are dropped rather than buffered.
	LogRotator *rotator.Rotator
	// ErrLogRotator rotates the errors-and-above log file.
	ErrLogRotator *rotator.Rotator

	initiated = false
)

// Subsystem tags, one per component in SPEC_FULL.md §4.
const (
	SubsystemIndexer     = "INDX"
	SubsystemQueryEngine = "QURY"
	SubsystemAggregates  = "AGGR"
	SubsystemHTTP        = "HTTP"
	SubsystemChainClient = "CHCL"
	SubsystemStore       = "STOR"
	SubsystemMain        = "MAIN"
)

var subsystemLoggers = map[string]*logs.Logger{
	SubsystemIndexer:     backendLog.Logger(SubsystemIndexer),
	SubsystemQueryEngine: backendLog.Logger(SubsystemQueryEngine),
	SubsystemAggregates:  backendLog.Logger(SubsystemAggregates),
	SubsystemHTTP:        backendLog.Logger(SubsystemHTTP),
	SubsystemChainClient: backendLog.Logger(SubsystemChainClient),
	SubsystemStore:       backendLog.Logger(SubsystemStore),
	SubsystemMain:        backendLog.Logger(SubsystemMain),
}

// Get returns the logger for tag, creating a default one bound to the shared
// backend if tag is unrecognized.
func Get(tag string) *logs.Logger {
	if lg, ok := subsystemLoggers[tag]; ok {
		return lg
	}
	lg := backendLog.Logger(tag)
	subsystemLoggers[tag] = lg
	return lg
}

// BackendLog is the shared backend behind every subsystem logger.
// panics.HandlePanic reaches the same backend through log.Backend().
var BackendLog = backendLog

// InitLogRotators must be called once during bootstrap before any logger
// output is expected to reach disk.
func InitLogRotators(logFile, errLogFile string) error {
	var err error
	LogRotator, err = initLogRotator(logFile)
	if err != nil {
		return err
	}
	ErrLogRotator, err = initLogRotator(errLogFile)
	if err != nil {
		return err
	}
	initiated = true
	return nil
}

func initLogRotator(logFile string) (*rotator.Rotator, error) {
	logDir, _ := filepath.Split(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to create file rotator: %w", err)
	}
	return r, nil
}

// SetLogLevel sets the logging level for the given subsystem tag.
func SetLogLevel(subsystemTag, logLevel string) {
	lg, ok := subsystemLoggers[subsystemTag]
	if !ok {
		return
	}
	level, _ := logs.LevelFromString(logLevel)
	lg.SetLevel(level)
}

// SetLogLevels sets every subsystem logger to logLevel.
func SetLogLevels(logLevel string) {
	for tag := range subsystemLoggers {
		SetLogLevel(tag, logLevel)
	}
}
