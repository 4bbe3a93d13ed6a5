// Package panics provides panic-safe goroutine and timer wrappers, adapted
// from daglabs-btcd/util/panics. Long-running goroutines in the indexer and
// HTTP bootstrap are started through GoroutineWrapperFunc, and the
// aggregates refresher's timer through AfterFuncWrapperFunc, so a panic is
// logged with a stack trace and turned into a clean process exit instead of
// a silent goroutine death.
package panics

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/dxpool/hns-backend/internal/logs"
)

const flushTimeout = 5 * time.Second

// flushAndExit runs log, a logging closure that must close done when it has
// finished writing, giving it flushTimeout to complete before the process
// exits regardless. HandlePanic and Exit both reduce to this shape: log
// something critical, flush the backend, exit 1.
func flushAndExit(timeoutMsg string, log func(done chan<- struct{})) {
	done := make(chan struct{})
	go log(done)

	select {
	case <-time.After(flushTimeout):
		fmt.Fprintln(os.Stderr, timeoutMsg)
	case <-done:
	}
	os.Exit(1)
}

// HandlePanic recovers a panic, logs it with both the recovering and (if
// known) originating goroutine's stack trace, then exits the process.
func HandlePanic(log *logs.Logger, goroutineStackTrace []byte) {
	err := recover()
	if err == nil {
		return
	}

	flushAndExit("Couldn't handle a fatal error. Exiting...", func(done chan<- struct{}) {
		log.Criticalf("Fatal error: %+v", err)
		if goroutineStackTrace != nil {
			log.Criticalf("Goroutine stack trace: %s", goroutineStackTrace)
		}
		log.Criticalf("Stack trace: %s", debug.Stack())
		log.Backend().Close()
		close(done)
	})
}

// GoroutineWrapperFunc returns a function that runs its argument in a new
// goroutine, recovering and logging any panic through HandlePanic.
func GoroutineWrapperFunc(log *logs.Logger) func(func()) {
	return func(f func()) {
		stackTrace := debug.Stack()
		go func() {
			defer HandlePanic(log, stackTrace)
			f()
		}()
	}
}

// AfterFuncWrapperFunc returns a time.AfterFunc wrapper that handles panics
// the same way, used by the aggregates refresher's periodic timer.
func AfterFuncWrapperFunc(log *logs.Logger) func(d time.Duration, f func()) *time.Timer {
	return func(d time.Duration, f func()) *time.Timer {
		stackTrace := debug.Stack()
		return time.AfterFunc(d, func() {
			defer HandlePanic(log, stackTrace)
			f()
		})
	}
}

// Exit logs reason, waits for it to flush, and exits the process, for
// controlled shutdowns that are not a panic. Nothing in this repository
// calls it; the bootstrap in cmd/hnsexplorerd exits through os.Exit.
func Exit(log *logs.Logger, reason string) {
	flushAndExit("Couldn't exit gracefully.", func(done chan<- struct{}) {
		log.Criticalf("Exiting: %s", reason)
		log.Backend().Close()
		close(done)
	})
}
