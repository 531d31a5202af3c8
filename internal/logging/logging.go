// Package logging carries the diagnostic log of cpdisp. Chart output never
// goes through it.
package logging

import (
	"io"
	"log"
	"os"
)

// DebugEnabled controls whether Debug() produces output.
// Set via --debug flag or DEBUG=1 environment variable.
var DebugEnabled bool

// Setup points the standard logger at w and enables debug output when
// debug is set or DEBUG=1 is in the environment.
func Setup(w io.Writer, debug bool) {
	log.SetOutput(w)
	log.SetFlags(0)
	DebugEnabled = debug || os.Getenv("DEBUG") == "1"
	if DebugEnabled {
		log.SetFlags(log.Ltime | log.Lmicroseconds)
	}
}

// Debug logs a message only when DebugEnabled is true.
func Debug(format string, args ...any) {
	if DebugEnabled {
		log.Printf("DEBUG: "+format, args...)
	}
}

// Info logs a progress message.
func Info(format string, args ...any) {
	log.Printf("INFO: "+format, args...)
}

// Warn logs a recoverable problem.
func Warn(format string, args ...any) {
	log.Printf("WARN: "+format, args...)
}
