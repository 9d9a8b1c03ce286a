package logging

import (
	"log"
	"os"
)

// New creates the process logger. A single-shot CLI has exactly one
// diagnostic channel: line-oriented text on stderr.
func New() *log.Logger {
	return log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)
}
