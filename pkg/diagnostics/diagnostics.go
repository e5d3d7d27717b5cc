// Package diagnostics carries the original Python implementation's
// `print(f"[tag] ...")` convention into Go's log.Printf idiom. It is the
// one place in the module that touches the process-wide logger, so
// every worker's stderr output goes through one log.Logger instance,
// which serializes concurrent writes, instead of ad hoc fmt.Fprintf calls.
package diagnostics

import (
	"log"
	"os"
)

var logger = log.New(os.Stderr, "", 0)

// Warnf logs a page- or app-scoped failure that spec.md §7 says must
// degrade rather than abort: tag is the originating component
// ("pipeline", "taint", ...), matching the original's bracketed prefix.
func Warnf(tag, format string, args ...interface{}) {
	logger.Printf("["+tag+"] "+format, args...)
}
