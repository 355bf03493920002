// Package applog is a thin, timestamped wrapper over the standard log
// package. It follows the teacher's log.SetOutput(os.Stdout) +
// log.SetFlags(log.Ltime) convention (original_source/http.py's embedded
// Go source) and felipecampolina-FCReverseProxy/internal/log's choice to
// build a small first-party wrapper rather than pull in a structured
// logging library — this module does the same (see DESIGN.md).
package applog

import (
	"log"
	"os"
)

var std = log.New(os.Stdout, "", log.Ltime)

// Infof logs a line at the default (informational) level.
func Infof(format string, args ...any) {
	std.Printf(format, args...)
}

// Errorf logs a line flagged as an error; the format string is expected
// to read naturally with an "error:" style prefix.
func Errorf(format string, args ...any) {
	std.Printf("error: "+format, args...)
}
