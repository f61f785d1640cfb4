// Package debug renders human readable indented dumps of structures: binary
// layouts and INI file contents.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

type TreeWriter struct {
	w      *strings.Builder
	indent string
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w:      &strings.Builder{},
		indent: "  ",
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) pad(depth int) {
	for range depth {
		tw.w.WriteString(tw.indent)
	}
}

// Line writes formatted line at requested depth.
func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.pad(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// KeyValue writes "key: value" line, value is quoted when not empty so
// leading and trailing spaces and control characters stay visible.
func (tw TreeWriter) KeyValue(depth int, key, value string) {
	tw.pad(depth)
	tw.w.WriteString(key)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
