// Package printer renders traversal events. The text sink reproduces the
// classic console layout byte for byte; json and reg are structured
// alternatives fed by the same events.
package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/joshuapare/regwalk/pkg/types"
)

// Sink receives traversal events in pre-order.
type Sink interface {
	// Key starts a visited key. Its values follow.
	Key(root types.Root, path string) error
	// Value reports one value of the current key.
	Value(v types.Value) error
	// Excluded reports a pruned child.
	Excluded(path string) error
	// Diagnostic reports a recoverable condition, one line per call.
	Diagnostic(line string) error
	// Close flushes buffered output.
	Close() error
}

// Format names an output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatReg  Format = "reg"
)

// Formats lists the accepted format names.
var Formats = []Format{FormatText, FormatJSON, FormatReg}

// ParseFormat validates a format name. The empty string selects text.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatText, nil
	}
	for _, f := range Formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or reg)", s)
}

// New returns a sink of the given format writing to w.
func New(f Format, w io.Writer) (Sink, error) {
	switch f {
	case FormatText, "":
		return NewText(w), nil
	case FormatJSON:
		return NewJSON(w), nil
	case FormatReg:
		return NewReg(w), nil
	}
	return nil, fmt.Errorf("unknown output format %q", f)
}

// DiagWriter adapts a sink to an io.Writer so collaborators that report
// through writers end up in the sink's stream. Each written line becomes one
// Diagnostic call.
func DiagWriter(s Sink) io.Writer {
	return diagWriter{s}
}

type diagWriter struct{ s Sink }

func (d diagWriter) Write(p []byte) (int, error) {
	text := strings.TrimSuffix(string(p), "\n")
	for _, line := range strings.Split(text, "\n") {
		if err := d.s.Diagnostic(line); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}
