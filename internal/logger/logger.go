// This file is part of PBD.
//
// PBD is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// PBD is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with PBD. If not, see <https://www.gnu.org/licenses/>.

// Package logger is the tagged logger used throughout PBD for non-fatal
// diagnostics: dropped variables, disabled features, session bookkeeping.
// Fatal setup errors are not logged here, they are returned as curated
// errors and printed once by cmd/pbd.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	slogmulti "github.com/samber/slog-multi"
)

// entry is one tagged record, kept around so Tail can replay the most
// recent N regardless of what the slog handlers did with them.
type entry struct {
	tag string
	message string
}

var (
	mu sync.Mutex
	ring []entry
	ringCap = 500
	log *slog.Logger
)

func init() {
	Reset(os.Stderr, true)
}

// Reset rebuilds the package logger. colour enables ANSI colouring of the
// terminal handler; tests and --output redirection pass colour=false.
func Reset(w io.Writer, colour bool) {
	mu.Lock()
	ring = ring[:0]
	mu.Unlock()

	term := newTermHandler(w, colour)
	log = slog.New(slogmulti.Fanout(term, newRingHandler()))
}

// Log records a tagged message under the given tag.
func Log(tag, message string) {
	log.Info(message, slog.String("tag", tag))
}

// Logf is Log with fmt-style formatting of the message.
func Logf(tag, format string, args...interface{}) {
	Log(tag, fmt.Sprintf(format, args...))
}

// Write renders every buffered record, oldest first, as "tag: message\n" to
// w. Used to back a scrollback view and by tests.
func Write(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	for _, e := range ring {
		io.WriteString(w, e.tag+": "+e.message+"\n")
	}
}

// Tail renders the most recent n records, oldest of the selected window
// first. n larger than the number of buffered records is not an error.
func Tail(w io.Writer, n int) {
	mu.Lock()
	defer mu.Unlock()
	start := len(ring) - n
	if start < 0 {
		start = 0
	}
	for _, e := range ring[start:] {
		io.WriteString(w, e.tag+": "+e.message+"\n")
	}
}

// Clear empties the ring buffer. Exposed for tests.
func Clear() {
	mu.Lock()
	defer mu.Unlock()
	ring = ring[:0]
}
