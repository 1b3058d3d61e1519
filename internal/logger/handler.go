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

package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
)

// termHandler writes "tag: message" lines to a terminal, colouring the tag
// the way the default output variant colours scope labels.
type termHandler struct {
	w io.Writer
	colour bool
}

func newTermHandler(w io.Writer, colour bool) slog.Handler {
	return &termHandler{w: w, colour: colour}
}

func (h *termHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *termHandler) Handle(_ context.Context, r slog.Record) error {
	tag := "log"
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "tag" {
			tag = a.Value.String()
		}
		return true
	})

	if h.colour {
		_, err := fmt.Fprintf(h.w, "%s: %s\n", color.CyanString(tag), r.Message)
		return err
	}
	_, err := fmt.Fprintf(h.w, "%s: %s\n", tag, r.Message)
	return err
}

func (h *termHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *termHandler) WithGroup(name string) slog.Handler { return h }

// ringHandler appends every record to the package-level ring buffer so Tail
// and Write can replay history independently of the terminal handler.
type ringHandler struct{}

func newRingHandler() slog.Handler { return ringHandler{} }

func (ringHandler) Enabled(context.Context, slog.Level) bool { return true }

func (ringHandler) Handle(_ context.Context, r slog.Record) error {
	tag := "log"
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "tag" {
			tag = a.Value.String()
		}
		return true
	})

	mu.Lock()
	defer mu.Unlock()
	ring = append(ring, entry{tag: tag, message: r.Message})
	if len(ring) > ringCap {
		ring = ring[len(ring)-ringCap:]
	}
	return nil
}

func (h ringHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h ringHandler) WithGroup(name string) slog.Handler { return h }
