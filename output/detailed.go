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

package output

import (
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/fatih/color"
	"github.com/pkg/term/termios"

	"github.com/Theldus/PBD/internal/source"
	"github.com/Theldus/PBD/variable"
)

// DetailedWriter is the --context N variant: every Change prints the usual
// notification line followed by up to 2N+1 lines of surrounding source,
// with the changed line bolded when the destination writer is a terminal.
type DetailedWriter struct {
	*DefaultWriter

	loader *source.Loader
	sourceFile string
	context int
	tty bool
}

// NewDetailedWriter builds a DetailedWriter over w, loading context lines
// from sourceFile. contextLines is the --context N value (0 disables
// surrounding-line output but keeps the notification line).
func NewDetailedWriter(w io.Writer, sourceFile string, contextLines int) *DetailedWriter {
	return &DetailedWriter{
		DefaultWriter: NewDefaultWriter(w),
		loader: source.NewLoader(),
		sourceFile: sourceFile,
		context: contextLines,
		tty: isTerminal(w),
	}
}

// isTerminal reports whether w is a tty, by way of the same termios ioctl
// pkg/term uses internally for raw-mode switching. The use here is purely
// geometry/tty detection for the detailed writer, not the raw keystroke
// mode term.Open offers for interactive REPLs.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	var t syscall.Termios
	return termios.Tcgetattr(f.Fd(), &t) == nil
}

func (d *DetailedWriter) Change(depth, lineNo int, c variable.Change) {
	d.DefaultWriter.Change(depth, lineNo, c)
	if d.context <= 0 || d.sourceFile == "" {
		return
	}

	lines, centre, err := d.loader.Context(d.sourceFile, lineNo, d.context)
	if err != nil || len(lines) == 0 {
		return
	}

	for i, l := range lines {
		text := fmt.Sprintf(" %s", l)
		if i == centre {
			if d.tty {
				text = color.New(color.Bold, color.FgYellow).Sprintf("> %s", l)
			} else {
				text = fmt.Sprintf("> %s", l)
			}
		}
		fmt.Fprintln(d.W, text)
	}
}

var _ Writer = (*DetailedWriter)(nil)
