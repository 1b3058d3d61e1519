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

// Package source is the minimal source-file loader the detailed output
// variant uses to print a few lines of context around a changed line. It
// is a concrete, intentionally small stand-in for a syntax-highlighting
// source viewer rather than a full implementation of one.
package source

import (
	"bufio"
	"os"
	"sync"
)

// Loader caches a source file's lines on first access so repeated context
// lookups during a long trace don't re-read the file from disk.
type Loader struct {
	mu sync.Mutex
	cache map[string][]string
}

func NewLoader() *Loader {
	return &Loader{cache: make(map[string][]string)}
}

func (l *Loader) lines(path string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ls, ok := l.cache[path]; ok {
		return ls, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ls []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		ls = append(ls, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	l.cache[path] = ls
	return ls, nil
}

// Context returns up to 2*n+1 lines centred on the 1-based line lineNo
// (clamped to the file's bounds), plus the index within the returned slice
// of lineNo itself.
func (l *Loader) Context(path string, lineNo, n int) (lines []string, centre int, err error) {
	all, err := l.lines(path)
	if err != nil {
		return nil, 0, err
	}

	lo := lineNo - 1 - n
	if lo < 0 {
		lo = 0
	}
	hi := lineNo - 1 + n + 1
	if hi > len(all) {
		hi = len(all)
	}
	if lo >= hi {
		return nil, 0, nil
	}

	return all[lo:hi], lineNo - 1 - lo, nil
}
