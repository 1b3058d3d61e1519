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

// Package statsweb serves a live runtime-stats dashboard for the duration
// of a trace, enabled by --live-stats. It wires go-echarts/statsview's
// goroutine/heap panels alongside two cumulative counters of its own:
// breakpoint hits and variable changes since the trace started.
package statsweb

import (
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// Server owns the statsview manager plus PBD's two custom counters. It
// implements session.Stats, so a session.Loop can report into it directly.
type Server struct {
	mgr *statsview.Manager
	breakpointHits int64
	variableChanges int64
}

// New builds a Server bound to addr (e.g. "localhost:18081"), matching
// statsview's own Manager.Start contract.
func New(addr string) *Server {
	return &Server{
		mgr: statsview.New(viewer.WithAddr(addr)),
	}
}

// BreakpointHit implements session.Stats.
func (s *Server) BreakpointHit() { atomic.AddInt64(&s.breakpointHits, 1) }

// VariableChange implements session.Stats.
func (s *Server) VariableChange() { atomic.AddInt64(&s.variableChanges, 1) }

// Start launches the statsview dashboard and PBD's own counters endpoint in
// background goroutines; it returns immediately.
func (s *Server) Start() {
	go s.mgr.Start()
	http.HandleFunc("/pbd/counters", s.handleCounters)
}

func (s *Server) handleCounters(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "pbd_breakpoint_hits %d\npbd_variable_changes %d\n",
		atomic.LoadInt64(&s.breakpointHits), atomic.LoadInt64(&s.variableChanges))
}
