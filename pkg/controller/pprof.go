package controller

import (
	"net/http"
	"net/http/pprof"
)

// PprofPrefix is where the profiling handlers are served.
const PprofPrefix = "/debug/pprof/"

// RegisterPprof adds the net/http/pprof handlers under PprofPrefix. Named
// profiles (heap, goroutine, ...) are served by the index handler.
func RegisterPprof(mux *http.ServeMux) {
	mux.HandleFunc(PprofPrefix, pprof.Index)
	mux.HandleFunc(PprofPrefix+"cmdline", pprof.Cmdline)
	mux.HandleFunc(PprofPrefix+"profile", pprof.Profile)
	mux.HandleFunc(PprofPrefix+"symbol", pprof.Symbol)
	mux.HandleFunc(PprofPrefix+"trace", pprof.Trace)
}
