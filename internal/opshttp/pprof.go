package opshttp

import (
	"net/http"
	"net/http/pprof"
)

// RegisterPprof wires the stdlib pprof handlers onto mux. The default
// net/http/pprof registrations go to http.DefaultServeMux, which we never
// serve, so they are re-registered explicitly.
func RegisterPprof(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
}
