package controller

import (
	"net/http"
	"net/http/pprof"
	"strings"
)

// Pprof returns a handler exposing net/http/pprof under prefix, which must be
// the path the handler is mounted at. Named profiles (heap, goroutine, ...)
// are only resolved by pprof.Index when prefix is "/debug/pprof/".
func Pprof(prefix string) http.Handler {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	mux := http.NewServeMux()
	mux.HandleFunc(prefix, pprof.Index)
	mux.HandleFunc(prefix+"cmdline", pprof.Cmdline)
	mux.HandleFunc(prefix+"profile", pprof.Profile)
	mux.HandleFunc(prefix+"symbol", pprof.Symbol)
	mux.HandleFunc(prefix+"trace", pprof.Trace)

	return mux
}
