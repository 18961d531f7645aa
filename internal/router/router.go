package router

import (
	"net/http"
	"strings"
)

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Router is a thin wrapper over http.ServeMux that supports middleware
// chains and nested sub-routers.
type Router struct {
	mux        *http.ServeMux
	middleware []Middleware
}

func New() *Router {
	return &Router{
		mux: http.NewServeMux(),
	}
}

func (rt *Router) Use(mw ...Middleware) {
	rt.middleware = append(rt.middleware, mw...)
}

func (rt *Router) Handle(pattern string, handler http.Handler) {
	rt.mux.Handle(normalize(pattern), handler)
}

func (rt *Router) HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	rt.mux.HandleFunc(normalize(pattern), handler)
}

// SubRouter mounts a nested router under prefix. The sub-router inherits
// the middleware registered on the parent so far.
func (rt *Router) SubRouter(prefix string) *Router {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		panic("empty subroute prefix")
	}

	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}

	s := &Router{
		mux:        http.NewServeMux(),
		middleware: rt.middleware,
	}

	rt.mux.Handle(prefix+"/", http.StripPrefix(prefix, s))
	return s
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var h http.Handler = rt.mux
	for i := len(rt.middleware) - 1; i >= 0; i-- {
		h = rt.middleware[i](h)
	}

	h.ServeHTTP(w, r)
}

func normalize(pattern string) string {
	// Patterns may carry a method prefix, e.g. "POST /login".
	method, path, found := strings.Cut(pattern, " ")
	if !found {
		path = method
		method = ""
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	if method == "" {
		return path
	}

	return method + " " + path
}
