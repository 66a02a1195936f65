// Package site serves the embedded game page, its assets and the admin page.
package site

import (
	"context"
	"net/http"
)

// Option customizes Register.
type Option func(*options)

type options struct {
	adminGuard func(http.Handler) http.Handler
}

// WithAdminGuard wraps the admin page, typically with basic auth.
func WithAdminGuard(guard func(http.Handler) http.Handler) Option {
	return func(o *options) { o.adminGuard = guard }
}

// Register attaches the site routes to mux:
//
//	GET /          -> game page
//	GET /static/*  -> scripts and styles
//	GET /admin     -> admin page (guarded)
func Register(_ context.Context, mux *http.ServeMux, opts ...Option) {
	if mux == nil {
		panic("mux is nil")
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	mux.Handle("GET /{$}", page("index.html"))
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(assets())))

	var admin http.Handler = page("admin.html")
	if o.adminGuard != nil {
		admin = o.adminGuard(admin)
	}
	mux.Handle("GET /admin", admin)
}

// page serves one embedded HTML file.
func page(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, FS(), name)
	})
}
