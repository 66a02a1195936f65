package site

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/*.html static/assets/*
var staticFS embed.FS

// FS returns the embedded pages rooted at static/.
func FS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// Only reachable if the embed directive changes.
		return staticFS
	}
	return sub
}

// assets returns an http.FileSystem over static/assets.
func assets() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static/assets")
	if err != nil {
		return http.FS(staticFS)
	}
	return http.FS(sub)
}
