package ui

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed assets
var Assets embed.FS

// GetFS returns the UI filesystem
func GetFS() fs.FS {
	return Assets
}

// AssetHandler serves the embedded web UI. index.html is never cached so a
// server upgrade is picked up on reload.
func AssetHandler() http.HandlerFunc {
	assetsFS, _ := fs.Sub(Assets, "assets")

	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" || r.URL.Path == "" {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Set("Expires", "0")
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			content, err := fs.ReadFile(assetsFS, "index.html")
			if err != nil {
				http.Error(w, "Not Found", http.StatusNotFound)
				return
			}
			w.Write(content)
			return
		}

		path := strings.TrimPrefix(r.URL.Path, "/assets/")

		if ext := strings.LastIndex(path, "."); ext > 0 {
			switch path[ext:] {
			case ".css":
				w.Header().Set("Content-Type", "text/css; charset=utf-8")
			case ".js":
				w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
			}
		}

		content, err := fs.ReadFile(assetsFS, strings.TrimPrefix(path, "/"))
		if err != nil {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		w.Write(content)
	}
}
