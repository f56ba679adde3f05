//go:build dev

package resources

import (
	"net/http"
	"os"
	"path/filepath"
	"runtime"
)

// staticDir locates static/ next to this source file so stylesheet edits
// show up without a rebuild.
func staticDir() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return StaticDirectoryPath
	}
	return filepath.Join(filepath.Dir(filename), "static")
}

// Handler serves static files from disk with caching disabled.
func Handler() http.Handler {
	files := http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir())))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		files.ServeHTTP(w, r)
	})
}

// StaticPath returns the URL path for a static asset.
func StaticPath(path string) string {
	return "/static/" + path
}

// Exists reports whether a static asset is available.
func Exists(path string) bool {
	_, err := os.Stat(filepath.Join(staticDir(), path))
	return err == nil
}
