//go:build !dev

package resources

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var embedded embed.FS

// staticFS is the embedded static/ directory.
var staticFS = func() fs.FS {
	sub, err := fs.Sub(embedded, "static")
	if err != nil {
		panic(err)
	}
	return sub
}()

// Handler serves the embedded static files. Assets are versioned with the
// binary, so they are cached for a day.
func Handler() http.Handler {
	files := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		files.ServeHTTP(w, r)
	})
}

// StaticPath returns the URL path for a static asset.
func StaticPath(path string) string {
	return "/static/" + path
}

// Exists reports whether a static asset is available.
func Exists(path string) bool {
	_, err := fs.Stat(staticFS, path)
	return err == nil
}
