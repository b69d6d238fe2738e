package internal

import (
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
)

// StaticPrefixes are the URL prefixes served straight from the public directory.
// Interceptors that guard pages skip them.
var StaticPrefixes = []string{"/css/", "/js/", "/assets/", "/favicon.ico"}

// IsStaticPath reports whether p is served as a static asset.
func IsStaticPath(p string) bool {
	for _, prefix := range StaticPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// mountStatic registers the asset routes on r.
func mountStatic(r chi.Router, publicDir string) {
	fsys := os.DirFS(publicDir)
	r.Get("/css/*", serveAsset(fsys, "css", "text/css; charset=utf-8"))
	r.Get("/js/*", serveAsset(fsys, "js", "application/javascript"))
	r.Get("/assets/*", serveAsset(fsys, "assets", ""))
	r.Get("/favicon.ico", func(w http.ResponseWriter, req *http.Request) {
		sendAsset(w, req, fsys, "favicon.ico", "image/x-icon")
	})
}

// serveAsset serves files below sub. An empty contentType is derived from
// the file extension, falling back to application/octet-stream.
func serveAsset(fsys fs.FS, sub, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "*")
		if name == "" || !fs.ValidPath(name) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		ct := contentType
		if ct == "" {
			ct = mime.TypeByExtension(path.Ext(name))
			if ct == "" {
				ct = "application/octet-stream"
			}
		}
		sendAsset(w, req, fsys, path.Join(sub, name), ct)
	}
}

func sendAsset(w http.ResponseWriter, req *http.Request, fsys fs.FS, name, contentType string) {
	info, err := fs.Stat(fsys, name)
	if err != nil || info.IsDir() {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	f, err := fsys.Open(name)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	defer f.Close()

	rs, ok := f.(io.ReadSeeker)
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, req, info.Name(), info.ModTime(), rs)
}
