package handler

import (
	"net/http"
	"strings"
)

// StaticHandler serves the browser bundle from a directory. The root path
// serves index.html and the generated data files are never cached.
type StaticHandler struct {
	root  http.Dir
	files http.Handler
}

func NewStaticHandler(dir string) *StaticHandler {
	root := http.Dir(dir)
	return &StaticHandler{
		root:  root,
		files: http.FileServer(root),
	}
}

func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/data/") {
		w.Header().Set("Cache-Control", "no-cache")
	}

	if r.URL.Path != "/" {
		h.files.ServeHTTP(w, r)
		return
	}

	f, err := h.root.Open("/index.html")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, "index.html", info.ModTime(), f)
}
