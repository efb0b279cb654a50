package handlers

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

//go:embed pages/*
var embeddedPages embed.FS

// PageHandler serves the web client behind the route guard
//
// Assets come from webRoot when it exists, otherwise from the embedded placeholder.
// Unknown paths get index.html so client-side routing works.
type PageHandler struct {
	fileSystem http.FileSystem
	fileServer http.Handler
	logger     *zap.Logger
}

// NewPageHandler creates a new page handler
func NewPageHandler(webRoot string, logger *zap.Logger) *PageHandler {
	var fileSystem http.FileSystem

	if webRoot != "" {
		if info, err := os.Stat(webRoot); err == nil && info.IsDir() {
			fileSystem = http.Dir(webRoot)
		} else {
			logger.Warn("web root not found, serving embedded pages", zap.String("web_root", webRoot))
		}
	}

	if fileSystem == nil {
		sub, err := fs.Sub(embeddedPages, "pages")
		if err != nil {
			panic(fmt.Sprintf("handlers: failed to load embedded pages: %v", err))
		}
		fileSystem = http.FS(sub)
	}

	return &PageHandler{
		fileSystem: fileSystem,
		fileServer: http.FileServer(fileSystem),
		logger:     logger,
	}
}

// RegisterRoutes registers the catch-all page route
func (h *PageHandler) RegisterRoutes(r chi.Router) {
	r.Get("/*", h.ServeHTTP)
	r.Head("/*", h.ServeHTTP)
}

// ServeHTTP serves a static asset or falls back to index.html
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache, must-revalidate")

	upath := path.Clean(r.URL.Path)
	if upath == "." || upath == "/" {
		h.fileServer.ServeHTTP(w, r)
		return
	}

	f, err := h.fileSystem.Open(upath)
	if err != nil {
		r.URL.Path = "/"
		h.fileServer.ServeHTTP(w, r)
		return
	}
	f.Close()

	h.fileServer.ServeHTTP(w, r)
}
