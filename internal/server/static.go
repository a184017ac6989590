package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

var apiPrefixes = []string{"/projects", "/tasks", "/auth", "/login", "/health", "/swagger"}

func isAPIPath(p string) bool {
	for _, prefix := range apiPrefixes {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}

// mountStatic serves the compiled board from STATIC_DIR, falling back to
// index.html for client-side routes.
func (s *Server) mountStatic() {
	notFound := func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	}

	dir := s.Config.StaticDir
	if dir == "" {
		s.Engine.NoRoute(notFound)
		return
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		s.logger.Debug("static directory missing; API only mode", "path", dir)
		s.Engine.NoRoute(notFound)
		return
	}

	indexPath := filepath.Join(dir, "index.html")
	if _, err := os.Stat(indexPath); err != nil {
		s.logger.Warn("index.html not found", "path", indexPath, "error", err)
		s.Engine.NoRoute(notFound)
		return
	}
	s.logger.Info("📦 Serving static files", "path", dir)

	assetsDir := filepath.Join(dir, "assets")
	if _, err := os.Stat(assetsDir); err == nil {
		s.Engine.StaticFS("/assets", gin.Dir(assetsDir, false))
	}

	s.Engine.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			notFound(c)
			return
		}
		if isAPIPath(c.Request.URL.Path) {
			notFound(c)
			return
		}

		// path.Clean on a rooted path cannot climb out of dir.
		rel := path.Clean("/" + c.Request.URL.Path)
		candidate := filepath.Join(dir, filepath.FromSlash(rel))
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			c.File(candidate)
			return
		}
		c.File(indexPath)
	})
}
