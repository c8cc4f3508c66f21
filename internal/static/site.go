// Package static serves the built site (index.html, 404.html, hashed assets
// under _astro/) from a directory on disk.
package static

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"signup-be/internal/render"
)

const (
	// AssetsPrefix is where the site builder writes content-hashed files
	AssetsPrefix = "/_astro/"

	immutableCache  = "public, max-age=31536000, immutable"
	revalidateCache = "public, max-age=0, must-revalidate"
	notFoundPage    = "404.html"
	msgNotFound     = "Not found"
)

// ErrNoSite is returned when the site directory does not exist
var ErrNoSite = errors.New("static site directory not found")

// Site serves files from a built site directory
type Site struct {
	root fs.FS
}

// NewSite opens dir. It returns ErrNoSite if dir is missing or not a directory.
func NewSite(dir string) (*Site, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, ErrNoSite
	}
	return &Site{root: os.DirFS(dir)}, nil
}

// NewSiteFS serves files from an fs.FS
func NewSiteFS(root fs.FS) *Site {
	return &Site{root: root}
}

// Handler is registered as the router's NoRoute handler so API routes win
func (s *Site) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			render.Error(c, http.StatusNotFound, msgNotFound)
			return
		}

		name, ok := s.resolve(c.Request.URL.Path)
		if !ok {
			s.notFound(c)
			return
		}

		if err := s.serveFile(c, name); err != nil {
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("file", name).Msg("failed to serve static file")
			render.Error(c, http.StatusInternalServerError, render.MsgInternalError)
		}
	}
}

func (s *Site) serveFile(c *gin.Context, name string) error {
	f, err := s.root.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	content, ok := f.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(f)
		if err != nil {
			return err
		}
		content = bytes.NewReader(data)
	}

	if strings.HasPrefix(c.Request.URL.Path, AssetsPrefix) {
		c.Header("Cache-Control", immutableCache)
	} else {
		c.Header("Cache-Control", revalidateCache)
	}
	http.ServeContent(c.Writer, c.Request, name, info.ModTime(), content)
	return nil
}

// resolve maps a URL path to a regular file: "/" and "/about/" serve the
// directory's index.html, "/about" falls back to "/about.html"
func (s *Site) resolve(urlPath string) (string, bool) {
	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" {
		name = "."
	}

	candidates := []string{name}
	if name == "." {
		candidates = []string{"index.html"}
	} else {
		candidates = append(candidates, path.Join(name, "index.html"), name+".html")
	}

	for _, candidate := range candidates {
		info, err := fs.Stat(s.root, candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
	}
	return "", false
}

func (s *Site) notFound(c *gin.Context) {
	page, err := fs.ReadFile(s.root, notFoundPage)
	if err != nil {
		render.Error(c, http.StatusNotFound, msgNotFound)
		return
	}
	c.Header("Cache-Control", revalidateCache)
	c.Data(http.StatusNotFound, "text/html; charset=utf-8", page)
	c.Abort()
}
