// Package container implements the content-addressed Container Cache
// (spec.md §4.8): rasterized HTML containers are keyed by a SHA-256 hash
// of their content and persisted as PNGs under a per-project cache
// directory, with mark-and-sweep pruning of stale entries.
package container

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	videoerrors "github.com/videocraft/compiler/internal/pkg/errors"
	"github.com/videocraft/compiler/internal/pkg/logger"
)

// Renderer renders an HTML container + CSS at an exact resolution to PNG
// bytes. Satisfied by *rasterize.Session; kept as a narrow interface here
// to avoid a dependency from container on the browser automation package.
type Renderer interface {
	RenderContainer(htmlContent, cssText string, width, height int) ([]byte, error)
}

// Cache manages one project's on-disk container PNG cache, grounded on the
// teacher's storage/filesystem manager idiom (directory management,
// existence checks before touching disk).
type Cache struct {
	dir      string
	log      logger.Logger
	renderer Renderer
	active   map[string]bool
}

// New creates a Cache rooted at dir (typically cache/containers).
func New(dir string, renderer Renderer, log logger.Logger) *Cache {
	return &Cache{dir: dir, log: log, renderer: renderer, active: map[string]bool{}}
}

// Key derives the 16-hex-char cache key for a container's rendered
// content: SHA-256(htmlContent || cssText || outputName).
func Key(htmlContent, cssText, outputName string) string {
	h := sha256.New()
	h.Write([]byte(htmlContent))
	h.Write([]byte(cssText))
	h.Write([]byte(outputName))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, fmt.Sprintf("%s.png", key))
}

// GetOrRender returns the path to a cached or freshly-rendered PNG for the
// given container content at (w, h), and marks its key active for this run.
func (c *Cache) GetOrRender(htmlContent, cssText, outputName string, w, h int) (string, error) {
	key := Key(htmlContent, cssText, outputName)
	c.MarkActive(key)

	path := c.path(key)
	if _, err := os.Stat(path); err == nil {
		c.log.WithField("key", key).Debug("container cache hit")
		return path, nil
	}

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return "", videoerrors.CacheIOError("mkdir", err)
	}

	png, err := c.renderer.RenderContainer(htmlContent, cssText, w, h)
	if err != nil {
		return "", videoerrors.CacheIOError("render", err)
	}

	if err := os.WriteFile(path, png, 0644); err != nil {
		return "", videoerrors.CacheIOError("write", err)
	}

	c.log.WithField("key", key).Debug("container cache miss, rendered")
	return path, nil
}

// MarkActive records a key as live for the current run's sweep.
func (c *Cache) MarkActive(key string) {
	c.active[key] = true
}

// ActiveKeys returns the set of keys marked active so far, for accumulation
// across multiple outputs in one run (spec.md §5 ordering guarantee).
func (c *Cache) ActiveKeys() map[string]bool {
	out := make(map[string]bool, len(c.active))
	for k := range c.active {
		out[k] = true
	}
	return out
}

// Sweep removes every on-disk cache file whose key is not present in
// activeKeys.
func (c *Cache) Sweep(activeKeys map[string]bool) error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return videoerrors.CacheIOError("sweep:readdir", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		ext := filepath.Ext(name)
		if ext != ".png" {
			continue
		}
		key := name[:len(name)-len(ext)]
		if activeKeys[key] {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, name)); err != nil {
			c.log.WithField("file", name).Warn("failed to sweep stale container cache entry")
		}
	}
	return nil
}
