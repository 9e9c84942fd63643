// Package engine orchestrates a theme scan: settings loading, file
// discovery, template-to-stylesheet transformation and structural
// extraction, ending in an atomic registry swap.
package engine

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"

	"liquidvars/config"
	"liquidvars/extract"
	"liquidvars/liquid"
	"liquidvars/model"
	"liquidvars/settings"
)

// Engine owns the current variable registry. Scans rebuild the registry
// from scratch and publish it with a pointer swap, so concurrent readers
// never observe a partially built scan.
type Engine struct {
	cfg      config.Config
	registry atomic.Pointer[extract.Registry]

	// Serializes scans; readers are lock-free via the atomic pointer.
	scanMu sync.Mutex
}

// New creates an engine with an empty registry.
func New(cfg config.Config) *Engine {
	e := &Engine{cfg: cfg}
	e.registry.Store(extract.NewRegistry())
	return e
}

// Config returns the engine's configuration.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Rescan runs one full scan and returns the number of extracted variables.
// Settings and all lookup caches are rebuilt from the theme's documents, so
// nothing memoized from a previous scan can leak into this one. A missing
// or unreadable settings document degrades to CSS-only extraction.
func (e *Engine) Rescan() (int, error) {
	e.scanMu.Lock()
	defer e.scanMu.Unlock()

	store, err := settings.LoadTheme(e.cfg.ThemeDir)
	if err != nil {
		log.Printf("[engine] settings unavailable, scanning CSS only: %v", err)
	}
	renderer := liquid.NewRenderer(store)

	files, err := e.discoverFiles()
	if err != nil {
		return 0, err
	}

	reg := extract.NewRegistry()
	for _, relPath := range files {
		raw, err := os.ReadFile(filepath.Join(e.cfg.ThemeDir, relPath))
		if err != nil {
			log.Printf("[engine] skip %s: %v", relPath, err)
			continue
		}
		e.scanFile(relPath, string(raw), renderer, reg)
	}

	e.registry.Store(reg)
	return reg.Len(), nil
}

func (e *Engine) scanFile(relPath, source string, renderer *liquid.Renderer, reg *extract.Registry) {
	var regions []string
	if strings.HasSuffix(relPath, ".css") {
		// Plain stylesheets are one region; they may still carry Liquid
		// when shipped as .css.liquid assets renamed on export.
		regions = []string{source}
	} else {
		regions = extract.FindStyleRegions(source)
	}

	for _, region := range regions {
		css := renderer.Render(region)
		extract.ExtractFromCSS(css, relPath, e.cfg.OnlyRoot, reg)
	}
}

// discoverFiles walks the theme directory collecting relative paths that
// match the include globs and none of the exclude globs.
func (e *Engine) discoverFiles() ([]string, error) {
	var files []string
	root := e.cfg.ThemeDir
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if !matchAny(e.cfg.IncludePatterns, rel) || matchAny(e.cfg.ExcludePatterns, rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return files, nil
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		ok, err := doublestar.Match(p, rel)
		if err != nil {
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

// Variables returns the current registry's entries in insertion order.
func (e *Engine) Variables() []model.CSSVariable {
	return e.registry.Load().Variables()
}

// Lookup returns the current entry for a --name.
func (e *Engine) Lookup(name string) (model.CSSVariable, bool) {
	return e.registry.Load().Lookup(name)
}

// Count reports the number of variables in the current registry.
func (e *Engine) Count() int {
	return e.registry.Load().Len()
}
