package fonts

import (
	"context"
	"os"
	"runtime"
	"strings"

	"github.com/photo-watermark/internal/domain"
	"go.uber.org/zap"
)

// Options configures a Catalog. Zero values pick platform defaults.
type Options struct {
	GOOS      string
	ExtraDirs []string
	Dirs      []string
}

// Catalog enumerates installed font families and maps user-chosen names to
// names the glyph renderer can load.
type Catalog struct {
	runner CommandRunner
	cache  *Cache
	goos   string
	dirs   []string
	logger *zap.Logger
}

func NewCatalog(runner CommandRunner, cache *Cache, opts Options, logger *zap.Logger) *Catalog {
	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	dirs := append([]string{}, opts.Dirs...)
	if len(dirs) == 0 {
		dirs = SystemFontDirs(goos)
	}
	dirs = append(dirs, opts.ExtraDirs...)
	if cache == nil {
		cache = NewCache()
	}

	return &Catalog{
		runner: runner,
		cache:  cache,
		goos:   goos,
		dirs:   dirs,
		logger: logger,
	}
}

// ListFonts returns the installed families, discovering them on first use.
// It never fails: total failure yields an empty list. A result produced after
// ctx was cancelled is returned but not cached.
func (c *Catalog) ListFonts(ctx context.Context) []domain.FontEntry {
	if entries, ok := c.cache.Get(); ok {
		return entries
	}

	entries := c.discover(ctx)
	if err := ctx.Err(); err != nil {
		c.logger.Warn("Font discovery interrupted, result not cached", zap.Error(err))
		return entries
	}
	c.cache.Set(entries)
	return entries
}

// ClearCache forces rediscovery, e.g. after new fonts are installed.
func (c *Catalog) ClearCache() {
	c.cache.Clear()
	c.logger.Info("Font cache cleared")
}

func (c *Catalog) discover(ctx context.Context) []domain.FontEntry {
	// Уровень 1: fc-list
	if entries, err := c.viaFcList(ctx); err != nil {
		c.logger.Debug("fc-list not available", zap.Error(err))
	} else if len(entries) > 0 {
		c.logger.Info("Font families found", zap.String("source", "fc-list"), zap.Int("count", len(entries)))
		return sortFonts(entries)
	}

	// Уровень 2: реестр Windows
	if c.goos == "windows" {
		if entries, err := c.viaRegistry(ctx); err != nil {
			c.logger.Debug("Registry font query failed", zap.Error(err))
		} else if len(entries) > 0 {
			c.logger.Info("Font families found", zap.String("source", "registry"), zap.Int("count", len(entries)))
			return sortFonts(entries)
		}
	}

	// Уровень 3: обход каталогов
	entries := scanFontDirs(c.dirs, c.logger)
	c.logger.Info("Font families found", zap.String("source", "scan"), zap.Int("count", len(entries)))
	return sortFonts(entries)
}

func (c *Catalog) viaFcList(ctx context.Context) ([]domain.FontEntry, error) {
	raw, err := c.runner.Run(ctx, "fc-list", fcListFormat)
	if err != nil {
		return nil, err
	}
	return parseFcList(raw), nil
}

func (c *Catalog) viaRegistry(ctx context.Context) ([]domain.FontEntry, error) {
	fontsDir := windowsFontsDir()
	acc := make(map[string]string)

	for i, key := range registryKeys {
		raw, err := c.runner.Run(ctx, "reg", "query", key, "/s")
		if err != nil {
			// machine-wide key is required, the per-user one may not exist
			if i == 0 {
				return nil, err
			}
			continue
		}
		parseRegistry(raw, fontsDir, acc)
	}
	return registryEntries(acc), nil
}

// ResolveFamily maps a non-ASCII family name to the canonical ASCII name reported
// by fc-match. Any failure returns name unchanged.
func (c *Catalog) ResolveFamily(ctx context.Context, name string) string {
	if name == "" || isASCII(name) {
		return name
	}

	out, err := c.runner.Run(ctx, "fc-match", name, "--format=%{family[0]}")
	if err != nil {
		c.logger.Info("fc-match resolve failed", zap.String("family", name), zap.Error(err))
		return name
	}
	resolved := strings.TrimSpace(out)
	if resolved == "" || !isASCII(resolved) {
		return name
	}

	c.logger.Info("Resolved non-ASCII font family",
		zap.String("family", name),
		zap.String("resolved", resolved))
	return resolved
}

// ResolveFile returns a font file for the family and style, or "" when none is
// known. An empty family asks for the system sans-serif face.
func (c *Catalog) ResolveFile(ctx context.Context, family string, bold, italic bool) string {
	pattern := family
	if pattern == "" {
		pattern = "sans-serif"
	}
	if bold {
		pattern += ":bold"
	}
	if italic {
		pattern += ":italic"
	}

	if out, err := c.runner.Run(ctx, "fc-match", pattern, "--format=%{file}"); err == nil {
		if file := strings.TrimSpace(out); file != "" && fileExists(file) {
			return file
		}
	}

	if family == "" {
		return ""
	}
	for _, e := range c.ListFonts(ctx) {
		if (e.Family == family || e.DisplayName == family) && e.Path != "" {
			return e.Path
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
