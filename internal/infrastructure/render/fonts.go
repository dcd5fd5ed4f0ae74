package render

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// fontLoader parses font files once and keeps them for reuse.
type fontLoader struct {
	mu     sync.Mutex
	parsed map[string]*opentype.Font
	logger *zap.Logger
}

func newFontLoader(logger *zap.Logger) *fontLoader {
	return &fontLoader{parsed: make(map[string]*opentype.Font), logger: logger}
}

// face returns a face for the file at the given size. A missing or unreadable
// file falls back to the embedded Go fonts.
func (l *fontLoader) face(path string, bold, italic bool, size float64) (font.Face, error) {
	f, err := l.load(path)
	if err != nil {
		if path != "" {
			l.logger.Warn("Font load failed, using embedded font", zap.String("path", path), zap.Error(err))
		}
		if f, err = l.fallback(bold, italic); err != nil {
			return nil, err
		}
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	return face, nil
}

func (l *fontLoader) load(path string) (*opentype.Font, error) {
	if path == "" {
		return nil, fmt.Errorf("no font file")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if f, ok := l.parsed[path]; ok {
		return f, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := parseFont(data)
	if err != nil {
		return nil, err
	}
	l.parsed[path] = f
	return f, nil
}

func (l *fontLoader) fallback(bold, italic bool) (*opentype.Font, error) {
	key, data := "go:regular", goregular.TTF
	switch {
	case bold && italic:
		key, data = "go:bolditalic", gobolditalic.TTF
	case bold:
		key, data = "go:bold", gobold.TTF
	case italic:
		key, data = "go:italic", goitalic.TTF
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if f, ok := l.parsed[key]; ok {
		return f, nil
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded font: %w", err)
	}
	l.parsed[key] = f
	return f, nil
}

// parseFont accepts single fonts and collections; a collection yields its first face.
func parseFont(data []byte) (*opentype.Font, error) {
	if !bytes.HasPrefix(data, []byte("ttcf")) {
		return opentype.Parse(data)
	}
	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, err
	}
	if coll.NumFonts() == 0 {
		return nil, fmt.Errorf("empty font collection")
	}
	return coll.Font(0)
}
