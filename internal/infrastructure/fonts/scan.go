package fonts

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/photo-watermark/internal/domain"
	"go.uber.org/zap"
)

var (
	fontExtensions = map[string]bool{".ttf": true, ".otf": true, ".ttc": true}

	fileStyleSuffixRe = regexp.MustCompile(`(?i)[-_](Regular|Bold|Italic|Light|Medium|Thin|Heavy|Black|ExtraBold|SemiBold|ExtraLight|Condensed|Compressed)$`)
)

// SystemFontDirs returns the standard font directories for goos.
func SystemFontDirs(goos string) []string {
	home, _ := os.UserHomeDir()

	var dirs []string
	switch goos {
	case "darwin":
		dirs = append(dirs, "/System/Library/Fonts", "/System/Library/Fonts/Supplemental", "/Library/Fonts")
		if home != "" {
			dirs = append(dirs, filepath.Join(home, "Library", "Fonts"))
		}
	case "windows":
		dirs = append(dirs, windowsFontsDir())
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			dirs = append(dirs, filepath.Join(local, "Microsoft", "Windows", "Fonts"))
		}
	default:
		dirs = append(dirs, "/usr/share/fonts", "/usr/local/share/fonts")
		if home != "" {
			dirs = append(dirs, filepath.Join(home, ".fonts"), filepath.Join(home, ".local", "share", "fonts"))
		}
	}
	return dirs
}

// scanFontDirs walks dirs and reads family names from every font file found.
func scanFontDirs(dirs []string, logger *zap.Logger) []domain.FontEntry {
	families := make(map[string]string)
	var order []string

	add := func(name, path string) {
		if name == "" || strings.HasPrefix(name, ".") || name == "System Font" {
			return
		}
		if _, ok := families[name]; ok {
			return
		}
		families[name] = path
		order = append(order, name)
	}

	for _, dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// нечитаемый каталог пропускаем, обход продолжается
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			if !fontExtensions[ext] {
				return nil
			}

			names, err := readFamilyNames(path)
			if err != nil {
				logger.Debug("Font parse failed, using file name",
					zap.String("path", path),
					zap.Error(err))
				add(familyFromFileName(path), path)
				return nil
			}
			for _, name := range names {
				add(name, path)
			}
			return nil
		})
		if err != nil {
			logger.Debug("Font dir scan error", zap.String("dir", dir), zap.Error(err))
		}
	}

	entries := make([]domain.FontEntry, 0, len(order))
	for _, name := range order {
		entries = append(entries, domain.FontEntry{Family: name, DisplayName: name, Path: families[name]})
	}
	return entries
}

func familyFromFileName(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return fileStyleSuffixRe.ReplaceAllString(name, "")
}
