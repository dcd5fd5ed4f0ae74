package fonts

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/photo-watermark/internal/domain"
)

var registryKeys = []string{
	`HKLM\SOFTWARE\Microsoft\Windows NT\CurrentVersion\Fonts`,
	`HKCU\SOFTWARE\Microsoft\Windows NT\CurrentVersion\Fonts`,
}

var (
	// "Microsoft YaHei Bold (TrueType)    REG_SZ    msyhbd.ttc"
	registryLineRe = regexp.MustCompile(`(?i)^\s*(.+?)\s+\((?:TrueType|OpenType|TrueType Collection)\)\s+REG_SZ\s+(.*)$`)
	styleSuffixRe  = regexp.MustCompile(`(?i)\s+(Regular|Bold|Italic|Light|Medium|Thin|Heavy|Black|ExtraBold|SemiBold|ExtraLight|Condensed|Narrow|Compressed|Book)\s*$`)
)

// parseRegistry collects base family names from `reg query` output into acc,
// keeping the first file seen per family.
func parseRegistry(raw, fontsDir string, acc map[string]string) {
	for _, line := range strings.Split(raw, "\n") {
		m := registryLineRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		name := strings.TrimSpace(styleSuffixRe.ReplaceAllString(strings.TrimSpace(m[1]), ""))
		if name == "" {
			continue
		}
		if _, ok := acc[name]; ok {
			continue
		}
		acc[name] = registryFilePath(strings.TrimSpace(m[2]), fontsDir)
	}
}

func registryFilePath(file, fontsDir string) string {
	if file == "" {
		return ""
	}
	// per-user fonts are registered with an absolute path
	if filepath.IsAbs(file) || (len(file) > 2 && file[1] == ':') {
		return file
	}
	return filepath.Join(fontsDir, file)
}

func windowsFontsDir() string {
	windir := os.Getenv("WINDIR")
	if windir == "" {
		windir = os.Getenv("SystemRoot")
	}
	if windir == "" {
		windir = `C:\Windows`
	}
	return filepath.Join(windir, "Fonts")
}

func registryEntries(acc map[string]string) []domain.FontEntry {
	entries := make([]domain.FontEntry, 0, len(acc))
	for name, path := range acc {
		entries = append(entries, domain.FontEntry{Family: name, DisplayName: name, Path: path})
	}
	return entries
}
