package fonts

import (
	"strings"

	"github.com/photo-watermark/internal/domain"
)

const fcListFormat = "--format=%{family}|%{file}\n"

// parseFcList turns fc-list output into one entry per rendering family.
// Each line is "alias1,alias2,...|/path/to/file".
func parseFcList(raw string) []domain.FontEntry {
	seen := make(map[string]int)
	var entries []domain.FontEntry

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		familyPart, file := line, ""
		if i := strings.LastIndex(line, "|"); i >= 0 {
			familyPart, file = line[:i], strings.TrimSpace(line[i+1:])
		}

		names := splitAliases(familyPart)
		if len(names) == 0 {
			continue
		}
		if strings.HasPrefix(names[0], ".") || names[0] == "System Font" {
			continue
		}

		family := renderingName(names)
		if idx, ok := seen[family]; ok {
			if entries[idx].Path == "" {
				entries[idx].Path = file
			}
			continue
		}

		seen[family] = len(entries)
		entries = append(entries, domain.FontEntry{
			Family:      family,
			DisplayName: displayName(family, names),
			Path:        file,
		})
	}

	return entries
}

func splitAliases(s string) []string {
	var names []string
	for _, n := range strings.Split(s, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// renderingName picks the first ASCII alias without spaces (a space usually
// marks a style variant like "TencentSans W7"), then any ASCII alias, then the first.
func renderingName(names []string) string {
	for _, n := range names {
		if isASCII(n) && !strings.Contains(n, " ") {
			return n
		}
	}
	for _, n := range names {
		if isASCII(n) {
			return n
		}
	}
	return names[0]
}

// displayName prefers the shortest Chinese alias.
func displayName(family string, names []string) string {
	display := family
	for _, n := range names {
		if !hasChinese(n) {
			continue
		}
		if !hasChinese(display) || len([]rune(n)) < len([]rune(display)) {
			display = n
		}
	}
	return display
}
