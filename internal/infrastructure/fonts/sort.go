package fonts

import (
	"regexp"
	"sort"

	"github.com/photo-watermark/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	chineseRe = regexp.MustCompile(`[\x{4e00}-\x{9fff}]`)
	asciiRe   = regexp.MustCompile(`^[\x20-\x7E]+$`)
)

func hasChinese(s string) bool {
	return chineseRe.MatchString(s)
}

func isASCII(s string) bool {
	return asciiRe.MatchString(s)
}

// sortFonts puts Chinese-labelled families first, then orders by display name
// with Chinese collation.
func sortFonts(entries []domain.FontEntry) []domain.FontEntry {
	// collator не потокобезопасен, создаём на каждый вызов
	col := collate.New(language.Chinese)

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].DisplayName, entries[j].DisplayName
		aCn, bCn := hasChinese(a), hasChinese(b)
		if aCn != bCn {
			return aCn
		}
		return col.CompareString(a, b) < 0
	})
	return entries
}
