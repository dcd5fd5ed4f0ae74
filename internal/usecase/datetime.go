package usecase

import (
	"strconv"
	"strings"
	"time"
)

// dateTokens are matched longest first at every position.
var dateTokens = []struct {
	token  string
	render func(t time.Time) string
}{
	{"YYYY", func(t time.Time) string { return strconv.Itoa(t.Year()) }},
	{"YY", func(t time.Time) string {
		y := strconv.Itoa(t.Year())
		if len(y) > 2 {
			return y[len(y)-2:]
		}
		return y
	}},
	{"MM", func(t time.Time) string { return pad2(int(t.Month())) }},
	{"DD", func(t time.Time) string { return pad2(t.Day()) }},
	{"HH", func(t time.Time) string { return pad2(t.Hour()) }},
	{"mm", func(t time.Time) string { return pad2(t.Minute()) }},
	{"ss", func(t time.Time) string { return pad2(t.Second()) }},
	{"M", func(t time.Time) string { return strconv.Itoa(int(t.Month())) }},
	{"D", func(t time.Time) string { return strconv.Itoa(t.Day()) }},
	{"H", func(t time.Time) string { return strconv.Itoa(t.Hour()) }},
	{"m", func(t time.Time) string { return strconv.Itoa(t.Minute()) }},
	{"s", func(t time.Time) string { return strconv.Itoa(t.Second()) }},
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// FormatDateTime подставляет поля даты в шаблон вида "YYYY-MM-DD HH:mm".
// Нераспознанная дата возвращается как есть, пустая даёт "".
func FormatDateTime(dateStr, format string) string {
	if dateStr == "" {
		return ""
	}
	t, ok := parseDate(dateStr)
	if !ok {
		return dateStr
	}

	var b strings.Builder
	for i := 0; i < len(format); {
		matched := false
		for _, tok := range dateTokens {
			if strings.HasPrefix(format[i:], tok.token) {
				b.WriteString(tok.render(t))
				i += len(tok.token)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(format[i])
			i++
		}
	}
	return b.String()
}
