package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/photo-watermark/internal/domain"
)

// Age - разница между двумя датами в календарных единицах
type Age struct {
	Years  int
	Months int
	Days   int
}

type ageUnits struct {
	years, months, days func(n int) string
	zeroDay             string
	sep                 string
}

var ageLocales = map[string]ageUnits{
	"zh": {
		years:   func(int) string { return "岁" },
		months:  func(int) string { return "个月" },
		days:    func(int) string { return "天" },
		zeroDay: "0天",
		sep:     "",
	},
	"en": {
		years:   enPlural(" year", " years"),
		months:  enPlural(" month", " months"),
		days:    enPlural(" day", " days"),
		zeroDay: "0 days",
		sep:     " ",
	},
}

func enPlural(one, many string) func(n int) string {
	return func(n int) string {
		if n == 1 {
			return one
		}
		return many
	}
}

// dateLayouts are tried in order; every layout is read as wall-clock time.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	time.RFC3339,
	time.RFC3339Nano,
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AgeBetween returns the calendar age at photo for someone born at birth.
// Fields are subtracted directly; a negative day count borrows the length of
// the month before photo's month, a negative month count borrows a year.
// When the borrow still leaves days negative (Jan 31 -> Mar 1) the age is
// counted from the month-clamped anchor instead.
func AgeBetween(birth, photo time.Time) (Age, bool) {
	b := civilDate(birth)
	p := civilDate(photo)
	if p.Before(b) {
		return Age{}, false
	}

	years := p.Year() - b.Year()
	months := int(p.Month()) - int(b.Month())
	days := p.Day() - b.Day()

	if days < 0 {
		months--
		days += daysInMonth(p.Year(), p.Month()-1)
	}
	if months < 0 {
		years--
		months += 12
	}
	if days < 0 {
		return clampedAge(b, p), true
	}

	return Age{Years: years, Months: months, Days: days}, true
}

func clampedAge(b, p time.Time) Age {
	months := (p.Year()-b.Year())*12 + int(p.Month()) - int(b.Month())
	anchor := AddMonthsClamped(b, months)
	if anchor.After(p) {
		months--
		anchor = AddMonthsClamped(b, months)
	}
	days := int(p.Sub(anchor).Hours() / 24)
	return Age{Years: months / 12, Months: months % 12, Days: days}
}

// daysInMonth normalizes month, so month 0 is December of the previous year.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonthsClamped adds n months keeping the day inside the target month:
// Jan 31 + 1 month is Feb 28 (or 29).
func AddMonthsClamped(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	last := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CalcChildAge форматирует возраст на дату снимка.
// Пустая строка, если дата не разбирается или снимок сделан до рождения.
func CalcChildAge(birthday, photoDate string, format domain.AgeFormat, lang string) string {
	birth, ok := parseDate(birthday)
	if !ok {
		return ""
	}
	photo, ok := parseDate(photoDate)
	if !ok {
		return ""
	}
	age, ok := AgeBetween(birth, photo)
	if !ok {
		return ""
	}

	units, known := ageLocales[lang]
	if !known {
		units = ageLocales[domain.DefaultLang]
	}
	if format == "" {
		format = domain.AgeYearsMonths
	}

	y := fmt.Sprintf("%d%s", age.Years, units.years(age.Years))
	m := fmt.Sprintf("%d%s", age.Months, units.months(age.Months))

	switch format {
	case domain.AgeYears:
		return y
	case domain.AgeYearsMonths:
		if age.Years == 0 {
			return m
		}
		if age.Months == 0 {
			return y
		}
		return y + units.sep + m
	case domain.AgeYearsMonthsDays:
		parts := make([]string, 0, 3)
		if age.Years > 0 {
			parts = append(parts, y)
		}
		if age.Months > 0 {
			parts = append(parts, m)
		}
		if age.Days > 0 {
			parts = append(parts, fmt.Sprintf("%d%s", age.Days, units.days(age.Days)))
		}
		if len(parts) == 0 {
			return units.zeroDay
		}
		return strings.Join(parts, units.sep)
	default:
		return y + units.sep + m
	}
}
