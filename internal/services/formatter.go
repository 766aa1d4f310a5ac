package services

import (
	"strings"
	"time"
	"unicode"

	"github.com/sjperalta/smartdebt-api/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Formatter renders amounts, dates and labels the way the Vietnamese UI shows them
type Formatter struct {
	printer  *message.Printer
	location *time.Location
}

// NewFormatter creates a formatter showing timestamps in loc (nil means UTC)
func NewFormatter(loc *time.Location) *Formatter {
	if loc == nil {
		loc = time.UTC
	}
	return &Formatter{
		printer:  message.NewPrinter(language.Vietnamese),
		location: loc,
	}
}

// Number groups thousands with dots: 5000000 -> "5.000.000"
func (f *Formatter) Number(n int64) string {
	return f.printer.Sprintf("%d", n)
}

// Currency formats a VND amount: 5000000 -> "5.000.000 ₫"
func (f *Formatter) Currency(n int64) string {
	return f.Number(n) + " ₫"
}

// Date formats a timestamp as dd/mm/yyyy
func (f *Formatter) Date(t time.Time) string {
	return t.In(f.location).Format("02/01/2006")
}

// ShortDate formats without zero padding, d/m/yyyy
func (f *Formatter) ShortDate(t time.Time) string {
	return t.In(f.location).Format("2/1/2006")
}

// DateTime formats a timestamp as dd/mm/yyyy hh:mm
func (f *Formatter) DateTime(t time.Time) string {
	return t.In(f.location).Format("02/01/2006 15:04")
}

// LedgerDate formats a transaction date; calendar dates are shown as entered
func (f *Formatter) LedgerDate(d models.LedgerDate) string {
	if d.DateOnly {
		return d.Time.Format("02/01/2006")
	}
	return f.Date(d.Time)
}

// DayKey returns the local calendar day of a transaction date as YYYY-MM-DD
func (f *Formatter) DayKey(d models.LedgerDate) string {
	if d.DateOnly {
		return d.Time.Format("2006-01-02")
	}
	return d.Time.In(f.location).Format("2006-01-02")
}

// Location returns the display time zone
func (f *Formatter) Location() *time.Location {
	return f.location
}

// isToneMark matches the combining diacritics block U+0300–U+036F
var isToneMark = runes.Predicate(func(r rune) bool {
	return r >= 0x0300 && r <= 0x036F
})

// FoldVietnamese strips tone marks, maps đ to d and lowercases, so "Nguyễn Đức" matches "nguyen duc"
func FoldVietnamese(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(isToneMark), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.NewReplacer("đ", "d", "Đ", "D").Replace(folded)
	return strings.ToLower(folded)
}

// ASCIIFold reduces text to printable ASCII for the core PDF fonts
func ASCIIFold(s string) string {
	folded := FoldVietnamese(s)
	// Keep original casing where folding preserved letters one-to-one
	src := []rune(strings.NewReplacer("đ", "d", "Đ", "D").Replace(norm.NFC.String(s)))
	dst := []rune(folded)
	if len(src) == len(dst) {
		for i, r := range src {
			if unicode.IsUpper(r) {
				dst[i] = unicode.ToUpper(dst[i])
			}
		}
	}
	return strings.Map(func(r rune) rune {
		if r == '₫' {
			return 'd'
		}
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			return '?'
		}
		return r
	}, string(dst))
}

// MatchesSearch applies the debtor list filter: tone-insensitive on name, raw substring on phone
func MatchesSearch(d models.Debtor, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(FoldVietnamese(d.Name), FoldVietnamese(query)) ||
		strings.Contains(d.Phone, query)
}
