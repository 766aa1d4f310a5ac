package services

import (
	"testing"
	"time"

	"github.com/sjperalta/smartdebt-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestFormatter_Currency(t *testing.T) {
	f := NewFormatter(nil)
	assert.Equal(t, "5.000.000 ₫", f.Currency(5000000))
	assert.Equal(t, "0 ₫", f.Currency(0))
	assert.Equal(t, "999 ₫", f.Currency(999))
}

func TestFormatter_Dates(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	f := NewFormatter(loc)
	ts := time.Date(2024, 3, 4, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, "05/03/2024", f.Date(ts))
	assert.Equal(t, "5/3/2024", f.ShortDate(ts))
	assert.Equal(t, "05/03/2024 03:00", f.DateTime(ts))
	assert.Equal(t, "2024-03-05", f.DayKey(models.NewLedgerDate(ts)))

	cal := models.NewCalendarDate(2024, 3, 4)
	assert.Equal(t, "04/03/2024", f.LedgerDate(cal))
	assert.Equal(t, "2024-03-04", f.DayKey(cal))
}

func TestFoldVietnamese(t *testing.T) {
	assert.Equal(t, "nguyen van a", FoldVietnamese("Nguyễn Văn A"))
	assert.Equal(t, "cong ty tnhh mtv x", FoldVietnamese("Công ty TNHH MTV X"))
	assert.Equal(t, "duc", FoldVietnamese("Đức"))
}

func TestASCIIFold(t *testing.T) {
	assert.Equal(t, "Bao cao cong no", ASCIIFold("Báo cáo công nợ"))
	assert.Equal(t, "5.000 d", ASCIIFold("5.000 ₫"))
	assert.Equal(t, "Duc", ASCIIFold("Đức"))
}

func TestMatchesSearch(t *testing.T) {
	d := models.Debtor{Name: "Nguyễn Văn A", Phone: "0901234567"}

	tests := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"nguyen", true},
		{"NGUYỄN", true},
		{"văn", true},
		{"0901", true},
		{"234", true},
		{"tran", false},
		{"0283", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesSearch(d, tt.query))
		})
	}
}

func TestAmountToWords(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "Không đồng"},
		{5, "Năm đồng"},
		{15, "Mười lăm đồng"},
		{21, "Hai mươi mốt đồng"},
		{105, "Một trăm lẻ năm đồng"},
		{1000, "Một nghìn đồng"},
		{5000000, "Năm triệu đồng"},
		{12000000, "Mười hai triệu đồng"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, AmountToWords(tt.n))
		})
	}
}
