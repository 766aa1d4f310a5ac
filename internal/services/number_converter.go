package services

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var digitWords = [10]string{"không", "một", "hai", "ba", "bốn", "năm", "sáu", "bảy", "tám", "chín"}

// groupUnits are the names of the three-digit groups below one billion
var groupUnits = [3]string{"", "nghìn", "triệu"}

// AmountToWords reads a VND amount in Vietnamese words
// Example: 1500000 -> "Một triệu năm trăm nghìn đồng"
func AmountToWords(amount int64) string {
	words := convertNumberToWords(amount)
	r, size := utf8.DecodeRuneInString(words)
	return string(unicode.ToUpper(r)) + words[size:] + " đồng"
}

func convertNumberToWords(n int64) string {
	if n < 0 {
		// computed in uint64 so MinInt64 has a magnitude
		return "âm " + readUnsigned(uint64(-(n+1))+1)
	}
	return readUnsigned(uint64(n))
}

func readUnsigned(n uint64) string {
	if n == 0 {
		return digitWords[0]
	}

	const billion = 1_000_000_000
	if n >= billion {
		head := readUnsigned(n / billion)
		rest := n % billion
		if rest == 0 {
			return head + " tỷ"
		}
		return head + " tỷ " + readBelowBillion(rest, true)
	}
	return readBelowBillion(n, false)
}

// readBelowBillion reads 0 < n < 1e9. full forces "không trăm" style reading of the leading
// group, used when a higher unit was already spoken.
func readBelowBillion(n uint64, full bool) string {
	groups := [3]uint64{n % 1000, (n / 1000) % 1000, n / 1_000_000}
	var parts []string
	for i := 2; i >= 0; i-- {
		g := groups[i]
		if g == 0 {
			continue
		}
		words := readTriple(g, full || len(parts) > 0)
		if groupUnits[i] != "" {
			words += " " + groupUnits[i]
		}
		parts = append(parts, words)
	}
	return strings.Join(parts, " ")
}

func readTriple(n uint64, full bool) string {
	h, t, u := n/100, (n/10)%10, n%10
	var parts []string

	if h > 0 || full {
		parts = append(parts, digitWords[h], "trăm")
	}

	switch {
	case t == 0:
		if u > 0 {
			if len(parts) > 0 {
				parts = append(parts, "lẻ")
			}
			parts = append(parts, digitWords[u])
		}
	case t == 1:
		parts = append(parts, "mười")
		switch {
		case u == 5:
			parts = append(parts, "lăm")
		case u > 0:
			parts = append(parts, digitWords[u])
		}
	default:
		parts = append(parts, digitWords[t], "mươi")
		switch u {
		case 0:
		case 1:
			parts = append(parts, "mốt")
		case 4:
			parts = append(parts, "tư")
		case 5:
			parts = append(parts, "lăm")
		default:
			parts = append(parts, digitWords[u])
		}
	}
	return strings.Join(parts, " ")
}
