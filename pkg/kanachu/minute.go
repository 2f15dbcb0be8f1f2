package kanachu

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// ParseMinuteToken splits a scraped minute label into its digits and any
// annotation around them. "15*" yields ("15", "*", true); "30" yields
// ("30", "", true). A token without digits is noise and yields ok=false.
// Full-width digits are folded to ASCII; the note keeps its runes as
// written.
func ParseMinuteToken(token string) (minute, note string, ok bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", "", false
	}

	var digits, rest strings.Builder
	for _, r := range token {
		if d, isDigit := asciiDigit(r); isDigit {
			digits.WriteRune(d)
		} else {
			rest.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return "", "", false
	}
	return digits.String(), rest.String(), true
}

// parseHour keeps only the digits of an hour label such as "7時".
func parseHour(text string) string {
	var b strings.Builder
	for _, r := range text {
		if d, ok := asciiDigit(r); ok {
			b.WriteRune(d)
		}
	}
	return b.String()
}

// asciiDigit maps '0'-'9' and their full-width forms to ASCII.
func asciiDigit(r rune) (rune, bool) {
	if r >= '0' && r <= '9' {
		return r, true
	}
	if !unicode.IsDigit(r) {
		return 0, false
	}
	if n := width.LookupRune(r).Narrow(); n >= '0' && n <= '9' {
		return n, true
	}
	return 0, false
}
