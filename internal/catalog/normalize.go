package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Letters that carry no combining mark under NFD and need an explicit mapping.
var transliterations = strings.NewReplacer(
	"Đ", "D", "đ", "d",
	"Ø", "O", "ø", "o",
	"Ł", "L", "ł", "l",
	"Æ", "AE", "æ", "ae",
	"Œ", "OE", "œ", "oe",
	"ß", "ss",
)

// Normalize turns a display name into an uppercase ASCII token made of
// [A-Z0-9-]: diacritics are folded to their base letter, every other
// character is dropped, runs of '-' collapse and edge '-' are trimmed.
// "Xanh Dương" becomes "XANHDUONG"; empty or all-punctuation input yields "".
func Normalize(input string) string {
	if input == "" {
		return ""
	}

	folded := transliterations.Replace(input)
	// transform.Chain keeps state, so it is built per call
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(stripMarks, folded); err == nil {
		folded = out
	}
	folded = strings.ToUpper(folded)

	var b strings.Builder
	b.Grow(len(folded))
	lastDash := false
	for _, r := range folded {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case r == '-':
			if !lastDash {
				b.WriteRune(r)
			}
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
