package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// letters that do not decompose into base + combining mark under NFD.
var letterFolds = strings.NewReplacer(
	"ø", "o",
	"ß", "ss",
	"æ", "ae",
	"œ", "oe",
	"ł", "l",
	"đ", "d",
	"ı", "i",
	"þ", "th",
)

func fold(s string) string {
	s = letterFolds.Replace(strings.ToLower(s))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// tokens folds s and splits it on anything that is not a letter (or a digit when keepDigits).
func tokens(s string, keepDigits bool) []string {
	return strings.FieldsFunc(fold(s), func(r rune) bool {
		if unicode.IsLetter(r) {
			return false
		}
		return !(keepDigits && unicode.IsDigit(r))
	})
}

func isNumeric(word string) bool {
	for _, r := range word {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return word != ""
}
