package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FormatPhone renders Brazilian phone numbers: 11 digits as (XX) XXXXX-XXXX
// and 10 digits as (XX) XXXX-XXXX. Anything else is returned unchanged.
func FormatPhone(phone string) string {
	d := Digits(phone)
	switch len(d) {
	case 11:
		return fmt.Sprintf("(%s) %s-%s", d[:2], d[2:7], d[7:])
	case 10:
		return fmt.Sprintf("(%s) %s-%s", d[:2], d[2:6], d[6:])
	}
	return phone
}

// FormatCEP renders an 8 digit postal code as XXXXX-XXX. Other lengths come
// back as bare digits.
func FormatCEP(cep string) string {
	d := Digits(cep)
	if len(d) == 8 {
		return d[:5] + "-" + d[5:]
	}
	return d
}

func FormatAddress(street, city, zipcode string) string {
	return fmt.Sprintf("%s, %s - CEP: %s", street, city, zipcode)
}

// CapitalizeWords upper-cases the first letter of every space-separated word
// and lower-cases the rest. Hyphens and apostrophes do not start a word.
func CapitalizeWords(text string) string {
	upper, lower := cases.Upper(language.Und), cases.Lower(language.Und)
	words := strings.Split(text, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		_, size := utf8.DecodeRuneInString(w)
		words[i] = upper.String(w[:size]) + lower.String(w[size:])
	}
	return strings.Join(words, " ")
}
