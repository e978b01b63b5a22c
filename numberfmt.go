package main

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var plainAmountRegex = regexp.MustCompile(`^[+-]?\d+(\.\d*)?$`)

// ParseAmount parses an amount typed in Finnish or English notation:
// "1 234,56", "1234.56", "1 000", "€ 500", "2,5k".
// Whitespace anywhere is ignored. A single '.' or ',' is the decimal separator;
// text containing both is rejected since the grouping cannot be told apart from the decimals.
func ParseAmount(input string) (decimal.Decimal, error) {
	text := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, input)
	text = strings.TrimSuffix(strings.TrimPrefix(text, "€"), "€")
	if text == "" {
		return decimal.Zero, ValidationError{Field: "amount", Message: "value is empty"}
	}

	multiplier := decimal.NewFromInt(1)
	lower := strings.ToLower(text)
	if strings.HasSuffix(lower, "k") {
		multiplier = decimal.NewFromInt(1000)
		text = text[:len(text)-1]
	} else if strings.HasSuffix(lower, "m") {
		multiplier = decimal.NewFromInt(1000000)
		text = text[:len(text)-1]
	}

	hasDot := strings.Contains(text, ".")
	hasComma := strings.Contains(text, ",")
	if hasDot && hasComma {
		return decimal.Zero, ValidationError{Field: "amount", Message: "use either '.' or ',' as the decimal separator, not both: " + input}
	}
	text = strings.Replace(text, ",", ".", 1)

	if !plainAmountRegex.MatchString(text) {
		return decimal.Zero, ValidationError{Field: "amount", Message: "not a number: " + input}
	}
	value, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, ValidationError{Field: "amount", Message: "not a number: " + input}
	}
	return value.Mul(multiplier), nil
}

// FormatAmount formats an amount with two decimals, a space as thousands separator and
// a decimal comma: 1234567.891 -> "1 234 567,89"
func FormatAmount(amount decimal.Decimal) string {
	s := amount.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var out []byte
	for i := 0; i < len(intPart); i++ {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out = append(out, ' ')
		}
		out = append(out, intPart[i])
	}
	return sign + string(out) + "," + frac
}

// FormatEuro formats an amount followed by the euro sign
func FormatEuro(amount decimal.Decimal) string {
	return FormatAmount(amount) + " €"
}

// FormatPercent formats a rate as a Finnish percentage: 0.016 -> "1,6 %"
func FormatPercent(rate decimal.Decimal) string {
	pct := rate.Mul(decimal.NewFromInt(100))
	return strings.Replace(pct.String(), ".", ",", 1) + " %"
}
