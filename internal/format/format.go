// Package format renders market numbers for display, en-US / USD by default.
package format

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const DefaultCurrency = "USD"

var printer = message.NewPrinter(language.AmericanEnglish)

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "CN¥",
	"INR": "₹",
	"KRW": "₩",
	"CAD": "CA$",
	"AUD": "A$",
	"CHF": "CHF ",
	"BTC": "₿",
}

// Currency formats v as an amount of the ISO 4217 code, e.g. "$65,000.00".
// Unknown codes keep the standard two decimals and use the code as symbol.
func Currency(v float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCurrency
	}

	scale := 2
	if unit, err := currency.ParseISO(code); err == nil {
		scale, _ = currency.Standard.Rounding(unit)
	}

	sym, ok := symbols[code]
	if !ok {
		sym = code + " "
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sym + "-"
	}

	sign := ""
	if v < 0 && math.Round(v*math.Pow10(scale)) != 0 {
		sign = "-"
	}
	return sign + sym + printer.Sprintf(fmt.Sprintf("%%.%df", scale), math.Abs(v))
}

// USD is Currency with the default code
func USD(v float64) string {
	return Currency(v, DefaultCurrency)
}

// Percentage formats a change such as 4.2149 as "4.21%"
func Percentage(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return printer.Sprintf("%.2f%%", v)
}

// Rank formats a market cap rank, "#1". Unranked assets render "-".
func Rank(r int) string {
	if r <= 0 {
		return "-"
	}
	return fmt.Sprintf("#%d", r)
}
