// Package money formats currency amounts for reports and summaries.
package money

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// Format renders v as whole US dollars with grouping, e.g. "$1,234,567".
func Format(v float64) string {
	return "$" + printer.Sprint(number.Decimal(v, number.MaxFractionDigits(0)))
}

// Millions renders v in millions with one decimal, e.g. "$1.2M".
func Millions(v float64) string {
	return fmt.Sprintf("$%.1fM", v/1_000_000)
}

// Percent renders v, already in percent, with one decimal.
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
