// Package format renders numbers for human-readable reports.
package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Birr returns an Ethiopian Birr amount with thousands separators and no
// decimals (e.g., "ETB 1,234").
func Birr(amount float64) string {
	return printer.Sprintf("ETB %.0f", amount)
}

// Count returns an integer with thousands separators (e.g., "12,500").
func Count(n int) string {
	return printer.Sprintf("%d", n)
}

// Percent returns a percentage with one decimal (e.g., "12.5%").
func Percent(value float64) string {
	return printer.Sprintf("%.1f%%", value)
}

// WholePercent returns a percentage without decimals (e.g., "42%").
func WholePercent(value float64) string {
	return printer.Sprintf("%.0f%%", value)
}

// Decimal returns a value with thousands separators and two decimals.
func Decimal(value float64) string {
	return printer.Sprintf("%.2f", value)
}
