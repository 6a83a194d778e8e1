package utils

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// brPrinter renders numbers with Brazilian Portuguese separators, matching
// what customers see on PIX receipts.
var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders an amount as Brazilian reais ("R$ 1.234,50").
func FormatBRL(v float64) string {
	return brPrinter.Sprintf("R$ %.2f", v)
}

// FormatPercent renders a bonus percent without decimals ("50%").
func FormatPercent(v float64) string {
	return brPrinter.Sprintf("%.0f%%", v)
}
