package utils

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var clpPrinter = message.NewPrinter(language.Spanish)

// FormatCLP renders an amount of pesos the way they are printed on a boleta: "$12.345".
func FormatCLP(amount int64) string {
	if amount < 0 {
		return clpPrinter.Sprintf("-$%d", -amount)
	}
	return clpPrinter.Sprintf("$%d", amount)
}
