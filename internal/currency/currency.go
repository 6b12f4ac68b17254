// Package currency converts between minor-unit amounts and localized
// display strings.
package currency

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	clpPrinter = message.NewPrinter(language.MustParse("es-CL"))
	usdPrinter = message.NewPrinter(language.English)
)

// Display formats an integer minor-unit amount for the given ISO currency
// code. CLP has no minor units and is printed as a whole number with locale
// thousand separators; everything else is divided by 100 and shown with two
// decimals.
func Display(minor int64, code string) string {
	if code == "CLP" {
		return clpPrinter.Sprintf("$%d", minor)
	}
	return usdPrinter.Sprintf("$%.2f", float64(minor)/100)
}

// ToMinorUnits converts a major-unit amount to minor units, rounding to the
// nearest integer at the two-decimal boundary.
func ToMinorUnits(major float64) int64 {
	return int64(math.Round(major * 100))
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(minor int64) float64 {
	return float64(minor) / 100
}
