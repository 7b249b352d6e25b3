package currency

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Default is the currency every amount is kept in.
const Default = "XAF"

// Zero-decimal currencies per ISO 4217: no minor units
var zeroDecimalCurrencies = map[string]bool{
	"BIF": true, "CLP": true, "DJF": true, "GNF": true,
	"JPY": true, "KMF": true, "KRW": true, "MGA": true,
	"PYG": true, "RWF": true, "UGX": true, "VND": true,
	"VUV": true, "XAF": true, "XOF": true, "XPF": true,
}

// IsZeroDecimal returns true for currencies with no decimal places (XAF, JPY, etc.)
func IsZeroDecimal(c string) bool {
	return zeroDecimalCurrencies[strings.ToUpper(c)]
}

// DecimalPlaces returns the number of decimal places for the currency.
func DecimalPlaces(c string) int32 {
	if IsZeroDecimal(c) {
		return 0
	}
	return 2
}

// Round rounds amount to the appropriate precision for the currency.
func Round(amount decimal.Decimal, c string) decimal.Decimal {
	return amount.Round(DecimalPlaces(c))
}

// Format prints amount with the grouping rules of tag followed by the
// currency code, e.g. "27,000 XAF" for English.
func Format(tag language.Tag, amount decimal.Decimal, c string) string {
	p := message.NewPrinter(tag)
	c = strings.ToUpper(c)
	if IsZeroDecimal(c) {
		return p.Sprintf("%d %s", Round(amount, c).IntPart(), c)
	}
	return p.Sprintf("%.2f %s", Round(amount, c).InexactFloat64(), c)
}
