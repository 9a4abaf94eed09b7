package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CURRENCY_CODES_SYMBOLS is a map of 3 digit ISO currency codes to their symbols
var CURRENCY_CODES_SYMBOLS = map[string]string{
	"usd": "$",
	"eur": "€",
	"gbp": "£",
	"aud": "AU$",
	"cad": "CA$",
	"chf": "CHF",
	"inr": "₹",
	"jpy": "¥",
	"krw": "₩",
	"sgd": "S$",
}

// zeroDecimalCurrencies have no minor unit
var zeroDecimalCurrencies = map[string]bool{
	"jpy": true,
	"krw": true,
}

// GetCurrencySymbol returns the symbol for a given currency code
// if the code is not found, it returns the code itself
func GetCurrencySymbol(code string) string {
	if symbol, ok := CURRENCY_CODES_SYMBOLS[strings.ToLower(code)]; ok {
		return symbol
	}
	return strings.ToUpper(code)
}

// GetCurrencyPrecision returns the number of minor-unit digits of a currency
func GetCurrencyPrecision(code string) int32 {
	if zeroDecimalCurrencies[strings.ToLower(code)] {
		return 0
	}
	return 2
}

// RoundToCurrency rounds an amount half away from zero to the currency's minor unit.
// All ledger comparisons happen on rounded amounts so sub-cent residue from percentage
// fees never keeps an invoice open.
func RoundToCurrency(amount decimal.Decimal, code string) decimal.Decimal {
	return amount.Round(GetCurrencyPrecision(code))
}

// FormatAmount renders an amount with its currency symbol, e.g. $1050.00
func FormatAmount(amount decimal.Decimal, code string) string {
	return GetCurrencySymbol(code) + amount.StringFixed(GetCurrencyPrecision(code))
}
