package domain

import "github.com/shopspring/decimal"

// VATBreakdown splits a gross amount into its net and VAT portions.
type VATBreakdown struct {
	Gross decimal.Decimal
	Net   decimal.Decimal
	VAT   decimal.Decimal
	Rate  decimal.Decimal
}

var one = decimal.NewFromInt(1)
var hundred = decimal.NewFromInt(100)

// SplitVAT extracts the VAT portion already contained in gross at the
// given percentage rate: net = gross / (1 + rate/100), vat = gross - net.
// Both legs are rounded to 2 decimals so they always sum back to gross.
func SplitVAT(gross, ratePercent decimal.Decimal) VATBreakdown {
	if ratePercent.LessThanOrEqual(decimal.Zero) {
		return VATBreakdown{Gross: gross, Net: gross, VAT: decimal.Zero, Rate: ratePercent}
	}

	net := gross.Div(one.Add(ratePercent.Div(hundred))).Round(2)
	vat := gross.Sub(net).Round(2)

	return VATBreakdown{Gross: gross, Net: net, VAT: vat, Rate: ratePercent}
}

// VATRates maps a rate reference name to its percentage.
type VATRates map[string]decimal.Decimal

// RateFor resolves a rate reference; unknown references are taxed at zero.
func (r VATRates) RateFor(ref string) decimal.Decimal {
	if rate, ok := r[ref]; ok {
		return rate
	}

	return decimal.Zero
}
