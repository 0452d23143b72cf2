package pos

import "github.com/shopspring/decimal"

// TaxBreakdown splits a tax-inclusive gross amount into its net and VAT
// components: net = gross / (1 + rate), vat = gross - net. Net is rounded to
// two decimals and the VAT absorbs the remainder so the parts always sum back
// to the gross.
type TaxBreakdown struct {
	Gross decimal.Decimal
	Net   decimal.Decimal
	VAT   decimal.Decimal
}

func SplitInclusiveVAT(gross, rate decimal.Decimal) TaxBreakdown {
	net := gross.Div(decimal.NewFromInt(1).Add(rate)).Round(2)
	return TaxBreakdown{
		Gross: gross,
		Net:   net,
		VAT:   gross.Sub(net),
	}
}
