package main

import (
	"github.com/shopspring/decimal"
)

// Finnish capital gains on a share sale (luovutusvoitto), 2024 rules:
// - Deduction is the larger of the actual acquisition cost and the deemed acquisition cost
//   (20% of the sale price, 40% if the shares were held at least 10 years)
// - Capital income up to €30,000 is taxed at 30%, the excess at 34%
// - The buyer pays 1.6% transfer tax on the price
// Rates are configurable via TaxConfig in config.go.

// Calculate computes the tax breakdown of a share sale using the default tax configuration
func Calculate(inputs TradeInputs) (TaxBreakdown, error) {
	return CalculateWithConfig(inputs, DefaultTaxConfig())
}

// CalculateWithConfig computes the tax breakdown of a share sale.
// Negative amounts are rejected with a ValidationError rather than clamped.
func CalculateWithConfig(inputs TradeInputs, taxConfig TaxConfig) (TaxBreakdown, error) {
	if err := inputs.Validate(); err != nil {
		return TaxBreakdown{}, err
	}
	if err := taxConfig.Validate(); err != nil {
		return TaxBreakdown{}, err
	}
	return calculateBreakdown(inputs, taxConfig), nil
}

// calculateBreakdown assumes validated inputs
func calculateBreakdown(inputs TradeInputs, taxConfig TaxConfig) TaxBreakdown {
	gross := inputs.GrossSalePrice
	rate := taxConfig.DeemedRateFor(inputs.HeldOver10Years)
	threshold := taxConfig.GetBracketThreshold()

	deemed := gross.Mul(rate)
	basis := inputs.ActualCostBasis()

	// Ties go to the actual cost; the amount is the same either way
	method := DeductionActual
	deduction := basis
	if deemed.GreaterThan(basis) {
		method = DeductionDeemed
		deduction = deemed
	}

	gain := decimal.Max(decimal.Zero, gross.Sub(deduction))
	gainUnder := decimal.Min(gain, threshold)
	gainOver := decimal.Max(decimal.Zero, gain.Sub(threshold))

	taxUnder := gainUnder.Mul(taxConfig.GetLowerRate())
	taxOver := gainOver.Mul(taxConfig.GetUpperRate())
	totalTax := taxUnder.Add(taxOver)

	return TaxBreakdown{
		GrossSalePrice:            gross,
		DeemedAcquisitionCostRate: rate,
		DeemedAcquisitionCost:     deemed,
		ActualCostBasis:           basis,
		DeductionMethod:           method,
		EffectiveDeduction:        deduction,
		TaxableGain:               gain,
		GainUnder30k:              gainUnder,
		GainOver30k:               gainOver,
		TaxUnder30k:               taxUnder,
		TaxOver30k:                taxOver,
		TotalTax:                  totalTax,
		NetSalePrice:              gross.Sub(totalTax),
		BuyerTransferTax:          gross.Mul(taxConfig.GetBuyerTransferTaxRate()),
	}
}

// GainBand returns which part of the tax schedule the breakdown's gain falls in
func (b TaxBreakdown) GainBand() GainBand {
	switch {
	case b.TaxableGain.IsZero():
		return BandNoGain
	case b.GainOver30k.IsPositive():
		return BandUpper
	default:
		return BandLower
	}
}

// EffectiveTaxRate returns total tax as a share of the gross sale price (0 for a zero price)
func (b TaxBreakdown) EffectiveTaxRate() decimal.Decimal {
	if b.GrossSalePrice.IsZero() {
		return decimal.Zero
	}
	return b.TotalTax.Div(b.GrossSalePrice)
}

// MarginalNetRate returns how much of one more euro of sale price the seller keeps
// at the breakdown's sale price
func MarginalNetRate(acq AcquisitionInputs, gross decimal.Decimal, taxConfig TaxConfig) decimal.Decimal {
	b := calculateBreakdown(TradeInputs{GrossSalePrice: gross, AcquisitionInputs: acq}, taxConfig)
	regime := Regime{Deduction: b.DeductionMethod, Band: b.GainBand()}
	slope, _ := regime.line(acq.ActualCostBasis(), taxConfig.DeemedRateFor(acq.HeldOver10Years), taxConfig)
	return slope
}
