package main

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

// Share sale tax tests
//
// Rules (2024):
// - Deemed acquisition cost: 20% of the sale price, 40% if held at least 10 years
// - Actual cost basis: acquisition cost, plus transfer tax and broker fee when purchased
// - Deduction: the larger of the two
// - Capital income tax: 30% up to €30,000 of gain, 34% above
// - Buyer's transfer tax: 1.6% of the sale price

// tolerance for decimal comparisons (one cent)
var amountTolerance = decimal.New(1, -2)

func d(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func assertAmountEquals(t *testing.T, expected float64, actual decimal.Decimal, description string) {
	t.Helper()
	if actual.Sub(d(expected)).Abs().GreaterThan(amountTolerance) {
		t.Errorf("%s: expected %.2f €, got %s € (diff: %s)",
			description, expected, actual.StringFixed(2), actual.Sub(d(expected)).StringFixed(2))
	}
}

func mustTrade(t *testing.T, gross, cost, transferTax, brokerFee float64, purchased, over10 bool) TradeInputs {
	t.Helper()
	inputs, err := NewTradeInputs(gross, cost, transferTax, brokerFee, purchased, over10)
	if err != nil {
		t.Fatalf("NewTradeInputs: %v", err)
	}
	return inputs
}

// =============================================================================
// Worked examples
// =============================================================================

func TestCalculate_SmallSaleNoCost(t *testing.T) {
	b, err := Calculate(mustTrade(t, 1000, 0, 0, 0, false, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertAmountEquals(t, 200, b.DeemedAcquisitionCost, "deemed cost (20% of 1000)")
	assertAmountEquals(t, 200, b.EffectiveDeduction, "deduction")
	assertAmountEquals(t, 800, b.TaxableGain, "gain")
	assertAmountEquals(t, 240, b.TotalTax, "tax (800 × 30%)")
	assertAmountEquals(t, 760, b.NetSalePrice, "net")
	assertAmountEquals(t, 16, b.BuyerTransferTax, "buyer transfer tax (1.6%)")
	if b.DeductionMethod != DeductionDeemed {
		t.Errorf("expected deemed deduction, got %s", b.DeductionMethod)
	}
}

func TestCalculate_LongHoldUsesFortyPercent(t *testing.T) {
	b, err := Calculate(mustTrade(t, 50000, 5000, 0, 0, true, true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertAmountEquals(t, 20000, b.DeemedAcquisitionCost, "deemed cost (40% of 50000)")
	assertAmountEquals(t, 5000, b.ActualCostBasis, "actual cost basis")
	assertAmountEquals(t, 20000, b.EffectiveDeduction, "deduction")
	assertAmountEquals(t, 30000, b.TaxableGain, "gain")
	assertAmountEquals(t, 30000, b.GainUnder30k, "gain at lower rate")
	assertAmountEquals(t, 0, b.GainOver30k, "gain at upper rate")
	assertAmountEquals(t, 9000, b.TotalTax, "tax (all at 30%)")
	assertAmountEquals(t, 41000, b.NetSalePrice, "net")
	if b.GainBand() != BandLower {
		t.Errorf("expected lower band, got %s", b.GainBand())
	}
}

func TestCalculate_BothBrackets(t *testing.T) {
	b, err := Calculate(mustTrade(t, 100000, 10000, 200, 300, true, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertAmountEquals(t, 20000, b.DeemedAcquisitionCost, "deemed cost")
	assertAmountEquals(t, 10500, b.ActualCostBasis, "actual cost basis (10000 + 200 + 300)")
	assertAmountEquals(t, 20000, b.EffectiveDeduction, "deduction")
	assertAmountEquals(t, 80000, b.TaxableGain, "gain")
	assertAmountEquals(t, 30000, b.GainUnder30k, "gain at lower rate")
	assertAmountEquals(t, 50000, b.GainOver30k, "gain at upper rate")
	assertAmountEquals(t, 9000, b.TaxUnder30k, "tax at 30%")
	assertAmountEquals(t, 17000, b.TaxOver30k, "tax at 34%")
	assertAmountEquals(t, 26000, b.TotalTax, "total tax")
	assertAmountEquals(t, 74000, b.NetSalePrice, "net")
	assertAmountEquals(t, 1600, b.BuyerTransferTax, "buyer transfer tax")
	if b.GainBand() != BandUpper {
		t.Errorf("expected upper band, got %s", b.GainBand())
	}
}

// =============================================================================
// Cost basis and deduction choice
// =============================================================================

func TestCalculate_PurchaseCostsOnlyCountedWhenPurchased(t *testing.T) {
	tests := []struct {
		name          string
		purchased     bool
		expectedBasis float64
	}{
		{"purchased", true, 10500},
		{"inherited or gifted", false, 10000},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, err := Calculate(mustTrade(t, 20000, 10000, 200, 300, tc.purchased, false))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertAmountEquals(t, tc.expectedBasis, b.ActualCostBasis, "actual cost basis")
			assertAmountEquals(t, tc.expectedBasis, b.EffectiveDeduction, "deduction (actual beats 4000 deemed)")
			if b.DeductionMethod != DeductionActual {
				t.Errorf("expected actual deduction, got %s", b.DeductionMethod)
			}
		})
	}
}

func TestCalculate_DeductionSwitchesAtCrossover(t *testing.T) {
	// Actual cost 10000 equals 20% deemed cost at a sale price of 50000
	tests := []struct {
		gross          float64
		expectedMethod DeductionMethod
		expectedDeduct float64
	}{
		{40000, DeductionActual, 10000},
		{50000, DeductionActual, 10000}, // tie goes to actual
		{50001, DeductionDeemed, 10000.2},
		{60000, DeductionDeemed, 12000},
	}

	for _, tc := range tests {
		b, err := Calculate(mustTrade(t, tc.gross, 10000, 0, 0, false, false))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.DeductionMethod != tc.expectedMethod {
			t.Errorf("gross %.0f: expected %s, got %s", tc.gross, tc.expectedMethod, b.DeductionMethod)
		}
		assertAmountEquals(t, tc.expectedDeduct, b.EffectiveDeduction, "deduction")
		if b.EffectiveDeduction.LessThan(b.DeemedAcquisitionCost) || b.EffectiveDeduction.LessThan(b.ActualCostBasis) {
			t.Errorf("gross %.0f: deduction %s is not the larger of deemed %s and actual %s",
				tc.gross, b.EffectiveDeduction, b.DeemedAcquisitionCost, b.ActualCostBasis)
		}
	}
}

func TestCalculate_LossGivesZeroGain(t *testing.T) {
	b, err := Calculate(mustTrade(t, 5000, 8000, 0, 0, false, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertAmountEquals(t, 0, b.TaxableGain, "gain")
	assertAmountEquals(t, 0, b.TotalTax, "tax")
	assertAmountEquals(t, 5000, b.NetSalePrice, "net equals gross")
	assertAmountEquals(t, 80, b.BuyerTransferTax, "buyer still pays transfer tax")
	if b.GainBand() != BandNoGain {
		t.Errorf("expected no-gain band, got %s", b.GainBand())
	}
}

func TestCalculate_ZeroSale(t *testing.T) {
	b, err := Calculate(mustTrade(t, 0, 0, 0, 0, false, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.TotalTax.IsZero() || !b.NetSalePrice.IsZero() || !b.BuyerTransferTax.IsZero() {
		t.Errorf("zero sale should give zero everything, got tax %s net %s transfer %s",
			b.TotalTax, b.NetSalePrice, b.BuyerTransferTax)
	}
	if !b.EffectiveTaxRate().IsZero() {
		t.Errorf("effective rate of a zero sale should be 0, got %s", b.EffectiveTaxRate())
	}
}

// =============================================================================
// Bracket boundary
// =============================================================================

func TestCalculate_BracketBoundary(t *testing.T) {
	// No cost: gain is 80% of the price, so the gain hits 30000 at a price of 37500
	tests := []struct {
		gross       float64
		expectedTax float64
		calculation string
	}{
		{37500, 9000, "30000 × 0.30"},
		{37501.25, 9000.34, "30000 × 0.30 + 1 × 0.34"},
		{37498.75, 8999.70, "29999 × 0.30"},
	}

	for _, tc := range tests {
		t.Run(tc.calculation, func(t *testing.T) {
			b, err := Calculate(mustTrade(t, tc.gross, 0, 0, 0, false, false))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertAmountEquals(t, tc.expectedTax, b.TotalTax, tc.calculation)
			if b.GainUnder30k.GreaterThan(d(30000)) {
				t.Errorf("gain at lower rate %s exceeds threshold", b.GainUnder30k)
			}
		})
	}
}

func TestCalculate_CustomTaxConfig(t *testing.T) {
	taxConfig := TaxConfig{
		DeemedCostRate:       0.25,
		BracketThreshold:     10000,
		LowerRate:            0.20,
		UpperRate:            0.50,
		BuyerTransferTaxRate: 0.02,
	}
	b, err := CalculateWithConfig(mustTrade(t, 40000, 0, 0, 0, false, false), taxConfig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// gain 30000: 10000 × 0.20 + 20000 × 0.50
	assertAmountEquals(t, 10000, b.DeemedAcquisitionCost, "deemed cost at 25%")
	assertAmountEquals(t, 12000, b.TotalTax, "tax")
	assertAmountEquals(t, 800, b.BuyerTransferTax, "transfer tax at 2%")
}

// =============================================================================
// Invalid input
// =============================================================================

func TestCalculate_RejectsNegativeAmounts(t *testing.T) {
	tests := []struct {
		name   string
		inputs TradeInputs
		field  string
	}{
		{"gross", TradeInputs{GrossSalePrice: d(-1)}, "gross_sale_price"},
		{"cost", TradeInputs{GrossSalePrice: d(100), AcquisitionInputs: AcquisitionInputs{ActualAcquisitionCost: d(-5)}}, "actual_acquisition_cost"},
		{"transfer tax", TradeInputs{GrossSalePrice: d(100), AcquisitionInputs: AcquisitionInputs{AcquisitionTransferTax: d(-5)}}, "acquisition_transfer_tax"},
		{"broker fee", TradeInputs{GrossSalePrice: d(100), AcquisitionInputs: AcquisitionInputs{AcquisitionBrokerFee: d(-5)}}, "acquisition_broker_fee"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Calculate(tc.inputs)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			var ve ValidationError
			if !errors.As(err, &ve) || ve.Field != tc.field {
				t.Errorf("expected validation error on %s, got %v", tc.field, err)
			}
		})
	}
}

func TestNewTradeInputs_RejectsNonFinite(t *testing.T) {
	var zero float64
	nan := zero / zero
	if _, err := NewTradeInputs(nan, 0, 0, 0, false, false); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("NaN gross: expected ErrInvalidInput, got %v", err)
	}
	inf := 1 / zero
	if _, err := NewTradeInputs(100, inf, 0, 0, false, false); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("infinite cost: expected ErrInvalidInput, got %v", err)
	}
}

func TestCalculate_RejectsRateOfHundredPercent(t *testing.T) {
	taxConfig := DefaultTaxConfig()
	taxConfig.UpperRate = 1.0
	_, err := CalculateWithConfig(mustTrade(t, 1000, 0, 0, 0, false, false), taxConfig)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for a 100%% rate, got %v", err)
	}
}

func TestMarginalNetRate(t *testing.T) {
	taxConfig := DefaultTaxConfig()
	acq := AcquisitionInputs{ActualAcquisitionCost: d(10000)}
	tests := []struct {
		gross    float64
		expected float64
	}{
		{5000, 1},       // no gain
		{20000, 0.70},   // actual cost, lower bracket
		{45000, 0.66},   // actual cost, upper bracket
		{100000, 0.728}, // deemed cost, upper bracket: 1 - 0.34 × 0.8
	}
	for _, tc := range tests {
		got := MarginalNetRate(acq, d(tc.gross), taxConfig)
		if !got.Equal(d(tc.expected)) {
			t.Errorf("gross %.0f: expected marginal rate %.3f, got %s", tc.gross, tc.expected, got)
		}
	}
}
