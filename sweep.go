package main

import (
	"github.com/shopspring/decimal"
)

// maxSweepRows caps the number of rows a single sweep may produce
const maxSweepRows = 10000

// SweepRow holds the calculation for one sale price in a sweep
type SweepRow struct {
	Breakdown       TaxBreakdown
	MarginalNetRate decimal.Decimal // Share of the next euro of sale price the seller keeps
}

// buildGrossPrices generates sale prices from min to max (inclusive) with the given step
func buildGrossPrices(min, max, step decimal.Decimal) []decimal.Decimal {
	var prices []decimal.Decimal
	for p := min; p.LessThanOrEqual(max); p = p.Add(step) {
		prices = append(prices, p)
	}
	return prices
}

// RunGrossSweep calculates the breakdown for a range of sale prices with the same
// acquisition inputs, showing how tax and net proceeds change with the price
func RunGrossSweep(acq AcquisitionInputs, min, max, step decimal.Decimal, taxConfig TaxConfig) ([]SweepRow, error) {
	if err := acq.Validate(); err != nil {
		return nil, err
	}
	if err := taxConfig.Validate(); err != nil {
		return nil, err
	}
	if min.IsNegative() {
		return nil, ValidationError{Field: "sweep.min", Message: "minimum sale price cannot be negative"}
	}
	if !step.IsPositive() {
		return nil, ValidationError{Field: "sweep.step", Message: "step must be positive"}
	}
	if min.GreaterThan(max) {
		return nil, ValidationError{Field: "sweep.max", Message: "maximum must not be below minimum"}
	}
	if max.Sub(min).Div(step).GreaterThan(decimal.NewFromInt(maxSweepRows)) {
		return nil, ValidationError{Field: "sweep.step", Message: "step is too small for the range"}
	}

	prices := buildGrossPrices(min, max, step)
	rows := make([]SweepRow, 0, len(prices))
	for _, gross := range prices {
		inputs := TradeInputs{GrossSalePrice: gross, AcquisitionInputs: acq}
		rows = append(rows, SweepRow{
			Breakdown:       calculateBreakdown(inputs, taxConfig),
			MarginalNetRate: MarginalNetRate(acq, gross, taxConfig),
		})
	}
	return rows, nil
}

// SweepRangeFromConfig returns the configured sweep range, with defaults if not set
func SweepRangeFromConfig(sc SweepConfig) (min, max, step decimal.Decimal) {
	min = decimal.NewFromFloat(sc.Min)
	max = decimal.NewFromFloat(sc.Max)
	step = decimal.NewFromFloat(sc.Step)
	if sc.Max == 0 && sc.Min == 0 {
		max = decimal.NewFromInt(200000)
	}
	if sc.Step <= 0 {
		step = max.Sub(min).Div(decimal.NewFromInt(10))
		if !step.IsPositive() {
			step = decimal.NewFromInt(1000)
		}
	}
	return min, max, step
}
