package main

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is wrapped by every ValidationError so callers can test with errors.Is
var ErrInvalidInput = errors.New("invalid input")

// ErrNotSolvable is returned by the reverse calculation when no non-negative gross price
// produces the requested net proceeds
var ErrNotSolvable = errors.New("no gross sale price produces the requested net proceeds")

// ValidationError describes a rejected input field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// DeductionMethod tells which deduction was used for the taxable gain
type DeductionMethod int

const (
	DeductionActual DeductionMethod = iota // Actual acquisition cost (hankintameno)
	DeductionDeemed                        // Deemed acquisition cost (hankintameno-olettama)
)

func (d DeductionMethod) String() string {
	switch d {
	case DeductionActual:
		return "Actual Acquisition Cost"
	case DeductionDeemed:
		return "Deemed Acquisition Cost"
	default:
		return "Unknown"
	}
}

// GainBand is the part of the tax schedule the taxable gain falls in
type GainBand int

const (
	BandNoGain GainBand = iota // Sale price does not exceed the deduction
	BandLower                  // Gain taxed at the lower rate only
	BandUpper                  // Gain reaches the upper rate
)

func (b GainBand) String() string {
	switch b {
	case BandNoGain:
		return "No Gain"
	case BandLower:
		return "Lower Bracket"
	case BandUpper:
		return "Upper Bracket"
	default:
		return "Unknown"
	}
}

// AcquisitionInputs are the acquisition-side facts of a sale. They are shared between
// the forward and the reverse calculation.
type AcquisitionInputs struct {
	ActualAcquisitionCost  decimal.Decimal
	AcquisitionTransferTax decimal.Decimal // Only counted when AcquiredByPurchase
	AcquisitionBrokerFee   decimal.Decimal // Only counted when AcquiredByPurchase
	AcquiredByPurchase     bool
	HeldOver10Years        bool
}

// ActualCostBasis returns the documented acquisition cost including purchase costs
func (a AcquisitionInputs) ActualCostBasis() decimal.Decimal {
	basis := a.ActualAcquisitionCost
	if a.AcquiredByPurchase {
		basis = basis.Add(a.AcquisitionTransferTax).Add(a.AcquisitionBrokerFee)
	}
	return basis
}

// Validate rejects negative amounts
func (a AcquisitionInputs) Validate() error {
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"actual_acquisition_cost", a.ActualAcquisitionCost},
		{"acquisition_transfer_tax", a.AcquisitionTransferTax},
		{"acquisition_broker_fee", a.AcquisitionBrokerFee},
	}
	for _, f := range fields {
		if f.value.IsNegative() {
			return ValidationError{Field: f.name, Message: fmt.Sprintf("amount cannot be negative (got %s)", f.value)}
		}
	}
	return nil
}

// TradeInputs holds everything needed for the forward calculation
type TradeInputs struct {
	GrossSalePrice decimal.Decimal
	AcquisitionInputs
}

// Validate rejects negative amounts
func (t TradeInputs) Validate() error {
	if t.GrossSalePrice.IsNegative() {
		return ValidationError{Field: "gross_sale_price", Message: fmt.Sprintf("amount cannot be negative (got %s)", t.GrossSalePrice)}
	}
	return t.AcquisitionInputs.Validate()
}

// NewAcquisitionInputs builds AcquisitionInputs from plain numbers, rejecting
// negative, NaN and infinite values
func NewAcquisitionInputs(cost, transferTax, brokerFee float64, purchased, heldOver10Years bool) (AcquisitionInputs, error) {
	costD, err := amountFromFloat("actual_acquisition_cost", cost)
	if err != nil {
		return AcquisitionInputs{}, err
	}
	transferD, err := amountFromFloat("acquisition_transfer_tax", transferTax)
	if err != nil {
		return AcquisitionInputs{}, err
	}
	feeD, err := amountFromFloat("acquisition_broker_fee", brokerFee)
	if err != nil {
		return AcquisitionInputs{}, err
	}
	return AcquisitionInputs{
		ActualAcquisitionCost:  costD,
		AcquisitionTransferTax: transferD,
		AcquisitionBrokerFee:   feeD,
		AcquiredByPurchase:     purchased,
		HeldOver10Years:        heldOver10Years,
	}, nil
}

// NewTradeInputs builds TradeInputs from plain numbers
func NewTradeInputs(gross, cost, transferTax, brokerFee float64, purchased, heldOver10Years bool) (TradeInputs, error) {
	grossD, err := amountFromFloat("gross_sale_price", gross)
	if err != nil {
		return TradeInputs{}, err
	}
	acq, err := NewAcquisitionInputs(cost, transferTax, brokerFee, purchased, heldOver10Years)
	if err != nil {
		return TradeInputs{}, err
	}
	return TradeInputs{GrossSalePrice: grossD, AcquisitionInputs: acq}, nil
}

// finiteFromFloat converts a float to decimal, rejecting NaN and infinities
func finiteFromFloat(field string, v float64) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero, ValidationError{Field: field, Message: "amount must be a finite number"}
	}
	return decimal.NewFromFloat(v), nil
}

// amountFromFloat is finiteFromFloat that also rejects negative values
func amountFromFloat(field string, v float64) (decimal.Decimal, error) {
	d, err := finiteFromFloat(field, v)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, ValidationError{Field: field, Message: fmt.Sprintf("amount cannot be negative (got %s)", d)}
	}
	return d, nil
}

// TaxBreakdown is the full result of a forward calculation. Values are not rounded.
type TaxBreakdown struct {
	GrossSalePrice            decimal.Decimal
	DeemedAcquisitionCostRate decimal.Decimal // 0.20, or 0.40 when held over 10 years
	DeemedAcquisitionCost     decimal.Decimal
	ActualCostBasis           decimal.Decimal
	DeductionMethod           DeductionMethod
	EffectiveDeduction        decimal.Decimal
	TaxableGain               decimal.Decimal
	GainUnder30k              decimal.Decimal
	GainOver30k               decimal.Decimal
	TaxUnder30k               decimal.Decimal
	TaxOver30k                decimal.Decimal
	TotalTax                  decimal.Decimal
	NetSalePrice              decimal.Decimal
	BuyerTransferTax          decimal.Decimal // Paid by the buyer, does not affect the seller's net
}

// ReverseResult is the outcome of a successful reverse calculation
type ReverseResult struct {
	GrossSalePrice decimal.Decimal
	Regime         Regime
	Breakdown      TaxBreakdown // Forward calculation at GrossSalePrice
}
