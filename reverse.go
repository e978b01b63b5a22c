package main

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Net proceeds as a function of the sale price is continuous, strictly increasing and
// piecewise linear. The breakpoints are:
//   - g1 = A / r, where the deemed deduction overtakes the actual cost basis A
//   - A and A + T on the actual-cost side, where the gain starts and reaches the threshold T
//   - T / (1 - r) on the deemed side, where the gain reaches the threshold
// Each piece is a Regime with its own slope and intercept, so the reverse calculation
// solves one linear equation per regime instead of searching numerically.

// solverTolerance is how far outside its interval a root may fall and still be accepted.
// Decimal division rounds at DivisionPrecision digits, so a root exactly on a breakpoint
// can come out a few ulps past it.
var solverTolerance = decimal.New(1, -9)

// verifyTolerance bounds the difference between the requested net and the forward
// calculation at the solved price
var verifyTolerance = decimal.New(1, -6)

// Regime is one linear piece of the net proceeds function
type Regime struct {
	Deduction DeductionMethod
	Band      GainBand
}

func (r Regime) String() string {
	return fmt.Sprintf("%s / %s", r.Deduction, r.Band)
}

// line returns slope a and intercept b of net = a*gross + b within the regime
func (r Regime) line(basis, deemedRate decimal.Decimal, taxConfig TaxConfig) (a, b decimal.Decimal) {
	one := decimal.NewFromInt(1)
	t1 := taxConfig.GetLowerRate()
	t2 := taxConfig.GetUpperRate()
	threshold := taxConfig.GetBracketThreshold()

	switch r.Deduction {
	case DeductionActual:
		switch r.Band {
		case BandLower:
			// net = g - t1(g - A)
			return one.Sub(t1), t1.Mul(basis)
		case BandUpper:
			// net = g - t1*T - t2(g - A - T)
			return one.Sub(t2), t2.Mul(basis.Add(threshold)).Sub(t1.Mul(threshold))
		}
	case DeductionDeemed:
		taxedShare := one.Sub(deemedRate)
		switch r.Band {
		case BandLower:
			// net = g - t1(1-r)g
			return one.Sub(t1.Mul(taxedShare)), decimal.Zero
		case BandUpper:
			// net = g - t1*T - t2((1-r)g - T)
			return one.Sub(t2.Mul(taxedShare)), t2.Sub(t1).Mul(threshold)
		}
	}
	return one, decimal.Zero
}

// regimeSpan is a regime together with its valid gross interval [lo, hi].
// hi is ignored when unbounded.
type regimeSpan struct {
	regime    Regime
	lo, hi    decimal.Decimal
	unbounded bool
	slope     decimal.Decimal
	intercept decimal.Decimal
}

func (s regimeSpan) contains(gross decimal.Decimal) bool {
	if gross.LessThan(s.lo.Sub(solverTolerance)) {
		return false
	}
	return s.unbounded || gross.LessThanOrEqual(s.hi.Add(solverTolerance))
}

func (s regimeSpan) clamp(gross decimal.Decimal) decimal.Decimal {
	if gross.LessThan(s.lo) {
		return s.lo
	}
	if !s.unbounded && gross.GreaterThan(s.hi) {
		return s.hi
	}
	return gross
}

// interval is a closed range of sale prices, possibly unbounded above
type interval struct {
	lo, hi    decimal.Decimal
	unbounded bool
	empty     bool
}

func (iv interval) intersect(lo decimal.Decimal, hi *decimal.Decimal) interval {
	out := iv
	out.lo = decimal.Max(iv.lo, lo)
	if hi != nil {
		if out.unbounded || hi.LessThan(out.hi) {
			out.hi = *hi
		}
		out.unbounded = false
	}
	if !out.unbounded && out.lo.GreaterThan(out.hi) {
		out.empty = true
	}
	return out
}

// enumerateRegimes lists the reachable regimes in ascending sale price order
func enumerateRegimes(acq AcquisitionInputs, taxConfig TaxConfig) []regimeSpan {
	basis := acq.ActualCostBasis()
	rate := taxConfig.DeemedRateFor(acq.HeldOver10Years)
	threshold := taxConfig.GetBracketThreshold()

	// Actual cost side: [0, g1]. With a zero rate the deemed cost never wins.
	actualSide := interval{lo: decimal.Zero, unbounded: true}
	deemedSide := interval{empty: true}
	if rate.IsPositive() {
		g1 := basis.Div(rate)
		actualSide = actualSide.intersect(decimal.Zero, &g1)
		deemedSide = interval{lo: g1, unbounded: true}
	}

	var spans []regimeSpan
	add := func(regime Regime, iv interval) {
		if iv.empty {
			return
		}
		a, b := regime.line(basis, rate, taxConfig)
		spans = append(spans, regimeSpan{
			regime:    regime,
			lo:        iv.lo,
			hi:        iv.hi,
			unbounded: iv.unbounded,
			slope:     a,
			intercept: b,
		})
	}

	gainStart := basis
	bracketStart := basis.Add(threshold)
	add(Regime{DeductionActual, BandNoGain}, actualSide.intersect(decimal.Zero, &gainStart))
	add(Regime{DeductionActual, BandLower}, actualSide.intersect(gainStart, &bracketStart))
	add(Regime{DeductionActual, BandUpper}, actualSide.intersect(bracketStart, nil))

	if !deemedSide.empty {
		deemedBracketStart := threshold.Div(decimal.NewFromInt(1).Sub(rate))
		add(Regime{DeductionDeemed, BandLower}, deemedSide.intersect(decimal.Zero, &deemedBracketStart))
		add(Regime{DeductionDeemed, BandUpper}, deemedSide.intersect(deemedBracketStart, nil))
	}

	return spans
}

// ReverseCalculate finds the gross sale price whose net proceeds equal targetNet,
// using the default tax configuration
func ReverseCalculate(targetNet decimal.Decimal, acq AcquisitionInputs) (ReverseResult, error) {
	return ReverseCalculateWithConfig(targetNet, acq, DefaultTaxConfig())
}

// ReverseCalculateWithConfig finds the gross sale price whose net proceeds equal targetNet.
// It returns ErrNotSolvable when no non-negative price produces targetNet.
func ReverseCalculateWithConfig(targetNet decimal.Decimal, acq AcquisitionInputs, taxConfig TaxConfig) (ReverseResult, error) {
	if err := acq.Validate(); err != nil {
		return ReverseResult{}, err
	}
	if err := taxConfig.Validate(); err != nil {
		return ReverseResult{}, err
	}
	// Net is zero at a zero price and only grows from there
	if targetNet.IsNegative() {
		return ReverseResult{}, fmt.Errorf("target net %s: %w", targetNet, ErrNotSolvable)
	}

	for _, span := range enumerateRegimes(acq, taxConfig) {
		gross := targetNet.Sub(span.intercept).Div(span.slope)
		if !span.contains(gross) {
			continue
		}
		gross = span.clamp(gross)

		breakdown := calculateBreakdown(TradeInputs{GrossSalePrice: gross, AcquisitionInputs: acq}, taxConfig)
		if breakdown.NetSalePrice.Sub(targetNet).Abs().GreaterThan(verifyTolerance) {
			continue
		}
		return ReverseResult{
			GrossSalePrice: gross,
			Regime:         span.regime,
			Breakdown:      breakdown,
		}, nil
	}

	return ReverseResult{}, fmt.Errorf("target net %s: %w", targetNet, ErrNotSolvable)
}

// NetProceedsBreakpoints returns the sale prices where the net proceeds line changes slope,
// in ascending order
func NetProceedsBreakpoints(acq AcquisitionInputs, taxConfig TaxConfig) []decimal.Decimal {
	var points []decimal.Decimal
	for i, span := range enumerateRegimes(acq, taxConfig) {
		if i == 0 || span.lo.IsZero() {
			continue
		}
		if len(points) > 0 && points[len(points)-1].Equal(span.lo) {
			continue
		}
		points = append(points, span.lo)
	}
	return points
}
