package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

const boxWidth = 78

// PrintHeader prints the calculator banner and the tax parameters in use
func PrintHeader(w io.Writer, taxConfig TaxConfig) {
	fmt.Fprintln(w, "╔══════════════════════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(w, "║                 SHARE SALE CAPITAL GAINS TAX CALCULATOR                      ║")
	fmt.Fprintln(w, "╚══════════════════════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Deemed cost: %s (%s if held over 10 years) | Tax: %s up to %s, %s above | Transfer tax: %s\n",
		FormatPercent(taxConfig.GetDeemedCostRate()),
		FormatPercent(taxConfig.GetDeemedCostRateLongHold()),
		FormatPercent(taxConfig.GetLowerRate()),
		FormatEuro(taxConfig.GetBracketThreshold()),
		FormatPercent(taxConfig.GetUpperRate()),
		FormatPercent(taxConfig.GetBuyerTransferTaxRate()))
	fmt.Fprintln(w)
}

func printRow(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-42s %33s\n", label, value)
}

func printSection(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s\n", title)
	fmt.Fprintln(w, strings.Repeat("─", boxWidth))
}

// PrintBreakdown prints the seller's and the buyer's share of a calculation
func PrintBreakdown(w io.Writer, b TaxBreakdown) {
	printSection(w, "Seller")
	printRow(w, "Sale price", FormatEuro(b.GrossSalePrice))
	printRow(w, "Deemed acquisition cost", fmt.Sprintf("%s (%s)",
		FormatEuro(b.DeemedAcquisitionCost), FormatPercent(b.DeemedAcquisitionCostRate)))
	printRow(w, "Actual acquisition cost", FormatEuro(b.ActualCostBasis))
	printRow(w, "Deductible amount", FormatEuro(b.EffectiveDeduction))
	printRow(w, "  Deduction used", b.DeductionMethod.String())
	printRow(w, "Taxable gain in total", FormatEuro(b.TaxableGain))
	printRow(w, "Taxable gain (lower rate)", fmt.Sprintf("%s (%s)",
		FormatEuro(b.GainUnder30k), FormatEuro(b.TaxUnder30k)))
	printRow(w, "Taxable gain (upper rate)", fmt.Sprintf("%s (%s)",
		FormatEuro(b.GainOver30k), FormatEuro(b.TaxOver30k)))
	printRow(w, "Total tax", FormatEuro(b.TotalTax))
	printRow(w, "Net sale price", FormatEuro(b.NetSalePrice))
	fmt.Fprintln(w, strings.Repeat("─", boxWidth))
	fmt.Fprintln(w, "  The deemed acquisition cost is higher if you have owned the shares over 10 years.")
	fmt.Fprintln(w, "  Check the exact holding period!")

	printSection(w, "Buyer")
	rate := decimal.Zero
	if b.GrossSalePrice.IsPositive() {
		rate = b.BuyerTransferTax.Div(b.GrossSalePrice)
	}
	printRow(w, fmt.Sprintf("Transfer tax (%s)", FormatPercent(rate)), FormatEuro(b.BuyerTransferTax))
	fmt.Fprintln(w)
}

// PrintReverseResult prints the sale price found for a target net amount followed by its breakdown
func PrintReverseResult(w io.Writer, targetNet decimal.Decimal, result ReverseResult) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "╔══════════════════════════════════════════════════════════════════════════════╗\n")
	fmt.Fprintf(w, "║ Net %-26s requires sale price %-26s ║\n", FormatEuro(targetNet), FormatEuro(result.GrossSalePrice))
	fmt.Fprintf(w, "╚══════════════════════════════════════════════════════════════════════════════╝\n")
	fmt.Fprintf(w, "  Regime: %s\n", result.Regime)
	PrintBreakdown(w, result.Breakdown)
}

// PrintSweep prints the sweep table
func PrintSweep(w io.Writer, rows []SweepRow) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%16s │ %14s │ %14s │ %14s │ %16s │ %7s\n",
		"Sale Price", "Deduction", "Taxable Gain", "Tax", "Net", "Keep/€")
	fmt.Fprintln(w, strings.Repeat("─", 98))
	for _, row := range rows {
		b := row.Breakdown
		fmt.Fprintf(w, "%16s │ %14s │ %14s │ %14s │ %16s │ %7s\n",
			FormatAmount(b.GrossSalePrice),
			FormatAmount(b.EffectiveDeduction),
			FormatAmount(b.TaxableGain),
			FormatAmount(b.TotalTax),
			FormatAmount(b.NetSalePrice),
			formatRate(row.MarginalNetRate))
	}
	fmt.Fprintln(w, strings.Repeat("─", 98))
	fmt.Fprintln(w)
}
