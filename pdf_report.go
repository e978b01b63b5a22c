package main

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// PDFReportOptions controls optional parts of the PDF report
type PDFReportOptions struct {
	Title       string
	GeneratedAt time.Time
	// TargetNet is set when the sale price was found from a target net amount
	TargetNet *decimal.Decimal
	Regime    string
}

// BreakdownPDFReport renders a single calculation to PDF
type BreakdownPDFReport struct {
	pdf       *fpdf.Fpdf
	tr        func(string) string
	inputs    TradeInputs
	breakdown TaxBreakdown
	opts      PDFReportOptions
}

const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight
)

// GenerateBreakdownPDFReport creates a one-page PDF of the calculation
func GenerateBreakdownPDFReport(inputs TradeInputs, breakdown TaxBreakdown, opts PDFReportOptions) ([]byte, error) {
	if opts.Title == "" {
		opts.Title = "Share Sale Tax Calculation"
	}
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	report := &BreakdownPDFReport{
		pdf:       pdf,
		tr:        pdf.UnicodeTranslatorFromDescriptor(""), // cp1252 covers € and Finnish letters
		inputs:    inputs,
		breakdown: breakdown,
		opts:      opts,
	}

	report.pdf.SetMargins(marginLeft, marginTop, marginRight)
	report.pdf.SetAutoPageBreak(true, marginBottom)

	report.pdf.AddPage()
	report.addTitle()
	report.addInputs()
	report.addSellerSection()
	report.addBuyerSection()
	report.addDisclaimer()

	var buf bytes.Buffer
	if err := report.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *BreakdownPDFReport) addTitle() {
	r.pdf.SetFont("Arial", "B", 22)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 12, r.tr(r.opts.Title), "", 1, "C", false, 0, "")

	r.pdf.SetFont("Arial", "I", 10)
	r.pdf.SetTextColor(80, 80, 80)
	r.pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Generated: %s", r.opts.GeneratedAt.Format("2 January 2006 15:04")), "", 1, "C", false, 0, "")
	r.pdf.Ln(8)
}

func (r *BreakdownPDFReport) addInputs() {
	r.drawSectionHeader("Trade")
	widths := []float64{120, contentWidth - 120}

	if r.opts.TargetNet != nil {
		r.drawTableRow([]string{"Target net sale price", FormatEuro(*r.opts.TargetNet)}, widths, true)
		if r.opts.Regime != "" {
			r.drawTableRow([]string{"Solved in regime", r.opts.Regime}, widths, false)
		}
	}
	r.drawTableRow([]string{"Sale price", FormatEuro(r.inputs.GrossSalePrice)}, widths, r.opts.TargetNet != nil)
	r.drawTableRow([]string{"Acquisition cost", FormatEuro(r.inputs.ActualAcquisitionCost)}, widths, false)
	if r.inputs.AcquiredByPurchase {
		r.drawTableRow([]string{"Transfer tax paid on acquisition", FormatEuro(r.inputs.AcquisitionTransferTax)}, widths, false)
		r.drawTableRow([]string{"Broker fee paid on acquisition", FormatEuro(r.inputs.AcquisitionBrokerFee)}, widths, false)
	}
	r.drawTableRow([]string{"Acquired by purchase", yesNo(r.inputs.AcquiredByPurchase)}, widths, false)
	r.drawTableRow([]string{"Held over 10 years", yesNo(r.inputs.HeldOver10Years)}, widths, false)
	r.pdf.Ln(6)
}

func (r *BreakdownPDFReport) addSellerSection() {
	b := r.breakdown
	r.drawSectionHeader("Seller")
	widths := []float64{95, 45, contentWidth - 140}
	r.drawTableHeader([]string{"Item", "Amount", "Note"}, widths)
	r.drawTableRow([]string{"Sale price", FormatEuro(b.GrossSalePrice), ""}, widths, false)
	r.drawTableRow([]string{"Deemed acquisition cost", FormatEuro(b.DeemedAcquisitionCost), FormatPercent(b.DeemedAcquisitionCostRate)}, widths, false)
	r.drawTableRow([]string{"Actual acquisition cost", FormatEuro(b.ActualCostBasis), ""}, widths, false)
	r.drawTableRow([]string{"Deductible amount", FormatEuro(b.EffectiveDeduction), b.DeductionMethod.String()}, widths, false)
	r.drawTableRow([]string{"Taxable gain in total", FormatEuro(b.TaxableGain), ""}, widths, false)
	r.drawTableRow([]string{"Taxable gain (lower rate)", FormatEuro(b.GainUnder30k), "tax " + FormatEuro(b.TaxUnder30k)}, widths, false)
	r.drawTableRow([]string{"Taxable gain (upper rate)", FormatEuro(b.GainOver30k), "tax " + FormatEuro(b.TaxOver30k)}, widths, false)
	r.drawTableRow([]string{"Total tax", FormatEuro(b.TotalTax), FormatPercent(b.EffectiveTaxRate().Round(4)) + " of price"}, widths, true)
	r.drawTableRow([]string{"Net sale price", FormatEuro(b.NetSalePrice), ""}, widths, true)
	r.pdf.Ln(6)
}

func (r *BreakdownPDFReport) addBuyerSection() {
	b := r.breakdown
	r.drawSectionHeader("Buyer")
	widths := []float64{95, 45, contentWidth - 140}
	note := ""
	if b.GrossSalePrice.IsPositive() {
		note = FormatPercent(b.BuyerTransferTax.Div(b.GrossSalePrice))
	}
	r.drawTableRow([]string{"Transfer tax", FormatEuro(b.BuyerTransferTax), note}, widths, false)
	r.pdf.Ln(8)
}

func (r *BreakdownPDFReport) addDisclaimer() {
	r.pdf.SetFont("Arial", "I", 9)
	r.pdf.SetTextColor(100, 100, 100)
	r.pdf.MultiCell(contentWidth, 5, r.tr(
		"This calculator is meant only for share sales made by natural persons. "+
			"The deemed acquisition cost is higher if the shares were owned over 10 years; check the exact holding period. "+
			"Always have the calculation checked by a professional."), "", "L", false)
}

func (r *BreakdownPDFReport) drawSectionHeader(title string) {
	r.pdf.SetFont("Arial", "B", 14)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 9, r.tr(title), "", 1, "L", false, 0, "")
	r.pdf.SetDrawColor(0, 51, 102)
	r.pdf.Line(marginLeft, r.pdf.GetY(), marginLeft+contentWidth, r.pdf.GetY())
	r.pdf.Ln(3)
}

func (r *BreakdownPDFReport) drawTableHeader(headers []string, widths []float64) {
	r.pdf.SetFillColor(0, 51, 102)
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.SetFont("Arial", "B", 9)

	for i, header := range headers {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 6, r.tr(header), "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}

func (r *BreakdownPDFReport) drawTableRow(cells []string, widths []float64, isBold bool) {
	r.pdf.SetFillColor(250, 250, 250)
	r.pdf.SetTextColor(50, 50, 50)

	if isBold {
		r.pdf.SetFont("Arial", "B", 9)
		r.pdf.SetFillColor(240, 240, 240)
	} else {
		r.pdf.SetFont("Arial", "", 9)
	}

	for i, cell := range cells {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 6, r.tr(cell), "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
