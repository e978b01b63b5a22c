package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	chartWidth  = 800.0
	chartHeight = 320.0
	chartPad    = 40.0
)

// GenerateSweepHTMLReport writes the sweep as a standalone HTML page
func GenerateSweepHTMLReport(filename string, acq AcquisitionInputs, rows []SweepRow, taxConfig TaxConfig) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteSweepHTMLReport(f, acq, rows, taxConfig); err != nil {
		return err
	}
	return f.Close()
}

// WriteSweepHTMLReport renders the sweep table, a net/tax chart and the breakpoints
func WriteSweepHTMLReport(w io.Writer, acq AcquisitionInputs, rows []SweepRow, taxConfig TaxConfig) error {
	if len(rows) == 0 {
		return ValidationError{Field: "sweep", Message: "no rows to report"}
	}

	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="fi">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Share Sale Tax: %s – %s</title>
    <style>
        :root {
            --primary: #2563eb;
            --success: #16a34a;
            --danger: #dc2626;
            --bg: #f8fafc;
            --card-bg: #ffffff;
            --text: #1e293b;
            --text-muted: #64748b;
            --border: #e2e8f0;
        }
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: var(--bg);
            color: var(--text);
            line-height: 1.6;
            padding: 2rem;
        }
        .container { max-width: 1100px; margin: 0 auto; }
        h1 { font-size: 1.75rem; margin-bottom: 0.5rem; color: var(--primary); }
        h2 {
            font-size: 1.25rem;
            margin: 1.5rem 0 1rem;
            padding-bottom: 0.5rem;
            border-bottom: 2px solid var(--primary);
        }
        .subtitle { color: var(--text-muted); margin-bottom: 1.5rem; }
        .card {
            background: var(--card-bg);
            border-radius: 8px;
            box-shadow: 0 1px 3px rgba(0,0,0,0.1);
            padding: 1.5rem;
            margin-bottom: 1.5rem;
        }
        .grid { display: grid; gap: 1rem; grid-template-columns: repeat(4, 1fr); }
        @media (max-width: 768px) { .grid { grid-template-columns: 1fr; } }
        .metric { text-align: center; padding: 1rem; border-radius: 8px; background: var(--bg); }
        .metric-value { font-size: 1.25rem; font-weight: 700; color: var(--primary); }
        .metric-label { font-size: 0.875rem; color: var(--text-muted); }
        table { width: 100%%; border-collapse: collapse; font-size: 0.875rem; }
        th, td { padding: 0.5rem; text-align: right; border-bottom: 1px solid var(--border); }
        th { background: var(--bg); font-weight: 600; position: sticky; top: 0; }
        th:first-child, td:first-child { text-align: left; }
        tr:hover { background: #f1f5f9; }
        .deemed { color: var(--success); }
        .footer {
            text-align: center;
            color: var(--text-muted);
            font-size: 0.75rem;
            margin-top: 2rem;
            padding-top: 1rem;
            border-top: 1px solid var(--border);
        }
    </style>
</head>
<body>
<div class="container">
    <h1>Share Sale Tax by Sale Price</h1>
    <p class="subtitle">Sale prices %s – %s</p>
`, FormatEuro(rows[0].Breakdown.GrossSalePrice), FormatEuro(rows[len(rows)-1].Breakdown.GrossSalePrice),
		FormatEuro(rows[0].Breakdown.GrossSalePrice), FormatEuro(rows[len(rows)-1].Breakdown.GrossSalePrice))

	writeAcquisitionMetrics(w, acq, taxConfig)

	fmt.Fprintf(w, "    <h2>Net and Tax</h2>\n    <div class=\"card\">\n")
	writeSweepChart(w, rows)
	fmt.Fprintf(w, "    </div>\n")

	fmt.Fprintf(w, "    <h2>Breakpoints</h2>\n    <div class=\"card\">\n")
	points := NetProceedsBreakpoints(acq, taxConfig)
	if len(points) == 0 {
		fmt.Fprintf(w, "        <p>The net sale price grows at one rate over the whole range.</p>\n")
	} else {
		fmt.Fprintf(w, "        <table>\n            <tr><th>Sale price</th><th>Net sale price</th><th>Keep per € above</th></tr>\n")
		for _, p := range points {
			b := calculateBreakdown(TradeInputs{GrossSalePrice: p, AcquisitionInputs: acq}, taxConfig)
			above := MarginalNetRate(acq, p.Add(decimal.New(1, -2)), taxConfig)
			fmt.Fprintf(w, "            <tr><td>%s</td><td>%s</td><td>%s</td></tr>\n",
				FormatEuro(p), FormatEuro(b.NetSalePrice), formatRate(above))
		}
		fmt.Fprintf(w, "        </table>\n")
	}
	fmt.Fprintf(w, "    </div>\n")

	fmt.Fprintf(w, `    <h2>Table</h2>
    <div class="card">
        <table>
            <tr><th>Sale price</th><th>Deduction</th><th>Taxable gain</th><th>Tax</th><th>Net</th><th>Effective rate</th><th>Keep per €</th></tr>
`)
	for _, row := range rows {
		b := row.Breakdown
		class := ""
		if b.DeductionMethod == DeductionDeemed {
			class = ` class="deemed"`
		}
		fmt.Fprintf(w, "            <tr><td>%s</td><td%s>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			FormatEuro(b.GrossSalePrice), class, FormatEuro(b.EffectiveDeduction), FormatEuro(b.TaxableGain),
			FormatEuro(b.TotalTax), FormatEuro(b.NetSalePrice),
			FormatPercent(b.EffectiveTaxRate().Round(4)), formatRate(row.MarginalNetRate))
	}
	fmt.Fprintf(w, `        </table>
        <p class="subtitle">Green deductions use the deemed acquisition cost.</p>
    </div>
    <div class="footer">
        Generated %s. Only for share sales made by natural persons; have the calculation checked by a professional.
    </div>
</div>
</body>
</html>
`, time.Now().Format("2 January 2006 15:04"))
	return nil
}

func writeAcquisitionMetrics(w io.Writer, acq AcquisitionInputs, taxConfig TaxConfig) {
	held := "under 10 years"
	if acq.HeldOver10Years {
		held = "10 years or more"
	}
	fmt.Fprintf(w, `    <div class="card grid">
        <div class="metric"><div class="metric-value">%s</div><div class="metric-label">Actual cost basis</div></div>
        <div class="metric"><div class="metric-value">%s</div><div class="metric-label">Deemed cost (held %s)</div></div>
        <div class="metric"><div class="metric-value">%s / %s</div><div class="metric-label">Tax rates, threshold %s</div></div>
        <div class="metric"><div class="metric-value">%s</div><div class="metric-label">Buyer's transfer tax</div></div>
    </div>
`, FormatEuro(acq.ActualCostBasis()), FormatPercent(taxConfig.DeemedRateFor(acq.HeldOver10Years)), held,
		FormatPercent(taxConfig.GetLowerRate()), FormatPercent(taxConfig.GetUpperRate()),
		FormatEuro(taxConfig.GetBracketThreshold()), FormatPercent(taxConfig.GetBuyerTransferTaxRate()))
}

// writeSweepChart draws net and tax against the sale price as inline SVG
func writeSweepChart(w io.Writer, rows []SweepRow) {
	minGross := rows[0].Breakdown.GrossSalePrice.InexactFloat64()
	maxGross := rows[len(rows)-1].Breakdown.GrossSalePrice.InexactFloat64()
	maxY := maxGross
	if maxY <= 0 {
		maxY = 1
	}
	spanX := maxGross - minGross
	if spanX <= 0 {
		spanX = 1
	}

	x := func(v float64) float64 { return chartPad + (v-minGross)/spanX*(chartWidth-2*chartPad) }
	y := func(v float64) float64 { return chartHeight - chartPad - v/maxY*(chartHeight-2*chartPad) }

	var net, tax []string
	for _, row := range rows {
		g := row.Breakdown.GrossSalePrice.InexactFloat64()
		net = append(net, fmt.Sprintf("%.1f,%.1f", x(g), y(row.Breakdown.NetSalePrice.InexactFloat64())))
		tax = append(tax, fmt.Sprintf("%.1f,%.1f", x(g), y(row.Breakdown.TotalTax.InexactFloat64())))
	}

	fmt.Fprintf(w, `        <svg viewBox="0 0 %.0f %.0f" width="100%%" role="img" aria-label="Net and tax by sale price">
            <line x1="%.0f" y1="%.0f" x2="%.0f" y2="%.0f" stroke="#94a3b8"/>
            <line x1="%.0f" y1="%.0f" x2="%.0f" y2="%.0f" stroke="#94a3b8"/>
            <polyline fill="none" stroke="#2563eb" stroke-width="2" points="%s"/>
            <polyline fill="none" stroke="#dc2626" stroke-width="2" points="%s"/>
            <text x="%.0f" y="20" font-size="12" fill="#2563eb">Net</text>
            <text x="%.0f" y="36" font-size="12" fill="#dc2626">Tax</text>
            <text x="%.0f" y="%.0f" font-size="11" fill="#64748b">%s</text>
            <text x="%.0f" y="%.0f" font-size="11" fill="#64748b" text-anchor="end">%s</text>
        </svg>
`, chartWidth, chartHeight,
		chartPad, chartHeight-chartPad, chartWidth-chartPad, chartHeight-chartPad,
		chartPad, chartPad, chartPad, chartHeight-chartPad,
		strings.Join(net, " "), strings.Join(tax, " "),
		chartWidth-chartPad-40, chartWidth-chartPad-40,
		chartPad, chartHeight-chartPad+16, FormatEuro(rows[0].Breakdown.GrossSalePrice),
		chartWidth-chartPad, chartHeight-chartPad+16, FormatEuro(rows[len(rows)-1].Breakdown.GrossSalePrice))
}

// formatRate formats a share of a euro with a decimal comma: 0.728 -> "0,728"
func formatRate(rate decimal.Decimal) string {
	return strings.Replace(rate.StringFixed(3), ".", ",", 1)
}
