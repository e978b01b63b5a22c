package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/shopspring/decimal"
)

func main() {
	loadEnvFile()
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

const usageText = `Share Sale Capital Gains Tax Calculator

Calculates the Finnish capital gains tax of a share sale made by a natural person,
or the sale price needed to be left with a given net amount after tax.

Amounts may be written as "1 000,50", "1000.50" or "25k".

Usage:
  %s [options]

Options:
`

const examplesText = `
Examples:
  %[1]s -gross 100000 -cost 40000                Tax of a sale
  %[1]s -gross 100k -cost 10k -purchased -broker-fee 50
  %[1]s -net 74000                               Sale price needed to net 74 000 €
  %[1]s -net 50000 -over10 -pdf sale.pdf         Same, with a PDF report
  %[1]s -sweep -cost 40000                       Table of sale prices from config
  %[1]s -cost 40000 -html sweep.html             Same table as an HTML page with a chart
  %[1]s -i                                       Ask the figures interactively
  %[1]s -web -addr :8080                         Web server with the JSON API

Configuration:
  Tax rates and the default figures come from config.yaml, or the built-in defaults
  if the file does not exist. SHARETAX_CONFIG, SHARETAX_ADDR and SHARETAX_EXPORT_DIR
  override the config path, server address and PDF export directory; they may be set in .env.
`

// run parses args and executes the selected mode
func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("sharetax", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), usageText, fs.Name())
		fs.PrintDefaults()
		fmt.Fprintf(fs.Output(), examplesText, fs.Name())
	}

	configFile := fs.String("config", ConfigFileFromEnv("config.yaml"), "Path to YAML configuration file")
	gross := fs.String("gross", "", "Gross sale price")
	cost := fs.String("cost", "", "Actual acquisition cost")
	transferTax := fs.String("transfer-tax", "", "Transfer tax paid on acquisition (counted with -purchased)")
	brokerFee := fs.String("broker-fee", "", "Broker fee paid on acquisition (counted with -purchased)")
	purchased := fs.Bool("purchased", false, "The shares were acquired by purchase")
	over10 := fs.Bool("over10", false, "The shares were held at least 10 years")
	net := fs.String("net", "", "Target net sale price; solves for the gross sale price")
	sweep := fs.Bool("sweep", false, "Print a table over the configured sale price range")
	htmlFile := fs.String("html", "", "Write the sweep as an HTML report to this file (implies -sweep)")
	pdfFile := fs.String("pdf", "", "Write a PDF report of the calculation to this file")
	interactive := fs.Bool("i", false, "Ask the figures interactively")
	webMode := fs.Bool("web", false, "Start web server mode")
	webAddr := fs.String("addr", "", "Web server address (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	config, err := LoadConfigOrDefault(*configFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	ApplyEnvOverrides(config)

	if *webMode {
		addr := *webAddr
		if addr == "" {
			addr = config.GetAddr()
		}
		return NewWebServer(config, addr).Start()
	}

	if *interactive {
		return NewInteractiveSession(stdin, stdout, config).Run()
	}

	inputs, err := TradeInputsFromConfig(config.Trade)
	if err != nil {
		return fmt.Errorf("trade defaults in config: %w", err)
	}

	// Flags given on the command line override the configured figures
	var flagErr error
	setAmount := func(dst *decimal.Decimal, name, text string) {
		if flagErr != nil {
			return
		}
		amount, err := ParseAmount(text)
		if err != nil {
			flagErr = fmt.Errorf("-%s: %w", name, err)
			return
		}
		*dst = amount
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "gross":
			setAmount(&inputs.GrossSalePrice, f.Name, *gross)
		case "cost":
			setAmount(&inputs.ActualAcquisitionCost, f.Name, *cost)
		case "transfer-tax":
			setAmount(&inputs.AcquisitionTransferTax, f.Name, *transferTax)
		case "broker-fee":
			setAmount(&inputs.AcquisitionBrokerFee, f.Name, *brokerFee)
		case "purchased":
			inputs.AcquiredByPurchase = *purchased
		case "over10":
			inputs.HeldOver10Years = *over10
		}
	})
	if flagErr != nil {
		return flagErr
	}

	taxConfig := config.Tax
	PrintHeader(stdout, taxConfig)

	if *sweep || *htmlFile != "" {
		min, max, step := SweepRangeFromConfig(config.Sweep)
		rows, err := RunGrossSweep(inputs.AcquisitionInputs, min, max, step, taxConfig)
		if err != nil {
			return err
		}
		PrintSweep(stdout, rows)
		if *htmlFile != "" {
			if err := GenerateSweepHTMLReport(*htmlFile, inputs.AcquisitionInputs, rows, taxConfig); err != nil {
				return fmt.Errorf("writing HTML report: %w", err)
			}
			log.Printf("HTML report saved to %s", *htmlFile)
		}
		return nil
	}

	var breakdown TaxBreakdown
	opts := PDFReportOptions{}
	if *net != "" {
		targetNet, err := ParseAmount(*net)
		if err != nil {
			return fmt.Errorf("-net: %w", err)
		}
		result, err := ReverseCalculateWithConfig(targetNet, inputs.AcquisitionInputs, taxConfig)
		if err != nil {
			return err
		}
		PrintReverseResult(stdout, targetNet, result)
		breakdown = result.Breakdown
		inputs.GrossSalePrice = result.GrossSalePrice
		opts.TargetNet = &targetNet
		opts.Regime = result.Regime.String()
	} else {
		breakdown, err = CalculateWithConfig(inputs, taxConfig)
		if err != nil {
			return err
		}
		PrintBreakdown(stdout, breakdown)
	}

	if *pdfFile != "" {
		pdfBytes, err := GenerateBreakdownPDFReport(inputs, breakdown, opts)
		if err != nil {
			return fmt.Errorf("generating PDF: %w", err)
		}
		if err := os.WriteFile(*pdfFile, pdfBytes, 0644); err != nil {
			return fmt.Errorf("writing PDF: %w", err)
		}
		log.Printf("PDF report saved to %s", *pdfFile)
	}
	return nil
}
