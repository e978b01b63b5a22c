package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// InteractiveSession asks for the trade figures on the console and prints the result
type InteractiveSession struct {
	reader *bufio.Reader
	out    io.Writer
	config *Config
	eof    bool
}

// NewInteractiveSession creates a session reading answers from in. Defaults come from config.
func NewInteractiveSession(in io.Reader, out io.Writer, config *Config) *InteractiveSession {
	if config == nil {
		config, _ = LoadDefaultConfig()
	}
	return &InteractiveSession{
		reader: bufio.NewReader(in),
		out:    out,
		config: config,
	}
}

// readLine returns the next trimmed answer. Once input is exhausted every prompt takes its default.
func (s *InteractiveSession) readLine() string {
	if s.eof {
		return ""
	}
	input, err := s.reader.ReadString('\n')
	if err != nil {
		s.eof = true
	}
	return strings.TrimSpace(input)
}

func (s *InteractiveSession) promptYesNo(prompt string, defaultVal bool) bool {
	defaultStr := "y/N"
	if defaultVal {
		defaultStr = "Y/n"
	}
	for {
		fmt.Fprintf(s.out, "%s [%s]: ", prompt, defaultStr)
		input := strings.ToLower(s.readLine())
		switch input {
		case "":
			return defaultVal
		case "y", "yes", "k", "kyllä":
			return true
		case "n", "no", "e", "ei":
			return false
		}
		fmt.Fprintf(s.out, "  ✗ Answer y or n\n")
	}
}

func (s *InteractiveSession) promptAmount(prompt string, defaultVal decimal.Decimal) decimal.Decimal {
	for {
		fmt.Fprintf(s.out, "%s [%s]: ", prompt, FormatAmount(defaultVal))
		input := s.readLine()
		if input == "" {
			return defaultVal
		}
		amount, err := ParseAmount(input)
		if err == nil && amount.IsNegative() {
			err = ValidationError{Field: "amount", Message: "must not be negative"}
		}
		if err != nil {
			fmt.Fprintf(s.out, "  ✗ %s\n", err.Error())
			if s.eof {
				return defaultVal
			}
			continue
		}
		return amount
	}
}

// promptMode returns true when the user wants to start from a target net amount
func (s *InteractiveSession) promptMode() bool {
	for {
		fmt.Fprintf(s.out, "Calculate from (s)ale price or from (n)et target? [s]: ")
		switch strings.ToLower(s.readLine()) {
		case "", "s", "sale":
			return false
		case "n", "net":
			return true
		}
		fmt.Fprintf(s.out, "  ✗ Answer s or n\n")
	}
}

// readAcquisition asks for the acquisition details
func (s *InteractiveSession) readAcquisition() AcquisitionInputs {
	tc := s.config.Trade
	acq := AcquisitionInputs{
		AcquisitionTransferTax: decimal.NewFromFloat(tc.AcquisitionTransferTax),
		AcquisitionBrokerFee:   decimal.NewFromFloat(tc.AcquisitionBrokerFee),
	}

	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "ACQUISITION")
	fmt.Fprintln(s.out, strings.Repeat("─", 40))
	acq.ActualAcquisitionCost = s.promptAmount("Acquisition cost (€)", decimal.NewFromFloat(tc.ActualAcquisitionCost))
	acq.AcquiredByPurchase = s.promptYesNo("Were the shares acquired by purchase?", tc.AcquiredByPurchase)
	if acq.AcquiredByPurchase {
		acq.AcquisitionTransferTax = s.promptAmount("Transfer tax paid on acquisition (€)", acq.AcquisitionTransferTax)
		acq.AcquisitionBrokerFee = s.promptAmount("Broker fee paid on acquisition (€)", acq.AcquisitionBrokerFee)
	}
	acq.HeldOver10Years = s.promptYesNo("Held the shares over 10 years?", tc.HeldOver10Years)
	return acq
}

// Run asks the questions and prints the calculation. A target net that no sale price
// reaches is reported on the console, not returned as an error.
func (s *InteractiveSession) Run() error {
	taxConfig := s.config.Tax
	PrintHeader(s.out, taxConfig)

	reverse := s.promptMode()
	acq := s.readAcquisition()

	fmt.Fprintln(s.out)
	if reverse {
		targetNet := s.promptAmount("Net sale price wanted (€)", decimal.NewFromFloat(s.config.Trade.GrossSalePrice))
		result, err := ReverseCalculateWithConfig(targetNet, acq, taxConfig)
		if errors.Is(err, ErrNotSolvable) {
			fmt.Fprintf(s.out, "  ✗ No sale price gives a net of %s\n", FormatEuro(targetNet))
			return nil
		}
		if err != nil {
			return err
		}
		PrintReverseResult(s.out, targetNet, result)
		return nil
	}

	gross := s.promptAmount("Sale price (€)", decimal.NewFromFloat(s.config.Trade.GrossSalePrice))
	breakdown, err := CalculateWithConfig(TradeInputs{GrossSalePrice: gross, AcquisitionInputs: acq}, taxConfig)
	if err != nil {
		return err
	}
	PrintBreakdown(s.out, breakdown)
	return nil
}
