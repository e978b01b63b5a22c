package main

import (
	"bytes"
	"strings"
	"testing"
)

func runSession(t *testing.T, input string) string {
	t.Helper()
	config, err := LoadDefaultConfig()
	if err != nil {
		t.Fatalf("LoadDefaultConfig: %v", err)
	}
	var out bytes.Buffer
	if err := NewInteractiveSession(strings.NewReader(input), &out, config).Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestInteractive_ForwardCalculation(t *testing.T) {
	// mode, cost, purchased, transfer tax, broker fee, over 10 years, sale price
	out := runSession(t, "s\n10 000\ny\n200\n300\nn\n100 000\n")

	for _, want := range []string{"10 500,00 €", "26 000,00 €", "74 000,00 €", "1 600,00 €", "Check the exact holding period!"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestInteractive_ReverseCalculation(t *testing.T) {
	out := runSession(t, "n\n10000\nk\n200\n300\nei\n74 000\n")

	if !strings.Contains(out, "100 000,00 €") {
		t.Errorf("expected sale price 100 000,00 € in output:\n%s", out)
	}
	if !strings.Contains(out, Regime{DeductionDeemed, BandUpper}.String()) {
		t.Errorf("expected regime in output:\n%s", out)
	}
}

func TestInteractive_RepromptsOnInvalidAmount(t *testing.T) {
	out := runSession(t, "s\nabc\n-5\n5000\n\n\n1000\n")

	if strings.Count(out, "✗") != 2 {
		t.Errorf("expected two rejected answers:\n%s", out)
	}
	if !strings.Contains(out, "not a number") {
		t.Errorf("expected parse error message:\n%s", out)
	}
	// Actual cost 5000 exceeds the price, so no tax
	if !strings.Contains(out, "1 000,00 €") {
		t.Errorf("expected net 1 000,00 €:\n%s", out)
	}
}

func TestInteractive_DefaultsOnEmptyInput(t *testing.T) {
	out := runSession(t, "")

	// Config defaults: sale price 1000, no cost
	if !strings.Contains(out, "760,00 €") {
		t.Errorf("expected net 760,00 € from defaults:\n%s", out)
	}
}

func TestInteractive_RepromptsOnBadYesNo(t *testing.T) {
	out := runSession(t, "x\ns\n0\nmaybe\nn\ny\n50000\n")

	if !strings.Contains(out, "Answer s or n") || !strings.Contains(out, "Answer y or n") {
		t.Errorf("expected re-prompts:\n%s", out)
	}
	// Held over 10 years: 40% deemed cost, gain 30000, net 41000
	if !strings.Contains(out, "41 000,00 €") {
		t.Errorf("expected net 41 000,00 €:\n%s", out)
	}
}
