package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "none.yaml")
	var out bytes.Buffer
	err := run(append([]string{"-config", configPath}, args...), strings.NewReader(""), &out)
	return out.String(), err
}

func TestRun_Forward(t *testing.T) {
	out, err := runCLI(t, "-gross", "100 000", "-cost", "10000", "-purchased", "-transfer-tax", "200", "-broker-fee", "300")
	require.NoError(t, err)
	assert.Contains(t, out, "10 500,00 €")
	assert.Contains(t, out, "74 000,00 €")
}

func TestRun_ConfigDefaults(t *testing.T) {
	out, err := runCLI(t)
	require.NoError(t, err)
	assert.Contains(t, out, "760,00 €")
}

func TestRun_Reverse(t *testing.T) {
	out, err := runCLI(t, "-net", "74000", "-cost", "10 000", "-purchased", "-transfer-tax", "200", "-broker-fee", "300")
	require.NoError(t, err)
	assert.Contains(t, out, "100 000,00 €")
}

func TestRun_ReverseNotSolvable(t *testing.T) {
	_, err := runCLI(t, "-net=-1")
	assert.ErrorIs(t, err, ErrNotSolvable)
}

func TestRun_InvalidAmount(t *testing.T) {
	_, err := runCLI(t, "-gross", "1.000,00")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = runCLI(t, "-cost", "-10")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRun_Sweep(t *testing.T) {
	out, err := runCLI(t, "-sweep", "-cost", "40000")
	require.NoError(t, err)
	assert.Contains(t, out, "200 000,00")
	assert.Contains(t, out, "Keep/€")
}

func TestRun_WritesPDF(t *testing.T) {
	pdfPath := filepath.Join(t.TempDir(), "sale.pdf")
	_, err := runCLI(t, "-net", "50000", "-over10", "-pdf", pdfPath)
	require.NoError(t, err)

	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRun_UsesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trade:\n  gross_sale_price: 2000\n"), 0644))

	var out bytes.Buffer
	require.NoError(t, run([]string{"-config", path}, strings.NewReader(""), &out))
	// 2000 - 30% of 1600
	assert.Contains(t, out.String(), "1 520,00 €")
}

func TestRun_HTMLReport(t *testing.T) {
	htmlPath := filepath.Join(t.TempDir(), "sweep.html")
	_, err := runCLI(t, "-cost", "40000", "-html", htmlPath)
	require.NoError(t, err)

	data, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Share Sale Tax by Sale Price")
}
