package main

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"regexp"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed default-config.yaml
var defaultConfigYAML string

// Environment variables that override the configuration
const (
	envConfigFile = "SHARETAX_CONFIG"
	envAddr       = "SHARETAX_ADDR"
	envExportDir  = "SHARETAX_EXPORT_DIR"
)

// TaxConfig holds the Finnish capital income tax parameters for share sales.
// These are set by law and may change between tax years.
type TaxConfig struct {
	// DeemedCostRate is the deemed acquisition cost share of the sale price (20%)
	DeemedCostRate float64 `yaml:"deemed_cost_rate" json:"deemed_cost_rate"`
	// DeemedCostRateLongHold applies when the shares were held at least 10 years (40%)
	DeemedCostRateLongHold float64 `yaml:"deemed_cost_rate_long_hold" json:"deemed_cost_rate_long_hold"`
	// BracketThreshold is the capital income above which the upper rate applies (€30,000)
	BracketThreshold float64 `yaml:"bracket_threshold" json:"bracket_threshold"`
	// LowerRate applies to capital income up to the threshold (30%)
	LowerRate float64 `yaml:"lower_rate" json:"lower_rate"`
	// UpperRate applies to capital income above the threshold (34%)
	UpperRate float64 `yaml:"upper_rate" json:"upper_rate"`
	// BuyerTransferTaxRate is the transfer tax the buyer pays on the price (1.6%)
	BuyerTransferTaxRate float64 `yaml:"buyer_transfer_tax_rate" json:"buyer_transfer_tax_rate"`
}

// GetDeemedCostRate returns the deemed cost rate, using default if not set
func (tc *TaxConfig) GetDeemedCostRate() decimal.Decimal {
	if tc.DeemedCostRate <= 0 {
		return decimal.RequireFromString("0.20")
	}
	return decimal.NewFromFloat(tc.DeemedCostRate)
}

// GetDeemedCostRateLongHold returns the long-hold deemed cost rate, using default if not set
func (tc *TaxConfig) GetDeemedCostRateLongHold() decimal.Decimal {
	if tc.DeemedCostRateLongHold <= 0 {
		return decimal.RequireFromString("0.40")
	}
	return decimal.NewFromFloat(tc.DeemedCostRateLongHold)
}

// GetBracketThreshold returns the bracket threshold, using default if not set
func (tc *TaxConfig) GetBracketThreshold() decimal.Decimal {
	if tc.BracketThreshold <= 0 {
		return decimal.NewFromInt(30000)
	}
	return decimal.NewFromFloat(tc.BracketThreshold)
}

// GetLowerRate returns the lower capital income tax rate, using default if not set
func (tc *TaxConfig) GetLowerRate() decimal.Decimal {
	if tc.LowerRate <= 0 {
		return decimal.RequireFromString("0.30")
	}
	return decimal.NewFromFloat(tc.LowerRate)
}

// GetUpperRate returns the upper capital income tax rate, using default if not set
func (tc *TaxConfig) GetUpperRate() decimal.Decimal {
	if tc.UpperRate <= 0 {
		return decimal.RequireFromString("0.34")
	}
	return decimal.NewFromFloat(tc.UpperRate)
}

// GetBuyerTransferTaxRate returns the buyer's transfer tax rate, using default if not set
func (tc *TaxConfig) GetBuyerTransferTaxRate() decimal.Decimal {
	if tc.BuyerTransferTaxRate <= 0 {
		return decimal.RequireFromString("0.016")
	}
	return decimal.NewFromFloat(tc.BuyerTransferTaxRate)
}

// DeemedRateFor returns the deemed cost rate for the holding period
func (tc *TaxConfig) DeemedRateFor(heldOver10Years bool) decimal.Decimal {
	if heldOver10Years {
		return tc.GetDeemedCostRateLongHold()
	}
	return tc.GetDeemedCostRate()
}

// Validate checks that every rate is below 100%. The reverse calculation relies on
// net proceeds growing with the sale price, which needs marginal rates under 1.
func (tc *TaxConfig) Validate() error {
	one := decimal.NewFromInt(1)
	rates := []struct {
		name string
		rate decimal.Decimal
	}{
		{"tax.deemed_cost_rate", tc.GetDeemedCostRate()},
		{"tax.deemed_cost_rate_long_hold", tc.GetDeemedCostRateLongHold()},
		{"tax.lower_rate", tc.GetLowerRate()},
		{"tax.upper_rate", tc.GetUpperRate()},
		{"tax.buyer_transfer_tax_rate", tc.GetBuyerTransferTaxRate()},
	}
	for _, r := range rates {
		if r.rate.GreaterThanOrEqual(one) {
			return ValidationError{Field: r.name, Message: fmt.Sprintf("rate must be below 100%% (got %s)", r.rate)}
		}
	}
	return nil
}

// DefaultTaxConfig returns the default Finnish configuration
func DefaultTaxConfig() TaxConfig {
	return TaxConfig{
		DeemedCostRate:         0.20,
		DeemedCostRateLongHold: 0.40,
		BracketThreshold:       30000,
		LowerRate:              0.30,
		UpperRate:              0.34,
		BuyerTransferTaxRate:   0.016,
	}
}

// TradeConfig holds the default figures used by the console and interactive modes
type TradeConfig struct {
	GrossSalePrice         float64 `yaml:"gross_sale_price" json:"gross_sale_price"`
	ActualAcquisitionCost  float64 `yaml:"actual_acquisition_cost" json:"actual_acquisition_cost"`
	AcquisitionTransferTax float64 `yaml:"acquisition_transfer_tax" json:"acquisition_transfer_tax"`
	AcquisitionBrokerFee   float64 `yaml:"acquisition_broker_fee" json:"acquisition_broker_fee"`
	AcquiredByPurchase     bool    `yaml:"acquired_by_purchase" json:"acquired_by_purchase"`
	HeldOver10Years        bool    `yaml:"held_over_10_years" json:"held_over_10_years"`
}

// SweepConfig holds the gross price range for the sweep table
type SweepConfig struct {
	Min  float64 `yaml:"min" json:"min"`
	Max  float64 `yaml:"max" json:"max"`
	Step float64 `yaml:"step" json:"step"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// ReportConfig holds report output settings
type ReportConfig struct {
	ExportDir string `yaml:"export_dir" json:"export_dir"`
}

// Config holds the complete configuration
type Config struct {
	Tax    TaxConfig    `yaml:"tax" json:"tax"`
	Trade  TradeConfig  `yaml:"trade" json:"trade"`
	Sweep  SweepConfig  `yaml:"sweep" json:"sweep"`
	Server ServerConfig `yaml:"server" json:"server"`
	Report ReportConfig `yaml:"report" json:"report"`
}

// GetAddr returns the web server address, using default if not set
func (c *Config) GetAddr() string {
	if c.Server.Addr == "" {
		return "localhost:8080"
	}
	return c.Server.Addr
}

// GetExportDir returns the PDF export directory, using default if not set
func (c *Config) GetExportDir() string {
	if c.Report.ExportDir == "" {
		return "exports"
	}
	return c.Report.ExportDir
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return parseConfig(string(data))
}

// LoadDefaultConfig loads the default configuration from embedded default-config.yaml
func LoadDefaultConfig() (*Config, error) {
	return parseConfig(defaultConfigYAML)
}

// LoadConfigOrDefault loads the file, falling back to the embedded defaults when it does not exist
func LoadConfigOrDefault(filename string) (*Config, error) {
	config, err := LoadConfig(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return LoadDefaultConfig()
	}
	return config, err
}

func parseConfig(content string) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal([]byte(preprocessPercentages(content)), &config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := config.Tax.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	header := []byte(`# Share Sale Tax Calculator Configuration
#
# Percentages: 0.30 = 30% (or write 30%)
# Money: values are in EUR
#
#   ./goShareSaleTax                          Calculate using trade defaults below
#   ./goShareSaleTax -gross 100000 -cost 10000 -purchased
#   ./goShareSaleTax -net 74000 -cost 10000   Find the sale price for a net amount
#   ./goShareSaleTax -web                     JSON API server
#
# See default-config.yaml for all available options.

`)
	content := append(header, data...)
	return os.WriteFile(filename, content, 0644)
}

// preprocessPercentages converts percentage values like "5%" to decimal "0.05"
func preprocessPercentages(content string) string {
	re := regexp.MustCompile(`(:\s*)(\d+\.?\d*)%`)
	return re.ReplaceAllStringFunc(content, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) >= 3 {
			num, err := decimal.NewFromString(parts[2])
			if err == nil {
				return parts[1] + num.Div(decimal.NewFromInt(100)).String()
			}
		}
		return match
	})
}

// loadEnvFile loads a .env file into the environment if one is present
func loadEnvFile(filenames ...string) {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: failed to load .env: %v", err)
	}
}

// ConfigFileFromEnv returns the config path from the environment, or fallback
func ConfigFileFromEnv(fallback string) string {
	if v := os.Getenv(envConfigFile); v != "" {
		return v
	}
	return fallback
}

// ApplyEnvOverrides applies environment overrides on top of the loaded configuration
func ApplyEnvOverrides(config *Config) {
	if v := os.Getenv(envAddr); v != "" {
		config.Server.Addr = v
	}
	if v := os.Getenv(envExportDir); v != "" {
		config.Report.ExportDir = v
	}
}

// TradeInputsFromConfig converts the trade defaults to validated inputs
func TradeInputsFromConfig(tc TradeConfig) (TradeInputs, error) {
	return NewTradeInputs(tc.GrossSalePrice, tc.ActualAcquisitionCost, tc.AcquisitionTransferTax,
		tc.AcquisitionBrokerFee, tc.AcquiredByPurchase, tc.HeldOver10Years)
}
