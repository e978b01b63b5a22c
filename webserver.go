package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WebServer holds the HTTP server configuration
type WebServer struct {
	config *Config
	addr   string
}

// NewWebServer creates a new web server instance
func NewWebServer(config *Config, addr string) *WebServer {
	if config == nil {
		config, _ = LoadDefaultConfig()
	}
	return &WebServer{
		config: config,
		addr:   addr,
	}
}

// APIAcquisition holds the acquisition fields shared by all requests
type APIAcquisition struct {
	ActualAcquisitionCost  float64 `json:"actual_acquisition_cost"`
	AcquisitionTransferTax float64 `json:"acquisition_transfer_tax"`
	AcquisitionBrokerFee   float64 `json:"acquisition_broker_fee"`
	AcquiredByPurchase     bool    `json:"acquired_by_purchase"`
	HeldOver10Years        bool    `json:"held_over_10_years"`
	// Tax overrides the server's tax configuration when set
	Tax *TaxConfig `json:"tax,omitempty"`
}

// APICalculateRequest is a forward calculation request
type APICalculateRequest struct {
	GrossSalePrice float64 `json:"gross_sale_price"`
	APIAcquisition
}

// APIReverseRequest asks for the sale price that yields TargetNet
type APIReverseRequest struct {
	TargetNet float64 `json:"target_net"`
	APIAcquisition
}

// APISweepRequest asks for breakdowns over a range of sale prices.
// Zero Step falls back to the configured sweep range.
type APISweepRequest struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
	APIAcquisition
}

// APIPDFRequest asks for a PDF of a forward calculation, or of a reverse one when TargetNet is set
type APIPDFRequest struct {
	GrossSalePrice float64  `json:"gross_sale_price"`
	TargetNet      *float64 `json:"target_net,omitempty"`
	APIAcquisition
}

// APIBreakdown is TaxBreakdown with plain numbers
type APIBreakdown struct {
	GrossSalePrice            float64 `json:"gross_sale_price"`
	DeemedAcquisitionCostRate float64 `json:"deemed_acquisition_cost_rate"`
	DeemedAcquisitionCost     float64 `json:"deemed_acquisition_cost"`
	ActualCostBasis           float64 `json:"actual_cost_basis"`
	DeductionMethod           string  `json:"deduction_method"`
	EffectiveDeduction        float64 `json:"effective_deduction"`
	TaxableGain               float64 `json:"taxable_gain"`
	GainUnder30k              float64 `json:"gain_under_30k"`
	GainOver30k               float64 `json:"gain_over_30k"`
	TaxUnder30k               float64 `json:"tax_under_30k"`
	TaxOver30k                float64 `json:"tax_over_30k"`
	TotalTax                  float64 `json:"total_tax"`
	NetSalePrice              float64 `json:"net_sale_price"`
	BuyerTransferTax          float64 `json:"buyer_transfer_tax"`
	EffectiveTaxRate          float64 `json:"effective_tax_rate"`
}

// APICalculateResponse is returned by /api/calculate
type APICalculateResponse struct {
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Breakdown *APIBreakdown `json:"breakdown,omitempty"`
}

// APIReverseResponse is returned by /api/reverse
type APIReverseResponse struct {
	Success        bool          `json:"success"`
	Error          string        `json:"error,omitempty"`
	GrossSalePrice float64       `json:"gross_sale_price"`
	Regime         string        `json:"regime,omitempty"`
	Breakdown      *APIBreakdown `json:"breakdown,omitempty"`
}

// APISweepRow is one row of the sweep table
type APISweepRow struct {
	APIBreakdown
	MarginalNetRate float64 `json:"marginal_net_rate"`
}

// APISweepResponse is returned by /api/sweep
type APISweepResponse struct {
	Success     bool          `json:"success"`
	Error       string        `json:"error,omitempty"`
	Rows        []APISweepRow `json:"rows,omitempty"`
	Breakpoints []float64     `json:"breakpoints,omitempty"`
}

// PDFExportResponse is returned by /api/export-pdf
type PDFExportResponse struct {
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	FilePath string `json:"file_path,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Handler returns the routed handler with request logging
func (ws *WebServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/config", ws.handleGetConfig)
	mux.HandleFunc("/api/calculate", ws.handleCalculate)
	mux.HandleFunc("/api/reverse", ws.handleReverse)
	mux.HandleFunc("/api/sweep", ws.handleSweep)
	mux.HandleFunc("/api/download-pdf", ws.handleDownloadPDF)
	mux.HandleFunc("/api/export-pdf", ws.handleExportPDF)
	return withRequestLogging(mux)
}

// listen opens the listener and returns the URL to reach it on
func (ws *WebServer) listen() (net.Listener, string, error) {
	// Listen on the address (use :0 for auto-assign)
	listener, err := net.Listen("tcp", ws.addr)
	if err != nil {
		return nil, "", err
	}

	actualAddr := listener.Addr().String()
	url := fmt.Sprintf("http://%s", actualAddr)

	// If listening on all interfaces, use localhost for the URL
	if strings.HasPrefix(actualAddr, ":") || strings.HasPrefix(actualAddr, "0.0.0.0:") {
		port := actualAddr[strings.LastIndex(actualAddr, ":")+1:]
		url = fmt.Sprintf("http://localhost:%s", port)
	}
	return listener, url, nil
}

// Start starts the web server and blocks until it fails
func (ws *WebServer) Start() error {
	listener, url, err := ws.listen()
	if err != nil {
		return err
	}

	log.Printf("Starting web server on %s", listener.Addr())
	log.Printf("API available at %s/api/calculate", url)

	server := &http.Server{Handler: ws.Handler(), ReadHeaderTimeout: 10 * time.Second}
	return server.Serve(listener)
}

// StartBackground starts the server without blocking and returns its URL and a
// cleanup function that shuts it down
func (ws *WebServer) StartBackground() (url string, cleanup func(), err error) {
	listener, url, err := ws.listen()
	if err != nil {
		return "", nil, err
	}

	log.Printf("Starting background web server on %s", listener.Addr())

	server := &http.Server{Handler: ws.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	cleanup = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}
	return url, cleanup, nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestLogging tags each request with an id and logs it when done
func withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		log.Printf("[%s] %s %s %d %s", id, r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
	})
}

// handleGetConfig returns the current configuration
func (ws *WebServer) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ws.config)
}

func (ws *WebServer) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req APICalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	inputs, taxConfig, err := ws.tradeInputs(req.GrossSalePrice, req.APIAcquisition)
	if err != nil {
		sendJSONError(w, statusForError(err), err.Error())
		return
	}
	breakdown, err := CalculateWithConfig(inputs, taxConfig)
	if err != nil {
		sendJSONError(w, statusForError(err), err.Error())
		return
	}

	sendJSON(w, APICalculateResponse{Success: true, Breakdown: toAPIBreakdown(breakdown)})
}

func (ws *WebServer) handleReverse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req APIReverseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	acq, taxConfig, err := ws.acquisitionInputs(req.APIAcquisition)
	if err != nil {
		sendJSONError(w, statusForError(err), err.Error())
		return
	}
	targetNet, err := finiteFromFloat("target_net", req.TargetNet)
	if err != nil {
		sendJSONError(w, statusForError(err), err.Error())
		return
	}

	result, err := ReverseCalculateWithConfig(targetNet, acq, taxConfig)
	if err != nil {
		sendJSONError(w, statusForError(err), err.Error())
		return
	}

	sendJSON(w, APIReverseResponse{
		Success:        true,
		GrossSalePrice: result.GrossSalePrice.InexactFloat64(),
		Regime:         result.Regime.String(),
		Breakdown:      toAPIBreakdown(result.Breakdown),
	})
}

func (ws *WebServer) handleSweep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req APISweepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	acq, taxConfig, err := ws.acquisitionInputs(req.APIAcquisition)
	if err != nil {
		sendJSONError(w, statusForError(err), err.Error())
		return
	}

	min, max, step := SweepRangeFromConfig(ws.config.Sweep)
	if req.Step != 0 {
		min = decimal.NewFromFloat(req.Min)
		max = decimal.NewFromFloat(req.Max)
		step = decimal.NewFromFloat(req.Step)
	}

	rows, err := RunGrossSweep(acq, min, max, step, taxConfig)
	if err != nil {
		sendJSONError(w, statusForError(err), err.Error())
		return
	}

	response := APISweepResponse{Success: true}
	for _, row := range rows {
		response.Rows = append(response.Rows, APISweepRow{
			APIBreakdown:    *toAPIBreakdown(row.Breakdown),
			MarginalNetRate: row.MarginalNetRate.InexactFloat64(),
		})
	}
	for _, p := range NetProceedsBreakpoints(acq, taxConfig) {
		response.Breakpoints = append(response.Breakpoints, p.InexactFloat64())
	}
	sendJSON(w, response)
}

// buildPDF runs the calculation the request describes and renders it
func (ws *WebServer) buildPDF(req APIPDFRequest) ([]byte, error) {
	acq, taxConfig, err := ws.acquisitionInputs(req.APIAcquisition)
	if err != nil {
		return nil, err
	}

	opts := PDFReportOptions{}
	var breakdown TaxBreakdown
	if req.TargetNet != nil {
		targetNet, err := finiteFromFloat("target_net", *req.TargetNet)
		if err != nil {
			return nil, err
		}
		result, err := ReverseCalculateWithConfig(targetNet, acq, taxConfig)
		if err != nil {
			return nil, err
		}
		breakdown = result.Breakdown
		opts.TargetNet = &targetNet
		opts.Regime = result.Regime.String()
	} else {
		inputs, _, err := ws.tradeInputs(req.GrossSalePrice, req.APIAcquisition)
		if err != nil {
			return nil, err
		}
		if breakdown, err = CalculateWithConfig(inputs, taxConfig); err != nil {
			return nil, err
		}
	}

	inputs := TradeInputs{GrossSalePrice: breakdown.GrossSalePrice, AcquisitionInputs: acq}
	return GenerateBreakdownPDFReport(inputs, breakdown, opts)
}

// handleDownloadPDF returns PDF content directly for browser download
func (ws *WebServer) handleDownloadPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req APIPDFRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	pdfBytes, err := ws.buildPDF(req)
	if err != nil {
		sendJSONError(w, statusForError(err), "Failed to generate PDF: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", pdfFilename(time.Now())))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(pdfBytes)))
	w.Write(pdfBytes)
}

// handleExportPDF saves the PDF into the export directory
func (ws *WebServer) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req APIPDFRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	pdfBytes, err := ws.buildPDF(req)
	if err != nil {
		sendJSONError(w, statusForError(err), "Failed to generate PDF: "+err.Error())
		return
	}

	exportDir := ws.config.GetExportDir()
	if err := os.MkdirAll(exportDir, 0755); err != nil {
		sendJSONError(w, http.StatusInternalServerError, "Failed to create export directory: "+err.Error())
		return
	}
	path := filepath.Join(exportDir, pdfFilename(time.Now()))
	if err := os.WriteFile(path, pdfBytes, 0644); err != nil {
		sendJSONError(w, http.StatusInternalServerError, "Failed to save PDF: "+err.Error())
		return
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	log.Printf("PDF report saved to %s", absPath)

	sendJSON(w, PDFExportResponse{
		Success:  true,
		FilePath: absPath,
		Message:  fmt.Sprintf("PDF report saved to %s", absPath),
	})
}

// acquisitionInputs converts the request fields and picks the tax configuration
func (ws *WebServer) acquisitionInputs(req APIAcquisition) (AcquisitionInputs, TaxConfig, error) {
	taxConfig := ws.config.Tax
	if req.Tax != nil {
		taxConfig = *req.Tax
	}
	if err := taxConfig.Validate(); err != nil {
		return AcquisitionInputs{}, TaxConfig{}, err
	}
	acq, err := NewAcquisitionInputs(req.ActualAcquisitionCost, req.AcquisitionTransferTax,
		req.AcquisitionBrokerFee, req.AcquiredByPurchase, req.HeldOver10Years)
	return acq, taxConfig, err
}

func (ws *WebServer) tradeInputs(gross float64, req APIAcquisition) (TradeInputs, TaxConfig, error) {
	acq, taxConfig, err := ws.acquisitionInputs(req)
	if err != nil {
		return TradeInputs{}, TaxConfig{}, err
	}
	grossSalePrice, err := amountFromFloat("gross_sale_price", gross)
	if err != nil {
		return TradeInputs{}, TaxConfig{}, err
	}
	return TradeInputs{GrossSalePrice: grossSalePrice, AcquisitionInputs: acq}, taxConfig, nil
}

func toAPIBreakdown(b TaxBreakdown) *APIBreakdown {
	return &APIBreakdown{
		GrossSalePrice:            b.GrossSalePrice.InexactFloat64(),
		DeemedAcquisitionCostRate: b.DeemedAcquisitionCostRate.InexactFloat64(),
		DeemedAcquisitionCost:     b.DeemedAcquisitionCost.InexactFloat64(),
		ActualCostBasis:           b.ActualCostBasis.InexactFloat64(),
		DeductionMethod:           b.DeductionMethod.String(),
		EffectiveDeduction:        b.EffectiveDeduction.InexactFloat64(),
		TaxableGain:               b.TaxableGain.InexactFloat64(),
		GainUnder30k:              b.GainUnder30k.InexactFloat64(),
		GainOver30k:               b.GainOver30k.InexactFloat64(),
		TaxUnder30k:               b.TaxUnder30k.InexactFloat64(),
		TaxOver30k:                b.TaxOver30k.InexactFloat64(),
		TotalTax:                  b.TotalTax.InexactFloat64(),
		NetSalePrice:              b.NetSalePrice.InexactFloat64(),
		BuyerTransferTax:          b.BuyerTransferTax.InexactFloat64(),
		EffectiveTaxRate:          b.EffectiveTaxRate().InexactFloat64(),
	}
}

func pdfFilename(now time.Time) string {
	return fmt.Sprintf("share-sale-%s.pdf", now.Format("20060102-150405"))
}

// statusForError maps calculation errors to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotSolvable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func sendJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APICalculateResponse{
		Success: false,
		Error:   message,
	})
}
