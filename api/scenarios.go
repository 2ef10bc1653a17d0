/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	shop data for testing and demos. Each scenario creates products,
	opening stock, and sales that demonstrate specific features.

AVAILABLE SCENARIOS:

	boutique-catalog: Products with variants and channel prices
	month-of-trading: Stock in, multi-channel sales, a manual expense
	cancellation-day: A checkout recorded and then fully cancelled

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create products via the catalog (opening stock included)
 3. Record sales, adjustments, and manual entries

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "month-of-trading"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler dependencies the loaders use
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/inventory-engine/ledger"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "boutique-catalog",
		Name:        "Boutique Catalog",
		Description: "Products with size variants and per-channel prices",
	},
	{
		ID:          "month-of-trading",
		Name:        "Month of Trading",
		Description: "Stock in, multi-channel sales, capital adjustment, manual expense",
	},
	{
		ID:          "cancellation-day",
		Name:        "Cancellation Day",
		Description: "A two-line checkout recorded and then fully cancelled",
	},
}

// resetter is implemented by stores that can wipe themselves (sqlite, memory).
type resetter interface {
	Reset(ctx context.Context) error
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          h.currentScenario,
		Name:        h.currentScenario,
		Description: "Currently loaded scenario",
	})
}

// ResetDatabase wipes all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()

	if err := h.reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "boutique-catalog":
		err = h.loadBoutiqueCatalogScenario(ctx)
	case "month-of-trading":
		err = h.loadMonthOfTradingScenario(ctx)
	case "cancellation-day":
		err = h.loadCancellationDayScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

func (h *Handler) reset(ctx context.Context) error {
	h.currentScenario = ""
	if rs, ok := h.Store.(resetter); ok {
		return rs.Reset(ctx)
	}
	return fmt.Errorf("store does not support reset")
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadBoutiqueCatalogScenario(ctx context.Context) error {
	// A dress sold in three sizes, each with its own SKU and stock
	_, err := h.Catalog.CreateProduct(ctx, ledger.HolderParams{
		Name: "Gamis Basic",
	}, []ledger.HolderParams{
		{
			Name:         "Size S",
			SKU:          "GMS-BASIC-S",
			CostBasis:    decimal.NewFromInt(85000),
			SellPrice:    decimal.NewFromInt(150000),
			InitialStock: 12,
		},
		{
			Name:         "Size M",
			SKU:          "GMS-BASIC-M",
			CostBasis:    decimal.NewFromInt(85000),
			SellPrice:    decimal.NewFromInt(150000),
			InitialStock: 15,
		},
		{
			Name:         "Size L",
			SKU:          "GMS-BASIC-L",
			CostBasis:    decimal.NewFromInt(90000),
			SellPrice:    decimal.NewFromInt(160000),
			InitialStock: 10,
		},
	})
	if err != nil {
		return err
	}

	// A flat product with marketplace markups over the base price
	_, err = h.Catalog.CreateProduct(ctx, ledger.HolderParams{
		Name:      "Hijab Voal Premium",
		SKU:       "HJB-VOAL-01",
		CostBasis: decimal.NewFromInt(28000),
		SellPrice: decimal.NewFromInt(55000),
		ChannelPrices: map[ledger.Channel]decimal.Decimal{
			ledger.ChannelShopee: decimal.NewFromInt(62000),
			ledger.ChannelTikTok: decimal.NewFromInt(60000),
		},
		InitialStock: 40,
	}, nil)
	return err
}

func (h *Handler) loadMonthOfTradingScenario(ctx context.Context) error {
	if err := h.loadBoutiqueCatalogScenario(ctx); err != nil {
		return err
	}

	// Restock mid-month
	restocked, err := h.Store.GetHolderBySKU(ctx, "HJB-VOAL-01")
	if err != nil {
		return err
	}
	if _, err := h.Mutator.AdjustStock(ctx, restocked.ID, 20, ledger.KindStockIn, "Stock In"); err != nil {
		return err
	}

	// Sales across channels
	if _, err := h.Recorder.RecordCheckout(ctx, []ledger.SaleLine{
		{SKU: "GMS-BASIC-M", Quantity: 2},
		{SKU: "HJB-VOAL-01", Quantity: 3},
	}, ledger.ChannelPOS, ledger.SaleContext{PaymentMethod: "cash"}); err != nil {
		return err
	}
	if _, err := h.Recorder.RecordSale(ctx, "HJB-VOAL-01", ledger.ChannelShopee, 5, ledger.SaleContext{PaymentMethod: "transfer"}); err != nil {
		return err
	}
	if _, err := h.Recorder.RecordSale(ctx, "GMS-BASIC-L", ledger.ChannelTikTok, 1, ledger.SaleContext{}); err != nil {
		return err
	}

	// Cost basis correction recorded as a capital adjustment
	sized, err := h.Store.GetHolderBySKU(ctx, "GMS-BASIC-S")
	if err != nil {
		return err
	}
	if err := h.Mutator.AdjustCapital(ctx, sized.ID, decimal.NewFromInt(60000),
		ledger.CapitalAdjustmentPrefix+": revaluasi stok lama"); err != nil {
		return err
	}

	// A manual operating expense
	return h.Store.SaveManualEntry(ctx, ledger.ManualEntry{
		ID:            "manual-packing",
		Date:          time.Now().UTC(),
		Description:   "Biaya packing dan ongkir",
		Amount:        decimal.NewFromInt(75000),
		DebitAccount:  "Biaya Operasional",
		CreditAccount: "Cash",
		CreatedAt:     time.Now().UTC(),
	})
}

func (h *Handler) loadCancellationDayScenario(ctx context.Context) error {
	if err := h.loadBoutiqueCatalogScenario(ctx); err != nil {
		return err
	}

	sales, err := h.Recorder.RecordCheckout(ctx, []ledger.SaleLine{
		{SKU: "GMS-BASIC-S", Quantity: 1},
		{SKU: "GMS-BASIC-M", Quantity: 1},
	}, ledger.ChannelPOS, ledger.SaleContext{PaymentMethod: "qris"})
	if err != nil {
		return err
	}

	// Customer returned the whole order; stock comes back, rows stay flagged
	return h.Recorder.CancelTransaction(ctx, sales[0].TransactionID)
}
