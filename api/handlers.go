/*
handlers.go - HTTP API handlers for the inventory and accounting engine

PURPOSE:
  Exposes the stock ledger and journal derivation engine via REST API.
  Handles HTTP request/response, JSON serialization, and delegates to
  domain logic.

ENDPOINTS:
  Products:
    GET    /api/products                 List products with variants
    POST   /api/products                 Create product (with variants)
    GET    /api/products/{id}            Get product details
    PUT    /api/products/{id}            Edit name/SKU/prices (never stock)
    DELETE /api/products/{id}            Delete product, cascade variants
    POST   /api/products/{id}/variants   Add a variant
    POST   /api/products/import          Bulk import with opening stock

  Stock:
    POST   /api/stock/adjustments          Manual stock movement
    POST   /api/stock/capital-adjustments  Inventory revaluation
    GET    /api/holders/{id}/history       Full ledger history

  Sales:
    POST   /api/sales                    Record single-line sale
    POST   /api/sales/checkout           Record multi-line checkout
    GET    /api/sales                    List sales
    DELETE /api/sales/{id}               Cancel one sale line
    DELETE /api/transactions/{id}        Cancel a whole checkout

  Journal:
    GET    /api/journal-entries          List manual entries
    POST   /api/journal-entries          Record manual entry
    DELETE /api/journal-entries/{id}     Delete manual entry

  Reports:
    GET    /api/reports/journal          Derived journal for a period
    GET    /api/reports/ledger           Per-account T-account view
    GET    /api/reports/summary          Revenue/COGS/profit summary
    GET    /api/reports/trial-balance    Trial balance

  Scenarios:
    GET    /api/scenarios                List demo scenarios
    POST   /api/scenarios/load           Load a demo scenario
    POST   /api/scenarios/reset          Wipe all data

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (go-playground/validator)
  3. Call domain logic (catalog, mutator, recorder, deriver)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Domain errors map to HTTP status via the ledger error predicates:
  - 400: Validation errors, invalid input
  - 404: Holder, SKU, sale or transaction not found
  - 409: Sale already cancelled
  - 503: Storage failure (retryable)
  - 500: Everything else

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/inventory-engine/journal"
	"github.com/warp/inventory-engine/ledger"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    ledger.TxStore
	Catalog  *ledger.Catalog
	Mutator  *ledger.Mutator
	Recorder *ledger.Recorder
	Deriver  *journal.Deriver

	log      *zap.Logger
	validate *validator.Validate

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store ledger.TxStore, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Store:    store,
		Catalog:  ledger.NewCatalog(store),
		Mutator:  ledger.NewMutator(store),
		Recorder: ledger.NewRecorder(store),
		Deriver:  journal.NewDeriver(log),
		log:      log,
		validate: validator.New(),
	}
}

// =============================================================================
// PRODUCT HANDLERS
// =============================================================================

// ListProducts returns all products with their variants nested.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	holders, err := h.Store.ListHolders(ctx)
	if err != nil {
		h.writeDomainError(w, "Failed to list products", err)
		return
	}

	byParent := make(map[string][]HolderDTO)
	var products []HolderDTO
	for _, holder := range holders {
		if holder.IsVariant() {
			byParent[holder.ParentID] = append(byParent[holder.ParentID], toHolderDTO(holder))
			continue
		}
		products = append(products, toHolderDTO(holder))
	}
	for i := range products {
		products[i].Variants = byParent[products[i].ID]
	}
	if products == nil {
		products = []HolderDTO{}
	}

	writeJSON(w, http.StatusOK, products)
}

// GetProduct returns a single product with its variants.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	holder, err := h.Store.GetHolder(ctx, id)
	if err != nil {
		h.writeDomainError(w, "Failed to get product", err)
		return
	}
	if holder == nil {
		writeError(w, http.StatusNotFound, "Product not found", nil)
		return
	}

	dto := toHolderDTO(*holder)
	variants, err := h.Store.ListVariants(ctx, holder.ID)
	if err != nil {
		h.writeDomainError(w, "Failed to list variants", err)
		return
	}
	for _, v := range variants {
		dto.Variants = append(dto.Variants, toHolderDTO(v))
	}

	writeJSON(w, http.StatusOK, dto)
}

// CreateProduct creates a product, optionally with variants and opening
// stock.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	params, err := toHolderParams(req.HolderParamsRequest)
	if err != nil {
		h.writeDomainError(w, "Invalid product", err)
		return
	}
	variants := make([]ledger.HolderParams, 0, len(req.Variants))
	for _, v := range req.Variants {
		vp, err := toHolderParams(v)
		if err != nil {
			h.writeDomainError(w, "Invalid variant", err)
			return
		}
		variants = append(variants, vp)
	}

	product, err := h.Catalog.CreateProduct(r.Context(), params, variants)
	if err != nil {
		h.writeDomainError(w, "Failed to create product", err)
		return
	}

	h.log.Info("product created",
		zap.String("id", product.ID),
		zap.String("name", product.Name),
		zap.Int("variants", len(variants)))

	h.respondWithProduct(w, r.Context(), http.StatusCreated, product)
}

// UpdateProduct edits a holder's name, SKU, prices and cost basis. Recorded
// sales keep the price and cost they were sold at.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req HolderParamsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	params, err := toHolderParams(req)
	if err != nil {
		h.writeDomainError(w, "Invalid update", err)
		return
	}

	holder, err := h.Catalog.UpdateHolder(r.Context(), id, params)
	if err != nil {
		h.writeDomainError(w, "Failed to update product", err)
		return
	}

	writeJSON(w, http.StatusOK, toHolderDTO(*holder))
}

// DeleteProduct removes a product, its variants and their ledger entries.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Catalog.DeleteHolder(r.Context(), id); err != nil {
		h.writeDomainError(w, "Failed to delete product", err)
		return
	}

	h.log.Info("product deleted", zap.String("id", id))
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// AddVariant attaches a new variant to an existing product.
func (h *Handler) AddVariant(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	var req HolderParamsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	params, err := toHolderParams(req)
	if err != nil {
		h.writeDomainError(w, "Invalid variant", err)
		return
	}

	variant, err := h.Catalog.AddVariant(r.Context(), productID, params)
	if err != nil {
		h.writeDomainError(w, "Failed to add variant", err)
		return
	}

	writeJSON(w, http.StatusCreated, toHolderDTO(*variant))
}

// ImportProducts creates a batch of products with opening stock, all or
// nothing.
func (h *Handler) ImportProducts(w http.ResponseWriter, r *http.Request) {
	var req ImportProductsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	rows := make([]ledger.HolderParams, 0, len(req.Rows))
	for _, row := range req.Rows {
		p, err := toHolderParams(row)
		if err != nil {
			h.writeDomainError(w, "Invalid import row", err)
			return
		}
		rows = append(rows, p)
	}

	count, err := h.Catalog.ImportProducts(r.Context(), rows)
	if err != nil {
		h.writeDomainError(w, "Import failed", err)
		return
	}

	h.log.Info("products imported", zap.Int("count", count))
	writeJSON(w, http.StatusCreated, map[string]any{"imported": count})
}

func (h *Handler) respondWithProduct(w http.ResponseWriter, ctx context.Context, status int, product *ledger.StockHolder) {
	dto := toHolderDTO(*product)
	variants, err := h.Store.ListVariants(ctx, product.ID)
	if err == nil {
		for _, v := range variants {
			dto.Variants = append(dto.Variants, toHolderDTO(v))
		}
	}
	writeJSON(w, status, dto)
}

// =============================================================================
// STOCK HANDLERS
// =============================================================================

// AdjustStock applies a manual stock movement. The target is identified by
// holder_id or sku; the kind comes from the request or is classified from
// the note text for legacy clients.
func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AdjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	holderID := req.HolderID
	if holderID == "" {
		if req.SKU == "" {
			writeError(w, http.StatusBadRequest, "holder_id or sku is required", nil)
			return
		}
		holder, err := h.Store.GetHolderBySKU(ctx, req.SKU)
		if err != nil {
			h.writeDomainError(w, "Failed to resolve SKU", err)
			return
		}
		if holder == nil {
			writeError(w, http.StatusNotFound, "SKU not found: "+req.SKU, nil)
			return
		}
		holderID = holder.ID
	}

	kind := ledger.EventKind(req.Kind)
	if req.Kind == "" {
		kind = ledger.ClassifyReason(req.Note)
	} else if !kind.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown event kind: "+req.Kind, nil)
		return
	}

	newLevel, err := h.Mutator.AdjustStock(ctx, holderID, req.Change, kind, req.Note)
	if err != nil {
		h.writeDomainError(w, "Adjustment failed", err)
		return
	}

	h.log.Info("stock adjusted",
		zap.String("holder_id", holderID),
		zap.Int64("change", req.Change),
		zap.String("kind", string(kind)),
		zap.Int64("new_level", newLevel))

	writeJSON(w, http.StatusOK, map[string]any{
		"holder_id": holderID,
		"new_level": newLevel,
	})
}

// AdjustCapital revalues inventory without moving units. The entry carries
// the monetary amount; stock level is untouched.
func (h *Handler) AdjustCapital(w http.ResponseWriter, r *http.Request) {
	var req CapitalAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	if err := h.Mutator.AdjustCapital(r.Context(), req.HolderID, req.Amount, req.Note); err != nil {
		h.writeDomainError(w, "Capital adjustment failed", err)
		return
	}

	h.log.Info("capital adjustment recorded",
		zap.String("holder_id", req.HolderID),
		zap.String("amount", req.Amount.String()))

	writeJSON(w, http.StatusCreated, map[string]any{
		"holder_id": req.HolderID,
		"amount":    req.Amount,
	})
}

// GetHistory returns the full ledger history of one holder, oldest first.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	entries, err := h.Mutator.History(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to load history", err)
		return
	}

	writeJSON(w, http.StatusOK, toEntryDTOs(entries))
}

// =============================================================================
// SALE HANDLERS
// =============================================================================

// RecordSale records a single-line sale.
func (h *Handler) RecordSale(w http.ResponseWriter, r *http.Request) {
	var req RecordSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	sctx, err := saleContext(req.PaymentMethod, req.SaleDate, "")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid sale_date (use YYYY-MM-DD or RFC3339)", err)
		return
	}

	sale, err := h.Recorder.RecordSale(r.Context(), req.SKU, ledger.Channel(req.Channel), req.Quantity, sctx)
	if err != nil {
		h.writeDomainError(w, "Failed to record sale", err)
		return
	}

	h.log.Info("sale recorded",
		zap.String("sale_id", sale.ID),
		zap.String("sku", sale.SKU),
		zap.Int64("quantity", sale.Quantity),
		zap.String("channel", string(sale.Channel)))

	writeJSON(w, http.StatusCreated, toSaleDTO(*sale))
}

// Checkout records a multi-line sale atomically; either every line commits
// or none do.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	sctx, err := saleContext(req.PaymentMethod, req.SaleDate, req.TransactionID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid sale_date (use YYYY-MM-DD or RFC3339)", err)
		return
	}

	lines := make([]ledger.SaleLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = ledger.SaleLine{SKU: l.SKU, Quantity: l.Quantity}
	}

	sales, err := h.Recorder.RecordCheckout(r.Context(), lines, ledger.Channel(req.Channel), sctx)
	if err != nil {
		h.writeDomainError(w, "Checkout failed", err)
		return
	}

	h.log.Info("checkout recorded",
		zap.String("transaction_id", sales[0].TransactionID),
		zap.Int("lines", len(sales)))

	writeJSON(w, http.StatusCreated, map[string]any{
		"transaction_id": sales[0].TransactionID,
		"sales":          toSaleDTOs(sales),
	})
}

// ListSales returns all sales, newest first. Cancelled sales stay visible.
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.Store.ListSales(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list sales", err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleDTOs(sales))
}

// CancelSale reverses one sale line: stock returns, the row is flagged
// cancelled.
func (h *Handler) CancelSale(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Recorder.CancelSale(r.Context(), id); err != nil {
		h.writeDomainError(w, "Cancellation failed", err)
		return
	}

	h.log.Info("sale cancelled", zap.String("sale_id", id))
	writeJSON(w, http.StatusOK, map[string]any{"cancelled": id})
}

// CancelTransaction cancels every still-active line of a checkout.
func (h *Handler) CancelTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Recorder.CancelTransaction(r.Context(), id); err != nil {
		h.writeDomainError(w, "Cancellation failed", err)
		return
	}

	h.log.Info("transaction cancelled", zap.String("transaction_id", id))
	writeJSON(w, http.StatusOK, map[string]any{"cancelled": id})
}

func saleContext(paymentMethod, saleDate, transactionID string) (ledger.SaleContext, error) {
	sctx := ledger.SaleContext{
		TransactionID: transactionID,
		PaymentMethod: paymentMethod,
	}
	if saleDate != "" {
		t, err := parseDate(saleDate)
		if err != nil {
			return sctx, err
		}
		sctx.SaleDate = t
	}
	return sctx, nil
}

// =============================================================================
// MANUAL JOURNAL ENTRY HANDLERS
// =============================================================================

// ListManualEntries returns all manual journal entries, newest first.
func (h *Handler) ListManualEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Store.ListManualEntries(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list journal entries", err)
		return
	}

	dtos := make([]ManualEntryDTO, len(entries))
	for i, m := range entries {
		dtos[i] = toManualEntryDTO(m)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateManualEntry records a manual journal entry. Malformed entries are
// rejected here; anything stored is guaranteed to derive balanced.
func (h *Handler) CreateManualEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateManualEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	entry := ledger.ManualEntry{
		ID:            uuid.NewString(),
		Date:          date,
		Description:   req.Description,
		Amount:        req.Amount,
		DebitAccount:  req.DebitAccount,
		CreditAccount: req.CreditAccount,
		CreatedAt:     time.Now().UTC(),
	}
	if err := entry.Validate(); err != nil {
		h.writeDomainError(w, "Invalid journal entry", err)
		return
	}

	if err := h.Store.SaveManualEntry(r.Context(), entry); err != nil {
		h.writeDomainError(w, "Failed to save journal entry", err)
		return
	}

	h.log.Info("manual journal entry recorded",
		zap.String("id", entry.ID),
		zap.String("debit", entry.DebitAccount),
		zap.String("credit", entry.CreditAccount),
		zap.String("amount", entry.Amount.String()))

	writeJSON(w, http.StatusCreated, toManualEntryDTO(entry))
}

// DeleteManualEntry removes a manual entry. Manual entries are corrections
// by the bookkeeper, so deletion is a hard delete, not a reversal.
func (h *Handler) DeleteManualEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.DeleteManualEntry(r.Context(), id); err != nil {
		h.writeDomainError(w, "Failed to delete journal entry", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetJournal returns the derived journal for a period.
// GET /api/reports/journal?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *Handler) GetJournal(w http.ResponseWriter, r *http.Request) {
	derived, period, ok := h.deriveForRequest(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"start":   period.Start.Format("2006-01-02"),
		"end":     period.End.Format("2006-01-02"),
		"entries": toDerivedEntryDTOs(derived),
	})
}

// GetLedger returns per-account T-account views. With ?account= it returns
// one account; otherwise every account that appears in the period.
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	derived, _, ok := h.deriveForRequest(w, r)
	if !ok {
		return
	}

	if account := r.URL.Query().Get("account"); account != "" {
		writeJSON(w, http.StatusOK, toAccountLedgerDTO(journal.BuildLedger(derived, account)))
		return
	}

	names := journal.AccountNames(derived)
	ledgers := make([]AccountLedgerDTO, len(names))
	for i, name := range names {
		ledgers[i] = toAccountLedgerDTO(journal.BuildLedger(derived, name))
	}
	writeJSON(w, http.StatusOK, ledgers)
}

// GetSummary returns the financial summary for a period.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	derived, period, ok := h.deriveForRequest(w, r)
	if !ok {
		return
	}

	s := journal.Summarize(derived)
	writeJSON(w, http.StatusOK, map[string]any{
		"start": period.Start.Format("2006-01-02"),
		"end":   period.End.Format("2006-01-02"),
		"summary": SummaryDTO{
			TotalRevenue:      s.TotalRevenue,
			TotalCOGS:         s.TotalCOGS,
			GrossProfit:       s.GrossProfit,
			OperatingExpenses: s.OperatingExpenses,
			OtherIncome:       s.OtherIncome,
			NetProfit:         s.NetProfit,
		},
	})
}

// GetTrialBalance returns the trial balance for a period. Total debits
// always equal total credits; anything else is a bug in derivation.
func (h *Handler) GetTrialBalance(w http.ResponseWriter, r *http.Request) {
	derived, _, ok := h.deriveForRequest(w, r)
	if !ok {
		return
	}

	rows := journal.TrialBalance(derived)
	dtos := make([]TrialBalanceRowDTO, len(rows))
	for i, row := range rows {
		dtos[i] = TrialBalanceRowDTO{Account: row.Account, Debit: row.TotalDebit, Credit: row.TotalCredit}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// deriveForRequest loads the period's event streams and runs derivation.
func (h *Handler) deriveForRequest(w http.ResponseWriter, r *http.Request) ([]journal.DerivedEntry, ledger.Period, bool) {
	ctx := r.Context()

	period, err := periodFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period (use start/end as YYYY-MM-DD)", err)
		return nil, period, false
	}

	entries, err := h.Store.EntriesInRange(ctx, period)
	if err != nil {
		h.writeDomainError(w, "Failed to load ledger entries", err)
		return nil, period, false
	}
	sales, err := h.Store.SalesInRange(ctx, period)
	if err != nil {
		h.writeDomainError(w, "Failed to load sales", err)
		return nil, period, false
	}
	manuals, err := h.Store.ManualEntriesInRange(ctx, period)
	if err != nil {
		h.writeDomainError(w, "Failed to load journal entries", err)
		return nil, period, false
	}
	holders, err := h.Store.ListHolders(ctx)
	if err != nil {
		h.writeDomainError(w, "Failed to load holders", err)
		return nil, period, false
	}

	derived := h.Deriver.Derive(journal.Inputs{
		Entries: entries,
		Sales:   sales,
		Manuals: manuals,
		Holders: holders,
	}, period)
	return derived, period, true
}

func toAccountLedgerDTO(a journal.Account) AccountLedgerDTO {
	return AccountLedgerDTO{
		Account:     a.Name,
		Side:        a.Side.String(),
		Entries:     toDerivedEntryDTOs(a.Entries),
		TotalDebit:  a.TotalDebit,
		TotalCredit: a.TotalCredit,
		Balance:     a.Balance,
	}
}

// periodFromQuery reads start/end query params, defaulting to the current
// calendar month.
func periodFromQuery(r *http.Request) (ledger.Period, error) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if start == "" && end == "" {
		return ledger.Month(time.Now().UTC()), nil
	}
	// A lone bound means a single day.
	if start == "" {
		start = end
	}

	startT, err := parseDate(start)
	if err != nil {
		return ledger.Period{}, err
	}
	endT := startT
	if end != "" {
		endT, err = parseDate(end)
		if err != nil {
			return ledger.Period{}, err
		}
	}

	p := ledger.NewPeriod(startT, endT)
	if !p.Valid() {
		return p, &ledger.ValidationError{Field: "period", Message: "end before start"}
	}
	return p, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps ledger errors to HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case ledger.IsNotFound(err):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrAlreadyCancelled):
		status = http.StatusConflict
	case ledger.IsClientError(err):
		status = http.StatusBadRequest
	case ledger.IsRetryable(err):
		status = http.StatusServiceUnavailable
	}

	if status >= 500 {
		h.log.Error(message, zap.Error(err))
	}
	writeError(w, status, message, err)
}
