/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Monetary fields use decimal.Decimal, which marshals to a JSON string
  ("150000") so clients never see float rounding.

VALIDATION:
  Request types carry go-playground/validator struct tags; handlers run
  them through Handler.validate before touching domain logic.

SEE ALSO:
  - handlers.go: Uses these types
  - ledger/types.go: Domain types these mirror
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/inventory-engine/journal"
	"github.com/warp/inventory-engine/ledger"
)

// =============================================================================
// CATALOG TYPES
// =============================================================================

// HolderDTO represents a product or variant in API responses.
type HolderDTO struct {
	ID            string            `json:"id"`
	ParentID      string            `json:"parent_id,omitempty"`
	Name          string            `json:"name"`
	SKU           string            `json:"sku,omitempty"`
	CurrentStock  int64             `json:"current_stock"`
	CostBasis     decimal.Decimal   `json:"cost_basis"`
	SellPrice     decimal.Decimal   `json:"sell_price"`
	ChannelPrices map[string]string `json:"channel_prices,omitempty"`
	Variants      []HolderDTO       `json:"variants,omitempty"`
	CreatedAt     string            `json:"created_at,omitempty"`
	UpdatedAt     string            `json:"updated_at,omitempty"`
}

// HolderParamsRequest carries the editable fields of a product or variant.
type HolderParamsRequest struct {
	Name          string            `json:"name"`
	SKU           string            `json:"sku"`
	CostBasis     decimal.Decimal   `json:"cost_basis"`
	SellPrice     decimal.Decimal   `json:"sell_price"`
	ChannelPrices map[string]string `json:"channel_prices"`
	InitialStock  int64             `json:"initial_stock" validate:"gte=0"`
}

// CreateProductRequest is the request to create a product, optionally with
// variants.
type CreateProductRequest struct {
	HolderParamsRequest
	Variants []HolderParamsRequest `json:"variants" validate:"dive"`
}

// ImportProductsRequest is the bulk spreadsheet import payload.
type ImportProductsRequest struct {
	Rows []HolderParamsRequest `json:"rows" validate:"required,min=1,dive"`
}

// =============================================================================
// STOCK TYPES
// =============================================================================

// EntryDTO represents one stock ledger entry.
type EntryDTO struct {
	ID        string          `json:"id"`
	HolderID  string          `json:"holder_id"`
	Date      string          `json:"date"`
	Kind      string          `json:"kind"`
	Reason    string          `json:"reason"`
	Channel   string          `json:"channel,omitempty"`
	Change    int64           `json:"change"`
	NewLevel  int64           `json:"new_level"`
	Amount    decimal.Decimal `json:"amount"`
	RefID     string          `json:"ref_id,omitempty"`
	CreatedAt string          `json:"created_at,omitempty"`
}

// AdjustStockRequest is a manual stock movement. Either holder_id or sku
// identifies the target. Reason text is classified into an event kind when
// kind is not given explicitly.
type AdjustStockRequest struct {
	HolderID string `json:"holder_id"`
	SKU      string `json:"sku"`
	Change   int64  `json:"change" validate:"required"`
	Kind     string `json:"kind"`
	Note     string `json:"note"`
}

// CapitalAdjustmentRequest revalues inventory without moving units.
type CapitalAdjustmentRequest struct {
	HolderID string          `json:"holder_id" validate:"required"`
	Amount   decimal.Decimal `json:"amount" validate:"required"`
	Note     string          `json:"note"`
}

// =============================================================================
// SALE TYPES
// =============================================================================

// SaleDTO represents a recorded sale line.
type SaleDTO struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	HolderID      string          `json:"holder_id"`
	ProductName   string          `json:"product_name"`
	VariantName   string          `json:"variant_name,omitempty"`
	SKU           string          `json:"sku"`
	Channel       string          `json:"channel"`
	Quantity      int64           `json:"quantity"`
	PriceAtSale   decimal.Decimal `json:"price_at_sale"`
	CostAtSale    decimal.Decimal `json:"cost_at_sale"`
	Revenue       decimal.Decimal `json:"revenue"`
	SaleDate      string          `json:"sale_date"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	CancelledAt   string          `json:"cancelled_at,omitempty"`
}

// SaleLineRequest is one line of a checkout.
type SaleLineRequest struct {
	SKU      string `json:"sku" validate:"required"`
	Quantity int64  `json:"quantity" validate:"required,gt=0"`
}

// CheckoutRequest records a multi-line sale atomically.
type CheckoutRequest struct {
	Lines         []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
	Channel       string            `json:"channel" validate:"required"`
	PaymentMethod string            `json:"payment_method"`
	SaleDate      string            `json:"sale_date"`
	TransactionID string            `json:"transaction_id"`
}

// RecordSaleRequest records a single-line sale.
type RecordSaleRequest struct {
	SKU           string `json:"sku" validate:"required"`
	Quantity      int64  `json:"quantity" validate:"required,gt=0"`
	Channel       string `json:"channel" validate:"required"`
	PaymentMethod string `json:"payment_method"`
	SaleDate      string `json:"sale_date"`
}

// =============================================================================
// JOURNAL TYPES
// =============================================================================

// ManualEntryDTO represents a manual journal entry.
type ManualEntryDTO struct {
	ID            string          `json:"id"`
	Date          string          `json:"date"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	DebitAccount  string          `json:"debit_account"`
	CreditAccount string          `json:"credit_account"`
	CreatedAt     string          `json:"created_at,omitempty"`
}

// CreateManualEntryRequest is the request to record a manual journal entry.
type CreateManualEntryRequest struct {
	Date          string          `json:"date" validate:"required"`
	Description   string          `json:"description" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	DebitAccount  string          `json:"debit_account" validate:"required"`
	CreditAccount string          `json:"credit_account" validate:"required"`
}

// DerivedEntryDTO is one journal line produced by derivation.
type DerivedEntryDTO struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Account     string          `json:"account"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	SourceType  string          `json:"source_type"`
	SourceID    string          `json:"source_id,omitempty"`
}

// AccountLedgerDTO is one account's T-account view.
type AccountLedgerDTO struct {
	Account     string            `json:"account"`
	Side        string            `json:"side"`
	Entries     []DerivedEntryDTO `json:"entries"`
	TotalDebit  decimal.Decimal   `json:"total_debit"`
	TotalCredit decimal.Decimal   `json:"total_credit"`
	Balance     decimal.Decimal   `json:"balance"`
}

// SummaryDTO is the period financial summary.
type SummaryDTO struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalCOGS         decimal.Decimal `json:"total_cogs"`
	GrossProfit       decimal.Decimal `json:"gross_profit"`
	OperatingExpenses decimal.Decimal `json:"operating_expenses"`
	OtherIncome       decimal.Decimal `json:"other_income"`
	NetProfit         decimal.Decimal `json:"net_profit"`
}

// TrialBalanceRowDTO is one line of the trial balance.
type TrialBalanceRowDTO struct {
	Account string          `json:"account"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toHolderDTO(h ledger.StockHolder) HolderDTO {
	dto := HolderDTO{
		ID:           h.ID,
		ParentID:     h.ParentID,
		Name:         h.Name,
		SKU:          h.SKU,
		CurrentStock: h.CurrentStock,
		CostBasis:    h.CostBasis,
		SellPrice:    h.SellPrice,
		CreatedAt:    h.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    h.UpdatedAt.Format(time.RFC3339),
	}
	if len(h.ChannelPrices) > 0 {
		dto.ChannelPrices = make(map[string]string, len(h.ChannelPrices))
		for ch, p := range h.ChannelPrices {
			dto.ChannelPrices[string(ch)] = p.String()
		}
	}
	return dto
}

func toEntryDTO(e ledger.Entry) EntryDTO {
	return EntryDTO{
		ID:        e.ID,
		HolderID:  e.HolderID,
		Date:      e.Date.Format(time.RFC3339),
		Kind:      string(e.Kind),
		Reason:    ledger.DisplayReason(e),
		Channel:   string(e.Channel),
		Change:    e.Change,
		NewLevel:  e.NewLevel,
		Amount:    e.Amount,
		RefID:     e.RefID,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

func toEntryDTOs(entries []ledger.Entry) []EntryDTO {
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	return dtos
}

func toSaleDTO(s ledger.Sale) SaleDTO {
	dto := SaleDTO{
		ID:            s.ID,
		TransactionID: s.TransactionID,
		HolderID:      s.HolderID,
		ProductName:   s.ProductName,
		VariantName:   s.VariantName,
		SKU:           s.SKU,
		Channel:       string(s.Channel),
		Quantity:      s.Quantity,
		PriceAtSale:   s.PriceAtSale,
		CostAtSale:    s.CostAtSale,
		Revenue:       s.Revenue(),
		SaleDate:      s.SaleDate.Format(time.RFC3339),
		PaymentMethod: s.PaymentMethod,
	}
	if s.CancelledAt != nil {
		dto.CancelledAt = s.CancelledAt.Format(time.RFC3339)
	}
	return dto
}

func toSaleDTOs(sales []ledger.Sale) []SaleDTO {
	dtos := make([]SaleDTO, len(sales))
	for i, s := range sales {
		dtos[i] = toSaleDTO(s)
	}
	return dtos
}

func toManualEntryDTO(m ledger.ManualEntry) ManualEntryDTO {
	return ManualEntryDTO{
		ID:            m.ID,
		Date:          m.Date.Format("2006-01-02"),
		Description:   m.Description,
		Amount:        m.Amount,
		DebitAccount:  m.DebitAccount,
		CreditAccount: m.CreditAccount,
		CreatedAt:     m.CreatedAt.Format(time.RFC3339),
	}
}

func toDerivedEntryDTO(d journal.DerivedEntry) DerivedEntryDTO {
	return DerivedEntryDTO{
		Date:        d.Date.Format(time.RFC3339),
		Description: d.Description,
		Account:     d.Account,
		Debit:       d.Debit,
		Credit:      d.Credit,
		SourceType:  string(d.SourceType),
		SourceID:    d.SourceID,
	}
}

func toDerivedEntryDTOs(derived []journal.DerivedEntry) []DerivedEntryDTO {
	dtos := make([]DerivedEntryDTO, len(derived))
	for i, d := range derived {
		dtos[i] = toDerivedEntryDTO(d)
	}
	return dtos
}

func toHolderParams(req HolderParamsRequest) (ledger.HolderParams, error) {
	p := ledger.HolderParams{
		Name:         req.Name,
		SKU:          req.SKU,
		CostBasis:    req.CostBasis,
		SellPrice:    req.SellPrice,
		InitialStock: req.InitialStock,
	}
	if len(req.ChannelPrices) > 0 {
		p.ChannelPrices = make(map[ledger.Channel]decimal.Decimal, len(req.ChannelPrices))
		for ch, raw := range req.ChannelPrices {
			c := ledger.Channel(ch)
			if !c.Valid() {
				return p, &ledger.ValidationError{Field: "channel_prices", Message: "unknown channel: " + ch}
			}
			d, err := decimal.NewFromString(raw)
			if err != nil {
				return p, &ledger.ValidationError{Field: "channel_prices", Message: "bad price for " + ch}
			}
			p.ChannelPrices[c] = d
		}
	}
	return p, nil
}
