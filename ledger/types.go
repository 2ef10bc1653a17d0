/*
Package ledger provides the core stock-ledger engine.

PURPOSE:
  This package contains the types and operations for tracking stock levels
  of products and variants, recording multi-channel sales, and maintaining
  an immutable audit trail of every stock change. Accounting facts are never
  persisted: the journal package reconstructs them on demand from the three
  append-only event sources defined here (stock entries, sales, manual
  journal entries).

KEY CONCEPTS IN THIS FILE (types.go):
  - StockHolder: A stock-bearing product or variant
  - Entry: An immutable ledger record of one stock change with its snapshot
  - Sale: A sale line with price and cost frozen at sale time
  - ManualEntry: A user-written journal entry (debit account / credit account)
  - Channel: Sales channel (POS or a marketplace)
  - EventKind: Tagged classifier for ledger entries

DESIGN PRINCIPLES:
  1. Immutability: Entries are never modified, only compensated
  2. Precision: decimal.Decimal for money, int64 for stock counts
  3. Tagged events: EventKind classifies entries; Note carries the
     human-readable audit text separately (no string sniffing downstream)
  4. Frozen economics: Sales capture price and cost at the moment of sale

SEE ALSO:
  - mutator.go: Atomic stock mutation + ledger append
  - recorder.go: Sale recording and cancellation
  - store.go: Persistence interfaces
  - ../journal: Derivation of accounting entries from these types
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CHANNEL - Where a sale happened
// =============================================================================

type Channel string

const (
	ChannelPOS      Channel = "pos"
	ChannelShopee   Channel = "shopee"
	ChannelTikTok   Channel = "tiktok"
	ChannelLazada   Channel = "lazada"
	ChannelReseller Channel = "reseller"
)

// Channels lists every valid sales channel.
var Channels = []Channel{ChannelPOS, ChannelShopee, ChannelTikTok, ChannelLazada, ChannelReseller}

func (c Channel) Valid() bool {
	for _, ch := range Channels {
		if c == ch {
			return true
		}
	}
	return false
}

// =============================================================================
// EVENT KIND - Tagged classifier for ledger entries
// =============================================================================

// EventKind replaces reason-string sniffing: the classifier is a tag, the
// human-readable audit text lives in Entry.Note.
type EventKind string

const (
	// KindInitialStock is the opening stock set when a holder is created or
	// imported. Excluded from journal derivation.
	KindInitialStock EventKind = "initial_stock"

	// KindStockIn is a purchase/restock. Derives debit Inventory,
	// credit Accounts Payable at the holder's cost basis.
	KindStockIn EventKind = "stock_in"

	// KindCapitalAdjustment is a zero-change entry whose Amount field carries
	// a currency correction to inventory capital (HPP adjustment).
	KindCapitalAdjustment EventKind = "capital_adjustment"

	// KindSale is the stock decrement written by the sale recorder.
	// Excluded from derivation (the Sale row itself derives the journal).
	KindSale EventKind = "sale"

	// KindCancelledSale is the compensating increment for a cancelled sale.
	KindCancelledSale EventKind = "cancelled_sale"

	// KindCorrection is a manual stock correction with no accounting impact.
	KindCorrection EventKind = "correction"
)

func (k EventKind) Valid() bool {
	switch k {
	case KindInitialStock, KindStockIn, KindCapitalAdjustment, KindSale, KindCancelledSale, KindCorrection:
		return true
	}
	return false
}

// =============================================================================
// STOCK HOLDER - A stock-bearing product or variant
// =============================================================================

// StockHolder is a product or a product variant. A product either owns one or
// more variants (and then carries no stock/price of its own) or is
// stock-bearing itself - never both. ParentID is empty for products and set
// to the owning product for variants.
type StockHolder struct {
	ID            string
	ParentID      string
	Name          string
	SKU           string
	CurrentStock  int64
	CostBasis     decimal.Decimal
	SellPrice     decimal.Decimal
	ChannelPrices map[Channel]decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (h *StockHolder) IsVariant() bool { return h.ParentID != "" }

// PriceFor returns the channel-specific price, falling back to the base
// sell price when the channel has no override.
func (h *StockHolder) PriceFor(c Channel) decimal.Decimal {
	if p, ok := h.ChannelPrices[c]; ok && p.IsPositive() {
		return p
	}
	return h.SellPrice
}

// =============================================================================
// ENTRY - One immutable stock-change record
// =============================================================================

// Entry is append-only. Corrections are new compensating entries, never
// edits. For every holder, ordering entries by insertion time:
//
//	NewLevel[n] == NewLevel[n-1] + Change[n]
//
// with NewLevel[0] == Change[0] for the first entry. Capital adjustments
// have Change == 0 and carry their currency amount in Amount; NewLevel is
// always a stock snapshot, for every kind.
type Entry struct {
	ID       string
	HolderID string
	Date     time.Time
	Kind     EventKind
	Note     string
	Channel  Channel // set for sale / cancelled_sale kinds
	Change   int64
	NewLevel int64
	// Amount carries the currency value of a capital adjustment.
	// Zero for every other kind.
	Amount    decimal.Decimal
	RefID     string // originating sale or transaction, when applicable
	CreatedAt time.Time
}

// =============================================================================
// SALE - A sale line with frozen economics
// =============================================================================

// Sale is never mutated after creation except for the cancellation flag.
// PriceAtSale and CostAtSale are frozen at sale time; later edits to the
// holder's price or cost basis must not change them.
type Sale struct {
	ID            string
	TransactionID string // groups lines checked out together
	HolderID      string
	ProductName   string
	VariantName   string
	SKU           string
	Channel       Channel
	Quantity      int64
	PriceAtSale   decimal.Decimal
	CostAtSale    decimal.Decimal
	SaleDate      time.Time
	PaymentMethod string
	CancelledAt   *time.Time
	CreatedAt     time.Time
}

func (s *Sale) Cancelled() bool { return s.CancelledAt != nil }

// Revenue returns PriceAtSale * Quantity.
func (s *Sale) Revenue() decimal.Decimal {
	return s.PriceAtSale.Mul(decimal.NewFromInt(s.Quantity))
}

// Cost returns CostAtSale * Quantity.
func (s *Sale) Cost() decimal.Decimal {
	return s.CostAtSale.Mul(decimal.NewFromInt(s.Quantity))
}

// SaleContext carries the caller-supplied details of a checkout.
type SaleContext struct {
	TransactionID string
	PaymentMethod string
	SaleDate      time.Time
}

// SaleLine is one line of a multi-line checkout.
type SaleLine struct {
	SKU      string
	Quantity int64
}

// =============================================================================
// MANUAL ENTRY - User-written journal entry
// =============================================================================

// ManualEntry is append-only from the derivation engine's perspective;
// deletion is a user-initiated correction, not a ledger reversal.
type ManualEntry struct {
	ID            string
	Date          time.Time
	Description   string
	Amount        decimal.Decimal
	DebitAccount  string
	CreditAccount string
	CreatedAt     time.Time
}

// Validate enforces the manual-entry invariants at creation time:
// positive amount and distinct debit/credit accounts.
func (m *ManualEntry) Validate() error {
	if !m.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Message: "amount must be positive"}
	}
	if m.DebitAccount == "" || m.CreditAccount == "" {
		return &ValidationError{Field: "account", Message: "debit and credit accounts are required"}
	}
	if m.DebitAccount == m.CreditAccount {
		return &ValidationError{Field: "account", Message: "debit and credit accounts must differ"}
	}
	return nil
}
