/*
store.go - Persistence interfaces for the stock-ledger engine

PURPOSE:
  Defines the interface between the engine and the database. The ledger
  entry table is append-only; holders, sales and manual entries have the
  minimal mutations the domain allows (stock level, cancellation flag,
  user-initiated manual-entry deletion).

KEY INTERFACES:
  HolderStore:      Product/variant records and their current stock
  EntryStore:       Append-only stock ledger
  SaleStore:        Sale rows with cancellation flag
  ManualEntryStore: Manual journal entries
  TxStore:          Atomic multi-write transactions

APPEND-ONLY CONTRACT:
  EntryStore has AppendEntry and reads. No update or delete exists; the only
  way entries disappear is the cascade when their holder is deleted.

ATOMICITY:
  Every stock mutation must run read-current-stock + write-new-stock +
  append-entry inside WithTx. Either all writes commit or none are visible.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite
  - ledger/store: In-memory for tests and demos

SEE ALSO:
  - mutator.go: The only writer of stock levels and entries
  - recorder.go: Sale persistence on top of the mutator
*/
package ledger

import (
	"context"
	"time"
)

// =============================================================================
// HOLDER STORE
// =============================================================================

// HolderStore persists products and variants.
// Lookups return (nil, nil) when the record does not exist.
type HolderStore interface {
	// SaveHolder inserts or updates a holder record.
	SaveHolder(ctx context.Context, h StockHolder) error

	// UpdateStock sets the current stock level. Only the mutator calls this,
	// inside a transaction that also appends the matching entry.
	UpdateStock(ctx context.Context, holderID string, newLevel int64) error

	GetHolder(ctx context.Context, id string) (*StockHolder, error)
	GetHolderBySKU(ctx context.Context, sku string) (*StockHolder, error)
	ListHolders(ctx context.Context) ([]StockHolder, error)
	ListVariants(ctx context.Context, parentID string) ([]StockHolder, error)
	HasVariants(ctx context.Context, id string) (bool, error)

	// DeleteHolder removes a holder, its variants, and their ledger entries.
	DeleteHolder(ctx context.Context, id string) error
}

// =============================================================================
// ENTRY STORE - Append-only
// =============================================================================

// EntryStore persists ledger entries. IMPORTANT: append-only. No update, no
// delete. Corrections are new compensating entries.
type EntryStore interface {
	// AppendEntry persists one entry. This is the ONLY write operation.
	AppendEntry(ctx context.Context, e Entry) error

	// History returns all entries for a holder in insertion order.
	History(ctx context.Context, holderID string) ([]Entry, error)

	// EntriesInRange returns every entry whose Date falls in the period,
	// across all holders, in insertion order.
	EntriesInRange(ctx context.Context, p Period) ([]Entry, error)
}

// =============================================================================
// SALE STORE
// =============================================================================

type SaleStore interface {
	SaveSale(ctx context.Context, s Sale) error
	GetSale(ctx context.Context, id string) (*Sale, error)
	SalesByTransaction(ctx context.Context, transactionID string) ([]Sale, error)
	SalesInRange(ctx context.Context, p Period) ([]Sale, error)
	ListSales(ctx context.Context) ([]Sale, error)

	// MarkSaleCancelled sets the cancellation flag. The sale row itself is
	// never deleted or re-derived.
	MarkSaleCancelled(ctx context.Context, id string, at time.Time) error
}

// =============================================================================
// MANUAL ENTRY STORE
// =============================================================================

type ManualEntryStore interface {
	SaveManualEntry(ctx context.Context, m ManualEntry) error
	ManualEntriesInRange(ctx context.Context, p Period) ([]ManualEntry, error)
	ListManualEntries(ctx context.Context) ([]ManualEntry, error)

	// DeleteManualEntry is a user-initiated correction, not a reversal.
	DeleteManualEntry(ctx context.Context, id string) error
}

// =============================================================================
// COMPOSITE + TRANSACTIONAL STORE
// =============================================================================

// Store is the full persistence surface the engine needs.
type Store interface {
	HolderStore
	EntryStore
	SaleStore
	ManualEntryStore
}

// TxStore wraps Store with transaction support. Mutations of a holder's
// stock and its ledger must go through WithTx so concurrent mutators of the
// same holder cannot interleave between read and write.
type TxStore interface {
	Store

	// WithTx executes fn atomically. If fn returns an error the transaction
	// is rolled back and nothing is visible; commit failures surface as
	// StorageError.
	WithTx(ctx context.Context, fn func(Store) error) error
}
