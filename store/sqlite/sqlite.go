/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements ledger.TxStore using SQLite. In production, the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  The ledger_entries table is append-only:
  - No UPDATE statements
  - No DELETE statements except the ON DELETE CASCADE from holders
  - Corrections are new compensating entries

KEY TABLES:
  holders:        Products and variants with their current stock level
  ledger_entries: Immutable log of every stock change
  sales:          Sale rows with frozen price/cost and cancellation flag
  manual_entries: User-entered journal entries

INDEXES:
  - idx_entries_holder: History reads (hot path)
  - idx_entries_date: Period derivation
  - idx_sales_transaction: Checkout cancellation
  - idx_sales_date: Period derivation
  - idx_holders_sku: SKU lookup at checkout, unique where non-empty

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. Query helpers take a dbtx so the same
  code runs against *sql.DB (public methods, which lock) and *sql.Tx (the
  WithTx view, which must not re-lock while WithTx holds the write lock).

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/inventory.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  mutator := &ledger.Mutator{Store: store}

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - ledger/store.go: Interface definitions
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/inventory-engine/ledger"
)

// timeLayout is RFC 3339 with fixed-width nanoseconds. Timestamps are stored
// as TEXT and range-filtered with string comparison, so the encoding must sort
// in time order; RFC3339Nano trims trailing fractional zeros and breaks that.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements ledger.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; one pooled connection also keeps
	// ":memory:" databases from fragmenting per connection.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Holders (products and variants)
	CREATE TABLE IF NOT EXISTS holders (
		id TEXT PRIMARY KEY,
		parent_id TEXT REFERENCES holders(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		sku TEXT NOT NULL DEFAULT '',
		current_stock INTEGER NOT NULL DEFAULT 0,
		cost_basis TEXT NOT NULL DEFAULT '0',
		sell_price TEXT NOT NULL DEFAULT '0',
		channel_prices_json TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_holders_parent
		ON holders(parent_id) WHERE parent_id IS NOT NULL;
	CREATE UNIQUE INDEX IF NOT EXISTS idx_holders_sku
		ON holders(sku) WHERE sku != '';

	-- Ledger entries (append-only)
	CREATE TABLE IF NOT EXISTS ledger_entries (
		id TEXT PRIMARY KEY,
		holder_id TEXT NOT NULL REFERENCES holders(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		kind TEXT NOT NULL,
		note TEXT,
		channel TEXT,
		change INTEGER NOT NULL,
		new_level INTEGER NOT NULL,
		amount TEXT NOT NULL DEFAULT '0',
		ref_id TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_holder
		ON ledger_entries(holder_id);
	CREATE INDEX IF NOT EXISTS idx_entries_date
		ON ledger_entries(date);
	CREATE INDEX IF NOT EXISTS idx_entries_kind
		ON ledger_entries(kind);

	-- Sales (frozen economics; cancellation is a flag, never a delete)
	CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		transaction_id TEXT NOT NULL,
		holder_id TEXT NOT NULL,
		product_name TEXT NOT NULL,
		variant_name TEXT,
		sku TEXT NOT NULL,
		channel TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		price_at_sale TEXT NOT NULL,
		cost_at_sale TEXT NOT NULL,
		sale_date TEXT NOT NULL,
		payment_method TEXT,
		cancelled_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sales_transaction
		ON sales(transaction_id);
	CREATE INDEX IF NOT EXISTS idx_sales_date
		ON sales(sale_date);
	CREATE INDEX IF NOT EXISTS idx_sales_holder
		ON sales(holder_id);

	-- Manual journal entries
	CREATE TABLE IF NOT EXISTS manual_entries (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		description TEXT NOT NULL,
		amount TEXT NOT NULL,
		debit_account TEXT NOT NULL,
		credit_account TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_manual_entries_date
		ON manual_entries(date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so every query helper works
// inside and outside WithTx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// HOLDER STORE (ledger.HolderStore interface)
// =============================================================================

// SaveHolder inserts or updates a holder record.
func (s *Store) SaveHolder(ctx context.Context, h ledger.StockHolder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return saveHolder(ctx, s.db, h)
}

func saveHolder(ctx context.Context, db dbtx, h ledger.StockHolder) error {
	pricesJSON, err := encodeChannelPrices(h.ChannelPrices)
	if err != nil {
		return &ledger.StorageError{Op: "save holder", Err: err}
	}

	query := `
		INSERT INTO holders
		(id, parent_id, name, sku, current_stock, cost_basis, sell_price, channel_prices_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			sku = excluded.sku,
			cost_basis = excluded.cost_basis,
			sell_price = excluded.sell_price,
			channel_prices_json = excluded.channel_prices_json,
			updated_at = excluded.updated_at
	`

	_, err = db.ExecContext(ctx, query,
		h.ID,
		nullString(h.ParentID),
		h.Name,
		h.SKU,
		h.CurrentStock,
		h.CostBasis.String(),
		h.SellPrice.String(),
		pricesJSON,
		h.CreatedAt.UTC().Format(timeLayout),
		h.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return &ledger.StorageError{Op: "save holder", Err: err}
	}
	return nil
}

// UpdateStock sets the current stock level. The mutator calls this inside
// WithTx, alongside the matching ledger entry.
func (s *Store) UpdateStock(ctx context.Context, holderID string, newLevel int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return updateStock(ctx, s.db, holderID, newLevel)
}

func updateStock(ctx context.Context, db dbtx, holderID string, newLevel int64) error {
	res, err := db.ExecContext(ctx,
		"UPDATE holders SET current_stock = ?, updated_at = ? WHERE id = ?",
		newLevel, time.Now().UTC().Format(timeLayout), holderID,
	)
	if err != nil {
		return &ledger.StorageError{Op: "update stock", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &ledger.NotFoundError{Kind: "holder", ID: holderID}
	}
	return nil
}

// GetHolder retrieves a holder by ID. Returns (nil, nil) when not found.
func (s *Store) GetHolder(ctx context.Context, id string) (*ledger.StockHolder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return getHolder(ctx, s.db, id)
}

func getHolder(ctx context.Context, db dbtx, id string) (*ledger.StockHolder, error) {
	row := db.QueryRowContext(ctx, holderSelect+" WHERE id = ?", id)
	return scanHolderRow(row)
}

// GetHolderBySKU retrieves a holder by SKU. Returns (nil, nil) when not found.
func (s *Store) GetHolderBySKU(ctx context.Context, sku string) (*ledger.StockHolder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return getHolderBySKU(ctx, s.db, sku)
}

func getHolderBySKU(ctx context.Context, db dbtx, sku string) (*ledger.StockHolder, error) {
	if sku == "" {
		return nil, nil
	}
	row := db.QueryRowContext(ctx, holderSelect+" WHERE sku = ? COLLATE NOCASE", sku)
	return scanHolderRow(row)
}

// ListHolders returns all holders, products before their variants.
func (s *Store) ListHolders(ctx context.Context) ([]ledger.StockHolder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return listHolders(ctx, s.db)
}

func listHolders(ctx context.Context, db dbtx) ([]ledger.StockHolder, error) {
	return queryHolders(ctx, db, holderSelect+" ORDER BY parent_id IS NOT NULL, name, sku")
}

// ListVariants returns the variants of a product.
func (s *Store) ListVariants(ctx context.Context, parentID string) ([]ledger.StockHolder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return listVariants(ctx, s.db, parentID)
}

func listVariants(ctx context.Context, db dbtx, parentID string) ([]ledger.StockHolder, error) {
	return queryHolders(ctx, db, holderSelect+" WHERE parent_id = ? ORDER BY name, sku", parentID)
}

// HasVariants reports whether a holder owns variants.
func (s *Store) HasVariants(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return hasVariants(ctx, s.db, id)
}

func hasVariants(ctx context.Context, db dbtx, id string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM holders WHERE parent_id = ?", id,
	).Scan(&count)
	if err != nil {
		return false, &ledger.StorageError{Op: "count variants", Err: err}
	}
	return count > 0, nil
}

// DeleteHolder removes a holder; the schema cascades to variants and their
// ledger entries.
func (s *Store) DeleteHolder(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return deleteHolder(ctx, s.db, id)
}

func deleteHolder(ctx context.Context, db dbtx, id string) error {
	res, err := db.ExecContext(ctx, "DELETE FROM holders WHERE id = ?", id)
	if err != nil {
		return &ledger.StorageError{Op: "delete holder", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &ledger.NotFoundError{Kind: "holder", ID: id}
	}
	return nil
}

const holderSelect = `
	SELECT id, parent_id, name, sku, current_stock, cost_basis, sell_price,
	       channel_prices_json, created_at, updated_at
	FROM holders`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHolder(r rowScanner) (ledger.StockHolder, error) {
	var (
		h          ledger.StockHolder
		parentID   sql.NullString
		costBasis  string
		sellPrice  string
		pricesJSON sql.NullString
		createdAt  string
		updatedAt  string
	)

	err := r.Scan(&h.ID, &parentID, &h.Name, &h.SKU, &h.CurrentStock,
		&costBasis, &sellPrice, &pricesJSON, &createdAt, &updatedAt)
	if err != nil {
		return h, err
	}

	h.ParentID = parentID.String
	h.CostBasis = mustDecimal(costBasis)
	h.SellPrice = mustDecimal(sellPrice)
	h.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	h.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	if pricesJSON.Valid && pricesJSON.String != "" {
		h.ChannelPrices, err = decodeChannelPrices(pricesJSON.String)
		if err != nil {
			return h, err
		}
	}
	return h, nil
}

func scanHolderRow(row *sql.Row) (*ledger.StockHolder, error) {
	h, err := scanHolder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &ledger.StorageError{Op: "scan holder", Err: err}
	}
	return &h, nil
}

func queryHolders(ctx context.Context, db dbtx, query string, args ...any) ([]ledger.StockHolder, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &ledger.StorageError{Op: "query holders", Err: err}
	}
	defer rows.Close()

	var holders []ledger.StockHolder
	for rows.Next() {
		h, err := scanHolder(rows)
		if err != nil {
			return nil, &ledger.StorageError{Op: "scan holder", Err: err}
		}
		holders = append(holders, h)
	}
	return holders, rows.Err()
}

func encodeChannelPrices(prices map[ledger.Channel]decimal.Decimal) (sql.NullString, error) {
	if len(prices) == 0 {
		return sql.NullString{}, nil
	}
	flat := make(map[string]string, len(prices))
	for ch, p := range prices {
		flat[string(ch)] = p.String()
	}
	b, err := json.Marshal(flat)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeChannelPrices(raw string) (map[ledger.Channel]decimal.Decimal, error) {
	var flat map[string]string
	if err := json.Unmarshal([]byte(raw), &flat); err != nil {
		return nil, err
	}
	prices := make(map[ledger.Channel]decimal.Decimal, len(flat))
	for ch, p := range flat {
		d, err := decimal.NewFromString(p)
		if err != nil {
			return nil, err
		}
		prices[ledger.Channel(ch)] = d
	}
	return prices, nil
}

// =============================================================================
// ENTRY STORE (ledger.EntryStore interface) - Append-only
// =============================================================================

// AppendEntry adds an entry to the stock ledger.
func (s *Store) AppendEntry(ctx context.Context, e ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return appendEntry(ctx, s.db, e)
}

func appendEntry(ctx context.Context, db dbtx, e ledger.Entry) error {
	query := `
		INSERT INTO ledger_entries
		(id, holder_id, date, kind, note, channel, change, new_level, amount, ref_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		e.ID,
		e.HolderID,
		e.Date.UTC().Format(timeLayout),
		string(e.Kind),
		e.Note,
		string(e.Channel),
		e.Change,
		e.NewLevel,
		e.Amount.String(),
		nullString(e.RefID),
		e.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return &ledger.StorageError{Op: "append entry", Err: err}
	}
	return nil
}

// History returns all entries for a holder in insertion order.
func (s *Store) History(ctx context.Context, holderID string) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return entryHistory(ctx, s.db, holderID)
}

func entryHistory(ctx context.Context, db dbtx, holderID string) ([]ledger.Entry, error) {
	return queryEntries(ctx, db,
		entrySelect+" WHERE holder_id = ? ORDER BY rowid ASC", holderID)
}

// EntriesInRange returns every entry dated within the period, across all
// holders, in insertion order.
func (s *Store) EntriesInRange(ctx context.Context, p ledger.Period) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return entriesInRange(ctx, s.db, p)
}

func entriesInRange(ctx context.Context, db dbtx, p ledger.Period) ([]ledger.Entry, error) {
	return queryEntries(ctx, db,
		entrySelect+" WHERE date >= ? AND date <= ? ORDER BY rowid ASC",
		p.Start.UTC().Format(timeLayout), p.End.UTC().Format(timeLayout))
}

const entrySelect = `
	SELECT id, holder_id, date, kind, note, channel, change, new_level, amount, ref_id, created_at
	FROM ledger_entries`

func queryEntries(ctx context.Context, db dbtx, query string, args ...any) ([]ledger.Entry, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &ledger.StorageError{Op: "query entries", Err: err}
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		var (
			e         ledger.Entry
			date      string
			kind      string
			note      sql.NullString
			channel   sql.NullString
			amount    string
			refID     sql.NullString
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.HolderID, &date, &kind, &note, &channel,
			&e.Change, &e.NewLevel, &amount, &refID, &createdAt); err != nil {
			return nil, &ledger.StorageError{Op: "scan entry", Err: err}
		}
		e.Date, _ = time.Parse(time.RFC3339Nano, date)
		e.Kind = ledger.EventKind(kind)
		e.Note = note.String
		e.Channel = ledger.Channel(channel.String)
		e.Amount = mustDecimal(amount)
		e.RefID = refID.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// SALE STORE (ledger.SaleStore interface)
// =============================================================================

// SaveSale persists a sale row.
func (s *Store) SaveSale(ctx context.Context, sale ledger.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return saveSale(ctx, s.db, sale)
}

func saveSale(ctx context.Context, db dbtx, sale ledger.Sale) error {
	query := `
		INSERT INTO sales
		(id, transaction_id, holder_id, product_name, variant_name, sku, channel, quantity,
		 price_at_sale, cost_at_sale, sale_date, payment_method, cancelled_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var cancelledAt any
	if sale.CancelledAt != nil {
		cancelledAt = sale.CancelledAt.UTC().Format(timeLayout)
	}

	_, err := db.ExecContext(ctx, query,
		sale.ID,
		sale.TransactionID,
		sale.HolderID,
		sale.ProductName,
		sale.VariantName,
		sale.SKU,
		string(sale.Channel),
		sale.Quantity,
		sale.PriceAtSale.String(),
		sale.CostAtSale.String(),
		sale.SaleDate.UTC().Format(timeLayout),
		sale.PaymentMethod,
		cancelledAt,
		sale.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return &ledger.StorageError{Op: "save sale", Err: err}
	}
	return nil
}

// GetSale retrieves a sale by ID. Returns (nil, nil) when not found.
func (s *Store) GetSale(ctx context.Context, id string) (*ledger.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return getSale(ctx, s.db, id)
}

func getSale(ctx context.Context, db dbtx, id string) (*ledger.Sale, error) {
	sales, err := querySales(ctx, db, saleSelect+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return nil, nil
	}
	return &sales[0], nil
}

// SalesByTransaction returns every sale line recorded under one checkout.
func (s *Store) SalesByTransaction(ctx context.Context, transactionID string) ([]ledger.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return salesByTransaction(ctx, s.db, transactionID)
}

func salesByTransaction(ctx context.Context, db dbtx, transactionID string) ([]ledger.Sale, error) {
	return querySales(ctx, db,
		saleSelect+" WHERE transaction_id = ? ORDER BY rowid ASC", transactionID)
}

// SalesInRange returns sales dated within the period.
func (s *Store) SalesInRange(ctx context.Context, p ledger.Period) ([]ledger.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return salesInRange(ctx, s.db, p)
}

func salesInRange(ctx context.Context, db dbtx, p ledger.Period) ([]ledger.Sale, error) {
	return querySales(ctx, db,
		saleSelect+" WHERE sale_date >= ? AND sale_date <= ? ORDER BY rowid ASC",
		p.Start.UTC().Format(timeLayout), p.End.UTC().Format(timeLayout))
}

// ListSales returns all sales, newest first.
func (s *Store) ListSales(ctx context.Context) ([]ledger.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return listSales(ctx, s.db)
}

func listSales(ctx context.Context, db dbtx) ([]ledger.Sale, error) {
	return querySales(ctx, db, saleSelect+" ORDER BY sale_date DESC, rowid DESC")
}

// MarkSaleCancelled sets the cancellation flag.
func (s *Store) MarkSaleCancelled(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return markSaleCancelled(ctx, s.db, id, at)
}

func markSaleCancelled(ctx context.Context, db dbtx, id string, at time.Time) error {
	res, err := db.ExecContext(ctx,
		"UPDATE sales SET cancelled_at = ? WHERE id = ?",
		at.UTC().Format(timeLayout), id,
	)
	if err != nil {
		return &ledger.StorageError{Op: "cancel sale", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &ledger.NotFoundError{Kind: "sale", ID: id}
	}
	return nil
}

const saleSelect = `
	SELECT id, transaction_id, holder_id, product_name, variant_name, sku, channel, quantity,
	       price_at_sale, cost_at_sale, sale_date, payment_method, cancelled_at, created_at
	FROM sales`

func querySales(ctx context.Context, db dbtx, query string, args ...any) ([]ledger.Sale, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &ledger.StorageError{Op: "query sales", Err: err}
	}
	defer rows.Close()

	var sales []ledger.Sale
	for rows.Next() {
		var (
			sale          ledger.Sale
			variantName   sql.NullString
			channel       string
			priceAtSale   string
			costAtSale    string
			saleDate      string
			paymentMethod sql.NullString
			cancelledAt   sql.NullString
			createdAt     string
		)
		if err := rows.Scan(&sale.ID, &sale.TransactionID, &sale.HolderID,
			&sale.ProductName, &variantName, &sale.SKU, &channel, &sale.Quantity,
			&priceAtSale, &costAtSale, &saleDate, &paymentMethod, &cancelledAt,
			&createdAt); err != nil {
			return nil, &ledger.StorageError{Op: "scan sale", Err: err}
		}
		sale.VariantName = variantName.String
		sale.Channel = ledger.Channel(channel)
		sale.PriceAtSale = mustDecimal(priceAtSale)
		sale.CostAtSale = mustDecimal(costAtSale)
		sale.SaleDate, _ = time.Parse(time.RFC3339Nano, saleDate)
		sale.PaymentMethod = paymentMethod.String
		sale.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		if cancelledAt.Valid {
			t, _ := time.Parse(time.RFC3339Nano, cancelledAt.String)
			sale.CancelledAt = &t
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

// =============================================================================
// MANUAL ENTRY STORE (ledger.ManualEntryStore interface)
// =============================================================================

// SaveManualEntry persists a manual journal entry.
func (s *Store) SaveManualEntry(ctx context.Context, m ledger.ManualEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return saveManualEntry(ctx, s.db, m)
}

func saveManualEntry(ctx context.Context, db dbtx, m ledger.ManualEntry) error {
	query := `
		INSERT INTO manual_entries
		(id, date, description, amount, debit_account, credit_account, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			description = excluded.description,
			amount = excluded.amount,
			debit_account = excluded.debit_account,
			credit_account = excluded.credit_account
	`

	_, err := db.ExecContext(ctx, query,
		m.ID,
		m.Date.UTC().Format(timeLayout),
		m.Description,
		m.Amount.String(),
		m.DebitAccount,
		m.CreditAccount,
		m.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return &ledger.StorageError{Op: "save manual entry", Err: err}
	}
	return nil
}

// ManualEntriesInRange returns manual entries dated within the period.
func (s *Store) ManualEntriesInRange(ctx context.Context, p ledger.Period) ([]ledger.ManualEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return manualEntriesInRange(ctx, s.db, p)
}

func manualEntriesInRange(ctx context.Context, db dbtx, p ledger.Period) ([]ledger.ManualEntry, error) {
	return queryManualEntries(ctx, db,
		manualSelect+" WHERE date >= ? AND date <= ? ORDER BY date ASC, rowid ASC",
		p.Start.UTC().Format(timeLayout), p.End.UTC().Format(timeLayout))
}

// ListManualEntries returns all manual entries, newest first.
func (s *Store) ListManualEntries(ctx context.Context) ([]ledger.ManualEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return listManualEntries(ctx, s.db)
}

func listManualEntries(ctx context.Context, db dbtx) ([]ledger.ManualEntry, error) {
	return queryManualEntries(ctx, db, manualSelect+" ORDER BY date DESC, rowid DESC")
}

// DeleteManualEntry removes a manual entry.
func (s *Store) DeleteManualEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return deleteManualEntry(ctx, s.db, id)
}

func deleteManualEntry(ctx context.Context, db dbtx, id string) error {
	res, err := db.ExecContext(ctx, "DELETE FROM manual_entries WHERE id = ?", id)
	if err != nil {
		return &ledger.StorageError{Op: "delete manual entry", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &ledger.NotFoundError{Kind: "manual entry", ID: id}
	}
	return nil
}

const manualSelect = `
	SELECT id, date, description, amount, debit_account, credit_account, created_at
	FROM manual_entries`

func queryManualEntries(ctx context.Context, db dbtx, query string, args ...any) ([]ledger.ManualEntry, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &ledger.StorageError{Op: "query manual entries", Err: err}
	}
	defer rows.Close()

	var entries []ledger.ManualEntry
	for rows.Next() {
		var (
			m         ledger.ManualEntry
			date      string
			amount    string
			createdAt string
		)
		if err := rows.Scan(&m.ID, &date, &m.Description, &amount,
			&m.DebitAccount, &m.CreditAccount, &createdAt); err != nil {
			return nil, &ledger.StorageError{Op: "scan manual entry", Err: err}
		}
		m.Date, _ = time.Parse(time.RFC3339Nano, date)
		m.Amount = mustDecimal(amount)
		m.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		entries = append(entries, m)
	}
	return entries, rows.Err()
}

// =============================================================================
// TRANSACTIONAL STORE (ledger.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction. The view passed
// to fn routes everything through the open *sql.Tx so it never touches the
// store mutex, which WithTx already holds.
func (s *Store) WithTx(ctx context.Context, fn func(ledger.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &ledger.StorageError{Op: "begin transaction", Err: err}
	}
	defer sqlTx.Rollback()

	if err := fn(&txView{tx: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return &ledger.StorageError{Op: "commit transaction", Err: err}
	}
	return nil
}

// txView implements ledger.Store over an open transaction.
type txView struct {
	tx *sql.Tx
}

func (v *txView) SaveHolder(ctx context.Context, h ledger.StockHolder) error {
	return saveHolder(ctx, v.tx, h)
}

func (v *txView) UpdateStock(ctx context.Context, holderID string, newLevel int64) error {
	return updateStock(ctx, v.tx, holderID, newLevel)
}

func (v *txView) GetHolder(ctx context.Context, id string) (*ledger.StockHolder, error) {
	return getHolder(ctx, v.tx, id)
}

func (v *txView) GetHolderBySKU(ctx context.Context, sku string) (*ledger.StockHolder, error) {
	return getHolderBySKU(ctx, v.tx, sku)
}

func (v *txView) ListHolders(ctx context.Context) ([]ledger.StockHolder, error) {
	return listHolders(ctx, v.tx)
}

func (v *txView) ListVariants(ctx context.Context, parentID string) ([]ledger.StockHolder, error) {
	return listVariants(ctx, v.tx, parentID)
}

func (v *txView) HasVariants(ctx context.Context, id string) (bool, error) {
	return hasVariants(ctx, v.tx, id)
}

func (v *txView) DeleteHolder(ctx context.Context, id string) error {
	return deleteHolder(ctx, v.tx, id)
}

func (v *txView) AppendEntry(ctx context.Context, e ledger.Entry) error {
	return appendEntry(ctx, v.tx, e)
}

func (v *txView) History(ctx context.Context, holderID string) ([]ledger.Entry, error) {
	return entryHistory(ctx, v.tx, holderID)
}

func (v *txView) EntriesInRange(ctx context.Context, p ledger.Period) ([]ledger.Entry, error) {
	return entriesInRange(ctx, v.tx, p)
}

func (v *txView) SaveSale(ctx context.Context, sale ledger.Sale) error {
	return saveSale(ctx, v.tx, sale)
}

func (v *txView) GetSale(ctx context.Context, id string) (*ledger.Sale, error) {
	return getSale(ctx, v.tx, id)
}

func (v *txView) SalesByTransaction(ctx context.Context, transactionID string) ([]ledger.Sale, error) {
	return salesByTransaction(ctx, v.tx, transactionID)
}

func (v *txView) SalesInRange(ctx context.Context, p ledger.Period) ([]ledger.Sale, error) {
	return salesInRange(ctx, v.tx, p)
}

func (v *txView) ListSales(ctx context.Context) ([]ledger.Sale, error) {
	return listSales(ctx, v.tx)
}

func (v *txView) MarkSaleCancelled(ctx context.Context, id string, at time.Time) error {
	return markSaleCancelled(ctx, v.tx, id, at)
}

func (v *txView) SaveManualEntry(ctx context.Context, m ledger.ManualEntry) error {
	return saveManualEntry(ctx, v.tx, m)
}

func (v *txView) ManualEntriesInRange(ctx context.Context, p ledger.Period) ([]ledger.ManualEntry, error) {
	return manualEntriesInRange(ctx, v.tx, p)
}

func (v *txView) ListManualEntries(ctx context.Context) ([]ledger.ManualEntry, error) {
	return listManualEntries(ctx, v.tx)
}

func (v *txView) DeleteManualEntry(ctx context.Context, id string) error {
	return deleteManualEntry(ctx, v.tx, id)
}

var (
	_ ledger.TxStore = (*Store)(nil)
	_ ledger.Store   = (*txView)(nil)
)

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"ledger_entries", "sales", "manual_entries", "holders"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return &ledger.StorageError{Op: "reset " + table, Err: err}
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
