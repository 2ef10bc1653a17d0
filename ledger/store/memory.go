// Package store provides an in-memory ledger.Store implementation.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/inventory-engine/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements ledger.TxStore. WithTx takes a snapshot of all state and
// restores it when the callback fails, which gives the same all-or-nothing
// behavior as a database transaction.
type Memory struct {
	mu      sync.RWMutex
	holders map[string]ledger.StockHolder
	entries []ledger.Entry
	sales   map[string]ledger.Sale
	manuals map[string]ledger.ManualEntry

	// Fault injection for atomicity tests. When set, the matching operation
	// fails with a StorageError wrapping this error.
	FailAppendEntry error
	FailSaveSale    error
}

func NewMemory() *Memory {
	return &Memory{
		holders: make(map[string]ledger.StockHolder),
		sales:   make(map[string]ledger.Sale),
		manuals: make(map[string]ledger.ManualEntry),
	}
}

// Reset clears all data (for testing/demo).
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.holders = make(map[string]ledger.StockHolder)
	m.entries = nil
	m.sales = make(map[string]ledger.Sale)
	m.manuals = make(map[string]ledger.ManualEntry)
	return nil
}

func copyHolder(h ledger.StockHolder) ledger.StockHolder {
	out := h
	if h.ChannelPrices != nil {
		out.ChannelPrices = make(map[ledger.Channel]decimal.Decimal, len(h.ChannelPrices))
		for c, p := range h.ChannelPrices {
			out.ChannelPrices[c] = p
		}
	}
	return out
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

type snapshot struct {
	holders map[string]ledger.StockHolder
	entries []ledger.Entry
	sales   map[string]ledger.Sale
	manuals map[string]ledger.ManualEntry
}

func (m *Memory) snapshot() snapshot {
	s := snapshot{
		holders: make(map[string]ledger.StockHolder, len(m.holders)),
		entries: append([]ledger.Entry(nil), m.entries...),
		sales:   make(map[string]ledger.Sale, len(m.sales)),
		manuals: make(map[string]ledger.ManualEntry, len(m.manuals)),
	}
	for k, v := range m.holders {
		s.holders[k] = copyHolder(v)
	}
	for k, v := range m.sales {
		s.sales[k] = v
	}
	for k, v := range m.manuals {
		s.manuals[k] = v
	}
	return s
}

func (m *Memory) restore(s snapshot) {
	m.holders = s.holders
	m.entries = s.entries
	m.sales = s.sales
	m.manuals = s.manuals
}

// WithTx serializes against all other operations and rolls the whole store
// back when fn fails.
func (m *Memory) WithTx(_ context.Context, fn func(ledger.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := m.snapshot()
	if err := fn(&memTx{m: m}); err != nil {
		m.restore(saved)
		return err
	}
	return nil
}

// =============================================================================
// HOLDERS
// =============================================================================

func (m *Memory) SaveHolder(_ context.Context, h ledger.StockHolder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveHolderLocked(h)
}

func (m *Memory) saveHolderLocked(h ledger.StockHolder) error {
	m.holders[h.ID] = copyHolder(h)
	return nil
}

func (m *Memory) UpdateStock(_ context.Context, holderID string, newLevel int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateStockLocked(holderID, newLevel)
}

func (m *Memory) updateStockLocked(holderID string, newLevel int64) error {
	h, ok := m.holders[holderID]
	if !ok {
		return &ledger.NotFoundError{Kind: "holder", ID: holderID}
	}
	h.CurrentStock = newLevel
	h.UpdatedAt = time.Now().UTC()
	m.holders[holderID] = h
	return nil
}

func (m *Memory) GetHolder(_ context.Context, id string) (*ledger.StockHolder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getHolderLocked(id)
}

func (m *Memory) getHolderLocked(id string) (*ledger.StockHolder, error) {
	h, ok := m.holders[id]
	if !ok {
		return nil, nil
	}
	out := copyHolder(h)
	return &out, nil
}

func (m *Memory) GetHolderBySKU(_ context.Context, sku string) (*ledger.StockHolder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getHolderBySKULocked(sku)
}

func (m *Memory) getHolderBySKULocked(sku string) (*ledger.StockHolder, error) {
	for _, h := range m.holders {
		if h.SKU != "" && strings.EqualFold(h.SKU, sku) {
			out := copyHolder(h)
			return &out, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListHolders(_ context.Context) ([]ledger.StockHolder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listHoldersLocked()
}

func (m *Memory) listHoldersLocked() ([]ledger.StockHolder, error) {
	out := make([]ledger.StockHolder, 0, len(m.holders))
	for _, h := range m.holders {
		out = append(out, copyHolder(h))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) ListVariants(_ context.Context, parentID string) ([]ledger.StockHolder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listVariantsLocked(parentID)
}

func (m *Memory) listVariantsLocked(parentID string) ([]ledger.StockHolder, error) {
	var out []ledger.StockHolder
	for _, h := range m.holders {
		if h.ParentID == parentID {
			out = append(out, copyHolder(h))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) HasVariants(_ context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hasVariantsLocked(id)
}

func (m *Memory) hasVariantsLocked(id string) (bool, error) {
	for _, h := range m.holders {
		if h.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) DeleteHolder(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteHolderLocked(id)
}

func (m *Memory) deleteHolderLocked(id string) error {
	if _, ok := m.holders[id]; !ok {
		return &ledger.NotFoundError{Kind: "holder", ID: id}
	}

	removed := map[string]bool{id: true}
	for hid, h := range m.holders {
		if h.ParentID == id {
			removed[hid] = true
		}
	}
	for hid := range removed {
		delete(m.holders, hid)
	}

	// Cascade: the ledger of a deleted holder goes with it.
	kept := m.entries[:0]
	for _, e := range m.entries {
		if !removed[e.HolderID] {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

// =============================================================================
// LEDGER ENTRIES - Append-only
// =============================================================================

func (m *Memory) AppendEntry(_ context.Context, e ledger.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendEntryLocked(e)
}

func (m *Memory) appendEntryLocked(e ledger.Entry) error {
	if m.FailAppendEntry != nil {
		return &ledger.StorageError{Op: "append entry", Err: m.FailAppendEntry}
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *Memory) History(_ context.Context, holderID string) ([]ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.historyLocked(holderID)
}

func (m *Memory) historyLocked(holderID string) ([]ledger.Entry, error) {
	var out []ledger.Entry
	for _, e := range m.entries {
		if e.HolderID == holderID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) EntriesInRange(_ context.Context, p ledger.Period) ([]ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entriesInRangeLocked(p)
}

func (m *Memory) entriesInRangeLocked(p ledger.Period) ([]ledger.Entry, error) {
	var out []ledger.Entry
	for _, e := range m.entries {
		if p.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out, nil
}

// =============================================================================
// SALES
// =============================================================================

func (m *Memory) SaveSale(_ context.Context, s ledger.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveSaleLocked(s)
}

func (m *Memory) saveSaleLocked(s ledger.Sale) error {
	if m.FailSaveSale != nil {
		return &ledger.StorageError{Op: "save sale", Err: m.FailSaveSale}
	}
	m.sales[s.ID] = s
	return nil
}

func (m *Memory) GetSale(_ context.Context, id string) (*ledger.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getSaleLocked(id)
}

func (m *Memory) getSaleLocked(id string) (*ledger.Sale, error) {
	s, ok := m.sales[id]
	if !ok {
		return nil, nil
	}
	out := s
	return &out, nil
}

func (m *Memory) SalesByTransaction(_ context.Context, transactionID string) ([]ledger.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.salesByTransactionLocked(transactionID)
}

func (m *Memory) salesByTransactionLocked(transactionID string) ([]ledger.Sale, error) {
	var out []ledger.Sale
	for _, s := range m.sales {
		if s.TransactionID == transactionID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) SalesInRange(_ context.Context, p ledger.Period) ([]ledger.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.salesInRangeLocked(p)
}

func (m *Memory) salesInRangeLocked(p ledger.Period) ([]ledger.Sale, error) {
	var out []ledger.Sale
	for _, s := range m.sales {
		if p.Contains(s.SaleDate) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SaleDate.Before(out[j].SaleDate) })
	return out, nil
}

func (m *Memory) ListSales(_ context.Context) ([]ledger.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listSalesLocked()
}

func (m *Memory) listSalesLocked() ([]ledger.Sale, error) {
	out := make([]ledger.Sale, 0, len(m.sales))
	for _, s := range m.sales {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SaleDate.Before(out[j].SaleDate) })
	return out, nil
}

func (m *Memory) MarkSaleCancelled(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.markSaleCancelledLocked(id, at)
}

func (m *Memory) markSaleCancelledLocked(id string, at time.Time) error {
	s, ok := m.sales[id]
	if !ok {
		return &ledger.NotFoundError{Kind: "sale", ID: id}
	}
	s.CancelledAt = &at
	m.sales[id] = s
	return nil
}

// =============================================================================
// MANUAL ENTRIES
// =============================================================================

func (m *Memory) SaveManualEntry(_ context.Context, entry ledger.ManualEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveManualEntryLocked(entry)
}

func (m *Memory) saveManualEntryLocked(entry ledger.ManualEntry) error {
	m.manuals[entry.ID] = entry
	return nil
}

func (m *Memory) ManualEntriesInRange(_ context.Context, p ledger.Period) ([]ledger.ManualEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.manualEntriesInRangeLocked(p)
}

func (m *Memory) manualEntriesInRangeLocked(p ledger.Period) ([]ledger.ManualEntry, error) {
	var out []ledger.ManualEntry
	for _, e := range m.manuals {
		if p.Contains(e.Date) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) ListManualEntries(_ context.Context) ([]ledger.ManualEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listManualEntriesLocked()
}

func (m *Memory) listManualEntriesLocked() ([]ledger.ManualEntry, error) {
	out := make([]ledger.ManualEntry, 0, len(m.manuals))
	for _, e := range m.manuals {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) DeleteManualEntry(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteManualEntryLocked(id)
}

func (m *Memory) deleteManualEntryLocked(id string) error {
	if _, ok := m.manuals[id]; !ok {
		return &ledger.NotFoundError{Kind: "manual entry", ID: id}
	}
	delete(m.manuals, id)
	return nil
}

// =============================================================================
// TRANSACTION VIEW - Unlocked operations inside WithTx
// =============================================================================

type memTx struct {
	m *Memory
}

func (t *memTx) SaveHolder(_ context.Context, h ledger.StockHolder) error {
	return t.m.saveHolderLocked(h)
}
func (t *memTx) UpdateStock(_ context.Context, holderID string, newLevel int64) error {
	return t.m.updateStockLocked(holderID, newLevel)
}
func (t *memTx) GetHolder(_ context.Context, id string) (*ledger.StockHolder, error) {
	return t.m.getHolderLocked(id)
}
func (t *memTx) GetHolderBySKU(_ context.Context, sku string) (*ledger.StockHolder, error) {
	return t.m.getHolderBySKULocked(sku)
}
func (t *memTx) ListHolders(_ context.Context) ([]ledger.StockHolder, error) {
	return t.m.listHoldersLocked()
}
func (t *memTx) ListVariants(_ context.Context, parentID string) ([]ledger.StockHolder, error) {
	return t.m.listVariantsLocked(parentID)
}
func (t *memTx) HasVariants(_ context.Context, id string) (bool, error) {
	return t.m.hasVariantsLocked(id)
}
func (t *memTx) DeleteHolder(_ context.Context, id string) error {
	return t.m.deleteHolderLocked(id)
}
func (t *memTx) AppendEntry(_ context.Context, e ledger.Entry) error {
	return t.m.appendEntryLocked(e)
}
func (t *memTx) History(_ context.Context, holderID string) ([]ledger.Entry, error) {
	return t.m.historyLocked(holderID)
}
func (t *memTx) EntriesInRange(_ context.Context, p ledger.Period) ([]ledger.Entry, error) {
	return t.m.entriesInRangeLocked(p)
}
func (t *memTx) SaveSale(_ context.Context, s ledger.Sale) error {
	return t.m.saveSaleLocked(s)
}
func (t *memTx) GetSale(_ context.Context, id string) (*ledger.Sale, error) {
	return t.m.getSaleLocked(id)
}
func (t *memTx) SalesByTransaction(_ context.Context, transactionID string) ([]ledger.Sale, error) {
	return t.m.salesByTransactionLocked(transactionID)
}
func (t *memTx) SalesInRange(_ context.Context, p ledger.Period) ([]ledger.Sale, error) {
	return t.m.salesInRangeLocked(p)
}
func (t *memTx) ListSales(_ context.Context) ([]ledger.Sale, error) {
	return t.m.listSalesLocked()
}
func (t *memTx) MarkSaleCancelled(_ context.Context, id string, at time.Time) error {
	return t.m.markSaleCancelledLocked(id, at)
}
func (t *memTx) SaveManualEntry(_ context.Context, entry ledger.ManualEntry) error {
	return t.m.saveManualEntryLocked(entry)
}
func (t *memTx) ManualEntriesInRange(_ context.Context, p ledger.Period) ([]ledger.ManualEntry, error) {
	return t.m.manualEntriesInRangeLocked(p)
}
func (t *memTx) ListManualEntries(_ context.Context) ([]ledger.ManualEntry, error) {
	return t.m.listManualEntriesLocked()
}
func (t *memTx) DeleteManualEntry(_ context.Context, id string) error {
	return t.m.deleteManualEntryLocked(id)
}

var _ ledger.TxStore = (*Memory)(nil)
var _ ledger.Store = (*memTx)(nil)
