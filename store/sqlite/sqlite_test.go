package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/inventory-engine/ledger"
	"github.com/warp/inventory-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testHolder(id, sku string) ledger.StockHolder {
	now := time.Now().UTC()
	return ledger.StockHolder{
		ID:        id,
		Name:      "Hijab Voal Premium",
		SKU:       sku,
		CostBasis: dec("28000"),
		SellPrice: dec("55000"),
		ChannelPrices: map[ledger.Channel]decimal.Decimal{
			ledger.ChannelShopee: dec("62000"),
			ledger.ChannelTikTok: dec("60000"),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func testEntry(id, holderID string, change, newLevel int64, at time.Time) ledger.Entry {
	return ledger.Entry{
		ID:        id,
		HolderID:  holderID,
		Date:      at,
		Kind:      ledger.KindStockIn,
		Note:      "Stock In",
		Change:    change,
		NewLevel:  newLevel,
		CreatedAt: at,
	}
}

// =============================================================================
// HOLDER TESTS
// =============================================================================

func TestSQLiteStore_HolderRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	h := testHolder("h1", "HJB-VOAL-01")
	require.NoError(t, store.SaveHolder(ctx, h))

	got, err := store.GetHolder(ctx, "h1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, h.Name, got.Name)
	assert.Equal(t, h.SKU, got.SKU)
	assert.True(t, got.CostBasis.Equal(dec("28000")))
	assert.True(t, got.SellPrice.Equal(dec("55000")))
	require.Len(t, got.ChannelPrices, 2)
	assert.True(t, got.ChannelPrices[ledger.ChannelShopee].Equal(dec("62000")))
}

func TestSQLiteStore_GetHolderBySKU_CaseInsensitive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveHolder(ctx, testHolder("h1", "HJB-VOAL-01")))

	got, err := store.GetHolderBySKU(ctx, "hjb-voal-01")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "h1", got.ID)
}

func TestSQLiteStore_GetHolder_MissingReturnsNil(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetHolder(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_UpdateStock_MissingHolder(t *testing.T) {
	store := newTestStore(t)

	err := store.UpdateStock(context.Background(), "nope", 5)
	assert.ErrorIs(t, err, ledger.ErrHolderNotFound)
}

func TestSQLiteStore_ListVariants(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	parent := testHolder("p1", "")
	parent.ChannelPrices = nil
	require.NoError(t, store.SaveHolder(ctx, parent))

	variant := testHolder("v1", "HJB-S")
	variant.ParentID = "p1"
	require.NoError(t, store.SaveHolder(ctx, variant))

	variants, err := store.ListVariants(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, "v1", variants[0].ID)

	has, err := store.HasVariants(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestSQLiteStore_DeleteHolder_CascadesVariantsAndEntries(t *testing.T) {
	// GIVEN: A product with a variant and that variant's ledger entries
	// WHEN: Deleting the product
	// THEN: The variant and its entries are gone with it

	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	parent := testHolder("p1", "")
	parent.ChannelPrices = nil
	require.NoError(t, store.SaveHolder(ctx, parent))

	variant := testHolder("v1", "HJB-S")
	variant.ParentID = "p1"
	require.NoError(t, store.SaveHolder(ctx, variant))
	require.NoError(t, store.AppendEntry(ctx, testEntry("e1", "v1", 10, 10, now)))

	require.NoError(t, store.DeleteHolder(ctx, "p1"))

	gone, err := store.GetHolder(ctx, "v1")
	require.NoError(t, err)
	assert.Nil(t, gone)

	entries, err := store.History(ctx, "v1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// =============================================================================
// LEDGER ENTRY TESTS
// =============================================================================

func TestSQLiteStore_History_InsertionOrder(t *testing.T) {
	// GIVEN: Three entries appended with identical timestamps
	// WHEN: Reading history
	// THEN: Insertion order is preserved, so the snapshot chain checks out

	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.SaveHolder(ctx, testHolder("h1", "HJB-01")))
	require.NoError(t, store.AppendEntry(ctx, testEntry("e1", "h1", 10, 10, now)))
	require.NoError(t, store.AppendEntry(ctx, testEntry("e2", "h1", -3, 7, now)))
	require.NoError(t, store.AppendEntry(ctx, testEntry("e3", "h1", 5, 12, now)))

	entries, err := store.History(ctx, "h1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{entries[0].ID, entries[1].ID, entries[2].ID}, []string{"e1", "e2", "e3"})
	assert.NoError(t, ledger.CheckSequence(entries))
}

func TestSQLiteStore_EntriesInRange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveHolder(ctx, testHolder("h1", "HJB-01")))
	inside := time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)
	outside := time.Date(2026, time.April, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.AppendEntry(ctx, testEntry("e1", "h1", 10, 10, inside)))
	require.NoError(t, store.AppendEntry(ctx, testEntry("e2", "h1", 5, 15, outside)))

	march := ledger.NewPeriod(
		time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC),
	)
	entries, err := store.EntriesInRange(ctx, march)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "e1", entries[0].ID)
}

func TestSQLiteStore_EntriesInRange_InclusiveBoundaries(t *testing.T) {
	// GIVEN: Entries on the period's very first and very last second, one with
	//        a fractional timestamp and one without
	// WHEN: Filtering by a March period
	// THEN: Both are included; stored timestamps must sort in time order even
	//       when the fractional part is absent or short

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveHolder(ctx, testHolder("h1", "HJB-01")))
	firstSecond := time.Date(2026, time.March, 1, 0, 0, 0, 500_000_000, time.UTC)
	lastSecond := time.Date(2026, time.March, 31, 23, 59, 59, 0, time.UTC)
	require.NoError(t, store.AppendEntry(ctx, testEntry("e1", "h1", 10, 10, firstSecond)))
	require.NoError(t, store.AppendEntry(ctx, testEntry("e2", "h1", 5, 15, lastSecond)))

	march := ledger.NewPeriod(
		time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC),
	)
	require.True(t, march.Contains(firstSecond))
	require.True(t, march.Contains(lastSecond))

	entries, err := store.EntriesInRange(ctx, march)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestSQLiteStore_SalesInRange_InclusiveBoundaries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.SaveHolder(ctx, testHolder("h1", "HJB-01")))
	sale := ledger.Sale{
		ID:            "s1",
		TransactionID: "tx1",
		HolderID:      "h1",
		ProductName:   "Hijab Voal Premium",
		SKU:           "HJB-01",
		Channel:       ledger.ChannelPOS,
		Quantity:      1,
		PriceAtSale:   dec("55000"),
		CostAtSale:    dec("28000"),
		SaleDate:      time.Date(2026, time.March, 1, 0, 0, 0, 500_000_000, time.UTC),
		PaymentMethod: "cash",
		CreatedAt:     now,
	}
	require.NoError(t, store.SaveSale(ctx, sale))

	march := ledger.NewPeriod(
		time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC),
	)
	sales, err := store.SalesInRange(ctx, march)
	require.NoError(t, err)
	require.Len(t, sales, 1)
}

func TestSQLiteStore_Entry_AmountRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.SaveHolder(ctx, testHolder("h1", "HJB-01")))
	e := testEntry("e1", "h1", 0, 10, now)
	e.Kind = ledger.KindCapitalAdjustment
	e.Amount = dec("60000")
	require.NoError(t, store.AppendEntry(ctx, e))

	entries, err := store.History(ctx, "h1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ledger.KindCapitalAdjustment, entries[0].Kind)
	assert.True(t, entries[0].Amount.Equal(dec("60000")))
}

// =============================================================================
// SALE TESTS
// =============================================================================

func TestSQLiteStore_SaleRoundTripAndCancelFlag(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.SaveHolder(ctx, testHolder("h1", "HJB-01")))
	sale := ledger.Sale{
		ID:            "s1",
		TransactionID: "tx1",
		HolderID:      "h1",
		ProductName:   "Hijab Voal Premium",
		SKU:           "HJB-01",
		Channel:       ledger.ChannelShopee,
		Quantity:      3,
		PriceAtSale:   dec("62000"),
		CostAtSale:    dec("28000"),
		SaleDate:      now,
		PaymentMethod: "transfer",
		CreatedAt:     now,
	}
	require.NoError(t, store.SaveSale(ctx, sale))

	got, err := store.GetSale(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.PriceAtSale.Equal(dec("62000")))
	assert.False(t, got.Cancelled())

	require.NoError(t, store.MarkSaleCancelled(ctx, "s1", now))
	got, err = store.GetSale(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, got.Cancelled())

	byTx, err := store.SalesByTransaction(ctx, "tx1")
	require.NoError(t, err)
	require.Len(t, byTx, 1)
}

func TestSQLiteStore_MarkSaleCancelled_Missing(t *testing.T) {
	store := newTestStore(t)

	err := store.MarkSaleCancelled(context.Background(), "nope", time.Now().UTC())
	assert.ErrorIs(t, err, ledger.ErrSaleNotFound)
}

// =============================================================================
// MANUAL ENTRY TESTS
// =============================================================================

func TestSQLiteStore_ManualEntries_RangeAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	m := ledger.ManualEntry{
		ID:            "m1",
		Date:          time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
		Description:   "Biaya packing dan ongkir",
		Amount:        dec("75000"),
		DebitAccount:  "Biaya Operasional",
		CreditAccount: "Cash",
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, store.SaveManualEntry(ctx, m))

	march := ledger.NewPeriod(
		time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC),
	)
	got, err := store.ManualEntriesInRange(ctx, march)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Amount.Equal(dec("75000")))
	assert.Equal(t, "Biaya Operasional", got[0].DebitAccount)

	require.NoError(t, store.DeleteManualEntry(ctx, "m1"))
	err = store.DeleteManualEntry(ctx, "m1")
	assert.Error(t, err)
}

// =============================================================================
// TRANSACTION TESTS
// =============================================================================

func TestSQLiteStore_WithTx_RollbackOnError(t *testing.T) {
	// GIVEN: A transaction that writes a holder then fails
	// WHEN: The callback returns an error
	// THEN: Nothing is visible afterwards

	store := newTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(s ledger.Store) error {
		if err := s.SaveHolder(ctx, testHolder("h1", "HJB-01")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.GetHolder(ctx, "h1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_WithTx_ReadsSeeUncommittedWrites(t *testing.T) {
	// The tx view must see its own writes; the mutation path reads the
	// holder back right after updating it.

	store := newTestStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(s ledger.Store) error {
		if err := s.SaveHolder(ctx, testHolder("h1", "HJB-01")); err != nil {
			return err
		}
		h, err := s.GetHolder(ctx, "h1")
		if err != nil {
			return err
		}
		if h == nil {
			return errors.New("tx view cannot see its own write")
		}
		return s.UpdateStock(ctx, "h1", 40)
	})
	require.NoError(t, err)

	got, err := store.GetHolder(ctx, "h1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(40), got.CurrentStock)
}

// =============================================================================
// DOMAIN FLOW TESTS - Full engine on SQLite
// =============================================================================

func TestSQLiteStore_FullSaleFlow(t *testing.T) {
	// GIVEN: A catalog, a recorder and a SQLite store
	// WHEN: Creating a product, selling and cancelling
	// THEN: The same invariants hold as on the in-memory store

	store := newTestStore(t)
	catalog := ledger.NewCatalog(store)
	recorder := ledger.NewRecorder(store)
	ctx := context.Background()

	h, err := catalog.CreateProduct(ctx, ledger.HolderParams{
		Name:         "Hijab Voal Premium",
		SKU:          "HJB-VOAL-01",
		CostBasis:    dec("28000"),
		SellPrice:    dec("55000"),
		InitialStock: 40,
	}, nil)
	require.NoError(t, err)

	sale, err := recorder.RecordSale(ctx, "HJB-VOAL-01", ledger.ChannelPOS, 3, ledger.SaleContext{})
	require.NoError(t, err)

	require.NoError(t, recorder.CancelSale(ctx, sale.ID))
	err = recorder.CancelSale(ctx, sale.ID)
	assert.ErrorIs(t, err, ledger.ErrAlreadyCancelled)

	got, err := store.GetHolder(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), got.CurrentStock)

	entries, err := store.History(ctx, h.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.NoError(t, ledger.CheckSequence(entries))
}

func TestSQLiteStore_Reset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveHolder(ctx, testHolder("h1", "HJB-01")))
	require.NoError(t, store.AppendEntry(ctx, testEntry("e1", "h1", 10, 10, time.Now().UTC())))

	require.NoError(t, store.Reset(ctx))

	holders, err := store.ListHolders(ctx)
	require.NoError(t, err)
	assert.Empty(t, holders)
}
