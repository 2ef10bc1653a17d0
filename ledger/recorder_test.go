package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/inventory-engine/ledger"
)

// =============================================================================
// SALE RECORDING TESTS
// =============================================================================

func TestRecorder_RecordSale_FreezesPriceAndCost(t *testing.T) {
	// GIVEN: A holder selling at 100000 with cost basis 50000
	// WHEN: Selling 3 units, then raising the price to 120000
	// THEN: The recorded sale keeps the price and cost it was sold at

	store := newTestStore(t)
	recorder := ledger.NewRecorder(store)
	catalog := ledger.NewCatalog(store)
	ctx := context.Background()

	h := seedHolder(t, store, "Gamis Basic", "GMS-01", "50000", "100000", 10)

	sale, err := recorder.RecordSale(ctx, "GMS-01", ledger.ChannelPOS, 3, ledger.SaleContext{})
	require.NoError(t, err)
	assert.True(t, sale.PriceAtSale.Equal(dec("100000")))
	assert.True(t, sale.CostAtSale.Equal(dec("50000")))
	assert.True(t, sale.Revenue().Equal(dec("300000")))

	_, err = catalog.UpdateHolder(ctx, h.ID, ledger.HolderParams{
		Name:      "Gamis Basic",
		SKU:       "GMS-01",
		CostBasis: dec("55000"),
		SellPrice: dec("120000"),
	})
	require.NoError(t, err)

	got, err := store.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, got.PriceAtSale.Equal(dec("100000")), "price must stay frozen after catalog edits")
	assert.True(t, got.CostAtSale.Equal(dec("50000")), "cost must stay frozen after catalog edits")
}

func TestRecorder_RecordSale_DecrementsStockThroughLedger(t *testing.T) {
	store := newTestStore(t)
	recorder := ledger.NewRecorder(store)
	ctx := context.Background()

	h := seedHolder(t, store, "Gamis Basic", "GMS-01", "50000", "100000", 10)

	sale, err := recorder.RecordSale(ctx, "GMS-01", ledger.ChannelPOS, 3, ledger.SaleContext{})
	require.NoError(t, err)

	got, err := store.GetHolder(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.CurrentStock)

	entries, err := store.History(ctx, h.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ledger.KindSale, entries[1].Kind)
	assert.Equal(t, int64(-3), entries[1].Change)
	assert.Equal(t, sale.ID, entries[1].RefID)
	assert.NoError(t, ledger.CheckSequence(entries))
}

func TestRecorder_RecordSale_ChannelPriceOverride(t *testing.T) {
	// GIVEN: A holder with a Shopee-specific price
	// WHEN: Selling on Shopee and on POS
	// THEN: Shopee uses the override, POS falls back to the base price

	store := newTestStore(t)
	recorder := ledger.NewRecorder(store)
	catalog := ledger.NewCatalog(store)
	ctx := context.Background()

	_, err := catalog.CreateProduct(ctx, ledger.HolderParams{
		Name:      "Hijab Voal Premium",
		SKU:       "HJB-VOAL-01",
		CostBasis: dec("28000"),
		SellPrice: dec("55000"),
		ChannelPrices: map[ledger.Channel]decimal.Decimal{
			ledger.ChannelShopee: dec("62000"),
		},
		InitialStock: 10,
	}, nil)
	require.NoError(t, err)

	shopeeSale, err := recorder.RecordSale(ctx, "HJB-VOAL-01", ledger.ChannelShopee, 1, ledger.SaleContext{})
	require.NoError(t, err)
	assert.True(t, shopeeSale.PriceAtSale.Equal(dec("62000")))

	posSale, err := recorder.RecordSale(ctx, "HJB-VOAL-01", ledger.ChannelPOS, 1, ledger.SaleContext{})
	require.NoError(t, err)
	assert.True(t, posSale.PriceAtSale.Equal(dec("55000")))
}

func TestRecorder_RecordSale_VariantCarriesProductName(t *testing.T) {
	// GIVEN: A product with a variant
	// WHEN: Selling the variant
	// THEN: The sale records both the product and the variant name

	store := newTestStore(t)
	recorder := ledger.NewRecorder(store)
	catalog := ledger.NewCatalog(store)
	ctx := context.Background()

	_, err := catalog.CreateProduct(ctx, ledger.HolderParams{Name: "Gamis Basic"}, []ledger.HolderParams{
		{Name: "Size M", SKU: "GMS-M", CostBasis: dec("85000"), SellPrice: dec("155000"), InitialStock: 5},
	})
	require.NoError(t, err)

	sale, err := recorder.RecordSale(ctx, "GMS-M", ledger.ChannelPOS, 1, ledger.SaleContext{})
	require.NoError(t, err)
	assert.Equal(t, "Gamis Basic", sale.ProductName)
	assert.Equal(t, "Size M", sale.VariantName)
}

func TestRecorder_RecordSale_InsufficientStock(t *testing.T) {
	// GIVEN: A holder with 2 units
	// WHEN: Selling 3
	// THEN: Rejected; stock and sales are untouched

	store := newTestStore(t)
	recorder := ledger.NewRecorder(store)
	ctx := context.Background()

	h := seedHolder(t, store, "Gamis Basic", "GMS-01", "50000", "100000", 2)

	_, err := recorder.RecordSale(ctx, "GMS-01", ledger.ChannelPOS, 3, ledger.SaleContext{})
	assert.ErrorIs(t, err, ledger.ErrValidation)

	got, err := store.GetHolder(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.CurrentStock)

	sales, err := store.ListSales(ctx)
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestRecorder_RecordSale_UnknownSKU(t *testing.T) {
	store := newTestStore(t)
	recorder := ledger.NewRecorder(store)

	_, err := recorder.RecordSale(context.Background(), "NOPE-01", ledger.ChannelPOS, 1, ledger.SaleContext{})
	assert.ErrorIs(t, err, ledger.ErrProductNotFound)
}

func TestRecorder_RecordSale_InvalidChannel(t *testing.T) {
	store := newTestStore(t)
	recorder := ledger.NewRecorder(store)
	seedHolder(t, store, "Gamis Basic", "GMS-01", "50000", "100000", 10)

	_, err := recorder.RecordSale(context.Background(), "GMS-01", ledger.Channel("ebay"), 1, ledger.SaleContext{})
	assert.ErrorIs(t, err, ledger.ErrValidation)
}

// =============================================================================
// CHECKOUT TESTS
// =============================================================================

func TestRecorder_Checkout_SharesTransactionID(t *testing.T) {
	store := newTestStore(t)
	recorder := ledger.NewRecorder(store)
	ctx := context.Background()

	seedHolder(t, store, "Gamis Basic", "GMS-01", "50000", "100000", 10)
	seedHolder(t, store, "Hijab Voal", "HJB-01", "28000", "55000", 10)

	sales, err := recorder.RecordCheckout(ctx, []ledger.SaleLine{
		{SKU: "GMS-01", Quantity: 2},
		{SKU: "HJB-01", Quantity: 3},
	}, ledger.ChannelPOS, ledger.SaleContext{PaymentMethod: "cash"})
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.NotEmpty(t, sales[0].TransactionID)
	assert.Equal(t, sales[0].TransactionID, sales[1].TransactionID)
}

func TestRecorder_Checkout_Atomic_FailedLineRollsBackAll(t *testing.T) {
	// GIVEN: A two-line checkout where the second line exceeds stock
	// WHEN: Recording the checkout
	// THEN: No line commits; the first holder's stock is untouched

	store := newTestStore(t)
	recorder := ledger.NewRecorder(store)
	ctx := context.Background()

	first := seedHolder(t, store, "Gamis Basic", "GMS-01", "50000", "100000", 10)
	seedHolder(t, store, "Hijab Voal", "HJB-01", "28000", "55000", 1)

	_, err := recorder.RecordCheckout(ctx, []ledger.SaleLine{
		{SKU: "GMS-01", Quantity: 2},
		{SKU: "HJB-01", Quantity: 5},
	}, ledger.ChannelPOS, ledger.SaleContext{})
	assert.ErrorIs(t, err, ledger.ErrValidation)

	got, err := store.GetHolder(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.CurrentStock, "first line must roll back with the second")

	sales, err := store.ListSales(ctx)
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestRecorder_Checkout_SaveFailureRollsBackStock(t *testing.T) {
	store := newTestStore(t)
	recorder := ledger.NewRecorder(store)
	ctx := context.Background()

	h := seedHolder(t, store, "Gamis Basic", "GMS-01", "50000", "100000", 10)

	store.FailSaveSale = errors.New("disk full")
	_, err := recorder.RecordSale(ctx, "GMS-01", ledger.ChannelPOS, 3, ledger.SaleContext{})
	assert.ErrorIs(t, err, ledger.ErrStorageFailure)

	store.FailSaveSale = nil
	got, err := store.GetHolder(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.CurrentStock)

	entries, err := store.History(ctx, h.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "the sale's ledger entry must roll back too")
}

func TestRecorder_Checkout_NoLines(t *testing.T) {
	store := newTestStore(t)
	recorder := ledger.NewRecorder(store)

	_, err := recorder.RecordCheckout(context.Background(), nil, ledger.ChannelPOS, ledger.SaleContext{})
	assert.ErrorIs(t, err, ledger.ErrValidation)
}

// =============================================================================
// CANCELLATION TESTS
// =============================================================================

func TestRecorder_CancelSale_RestoresStockAndFlags(t *testing.T) {
	// GIVEN: A recorded sale of 3 units
	// WHEN: Cancelling it
	// THEN: Stock returns via a compensating entry and the sale is flagged

	store := newTestStore(t)
	recorder := ledger.NewRecorder(store)
	ctx := context.Background()

	h := seedHolder(t, store, "Gamis Basic", "GMS-01", "50000", "100000", 10)
	sale, err := recorder.RecordSale(ctx, "GMS-01", ledger.ChannelPOS, 3, ledger.SaleContext{})
	require.NoError(t, err)

	require.NoError(t, recorder.CancelSale(ctx, sale.ID))

	got, err := store.GetHolder(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.CurrentStock)

	entries, err := store.History(ctx, h.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, ledger.KindCancelledSale, entries[2].Kind)
	assert.Equal(t, int64(3), entries[2].Change)
	assert.Equal(t, sale.ID, entries[2].RefID)
	assert.NoError(t, ledger.CheckSequence(entries))

	cancelled, err := store.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, cancelled.Cancelled())
}

func TestRecorder_CancelSale_Twice_Conflict(t *testing.T) {
	// GIVEN: An already-cancelled sale
	// WHEN: Cancelling it again
	// THEN: AlreadyCancelled; stock is credited exactly once

	store := newTestStore(t)
	recorder := ledger.NewRecorder(store)
	ctx := context.Background()

	h := seedHolder(t, store, "Gamis Basic", "GMS-01", "50000", "100000", 10)
	sale, err := recorder.RecordSale(ctx, "GMS-01", ledger.ChannelPOS, 3, ledger.SaleContext{})
	require.NoError(t, err)

	require.NoError(t, recorder.CancelSale(ctx, sale.ID))
	err = recorder.CancelSale(ctx, sale.ID)
	assert.ErrorIs(t, err, ledger.ErrAlreadyCancelled)

	got, err := store.GetHolder(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.CurrentStock, "double cancel must not credit stock twice")
}

func TestRecorder_CancelSale_Unknown(t *testing.T) {
	store := newTestStore(t)
	recorder := ledger.NewRecorder(store)

	err := recorder.CancelSale(context.Background(), "no-such-sale")
	assert.ErrorIs(t, err, ledger.ErrSaleNotFound)
}

func TestRecorder_CancelTransaction_CancelsAllActiveLines(t *testing.T) {
	// GIVEN: A two-line checkout with one line already cancelled
	// WHEN: Cancelling the transaction
	// THEN: The remaining line is cancelled; both holders get their stock back

	store := newTestStore(t)
	recorder := ledger.NewRecorder(store)
	ctx := context.Background()

	first := seedHolder(t, store, "Gamis Basic", "GMS-01", "50000", "100000", 10)
	second := seedHolder(t, store, "Hijab Voal", "HJB-01", "28000", "55000", 10)

	sales, err := recorder.RecordCheckout(ctx, []ledger.SaleLine{
		{SKU: "GMS-01", Quantity: 2},
		{SKU: "HJB-01", Quantity: 3},
	}, ledger.ChannelPOS, ledger.SaleContext{})
	require.NoError(t, err)
	require.NoError(t, recorder.CancelSale(ctx, sales[0].ID))

	require.NoError(t, recorder.CancelTransaction(ctx, sales[0].TransactionID))

	for _, h := range []*ledger.StockHolder{first, second} {
		got, err := store.GetHolder(ctx, h.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(10), got.CurrentStock)
	}

	remaining, err := store.SalesByTransaction(ctx, sales[0].TransactionID)
	require.NoError(t, err)
	for _, s := range remaining {
		assert.True(t, s.Cancelled())
	}
}

func TestRecorder_CancelTransaction_NothingLeft_Conflict(t *testing.T) {
	store := newTestStore(t)
	recorder := ledger.NewRecorder(store)
	ctx := context.Background()

	seedHolder(t, store, "Gamis Basic", "GMS-01", "50000", "100000", 10)
	sales, err := recorder.RecordCheckout(ctx, []ledger.SaleLine{{SKU: "GMS-01", Quantity: 2}},
		ledger.ChannelPOS, ledger.SaleContext{})
	require.NoError(t, err)

	require.NoError(t, recorder.CancelTransaction(ctx, sales[0].TransactionID))
	err = recorder.CancelTransaction(ctx, sales[0].TransactionID)
	assert.ErrorIs(t, err, ledger.ErrAlreadyCancelled)
}

func TestRecorder_CancelTransaction_Unknown(t *testing.T) {
	store := newTestStore(t)
	recorder := ledger.NewRecorder(store)

	err := recorder.CancelTransaction(context.Background(), "no-such-tx")
	assert.ErrorIs(t, err, ledger.ErrSaleNotFound)
}
