package journal_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/inventory-engine/journal"
	"github.com/warp/inventory-engine/ledger"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var (
	march     = ledger.NewPeriod(date(2026, 3, 1), date(2026, 3, 31))
	march10   = date(2026, 3, 10)
	cancelled = date(2026, 3, 12)
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testSale(id string, qty int64, price, cost string) ledger.Sale {
	return ledger.Sale{
		ID:          id,
		HolderID:    "h1",
		ProductName: "Gamis Basic",
		SKU:         "GMS-01",
		Channel:     ledger.ChannelPOS,
		Quantity:    qty,
		PriceAtSale: dec(price),
		CostAtSale:  dec(cost),
		SaleDate:    march10,
	}
}

func testManual(id, debit, credit, amount string) ledger.ManualEntry {
	return ledger.ManualEntry{
		ID:            id,
		Date:          march10,
		Description:   "Biaya packing dan ongkir",
		Amount:        dec(amount),
		DebitAccount:  debit,
		CreditAccount: credit,
	}
}

func deriveAll(t *testing.T, in journal.Inputs) []journal.DerivedEntry {
	t.Helper()
	return journal.NewDeriver(nil).Derive(in, march)
}

// assertBalanced checks the core derivation contract: total debits equal
// total credits.
func assertBalanced(t *testing.T, derived []journal.DerivedEntry) {
	t.Helper()
	debit, credit := decimal.Zero, decimal.Zero
	for _, e := range derived {
		debit = debit.Add(e.Debit)
		credit = credit.Add(e.Credit)
	}
	assert.True(t, debit.Equal(credit), "debits %s != credits %s", debit, credit)
}

// =============================================================================
// SALE DERIVATION TESTS
// =============================================================================

func TestDeriver_Sale_RevenueAndCOGSPairs(t *testing.T) {
	// GIVEN: A sale of 3 units at 100000 with cost 50000
	// WHEN: Deriving the journal
	// THEN: Cash 300000 / Sales Revenue 300000 and COGS 150000 / Inventory 150000

	derived := deriveAll(t, journal.Inputs{Sales: []ledger.Sale{testSale("s1", 3, "100000", "50000")}})

	require.Len(t, derived, 4)
	assertBalanced(t, derived)

	cash := journal.BuildLedger(derived, journal.AccountCash)
	assert.True(t, cash.TotalDebit.Equal(dec("300000")))

	revenue := journal.BuildLedger(derived, journal.AccountSalesRevenue)
	assert.True(t, revenue.TotalCredit.Equal(dec("300000")))
	assert.True(t, revenue.Balance.Equal(dec("300000")), "credit-normal balance")

	cogs := journal.BuildLedger(derived, journal.AccountCOGS)
	assert.True(t, cogs.TotalDebit.Equal(dec("150000")))

	inventory := journal.BuildLedger(derived, journal.AccountInventory)
	assert.True(t, inventory.TotalCredit.Equal(dec("150000")))
}

func TestDeriver_Sale_ZeroCost_NoCOGSPair(t *testing.T) {
	// GIVEN: A sale on a holder with no cost basis
	// WHEN: Deriving
	// THEN: Only the revenue pair, no zero-amount COGS lines

	derived := deriveAll(t, journal.Inputs{Sales: []ledger.Sale{testSale("s1", 2, "55000", "0")}})

	require.Len(t, derived, 2)
	assertBalanced(t, derived)
	for _, e := range derived {
		assert.NotEqual(t, journal.AccountCOGS, e.Account)
	}
}

func TestDeriver_CancelledSale_Excluded(t *testing.T) {
	// GIVEN: A cancelled sale
	// WHEN: Deriving
	// THEN: It contributes nothing; its compensating ledger entry is also mute

	sale := testSale("s1", 3, "100000", "50000")
	sale.CancelledAt = &cancelled

	derived := deriveAll(t, journal.Inputs{
		Sales: []ledger.Sale{sale},
		Entries: []ledger.Entry{
			{ID: "e1", HolderID: "h1", Date: march10, Kind: ledger.KindSale, Change: -3, NewLevel: 7},
			{ID: "e2", HolderID: "h1", Date: cancelled, Kind: ledger.KindCancelledSale, Change: 3, NewLevel: 10},
		},
	})

	assert.Empty(t, derived)
}

func TestDeriver_Sale_MalformedQuantity_Skipped(t *testing.T) {
	sale := testSale("s1", 0, "100000", "50000")
	derived := deriveAll(t, journal.Inputs{Sales: []ledger.Sale{sale}})
	assert.Empty(t, derived)
}

// =============================================================================
// LEDGER ENTRY DERIVATION TESTS
// =============================================================================

func TestDeriver_StockIn_PricedAtCostBasis(t *testing.T) {
	// GIVEN: A +20 stock-in on a holder costing 28000
	// WHEN: Deriving
	// THEN: Inventory 560000 debit / Accounts Payable 560000 credit

	derived := deriveAll(t, journal.Inputs{
		Entries: []ledger.Entry{
			{ID: "e1", HolderID: "h1", Date: march10, Kind: ledger.KindStockIn, Change: 20, NewLevel: 60},
		},
		Holders: []ledger.StockHolder{
			{ID: "h1", Name: "Hijab Voal", CostBasis: dec("28000")},
		},
	})

	require.Len(t, derived, 2)
	assertBalanced(t, derived)
	assert.Equal(t, journal.AccountInventory, derived[0].Account)
	assert.True(t, derived[0].Debit.Equal(dec("560000")))
	assert.Equal(t, journal.AccountAccountsPayable, derived[1].Account)
	assert.True(t, derived[1].Credit.Equal(dec("560000")))
}

func TestDeriver_StockIn_UnknownHolder_Skipped(t *testing.T) {
	derived := deriveAll(t, journal.Inputs{
		Entries: []ledger.Entry{
			{ID: "e1", HolderID: "gone", Date: march10, Kind: ledger.KindStockIn, Change: 20, NewLevel: 20},
		},
	})
	assert.Empty(t, derived, "a data anomaly must not break reporting")
}

func TestDeriver_StockIn_ZeroCostBasis_NoImpact(t *testing.T) {
	derived := deriveAll(t, journal.Inputs{
		Entries: []ledger.Entry{
			{ID: "e1", HolderID: "h1", Date: march10, Kind: ledger.KindStockIn, Change: 20, NewLevel: 20},
		},
		Holders: []ledger.StockHolder{{ID: "h1", Name: "Hijab Voal"}},
	})
	assert.Empty(t, derived)
}

func TestDeriver_CapitalAdjustment(t *testing.T) {
	// GIVEN: A zero-change capital adjustment of 60000
	// WHEN: Deriving
	// THEN: Inventory debit / Capital Adjustment (Inventory) credit

	derived := deriveAll(t, journal.Inputs{
		Entries: []ledger.Entry{
			{ID: "e1", HolderID: "h1", Date: march10, Kind: ledger.KindCapitalAdjustment,
				Note: ledger.CapitalAdjustmentPrefix + " Maret", Change: 0, NewLevel: 10, Amount: dec("60000")},
		},
	})

	require.Len(t, derived, 2)
	assertBalanced(t, derived)
	assert.Equal(t, journal.AccountInventory, derived[0].Account)
	assert.True(t, derived[0].Debit.Equal(dec("60000")))
	assert.Equal(t, journal.AccountCapitalAdjustment, derived[1].Account)
	assert.True(t, derived[1].Credit.Equal(dec("60000")))
	assert.Equal(t, ledger.CapitalAdjustmentPrefix+" Maret", derived[0].Description)
}

func TestDeriver_CapitalAdjustment_Malformed_Skipped(t *testing.T) {
	derived := deriveAll(t, journal.Inputs{
		Entries: []ledger.Entry{
			// non-zero change on a capital adjustment is a data anomaly
			{ID: "e1", HolderID: "h1", Date: march10, Kind: ledger.KindCapitalAdjustment, Change: 2, NewLevel: 12, Amount: dec("60000")},
		},
	})
	assert.Empty(t, derived)
}

func TestDeriver_InitialStockAndCorrections_Excluded(t *testing.T) {
	derived := deriveAll(t, journal.Inputs{
		Entries: []ledger.Entry{
			{ID: "e1", HolderID: "h1", Date: march10, Kind: ledger.KindInitialStock, Change: 50, NewLevel: 50},
			{ID: "e2", HolderID: "h1", Date: march10, Kind: ledger.KindCorrection, Change: -2, NewLevel: 48},
		},
		Holders: []ledger.StockHolder{{ID: "h1", CostBasis: dec("28000")}},
	})
	assert.Empty(t, derived)
}

// =============================================================================
// MANUAL ENTRY DERIVATION TESTS
// =============================================================================

func TestDeriver_ManualEntry_BalancedPair(t *testing.T) {
	derived := deriveAll(t, journal.Inputs{
		Manuals: []ledger.ManualEntry{testManual("m1", "Biaya Operasional", journal.AccountCash, "75000")},
	})

	require.Len(t, derived, 2)
	assertBalanced(t, derived)
	assert.Equal(t, "Biaya Operasional", derived[0].Account)
	assert.True(t, derived[0].Debit.Equal(dec("75000")))
	assert.Equal(t, journal.AccountCash, derived[1].Account)
	assert.True(t, derived[1].Credit.Equal(dec("75000")))
}

func TestDeriver_ManualEntry_Malformed_Skipped(t *testing.T) {
	derived := deriveAll(t, journal.Inputs{
		Manuals: []ledger.ManualEntry{
			testManual("m1", "Cash", "Cash", "75000"), // same account both sides
			testManual("m2", "Biaya Iklan", "Cash", "0"),
		},
	})
	assert.Empty(t, derived)
}

// =============================================================================
// PERIOD FILTER TESTS
// =============================================================================

func TestDeriver_OutsidePeriod_Excluded(t *testing.T) {
	april := testSale("s1", 1, "100000", "50000")
	april.SaleDate = date(2026, 4, 2)

	outside := testManual("m1", "Biaya Iklan", "Cash", "10000")
	outside.Date = date(2026, 2, 27)

	derived := deriveAll(t, journal.Inputs{
		Sales:   []ledger.Sale{april},
		Manuals: []ledger.ManualEntry{outside},
		Entries: []ledger.Entry{
			{ID: "e1", HolderID: "h1", Date: date(2026, 4, 1), Kind: ledger.KindStockIn, Change: 5, NewLevel: 5},
		},
		Holders: []ledger.StockHolder{{ID: "h1", CostBasis: dec("28000")}},
	})

	assert.Empty(t, derived)
}

// =============================================================================
// DETERMINISM AND FULL-MIX TESTS
// =============================================================================

func TestDeriver_MixedInputs_EveryGroupBalances(t *testing.T) {
	in := journal.Inputs{
		Sales: []ledger.Sale{
			testSale("s1", 3, "100000", "50000"),
			testSale("s2", 5, "62000", "28000"),
		},
		Manuals: []ledger.ManualEntry{
			testManual("m1", "Biaya Operasional", journal.AccountCash, "75000"),
		},
		Entries: []ledger.Entry{
			{ID: "e1", HolderID: "h1", Date: march10, Kind: ledger.KindStockIn, Change: 20, NewLevel: 60},
			{ID: "e2", HolderID: "h1", Date: march10, Kind: ledger.KindCapitalAdjustment, Change: 0, NewLevel: 60, Amount: dec("60000")},
		},
		Holders: []ledger.StockHolder{{ID: "h1", Name: "Hijab Voal", CostBasis: dec("28000")}},
	}

	derived := deriveAll(t, in)
	assertBalanced(t, derived)

	// Pure over its inputs: a second run yields the identical output.
	again := deriveAll(t, in)
	require.Equal(t, len(derived), len(again))
	for i := range derived {
		assert.Equal(t, derived[i].Account, again[i].Account)
		assert.True(t, derived[i].Debit.Equal(again[i].Debit))
		assert.True(t, derived[i].Credit.Equal(again[i].Credit))
	}
}
