package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/warp/inventory-engine/ledger"
)

func TestClassifyReason(t *testing.T) {
	tests := []struct {
		reason string
		want   ledger.EventKind
	}{
		{"Stock In", ledger.KindStockIn},
		{"stock in", ledger.KindStockIn},
		{"  STOCK IN  ", ledger.KindStockIn},
		{"Initial Stock", ledger.KindInitialStock},
		{"Penyesuaian Modal (HPP) Maret", ledger.KindCapitalAdjustment},
		{"Penyesuaian Modal (HPP)", ledger.KindCapitalAdjustment},
		{"physical recount", ledger.KindCorrection},
		{"", ledger.KindCorrection},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ledger.ClassifyReason(tt.reason), "reason %q", tt.reason)
	}
}

func TestDisplayReason_NoteWins(t *testing.T) {
	e := ledger.Entry{Kind: ledger.KindStockIn, Note: "Restock dari supplier"}
	assert.Equal(t, "Restock dari supplier", ledger.DisplayReason(e))
}

func TestDisplayReason_Defaults(t *testing.T) {
	tests := []struct {
		entry ledger.Entry
		want  string
	}{
		{ledger.Entry{Kind: ledger.KindInitialStock}, "Initial Stock"},
		{ledger.Entry{Kind: ledger.KindStockIn}, "Stock In"},
		{ledger.Entry{Kind: ledger.KindCapitalAdjustment}, ledger.CapitalAdjustmentPrefix},
		{ledger.Entry{Kind: ledger.KindSale, Channel: ledger.ChannelShopee}, "Sale (shopee)"},
		{ledger.Entry{Kind: ledger.KindCancelledSale, Channel: ledger.ChannelPOS}, "Cancelled Sale (pos)"},
		{ledger.Entry{Kind: ledger.KindCorrection}, "Adjustment"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ledger.DisplayReason(tt.entry))
	}
}

func TestPeriod_InclusiveBoundaries(t *testing.T) {
	// GIVEN: A period over March 1-31
	// WHEN: Checking events at the very edges
	// THEN: Both boundary days are inside, adjacent days are not

	p := ledger.NewPeriod(
		time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC),
	)

	assert.True(t, p.Contains(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, p.Contains(time.Date(2026, time.March, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2026, time.February, 28, 23, 59, 59, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)))
}

func TestPeriod_Month(t *testing.T) {
	p := ledger.Month(time.Date(2026, time.February, 14, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), p.Start)
	assert.True(t, p.Contains(time.Date(2026, time.February, 28, 18, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)))
}

func TestPeriod_Day(t *testing.T) {
	p := ledger.Day(time.Date(2026, time.March, 10, 15, 30, 0, 0, time.UTC))
	assert.True(t, p.Contains(time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)))
	assert.True(t, p.Contains(time.Date(2026, time.March, 10, 23, 59, 59, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC)))
}
