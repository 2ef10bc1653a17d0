/*
derive.go - Journal derivation engine

PURPOSE:
  Pure mapping from the three durable event streams onto ephemeral,
  balanced debit/credit pairs. Nothing is written anywhere; the output
  exists only for the report being built.

RULES (in event-type order):
  1. Manual entry   -> debit its debit account, credit its credit account
  2. Sale           -> debit Cash / credit Sales Revenue at frozen price;
                       plus debit COGS / credit Inventory at frozen cost
                       when the cost is positive
  3. Stock-in       -> debit Inventory / credit Accounts Payable at
                       change * holder cost basis (skipped when zero)
  4. Capital adj.   -> debit Inventory / credit Capital Adjustment
                       (Inventory) at the entry's Amount
  5. Initial-stock and sale-driven ledger entries are excluded: sales
     already derive from the Sale rows (rule 2), so re-deriving their
     entries would double count.

CONTRACT:
  Every source event emits a balanced group: sum(debit) == sum(credit).
  Malformed historical entries are logged and skipped; a data anomaly must
  never make reporting unavailable.
*/
package journal

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/inventory-engine/ledger"
	"go.uber.org/zap"
)

// =============================================================================
// DERIVED ENTRY - Ephemeral, computed, never stored
// =============================================================================

type SourceType string

const (
	SourceSale              SourceType = "sale"
	SourceStockIn           SourceType = "stock_in"
	SourceCapitalAdjustment SourceType = "capital_adjustment"
	SourceManual            SourceType = "manual"
)

type DerivedEntry struct {
	Date        time.Time
	Description string
	Account     string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	SourceType  SourceType
	SourceID    string
}

// Inputs carries the immutable event streams the engine reads. Holders are
// needed because rule 3 prices stock-in at the holder's current cost basis.
type Inputs struct {
	Entries []ledger.Entry
	Sales   []ledger.Sale
	Manuals []ledger.ManualEntry
	Holders []ledger.StockHolder
}

// =============================================================================
// DERIVER
// =============================================================================

type Deriver struct {
	log *zap.Logger
}

func NewDeriver(log *zap.Logger) *Deriver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Deriver{log: log}
}

// Derive maps every event dated within the period onto balanced
// debit/credit groups. Pure over its inputs: same inputs, same output.
func (d *Deriver) Derive(in Inputs, period ledger.Period) []DerivedEntry {
	holders := make(map[string]ledger.StockHolder, len(in.Holders))
	for _, h := range in.Holders {
		holders[h.ID] = h
	}

	var out []DerivedEntry

	// Rule 1: manual entries.
	for _, m := range in.Manuals {
		if !period.Contains(m.Date) {
			continue
		}
		if err := m.Validate(); err != nil {
			d.log.Warn("skipping malformed manual entry", zap.String("id", m.ID), zap.Error(err))
			continue
		}
		out = append(out,
			DerivedEntry{Date: m.Date, Description: m.Description, Account: m.DebitAccount, Debit: m.Amount, SourceType: SourceManual, SourceID: m.ID},
			DerivedEntry{Date: m.Date, Description: m.Description, Account: m.CreditAccount, Credit: m.Amount, SourceType: SourceManual, SourceID: m.ID},
		)
	}

	// Rule 2: sales. Cancelled sales net to zero with their compensating
	// ledger entry and are excluded entirely.
	for _, s := range in.Sales {
		if !period.Contains(s.SaleDate) || s.Cancelled() {
			continue
		}
		if s.Quantity <= 0 {
			d.log.Warn("skipping sale with non-positive quantity", zap.String("id", s.ID))
			continue
		}
		desc := fmt.Sprintf("Sale %s (%s)", s.ProductName, s.Channel)
		revenue := s.Revenue()
		out = append(out,
			DerivedEntry{Date: s.SaleDate, Description: desc, Account: AccountCash, Debit: revenue, SourceType: SourceSale, SourceID: s.ID},
			DerivedEntry{Date: s.SaleDate, Description: desc, Account: AccountSalesRevenue, Credit: revenue, SourceType: SourceSale, SourceID: s.ID},
		)
		if cost := s.Cost(); cost.IsPositive() {
			costDesc := fmt.Sprintf("COGS %s (%s)", s.ProductName, s.Channel)
			out = append(out,
				DerivedEntry{Date: s.SaleDate, Description: costDesc, Account: AccountCOGS, Debit: cost, SourceType: SourceSale, SourceID: s.ID},
				DerivedEntry{Date: s.SaleDate, Description: costDesc, Account: AccountInventory, Credit: cost, SourceType: SourceSale, SourceID: s.ID},
			)
		}
	}

	// Rules 3-5: ledger entries.
	for _, e := range in.Entries {
		if !period.Contains(e.Date) {
			continue
		}
		switch e.Kind {
		case ledger.KindStockIn:
			if e.Change <= 0 {
				d.log.Warn("skipping stock-in with non-positive change", zap.String("id", e.ID), zap.Int64("change", e.Change))
				continue
			}
			h, ok := holders[e.HolderID]
			if !ok {
				d.log.Warn("skipping stock-in for unknown holder", zap.String("id", e.ID), zap.String("holder_id", e.HolderID))
				continue
			}
			amount := h.CostBasis.Mul(decimal.NewFromInt(e.Change))
			if !amount.IsPositive() {
				continue // cost basis unset: no accounting impact
			}
			desc := fmt.Sprintf("Stock In %s x%d", h.Name, e.Change)
			out = append(out,
				DerivedEntry{Date: e.Date, Description: desc, Account: AccountInventory, Debit: amount, SourceType: SourceStockIn, SourceID: e.ID},
				DerivedEntry{Date: e.Date, Description: desc, Account: AccountAccountsPayable, Credit: amount, SourceType: SourceStockIn, SourceID: e.ID},
			)

		case ledger.KindCapitalAdjustment:
			if e.Change != 0 || !e.Amount.IsPositive() {
				d.log.Warn("skipping malformed capital adjustment", zap.String("id", e.ID), zap.Int64("change", e.Change), zap.String("amount", e.Amount.String()))
				continue
			}
			desc := ledger.DisplayReason(e)
			out = append(out,
				DerivedEntry{Date: e.Date, Description: desc, Account: AccountInventory, Debit: e.Amount, SourceType: SourceCapitalAdjustment, SourceID: e.ID},
				DerivedEntry{Date: e.Date, Description: desc, Account: AccountCapitalAdjustment, Credit: e.Amount, SourceType: SourceCapitalAdjustment, SourceID: e.ID},
			)

		default:
			// initial_stock, sale, cancelled_sale, correction: no derivation.
		}
	}

	return out
}
