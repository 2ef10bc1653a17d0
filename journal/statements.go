/*
statements.go - Financial-statement rollups

PURPOSE:
  Thin aggregations over derived entries: the profit-and-loss summary and a
  trial balance. Both are computed per request from the same derivation
  output the ledger views use, so they can never drift from each other.
*/
package journal

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// PROFIT AND LOSS SUMMARY
// =============================================================================

// Summary is the period profit-and-loss rollup.
type Summary struct {
	TotalRevenue      decimal.Decimal
	TotalCOGS         decimal.Decimal
	GrossProfit       decimal.Decimal
	OperatingExpenses decimal.Decimal
	OtherIncome       decimal.Decimal
	NetProfit         decimal.Decimal
}

// Summarize computes the P&L figures from derived entries:
// revenue and COGS from sale derivations, operating expenses from manual
// debits to expense accounts, other income from manual credits to
// revenue-like accounts.
func Summarize(derived []DerivedEntry) Summary {
	s := Summary{
		TotalRevenue:      decimal.Zero,
		TotalCOGS:         decimal.Zero,
		OperatingExpenses: decimal.Zero,
		OtherIncome:       decimal.Zero,
	}

	for _, e := range derived {
		switch {
		case e.SourceType == SourceSale && e.Account == AccountSalesRevenue:
			s.TotalRevenue = s.TotalRevenue.Add(e.Credit)
		case e.SourceType == SourceSale && e.Account == AccountCOGS:
			s.TotalCOGS = s.TotalCOGS.Add(e.Debit)
		case e.SourceType == SourceManual && e.Debit.IsPositive() && IsExpenseAccount(e.Account):
			s.OperatingExpenses = s.OperatingExpenses.Add(e.Debit)
		case e.SourceType == SourceManual && e.Credit.IsPositive() && IsIncomeAccount(e.Account):
			s.OtherIncome = s.OtherIncome.Add(e.Credit)
		}
	}

	s.GrossProfit = s.TotalRevenue.Sub(s.TotalCOGS)
	s.NetProfit = s.GrossProfit.Sub(s.OperatingExpenses).Add(s.OtherIncome)
	return s
}

// =============================================================================
// TRIAL BALANCE
// =============================================================================

// TrialBalanceRow is one account's totals in a trial balance.
type TrialBalanceRow struct {
	Account     string
	Side        NormalBalance
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Balance     decimal.Decimal
}

// TrialBalance builds one row per account appearing in the derived entries.
// Because every derivation emits balanced groups, total debits always equal
// total credits across all rows.
func TrialBalance(derived []DerivedEntry) []TrialBalanceRow {
	names := AccountNames(derived)
	rows := make([]TrialBalanceRow, 0, len(names))
	for _, name := range names {
		acc := BuildLedger(derived, name)
		rows = append(rows, TrialBalanceRow{
			Account:     acc.Name,
			Side:        acc.Side,
			TotalDebit:  acc.TotalDebit,
			TotalCredit: acc.TotalCredit,
			Balance:     acc.Balance,
		})
	}
	return rows
}
