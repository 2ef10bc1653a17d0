/*
Package journal derives double-entry accounting facts from the ledger
package's append-only event streams.

PURPOSE:
  Nothing here is ever persisted. At report time the derivation engine
  (derive.go) maps stock entries, sales and manual journal entries onto
  balanced debit/credit pairs, and the aggregator (aggregate.go) rolls them
  up into per-account ledgers and financial statements (statements.go).
  Re-running any of it over the same inputs yields identical results.

KEY CONCEPTS IN THIS FILE (accounts.go):
  - Canonical account names used by the derivation rules
  - Normal balance classification (debit-normal vs credit-normal)

CLASSIFICATION:
  Canonical accounts carry an explicit normal side. Free-text accounts from
  manual entries fall back to keyword matching on the account name,
  case-insensitive, with both English and Indonesian markers (the books this
  system replaced used account names like "Biaya Iklan" and
  "Penyesuaian Modal").
*/
package journal

import "strings"

// =============================================================================
// CANONICAL ACCOUNTS
// =============================================================================

const (
	AccountCash              = "Cash"
	AccountSalesRevenue      = "Sales Revenue"
	AccountCOGS              = "Cost of Goods Sold"
	AccountInventory         = "Inventory"
	AccountAccountsPayable   = "Accounts Payable"
	AccountCapitalAdjustment = "Capital Adjustment (Inventory)"
)

// =============================================================================
// NORMAL BALANCE - Which side increases the account
// =============================================================================

type NormalBalance int

const (
	DebitNormal NormalBalance = iota
	CreditNormal
)

func (n NormalBalance) String() string {
	if n == CreditNormal {
		return "credit"
	}
	return "debit"
}

// chart maps canonical accounts to their normal side; keys are lowercase.
var chart = map[string]NormalBalance{
	strings.ToLower(AccountCash):              DebitNormal,
	strings.ToLower(AccountSalesRevenue):      CreditNormal,
	strings.ToLower(AccountCOGS):              DebitNormal,
	strings.ToLower(AccountInventory):         DebitNormal,
	strings.ToLower(AccountAccountsPayable):   CreditNormal,
	strings.ToLower(AccountCapitalAdjustment): CreditNormal,
}

// creditKeywords mark credit-normal accounts by substring when the account
// is not in the chart: revenue, capital/equity, payable/liability and
// accumulated depreciation, with Indonesian equivalents.
var creditKeywords = []string{
	"revenue", "pendapatan",
	"capital", "modal", "equity", "ekuitas",
	"payable", "hutang", "utang", "liability", "kewajiban",
	"accumulated depreciation", "akumulasi penyusutan",
}

var expenseKeywords = []string{"expense", "biaya", "beban"}

var incomeKeywords = []string{"revenue", "pendapatan", "income"}

// Classify returns the normal balance side for an account name. Canonical
// accounts use the chart; everything else is debit-normal unless its name
// contains a credit-normal keyword.
func Classify(account string) NormalBalance {
	lower := strings.ToLower(account)
	if side, ok := chart[lower]; ok {
		return side
	}
	for _, kw := range creditKeywords {
		if strings.Contains(lower, kw) {
			return CreditNormal
		}
	}
	return DebitNormal
}

// IsExpenseAccount reports whether a manual-entry account counts as an
// operating expense in the profit-and-loss rollup.
func IsExpenseAccount(account string) bool {
	return containsAny(account, expenseKeywords)
}

// IsIncomeAccount reports whether a manual-entry account counts as other
// income in the profit-and-loss rollup.
func IsIncomeAccount(account string) bool {
	return containsAny(account, incomeKeywords)
}

func containsAny(account string, keywords []string) bool {
	lower := strings.ToLower(account)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
