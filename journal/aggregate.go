/*
aggregate.go - Ledger aggregation

PURPOSE:
  Groups derived entries by account and computes running balances. Like the
  derivation engine this is pure: the same derived entries always produce
  the same account view, so reports can be rebuilt at will and in parallel.

RUNNING BALANCE:
  Debit-normal accounts accumulate debit - credit, credit-normal accounts
  credit - debit (see accounts.go for classification).
*/
package journal

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Account is the aggregate view of one ledger account over a period.
type Account struct {
	Name        string
	Side        NormalBalance
	Entries     []DerivedEntry
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Balance     decimal.Decimal
}

// BuildLedger filters derived entries to one account, sorts them by date,
// and computes totals and the final balance.
func BuildLedger(derived []DerivedEntry, account string) Account {
	acc := Account{
		Name:        account,
		Side:        Classify(account),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
		Balance:     decimal.Zero,
	}

	for _, e := range derived {
		if e.Account == account {
			acc.Entries = append(acc.Entries, e)
		}
	}
	sort.SliceStable(acc.Entries, func(i, j int) bool {
		return acc.Entries[i].Date.Before(acc.Entries[j].Date)
	})

	for _, e := range acc.Entries {
		acc.TotalDebit = acc.TotalDebit.Add(e.Debit)
		acc.TotalCredit = acc.TotalCredit.Add(e.Credit)
	}
	if acc.Side == CreditNormal {
		acc.Balance = acc.TotalCredit.Sub(acc.TotalDebit)
	} else {
		acc.Balance = acc.TotalDebit.Sub(acc.TotalCredit)
	}
	return acc
}

// AccountNames returns the distinct account names appearing in the derived
// entries, sorted.
func AccountNames(derived []DerivedEntry) []string {
	seen := make(map[string]bool)
	var names []string
	for _, e := range derived {
		if !seen[e.Account] {
			seen[e.Account] = true
			names = append(names, e.Account)
		}
	}
	sort.Strings(names)
	return names
}
