/*
mutator.go - Atomic stock mutation

PURPOSE:
  The Mutator is the ONLY code path that changes a holder's stock level.
  Every mutation writes the new level and appends a ledger entry in one
  transaction, so the snapshot chain

      NewLevel[n] == NewLevel[n-1] + Change[n]

  can never break under concurrent mutation of the same holder.

NEGATIVE STOCK:
  The mutator does not reject mutations that drive stock negative. Corrective
  entries must always be possible; availability checks belong to the callers
  (the sale recorder pre-checks, the UI pre-checks).

SEE ALSO:
  - recorder.go: Sale flows built on applyAdjustment
  - ../journal/derive.go: Consumes the entries written here
*/
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Adjustment describes one stock mutation to apply.
type Adjustment struct {
	HolderID string
	Change   int64
	Kind     EventKind
	Note     string
	Channel  Channel
	Amount   decimal.Decimal // capital adjustments only
	RefID    string
	At       time.Time // zero means now
}

// Mutator atomically updates current stock and appends a ledger entry.
type Mutator struct {
	Store TxStore
}

func NewMutator(store TxStore) *Mutator {
	return &Mutator{Store: store}
}

// AdjustStock applies a signed stock change for a holder and returns the
// resulting stock level. The change must be non-zero; zero-change entries
// exist only for capital adjustments (AdjustCapital).
func (m *Mutator) AdjustStock(ctx context.Context, holderID string, change int64, kind EventKind, note string) (int64, error) {
	if change == 0 {
		return 0, &ValidationError{Field: "change", Message: "change must be non-zero"}
	}
	if !kind.Valid() || kind == KindCapitalAdjustment {
		return 0, &ValidationError{Field: "kind", Message: "invalid adjustment kind"}
	}

	var newLevel int64
	err := m.Store.WithTx(ctx, func(s Store) error {
		var err error
		newLevel, err = applyAdjustment(ctx, s, Adjustment{
			HolderID: holderID,
			Change:   change,
			Kind:     kind,
			Note:     note,
		})
		return err
	})
	if err != nil {
		return 0, err
	}
	return newLevel, nil
}

// AdjustCapital records a capital (HPP) adjustment for a holder: a
// zero-change entry whose Amount carries the currency correction. Stock is
// untouched; the snapshot chain continues unchanged.
func (m *Mutator) AdjustCapital(ctx context.Context, holderID string, amount decimal.Decimal, note string) error {
	if !amount.IsPositive() {
		return &ValidationError{Field: "amount", Message: "amount must be positive"}
	}
	return m.Store.WithTx(ctx, func(s Store) error {
		_, err := applyAdjustment(ctx, s, Adjustment{
			HolderID: holderID,
			Change:   0,
			Kind:     KindCapitalAdjustment,
			Note:     note,
			Amount:   amount,
		})
		return err
	})
}

// History returns the full ledger for a holder, chronological.
func (m *Mutator) History(ctx context.Context, holderID string) ([]Entry, error) {
	h, err := m.Store.GetHolder(ctx, holderID)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, &NotFoundError{Kind: "holder", ID: holderID}
	}
	return m.Store.History(ctx, holderID)
}

// applyAdjustment performs the read-modify-write + append inside an already
// open transaction. Shared by the mutator and the sale recorder.
func applyAdjustment(ctx context.Context, s Store, adj Adjustment) (int64, error) {
	h, err := s.GetHolder(ctx, adj.HolderID)
	if err != nil {
		return 0, err
	}
	if h == nil {
		return 0, &NotFoundError{Kind: "holder", ID: adj.HolderID}
	}

	// A product that owns variants carries no stock of its own.
	if !h.IsVariant() {
		hasVariants, err := s.HasVariants(ctx, h.ID)
		if err != nil {
			return 0, err
		}
		if hasVariants {
			return 0, &ValidationError{Field: "holder_id", Message: "product with variants does not carry stock; adjust a variant"}
		}
	}

	newLevel := h.CurrentStock + adj.Change
	if err := s.UpdateStock(ctx, adj.HolderID, newLevel); err != nil {
		return 0, err
	}

	at := adj.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	entry := Entry{
		ID:        uuid.NewString(),
		HolderID:  adj.HolderID,
		Date:      at,
		Kind:      adj.Kind,
		Note:      adj.Note,
		Channel:   adj.Channel,
		Change:    adj.Change,
		NewLevel:  newLevel,
		Amount:    adj.Amount,
		RefID:     adj.RefID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.AppendEntry(ctx, entry); err != nil {
		return 0, err
	}
	return newLevel, nil
}
