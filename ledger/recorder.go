/*
recorder.go - Sale recording and cancellation

PURPOSE:
  Captures sales with price and cost frozen at sale time, decrements stock
  through the same atomic path as every other mutation, and supports
  compensating cancellation of single sales or whole checkout transactions.

FROZEN ECONOMICS:
  PriceAtSale comes from the holder's channel price (falling back to the
  base sell price), CostAtSale from its cost basis, both read inside the
  sale transaction. Later edits to the holder never touch recorded sales.

CANCELLATION:
  A cancellation appends exactly one compensating +quantity entry per sale
  and flags the sale row. Cancelling twice fails with AlreadyCancelled and
  never credits stock twice.

SEE ALSO:
  - mutator.go: applyAdjustment, the shared mutation path
  - types.go: Sale, SaleContext, SaleLine
*/
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Recorder captures and cancels sales.
type Recorder struct {
	Store TxStore
}

func NewRecorder(store TxStore) *Recorder {
	return &Recorder{Store: store}
}

// RecordSale records a single-line sale. Convenience wrapper around
// RecordCheckout.
func (r *Recorder) RecordSale(ctx context.Context, sku string, channel Channel, quantity int64, sctx SaleContext) (*Sale, error) {
	sales, err := r.RecordCheckout(ctx, []SaleLine{{SKU: sku, Quantity: quantity}}, channel, sctx)
	if err != nil {
		return nil, err
	}
	return &sales[0], nil
}

// RecordCheckout records one or more sale lines under a single transaction
// ID, so the whole checkout can later be cancelled as a unit. All lines and
// their stock decrements commit atomically.
func (r *Recorder) RecordCheckout(ctx context.Context, lines []SaleLine, channel Channel, sctx SaleContext) ([]Sale, error) {
	if len(lines) == 0 {
		return nil, &ValidationError{Field: "lines", Message: "at least one sale line is required"}
	}
	if !channel.Valid() {
		return nil, &ValidationError{Field: "channel", Message: fmt.Sprintf("unknown channel %q", channel)}
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, &ValidationError{Field: "quantity", Message: "quantity must be positive"}
		}
	}

	transactionID := sctx.TransactionID
	if transactionID == "" {
		transactionID = uuid.NewString()
	}
	saleDate := sctx.SaleDate
	if saleDate.IsZero() {
		saleDate = time.Now().UTC()
	}

	var sales []Sale
	err := r.Store.WithTx(ctx, func(s Store) error {
		sales = sales[:0]
		for _, line := range lines {
			sale, err := r.recordLine(ctx, s, line, channel, transactionID, saleDate, sctx.PaymentMethod)
			if err != nil {
				return err
			}
			sales = append(sales, *sale)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *Recorder) recordLine(ctx context.Context, s Store, line SaleLine, channel Channel, transactionID string, saleDate time.Time, paymentMethod string) (*Sale, error) {
	h, err := s.GetHolderBySKU(ctx, line.SKU)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, &NotFoundError{Kind: "sku", ID: line.SKU}
	}

	// The mutator deliberately allows negative stock; the sale flow is the
	// caller responsible for availability.
	if h.CurrentStock < line.Quantity {
		return nil, &ValidationError{
			Field:   "quantity",
			Message: fmt.Sprintf("insufficient stock for %s: have %d, want %d", line.SKU, h.CurrentStock, line.Quantity),
		}
	}

	productName, variantName := h.Name, ""
	if h.IsVariant() {
		variantName = h.Name
		parent, err := s.GetHolder(ctx, h.ParentID)
		if err != nil {
			return nil, err
		}
		if parent != nil {
			productName = parent.Name
		}
	}

	saleID := uuid.NewString()
	if _, err := applyAdjustment(ctx, s, Adjustment{
		HolderID: h.ID,
		Change:   -line.Quantity,
		Kind:     KindSale,
		Note:     fmt.Sprintf("Sale (%s)", channel),
		Channel:  channel,
		RefID:    saleID,
		At:       saleDate,
	}); err != nil {
		return nil, err
	}

	sale := Sale{
		ID:            saleID,
		TransactionID: transactionID,
		HolderID:      h.ID,
		ProductName:   productName,
		VariantName:   variantName,
		SKU:           h.SKU,
		Channel:       channel,
		Quantity:      line.Quantity,
		PriceAtSale:   h.PriceFor(channel),
		CostAtSale:    h.CostBasis,
		SaleDate:      saleDate,
		PaymentMethod: paymentMethod,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.SaveSale(ctx, sale); err != nil {
		return nil, err
	}
	return &sale, nil
}

// CancelSale cancels a single sale: one compensating ledger entry, sale
// flagged. Fails with AlreadyCancelled on a second attempt.
func (r *Recorder) CancelSale(ctx context.Context, saleID string) error {
	return r.Store.WithTx(ctx, func(s Store) error {
		sale, err := s.GetSale(ctx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return &NotFoundError{Kind: "sale", ID: saleID}
		}
		return cancelOne(ctx, s, sale, fmt.Sprintf("Cancelled Sale (%s)", sale.Channel))
	})
}

// CancelTransaction cancels every still-active sale sharing the transaction
// ID. Fails with AlreadyCancelled when nothing remains to cancel.
func (r *Recorder) CancelTransaction(ctx context.Context, transactionID string) error {
	return r.Store.WithTx(ctx, func(s Store) error {
		sales, err := s.SalesByTransaction(ctx, transactionID)
		if err != nil {
			return err
		}
		if len(sales) == 0 {
			return &NotFoundError{Kind: "transaction", ID: transactionID}
		}

		cancelled := 0
		for i := range sales {
			if sales[i].Cancelled() {
				continue
			}
			if err := cancelOne(ctx, s, &sales[i], "Cancelled Transaction"); err != nil {
				return err
			}
			cancelled++
		}
		if cancelled == 0 {
			return &AlreadyCancelledError{TransactionID: transactionID}
		}
		return nil
	})
}

func cancelOne(ctx context.Context, s Store, sale *Sale, note string) error {
	if sale.Cancelled() {
		return &AlreadyCancelledError{SaleID: sale.ID}
	}
	if _, err := applyAdjustment(ctx, s, Adjustment{
		HolderID: sale.HolderID,
		Change:   sale.Quantity,
		Kind:     KindCancelledSale,
		Note:     note,
		Channel:  sale.Channel,
		RefID:    sale.ID,
	}); err != nil {
		return err
	}
	return s.MarkSaleCancelled(ctx, sale.ID, time.Now().UTC())
}
