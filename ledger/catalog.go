/*
catalog.go - Product and variant management

PURPOSE:
  The holder-facing surface the UI forms and the bulk import pipeline call.
  Creating a product (optionally with variants and opening stock) is one
  atomic transaction; opening stock goes through the same adjustment path as
  every other mutation, so even the very first entry obeys the snapshot
  chain.

RULES:
  - A product either owns variants (and carries no stock/price itself) or
    is stock-bearing itself, never both.
  - Price and cost edits never touch recorded sales; those are frozen.
  - Deleting a holder cascades to its variants and their ledger entries.
*/
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HolderParams describes a product or variant to create or update.
type HolderParams struct {
	Name          string
	SKU           string
	CostBasis     decimal.Decimal
	SellPrice     decimal.Decimal
	ChannelPrices map[Channel]decimal.Decimal
	InitialStock  int64
}

// Catalog manages the product/variant catalog.
type Catalog struct {
	Store TxStore
}

func NewCatalog(store TxStore) *Catalog {
	return &Catalog{Store: store}
}

// CreateProduct creates a product, its variants, and their opening-stock
// entries in one transaction. With variants, the product itself carries no
// stock or prices; without, the product is the stock-bearing holder.
func (c *Catalog) CreateProduct(ctx context.Context, p HolderParams, variants []HolderParams) (*StockHolder, error) {
	if p.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}
	for _, v := range variants {
		if v.Name == "" || v.SKU == "" {
			return nil, &ValidationError{Field: "variants", Message: "every variant needs a name and a SKU"}
		}
	}
	if len(variants) == 0 && p.SKU == "" {
		return nil, &ValidationError{Field: "sku", Message: "a stock-bearing product needs a SKU"}
	}

	now := time.Now().UTC()
	product := StockHolder{
		ID:        uuid.NewString(),
		Name:      p.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if len(variants) == 0 {
		product.SKU = p.SKU
		product.CostBasis = p.CostBasis
		product.SellPrice = p.SellPrice
		product.ChannelPrices = p.ChannelPrices
	}

	err := c.Store.WithTx(ctx, func(s Store) error {
		if err := checkSKUFree(ctx, s, product.SKU); err != nil {
			return err
		}
		if err := s.SaveHolder(ctx, product); err != nil {
			return err
		}
		if len(variants) == 0 {
			return openStock(ctx, s, product.ID, p.InitialStock)
		}
		for _, v := range variants {
			if err := createVariant(ctx, s, product.ID, v, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.Store.GetHolder(ctx, product.ID)
}

// AddVariant attaches a new variant to an existing product. The product must
// not be stock-bearing itself (it either already has variants or has never
// held stock).
func (c *Catalog) AddVariant(ctx context.Context, productID string, v HolderParams) (*StockHolder, error) {
	if v.Name == "" || v.SKU == "" {
		return nil, &ValidationError{Field: "variant", Message: "variant needs a name and a SKU"}
	}

	var variantID string
	err := c.Store.WithTx(ctx, func(s Store) error {
		parent, err := s.GetHolder(ctx, productID)
		if err != nil {
			return err
		}
		if parent == nil {
			return &NotFoundError{Kind: "holder", ID: productID}
		}
		if parent.IsVariant() {
			return &ValidationError{Field: "product_id", Message: "variants cannot own variants"}
		}
		if parent.CurrentStock != 0 || parent.SKU != "" {
			return &ValidationError{Field: "product_id", Message: "product is stock-bearing; it cannot own variants"}
		}
		if err := checkSKUFree(ctx, s, v.SKU); err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := createVariant(ctx, s, productID, v, now); err != nil {
			return err
		}
		// createVariant assigned the id via SKU lookup below.
		created, err := s.GetHolderBySKU(ctx, v.SKU)
		if err != nil {
			return err
		}
		variantID = created.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.Store.GetHolder(ctx, variantID)
}

// UpdateHolder edits name, SKU, prices and cost basis. Zero-valued fields are
// left unchanged. Stock is untouchable here; it only moves through the
// mutator.
func (c *Catalog) UpdateHolder(ctx context.Context, id string, p HolderParams) (*StockHolder, error) {
	err := c.Store.WithTx(ctx, func(s Store) error {
		h, err := s.GetHolder(ctx, id)
		if err != nil {
			return err
		}
		if h == nil {
			return &NotFoundError{Kind: "holder", ID: id}
		}
		if p.Name != "" {
			h.Name = p.Name
		}
		if p.SKU != "" && p.SKU != h.SKU {
			if err := checkSKUFree(ctx, s, p.SKU); err != nil {
				return err
			}
			h.SKU = p.SKU
		}
		// Zero decimals mean "unchanged", matching the identity fields, so a
		// rename-only update cannot wipe pricing.
		if !p.CostBasis.IsZero() {
			h.CostBasis = p.CostBasis
		}
		if !p.SellPrice.IsZero() {
			h.SellPrice = p.SellPrice
		}
		if p.ChannelPrices != nil {
			h.ChannelPrices = p.ChannelPrices
		}
		h.UpdatedAt = time.Now().UTC()
		return s.SaveHolder(ctx, *h)
	})
	if err != nil {
		return nil, err
	}
	return c.Store.GetHolder(ctx, id)
}

// DeleteHolder removes a holder, cascading to variants and ledger entries.
func (c *Catalog) DeleteHolder(ctx context.Context, id string) error {
	return c.Store.WithTx(ctx, func(s Store) error {
		h, err := s.GetHolder(ctx, id)
		if err != nil {
			return err
		}
		if h == nil {
			return &NotFoundError{Kind: "holder", ID: id}
		}
		return s.DeleteHolder(ctx, id)
	})
}

// ImportProducts creates a batch of flat (variant-less) products with their
// opening stock, all or nothing. This is what the spreadsheet import
// pipeline feeds.
func (c *Catalog) ImportProducts(ctx context.Context, rows []HolderParams) (int, error) {
	if len(rows) == 0 {
		return 0, &ValidationError{Field: "rows", Message: "no rows to import"}
	}
	err := c.Store.WithTx(ctx, func(s Store) error {
		now := time.Now().UTC()
		for _, row := range rows {
			if row.Name == "" || row.SKU == "" {
				return &ValidationError{Field: "rows", Message: "every row needs a name and a SKU"}
			}
			if err := checkSKUFree(ctx, s, row.SKU); err != nil {
				return err
			}
			h := StockHolder{
				ID:            uuid.NewString(),
				Name:          row.Name,
				SKU:           row.SKU,
				CostBasis:     row.CostBasis,
				SellPrice:     row.SellPrice,
				ChannelPrices: row.ChannelPrices,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := s.SaveHolder(ctx, h); err != nil {
				return err
			}
			if err := openStock(ctx, s, h.ID, row.InitialStock); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func createVariant(ctx context.Context, s Store, parentID string, v HolderParams, now time.Time) error {
	if err := checkSKUFree(ctx, s, v.SKU); err != nil {
		return err
	}
	variant := StockHolder{
		ID:            uuid.NewString(),
		ParentID:      parentID,
		Name:          v.Name,
		SKU:           v.SKU,
		CostBasis:     v.CostBasis,
		SellPrice:     v.SellPrice,
		ChannelPrices: v.ChannelPrices,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.SaveHolder(ctx, variant); err != nil {
		return err
	}
	return openStock(ctx, s, variant.ID, v.InitialStock)
}

func openStock(ctx context.Context, s Store, holderID string, initial int64) error {
	if initial == 0 {
		return nil
	}
	if initial < 0 {
		return &ValidationError{Field: "initial_stock", Message: "initial stock cannot be negative"}
	}
	_, err := applyAdjustment(ctx, s, Adjustment{
		HolderID: holderID,
		Change:   initial,
		Kind:     KindInitialStock,
		Note:     "Initial Stock",
	})
	return err
}

func checkSKUFree(ctx context.Context, s Store, sku string) error {
	if sku == "" {
		return nil
	}
	existing, err := s.GetHolderBySKU(ctx, sku)
	if err != nil {
		return err
	}
	if existing != nil {
		return &ValidationError{Field: "sku", Message: "SKU already in use: " + sku}
	}
	return nil
}
