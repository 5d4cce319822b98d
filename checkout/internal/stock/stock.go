package stock

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/greenbasket/grocer/checkout/internal/backend"
	"github.com/greenbasket/grocer/checkout/internal/cart"
	"github.com/greenbasket/grocer/internal/log"
)

// Verifier is the slice of the backend client the reconciler needs.
type Verifier interface {
	VerifyStock(c context.Context, items []backend.StockQuery) (backend.StockVerification, error)
}

// ReducedItem records a quantity capped to what the stock authority can
// actually fulfill.
type ReducedItem struct {
	Name        string `json:"name"`
	OldQuantity int64  `json:"oldQuantity"`
	NewQuantity int64  `json:"newQuantity"`
}

// RemovedItem records a line dropped because nothing could be fulfilled.
type RemovedItem struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Report is what the reconciliation changed. Clean reports have empty
// slices on both sides.
type Report struct {
	Reduced []ReducedItem `json:"reduced"`
	Removed []RemovedItem `json:"removed"`
}

func (r Report) Clean() bool {
	return len(r.Reduced) == 0 && len(r.Removed) == 0
}

// Reconcile verifies the whole cart against the stock authority in a single
// batched call and mutates the cart to match reality: quantities are capped
// to the available amount and fully unavailable lines are removed. The cart
// mutations stand even if the caller later abandons the checkout attempt;
// they reflect current stock, not a provisional hold.
func Reconcile(c context.Context, verifier Verifier, store *cart.Store) (Report, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Reconcile").
		Str(log.KeyProcess, "reconciling stock").
		Logger()

	items := store.Items()
	if len(items) == 0 {
		return Report{Reduced: []ReducedItem{}, Removed: []RemovedItem{}}, nil
	}

	queries := make([]backend.StockQuery, 0, len(items))
	for _, item := range items {
		queries = append(queries, backend.StockQuery{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	logger.Info().Msg("verifying cart quantities against stock authority")
	verification, err := verifier.VerifyStock(c, queries)
	if err != nil {
		err = fmt.Errorf("failed verifying stock with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return Report{}, err
	}

	report := Report{Reduced: []ReducedItem{}, Removed: []RemovedItem{}}
	if verification.AllAvailable {
		logger.Info().Msg("verified cart quantities, everything available")
		return report, nil
	}

	for _, unavailable := range verification.Unavailable {
		current := store.ItemQuantity(unavailable.ProductID)
		if current == 0 {
			continue
		}
		name := unavailable.Name
		if name == "" {
			name = itemName(items, unavailable)
		}
		if unavailable.AvailableQuantity <= 0 {
			store.RemoveItem(unavailable.ProductID)
			report.Removed = append(report.Removed, RemovedItem{
				Name:   name,
				Reason: unavailable.Reason,
			})
			continue
		}
		if unavailable.AvailableQuantity < current {
			store.UpdateQuantity(unavailable.ProductID, unavailable.AvailableQuantity)
			report.Reduced = append(report.Reduced, ReducedItem{
				Name:        name,
				OldQuantity: current,
				NewQuantity: unavailable.AvailableQuantity,
			})
		}
	}

	logger.Info().
		Any(log.KeyStockChanges, report).
		Msg("reconciled cart against stock authority")
	return report, nil
}

func itemName(items []cart.LineItem, unavailable backend.UnavailableItem) string {
	for _, item := range items {
		if item.ProductID == unavailable.ProductID {
			return item.Name
		}
	}
	return unavailable.ProductID.String()
}
