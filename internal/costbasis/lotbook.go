package costbasis

import (
	"fmt"

	"github.com/advisordesk/costbasis-backend/internal/apperrors"
	"github.com/advisordesk/costbasis-backend/internal/model"
)

// quantityEpsilon absorbs float64 noise when comparing unit quantities.
// Remaining quantities below it are treated as fully consumed.
const quantityEpsilon = 1e-9

// consumeFunc applies one sell transaction against the open lots and returns
// the consumption events it produced.
type consumeFunc func(tx model.Transaction) ([]model.ConsumptionEvent, error)

// LotBook maintains the ordered set of open tax lots for a single
// (portfolio, security) group. A book is created fresh per report
// invocation and owns its lots exclusively; nothing is shared across groups
// or across calls.
//
// The consumption strategy is bound once at construction from the selected
// cost-basis method.
type LotBook struct {
	method  model.CostBasisMethod
	lots    []*model.TaxLot // chronological insertion order
	consume consumeFunc
}

// NewLotBook creates an empty lot book bound to the given accounting method.
// Returns apperrors.ErrUnknownMethod for unsupported method values.
func NewLotBook(method model.CostBasisMethod) (*LotBook, error) {
	b := &LotBook{method: method}
	switch method {
	case model.MethodFIFO:
		b.consume = b.consumeFIFO
	case model.MethodLIFO:
		b.consume = b.consumeLIFO
	case model.MethodAverage:
		b.consume = b.consumeAverage
	case model.MethodSpecific:
		b.consume = b.consumeSpecific
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownMethod, method)
	}
	return b, nil
}

// Apply processes one chronologically sorted transaction group. Buys create
// lots, sells consume them under the book's method, and every other
// transaction type passes through with no lot effect.
//
// On success it returns the lots still open (in purchase order) and the
// consumption events in the order they occurred. A sell that exceeds the
// open inventory fails the whole group with apperrors.ErrInsufficientLots;
// no partial result is returned.
func (b *LotBook) Apply(group []model.Transaction) ([]model.TaxLot, []model.ConsumptionEvent, error) {
	var events []model.ConsumptionEvent

	for _, tx := range group {
		switch {
		case tx.IsBuy():
			// The buy transaction ID doubles as the lot ID, keeping lot
			// identity stable across recomputations.
			b.lots = append(b.lots, &model.TaxLot{
				ID:                tx.ID,
				PortfolioID:       tx.PortfolioID,
				SecurityID:        tx.SecurityID,
				PurchaseDate:      tx.TradeDate,
				OriginalQuantity:  tx.Quantity,
				RemainingQuantity: tx.Quantity,
				CostPerUnit:       tx.Price,
			})
		case tx.IsSell():
			if tx.Quantity <= quantityEpsilon {
				// Indistinguishable from zero; no lot effect.
				continue
			}
			if tx.Quantity > b.totalRemaining()+quantityEpsilon {
				return nil, nil, fmt.Errorf(
					"%w: sell of %v units of %s on %s against %v held",
					apperrors.ErrInsufficientLots,
					tx.Quantity, tx.SecurityID, tx.TradeDate.Format("2006-01-02"),
					b.totalRemaining(),
				)
			}
			sellEvents, err := b.consume(tx)
			if err != nil {
				return nil, nil, err
			}
			events = append(events, sellEvents...)
			b.dropEmptyLots()
		default:
			// dividend, fee, split, transfer: no lot effect.
		}
	}

	open := make([]model.TaxLot, 0, len(b.lots))
	for _, lot := range b.lots {
		open = append(open, *lot)
	}
	return open, events, nil
}

// totalRemaining sums the remaining quantity across all open lots.
func (b *LotBook) totalRemaining() float64 {
	var total float64
	for _, lot := range b.lots {
		total += lot.RemainingQuantity
	}
	return total
}

// dropEmptyLots removes fully consumed lots from the active set. A removed
// lot is never resurrected.
func (b *LotBook) dropEmptyLots() {
	kept := b.lots[:0]
	for _, lot := range b.lots {
		if lot.RemainingQuantity > quantityEpsilon {
			kept = append(kept, lot)
		}
	}
	b.lots = kept
}

// takeFromLot consumes up to qty units from a single lot and returns the
// resulting event. The caller guarantees qty <= lot.RemainingQuantity.
func takeFromLot(lot *model.TaxLot, qty float64, tx model.Transaction) model.ConsumptionEvent {
	lot.RemainingQuantity -= qty
	if lot.RemainingQuantity < quantityEpsilon {
		lot.RemainingQuantity = 0
	}
	return model.ConsumptionEvent{
		LotID:            lot.ID,
		PortfolioID:      tx.PortfolioID,
		SecurityID:       tx.SecurityID,
		SecurityName:     tx.SecurityName,
		PurchaseDate:     lot.PurchaseDate,
		SellDate:         tx.TradeDate,
		Quantity:         qty,
		CostPerUnit:      lot.CostPerUnit,
		SellPricePerUnit: tx.Price,
	}
}

// consumeOrdered walks the given lots in order, draining each until the sell
// quantity is satisfied. Shared by the FIFO, LIFO and specific strategies.
func consumeOrdered(lots []*model.TaxLot, remaining float64, tx model.Transaction) ([]model.ConsumptionEvent, float64) {
	var events []model.ConsumptionEvent
	for _, lot := range lots {
		if remaining <= quantityEpsilon {
			break
		}
		if lot.RemainingQuantity <= quantityEpsilon {
			continue
		}
		take := remaining
		if lot.RemainingQuantity < take {
			take = lot.RemainingQuantity
		}
		events = append(events, takeFromLot(lot, take, tx))
		remaining -= take
	}
	return events, remaining
}

// consumeFIFO drains the earliest-purchased lot first.
func (b *LotBook) consumeFIFO(tx model.Transaction) ([]model.ConsumptionEvent, error) {
	events, _ := consumeOrdered(b.lots, tx.Quantity, tx)
	return events, nil
}

// consumeLIFO drains the most recently purchased lot first.
func (b *LotBook) consumeLIFO(tx model.Transaction) ([]model.ConsumptionEvent, error) {
	reversed := make([]*model.TaxLot, len(b.lots))
	for i, lot := range b.lots {
		reversed[len(b.lots)-1-i] = lot
	}
	events, _ := consumeOrdered(reversed, tx.Quantity, tx)
	return events, nil
}

// consumeAverage treats the whole open set as one pool. The consumed units
// carry the quantity-weighted average cost over all remaining lots at that
// instant, and the depletion is applied pro-rata across the lots so no lot
// empties ahead of the pool. The pool's earliest surviving lot supplies the
// nominal purchase date for holding-period classification.
func (b *LotBook) consumeAverage(tx model.Transaction) ([]model.ConsumptionEvent, error) {
	pool := b.totalRemaining()
	var poolCost float64
	for _, lot := range b.lots {
		poolCost += lot.RemainingQuantity * lot.CostPerUnit
	}
	avgCost := poolCost / pool

	earliest := b.lots[0]
	for _, lot := range b.lots {
		if lot.PurchaseDate.Before(earliest.PurchaseDate) {
			earliest = lot
		}
	}

	ratio := tx.Quantity / pool
	for _, lot := range b.lots {
		lot.RemainingQuantity -= lot.RemainingQuantity * ratio
		if lot.RemainingQuantity < quantityEpsilon {
			lot.RemainingQuantity = 0
		}
	}

	event := model.ConsumptionEvent{
		LotID:            earliest.ID,
		PortfolioID:      tx.PortfolioID,
		SecurityID:       tx.SecurityID,
		SecurityName:     tx.SecurityName,
		PurchaseDate:     earliest.PurchaseDate,
		SellDate:         tx.TradeDate,
		Quantity:         tx.Quantity,
		CostPerUnit:      avgCost,
		SellPricePerUnit: tx.Price,
	}
	return []model.ConsumptionEvent{event}, nil
}

// consumeSpecific drains the lots the sell designates, in the order given.
// A sell with no designated lots falls back to FIFO ordering. Designated
// lots that cannot cover the full quantity fail the group; the shortfall is
// never reassigned to undesignated lots, since that would silently change
// the tax outcome the client chose.
func (b *LotBook) consumeSpecific(tx model.Transaction) ([]model.ConsumptionEvent, error) {
	if len(tx.LotIDs) == 0 {
		return b.consumeFIFO(tx)
	}

	byID := make(map[string]*model.TaxLot, len(b.lots))
	for _, lot := range b.lots {
		byID[lot.ID] = lot
	}

	designated := make([]*model.TaxLot, 0, len(tx.LotIDs))
	for _, id := range tx.LotIDs {
		lot, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: lot %s for sell transaction %s", apperrors.ErrLotNotFound, id, tx.ID)
		}
		designated = append(designated, lot)
	}

	events, remaining := consumeOrdered(designated, tx.Quantity, tx)
	if remaining > quantityEpsilon {
		return nil, fmt.Errorf(
			"%w: designated lots cover %v of %v units for sell transaction %s",
			apperrors.ErrInsufficientLots,
			tx.Quantity-remaining, tx.Quantity, tx.ID,
		)
	}
	return events, nil
}
