package costbasis_test

import (
	"errors"
	"testing"

	"github.com/advisordesk/costbasis-backend/internal/apperrors"
	"github.com/advisordesk/costbasis-backend/internal/costbasis"
	"github.com/advisordesk/costbasis-backend/internal/model"
)

// TestLotBook_FIFO tests oldest-first lot consumption.
//
// WHY: FIFO is the default convention and the fallback for specific
// identification; its ordering and partial-lot arithmetic must be exact.
func TestLotBook_FIFO(t *testing.T) {
	t.Run("sell spanning two lots emits one event per lot", func(t *testing.T) {
		book, err := costbasis.NewLotBook(model.MethodFIFO)
		if err != nil {
			t.Fatalf("NewLotBook() returned unexpected error: %v", err)
		}

		group := []model.Transaction{
			buy("p1", "INFY", 100, 10, day(0)),
			buy("p1", "INFY", 50, 14, day(10)),
			sell("p1", "INFY", 120, 20, day(400)),
		}

		open, events, err := book.Apply(group)
		if err != nil {
			t.Fatalf("Apply() returned unexpected error: %v", err)
		}

		if len(events) != 2 {
			t.Fatalf("Expected 2 consumption events, got %d", len(events))
		}
		if !approxEqual(events[0].Quantity, 100) || !approxEqual(events[0].CostPerUnit, 10) {
			t.Errorf("First event should drain the day-0 lot: %+v", events[0])
		}
		if !approxEqual(events[1].Quantity, 20) || !approxEqual(events[1].CostPerUnit, 14) {
			t.Errorf("Second event should take 20 from the day-10 lot: %+v", events[1])
		}

		if len(open) != 1 {
			t.Fatalf("Expected 1 open lot, got %d", len(open))
		}
		if !approxEqual(open[0].RemainingQuantity, 30) {
			t.Errorf("Expected 30 units remaining, got %v", open[0].RemainingQuantity)
		}
		if !approxEqual(open[0].OriginalQuantity, 50) {
			t.Errorf("OriginalQuantity must not shrink on partial consumption, got %v", open[0].OriginalQuantity)
		}
	})

	t.Run("exhausted lot is removed and never reused", func(t *testing.T) {
		book, _ := costbasis.NewLotBook(model.MethodFIFO)

		group := []model.Transaction{
			buy("p1", "INFY", 10, 10, day(0)),
			sell("p1", "INFY", 10, 12, day(30)),
			buy("p1", "INFY", 5, 20, day(40)),
			sell("p1", "INFY", 5, 25, day(50)),
		}

		open, events, err := book.Apply(group)
		if err != nil {
			t.Fatalf("Apply() returned unexpected error: %v", err)
		}
		if len(open) != 0 {
			t.Errorf("Expected no open lots, got %d", len(open))
		}
		// Second sell must draw from the day-40 lot, not the emptied day-0 lot.
		if !approxEqual(events[1].CostPerUnit, 20) {
			t.Errorf("Expected second sell to consume the new lot at 20, got %v", events[1].CostPerUnit)
		}
	})
}

// TestLotBook_LIFO tests newest-first lot consumption.
func TestLotBook_LIFO(t *testing.T) {
	book, err := costbasis.NewLotBook(model.MethodLIFO)
	if err != nil {
		t.Fatalf("NewLotBook() returned unexpected error: %v", err)
	}

	group := []model.Transaction{
		buy("p1", "INFY", 100, 10, day(0)),
		buy("p1", "INFY", 50, 14, day(10)),
		sell("p1", "INFY", 120, 20, day(400)),
	}

	open, events, err := book.Apply(group)
	if err != nil {
		t.Fatalf("Apply() returned unexpected error: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("Expected 2 consumption events, got %d", len(events))
	}
	if !approxEqual(events[0].Quantity, 50) || !approxEqual(events[0].CostPerUnit, 14) {
		t.Errorf("LIFO should drain the day-10 lot first: %+v", events[0])
	}
	if !approxEqual(events[1].Quantity, 70) || !approxEqual(events[1].CostPerUnit, 10) {
		t.Errorf("LIFO should then take 70 from the day-0 lot: %+v", events[1])
	}
	if len(open) != 1 || !approxEqual(open[0].RemainingQuantity, 30) {
		t.Errorf("Expected 30 units left in the day-0 lot, got %+v", open)
	}
}

// TestLotBook_Average tests pooled consumption.
//
// WHY: Average cost must blend all open lots, deplete them pro-rata so no
// lot empties ahead of the pool, and attribute the earliest surviving lot's
// date for holding-period purposes.
func TestLotBook_Average(t *testing.T) {
	t.Run("consumption carries the pool-weighted cost", func(t *testing.T) {
		book, _ := costbasis.NewLotBook(model.MethodAverage)

		group := []model.Transaction{
			buy("p1", "INFY", 100, 10, day(0)),
			buy("p1", "INFY", 50, 14, day(10)),
			sell("p1", "INFY", 120, 20, day(400)),
		}

		open, events, err := book.Apply(group)
		if err != nil {
			t.Fatalf("Apply() returned unexpected error: %v", err)
		}

		if len(events) != 1 {
			t.Fatalf("Expected a single pooled event, got %d", len(events))
		}
		// Pool: 150 units costing 1700 -> 11.3333... per unit, strictly
		// between the two buy prices.
		if !approxEqual(events[0].CostPerUnit, 1700.0/150.0) {
			t.Errorf("Expected pooled cost 11.33..., got %v", events[0].CostPerUnit)
		}
		if !events[0].PurchaseDate.Equal(day(0)) {
			t.Errorf("Expected earliest surviving lot's date, got %v", events[0].PurchaseDate)
		}

		// Pro-rata: both lots shrink by the same 120/150 ratio.
		if len(open) != 2 {
			t.Fatalf("Expected both lots to survive pro-rata depletion, got %d", len(open))
		}
		if !approxEqual(open[0].RemainingQuantity, 20) {
			t.Errorf("Expected day-0 lot at 20 remaining, got %v", open[0].RemainingQuantity)
		}
		if !approxEqual(open[1].RemainingQuantity, 10) {
			t.Errorf("Expected day-10 lot at 10 remaining, got %v", open[1].RemainingQuantity)
		}
	})

	t.Run("sub-epsilon sell has no lot effect", func(t *testing.T) {
		for _, group := range [][]model.Transaction{
			{sell("p1", "INFY", 1e-10, 20, day(0))},
			{buy("p1", "INFY", 100, 10, day(0)), sell("p1", "INFY", 1e-10, 20, day(10))},
		} {
			book, _ := costbasis.NewLotBook(model.MethodAverage)

			open, events, err := book.Apply(group)
			if err != nil {
				t.Fatalf("Apply() returned unexpected error: %v", err)
			}
			if len(events) != 0 {
				t.Errorf("A sub-epsilon sell must not emit events, got %d", len(events))
			}
			for _, lot := range open {
				if !approxEqual(lot.RemainingQuantity, lot.OriginalQuantity) {
					t.Errorf("A sub-epsilon sell must not touch lots, got %+v", lot)
				}
			}
		}
	})

	t.Run("selling the whole pool empties every lot", func(t *testing.T) {
		book, _ := costbasis.NewLotBook(model.MethodAverage)

		group := []model.Transaction{
			buy("p1", "INFY", 100, 10, day(0)),
			buy("p1", "INFY", 50, 14, day(10)),
			sell("p1", "INFY", 150, 20, day(400)),
		}

		open, _, err := book.Apply(group)
		if err != nil {
			t.Fatalf("Apply() returned unexpected error: %v", err)
		}
		if len(open) != 0 {
			t.Errorf("Expected empty book after full pool sale, got %d lots", len(open))
		}
	})
}

// TestLotBook_Specific tests specific-identification consumption.
func TestLotBook_Specific(t *testing.T) {
	t.Run("consumes designated lots in order", func(t *testing.T) {
		book, _ := costbasis.NewLotBook(model.MethodSpecific)

		lot1 := buy("p1", "INFY", 100, 10, day(0))
		lot2 := buy("p1", "INFY", 50, 14, day(10))
		sale := sell("p1", "INFY", 40, 20, day(400))
		sale.LotIDs = []string{lot2.ID}

		_, events, err := book.Apply([]model.Transaction{lot1, lot2, sale})
		if err != nil {
			t.Fatalf("Apply() returned unexpected error: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(events))
		}
		if events[0].LotID != lot2.ID || !approxEqual(events[0].CostPerUnit, 14) {
			t.Errorf("Expected the designated day-10 lot, got %+v", events[0])
		}
	})

	t.Run("falls back to FIFO when no lots designated", func(t *testing.T) {
		book, _ := costbasis.NewLotBook(model.MethodSpecific)

		group := []model.Transaction{
			buy("p1", "INFY", 100, 10, day(0)),
			buy("p1", "INFY", 50, 14, day(10)),
			sell("p1", "INFY", 120, 20, day(400)),
		}

		_, events, err := book.Apply(group)
		if err != nil {
			t.Fatalf("Apply() returned unexpected error: %v", err)
		}
		if len(events) != 2 || !approxEqual(events[0].CostPerUnit, 10) {
			t.Errorf("Expected FIFO fallback consuming the day-0 lot first, got %+v", events)
		}
	})

	t.Run("designated lots short of the sell quantity fail the group", func(t *testing.T) {
		book, _ := costbasis.NewLotBook(model.MethodSpecific)

		lot1 := buy("p1", "INFY", 100, 10, day(0))
		lot2 := buy("p1", "INFY", 10, 14, day(10))
		sale := sell("p1", "INFY", 50, 20, day(400))
		sale.LotIDs = []string{lot2.ID}

		open, events, err := book.Apply([]model.Transaction{lot1, lot2, sale})
		if !errors.Is(err, apperrors.ErrInsufficientLots) {
			t.Fatalf("Expected ErrInsufficientLots for the shortfall, got %v", err)
		}
		// The 40-unit remainder must not be reassigned to the undesignated
		// day-0 lot.
		if open != nil || events != nil {
			t.Error("A designation shortfall must not return partial results")
		}
	})

	t.Run("unknown designated lot fails the group", func(t *testing.T) {
		book, _ := costbasis.NewLotBook(model.MethodSpecific)

		lot1 := buy("p1", "INFY", 100, 10, day(0))
		sale := sell("p1", "INFY", 10, 20, day(400))
		sale.LotIDs = []string{"no-such-lot"}

		_, _, err := book.Apply([]model.Transaction{lot1, sale})
		if !errors.Is(err, apperrors.ErrLotNotFound) {
			t.Errorf("Expected ErrLotNotFound, got %v", err)
		}
	})
}

// TestLotBook_OversellGuard tests the data-integrity invariant that a sell
// exceeding open inventory fails rather than clamping.
func TestLotBook_OversellGuard(t *testing.T) {
	for _, method := range model.AllMethods() {
		t.Run(string(method), func(t *testing.T) {
			book, _ := costbasis.NewLotBook(method)

			group := []model.Transaction{
				buy("p1", "INFY", 10, 10, day(0)),
				sell("p1", "INFY", 11, 12, day(30)),
			}

			open, events, err := book.Apply(group)
			if !errors.Is(err, apperrors.ErrInsufficientLots) {
				t.Fatalf("Expected ErrInsufficientLots, got %v", err)
			}
			if open != nil || events != nil {
				t.Error("Oversell must not return partial results")
			}
		})
	}
}

// TestLotBook_Conservation tests quantity and cost conservation across
// consumption events.
//
// WHY: The sum of event quantities must equal the sell quantity and the sum
// of event cost bases must equal the cost removed from the lots; any drift
// here corrupts tax reporting invisibly.
func TestLotBook_Conservation(t *testing.T) {
	for _, method := range []model.CostBasisMethod{model.MethodFIFO, model.MethodLIFO, model.MethodAverage} {
		t.Run(string(method), func(t *testing.T) {
			book, _ := costbasis.NewLotBook(method)

			group := []model.Transaction{
				buy("p1", "INFY", 100, 10, day(0)),
				buy("p1", "INFY", 60, 12, day(5)),
				buy("p1", "INFY", 40, 15, day(20)),
				sell("p1", "INFY", 130, 18, day(200)),
				sell("p1", "INFY", 25, 19, day(250)),
			}

			open, events, err := book.Apply(group)
			if err != nil {
				t.Fatalf("Apply() returned unexpected error: %v", err)
			}

			var consumed float64
			var consumedCost float64
			for _, ev := range events {
				if ev.Quantity <= 0 {
					t.Errorf("Event quantity must be positive, got %v", ev.Quantity)
				}
				consumed += ev.Quantity
				consumedCost += ev.Quantity * ev.CostPerUnit
			}
			if !approxEqual(consumed, 155) {
				t.Errorf("Expected 155 units consumed in total, got %v", consumed)
			}

			var remaining float64
			var remainingCost float64
			for _, lot := range open {
				if lot.RemainingQuantity < 0 {
					t.Errorf("Negative remaining quantity on lot %s: %v", lot.ID, lot.RemainingQuantity)
				}
				remaining += lot.RemainingQuantity
				remainingCost += lot.RemainingQuantity * lot.CostPerUnit
			}
			if !approxEqual(remaining, 45) {
				t.Errorf("Expected 45 units remaining, got %v", remaining)
			}

			// Total cost in must equal cost consumed plus cost remaining.
			totalCost := 100*10.0 + 60*12.0 + 40*15.0
			if !approxEqual(consumedCost+remainingCost, totalCost) {
				t.Errorf("Cost not conserved: consumed %v + remaining %v != %v",
					consumedCost, remainingCost, totalCost)
			}
		})
	}
}

// TestLotBook_PassThroughTypes tests that non-trade transactions have no lot
// effect.
func TestLotBook_PassThroughTypes(t *testing.T) {
	book, _ := costbasis.NewLotBook(model.MethodFIFO)

	group := []model.Transaction{
		buy("p1", "INFY", 100, 10, day(0)),
		newTx("p1", "INFY", "dividend", 0, 0, day(5)),
		newTx("p1", "INFY", "fee", 0, 0, day(6)),
		newTx("p1", "INFY", "split", 0, 0, day(7)),
		newTx("p1", "INFY", "transfer", 0, 0, day(8)),
	}

	open, events, err := book.Apply(group)
	if err != nil {
		t.Fatalf("Apply() returned unexpected error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("Pass-through types must not emit events, got %d", len(events))
	}
	if len(open) != 1 || !approxEqual(open[0].RemainingQuantity, 100) {
		t.Errorf("Pass-through types must not touch lots, got %+v", open)
	}
}

// TestNewLotBook_UnknownMethod tests method validation at construction.
func TestNewLotBook_UnknownMethod(t *testing.T) {
	_, err := costbasis.NewLotBook("hifo")
	if !errors.Is(err, apperrors.ErrUnknownMethod) {
		t.Errorf("Expected ErrUnknownMethod, got %v", err)
	}
}
