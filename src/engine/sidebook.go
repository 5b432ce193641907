package engine

import (
	"iter"

	"github.com/google/btree"
)

const btreeDegree = 32

// LevelStats is one row of book depth.
type LevelStats struct {
	Price     float32
	Volume    int64
	NumOrders int64
}

// SideBook holds one side of the book. Levels are kept in a B-tree whose minimum is always the
// best price: bids sort descending, asks ascending.
type SideBook struct {
	side        Side
	levels      *btree.BTreeG[*PriceLevel]
	bestPrice   float32
	hasBest     bool
	totalVolume int64
	numOrders   int64
}

func NewSideBook(side Side) *SideBook {
	less := func(a, b *PriceLevel) bool { return a.Price < b.Price }
	if side == Bid {
		less = func(a, b *PriceLevel) bool { return a.Price > b.Price }
	}
	return &SideBook{
		side:   side,
		levels: btree.NewG(btreeDegree, less),
	}
}

func (sb *SideBook) Side() Side {
	return sb.side
}

func (sb *SideBook) InsertOrder(order Order) {
	level, ok := sb.levels.Get(&PriceLevel{Price: order.Price})
	if !ok {
		level = NewPriceLevel(order.Price)
		sb.levels.ReplaceOrInsert(level)
	}
	level.PushBack(order)

	sb.totalVolume += order.Size
	sb.numOrders++

	if !sb.hasBest || sb.better(order.Price, sb.bestPrice) {
		sb.bestPrice = order.Price
		sb.hasBest = true
	}
}

func (sb *SideBook) DeleteOrder(price float32, orderID int64) (Order, error) {
	level, ok := sb.levels.Get(&PriceLevel{Price: price})
	if !ok {
		return Order{}, &PriceLevelNotFoundError{Side: sb.side, Price: price}
	}

	order, err := level.Remove(orderID)
	if err != nil {
		return Order{}, err
	}

	// edge case: never keep an empty level in the tree
	if level.IsEmpty() {
		sb.levels.Delete(level)
	}

	sb.totalVolume -= order.Size
	sb.numOrders--

	if price == sb.bestPrice {
		sb.refreshBestPrice()
	}
	return order, nil
}

// BestPrice returns the cached best price; ok is false when the side is empty.
func (sb *SideBook) BestPrice() (price float32, ok bool) {
	return sb.bestPrice, sb.hasBest
}

func (sb *SideBook) TotalVolume() int64 {
	return sb.totalVolume
}

func (sb *SideBook) NumOrders() int64 {
	return sb.numOrders
}

func (sb *SideBook) NumLevels() int {
	return sb.levels.Len()
}

func (sb *SideBook) IsEmpty() bool {
	return sb.levels.Len() == 0
}

// Order looks up a resting order by price and id.
func (sb *SideBook) Order(price float32, orderID int64) (Order, bool) {
	level, ok := sb.levels.Get(&PriceLevel{Price: price})
	if !ok {
		return Order{}, false
	}
	return level.Find(orderID)
}

// Depth yields up to maxLevels levels, best to worst. The sequence is lazy and can be ranged
// over again; it must not be consumed across a mutation of the book.
func (sb *SideBook) Depth(maxLevels int) iter.Seq[LevelStats] {
	return func(yield func(LevelStats) bool) {
		if maxLevels <= 0 {
			return
		}
		count := 0
		sb.levels.Ascend(func(level *PriceLevel) bool {
			if !yield(LevelStats{Price: level.Price, Volume: level.TotalVolume, NumOrders: level.NumOrders}) {
				return false
			}
			count++
			return count < maxLevels
		})
	}
}

// Levels yields every price level, best to worst.
func (sb *SideBook) Levels() iter.Seq[*PriceLevel] {
	return func(yield func(*PriceLevel) bool) {
		sb.levels.Ascend(func(level *PriceLevel) bool {
			return yield(level)
		})
	}
}

// Orders yields every resting order, best price first and arrival order within a price.
func (sb *SideBook) Orders() iter.Seq[Order] {
	return func(yield func(Order) bool) {
		for level := range sb.Levels() {
			for o := range level.Orders() {
				if !yield(o) {
					return
				}
			}
		}
	}
}

func (sb *SideBook) better(a, b float32) bool {
	if sb.side == Bid {
		return a > b
	}
	return a < b
}

func (sb *SideBook) refreshBestPrice() {
	level, ok := sb.levels.Min()
	if !ok {
		sb.bestPrice = 0
		sb.hasBest = false
		return
	}
	sb.bestPrice = level.Price
	sb.hasBest = true
}
