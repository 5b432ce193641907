package engine

import (
	"iter"
)

// PriceLevel is the FIFO of resting orders at one price. TotalVolume and NumOrders always
// equal the sum of sizes and the queue length.
type PriceLevel struct {
	Price       float32
	TotalVolume int64
	NumOrders   int64
	orders      []Order // fifo ordering for time priority
}

func NewPriceLevel(price float32) *PriceLevel {
	return &PriceLevel{
		Price:  price,
		orders: make([]Order, 0, 4),
	}
}

func (pl *PriceLevel) IsEmpty() bool {
	return len(pl.orders) == 0
}

func (pl *PriceLevel) PushBack(order Order) {
	pl.orders = append(pl.orders, order)
	pl.TotalVolume += order.Size
	pl.NumOrders++
}

// PushFront puts the unconsumed remainder of a split order back at the head of the level.
func (pl *PriceLevel) PushFront(order Order) {
	pl.orders = append(pl.orders, Order{})
	copy(pl.orders[1:], pl.orders)
	pl.orders[0] = order
	pl.TotalVolume += order.Size
	pl.NumOrders++
}

func (pl *PriceLevel) PopFront() (Order, error) {
	if len(pl.orders) == 0 {
		return Order{}, ErrEmptyQueue
	}
	order := pl.orders[0]
	pl.orders[0] = Order{}
	pl.orders = pl.orders[1:]
	pl.TotalVolume -= order.Size
	pl.NumOrders--
	return order, nil
}

func (pl *PriceLevel) Front() (Order, bool) {
	if len(pl.orders) == 0 {
		return Order{}, false
	}
	return pl.orders[0], true
}

// Remove is a linear scan; levels are expected to be shallow.
func (pl *PriceLevel) Remove(orderID int64) (Order, error) {
	for i, o := range pl.orders {
		if o.ID == orderID {
			pl.orders = append(pl.orders[:i], pl.orders[i+1:]...)
			pl.TotalVolume -= o.Size
			pl.NumOrders--
			return o, nil
		}
	}
	return Order{}, &OrderNotFoundError{OrderID: orderID}
}

func (pl *PriceLevel) Find(orderID int64) (Order, bool) {
	for _, o := range pl.orders {
		if o.ID == orderID {
			return o, true
		}
	}
	return Order{}, false
}

// drain empties the level and returns its orders in arrival order.
func (pl *PriceLevel) drain() []Order {
	orders := pl.orders
	pl.orders = make([]Order, 0, 4)
	pl.TotalVolume = 0
	pl.NumOrders = 0
	return orders
}

// Orders yields the resting orders in arrival order.
func (pl *PriceLevel) Orders() iter.Seq[Order] {
	return func(yield func(Order) bool) {
		for _, o := range pl.orders {
			if !yield(o) {
				return
			}
		}
	}
}
