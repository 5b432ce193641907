package engine

import (
	"iter"
	"math"
)

// Config gates optional policy. None of it changes the market-order walk.
type Config struct {
	// AutoCross matches an incoming limit order against the opposite side when its price
	// crosses, resting only the unfilled remainder.
	AutoCross bool
}

// Quote is one side of the top of book.
type Quote struct {
	Price float32
	Valid bool
}

// LevelSeries is depth reshaped into parallel columns, best to worst.
type LevelSeries struct {
	Price  []float32
	Volume []int64
	Orders []int64
}

type DepthInfo struct {
	Bid LevelSeries
	Ask LevelSeries
}

type orderRef struct {
	side      Side
	price     float32
	accountID *int64
}

// OrderBook owns both sides, the account index and a reference for every resting order id.
// It is not safe for concurrent use; callers serialize access to it.
type OrderBook struct {
	Bids     *SideBook
	Asks     *SideBook
	accounts *AccountIndex
	resting  map[int64]orderRef
	config   Config
}

func NewOrderBook(config Config) *OrderBook {
	return &OrderBook{
		Bids:     NewSideBook(Bid),
		Asks:     NewSideBook(Ask),
		accounts: NewAccountIndex(),
		resting:  make(map[int64]orderRef),
		config:   config,
	}
}

func (ob *OrderBook) Config() Config {
	return ob.config
}

func (ob *OrderBook) sideBook(side Side) *SideBook {
	if side == Bid {
		return ob.Bids
	}
	return ob.Asks
}

// SubmitLimitOrder rests a limit order. All validation runs before the book is touched. Fills
// are only produced when AutoCross is enabled and the price crosses the opposite best.
func (ob *OrderBook) SubmitLimitOrder(orderID int64, price float32, size int64, side Side, accountID *int64) ([]Order, error) {
	if !side.Valid() {
		return nil, &InvalidSideError{Value: side}
	}
	if size <= 0 {
		return nil, &InvalidOrderSizeError{Size: size}
	}
	if math.IsNaN(float64(price)) || math.IsInf(float64(price), 0) {
		return nil, &InvalidPriceError{Price: price}
	}
	if _, exists := ob.resting[orderID]; exists {
		return nil, &DuplicateOrderError{OrderID: orderID}
	}
	// edge case: side and level totals are int64 sums and must not wrap
	if size > math.MaxInt64-ob.sideBook(side).TotalVolume() {
		return nil, &InvalidOrderSizeError{Size: size}
	}

	order := NewOrder(orderID, side, price, size, accountID)

	var fills []Order
	if ob.config.AutoCross && ob.crosses(order) {
		limit := order.Price
		// size > 0 was checked above, match cannot fail
		fills, _, _ = ob.sideBook(side.Opposite()).match(order.Size, &limit, ob.forget)
		for _, f := range fills {
			order.Size -= f.Size
		}
		if order.Size == 0 {
			return fills, nil
		}
	}

	ob.sideBook(side).InsertOrder(order)
	ob.resting[order.ID] = orderRef{side: side, price: price, accountID: order.AccountID}
	ob.accounts.Add(order)

	return fills, nil
}

func (ob *OrderBook) crosses(order Order) bool {
	best, ok := ob.sideBook(order.Side.Opposite()).BestPrice()
	if !ok {
		return false
	}
	if order.Side == Bid {
		return order.Price >= best
	}
	return order.Price <= best
}

// CancelLimitOrder removes a resting order. A wrong price or id surfaces as
// PriceLevelNotFoundError or OrderNotFoundError and leaves the book unchanged.
func (ob *OrderBook) CancelLimitOrder(orderID int64, price float32, side Side, accountID *int64) (Order, error) {
	if !side.Valid() {
		return Order{}, &InvalidSideError{Value: side}
	}

	order, err := ob.sideBook(side).DeleteOrder(price, orderID)
	if err != nil {
		return Order{}, err
	}

	ob.forget(order)
	// edge case: caller-supplied account that the order was not indexed under is a no-op
	if accountID != nil {
		ob.accounts.Remove(*accountID, orderID)
	}
	return order, nil
}

// forget drops a departed order from the reference map and the account index.
func (ob *OrderBook) forget(order Order) {
	ref, ok := ob.resting[order.ID]
	if !ok {
		return
	}
	delete(ob.resting, order.ID)
	if ref.accountID != nil {
		ob.accounts.Remove(*ref.accountID, order.ID)
	}
}

// SubmitMarketOrder executes against the opposite side: a Bid buys from asks, an Ask sells to
// bids. Orders consumed in full leave the account index; split remainders stay indexed.
func (ob *OrderBook) SubmitMarketOrder(side Side, size int64) ([]Order, MatchStatus, error) {
	if !side.Valid() {
		return nil, StatusIncomplete, &InvalidSideError{Value: side}
	}
	return ob.sideBook(side.Opposite()).match(size, nil, ob.forget)
}

func (ob *OrderBook) BestBidAsk() (bid Quote, ask Quote) {
	bid.Price, bid.Valid = ob.Bids.BestPrice()
	ask.Price, ask.Valid = ob.Asks.BestPrice()
	return bid, ask
}

// Volume returns the resting volume per side.
func (ob *OrderBook) Volume() (bid int64, ask int64) {
	return ob.Bids.TotalVolume(), ob.Asks.TotalVolume()
}

// OrderCount returns the number of resting orders per side.
func (ob *OrderBook) OrderCount() (bid int64, ask int64) {
	return ob.Bids.NumOrders(), ob.Asks.NumOrders()
}

func (ob *OrderBook) BookDepthInfo(maxDepth int) DepthInfo {
	return DepthInfo{
		Bid: collectSeries(ob.Bids.Depth(maxDepth)),
		Ask: collectSeries(ob.Asks.Depth(maxDepth)),
	}
}

func collectSeries(levels iter.Seq[LevelStats]) LevelSeries {
	series := LevelSeries{
		Price:  make([]float32, 0),
		Volume: make([]int64, 0),
		Orders: make([]int64, 0),
	}
	for level := range levels {
		series.Price = append(series.Price, level.Price)
		series.Volume = append(series.Volume, level.Volume)
		series.Orders = append(series.Orders, level.NumOrders)
	}
	return series
}

// GetAccountOrders returns the account's resting orders ordered by id, with current sizes.
// An account that never rested an order yields AccountNotFoundError; one whose orders are all
// gone yields an empty slice.
func (ob *OrderBook) GetAccountOrders(accountID int64) ([]Order, error) {
	entries, err := ob.accounts.Entries(accountID)
	if err != nil {
		return nil, err
	}

	orders := make([]Order, 0, len(entries))
	for _, entry := range entries {
		if live, ok := ob.sideBook(entry.Side).Order(entry.Price, entry.ID); ok {
			orders = append(orders, live)
		}
	}
	return orders, nil
}

// Order looks up a resting order by id.
func (ob *OrderBook) Order(orderID int64) (Order, bool) {
	ref, ok := ob.resting[orderID]
	if !ok {
		return Order{}, false
	}
	return ob.sideBook(ref.side).Order(ref.price, orderID)
}

// Orders yields the resting orders of one side, best to worst then arrival order.
func (ob *OrderBook) Orders(side Side) iter.Seq[Order] {
	if !side.Valid() {
		return func(func(Order) bool) {}
	}
	return ob.sideBook(side).Orders()
}
