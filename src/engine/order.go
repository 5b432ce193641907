package engine

import (
	"strings"
)

type Side int8

const (
	Bid Side = 1
	Ask Side = 2
)

func (s Side) Valid() bool {
	return s == Bid || s == Ask
}

// Opposite returns the side a market order on s consumes.
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

func (s Side) String() string {
	switch s {
	case Bid:
		return "BID"
	case Ask:
		return "ASK"
	default:
		return "INVALID"
	}
}

// ParseSide accepts BID/ASK as well as the BUY/SELL spelling used by order entry clients.
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BID", "BUY":
		return Bid, nil
	case "ASK", "SELL":
		return Ask, nil
	}
	return 0, &InvalidSideError{Value: s}
}

type MatchStatus string

const (
	StatusComplete   MatchStatus = "COMPLETE"
	StatusIncomplete MatchStatus = "INCOMPLETE"
)

// Order is a value record. Resting orders are owned by their price level; everything handed
// out of the book (fills, snapshots, account queries) is a copy.
type Order struct {
	ID        int64
	Side      Side
	Size      int64 // remaining quantity
	Price     float32
	AccountID *int64
}

func NewOrder(id int64, side Side, price float32, size int64, accountID *int64) Order {
	o := Order{
		ID:    id,
		Side:  side,
		Size:  size,
		Price: price,
	}
	if accountID != nil {
		acct := *accountID
		o.AccountID = &acct
	}
	return o
}

// Account is a helper for building the optional account argument.
func Account(id int64) *int64 {
	return &id
}

// WithSize returns a copy of the order carrying a different remaining size.
func (o Order) WithSize(size int64) Order {
	o.Size = size
	return o
}

func (o Order) HasAccount() bool {
	return o.AccountID != nil
}
