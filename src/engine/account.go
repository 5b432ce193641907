package engine

import (
	"github.com/huandu/skiplist"
)

// AccountIndex maps an account to the ids of its resting orders, kept sorted by order id.
// Entries carry the order as submitted so the book can locate it; the book stays the source of
// truth for remaining size.
type AccountIndex struct {
	accounts map[int64]*skiplist.SkipList
}

func NewAccountIndex() *AccountIndex {
	return &AccountIndex{
		accounts: make(map[int64]*skiplist.SkipList),
	}
}

// Add indexes the order under its account. Orders without an account are ignored.
func (ai *AccountIndex) Add(order Order) {
	if order.AccountID == nil {
		return
	}
	ids, ok := ai.accounts[*order.AccountID]
	if !ok {
		ids = skiplist.New(skiplist.Int64)
		ai.accounts[*order.AccountID] = ids
	}
	ids.Set(order.ID, order)
}

// Remove drops the order id from the account. Absent entries are a no-op.
func (ai *AccountIndex) Remove(accountID, orderID int64) bool {
	ids, ok := ai.accounts[accountID]
	if !ok {
		return false
	}
	return ids.Remove(orderID) != nil
}

// Contains reports whether the account currently lists the order id.
func (ai *AccountIndex) Contains(accountID, orderID int64) bool {
	ids, ok := ai.accounts[accountID]
	if !ok {
		return false
	}
	return ids.Get(orderID) != nil
}

// Known reports whether the account has ever had an indexed order.
func (ai *AccountIndex) Known(accountID int64) bool {
	_, ok := ai.accounts[accountID]
	return ok
}

// Entries returns the indexed orders of the account in ascending id order.
func (ai *AccountIndex) Entries(accountID int64) ([]Order, error) {
	ids, ok := ai.accounts[accountID]
	if !ok {
		return nil, &AccountNotFoundError{AccountID: accountID}
	}

	entries := make([]Order, 0, ids.Len())
	for el := ids.Front(); el != nil; el = el.Next() {
		order, _ := el.Value.(Order)
		entries = append(entries, order)
	}
	return entries, nil
}
