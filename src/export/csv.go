// Package export writes and reads resting orders in the fixed row format
// ID,SIDE,SIZE,PRICE,ACCOUNT.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"limit-order-book/src/engine"
)

var Header = []string{"ID", "SIDE", "SIZE", "PRICE", "ACCOUNT"}

// WriteCSV writes bids then asks, each best price first and in arrival order within a price.
// The book must not be mutated while this runs.
func WriteCSV(w io.Writer, book *engine.OrderBook, header bool) error {
	cw := csv.NewWriter(w)

	if header {
		if err := cw.Write(Header); err != nil {
			return err
		}
	}

	for _, side := range []engine.Side{engine.Bid, engine.Ask} {
		for order := range book.Orders(side) {
			if err := cw.Write(Row(order)); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// Row formats one order. float32 prices go through decimal so 100.1 prints as 100.1 rather
// than its widened float64 form.
func Row(order engine.Order) []string {
	account := ""
	if order.AccountID != nil {
		account = strconv.FormatInt(*order.AccountID, 10)
	}
	return []string{
		strconv.FormatInt(order.ID, 10),
		order.Side.String(),
		strconv.FormatInt(order.Size, 10),
		decimal.NewFromFloat32(order.Price).String(),
		account,
	}
}

// ParseRow is the inverse of Row.
func ParseRow(record []string) (engine.Order, error) {
	if len(record) != len(Header) {
		return engine.Order{}, fmt.Errorf("expected %d fields, got %d", len(Header), len(record))
	}

	id, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
	if err != nil {
		return engine.Order{}, fmt.Errorf("id: %w", err)
	}
	side, err := engine.ParseSide(record[1])
	if err != nil {
		return engine.Order{}, err
	}
	size, err := strconv.ParseInt(strings.TrimSpace(record[2]), 10, 64)
	if err != nil {
		return engine.Order{}, fmt.Errorf("size: %w", err)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(record[3]))
	if err != nil {
		return engine.Order{}, fmt.Errorf("price: %w", err)
	}
	p64, _ := price.Float64()

	var account *int64
	if acct := strings.TrimSpace(record[4]); acct != "" {
		v, err := strconv.ParseInt(acct, 10, 64)
		if err != nil {
			return engine.Order{}, fmt.Errorf("account: %w", err)
		}
		account = &v
	}

	return engine.NewOrder(id, side, float32(p64), size, account), nil
}

// LoadCSV submits every row of r as a limit order, in file order, and returns how many were
// loaded. A first row equal to Header is skipped. Loading stops at the first bad row.
func LoadCSV(r io.Reader, book *engine.OrderBook) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	loaded := 0
	line := 0
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return loaded, nil
		}
		if err != nil {
			return loaded, err
		}
		line++

		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), Header[0]) {
			continue
		}

		order, err := ParseRow(record)
		if err != nil {
			return loaded, fmt.Errorf("line %d: %w", line, err)
		}
		if _, err := book.SubmitLimitOrder(order.ID, order.Price, order.Size, order.Side, order.AccountID); err != nil {
			return loaded, fmt.Errorf("line %d: %w", line, err)
		}
		loaded++
	}
}
