package engine

// MatchMarketOrder consumes up to size units of resting liquidity from this side, best price
// first and earliest arrival first within a price. Each fill is a copy of the matched order,
// or a size-reduced copy for the order that absorbed the remainder. The status is
// StatusIncomplete when the side ran dry before size was filled.
func (sb *SideBook) MatchMarketOrder(size int64) ([]Order, MatchStatus, error) {
	return sb.match(size, nil, nil)
}

// match is the walk behind MatchMarketOrder. A non-nil limit stops the walk at the first level
// priced worse than it. onConsumed is called for every resting order that leaves the book.
func (sb *SideBook) match(size int64, limit *float32, onConsumed func(Order)) ([]Order, MatchStatus, error) {
	if size <= 0 {
		return nil, StatusIncomplete, &InvalidOrderSizeError{Size: size}
	}

	fills := make([]Order, 0, 4)
	remaining := size

	for remaining > 0 {
		level, ok := sb.levels.Min()
		if !ok {
			break
		}
		if limit != nil && sb.better(*limit, level.Price) {
			break
		}

		// whole level fits in what is left: take it with one aggregate update
		if remaining >= level.TotalVolume {
			volume, count := level.TotalVolume, level.NumOrders
			for _, order := range level.drain() {
				fills = append(fills, order)
				if onConsumed != nil {
					onConsumed(order)
				}
			}
			remaining -= volume
			sb.totalVolume -= volume
			sb.numOrders -= count
			sb.levels.Delete(level)
			continue
		}

		for remaining > 0 && !level.IsEmpty() {
			order, err := level.PopFront()
			if err != nil {
				break
			}

			if remaining >= order.Size {
				fills = append(fills, order)
				remaining -= order.Size
				sb.totalVolume -= order.Size
				sb.numOrders--
				if onConsumed != nil {
					onConsumed(order)
				}
				continue
			}

			// split: the remainder keeps its place at the head of the level
			level.PushFront(order.WithSize(order.Size - remaining))
			fills = append(fills, order.WithSize(remaining))
			sb.totalVolume -= remaining
			remaining = 0
		}

		if level.IsEmpty() {
			sb.levels.Delete(level)
		}
	}

	sb.refreshBestPrice()

	if remaining > 0 {
		return fills, StatusIncomplete, nil
	}
	return fills, StatusComplete, nil
}
