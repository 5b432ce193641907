package models

type SubmitOrderRequest struct {
	Type      string  `json:"type"` // LIMIT or MARKET
	ID        int64   `json:"id"`   // required for LIMIT, caller assigned
	Side      string  `json:"side"` // BID/ASK (BUY/SELL accepted)
	Price     float32 `json:"price"`
	Size      int64   `json:"size"`
	AccountID *int64  `json:"account_id,omitempty"`
}

type OrderInfo struct {
	ID        int64   `json:"id"`
	Side      string  `json:"side"`
	Size      int64   `json:"size"`
	Price     float32 `json:"price"`
	AccountID *int64  `json:"account_id,omitempty"`
}

type SubmitLimitResponse struct {
	OrderID int64       `json:"order_id"`
	Status  string      `json:"status"` // RESTING or FILLED
	Resting *OrderInfo  `json:"resting,omitempty"`
	Fills   []OrderInfo `json:"fills,omitempty"`
}

type SubmitMarketResponse struct {
	ExecutionID    string      `json:"execution_id"`
	Status         string      `json:"status"` // COMPLETE or INCOMPLETE
	FilledQuantity int64       `json:"filled_quantity"`
	Fills          []OrderInfo `json:"fills"`
}

type CancelOrderResponse struct {
	OrderID int64     `json:"order_id"`
	Status  string    `json:"status"`
	Order   OrderInfo `json:"order"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type LevelSeries struct {
	Price  []float32 `json:"price"`
	Volume []int64   `json:"volume"`
	Orders []int64   `json:"orders"`
}

type BookDepthResponse struct {
	Timestamp int64       `json:"timestamp"` // unix timestamp in milliseconds
	Bid       LevelSeries `json:"BID"`       // best (highest) first
	Ask       LevelSeries `json:"ASK"`       // best (lowest) first
}

type BestBidAskResponse struct {
	Bid *float32 `json:"bid"` // null when the side is empty
	Ask *float32 `json:"ask"`
}

type AccountOrdersResponse struct {
	AccountID int64       `json:"account_id"`
	Orders    []OrderInfo `json:"orders"` // ascending order id
}

type HealthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	OrdersResting int64  `json:"orders_resting"`
}

type MetricsResponse struct {
	LimitOrdersReceived    int64   `json:"limit_orders_received"`
	MarketOrdersReceived   int64   `json:"market_orders_received"`
	OrdersCancelled        int64   `json:"orders_cancelled"`
	FillsExecuted          int64   `json:"fills_executed"`
	BidOrders              int64   `json:"bid_orders"`
	AskOrders              int64   `json:"ask_orders"`
	BidVolume              int64   `json:"bid_volume"`
	AskVolume              int64   `json:"ask_volume"`
	LatencyP50Ms           float64 `json:"latency_p50_ms"`
	LatencyP99Ms           float64 `json:"latency_p99_ms"`
	LatencyP999Ms          float64 `json:"latency_p999_ms"`
	ThroughputOrdersPerSec float64 `json:"throughput_orders_per_sec"`
}
