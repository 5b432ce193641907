package handlers

import (
	"bytes"
	"errors"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"limit-order-book/src/engine"
	"limit-order-book/src/export"
	"limit-order-book/src/models"
	"limit-order-book/src/render"
)

// OrderHandler serves one order book. The engine has no internal locking, so every call into
// the book, reads included, goes through bookMu.
type OrderHandler struct {
	book   *engine.OrderBook
	bookMu sync.Mutex

	StartTime            time.Time
	LimitOrdersReceived  int64
	MarketOrdersReceived int64
	OrdersCancelled      int64
	FillsExecuted        int64

	latencies    []time.Duration
	latenciesMu  sync.RWMutex
	maxLatencies int
}

func NewOrderHandler(book *engine.OrderBook) *OrderHandler {
	maxLatencies := 10000
	if envMax := os.Getenv("METRICS_MAX_LATENCIES"); envMax != "" {
		if parsed, err := strconv.Atoi(envMax); err == nil && parsed > 0 {
			maxLatencies = parsed
		}
	}

	return &OrderHandler{
		book:         book,
		StartTime:    time.Now(),
		latencies:    make([]time.Duration, 0, maxLatencies),
		maxLatencies: maxLatencies,
	}
}

// withBook runs fn while holding the book lock.
func (h *OrderHandler) withBook(fn func(book *engine.OrderBook)) {
	h.bookMu.Lock()
	defer h.bookMu.Unlock()
	fn(h.book)
}

func (h *OrderHandler) SubmitOrder(c *fiber.Ctx) error {
	var req models.SubmitOrderRequest

	if err := c.BodyParser(&req); err != nil {
		log.Warn().
			Err(err).
			Str("ip", c.IP()).
			Str("path", c.Path()).
			Msg("Invalid request: malformed JSON")
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid request: malformed JSON",
		})
	}

	side, err := engine.ParseSide(req.Side)
	if err != nil {
		return respondError(c, err)
	}

	switch strings.ToUpper(req.Type) {
	case "LIMIT":
		return h.submitLimit(c, &req, side)
	case "MARKET":
		return h.submitMarket(c, &req, side)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid order: type must be LIMIT or MARKET",
		})
	}
}

func (h *OrderHandler) submitLimit(c *fiber.Ctx, req *models.SubmitOrderRequest, side engine.Side) error {
	atomic.AddInt64(&h.LimitOrdersReceived, 1)
	startTime := time.Now()

	var (
		fills   []engine.Order
		resting engine.Order
		rests   bool
		err     error
	)
	h.withBook(func(book *engine.OrderBook) {
		fills, err = book.SubmitLimitOrder(req.ID, req.Price, req.Size, side, req.AccountID)
		if err == nil {
			resting, rests = book.Order(req.ID)
		}
	})
	h.recordLatency(time.Since(startTime))

	if err != nil {
		log.Warn().
			Err(err).
			Int64("order_id", req.ID).
			Str("side", side.String()).
			Float32("price", req.Price).
			Int64("size", req.Size).
			Msg("Limit order rejected")
		return respondError(c, err)
	}

	atomic.AddInt64(&h.FillsExecuted, int64(len(fills)))

	log.Info().
		Int64("order_id", req.ID).
		Str("side", side.String()).
		Float32("price", req.Price).
		Int64("size", req.Size).
		Int("fills", len(fills)).
		Bool("resting", rests).
		Msg("Limit order accepted")

	response := models.SubmitLimitResponse{
		OrderID: req.ID,
		Status:  "FILLED",
		Fills:   toOrderInfos(fills),
	}
	if rests {
		info := toOrderInfo(resting)
		response.Status = "RESTING"
		response.Resting = &info
		return c.Status(fiber.StatusCreated).JSON(response)
	}
	return c.Status(fiber.StatusOK).JSON(response)
}

func (h *OrderHandler) submitMarket(c *fiber.Ctx, req *models.SubmitOrderRequest, side engine.Side) error {
	atomic.AddInt64(&h.MarketOrdersReceived, 1)
	executionID := uuid.New().String()
	startTime := time.Now()

	var (
		fills  []engine.Order
		status engine.MatchStatus
		err    error
	)
	h.withBook(func(book *engine.OrderBook) {
		fills, status, err = book.SubmitMarketOrder(side, req.Size)
	})
	h.recordLatency(time.Since(startTime))

	if err != nil {
		log.Warn().
			Err(err).
			Str("execution_id", executionID).
			Str("side", side.String()).
			Int64("size", req.Size).
			Msg("Market order rejected")
		return respondError(c, err)
	}

	var filled int64
	for _, f := range fills {
		filled += f.Size
	}
	atomic.AddInt64(&h.FillsExecuted, int64(len(fills)))

	log.Info().
		Str("execution_id", executionID).
		Str("side", side.String()).
		Int64("size", req.Size).
		Int64("filled_quantity", filled).
		Int("fills", len(fills)).
		Str("status", string(status)).
		Msg("Market order executed")

	return c.Status(fiber.StatusOK).JSON(models.SubmitMarketResponse{
		ExecutionID:    executionID,
		Status:         string(status),
		FilledQuantity: filled,
		Fills:          toOrderInfos(fills),
	})
}

func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	orderID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid order id",
		})
	}

	side, err := engine.ParseSide(c.Query("side"))
	if err != nil {
		return respondError(c, err)
	}

	price, err := strconv.ParseFloat(c.Query("price"), 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid cancel: price query parameter is required",
		})
	}

	var accountID *int64
	if acct := c.Query("account_id"); acct != "" {
		parsed, err := strconv.ParseInt(acct, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Error: "Invalid account id",
			})
		}
		accountID = &parsed
	}

	var cancelled engine.Order
	h.withBook(func(book *engine.OrderBook) {
		cancelled, err = book.CancelLimitOrder(orderID, float32(price), side, accountID)
	})

	if err != nil {
		log.Warn().
			Err(err).
			Int64("order_id", orderID).
			Str("side", side.String()).
			Float64("price", price).
			Str("ip", c.IP()).
			Msg("Cancel order failed")
		return respondError(c, err)
	}

	atomic.AddInt64(&h.OrdersCancelled, 1)

	log.Info().
		Int64("order_id", orderID).
		Str("side", side.String()).
		Int64("size", cancelled.Size).
		Str("ip", c.IP()).
		Msg("Order cancelled")

	return c.Status(fiber.StatusOK).JSON(models.CancelOrderResponse{
		OrderID: orderID,
		Status:  "CANCELLED",
		Order:   toOrderInfo(cancelled),
	})
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	orderID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid order id",
		})
	}

	var (
		order engine.Order
		found bool
	)
	h.withBook(func(book *engine.OrderBook) {
		order, found = book.Order(orderID)
	})

	if !found {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
			Error: "Order not found",
		})
	}
	return c.Status(fiber.StatusOK).JSON(toOrderInfo(order))
}

func (h *OrderHandler) GetBookDepth(c *fiber.Ctx) error {
	depth := requestedDepth(c)

	var info engine.DepthInfo
	h.withBook(func(book *engine.OrderBook) {
		info = book.BookDepthInfo(depth)
	})

	return c.Status(fiber.StatusOK).JSON(models.BookDepthResponse{
		Timestamp: time.Now().UnixMilli(),
		Bid:       models.LevelSeries(info.Bid),
		Ask:       models.LevelSeries(info.Ask),
	})
}

func (h *OrderHandler) GetBestBidAsk(c *fiber.Ctx) error {
	var bid, ask engine.Quote
	h.withBook(func(book *engine.OrderBook) {
		bid, ask = book.BestBidAsk()
	})

	response := models.BestBidAskResponse{}
	if bid.Valid {
		response.Bid = &bid.Price
	}
	if ask.Valid {
		response.Ask = &ask.Price
	}
	return c.Status(fiber.StatusOK).JSON(response)
}

func (h *OrderHandler) GetDepthChart(c *fiber.Ctx) error {
	depth := requestedDepth(c)

	width := render.DefaultWidth
	if parsed, err := strconv.Atoi(c.Query("width")); err == nil && parsed > 0 && parsed <= 200 {
		width = parsed
	}

	var info engine.DepthInfo
	h.withBook(func(book *engine.OrderBook) {
		info = book.BookDepthInfo(depth)
	})

	var buf bytes.Buffer
	if err := render.DepthChart(&buf, info, width); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(fiber.StatusOK).Send(buf.Bytes())
}

func (h *OrderHandler) ExportCSV(c *fiber.Ctx) error {
	header := c.Query("header", "1") != "0"

	var (
		buf bytes.Buffer
		err error
	)
	h.withBook(func(book *engine.OrderBook) {
		err = export.WriteCSV(&buf, book, header)
	})
	if err != nil {
		log.Error().Err(err).Msg("CSV export failed")
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Status(fiber.StatusOK).Send(buf.Bytes())
}

func (h *OrderHandler) GetAccountOrders(c *fiber.Ctx) error {
	accountID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid account id",
		})
	}

	var orders []engine.Order
	h.withBook(func(book *engine.OrderBook) {
		orders, err = book.GetAccountOrders(accountID)
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(models.AccountOrdersResponse{
		AccountID: accountID,
		Orders:    toOrderInfos(orders),
	})
}

func (h *OrderHandler) HealthCheck(c *fiber.Ctx) error {
	uptime := time.Since(h.StartTime).Seconds()

	return c.Status(fiber.StatusOK).JSON(models.HealthResponse{
		Status:        "healthy",
		UptimeSeconds: int64(uptime),
		OrdersResting: h.RestingOrders(),
	})
}

// RestingOrders is the number of orders on both sides.
func (h *OrderHandler) RestingOrders() int64 {
	var bids, asks int64
	h.withBook(func(book *engine.OrderBook) {
		bids, asks = book.OrderCount()
	})
	return bids + asks
}

func (h *OrderHandler) Metrics(c *fiber.Ctx) error {
	var bidOrders, askOrders, bidVolume, askVolume int64
	h.withBook(func(book *engine.OrderBook) {
		bidOrders, askOrders = book.OrderCount()
		bidVolume, askVolume = book.Volume()
	})

	p50, p99, p999 := h.calculateLatencyPercentiles()

	return c.Status(fiber.StatusOK).JSON(models.MetricsResponse{
		LimitOrdersReceived:    atomic.LoadInt64(&h.LimitOrdersReceived),
		MarketOrdersReceived:   atomic.LoadInt64(&h.MarketOrdersReceived),
		OrdersCancelled:        atomic.LoadInt64(&h.OrdersCancelled),
		FillsExecuted:          atomic.LoadInt64(&h.FillsExecuted),
		BidOrders:              bidOrders,
		AskOrders:              askOrders,
		BidVolume:              bidVolume,
		AskVolume:              askVolume,
		LatencyP50Ms:           p50,
		LatencyP99Ms:           p99,
		LatencyP999Ms:          p999,
		ThroughputOrdersPerSec: h.calculateThroughput(),
	})
}

func (h *OrderHandler) recordLatency(latency time.Duration) {
	h.latenciesMu.Lock()
	defer h.latenciesMu.Unlock()

	h.latencies = append(h.latencies, latency)

	// edge case: maintain rolling window by removing oldest measurements
	if len(h.latencies) > h.maxLatencies {
		removeCount := len(h.latencies) - h.maxLatencies
		h.latencies = h.latencies[removeCount:]
	}
}

func (h *OrderHandler) calculateLatencyPercentiles() (p50, p99, p999 float64) {
	h.latenciesMu.RLock()
	latenciesCopy := make([]time.Duration, len(h.latencies))
	copy(latenciesCopy, h.latencies)
	h.latenciesMu.RUnlock()

	if len(latenciesCopy) == 0 {
		return 0, 0, 0
	}

	sort.Slice(latenciesCopy, func(i, j int) bool {
		return latenciesCopy[i] < latenciesCopy[j]
	})

	percentile := func(q float64) float64 {
		idx := min(int(float64(len(latenciesCopy))*q), len(latenciesCopy)-1)
		return float64(latenciesCopy[idx].Nanoseconds()) / 1e6
	}
	return percentile(0.50), percentile(0.99), percentile(0.999)
}

func (h *OrderHandler) calculateThroughput() float64 {
	uptime := time.Since(h.StartTime).Seconds()
	if uptime <= 0 {
		return 0
	}

	received := atomic.LoadInt64(&h.LimitOrdersReceived) + atomic.LoadInt64(&h.MarketOrdersReceived)
	return float64(received) / uptime
}

func requestedDepth(c *fiber.Ctx) int {
	defaultDepth := 10
	if envDepth := os.Getenv("ORDERBOOK_DEFAULT_DEPTH"); envDepth != "" {
		if parsed, err := strconv.Atoi(envDepth); err == nil && parsed > 0 {
			defaultDepth = parsed
		}
	}

	maxDepth := 1000
	if envMaxDepth := os.Getenv("ORDERBOOK_MAX_DEPTH"); envMaxDepth != "" {
		if parsed, err := strconv.Atoi(envMaxDepth); err == nil && parsed > 0 {
			maxDepth = parsed
		}
	}

	depth, err := strconv.Atoi(c.Query("depth", strconv.Itoa(defaultDepth)))
	if err != nil || depth <= 0 {
		depth = defaultDepth
	}

	// edge case: enforce maximum depth limit
	return min(depth, maxDepth)
}

// respondError maps engine errors onto HTTP statuses: caller data errors are 400, stale
// references are 404.
func respondError(c *fiber.Ctx, err error) error {
	var (
		sideErr  *engine.InvalidSideError
		sizeErr  *engine.InvalidOrderSizeError
		priceErr *engine.InvalidPriceError
		dupErr   *engine.DuplicateOrderError
	)

	switch {
	case errors.As(err, &sideErr), errors.As(err, &sizeErr), errors.As(err, &priceErr):
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: err.Error()})
	case errors.As(err, &dupErr):
		return c.Status(fiber.StatusConflict).JSON(models.ErrorResponse{Error: err.Error()})
	case engine.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: err.Error()})
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("Unhandled engine error")
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		Error: "Internal server error",
	})
}

func toOrderInfo(o engine.Order) models.OrderInfo {
	return models.OrderInfo{
		ID:        o.ID,
		Side:      o.Side.String(),
		Size:      o.Size,
		Price:     o.Price,
		AccountID: o.AccountID,
	}
}

func toOrderInfos(orders []engine.Order) []models.OrderInfo {
	infos := make([]models.OrderInfo, 0, len(orders))
	for _, o := range orders {
		infos = append(infos, toOrderInfo(o))
	}
	return infos
}
