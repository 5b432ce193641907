package render

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"limit-order-book/src/engine"
)

func TestDepthChart(t *testing.T) {
	ob := engine.NewOrderBook(engine.Config{})
	_, err := ob.SubmitLimitOrder(1, 100.5, 10, engine.Ask, nil)
	require.NoError(t, err)
	_, err = ob.SubmitLimitOrder(2, 101, 20, engine.Ask, nil)
	require.NoError(t, err)
	_, err = ob.SubmitLimitOrder(3, 99, 40, engine.Bid, nil)
	require.NoError(t, err)
	_, err = ob.SubmitLimitOrder(4, 99, 5, engine.Bid, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, DepthChart(&buf, ob.BookDepthInfo(10), 9))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)

	assert.Equal(t, "ASK   101 |####      20 (1)", lines[0])
	assert.Equal(t, "ASK 100.5 |##        10 (1)", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "---"))
	assert.Equal(t, "BID    99 |######### 45 (2)", lines[3])
}

func TestDepthChartEmptyBook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, DepthChart(&buf, engine.NewOrderBook(engine.Config{}).BookDepthInfo(5), 0))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 1)
	assert.Len(t, lines[0], 1+DefaultWidth+18)
}

func TestBarLength(t *testing.T) {
	assert.Equal(t, 0, barLength(0, 100, 10))
	assert.Equal(t, 1, barLength(1, 1000, 10))
	assert.Equal(t, 10, barLength(100, 100, 10))
	assert.Equal(t, 0, barLength(5, 0, 10))

	// volumes near the int64 limit scale without wrapping
	assert.Equal(t, 40, barLength(math.MaxInt64, math.MaxInt64, 40))
	assert.Equal(t, 20, barLength(math.MaxInt64/2, math.MaxInt64, 40))
}
