// Package render draws a text depth ladder from book depth info.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"limit-order-book/src/engine"
)

const DefaultWidth = 40

// DepthChart writes asks above bids, the spread in the middle, one bar per level. Bars are
// scaled against the largest level volume on either side.
//
//	ASK  100.2 |#######              15 (1)
//	ASK  100.1 |########             15 (2)
//	----------------------------------------
//	BID    100 |###############      30 (1)
func DepthChart(w io.Writer, info engine.DepthInfo, width int) error {
	if width <= 0 {
		width = DefaultWidth
	}

	var maxVolume int64
	priceWidth := 1
	for _, series := range []engine.LevelSeries{info.Bid, info.Ask} {
		for i, v := range series.Volume {
			maxVolume = max(maxVolume, v)
			priceWidth = max(priceWidth, len(formatPrice(series.Price[i])))
		}
	}

	// asks are drawn worst to best so the best prices meet at the spread
	for i := len(info.Ask.Price) - 1; i >= 0; i-- {
		if err := writeLevel(w, "ASK", info.Ask, i, priceWidth, width, maxVolume); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, strings.Repeat("-", priceWidth+width+18)); err != nil {
		return err
	}

	for i := range info.Bid.Price {
		if err := writeLevel(w, "BID", info.Bid, i, priceWidth, width, maxVolume); err != nil {
			return err
		}
	}
	return nil
}

func writeLevel(w io.Writer, label string, series engine.LevelSeries, i, priceWidth, width int, maxVolume int64) error {
	bar := barLength(series.Volume[i], maxVolume, width)
	_, err := fmt.Fprintf(w, "%s %*s |%s%s %d (%d)\n",
		label,
		priceWidth, formatPrice(series.Price[i]),
		strings.Repeat("#", bar),
		strings.Repeat(" ", width-bar),
		series.Volume[i],
		series.Orders[i],
	)
	return err
}

func barLength(volume, maxVolume int64, width int) int {
	if maxVolume <= 0 || volume <= 0 {
		return 0
	}
	// edge case: any resting volume gets at least one mark
	return max(1, int(float64(volume)*float64(width)/float64(maxVolume)))
}

func formatPrice(p float32) string {
	return decimal.NewFromFloat32(p).String()
}
