package httpserver

import (
	"fmt"

	"github.com/shopspring/decimal"

	"hermes/domain/orderbook"
)

// Prices cross this boundary as decimal strings and are converted to
// the engine's integer minor units here. The engine itself never sees a
// decimal.

type SubmitOrderRequest struct {
	Symbol   string `json:"symbol"`
	Side     string `json:"side"` // BUY or SELL
	Quantity int64  `json:"quantity"`
	Price    string `json:"price"`
}

type SubmitOrderResponse struct {
	OrderID        uint64      `json:"order_id"`
	RestingOrderID uint64      `json:"resting_order_id,omitempty"`
	Trades         []TradeView `json:"trades"`
}

type TradeView struct {
	Price        string `json:"price"`
	Qty          int64  `json:"qty"`
	TakerOrderID uint64 `json:"taker_order_id"`
	MakerOrderID uint64 `json:"maker_order_id"`
	Seq          uint64 `json:"seq"`
	Time         int64  `json:"ts"`
}

type LevelView struct {
	Price  string `json:"price"`
	Qty    int64  `json:"qty"`
	Orders int    `json:"orders"`
}

type BookView struct {
	Symbol string      `json:"symbol"`
	Bids   []LevelView `json:"bids"`
	Asks   []LevelView `json:"asks"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func parseSide(s string) (orderbook.Side, error) {
	switch s {
	case "BUY":
		return orderbook.Bid, nil
	case "SELL":
		return orderbook.Ask, nil
	default:
		return 0, fmt.Errorf("side must be BUY or SELL, got %q", s)
	}
}

// parsePrice converts a decimal price string into minor units at the
// given scale. "50.25" at scale 2 becomes 5025.
func parsePrice(s string, scale int32) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("malformed price %q: %w", s, err)
	}
	m := d.Shift(scale)
	if !m.IsInteger() {
		return 0, fmt.Errorf("price %q exceeds %d decimal places", s, scale)
	}
	return m.IntPart(), nil
}

func formatPrice(p int64, scale int32) string {
	return decimal.New(p, -scale).String()
}

func tradeView(t orderbook.Trade, scale int32) TradeView {
	return TradeView{
		Price:        formatPrice(t.Price, scale),
		Qty:          t.Qty,
		TakerOrderID: t.TakerOrderID,
		MakerOrderID: t.MakerOrderID,
		Seq:          t.MatchSeq,
		Time:         t.Time.UnixNano(),
	}
}
