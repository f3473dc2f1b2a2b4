package reporter

import (
	"hermes/domain/orderbook"
)

// TradeEvent is the JSON wire form of a trade, shared by the live feed,
// the Kafka broadcaster, and the websocket stream.
type TradeEvent struct {
	V          int    `json:"v"`
	Type       string `json:"type"`
	Symbol     string `json:"symbol"`
	Instrument uint32 `json:"instrument"`
	Price      int64  `json:"price"`
	Qty        int64  `json:"qty"`
	Taker      uint64 `json:"taker_order_id"`
	Maker      uint64 `json:"maker_order_id"`
	Seq        uint64 `json:"seq"`
	Time       int64  `json:"ts"`
}

func NewTradeEvent(t orderbook.Trade, symbol string) TradeEvent {
	return TradeEvent{
		V:          1,
		Type:       "trade",
		Symbol:     symbol,
		Instrument: uint32(t.Instrument),
		Price:      t.Price,
		Qty:        t.Qty,
		Taker:      t.TakerOrderID,
		Maker:      t.MakerOrderID,
		Seq:        t.MatchSeq,
		Time:       t.Time.UnixNano(),
	}
}
