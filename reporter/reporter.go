package reporter

import (
	"go.uber.org/zap"

	"hermes/domain/orderbook"
	"hermes/engine"
)

// Multi fans each trade out to several reporters, in order. It lets the
// process stack a log line, the durable outbox, and the live feed
// behind the engine's single reporter slot.
type Multi []engine.TradeReporter

func (m Multi) OnTrade(t orderbook.Trade) {
	for _, r := range m {
		r.OnTrade(t)
	}
}

// Log emits one structured line per trade.
type Log struct {
	L *zap.Logger
}

func (l Log) OnTrade(t orderbook.Trade) {
	l.L.Info("trade",
		zap.Uint32("instrument", uint32(t.Instrument)),
		zap.Int64("price", t.Price),
		zap.Int64("qty", t.Qty),
		zap.Uint64("taker", t.TakerOrderID),
		zap.Uint64("maker", t.MakerOrderID),
		zap.Uint64("seq", t.MatchSeq),
	)
}
