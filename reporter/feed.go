package reporter

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"hermes/domain/instrument"
	"hermes/domain/orderbook"
	"hermes/infra/kafka"
)

// Feed publishes trades to a Kafka topic as they happen, keyed by
// symbol so per-instrument ordering survives partitioning. Delivery is
// best-effort and at-most-once; the outbox is the durable path.
type Feed struct {
	producer *kafka.Producer
	reg      *instrument.Registry
	log      *zap.Logger
}

// NewFeed wraps an async producer (see kafka.NewAsyncProducer).
func NewFeed(producer *kafka.Producer, reg *instrument.Registry, log *zap.Logger) *Feed {
	if log == nil {
		log = zap.NewNop()
	}
	return &Feed{producer: producer, reg: reg, log: log}
}

func (f *Feed) OnTrade(t orderbook.Trade) {
	sym, ok := f.reg.Symbol(t.Instrument)
	if !ok {
		return
	}

	b, err := json.Marshal(NewTradeEvent(t, sym))
	if err != nil {
		f.log.Error("feed encode failed", zap.Error(err))
		return
	}

	if err := f.producer.Send(context.Background(), []byte(sym), b); err != nil {
		f.log.Warn("feed publish failed",
			zap.String("symbol", sym),
			zap.Uint64("seq", t.MatchSeq),
			zap.Error(err),
		)
	}
}

func (f *Feed) Close() error {
	return f.producer.Close()
}
