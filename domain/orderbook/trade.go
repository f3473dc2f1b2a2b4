package orderbook

import (
	"time"

	"hermes/domain/instrument"
)

// Trade is the immutable record of one match. It is created only by the
// matching loop and never mutated afterwards.
//
// Price is always the resting (maker) order's limit price: the aggressor
// never pays worse than its limit and any improvement accrues to it.
type Trade struct {
	Instrument   instrument.ID
	Price        int64
	Qty          int64
	TakerOrderID uint64 // the aggressor
	MakerOrderID uint64 // the resting order
	MatchSeq     uint64 // monotonic per instrument, gap-free
	Time         time.Time
}
