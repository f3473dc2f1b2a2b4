package engine

import "sync/atomic"

// Stats tracks engine-wide counters on the submission path.
type Stats struct {
	accepted atomic.Uint64
	rejected atomic.Uint64
	trades   atomic.Uint64
	volume   atomic.Int64
}

// StatsSnapshot is a point-in-time copy of the counters.
type StatsSnapshot struct {
	OrdersAccepted uint64 `json:"orders_accepted"`
	OrdersRejected uint64 `json:"orders_rejected"`
	Trades         uint64 `json:"trades"`
	Volume         int64  `json:"volume"`
}

func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		OrdersAccepted: s.accepted.Load(),
		OrdersRejected: s.rejected.Load(),
		Trades:         s.trades.Load(),
		Volume:         s.volume.Load(),
	}
}
