package engine

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"hermes/domain/instrument"
	"hermes/domain/orderbook"
	"hermes/infra/sequence"
)

// TradeReporter receives every trade the engine produces, synchronously
// and in generation order, before Submit returns. Implementations must
// not call back into the engine for the same instrument: they run under
// that instrument's lock.
type TradeReporter interface {
	OnTrade(orderbook.Trade)
}

type nopReporter struct{}

func (nopReporter) OnTrade(orderbook.Trade) {}

// Result is what a completed submission returns.
type Result struct {
	OrderID        uint64
	Trades         []orderbook.Trade
	RestingOrderID uint64 // zero when nothing rested
}

type shard struct {
	mu   sync.Mutex
	book *orderbook.Book
}

// Engine is the submission gateway over a fixed set of per-instrument
// shards. Exclusivity is scoped per instrument: submissions against
// different instruments run fully in parallel, submissions against the
// same instrument serialize on its shard lock. Only one lock is ever
// held by a call, so there is no ordering hazard.
type Engine struct {
	reg      *instrument.Registry
	shards   []*shard
	ids      *sequence.Sequencer
	reporter TradeReporter
	log      *zap.Logger
	stats    Stats
}

// New builds the shard table for the registry's universe. The table is
// immutable afterwards; lookups need no synchronization.
func New(reg *instrument.Registry, reporter TradeReporter, log *zap.Logger) *Engine {
	if reporter == nil {
		reporter = nopReporter{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	shards := make([]*shard, reg.Count())
	for i := range shards {
		shards[i] = &shard{book: orderbook.NewBook(instrument.ID(i))}
	}

	log.Info("engine ready", zap.Int("instruments", reg.Count()))

	return &Engine{
		reg:      reg,
		shards:   shards,
		ids:      sequence.New(0),
		reporter: reporter,
		log:      log,
	}
}

// Registry exposes the instrument universe the engine was built from.
func (e *Engine) Registry() *instrument.Registry { return e.reg }

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() StatsSnapshot { return e.stats.Snapshot() }

// Submit validates the order, serializes on the instrument's shard,
// matches, and reports every produced trade before returning. A failed
// validation mutates nothing.
func (e *Engine) Submit(side orderbook.Side, inst instrument.ID, qty, price int64) (Result, error) {
	if !side.Valid() {
		e.stats.rejected.Add(1)
		return Result{}, fmt.Errorf("%w: malformed side %d", ErrInvalidOrder, side)
	}
	if qty <= 0 {
		e.stats.rejected.Add(1)
		return Result{}, fmt.Errorf("%w: quantity %d must be positive", ErrInvalidOrder, qty)
	}
	if price <= 0 {
		e.stats.rejected.Add(1)
		return Result{}, fmt.Errorf("%w: price %d must be positive", ErrInvalidOrder, price)
	}
	if !e.reg.Contains(inst) {
		e.stats.rejected.Add(1)
		return Result{}, fmt.Errorf("%w: id %d", ErrUnknownInstrument, inst)
	}

	o := &orderbook.Order{
		ID:    e.ids.Next(),
		Side:  side,
		Price: price,
		Qty:   qty,
	}

	trades, rested := e.matchLocked(e.shards[inst], o)

	e.stats.accepted.Add(1)
	e.stats.trades.Add(uint64(len(trades)))
	for _, t := range trades {
		e.stats.volume.Add(t.Qty)
	}

	res := Result{OrderID: o.ID, Trades: trades}
	if rested {
		res.RestingOrderID = o.ID
	}
	return res, nil
}

// matchLocked runs the match and the synchronous trade emission as one
// atomic section under the shard lock, so sequence assignment, level
// mutation, and emission for one submission complete before the next
// submission on the instrument begins.
func (e *Engine) matchLocked(sh *shard, o *orderbook.Order) ([]orderbook.Trade, bool) {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	trades, rested := sh.book.Match(o)
	for _, t := range trades {
		e.reporter.OnTrade(t)
	}
	return trades, rested
}

// DepthSnapshot is a consistent aggregated view of one instrument's
// book, taken under its lock.
type DepthSnapshot struct {
	Instrument instrument.ID
	Symbol     string
	Bids       []orderbook.LevelDepth
	Asks       []orderbook.LevelDepth
}

// Depth returns up to max levels per side for the instrument,
// best-first. max <= 0 returns the whole book.
func (e *Engine) Depth(inst instrument.ID, max int) (DepthSnapshot, error) {
	sym, ok := e.reg.Symbol(inst)
	if !ok {
		return DepthSnapshot{}, fmt.Errorf("%w: id %d", ErrUnknownInstrument, inst)
	}

	sh := e.shards[inst]
	sh.mu.Lock()
	bids, asks := sh.book.Depth(max)
	sh.mu.Unlock()

	return DepthSnapshot{
		Instrument: inst,
		Symbol:     sym,
		Bids:       bids,
		Asks:       asks,
	}, nil
}
