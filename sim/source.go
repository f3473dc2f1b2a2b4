// Package sim generates synthetic order flow. It is a harness: the
// engine sees it as just another caller of Submit, and pacing is left
// entirely to whoever pulls from the source.
package sim

import (
	"math/rand"

	"hermes/domain/instrument"
	"hermes/domain/orderbook"
)

// Order is one generated submission.
type Order struct {
	Instrument instrument.ID
	Side       orderbook.Side
	Qty        int64
	Price      int64
}

type Config struct {
	// Price band in minor units, inclusive. Zero values fall back to
	// 1000..50000 (10.00..500.00 at scale 2).
	MinPrice int64
	MaxPrice int64

	// MaxQty caps the uniform 1..MaxQty quantity draw. Zero means 100.
	MaxQty int64
}

func (c *Config) setDefaults() {
	if c.MinPrice <= 0 {
		c.MinPrice = 1_000
	}
	if c.MaxPrice <= c.MinPrice {
		c.MaxPrice = 50_000
	}
	if c.MaxQty <= 0 {
		c.MaxQty = 100
	}
}

// Source is a deterministic (per seed) pull-based stream of random
// orders over a registry's universe. Not safe for concurrent use; give
// each worker its own Source.
type Source struct {
	rng *rand.Rand
	reg *instrument.Registry
	cfg Config
}

func NewSource(reg *instrument.Registry, seed int64, cfg Config) *Source {
	cfg.setDefaults()
	return &Source{
		rng: rand.New(rand.NewSource(seed)),
		reg: reg,
		cfg: cfg,
	}
}

// Next draws one order: uniform instrument, side, quantity and price.
func (s *Source) Next() Order {
	side := orderbook.Bid
	if s.rng.Intn(2) == 1 {
		side = orderbook.Ask
	}
	return Order{
		Instrument: instrument.ID(s.rng.Intn(s.reg.Count())),
		Side:       side,
		Qty:        1 + s.rng.Int63n(s.cfg.MaxQty),
		Price:      s.cfg.MinPrice + s.rng.Int63n(s.cfg.MaxPrice-s.cfg.MinPrice+1),
	}
}
