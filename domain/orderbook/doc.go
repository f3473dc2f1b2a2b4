// Package orderbook implements per-instrument limit order books with
// strict price-time priority: a red-black ladder of price levels, each
// level a FIFO queue of resting orders, matched by a deterministic
// single-writer loop.
package orderbook
