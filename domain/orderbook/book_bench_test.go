package orderbook

import (
	"math/rand"
	"testing"
)

func benchOrders(n int) []*Order {
	rng := rand.New(rand.NewSource(1))
	orders := make([]*Order, n)
	for i := range orders {
		side := Bid
		if rng.Intn(2) == 1 {
			side = Ask
		}
		orders[i] = &Order{
			ID:    uint64(i + 1),
			Side:  side,
			Qty:   1 + rng.Int63n(100),
			Price: 1_000 + rng.Int63n(49_001),
		}
	}
	return orders
}

func BenchmarkMatchUniformFlow(b *testing.B) {
	orders := benchOrders(b.N)
	book := NewBook(0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		o := orders[i]
		book.Match(o)
	}
}

func BenchmarkInsertResting(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	book := NewBook(0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		book.InsertResting(&Order{
			ID:    uint64(i + 1),
			Side:  Bid,
			Qty:   10,
			Price: 1_000 + rng.Int63n(49_001),
		})
	}
}
