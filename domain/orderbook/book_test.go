package orderbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nextTestOrderID uint64

func newOrder(side Side, qty, price int64) *Order {
	nextTestOrderID++
	return &Order{ID: nextTestOrderID, Side: side, Qty: qty, Price: price}
}

func TestBookEmptyBest(t *testing.T) {
	b := NewBook(0)
	assert.Nil(t, b.BestBid())
	assert.Nil(t, b.BestAsk())
}

func TestPartialFillOfIncoming(t *testing.T) {
	b := NewBook(0)

	_, rested := b.Match(newOrder(Ask, 5, 1000))
	require.True(t, rested)

	buy := newOrder(Bid, 8, 1000)
	trades, rested := b.Match(buy)

	require.Len(t, trades, 1)
	assert.Equal(t, int64(5), trades[0].Qty)
	assert.Equal(t, int64(1000), trades[0].Price)
	assert.True(t, rested, "residual 3 should rest as a bid")

	require.NotNil(t, b.BestBid())
	assert.Equal(t, buy.ID, b.BestBid().ID)
	assert.Equal(t, int64(3), b.BestBid().Remaining())
	assert.Nil(t, b.BestAsk())
}

func TestPartialFillOfResting(t *testing.T) {
	b := NewBook(0)

	sell := newOrder(Ask, 10, 1000)
	b.Match(sell)

	trades, rested := b.Match(newOrder(Bid, 4, 1000))

	require.Len(t, trades, 1)
	assert.Equal(t, int64(4), trades[0].Qty)
	assert.False(t, rested)

	// the maker stays at the front of its level with the remainder
	require.NotNil(t, b.BestAsk())
	assert.Equal(t, sell.ID, b.BestAsk().ID)
	assert.Equal(t, int64(6), b.BestAsk().Remaining())
}

func TestSweepAcrossLevels(t *testing.T) {
	b := NewBook(0)

	s1 := newOrder(Ask, 3, 1000)
	s2 := newOrder(Ask, 3, 1001)
	s3 := newOrder(Ask, 3, 1002)
	b.Match(s1)
	b.Match(s2)
	b.Match(s3)

	trades, rested := b.Match(newOrder(Bid, 7, 1002))

	require.Len(t, trades, 3)
	assert.False(t, rested)

	// makers consumed cheapest-first, each trade at the maker's price
	assert.Equal(t, s1.ID, trades[0].MakerOrderID)
	assert.Equal(t, int64(1000), trades[0].Price)
	assert.Equal(t, int64(3), trades[0].Qty)

	assert.Equal(t, s2.ID, trades[1].MakerOrderID)
	assert.Equal(t, int64(1001), trades[1].Price)
	assert.Equal(t, int64(3), trades[1].Qty)

	assert.Equal(t, s3.ID, trades[2].MakerOrderID)
	assert.Equal(t, int64(1002), trades[2].Price)
	assert.Equal(t, int64(1), trades[2].Qty)

	require.NotNil(t, b.BestAsk())
	assert.Equal(t, s3.ID, b.BestAsk().ID)
	assert.Equal(t, int64(2), b.BestAsk().Remaining())
}

func TestNoMatchBelowAsk(t *testing.T) {
	b := NewBook(0)

	b.Match(newOrder(Ask, 5, 1005))
	trades, rested := b.Match(newOrder(Bid, 5, 1004))

	assert.Empty(t, trades)
	assert.True(t, rested)
	assert.Equal(t, int64(1004), b.BestBid().Price)
	assert.Equal(t, int64(1005), b.BestAsk().Price)
}

func TestFIFOWithinLevel(t *testing.T) {
	b := NewBook(0)

	first := newOrder(Ask, 2, 1000)
	second := newOrder(Ask, 2, 1000)
	third := newOrder(Ask, 2, 1000)
	b.Match(first)
	b.Match(second)
	b.Match(third)

	trades, _ := b.Match(newOrder(Bid, 5, 1000))

	require.Len(t, trades, 3)
	assert.Equal(t, first.ID, trades[0].MakerOrderID)
	assert.Equal(t, second.ID, trades[1].MakerOrderID)
	assert.Equal(t, third.ID, trades[2].MakerOrderID)
	assert.Equal(t, int64(1), trades[2].Qty)

	// third keeps its queue position with the remainder
	assert.Equal(t, third.ID, b.BestAsk().ID)
	assert.Equal(t, int64(1), b.BestAsk().Remaining())
}

func TestTradesAtRestingPrice(t *testing.T) {
	b := NewBook(0)

	b.Match(newOrder(Ask, 5, 1000))

	// aggressive bid far through the ask still pays the maker's limit
	trades, _ := b.Match(newOrder(Bid, 5, 2000))

	require.Len(t, trades, 1)
	assert.Equal(t, int64(1000), trades[0].Price)
}

func TestBidPriceTimePriority(t *testing.T) {
	b := NewBook(0)

	low := newOrder(Bid, 1, 1000)
	high := newOrder(Bid, 1, 1002)
	mid := newOrder(Bid, 1, 1001)
	b.Match(low)
	b.Match(high)
	b.Match(mid)

	trades, _ := b.Match(newOrder(Ask, 3, 1000))

	require.Len(t, trades, 3)
	assert.Equal(t, high.ID, trades[0].MakerOrderID)
	assert.Equal(t, mid.ID, trades[1].MakerOrderID)
	assert.Equal(t, low.ID, trades[2].MakerOrderID)
}

func TestQuantityConservation(t *testing.T) {
	b := NewBook(0)

	b.Match(newOrder(Ask, 4, 1000))
	b.Match(newOrder(Ask, 6, 1001))

	buy := newOrder(Bid, 15, 1001)
	trades, rested := b.Match(buy)

	var traded int64
	for _, tr := range trades {
		traded += tr.Qty
	}
	assert.Equal(t, int64(10), traded)
	assert.Equal(t, buy.Qty, traded+buy.Remaining())
	require.True(t, rested)
	assert.Equal(t, int64(5), b.BestBid().Remaining())
}

func TestMatchSeqMonotonic(t *testing.T) {
	b := NewBook(0)

	b.Match(newOrder(Ask, 1, 1000))
	b.Match(newOrder(Ask, 1, 1001))
	trades, _ := b.Match(newOrder(Bid, 2, 1001))

	require.Len(t, trades, 2)
	assert.Equal(t, trades[0].MatchSeq+1, trades[1].MatchSeq)

	b.Match(newOrder(Ask, 1, 900))
	b.Match(newOrder(Bid, 1, 900))
	assert.Equal(t, uint64(3), b.LastMatchSeq())
}

func TestRemoveFrontDeletesEmptiedLevel(t *testing.T) {
	b := NewBook(0)

	b.Match(newOrder(Ask, 1, 1000))
	b.Match(newOrder(Ask, 1, 1001))

	o := b.RemoveFront(Ask)
	require.NotNil(t, o)
	assert.Equal(t, int64(1000), o.Price)
	assert.Equal(t, int64(1001), b.BestAsk().Price)

	b.RemoveFront(Ask)
	assert.Nil(t, b.BestAsk())
	assert.Nil(t, b.RemoveFront(Ask))
}

func TestDepthAggregation(t *testing.T) {
	b := NewBook(0)

	b.Match(newOrder(Bid, 2, 999))
	b.Match(newOrder(Bid, 3, 999))
	b.Match(newOrder(Bid, 4, 998))
	b.Match(newOrder(Ask, 5, 1001))
	b.Match(newOrder(Ask, 6, 1002))

	bids, asks := b.Depth(0)

	require.Len(t, bids, 2)
	assert.Equal(t, LevelDepth{Price: 999, Qty: 5, Orders: 2}, bids[0])
	assert.Equal(t, LevelDepth{Price: 998, Qty: 4, Orders: 1}, bids[1])

	require.Len(t, asks, 2)
	assert.Equal(t, LevelDepth{Price: 1001, Qty: 5, Orders: 1}, asks[0])

	bids, asks = b.Depth(1)
	assert.Len(t, bids, 1)
	assert.Len(t, asks, 1)
}

func TestDepthReflectsPartialFills(t *testing.T) {
	b := NewBook(0)

	b.Match(newOrder(Ask, 10, 1000))
	b.Match(newOrder(Bid, 4, 1000))

	_, asks := b.Depth(0)
	require.Len(t, asks, 1)
	assert.Equal(t, int64(6), asks[0].Qty)
}

func TestFillHeadPanicsOnOverfill(t *testing.T) {
	lvl := &PriceLevel{Price: 1000}
	lvl.Enqueue(&Order{ID: 1, Side: Ask, Qty: 3, Price: 1000})

	assert.PanicsWithError(t,
		"orderbook: invariant violated: negative remaining quantity [order=1 remaining=-1]",
		func() { lvl.FillHead(4) },
	)
}

func TestDecrementEmptySidePanics(t *testing.T) {
	b := NewBook(0)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		_, ok := r.(*InvariantError)
		assert.True(t, ok, "panic value should be an *InvariantError, got %T", r)
	}()
	b.DecrementFront(Bid, 1)
}

func TestSideHelpers(t *testing.T) {
	assert.Equal(t, Ask, Bid.Opposite())
	assert.Equal(t, Bid, Ask.Opposite())
	assert.Equal(t, "BID", Bid.String())
	assert.Equal(t, "ASK", Ask.String())
	assert.True(t, Bid.Valid())
	assert.False(t, Side(7).Valid())
	assert.Equal(t, "INVALID", Side(7).String())
}
