package orderbook

import (
	"time"

	"hermes/domain/instrument"
)

// Book holds the resting liquidity for one instrument. It is
// single-writer and deterministic: all mutation happens through Match
// and the resting primitives below, under the owning instrument's lock.
//
// At rest the book is never crossed: best bid < best ask, or a side is
// empty. Match re-checks this before returning.
type Book struct {
	inst instrument.ID

	bids *Ladder // best = MaxLevel
	asks *Ladder // best = MinLevel

	seq      uint64 // insertion sequence, assigned in InsertResting
	matchSeq uint64 // trade sequence, assigned per match

	now func() time.Time
}

func NewBook(inst instrument.ID) *Book {
	return &Book{
		inst: inst,
		bids: NewLadder(),
		asks: NewLadder(),
		now:  time.Now,
	}
}

// Instrument returns the instrument this book belongs to.
func (b *Book) Instrument() instrument.ID { return b.inst }

// LastSeq returns the last insertion sequence handed out.
func (b *Book) LastSeq() uint64 { return b.seq }

// LastMatchSeq returns the last trade sequence handed out.
func (b *Book) LastMatchSeq() uint64 { return b.matchSeq }

func (b *Book) side(s Side) *Ladder {
	if s == Bid {
		return b.bids
	}
	return b.asks
}

func (b *Book) bestLevel(s Side) *PriceLevel {
	if s == Bid {
		return b.bids.MaxLevel()
	}
	return b.asks.MinLevel()
}

// BestBid returns the front order of the highest bid level, or nil if
// the side is empty. No mutation.
func (b *Book) BestBid() *Order {
	return b.front(Bid)
}

// BestAsk returns the front order of the lowest ask level, or nil if
// the side is empty. No mutation.
func (b *Book) BestAsk() *Order {
	return b.front(Ask)
}

func (b *Book) front(s Side) *Order {
	lvl := b.bestLevel(s)
	if lvl == nil {
		return nil
	}
	o := lvl.Head()
	if o == nil {
		panicInvariant("level present with no orders", "side", s, "price", lvl.Price)
	}
	if lvl.TotalQty <= 0 {
		panicInvariant("non-empty level with no quantity", "side", s, "price", lvl.Price, "total", lvl.TotalQty)
	}
	return o
}

// InsertResting assigns the order the next insertion sequence and
// appends it to the tail of its price level, creating the level if
// absent.
func (b *Book) InsertResting(o *Order) {
	b.seq++
	o.Seq = b.seq
	b.side(o.Side).UpsertLevel(o.Price).Enqueue(o)
}

// RemoveFront pops the order at the front of the side's best price
// level. An emptied level is deleted, exposing the next-best level.
func (b *Book) RemoveFront(s Side) *Order {
	lvl := b.bestLevel(s)
	if lvl == nil {
		return nil
	}
	o := lvl.PopHead()
	if o == nil {
		panicInvariant("level present with no orders", "side", s, "price", lvl.Price)
	}
	if lvl.Empty() {
		b.side(s).DeleteLevel(lvl.Price)
	}
	return o
}

// DecrementFront reduces the front order's remaining quantity in place.
// Used for partial fills of the resting order.
func (b *Book) DecrementFront(s Side, qty int64) {
	lvl := b.bestLevel(s)
	if lvl == nil {
		panicInvariant("decrement on empty side", "side", s, "qty", qty)
	}
	lvl.FillHead(qty)
}

func crosses(incoming, resting *Order) bool {
	if incoming.Side == Bid {
		return incoming.Price >= resting.Price
	}
	return incoming.Price <= resting.Price
}

// Match consumes the incoming order against the opposite side under
// price-time priority. The incoming order must carry an ID and must not
// be in any book yet.
//
// Trades are returned in generation order, priced at the resting
// order's limit. If the incoming order is not fully filled it is
// inserted as a new resting order and rested is true.
func (b *Book) Match(incoming *Order) (trades []Trade, rested bool) {
	opp := incoming.Side.Opposite()

	for incoming.Remaining() > 0 {
		resting := b.front(opp)
		if resting == nil || !crosses(incoming, resting) {
			break
		}

		qty := incoming.Remaining()
		if r := resting.Remaining(); r < qty {
			qty = r
		}

		incoming.Filled += qty
		b.DecrementFront(opp, qty)

		b.matchSeq++
		trades = append(trades, Trade{
			Instrument:   b.inst,
			Price:        resting.Price,
			Qty:          qty,
			TakerOrderID: incoming.ID,
			MakerOrderID: resting.ID,
			MatchSeq:     b.matchSeq,
			Time:         b.now(),
		})

		if resting.Remaining() == 0 {
			b.RemoveFront(opp)
		}
	}

	if incoming.Remaining() > 0 {
		b.InsertResting(incoming)
		rested = true
	}

	b.checkUncrossed()
	return trades, rested
}

func (b *Book) checkUncrossed() {
	bb := b.bids.MaxLevel()
	ba := b.asks.MinLevel()
	if bb != nil && ba != nil && bb.Price >= ba.Price {
		panicInvariant("book crossed at rest", "bid", bb.Price, "ask", ba.Price)
	}
}

// LevelDepth is one aggregated row of a depth snapshot.
type LevelDepth struct {
	Price  int64
	Qty    int64
	Orders int
}

// Depth collects up to max aggregated levels per side, best-first.
// max <= 0 means the whole book.
func (b *Book) Depth(max int) (bids, asks []LevelDepth) {
	collect := func(lvl *PriceLevel, out *[]LevelDepth) bool {
		*out = append(*out, LevelDepth{
			Price:  lvl.Price,
			Qty:    lvl.TotalQty,
			Orders: lvl.OrderCount,
		})
		return max <= 0 || len(*out) < max
	}
	b.bids.ForEachDescending(func(lvl *PriceLevel) bool { return collect(lvl, &bids) })
	b.asks.ForEachAscending(func(lvl *PriceLevel) bool { return collect(lvl, &asks) })
	return bids, asks
}
