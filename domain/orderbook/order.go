package orderbook

type Side uint8

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	switch s {
	case Bid:
		return "BID"
	case Ask:
		return "ASK"
	default:
		return "INVALID"
	}
}

// Opposite returns the side an incoming order matches against.
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

// Valid reports whether s is one of the two known sides.
func (s Side) Valid() bool {
	return s == Bid || s == Ask
}

// Order is a pure domain entity. Prices and quantities are integer
// minor units; there are no floats anywhere in the book.
//
// An Order is mutated only by its book's matching loop while the
// owning instrument's lock is held.
type Order struct {
	ID     uint64
	Price  int64
	Qty    int64 // original quantity, never changed after intake
	Filled int64
	Seq    uint64 // book insertion sequence, the FIFO tie-break

	Side Side

	next *Order
	prev *Order
}

// Remaining is the unmatched quantity still live in the book.
func (o *Order) Remaining() int64 {
	return o.Qty - o.Filled
}

// Next returns the order behind o in its price level's queue.
func (o *Order) Next() *Order {
	return o.next
}
