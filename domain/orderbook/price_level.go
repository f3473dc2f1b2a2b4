package orderbook

// PriceLevel is the FIFO queue of resting orders at a single price.
// Orders are linked intrusively; the head is the oldest order and the
// first to match.
type PriceLevel struct {
	Price int64

	head *Order
	tail *Order

	TotalQty   int64 // sum of Remaining() over the queue
	OrderCount int
}

func (p *PriceLevel) Enqueue(o *Order) {
	if p.head == nil {
		p.head = o
		p.tail = o
	} else {
		p.tail.next = o
		o.prev = p.tail
		p.tail = o
	}
	p.TotalQty += o.Remaining()
	p.OrderCount++
}

func (p *PriceLevel) PopHead() *Order {
	o := p.head
	if o == nil {
		return nil
	}

	p.head = o.next
	if p.head != nil {
		p.head.prev = nil
	} else {
		p.tail = nil
	}

	o.next = nil
	o.prev = nil

	p.TotalQty -= o.Remaining()
	p.OrderCount--

	return o
}

// FillHead reduces the head order's remaining quantity in place,
// keeping the level's aggregate in sync. The head stays queued even
// when it reaches zero; the caller pops it.
func (p *PriceLevel) FillHead(qty int64) {
	o := p.head
	if o == nil {
		panicInvariant("fill on empty level", "price", p.Price, "qty", qty)
	}
	o.Filled += qty
	p.TotalQty -= qty
	if o.Remaining() < 0 {
		panicInvariant("negative remaining quantity", "order", o.ID, "remaining", o.Remaining())
	}
	if p.TotalQty < 0 {
		panicInvariant("negative level quantity", "price", p.Price, "total", p.TotalQty)
	}
}

func (p *PriceLevel) Empty() bool {
	return p.head == nil
}

func (p *PriceLevel) Head() *Order {
	return p.head
}
