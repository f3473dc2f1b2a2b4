package reporter

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"

	"hermes/domain/instrument"
	"hermes/domain/orderbook"
	"hermes/infra/sequence"
)

// -------------------- State --------------------

// DeliveryState tracks a trade through the outbox.
type DeliveryState uint8

const (
	StateNew DeliveryState = iota
	StateSent
	StateAcked
	StateFailed
)

func (s DeliveryState) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// -------------------- Record --------------------

// Record is one outbox entry: the trade plus its delivery state.
type Record struct {
	State       DeliveryState
	Retries     uint32
	LastAttempt int64
	Trade       orderbook.Trade
}

// binary encoding:
// [state:1][retries:4][lastAttempt:8][inst:4][price:8][qty:8][taker:8][maker:8][matchSeq:8][time:8]
const recordLen = 1 + 4 + 8 + 4 + 8 + 8 + 8 + 8 + 8 + 8

func encodeRecord(r Record) []byte {
	buf := make([]byte, recordLen)
	buf[0] = byte(r.State)
	binary.BigEndian.PutUint32(buf[1:5], r.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(r.LastAttempt))
	binary.BigEndian.PutUint32(buf[13:17], uint32(r.Trade.Instrument))
	binary.BigEndian.PutUint64(buf[17:25], uint64(r.Trade.Price))
	binary.BigEndian.PutUint64(buf[25:33], uint64(r.Trade.Qty))
	binary.BigEndian.PutUint64(buf[33:41], r.Trade.TakerOrderID)
	binary.BigEndian.PutUint64(buf[41:49], r.Trade.MakerOrderID)
	binary.BigEndian.PutUint64(buf[49:57], r.Trade.MatchSeq)
	binary.BigEndian.PutUint64(buf[57:65], uint64(r.Trade.Time.UnixNano()))
	return buf
}

func decodeRecord(b []byte) (Record, error) {
	if len(b) != recordLen {
		return Record{}, errors.New("invalid outbox record length")
	}
	return Record{
		State:       DeliveryState(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
		Trade: orderbook.Trade{
			Instrument:   instrument.ID(binary.BigEndian.Uint32(b[13:17])),
			Price:        int64(binary.BigEndian.Uint64(b[17:25])),
			Qty:          int64(binary.BigEndian.Uint64(b[25:33])),
			TakerOrderID: binary.BigEndian.Uint64(b[33:41]),
			MakerOrderID: binary.BigEndian.Uint64(b[41:49]),
			MatchSeq:     binary.BigEndian.Uint64(b[49:57]),
			Time:         time.Unix(0, int64(binary.BigEndian.Uint64(b[57:65]))),
		},
	}, nil
}

// -------------------- Outbox --------------------

// Outbox is the durable delivery path: every trade is recorded under
// pebble's WAL before Submit returns, then drained to Kafka by the
// broadcaster job. The book itself is never persisted; only emitted
// trades pass through here.
type Outbox struct {
	db  *pebble.DB
	seq *sequence.Sequencer
	log *zap.Logger
}

func OpenOutbox(dir string, log *zap.Logger) (*Outbox, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := pebble.Open(dir, &pebble.Options{
		DisableWAL: false, // we WANT durability
	})
	if err != nil {
		return nil, err
	}

	o := &Outbox{db: db, log: log}

	last, err := o.lastKey()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	o.seq = sequence.New(last)

	return o, nil
}

func (o *Outbox) Close() error {
	return o.db.Close()
}

// OnTrade records the trade as NEW. Failures are logged, not returned:
// the match itself has already committed and must not be unwound.
func (o *Outbox) OnTrade(t orderbook.Trade) {
	id := o.seq.Next()
	rec := Record{State: StateNew, Trade: t}
	if err := o.db.Set(keyFor(id), encodeRecord(rec), pebble.Sync); err != nil {
		o.log.Error("outbox write failed",
			zap.Uint64("id", id),
			zap.Uint64("seq", t.MatchSeq),
			zap.Error(err),
		)
	}
}

// UpdateState rewrites an entry's delivery state after send/ack/failure.
func (o *Outbox) UpdateState(id uint64, state DeliveryState, retries uint32) error {
	rec, err := o.Get(id)
	if err != nil {
		return err
	}
	rec.State = state
	rec.Retries = retries
	rec.LastAttempt = time.Now().UnixNano()
	return o.db.Set(keyFor(id), encodeRecord(rec), pebble.Sync)
}

// Delete removes a delivered entry.
func (o *Outbox) Delete(id uint64) error {
	return o.db.Delete(keyFor(id), pebble.Sync)
}

// Get returns the current record for an entry.
func (o *Outbox) Get(id uint64) (Record, error) {
	val, closer, err := o.db.Get(keyFor(id))
	if err != nil {
		return Record{}, err
	}
	defer closer.Close()

	return decodeRecord(val)
}

// ScanUndelivered iterates entries not yet confirmed delivered, in key
// order: NEW, SENT (a crash may have cut the publish short, so the
// outcome is unknown and the entry is re-sent), and FAILED with fewer
// than maxRetries attempts. Re-sending a SENT entry can duplicate a
// publish; consumers dedupe on instrument and trade sequence.
func (o *Outbox) ScanUndelivered(maxRetries uint32, fn func(id uint64, rec Record) error) error {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyPrefix + "~"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		rec, err := decodeRecord(iter.Value())
		if err != nil {
			return err
		}

		switch rec.State {
		case StateNew, StateSent:
		case StateFailed:
			if rec.Retries >= maxRetries {
				continue
			}
		default:
			continue
		}

		id, err := parseKey(iter.Key())
		if err != nil {
			return err
		}

		if err := fn(id, rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

// -------------------- Helpers --------------------

const keyPrefix = "trade/"

func keyFor(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", keyPrefix, id))
}

func parseKey(b []byte) (uint64, error) {
	var id uint64
	_, err := fmt.Sscanf(string(bytes.TrimPrefix(b, []byte(keyPrefix))), "%d", &id)
	return id, err
}

// lastKey finds the highest assigned entry id so restarts keep the key
// space monotonic.
func (o *Outbox) lastKey() (uint64, error) {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyPrefix + "~"),
	})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	if !iter.Last() {
		return 0, iter.Error()
	}
	return parseKey(iter.Key())
}
