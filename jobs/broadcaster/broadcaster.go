package broadcaster

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"hermes/domain/instrument"
	"hermes/reporter"
)

const maxRetries = 5

// Broadcaster drains the trade outbox to Kafka on a ticker. Each entry
// is marked SENT before the publish and ACKED after, so a crash between
// the two re-sends rather than drops: delivery is at-least-once.
type Broadcaster struct {
	outbox   *reporter.Outbox
	producer sarama.SyncProducer
	reg      *instrument.Registry
	topic    string
	interval time.Duration
	log      *zap.Logger
}

func New(
	outbox *reporter.Outbox,
	reg *instrument.Registry,
	brokers []string,
	topic string,
	interval time.Duration,
	log *zap.Logger,
) (*Broadcaster, error) {

	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Broadcaster{
		outbox:   outbox,
		producer: producer,
		reg:      reg,
		topic:    topic,
		interval: interval,
		log:      log,
	}, nil
}

// Start runs the drain loop until ctx is cancelled.
func (b *Broadcaster) Start(ctx context.Context) {
	b.log.Info("broadcaster started",
		zap.String("topic", b.topic),
		zap.Duration("interval", b.interval),
	)

	go func() {
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.drainOnce()
			}
		}
	}()
}

func (b *Broadcaster) drainOnce() {
	err := b.outbox.ScanUndelivered(maxRetries, func(id uint64, rec reporter.Record) error {
		if err := b.outbox.UpdateState(id, reporter.StateSent, rec.Retries); err != nil {
			return err
		}

		if err := b.publish(rec); err != nil {
			b.log.Warn("publish failed",
				zap.Uint64("id", id),
				zap.Uint32("retries", rec.Retries+1),
				zap.Error(err),
			)
			return b.outbox.UpdateState(id, reporter.StateFailed, rec.Retries+1)
		}

		if err := b.outbox.UpdateState(id, reporter.StateAcked, rec.Retries); err != nil {
			return err
		}
		return b.outbox.Delete(id)
	})
	if err != nil {
		b.log.Error("outbox drain failed", zap.Error(err))
	}
}

// publish sends one entry keyed by symbol, so per-instrument ordering
// survives topic partitioning. An entry whose instrument is not in the
// registry cannot be keyed and is treated as a failed send.
func (b *Broadcaster) publish(rec reporter.Record) error {
	sym, ok := b.reg.Symbol(rec.Trade.Instrument)
	if !ok {
		return fmt.Errorf("no symbol for instrument %d", rec.Trade.Instrument)
	}

	payload, err := json.Marshal(reporter.NewTradeEvent(rec.Trade, sym))
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: b.topic,
		Key:   sarama.StringEncoder(sym),
		Value: sarama.ByteEncoder(payload),
	}

	_, _, err = b.producer.SendMessage(msg)
	return err
}

func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
