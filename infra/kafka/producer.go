package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// Producer wraps a kafka-go writer for one topic.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer returns a synchronous producer with full acks.
func NewProducer(brokers []string, topic string) *Producer {
	return newProducer(brokers, topic, false)
}

// NewAsyncProducer returns a fire-and-forget producer. Used by the live
// trade feed so publication never blocks the matching path.
func NewAsyncProducer(brokers []string, topic string) *Producer {
	return newProducer(brokers, topic, true)
}

func newProducer(brokers []string, topic string, async bool) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Async:        async,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (p *Producer) Send(
	ctx context.Context,
	key []byte,
	value []byte,
) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
