// Package notify publishes finished ETL runs to kafka.
package notify

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/rotisserie/eris"
	"github.com/segmentio/kafka-go"

	"github.com/ougirez/ayudas/internal/etl"
)

// maxErrors caps the row errors carried by one message.
const maxErrors = 100

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// RunEvent is the message body, keyed by run id. Row errors are capped to keep
// messages small.
type RunEvent struct {
	etl.Log
	Truncated bool `json:"errors_truncated"`
}

type Producer struct {
	writer messageWriter
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func NewRunEvent(report *etl.Report) RunEvent {
	event := RunEvent{Log: report.Log()}
	if len(event.Errors) > maxErrors {
		event.Errors = event.Errors[:maxErrors]
		event.Truncated = true
	}
	return event
}

func (p *Producer) Publish(ctx context.Context, report *etl.Report) error {
	value, err := sonic.Marshal(NewRunEvent(report))
	if err != nil {
		return eris.Wrap(err, "notify: marshal run")
	}

	msg := kafka.Message{
		Key:   []byte(report.ID.String()),
		Value: value,
	}
	if err = p.writer.WriteMessages(ctx, msg); err != nil {
		return eris.Wrap(err, "notify: write message")
	}

	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
