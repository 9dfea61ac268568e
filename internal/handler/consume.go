package handler

import (
	"encoding/json"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/bookvault/borrowing-service/pkg/kafka"
)

type sendMessage func(message string) error

// Consumer drains the notifications topic and forwards messages to the
// configured sink. Delivery is best-effort; failed sends are logged and the
// offset is still committed.
type Consumer struct {
	send  sendMessage
	log   *zap.Logger
	ready chan bool
}

func NewConsumer(send sendMessage, log *zap.Logger) *Consumer {
	return &Consumer{
		send:  send,
		log:   log.Named("consumer"),
		ready: make(chan bool),
	}
}

func (consumer *Consumer) Setup(sarama.ConsumerGroupSession) error {
	// Mark the consumer as ready
	close(consumer.ready)
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited.
func (consumer *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (consumer *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				consumer.log.Warn("message channel was closed")
				return nil
			}
			var event kafka.Event
			if err := json.Unmarshal(message.Value, &event); err != nil {
				consumer.log.Error("", zap.Error(err))
				session.MarkMessage(message, "")
				continue
			}

			if err := consumer.send(event.Message); err != nil {
				consumer.log.Error("consumer.send", zap.String("event", event.Event), zap.Error(err))
			}

			consumer.log.Debug("Message claimed:", zap.String("value", string(message.Value)), zap.Time("timestamp", message.Timestamp), zap.String("topic", message.Topic))
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}
