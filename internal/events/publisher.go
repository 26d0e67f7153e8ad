package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// KafkaPublisher hands accepted-transition events to Kafka so notification
// delivery and downstream consumers stay out of the dispatch core.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    logrus.FieldLogger
}

// NewKafkaPublisher builds a writer for the given broker and topic. The key
// is the trip id, keeping events for one trip on one partition and therefore
// in order.
func NewKafkaPublisher(brokerURL, topic string, log logrus.FieldLogger) *KafkaPublisher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokerURL),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
		log: log,
	}
}

// Publish JSON-encodes the event and writes it to the topic.
func (p *KafkaPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	msg := kafka.Message{Key: []byte(key), Value: payload}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.WithError(err).WithField("key", key).Error("kafka write failed")
		return err
	}
	return nil
}

// Close shuts down the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
