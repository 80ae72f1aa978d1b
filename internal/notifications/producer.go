package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"ticketly/internal/shared/config"
)

// Producer publishes notification messages to the broker.
type Producer interface {
	Publish(ctx context.Context, msg *Message) error
	Close() error
}

type kafkaProducer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaProducer creates a synchronous Kafka producer for the notification
// topic. Idempotent writes keep gateway-callback retries from duplicating
// customer emails.
func NewKafkaProducer(cfg *config.Config) (Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Timeout = 10 * time.Second
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Kafka.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &kafkaProducer{producer: producer, topic: cfg.Kafka.NotificationTopic}, nil
}

func (p *kafkaProducer) Publish(_ context.Context, msg *Message) error {
	data, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(msg.PartitionKey()),
		Value:     sarama.ByteEncoder(data),
		Timestamp: msg.CreatedAt,
		Headers: []sarama.RecordHeader{
			{Key: []byte("notification_type"), Value: []byte(msg.Type)},
			{Key: []byte("order_id"), Value: []byte(msg.OrderID.String())},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send notification to Kafka: %w", err)
	}
	return nil
}

func (p *kafkaProducer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}
