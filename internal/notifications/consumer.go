package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"ticketly/internal/shared/config"
	"ticketly/pkg/logger"
)

// Consumer drains the notification topic and hands each message to SMTP.
type Consumer struct {
	group  sarama.ConsumerGroup
	topics []string
	email  EmailSender
	cancel context.CancelFunc
	done   chan struct{}
}

// NewConsumer creates the notification delivery worker.
func NewConsumer(cfg *config.Config, email EmailSender) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = 30 * time.Second
	saramaConfig.Consumer.Group.Heartbeat.Interval = 3 * time.Second
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second

	group, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &Consumer{
		group:  group,
		topics: []string{cfg.Kafka.NotificationTopic},
		email:  email,
		done:   make(chan struct{}),
	}, nil
}

// Start runs the consume loop until Stop or context cancellation.
func (c *Consumer) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)

	go func() {
		for err := range c.group.Errors() {
			logger.GetDefault().Error("notification consumer error", "error", err.Error())
		}
	}()

	go func() {
		defer close(c.done)
		handler := &deliveryHandler{email: c.email}
		for {
			if ctx.Err() != nil {
				return
			}
			if err := c.group.Consume(ctx, c.topics, handler); err != nil {
				logger.GetDefault().Error("notification consume failed", "error", err.Error())
				time.Sleep(time.Second)
			}
		}
	}()
}

// Stop shuts down the consume loop and closes the group.
func (c *Consumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
		<-c.done
	}
	if err := c.group.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

type deliveryHandler struct {
	email EmailSender
}

func (h *deliveryHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *deliveryHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *deliveryHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		msg, err := MessageFromJSON(message.Value)
		if err != nil {
			// Malformed payloads are committed and skipped; redelivery would
			// fail the same way forever.
			logger.GetDefault().Error("malformed notification message",
				"topic", message.Topic, "offset", message.Offset, "error", err.Error())
			session.MarkMessage(message, "")
			continue
		}

		if err := h.email.Send(msg.RecipientEmail, msg.Subject, msg.Body); err != nil {
			logger.GetDefault().Error("notification delivery failed",
				"type", msg.Type, "order_id", msg.OrderID.String(), "error", err.Error())
		}
		session.MarkMessage(message, "")
	}
	return nil
}
