package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Message types.
const (
	TypeOrderCompleted = "order_completed"
	TypeOrderFailed    = "order_failed"
	TypeOrderCancelled = "order_cancelled"
)

// Message is one customer notification flowing through the broker. The
// subject and body are rendered by the producer so the delivery worker stays
// a dumb pipe to SMTP.
type Message struct {
	ID             uuid.UUID `json:"id"`
	Type           string    `json:"type"`
	RecipientEmail string    `json:"recipient_email"`
	RecipientName  string    `json:"recipient_name"`
	Subject        string    `json:"subject"`
	Body           string    `json:"body"`
	OrderID        uuid.UUID `json:"order_id"`
	EventID        uuid.UUID `json:"event_id"`
	CreatedAt      time.Time `json:"created_at"`
}

func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MessageFromJSON(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// PartitionKey routes all of one customer's messages to the same partition
// so they are delivered in order.
func (m *Message) PartitionKey() string {
	return m.RecipientEmail
}
