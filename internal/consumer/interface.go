package consumer

import "context"

// Debezium operation codes.
const (
	OpCreate   = "c"
	OpUpdate   = "u"
	OpDelete   = "d"
	OpSnapshot = "r"
)

// DebeziumFollowRecord is a row of the follows table in a Debezium CDC event.
type DebeziumFollowRecord struct {
	ID         uint    `json:"id"`
	FollowerID uint    `json:"follower_id"`
	FollowedID uint    `json:"followed_id"`
	CreatedAt  *string `json:"created_at"`
}

// DebeziumPayload is the payload field of a Debezium CDC message.
type DebeziumPayload struct {
	Before *DebeziumFollowRecord `json:"before"`
	After  *DebeziumFollowRecord `json:"after"`
	Op     string                `json:"op"`
	TsMs   int64                 `json:"ts_ms"`
}

// DebeziumMessage is the top-level Debezium CDC message envelope.
type DebeziumMessage struct {
	Payload DebeziumPayload `json:"payload"`
}

// Record returns the row the event is about: after for creates, before for deletes.
func (m *DebeziumMessage) Record() *DebeziumFollowRecord {
	if m.Payload.After != nil {
		return m.Payload.After
	}
	return m.Payload.Before
}

// CDCEventHandler processes a decoded Debezium CDC message.
type CDCEventHandler interface {
	HandleCDCEvent(ctx context.Context, event *DebeziumMessage) error
}

// CDCEventConsumer manages the Kafka consumer lifecycle.
type CDCEventConsumer interface {
	Start(ctx context.Context) error
	Close() error
}
