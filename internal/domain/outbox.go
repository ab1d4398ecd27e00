package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Kafka topics fed by the outbox
const (
	TopicEventLifecycle = "event-lifecycle"
	TopicTicketEvents   = "ticket-events"
)

// OutboxEventType names what happened
type OutboxEventType string

const (
	OutboxEventCreated   OutboxEventType = "event.created"
	OutboxEventUpdated   OutboxEventType = "event.updated"
	OutboxEventPublished OutboxEventType = "event.published"
	OutboxEventCancelled OutboxEventType = "event.cancelled"
	OutboxEventDeleted   OutboxEventType = "event.deleted"

	OutboxTicketPurchased OutboxEventType = "ticket.purchased"
	OutboxTicketCancelled OutboxEventType = "ticket.cancelled"
	OutboxTicketUsed      OutboxEventType = "ticket.used"
)

// OutboxStatus represents the status of an outbox message
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

const DefaultOutboxMaxRetries = 5

// OutboxMessage is a row in the outbox table
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     OutboxEventType
	Payload       []byte
	Topic         string
	PartitionKey  string
	Status        OutboxStatus
	RetryCount    int
	MaxRetries    int
	LastError     string
	CreatedAt     time.Time
	PublishedAt   *time.Time
}

func newOutboxMessage(aggregateType, aggregateID, partitionKey, topic string, eventType OutboxEventType, payload interface{}) (*OutboxMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &OutboxMessage{
		ID:            uuid.NewString(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       data,
		Topic:         topic,
		PartitionKey:  partitionKey,
		Status:        OutboxStatusPending,
		MaxRetries:    DefaultOutboxMaxRetries,
		CreatedAt:     time.Now(),
	}, nil
}

// CanRetry checks if a failed message has attempts left
func (m *OutboxMessage) CanRetry() bool {
	return m.Status == OutboxStatusFailed && m.RetryCount < m.MaxRetries
}

// EventChanged is the payload on the event-lifecycle topic
type EventChanged struct {
	Type       OutboxEventType `json:"type"`
	EventID    string          `json:"event_id"`
	Name       string          `json:"name"`
	Status     EventStatus     `json:"status"`
	VenueID    string          `json:"venue_id"`
	StartTime  time.Time       `json:"start_time"`
	OccurredAt time.Time       `json:"occurred_at"`
	ActorID    string          `json:"actor_id,omitempty"`
}

// EventOutboxMessage records an event lifecycle change, keyed by event id
func EventOutboxMessage(eventType OutboxEventType, event *Event, actorID string) (*OutboxMessage, error) {
	payload := EventChanged{
		Type:       eventType,
		EventID:    event.ID,
		Name:       event.Name,
		Status:     event.Status,
		VenueID:    event.VenueID,
		StartTime:  event.StartTime,
		OccurredAt: time.Now(),
		ActorID:    actorID,
	}
	return newOutboxMessage("event", event.ID, event.ID, TopicEventLifecycle, eventType, payload)
}

// TicketChanged is the payload on the ticket-events topic
type TicketChanged struct {
	Type         OutboxEventType `json:"type"`
	TicketID     string          `json:"ticket_id"`
	TicketNumber string          `json:"ticket_number"`
	EventID      string          `json:"event_id"`
	UserID       string          `json:"user_id"`
	Status       TicketStatus    `json:"status"`
	Price        float64         `json:"price"`
	OccurredAt   time.Time       `json:"occurred_at"`
	ActorID      string          `json:"actor_id,omitempty"`
}

// TicketOutboxMessage records a ticket change, partitioned by its event
func TicketOutboxMessage(eventType OutboxEventType, ticket *Ticket, actorID string) (*OutboxMessage, error) {
	payload := TicketChanged{
		Type:         eventType,
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketNumber,
		EventID:      ticket.EventID,
		UserID:       ticket.UserID,
		Status:       ticket.Status,
		Price:        ticket.Price,
		OccurredAt:   time.Now(),
		ActorID:      actorID,
	}
	return newOutboxMessage("ticket", ticket.ID, ticket.EventID, TopicTicketEvents, eventType, payload)
}
