package request

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventCreated       EventType = "request.created"
	EventStatusChanged EventType = "request.status_changed"
	EventResponded     EventType = "request.response"
)

// Event is published whenever a request changes in a way donors or
// requesters may want to be notified about.
type Event struct {
	Type       EventType  `json:"type"`
	RequestID  uuid.UUID  `json:"request_id"`
	BloodType  string     `json:"blood_type"`
	City       string     `json:"city"`
	Urgency    Urgency    `json:"urgency"`
	Status     Status     `json:"status"`
	DonorID    *uuid.UUID `json:"donor_id,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

func NewEvent(t EventType, r *BloodRequest, at time.Time) Event {
	return Event{
		Type:       t,
		RequestID:  r.ID,
		BloodType:  string(r.BloodType),
		City:       r.Location.City,
		Urgency:    r.Urgency,
		Status:     r.Status,
		OccurredAt: at,
	}
}

// Publisher delivers request events to subscribers. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
