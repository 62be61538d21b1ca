package request

import (
	"time"

	"bloodlink/internal/domain/account"
	"bloodlink/internal/domain/blood"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a blood request
type Status string

const (
	StatusActive    Status = "active"
	StatusFulfilled Status = "fulfilled"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired" // set by the expiry sweeper only
)

type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyUrgent   Urgency = "urgent"
	UrgencyNormal   Urgency = "normal"
)

// Priority ranks urgencies for ordering; higher sorts first.
func (u Urgency) Priority() int {
	switch u {
	case UrgencyCritical:
		return 3
	case UrgencyUrgent:
		return 2
	case UrgencyNormal:
		return 1
	default:
		return 0
	}
}

func (u Urgency) IsValid() bool {
	return u.Priority() > 0
}

type ResponseStatus string

const (
	ResponsePending  ResponseStatus = "pending"
	ResponseAccepted ResponseStatus = "accepted"
	ResponseDeclined ResponseStatus = "declined"
)

func (s ResponseStatus) IsValid() bool {
	switch s {
	case ResponsePending, ResponseAccepted, ResponseDeclined:
		return true
	}
	return false
}

const (
	DefaultUnits   = 1
	DefaultUrgency = UrgencyUrgent
	DefaultTTL     = 7 * 24 * time.Hour
)

// Response is a donor's answer to a request, stored with the request.
type Response struct {
	ID          uuid.UUID
	DonorID     uuid.UUID
	Status      ResponseStatus
	Message     *string
	RespondedAt time.Time
}

// BloodRequest represents a patient's or hospital's call for blood
type BloodRequest struct {
	ID            uuid.UUID
	RequestedBy   uuid.UUID
	BloodType     blood.Type
	UnitsNeeded   int
	Urgency       Urgency
	Location      account.Location
	HospitalName  *string
	PatientName   string
	ContactNumber string
	Reason        *string
	Notes         *string
	Status        Status
	Responses     []Response

	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time
}

func (r *BloodRequest) IsOwnedBy(accountID uuid.UUID) bool {
	return r.RequestedBy == accountID
}

func (r *BloodRequest) IsExpired(now time.Time) bool {
	return r.Status == StatusExpired || !now.Before(r.ExpiresAt)
}

// AcceptsResponses reports whether donors may still answer the request.
func (r *BloodRequest) AcceptsResponses(now time.Time) bool {
	return r.Status == StatusActive && !r.IsExpired(now)
}

// FindResponse returns the response given by donorID, if any.
func (r *BloodRequest) FindResponse(donorID uuid.UUID) *Response {
	for i := range r.Responses {
		if r.Responses[i].DonorID == donorID {
			return &r.Responses[i]
		}
	}
	return nil
}

// CountResponses tallies responses by status.
func (r *BloodRequest) CountResponses() map[ResponseStatus]int {
	counts := make(map[ResponseStatus]int, 3)
	for _, resp := range r.Responses {
		counts[resp.Status]++
	}
	return counts
}
