package request

import (
	"context"
	"time"

	"bloodlink/internal/domain/blood"

	"github.com/google/uuid"
)

//go:generate mockgen -source=repository.go -destination=mocks/repository_mock.go -package=mocks

// Repository defines persistence operations for blood requests
type Repository interface {
	Create(ctx context.Context, request *BloodRequest) error
	// CreateBatch stores all requests or none.
	CreateBatch(ctx context.Context, requests []*BloodRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*BloodRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Delete(ctx context.Context, id uuid.UUID) error
	// SaveResponse inserts the donor's response or replaces their earlier one.
	SaveResponse(ctx context.Context, requestID uuid.UUID, response *Response) error
	List(ctx context.Context, filter *Filter) ([]*BloodRequest, error)

	CountByStatus(ctx context.Context, requesterID uuid.UUID) (map[Status]int64, error)
	DemandByBloodType(ctx context.Context, city string) ([]BloodTypeDemand, error)

	// MarkExpired moves active requests whose expiry is at or before now to expired.
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
	// PurgeExpired permanently removes requests whose expiry is at or before cutoff.
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type Sort int

const (
	// SortUrgency orders critical first, then newest.
	SortUrgency Sort = iota
	// SortNewest orders by creation time, newest first.
	SortNewest
)

// Filter represents filtering options for listing requests. City matches as
// a case-insensitive substring. A non-zero LiveAt hides requests already
// past expiry at that instant.
type Filter struct {
	RequesterID *uuid.UUID
	BloodType   *blood.Type
	City        string
	Urgency     *Urgency
	Status      *Status
	LiveAt      time.Time
	Sort        Sort
	Limit       int
}

type BloodTypeDemand struct {
	BloodType        blood.Type `json:"blood_type"`
	TotalRequests    int64      `json:"total_requests"`
	TotalUnitsNeeded int64      `json:"total_units_needed"`
}
