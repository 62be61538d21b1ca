package account

import (
	"context"
	"time"

	"bloodlink/internal/domain/blood"

	"github.com/google/uuid"
)

//go:generate mockgen -source=repository.go -destination=mocks/repository_mock.go -package=mocks

// Repository defines persistence operations for accounts
type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	Update(ctx context.Context, account *Account) error
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error
	// RecordDonation stores the donation date and clears availability in one write.
	RecordDonation(ctx context.Context, id uuid.UUID, donatedAt time.Time) error

	SearchDonors(ctx context.Context, filter *DonorFilter) ([]*Account, error)
	CountDonors(ctx context.Context, filter *DonorFilter) (int64, error)
	DonorStatsByBloodType(ctx context.Context, filter *DonorFilter) ([]BloodTypeCount, error)
}

type DonorSort int

const (
	// SortNewest orders by registration time, newest first.
	SortNewest DonorSort = iota
	// SortBloodTypeThenAvailable orders by blood type ascending, available donors first.
	SortBloodTypeThenAvailable
)

// DonorFilter selects active donor accounts. City and State match as
// case-insensitive substrings; Pincode matches exactly.
type DonorFilter struct {
	BloodTypes    []blood.Type
	City          string
	ExactCity     bool // City must equal the stored city instead of matching a substring
	State         string
	Pincode       string
	AvailableOnly bool
	Sort          DonorSort
	Limit         int
}

type BloodTypeCount struct {
	BloodType blood.Type `json:"blood_type"`
	Total     int64      `json:"total"`
	Available int64      `json:"available"`
}
