package search

import (
	"context"
	"errors"
	"strings"
	"time"

	domainAccount "bloodlink/internal/domain/account"
	"bloodlink/internal/domain/blood"
	"bloodlink/internal/logger"
	"bloodlink/internal/metrics"
	appErrors "bloodlink/pkg/errors"
	"bloodlink/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultSearchLimit = 50
	DefaultBulkLimit   = 100
)

// Service implements donor search use cases
type Service struct {
	accounts    domainAccount.Repository
	metrics     *metrics.Metrics
	searchLimit int
	bulkLimit   int
	now         func() time.Time
}

// NewService creates a new search service. Non-positive limits fall back to
// the defaults.
func NewService(accounts domainAccount.Repository, m *metrics.Metrics, searchLimit, bulkLimit int) *Service {
	if searchLimit <= 0 {
		searchLimit = DefaultSearchLimit
	}
	if bulkLimit <= 0 {
		bulkLimit = DefaultBulkLimit
	}
	return &Service{
		accounts:    accounts,
		metrics:     m,
		searchLimit: searchLimit,
		bulkLimit:   bulkLimit,
		now:         time.Now,
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SearchDonors lists available active donors, newest first.
func (s *Service) SearchDonors(ctx context.Context, q *DonorQuery) ([]*DonorResponse, error) {
	start := time.Now()
	defer s.metrics.ObserveSearch("donors", start)

	q.BloodType = strings.ToUpper(strings.TrimSpace(q.BloodType))
	q.Pincode = strings.TrimSpace(q.Pincode)
	if err := utils.ValidateStruct(q); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, utils.ValidationMessage(err), appErrors.ErrInvalidInput)
	}

	filter := &domainAccount.DonorFilter{
		City:          strings.TrimSpace(q.City),
		State:         strings.TrimSpace(q.State),
		Pincode:       q.Pincode,
		AvailableOnly: true,
		Sort:          domainAccount.SortNewest,
		Limit:         s.searchLimit,
	}
	if q.BloodType != "" {
		filter.BloodTypes = []blood.Type{blood.Type(q.BloodType)}
	}

	donors, err := s.accounts.SearchDonors(ctx, filter)
	if err != nil {
		return nil, err
	}

	logger.Debug("Donor search completed",
		zap.String("blood_type", q.BloodType),
		zap.String("city", filter.City),
		zap.Int("results", len(donors)),
		zap.String("event", "donor_search"),
	)
	return toDonorResponses(donors, s.now()), nil
}

// BulkSearch lists donors of any of the given types for a hospital. City
// defaults to the hospital's own.
func (s *Service) BulkSearch(ctx context.Context, hospital *domainAccount.Account, req *BulkSearchRequest) ([]*DonorResponse, error) {
	start := time.Now()
	defer s.metrics.ObserveSearch("bulk", start)

	if hospital == nil || !hospital.IsHospital() {
		return nil, appErrors.Forbidden("Only hospitals can access this")
	}
	for i, bt := range req.BloodTypes {
		req.BloodTypes[i] = strings.ToUpper(strings.TrimSpace(bt))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, utils.ValidationMessage(err), appErrors.ErrInvalidInput)
	}

	city := strings.TrimSpace(req.City)
	if city == "" {
		city = hospital.Location.City
	}

	types := make([]blood.Type, len(req.BloodTypes))
	for i, bt := range req.BloodTypes {
		types[i] = blood.Type(bt)
	}

	donors, err := s.accounts.SearchDonors(ctx, &domainAccount.DonorFilter{
		BloodTypes:    types,
		City:          city,
		State:         strings.TrimSpace(req.State),
		AvailableOnly: req.AvailableOnly,
		Sort:          domainAccount.SortBloodTypeThenAvailable,
		Limit:         s.bulkLimit,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Hospital bulk donor search",
		zap.String("hospital_id", hospital.ID.String()),
		zap.Strings("blood_types", req.BloodTypes),
		zap.String("city", city),
		zap.Int("results", len(donors)),
		zap.String("event", "bulk_donor_search"),
	)
	return toDonorResponses(donors, s.now()), nil
}

// GetDonor returns a donor's public profile. Non-donor ids are not found.
func (s *Service) GetDonor(ctx context.Context, id uuid.UUID) (*DonorResponse, error) {
	acc, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainAccount.ErrAccountNotFound) {
			return nil, appErrors.NewAppError(appErrors.CodeNotFound, "Donor not found", err)
		}
		return nil, err
	}
	if !acc.IsDonor() {
		return nil, appErrors.NewAppError(appErrors.CodeNotFound, "Donor not found", domainAccount.ErrAccountNotFound)
	}

	resp := ToDonorResponse(acc, s.now())
	memberSince := acc.CreatedAt
	resp.MemberSince = &memberSince
	return resp, nil
}

// CompatibleTypes looks up the donor groups a recipient can receive from.
// Unrecognised input is echoed back as its own only match.
func (s *Service) CompatibleTypes(bloodType string) *CompatibilityResponse {
	t := blood.Type(strings.TrimSpace(bloodType))
	return &CompatibilityResponse{
		BloodType:       string(t),
		CompatibleTypes: blood.Strings(blood.CompatibleDonors(t)),
	}
}
