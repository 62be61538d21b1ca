package hospital

import (
	"context"
	"strings"

	domainAccount "bloodlink/internal/domain/account"
	domainRequest "bloodlink/internal/domain/request"
	"bloodlink/internal/logger"
	requestUsecase "bloodlink/internal/usecase/request"
	appErrors "bloodlink/pkg/errors"
	"bloodlink/pkg/utils"

	"go.uber.org/zap"
)

// Service implements the hospital dashboard and aggregate views
type Service struct {
	accounts domainAccount.Repository
	requests domainRequest.Repository
	lister   *requestUsecase.Service
}

func NewService(accounts domainAccount.Repository, requests domainRequest.Repository, lister *requestUsecase.Service) *Service {
	return &Service{
		accounts: accounts,
		requests: requests,
		lister:   lister,
	}
}

func requireHospital(a *domainAccount.Account) error {
	if a == nil || !a.IsHospital() {
		return appErrors.Forbidden("Only hospitals can access this")
	}
	return nil
}

// Dashboard summarises the hospital's own requests and the donor pool in
// its city.
func (s *Service) Dashboard(ctx context.Context, hospital *domainAccount.Account) (*DashboardResponse, error) {
	if err := requireHospital(hospital); err != nil {
		return nil, err
	}

	byStatus, err := s.requests.CountByStatus(ctx, hospital.ID)
	if err != nil {
		return nil, err
	}

	city := hospital.Location.City
	total, err := s.accounts.CountDonors(ctx, &domainAccount.DonorFilter{City: city, ExactCity: true})
	if err != nil {
		return nil, err
	}
	available, err := s.accounts.CountDonors(ctx, &domainAccount.DonorFilter{City: city, ExactCity: true, AvailableOnly: true})
	if err != nil {
		return nil, err
	}

	stats, err := s.accounts.DonorStatsByBloodType(ctx, &domainAccount.DonorFilter{City: city, ExactCity: true, AvailableOnly: true})
	if err != nil {
		return nil, err
	}
	distribution := make([]DistributionEntry, len(stats))
	for i, st := range stats {
		distribution[i] = DistributionEntry{BloodType: st.BloodType.String(), Count: st.Total}
	}

	logger.Debug("Hospital dashboard built",
		zap.String("hospital_id", hospital.ID.String()),
		zap.String("city", city),
	)

	return &DashboardResponse{
		HospitalName:          hospital.HospitalName(),
		City:                  city,
		Requests:              toRequestCounts(byStatus),
		Donors:                DonorCounts{Total: total, Available: available},
		BloodTypeDistribution: distribution,
	}, nil
}

// BloodStats reports donor supply and active request demand per blood type.
// City defaults to the hospital's own.
func (s *Service) BloodStats(ctx context.Context, hospital *domainAccount.Account, q *BloodStatsQuery) (*BloodStatsResponse, error) {
	if err := requireHospital(hospital); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(q); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, utils.ValidationMessage(err), appErrors.ErrInvalidInput)
	}

	city := strings.TrimSpace(q.City)
	if city == "" {
		city = hospital.Location.City
	}

	donorStats, err := s.accounts.DonorStatsByBloodType(ctx, &domainAccount.DonorFilter{City: city})
	if err != nil {
		return nil, err
	}
	demand, err := s.requests.DemandByBloodType(ctx, city)
	if err != nil {
		return nil, err
	}

	return &BloodStatsResponse{
		City:       city,
		DonorStats: donorStats,
		Demand:     demand,
	}, nil
}

func (s *Service) MyRequests(ctx context.Context, hospital *domainAccount.Account, status string) ([]*requestUsecase.BloodRequestResponse, error) {
	if err := requireHospital(hospital); err != nil {
		return nil, err
	}
	return s.lister.ListMine(ctx, hospital.ID, status)
}
