//go:build integration

package postgres_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"bloodlink/internal/domain/account"
	"bloodlink/internal/domain/blood"
	"bloodlink/internal/domain/request"
	"bloodlink/internal/infrastructure/database/postgres"
	"bloodlink/internal/testutil/containers"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	accounts *postgres.AccountRepository
	requests *postgres.RequestRepository
	ctx      context.Context
	now      time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.accounts = postgres.NewAccountRepository(s.postgres.DB)
	s.requests = postgres.NewRequestRepository(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	// Truncate in dependency order
	err := s.postgres.TruncateTables(s.ctx, "request_responses", "blood_requests", "accounts")
	s.Require().NoError(err)
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (s *PostgresStoreSuite) newAccount(role account.Role, city string) *account.Account {
	a := &account.Account{
		Name:  "Test " + string(role),
		Email: uuid.NewString() + "@example.com",
		Phone: "9876543210",
		Role:  role,
		Location: account.Location{
			Address: "12 MG Road",
			City:    city,
			State:   "Maharashtra",
			Pincode: "411001",
		},
		IsActive:        true,
		ProfileComplete: true,
		CreatedAt:       s.now,
	}
	if role == account.RoleHospital {
		a.Hospital = &account.HospitalProfile{HospitalName: "City Hospital", RegistrationNumber: "REG-1"}
	}
	return a
}

// donor stores a donor registered age before s.now.
func (s *PostgresStoreSuite) donor(city string, bt blood.Type, available bool, age time.Duration) *account.Account {
	a := s.newAccount(account.RoleDonor, city)
	a.Donor = &account.DonorProfile{BloodType: bt, Available: available}
	a.CreatedAt = s.now.Add(-age)
	s.Require().NoError(s.accounts.Create(s.ctx, a))
	return a
}

func (s *PostgresStoreSuite) patient() *account.Account {
	a := s.newAccount(account.RolePatient, "Pune")
	s.Require().NoError(s.accounts.Create(s.ctx, a))
	return a
}

// bloodRequest builds an active request created age before s.now.
func (s *PostgresStoreSuite) bloodRequest(owner uuid.UUID, bt blood.Type, urgency request.Urgency, city string, age time.Duration) *request.BloodRequest {
	created := s.now.Add(-age)
	return &request.BloodRequest{
		RequestedBy:   owner,
		BloodType:     bt,
		UnitsNeeded:   2,
		Urgency:       urgency,
		Location:      account.Location{Address: "Ward 4", City: city, State: "Maharashtra", Pincode: "411001"},
		PatientName:   "Asha",
		ContactNumber: "9876543210",
		Status:        request.StatusActive,
		CreatedAt:     created,
		UpdatedAt:     created,
		ExpiresAt:     created.Add(request.DefaultTTL),
	}
}

func (s *PostgresStoreSuite) storeRequest(r *request.BloodRequest) *request.BloodRequest {
	s.Require().NoError(s.requests.Create(s.ctx, r))
	return r
}

func (s *PostgresStoreSuite) responseRows() int64 {
	var n int64
	s.Require().NoError(s.postgres.DB.WithContext(s.ctx).Table("request_responses").Count(&n).Error)
	return n
}

func accountIDs(accounts []*account.Account) []uuid.UUID {
	ids := make([]uuid.UUID, len(accounts))
	for i, a := range accounts {
		ids[i] = a.ID
	}
	return ids
}

func requestIDs(reqs []*request.BloodRequest) []uuid.UUID {
	ids := make([]uuid.UUID, len(reqs))
	for i, r := range reqs {
		ids[i] = r.ID
	}
	return ids
}

func (s *PostgresStoreSuite) TestDuplicateEmailIsCaseInsensitive() {
	first := s.newAccount(account.RolePatient, "Pune")
	first.Email = "Ravi.Kumar@Example.com"
	s.Require().NoError(s.accounts.Create(s.ctx, first))

	second := s.newAccount(account.RolePatient, "Pune")
	second.Email = "ravi.kumar@example.com"
	s.ErrorIs(s.accounts.Create(s.ctx, second), account.ErrAccountAlreadyExists)

	got, err := s.accounts.GetByEmail(s.ctx, "RAVI.KUMAR@example.COM")
	s.Require().NoError(err)
	s.Equal(first.ID, got.ID)
	s.Equal("ravi.kumar@example.com", got.Email)

	_, err = s.accounts.GetByEmail(s.ctx, "nobody@example.com")
	s.ErrorIs(err, account.ErrAccountNotFound)
}

func (s *PostgresStoreSuite) TestFalseFlagsArePersisted() {
	a := s.newAccount(account.RoleDonor, "Pune")
	a.Donor = &account.DonorProfile{BloodType: blood.BPositive, Available: true}
	a.IsActive = false
	a.ProfileComplete = false
	s.Require().NoError(s.accounts.Create(s.ctx, a))

	got, err := s.accounts.GetByID(s.ctx, a.ID)
	s.Require().NoError(err)
	s.False(got.IsActive)
	s.False(got.ProfileComplete)

	count, err := s.accounts.CountDonors(s.ctx, &account.DonorFilter{City: "Pune"})
	s.Require().NoError(err)
	s.Zero(count, "inactive donors stay out of search")
}

func (s *PostgresStoreSuite) TestSearchDonorsMatchesCitySubstring() {
	coeur := s.donor("Coeur d'Alene", blood.OPositive, true, time.Hour)
	pune := s.donor("Pune", blood.OPositive, true, 2*time.Hour)
	cantonment := s.donor("pune cantonment", blood.OPositive, true, 3*time.Hour)
	s.donor("Mumbai", blood.OPositive, true, 4*time.Hour)

	got, err := s.accounts.SearchDonors(s.ctx, &account.DonorFilter{City: "PUNE"})
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{pune.ID, cantonment.ID}, accountIDs(got))

	got, err = s.accounts.SearchDonors(s.ctx, &account.DonorFilter{City: "d'alene"})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(coeur.ID, got[0].ID)
	s.Equal("Coeur d'Alene", got[0].Location.City)

	for _, city := range []string{"%", "_une", `\`} {
		got, err = s.accounts.SearchDonors(s.ctx, &account.DonorFilter{City: city})
		s.Require().NoError(err)
		s.Empty(got, "city %q matches literally", city)
	}
}

func (s *PostgresStoreSuite) TestSearchDonorsNewestFirstWithLimit() {
	oldest := s.donor("Pune", blood.APositive, true, 3*time.Hour)
	newest := s.donor("Pune", blood.APositive, true, time.Hour)
	middle := s.donor("Pune", blood.APositive, true, 2*time.Hour)
	s.donor("Pune", blood.APositive, false, 30*time.Minute)

	got, err := s.accounts.SearchDonors(s.ctx, &account.DonorFilter{
		BloodTypes:    []blood.Type{blood.APositive},
		AvailableOnly: true,
	})
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{newest.ID, middle.ID, oldest.ID}, accountIDs(got))

	got, err = s.accounts.SearchDonors(s.ctx, &account.DonorFilter{AvailableOnly: true, Limit: 2})
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{newest.ID, middle.ID}, accountIDs(got))
}

func (s *PostgresStoreSuite) TestSearchDonorsByBloodTypeThenAvailable() {
	oNeg := s.donor("Pune", blood.ONegative, true, time.Hour)
	aPosBusy := s.donor("Pune", blood.APositive, false, time.Hour)
	abNeg := s.donor("Pune", blood.ABNegative, true, time.Hour)
	aPosFree := s.donor("Pune", blood.APositive, true, 2*time.Hour)
	s.donor("Pune", blood.BPositive, true, time.Hour)

	got, err := s.accounts.SearchDonors(s.ctx, &account.DonorFilter{
		BloodTypes: []blood.Type{blood.ONegative, blood.APositive, blood.ABNegative},
		City:       "Pune",
		Sort:       account.SortBloodTypeThenAvailable,
	})
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{aPosFree.ID, aPosBusy.ID, abNeg.ID, oNeg.ID}, accountIDs(got))
}

func (s *PostgresStoreSuite) TestExactCityCounts() {
	s.donor("Pune", blood.OPositive, true, time.Hour)
	s.donor("Pune Cantonment", blood.OPositive, true, time.Hour)
	s.donor("pune", blood.OPositive, false, time.Hour)

	substring, err := s.accounts.CountDonors(s.ctx, &account.DonorFilter{City: "Pune"})
	s.Require().NoError(err)
	s.Equal(int64(3), substring)

	exact, err := s.accounts.CountDonors(s.ctx, &account.DonorFilter{City: "Pune", ExactCity: true})
	s.Require().NoError(err)
	s.Equal(int64(1), exact)
}

func (s *PostgresStoreSuite) TestDonorStatsByBloodType() {
	s.donor("Pune", blood.OPositive, true, time.Hour)
	s.donor("Pune", blood.OPositive, false, time.Hour)
	s.donor("Pune", blood.ANegative, true, time.Hour)
	s.donor("Mumbai", blood.OPositive, true, time.Hour)

	stats, err := s.accounts.DonorStatsByBloodType(s.ctx, &account.DonorFilter{City: "Pune", ExactCity: true})
	s.Require().NoError(err)
	s.Equal([]account.BloodTypeCount{
		{BloodType: blood.ANegative, Total: 1, Available: 1},
		{BloodType: blood.OPositive, Total: 2, Available: 1},
	}, stats)
}

func (s *PostgresStoreSuite) TestRecordDonationClearsAvailability() {
	d := s.donor("Pune", blood.BNegative, true, time.Hour)
	donatedAt := s.now.Add(-48 * time.Hour)

	s.Require().NoError(s.accounts.RecordDonation(s.ctx, d.ID, donatedAt))

	got, err := s.accounts.GetByID(s.ctx, d.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.Donor)
	s.False(got.Donor.Available)
	s.Require().NotNil(got.Donor.LastDonationDate)
	s.True(donatedAt.Equal(*got.Donor.LastDonationDate))

	s.Require().NoError(s.accounts.SetAvailability(s.ctx, d.ID, true))
	got, err = s.accounts.GetByID(s.ctx, d.ID)
	s.Require().NoError(err)
	s.True(got.Donor.Available)

	p := s.patient()
	s.ErrorIs(s.accounts.RecordDonation(s.ctx, p.ID, donatedAt), account.ErrAccountNotFound)
	s.ErrorIs(s.accounts.SetAvailability(s.ctx, uuid.New(), true), account.ErrAccountNotFound)
}

func (s *PostgresStoreSuite) TestListOrdersByUrgencyThenNewest() {
	owner := s.patient().ID
	normal := s.storeRequest(s.bloodRequest(owner, blood.OPositive, request.UrgencyNormal, "Pune", time.Hour))
	olderCritical := s.storeRequest(s.bloodRequest(owner, blood.OPositive, request.UrgencyCritical, "Pune", 5*time.Hour))
	urgent := s.storeRequest(s.bloodRequest(owner, blood.OPositive, request.UrgencyUrgent, "Pune", 2*time.Hour))
	newerCritical := s.storeRequest(s.bloodRequest(owner, blood.OPositive, request.UrgencyCritical, "Pune", 3*time.Hour))

	active := request.StatusActive
	got, err := s.requests.List(s.ctx, &request.Filter{Status: &active})
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{newerCritical.ID, olderCritical.ID, urgent.ID, normal.ID}, requestIDs(got))

	got, err = s.requests.List(s.ctx, &request.Filter{RequesterID: &owner, Sort: request.SortNewest, Limit: 3})
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{normal.ID, urgent.ID, newerCritical.ID}, requestIDs(got))
}

func (s *PostgresStoreSuite) TestListFiltersAndHidesLapsedRequests() {
	owner := s.patient().ID
	other := s.patient().ID
	live := s.storeRequest(s.bloodRequest(owner, blood.ABPositive, request.UrgencyUrgent, "Pune Cantonment", time.Hour))
	lapsed := s.storeRequest(s.bloodRequest(owner, blood.ABPositive, request.UrgencyUrgent, "Pune", 8*24*time.Hour))
	s.storeRequest(s.bloodRequest(owner, blood.OPositive, request.UrgencyUrgent, "Pune", time.Hour))
	s.storeRequest(s.bloodRequest(other, blood.ABPositive, request.UrgencyUrgent, "Nagpur", time.Hour))

	bt := blood.ABPositive
	got, err := s.requests.List(s.ctx, &request.Filter{BloodType: &bt, City: "pune"})
	s.Require().NoError(err)
	s.ElementsMatch([]uuid.UUID{live.ID, lapsed.ID}, requestIDs(got))

	got, err = s.requests.List(s.ctx, &request.Filter{BloodType: &bt, City: "pune", LiveAt: s.now})
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{live.ID}, requestIDs(got))

	critical := request.UrgencyCritical
	got, err = s.requests.List(s.ctx, &request.Filter{Urgency: &critical})
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *PostgresStoreSuite) TestCreateBatchIsAllOrNothing() {
	owner := s.patient().ID

	bad := s.bloodRequest(owner, blood.OPositive, request.Urgency("someday"), "Pune", time.Hour)
	err := s.requests.CreateBatch(s.ctx, []*request.BloodRequest{
		s.bloodRequest(owner, blood.OPositive, request.UrgencyUrgent, "Pune", time.Hour),
		bad,
	})
	s.Require().Error(err)

	got, err := s.requests.List(s.ctx, &request.Filter{RequesterID: &owner})
	s.Require().NoError(err)
	s.Empty(got)

	s.Require().NoError(s.requests.CreateBatch(s.ctx, []*request.BloodRequest{
		s.bloodRequest(owner, blood.OPositive, request.UrgencyUrgent, "Pune", time.Hour),
		s.bloodRequest(owner, blood.ANegative, request.UrgencyCritical, "Pune", 2*time.Hour),
	}))
	got, err = s.requests.List(s.ctx, &request.Filter{RequesterID: &owner})
	s.Require().NoError(err)
	s.Len(got, 2)
}

func (s *PostgresStoreSuite) TestSaveResponseReplacesDonorsEarlierResponse() {
	owner := s.patient().ID
	req := s.storeRequest(s.bloodRequest(owner, blood.OPositive, request.UrgencyCritical, "Pune", time.Hour))
	first := s.donor("Pune", blood.OPositive, true, time.Hour)
	second := s.donor("Pune", blood.ONegative, true, time.Hour)

	s.Require().NoError(s.requests.SaveResponse(s.ctx, req.ID, &request.Response{
		DonorID: first.ID, Status: request.ResponseAccepted, RespondedAt: s.now.Add(time.Minute),
	}))
	s.Require().NoError(s.requests.SaveResponse(s.ctx, req.ID, &request.Response{
		DonorID: second.ID, Status: request.ResponsePending, RespondedAt: s.now.Add(2 * time.Minute),
	}))
	msg := "cannot make it today"
	s.Require().NoError(s.requests.SaveResponse(s.ctx, req.ID, &request.Response{
		DonorID: first.ID, Status: request.ResponseDeclined, Message: &msg, RespondedAt: s.now.Add(3 * time.Minute),
	}))

	got, err := s.requests.GetByID(s.ctx, req.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Responses, 2)
	s.Equal(second.ID, got.Responses[0].DonorID)
	s.Equal(first.ID, got.Responses[1].DonorID)
	s.Equal(request.ResponseDeclined, got.Responses[1].Status)
	s.Require().NotNil(got.Responses[1].Message)
	s.Equal(msg, *got.Responses[1].Message)
	s.True(s.now.Add(3 * time.Minute).Equal(got.Responses[1].RespondedAt))

	err = s.requests.SaveResponse(s.ctx, uuid.New(), &request.Response{
		DonorID: first.ID, Status: request.ResponseAccepted, RespondedAt: s.now,
	})
	s.ErrorIs(err, request.ErrRequestNotFound)
}

func (s *PostgresStoreSuite) TestConcurrentResponsesFromOneDonor() {
	owner := s.patient().ID
	req := s.storeRequest(s.bloodRequest(owner, blood.OPositive, request.UrgencyCritical, "Pune", time.Hour))
	d := s.donor("Pune", blood.OPositive, true, time.Hour)

	const goroutines = 10
	var wg sync.WaitGroup
	errs := make(chan error, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.requests.SaveResponse(s.ctx, req.ID, &request.Response{
				DonorID:     d.ID,
				Status:      request.ResponseAccepted,
				RespondedAt: s.now.Add(time.Duration(i) * time.Second),
			})
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		s.NoError(err)
	}
	s.Equal(int64(1), s.responseRows())
}

func (s *PostgresStoreSuite) TestUpdateStatusAndDelete() {
	owner := s.patient().ID
	req := s.storeRequest(s.bloodRequest(owner, blood.OPositive, request.UrgencyUrgent, "Pune", time.Hour))
	d := s.donor("Pune", blood.OPositive, true, time.Hour)
	s.Require().NoError(s.requests.SaveResponse(s.ctx, req.ID, &request.Response{
		DonorID: d.ID, Status: request.ResponseAccepted, RespondedAt: s.now,
	}))

	s.Require().NoError(s.requests.UpdateStatus(s.ctx, req.ID, request.StatusFulfilled))
	got, err := s.requests.GetByID(s.ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(request.StatusFulfilled, got.Status)
	s.ErrorIs(s.requests.UpdateStatus(s.ctx, uuid.New(), request.StatusCancelled), request.ErrRequestNotFound)

	s.Require().NoError(s.requests.Delete(s.ctx, req.ID))
	_, err = s.requests.GetByID(s.ctx, req.ID)
	s.ErrorIs(err, request.ErrRequestNotFound)
	s.Zero(s.responseRows(), "responses go with their request")
	s.ErrorIs(s.requests.Delete(s.ctx, req.ID), request.ErrRequestNotFound)
}

func (s *PostgresStoreSuite) TestCountByStatusAndDemand() {
	owner := s.patient().ID
	other := s.patient().ID

	s.storeRequest(s.bloodRequest(owner, blood.OPositive, request.UrgencyUrgent, "Pune", time.Hour))
	aNeg := s.bloodRequest(owner, blood.ANegative, request.UrgencyUrgent, "Mumbai", time.Hour)
	aNeg.UnitsNeeded = 3
	s.storeRequest(aNeg)
	fulfilled := s.bloodRequest(owner, blood.OPositive, request.UrgencyUrgent, "Pune", time.Hour)
	fulfilled.Status = request.StatusFulfilled
	s.storeRequest(fulfilled)
	cancelled := s.bloodRequest(owner, blood.BPositive, request.UrgencyNormal, "Pune", time.Hour)
	cancelled.Status = request.StatusCancelled
	s.storeRequest(cancelled)
	single := s.bloodRequest(other, blood.OPositive, request.UrgencyCritical, "Pune Cantonment", time.Hour)
	single.UnitsNeeded = 1
	s.storeRequest(single)

	counts, err := s.requests.CountByStatus(s.ctx, owner)
	s.Require().NoError(err)
	s.Equal(map[request.Status]int64{
		request.StatusActive:    2,
		request.StatusFulfilled: 1,
		request.StatusCancelled: 1,
	}, counts)

	demand, err := s.requests.DemandByBloodType(s.ctx, "pune")
	s.Require().NoError(err)
	s.Equal([]request.BloodTypeDemand{
		{BloodType: blood.OPositive, TotalRequests: 2, TotalUnitsNeeded: 3},
	}, demand)

	demand, err = s.requests.DemandByBloodType(s.ctx, "")
	s.Require().NoError(err)
	s.Equal([]request.BloodTypeDemand{
		{BloodType: blood.ANegative, TotalRequests: 1, TotalUnitsNeeded: 3},
		{BloodType: blood.OPositive, TotalRequests: 2, TotalUnitsNeeded: 3},
	}, demand)
}

func (s *PostgresStoreSuite) TestExpireThenPurge() {
	owner := s.patient().ID
	lapsed := s.storeRequest(s.bloodRequest(owner, blood.OPositive, request.UrgencyUrgent, "Pune", 8*24*time.Hour))
	fresh := s.storeRequest(s.bloodRequest(owner, blood.OPositive, request.UrgencyUrgent, "Pune", time.Hour))
	d := s.donor("Pune", blood.OPositive, true, time.Hour)
	s.Require().NoError(s.requests.SaveResponse(s.ctx, lapsed.ID, &request.Response{
		DonorID: d.ID, Status: request.ResponsePending, RespondedAt: s.now.Add(-7 * 24 * time.Hour),
	}))

	n, err := s.requests.MarkExpired(s.ctx, s.now)
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	got, err := s.requests.GetByID(s.ctx, lapsed.ID)
	s.Require().NoError(err)
	s.Equal(request.StatusExpired, got.Status)

	n, err = s.requests.MarkExpired(s.ctx, s.now)
	s.Require().NoError(err)
	s.Zero(n)

	n, err = s.requests.PurgeExpired(s.ctx, s.now)
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	_, err = s.requests.GetByID(s.ctx, lapsed.ID)
	s.ErrorIs(err, request.ErrRequestNotFound)
	_, err = s.requests.GetByID(s.ctx, fresh.ID)
	s.NoError(err)
	s.Zero(s.responseRows())
}

func (s *PostgresStoreSuite) TestStoredTextIsNotEscaped() {
	a := s.newAccount(account.RoleHospital, "Coeur d'Alene")
	a.Hospital = &account.HospitalProfile{HospitalName: `St. Mary's "Mercy" & Sons`, RegistrationNumber: "REG-9"}
	s.Require().NoError(s.accounts.Create(s.ctx, a))

	got, err := s.accounts.GetByID(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal("Coeur d'Alene", got.Location.City)
	s.Equal(`St. Mary's "Mercy" & Sons`, got.Hospital.HospitalName)
	s.False(strings.Contains(got.Hospital.HospitalName, "&amp;"))
}
