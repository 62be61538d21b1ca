package request

import (
	"context"
	"errors"
	"strings"
	"time"

	domainAccount "bloodlink/internal/domain/account"
	"bloodlink/internal/domain/blood"
	domainRequest "bloodlink/internal/domain/request"
	"bloodlink/internal/logger"
	"bloodlink/internal/metrics"
	appErrors "bloodlink/pkg/errors"
	"bloodlink/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultListLimit     = 50
	DefaultMineLimit     = 100
	DefaultRelevantLimit = 20
)

type Options struct {
	TTL           time.Duration
	ListLimit     int
	MineLimit     int
	RelevantLimit int
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = domainRequest.DefaultTTL
	}
	if o.ListLimit <= 0 {
		o.ListLimit = DefaultListLimit
	}
	if o.MineLimit <= 0 {
		o.MineLimit = DefaultMineLimit
	}
	if o.RelevantLimit <= 0 {
		o.RelevantLimit = DefaultRelevantLimit
	}
	return o
}

// Service implements blood request use cases
type Service struct {
	requests  domainRequest.Repository
	accounts  domainAccount.Repository
	publisher domainRequest.Publisher
	metrics   *metrics.Metrics
	opts      Options
	now       func() time.Time
}

// NewService creates a new blood request service
func NewService(
	requests domainRequest.Repository,
	accounts domainAccount.Repository,
	publisher domainRequest.Publisher,
	m *metrics.Metrics,
	opts Options,
) *Service {
	return &Service{
		requests:  requests,
		accounts:  accounts,
		publisher: publisher,
		metrics:   m,
		opts:      opts.withDefaults(),
		now:       time.Now,
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Create(ctx context.Context, requester *domainAccount.Account, req *CreateBloodRequest) (*BloodRequestResponse, error) {
	req.BloodType = normalizeBloodType(req.BloodType)
	req.Urgency = normalizeUrgency(req.Urgency)
	req.ContactNumber = strings.TrimSpace(req.ContactNumber)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	hospitalName := utils.SanitizeOptional(req.HospitalName, utils.SanitizeString)
	if hospitalName == nil && requester.IsHospital() {
		name := requester.HospitalName()
		hospitalName = &name
	}

	now := s.now()
	bloodRequest := &domainRequest.BloodRequest{
		ID:            uuid.New(),
		RequestedBy:   requester.ID,
		BloodType:     blood.Type(req.BloodType),
		UnitsNeeded:   unitsOrDefault(req.UnitsNeeded),
		Urgency:       urgencyOrDefault(req.Urgency),
		Location:      locationOrDefault(req, requester),
		HospitalName:  hospitalName,
		PatientName:   utils.SanitizeString(req.PatientName),
		ContactNumber: req.ContactNumber,
		Reason:        utils.SanitizeOptional(req.Reason, utils.SanitizeText),
		Notes:         utils.SanitizeOptional(req.Notes, utils.SanitizeText),
		Status:        domainRequest.StatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
		ExpiresAt:     now.Add(s.opts.TTL),
	}

	if err := s.requests.Create(ctx, bloodRequest); err != nil {
		return nil, err
	}

	s.metrics.IncrementRequestsCreated(bloodRequest.BloodType.String(), string(bloodRequest.Urgency), 1)
	logger.Info("Blood request created",
		zap.String("request_id", bloodRequest.ID.String()),
		zap.String("requested_by", requester.ID.String()),
		zap.String("blood_type", bloodRequest.BloodType.String()),
		zap.String("urgency", string(bloodRequest.Urgency)),
		zap.String("event", "blood_request_created"),
	)
	s.publish(ctx, domainRequest.NewEvent(domainRequest.EventCreated, bloodRequest, now))

	resp := ToBloodRequestResponse(bloodRequest)
	resp.Requester = toRequesterSummary(requester)
	return resp, nil
}

// CreateBulk stores a batch of requests for a hospital. Every item is
// validated before any is stored.
func (s *Service) CreateBulk(ctx context.Context, hospital *domainAccount.Account, req *BulkCreateRequest) ([]*BloodRequestResponse, error) {
	if hospital == nil || !hospital.IsHospital() {
		return nil, appErrors.Forbidden("Only hospitals can create bulk requests")
	}
	if err := ValidateBulk(req); err != nil {
		return nil, err
	}

	now := s.now()
	hospitalName := hospital.HospitalName()
	batch := make([]*domainRequest.BloodRequest, len(req.Requests))
	for i, item := range req.Requests {
		contact := item.ContactNumber
		if contact == "" {
			contact = hospital.Phone
		}
		name := hospitalName
		batch[i] = &domainRequest.BloodRequest{
			ID:            uuid.New(),
			RequestedBy:   hospital.ID,
			BloodType:     blood.Type(item.BloodType),
			UnitsNeeded:   unitsOrDefault(item.UnitsNeeded),
			Urgency:       urgencyOrDefault(item.Urgency),
			Location:      hospital.Location,
			HospitalName:  &name,
			PatientName:   utils.SanitizeString(item.PatientName),
			ContactNumber: contact,
			Reason:        utils.SanitizeOptional(item.Reason, utils.SanitizeText),
			Notes:         utils.SanitizeOptional(item.Notes, utils.SanitizeText),
			Status:        domainRequest.StatusActive,
			CreatedAt:     now,
			UpdatedAt:     now,
			ExpiresAt:     now.Add(s.opts.TTL),
		}
	}

	if err := s.requests.CreateBatch(ctx, batch); err != nil {
		return nil, err
	}

	for _, r := range batch {
		s.metrics.IncrementRequestsCreated(r.BloodType.String(), string(r.Urgency), 1)
		s.publish(ctx, domainRequest.NewEvent(domainRequest.EventCreated, r, now))
	}
	logger.Info("Bulk blood requests created",
		zap.String("hospital_id", hospital.ID.String()),
		zap.Int("count", len(batch)),
		zap.String("event", "blood_requests_bulk_created"),
	)

	return ToBloodRequestResponses(batch), nil
}

// List returns requests matching q, most urgent first. Status defaults to
// active, in which case requests already past expiry are hidden.
func (s *Service) List(ctx context.Context, q *ListQuery) ([]*BloodRequestResponse, error) {
	q.BloodType = normalizeBloodType(q.BloodType)
	q.Urgency = normalizeUrgency(q.Urgency)
	q.Status = strings.ToLower(strings.TrimSpace(q.Status))
	if err := utils.ValidateStruct(q); err != nil {
		return nil, validationError(err)
	}

	status := domainRequest.StatusActive
	if q.Status != "" {
		status = domainRequest.Status(q.Status)
	}

	filter := &domainRequest.Filter{
		City:   strings.TrimSpace(q.City),
		Status: &status,
		Sort:   domainRequest.SortUrgency,
		Limit:  s.opts.ListLimit,
	}
	if status == domainRequest.StatusActive {
		filter.LiveAt = s.now()
	}
	if q.BloodType != "" {
		bt := blood.Type(q.BloodType)
		filter.BloodType = &bt
	}
	if q.Urgency != "" {
		u := domainRequest.Urgency(q.Urgency)
		filter.Urgency = &u
	}

	reqs, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToBloodRequestResponses(reqs), nil
}

// ListMine returns the caller's own requests, newest first.
func (s *Service) ListMine(ctx context.Context, requesterID uuid.UUID, status string) ([]*BloodRequestResponse, error) {
	filter := &domainRequest.Filter{
		RequesterID: &requesterID,
		Sort:        domainRequest.SortNewest,
		Limit:       s.opts.MineLimit,
	}

	if status = strings.ToLower(strings.TrimSpace(status)); status != "" {
		st := domainRequest.Status(status)
		if !st.IsValid() {
			return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid status", domainRequest.ErrInvalidStatus)
		}
		filter.Status = &st
	}

	reqs, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToBloodRequestResponses(reqs), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*BloodRequestResponse, error) {
	r, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToBloodRequestResponse(r)
	requester, err := s.accounts.GetByID(ctx, r.RequestedBy)
	switch {
	case err == nil:
		resp.Requester = toRequesterSummary(requester)
	case !errors.Is(err, domainAccount.ErrAccountNotFound):
		return nil, err
	}
	return resp, nil
}

// UpdateStatus lets the owner move a request along its lifecycle. The
// requested status is checked before anything is read.
func (s *Service) UpdateStatus(ctx context.Context, callerID, id uuid.UUID, req *UpdateStatusRequest) (*BloodRequestResponse, error) {
	next, err := domainRequest.ParseOwnerStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if err != nil {
		return nil, err
	}

	r, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.IsOwnedBy(callerID) {
		logger.Warn("Status update attempted by non-owner",
			zap.String("request_id", id.String()),
			zap.String("caller_id", callerID.String()),
			zap.String("event", "request_status_update_forbidden"),
		)
		return nil, appErrors.NewAppError(appErrors.CodeForbidden, "Not authorized to update this request", domainRequest.ErrNotOwner)
	}

	if err := domainRequest.ValidateStatusTransition(r.Status, next); err != nil {
		return nil, err
	}

	previous := r.Status
	if err := s.requests.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}

	updated, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementStatusChanges(string(next))
	logger.Info("Blood request status updated",
		zap.String("request_id", id.String()),
		zap.String("from", string(previous)),
		zap.String("to", string(next)),
		zap.String("event", "blood_request_status_updated"),
	)
	if previous != next {
		s.publish(ctx, domainRequest.NewEvent(domainRequest.EventStatusChanged, updated, s.now()))
	}

	return ToBloodRequestResponse(updated), nil
}

func (s *Service) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	r, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !r.IsOwnedBy(callerID) {
		return appErrors.NewAppError(appErrors.CodeForbidden, "Not authorized to delete this request", domainRequest.ErrNotOwner)
	}

	if err := s.requests.Delete(ctx, id); err != nil {
		return err
	}

	logger.Info("Blood request deleted",
		zap.String("request_id", id.String()),
		zap.String("deleted_by", callerID.String()),
		zap.String("event", "blood_request_deleted"),
	)
	return nil
}

// Respond records a donor's answer. A donor has at most one response per
// request; answering again replaces the earlier one.
func (s *Service) Respond(ctx context.Context, donor *domainAccount.Account, id uuid.UUID, req *RespondRequest) (*BloodRequestResponse, error) {
	if donor == nil || !donor.IsDonor() {
		return nil, appErrors.Forbidden("Only donors can respond to blood requests")
	}
	status, err := ParseRespondStatus(req.Status)
	if err != nil {
		return nil, err
	}
	req.Status = string(status)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	r, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !r.AcceptsResponses(now) {
		return nil, appErrors.NewAppError(appErrors.CodeConflict, "Blood request is no longer active", domainRequest.ErrRequestClosed)
	}

	response := &domainRequest.Response{
		DonorID:     donor.ID,
		Status:      status,
		Message:     utils.SanitizeOptional(req.Message, utils.SanitizeText),
		RespondedAt: now,
	}
	if existing := r.FindResponse(donor.ID); existing != nil {
		response.ID = existing.ID
	}
	if err := s.requests.SaveResponse(ctx, id, response); err != nil {
		return nil, err
	}

	updated, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementDonorResponses(string(status))
	logger.Info("Donor responded to blood request",
		zap.String("request_id", id.String()),
		zap.String("donor_id", donor.ID.String()),
		zap.String("status", string(status)),
		zap.String("event", "blood_request_response"),
	)
	event := domainRequest.NewEvent(domainRequest.EventResponded, updated, now)
	donorID := donor.ID
	event.DonorID = &donorID
	s.publish(ctx, event)

	return ToBloodRequestResponse(updated), nil
}

// RelevantForDonor lists live requests for the donor's blood type in the
// donor's city.
func (s *Service) RelevantForDonor(ctx context.Context, donor *domainAccount.Account) ([]*BloodRequestResponse, error) {
	if donor == nil || !donor.IsDonor() {
		return nil, appErrors.Forbidden("Only donors can access this")
	}

	bt := donor.BloodType()
	active := domainRequest.StatusActive
	reqs, err := s.requests.List(ctx, &domainRequest.Filter{
		BloodType: &bt,
		City:      donor.Location.City,
		Status:    &active,
		LiveAt:    s.now(),
		Sort:      domainRequest.SortUrgency,
		Limit:     s.opts.RelevantLimit,
	})
	if err != nil {
		return nil, err
	}
	return ToBloodRequestResponses(reqs), nil
}

func (s *Service) publish(ctx context.Context, event domainRequest.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish request event",
			zap.String("request_id", event.RequestID.String()),
			zap.String("type", string(event.Type)),
			zap.Error(err),
			zap.String("event", "request_event_publish_failed"),
		)
	}
}
