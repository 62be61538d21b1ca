package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"bloodlink/internal/domain/blood"
	"bloodlink/internal/domain/request"

	"github.com/google/uuid"
)

type RequestRepository struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]*request.BloodRequest
	now      func() time.Time
}

func NewRequestRepository() *RequestRepository {
	return &RequestRepository{
		requests: make(map[uuid.UUID]*request.BloodRequest),
		now:      time.Now,
	}
}

// WithClock replaces the time source used for timestamps.
func (r *RequestRepository) WithClock(now func() time.Time) *RequestRepository {
	r.now = now
	return r
}

func (r *RequestRepository) Create(_ context.Context, req *request.BloodRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.insert(req)
	return nil
}

func (r *RequestRepository) CreateBatch(_ context.Context, reqs []*request.BloodRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, req := range reqs {
		r.insert(req)
	}
	return nil
}

func (r *RequestRepository) insert(req *request.BloodRequest) {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = r.now()
	}
	if req.UpdatedAt.IsZero() {
		req.UpdatedAt = req.CreatedAt
	}
	if req.Status == "" {
		req.Status = request.StatusActive
	}
	r.requests[req.ID] = cloneRequest(req)
}

func (r *RequestRepository) GetByID(_ context.Context, id uuid.UUID) (*request.BloodRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, request.ErrRequestNotFound
	}
	return cloneRequest(req), nil
}

func (r *RequestRepository) UpdateStatus(_ context.Context, id uuid.UUID, status request.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return request.ErrRequestNotFound
	}
	req.Status = status
	req.UpdatedAt = r.now()
	return nil
}

func (r *RequestRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.requests[id]; !ok {
		return request.ErrRequestNotFound
	}
	delete(r.requests, id)
	return nil
}

func (r *RequestRepository) SaveResponse(_ context.Context, requestID uuid.UUID, resp *request.Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[requestID]
	if !ok {
		return request.ErrRequestNotFound
	}

	if existing := req.FindResponse(resp.DonorID); existing != nil {
		resp.ID = existing.ID
		existing.Status = resp.Status
		existing.Message = cloneString(resp.Message)
		existing.RespondedAt = resp.RespondedAt
	} else {
		if resp.ID == uuid.Nil {
			resp.ID = uuid.New()
		}
		saved := *resp
		saved.Message = cloneString(resp.Message)
		req.Responses = append(req.Responses, saved)
	}
	req.UpdatedAt = resp.RespondedAt
	return nil
}

func (r *RequestRepository) List(_ context.Context, filter *request.Filter) ([]*request.BloodRequest, error) {
	r.mu.RLock()
	var matched []*request.BloodRequest
	for _, req := range r.requests {
		if matchesFilter(req, filter) {
			matched = append(matched, cloneRequest(req))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if filter.Sort == request.SortUrgency {
			if pa, pb := a.Urgency.Priority(), b.Urgency.Priority(); pa != pb {
				return pa > pb
			}
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func matchesFilter(req *request.BloodRequest, f *request.Filter) bool {
	if f.RequesterID != nil && req.RequestedBy != *f.RequesterID {
		return false
	}
	if f.BloodType != nil && req.BloodType != *f.BloodType {
		return false
	}
	if !containsFold(req.Location.City, f.City) {
		return false
	}
	if f.Urgency != nil && req.Urgency != *f.Urgency {
		return false
	}
	if f.Status != nil && req.Status != *f.Status {
		return false
	}
	if !f.LiveAt.IsZero() && !req.ExpiresAt.After(f.LiveAt) {
		return false
	}
	return true
}

func (r *RequestRepository) CountByStatus(_ context.Context, requesterID uuid.UUID) (map[request.Status]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[request.Status]int64)
	for _, req := range r.requests {
		if req.RequestedBy == requesterID {
			counts[req.Status]++
		}
	}
	return counts, nil
}

func (r *RequestRepository) DemandByBloodType(_ context.Context, city string) ([]request.BloodTypeDemand, error) {
	r.mu.RLock()
	byType := make(map[blood.Type]*request.BloodTypeDemand)
	for _, req := range r.requests {
		if req.Status != request.StatusActive || !containsFold(req.Location.City, city) {
			continue
		}
		d, ok := byType[req.BloodType]
		if !ok {
			d = &request.BloodTypeDemand{BloodType: req.BloodType}
			byType[req.BloodType] = d
		}
		d.TotalRequests++
		d.TotalUnitsNeeded += int64(req.UnitsNeeded)
	}
	r.mu.RUnlock()

	demand := make([]request.BloodTypeDemand, 0, len(byType))
	for _, d := range byType {
		demand = append(demand, *d)
	}
	sort.Slice(demand, func(i, j int) bool { return demand[i].BloodType < demand[j].BloodType })
	return demand, nil
}

func (r *RequestRepository) MarkExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, req := range r.requests {
		if req.Status == request.StatusActive && !req.ExpiresAt.After(now) {
			req.Status = request.StatusExpired
			req.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (r *RequestRepository) PurgeExpired(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, req := range r.requests {
		if !req.ExpiresAt.After(cutoff) {
			delete(r.requests, id)
			n++
		}
	}
	return n, nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneRequest(req *request.BloodRequest) *request.BloodRequest {
	c := *req
	c.HospitalName = cloneString(req.HospitalName)
	c.Reason = cloneString(req.Reason)
	c.Notes = cloneString(req.Notes)
	if req.Location.Coordinates != nil {
		coords := *req.Location.Coordinates
		c.Location.Coordinates = &coords
	}
	c.Responses = make([]request.Response, len(req.Responses))
	for i, resp := range req.Responses {
		c.Responses[i] = resp
		c.Responses[i].Message = cloneString(resp.Message)
	}
	return &c
}
