package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bloodlink/internal/domain/account"
	"bloodlink/internal/domain/blood"
	"bloodlink/internal/domain/request"
	"bloodlink/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const urgencyOrder = "CASE urgency WHEN 'critical' THEN 3 WHEN 'urgent' THEN 2 WHEN 'normal' THEN 1 ELSE 0 END DESC"

type RequestRepository struct {
	db *DB
}

func NewRequestRepository(db *DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) Create(ctx context.Context, req *request.BloodRequest) error {
	prepareRequest(req)

	dbModel := toRequestModel(req)
	if err := r.db.DB.WithContext(ctx).Omit(clause.Associations).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create blood request: %w", err)
	}
	return nil
}

func (r *RequestRepository) CreateBatch(ctx context.Context, reqs []*request.BloodRequest) error {
	if len(reqs) == 0 {
		return nil
	}

	dbModels := make([]*models.BloodRequestModel, len(reqs))
	for i, req := range reqs {
		prepareRequest(req)
		dbModels[i] = toRequestModel(req)
	}

	err := r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).CreateInBatches(dbModels, 100).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create blood requests: %w", err)
	}
	return nil
}

func (r *RequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*request.BloodRequest, error) {
	var dbModel models.BloodRequestModel
	err := r.db.DB.WithContext(ctx).
		Preload("Responses", func(db *gorm.DB) *gorm.DB {
			return db.Order("responded_at ASC")
		}).
		Where("id = ?", id).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, request.ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get blood request: %w", err)
	}
	return toRequestEntity(&dbModel), nil
}

func (r *RequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status request.Status) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.BloodRequestModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update blood request status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return request.ErrRequestNotFound
	}
	return nil
}

func (r *RequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.BloodRequestModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete blood request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return request.ErrRequestNotFound
	}
	return nil
}

func (r *RequestRepository) SaveResponse(ctx context.Context, requestID uuid.UUID, resp *request.Response) error {
	if resp.ID == uuid.Nil {
		resp.ID = uuid.New()
	}
	dbModel := toResponseModel(requestID, resp)

	err := r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		touched := tx.Model(&models.BloodRequestModel{}).
			Where("id = ?", requestID).
			Update("updated_at", resp.RespondedAt)
		if touched.Error != nil {
			return touched.Error
		}
		if touched.RowsAffected == 0 {
			return request.ErrRequestNotFound
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "request_id"}, {Name: "donor_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "message", "responded_at"}),
		}).Create(dbModel).Error
	})
	if errors.Is(err, request.ErrRequestNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to save donor response: %w", err)
	}
	return nil
}

func (r *RequestRepository) List(ctx context.Context, filter *request.Filter) ([]*request.BloodRequest, error) {
	db := r.db.DB.WithContext(ctx).
		Model(&models.BloodRequestModel{}).
		Preload("Responses", func(db *gorm.DB) *gorm.DB {
			return db.Order("responded_at ASC")
		})

	if filter.RequesterID != nil {
		db = db.Where("requested_by = ?", *filter.RequesterID)
	}
	if filter.BloodType != nil {
		db = db.Where("blood_type = ?", string(*filter.BloodType))
	}
	if filter.City != "" {
		db = db.Where("city ILIKE ?", likePattern(filter.City))
	}
	if filter.Urgency != nil {
		db = db.Where("urgency = ?", string(*filter.Urgency))
	}
	if filter.Status != nil {
		db = db.Where("status = ?", string(*filter.Status))
	}
	if !filter.LiveAt.IsZero() {
		db = db.Where("expires_at > ?", filter.LiveAt)
	}

	switch filter.Sort {
	case request.SortUrgency:
		db = db.Order(urgencyOrder).Order("created_at DESC")
	default:
		db = db.Order("created_at DESC")
	}
	if filter.Limit > 0 {
		db = db.Limit(filter.Limit)
	}

	var dbModels []models.BloodRequestModel
	if err := db.Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list blood requests: %w", err)
	}

	reqs := make([]*request.BloodRequest, len(dbModels))
	for i := range dbModels {
		reqs[i] = toRequestEntity(&dbModels[i])
	}
	return reqs, nil
}

func (r *RequestRepository) CountByStatus(ctx context.Context, requesterID uuid.UUID) (map[request.Status]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount
	err := r.db.DB.WithContext(ctx).
		Model(&models.BloodRequestModel{}).
		Select("status, COUNT(*) AS count").
		Where("requested_by = ?", requesterID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count blood requests: %w", err)
	}

	counts := make(map[request.Status]int64, len(rows))
	for _, row := range rows {
		counts[request.Status(row.Status)] = row.Count
	}
	return counts, nil
}

func (r *RequestRepository) DemandByBloodType(ctx context.Context, city string) ([]request.BloodTypeDemand, error) {
	type demandRow struct {
		BloodType        string
		TotalRequests    int64
		TotalUnitsNeeded int64
	}

	db := r.db.DB.WithContext(ctx).
		Model(&models.BloodRequestModel{}).
		Select("blood_type, COUNT(*) AS total_requests, COALESCE(SUM(units_needed), 0) AS total_units_needed").
		Where("status = ?", string(request.StatusActive))
	if city != "" {
		db = db.Where("city ILIKE ?", likePattern(city))
	}

	var rows []demandRow
	if err := db.Group("blood_type").Order(`blood_type COLLATE "C" ASC`).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate blood request demand: %w", err)
	}

	demand := make([]request.BloodTypeDemand, len(rows))
	for i, row := range rows {
		demand[i] = request.BloodTypeDemand{
			BloodType:        blood.Type(row.BloodType),
			TotalRequests:    row.TotalRequests,
			TotalUnitsNeeded: row.TotalUnitsNeeded,
		}
	}
	return demand, nil
}

func (r *RequestRepository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.DB.WithContext(ctx).
		Model(&models.BloodRequestModel{}).
		Where("status = ? AND expires_at <= ?", string(request.StatusActive), now).
		Updates(map[string]interface{}{
			"status":     string(request.StatusExpired),
			"updated_at": now,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to expire blood requests: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *RequestRepository) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.DB.WithContext(ctx).
		Where("expires_at <= ?", cutoff).
		Delete(&models.BloodRequestModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge blood requests: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func prepareRequest(req *request.BloodRequest) {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	if req.UpdatedAt.IsZero() {
		req.UpdatedAt = req.CreatedAt
	}
	if req.Status == "" {
		req.Status = request.StatusActive
	}
}

func toRequestModel(req *request.BloodRequest) *models.BloodRequestModel {
	m := &models.BloodRequestModel{
		ID:            req.ID,
		RequestedBy:   req.RequestedBy,
		BloodType:     string(req.BloodType),
		UnitsNeeded:   req.UnitsNeeded,
		Urgency:       string(req.Urgency),
		Address:       req.Location.Address,
		City:          req.Location.City,
		State:         req.Location.State,
		Pincode:       req.Location.Pincode,
		HospitalName:  req.HospitalName,
		PatientName:   req.PatientName,
		ContactNumber: req.ContactNumber,
		Reason:        req.Reason,
		Notes:         req.Notes,
		Status:        string(req.Status),
		CreatedAt:     req.CreatedAt,
		UpdatedAt:     req.UpdatedAt,
		ExpiresAt:     req.ExpiresAt,
	}
	if c := req.Location.Coordinates; c != nil {
		lat, lng := c.Latitude, c.Longitude
		m.Latitude, m.Longitude = &lat, &lng
	}
	return m
}

func toResponseModel(requestID uuid.UUID, resp *request.Response) *models.RequestResponseModel {
	return &models.RequestResponseModel{
		ID:          resp.ID,
		RequestID:   requestID,
		DonorID:     resp.DonorID,
		Status:      string(resp.Status),
		Message:     resp.Message,
		RespondedAt: resp.RespondedAt,
	}
}

func toRequestEntity(m *models.BloodRequestModel) *request.BloodRequest {
	req := &request.BloodRequest{
		ID:          m.ID,
		RequestedBy: m.RequestedBy,
		BloodType:   blood.Type(m.BloodType),
		UnitsNeeded: m.UnitsNeeded,
		Urgency:     request.Urgency(m.Urgency),
		Location: account.Location{
			Address: m.Address,
			City:    m.City,
			State:   m.State,
			Pincode: m.Pincode,
		},
		HospitalName:  m.HospitalName,
		PatientName:   m.PatientName,
		ContactNumber: m.ContactNumber,
		Reason:        m.Reason,
		Notes:         m.Notes,
		Status:        request.Status(m.Status),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		ExpiresAt:     m.ExpiresAt,
		Responses:     make([]request.Response, len(m.Responses)),
	}
	if m.Latitude != nil && m.Longitude != nil {
		req.Location.Coordinates = &account.Coordinates{Latitude: *m.Latitude, Longitude: *m.Longitude}
	}
	for i, rm := range m.Responses {
		req.Responses[i] = request.Response{
			ID:          rm.ID,
			DonorID:     rm.DonorID,
			Status:      request.ResponseStatus(rm.Status),
			Message:     rm.Message,
			RespondedAt: rm.RespondedAt,
		}
	}
	return req
}
