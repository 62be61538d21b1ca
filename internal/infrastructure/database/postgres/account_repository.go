package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bloodlink/internal/domain/account"
	"bloodlink/internal/domain/blood"
	"bloodlink/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

type AccountRepository struct {
	db *DB
}

func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, a *account.Account) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = a.CreatedAt

	dbModel := toAccountModel(a)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		if isUniqueViolation(err) {
			return account.ErrAccountAlreadyExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	var dbModel models.AccountModel
	err := r.db.DB.WithContext(ctx).Where("id = ?", id).First(&dbModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by id: %w", err)
	}
	return toAccountEntity(&dbModel), nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	var dbModel models.AccountModel
	err := r.db.DB.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&dbModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return toAccountEntity(&dbModel), nil
}

func (r *AccountRepository) Update(ctx context.Context, a *account.Account) error {
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = time.Now().UTC()
	}
	m := toAccountModel(a)

	result := r.db.DB.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("id = ?", a.ID).
		Updates(map[string]interface{}{
			"name":                m.Name,
			"phone":               m.Phone,
			"role":                m.Role,
			"address":             m.Address,
			"city":                m.City,
			"state":               m.State,
			"pincode":             m.Pincode,
			"latitude":            m.Latitude,
			"longitude":           m.Longitude,
			"blood_type":          m.BloodType,
			"available":           m.Available,
			"last_donation_date":  m.LastDonationDate,
			"hospital_name":       m.HospitalName,
			"registration_number": m.RegistrationNumber,
			"is_active":           m.IsActive,
			"profile_complete":    m.ProfileComplete,
			"updated_at":          a.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return account.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	return r.updateDonor(ctx, id, map[string]interface{}{
		"available":  available,
		"updated_at": time.Now().UTC(),
	})
}

func (r *AccountRepository) RecordDonation(ctx context.Context, id uuid.UUID, donatedAt time.Time) error {
	return r.updateDonor(ctx, id, map[string]interface{}{
		"last_donation_date": donatedAt.UTC(),
		"available":          false,
		"updated_at":         time.Now().UTC(),
	})
}

func (r *AccountRepository) updateDonor(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("id = ? AND role = ?", id, string(account.RoleDonor)).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update donor: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return account.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) SearchDonors(ctx context.Context, filter *account.DonorFilter) ([]*account.Account, error) {
	db := r.donorQuery(ctx, filter)

	switch filter.Sort {
	case account.SortBloodTypeThenAvailable:
		db = db.Order(`blood_type COLLATE "C" ASC`).Order("available DESC").Order("created_at DESC")
	default:
		db = db.Order("created_at DESC")
	}
	if filter.Limit > 0 {
		db = db.Limit(filter.Limit)
	}

	var dbModels []models.AccountModel
	if err := db.Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to search donors: %w", err)
	}

	donors := make([]*account.Account, len(dbModels))
	for i := range dbModels {
		donors[i] = toAccountEntity(&dbModels[i])
	}
	return donors, nil
}

func (r *AccountRepository) CountDonors(ctx context.Context, filter *account.DonorFilter) (int64, error) {
	var total int64
	if err := r.donorQuery(ctx, filter).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count donors: %w", err)
	}
	return total, nil
}

func (r *AccountRepository) DonorStatsByBloodType(ctx context.Context, filter *account.DonorFilter) ([]account.BloodTypeCount, error) {
	type row struct {
		BloodType string
		Total     int64
		Available int64
	}
	var rows []row
	err := r.donorQuery(ctx, filter).
		Select("blood_type, COUNT(*) AS total, COUNT(*) FILTER (WHERE available) AS available").
		Group("blood_type").
		Order(`blood_type COLLATE "C" ASC`).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate donors: %w", err)
	}

	stats := make([]account.BloodTypeCount, len(rows))
	for i, rw := range rows {
		stats[i] = account.BloodTypeCount{
			BloodType: blood.Type(rw.BloodType),
			Total:     rw.Total,
			Available: rw.Available,
		}
	}
	return stats, nil
}

func (r *AccountRepository) donorQuery(ctx context.Context, filter *account.DonorFilter) *gorm.DB {
	db := r.db.DB.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("role = ? AND is_active = ?", string(account.RoleDonor), true)

	if filter == nil {
		return db
	}
	if len(filter.BloodTypes) > 0 {
		db = db.Where("blood_type IN ?", blood.Strings(filter.BloodTypes))
	}
	if city := strings.TrimSpace(filter.City); city != "" {
		if filter.ExactCity {
			db = db.Where("city = ?", city)
		} else {
			db = db.Where("city ILIKE ?", likePattern(city))
		}
	}
	if filter.State != "" {
		db = db.Where("state ILIKE ?", likePattern(filter.State))
	}
	if filter.Pincode != "" {
		db = db.Where("pincode = ?", filter.Pincode)
	}
	if filter.AvailableOnly {
		db = db.Where("available = ?", true)
	}
	return db
}

// likePattern escapes LIKE metacharacters and wraps s for substring matching.
func likePattern(s string) string {
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.TrimSpace(s))
	return "%" + s + "%"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate key")
}

func toAccountModel(a *account.Account) *models.AccountModel {
	m := &models.AccountModel{
		ID:              a.ID,
		Name:            a.Name,
		Email:           strings.ToLower(strings.TrimSpace(a.Email)),
		Phone:           a.Phone,
		GoogleID:        a.GoogleID,
		AuthProvider:    string(a.AuthProvider),
		Role:            string(a.Role),
		Address:         a.Location.Address,
		City:            a.Location.City,
		State:           a.Location.State,
		Pincode:         a.Location.Pincode,
		IsActive:        a.IsActive,
		ProfileComplete: a.ProfileComplete,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	if m.AuthProvider == "" {
		m.AuthProvider = string(account.ProviderLocal)
	}
	if a.PasswordHashed != "" {
		hash := a.PasswordHashed
		m.PasswordHashed = &hash
	}
	if c := a.Location.Coordinates; c != nil {
		lat, lng := c.Latitude, c.Longitude
		m.Latitude, m.Longitude = &lat, &lng
	}
	if d := a.Donor; d != nil {
		bt := string(d.BloodType)
		available := d.Available
		m.BloodType = &bt
		m.Available = &available
		m.LastDonationDate = d.LastDonationDate
	}
	if h := a.Hospital; h != nil {
		name, reg := h.HospitalName, h.RegistrationNumber
		m.HospitalName = &name
		m.RegistrationNumber = &reg
	}
	return m
}

func toAccountEntity(m *models.AccountModel) *account.Account {
	a := &account.Account{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		Phone:        m.Phone,
		GoogleID:     m.GoogleID,
		AuthProvider: account.AuthProvider(m.AuthProvider),
		Role:         account.Role(m.Role),
		Location: account.Location{
			Address: m.Address,
			City:    m.City,
			State:   m.State,
			Pincode: m.Pincode,
		},
		IsActive:        m.IsActive,
		ProfileComplete: m.ProfileComplete,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.PasswordHashed != nil {
		a.PasswordHashed = *m.PasswordHashed
	}
	if m.Latitude != nil && m.Longitude != nil {
		a.Location.Coordinates = &account.Coordinates{Latitude: *m.Latitude, Longitude: *m.Longitude}
	}
	if m.BloodType != nil {
		a.Donor = &account.DonorProfile{
			BloodType:        blood.Type(*m.BloodType),
			Available:        m.Available != nil && *m.Available,
			LastDonationDate: m.LastDonationDate,
		}
	}
	if m.HospitalName != nil || m.RegistrationNumber != nil {
		a.Hospital = &account.HospitalProfile{}
		if m.HospitalName != nil {
			a.Hospital.HospitalName = *m.HospitalName
		}
		if m.RegistrationNumber != nil {
			a.Hospital.RegistrationNumber = *m.RegistrationNumber
		}
	}
	return a
}
