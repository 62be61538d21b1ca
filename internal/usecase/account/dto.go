package account

import (
	"strings"
	"time"

	domainAccount "bloodlink/internal/domain/account"
	"bloodlink/internal/domain/eligibility"
	"bloodlink/pkg/utils"

	"github.com/google/uuid"
)

type LocationInput struct {
	Address   string   `json:"address" validate:"required,max=500"`
	City      string   `json:"city" validate:"required,max=100"`
	State     string   `json:"state" validate:"required,max=100"`
	Pincode   string   `json:"pincode" validate:"required,pincode"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

func (l *LocationInput) toLocation() domainAccount.Location {
	loc := domainAccount.Location{
		Address: utils.SanitizeString(l.Address),
		City:    utils.SanitizeString(l.City),
		State:   utils.SanitizeString(l.State),
		Pincode: strings.TrimSpace(l.Pincode),
	}
	if l.Latitude != nil && l.Longitude != nil {
		loc.Coordinates = &domainAccount.Coordinates{Latitude: *l.Latitude, Longitude: *l.Longitude}
	}
	return loc
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Phone    string `json:"phone" validate:"required,phone"`
	Role     string `json:"role" validate:"required,user_role"`
	LocationInput

	BloodType          string `json:"blood_type" validate:"omitempty,blood_type"`
	HospitalName       string `json:"hospital_name" validate:"omitempty,max=255"`
	RegistrationNumber string `json:"registration_number" validate:"omitempty,max=100"`
}

func (r *RegisterRequest) normalize() {
	r.Email = utils.SanitizeEmail(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	r.BloodType = strings.ToUpper(strings.TrimSpace(r.BloodType))
	r.Pincode = strings.TrimSpace(r.Pincode)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CompleteProfileRequest fills in what a federated sign-up could not supply.
type CompleteProfileRequest struct {
	Phone string `json:"phone" validate:"required,phone"`
	Role  string `json:"role" validate:"required,user_role"`
	LocationInput

	BloodType          string `json:"blood_type" validate:"omitempty,blood_type"`
	HospitalName       string `json:"hospital_name" validate:"omitempty,max=255"`
	RegistrationNumber string `json:"registration_number" validate:"omitempty,max=100"`
}

func (r *CompleteProfileRequest) normalize() {
	r.Phone = strings.TrimSpace(r.Phone)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	r.BloodType = strings.ToUpper(strings.TrimSpace(r.BloodType))
	r.Pincode = strings.TrimSpace(r.Pincode)
}

type AvailabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

type RecordDonationRequest struct {
	DonationDate *time.Time `json:"donation_date"`
}

type ProfileResponse struct {
	ID                 uuid.UUID              `json:"id"`
	Name               string                 `json:"name"`
	Email              string                 `json:"email"`
	Phone              string                 `json:"phone"`
	Role               domainAccount.Role     `json:"role"`
	AuthProvider       string                 `json:"auth_provider"`
	Location           domainAccount.Location `json:"location"`
	BloodType          *string                `json:"blood_type,omitempty"`
	Available          *bool                  `json:"available,omitempty"`
	LastDonationDate   *time.Time             `json:"last_donation_date,omitempty"`
	CanDonate          *bool                  `json:"can_donate,omitempty"`
	HospitalName       *string                `json:"hospital_name,omitempty"`
	RegistrationNumber *string                `json:"registration_number,omitempty"`
	IsActive           bool                   `json:"is_active"`
	ProfileComplete    bool                   `json:"profile_complete"`
	CreatedAt          time.Time              `json:"created_at"`
}

type AuthResponse struct {
	User      *ProfileResponse `json:"user"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
}

type AvailabilityResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	BloodType string    `json:"blood_type"`
	Available bool      `json:"available"`
}

type DonationStatsResponse struct {
	Donor *ProfileResponse   `json:"donor"`
	Stats eligibility.Result `json:"stats"`
}

// ToProfileResponse never carries credentials.
func ToProfileResponse(a *domainAccount.Account, now time.Time) *ProfileResponse {
	if a == nil {
		return nil
	}
	resp := &ProfileResponse{
		ID:              a.ID,
		Name:            a.Name,
		Email:           a.Email,
		Phone:           a.Phone,
		Role:            a.Role,
		AuthProvider:    string(a.AuthProvider),
		Location:        a.Location,
		IsActive:        a.IsActive,
		ProfileComplete: a.ProfileComplete,
		CreatedAt:       a.CreatedAt,
	}
	if d := a.Donor; d != nil {
		bt := d.BloodType.String()
		available := d.Available
		canDonate := a.Eligibility(now).CanDonate
		resp.BloodType = &bt
		resp.Available = &available
		resp.LastDonationDate = d.LastDonationDate
		resp.CanDonate = &canDonate
	}
	if h := a.Hospital; h != nil {
		name, reg := h.HospitalName, h.RegistrationNumber
		resp.HospitalName = &name
		resp.RegistrationNumber = &reg
	}
	return resp
}
