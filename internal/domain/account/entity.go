package account

import (
	"strings"
	"time"

	"bloodlink/internal/domain/blood"
	"bloodlink/internal/domain/eligibility"

	"github.com/google/uuid"
)

type Role string

const (
	RoleDonor    Role = "donor"
	RolePatient  Role = "patient"
	RoleHospital Role = "hospital"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleDonor, RolePatient, RoleHospital:
		return r, nil
	default:
		return "", ErrInvalidRole
	}
}

type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGoogle AuthProvider = "google"
)

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Location struct {
	Address     string       `json:"address"`
	City        string       `json:"city"`
	State       string       `json:"state"`
	Pincode     string       `json:"pincode"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

func (l Location) IsComplete() bool {
	return strings.TrimSpace(l.Address) != "" &&
		strings.TrimSpace(l.City) != "" &&
		strings.TrimSpace(l.State) != "" &&
		strings.TrimSpace(l.Pincode) != ""
}

// DonorProfile is the role variant carried by donor accounts.
type DonorProfile struct {
	BloodType        blood.Type
	Available        bool
	LastDonationDate *time.Time
}

// HospitalProfile is the role variant carried by hospital accounts.
type HospitalProfile struct {
	HospitalName       string
	RegistrationNumber string
}

// Account is a registered user. Exactly one of Donor or Hospital is set for
// the donor and hospital roles; patients carry neither.
type Account struct {
	ID              uuid.UUID
	Name            string
	Email           string
	Phone           string
	PasswordHashed  string
	GoogleID        *string
	AuthProvider    AuthProvider
	Role            Role
	Location        Location
	Donor           *DonorProfile
	Hospital        *HospitalProfile
	IsActive        bool
	ProfileComplete bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewDonorProfile(bt blood.Type) *DonorProfile {
	return &DonorProfile{BloodType: bt, Available: true}
}

// Validate enforces the per-role invariants.
func (a *Account) Validate() error {
	switch a.Role {
	case RoleDonor:
		if a.Donor == nil || !a.Donor.BloodType.IsValid() {
			return ErrDonorProfileRequired
		}
		if a.Hospital != nil {
			return ErrRoleVariantMismatch
		}
	case RoleHospital:
		if a.Hospital == nil ||
			strings.TrimSpace(a.Hospital.HospitalName) == "" ||
			strings.TrimSpace(a.Hospital.RegistrationNumber) == "" {
			return ErrHospitalProfileRequired
		}
		if a.Donor != nil {
			return ErrRoleVariantMismatch
		}
	case RolePatient:
		if a.Donor != nil || a.Hospital != nil {
			return ErrRoleVariantMismatch
		}
	default:
		return ErrInvalidRole
	}

	if a.AuthProvider == ProviderLocal && !a.Location.IsComplete() {
		return ErrLocationIncomplete
	}
	return nil
}

func (a *Account) IsDonor() bool {
	return a.Role == RoleDonor && a.Donor != nil
}

func (a *Account) IsHospital() bool {
	return a.Role == RoleHospital && a.Hospital != nil
}

// Eligibility evaluates the donation cooldown. Non-donors never qualify.
func (a *Account) Eligibility(now time.Time) eligibility.Result {
	if !a.IsDonor() {
		return eligibility.Result{}
	}
	return eligibility.Evaluate(a.Donor.LastDonationDate, now)
}

func (a *Account) BloodType() blood.Type {
	if a.Donor == nil {
		return ""
	}
	return a.Donor.BloodType
}

func (a *Account) HospitalName() string {
	if a.Hospital == nil {
		return ""
	}
	return a.Hospital.HospitalName
}
