package models

import (
	"time"

	"github.com/google/uuid"
)

// AccountModel represents the database model for Account. Donor and hospital
// variant columns are NULL for other roles.
type AccountModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name           string    `gorm:"type:varchar(255);not null"`
	Email          string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone          string    `gorm:"type:varchar(20);not null;default:''"`
	PasswordHashed *string   `gorm:"type:varchar(255)"`
	GoogleID       *string   `gorm:"type:varchar(255);uniqueIndex"`
	AuthProvider   string    `gorm:"type:varchar(20);not null;default:'local'"`
	Role           string    `gorm:"type:varchar(20);not null;index"`

	Address   string   `gorm:"type:text;not null;default:''"`
	City      string   `gorm:"type:varchar(100);not null;default:'';index"`
	State     string   `gorm:"type:varchar(100);not null;default:''"`
	Pincode   string   `gorm:"type:varchar(10);not null;default:''"`
	Latitude  *float64 `gorm:"type:double precision"`
	Longitude *float64 `gorm:"type:double precision"`

	BloodType        *string    `gorm:"type:varchar(3);index"`
	Available        *bool      `gorm:"type:boolean"`
	LastDonationDate *time.Time `gorm:"type:timestamptz"`

	HospitalName       *string `gorm:"type:varchar(255)"`
	RegistrationNumber *string `gorm:"type:varchar(100)"`

	IsActive        bool      `gorm:"not null"` // no gorm default, so false is written
	ProfileComplete bool      `gorm:"not null"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

func (AccountModel) TableName() string {
	return "accounts"
}
