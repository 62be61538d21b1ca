package models

import (
	"time"

	"github.com/google/uuid"
)

// BloodRequestModel represents the database model for BloodRequest
type BloodRequestModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	RequestedBy   uuid.UUID `gorm:"type:uuid;not null;index"`
	BloodType     string    `gorm:"type:varchar(3);not null;index"`
	UnitsNeeded   int       `gorm:"type:integer;not null;default:1"`
	Urgency       string    `gorm:"type:varchar(20);not null;default:'urgent'"`
	Address       string    `gorm:"type:text;not null;default:''"`
	City          string    `gorm:"type:varchar(100);not null;default:'';index"`
	State         string    `gorm:"type:varchar(100);not null;default:''"`
	Pincode       string    `gorm:"type:varchar(10);not null;default:''"`
	Latitude      *float64  `gorm:"type:double precision"`
	Longitude     *float64  `gorm:"type:double precision"`
	HospitalName  *string   `gorm:"type:varchar(255)"`
	PatientName   string    `gorm:"type:varchar(255);not null"`
	ContactNumber string    `gorm:"type:varchar(20);not null"`
	Reason        *string   `gorm:"type:text"`
	Notes         *string   `gorm:"type:text"`
	Status        string    `gorm:"type:varchar(20);not null;default:'active';index"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
	ExpiresAt     time.Time `gorm:"not null;index"`

	Responses []RequestResponseModel `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
}

func (BloodRequestModel) TableName() string {
	return "blood_requests"
}

// RequestResponseModel is one donor's answer to a request; unique per donor.
type RequestResponseModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	RequestID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_request_responses_request_donor"`
	DonorID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_request_responses_request_donor;index"`
	Status      string    `gorm:"type:varchar(20);not null;default:'pending'"`
	Message     *string   `gorm:"type:text"`
	RespondedAt time.Time `gorm:"not null"`
}

func (RequestResponseModel) TableName() string {
	return "request_responses"
}
