package search

import (
	"time"

	domainAccount "bloodlink/internal/domain/account"

	"github.com/google/uuid"
)

// DonorQuery is the public donor search. Empty fields do not filter.
type DonorQuery struct {
	BloodType string `form:"blood_type" json:"blood_type" validate:"omitempty,blood_type"`
	City      string `form:"city" json:"city" validate:"omitempty,max=100"`
	State     string `form:"state" json:"state" validate:"omitempty,max=100"`
	Pincode   string `form:"pincode" json:"pincode" validate:"omitempty,pincode"`
}

// BulkSearchRequest is the hospital multi-type search.
type BulkSearchRequest struct {
	BloodTypes    []string `json:"blood_types" validate:"omitempty,max=8,dive,blood_type"`
	City          string   `json:"city" validate:"omitempty,max=100"`
	State         string   `json:"state" validate:"omitempty,max=100"`
	AvailableOnly bool     `json:"available_only"`
}

type DonorResponse struct {
	ID               uuid.UUID              `json:"id"`
	Name             string                 `json:"name"`
	Email            string                 `json:"email"`
	Phone            string                 `json:"phone"`
	BloodType        string                 `json:"blood_type"`
	Location         domainAccount.Location `json:"location"`
	Available        bool                   `json:"available"`
	CanDonate        bool                   `json:"can_donate"`
	LastDonationDate *time.Time             `json:"last_donation_date"`
	MemberSince      *time.Time             `json:"member_since,omitempty"`
}

type CompatibilityResponse struct {
	BloodType       string   `json:"blood_type"`
	CompatibleTypes []string `json:"compatible_types"`
}

func ToDonorResponse(a *domainAccount.Account, now time.Time) *DonorResponse {
	resp := &DonorResponse{
		ID:       a.ID,
		Name:     a.Name,
		Email:    a.Email,
		Phone:    a.Phone,
		Location: a.Location,
	}
	if a.Donor != nil {
		resp.BloodType = a.Donor.BloodType.String()
		resp.Available = a.Donor.Available
		resp.LastDonationDate = a.Donor.LastDonationDate
		resp.CanDonate = a.Eligibility(now).CanDonate
	}
	return resp
}

func toDonorResponses(accounts []*domainAccount.Account, now time.Time) []*DonorResponse {
	out := make([]*DonorResponse, len(accounts))
	for i, a := range accounts {
		out[i] = ToDonorResponse(a, now)
	}
	return out
}
