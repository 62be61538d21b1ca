package request

import (
	"time"

	domainAccount "bloodlink/internal/domain/account"
	domainRequest "bloodlink/internal/domain/request"

	"github.com/google/uuid"
)

type CreateBloodRequest struct {
	BloodType     string  `json:"blood_type" validate:"required,blood_type"`
	UnitsNeeded   *int    `json:"units_needed" validate:"omitempty,min=1,max=100"`
	Urgency       string  `json:"urgency" validate:"omitempty,urgency"`
	HospitalName  *string `json:"hospital_name" validate:"omitempty,max=255"`
	PatientName   string  `json:"patient_name" validate:"required,min=2,max=255"`
	ContactNumber string  `json:"contact_number" validate:"required,min=7,max=20"`
	Address       string  `json:"address" validate:"omitempty,max=500"`
	City          string  `json:"city" validate:"omitempty,max=100"`
	State         string  `json:"state" validate:"omitempty,max=100"`
	Pincode       string  `json:"pincode" validate:"omitempty,pincode"`
	Reason        *string `json:"reason" validate:"omitempty,max=1000"`
	Notes         *string `json:"notes" validate:"omitempty,max=2000"`
}

// BulkRequestItem is one entry of a hospital bulk request. Location and
// hospital name always come from the hospital; contact defaults to it.
type BulkRequestItem struct {
	BloodType     string  `json:"blood_type" validate:"required,blood_type"`
	UnitsNeeded   *int    `json:"units_needed" validate:"omitempty,min=1,max=100"`
	Urgency       string  `json:"urgency" validate:"omitempty,urgency"`
	PatientName   string  `json:"patient_name" validate:"required,min=2,max=255"`
	ContactNumber string  `json:"contact_number" validate:"omitempty,min=7,max=20"`
	Reason        *string `json:"reason" validate:"omitempty,max=1000"`
	Notes         *string `json:"notes" validate:"omitempty,max=2000"`
}

type BulkCreateRequest struct {
	Requests []BulkRequestItem `json:"requests" validate:"required,min=1,max=50,dive"`
}

type ListQuery struct {
	BloodType string `form:"blood_type" validate:"omitempty,blood_type"`
	City      string `form:"city" validate:"omitempty,max=100"`
	Urgency   string `form:"urgency" validate:"omitempty,urgency"`
	Status    string `form:"status" validate:"omitempty,oneof=active fulfilled cancelled expired"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type RespondRequest struct {
	Status  string  `json:"status" validate:"omitempty,oneof=pending accepted declined"`
	Message *string `json:"message" validate:"omitempty,max=500"`
}

type DonorResponseView struct {
	ID          uuid.UUID                    `json:"id"`
	DonorID     uuid.UUID                    `json:"donor_id"`
	Status      domainRequest.ResponseStatus `json:"status"`
	Message     *string                      `json:"message,omitempty"`
	RespondedAt time.Time                    `json:"responded_at"`
}

type RequesterSummary struct {
	ID    uuid.UUID          `json:"id"`
	Name  string             `json:"name"`
	Phone string             `json:"phone"`
	Role  domainAccount.Role `json:"role"`
}

type BloodRequestResponse struct {
	ID             uuid.UUID                            `json:"id"`
	RequestedBy    uuid.UUID                            `json:"requested_by"`
	Requester      *RequesterSummary                    `json:"requester,omitempty"`
	BloodType      string                               `json:"blood_type"`
	UnitsNeeded    int                                  `json:"units_needed"`
	Urgency        domainRequest.Urgency                `json:"urgency"`
	Location       domainAccount.Location               `json:"location"`
	HospitalName   *string                              `json:"hospital_name,omitempty"`
	PatientName    string                               `json:"patient_name"`
	ContactNumber  string                               `json:"contact_number"`
	Reason         *string                              `json:"reason,omitempty"`
	Notes          *string                              `json:"notes,omitempty"`
	Status         domainRequest.Status                 `json:"status"`
	Responses      []DonorResponseView                  `json:"responses"`
	ResponseCounts map[domainRequest.ResponseStatus]int `json:"response_counts"`
	CreatedAt      time.Time                            `json:"created_at"`
	UpdatedAt      time.Time                            `json:"updated_at"`
	ExpiresAt      time.Time                            `json:"expires_at"`
}

func ToBloodRequestResponse(r *domainRequest.BloodRequest) *BloodRequestResponse {
	if r == nil {
		return nil
	}
	resp := &BloodRequestResponse{
		ID:             r.ID,
		RequestedBy:    r.RequestedBy,
		BloodType:      r.BloodType.String(),
		UnitsNeeded:    r.UnitsNeeded,
		Urgency:        r.Urgency,
		Location:       r.Location,
		HospitalName:   r.HospitalName,
		PatientName:    r.PatientName,
		ContactNumber:  r.ContactNumber,
		Reason:         r.Reason,
		Notes:          r.Notes,
		Status:         r.Status,
		Responses:      make([]DonorResponseView, len(r.Responses)),
		ResponseCounts: r.CountResponses(),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		ExpiresAt:      r.ExpiresAt,
	}
	for i, dr := range r.Responses {
		resp.Responses[i] = DonorResponseView{
			ID:          dr.ID,
			DonorID:     dr.DonorID,
			Status:      dr.Status,
			Message:     dr.Message,
			RespondedAt: dr.RespondedAt,
		}
	}
	return resp
}

func ToBloodRequestResponses(reqs []*domainRequest.BloodRequest) []*BloodRequestResponse {
	out := make([]*BloodRequestResponse, len(reqs))
	for i, r := range reqs {
		out[i] = ToBloodRequestResponse(r)
	}
	return out
}

func toRequesterSummary(a *domainAccount.Account) *RequesterSummary {
	if a == nil {
		return nil
	}
	return &RequesterSummary{ID: a.ID, Name: a.Name, Phone: a.Phone, Role: a.Role}
}
