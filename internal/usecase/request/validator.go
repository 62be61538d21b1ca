package request

import (
	"fmt"
	"strings"

	domainAccount "bloodlink/internal/domain/account"
	"bloodlink/internal/domain/blood"
	domainRequest "bloodlink/internal/domain/request"
	appErrors "bloodlink/pkg/errors"
	"bloodlink/pkg/utils"
)

func validationError(err error) error {
	return appErrors.NewAppError(appErrors.CodeValidation, utils.ValidationMessage(err), appErrors.ErrInvalidInput)
}

func normalizeBloodType(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func normalizeUrgency(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func unitsOrDefault(units *int) int {
	if units == nil {
		return domainRequest.DefaultUnits
	}
	return *units
}

func urgencyOrDefault(u string) domainRequest.Urgency {
	if u == "" {
		return domainRequest.DefaultUrgency
	}
	return domainRequest.Urgency(u)
}

// locationOrDefault uses the supplied location when any part of it is
// given, otherwise the requester's own.
func locationOrDefault(req *CreateBloodRequest, requester *domainAccount.Account) domainAccount.Location {
	if req.Address == "" && req.City == "" && req.State == "" && req.Pincode == "" {
		return requester.Location
	}
	return domainAccount.Location{
		Address: utils.SanitizeString(req.Address),
		City:    utils.SanitizeString(req.City),
		State:   utils.SanitizeString(req.State),
		Pincode: strings.TrimSpace(req.Pincode),
	}
}

// ValidateBulk checks every item before anything is stored and reports the
// first failing index.
func ValidateBulk(req *BulkCreateRequest) error {
	if len(req.Requests) == 0 {
		return appErrors.Validation("Requests array is required")
	}
	for i := range req.Requests {
		item := &req.Requests[i]
		item.BloodType = normalizeBloodType(item.BloodType)
		item.Urgency = normalizeUrgency(item.Urgency)
		item.ContactNumber = strings.TrimSpace(item.ContactNumber)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return validationError(err)
	}
	for i, item := range req.Requests {
		if !blood.Type(item.BloodType).IsValid() {
			return appErrors.Validation(fmt.Sprintf("requests[%d].blood_type is invalid", i))
		}
	}
	return nil
}

// ParseRespondStatus defaults an empty status to pending.
func ParseRespondStatus(s string) (domainRequest.ResponseStatus, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return domainRequest.ResponsePending, nil
	}
	status := domainRequest.ResponseStatus(s)
	if !status.IsValid() {
		return "", appErrors.Validation("Invalid response status")
	}
	return status, nil
}
