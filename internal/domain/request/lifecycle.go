package request

import (
	"fmt"

	appErrors "bloodlink/pkg/errors"
)

var validTransitions = map[Status][]Status{
	StatusActive: {
		StatusActive,
		StatusFulfilled,
		StatusCancelled,
		StatusExpired,
	},
	StatusFulfilled: {
		// Terminal state - no transitions
	},
	StatusCancelled: {
		// Terminal state - no transitions
	},
	StatusExpired: {
		// Terminal state - no transitions
	},
}

// ownerSettable are the statuses a requester may ask for explicitly.
var ownerSettable = map[Status]bool{
	StatusActive:    true,
	StatusFulfilled: true,
	StatusCancelled: true,
}

// ParseOwnerStatus validates a status supplied by a request owner.
func ParseOwnerStatus(s string) (Status, error) {
	status := Status(s)
	if !ownerSettable[status] {
		return "", appErrors.NewAppError(appErrors.CodeValidation, "Invalid status", ErrInvalidStatus)
	}
	return status, nil
}

func (s Status) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

func (s Status) IsTerminal() bool {
	return s.IsValid() && len(validTransitions[s]) == 0
}

// ValidateStatusTransition checks if status transition is allowed
func ValidateStatusTransition(current, next Status) error {
	allowed, exists := validTransitions[current]
	if !exists {
		return appErrors.NewAppError(
			appErrors.CodeValidation,
			fmt.Sprintf("Unknown current status: %s", current),
			ErrInvalidStatus,
		)
	}

	for _, s := range allowed {
		if s == next {
			return nil
		}
	}

	return appErrors.NewAppError(
		appErrors.CodeInvalidTransition,
		fmt.Sprintf("Cannot transition from %s to %s", current, next),
		ErrInvalidStatusTransition,
	)
}

func GetAllowedTransitions(current Status) []Status {
	return validTransitions[current]
}
