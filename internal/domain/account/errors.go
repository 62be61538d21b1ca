package account

import "errors"

var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountAlreadyExists = errors.New("account already exists with this email")
	ErrAccountInactive      = errors.New("account is inactive")
	ErrInvalidRole          = errors.New("invalid account role")

	ErrDonorProfileRequired    = errors.New("blood type is required for donors")
	ErrHospitalProfileRequired = errors.New("hospital name and registration number are required for hospitals")
	ErrRoleVariantMismatch     = errors.New("role-specific details do not match the account role")
	ErrLocationIncomplete      = errors.New("complete location details are required")
	ErrProfileAlreadyComplete  = errors.New("profile is already complete")
)
