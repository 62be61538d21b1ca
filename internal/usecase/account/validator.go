package account

import (
	"strings"

	domainAccount "bloodlink/internal/domain/account"
	"bloodlink/internal/domain/blood"
	appErrors "bloodlink/pkg/errors"
	"bloodlink/pkg/utils"
)

func validationError(err error) error {
	return appErrors.NewAppError(appErrors.CodeValidation, utils.ValidationMessage(err), appErrors.ErrInvalidInput)
}

// buildRoleVariant checks the role-conditional fields and returns the
// matching variant. Exactly one of the results is non-nil for donors and
// hospitals; both are nil for patients.
func buildRoleVariant(role domainAccount.Role, bloodType, hospitalName, registrationNumber string) (*domainAccount.DonorProfile, *domainAccount.HospitalProfile, error) {
	switch role {
	case domainAccount.RoleDonor:
		if bloodType == "" {
			return nil, nil, appErrors.NewAppError(appErrors.CodeValidation, "Blood type is required for donors", domainAccount.ErrDonorProfileRequired)
		}
		bt, err := blood.Parse(bloodType)
		if err != nil {
			return nil, nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid blood type", err)
		}
		return domainAccount.NewDonorProfile(bt), nil, nil

	case domainAccount.RoleHospital:
		name := utils.SanitizeString(hospitalName)
		reg := strings.TrimSpace(registrationNumber)
		if name == "" || reg == "" {
			return nil, nil, appErrors.NewAppError(
				appErrors.CodeValidation,
				"Hospital name and registration number are required for hospitals",
				domainAccount.ErrHospitalProfileRequired,
			)
		}
		return nil, &domainAccount.HospitalProfile{HospitalName: name, RegistrationNumber: reg}, nil

	case domainAccount.RolePatient:
		return nil, nil, nil

	default:
		return nil, nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid role", domainAccount.ErrInvalidRole)
	}
}

func ValidateRegistration(req *RegisterRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return validationError(err)
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return appErrors.NewAppError(appErrors.CodeValidation, err.Error(), appErrors.ErrWeakPassword)
	}
	if !utils.IsValidEmail(req.Email) {
		return appErrors.NewAppError(appErrors.CodeValidation, "email is invalid", appErrors.ErrInvalidInput)
	}
	return nil
}
