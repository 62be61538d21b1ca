package account

import (
	"testing"
	"time"

	"bloodlink/internal/domain/blood"

	"github.com/stretchr/testify/assert"
)

var fullLocation = Location{Address: "12 MG Road", City: "Pune", State: "Maharashtra", Pincode: "411001"}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		account Account
		wantErr error
	}{
		{
			name:    "donor with blood type",
			account: Account{Role: RoleDonor, AuthProvider: ProviderLocal, Location: fullLocation, Donor: NewDonorProfile(blood.OPositive)},
		},
		{
			name:    "donor without profile",
			account: Account{Role: RoleDonor, AuthProvider: ProviderLocal, Location: fullLocation},
			wantErr: ErrDonorProfileRequired,
		},
		{
			name:    "donor with invalid blood type",
			account: Account{Role: RoleDonor, AuthProvider: ProviderLocal, Location: fullLocation, Donor: &DonorProfile{BloodType: "Q"}},
			wantErr: ErrDonorProfileRequired,
		},
		{
			name: "hospital missing registration number",
			account: Account{Role: RoleHospital, AuthProvider: ProviderLocal, Location: fullLocation,
				Hospital: &HospitalProfile{HospitalName: "City Hospital"}},
			wantErr: ErrHospitalProfileRequired,
		},
		{
			name: "hospital complete",
			account: Account{Role: RoleHospital, AuthProvider: ProviderLocal, Location: fullLocation,
				Hospital: &HospitalProfile{HospitalName: "City Hospital", RegistrationNumber: "MH-1234"}},
		},
		{
			name:    "patient carrying donor details",
			account: Account{Role: RolePatient, AuthProvider: ProviderLocal, Location: fullLocation, Donor: NewDonorProfile(blood.APositive)},
			wantErr: ErrRoleVariantMismatch,
		},
		{
			name:    "local patient without pincode",
			account: Account{Role: RolePatient, AuthProvider: ProviderLocal, Location: Location{Address: "x", City: "Pune", State: "MH"}},
			wantErr: ErrLocationIncomplete,
		},
		{
			name:    "federated patient without location",
			account: Account{Role: RolePatient, AuthProvider: ProviderGoogle},
		},
		{
			name:    "unknown role",
			account: Account{Role: "admin"},
			wantErr: ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEligibilityForNonDonor(t *testing.T) {
	patient := &Account{Role: RolePatient}
	assert.False(t, patient.Eligibility(time.Now()).CanDonate)

	donor := &Account{Role: RoleDonor, Donor: NewDonorProfile(blood.BNegative)}
	assert.True(t, donor.Eligibility(time.Now()).CanDonate)
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" Hospital ")
	assert.NoError(t, err)
	assert.Equal(t, RoleHospital, role)

	_, err = ParseRole("admin")
	assert.ErrorIs(t, err, ErrInvalidRole)
}
