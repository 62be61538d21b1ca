package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainAccount "bloodlink/internal/domain/account"
	"bloodlink/internal/domain/session"
	"bloodlink/internal/logger"
	"bloodlink/internal/metrics"
	appErrors "bloodlink/pkg/errors"
	"bloodlink/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service implements registration, sessions and donor self-service
type Service struct {
	accounts    domainAccount.Repository
	tokens      *utils.TokenManager
	revocations session.RevocationList
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewService creates a new account service
func NewService(
	accounts domainAccount.Repository,
	tokens *utils.TokenManager,
	revocations session.RevocationList,
	m *metrics.Metrics,
) *Service {
	return &Service{
		accounts:    accounts,
		tokens:      tokens,
		revocations: revocations,
		metrics:     m,
		now:         time.Now,
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	req.normalize()
	if err := ValidateRegistration(req); err != nil {
		return nil, err
	}

	role, err := domainAccount.ParseRole(req.Role)
	if err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid role", err)
	}
	donor, hospital, err := buildRoleVariant(role, req.BloodType, req.HospitalName, req.RegistrationNumber)
	if err != nil {
		return nil, err
	}

	existing, err := s.accounts.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, domainAccount.ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		logger.Warn("Registration attempt with existing email",
			zap.String("email", req.Email),
			zap.String("event", "registration_failed_duplicate_email"),
		)
		return nil, domainAccount.ErrAccountAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	acc := &domainAccount.Account{
		ID:              uuid.New(),
		Name:            utils.SanitizeString(req.Name),
		Email:           req.Email,
		Phone:           req.Phone,
		PasswordHashed:  hashedPassword,
		AuthProvider:    domainAccount.ProviderLocal,
		Role:            role,
		Location:        req.LocationInput.toLocation(),
		Donor:           donor,
		Hospital:        hospital,
		IsActive:        true,
		ProfileComplete: true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := acc.Validate(); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, err.Error(), err)
	}

	if err := s.accounts.Create(ctx, acc); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(acc.ID, string(acc.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.metrics.IncrementAccountsRegistered(string(acc.Role))
	logger.Info("Account registered successfully",
		zap.String("account_id", acc.ID.String()),
		zap.String("email", acc.Email),
		zap.String("role", string(acc.Role)),
		zap.String("event", "account_registered"),
	)

	return &AuthResponse{
		User:      ToProfileResponse(acc, now),
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
	}, nil
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	req.Email = utils.SanitizeEmail(req.Email)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	acc, err := s.accounts.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domainAccount.ErrAccountNotFound) {
			logger.Warn("Login attempt with non-existent email",
				zap.String("email", req.Email),
				zap.String("event", "login_failed_unknown_email"),
			)
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.CheckPassword(acc.PasswordHashed, req.Password) {
		logger.Warn("Login attempt with invalid password",
			zap.String("account_id", acc.ID.String()),
			zap.String("event", "login_failed_invalid_password"),
		)
		return nil, appErrors.ErrInvalidCredentials
	}

	if !acc.IsActive {
		logger.Warn("Login attempt for inactive account",
			zap.String("account_id", acc.ID.String()),
			zap.String("event", "login_failed_inactive_account"),
		)
		return nil, domainAccount.ErrAccountInactive
	}

	token, err := s.tokens.Issue(acc.ID, string(acc.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	logger.Info("Account logged in successfully",
		zap.String("account_id", acc.ID.String()),
		zap.String("role", string(acc.Role)),
		zap.String("event", "login_success"),
	)

	return &AuthResponse{
		User:      ToProfileResponse(acc, s.now()),
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
	}, nil
}

// Authenticate verifies a bearer token and resolves the active account it
// was issued to.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (*domainAccount.Account, *utils.Claims, error) {
	claims, err := s.tokens.Validate(rawToken)
	if err != nil {
		return nil, nil, err
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, nil, appErrors.ErrTokenRevoked
	}

	acc, err := s.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, domainAccount.ErrAccountNotFound) {
			return nil, nil, appErrors.ErrUnauthorized
		}
		return nil, nil, err
	}
	if !acc.IsActive {
		return nil, nil, domainAccount.ErrAccountInactive
	}

	return acc, claims, nil
}

// Logout revokes the presented token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, claims *utils.Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return appErrors.ErrInvalidToken
	}

	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if err := s.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	logger.Info("Account logged out",
		zap.String("account_id", claims.AccountID.String()),
		zap.String("event", "logout"),
	)
	return nil
}

func (s *Service) GetProfile(ctx context.Context, accountID uuid.UUID) (*ProfileResponse, error) {
	acc, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return ToProfileResponse(acc, s.now()), nil
}

func (s *Service) CompleteProfile(ctx context.Context, accountID uuid.UUID, req *CompleteProfileRequest) (*ProfileResponse, error) {
	req.normalize()
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	acc, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acc.ProfileComplete {
		return nil, appErrors.NewAppError(appErrors.CodeConflict, "Profile is already complete", domainAccount.ErrProfileAlreadyComplete)
	}

	role, err := domainAccount.ParseRole(req.Role)
	if err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid role", err)
	}
	donor, hospital, err := buildRoleVariant(role, req.BloodType, req.HospitalName, req.RegistrationNumber)
	if err != nil {
		return nil, err
	}

	acc.Phone = req.Phone
	acc.Role = role
	acc.Location = req.LocationInput.toLocation()
	acc.Donor = donor
	acc.Hospital = hospital
	acc.ProfileComplete = true
	acc.UpdatedAt = s.now()
	if err := acc.Validate(); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, err.Error(), err)
	}

	if err := s.accounts.Update(ctx, acc); err != nil {
		return nil, err
	}

	logger.Info("Account profile completed",
		zap.String("account_id", acc.ID.String()),
		zap.String("role", string(acc.Role)),
		zap.String("event", "profile_completed"),
	)
	return ToProfileResponse(acc, s.now()), nil
}

func (s *Service) UpdateAvailability(ctx context.Context, accountID uuid.UUID, req *AvailabilityRequest) (*AvailabilityResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	acc, err := s.requireDonor(ctx, accountID, "Only donors can update availability")
	if err != nil {
		return nil, err
	}

	if err := s.accounts.SetAvailability(ctx, acc.ID, *req.Available); err != nil {
		return nil, err
	}

	logger.Info("Donor availability updated",
		zap.String("account_id", acc.ID.String()),
		zap.Bool("available", *req.Available),
		zap.String("event", "availability_updated"),
	)

	return &AvailabilityResponse{
		ID:        acc.ID,
		Name:      acc.Name,
		BloodType: acc.BloodType().String(),
		Available: *req.Available,
	}, nil
}

// RecordDonation stores a donation (now when no date is given) and marks the
// donor unavailable.
func (s *Service) RecordDonation(ctx context.Context, accountID uuid.UUID, req *RecordDonationRequest) (*ProfileResponse, error) {
	now := s.now()
	donatedAt := now
	if req != nil && req.DonationDate != nil {
		donatedAt = *req.DonationDate
	}
	if donatedAt.After(now) {
		return nil, appErrors.Validation("donation_date cannot be in the future")
	}

	acc, err := s.requireDonor(ctx, accountID, "Only donors can record donations")
	if err != nil {
		return nil, err
	}

	if err := s.accounts.RecordDonation(ctx, acc.ID, donatedAt); err != nil {
		return nil, err
	}

	updated, err := s.accounts.GetByID(ctx, acc.ID)
	if err != nil {
		return nil, err
	}

	logger.Info("Donation recorded",
		zap.String("account_id", acc.ID.String()),
		zap.Time("donated_at", donatedAt),
		zap.String("event", "donation_recorded"),
	)
	return ToProfileResponse(updated, now), nil
}

func (s *Service) DonationStats(ctx context.Context, accountID uuid.UUID) (*DonationStatsResponse, error) {
	acc, err := s.requireDonor(ctx, accountID, "Only donors can access donation history")
	if err != nil {
		return nil, err
	}

	now := s.now()
	return &DonationStatsResponse{
		Donor: ToProfileResponse(acc, now),
		Stats: acc.Eligibility(now),
	}, nil
}

func (s *Service) requireDonor(ctx context.Context, accountID uuid.UUID, message string) (*domainAccount.Account, error) {
	acc, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !acc.IsDonor() {
		return nil, appErrors.Forbidden(message)
	}
	return acc, nil
}
