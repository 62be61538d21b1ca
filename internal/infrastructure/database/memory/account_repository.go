// Package memory holds process-local implementations of the repositories,
// used by DB_DRIVER=memory and by tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"bloodlink/internal/domain/account"
	"bloodlink/internal/domain/blood"

	"github.com/google/uuid"
)

type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*account.Account
	byEmail  map[string]uuid.UUID
	now      func() time.Time
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts: make(map[uuid.UUID]*account.Account),
		byEmail:  make(map[string]uuid.UUID),
		now:      time.Now,
	}
}

// WithClock replaces the time source used for timestamps.
func (r *AccountRepository) WithClock(now func() time.Time) *AccountRepository {
	r.now = now
	return r
}

func (r *AccountRepository) Create(_ context.Context, a *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := normalizeEmail(a.Email)
	if _, exists := r.byEmail[email]; exists {
		return account.ErrAccountAlreadyExists
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = r.now()
	}
	a.UpdatedAt = a.CreatedAt
	a.Email = email

	r.accounts[a.ID] = cloneAccount(a)
	r.byEmail[email] = a.ID
	return nil
}

func (r *AccountRepository) GetByID(_ context.Context, id uuid.UUID) (*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *AccountRepository) GetByEmail(_ context.Context, email string) (*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	return cloneAccount(r.accounts[id]), nil
}

func (r *AccountRepository) Update(_ context.Context, a *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.accounts[a.ID]
	if !ok {
		return account.ErrAccountNotFound
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = r.now()
	}

	updated := cloneAccount(a)
	// Email, credentials and creation time are not part of a profile update.
	updated.Email = existing.Email
	updated.PasswordHashed = existing.PasswordHashed
	updated.GoogleID = existing.GoogleID
	updated.AuthProvider = existing.AuthProvider
	updated.CreatedAt = existing.CreatedAt
	r.accounts[a.ID] = updated
	return nil
}

func (r *AccountRepository) SetAvailability(_ context.Context, id uuid.UUID, available bool) error {
	return r.updateDonor(id, func(d *account.DonorProfile) {
		d.Available = available
	})
}

func (r *AccountRepository) RecordDonation(_ context.Context, id uuid.UUID, donatedAt time.Time) error {
	return r.updateDonor(id, func(d *account.DonorProfile) {
		at := donatedAt
		d.LastDonationDate = &at
		d.Available = false
	})
}

func (r *AccountRepository) updateDonor(id uuid.UUID, fn func(*account.DonorProfile)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok || a.Role != account.RoleDonor || a.Donor == nil {
		return account.ErrAccountNotFound
	}
	fn(a.Donor)
	a.UpdatedAt = r.now()
	return nil
}

func (r *AccountRepository) SearchDonors(_ context.Context, filter *account.DonorFilter) ([]*account.Account, error) {
	r.mu.RLock()
	matched := r.matchDonors(filter)
	r.mu.RUnlock()

	sortBy := account.SortNewest
	if filter != nil {
		sortBy = filter.Sort
	}
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if sortBy == account.SortBloodTypeThenAvailable {
			if a.Donor.BloodType != b.Donor.BloodType {
				return a.Donor.BloodType < b.Donor.BloodType
			}
			if a.Donor.Available != b.Donor.Available {
				return a.Donor.Available
			}
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	if filter != nil && filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (r *AccountRepository) CountDonors(_ context.Context, filter *account.DonorFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.matchDonors(filter))), nil
}

func (r *AccountRepository) DonorStatsByBloodType(_ context.Context, filter *account.DonorFilter) ([]account.BloodTypeCount, error) {
	r.mu.RLock()
	matched := r.matchDonors(filter)
	r.mu.RUnlock()

	byType := make(map[blood.Type]*account.BloodTypeCount)
	for _, a := range matched {
		c, ok := byType[a.Donor.BloodType]
		if !ok {
			c = &account.BloodTypeCount{BloodType: a.Donor.BloodType}
			byType[a.Donor.BloodType] = c
		}
		c.Total++
		if a.Donor.Available {
			c.Available++
		}
	}

	stats := make([]account.BloodTypeCount, 0, len(byType))
	for _, c := range byType {
		stats = append(stats, *c)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].BloodType < stats[j].BloodType })
	return stats, nil
}

// matchDonors must be called with the lock held. Results are copies.
func (r *AccountRepository) matchDonors(filter *account.DonorFilter) []*account.Account {
	var out []*account.Account
	for _, a := range r.accounts {
		if a.Role != account.RoleDonor || a.Donor == nil || !a.IsActive {
			continue
		}
		if filter != nil {
			if len(filter.BloodTypes) > 0 && !containsType(filter.BloodTypes, a.Donor.BloodType) {
				continue
			}
			if !matchCity(a.Location.City, filter) || !containsFold(a.Location.State, filter.State) {
				continue
			}
			if filter.Pincode != "" && a.Location.Pincode != filter.Pincode {
				continue
			}
			if filter.AvailableOnly && !a.Donor.Available {
				continue
			}
		}
		out = append(out, cloneAccount(a))
	}
	return out
}

func containsType(types []blood.Type, t blood.Type) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

// containsFold reports whether substr is within s, ignoring case. An empty
// substr always matches.
func matchCity(city string, filter *account.DonorFilter) bool {
	want := strings.TrimSpace(filter.City)
	if filter.ExactCity && want != "" {
		return city == want
	}
	return containsFold(city, want)
}

func containsFold(s, substr string) bool {
	substr = strings.TrimSpace(substr)
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func cloneAccount(a *account.Account) *account.Account {
	c := *a
	if a.GoogleID != nil {
		id := *a.GoogleID
		c.GoogleID = &id
	}
	if a.Location.Coordinates != nil {
		coords := *a.Location.Coordinates
		c.Location.Coordinates = &coords
	}
	if a.Donor != nil {
		d := *a.Donor
		if a.Donor.LastDonationDate != nil {
			at := *a.Donor.LastDonationDate
			d.LastDonationDate = &at
		}
		c.Donor = &d
	}
	if a.Hospital != nil {
		h := *a.Hospital
		c.Hospital = &h
	}
	return &c
}
