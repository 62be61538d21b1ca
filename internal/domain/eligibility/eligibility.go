// Package eligibility decides whether a donor may give blood again.
package eligibility

import "time"

const (
	CooldownDays = 90
	day          = 24 * time.Hour
)

type Result struct {
	CanDonate             bool       `json:"can_donate"`
	DaysSinceLastDonation *int       `json:"days_since_last_donation"`
	DaysUntilEligible     int        `json:"days_until_eligible"`
	NextEligibleDate      *time.Time `json:"next_eligible_date"`
}

// Evaluate applies the cooldown to lastDonation as seen at now. Elapsed days
// are floored, so eligibility flips exactly at CooldownDays*24h.
func Evaluate(lastDonation *time.Time, now time.Time) Result {
	if lastDonation == nil || lastDonation.IsZero() {
		return Result{CanDonate: true}
	}

	days := DaysSince(*lastDonation, now)
	next := lastDonation.Add(CooldownDays * day)

	remaining := CooldownDays - days
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		CanDonate:             days >= CooldownDays,
		DaysSinceLastDonation: &days,
		DaysUntilEligible:     remaining,
		NextEligibleDate:      &next,
	}
}

func CanDonate(lastDonation *time.Time, now time.Time) bool {
	return Evaluate(lastDonation, now).CanDonate
}

// DaysSince returns the whole days between from and now, floored.
func DaysSince(from, now time.Time) int {
	elapsed := now.Sub(from)
	if elapsed < 0 {
		return -int((-elapsed + day - 1) / day)
	}
	return int(elapsed / day)
}
