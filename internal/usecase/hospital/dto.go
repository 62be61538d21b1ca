package hospital

import (
	domainAccount "bloodlink/internal/domain/account"
	domainRequest "bloodlink/internal/domain/request"
)

type RequestCounts struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Fulfilled int64 `json:"fulfilled"`
	Cancelled int64 `json:"cancelled"`
	Expired   int64 `json:"expired"`
}

type DonorCounts struct {
	Total     int64 `json:"total"`
	Available int64 `json:"available"`
}

type DistributionEntry struct {
	BloodType string `json:"blood_type"`
	Count     int64  `json:"count"`
}

type DashboardResponse struct {
	HospitalName          string              `json:"hospital_name"`
	City                  string              `json:"city"`
	Requests              RequestCounts       `json:"requests"`
	Donors                DonorCounts         `json:"donors"`
	BloodTypeDistribution []DistributionEntry `json:"blood_type_distribution"`
}

type BloodStatsQuery struct {
	City string `form:"city" validate:"omitempty,max=100"`
}

type BloodStatsResponse struct {
	City       string                          `json:"city"`
	DonorStats []domainAccount.BloodTypeCount  `json:"donor_stats"`
	Demand     []domainRequest.BloodTypeDemand `json:"request_stats"`
}

func toRequestCounts(byStatus map[domainRequest.Status]int64) RequestCounts {
	counts := RequestCounts{
		Active:    byStatus[domainRequest.StatusActive],
		Fulfilled: byStatus[domainRequest.StatusFulfilled],
		Cancelled: byStatus[domainRequest.StatusCancelled],
		Expired:   byStatus[domainRequest.StatusExpired],
	}
	for _, n := range byStatus {
		counts.Total += n
	}
	return counts
}
