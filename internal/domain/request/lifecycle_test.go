package request

import (
	"testing"
	"time"

	appErrors "bloodlink/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStatusTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusActive, StatusFulfilled, true},
		{StatusActive, StatusCancelled, true},
		{StatusActive, StatusExpired, true},
		{StatusActive, StatusActive, true},
		{StatusFulfilled, StatusActive, false},
		{StatusCancelled, StatusFulfilled, false},
		{StatusExpired, StatusActive, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := ValidateStatusTransition(tt.from, tt.to)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidStatusTransition)
			assert.Equal(t, appErrors.CodeInvalidTransition, appErrors.CodeOf(err))
		})
	}
}

func TestParseOwnerStatus(t *testing.T) {
	for _, s := range []string{"active", "fulfilled", "cancelled"} {
		got, err := ParseOwnerStatus(s)
		require.NoError(t, err)
		assert.Equal(t, Status(s), got)
	}

	for _, s := range []string{"expired", "done", ""} {
		_, err := ParseOwnerStatus(s)
		require.ErrorIs(t, err, ErrInvalidStatus, s)
		assert.Equal(t, appErrors.CodeValidation, appErrors.CodeOf(err))
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.False(t, StatusActive.IsTerminal())
	assert.True(t, StatusFulfilled.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusExpired.IsTerminal())
	assert.False(t, Status("unknown").IsValid())
}

func TestAcceptsResponses(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r := &BloodRequest{Status: StatusActive, ExpiresAt: now.Add(time.Second)}

	assert.True(t, r.AcceptsResponses(now))
	assert.False(t, r.AcceptsResponses(now.Add(time.Second)))

	r.Status = StatusFulfilled
	assert.False(t, r.AcceptsResponses(now))
}

func TestUrgencyPriority(t *testing.T) {
	assert.Greater(t, UrgencyCritical.Priority(), UrgencyUrgent.Priority())
	assert.Greater(t, UrgencyUrgent.Priority(), UrgencyNormal.Priority())
	assert.False(t, Urgency("low").IsValid())
}

func TestResponseHelpers(t *testing.T) {
	donor := uuid.New()
	r := &BloodRequest{Responses: []Response{
		{DonorID: uuid.New(), Status: ResponseAccepted},
		{DonorID: donor, Status: ResponsePending},
		{DonorID: uuid.New(), Status: ResponseAccepted},
	}}

	found := r.FindResponse(donor)
	require.NotNil(t, found)
	assert.Equal(t, ResponsePending, found.Status)
	assert.Nil(t, r.FindResponse(uuid.New()))

	counts := r.CountResponses()
	assert.Equal(t, 2, counts[ResponseAccepted])
	assert.Equal(t, 1, counts[ResponsePending])
	assert.Zero(t, counts[ResponseDeclined])
}
