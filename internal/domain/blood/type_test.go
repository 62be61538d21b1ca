package blood

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompatibleDonors(t *testing.T) {
	tests := []struct {
		recipient Type
		want      []Type
	}{
		{APositive, []Type{APositive, ANegative, OPositive, ONegative}},
		{ANegative, []Type{ANegative, ONegative}},
		{BPositive, []Type{BPositive, BNegative, OPositive, ONegative}},
		{BNegative, []Type{BNegative, ONegative}},
		{ABPositive, All},
		{ABNegative, []Type{ANegative, BNegative, ABNegative, ONegative}},
		{OPositive, []Type{OPositive, ONegative}},
		{ONegative, []Type{ONegative}},
	}

	for _, tt := range tests {
		t.Run(string(tt.recipient), func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, CompatibleDonors(tt.recipient))
		})
	}
}

func TestCompatibleDonorsUnknownTypeEchoesInput(t *testing.T) {
	assert.Equal(t, []Type{"X+"}, CompatibleDonors("X+"))
}

func TestCompatibleDonorsReturnsCopy(t *testing.T) {
	got := CompatibleDonors(ONegative)
	got[0] = APositive

	assert.Equal(t, []Type{ONegative}, CompatibleDonors(ONegative))
}

func TestParse(t *testing.T) {
	bt, err := Parse(" ab- ")
	require.NoError(t, err)
	assert.Equal(t, ABNegative, bt)

	_, err = Parse("C+")
	assert.ErrorIs(t, err, ErrInvalidBloodType)
}

func TestCanReceiveFrom(t *testing.T) {
	assert.True(t, CanReceiveFrom(ABPositive, ONegative))
	assert.True(t, CanReceiveFrom(APositive, APositive))
	assert.False(t, CanReceiveFrom(ONegative, OPositive))
	assert.False(t, CanReceiveFrom("Z", ONegative))
}
