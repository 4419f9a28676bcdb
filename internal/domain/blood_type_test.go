package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// compatibilityTable is the full donor -> recipients grid. Every pair not
// listed must be rejected.
var compatibilityTable = map[BloodType][]BloodType{
	ONeg:  {ONeg, OPos, ANeg, APos, BNeg, BPos, ABNeg, ABPos},
	OPos:  {OPos, APos, BPos, ABPos},
	ANeg:  {ANeg, APos, ABNeg, ABPos},
	APos:  {APos, ABPos},
	BNeg:  {BNeg, BPos, ABNeg, ABPos},
	BPos:  {BPos, ABPos},
	ABNeg: {ABNeg, ABPos},
	ABPos: {ABPos},
}

func TestCanDonateFullGrid(t *testing.T) {
	require.Len(t, BloodTypes, 8)
	for _, donor := range BloodTypes {
		allowed := map[BloodType]bool{}
		for _, r := range compatibilityTable[donor] {
			allowed[r] = true
		}
		for _, recipient := range BloodTypes {
			got := CanDonate(donor, recipient)
			assert.Equal(t, allowed[recipient], got,
				"donor %s -> recipient %s", donor, recipient)
		}
	}
}

func TestCanDonateUniversalDonor(t *testing.T) {
	for _, recipient := range BloodTypes {
		assert.True(t, CanDonate(ONeg, recipient), "O- must donate to %s", recipient)
	}
}

func TestCanDonateUniversalRecipient(t *testing.T) {
	for _, recipient := range BloodTypes {
		want := recipient == ABPos
		assert.Equal(t, want, CanDonate(ABPos, recipient), "AB+ -> %s", recipient)
	}
}

func TestCanDonateUnknownTypeFailsClosed(t *testing.T) {
	assert.False(t, CanDonate(BloodType("X+"), APos))
	assert.False(t, CanDonate(APos, BloodType("X+")))
	assert.False(t, CanDonate(BloodType(""), BloodType("")))
}

func TestBloodTypeIsValid(t *testing.T) {
	for _, bt := range BloodTypes {
		assert.True(t, bt.IsValid())
	}
	assert.False(t, BloodType("C+").IsValid())
	assert.False(t, BloodType("").IsValid())
}
