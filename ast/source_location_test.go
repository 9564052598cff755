package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSourceLocationRoundTrip ensures decoding and re-encoding a location string is the identity.
func TestSourceLocationRoundTrip(t *testing.T) {
	inputs := []string{"0:0:0", "12:34:1", "100:1:2"}
	for _, input := range inputs {
		location, err := DecodeSourceLocation(input, 3)
		assert.NoError(t, err)
		assert.Equal(t, input, location.Encode())
	}
}

// TestSourceLocationSentinel ensures the reserved sentinel decodes to an absent location and encodes back to
// itself, regardless of how many source units exist.
func TestSourceLocationSentinel(t *testing.T) {
	location, err := DecodeSourceLocation(AbsentSourceLocation, 0)
	assert.NoError(t, err)
	assert.True(t, location.IsAbsent())
	assert.Equal(t, AbsentSourceLocation, location.Encode())
}

// TestSourceLocationRejectsMalformed ensures malformed location strings fail with a MalformedLocationError.
func TestSourceLocationRejectsMalformed(t *testing.T) {
	inputs := []string{
		"",
		"1:2",
		"1:2:3:4",
		"a:2:0",
		"1:b:0",
		"1:2:c",
		"-5:2:0",
		"1:-2:0",
		"-1:-1:0",
	}
	for _, input := range inputs {
		_, err := DecodeSourceLocation(input, 3)
		assert.Error(t, err, "expected '%s' to be rejected", input)

		var malformed *MalformedLocationError
		assert.ErrorAs(t, err, &malformed)
	}
}

// TestSourceLocationUnitRange ensures the unit index must resolve to a known source unit at decode time.
func TestSourceLocationUnitRange(t *testing.T) {
	_, err := DecodeSourceLocation("0:5:0", 1)
	assert.NoError(t, err)

	_, err = DecodeSourceLocation("0:5:1", 1)
	assert.Error(t, err)

	_, err = DecodeSourceLocation("0:5:0", 0)
	assert.Error(t, err)
}
