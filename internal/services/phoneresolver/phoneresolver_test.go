package phoneresolver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize_TenDigits(t *testing.T) {
	require.Equal(t, "+15551234567", Normalize("555-123-4567"))
}

func TestNormalize_ElevenDigitsLeadingOne(t *testing.T) {
	require.Equal(t, "+15551234567", Normalize("1 (555) 123-4567"))
}

func TestNormalize_OtherLengthsRetained(t *testing.T) {
	require.Equal(t, "+442012345678", Normalize("+44 20 1234 5678"))
}

func TestNormalize_Idempotent(t *testing.T) {
	once := Normalize("(555) 123-4567")
	twice := Normalize(once)
	require.Equal(t, once, twice)
}

func TestPhonesMatch(t *testing.T) {
	require.True(t, PhonesMatch("555-123-4567", "+15551234567"))
	require.False(t, PhonesMatch("555-123-4567", "555-123-9999"))
}
