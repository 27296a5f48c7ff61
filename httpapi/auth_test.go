package httpapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBearer(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"plain", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"mixed case scheme", "BeArEr abc123", "abc123"},
		{"full charset", "Bearer a.B_c=d-9", "a.B_c=d-9"},
		{"missing header", "", ""},
		{"missing token", "Bearer ", ""},
		{"wrong scheme", "Basic abc123", ""},
		{"illegal character", "Bearer abc$123", ""},
		{"embedded space", "Bearer abc 123", ""},
		{"no scheme", "abc123", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, parseBearer(tc.header))
		})
	}
}

func TestGenerateToken(t *testing.T) {
	first, err := generateToken()
	require.NoError(t, err)
	second, err := generateToken()
	require.NoError(t, err)

	assert.Len(t, first, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", first)
	assert.NotEqual(t, first, second)
	// Tokens survive the bearer lexer round trip.
	assert.Equal(t, first, parseBearer("Bearer "+first))
}
