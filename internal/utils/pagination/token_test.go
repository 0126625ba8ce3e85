package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeToken(t *testing.T) {
	createdAt := time.Date(2023, 5, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeToken(createdAt, "b6a1c1a2-0000-4000-8000-000000000001")
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedAt, decodedID, err := DecodeToken(token)
	assert.NoError(t, err)
	assert.True(t, createdAt.Equal(decodedAt))
	assert.Equal(t, "b6a1c1a2-0000-4000-8000-000000000001", decodedID)
}

func TestEncodeToken_NormalisesToUTC(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	createdAt := time.Date(2024, 1, 1, 10, 0, 0, 0, ist)

	decodedAt, _, err := DecodeToken(EncodeToken(createdAt, "x"))
	assert.NoError(t, err)
	assert.True(t, createdAt.Equal(decodedAt))
	assert.Equal(t, time.UTC, decodedAt.Location())
}

func TestDecodeToken_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"not base64", "!!!"},
		{"missing separator", base64.StdEncoding.EncodeToString([]byte("2023-05-15T00:00:00Z"))},
		{"missing id", base64.StdEncoding.EncodeToString([]byte("2023-05-15T00:00:00Z|"))},
		{"bad time", base64.StdEncoding.EncodeToString([]byte("yesterday|abc"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeToken(tt.token)
			assert.Error(t, err)
		})
	}
}
