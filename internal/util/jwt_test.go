package util

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("teacher@school.edu", "Teacher", "secret")
	require.NoError(t, err)

	email, name, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "teacher@school.edu", email)
	assert.Equal(t, "Teacher", name)
}

func TestParseJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT("teacher@school.edu", "Teacher", "secret")
	require.NoError(t, err)

	_, _, err = ParseJWT(token, "other")
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"bearer token", "Bearer abc", "abc"},
		{"lowercase scheme", "bearer abc", "abc"},
		{"missing header", "", ""},
		{"wrong scheme", "Basic abc", ""},
		{"no token", "Bearer", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, ExtractToken(req))
		})
	}
}
