package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid config",
			cfg:     Config{APIKey: "test-api-key"},
			wantErr: false,
		},
		{
			name:    "missing API key",
			cfg:     Config{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, client)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, client)
			}
		})
	}
}

func TestClient_SendBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var specs []MessageSpec
		err := json.NewDecoder(r.Body).Decode(&specs)
		require.NoError(t, err)

		require.Len(t, specs, 2)
		assert.Equal(t, "a@ex.com", specs[0].Personalizations[0].To[0].Email)
		assert.Equal(t, "b@ex.com", specs[1].Personalizations[0].To[0].Email)

		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "test-api-key", BaseURL: server.URL})
	require.NoError(t, err)

	specs := []MessageSpec{
		{Personalizations: []Personalization{{To: []EmailAddress{{Email: "a@ex.com"}}}}},
		{Personalizations: []Personalization{{To: []EmailAddress{{Email: "b@ex.com"}}}}},
	}

	err = client.SendBatch(context.Background(), specs)
	assert.NoError(t, err)
}

func TestClient_SendBatchProviderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":[{"message":"invalid from address"}]}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "test-api-key", BaseURL: server.URL})
	require.NoError(t, err)

	err = client.SendBatch(context.Background(), []MessageSpec{
		{Personalizations: []Personalization{{To: []EmailAddress{{Email: "a@ex.com"}}}}},
	})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "invalid from address")
}

func TestClient_SendBatchEmpty(t *testing.T) {
	client, err := NewClient(Config{APIKey: "test-api-key"})
	require.NoError(t, err)

	err = client.SendBatch(context.Background(), nil)
	assert.Error(t, err)
}
