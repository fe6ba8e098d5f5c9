package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suenos-shipping/console/internal/notifications"
)

func TestNewSender_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "disabled needs nothing",
			config:  Config{},
			wantErr: false,
		},
		{
			name:    "enabled without base url",
			config:  Config{Enabled: true, APIKey: "k", FromAddress: "noreply@example.com"},
			wantErr: true,
		},
		{
			name:    "enabled without api key",
			config:  Config{Enabled: true, BaseURL: "https://api.example.com", FromAddress: "noreply@example.com"},
			wantErr: true,
		},
		{
			name:    "enabled without from address",
			config:  Config{Enabled: true, BaseURL: "https://api.example.com", APIKey: "k"},
			wantErr: true,
		},
		{
			name: "enabled with full config",
			config: Config{
				Enabled:     true,
				BaseURL:     "https://api.example.com",
				APIKey:      "k",
				FromAddress: "noreply@example.com",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSender(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSender_Send(t *testing.T) {
	var received sendPayload
	var authHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender, err := NewSender(Config{
		Enabled:     true,
		BaseURL:     server.URL,
		APIKey:      "secret-key",
		FromAddress: "Sueños Shipping <noreply@suenos.example>",
	})
	require.NoError(t, err)

	err = sender.Send(context.Background(), notifications.Message{
		To:      "ann@example.com",
		Subject: "Hello",
		Body:    "Body text",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-key", authHeader)
	assert.Equal(t, "Sueños Shipping <noreply@suenos.example>", received.From)
	assert.Equal(t, []string{"ann@example.com"}, received.To)
	assert.Equal(t, "Hello", received.Subject)
	assert.Equal(t, "Body text", received.Text)
}

func TestSender_Send_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	defer server.Close()

	sender, err := NewSender(Config{
		Enabled:     true,
		BaseURL:     server.URL,
		APIKey:      "k",
		FromAddress: "noreply@suenos.example",
	})
	require.NoError(t, err)

	err = sender.Send(context.Background(), notifications.Message{To: "ann@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Contains(t, err.Error(), "upstream unavailable")
}

func TestSender_Send_Disabled(t *testing.T) {
	sender, err := NewSender(Config{})
	require.NoError(t, err)

	// No server configured; a disabled sender never dials out.
	err = sender.Send(context.Background(), notifications.Message{To: "ann@example.com"})
	assert.NoError(t, err)
}
