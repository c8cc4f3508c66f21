package service

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signup-be/internal/models"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestSignupAcceptsAnyEmailWithAt(t *testing.T) {
	tests := []string{
		"user@example.com",
		"@",
		"no-domain@",
		"@no-local",
		"  Spaced@Example.COM  ",
		"a@b@c",
	}

	for _, email := range tests {
		t.Run(email, func(t *testing.T) {
			svc := NewSignupService(zerolog.Nop())

			resp, err := svc.Signup(context.Background(), &models.SignupRequest{Email: email})

			require.NoError(t, err)
			assert.Equal(t, SignupSuccessMessage, resp.Message)
			assert.Equal(t, email, resp.Email, "email must be echoed without normalization")
		})
	}
}

func TestSignupRejectsInvalidEmail(t *testing.T) {
	tests := []struct {
		name string
		req  *models.SignupRequest
	}{
		{"nil request", nil},
		{"empty email", &models.SignupRequest{}},
		{"no at sign", &models.SignupRequest{Email: "not-an-email"}},
		{"whitespace", &models.SignupRequest{Email: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			svc := NewSignupService(zerolog.New(&buf))

			resp, err := svc.Signup(context.Background(), tt.req)

			assert.ErrorIs(t, err, ErrInvalidEmail)
			assert.Nil(t, resp)
			assert.Empty(t, buf.String(), "rejected signups are not logged")
		})
	}
}

func TestSignupLogsAcceptedEmail(t *testing.T) {
	var buf bytes.Buffer
	svc := NewSignupService(zerolog.New(&buf))

	_, err := svc.Signup(context.Background(), &models.SignupRequest{Email: "user@example.com"})
	require.NoError(t, err)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "new signup", entries[0]["message"])
	assert.Equal(t, "user@example.com", entries[0]["email"])
	assert.Equal(t, "info", entries[0]["level"])
}

func TestSignupPrefersContextLogger(t *testing.T) {
	var fallback, scoped bytes.Buffer
	svc := NewSignupService(zerolog.New(&fallback))

	ctxLogger := zerolog.New(&scoped).With().Str("request_id", "req-1").Logger()
	ctx := ctxLogger.WithContext(context.Background())

	_, err := svc.Signup(ctx, &models.SignupRequest{Email: "user@example.com"})
	require.NoError(t, err)

	assert.Empty(t, fallback.String())
	entries := decodeLines(t, &scoped)
	require.Len(t, entries, 1)
	assert.Equal(t, "req-1", entries[0]["request_id"])
	assert.Equal(t, "user@example.com", entries[0]["email"])
}
