package middleware

import (
	"context"
	"log/slog"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc.def", "abc.def", true},
		{"bearer abc", "abc", true},
		{"Bearer ", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := bearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}

func TestWithUser(t *testing.T) {
	ctx := WithUser(context.Background(), "u1", "a@example.com")
	assert.Equal(t, "u1", GetUserID(ctx))
	assert.Equal(t, "a@example.com", GetEmail(ctx))
	assert.Empty(t, GetUserID(context.Background()))
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, levelFor(connect.CodeNotFound))
	assert.Equal(t, slog.LevelWarn, levelFor(connect.CodeFailedPrecondition))
	assert.Equal(t, slog.LevelError, levelFor(connect.CodeInternal))
	assert.Equal(t, slog.LevelError, levelFor(connect.CodeDataLoss))
}
