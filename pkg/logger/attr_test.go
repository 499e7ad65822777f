package logger_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolforgehq/toolforge/pkg/logger"
)

func TestError(t *testing.T) {
	err := errors.New("boom")

	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	empty := logger.Error(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestUserID(t *testing.T) {
	attr := logger.UserID("u-123")
	require.Equal(t, "user_id", attr.Key)
	assert.Equal(t, "u-123", attr.Value.Any())

	empty := logger.UserID(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestDomainAttrs(t *testing.T) {
	assert.Equal(t, "tier", logger.Tier("pro").Key)
	assert.Equal(t, "pro", logger.Tier("pro").Value.String())

	assert.Equal(t, "tool", logger.ToolSlug("leadenrich").Key)
	assert.Equal(t, "event_type", logger.EventType("subscription.updated").Key)
	assert.Equal(t, "component", logger.Component("billing").Key)
	assert.Equal(t, "subscription_id", logger.SubscriptionID("sub_1").Key)
}
