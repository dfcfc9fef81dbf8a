// internal/notify/settings/settings.go

// Package settings reads the operator-controlled feature toggles that gate
// notification channels. Toggles are read fresh for every event (no caching)
// so a flipped toggle takes effect on the very next notification.
package settings

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/myster33/edlead-impact-sub001/internal/common/logger"
)

// Settings is the toggle snapshot for one event. The orchestrator receives
// it as a value so its fan-out logic stays a pure function of
// (event, settings, templates).
type Settings struct {
	ParentEmailsEnabled bool
	SMSEnabled          bool
	WhatsAppEnabled     bool
}

// Loader produces a Settings snapshot per event.
type Loader interface {
	Load(ctx context.Context) Settings
}

// Redis keys the admin dashboard writes toggle values to.
const (
	KeyParentEmails = "notifications:toggle:parent-emails"
	KeySMS          = "notifications:toggle:sms"
	KeyWhatsApp     = "notifications:toggle:whatsapp"
)

// RedisStore loads toggles from Redis, falling back to the configured
// defaults when the store is unreachable. A settings read failure never
// blocks an event.
type RedisStore struct {
	client   *redis.Client
	defaults Settings
	logger   logger.Logger
}

func NewRedisStore(client *redis.Client, defaults Settings, log logger.Logger) *RedisStore {
	return &RedisStore{
		client:   client,
		defaults: defaults,
		logger:   log.WithFields(map[string]interface{}{"component": "settings-store"}),
	}
}

func (s *RedisStore) Load(ctx context.Context) Settings {
	vals, err := s.client.MGet(ctx, KeyParentEmails, KeySMS, KeyWhatsApp).Result()
	if err != nil {
		s.logger.Warn("settings store unreachable, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		return s.defaults
	}

	out := s.defaults
	if v, ok := parseToggle(vals[0]); ok {
		out.ParentEmailsEnabled = v
	}
	if v, ok := parseToggle(vals[1]); ok {
		out.SMSEnabled = v
	}
	if v, ok := parseToggle(vals[2]); ok {
		out.WhatsAppEnabled = v
	}
	return out
}

// parseToggle accepts the representations the dashboard has historically
// written: "true"/"false", "1"/"0".
func parseToggle(raw interface{}) (bool, bool) {
	s, ok := raw.(string)
	if !ok {
		return false, false
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, false
	}
	return v, true
}

// Static is a fixed Loader used in tests and for single-tenant deployments
// without a settings store.
type Static struct {
	Settings Settings
}

func (s Static) Load(context.Context) Settings {
	return s.Settings
}
