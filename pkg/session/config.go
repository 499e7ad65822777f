package session

import "time"

type Config struct {
	CookieName      string        `env:"SESSION_COOKIE_NAME" envDefault:"tf_session"` // CookieName is the session cookie name.
	TTL             time.Duration `env:"SESSION_TTL" envDefault:"720h"`               // TTL is the session lifetime.
	SecureCookies   bool          `env:"SESSION_SECURE_COOKIES" envDefault:"true"`    // SecureCookies sets the Secure cookie attribute.
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"10m"`   // CleanupInterval is the expired-session sweep period for the memory store.
}
