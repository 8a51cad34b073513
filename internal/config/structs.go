package config

import (
	"encoding/json"
	"time"

	"github.com/campusdesk/campusdesk/internal/logger"
)

// Duration wraps time.Duration so it can be written as "5s" in TOML and JSON.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))

	return err //nolint: wrapcheck
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalJSON accepts "5s" strings as well as plain nanosecond numbers.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		d.Duration = time.Duration(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err //nolint: wrapcheck
	}

	return d.UnmarshalText([]byte(s))
}

// Session settings.
type Session struct {
	ExpiryTime Duration
	CookieName string
	Table      string // storage table holding the session rows
}

// Authz holds the authorization service settings.
type Authz struct {
	CaseSensitiveRoleNames bool     // false = "Editor" and "editor" collide
	RequestTimeout         Duration // per call deadline against the database
	RetryBackoff           Duration // wait before the single retry of a transient read
	SnapshotTTL            Duration // lifetime of cached per-user feature sets
	DisableSnapshot        bool     // always read through to the database
}

// Seed holds the bootstrap account created when the users table is empty.
type Seed struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Authz     Authz
	Seed      Seed
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool    // disable recover middleware
	Domain         string  // cookie domain of the session cookie, host-only when empty
	Port           int     // listening port for the webserver
	ShutDownTime   int     // wait time for shutdown
	URL            string  // base url for the webserver
	Session        Session // session settings
}
