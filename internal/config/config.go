// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// EnvConfigJSON names the environment variable holding a JSON document merged over main.toml.
const EnvConfigJSON = "CAMPUSDESK_CONFIG_JSON"

const (
	defaultShutDownTime   = 5
	defaultRequestTimeout = 5 * time.Second
	defaultRetryBackoff   = 200 * time.Millisecond
	defaultSnapshotTTL    = 500 * time.Millisecond
	defaultSessionExpiry  = 8 * time.Hour
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	if _, err = toml.DecodeFile(path+"main.toml", &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(EnvConfigJSON)

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to decode "+EnvConfigJSON)
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate checks the settings the daemon can not start without and fills in defaults.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	switch c.DB.GormEngine {
	case "":
		c.DB.GormEngine = EngineMySQL
	case EngineMySQL, EnginePostgres:
	default:
		return errors.Wrapf(ErrUnsupportedGormEngine, "%s: %q", invalidErrMessage, c.DB.GormEngine)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	if c.Webserver.Session.ExpiryTime.Duration == 0 {
		c.Webserver.Session.ExpiryTime = Duration{defaultSessionExpiry}
	}

	if c.Authz.RequestTimeout.Duration == 0 {
		c.Authz.RequestTimeout = Duration{defaultRequestTimeout}
	}

	if c.Authz.RetryBackoff.Duration == 0 {
		c.Authz.RetryBackoff = Duration{defaultRetryBackoff}
	}

	if c.Authz.SnapshotTTL.Duration < 0 {
		return errors.Wrap(ErrNegativeSnapshotTTL, invalidErrMessage)
	}

	if c.Authz.SnapshotTTL.Duration == 0 && !c.Authz.DisableSnapshot {
		c.Authz.SnapshotTTL = Duration{defaultSnapshotTTL}
	}

	return nil
}
