package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Validate fills defaults for the workspace section and rejects settings the
// server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.Database.Host == "" {
		errs = append(errs, errors.New("database.host is required"))
	}
	if c.Database.DBName == "" {
		errs = append(errs, errors.New("database.dbname is required"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}
	if key := c.Authentication.EncryptionKey; key != "" {
		if b, err := hex.DecodeString(key); err != nil || len(b) != 32 {
			errs = append(errs, errors.New("authentication.encryption_key must be 64 hex characters"))
		}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}

	w := &c.Workspace
	if w.RegistrySize <= 0 {
		w.RegistrySize = 256
	}
	if w.WarmConcurrency <= 0 {
		w.WarmConcurrency = 4
	}
	if w.FetchTimeoutSeconds <= 0 {
		w.FetchTimeoutSeconds = 10
	}
	if w.StateTTLHours <= 0 {
		w.StateTTLHours = 24 * 7
	}
	if w.PhoneRegion == "" {
		w.PhoneRegion = "US"
	}
	if len(w.PhoneRegion) != 2 {
		errs = append(errs, fmt.Errorf("workspace.phone_region %q must be a two-letter region code", w.PhoneRegion))
	}

	return errors.Join(errs...)
}
