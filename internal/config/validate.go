package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
)

// Validate checks the fields the service cannot start without.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("server.port", c.Server.Port, validPort),
		criterio.Run("server.mode", c.Server.Mode, oneOf("debug", "release", "test")),
		criterio.Run("server.timezone", c.Server.Timezone, validTimezone),
		criterio.Run("auth.jwt_secret", c.Auth.JWTSecret, minLength(16)),
		criterio.Run("sheets.script_url", c.Sheets.ScriptURL, absoluteURL),
		criterio.Run("sheets.export_base_url", c.Sheets.ExportBaseURL, absoluteURL),
		criterio.Run("log.level", c.Log.Level, validLevel),
		c.validateSheets(),
		c.validateNotify(),
	)
}

func (c *Config) validateSheets() error {
	var errs criterio.FieldErrorsBuilder
	if c.Sheets.DispatchBatchSize < 1 {
		errs = errs.Append("sheets.dispatch_batch_size", errors.New("must be at least 1"))
	}
	if c.Sheets.Timeout < time.Second {
		errs = errs.Append("sheets.timeout", errors.New("must be at least 1s"))
	}
	if c.Sheets.SpreadsheetID == "" {
		errs = errs.Append("sheets.spreadsheet_id", errors.New("is required"))
	}
	return errs.ToError()
}

func (c *Config) validateNotify() error {
	var errs criterio.FieldErrorsBuilder
	for name, r := range c.Notify {
		if r.Email == "" && r.TelegramChatID == 0 {
			errs = errs.Append(fmt.Sprintf("notify[%q]", name), errors.New("needs an email or a telegram_chat_id"))
		}
	}
	return errs.ToError()
}

func validPort(p int) error {
	if p < 1 || p > 65535 {
		return fmt.Errorf("out of range: %d", p)
	}
	return nil
}

func validTimezone(tz string) error {
	if _, err := time.LoadLocation(tz); err != nil {
		return fmt.Errorf("unknown timezone %q", tz)
	}
	return nil
}

func validLevel(l string) error {
	if _, err := zerolog.ParseLevel(l); err != nil {
		return fmt.Errorf("unknown level %q", l)
	}
	return nil
}

func oneOf(allowed ...string) func(string) error {
	return func(s string) error {
		for _, a := range allowed {
			if s == a {
				return nil
			}
		}
		return fmt.Errorf("must be one of %v", allowed)
	}
}

func minLength(n int) func(string) error {
	return func(s string) error {
		if len(s) < n {
			return fmt.Errorf("must be at least %d characters", n)
		}
		return nil
	}
}

func absoluteURL(s string) error {
	if s == "" {
		return errors.New("is required")
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("not an absolute URL: %q", s)
	}
	return nil
}
