package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAnki(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateRelocate(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAnki() error {
	parsed, err := url.Parse(c.Anki.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("anki.url %q must be an absolute http(s) URL", c.Anki.URL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("anki.url scheme %q is not supported", parsed.Scheme)
	}
	if c.Anki.RequestTimeout <= 0 {
		return errors.New("anki.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateSync() error {
	if c.Sync.SourceField == "" {
		return errors.New("sync.source_field must be set")
	}
	if c.Sync.TargetField == "" {
		return errors.New("sync.target_field must be set")
	}
	if c.Sync.NoteBatch <= 0 {
		return errors.New("sync.note_batch must be positive")
	}
	if c.Sync.UpdateBatch <= 0 {
		return errors.New("sync.update_batch must be positive")
	}
	return nil
}

func (c *Config) validateRelocate() error {
	if c.Relocate.SourceSegment == "" {
		return errors.New("relocate.source_segment must be set")
	}
	if c.Relocate.TargetSegment == "" {
		return errors.New("relocate.target_segment must be set")
	}
	if c.Relocate.SourceSegment == c.Relocate.TargetSegment {
		return errors.New("relocate.source_segment and relocate.target_segment must differ")
	}
	if c.Relocate.CardOrd < 0 {
		return errors.New("relocate.card_ord must be >= 0")
	}
	if c.Relocate.InfoBatch <= 0 {
		return errors.New("relocate.info_batch must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn, or error", c.Logging.Level)
	}
	return nil
}
