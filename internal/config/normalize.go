package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeAnki(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeEspeak()
	c.normalizeSync()
	c.normalizeRelocate()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeAnki() error {
	c.Anki.URL = strings.TrimSpace(c.Anki.URL)
	if c.Anki.URL == "" {
		if value, ok := os.LookupEnv("ANKICONNECT_URL"); ok {
			c.Anki.URL = strings.TrimSpace(value)
		}
	}
	if c.Anki.URL == "" {
		c.Anki.URL = defaultAnkiURL
	}
	c.Anki.URL = strings.TrimRight(c.Anki.URL, "/")
	if c.Anki.RequestTimeout == 0 {
		c.Anki.RequestTimeout = defaultAnkiRequestTimeout
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeEspeak() {
	c.Espeak.Binary = strings.TrimSpace(c.Espeak.Binary)
	if c.Espeak.Binary == "" {
		c.Espeak.Binary = defaultEspeakBinary
	}
	c.Espeak.DataDir = strings.TrimSpace(c.Espeak.DataDir)
	if c.Espeak.DataDir == "" {
		if value, ok := os.LookupEnv("ESPEAK_DATA_PATH"); ok {
			c.Espeak.DataDir = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeSync() {
	c.Sync.SourceField = strings.TrimSpace(c.Sync.SourceField)
	c.Sync.TargetField = strings.TrimSpace(c.Sync.TargetField)
	c.Sync.Voice = strings.ToLower(strings.TrimSpace(c.Sync.Voice))
	if c.Sync.Voice == "" {
		c.Sync.Voice = defaultVoice
	}
	if c.Sync.NoteBatch == 0 {
		c.Sync.NoteBatch = defaultNoteBatch
	}
	if c.Sync.UpdateBatch == 0 {
		c.Sync.UpdateBatch = defaultUpdateBatch
	}
}

func (c *Config) normalizeRelocate() {
	c.Relocate.SourceSegment = strings.TrimSpace(c.Relocate.SourceSegment)
	c.Relocate.TargetSegment = strings.TrimSpace(c.Relocate.TargetSegment)
	c.Relocate.OnlyFromDeck = strings.TrimSpace(c.Relocate.OnlyFromDeck)
	c.Relocate.DeckPrefix = strings.TrimSpace(c.Relocate.DeckPrefix)
	if c.Relocate.InfoBatch == 0 {
		c.Relocate.InfoBatch = defaultInfoBatch
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
