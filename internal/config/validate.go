package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDispatch(); err != nil {
		return err
	}
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDispatch() error {
	if err := ensurePositiveMap(map[string]int{
		"dispatch.count":                c.Dispatch.Count,
		"dispatch.interval_seconds":     c.Dispatch.IntervalSeconds,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
	}); err != nil {
		return err
	}
	switch c.Dispatch.LogBackend {
	case LogBackendJSON, LogBackendSQLite:
	default:
		return fmt.Errorf("dispatch.log_backend: unsupported value %q (want %q or %q)", c.Dispatch.LogBackend, LogBackendJSON, LogBackendSQLite)
	}
	return nil
}

func (c *Config) validateYouTube() error {
	if !c.YouTube.Enabled {
		return nil
	}
	if c.YouTube.PlaylistID == "" {
		return errors.New("youtube.playlist_id must be set when youtube.enabled is true")
	}
	if c.YouTube.AccessToken == "" && strings.TrimSpace(c.YouTube.TokenFile) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("youtube.access_token or youtube.token_file is required when youtube.enabled is true. Set YOUTUBE_ACCESS_TOKEN or edit %s", defaultPath)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
