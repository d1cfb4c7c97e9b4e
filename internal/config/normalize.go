package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"karaparty/internal/links"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeDispatch(); err != nil {
		return err
	}
	c.normalizeTeams()
	if err := c.normalizeYouTube(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
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
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("KARAPARTY_API_TOKEN"); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeDispatch() error {
	c.Dispatch.LogBackend = strings.ToLower(strings.TrimSpace(c.Dispatch.LogBackend))
	if c.Dispatch.LogBackend == "" {
		c.Dispatch.LogBackend = defaultLogBackend
	}
	if strings.TrimSpace(c.Dispatch.LogPath) == "" {
		name := defaultJSONDispatchLogName
		if c.Dispatch.LogBackend == LogBackendSQLite {
			name = defaultSQLiteDispatchLogName
		}
		c.Dispatch.LogPath = filepath.Join(c.Paths.DataDir, name)
	}
	var err error
	if c.Dispatch.LogPath, err = expandPath(c.Dispatch.LogPath); err != nil {
		return fmt.Errorf("dispatch.log_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeTeams() {
	if len(c.Teams.Monitored) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(c.Teams.Monitored))
	out := make([]string, 0, len(c.Teams.Monitored))
	for _, team := range c.Teams.Monitored {
		team = links.NormalizeTeam(team)
		if team == "" {
			continue
		}
		if _, ok := seen[team]; ok {
			continue
		}
		seen[team] = struct{}{}
		out = append(out, team)
	}
	c.Teams.Monitored = out
}

func (c *Config) normalizeYouTube() error {
	c.YouTube.PlaylistID = strings.TrimSpace(c.YouTube.PlaylistID)
	c.YouTube.AccessToken = strings.TrimSpace(c.YouTube.AccessToken)
	if c.YouTube.AccessToken == "" {
		if value, ok := os.LookupEnv("YOUTUBE_ACCESS_TOKEN"); ok {
			c.YouTube.AccessToken = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.YouTube.TokenFile) != "" {
		var err error
		if c.YouTube.TokenFile, err = expandPath(strings.TrimSpace(c.YouTube.TokenFile)); err != nil {
			return fmt.Errorf("youtube.token_file: %w", err)
		}
	}
	c.YouTube.BaseURL = strings.TrimRight(strings.TrimSpace(c.YouTube.BaseURL), "/")
	if c.YouTube.BaseURL == "" {
		c.YouTube.BaseURL = defaultYouTubeBaseURL
	}
	if c.YouTube.TimeoutSeconds <= 0 {
		c.YouTube.TimeoutSeconds = defaultYouTubeTimeout
	}
	if c.YouTube.RetryAttempts <= 0 {
		c.YouTube.RetryAttempts = defaultYouTubeRetryAttempts
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
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
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
