package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"karaparty/internal/api"
	"karaparty/internal/config"
)

type commandContext struct {
	configFlag *string
	apiFlag    *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag, apiFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		apiFlag:    apiFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(flagValue(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if addr := flagValue(c.apiFlag); addr != "" {
			cfg.Paths.APIBind = addr
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

func (c *commandContext) client() (*api.Client, *config.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

func (c *commandContext) withClient(fn func(*api.Client) error) error {
	client, cfg, err := c.client()
	if err != nil {
		return err
	}
	if err := fn(client); err != nil {
		return wrapClientError(err, cfg.Paths.APIBind)
	}
	return nil
}

func wrapClientError(err error, address string) error {
	var statusErr *api.StatusError
	switch {
	case errors.Is(err, api.ErrUnavailable):
		return fmt.Errorf("connect to daemon: %s is not reachable; start it with `karaparty daemon`", address)
	case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized:
		return errors.New("daemon rejected the request: set paths.api_token or KARAPARTY_API_TOKEN to match the daemon")
	default:
		return err
	}
}

func flagValue(flag *string) string {
	if flag == nil {
		return ""
	}
	return strings.TrimSpace(*flag)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
