package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"slasher/internal/config"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// cloneConfig copies cfg so flag overrides never leak into the cached value.
func cloneConfig(cfg *config.Config) config.Config {
	clone := *cfg
	clone.Input.Extensions = append([]string(nil), cfg.Input.Extensions...)
	return clone
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
