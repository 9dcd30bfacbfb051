package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"streamlist/internal/config"
	"streamlist/internal/daemonrun"
	"streamlist/internal/logging"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	stackOnce sync.Once
	stack     *daemonrun.Stack
	stackErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) logLevel() string {
	if c.logLevelFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.logLevelFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger writes diagnostics to stderr so stdout stays parseable. One-shot
// commands default to warn; --log-level overrides.
func (c *commandContext) logger() *slog.Logger {
	level := c.logLevel()
	if level == "" {
		level = "warn"
	}
	logger, err := logging.New(logging.Options{Level: level, Format: "console", OutputPaths: []string{"stderr"}})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

// ensureStack builds the pipeline components once per invocation.
func (c *commandContext) ensureStack() (*daemonrun.Stack, error) {
	c.stackOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.stackErr = err
			return
		}
		c.stack, c.stackErr = daemonrun.Build(cfg, c.logger(), nil)
	})
	return c.stack, c.stackErr
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
