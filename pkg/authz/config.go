package authz

import (
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Config captures all inputs necessary to initialize the casbin enforcer.
// Empty ModelPath / PolicyPath select the embedded defaults.
type Config struct {
	ModelPath    string
	PolicyPath   string
	FlagPath     string
	FlagMode     Mode
	Logger       *logrus.Logger
	FlagProvider FlagProvider
}

func (c Config) normalized() Config {
	if strings.TrimSpace(c.ModelPath) != "" {
		c.ModelPath = filepath.Clean(c.ModelPath)
	}
	if strings.TrimSpace(c.PolicyPath) != "" {
		c.PolicyPath = filepath.Clean(c.PolicyPath)
	}
	if strings.TrimSpace(c.FlagPath) != "" {
		c.FlagPath = filepath.Clean(c.FlagPath)
	}
	if c.FlagMode == "" {
		c.FlagMode = ModeEnforce
	}
	c.FlagMode = sanitizeMode(c.FlagMode)
	return c
}

func (c Config) flagProvider() FlagProvider {
	if c.FlagProvider != nil {
		return c.FlagProvider
	}
	if c.FlagPath != "" {
		return NewFileFlagProvider(c.FlagPath, c.FlagMode)
	}
	return NewStaticFlagProvider(c.FlagMode)
}
