package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// EnvPrefix is the prefix of every environment variable read by harborster
const EnvPrefix = "HARBOR"

// EnvProvider reads prefixed environment variables. It serves values needed
// before the full configuration is loaded, such as the log level.
type EnvProvider struct {
	// Logger for reporting issues
	log *logrus.Logger

	// Prefix is the prefix for environment variables
	Prefix string
}

// NewEnvProvider creates a new environment provider
func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{
		log:    logrus.New(),
		Prefix: prefix,
	}
}

// DefaultEnvProvider returns a provider for the HARBOR_ prefix
func DefaultEnvProvider() *EnvProvider {
	return NewEnvProvider(EnvPrefix)
}

// Get gets an environment variable or returns a default value if not present
func (p *EnvProvider) Get(key, defaultValue string) string {
	fullKey := p.getFullKey(key)
	value, exists := os.LookupEnv(fullKey)
	if !exists {
		p.log.Debugf("Environment variable %s not set, using default", fullKey)
		return defaultValue
	}
	return value
}

// getFullKey gets the full key with prefix
func (p *EnvProvider) getFullKey(key string) string {
	if p.Prefix == "" {
		return key
	}
	return fmt.Sprintf("%s_%s", p.Prefix, key)
}

// GetEnv gets an environment variable using the default provider
func GetEnv(key, defaultValue string) string {
	return DefaultEnvProvider().Get(key, defaultValue)
}
