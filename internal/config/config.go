package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// ErrInvalidConfig is returned when the loaded configuration fails validation
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigName is the base name of the optional configuration file
const ConfigName = "harborster"

// Config represents the configuration of a harborster run
type Config struct {
	// Hostname is the registry host, without scheme
	Hostname string `mapstructure:"hostname" validate:"required,excludes=://"`

	// Username and Password are the HTTP Basic credentials
	Username string `mapstructure:"username" validate:"required_with=Password"`
	Password string `mapstructure:"password"`

	// ProjectName is the project to report on
	ProjectName string `mapstructure:"project_name" validate:"required"`

	// Timeout bounds each HTTP request; zero means no timeout
	Timeout time.Duration `mapstructure:"timeout" validate:"min=0"`

	TLSInsecureSkipVerify bool `mapstructure:"tls_insecure_skip_verify"`

	// NoColor disables colors in the table
	NoColor bool `mapstructure:"no_color"`

	// Log configuration
	Log struct {
		Level  string `mapstructure:"level" validate:"oneof=trace debug info warn warning error fatal panic"`
		Format string `mapstructure:"format" validate:"oneof=text json"`
	} `mapstructure:"log"`
}

// SafeString returns a string with sensitive information masked
func SafeString(val string) string {
	if val == "" {
		return ""
	}
	return "********"
}

// String returns a string representation of the config with the password masked
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("Configuration:\n")
	fmt.Fprintf(&sb, "  hostname: %s\n", c.Hostname)
	fmt.Fprintf(&sb, "  username: %s\n", c.Username)
	fmt.Fprintf(&sb, "  password: %s\n", SafeString(c.Password))
	fmt.Fprintf(&sb, "  project_name: %s\n", c.ProjectName)
	fmt.Fprintf(&sb, "  timeout: %s\n", c.Timeout)
	fmt.Fprintf(&sb, "  tls_insecure_skip_verify: %t\n", c.TLSInsecureSkipVerify)
	fmt.Fprintf(&sb, "  no_color: %t\n", c.NoColor)
	fmt.Fprintf(&sb, "  log.level: %s\n", c.Log.Level)
	fmt.Fprintf(&sb, "  log.format: %s\n", c.Log.Format)
	return sb.String()
}

// LoadConfig loads the configuration from the optional config file and
// HARBOR_* environment variables. Environment variables take precedence.
func LoadConfig(log *logrus.Logger) (*Config, error) {
	if log == nil {
		log = logrus.New()
	}
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Load configuration from file
	if err := loadConfigFile(v); err != nil {
		log.WithError(err).Warning("Failed to load config file, using environment variables only")
	} else if file := v.ConfigFileUsed(); file != "" {
		log.WithField("file", file).Debug("Loaded config file")
	}

	// Load environment variables
	loadEnvVars(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults registers every key so AutomaticEnv can bind it on Unmarshal
func setDefaults(v *viper.Viper) {
	v.SetDefault("hostname", "")
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("project_name", "")
	v.SetDefault("timeout", "0s")
	v.SetDefault("tls_insecure_skip_verify", false)
	v.SetDefault("no_color", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func loadConfigFile(v *viper.Viper) error {
	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/harborster")

	// Read configuration file (if it exists)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}

	return nil
}

func loadEnvVars(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)

	// HARBOR_LOG_LEVEL binds to log.level
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.AutomaticEnv()
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateConfig checks the configuration and reports every failing field at once
func validateConfig(config *Config) error {
	err := validate.Struct(config)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	problems := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		problems = append(problems, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
}

// describeFieldError renders a validation failure using the environment variable name
func describeFieldError(fe validator.FieldError) string {
	envVar := envVarFor(fe.StructNamespace())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", envVar)
	case "required_with":
		return fmt.Sprintf("%s is required when %s_PASSWORD is set", envVar, EnvPrefix)
	case "excludes":
		return fmt.Sprintf("%s must be a host name without scheme", envVar)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", envVar, fe.Param(), fe.Value())
	case "min":
		return fmt.Sprintf("%s must not be negative", envVar)
	default:
		return fmt.Sprintf("%s failed %s validation", envVar, fe.Tag())
	}
}

var envVarNames = map[string]string{
	"Config.Hostname":    "HOSTNAME",
	"Config.Username":    "USERNAME",
	"Config.ProjectName": "PROJECT_NAME",
	"Config.Timeout":     "TIMEOUT",
	"Config.Log.Level":   "LOG_LEVEL",
	"Config.Log.Format":  "LOG_FORMAT",
}

func envVarFor(namespace string) string {
	if name, ok := envVarNames[namespace]; ok {
		return fmt.Sprintf("%s_%s", EnvPrefix, name)
	}
	return namespace
}
