package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that the loaded configuration is usable for the
// current environment. Production refuses to start without a JWT secret
// since the photo upload route would be unprotectable.
func ValidateConfig(cfg *Config) error {
	var errors []string

	if _, err := strconv.Atoi(cfg.ServerPort); err != nil {
		errors = append(errors, ValidationError{Field: "SERVER_PORT", Message: "must be numeric"}.Error())
	}

	if cfg.USDABaseURL == "" {
		errors = append(errors, ValidationError{Field: "USDA_API_BASE_URL", Message: "must not be empty"}.Error())
	}
	if cfg.USDAAPIKey == "" {
		errors = append(errors, ValidationError{Field: "USDA_API_KEY", Message: "must not be empty"}.Error())
	}
	if cfg.OFFBaseURL == "" {
		errors = append(errors, ValidationError{Field: "OFF_BASE_URL", Message: "must not be empty"}.Error())
	}

	if IsProduction() {
		if cfg.JWTSecret == "" {
			errors = append(errors, ValidationError{Field: "JWT_SECRET", Message: "required in production"}.Error())
		}
		if cfg.USDAAPIKey == "DEMO_KEY" {
			errors = append(errors, ValidationError{Field: "USDA_API_KEY", Message: "DEMO_KEY is not allowed in production"}.Error())
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
