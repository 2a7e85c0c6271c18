// Package modelconfig defines the model and provider configuration records whose
// platform fields are normalized during decoding and checked afterwards.
package modelconfig

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/temirov/model-platform/internal/apperrors"
	"github.com/temirov/model-platform/internal/platform"
)

const (
	// validationTagName matches the tag gin uses so HTTP binding and direct parsing share rules.
	validationTagName = "binding"

	redactedPlaceholder = "***REDACTED***"
	errorFieldFormat    = "%s failed on %s"
)

// ModelConfiguration describes a model a client wants to use through a platform.
type ModelConfiguration struct {
	ModelPlatform platform.ModelPlatform `json:"model_platform" mapstructure:"model_platform" binding:"required"`
	ModelType     string                 `json:"model_type" mapstructure:"model_type" binding:"required"`
	APIKey        string                 `json:"api_key,omitempty" mapstructure:"api_key"`
	URL           string                 `json:"url,omitempty" mapstructure:"url" binding:"omitempty,url"`
	ExtraParams   map[string]any         `json:"extra_params,omitempty" mapstructure:"extra_params"`
}

// Redacted returns a copy with the API key masked.
func (configuration ModelConfiguration) Redacted() ModelConfiguration {
	if configuration.APIKey != "" {
		configuration.APIKey = redactedPlaceholder
	}
	return configuration
}

// ProviderConfiguration is a stored provider entry. Its platform is optional and
// falls back to the provider name.
type ProviderConfiguration struct {
	ProviderName  string                         `json:"provider_name" mapstructure:"provider_name" binding:"required"`
	ModelType     string                         `json:"model_type" mapstructure:"model_type" binding:"required"`
	EndpointURL   string                         `json:"endpoint_url,omitempty" mapstructure:"endpoint_url" binding:"omitempty,url"`
	APIKey        string                         `json:"api_key,omitempty" mapstructure:"api_key"`
	Prefer        bool                           `json:"prefer" mapstructure:"prefer"`
	ModelPlatform platform.OptionalModelPlatform `json:"model_platform" mapstructure:"model_platform"`
}

// EffectivePlatform returns the explicit platform when present and the normalized provider name otherwise.
func (configuration ProviderConfiguration) EffectivePlatform() platform.ModelPlatform {
	if explicitPlatform, present := configuration.ModelPlatform.Get(); present {
		return explicitPlatform
	}
	return platform.NewModelPlatform(configuration.ProviderName)
}

// ModelConfiguration converts the provider entry into a model configuration for validation.
func (configuration ProviderConfiguration) ModelConfiguration() ModelConfiguration {
	return ModelConfiguration{
		ModelPlatform: configuration.EffectivePlatform(),
		ModelType:     configuration.ModelType,
		APIKey:        configuration.APIKey,
		URL:           configuration.EndpointURL,
	}
}

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

func sharedValidator() *validator.Validate {
	structValidatorOnce.Do(func() {
		structValidator = validator.New()
		structValidator.SetTagName(validationTagName)
	})
	return structValidator
}

// Validate checks a decoded record against its binding rules.
func Validate(record any) error {
	validationError := sharedValidator().Struct(record)
	if validationError == nil {
		return nil
	}
	fieldErrors, isFieldErrors := validationError.(validator.ValidationErrors)
	if !isFieldErrors {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidConfiguration, validationError)
	}
	messages := make([]string, 0, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		messages = append(messages, fmt.Sprintf(errorFieldFormat, fieldError.Namespace(), fieldError.Tag()))
	}
	return fmt.Errorf("%w: %s", apperrors.ErrInvalidConfiguration, strings.Join(messages, "; "))
}

// ParseModelConfiguration decodes JSON, normalizing the platform, and validates the result.
func ParseModelConfiguration(data []byte) (ModelConfiguration, error) {
	var configuration ModelConfiguration
	if decodeError := json.Unmarshal(data, &configuration); decodeError != nil {
		return ModelConfiguration{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidConfiguration, decodeError)
	}
	if validationError := Validate(configuration); validationError != nil {
		return ModelConfiguration{}, validationError
	}
	return configuration, nil
}

// ParseProviderConfiguration decodes JSON, normalizing the optional platform, and validates the result.
func ParseProviderConfiguration(data []byte) (ProviderConfiguration, error) {
	var configuration ProviderConfiguration
	if decodeError := json.Unmarshal(data, &configuration); decodeError != nil {
		return ProviderConfiguration{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidConfiguration, decodeError)
	}
	if validationError := Validate(configuration); validationError != nil {
		return ProviderConfiguration{}, validationError
	}
	return configuration, nil
}
