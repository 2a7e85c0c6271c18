package main

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/temirov/model-platform/internal/apperrors"
	"github.com/temirov/model-platform/internal/modelconfig"
	"github.com/temirov/model-platform/internal/platform"
)

const (
	flagConfig   = "config"
	keyProviders = "providers"

	providerEntryErrorFormat = "provider %d: %w"
	providerLineFormat       = "%s\t%s\t%s\n"
)

// loadProviders reads the providers list from a configuration file and normalizes each platform.
func loadProviders(configurationPath string) ([]modelconfig.ProviderConfiguration, error) {
	configurationReader := viper.New()
	configurationReader.SetConfigFile(configurationPath)
	if readError := configurationReader.ReadInConfig(); readError != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidConfiguration, readError)
	}

	var providers []modelconfig.ProviderConfiguration
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		platform.DecodeHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if decodeError := configurationReader.UnmarshalKey(keyProviders, &providers, decodeHook); decodeError != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidConfiguration, decodeError)
	}
	if len(providers) == 0 {
		return nil, apperrors.ErrMissingProviders
	}
	for providerIndex, provider := range providers {
		if validationError := modelconfig.Validate(provider); validationError != nil {
			return nil, fmt.Errorf(providerEntryErrorFormat, providerIndex, validationError)
		}
	}
	return providers, nil
}

// newProvidersCommand lists configured providers with their effective platform.
func newProvidersCommand() *cobra.Command {
	var configurationPath string
	command := &cobra.Command{
		Use:     "providers",
		Short:   "List configured providers with their effective platform",
		Example: "model-platform providers --config providers.yaml",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			providers, loadError := loadProviders(configurationPath)
			if loadError != nil {
				return loadError
			}
			output := cmd.OutOrStdout()
			for _, provider := range providers {
				if _, err := fmt.Fprintf(output, providerLineFormat, provider.ProviderName, provider.ModelType, provider.EffectivePlatform()); err != nil {
					return err
				}
			}
			return nil
		},
	}
	command.Flags().StringVar(&configurationPath, flagConfig, "", "path to a YAML, JSON or TOML file with a providers list")
	_ = command.MarkFlagRequired(flagConfig)
	return command
}
