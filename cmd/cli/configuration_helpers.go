package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/temirov/model-platform/internal/utils"
)

// populateStringConfiguration fills destination from viper unless the flag was set explicitly.
// The transformer applies only to viper values; blank results fall back to defaultValue.
func populateStringConfiguration(command *cobra.Command, flagName, configurationKey string, destination *string, defaultValue string, transformer func(string) string) {
	if !command.Flags().Changed(flagName) {
		*destination = transformer(viper.GetString(configurationKey))
	}
	if utils.IsBlank(*destination) {
		*destination = defaultValue
	}
}

// populateIntConfiguration fills destination from viper unless the flag was set explicitly.
// Non-positive results fall back to defaultValue.
func populateIntConfiguration(command *cobra.Command, flagName, configurationKey string, destination *int, defaultValue int) {
	if !command.Flags().Changed(flagName) {
		*destination = viper.GetInt(configurationKey)
	}
	if *destination <= 0 {
		*destination = defaultValue
	}
}
