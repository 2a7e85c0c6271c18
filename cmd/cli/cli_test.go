package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temirov/model-platform/internal/apperrors"
	"github.com/temirov/model-platform/internal/platform"
	"github.com/temirov/model-platform/internal/utils"
)

const (
	providersYAML = `providers:
  - provider_name: local
    model_type: qwen3-8b
    model_platform: llama.cpp
    endpoint_url: http://localhost:8080/v1
  - provider_name: ModelArk
    model_type: doubao-seed
  - provider_name: openai
    model_type: gpt-4.1
    model_platform: openai
    prefer: true
`
	invalidProvidersYAML = `providers:
  - model_type: qwen3-8b
`
	providersJSON = `{"providers":[{"provider_name":"xai","model_type":"grok-4","model_platform":"grok"}]}`
)

func writeConfigurationFile(testingInstance *testing.T, fileName string, contents string) string {
	testingInstance.Helper()
	configurationPath := filepath.Join(testingInstance.TempDir(), fileName)
	require.NoError(testingInstance, os.WriteFile(configurationPath, []byte(contents), 0o600))
	return configurationPath
}

func executeCommand(command *cobra.Command, args ...string) (string, error) {
	var output bytes.Buffer
	command.SetOut(&output)
	command.SetErr(&output)
	if args == nil {
		args = []string{}
	}
	command.SetArgs(args)
	executionError := command.Execute()
	return output.String(), executionError
}

// TestNormalizeCommand verifies both output modes.
func TestNormalizeCommand(testingInstance *testing.T) {
	output, executionError := executeCommand(newNormalizeCommand(), "llama.cpp", "ModelArk", "openai", "Grok")
	require.NoError(testingInstance, executionError)
	assert.Equal(testingInstance,
		"llama.cpp -> openai-compatible-model\nModelArk -> openai-compatible-model\nopenai -> openai\nGrok -> Grok\n",
		output,
	)

	quietOutput, quietError := executeCommand(newNormalizeCommand(), "--quiet", "z.ai", "llamacpp")
	require.NoError(testingInstance, quietError)
	assert.Equal(testingInstance, "openai-compatible-model\nopenai-compatible-model\n", quietOutput)

	_, missingArgsError := executeCommand(newNormalizeCommand())
	assert.Error(testingInstance, missingArgsError)
}

// TestLoadProviders verifies normalization through the viper decode hook and the provider-name fallback.
func TestLoadProviders(testingInstance *testing.T) {
	providers, loadError := loadProviders(writeConfigurationFile(testingInstance, "providers.yaml", providersYAML))
	require.NoError(testingInstance, loadError)
	require.Len(testingInstance, providers, 3)

	explicitPlatform, present := providers[0].ModelPlatform.Get()
	require.True(testingInstance, present)
	assert.Equal(testingInstance, platform.ModelPlatform(platform.OpenAICompatibleModel), explicitPlatform)
	assert.Equal(testingInstance, "http://localhost:8080/v1", providers[0].EndpointURL)

	assert.False(testingInstance, providers[1].ModelPlatform.IsPresent())
	assert.Equal(testingInstance, platform.ModelPlatform(platform.OpenAICompatibleModel), providers[1].EffectivePlatform())

	assert.True(testingInstance, providers[2].Prefer)
	assert.Equal(testingInstance, platform.ModelPlatform("openai"), providers[2].EffectivePlatform())
}

// TestLoadProviders_Failures covers missing files, empty lists and invalid entries.
func TestLoadProviders_Failures(testingInstance *testing.T) {
	_, missingFileError := loadProviders(filepath.Join(testingInstance.TempDir(), "absent.yaml"))
	assert.ErrorIs(testingInstance, missingFileError, apperrors.ErrInvalidConfiguration)

	_, emptyError := loadProviders(writeConfigurationFile(testingInstance, "empty.yaml", "providers: []\n"))
	assert.ErrorIs(testingInstance, emptyError, apperrors.ErrMissingProviders)

	_, invalidError := loadProviders(writeConfigurationFile(testingInstance, "invalid.yaml", invalidProvidersYAML))
	assert.ErrorIs(testingInstance, invalidError, apperrors.ErrInvalidConfiguration)
}

// TestProvidersCommand verifies the tab-separated listing for a JSON file.
func TestProvidersCommand(testingInstance *testing.T) {
	configurationPath := writeConfigurationFile(testingInstance, "providers.json", providersJSON)
	output, executionError := executeCommand(newProvidersCommand(), "--config", configurationPath)
	require.NoError(testingInstance, executionError)
	assert.Equal(testingInstance, "xai\tgrok-4\topenai-compatible-model\n", output)
}

// TestBuildEndpoints verifies that override keys are normalized before they are applied.
func TestBuildEndpoints(testingInstance *testing.T) {
	endpoints := buildEndpoints(map[string]string{
		"llama.cpp": " 'http://localhost:8080/v1/' ",
		"mistral":   "https://mistral.internal/v1",
	})

	compatibleURL, found := endpoints.BaseURL(platform.OpenAICompatibleModel)
	require.True(testingInstance, found)
	assert.Equal(testingInstance, "http://localhost:8080/v1", compatibleURL)

	mistralURL, _ := endpoints.BaseURL("mistral")
	assert.Equal(testingInstance, "https://mistral.internal/v1", mistralURL)

	openAIURL, _ := endpoints.BaseURL("openai")
	assert.Equal(testingInstance, "https://api.openai.com/v1", openAIURL)
}

type populateTestDefinition struct {
	testName       string
	flagValue      string
	environment    string
	expectedResult int
}

// TestPopulateIntConfiguration verifies flag over environment over default precedence.
func TestPopulateIntConfiguration(testingInstance *testing.T) {
	const (
		testFlagName = "test_workers"
		testKey      = "test_workers"
		testEnv      = "MP_TEST_WORKERS"
		defaultValue = 4
	)
	require.NoError(testingInstance, viper.BindEnv(testKey, testEnv))

	testCases := []populateTestDefinition{
		{testName: "flag wins", flagValue: "9", environment: "7", expectedResult: 9},
		{testName: "environment", environment: "7", expectedResult: 7},
		{testName: "default", expectedResult: defaultValue},
		{testName: "non-positive falls back", environment: "-1", expectedResult: defaultValue},
	}
	for _, currentTestCase := range testCases {
		testingInstance.Run(currentTestCase.testName, func(subTest *testing.T) {
			subTest.Setenv(testEnv, currentTestCase.environment)
			var destination int
			command := &cobra.Command{Use: "test"}
			command.Flags().IntVar(&destination, testFlagName, 0, "")
			if currentTestCase.flagValue != "" {
				require.NoError(subTest, command.Flags().Set(testFlagName, currentTestCase.flagValue))
			}
			populateIntConfiguration(command, testFlagName, testKey, &destination, defaultValue)
			assert.Equal(subTest, currentTestCase.expectedResult, destination)
		})
	}
}

// TestPopulateStringConfiguration verifies the transformer and the default.
func TestPopulateStringConfiguration(testingInstance *testing.T) {
	const (
		testFlagName = "test_secret"
		testKey      = "test_secret"
		testEnv      = "MP_TEST_SECRET"
	)
	require.NoError(testingInstance, viper.BindEnv(testKey, testEnv))

	testingInstance.Setenv(testEnv, ` "quoted-secret" `)
	var destination string
	command := &cobra.Command{Use: "test"}
	command.Flags().StringVar(&destination, testFlagName, "", "")
	populateStringConfiguration(command, testFlagName, testKey, &destination, "fallback", utils.TrimSpacesAndQuotes)
	assert.Equal(testingInstance, "quoted-secret", destination)

	testingInstance.Setenv(testEnv, "")
	destination = ""
	populateStringConfiguration(command, testFlagName, testKey, &destination, "fallback", utils.TrimSpacesAndQuotes)
	assert.Equal(testingInstance, "fallback", destination)
}
