package modelconfig_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temirov/model-platform/internal/apperrors"
	"github.com/temirov/model-platform/internal/modelconfig"
	"github.com/temirov/model-platform/internal/platform"
)

const (
	canonicalPlatform = platform.ModelPlatform(platform.OpenAICompatibleModel)
	apiKeyValue       = "sk-test"
)

// platformPair mirrors a schema with one required and one optional normalized platform field.
type platformPair struct {
	ModelPlatform         platform.ModelPlatform         `json:"model_platform" binding:"required"`
	OptionalModelPlatform platform.OptionalModelPlatform `json:"optional_model_platform"`
}

// TestNormalizedPlatformTypes_ApplyInValidatedRecord verifies coercion on decode followed by validation.
func TestNormalizedPlatformTypes_ApplyInValidatedRecord(testingInstance *testing.T) {
	var record platformPair
	require.NoError(testingInstance, json.Unmarshal([]byte(`{"model_platform":"llama.cpp","optional_model_platform":"ModelArk"}`), &record))
	require.NoError(testingInstance, modelconfig.Validate(record))

	assert.Equal(testingInstance, canonicalPlatform, record.ModelPlatform)
	optionalValue, present := record.OptionalModelPlatform.Get()
	require.True(testingInstance, present)
	assert.Equal(testingInstance, canonicalPlatform, optionalValue)
}

// TestNormalizedPlatformTypes_OptionalDefaultsToAbsent verifies the optional field default.
func TestNormalizedPlatformTypes_OptionalDefaultsToAbsent(testingInstance *testing.T) {
	var record platformPair
	require.NoError(testingInstance, json.Unmarshal([]byte(`{"model_platform":"mistral"}`), &record))
	require.NoError(testingInstance, modelconfig.Validate(record))

	assert.Equal(testingInstance, platform.ModelPlatform("mistral"), record.ModelPlatform)
	assert.Nil(testingInstance, record.OptionalModelPlatform.Pointer())
}

// TestNormalizedPlatformTypes_RequiredRejectsMissing verifies that validation runs after coercion.
func TestNormalizedPlatformTypes_RequiredRejectsMissing(testingInstance *testing.T) {
	for _, payload := range []string{`{}`, `{"model_platform":null}`, `{"model_platform":""}`} {
		var record platformPair
		require.NoError(testingInstance, json.Unmarshal([]byte(payload), &record))
		validationError := modelconfig.Validate(record)
		require.Error(testingInstance, validationError, "payload=%s", payload)
		assert.ErrorIs(testingInstance, validationError, apperrors.ErrInvalidConfiguration)
	}
}

// TestParseModelConfiguration covers normalization, defaults and rejection paths.
func TestParseModelConfiguration(testingInstance *testing.T) {
	testCases := []struct {
		testName         string
		payload          string
		expectError      bool
		expectedPlatform platform.ModelPlatform
	}{
		{
			testName:         "alias normalized",
			payload:          `{"model_platform":"z.ai","model_type":"glm-4.5","api_key":"sk-test","url":"https://api.z.ai/api/paas/v4"}`,
			expectedPlatform: canonicalPlatform,
		},
		{
			testName:         "unknown platform passes through",
			payload:          `{"model_platform":"anthropic","model_type":"claude-sonnet"}`,
			expectedPlatform: platform.ModelPlatform("anthropic"),
		},
		{
			testName:         "case is preserved",
			payload:          `{"model_platform":"GROK","model_type":"grok-4"}`,
			expectedPlatform: platform.ModelPlatform("GROK"),
		},
		{testName: "missing model type", payload: `{"model_platform":"openai"}`, expectError: true},
		{testName: "missing platform", payload: `{"model_type":"gpt-4.1"}`, expectError: true},
		{testName: "invalid url", payload: `{"model_platform":"openai","model_type":"gpt-4.1","url":"not a url"}`, expectError: true},
		{testName: "non-string platform", payload: `{"model_platform":7,"model_type":"gpt-4.1"}`, expectError: true},
	}
	for _, currentTestCase := range testCases {
		testingInstance.Run(currentTestCase.testName, func(subTest *testing.T) {
			configuration, parseError := modelconfig.ParseModelConfiguration([]byte(currentTestCase.payload))
			if currentTestCase.expectError {
				require.Error(subTest, parseError)
				assert.ErrorIs(subTest, parseError, apperrors.ErrInvalidConfiguration)
				return
			}
			require.NoError(subTest, parseError)
			assert.Equal(subTest, currentTestCase.expectedPlatform, configuration.ModelPlatform)
		})
	}
}

// TestParseProviderConfiguration_EffectivePlatform verifies the explicit platform and the provider-name fallback.
func TestParseProviderConfiguration_EffectivePlatform(testingInstance *testing.T) {
	testCases := []struct {
		testName         string
		payload          string
		expectedPlatform platform.ModelPlatform
	}{
		{
			testName:         "explicit alias",
			payload:          `{"provider_name":"local","model_type":"qwen3","model_platform":"llama.cpp"}`,
			expectedPlatform: canonicalPlatform,
		},
		{
			testName:         "fallback to provider name alias",
			payload:          `{"provider_name":"llama-cpp","model_type":"qwen3"}`,
			expectedPlatform: canonicalPlatform,
		},
		{
			testName:         "fallback to plain provider name",
			payload:          `{"provider_name":"ollama","model_type":"llama3","model_platform":null}`,
			expectedPlatform: platform.ModelPlatform("ollama"),
		},
	}
	for _, currentTestCase := range testCases {
		testingInstance.Run(currentTestCase.testName, func(subTest *testing.T) {
			configuration, parseError := modelconfig.ParseProviderConfiguration([]byte(currentTestCase.payload))
			require.NoError(subTest, parseError)
			assert.Equal(subTest, currentTestCase.expectedPlatform, configuration.EffectivePlatform())
			assert.Equal(subTest, currentTestCase.expectedPlatform, configuration.ModelConfiguration().ModelPlatform)
		})
	}
}

// TestParseProviderConfiguration_RejectsMissingName verifies that provider entries need a name.
func TestParseProviderConfiguration_RejectsMissingName(testingInstance *testing.T) {
	_, parseError := modelconfig.ParseProviderConfiguration([]byte(`{"model_type":"qwen3"}`))
	assert.ErrorIs(testingInstance, parseError, apperrors.ErrInvalidConfiguration)
}

// TestModelConfiguration_Redacted verifies that only the API key is masked.
func TestModelConfiguration_Redacted(testingInstance *testing.T) {
	configuration := modelconfig.ModelConfiguration{
		ModelPlatform: platform.NewModelPlatform("grok"),
		ModelType:     "grok-4",
		APIKey:        apiKeyValue,
	}
	redacted := configuration.Redacted()

	assert.NotEqual(testingInstance, apiKeyValue, redacted.APIKey)
	assert.Equal(testingInstance, apiKeyValue, configuration.APIKey)
	assert.Equal(testingInstance, canonicalPlatform, redacted.ModelPlatform)
	assert.Empty(testingInstance, modelconfig.ModelConfiguration{}.Redacted().APIKey)
}
