package platform_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temirov/model-platform/internal/platform"
)

const (
	platformOpenAI   = "openai"
	platformMistral  = "mistral"
	platformEmpty    = ""
	platformUpperZAI = "Z.AI"
	platformSpaced   = " grok"
)

type normalizeTestDefinition struct {
	testName      string
	inputValue    string
	expectedValue string
}

// TestNormalize_MapsKnownAliases verifies that every seeded alias resolves to its canonical platform.
func TestNormalize_MapsKnownAliases(testingInstance *testing.T) {
	testCases := []normalizeTestDefinition{
		{testName: "grok", inputValue: "grok", expectedValue: platform.OpenAICompatibleModel},
		{testName: "z.ai", inputValue: "z.ai", expectedValue: platform.OpenAICompatibleModel},
		{testName: "ModelArk", inputValue: "ModelArk", expectedValue: platform.OpenAICompatibleModel},
		{testName: "llama.cpp", inputValue: "llama.cpp", expectedValue: platform.OpenAICompatibleModel},
		{testName: "llama-cpp", inputValue: "llama-cpp", expectedValue: platform.OpenAICompatibleModel},
		{testName: "llamacpp", inputValue: "llamacpp", expectedValue: platform.OpenAICompatibleModel},
	}
	for _, currentTestCase := range testCases {
		testingInstance.Run(currentTestCase.testName, func(subTest *testing.T) {
			assert.Equal(subTest, currentTestCase.expectedValue, platform.Normalize(currentTestCase.inputValue))
		})
	}
}

// TestNormalize_KeepsNonAliasUnchanged verifies the identity fallback, including near-miss spellings.
func TestNormalize_KeepsNonAliasUnchanged(testingInstance *testing.T) {
	testCases := []normalizeTestDefinition{
		{testName: "openai", inputValue: platformOpenAI, expectedValue: platformOpenAI},
		{testName: "mistral", inputValue: platformMistral, expectedValue: platformMistral},
		{testName: "empty", inputValue: platformEmpty, expectedValue: platformEmpty},
		{testName: "different case", inputValue: platformUpperZAI, expectedValue: platformUpperZAI},
		{testName: "leading space", inputValue: platformSpaced, expectedValue: platformSpaced},
		{testName: "canonical", inputValue: platform.OpenAICompatibleModel, expectedValue: platform.OpenAICompatibleModel},
	}
	for _, currentTestCase := range testCases {
		testingInstance.Run(currentTestCase.testName, func(subTest *testing.T) {
			assert.Equal(subTest, currentTestCase.expectedValue, platform.Normalize(currentTestCase.inputValue))
		})
	}
}

// TestNormalize_IsIdempotent verifies that normalizing twice equals normalizing once.
func TestNormalize_IsIdempotent(testingInstance *testing.T) {
	inputs := []string{platformOpenAI, platformMistral, platformEmpty, platformUpperZAI, platform.OpenAICompatibleModel}
	for alias := range platform.Aliases() {
		inputs = append(inputs, alias)
	}
	for _, input := range inputs {
		once := platform.Normalize(input)
		assert.Equal(testingInstance, once, platform.Normalize(once), "input=%q", input)
	}
}

// TestAliases_CanonicalValuesAreNotKeys guards the invariant that makes Normalize idempotent.
func TestAliases_CanonicalValuesAreNotKeys(testingInstance *testing.T) {
	aliases := platform.Aliases()
	require.NotEmpty(testingInstance, aliases)
	for alias, canonical := range aliases {
		_, canonicalIsKey := aliases[canonical]
		assert.False(testingInstance, canonicalIsKey, "alias %q maps to %q which is itself an alias", alias, canonical)
		assert.Equal(testingInstance, canonical, platform.Normalize(alias))
	}
}

// TestAliases_ReturnsCopy verifies that callers cannot mutate the alias table.
func TestAliases_ReturnsCopy(testingInstance *testing.T) {
	aliases := platform.Aliases()
	aliases[platformOpenAI] = platformMistral
	delete(aliases, "grok")

	assert.Equal(testingInstance, platformOpenAI, platform.Normalize(platformOpenAI))
	assert.Equal(testingInstance, platform.OpenAICompatibleModel, platform.Normalize("grok"))
}

// TestIsAlias verifies alias detection.
func TestIsAlias(testingInstance *testing.T) {
	assert.True(testingInstance, platform.IsAlias("ModelArk"))
	assert.False(testingInstance, platform.IsAlias(platformOpenAI))
	assert.False(testingInstance, platform.IsAlias(platform.OpenAICompatibleModel))
}

// TestNormalizeOptional verifies nil passthrough and delegation for present values.
func TestNormalizeOptional(testingInstance *testing.T) {
	assert.Nil(testingInstance, platform.NormalizeOptional(nil))

	for _, input := range []string{"llama.cpp", platformOpenAI, platformEmpty} {
		raw := input
		normalized := platform.NormalizeOptional(&raw)
		require.NotNil(testingInstance, normalized)
		assert.Equal(testingInstance, platform.Normalize(input), *normalized)
		assert.Equal(testingInstance, input, raw, "caller string must not be mutated")
	}
}

// TestNormalize_ConcurrentReaders exercises the alias table from many goroutines.
func TestNormalize_ConcurrentReaders(testingInstance *testing.T) {
	const readerCount = 32
	var waitGroup sync.WaitGroup
	results := make([]string, readerCount)
	for readerIndex := 0; readerIndex < readerCount; readerIndex++ {
		waitGroup.Add(1)
		go func(index int) {
			defer waitGroup.Done()
			results[index] = platform.Normalize("llamacpp")
		}(readerIndex)
	}
	waitGroup.Wait()
	for _, result := range results {
		assert.Equal(testingInstance, platform.OpenAICompatibleModel, result)
	}
}
