// Package platform maps provider aliases to the canonical model platform names
// used by model configuration records.
package platform

const (
	// OpenAICompatibleModel is the canonical platform for providers that speak the OpenAI wire protocol.
	OpenAICompatibleModel = "openai-compatible-model"
)

// platformAliases maps exact, case-sensitive aliases to canonical platform names.
// Canonical names must never appear as keys.
var platformAliases = map[string]string{
	"z.ai":      OpenAICompatibleModel,
	"ModelArk":  OpenAICompatibleModel,
	"grok":      OpenAICompatibleModel,
	"llama.cpp": OpenAICompatibleModel,
	"llama-cpp": OpenAICompatibleModel,
	"llamacpp":  OpenAICompatibleModel,
}

// Normalize returns the canonical platform name for a known alias and the input unchanged otherwise.
func Normalize(platform string) string {
	if canonical, found := platformAliases[platform]; found {
		return canonical
	}
	return platform
}

// NormalizeOptional is the nil-preserving variant of Normalize.
func NormalizeOptional(platform *string) *string {
	if platform == nil {
		return nil
	}
	normalized := Normalize(*platform)
	return &normalized
}

// IsAlias reports whether the platform is a known alias.
func IsAlias(platform string) bool {
	_, found := platformAliases[platform]
	return found
}

// Aliases returns a copy of the alias table.
func Aliases() map[string]string {
	aliases := make(map[string]string, len(platformAliases))
	for alias, canonical := range platformAliases {
		aliases[alias] = canonical
	}
	return aliases
}
