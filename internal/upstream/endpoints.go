package upstream

import (
	"strings"
	"sync"
)

const (
	platformOllama   = "ollama"
	platformLMStudio = "lmstudio"
	platformLlamaCpp = "llama.cpp"
	platformVLLM     = "vllm"
	platformSGLang   = "sglang"

	versionSuffix = "/v1"
)

// defaultBaseURLs lists OpenAI-style base URLs for canonical platforms with a well-known host.
var defaultBaseURLs = map[string]string{
	"openai":         "https://api.openai.com/v1",
	"mistral":        "https://api.mistral.ai/v1",
	"deepseek":       "https://api.deepseek.com/v1",
	"moonshot":       "https://api.moonshot.ai/v1",
	"openrouter":     "https://openrouter.ai/api/v1",
	platformOllama:   "http://localhost:11434/v1",
	platformLMStudio: "http://localhost:1234/v1",
}

// defaultLocalEndpoints lists the endpoints local runtimes listen on out of the box.
var defaultLocalEndpoints = map[string]string{
	platformOllama:   "http://localhost:11434/v1",
	platformVLLM:     "",
	platformSGLang:   "",
	platformLMStudio: "http://localhost:1234/v1",
	platformLlamaCpp: "http://localhost:8080/v1",
}

// DefaultLocalEndpoint returns the default endpoint for a local runtime, or an empty string.
func DefaultLocalEndpoint(localPlatform string) string {
	return defaultLocalEndpoints[localPlatform]
}

// DefaultHealthEndpoint returns the default endpoint of runtimes that serve /v1/health.
// Only llama.cpp does; Ollama and LM Studio have no such route.
func DefaultHealthEndpoint(localPlatform string) string {
	if localPlatform != platformLlamaCpp {
		return ""
	}
	return DefaultLocalEndpoint(localPlatform)
}

// EndpointBaseURL strips a trailing /v1 and trailing slashes from an endpoint.
func EndpointBaseURL(endpoint string) string {
	trimmed := strings.TrimSpace(endpoint)
	trimmed = strings.TrimSuffix(trimmed, "/")
	trimmed = strings.TrimSuffix(trimmed, versionSuffix)
	return strings.TrimRight(trimmed, "/")
}

// Endpoints provides concurrency-safe access to per-platform base URLs.
type Endpoints struct {
	accessMutex sync.RWMutex
	baseURLs    map[string]string
}

// NewEndpoints creates an Endpoints instance seeded with the default base URLs.
func NewEndpoints() *Endpoints {
	baseURLs := make(map[string]string, len(defaultBaseURLs))
	for platformName, baseURL := range defaultBaseURLs {
		baseURLs[platformName] = baseURL
	}
	return &Endpoints{baseURLs: baseURLs}
}

// BaseURL returns the base URL configured for the canonical platform.
func (endpointConfiguration *Endpoints) BaseURL(platformName string) (string, bool) {
	endpointConfiguration.accessMutex.RLock()
	defer endpointConfiguration.accessMutex.RUnlock()
	baseURL, found := endpointConfiguration.baseURLs[platformName]
	return baseURL, found && baseURL != ""
}

// SetBaseURL overrides the base URL for a platform.
func (endpointConfiguration *Endpoints) SetBaseURL(platformName string, baseURL string) {
	endpointConfiguration.accessMutex.Lock()
	defer endpointConfiguration.accessMutex.Unlock()
	endpointConfiguration.baseURLs[platformName] = strings.TrimRight(strings.TrimSpace(baseURL), "/")
}

// ResetBaseURL restores the default base URL for a platform, removing it when there is none.
func (endpointConfiguration *Endpoints) ResetBaseURL(platformName string) {
	endpointConfiguration.accessMutex.Lock()
	defer endpointConfiguration.accessMutex.Unlock()
	if baseURL, found := defaultBaseURLs[platformName]; found {
		endpointConfiguration.baseURLs[platformName] = baseURL
		return
	}
	delete(endpointConfiguration.baseURLs, platformName)
}
