// Package upstream talks to model provider endpoints: it lists local models,
// probes runtime health and checks that a configured model answers with tool calls.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/temirov/model-platform/internal/apperrors"
	"github.com/temirov/model-platform/internal/constants"
	"github.com/temirov/model-platform/internal/modelconfig"
	"github.com/temirov/model-platform/internal/platform"
	"github.com/temirov/model-platform/internal/utils"
	"go.uber.org/zap"
)

const (
	// DefaultRequestTimeout bounds a single upstream operation including retries.
	DefaultRequestTimeout = 30 * time.Second

	pathOllamaTags      = "/api/tags"
	pathModels          = "/v1/models"
	pathHealth          = "/v1/health"
	pathChatCompletions = "/chat/completions"

	schemeHTTP  = "http://"
	schemeHTTPS = "https://"

	headerAuthorization       = "Authorization"
	headerContentType         = "Content-Type"
	headerAuthorizationPrefix = "Bearer "
	mimeApplicationJSON       = "application/json"

	validationToolName   = "get_current_time"
	validationPrompt     = "What time is it right now? Use the available tool to find out."
	validationMaxTokens  = 64
	messageToolCalls     = "model responded with tool calls"
	messageNoToolCalls   = "model responded without tool calls; function calling is required"
	messageStatusPattern = "upstream status %d"

	logFieldURL            = "url"
	logFieldPlatform       = "model_platform"
	logFieldHTTPStatus     = "http_status"
	logFieldModelCount     = "model_count"
	logFieldToolCalls      = "tool_calls"
	logFieldKeyFingerprint = "api_key_fingerprint"
	logEventListModels     = "list models"
	logEventHealthCheck    = "health check"
	logEventValidation     = "model validation"
	logEventRequestError   = "upstream request error"
)

var errRetryableStatus = errors.New("retryable upstream status")

// HTTPDoer executes HTTP requests, allowing the client to abstract the underlying HTTP client.
type HTTPDoer interface {
	Do(httpRequest *http.Request) (*http.Response, error)
}

// ValidationResult reports whether a model endpoint answered and whether it produced tool calls.
type ValidationResult struct {
	IsValid       bool                   `json:"is_valid"`
	IsToolCalls   bool                   `json:"is_tool_calls"`
	Message       string                 `json:"message"`
	ModelPlatform platform.ModelPlatform `json:"model_platform"`
}

// Client issues upstream requests with retry and a per-operation timeout.
type Client struct {
	httpDoer         HTTPDoer
	endpoints        *Endpoints
	requestTimeout   time.Duration
	structuredLogger *zap.SugaredLogger
}

// NewClient builds a Client. Nil collaborators are replaced with defaults.
func NewClient(httpDoer HTTPDoer, endpoints *Endpoints, requestTimeout time.Duration, structuredLogger *zap.SugaredLogger) *Client {
	if httpDoer == nil {
		httpDoer = http.DefaultClient
	}
	if endpoints == nil {
		endpoints = NewEndpoints()
	}
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	if structuredLogger == nil {
		structuredLogger = zap.NewNop().Sugar()
	}
	return &Client{
		httpDoer:         httpDoer,
		endpoints:        endpoints,
		requestTimeout:   requestTimeout,
		structuredLogger: structuredLogger,
	}
}

// ListModels returns the model names served by a local runtime.
// Ollama is queried through its tags API; everything else through the OpenAI models API.
func (client *Client) ListModels(ctx context.Context, localPlatform string, endpoint string) ([]string, error) {
	if utils.IsBlank(endpoint) {
		endpoint = DefaultLocalEndpoint(localPlatform)
	}
	if utils.IsBlank(endpoint) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrMissingEndpoint, localPlatform)
	}
	baseURL, endpointError := localBaseURL(endpoint)
	if endpointError != nil {
		return nil, endpointError
	}

	resourceURL := baseURL + pathModels
	if localPlatform == platformOllama {
		resourceURL = baseURL + pathOllamaTags
	}
	statusCode, responseBytes, requestError := client.do(ctx, http.MethodGet, resourceURL, constants.EmptyString, nil)
	if requestError != nil {
		return nil, requestError
	}
	if !isSuccessStatus(statusCode) {
		return nil, fmt.Errorf("%w: %d", apperrors.ErrUpstreamStatus, statusCode)
	}

	var modelNames []string
	if localPlatform == platformOllama {
		var tagsEnvelope struct {
			Models []struct {
				Name string `json:"name"`
			} `json:"models"`
		}
		if decodeError := json.Unmarshal(responseBytes, &tagsEnvelope); decodeError != nil {
			return nil, decodeError
		}
		for _, model := range tagsEnvelope.Models {
			modelNames = appendNonBlank(modelNames, model.Name)
		}
	} else {
		var modelsEnvelope struct {
			Data []struct {
				ID string `json:"id"`
			} `json:"data"`
		}
		if decodeError := json.Unmarshal(responseBytes, &modelsEnvelope); decodeError != nil {
			return nil, decodeError
		}
		for _, model := range modelsEnvelope.Data {
			modelNames = appendNonBlank(modelNames, model.ID)
		}
	}

	client.structuredLogger.Debugw(logEventListModels, logFieldURL, resourceURL, logFieldModelCount, len(modelNames))
	return modelNames, nil
}

// CheckHealth probes the health endpoint of an OpenAI-compatible local server.
func (client *Client) CheckHealth(ctx context.Context, endpoint string) error {
	baseURL, endpointError := localBaseURL(endpoint)
	if endpointError != nil {
		return endpointError
	}
	resourceURL := baseURL + pathHealth
	statusCode, _, requestError := client.do(ctx, http.MethodGet, resourceURL, constants.EmptyString, nil)
	if requestError != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrUpstreamUnhealthy, requestError)
	}
	client.structuredLogger.Debugw(logEventHealthCheck, logFieldURL, resourceURL, logFieldHTTPStatus, statusCode)
	if !isSuccessStatus(statusCode) {
		return fmt.Errorf("%w: status %d", apperrors.ErrUpstreamUnhealthy, statusCode)
	}
	return nil
}

// localBaseURL checks the endpoint scheme and strips the version suffix.
func localBaseURL(endpoint string) (string, error) {
	if utils.IsBlank(endpoint) {
		return constants.EmptyString, apperrors.ErrMissingEndpoint
	}
	if !hasHTTPScheme(endpoint) {
		return constants.EmptyString, fmt.Errorf("%w: %s", apperrors.ErrInvalidEndpoint, endpoint)
	}
	return EndpointBaseURL(endpoint), nil
}

// hasHTTPScheme reports whether the endpoint starts with http:// or https://, ignoring case.
func hasHTTPScheme(endpoint string) bool {
	lowered := strings.ToLower(strings.TrimSpace(endpoint))
	return strings.HasPrefix(lowered, schemeHTTP) || strings.HasPrefix(lowered, schemeHTTPS)
}

// ValidateModel sends a single tool-enabled chat completion to the configured endpoint.
// Non-2xx answers produce an invalid result; only transport failures are returned as errors.
func (client *Client) ValidateModel(ctx context.Context, configuration modelconfig.ModelConfiguration) (ValidationResult, error) {
	result := ValidationResult{ModelPlatform: configuration.ModelPlatform}

	baseURL := strings.TrimRight(strings.TrimSpace(configuration.URL), "/")
	if baseURL == "" {
		configuredURL, found := client.endpoints.BaseURL(configuration.ModelPlatform.String())
		if !found {
			return result, fmt.Errorf("%w: %s", apperrors.ErrMissingEndpoint, configuration.ModelPlatform)
		}
		baseURL = configuredURL
	}

	payloadBytes, marshalError := json.Marshal(buildValidationPayload(configuration))
	if marshalError != nil {
		return result, marshalError
	}

	resourceURL := baseURL + pathChatCompletions
	statusCode, responseBytes, requestError := client.do(ctx, http.MethodPost, resourceURL, configuration.APIKey, payloadBytes)
	if requestError != nil {
		return result, requestError
	}

	if !isSuccessStatus(statusCode) {
		result.Message = extractErrorMessage(statusCode, responseBytes)
	} else {
		result.IsValid = true
		result.IsToolCalls = hasToolCalls(responseBytes)
		result.Message = messageNoToolCalls
		if result.IsToolCalls {
			result.Message = messageToolCalls
		}
	}

	client.structuredLogger.Infow(
		logEventValidation,
		logFieldPlatform, configuration.ModelPlatform.String(),
		logFieldURL, resourceURL,
		logFieldHTTPStatus, statusCode,
		logFieldToolCalls, result.IsToolCalls,
		logFieldKeyFingerprint, utils.Fingerprint(configuration.APIKey),
	)
	return result, nil
}

// buildValidationPayload assembles the chat completion request; extra parameters override defaults.
func buildValidationPayload(configuration modelconfig.ModelConfiguration) map[string]any {
	payload := map[string]any{
		"model": configuration.ModelType,
		"messages": []map[string]string{
			{"role": "user", "content": validationPrompt},
		},
		"tools": []map[string]any{
			{
				"type": "function",
				"function": map[string]any{
					"name":        validationToolName,
					"description": "Returns the current time.",
					"parameters":  map[string]any{"type": "object", "properties": map[string]any{}},
				},
			},
		},
		"tool_choice": "auto",
		"max_tokens":  validationMaxTokens,
		"stream":      false,
	}
	for parameterName, parameterValue := range configuration.ExtraParams {
		payload[parameterName] = parameterValue
	}
	return payload
}

// do performs a request with the client's timeout, retrying transport errors, 5xx and 429 responses.
// When retries run out after a response arrived, the last response is returned without an error.
func (client *Client) do(ctx context.Context, method string, resourceURL string, apiKey string, body []byte) (int, []byte, error) {
	requestContext, cancelRequest := context.WithTimeout(ctx, client.requestTimeout)
	defer cancelRequest()

	var bodyReader io.Reader
	headers := make(map[string]string, 2)
	if body != nil {
		bodyReader = bytes.NewReader(body)
		headers[headerContentType] = mimeApplicationJSON
	}
	if !utils.IsBlank(apiKey) {
		headers[headerAuthorization] = headerAuthorizationPrefix + apiKey
	}
	httpRequest, buildError := utils.BuildHTTPRequestWithHeaders(method, resourceURL, bodyReader, headers)
	if buildError != nil {
		return 0, nil, buildError
	}
	httpRequest = httpRequest.WithContext(requestContext)

	var statusCode int
	var responseBytes []byte
	operation := func() error {
		var transportError error
		statusCode, responseBytes, _, transportError = utils.PerformHTTPRequest(client.httpDoer.Do, httpRequest, client.structuredLogger, logEventRequestError)
		if transportError != nil {
			return backoff.Permanent(transportError)
		}
		if statusCode >= http.StatusInternalServerError || statusCode == http.StatusTooManyRequests {
			return errRetryableStatus
		}
		return nil
	}
	retryStrategy := utils.AcquireExponentialBackoff()
	defer utils.ReleaseExponentialBackoff(retryStrategy)
	retryError := backoff.Retry(operation, backoff.WithContext(retryStrategy, requestContext))
	if retryError != nil && statusCode == 0 {
		return 0, nil, retryError
	}
	return statusCode, responseBytes, nil
}

func hasToolCalls(responseBytes []byte) bool {
	var completion struct {
		Choices []struct {
			Message struct {
				ToolCalls []json.RawMessage `json:"tool_calls"`
			} `json:"message"`
		} `json:"choices"`
	}
	if json.Unmarshal(responseBytes, &completion) != nil {
		return false
	}
	for _, choice := range completion.Choices {
		if len(choice.Message.ToolCalls) > 0 {
			return true
		}
	}
	return false
}

func extractErrorMessage(statusCode int, responseBytes []byte) string {
	var errorEnvelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(responseBytes, &errorEnvelope) == nil && !utils.IsBlank(errorEnvelope.Error.Message) {
		return errorEnvelope.Error.Message
	}
	if trimmed := strings.TrimSpace(string(responseBytes)); trimmed != "" {
		return trimmed
	}
	return fmt.Sprintf(messageStatusPattern, statusCode)
}

func isSuccessStatus(statusCode int) bool {
	return statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
}

func appendNonBlank(values []string, candidate string) []string {
	if utils.IsBlank(candidate) {
		return values
	}
	return append(values, candidate)
}
