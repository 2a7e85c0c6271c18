package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/temirov/model-platform/internal/apperrors"
	"github.com/temirov/model-platform/internal/modelconfig"
	"github.com/temirov/model-platform/internal/platform"
	"github.com/temirov/model-platform/internal/upstream"
	"github.com/temirov/model-platform/internal/utils"
	"go.uber.org/zap"
)

type validationOutcome struct {
	result upstream.ValidationResult
	err    error
}

type validationTask struct {
	requestContext context.Context
	configuration  modelconfig.ModelConfiguration
	reply          chan validationOutcome
}

type localModelsResponse struct {
	Platform string   `json:"platform"`
	Endpoint string   `json:"endpoint"`
	Models   []string `json:"models"`
}

// normalizePlatformHandler normalizes the platform query parameter. An empty value is a valid input.
func normalizePlatformHandler(metrics *serviceMetrics, structuredLogger *zap.SugaredLogger) gin.HandlerFunc {
	return func(ginContext *gin.Context) {
		rawPlatform, supplied := ginContext.GetQuery(queryParameterPlatform)
		if !supplied {
			ginContext.String(http.StatusBadRequest, errorMissingPlatform)
			return
		}

		isAlias := platform.IsAlias(rawPlatform)
		response := normalizationResponse{
			Platform:      rawPlatform,
			ModelPlatform: platform.Normalize(rawPlatform),
			Alias:         isAlias,
		}
		metrics.observeNormalization(isAlias)
		structuredLogger.Debugw(
			logEventPlatformNormalized,
			logFieldPlatform, response.Platform,
			logFieldCanonical, response.ModelPlatform,
		)

		formattedBody, contentType, formatError := formatNormalization(response, preferredMime(ginContext))
		if formatError != nil {
			structuredLogger.Errorw(logEventFormatResponseFailed, logFieldError, formatError)
			ginContext.String(http.StatusInternalServerError, errorResponseFormat)
			return
		}
		ginContext.Data(http.StatusOK, contentType, formattedBody)
	}
}

func listAliasesHandler() gin.HandlerFunc {
	return func(ginContext *gin.Context) {
		ginContext.JSON(http.StatusOK, platform.Aliases())
	}
}

// normalizeModelHandler binds a model configuration, which normalizes its platform, and echoes it back redacted.
func normalizeModelHandler(structuredLogger *zap.SugaredLogger) gin.HandlerFunc {
	return func(ginContext *gin.Context) {
		var configuration modelconfig.ModelConfiguration
		if bindError := ginContext.ShouldBindJSON(&configuration); bindError != nil {
			structuredLogger.Warnw(logEventBindFailed, logFieldError, bindError)
			ginContext.String(http.StatusBadRequest, bindError.Error())
			return
		}
		ginContext.JSON(http.StatusOK, configuration.Redacted())
	}
}

// validateModelHandler queues an upstream validation and waits for its outcome.
func validateModelHandler(taskQueue chan validationTask, requestTimeout time.Duration, metrics *serviceMetrics, structuredLogger *zap.SugaredLogger) gin.HandlerFunc {
	return func(ginContext *gin.Context) {
		var configuration modelconfig.ModelConfiguration
		if bindError := ginContext.ShouldBindJSON(&configuration); bindError != nil {
			structuredLogger.Warnw(logEventBindFailed, logFieldError, bindError)
			ginContext.String(http.StatusBadRequest, bindError.Error())
			return
		}

		requestContext, cancelRequest := context.WithTimeout(ginContext.Request.Context(), requestTimeout)
		defer cancelRequest()

		replyChannel := make(chan validationOutcome, 1)
		select {
		case taskQueue <- validationTask{requestContext: requestContext, configuration: configuration, reply: replyChannel}:
		default:
			ginContext.String(http.StatusServiceUnavailable, errorQueueFull)
			return
		}

		select {
		case outcome := <-replyChannel:
			if outcome.err != nil {
				metrics.observeValidation(resultError)
				structuredLogger.Warnw(
					logEventValidationFailed,
					logFieldCanonical, configuration.ModelPlatform.String(),
					logFieldError, outcome.err,
				)
				ginContext.String(validationErrorStatus(outcome.err), outcome.err.Error())
				return
			}
			if outcome.result.IsValid {
				metrics.observeValidation(resultValid)
			} else {
				metrics.observeValidation(resultInvalid)
			}
			ginContext.JSON(http.StatusOK, outcome.result)
		case <-requestContext.Done():
			metrics.observeValidation(resultError)
			ginContext.String(http.StatusGatewayTimeout, errorRequestTimedOut)
		}
	}
}

func isEndpointError(endpointError error) bool {
	return errors.Is(endpointError, apperrors.ErrMissingEndpoint) || errors.Is(endpointError, apperrors.ErrInvalidEndpoint)
}

func validationErrorStatus(validationError error) int {
	switch {
	case isEndpointError(validationError):
		return http.StatusBadRequest
	case errors.Is(validationError, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// localModelsHandler lists models served by a local runtime.
func localModelsHandler(client *upstream.Client, structuredLogger *zap.SugaredLogger) gin.HandlerFunc {
	return func(ginContext *gin.Context) {
		localPlatform := ginContext.Query(queryParameterPlatform)
		if utils.IsBlank(localPlatform) {
			ginContext.String(http.StatusBadRequest, errorMissingPlatform)
			return
		}
		endpoint := ginContext.Query(queryParameterEndpoint)
		if utils.IsBlank(endpoint) {
			endpoint = upstream.DefaultLocalEndpoint(localPlatform)
		}

		modelNames, listError := client.ListModels(ginContext.Request.Context(), localPlatform, endpoint)
		if listError != nil {
			structuredLogger.Warnw(
				logEventListModelsFailed,
				logFieldPlatform, localPlatform,
				logFieldEndpoint, endpoint,
				logFieldError, listError,
			)
			if isEndpointError(listError) {
				ginContext.String(http.StatusBadRequest, listError.Error())
				return
			}
			ginContext.String(http.StatusBadGateway, errorUpstream)
			return
		}
		if modelNames == nil {
			modelNames = []string{}
		}
		ginContext.JSON(http.StatusOK, localModelsResponse{Platform: localPlatform, Endpoint: endpoint, Models: modelNames})
	}
}

// localHealthHandler probes a local server's /v1/health route. Without an endpoint only llama.cpp
// has a default, since the other local runtimes do not serve that route.
func localHealthHandler(client *upstream.Client, structuredLogger *zap.SugaredLogger) gin.HandlerFunc {
	return func(ginContext *gin.Context) {
		endpoint := ginContext.Query(queryParameterEndpoint)
		if utils.IsBlank(endpoint) {
			endpoint = upstream.DefaultHealthEndpoint(ginContext.Query(queryParameterPlatform))
		}
		if utils.IsBlank(endpoint) {
			ginContext.String(http.StatusBadRequest, errorMissingEndpoint)
			return
		}
		if healthError := client.CheckHealth(ginContext.Request.Context(), endpoint); healthError != nil {
			structuredLogger.Warnw(logEventHealthCheckFailed, logFieldEndpoint, endpoint, logFieldError, healthError)
			if isEndpointError(healthError) {
				ginContext.String(http.StatusBadRequest, healthError.Error())
				return
			}
			ginContext.String(http.StatusBadGateway, healthError.Error())
			return
		}
		ginContext.String(http.StatusOK, responseHealthy)
	}
}
