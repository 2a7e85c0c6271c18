package server

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/temirov/model-platform/internal/constants"
	"github.com/temirov/model-platform/internal/utils"
	"go.uber.org/zap"
)

// sanitizeRequestURI masks the client key so request logs never carry it.
func sanitizeRequestURI(requestURL *url.URL) string {
	queryParameters := requestURL.Query()
	if !queryParameters.Has(queryParameterKey) {
		return requestURL.RequestURI()
	}
	queryParameters.Set(queryParameterKey, redactedPlaceholder)
	sanitizedURL := *requestURL
	sanitizedURL.RawQuery = queryParameters.Encode()
	return sanitizedURL.RequestURI()
}

// requestResponseLogger logs each request on arrival and again with its status, matched route and latency.
func requestResponseLogger(structuredLogger *zap.SugaredLogger) gin.HandlerFunc {
	return func(ginContext *gin.Context) {
		requestStart := time.Now()
		structuredLogger.Infow(
			logEventRequestReceived,
			logFieldMethod, ginContext.Request.Method,
			logFieldPath, sanitizeRequestURI(ginContext.Request.URL),
			logFieldClientIP, ginContext.ClientIP(),
		)

		ginContext.Next()

		structuredLogger.Infow(
			logEventResponseSent,
			logFieldRoute, ginContext.FullPath(),
			logFieldStatus, ginContext.Writer.Status(),
			constants.LogFieldLatencyMilliseconds, time.Since(requestStart).Milliseconds(),
		)
	}
}

// secretMiddleware admits requests whose `key` query parameter matches the shared secret.
func secretMiddleware(sharedSecret string, structuredLogger *zap.SugaredLogger) gin.HandlerFunc {
	normalizedSecret := strings.TrimSpace(sharedSecret)
	expectedDigest := sha256.Sum256([]byte(normalizedSecret))
	expectedFingerprint := utils.Fingerprint(normalizedSecret)
	return func(ginContext *gin.Context) {
		presentedKey := strings.TrimSpace(ginContext.Query(queryParameterKey))
		if secretMatches(expectedDigest, presentedKey) {
			ginContext.Next()
			return
		}
		structuredLogger.Warnw(
			logEventForbiddenRequest,
			logFieldRoute, ginContext.FullPath(),
			logFieldClientIP, ginContext.ClientIP(),
			logFieldExpectedFingerprint, expectedFingerprint,
		)
		ginContext.String(http.StatusForbidden, ErrorMissingClientKey)
		ginContext.Abort()
	}
}

// secretMatches compares digests so the comparison time depends on neither the content nor the length of the key.
func secretMatches(expectedDigest [sha256.Size]byte, presentedKey string) bool {
	presentedDigest := sha256.Sum256([]byte(presentedKey))
	return subtle.ConstantTimeCompare(expectedDigest[:], presentedDigest[:]) == 1
}
