package server

import "github.com/temirov/model-platform/internal/logging"

const (
	// LogLevelDebug indicates that the application should log debug information.
	LogLevelDebug = logging.LevelDebug

	// LogLevelInfo indicates that the application should log informational messages.
	LogLevelInfo = logging.LevelInfo

	headerAccept = "Accept"

	queryParameterKey      = "key"
	queryParameterPlatform = "platform"
	queryParameterEndpoint = "endpoint"
	queryParameterFormat   = "format"

	routeHealth            = "/healthz"
	routeMetrics           = "/metrics"
	routeNormalizePlatform = "/platforms/normalize"
	routeListAliases       = "/platforms/aliases"
	routeNormalizeModel    = "/model/normalize"
	routeValidateModel     = "/model/validate"
	routeLocalModels       = "/local/models"
	routeLocalHealth       = "/local/health"

	redactedPlaceholder = "***REDACTED***"


	mimeApplicationJSON = "application/json"
	mimeApplicationXML  = "application/xml"
	mimeTextXML         = "text/xml"
	mimeTextCSV         = "text/csv"
	mimeTextPlain       = "text/plain; charset=utf-8"

	formatJSON = "json"
	formatXML  = "xml"
	formatCSV  = "csv"

	// ErrorMissingClientKey indicates that the key query parameter is missing or wrong.
	ErrorMissingClientKey = "missing client key"
	errorMissingPlatform  = "missing platform parameter"
	errorMissingEndpoint  = "missing endpoint parameter"
	errorRequestTimedOut  = "request timed out"
	errorResponseFormat   = "response formatting error"
	errorUpstream         = "upstream request error"
	// errorQueueFull indicates that the internal request queue cannot accept additional tasks.
	errorQueueFull = "request queue full"

	responseHealthy = "ok"

	outcomeAlias       = "alias"
	outcomePassthrough = "passthrough"
	resultValid        = "valid"
	resultInvalid      = "invalid"
	resultError        = "error"

	logFieldMethod    = "method"
	logFieldPath      = "path"
	logFieldClientIP  = "client_ip"
	logFieldStatus    = "status"
	logFieldRoute     = "route"
	logFieldError     = "error"
	logFieldPlatform  = "platform"
	logFieldCanonical = "model_platform"
	logFieldEndpoint  = "endpoint"
	logFieldWorkers   = "workers"
	logFieldQueueSize = "queue_size"

	// logFieldExpectedFingerprint identifies the fingerprint of the expected client key.
	logFieldExpectedFingerprint = "expected_fingerprint"

	logEventForbiddenRequest     = "forbidden request"
	logEventRequestReceived      = "request received"
	logEventResponseSent         = "response sent"
	logEventPlatformNormalized   = "platform normalized"
	logEventBindFailed           = "bind model configuration failed"
	logEventValidationFailed     = "model validation failed"
	logEventListModelsFailed     = "list local models failed"
	logEventHealthCheckFailed    = "local health check failed"
	logEventFormatResponseFailed = "format response failed"
	logEventWorkersStarted       = "validation workers started"
	logEventShutdown             = "shutting down"
)
