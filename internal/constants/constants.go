package constants

const (
	// EmptyString is the zero value returned alongside errors.
	EmptyString = ""

	// LogFieldError identifies the structured log field name for an error.
	LogFieldError = "error"

	// LogFieldLatencyMilliseconds identifies the structured log field name for latency in milliseconds.
	LogFieldLatencyMilliseconds = "latency_ms"

	// LogEventReadResponseBodyFailed identifies failures while reading an HTTP response body.
	LogEventReadResponseBodyFailed = "read response body failed"
)
