package apperrors

import "errors"

var (
	ErrMissingServiceSecret = errors.New("SERVICE_SECRET must be set")
	ErrInvalidConfiguration = errors.New("invalid model configuration")
	ErrMissingEndpoint      = errors.New("no endpoint configured for platform")
	ErrInvalidEndpoint      = errors.New("endpoint must be an http or https URL")
	ErrUpstreamUnhealthy    = errors.New("upstream health check failed")
	ErrUpstreamStatus       = errors.New("upstream returned an unexpected status")
	ErrMissingProviders     = errors.New("configuration file lists no providers")
)
