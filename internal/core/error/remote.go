package errx

import "net/http"

// WrapSearch wraps a search provider error with a consistent status and message.
func WrapSearch(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, SearchErrorMessage)
}

// WrapTracing wraps a tracing provider error. Tracing failures are never fatal;
// callers log these and continue.
func WrapTracing(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, TracingErrorMessage)
}

// WrapModel wraps a model provider error with a consistent status and message.
func WrapModel(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, ModelErrorMessage)
}
