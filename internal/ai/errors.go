package ai

import (
	"errors"
	"net/http"
	"strings"
)

// Completion failures the caller branches on. Anything else surfaces as the
// wrapped provider error.
var (
	// ErrQuotaExceeded means the provider rejected the call for quota or
	// rate-limit reasons (HTTP 429 family).
	ErrQuotaExceeded = errors.New("completion quota exceeded")

	// ErrModelUnavailable means the model endpoint itself failed or is
	// overloaded (HTTP 5xx family).
	ErrModelUnavailable = errors.New("completion model unavailable")
)

// httpStatusCoder is implemented by provider errors that carry an upstream
// HTTP status.
type httpStatusCoder interface {
	HTTPStatusCode() int
}

// classify maps a provider error onto one of the typed sentinels, keeping
// the original error wrapped for logging. Status codes are preferred; the
// string fallback covers SDKs that only expose formatted messages.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var coder httpStatusCoder
	if errors.As(err, &coder) {
		switch status := coder.HTTPStatusCode(); {
		case status == http.StatusTooManyRequests:
			return errors.Join(ErrQuotaExceeded, err)
		case status >= 500:
			return errors.Join(ErrModelUnavailable, err)
		default:
			return err
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"),
		strings.Contains(msg, "quota"),
		strings.Contains(msg, "rate limit"):
		return errors.Join(ErrQuotaExceeded, err)
	case strings.Contains(msg, "503"),
		strings.Contains(msg, "502"),
		strings.Contains(msg, "500"),
		strings.Contains(msg, "overloaded"),
		strings.Contains(msg, "unavailable"):
		return errors.Join(ErrModelUnavailable, err)
	}

	return err
}
