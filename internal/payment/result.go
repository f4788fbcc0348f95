package payment

import (
	"errors"
	"net"
	"net/http"
	"net/url"

	"github.com/stripe/stripe-go/v76"
)

// Category classifies a failed provider call.
type Category int

const (
	CategoryNone Category = iota
	RateLimited
	InvalidRequest
	Forbidden
	Unauthenticated
	NetworkError
	ProviderFault
	Unknown
)

func (c Category) String() string {
	switch c {
	case CategoryNone:
		return "none"
	case RateLimited:
		return "rate_limited"
	case InvalidRequest:
		return "invalid_request"
	case Forbidden:
		return "forbidden"
	case Unauthenticated:
		return "unauthenticated"
	case NetworkError:
		return "network_error"
	case ProviderFault:
		return "provider_fault"
	default:
		return "unknown"
	}
}

// Retryable reports whether the same call may succeed if repeated.
func (c Category) Retryable() bool {
	return c == RateLimited || c == NetworkError
}

// Result is the outcome of a gateway call: a session id, or a failure category.
type Result struct {
	SessionID string
	Err       Category
}

func (r Result) OK() bool {
	return r.Err == CategoryNone
}

func ok(sessionID string) Result {
	return Result{SessionID: sessionID}
}

func failed(c Category) Result {
	return Result{Err: c}
}

// Classify maps an error returned by stripe-go onto a Category.
func Classify(err error) Category {
	if err == nil {
		return CategoryNone
	}

	var se *stripe.Error
	if errors.As(err, &se) {
		switch {
		case se.HTTPStatusCode == http.StatusTooManyRequests || se.Code == stripe.ErrorCodeRateLimit:
			return RateLimited
		case se.HTTPStatusCode == http.StatusUnauthorized:
			return Unauthenticated
		case se.HTTPStatusCode == http.StatusForbidden:
			return Forbidden
		case se.Type == stripe.ErrorTypeInvalidRequest:
			return InvalidRequest
		case se.Type == stripe.ErrorTypeAPI || se.HTTPStatusCode >= http.StatusInternalServerError:
			return ProviderFault
		}
		return Unknown
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return NetworkError
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return NetworkError
	}
	return Unknown
}
