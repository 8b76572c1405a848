package spclient

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"spshare/odata"
)

var (
	ErrInvalidArgument = errors.New("spclient: invalid argument")
	ErrBadRequest      = errors.New("spclient: bad request")
	ErrUnauthorized    = errors.New("spclient: unauthorized")
	ErrForbidden       = errors.New("spclient: forbidden")
	ErrNotFound        = errors.New("spclient: not found")
	ErrConflict        = errors.New("spclient: conflict")
	ErrThrottled       = errors.New("spclient: throttled")
	ErrServerError     = errors.New("spclient: server error")

	// ErrPagingStalled is returned when a page does not move past the
	// previous one.
	ErrPagingStalled = errors.New("spclient: paging did not advance")
)

// ServiceError describes a failed SharePoint request. StatusCode is 0 for
// transport failures, in which case Err holds the cause.
type ServiceError struct {
	Method     string
	URL        string
	StatusCode int
	// RetryAfter is the server supplied delay, or -1 when none was sent.
	RetryAfter    time.Duration
	ErrorResponse *odata.ErrorResponse
	Body          []byte
	Err           error
}

func (e *ServiceError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Method, e.URL)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.ErrorResponse != nil {
		if e.ErrorResponse.Code != "" {
			fmt.Fprintf(&b, ": %s", e.ErrorResponse.Code)
		}
		if e.ErrorResponse.Message != "" {
			fmt.Fprintf(&b, ": %s", e.ErrorResponse.Message)
		}
	}
	if e.Err != nil && e.StatusCode == 0 {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ServiceError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := sentinelFor(e.StatusCode); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// HasErrorResponse reports whether the server returned a parseable OData
// error document.
func (e *ServiceError) HasErrorResponse() bool {
	return e.ErrorResponse != nil
}

func sentinelFor(status int) error {
	switch {
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusConflict, status == http.StatusPreconditionFailed:
		return ErrConflict
	case status == http.StatusTooManyRequests:
		return ErrThrottled
	case status == http.StatusServiceUnavailable:
		return ErrThrottled
	case status >= 500:
		return ErrServerError
	case status >= 400:
		return ErrBadRequest
	}
	return nil
}

func newServiceError(req *http.Request, resp *http.Response, body []byte, cause error) *ServiceError {
	se := &ServiceError{
		Method:     req.Method,
		URL:        req.URL.String(),
		RetryAfter: -1,
		Err:        cause,
	}
	if resp == nil {
		return se
	}
	se.StatusCode = resp.StatusCode
	se.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
	se.Body = body
	if er, ok := odata.DecodeError(body); ok {
		se.ErrorResponse = er
	}
	return se
}

// parseRetryAfter reads either delay-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return -1
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return -1
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
		return 0
	}
	return -1
}

// IsNotFound reports whether err is a 404 from SharePoint.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRetryable reports whether err is a throttling or transient server
// failure.
func IsRetryable(err error) bool {
	var se *ServiceError
	if !errors.As(err, &se) {
		return false
	}
	if se.StatusCode == 0 {
		return true
	}
	return errors.Is(err, ErrThrottled) || (errors.Is(err, ErrServerError) && !se.HasErrorResponse())
}
