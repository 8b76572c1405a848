package spclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"spshare/odata"
)

const (
	acceptJSON  = "application/json;odata=verbose"
	acceptAtom  = "application/atom+xml"
	contentJSON = "application/json;odata=verbose"

	maxLoggedBody = 4096
)

// request is one logical SharePoint call. Method may be MERGE or DELETE;
// these are tunnelled through POST.
type request struct {
	method      string
	siteURL     string
	path        string
	query       []odata.QueryOption
	body        []byte
	contentType string
	// absolute overrides siteURL/path, as for server supplied next links.
	absolute string
}

type response struct {
	status      int
	contentType string
	body        []byte
}

func (r *request) url() string {
	if r.absolute != "" {
		return r.absolute
	}
	u := r.siteURL + "/" + strings.TrimPrefix(r.path, "/")
	q := odata.Encode(r.query...)
	if q != "" && strings.Contains(u, "?") {
		q = "&" + q[1:]
	}
	return u + q
}

func (r *request) isWrite() bool {
	return r.method != http.MethodGet
}

// send runs a request through the retry loop and returns the full body.
func (s *Service) send(ctx context.Context, r *request) (*response, error) {
	resp, err := s.do(ctx, r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", r.method, r.url(), err)
	}
	if s.debug {
		s.logger.Debug("SharePoint response body", "url", r.url(), "body", truncate(body))
	}
	return &response{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        body,
	}, nil
}

// do runs the retry loop and returns the successful response with its body
// still open.
func (s *Service) do(ctx context.Context, r *request) (*http.Response, error) {
	target := r.url()
	digestRefreshed := false
	for retryCount := 1; ; retryCount++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		// build failures are final; the digest fetch has retried already
		req, err := s.newHTTPRequest(ctx, r, target)
		if err != nil {
			return nil, err
		}

		resp, err := s.attempt(r, req, target)
		if err == nil {
			return resp, nil
		}

		var se *ServiceError
		if errors.As(err, &se) {
			if errors.Is(se, ErrThrottled) {
				s.metrics.throttled()
				s.limiter.RecordThrottle(se.RetryAfter)
			}
			if se.StatusCode == http.StatusForbidden && r.isWrite() && !digestRefreshed {
				// expired digests answer 403; refetch once outside the policy
				s.digests.Delete(r.siteURL)
				digestRefreshed = true
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				s.logger.Debug("Request digest rejected, refreshing", "url", target)
				retryCount--
				continue
			}
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		delay := s.retry.NextRetryDelay(retryCount, err)
		if delay < 0 {
			return nil, err
		}
		s.metrics.retry(r.method)
		s.logger.Warn("Retrying SharePoint request",
			"method", r.method,
			"url", target,
			"retry", retryCount,
			"delay", delay,
			"error", err.Error())

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (s *Service) attempt(r *request, req *http.Request, target string) (*http.Response, error) {
	s.logger.Request(r.method, target)
	if s.debug && len(r.body) > 0 {
		s.logger.Debug("SharePoint request body", "url", target, "body", truncate(r.body))
	}

	start := time.Now()
	resp, execErr := s.doer.Execute(req)
	elapsed := time.Since(start)

	if resp == nil {
		s.metrics.observe(r.method, 0, elapsed)
		if execErr == nil {
			execErr = errors.New("no response")
		}
		return nil, newServiceError(req, nil, nil, execErr)
	}
	s.metrics.observe(r.method, resp.StatusCode, elapsed)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	se := newServiceError(req, resp, body, nil)
	s.logger.Debug("SharePoint request failed",
		"method", r.method,
		"url", target,
		"status", resp.StatusCode,
		"duration_ms", elapsed.Milliseconds())
	return nil, se
}

func (s *Service) newHTTPRequest(ctx context.Context, r *request, target string) (*http.Request, error) {
	method := r.method
	var tunnelled string
	if method == "MERGE" || method == http.MethodDelete {
		tunnelled = method
		method = http.MethodPost
	}

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	} else if method == http.MethodPost {
		body = http.NoBody
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	req.Header.Set("Accept", s.accept())
	if r.body != nil {
		ct := r.contentType
		if ct == "" {
			ct = contentJSON
		}
		req.Header.Set("Content-Type", ct)
	}
	if tunnelled != "" {
		req.Header.Set("X-HTTP-Method", tunnelled)
		req.Header.Set("IF-MATCH", "*")
	}
	if r.isWrite() && r.siteURL != "" {
		digest, err := s.requestDigest(ctx, r.siteURL)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-RequestDigest", digest)
	}
	return req, nil
}

func (s *Service) accept() string {
	if s.format == FormatAtom {
		return acceptAtom
	}
	return acceptJSON
}

func truncate(b []byte) string {
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody]) + "..."
	}
	return string(b)
}
