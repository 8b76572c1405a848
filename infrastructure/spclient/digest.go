package spclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"spshare/domain/sharepoint"
)

const (
	digestSafetyMargin = time.Minute
	minDigestLifetime  = 30 * time.Second
)

// requestDigest returns the form digest for writes to siteURL, fetching a
// new one from /_api/contextinfo when the cached one has expired.
func (s *Service) requestDigest(ctx context.Context, siteURL string) (string, error) {
	if v, ok := s.digests.Get(siteURL); ok {
		return v.(string), nil
	}

	info, err := s.fetchContextInfo(ctx, siteURL)
	if err != nil {
		return "", fmt.Errorf("request digest for %s: %w", siteURL, err)
	}

	s.cacheDigest(siteURL, info)
	return info.FormDigestValue, nil
}

func (s *Service) cacheDigest(siteURL string, info *sharepoint.ContextInfo) {
	ttl := time.Duration(info.FormDigestTimeoutSeconds)*time.Second - digestSafetyMargin
	if ttl < minDigestLifetime {
		ttl = minDigestLifetime
	}
	s.digests.Set(siteURL, info.FormDigestValue, ttl)
}

func (s *Service) fetchContextInfo(ctx context.Context, siteURL string) (*sharepoint.ContextInfo, error) {
	resp, err := s.send(ctx, &request{
		method:   http.MethodPost,
		absolute: siteURL + "/_api/contextinfo",
	})
	if err != nil {
		return nil, err
	}
	info, err := sharepoint.DecodeResult[sharepoint.ContextInfo](resp.body, resp.contentType, "GetContextWebInformation")
	if err != nil {
		return nil, err
	}
	if info.FormDigestValue == "" {
		return nil, fmt.Errorf("contextinfo for %s returned no form digest", siteURL)
	}
	return &info, nil
}

// GetContextInfo returns the context information of a site. The returned
// digest is also cached for subsequent writes.
func (s *Service) GetContextInfo(ctx context.Context, siteURL string) (*sharepoint.ContextInfo, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}
	info, err := s.fetchContextInfo(ctx, siteURL)
	if err != nil {
		return nil, fmt.Errorf("get context info: %w", err)
	}
	s.cacheDigest(siteURL, info)
	return info, nil
}
