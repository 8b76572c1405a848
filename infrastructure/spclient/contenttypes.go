package spclient

import (
	"context"
	"fmt"
	"regexp"

	"spshare/domain/sharepoint"
	"spshare/odata"
	"spshare/spquery"
)

var contentTypeIDPattern = regexp.MustCompile(`^0x[0-9A-Fa-f]*$`)

func contentTypesPath(listID string) string {
	if listID == "" {
		return "_api/web/contenttypes"
	}
	return listPath(listID) + "/contenttypes"
}

// GetContentTypes returns the content types of the web, or of a list when
// listID is set.
func (s *Service) GetContentTypes(ctx context.Context, siteURL, listID string, opts ...odata.QueryOption) ([]sharepoint.ContentType, error) {
	siteURL, listID, err := s.scopeArgs(siteURL, listID)
	if err != nil {
		return nil, err
	}
	cts, err := getCollection[sharepoint.ContentType](ctx, s, siteURL, contentTypesPath(listID), opts)
	if err != nil {
		return nil, fmt.Errorf("get content types: %w", err)
	}
	return cts, nil
}

// GetAvailableContentTypes returns the content types of the web and its
// parents.
func (s *Service) GetAvailableContentTypes(ctx context.Context, siteURL string, opts ...odata.QueryOption) ([]sharepoint.ContentType, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}
	cts, err := getCollection[sharepoint.ContentType](ctx, s, siteURL, "_api/web/AvailableContentTypes", opts)
	if err != nil {
		return nil, fmt.Errorf("get available content types: %w", err)
	}
	return cts, nil
}

// GetContentType returns a content type by its id, such as 0x0101.
func (s *Service) GetContentType(ctx context.Context, siteURL, listID, contentTypeID string, opts ...odata.QueryOption) (*sharepoint.ContentType, error) {
	siteURL, listID, err := s.scopeArgs(siteURL, listID)
	if err != nil {
		return nil, err
	}
	if !contentTypeIDPattern.MatchString(contentTypeID) {
		return nil, fmt.Errorf("%w: content type id %q", ErrInvalidArgument, contentTypeID)
	}
	ct, err := getEntity[sharepoint.ContentType](ctx, s, siteURL, fmt.Sprintf("%s('%s')", contentTypesPath(listID), contentTypeID), opts)
	if err != nil {
		return nil, fmt.Errorf("get content type %s: %w", contentTypeID, err)
	}
	return ct, nil
}

// WalkContentTypes pages through content types with $skip/$top.
func (s *Service) WalkContentTypes(ctx context.Context, siteURL, listID string, pageSize int, fn func([]sharepoint.ContentType) error, opts ...odata.QueryOption) error {
	return walkOffset(pageSize, fn, func(offset int) ([]sharepoint.ContentType, error) {
		return s.GetContentTypes(ctx, siteURL, listID, append(append([]odata.QueryOption{}, opts...), spquery.Pagination(offset, pageSize)...)...)
	})
}
