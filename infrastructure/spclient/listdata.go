package spclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"spshare/domain/sharepoint"
	"spshare/odata"
)

// GetListData reads an entity set of the legacy ListData.svc endpoint,
// following server side paging to the end.
func (s *Service) GetListData(ctx context.Context, siteURL, listName string, opts ...odata.QueryOption) ([]sharepoint.ListDataItem, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}
	if err := requireValue("list name", listName); err != nil {
		return nil, err
	}

	r := &request{
		method:  http.MethodGet,
		siteURL: siteURL,
		path:    "_vti_bin/listdata.svc/" + url.PathEscape(listName),
		query:   opts,
	}
	var out []sharepoint.ListDataItem
	for {
		resp, err := s.send(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("get list data %s: %w", listName, err)
		}
		page, next, err := sharepoint.DecodePage[sharepoint.ListDataItem](resp.body, resp.contentType)
		if err != nil {
			return nil, fmt.Errorf("decode list data %s: %w", listName, err)
		}
		out = append(out, page...)
		if next == "" {
			return out, nil
		}
		r = &request{method: http.MethodGet, siteURL: siteURL, absolute: next}
	}
}
