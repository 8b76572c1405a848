package spclient

import (
	"context"
	"encoding/json"
	"fmt"

	"spshare/domain/sharepoint"
	"spshare/odata"
	"spshare/spquery"
)

// fieldsPath addresses the web fields when listID is empty, otherwise
// the fields of the list.
func fieldsPath(listID string) string {
	if listID == "" {
		return "_api/web/fields"
	}
	return listPath(listID) + "/fields"
}

func (s *Service) scopeArgs(siteURL, listID string) (string, string, error) {
	if listID == "" {
		siteURL, err := normalizeSiteURL(siteURL)
		return siteURL, "", err
	}
	return s.listArgs(siteURL, listID)
}

// GetFields returns the fields of the web, or of a list when listID is
// set.
func (s *Service) GetFields(ctx context.Context, siteURL, listID string, opts ...odata.QueryOption) ([]sharepoint.Field, error) {
	siteURL, listID, err := s.scopeArgs(siteURL, listID)
	if err != nil {
		return nil, err
	}
	fields, err := getCollection[sharepoint.Field](ctx, s, siteURL, fieldsPath(listID), opts)
	if err != nil {
		return nil, fmt.Errorf("get fields: %w", err)
	}
	return fields, nil
}

// GetAvailableFields returns the fields of the web and its parents.
func (s *Service) GetAvailableFields(ctx context.Context, siteURL string, opts ...odata.QueryOption) ([]sharepoint.Field, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}
	fields, err := getCollection[sharepoint.Field](ctx, s, siteURL, "_api/web/AvailableFields", opts)
	if err != nil {
		return nil, fmt.Errorf("get available fields: %w", err)
	}
	return fields, nil
}

func (s *Service) GetField(ctx context.Context, siteURL, listID, fieldID string, opts ...odata.QueryOption) (*sharepoint.Field, error) {
	siteURL, listID, err := s.scopeArgs(siteURL, listID)
	if err != nil {
		return nil, err
	}
	fieldID, err = validateGUID("field id", fieldID)
	if err != nil {
		return nil, err
	}
	f, err := getEntity[sharepoint.Field](ctx, s, siteURL, fmt.Sprintf("%s(guid'%s')", fieldsPath(listID), fieldID), opts)
	if err != nil {
		return nil, fmt.Errorf("get field %s: %w", fieldID, err)
	}
	return f, nil
}

// CreateField adds a field from its CAML schema.
func (s *Service) CreateField(ctx context.Context, siteURL, listID, schemaXML string) (*sharepoint.Field, error) {
	siteURL, listID, err := s.scopeArgs(siteURL, listID)
	if err != nil {
		return nil, err
	}
	if err := requireValue("schema xml", schemaXML); err != nil {
		return nil, err
	}
	type parameters struct {
		Metadata  sharepoint.Metadata `json:"__metadata"`
		SchemaXML string              `json:"SchemaXml"`
	}
	body, err := json.Marshal(map[string]parameters{
		"parameters": {sharepoint.Metadata{Type: "SP.XmlSchemaFieldCreationInformation"}, schemaXML},
	})
	if err != nil {
		return nil, err
	}
	f, err := postEntity[sharepoint.Field](ctx, s, siteURL, fieldsPath(listID)+"/CreateFieldAsXml", body)
	if err != nil {
		return nil, fmt.Errorf("create field: %w", err)
	}
	return f, nil
}

func (s *Service) DeleteField(ctx context.Context, siteURL, listID, fieldID string) error {
	siteURL, listID, err := s.scopeArgs(siteURL, listID)
	if err != nil {
		return err
	}
	fieldID, err = validateGUID("field id", fieldID)
	if err != nil {
		return err
	}
	if err := s.delete(ctx, siteURL, fmt.Sprintf("%s(guid'%s')", fieldsPath(listID), fieldID)); err != nil {
		return fmt.Errorf("delete field %s: %w", fieldID, err)
	}
	return nil
}

// WalkFields pages through the fields of the web or a list with
// $skip/$top, calling fn once per page.
func (s *Service) WalkFields(ctx context.Context, siteURL, listID string, pageSize int, fn func([]sharepoint.Field) error, opts ...odata.QueryOption) error {
	return walkOffset(pageSize, fn, func(offset int) ([]sharepoint.Field, error) {
		return s.GetFields(ctx, siteURL, listID, append(append([]odata.QueryOption{}, opts...), spquery.Pagination(offset, pageSize)...)...)
	})
}

// walkOffset drives offset pagination until a short page.
func walkOffset[T any](pageSize int, fn func([]T) error, page func(offset int) ([]T, error)) error {
	if pageSize <= 0 {
		return fmt.Errorf("%w: page size must be positive", ErrInvalidArgument)
	}
	for offset := 0; ; offset += pageSize {
		items, err := page(offset)
		if err != nil {
			return err
		}
		if len(items) > 0 {
			if err := fn(items); err != nil {
				return err
			}
		}
		if len(items) < pageSize {
			return nil
		}
	}
}
