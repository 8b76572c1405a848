package spclient

import (
	"context"
	"fmt"

	"spshare/domain/sharepoint"
	"spshare/odata"
)

// GetLists returns the lists of a web.
func (s *Service) GetLists(ctx context.Context, siteURL string, opts ...odata.QueryOption) ([]sharepoint.List, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}
	lists, err := getCollection[sharepoint.List](ctx, s, siteURL, "_api/web/lists", opts)
	if err != nil {
		return nil, fmt.Errorf("get lists %s: %w", siteURL, err)
	}
	return lists, nil
}

// GetList returns a list by id.
func (s *Service) GetList(ctx context.Context, siteURL, listID string, opts ...odata.QueryOption) (*sharepoint.List, error) {
	siteURL, listID, err := s.listArgs(siteURL, listID)
	if err != nil {
		return nil, err
	}
	list, err := getEntity[sharepoint.List](ctx, s, siteURL, listPath(listID), opts)
	if err != nil {
		return nil, fmt.Errorf("get list %s: %w", listID, err)
	}
	return list, nil
}

// GetListByTitle returns a list by its display title.
func (s *Service) GetListByTitle(ctx context.Context, siteURL, title string, opts ...odata.QueryOption) (*sharepoint.List, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}
	if err := requireValue("list title", title); err != nil {
		return nil, err
	}
	list, err := getEntity[sharepoint.List](ctx, s, siteURL, "_api/web/lists/GetByTitle("+quote(title)+")", opts)
	if err != nil {
		return nil, fmt.Errorf("get list %q: %w", title, err)
	}
	return list, nil
}

// CreateList creates a list in the web at siteURL.
func (s *Service) CreateList(ctx context.Context, siteURL string, info sharepoint.ListCreationInfo) (*sharepoint.List, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}
	if err := requireValue("list title", info.Title); err != nil {
		return nil, err
	}
	if info.BaseTemplate == 0 {
		info.BaseTemplate = sharepoint.ListTemplateGenericList
	}
	body, err := info.Body()
	if err != nil {
		return nil, err
	}
	list, err := postEntity[sharepoint.List](ctx, s, siteURL, "_api/web/lists", body)
	if err != nil {
		return nil, fmt.Errorf("create list %q: %w", info.Title, err)
	}
	return list, nil
}

// UpdateList applies the non-nil settings of update to a list.
func (s *Service) UpdateList(ctx context.Context, siteURL, listID string, update sharepoint.ListUpdate) error {
	siteURL, listID, err := s.listArgs(siteURL, listID)
	if err != nil {
		return err
	}
	body, err := update.Body()
	if err != nil {
		return err
	}
	if err := s.merge(ctx, siteURL, listPath(listID), body); err != nil {
		return fmt.Errorf("update list %s: %w", listID, err)
	}
	return nil
}

// DeleteList permanently deletes a list.
func (s *Service) DeleteList(ctx context.Context, siteURL, listID string) error {
	siteURL, listID, err := s.listArgs(siteURL, listID)
	if err != nil {
		return err
	}
	if err := s.delete(ctx, siteURL, listPath(listID)); err != nil {
		return fmt.Errorf("delete list %s: %w", listID, err)
	}
	return nil
}

// RecycleList moves a list to the recycle bin and returns the recycle bin
// item id.
func (s *Service) RecycleList(ctx context.Context, siteURL, listID string) (string, error) {
	siteURL, listID, err := s.listArgs(siteURL, listID)
	if err != nil {
		return "", err
	}
	id, err := s.recycle(ctx, siteURL, listPath(listID))
	if err != nil {
		return "", fmt.Errorf("recycle list %s: %w", listID, err)
	}
	return id, nil
}

// GetListItemCount returns the number of items in a list, folders
// included.
func (s *Service) GetListItemCount(ctx context.Context, siteURL, listID string) (int, error) {
	siteURL, listID, err := s.listArgs(siteURL, listID)
	if err != nil {
		return 0, err
	}
	n, err := getResult[int](ctx, s, siteURL, listPath(listID)+"/ItemCount", "ItemCount")
	if err != nil {
		return 0, fmt.Errorf("get item count %s: %w", listID, err)
	}
	return n, nil
}

func (s *Service) listArgs(siteURL, listID string) (string, string, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return "", "", err
	}
	listID, err = validateGUID("list id", listID)
	if err != nil {
		return "", "", err
	}
	return siteURL, listID, nil
}
