package spclient

import (
	"context"
	"fmt"
	"net/http"

	"spshare/domain/sharepoint"
	"spshare/odata"
	"spshare/spquery"
)

func itemPath(listID string, itemID int) string {
	return fmt.Sprintf("%s/items(%d)", listPath(listID), itemID)
}

// GetListItems returns one page of list items.
func (s *Service) GetListItems(ctx context.Context, siteURL, listID string, opts ...odata.QueryOption) ([]sharepoint.ListItem, error) {
	siteURL, listID, err := s.listArgs(siteURL, listID)
	if err != nil {
		return nil, err
	}
	items, err := getCollection[sharepoint.ListItem](ctx, s, siteURL, listPath(listID)+"/items", opts)
	if err != nil {
		return nil, fmt.Errorf("get items of list %s: %w", listID, err)
	}
	return items, nil
}

// GetListItem returns a list item by id.
func (s *Service) GetListItem(ctx context.Context, siteURL, listID string, itemID int, opts ...odata.QueryOption) (*sharepoint.ListItem, error) {
	siteURL, listID, err := s.itemArgs(siteURL, listID, itemID)
	if err != nil {
		return nil, err
	}
	item, err := getEntity[sharepoint.ListItem](ctx, s, siteURL, itemPath(listID, itemID), opts)
	if err != nil {
		return nil, fmt.Errorf("get item %d of list %s: %w", itemID, listID, err)
	}
	return item, nil
}

// GetListItemsByCAML returns the items selected by a CAML query.
func (s *Service) GetListItemsByCAML(ctx context.Context, siteURL, listID string, query sharepoint.CamlQuery, opts ...odata.QueryOption) ([]sharepoint.ListItem, error) {
	siteURL, listID, err := s.listArgs(siteURL, listID)
	if err != nil {
		return nil, err
	}
	if err := requireValue("view xml", query.ViewXML); err != nil {
		return nil, err
	}
	body, err := query.Body()
	if err != nil {
		return nil, err
	}
	resp, err := s.send(ctx, &request{
		method:  http.MethodPost,
		siteURL: siteURL,
		path:    listPath(listID) + "/GetItems",
		query:   opts,
		body:    body,
	})
	if err != nil {
		return nil, fmt.Errorf("query items of list %s: %w", listID, err)
	}
	return sharepoint.DecodeCollection[sharepoint.ListItem](resp.body, resp.contentType)
}

// CreateListItem adds an item to a list. When entityType is empty the
// list is read first to find its ListItemEntityTypeFullName.
func (s *Service) CreateListItem(ctx context.Context, siteURL, listID, entityType string, values sharepoint.ItemValues) (*sharepoint.ListItem, error) {
	siteURL, listID, err := s.listArgs(siteURL, listID)
	if err != nil {
		return nil, err
	}
	entityType, err = s.itemEntityType(ctx, siteURL, listID, entityType)
	if err != nil {
		return nil, err
	}
	body, err := values.Body(entityType)
	if err != nil {
		return nil, err
	}
	item, err := postEntity[sharepoint.ListItem](ctx, s, siteURL, listPath(listID)+"/items", body)
	if err != nil {
		return nil, fmt.Errorf("create item in list %s: %w", listID, err)
	}
	return item, nil
}

// UpdateListItem merges values into an existing item.
func (s *Service) UpdateListItem(ctx context.Context, siteURL, listID string, itemID int, entityType string, values sharepoint.ItemValues) error {
	siteURL, listID, err := s.itemArgs(siteURL, listID, itemID)
	if err != nil {
		return err
	}
	entityType, err = s.itemEntityType(ctx, siteURL, listID, entityType)
	if err != nil {
		return err
	}
	body, err := values.Body(entityType)
	if err != nil {
		return err
	}
	if err := s.merge(ctx, siteURL, itemPath(listID, itemID), body); err != nil {
		return fmt.Errorf("update item %d of list %s: %w", itemID, listID, err)
	}
	return nil
}

func (s *Service) itemEntityType(ctx context.Context, siteURL, listID, entityType string) (string, error) {
	if entityType != "" {
		return entityType, nil
	}
	list, err := s.GetList(ctx, siteURL, listID, odata.Select{Fields: []string{"ListItemEntityTypeFullName"}})
	if err != nil {
		return "", err
	}
	if list.ListItemEntityTypeFullName == "" {
		return "", fmt.Errorf("list %s has no item entity type", listID)
	}
	return list.ListItemEntityTypeFullName, nil
}

func (s *Service) DeleteListItem(ctx context.Context, siteURL, listID string, itemID int) error {
	siteURL, listID, err := s.itemArgs(siteURL, listID, itemID)
	if err != nil {
		return err
	}
	if err := s.delete(ctx, siteURL, itemPath(listID, itemID)); err != nil {
		return fmt.Errorf("delete item %d of list %s: %w", itemID, listID, err)
	}
	return nil
}

// RecycleListItem moves an item to the recycle bin.
func (s *Service) RecycleListItem(ctx context.Context, siteURL, listID string, itemID int) (string, error) {
	siteURL, listID, err := s.itemArgs(siteURL, listID, itemID)
	if err != nil {
		return "", err
	}
	id, err := s.recycle(ctx, siteURL, itemPath(listID, itemID))
	if err != nil {
		return "", fmt.Errorf("recycle item %d of list %s: %w", itemID, listID, err)
	}
	return id, nil
}

func (s *Service) GetListItemVersions(ctx context.Context, siteURL, listID string, itemID int, opts ...odata.QueryOption) ([]sharepoint.ListItemVersion, error) {
	siteURL, listID, err := s.itemArgs(siteURL, listID, itemID)
	if err != nil {
		return nil, err
	}
	versions, err := getCollection[sharepoint.ListItemVersion](ctx, s, siteURL, itemPath(listID, itemID)+"/Versions", opts)
	if err != nil {
		return nil, fmt.Errorf("get versions of item %d: %w", itemID, err)
	}
	return versions, nil
}

func (s *Service) GetListItemAttachments(ctx context.Context, siteURL, listID string, itemID int) ([]sharepoint.Attachment, error) {
	siteURL, listID, err := s.itemArgs(siteURL, listID, itemID)
	if err != nil {
		return nil, err
	}
	files, err := getCollection[sharepoint.Attachment](ctx, s, siteURL, itemPath(listID, itemID)+"/AttachmentFiles", nil)
	if err != nil {
		return nil, fmt.Errorf("get attachments of item %d: %w", itemID, err)
	}
	return files, nil
}

// GetListItemSharingInformation returns who an item is shared with.
func (s *Service) GetListItemSharingInformation(ctx context.Context, siteURL, listID string, itemID int) (*sharepoint.SharingInformation, error) {
	siteURL, listID, err := s.itemArgs(siteURL, listID, itemID)
	if err != nil {
		return nil, err
	}
	resp, err := s.send(ctx, &request{
		method:  http.MethodPost,
		siteURL: siteURL,
		path:    itemPath(listID, itemID) + "/GetSharingInformation",
		query:   spquery.ListItemSharingInfoOptions(),
	})
	if err != nil {
		return nil, fmt.Errorf("get sharing information of item %d: %w", itemID, err)
	}
	return sharepoint.Decode[sharepoint.SharingInformation](resp.body, resp.contentType)
}

// GetListItemFieldValuesAsText returns every field of an item rendered as
// display text.
func (s *Service) GetListItemFieldValuesAsText(ctx context.Context, siteURL, listID string, itemID int) (map[string]string, error) {
	siteURL, listID, err := s.itemArgs(siteURL, listID, itemID)
	if err != nil {
		return nil, err
	}
	raw, err := getEntity[map[string]any](ctx, s, siteURL, itemPath(listID, itemID)+"/FieldValuesAsText", nil)
	if err != nil {
		return nil, fmt.Errorf("get field values of item %d: %w", itemID, err)
	}
	out := make(map[string]string, len(*raw))
	for k, v := range *raw {
		if k == odata.TypeKey || v == nil {
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out, nil
}

// GetMaxListItemID returns the highest item id in a list, or 0 for an
// empty list.
func (s *Service) GetMaxListItemID(ctx context.Context, siteURL, listID string) (int, error) {
	return s.boundaryItemID(ctx, siteURL, listID, spquery.ListItemMaxIDOptions())
}

// GetMinListItemID returns the lowest item id in a list, or 0 for an empty
// list.
func (s *Service) GetMinListItemID(ctx context.Context, siteURL, listID string) (int, error) {
	return s.boundaryItemID(ctx, siteURL, listID, spquery.ListItemMinIDOptions())
}

func (s *Service) boundaryItemID(ctx context.Context, siteURL, listID string, opts []odata.QueryOption) (int, error) {
	opts = append(opts, odata.Select{Fields: []string{"Id"}})
	items, err := s.GetListItems(ctx, siteURL, listID, opts...)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}
	return items[0].ID, nil
}

// WalkListItems pages through every item of list in id order, calling fn
// once per page. It stops at the first short page or when fn returns an
// error.
func (s *Service) WalkListItems(ctx context.Context, siteURL string, list *sharepoint.List, pageSize int, mode spquery.Mode, fn func([]sharepoint.ListItem) error) error {
	if list == nil {
		return fmt.Errorf("%w: nil list", ErrInvalidArgument)
	}
	if pageSize <= 0 {
		return fmt.Errorf("%w: page size must be positive", ErrInvalidArgument)
	}

	base := spquery.ListItemOptions(list, mode)
	lastID := -1
	for {
		opts := append(append([]odata.QueryOption{}, base...), spquery.ListItemPagination(lastID, pageSize)...)
		items, err := s.GetListItems(ctx, siteURL, list.ID, opts...)
		if err != nil {
			return err
		}
		if len(items) > 0 {
			next := items[len(items)-1].ID
			if next <= lastID {
				return fmt.Errorf("%w: list %s returned id %d after %d", ErrPagingStalled, list.ID, next, lastID)
			}
			if err := fn(items); err != nil {
				return err
			}
			lastID = next
		}
		if len(items) < pageSize {
			return nil
		}
	}
}

func (s *Service) itemArgs(siteURL, listID string, itemID int) (string, string, error) {
	siteURL, listID, err := s.listArgs(siteURL, listID)
	if err != nil {
		return "", "", err
	}
	if err := validateID("item id", itemID); err != nil {
		return "", "", err
	}
	return siteURL, listID, nil
}
