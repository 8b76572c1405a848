package spclient

import (
	"context"
	"encoding/json"
	"fmt"

	"spshare/domain/sharepoint"
	"spshare/odata"
)

func (s *Service) GetFolder(ctx context.Context, siteURL, folderURL string, opts ...odata.QueryOption) (*sharepoint.Folder, error) {
	siteURL, err := s.pathArgs(siteURL, "folder url", folderURL)
	if err != nil {
		return nil, err
	}
	f, err := getEntity[sharepoint.Folder](ctx, s, siteURL, folderByURLPath(folderURL), opts)
	if err != nil {
		return nil, fmt.Errorf("get folder %s: %w", folderURL, err)
	}
	return f, nil
}

// GetFolders returns the subfolders directly inside a folder.
func (s *Service) GetFolders(ctx context.Context, siteURL, folderURL string, opts ...odata.QueryOption) ([]sharepoint.Folder, error) {
	siteURL, err := s.pathArgs(siteURL, "folder url", folderURL)
	if err != nil {
		return nil, err
	}
	folders, err := getCollection[sharepoint.Folder](ctx, s, siteURL, folderByURLPath(folderURL)+"/Folders", opts)
	if err != nil {
		return nil, fmt.Errorf("get folders of %s: %w", folderURL, err)
	}
	return folders, nil
}

// CreateFolder creates the folder at a server relative URL.
func (s *Service) CreateFolder(ctx context.Context, siteURL, folderURL string) (*sharepoint.Folder, error) {
	siteURL, err := s.pathArgs(siteURL, "folder url", folderURL)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(struct {
		Metadata          sharepoint.Metadata `json:"__metadata"`
		ServerRelativeURL string              `json:"ServerRelativeUrl"`
	}{sharepoint.Metadata{Type: "SP.Folder"}, folderURL})
	if err != nil {
		return nil, err
	}
	f, err := postEntity[sharepoint.Folder](ctx, s, siteURL, "_api/web/folders", body)
	if err != nil {
		return nil, fmt.Errorf("create folder %s: %w", folderURL, err)
	}
	return f, nil
}

func (s *Service) DeleteFolder(ctx context.Context, siteURL, folderURL string) error {
	siteURL, err := s.pathArgs(siteURL, "folder url", folderURL)
	if err != nil {
		return err
	}
	if err := s.delete(ctx, siteURL, folderByURLPath(folderURL)); err != nil {
		return fmt.Errorf("delete folder %s: %w", folderURL, err)
	}
	return nil
}

// GetFolderListItem returns the list item backing a folder.
func (s *Service) GetFolderListItem(ctx context.Context, siteURL, folderURL string, opts ...odata.QueryOption) (*sharepoint.ListItem, error) {
	siteURL, err := s.pathArgs(siteURL, "folder url", folderURL)
	if err != nil {
		return nil, err
	}
	item, err := getEntity[sharepoint.ListItem](ctx, s, siteURL, folderByURLPath(folderURL)+"/ListItemAllFields", opts)
	if err != nil {
		return nil, fmt.Errorf("get list item of folder %s: %w", folderURL, err)
	}
	return item, nil
}
