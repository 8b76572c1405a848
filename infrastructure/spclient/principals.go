package spclient

import (
	"context"
	"encoding/json"
	"fmt"

	"spshare/domain/sharepoint"
	"spshare/odata"
)

func groupPath(groupID int) string {
	return fmt.Sprintf("_api/web/sitegroups/GetById(%d)", groupID)
}

// GetGroups returns the SharePoint groups of the site collection.
func (s *Service) GetGroups(ctx context.Context, siteURL string, opts ...odata.QueryOption) ([]sharepoint.Group, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}
	groups, err := getCollection[sharepoint.Group](ctx, s, siteURL, "_api/web/sitegroups", opts)
	if err != nil {
		return nil, fmt.Errorf("get groups: %w", err)
	}
	return groups, nil
}

func (s *Service) GetGroup(ctx context.Context, siteURL string, groupID int, opts ...odata.QueryOption) (*sharepoint.Group, error) {
	siteURL, err := s.groupArgs(siteURL, groupID)
	if err != nil {
		return nil, err
	}
	g, err := getEntity[sharepoint.Group](ctx, s, siteURL, groupPath(groupID), opts)
	if err != nil {
		return nil, fmt.Errorf("get group %d: %w", groupID, err)
	}
	return g, nil
}

func (s *Service) GetGroupUsers(ctx context.Context, siteURL string, groupID int, opts ...odata.QueryOption) ([]sharepoint.User, error) {
	siteURL, err := s.groupArgs(siteURL, groupID)
	if err != nil {
		return nil, err
	}
	users, err := getCollection[sharepoint.User](ctx, s, siteURL, groupPath(groupID)+"/users", opts)
	if err != nil {
		return nil, fmt.Errorf("get users of group %d: %w", groupID, err)
	}
	return users, nil
}

// GetUsers returns the site users.
func (s *Service) GetUsers(ctx context.Context, siteURL string, opts ...odata.QueryOption) ([]sharepoint.User, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}
	users, err := getCollection[sharepoint.User](ctx, s, siteURL, "_api/web/siteusers", opts)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	return users, nil
}

// EnsureUser resolves a login name, adding the user to the site when it
// is not yet known there.
func (s *Service) EnsureUser(ctx context.Context, siteURL, loginName string) (*sharepoint.User, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}
	if err := requireValue("login name", loginName); err != nil {
		return nil, err
	}
	body, err := json.Marshal(map[string]string{"logonName": loginName})
	if err != nil {
		return nil, err
	}
	u, err := postEntity[sharepoint.User](ctx, s, siteURL, "_api/web/ensureuser", body)
	if err != nil {
		return nil, fmt.Errorf("ensure user %s: %w", loginName, err)
	}
	return u, nil
}

func (s *Service) AddUserToGroup(ctx context.Context, siteURL string, groupID int, loginName string) (*sharepoint.User, error) {
	siteURL, err := s.groupArgs(siteURL, groupID)
	if err != nil {
		return nil, err
	}
	if err := requireValue("login name", loginName); err != nil {
		return nil, err
	}
	body, err := json.Marshal(struct {
		Metadata  sharepoint.Metadata `json:"__metadata"`
		LoginName string              `json:"LoginName"`
	}{sharepoint.Metadata{Type: "SP.User"}, loginName})
	if err != nil {
		return nil, err
	}
	u, err := postEntity[sharepoint.User](ctx, s, siteURL, groupPath(groupID)+"/users", body)
	if err != nil {
		return nil, fmt.Errorf("add %s to group %d: %w", loginName, groupID, err)
	}
	return u, nil
}

func (s *Service) groupArgs(siteURL string, groupID int) (string, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return "", err
	}
	if err := validateID("group id", groupID); err != nil {
		return "", err
	}
	return siteURL, nil
}
