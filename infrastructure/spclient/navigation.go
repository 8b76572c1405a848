package spclient

import (
	"context"
	"fmt"

	"spshare/domain/sharepoint"
	"spshare/odata"
)

// NavigationLocation is one of the two web navigation collections.
type NavigationLocation string

const (
	QuickLaunch      NavigationLocation = "QuickLaunch"
	TopNavigationBar NavigationLocation = "TopNavigationBar"
)

func (s *Service) GetQuickLaunch(ctx context.Context, siteURL string, opts ...odata.QueryOption) ([]sharepoint.NavigationNode, error) {
	return s.getNavigation(ctx, siteURL, QuickLaunch, opts)
}

func (s *Service) GetTopNavigationBar(ctx context.Context, siteURL string, opts ...odata.QueryOption) ([]sharepoint.NavigationNode, error) {
	return s.getNavigation(ctx, siteURL, TopNavigationBar, opts)
}

func (s *Service) getNavigation(ctx context.Context, siteURL string, loc NavigationLocation, opts []odata.QueryOption) ([]sharepoint.NavigationNode, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}
	nodes, err := getCollection[sharepoint.NavigationNode](ctx, s, siteURL, "_api/web/navigation/"+string(loc), opts)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", loc, err)
	}
	return nodes, nil
}

func (s *Service) GetNavigationNodeChildren(ctx context.Context, siteURL string, nodeID int, opts ...odata.QueryOption) ([]sharepoint.NavigationNode, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}
	if err := validateID("node id", nodeID); err != nil {
		return nil, err
	}
	nodes, err := getCollection[sharepoint.NavigationNode](ctx, s, siteURL, fmt.Sprintf("_api/web/navigation/GetNodeById(%d)/Children", nodeID), opts)
	if err != nil {
		return nil, fmt.Errorf("get children of node %d: %w", nodeID, err)
	}
	return nodes, nil
}

// AddNavigationNode appends a node to the QuickLaunch or top navigation
// bar.
func (s *Service) AddNavigationNode(ctx context.Context, siteURL string, loc NavigationLocation, node sharepoint.NavigationNodeCreation) (*sharepoint.NavigationNode, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}
	if loc != QuickLaunch && loc != TopNavigationBar {
		return nil, fmt.Errorf("%w: navigation location %q", ErrInvalidArgument, loc)
	}
	if err := requireValue("node title", node.Title); err != nil {
		return nil, err
	}
	body, err := node.Body()
	if err != nil {
		return nil, err
	}
	created, err := postEntity[sharepoint.NavigationNode](ctx, s, siteURL, "_api/web/navigation/"+string(loc), body)
	if err != nil {
		return nil, fmt.Errorf("add node to %s: %w", loc, err)
	}
	return created, nil
}

func (s *Service) DeleteNavigationNode(ctx context.Context, siteURL string, nodeID int) error {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return err
	}
	if err := validateID("node id", nodeID); err != nil {
		return err
	}
	if err := s.delete(ctx, siteURL, fmt.Sprintf("_api/web/navigation/GetNodeById(%d)", nodeID)); err != nil {
		return fmt.Errorf("delete node %d: %w", nodeID, err)
	}
	return nil
}
