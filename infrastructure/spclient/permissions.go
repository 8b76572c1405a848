package spclient

import (
	"context"
	"fmt"

	"spshare/domain/sharepoint"
	"spshare/odata"
)

func (s *Service) scopePath(siteURL string, scope sharepoint.RoleAssignmentScope) (string, string, error) {
	switch scope.Kind() {
	case "web":
		siteURL, err := normalizeSiteURL(siteURL)
		return siteURL, "_api/web", err
	case "list":
		siteURL, listID, err := s.listArgs(siteURL, scope.ListID)
		return siteURL, listPath(listID), err
	default:
		siteURL, listID, err := s.itemArgs(siteURL, scope.ListID, scope.ItemID)
		return siteURL, itemPath(listID, scope.ItemID), err
	}
}

// GetRoleAssignments returns the role assignments of a web, list or item.
// Use spquery.RoleAssignmentOptions to expand members and bindings.
func (s *Service) GetRoleAssignments(ctx context.Context, siteURL string, scope sharepoint.RoleAssignmentScope, opts ...odata.QueryOption) ([]sharepoint.RoleAssignment, error) {
	siteURL, path, err := s.scopePath(siteURL, scope)
	if err != nil {
		return nil, err
	}
	ras, err := getCollection[sharepoint.RoleAssignment](ctx, s, siteURL, path+"/roleassignments", opts)
	if err != nil {
		return nil, fmt.Errorf("get %s role assignments: %w", scope.Kind(), err)
	}
	return ras, nil
}

// GetRoleDefinitions returns the permission levels of a web.
func (s *Service) GetRoleDefinitions(ctx context.Context, siteURL string, opts ...odata.QueryOption) ([]sharepoint.RoleDefinition, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}
	defs, err := getCollection[sharepoint.RoleDefinition](ctx, s, siteURL, "_api/web/roledefinitions", opts)
	if err != nil {
		return nil, fmt.Errorf("get role definitions: %w", err)
	}
	return defs, nil
}

// BreakRoleInheritance gives a securable object its own role assignments.
func (s *Service) BreakRoleInheritance(ctx context.Context, siteURL string, scope sharepoint.RoleAssignmentScope, copyRoleAssignments, clearSubscopes bool) error {
	siteURL, path, err := s.scopePath(siteURL, scope)
	if err != nil {
		return err
	}
	path = fmt.Sprintf("%s/breakroleinheritance(copyRoleAssignments=%t,clearSubscopes=%t)", path, copyRoleAssignments, clearSubscopes)
	if err := s.call(ctx, siteURL, path, nil); err != nil {
		return fmt.Errorf("break %s role inheritance: %w", scope.Kind(), err)
	}
	return nil
}

// ResetRoleInheritance makes a securable object inherit from its parent
// again.
func (s *Service) ResetRoleInheritance(ctx context.Context, siteURL string, scope sharepoint.RoleAssignmentScope) error {
	siteURL, path, err := s.scopePath(siteURL, scope)
	if err != nil {
		return err
	}
	if err := s.call(ctx, siteURL, path+"/resetroleinheritance", nil); err != nil {
		return fmt.Errorf("reset %s role inheritance: %w", scope.Kind(), err)
	}
	return nil
}

func (s *Service) AddRoleAssignment(ctx context.Context, siteURL string, scope sharepoint.RoleAssignmentScope, principalID, roleDefinitionID int) error {
	return s.changeRoleAssignment(ctx, siteURL, scope, "addroleassignment", principalID, roleDefinitionID)
}

func (s *Service) RemoveRoleAssignment(ctx context.Context, siteURL string, scope sharepoint.RoleAssignmentScope, principalID, roleDefinitionID int) error {
	return s.changeRoleAssignment(ctx, siteURL, scope, "removeroleassignment", principalID, roleDefinitionID)
}

func (s *Service) changeRoleAssignment(ctx context.Context, siteURL string, scope sharepoint.RoleAssignmentScope, op string, principalID, roleDefinitionID int) error {
	siteURL, path, err := s.scopePath(siteURL, scope)
	if err != nil {
		return err
	}
	if err := validateID("principal id", principalID); err != nil {
		return err
	}
	if err := validateID("role definition id", roleDefinitionID); err != nil {
		return err
	}
	path = fmt.Sprintf("%s/roleassignments/%s(principalid=%d,roledefid=%d)", path, op, principalID, roleDefinitionID)
	if err := s.call(ctx, siteURL, path, nil); err != nil {
		return fmt.Errorf("%s on %s: %w", op, scope.Kind(), err)
	}
	return nil
}
