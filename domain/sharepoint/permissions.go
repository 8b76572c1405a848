package sharepoint

// Principal is the common shape of users and groups (SP.Principal).
type Principal struct {
	ID            int           `json:"Id"`
	Title         string        `json:"Title"`
	LoginName     string        `json:"LoginName"`
	Email         string        `json:"Email,omitempty"`
	PrincipalType PrincipalType `json:"PrincipalType"`
	IsHiddenInUI  bool          `json:"IsHiddenInUI"`
}

func (p *Principal) IsUser() bool {
	return p.PrincipalType == PrincipalTypeUser
}

// IsGroup reports whether the principal is a directory or SharePoint group.
func (p *Principal) IsGroup() bool {
	switch p.PrincipalType {
	case PrincipalTypeSecurityGroup, PrincipalTypeDistributionList, PrincipalTypeSharePointGroup:
		return true
	}
	return false
}

// DisplayName returns the best display name for the principal
func (p *Principal) DisplayName() string {
	if p.Title != "" {
		return p.Title
	}
	if p.LoginName != "" {
		return p.LoginName
	}
	return p.Email
}

// User is an SP.User.
type User struct {
	Principal
	IsSiteAdmin bool          `json:"IsSiteAdmin"`
	UserID      *UserIdentity `json:"UserId,omitempty"`
}

// UserIdentity is SP.UserIdInfo.
type UserIdentity struct {
	NameID       string `json:"NameId"`
	NameIDIssuer string `json:"NameIdIssuer"`
}

// Group is an SP.Group with Users and Owner optionally expanded.
type Group struct {
	Principal
	Description                    string     `json:"Description"`
	OwnerTitle                     string     `json:"OwnerTitle"`
	AllowMembersEditMembership     bool       `json:"AllowMembersEditMembership"`
	AllowRequestToJoinLeave        bool       `json:"AllowRequestToJoinLeave"`
	OnlyAllowMembersViewMembership bool       `json:"OnlyAllowMembersViewMembership"`
	Owner                          *Principal `json:"Owner,omitempty"`
	Users                          []User     `json:"Users,omitempty"`
}

// BasePermissions is the SP.BasePermissions bit mask.
type BasePermissions struct {
	High Int64 `json:"High"`
	Low  Int64 `json:"Low"`
}

// RoleDefinition is a permission level (SP.RoleDefinition).
type RoleDefinition struct {
	ID              int             `json:"Id"`
	Name            string          `json:"Name"`
	Description     string          `json:"Description"`
	Hidden          bool            `json:"Hidden"`
	Order           int             `json:"Order"`
	RoleTypeKind    RoleType        `json:"RoleTypeKind"`
	BasePermissions BasePermissions `json:"BasePermissions"`
}

// RoleAssignment binds a principal to role definitions on a securable
// object (SP.RoleAssignment).
type RoleAssignment struct {
	PrincipalID            int              `json:"PrincipalId"`
	Member                 *Principal       `json:"Member,omitempty"`
	RoleDefinitionBindings []RoleDefinition `json:"RoleDefinitionBindings,omitempty"`
}

// RoleDefinitionIDs returns the ids of the bound role definitions.
func (a *RoleAssignment) RoleDefinitionIDs() []int {
	ids := make([]int, 0, len(a.RoleDefinitionBindings))
	for _, rd := range a.RoleDefinitionBindings {
		ids = append(ids, rd.ID)
	}
	return ids
}

// RoleAssignmentScope names the securable object a role assignment
// operation targets.
type RoleAssignmentScope struct {
	ListID string
	ItemID int
}

// WebScope targets the web itself.
func WebScope() RoleAssignmentScope {
	return RoleAssignmentScope{}
}

// ListScope targets a list.
func ListScope(listID string) RoleAssignmentScope {
	return RoleAssignmentScope{ListID: listID}
}

// ItemScope targets a list item.
func ItemScope(listID string, itemID int) RoleAssignmentScope {
	return RoleAssignmentScope{ListID: listID, ItemID: itemID}
}

// Kind returns "web", "list" or "item".
func (s RoleAssignmentScope) Kind() string {
	switch {
	case s.ListID == "":
		return "web"
	case s.ItemID <= 0:
		return "list"
	default:
		return "item"
	}
}
