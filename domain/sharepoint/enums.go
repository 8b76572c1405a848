package sharepoint

import "fmt"

// ListTemplateType is SP.ListTemplateType (List.BaseTemplate).
type ListTemplateType int

const (
	ListTemplateGenericList      ListTemplateType = 100
	ListTemplateDocumentLibrary  ListTemplateType = 101
	ListTemplateSurvey           ListTemplateType = 102
	ListTemplateLinks            ListTemplateType = 103
	ListTemplateAnnouncements    ListTemplateType = 104
	ListTemplateContacts         ListTemplateType = 105
	ListTemplateEvents           ListTemplateType = 106
	ListTemplateTasks            ListTemplateType = 107
	ListTemplateDiscussionBoard  ListTemplateType = 108
	ListTemplatePictureLibrary   ListTemplateType = 109
	ListTemplateUserInformation  ListTemplateType = 112
	ListTemplateWebPageLibrary   ListTemplateType = 119
	ListTemplateAppRequests      ListTemplateType = 330
	ListTemplateExternalList     ListTemplateType = 600
	ListTemplateIssueTracking    ListTemplateType = 1100
	ListTemplateGanttTasks       ListTemplateType = 150
	ListTemplateMySiteDocLibrary ListTemplateType = 700
)

func (t ListTemplateType) String() string {
	switch t {
	case ListTemplateGenericList:
		return "GenericList"
	case ListTemplateDocumentLibrary:
		return "DocumentLibrary"
	case ListTemplateSurvey:
		return "Survey"
	case ListTemplateLinks:
		return "Links"
	case ListTemplateAnnouncements:
		return "Announcements"
	case ListTemplateContacts:
		return "Contacts"
	case ListTemplateEvents:
		return "Events"
	case ListTemplateTasks:
		return "Tasks"
	case ListTemplateDiscussionBoard:
		return "DiscussionBoard"
	case ListTemplatePictureLibrary:
		return "PictureLibrary"
	case ListTemplateUserInformation:
		return "UserInformation"
	case ListTemplateWebPageLibrary:
		return "WebPageLibrary"
	case ListTemplateAppRequests:
		return "AppRequests"
	case ListTemplateExternalList:
		return "ExternalList"
	case ListTemplateIssueTracking:
		return "IssueTracking"
	case ListTemplateGanttTasks:
		return "GanttTasks"
	case ListTemplateMySiteDocLibrary:
		return "MySiteDocumentLibrary"
	default:
		return fmt.Sprintf("Unknown (%d)", int(t))
	}
}

// BaseType is SP.BaseType (List.BaseType).
type BaseType int

const (
	BaseTypeGenericList     BaseType = 0
	BaseTypeDocumentLibrary BaseType = 1
	BaseTypeDiscussionBoard BaseType = 3
	BaseTypeSurvey          BaseType = 4
	BaseTypeIssue           BaseType = 5
)

// FileSystemObjectType distinguishes files from folders in list items.
type FileSystemObjectType int

const (
	FileSystemObjectTypeInvalid FileSystemObjectType = -1
	FileSystemObjectTypeFile    FileSystemObjectType = 0
	FileSystemObjectTypeFolder  FileSystemObjectType = 1
	FileSystemObjectTypeWeb     FileSystemObjectType = 2
)

// PrincipalType is SP.Utilities.PrincipalType.
type PrincipalType int

const (
	PrincipalTypeNone             PrincipalType = 0
	PrincipalTypeUser             PrincipalType = 1
	PrincipalTypeDistributionList PrincipalType = 2
	PrincipalTypeSecurityGroup    PrincipalType = 4
	PrincipalTypeSharePointGroup  PrincipalType = 8
	PrincipalTypeAll              PrincipalType = 15
)

func (p PrincipalType) String() string {
	switch p {
	case PrincipalTypeUser:
		return "User"
	case PrincipalTypeDistributionList:
		return "DistributionList"
	case PrincipalTypeSecurityGroup:
		return "SecurityGroup"
	case PrincipalTypeSharePointGroup:
		return "SharePointGroup"
	case PrincipalTypeNone:
		return "None"
	default:
		return fmt.Sprintf("Unknown (%d)", int(p))
	}
}

// RoleType is SP.RoleType (RoleDefinition.RoleTypeKind).
type RoleType int

const (
	RoleTypeNone          RoleType = 0
	RoleTypeGuest         RoleType = 1
	RoleTypeReader        RoleType = 2
	RoleTypeContributor   RoleType = 3
	RoleTypeWebDesigner   RoleType = 4
	RoleTypeAdministrator RoleType = 5
	RoleTypeEditor        RoleType = 6
)

func (r RoleType) String() string {
	switch r {
	case RoleTypeNone:
		return "None"
	case RoleTypeGuest:
		return "Guest"
	case RoleTypeReader:
		return "Reader"
	case RoleTypeContributor:
		return "Contributor"
	case RoleTypeWebDesigner:
		return "WebDesigner"
	case RoleTypeAdministrator:
		return "Administrator"
	case RoleTypeEditor:
		return "Editor"
	default:
		return fmt.Sprintf("Unknown (%d)", int(r))
	}
}

// FieldTypeBusinessData is the TypeAsString of external data columns.
const FieldTypeBusinessData = "BusinessData"

// HiddenFieldGroup is the group SharePoint files system fields under.
const HiddenFieldGroup = "_Hidden"
