package sharepoint

import (
	"encoding/json"
	"encoding/xml"
	"strings"
)

// List represents a SharePoint list or document library (SP.List).
type List struct {
	ID                         string            `json:"Id"`
	Title                      string            `json:"Title"`
	Description                string            `json:"Description"`
	BaseTemplate               ListTemplateType  `json:"BaseTemplate"`
	BaseType                   BaseType          `json:"BaseType"`
	Created                    Time              `json:"Created"`
	LastItemModifiedDate       Time              `json:"LastItemModifiedDate"`
	ItemCount                  int               `json:"ItemCount"`
	Hidden                     bool              `json:"Hidden"`
	AllowDeletion              bool              `json:"AllowDeletion"`
	OnQuickLaunch              bool              `json:"OnQuickLaunch"`
	HasUniqueRoleAssignments   bool              `json:"HasUniqueRoleAssignments"`
	EnableVersioning           bool              `json:"EnableVersioning"`
	EnableMinorVersions        bool              `json:"EnableMinorVersions"`
	EnableAttachments          bool              `json:"EnableAttachments"`
	EnableFolderCreation       bool              `json:"EnableFolderCreation"`
	ContentTypesEnabled        bool              `json:"ContentTypesEnabled"`
	ForceCheckout              bool              `json:"ForceCheckout"`
	MajorVersionLimit          int               `json:"MajorVersionLimit"`
	EntityTypeName             string            `json:"EntityTypeName"`
	ListItemEntityTypeFullName string            `json:"ListItemEntityTypeFullName"`
	ParentWebURL               string            `json:"ParentWebUrl"`
	RootFolder                 *Folder           `json:"RootFolder,omitempty"`
	DataSource                 map[string]any    `json:"DataSource,omitempty"`
	Fields                     []FieldDefinition `json:"Fields,omitempty"`
}

// IsUserInformationList reports whether the list is the hidden site user
// information list.
func (l *List) IsUserInformationList() bool {
	return l.BaseTemplate == ListTemplateUserInformation
}

// IsDocumentLibrary reports whether the list derives from the document
// library base type (pictures, pages, forms and so on included).
func (l *List) IsDocumentLibrary() bool {
	return l.BaseType == BaseTypeDocumentLibrary
}

func (l *List) IsSurvey() bool {
	return l.BaseTemplate == ListTemplateSurvey || l.BaseType == BaseTypeSurvey
}

func (l *List) IsEventList() bool {
	return l.BaseTemplate == ListTemplateEvents
}

// IsAppRequestList reports whether the list is an app catalog request
// list. These report attachments as enabled but reject AttachmentFiles.
func (l *List) IsAppRequestList() bool {
	return l.BaseTemplate == ListTemplateAppRequests || l.EntityTypeName == "AppRequestsList"
}

// ServerRelativeURL returns the root folder URL when it was expanded.
func (l *List) ServerRelativeURL() string {
	if l.RootFolder == nil {
		return ""
	}
	return l.RootFolder.ServerRelativeURL
}

// ExternalDataRelatedFields returns the related field names of every
// external data (BusinessData) column in the expanded field definitions.
func (l *List) ExternalDataRelatedFields() []string {
	var out []string
	for _, def := range l.Fields {
		if !IsExternalData(def.TypeAsString) {
			continue
		}
		if f := def.RelatedField(); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// FieldDefinition is the minimal field projection loaded with a list.
type FieldDefinition struct {
	InternalName  string `json:"InternalName"`
	FieldTypeKind int    `json:"FieldTypeKind"`
	TypeAsString  string `json:"TypeAsString"`
	SchemaXML     string `json:"SchemaXml"`
}

// RelatedField reads the RelatedField attribute from the field schema.
func (d FieldDefinition) RelatedField() string {
	if d.SchemaXML == "" {
		return ""
	}
	var schema struct {
		RelatedField string `xml:"RelatedField,attr"`
	}
	if err := xml.Unmarshal([]byte(d.SchemaXML), &schema); err != nil {
		return ""
	}
	return strings.TrimSpace(schema.RelatedField)
}

// IsExternalData reports whether a TypeAsString names an external data column.
func IsExternalData(typeAsString string) bool {
	return strings.EqualFold(typeAsString, FieldTypeBusinessData)
}

// ListCreationInfo describes a list to create.
type ListCreationInfo struct {
	Title               string           `json:"Title"`
	Description         string           `json:"Description,omitempty"`
	BaseTemplate        ListTemplateType `json:"BaseTemplate"`
	AllowContentTypes   bool             `json:"AllowContentTypes"`
	ContentTypesEnabled bool             `json:"ContentTypesEnabled"`
	EnableVersioning    bool             `json:"EnableVersioning"`
	Hidden              bool             `json:"Hidden"`
	OnQuickLaunch       bool             `json:"OnQuickLaunch"`
}

// Body renders the POST /lists payload.
func (c ListCreationInfo) Body() ([]byte, error) {
	return json.Marshal(struct {
		Metadata Metadata `json:"__metadata"`
		ListCreationInfo
	}{Metadata{Type: "SP.List"}, c})
}

// ListUpdate is a MERGE payload for the writable list settings. Nil
// pointers are left untouched on the server.
type ListUpdate struct {
	Title             *string `json:"Title,omitempty"`
	Description       *string `json:"Description,omitempty"`
	Hidden            *bool   `json:"Hidden,omitempty"`
	OnQuickLaunch     *bool   `json:"OnQuickLaunch,omitempty"`
	EnableVersioning  *bool   `json:"EnableVersioning,omitempty"`
	EnableAttachments *bool   `json:"EnableAttachments,omitempty"`
	MajorVersionLimit *int    `json:"MajorVersionLimit,omitempty"`
}

// Body renders the MERGE payload.
func (u ListUpdate) Body() ([]byte, error) {
	return json.Marshal(struct {
		Metadata Metadata `json:"__metadata"`
		ListUpdate
	}{Metadata{Type: "SP.List"}, u})
}

// Field is an SP.Field.
type Field struct {
	ID                  string `json:"Id"`
	InternalName        string `json:"InternalName"`
	StaticName          string `json:"StaticName"`
	Title               string `json:"Title"`
	Description         string `json:"Description"`
	Group               string `json:"Group"`
	TypeAsString        string `json:"TypeAsString"`
	FieldTypeKind       int    `json:"FieldTypeKind"`
	Hidden              bool   `json:"Hidden"`
	ReadOnlyField       bool   `json:"ReadOnlyField"`
	Required            bool   `json:"Required"`
	Sealed              bool   `json:"Sealed"`
	CanBeDeleted        bool   `json:"CanBeDeleted"`
	EnforceUniqueValues bool   `json:"EnforceUniqueValues"`
	SchemaXML           string `json:"SchemaXml"`
}

// IsHidden reports whether the field is hidden either by flag or by
// living in the _Hidden group.
func (f *Field) IsHidden() bool {
	return f.Hidden || f.Group == HiddenFieldGroup
}

// ContentTypeID is the complex SP.ContentTypeId.
type ContentTypeID struct {
	StringValue string `json:"StringValue"`
}

// ContentType is an SP.ContentType.
type ContentType struct {
	ID                   ContentTypeID    `json:"Id"`
	Name                 string           `json:"Name"`
	Description          string           `json:"Description"`
	Group                string           `json:"Group"`
	Hidden               bool             `json:"Hidden"`
	ReadOnly             bool             `json:"ReadOnly"`
	Sealed               bool             `json:"Sealed"`
	SchemaXML            string           `json:"SchemaXml"`
	Parent               *ContentType     `json:"Parent,omitempty"`
	Fields               []Field          `json:"Fields,omitempty"`
	WorkflowAssociations []map[string]any `json:"WorkflowAssociations,omitempty"`
}

// ListDataItem is an entry from the legacy ListData.svc endpoint.
type ListDataItem struct {
	ID          int    `json:"Id"`
	Name        string `json:"Name"`
	Path        string `json:"Path"`
	ContentType string `json:"ContentType"`
	Title       string `json:"Title"`
	Created     Time   `json:"Created"`
	Modified    Time   `json:"Modified"`
}
