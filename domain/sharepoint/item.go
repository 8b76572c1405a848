package sharepoint

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ListItem is an SP.ListItem. The typed fields cover what the catalog and
// query presets rely on; every returned property is also kept in Fields.
type ListItem struct {
	ID                       int                  `json:"Id"`
	GUID                     string               `json:"GUID,omitempty"`
	Title                    string               `json:"Title,omitempty"`
	FileSystemObjectType     FileSystemObjectType `json:"FileSystemObjectType"`
	FileRef                  string               `json:"FileRef,omitempty"`
	FileLeafRef              string               `json:"FileLeafRef,omitempty"`
	FileDirRef               string               `json:"FileDirRef,omitempty"`
	ContentTypeID            string               `json:"ContentTypeId,omitempty"`
	Created                  Time                 `json:"Created"`
	Modified                 Time                 `json:"Modified"`
	HasUniqueRoleAssignments bool                 `json:"HasUniqueRoleAssignments"`
	UIVersionString          string               `json:"OData__UIVersionString,omitempty"`
	File                     *File                `json:"File,omitempty"`
	AttachmentFiles          []Attachment         `json:"AttachmentFiles,omitempty"`
	Versions                 []ListItemVersion    `json:"Versions,omitempty"`
	FieldValuesAsText        map[string]any       `json:"FieldValuesAsText,omitempty"`

	Fields map[string]any `json:"-"`
}

func (i *ListItem) UnmarshalJSON(b []byte) error {
	type plain ListItem
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	*i = ListItem(p)
	i.Fields = fields
	return nil
}

// MarshalJSON emits the full property bag so catalogued items keep every
// field that was loaded.
func (i ListItem) MarshalJSON() ([]byte, error) {
	if i.Fields != nil {
		return json.Marshal(i.Fields)
	}
	type plain ListItem
	return json.Marshal(plain(i))
}

// Value returns a raw property by internal name.
func (i *ListItem) Value(name string) (any, bool) {
	v, ok := i.Fields[name]
	return v, ok
}

// Text returns a property formatted as text, preferring FieldValuesAsText.
func (i *ListItem) Text(name string) string {
	if v, ok := i.FieldValuesAsText[name]; ok && v != nil {
		return fmt.Sprint(v)
	}
	if v, ok := i.Fields[name]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

func (i *ListItem) IsFolder() bool {
	return i.FileSystemObjectType == FileSystemObjectTypeFolder
}

// IsFile reports whether the item is backed by a document.
func (i *ListItem) IsFile() bool {
	return i.FileSystemObjectType == FileSystemObjectTypeFile && (i.File != nil || strings.Contains(i.FileLeafRef, "."))
}

// FileSize returns the size of the backing document when File/Properties
// was expanded.
func (i *ListItem) FileSize() int64 {
	if i.File == nil {
		return 0
	}
	if i.File.Length > 0 {
		return int64(i.File.Length)
	}
	if v, ok := i.File.Properties["vti_x005f_filesize"]; ok {
		var n Int64
		raw, _ := json.Marshal(v)
		if err := n.UnmarshalJSON(raw); err == nil {
			return int64(n)
		}
	}
	return 0
}

// ItemValues is the property bag written by create and update.
type ItemValues map[string]any

// Body renders the POST/MERGE payload for an item of the given entity
// type (List.ListItemEntityTypeFullName).
func (v ItemValues) Body(entityType string) ([]byte, error) {
	out := make(map[string]any, len(v)+1)
	for k, val := range v {
		out[k] = val
	}
	out["__metadata"] = Metadata{Type: entityType}
	return json.Marshal(out)
}

// Attachment is SP.Attachment.
type Attachment struct {
	FileName          string `json:"FileName"`
	ServerRelativeURL string `json:"ServerRelativeUrl"`
}

// ListItemVersion is SP.ListItemVersion.
type ListItemVersion struct {
	VersionID        int    `json:"VersionId"`
	VersionLabel     string `json:"VersionLabel"`
	IsCurrentVersion bool   `json:"IsCurrentVersion"`
	Created          Time   `json:"Created"`
}

// CamlQuery selects list items with a CAML view.
type CamlQuery struct {
	ViewXML                 string
	FolderServerRelativeURL string
	DatesInUtc              bool
}

// Body renders the GetItems payload.
func (q CamlQuery) Body() ([]byte, error) {
	query := map[string]any{
		"__metadata": Metadata{Type: "SP.CamlQuery"},
		"ViewXml":    q.ViewXML,
		"DatesInUtc": q.DatesInUtc,
	}
	if q.FolderServerRelativeURL != "" {
		query["FolderServerRelativeUrl"] = q.FolderServerRelativeURL
	}
	return json.Marshal(map[string]any{"query": query})
}

// SharingInformation is the result of GetSharingInformation. The
// permissions payload is kept verbatim.
type SharingInformation struct {
	CanManagePermissions   bool            `json:"canManagePermissions"`
	HasUniquePermissions   bool            `json:"hasUniquePermissions"`
	PermissionsInformation json.RawMessage `json:"permissionsInformation,omitempty"`
}
