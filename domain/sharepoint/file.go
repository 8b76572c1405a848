package sharepoint

// File is an SP.File.
type File struct {
	Name              string         `json:"Name"`
	ServerRelativeURL string         `json:"ServerRelativeUrl"`
	UniqueID          string         `json:"UniqueId"`
	Length            Int64          `json:"Length"`
	ETag              string         `json:"ETag,omitempty"`
	CheckOutType      int            `json:"CheckOutType"`
	MajorVersion      int            `json:"MajorVersion"`
	MinorVersion      int            `json:"MinorVersion"`
	UIVersionLabel    string         `json:"UIVersionLabel"`
	TimeCreated       Time           `json:"TimeCreated"`
	TimeLastModified  Time           `json:"TimeLastModified"`
	Exists            bool           `json:"Exists"`
	Properties        map[string]any `json:"Properties,omitempty"`
	Versions          []FileVersion  `json:"Versions,omitempty"`
	ListItemAllFields *ListItem      `json:"ListItemAllFields,omitempty"`
}

// ListItemID returns the id of the backing list item when
// ListItemAllFields was expanded, or 0.
func (f *File) ListItemID() int {
	if f.ListItemAllFields == nil {
		return 0
	}
	return f.ListItemAllFields.ID
}

// FileVersion is SP.FileVersion.
type FileVersion struct {
	ID               int    `json:"ID"`
	VersionLabel     string `json:"VersionLabel"`
	IsCurrentVersion bool   `json:"IsCurrentVersion"`
	Size             Int64  `json:"Size"`
	URL              string `json:"Url"`
	CheckInComment   string `json:"CheckInComment"`
	Created          Time   `json:"Created"`
}

// CheckinType is SP.CheckinType.
type CheckinType int

const (
	CheckinMinor     CheckinType = 0
	CheckinMajor     CheckinType = 1
	CheckinOverwrite CheckinType = 2
)

// Folder is an SP.Folder.
type Folder struct {
	Name              string         `json:"Name"`
	ServerRelativeURL string         `json:"ServerRelativeUrl"`
	UniqueID          string         `json:"UniqueId"`
	ItemCount         int            `json:"ItemCount"`
	Exists            bool           `json:"Exists"`
	TimeCreated       Time           `json:"TimeCreated"`
	TimeLastModified  Time           `json:"TimeLastModified"`
	WelcomePage       string         `json:"WelcomePage,omitempty"`
	Properties        map[string]any `json:"Properties,omitempty"`
	Folders           []Folder       `json:"Folders,omitempty"`
	Files             []File         `json:"Files,omitempty"`
	ListItemAllFields *ListItem      `json:"ListItemAllFields,omitempty"`
}

// IsSystemFolder reports whether the folder is one SharePoint creates for
// its own use (Forms, picture library thumbnails and previews).
func (f *Folder) IsSystemFolder() bool {
	switch f.Name {
	case "Forms", "_t", "_w":
		return true
	}
	return false
}
