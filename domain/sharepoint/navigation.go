package sharepoint

import "encoding/json"

// NavigationNode is an SP.NavigationNode with Children optionally expanded.
type NavigationNode struct {
	ID         int              `json:"Id"`
	Title      string           `json:"Title"`
	URL        string           `json:"Url"`
	IsDocLib   bool             `json:"IsDocLib"`
	IsExternal bool             `json:"IsExternal"`
	IsVisible  bool             `json:"IsVisible"`
	Children   []NavigationNode `json:"Children,omitempty"`
}

// NavigationNodeCreation describes a node to add to QuickLaunch or the
// top navigation bar.
type NavigationNodeCreation struct {
	Title      string `json:"Title"`
	URL        string `json:"Url"`
	IsExternal bool   `json:"IsExternal"`
}

// Body renders the POST payload.
func (n NavigationNodeCreation) Body() ([]byte, error) {
	return json.Marshal(struct {
		Metadata Metadata `json:"__metadata"`
		NavigationNodeCreation
	}{Metadata{Type: "SP.NavigationNode"}, n})
}
