package spquery

import (
	"spshare/domain/sharepoint"
	"spshare/odata"
)

// RoleAssignmentOptions expands the member and bound role definitions.
func RoleAssignmentOptions() []odata.QueryOption {
	return []odata.QueryOption{expand("Member", "RoleDefinitionBindings")}
}

// RoleOptions is the (empty) projection for role definitions.
func RoleOptions() []odata.QueryOption {
	return nil
}

// SiteOptions returns the web projection. Overview carries the fields a
// restore needs to recreate the web; Detail adds the time zone.
func SiteOptions(mode Mode) []odata.QueryOption {
	if mode == Detail {
		return []odata.QueryOption{
			expand("RegionalSettings/TimeZone"),
			sel("*", "RegionalSettings/TimeZone/Id"),
		}
	}
	return []odata.QueryOption{sel(
		"Id",
		"Url",
		"Created",
		"ServerRelativeUrl",
		"WebTemplate",
		"Title",
		"SiteLogoUrl",
		"QuickLaunchEnabled",
		"TreeViewEnabled",
	)}
}

// SiteURLRestriction keeps webs whose Url starts with url, dropping app
// webs that live on a different host.
func SiteURLRestriction(url string) odata.Restriction {
	return odata.StartsWith{Property: "Url", Value: url}
}

// SitePropertiesOptions expands the site collection owner and usage.
func SitePropertiesOptions() []odata.QueryOption {
	return []odata.QueryOption{expand("Owner", "usage")}
}

// SiteTemplateHiddenRestriction excludes hidden web templates.
func SiteTemplateHiddenRestriction() odata.Restriction {
	return odata.IsEqualTo("IsHidden", false)
}

// FolderChildrenIDOptions loads the list item ids of child folders and files.
func FolderChildrenIDOptions() []odata.QueryOption {
	return []odata.QueryOption{
		expand("Folders/ListItemAllFields", "Files/ListItemAllFields"),
		sel("*", "Folders/ListItemAllFields/Id", "Files/ListItemAllFields/Id"),
	}
}

// FolderListItemInfoOptions loads the identifying fields of the folder's
// list item.
func FolderListItemInfoOptions() []odata.QueryOption {
	return []odata.QueryOption{
		expand("ListItemAllFields"),
		sel("*", "ListItemAllFields/Id", "ListItemAllFields/Title", "ListItemAllFields/FileRef"),
	}
}

// FileIDOptions loads a file with its list item id.
func FileIDOptions() []odata.QueryOption {
	return []odata.QueryOption{expand("ListItemAllFields"), sel("*", "ListItemAllFields/Id")}
}

// FileMinIDOptions is FileIDOptions skipping the first 100 files.
func FileMinIDOptions() []odata.QueryOption {
	return append(FileIDOptions(), odata.Skip{N: 100})
}

// FieldInternalNameRestriction matches one internal name, or any of several.
func FieldInternalNameRestriction(names ...string) odata.Restriction {
	if len(names) == 1 {
		return odata.IsEqualTo("InternalName", names[0])
	}
	rs := make([]odata.Restriction, 0, len(names))
	for _, n := range names {
		rs = append(rs, odata.IsEqualTo("InternalName", n))
	}
	return odata.Or(rs...)
}

// FieldHiddenRestriction treats the _Hidden group as hidden regardless
// of the Hidden flag.
func FieldHiddenRestriction(hidden bool) odata.Restriction {
	return hiddenOrHiddenGroup(hidden)
}

// FieldEnforceUniqueRestriction matches fields that enforce unique values.
func FieldEnforceUniqueRestriction() odata.Restriction {
	return odata.IsEqualTo("EnforceUniqueValues", true)
}

// ContentTypeOptions expands the parent, fields and workflow associations
// with only the identifying columns of each.
func ContentTypeOptions() []odata.QueryOption {
	return []odata.QueryOption{
		expand("Parent", "Fields", "WorkflowAssociations"),
		sel(
			"*",
			"Parent/Id", "Parent/Name", "Parent/Group", "Parent/Hidden",
			"Fields/Id", "Fields/InternalName", "Fields/Group", "Fields/Hidden",
		),
	}
}

func ContentTypeNameRestriction(name string) odata.Restriction {
	return odata.IsEqualTo("Name", name)
}

// ContentTypeHiddenRestriction mirrors FieldHiddenRestriction.
func ContentTypeHiddenRestriction(hidden bool) odata.Restriction {
	return hiddenOrHiddenGroup(hidden)
}

func hiddenOrHiddenGroup(hidden bool) odata.Restriction {
	if hidden {
		return odata.Or(
			odata.IsEqualTo("Hidden", true),
			odata.IsEqualTo("Group", sharepoint.HiddenFieldGroup),
		)
	}
	return odata.And(
		odata.IsEqualTo("Hidden", false),
		odata.IsNotEqualTo("Group", sharepoint.HiddenFieldGroup),
	)
}

// GroupOptions expands users and the owner. Expanding Owner without
// selecting one of its columns makes the server fail the request.
func GroupOptions() []odata.QueryOption {
	return []odata.QueryOption{expand("Users", "Owner"), sel("*", "Owner/LoginName")}
}

// NavigationNodeOptions expands the ids of child nodes.
func NavigationNodeOptions() []odata.QueryOption {
	return []odata.QueryOption{expand("Children"), sel("*", "Children/Id")}
}
