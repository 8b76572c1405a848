package spquery

import (
	"spshare/domain/sharepoint"
	"spshare/odata"
)

// ListOptions returns the options for loading lists. Both modes load the
// detail projection: the field definitions are needed to build item
// queries for external data columns.
func ListOptions(_ Mode) []odata.QueryOption {
	return []odata.QueryOption{
		expand("DataSource", "RootFolder", "RootFolder/Properties", "Fields"),
		sel(
			"*",
			"AllowDeletion",
			"OnQuickLaunch",
			"HasUniqueRoleAssignments",
			"DataSource",
			"RootFolder/ServerRelativeURL",
			"RootFolder/Properties/TimelineDefaultView",
			"RootFolder/Properties/TimelineAllViews",
			"RootFolder/Properties/Timeline_Timeline",
			"Fields/InternalName",
			"Fields/FieldTypeKind",
			"Fields/TypeAsString",
			"Fields/SchemaXml",
		),
	}
}

// ListHiddenRestriction matches lists by their Hidden flag.
func ListHiddenRestriction(hidden bool) odata.Restriction {
	return odata.IsEqualTo("Hidden", hidden)
}

// ListTitleRestriction matches a list by title.
func ListTitleRestriction(title string) odata.Restriction {
	return odata.IsEqualTo("Title", title)
}

var listDataDefaultSelect = []string{"Name", "Modified", "Created", "Path", "Id"}

// ListDataOptions builds a ListData.svc query; several restrictions are
// combined with "and".
func ListDataOptions(restrictions []odata.Restriction, selects ...string) []odata.QueryOption {
	opts := filterOf(restrictions)
	return append(opts, sel(selects...))
}

// ListDataPathOptions lists the entries directly under a path.
func ListDataPathOptions(path string) []odata.QueryOption {
	return ListDataOptions([]odata.Restriction{ListDataPathRestriction(path)}, listDataDefaultSelect...)
}

// ListDataPathContentTypeOptions finds entries of a content type under a path.
func ListDataPathContentTypeOptions(path, contentType string) []odata.QueryOption {
	return ListDataOptions(
		[]odata.Restriction{ListDataPathRestriction(path), ListDataContentTypeRestriction(contentType)},
		listDataDefaultSelect...,
	)
}

// ListDataIDOptions returns only the ids of entries under a path.
func ListDataIDOptions(path string) []odata.QueryOption {
	return ListDataOptions([]odata.Restriction{ListDataPathRestriction(path)}, "Id")
}

// ListDataNameOptions finds an entry by name under a path.
func ListDataNameOptions(path, name string) []odata.QueryOption {
	return ListDataOptions(
		[]odata.Restriction{ListDataPathRestriction(path), ListDataNameRestriction(name)},
		listDataDefaultSelect...,
	)
}

func ListDataIDGreaterThanRestriction(id int) odata.Restriction {
	return odata.IsGreaterThan("Id", id)
}

func ListDataIDRestriction(id int) odata.Restriction {
	return odata.IsEqualTo("Id", id)
}

func ListDataTitleRestriction(title string) odata.Restriction {
	return odata.IsEqualTo("Title", title)
}

func ListDataPathRestriction(path string) odata.Restriction {
	return odata.IsEqualTo("Path", path)
}

func ListDataNameRestriction(name string) odata.Restriction {
	return odata.IsEqualTo("Name", name)
}

func ListDataContentTypeRestriction(contentType string) odata.Restriction {
	return odata.IsEqualTo("ContentType", contentType)
}

var eventListFields = []string{"RecurrenceData", "EventType", "TimeZone", "MasterSeriesItemID", "UID"}

// ListItemOptions returns the item projection for a list. The user
// information list is always loaded in detail. A nil list yields the
// generic projection.
func ListItemOptions(list *sharepoint.List, mode Mode) []odata.QueryOption {
	if mode == Detail || (list != nil && list.IsUserInformationList()) {
		return listItemDetailOptions(list)
	}

	ex := expand("FieldValuesAsText", "File", "File/Properties")
	se := sel("FileSystemObjectType", "HasUniqueRoleAssignments", "Id", "FileRef", "FileLeafRef")
	if list == nil {
		return []odata.QueryOption{ex, se}
	}

	se.Fields = append(se.Fields, "Modified", "HTML_x0020_File_x0020_Type")
	if list.EnableVersioning {
		ex.Fields = append(ex.Fields, "File/Versions")
	}
	if list.EnableAttachments && !list.IsAppRequestList() {
		ex.Fields = append(ex.Fields, "AttachmentFiles")
	}
	if list.IsDocumentLibrary() {
		se.Fields = append(se.Fields, "File/Properties/vti_x005f_filesize", "OData__UIVersionString")
	} else {
		se.Fields = append(se.Fields, "Title")
		if !list.IsSurvey() {
			se.Fields = append(se.Fields, "GUID")
		}
	}
	if list.IsEventList() {
		se.Fields = append(se.Fields, eventListFields...)
	}
	se.Fields = append(se.Fields, list.ExternalDataRelatedFields()...)

	return []odata.QueryOption{ex, se}
}

func listItemDetailOptions(list *sharepoint.List) []odata.QueryOption {
	ex := expand("FieldValuesAsText", "File", "File/Properties")
	se := sel("*", "HasUniqueRoleAssignments", "FileRef", "FileLeafRef")
	if list != nil {
		if list.EnableVersioning {
			ex.Fields = append(ex.Fields, "Versions", "File/Versions")
		}
		if list.EnableAttachments && !list.IsAppRequestList() {
			ex.Fields = append(ex.Fields, "AttachmentFiles")
		}
		if list.IsEventList() {
			se.Fields = append(se.Fields, eventListFields...)
		}
		se.Fields = append(se.Fields, list.ExternalDataRelatedFields()...)
	}
	return []odata.QueryOption{ex, se}
}

func ListItemFileDirRefRestriction(fileDirRef string) odata.Restriction {
	return odata.IsEqualTo("FileDirRef", fileDirRef)
}

func ListItemFileLeafRefRestriction(fileLeafRef string) odata.Restriction {
	return odata.IsEqualTo("FileLeafRef", fileLeafRef)
}

func ListItemFileRefRestriction(fileRef string) odata.Restriction {
	return odata.IsEqualTo("FileRef", fileRef)
}

// ListItemIDRestriction matches one id, or any of several ids.
func ListItemIDRestriction(ids ...int) odata.Restriction {
	if len(ids) == 1 {
		return odata.IsEqualTo("Id", ids[0])
	}
	rs := make([]odata.Restriction, 0, len(ids))
	for _, id := range ids {
		rs = append(rs, odata.IsEqualTo("Id", id))
	}
	return odata.Or(rs...)
}

// ListItemIDRangeRestriction matches from < Id < to.
func ListItemIDRangeRestriction(from, to int64) odata.Restriction {
	return odata.And(odata.IsGreaterThan("Id", from), odata.IsLessThan("Id", to))
}

func ListItemIDGreaterThanRestriction(from int64) odata.Restriction {
	return odata.IsGreaterThan("Id", from)
}

func ListItemGUIDRestriction(guid string) odata.Restriction {
	return odata.IsEqualTo("GUID", guid)
}

func ListItemTitleRestriction(title string) odata.Restriction {
	return odata.IsEqualTo("Title", title)
}

// ListItemSharingInfoOptions loads the permissions payload of
// GetSharingInformation.
func ListItemSharingInfoOptions() []odata.QueryOption {
	return []odata.QueryOption{expand("permissionsInformation"), sel("permissionsInformation")}
}

// ListItemMaxIDOptions returns the item with the highest id.
func ListItemMaxIDOptions() []odata.QueryOption {
	return []odata.QueryOption{odata.Top{N: 1}, odata.Descending("Id")}
}

// ListItemMinIDOptions returns the item with the lowest id.
func ListItemMinIDOptions() []odata.QueryOption {
	return []odata.QueryOption{odata.Top{N: 1}, odata.Ascending("Id")}
}

// ListItemPagination returns the next page of items after lastID in id
// order. A negative lastID starts from the beginning. Additional
// restrictions are combined with "and".
func ListItemPagination(lastID, size int, restrictions ...odata.Restriction) []odata.QueryOption {
	rs := append([]odata.Restriction{}, restrictions...)
	if lastID >= 0 {
		rs = append(rs, odata.IsGreaterThan("Id", lastID))
	}
	opts := filterOf(rs)
	return append(opts, odata.Top{N: size}, odata.Ascending("Id"))
}
