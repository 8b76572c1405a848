package spquery

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spshare/domain/sharepoint"
	"spshare/odata"
)

func query(t *testing.T, opts []odata.QueryOption) url.Values {
	t.Helper()
	q := odata.Encode(opts...)
	require.NotEmpty(t, q)
	v, err := url.ParseQuery(q[1:])
	require.NoError(t, err)
	return v
}

func TestPagination(t *testing.T) {
	v := query(t, Pagination(200, 100))
	assert.Equal(t, "200", v.Get("$skip"))
	assert.Equal(t, "100", v.Get("$top"))

	v = query(t, TopOption(5))
	assert.Equal(t, "5", v.Get("$top"))
	assert.Empty(t, v.Get("$skip"))
}

func TestListItemOptionsOverview(t *testing.T) {
	tests := []struct {
		name       string
		list       *sharepoint.List
		wantSelect string
		wantExpand string
	}{
		{
			name:       "nil list",
			list:       nil,
			wantSelect: "FileSystemObjectType,HasUniqueRoleAssignments,Id,FileRef,FileLeafRef",
			wantExpand: "FieldValuesAsText,File,File/Properties",
		},
		{
			name: "versioned library with attachments",
			list: &sharepoint.List{
				BaseTemplate:      sharepoint.ListTemplateDocumentLibrary,
				BaseType:          sharepoint.BaseTypeDocumentLibrary,
				EnableVersioning:  true,
				EnableAttachments: true,
			},
			wantSelect: "FileSystemObjectType,HasUniqueRoleAssignments,Id,FileRef,FileLeafRef,Modified,HTML_x0020_File_x0020_Type,File/Properties/vti_x005f_filesize,OData__UIVersionString",
			wantExpand: "FieldValuesAsText,File,File/Properties,File/Versions,AttachmentFiles",
		},
		{
			name:       "survey has no GUID",
			list:       &sharepoint.List{BaseTemplate: sharepoint.ListTemplateSurvey, BaseType: sharepoint.BaseTypeSurvey},
			wantSelect: "FileSystemObjectType,HasUniqueRoleAssignments,Id,FileRef,FileLeafRef,Modified,HTML_x0020_File_x0020_Type,Title",
			wantExpand: "FieldValuesAsText,File,File/Properties",
		},
		{
			name:       "app request list skips attachments",
			list:       &sharepoint.List{BaseTemplate: sharepoint.ListTemplateAppRequests, EnableAttachments: true},
			wantSelect: "FileSystemObjectType,HasUniqueRoleAssignments,Id,FileRef,FileLeafRef,Modified,HTML_x0020_File_x0020_Type,Title,GUID",
			wantExpand: "FieldValuesAsText,File,File/Properties",
		},
		{
			name: "calendar with external data",
			list: &sharepoint.List{
				BaseTemplate: sharepoint.ListTemplateEvents,
				Fields: []sharepoint.FieldDefinition{
					{InternalName: "Customer", TypeAsString: "BusinessData", SchemaXML: `<Field Type="BusinessData" Name="Customer" RelatedField="Customers_ID" />`},
					{InternalName: "Title", TypeAsString: "Text", SchemaXML: `<Field Type="Text" Name="Title" />`},
				},
			},
			wantSelect: "FileSystemObjectType,HasUniqueRoleAssignments,Id,FileRef,FileLeafRef,Modified,HTML_x0020_File_x0020_Type,Title,GUID,RecurrenceData,EventType,TimeZone,MasterSeriesItemID,UID,Customers_ID",
			wantExpand: "FieldValuesAsText,File,File/Properties",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := query(t, ListItemOptions(tt.list, Overview))
			assert.Equal(t, tt.wantSelect, v.Get("$select"))
			assert.Equal(t, tt.wantExpand, v.Get("$expand"))
		})
	}
}

func TestListItemOptionsDetail(t *testing.T) {
	list := &sharepoint.List{BaseTemplate: sharepoint.ListTemplateGenericList, EnableVersioning: true, EnableAttachments: true}

	v := query(t, ListItemOptions(list, Detail))
	assert.Equal(t, "*,HasUniqueRoleAssignments,FileRef,FileLeafRef", v.Get("$select"))
	assert.Equal(t, "FieldValuesAsText,File,File/Properties,Versions,File/Versions,AttachmentFiles", v.Get("$expand"))

	userInfo := &sharepoint.List{BaseTemplate: sharepoint.ListTemplateUserInformation}
	v = query(t, ListItemOptions(userInfo, Overview))
	assert.Equal(t, "*,HasUniqueRoleAssignments,FileRef,FileLeafRef", v.Get("$select"), "user information list is always loaded in detail")
}

func TestListItemRestrictions(t *testing.T) {
	assert.Equal(t, "Id eq 4", ListItemIDRestriction(4).String())
	assert.Equal(t, "(Id eq 1 or Id eq 2 or Id eq 3)", ListItemIDRestriction(1, 2, 3).String())
	assert.Equal(t, "(Id gt 10 and Id lt 20)", ListItemIDRangeRestriction(10, 20).String())
	assert.Equal(t, "Id gt 7", ListItemIDGreaterThanRestriction(7).String())
	assert.Equal(t, "FileDirRef eq '/sites/a/Shared Documents'", ListItemFileDirRefRestriction("/sites/a/Shared Documents").String())
	assert.Equal(t, "FileLeafRef eq 'a.docx'", ListItemFileLeafRefRestriction("a.docx").String())
	assert.Equal(t, "FileRef eq '/x/a.docx'", ListItemFileRefRestriction("/x/a.docx").String())
	assert.Equal(t, "GUID eq 'abc'", ListItemGUIDRestriction("abc").String())
	assert.Equal(t, "Title eq 'Q1'", ListItemTitleRestriction("Q1").String())
}

func TestListItemPagination(t *testing.T) {
	v := query(t, ListItemPagination(-1, 500))
	assert.Empty(t, v.Get("$filter"))
	assert.Equal(t, "500", v.Get("$top"))
	assert.Equal(t, "Id asc", v.Get("$orderby"))

	v = query(t, ListItemPagination(42, 100, ListItemFileDirRefRestriction("/docs")))
	assert.Equal(t, "(FileDirRef eq '/docs' and Id gt 42)", v.Get("$filter"))
}

func TestMinMaxID(t *testing.T) {
	v := query(t, ListItemMaxIDOptions())
	assert.Equal(t, "1", v.Get("$top"))
	assert.Equal(t, "Id desc", v.Get("$orderby"))

	v = query(t, ListItemMinIDOptions())
	assert.Equal(t, "Id asc", v.Get("$orderby"))
}

func TestListDataOptions(t *testing.T) {
	v := query(t, ListDataPathContentTypeOptions("/sites/a/Lists/Tasks", "Folder"))
	assert.Equal(t, "(Path eq '/sites/a/Lists/Tasks' and ContentType eq 'Folder')", v.Get("$filter"))
	assert.Equal(t, "Name,Modified,Created,Path,Id", v.Get("$select"))

	v = query(t, ListDataPathOptions("/p"))
	assert.Equal(t, "Path eq '/p'", v.Get("$filter"))
	assert.Equal(t, "Name,Modified,Created,Path,Id", v.Get("$select"))

	v = query(t, ListDataIDOptions("/p"))
	assert.Equal(t, "Path eq '/p'", v.Get("$filter"))
	assert.Equal(t, "Id", v.Get("$select"))

	v = query(t, ListDataOptions(nil, "Id"))
	assert.Empty(t, v.Get("$filter"))
}

func TestSiteOptions(t *testing.T) {
	v := query(t, SiteOptions(Overview))
	assert.Equal(t, "Id,Url,Created,ServerRelativeUrl,WebTemplate,Title,SiteLogoUrl,QuickLaunchEnabled,TreeViewEnabled", v.Get("$select"))
	assert.Empty(t, v.Get("$expand"))

	v = query(t, SiteOptions(Detail))
	assert.Equal(t, "RegionalSettings/TimeZone", v.Get("$expand"))
	assert.Equal(t, "*,RegionalSettings/TimeZone/Id", v.Get("$select"))

	assert.Equal(t, "startswith(Url,'https://contoso.sharepoint.com/sites/a')", SiteURLRestriction("https://contoso.sharepoint.com/sites/a").String())
}

func TestHiddenRestrictions(t *testing.T) {
	assert.Equal(t, "(Hidden eq true or Group eq '_Hidden')", FieldHiddenRestriction(true).String())
	assert.Equal(t, "(Hidden eq false and Group ne '_Hidden')", FieldHiddenRestriction(false).String())
	assert.Equal(t, FieldHiddenRestriction(false).String(), ContentTypeHiddenRestriction(false).String())
	assert.Equal(t, "Hidden eq false", ListHiddenRestriction(false).String())
	assert.Equal(t, "IsHidden eq false", SiteTemplateHiddenRestriction().String())
	assert.Equal(t, "EnforceUniqueValues eq true", FieldEnforceUniqueRestriction().String())
	assert.Equal(t, "(InternalName eq 'A' or InternalName eq 'B')", FieldInternalNameRestriction("A", "B").String())
}

func TestEntityOptions(t *testing.T) {
	tests := []struct {
		name       string
		opts       []odata.QueryOption
		wantExpand string
		wantSelect string
		wantSkip   string
	}{
		{"role assignment", RoleAssignmentOptions(), "Member,RoleDefinitionBindings", "", ""},
		{"site properties", SitePropertiesOptions(), "Owner,usage", "", ""},
		{"group", GroupOptions(), "Users,Owner", "*,Owner/LoginName", ""},
		{"navigation", NavigationNodeOptions(), "Children", "*,Children/Id", ""},
		{"folder children", FolderChildrenIDOptions(), "Folders/ListItemAllFields,Files/ListItemAllFields", "*,Folders/ListItemAllFields/Id,Files/ListItemAllFields/Id", ""},
		{"folder item", FolderListItemInfoOptions(), "ListItemAllFields", "*,ListItemAllFields/Id,ListItemAllFields/Title,ListItemAllFields/FileRef", ""},
		{"file id", FileIDOptions(), "ListItemAllFields", "*,ListItemAllFields/Id", ""},
		{"file min id", FileMinIDOptions(), "ListItemAllFields", "*,ListItemAllFields/Id", "100"},
		{"sharing", ListItemSharingInfoOptions(), "permissionsInformation", "permissionsInformation", ""},
		{"content type", ContentTypeOptions(), "Parent,Fields,WorkflowAssociations", "*,Parent/Id,Parent/Name,Parent/Group,Parent/Hidden,Fields/Id,Fields/InternalName,Fields/Group,Fields/Hidden", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := query(t, tt.opts)
			assert.Equal(t, tt.wantExpand, v.Get("$expand"))
			assert.Equal(t, tt.wantSelect, v.Get("$select"))
			assert.Equal(t, tt.wantSkip, v.Get("$skip"))
		})
	}

	assert.Empty(t, odata.Encode(RoleOptions()...))
}

func TestListOptionsLoadsFieldDefinitions(t *testing.T) {
	for _, mode := range []Mode{Overview, Detail} {
		v := query(t, ListOptions(mode))
		assert.Equal(t, "DataSource,RootFolder,RootFolder/Properties,Fields", v.Get("$expand"))
		assert.Contains(t, v.Get("$select"), "Fields/SchemaXml")
	}
}
