package sharepoint

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListItemKeepsPropertyBag(t *testing.T) {
	body := []byte(`{"d":{"results":[{
		"__metadata":{"type":"SP.Data.Shared_x0020_DocumentsItem"},
		"Id":7,"ID":7,"FileSystemObjectType":0,"FileRef":"/sites/a/Shared Documents/q1.xlsx","FileLeafRef":"q1.xlsx",
		"Modified":"2024-01-02T03:04:05Z","OData__UIVersionString":"3.0","Customers_ID":"__bk4100",
		"File":{"__metadata":{"type":"SP.File"},"Name":"q1.xlsx","Length":"0","Properties":{"vti_x005f_filesize":"2048"}},
		"FieldValuesAsText":{"__metadata":{"type":"SP.FieldStringValues"},"Author":"Alex Wilber"},
		"AttachmentFiles":{"results":[]}
	}]}}`)

	items, err := DecodeCollection[ListItem](body, "application/json;odata=verbose")
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, 7, item.ID)
	assert.True(t, item.IsFile())
	assert.False(t, item.IsFolder())
	assert.Equal(t, "3.0", item.UIVersionString)
	assert.Equal(t, int64(2048), item.FileSize())
	assert.Equal(t, "Alex Wilber", item.Text("Author"))
	assert.Equal(t, "__bk4100", item.Text("Customers_ID"))

	v, ok := item.Value("odata.type")
	require.True(t, ok)
	assert.Equal(t, "SP.Data.Shared_x0020_DocumentsItem", v)

	out, err := json.Marshal(item)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"Customers_ID":"__bk4100"`)
}

func TestListItemFolder(t *testing.T) {
	var item ListItem
	require.NoError(t, json.Unmarshal([]byte(`{"Id":3,"FileSystemObjectType":1,"FileLeafRef":"Reports"}`), &item))
	assert.True(t, item.IsFolder())
	assert.False(t, item.IsFile())
	assert.Zero(t, item.FileSize())
}

func TestItemValuesBody(t *testing.T) {
	body, err := ItemValues{"Title": "Hello", "Priority": 2}.Body("SP.Data.TasksListItem")
	require.NoError(t, err)
	assert.JSONEq(t, `{"__metadata":{"type":"SP.Data.TasksListItem"},"Title":"Hello","Priority":2}`, string(body))
}

func TestCamlQueryBody(t *testing.T) {
	body, err := CamlQuery{ViewXML: "<View><RowLimit>10</RowLimit></View>"}.Body()
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":{"__metadata":{"type":"SP.CamlQuery"},"ViewXml":"<View><RowLimit>10</RowLimit></View>","DatesInUtc":false}}`, string(body))
}

func TestListFlags(t *testing.T) {
	l := List{BaseTemplate: ListTemplateUserInformation}
	assert.True(t, l.IsUserInformationList())
	assert.False(t, l.IsDocumentLibrary())

	l = List{BaseTemplate: ListTemplatePictureLibrary, BaseType: BaseTypeDocumentLibrary, RootFolder: &Folder{ServerRelativeURL: "/sites/a/Pics"}}
	assert.True(t, l.IsDocumentLibrary())
	assert.Equal(t, "/sites/a/Pics", l.ServerRelativeURL())

	l = List{EntityTypeName: "AppRequestsList"}
	assert.True(t, l.IsAppRequestList())
}

func TestExternalDataRelatedFields(t *testing.T) {
	l := List{Fields: []FieldDefinition{
		{TypeAsString: "BusinessData", SchemaXML: `<Field Type="BusinessData" RelatedField="Orders_ID" Name="Order"/>`},
		{TypeAsString: "businessdata", SchemaXML: `<Field Type="BusinessData" Name="NoRelated"/>`},
		{TypeAsString: "BusinessData", SchemaXML: `not xml`},
		{TypeAsString: "Text", SchemaXML: `<Field RelatedField="Ignored"/>`},
	}}
	assert.Equal(t, []string{"Orders_ID"}, l.ExternalDataRelatedFields())
}

func TestListCreationBody(t *testing.T) {
	body, err := ListCreationInfo{Title: "Tasks", BaseTemplate: ListTemplateTasks}.Body()
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "Tasks", got["Title"])
	assert.Equal(t, float64(107), got["BaseTemplate"])
	assert.Equal(t, map[string]any{"type": "SP.List"}, got["__metadata"])
	assert.NotContains(t, got, "Description")
}

func TestPrincipalHelpers(t *testing.T) {
	p := Principal{LoginName: "i:0#.f|membership|alex@contoso.com", PrincipalType: PrincipalTypeUser}
	assert.True(t, p.IsUser())
	assert.False(t, p.IsGroup())
	assert.Equal(t, "i:0#.f|membership|alex@contoso.com", p.DisplayName())

	g := Principal{Title: "Owners", PrincipalType: PrincipalTypeSharePointGroup}
	assert.True(t, g.IsGroup())
	assert.Equal(t, "Owners", g.DisplayName())

	assert.Equal(t, "item", ItemScope("x", 4).Kind())
	assert.Equal(t, "list", ListScope("x").Kind())
	assert.Equal(t, "web", WebScope().Kind())
}
