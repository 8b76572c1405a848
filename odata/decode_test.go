package odata

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const webEntry = `<?xml version="1.0" encoding="utf-8"?>
<entry xml:base="https://contoso.sharepoint.com/_api/" xmlns="http://www.w3.org/2005/Atom"
  xmlns:d="http://schemas.microsoft.com/ado/2007/08/dataservices"
  xmlns:m="http://schemas.microsoft.com/ado/2007/08/dataservices/metadata">
  <id>https://contoso.sharepoint.com/_api/Web</id>
  <category term="SP.Web" scheme="http://schemas.microsoft.com/ado/2007/08/dataservices/scheme" />
  <link rel="edit" href="Web" />
  <link rel="http://schemas.microsoft.com/ado/2007/08/dataservices/related/RegionalSettings" type="application/atom+xml;type=entry" title="RegionalSettings" href="Web/RegionalSettings">
    <m:inline>
      <entry>
        <category term="SP.RegionalSettings" />
        <link rel="http://schemas.microsoft.com/ado/2007/08/dataservices/related/TimeZone" type="application/atom+xml;type=entry" title="TimeZone" href="Web/RegionalSettings/TimeZone">
          <m:inline>
            <entry>
              <content type="application/xml">
                <m:properties>
                  <d:Description>(UTC) Dublin, Edinburgh, Lisbon, London</d:Description>
                  <d:Id m:type="Edm.Int32">2</d:Id>
                </m:properties>
              </content>
            </entry>
          </m:inline>
        </link>
        <content type="application/xml"><m:properties><d:LocaleId m:type="Edm.Int64">2057</d:LocaleId></m:properties></content>
      </entry>
    </m:inline>
  </link>
  <link rel="http://schemas.microsoft.com/ado/2007/08/dataservices/related/Lists" type="application/atom+xml;type=feed" title="Lists" href="Web/Lists" />
  <title />
  <author><name /></author>
  <content type="application/xml">
    <m:properties>
      <d:Created m:type="Edm.DateTime">2019-05-01T08:00:00</d:Created>
      <d:Id m:type="Edm.Guid">a1b2c3d4-0000-1111-2222-333344445555</d:Id>
      <d:Language m:type="Edm.Int32">1033</d:Language>
      <d:QuickLaunchEnabled m:type="Edm.Boolean">true</d:QuickLaunchEnabled>
      <d:SiteLogoUrl m:null="true" />
      <d:Title>Team Site</d:Title>
      <d:SupportedUILanguageIds m:type="Collection(Edm.Int32)"><d:element>1033</d:element><d:element>1031</d:element></d:SupportedUILanguageIds>
      <d:ResourcePath m:type="SP.ResourcePath"><d:DecodedUrl>https://contoso.sharepoint.com</d:DecodedUrl></d:ResourcePath>
    </m:properties>
  </content>
</entry>`

func TestDecodeAtomEntry(t *testing.T) {
	out, err := DecodeAtom(strings.NewReader(webEntry))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))

	assert.Equal(t, "SP.Web", got[TypeKey])
	assert.Equal(t, "Team Site", got["Title"])
	assert.Equal(t, float64(1033), got["Language"])
	assert.Equal(t, true, got["QuickLaunchEnabled"])
	assert.Nil(t, got["SiteLogoUrl"])
	assert.Contains(t, got, "SiteLogoUrl")
	assert.Equal(t, []any{"1033", "1031"}, got["SupportedUILanguageIds"])
	assert.NotContains(t, got, "Lists", "deferred links are not materialised")

	rp := got["ResourcePath"].(map[string]any)
	assert.Equal(t, "https://contoso.sharepoint.com", rp["DecodedUrl"])
	assert.Equal(t, "SP.ResourcePath", rp[TypeKey])

	rs := got["RegionalSettings"].(map[string]any)
	assert.Equal(t, "2057", rs["LocaleId"], "Edm.Int64 stays a string")
	tz := rs["TimeZone"].(map[string]any)
	assert.Equal(t, float64(2), tz["Id"])
	assert.Equal(t, "(UTC) Dublin, Edinburgh, Lisbon, London", tz["Description"])
}

func TestDecodeAtomFeedWithNextLink(t *testing.T) {
	feed := `<feed xmlns="http://www.w3.org/2005/Atom" xmlns:d="http://schemas.microsoft.com/ado/2007/08/dataservices" xmlns:m="http://schemas.microsoft.com/ado/2007/08/dataservices/metadata">
  <title type="text">Items</title>
  <entry><content type="application/xml"><m:properties><d:Id m:type="Edm.Int32">1</d:Id></m:properties></content></entry>
  <entry>
    <content type="application/octet-stream" src="Files/a.docx" />
    <m:properties><d:Id m:type="Edm.Int32">2</d:Id><d:Name>a.docx</d:Name></m:properties>
  </entry>
  <link rel="next" href="https://contoso.sharepoint.com/_api/web/lists/items?$skiptoken=Paged%3dTRUE" />
</feed>`

	out, next, err := DecodeAtomPage(strings.NewReader(feed))
	require.NoError(t, err)
	assert.Equal(t, "https://contoso.sharepoint.com/_api/web/lists/items?$skiptoken=Paged%3dTRUE", next)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	require.Len(t, got, 2)
	assert.Equal(t, float64(1), got[0]["Id"])
	assert.Equal(t, "a.docx", got[1]["Name"])
}

func TestDecodeAtomFunctionResult(t *testing.T) {
	doc := `<d:GetContextWebInformation xmlns:d="http://schemas.microsoft.com/ado/2007/08/dataservices" xmlns:m="http://schemas.microsoft.com/ado/2007/08/dataservices/metadata" m:type="SP.ContextWebInformation">
  <d:FormDigestTimeoutSeconds m:type="Edm.Int32">1800</d:FormDigestTimeoutSeconds>
  <d:FormDigestValue>0x1234,01 Jan 2024 00:00:00 -0000</d:FormDigestValue>
</d:GetContextWebInformation>`

	out, err := DecodeAtom(strings.NewReader(doc))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, float64(1800), got["FormDigestTimeoutSeconds"])
	assert.Equal(t, "0x1234,01 Jan 2024 00:00:00 -0000", got["FormDigestValue"])
}

func TestDecodeAtomErrors(t *testing.T) {
	_, err := DecodeAtom(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyPayload)

	_, err = DecodeAtom(strings.NewReader(`<html><body/></html>`))
	assert.Error(t, err)

	_, err = DecodeAtom(strings.NewReader(`<entry xmlns="http://www.w3.org/2005/Atom"><content>`))
	assert.Error(t, err)
}

func TestNormalizeVerbose(t *testing.T) {
	raw := `{"d":{"results":[
	  {"__metadata":{"type":"SP.List","uri":"x"},"Id":"1","Title":"Documents",
	   "RootFolder":{"__deferred":{"uri":"y"}},
	   "Fields":{"results":[{"__metadata":{"type":"SP.Field"},"InternalName":"Title"}]}}
	],"__next":"https://contoso/next"}}`

	out, err := Normalize([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "https://contoso/next", NextLink([]byte(raw)))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "SP.List", got[0][TypeKey])
	assert.Nil(t, got[0]["RootFolder"])
	fields := got[0]["Fields"].([]any)
	assert.Equal(t, "Title", fields[0].(map[string]any)["InternalName"])
}

func TestNormalizeMinimal(t *testing.T) {
	raw := `{"odata.metadata":"m","value":[{"odata.type":"SP.Field","odata.id":"z","Title":"A"}],"odata.nextLink":"https://contoso/p2"}`

	out, err := Normalize([]byte(raw))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"odata.type":"SP.Field","Title":"A"}]`, string(out))
	assert.Equal(t, "https://contoso/p2", NextLink([]byte(raw)))
}

func TestNormalizeSingleEntity(t *testing.T) {
	out, err := Normalize([]byte(`{"d":{"__metadata":{"type":"SP.Web"},"Title":"Team"}}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"odata.type":"SP.Web","Title":"Team"}`, string(out))

	_, err = Normalize([]byte("  "))
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestDecodeError(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		code    string
		message string
		ok      bool
	}{
		{
			name:    "verbose",
			body:    `{"error":{"code":"-2130575322, Microsoft.SharePoint.SPException","message":{"lang":"en-US","value":"List does not exist."}}}`,
			code:    "-2130575322, Microsoft.SharePoint.SPException",
			message: "List does not exist.",
			ok:      true,
		},
		{
			name:    "minimal",
			body:    `{"odata.error":{"code":"-1, Microsoft.SharePoint.Client.InvalidClientQueryException","message":{"lang":"en-US","value":"Bad filter"}}}`,
			code:    "-1, Microsoft.SharePoint.Client.InvalidClientQueryException",
			message: "Bad filter",
			ok:      true,
		},
		{
			name:    "plain message",
			body:    `{"error":{"code":"TooManyRequests","message":"slow down"}}`,
			code:    "TooManyRequests",
			message: "slow down",
			ok:      true,
		},
		{
			name: "xml",
			body: `<?xml version="1.0" encoding="utf-8"?><m:error xmlns:m="http://schemas.microsoft.com/ado/2007/08/dataservices/metadata">
<m:code>-2147024894, System.IO.FileNotFoundException</m:code><m:message xml:lang="en-US">File Not Found.</m:message></m:error>`,
			code:    "-2147024894, System.IO.FileNotFoundException",
			message: "File Not Found.",
			ok:      true,
		},
		{name: "html", body: `<html><body>Service Unavailable</body></html>`},
		{name: "empty", body: ""},
		{name: "no error key", body: `{"d":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			er, ok := DecodeError([]byte(tt.body))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.code, er.Code)
				assert.Equal(t, tt.message, er.Message)
			}
		})
	}
}
