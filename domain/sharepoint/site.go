package sharepoint

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"io"
	"sort"
	"strings"
)

// Site is an SP.Web.
type Site struct {
	AllowRssFeeds                                        bool              `json:"AllowRssFeeds"`
	AppInstanceID                                        string            `json:"AppInstanceId,omitempty"`
	Configuration                                        int               `json:"Configuration"`
	Created                                              Time              `json:"Created"`
	CustomMasterURL                                      string            `json:"CustomMasterUrl,omitempty"`
	Description                                          string            `json:"Description,omitempty"`
	DocumentLibraryCalloutOfficeWebAppPreviewersDisabled bool              `json:"DocumentLibraryCalloutOfficeWebAppPreviewersDisabled"`
	EnableMinimalDownload                                bool              `json:"EnableMinimalDownload"`
	HasUniqueRoleAssignments                             bool              `json:"HasUniqueRoleAssignments"`
	ID                                                   string            `json:"Id"`
	Language                                             int               `json:"Language"`
	LastItemModifiedDate                                 Time              `json:"LastItemModifiedDate"`
	MasterURL                                            string            `json:"MasterUrl,omitempty"`
	OverwriteTranslationsOnChange                        bool              `json:"OverwriteTranslationsOnChange"`
	QuickLaunchEnabled                                   bool              `json:"QuickLaunchEnabled"`
	RecycleBinEnabled                                    bool              `json:"RecycleBinEnabled"`
	ServerRelativeURL                                    string            `json:"ServerRelativeUrl"`
	SiteLogoURL                                          string            `json:"SiteLogoUrl,omitempty"`
	SyndicationEnabled                                   bool              `json:"SyndicationEnabled"`
	Title                                                string            `json:"Title"`
	TreeViewEnabled                                      bool              `json:"TreeViewEnabled"`
	UIVersion                                            int               `json:"UIVersion"`
	UIVersionConfigurationEnabled                        bool              `json:"UIVersionConfigurationEnabled"`
	URL                                                  string            `json:"Url"`
	WebTemplate                                          string            `json:"WebTemplate"`
	RegionalSettings                                     *RegionalSettings `json:"RegionalSettings,omitempty"`
}

// TimeZone returns the inline RegionalSettings/TimeZone, if it was expanded.
func (s *Site) TimeZone() *TimeZone {
	if s.RegionalSettings == nil {
		return nil
	}
	return s.RegionalSettings.TimeZone
}

// Compare orders sites by Url.
func (s *Site) Compare(other *Site) int {
	return strings.Compare(s.URL, other.URL)
}

// SortSitesByURL sorts sites in place by Url.
func SortSitesByURL(sites []Site) {
	sort.SliceStable(sites, func(i, j int) bool { return sites[i].URL < sites[j].URL })
}

type siteUpdate struct {
	Metadata                      Metadata `json:"__metadata"`
	CustomMasterURL               string   `json:"CustomMasterUrl,omitempty"`
	Description                   string   `json:"Description,omitempty"`
	EnableMinimalDownload         bool     `json:"EnableMinimalDownload"`
	MasterURL                     string   `json:"MasterUrl,omitempty"`
	QuickLaunchEnabled            bool     `json:"QuickLaunchEnabled"`
	ServerRelativeURL             string   `json:"ServerRelativeUrl,omitempty"`
	SyndicationEnabled            bool     `json:"SyndicationEnabled"`
	Title                         string   `json:"Title,omitempty"`
	TreeViewEnabled               bool     `json:"TreeViewEnabled"`
	UIVersion                     int      `json:"UIVersion,omitempty"`
	UIVersionConfigurationEnabled bool     `json:"UIVersionConfigurationEnabled"`
}

// UpdateBody renders the MERGE payload for the writable web properties.
// Empty strings and a non-positive UIVersion are left out so the server
// keeps its current values; booleans are always sent.
func (s *Site) UpdateBody() ([]byte, error) {
	u := siteUpdate{
		Metadata:                      Metadata{Type: "SP.Web"},
		CustomMasterURL:               s.CustomMasterURL,
		Description:                   s.Description,
		EnableMinimalDownload:         s.EnableMinimalDownload,
		MasterURL:                     s.MasterURL,
		QuickLaunchEnabled:            s.QuickLaunchEnabled,
		ServerRelativeURL:             s.ServerRelativeURL,
		SyndicationEnabled:            s.SyndicationEnabled,
		Title:                         s.Title,
		TreeViewEnabled:               s.TreeViewEnabled,
		UIVersionConfigurationEnabled: s.UIVersionConfigurationEnabled,
	}
	if s.UIVersion > 0 {
		u.UIVersion = s.UIVersion
	}
	return json.Marshal(u)
}

// StubEntry renders a minimal SP.Web Atom entry carrying only Url and
// WebTemplate. It stands in for webs that cannot be read back (app webs).
func StubEntry(url, webTemplate string) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	buf.WriteString(`<entry xml:base="" xmlns="http://www.w3.org/2005/Atom" xmlns:d="http://schemas.microsoft.com/ado/2007/08/dataservices" xmlns:m="http://schemas.microsoft.com/ado/2007/08/dataservices/metadata">` + "\n")
	buf.WriteString("\t<id />\n")
	buf.WriteString("\t" + `<category term="SP.Web" scheme="http://schemas.microsoft.com/ado/2007/08/dataservices/scheme" />` + "\n")
	buf.WriteString("\t" + `<link rel="edit" href="Web" />` + "\n")
	buf.WriteString("\t<title />\n\t<updated />\n\t<author>\n\t\t<name />\n\t</author>\n")
	buf.WriteString("\t" + `<content type="application/xml">` + "\n\t\t<m:properties>\n")
	buf.WriteString("\t\t\t<d:Url>")
	_ = xml.EscapeText(&buf, []byte(url))
	buf.WriteString("</d:Url>\n\t\t\t<d:WebTemplate>")
	_ = xml.EscapeText(&buf, []byte(webTemplate))
	buf.WriteString("</d:WebTemplate>\n\t\t</m:properties>\n\t</content>\n</entry>\n")
	return buf.Bytes()
}

// ParseSite reads an SP.Web from an Atom or JSON response.
func ParseSite(r io.Reader, contentType string) (*Site, error) {
	body, err := readAll(r)
	if err != nil {
		return nil, err
	}
	return Decode[Site](body, contentType)
}

// SiteInfo is an SP.WebInformation, the lightweight description of a
// subsite returned by webinfos.
type SiteInfo struct {
	Configuration        int    `json:"Configuration"`
	Created              Time   `json:"Created"`
	Description          string `json:"Description"`
	ID                   string `json:"Id"`
	Language             int    `json:"Language"`
	LastItemModifiedDate Time   `json:"LastItemModifiedDate"`
	ServerRelativeURL    string `json:"ServerRelativeUrl"`
	Title                string `json:"Title"`
	WebTemplate          string `json:"WebTemplate"`
	WebTemplateID        int    `json:"WebTemplateId"`
	SiteLogoURL          string `json:"SiteLogoUrl,omitempty"`
}

// ParseSiteInfo reads an SP.WebInformation from an Atom or JSON response.
func ParseSiteInfo(r io.Reader, contentType string) (*SiteInfo, error) {
	body, err := readAll(r)
	if err != nil {
		return nil, err
	}
	return Decode[SiteInfo](body, contentType)
}

// SiteCreationInfo describes a new subsite for webinfos/add.
type SiteCreationInfo struct {
	Title                string `json:"Title"`
	URL                  string `json:"Url"`
	Description          string `json:"Description"`
	Language             int    `json:"Language"`
	WebTemplate          string `json:"WebTemplate"`
	UseUniquePermissions bool   `json:"UseUniquePermissions"`
}

type siteCreation struct {
	Parameters struct {
		Metadata Metadata `json:"__metadata"`
		SiteCreationInfo
	} `json:"parameters"`
}

// Body renders the webinfos/add payload.
func (c SiteCreationInfo) Body() ([]byte, error) {
	var sc siteCreation
	sc.Parameters.Metadata = Metadata{Type: "SP.WebInfoCreationInformation"}
	sc.Parameters.SiteCreationInfo = c
	if sc.Parameters.Language == 0 {
		sc.Parameters.Language = 1033
	}
	return json.Marshal(sc)
}

// RegionalSettings is SP.RegionalSettings.
type RegionalSettings struct {
	LocaleID       Int64     `json:"LocaleId"`
	TimeZone       *TimeZone `json:"TimeZone,omitempty"`
	Time24         bool      `json:"Time24"`
	FirstDayOfWeek int       `json:"FirstDayOfWeek"`
}

// TimeZone is SP.TimeZone.
type TimeZone struct {
	ID          int                  `json:"Id"`
	Description string               `json:"Description"`
	Information *TimeZoneInformation `json:"Information,omitempty"`
}

// TimeZoneInformation is SP.TimeZoneInformation.
type TimeZoneInformation struct {
	Bias         int `json:"Bias"`
	DaylightBias int `json:"DaylightBias"`
	StandardBias int `json:"StandardBias"`
}

// SiteUsage is SP.UsageInfo.
type SiteUsage struct {
	Storage               Int64   `json:"Storage"`
	StoragePercentageUsed float64 `json:"StoragePercentageUsed"`
	Bandwidth             Int64   `json:"Bandwidth"`
	Visits                Int64   `json:"Visits"`
}

// SiteProperties is the SP.Site (site collection) with Owner and usage
// expanded.
type SiteProperties struct {
	ID                string     `json:"Id"`
	URL               string     `json:"Url"`
	ServerRelativeURL string     `json:"ServerRelativeUrl"`
	ReadOnly          bool       `json:"ReadOnly"`
	Owner             *User      `json:"Owner,omitempty"`
	Usage             *SiteUsage `json:"Usage,omitempty"`
}

// SiteTemplate is SP.WebTemplate.
type SiteTemplate struct {
	ID          int    `json:"Id"`
	Name        string `json:"Name"`
	Title       string `json:"Title"`
	Description string `json:"Description"`
	IsHidden    bool   `json:"IsHidden"`
	Lcid        int    `json:"Lcid"`
}

// Feature is SP.Feature.
type Feature struct {
	DefinitionID string `json:"DefinitionId"`
	DisplayName  string `json:"DisplayName,omitempty"`
}

// ContextInfo is SP.ContextWebInformation, returned by /_api/contextinfo.
type ContextInfo struct {
	FormDigestValue          string `json:"FormDigestValue"`
	FormDigestTimeoutSeconds int    `json:"FormDigestTimeoutSeconds"`
	LibraryVersion           string `json:"LibraryVersion"`
	SiteFullURL              string `json:"SiteFullUrl"`
	WebFullURL               string `json:"WebFullUrl"`
}

// ThemeSettings identifies the files ApplyTheme points a web at.
type ThemeSettings struct {
	ColorPaletteURL    string
	FontSchemeURL      string
	BackgroundImageURL string
	ShareGenerated     bool
}
