package spclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"spshare/domain/sharepoint"
	"spshare/odata"
)

// FeatureScope selects site collection or web features.
type FeatureScope int

const (
	FeatureScopeWeb FeatureScope = iota
	FeatureScopeSite
)

// GetSite returns the web at siteURL.
func (s *Service) GetSite(ctx context.Context, siteURL string, opts ...odata.QueryOption) (*sharepoint.Site, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}
	site, err := getEntity[sharepoint.Site](ctx, s, siteURL, "_api/web", opts)
	if err != nil {
		return nil, fmt.Errorf("get site %s: %w", siteURL, err)
	}
	return site, nil
}

var siteInfoSelect = odata.Select{Fields: []string{
	"Configuration", "Created", "Description", "Id", "Language",
	"LastItemModifiedDate", "ServerRelativeUrl", "Title", "WebTemplate", "SiteLogoUrl",
}}

// GetSiteInfo returns the lightweight description of the web at siteURL.
func (s *Service) GetSiteInfo(ctx context.Context, siteURL string) (*sharepoint.SiteInfo, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}
	info, err := getEntity[sharepoint.SiteInfo](ctx, s, siteURL, "_api/web", []odata.QueryOption{siteInfoSelect})
	if err != nil {
		return nil, fmt.Errorf("get site info %s: %w", siteURL, err)
	}
	return info, nil
}

// GetSiteInfos returns the direct subsites of siteURL as SP.WebInformation.
func (s *Service) GetSiteInfos(ctx context.Context, siteURL string, opts ...odata.QueryOption) ([]sharepoint.SiteInfo, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}
	infos, err := getCollection[sharepoint.SiteInfo](ctx, s, siteURL, "_api/web/webinfos", opts)
	if err != nil {
		return nil, fmt.Errorf("get site infos %s: %w", siteURL, err)
	}
	return infos, nil
}

// GetSubsites returns the direct subsites of siteURL.
func (s *Service) GetSubsites(ctx context.Context, siteURL string, opts ...odata.QueryOption) ([]sharepoint.Site, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}
	sites, err := getCollection[sharepoint.Site](ctx, s, siteURL, "_api/web/webs", opts)
	if err != nil {
		return nil, fmt.Errorf("get subsites %s: %w", siteURL, err)
	}
	return sites, nil
}

// GetSites returns every web below siteURL, at any depth, sorted by Url.
// Webs that deny access, such as app webs, are returned as stubs carrying
// only Url and WebTemplate.
func (s *Service) GetSites(ctx context.Context, siteURL string, opts ...odata.QueryOption) ([]sharepoint.Site, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}

	var out []sharepoint.Site
	pending := []string{siteURL}
	for len(pending) > 0 {
		parent := pending[0]
		pending = pending[1:]

		infos, err := s.GetSiteInfos(ctx, parent)
		if err != nil {
			return nil, err
		}
		for _, info := range infos {
			childURL := absoluteURL(parent, info.ServerRelativeURL)
			site, err := s.GetSite(ctx, childURL, opts...)
			switch {
			case err == nil:
				pending = append(pending, childURL)
			case errors.Is(err, ErrForbidden), errors.Is(err, ErrUnauthorized):
				s.logger.Debug("Using stub for unreadable web", "url", childURL, "template", info.WebTemplate)
				site, err = sharepoint.ParseSite(bytes.NewReader(sharepoint.StubEntry(childURL, info.WebTemplate)), acceptAtom)
				if err != nil {
					return nil, err
				}
			default:
				return nil, err
			}
			out = append(out, *site)
		}
	}

	sharepoint.SortSitesByURL(out)
	return out, nil
}

// absoluteURL joins the scheme and host of siteURL with a server relative
// path.
func absoluteURL(siteURL, serverRelative string) string {
	ref, err := url.Parse(serverRelative)
	if err == nil && ref.IsAbs() {
		return strings.TrimRight(serverRelative, "/")
	}
	base, err := url.Parse(siteURL)
	if err != nil {
		return strings.TrimRight(siteURL+serverRelative, "/")
	}
	return strings.TrimRight(base.Scheme+"://"+base.Host+serverRelative, "/")
}

// UpdateSite writes the writable properties of site to siteURL.
func (s *Service) UpdateSite(ctx context.Context, siteURL string, site *sharepoint.Site) error {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return err
	}
	if site == nil {
		return fmt.Errorf("%w: nil site", ErrInvalidArgument)
	}
	body, err := site.UpdateBody()
	if err != nil {
		return err
	}
	if err := s.merge(ctx, siteURL, "_api/web", body); err != nil {
		return fmt.Errorf("update site %s: %w", siteURL, err)
	}
	return nil
}

// CreateSite creates a subsite below siteURL.
func (s *Service) CreateSite(ctx context.Context, siteURL string, info sharepoint.SiteCreationInfo) (*sharepoint.SiteInfo, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}
	if err := requireValue("site title", info.Title); err != nil {
		return nil, err
	}
	if err := requireValue("site url", info.URL); err != nil {
		return nil, err
	}
	body, err := info.Body()
	if err != nil {
		return nil, err
	}
	created, err := postEntity[sharepoint.SiteInfo](ctx, s, siteURL, "_api/web/webinfos/add", body)
	if err != nil {
		return nil, fmt.Errorf("create site %s under %s: %w", info.URL, siteURL, err)
	}
	return created, nil
}

// DeleteSite deletes the web at siteURL.
func (s *Service) DeleteSite(ctx context.Context, siteURL string) error {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return err
	}
	if err := s.delete(ctx, siteURL, "_api/web"); err != nil {
		return fmt.Errorf("delete site %s: %w", siteURL, err)
	}
	s.digests.Delete(siteURL)
	return nil
}

// GetSiteProperties returns the site collection containing siteURL.
func (s *Service) GetSiteProperties(ctx context.Context, siteURL string, opts ...odata.QueryOption) (*sharepoint.SiteProperties, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}
	props, err := getEntity[sharepoint.SiteProperties](ctx, s, siteURL, "_api/site", opts)
	if err != nil {
		return nil, fmt.Errorf("get site properties %s: %w", siteURL, err)
	}
	return props, nil
}

// GetSiteURL resolves the URL of the web containing pageURL.
func (s *Service) GetSiteURL(ctx context.Context, pageURL string) (string, error) {
	if err := requireValue("page url", pageURL); err != nil {
		return "", err
	}
	resp, err := s.send(ctx, &request{
		method:  http.MethodPost,
		siteURL: s.siteURL,
		path:    "_api/SP.Web.GetWebUrlFromPageUrl(@v)?@v=" + quote(pageURL),
	})
	if err != nil {
		return "", fmt.Errorf("get site url for %s: %w", pageURL, err)
	}
	u, err := sharepoint.DecodeResult[string](resp.body, resp.contentType, "GetWebUrlFromPageUrl")
	if err != nil {
		return "", err
	}
	return strings.TrimRight(u, "/"), nil
}

// GetRegionalSettings returns the regional settings of a web with its time
// zone expanded.
func (s *Service) GetRegionalSettings(ctx context.Context, siteURL string) (*sharepoint.RegionalSettings, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}
	rs, err := getEntity[sharepoint.RegionalSettings](ctx, s, siteURL, "_api/web/RegionalSettings",
		[]odata.QueryOption{odata.Expand{Fields: []string{"TimeZone"}}})
	if err != nil {
		return nil, fmt.Errorf("get regional settings %s: %w", siteURL, err)
	}
	return rs, nil
}

func (s *Service) GetTimeZone(ctx context.Context, siteURL string) (*sharepoint.TimeZone, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}
	tz, err := getEntity[sharepoint.TimeZone](ctx, s, siteURL, "_api/web/RegionalSettings/TimeZone", nil)
	if err != nil {
		return nil, fmt.Errorf("get time zone %s: %w", siteURL, err)
	}
	return tz, nil
}

// GetCurrentUser returns the user the Service is authenticated as.
func (s *Service) GetCurrentUser(ctx context.Context, siteURL string, opts ...odata.QueryOption) (*sharepoint.User, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}
	u, err := getEntity[sharepoint.User](ctx, s, siteURL, "_api/web/CurrentUser", opts)
	if err != nil {
		return nil, fmt.Errorf("get current user %s: %w", siteURL, err)
	}
	return u, nil
}

// GetSiteTemplates returns the web templates available for lcid.
func (s *Service) GetSiteTemplates(ctx context.Context, siteURL string, lcid int, opts ...odata.QueryOption) ([]sharepoint.SiteTemplate, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}
	if lcid <= 0 {
		lcid = 1033
	}
	path := fmt.Sprintf("_api/web/GetAvailableWebTemplates(lcid=%d,doincludecrosslanguage=true)", lcid)
	templates, err := getCollection[sharepoint.SiteTemplate](ctx, s, siteURL, path, opts)
	if err != nil {
		return nil, fmt.Errorf("get site templates %s: %w", siteURL, err)
	}
	return templates, nil
}

// GetFeatures returns the activated features of the web or its site
// collection.
func (s *Service) GetFeatures(ctx context.Context, siteURL string, scope FeatureScope) ([]sharepoint.Feature, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}
	path := "_api/web/features"
	if scope == FeatureScopeSite {
		path = "_api/site/features"
	}
	features, err := getCollection[sharepoint.Feature](ctx, s, siteURL, path, nil)
	if err != nil {
		return nil, fmt.Errorf("get features %s: %w", siteURL, err)
	}
	return features, nil
}

// ApplyTheme applies a composed look to a web.
func (s *Service) ApplyTheme(ctx context.Context, siteURL string, theme sharepoint.ThemeSettings) error {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return err
	}
	if err := requireValue("color palette url", theme.ColorPaletteURL); err != nil {
		return err
	}
	path := fmt.Sprintf("_api/web/ApplyTheme(colorpaletteurl=%s,fontschemeurl=%s,backgroundimageurl=%s,sharegenerated=%t)",
		quote(theme.ColorPaletteURL), quote(theme.FontSchemeURL), quote(theme.BackgroundImageURL), theme.ShareGenerated)
	if err := s.call(ctx, siteURL, path, nil); err != nil {
		return fmt.Errorf("apply theme %s: %w", siteURL, err)
	}
	return nil
}
