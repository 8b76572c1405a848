package snapshot

import (
	"fmt"
	"net/url"
	"strings"

	"spshare/spquery"
)

// SharePoint REST limits and the worker bounds a snapshot run accepts.
const (
	MinPageSize        = 1
	MaxPageSize        = 5000
	DefaultPageSize    = 500
	MinConcurrency     = 1
	MaxConcurrency     = 16
	DefaultConcurrency = 4
)

// Parameters controls one snapshot run.
type Parameters struct {
	SiteURL       string
	Mode          spquery.Mode
	IncludeHidden bool
	// ListTitles limits the run to these lists when non-empty.
	ListTitles  []string
	PageSize    int
	Concurrency int
}

// DefaultParameters returns overview parameters for siteURL.
func DefaultParameters(siteURL string) Parameters {
	return Parameters{
		SiteURL:     siteURL,
		Mode:        spquery.Overview,
		PageSize:    DefaultPageSize,
		Concurrency: DefaultConcurrency,
	}
}

// Normalize fills zero values with defaults and clamps PageSize and
// Concurrency into their allowed ranges.
func (p Parameters) Normalize() Parameters {
	p.SiteURL = strings.TrimRight(strings.TrimSpace(p.SiteURL), "/")
	p.PageSize = clamp(p.PageSize, DefaultPageSize, MinPageSize, MaxPageSize)
	p.Concurrency = clamp(p.Concurrency, DefaultConcurrency, MinConcurrency, MaxConcurrency)
	return p
}

func clamp(v, def, lo, hi int) int {
	switch {
	case v == 0:
		return def
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}

// Validate checks the fields that cannot be defaulted.
func (p Parameters) Validate() error {
	if p.SiteURL == "" {
		return fmt.Errorf("site url is required")
	}
	u, err := url.Parse(p.SiteURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("site url %q must be absolute", p.SiteURL)
	}
	return nil
}

// Wants reports whether a list with this title and hidden flag belongs in
// the run.
func (p Parameters) Wants(title string, hidden bool) bool {
	if len(p.ListTitles) > 0 {
		for _, t := range p.ListTitles {
			if strings.EqualFold(t, title) {
				return true
			}
		}
		return false
	}
	return p.IncludeHidden || !hidden
}
