package spclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"spshare/domain/sharepoint"
	"spshare/logging"
	"spshare/odata"
)

// Doer executes an authenticated HTTP request. *gosip.SPClient satisfies
// it; so does HTTPDoer for endpoints that need no extra authentication.
type Doer interface {
	Execute(req *http.Request) (*http.Response, error)
}

// HTTPDoer adapts a plain *http.Client to Doer.
type HTTPDoer struct {
	Client *http.Client
}

func (d HTTPDoer) Execute(req *http.Request) (*http.Response, error) {
	if d.Client == nil {
		return http.DefaultClient.Do(req)
	}
	return d.Client.Do(req)
}

// Format selects the response representation requested from SharePoint.
type Format int

const (
	FormatJSON Format = iota
	FormatAtom
)

func (f Format) String() string {
	if f == FormatAtom {
		return "atom"
	}
	return "json"
}

// ParseFormat maps "atom" or "json" to a Format. Anything else is JSON.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), "atom") {
		return FormatAtom
	}
	return FormatJSON
}

// Service issues SharePoint REST calls against any site reachable through
// its Doer. All operations share one retry policy, rate limiter and
// request digest cache.
type Service struct {
	siteURL string
	doer    Doer
	retry   RetryPolicy
	limiter *RateLimiter
	metrics *Metrics
	digests *cache.Cache
	format  Format
	debug   bool
	logger  *logging.Logger
}

type Option func(*Service)

func WithRetryPolicy(p RetryPolicy) Option {
	return func(s *Service) {
		if p != nil {
			s.retry = p
		}
	}
}

func WithRateLimiter(l *RateLimiter) Option {
	return func(s *Service) {
		if l != nil {
			s.limiter = l
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithFormat(f Format) Option {
	return func(s *Service) { s.format = f }
}

// WithDebug logs request and response bodies.
func WithDebug(debug bool) Option {
	return func(s *Service) { s.debug = debug }
}

func WithLogger(l *logging.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a Service rooted at siteURL.
func NewService(siteURL string, doer Doer, opts ...Option) (*Service, error) {
	siteURL, err := normalizeSiteURL(siteURL)
	if err != nil {
		return nil, err
	}
	if doer == nil {
		return nil, fmt.Errorf("%w: nil doer", ErrInvalidArgument)
	}

	s := &Service{
		siteURL: siteURL,
		doer:    doer,
		retry:   NewDefaultRetryPolicy(),
		limiter: NewRateLimiter(DefaultRateLimit),
		digests: cache.New(25*time.Minute, 10*time.Minute),
		format:  FormatJSON,
		logger:  logging.Default().WithComponent("sharepoint_client"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SiteURL returns the site the Service was created for.
func (s *Service) SiteURL() string {
	return s.siteURL
}

func normalizeSiteURL(siteURL string) (string, error) {
	siteURL = strings.TrimRight(strings.TrimSpace(siteURL), "/")
	if siteURL == "" {
		return "", fmt.Errorf("%w: empty site url", ErrInvalidArgument)
	}
	u, err := url.Parse(siteURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: site url %q", ErrInvalidArgument, siteURL)
	}
	return siteURL, nil
}

func validateGUID(name, id string) (string, error) {
	parsed, err := uuid.Parse(strings.Trim(id, "{}"))
	if err != nil {
		return "", fmt.Errorf("%w: %s %q is not a GUID", ErrInvalidArgument, name, id)
	}
	return parsed.String(), nil
}

func validateID(name string, id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidArgument, name, id)
	}
	return nil
}

func requireValue(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: empty %s", ErrInvalidArgument, name)
	}
	return nil
}

// quote renders a string argument of a REST function call, escaped for
// use inside a URL path.
func quote(s string) string {
	escaped := url.PathEscape(strings.ReplaceAll(s, "'", "''"))
	return "'" + strings.ReplaceAll(escaped, "%2F", "/") + "'"
}

func listPath(listID string) string {
	return fmt.Sprintf("_api/web/lists(guid'%s')", listID)
}

func fileByURLPath(serverRelativeURL string) string {
	return "_api/web/GetFileByServerRelativeUrl(" + quote(serverRelativeURL) + ")"
}

func folderByURLPath(serverRelativeURL string) string {
	return "_api/web/GetFolderByServerRelativeUrl(" + quote(serverRelativeURL) + ")"
}

// getEntity GETs a single entity of type T.
func getEntity[T any](ctx context.Context, s *Service, siteURL, path string, opts []odata.QueryOption) (*T, error) {
	resp, err := s.send(ctx, &request{method: http.MethodGet, siteURL: siteURL, path: path, query: opts})
	if err != nil {
		return nil, err
	}
	return sharepoint.Decode[T](resp.body, resp.contentType)
}

// getCollection GETs one page of a collection of T.
func getCollection[T any](ctx context.Context, s *Service, siteURL, path string, opts []odata.QueryOption) ([]T, error) {
	resp, err := s.send(ctx, &request{method: http.MethodGet, siteURL: siteURL, path: path, query: opts})
	if err != nil {
		return nil, err
	}
	return sharepoint.DecodeCollection[T](resp.body, resp.contentType)
}

// getResult GETs a function or property value.
func getResult[T any](ctx context.Context, s *Service, siteURL, path, name string) (T, error) {
	resp, err := s.send(ctx, &request{method: http.MethodGet, siteURL: siteURL, path: path})
	if err != nil {
		var zero T
		return zero, err
	}
	return sharepoint.DecodeResult[T](resp.body, resp.contentType, name)
}

// postEntity POSTs body and decodes the created entity.
func postEntity[T any](ctx context.Context, s *Service, siteURL, path string, body []byte) (*T, error) {
	resp, err := s.send(ctx, &request{method: http.MethodPost, siteURL: siteURL, path: path, body: body})
	if err != nil {
		return nil, err
	}
	return sharepoint.Decode[T](resp.body, resp.contentType)
}

// call POSTs to a service operation and discards the response.
func (s *Service) call(ctx context.Context, siteURL, path string, body []byte) error {
	_, err := s.send(ctx, &request{method: http.MethodPost, siteURL: siteURL, path: path, body: body})
	return err
}

func (s *Service) merge(ctx context.Context, siteURL, path string, body []byte) error {
	_, err := s.send(ctx, &request{method: "MERGE", siteURL: siteURL, path: path, body: body})
	return err
}

func (s *Service) delete(ctx context.Context, siteURL, path string) error {
	_, err := s.send(ctx, &request{method: http.MethodDelete, siteURL: siteURL, path: path})
	return err
}

// recycle moves an object to the recycle bin and returns the recycle bin
// item id.
func (s *Service) recycle(ctx context.Context, siteURL, path string) (string, error) {
	resp, err := s.send(ctx, &request{method: http.MethodPost, siteURL: siteURL, path: path + "/recycle"})
	if err != nil {
		return "", err
	}
	if len(resp.body) == 0 {
		return "", nil
	}
	return sharepoint.DecodeResult[string](resp.body, resp.contentType, "Recycle")
}
