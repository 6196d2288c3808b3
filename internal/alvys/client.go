// Package alvys is the client for the Alvys integrations API: tenant
// authentication and paginated entity search.
package alvys

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/PRichardsKSMTA/alvys-ingest/internal/domain"
)

// DefaultPageSize is the page size used for every search endpoint.
const DefaultPageSize = 200

// Record is one raw item as returned by a search endpoint. Kept untyped:
// flattening happens downstream and the raw shape is archived as-is.
type Record map[string]interface{}

// Config holds client configuration.
type Config struct {
	// APIBase is the root of the integrations API,
	// e.g. https://integrations.alvys.com/api
	APIBase    string
	APIVersion string
	PageSize   int
	Timeout    time.Duration
}

// Client talks to the Alvys integrations API.
type Client struct {
	http     *resty.Client
	apiBase  string
	version  string
	pageSize int
}

// New creates a new Alvys API client.
func New(cfg *Config) *Client {
	client := resty.New()
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client.SetTimeout(timeout)

	version := cfg.APIVersion
	if version == "" {
		version = "1"
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return &Client{
		http:     client,
		apiBase:  cfg.APIBase,
		version:  version,
		pageSize: pageSize,
	}
}

// PageSize returns the configured search page size.
func (c *Client) PageSize() int {
	return c.pageSize
}

// AuthURL returns the tenant-scoped token endpoint.
func (c *Client) AuthURL(tenantID string) string {
	return fmt.Sprintf("%s/authentication/%s/token", c.apiBase, tenantID)
}

// BaseURL returns the versioned API root for entity endpoints.
func (c *Client) BaseURL() string {
	return fmt.Sprintf("%s/p/v%s", c.apiBase, c.version)
}

// SearchEndpoint returns the search URL for one entity.
func (c *Client) SearchEndpoint(entity domain.Entity) string {
	return fmt.Sprintf("%s/%s/search", c.BaseURL(), entity)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Authenticate exchanges tenant credentials for a bearer token and returns a
// Session carrying the standard request headers. Tokens are short-lived and
// never cached: each client run authenticates fresh.
func (c *Client) Authenticate(ctx context.Context, creds domain.Credentials) (*Session, error) {
	grantType := creds.GrantType
	if grantType == "" {
		grantType = "client_credentials"
	}

	var token tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"client_id":     creds.ClientID,
			"client_secret": creds.ClientSecret,
			"grant_type":    grantType,
		}).
		SetResult(&token).
		Post(c.AuthURL(creds.TenantID))
	if err != nil {
		return nil, &AuthError{TenantID: creds.TenantID, Err: err}
	}
	if resp.IsError() {
		return nil, &AuthError{
			TenantID: creds.TenantID,
			Err:      &APIError{StatusCode: resp.StatusCode(), Endpoint: c.AuthURL(creds.TenantID), Body: resp.String()},
		}
	}
	if token.AccessToken == "" {
		return nil, &AuthError{TenantID: creds.TenantID, Err: fmt.Errorf("token response missing access_token")}
	}

	return c.newSession(token.AccessToken), nil
}

// Session is one authenticated client run: the bearer token plus the header
// set every search request carries. Scoped to a single client export.
type Session struct {
	client  *Client
	headers map[string]string
}

func (c *Client) newSession(token string) *Session {
	return &Session{
		client: c,
		headers: map[string]string{
			"Authorization": "Bearer " + token,
			"accept":        "application/json",
			"content-type":  "application/*+json",
		},
	}
}

// searchResponse tolerates the API's inconsistent casing of the items key.
type searchResponse struct {
	Items      []Record `json:"Items"`
	ItemsLower []Record `json:"items"`
}

func (r searchResponse) records() []Record {
	if len(r.Items) > 0 {
		return r.Items
	}
	return r.ItemsLower
}

// SearchPage fetches a single 0-indexed page from a search endpoint. The
// page index and size are merged into the base filter body. Non-success
// statuses are returned as *APIError for the paginator to classify.
func (s *Session) SearchPage(ctx context.Context, endpoint string, filter map[string]interface{}, page, pageSize int) ([]Record, error) {
	body := make(map[string]interface{}, len(filter)+2)
	for k, v := range filter {
		body[k] = v
	}
	body["page"] = page
	body["pageSize"] = pageSize

	var result searchResponse
	resp, err := s.client.http.R().
		SetContext(ctx).
		SetHeaders(s.headers).
		SetBody(body).
		SetResult(&result).
		Post(endpoint)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{StatusCode: resp.StatusCode(), Endpoint: endpoint, Body: resp.String()}
	}

	return result.records(), nil
}
