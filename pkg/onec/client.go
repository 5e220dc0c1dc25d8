package onec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/time/rate"
)

// ErrBadCredentials is returned when 1C rejects the configured
// username/password, so callers can tell a misconfiguration apart
// from the upstream being down.
var ErrBadCredentials = errors.New("onec: wrong username or password")

// Config holds the connection parameters for the 1C OData endpoint.
type Config struct {
	URL      string
	Username string
	Password string
	Timeout  time.Duration
	// RequestsPerSecond caps outbound calls; zero disables the limiter.
	RequestsPerSecond float64
}

// Client talks to the standard 1C OData interface. Responses arrive as a
// JSON document with the record list wrapped under a "value" key, encoded
// as UTF-8 with a BOM.
type Client struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string
	limiter    *rate.Limiter
}

// GetOptions are the OData query fragments passed through verbatim.
type GetOptions struct {
	Filter string
	Select string
	Expand string
	Top    int
}

// NewClient constructs a Client. URL, username and password must all be set.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" || cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New(
			"onec: connection params not set, ensure ONEC_ODATA_URL, ONEC_ODATA_LOGIN and ONEC_ODATA_PASSWORD are provided")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		limiter:    limiter,
	}, nil
}

// Get fetches the full record list for an OData entity, unwrapping the
// "value" envelope.
func (c *Client) Get(ctx context.Context, entity string, opts *GetOptions) ([]map[string]any, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	params := url.Values{}
	params.Set("$format", "json")
	if opts != nil {
		if opts.Filter != "" {
			params.Set("$filter", opts.Filter)
		}
		if opts.Select != "" {
			params.Set("$select", opts.Select)
		}
		if opts.Expand != "" {
			params.Set("$expand", opts.Expand)
		}
		if opts.Top > 0 {
			params.Set("$top", strconv.Itoa(opts.Top))
		}
	}

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, entity, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("onec: request to %s failed: %w", entity, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrBadCredentials
	}

	// 1C serves JSON as UTF-8 with a BOM; strip it before decoding.
	body := transform.NewReader(resp.Body, unicode.UTF8BOM.NewDecoder())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(body, 4096))
		return nil, fmt.Errorf("onec: %s returned status %d: %s", entity, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var envelope struct {
		Value []map[string]any `json:"value"`
	}
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("onec: decoding %s response: %w", entity, err)
	}

	log.Debug().Str("entity", entity).Int("records", len(envelope.Value)).Msg("Got response from OneC API")
	return envelope.Value, nil
}
