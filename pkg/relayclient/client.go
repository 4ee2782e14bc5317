// Package relayclient provides an HTTP client for the GeoRelay API.
package relayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Client provides HTTP client for the GeoRelay API
type Client struct {
	config     Config
	httpClient *http.Client
	token      string
	baseURL    *url.URL
}

// NewClient creates a new GeoRelay HTTP client
func NewClient(config Config) (*Client, error) {
	config.SetDefaults()

	if config.ServerURL == "" {
		return nil, fmt.Errorf("ServerURL is required")
	}
	if config.ClientID == "" {
		return nil, fmt.Errorf("ClientID is required")
	}

	baseURL, err := url.Parse(config.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ServerURL: %w", err)
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		baseURL:    baseURL,
	}, nil
}

// Authenticate authenticates with the relay and stores the token. The relay
// accepts anonymous traffic unless configured otherwise, so calling this is
// only required against relays that demand authenticated reads or writes.
func (c *Client) Authenticate(ctx context.Context) error {
	authReq := map[string]string{
		"clientId": c.config.ClientID,
	}

	var authResp AuthResponse
	err := c.doRequest(ctx, "POST", "/api/v1/auth/login", authReq, &authResp)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	c.token = authResp.Token
	return nil
}

// Publish publishes a message to the scope selected by the server hostname.
// Tags are optional; a location tag is a tag whose first field is "g" and
// whose second field is the geohash cell.
func (c *Client) Publish(ctx context.Context, content string, tags [][]string) (*PublishResponse, error) {
	req := PublishRequest{
		Content: content,
		Tags:    tags,
	}

	var resp PublishResponse
	err := c.doRequest(ctx, "POST", "/api/v1/messages", req, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// PublishToCell publishes a message tagged with the given geohash cell.
func (c *Client) PublishToCell(ctx context.Context, content, cell string) (*PublishResponse, error) {
	return c.Publish(ctx, content, [][]string{{"g", cell}})
}

// Query returns stored messages from the scope selected by the server
// hostname, narrowed by the given options.
func (c *Client) Query(ctx context.Context, opts QueryOptions) (*QueryResponse, error) {
	params := url.Values{}
	if len(opts.Authors) > 0 {
		params.Set("authors", strings.Join(opts.Authors, ","))
	}
	if !opts.Since.IsZero() {
		params.Set("since", strconv.FormatInt(opts.Since.Unix(), 10))
	}
	if !opts.Until.IsZero() {
		params.Set("until", strconv.FormatInt(opts.Until.Unix(), 10))
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}

	var resp QueryResponse
	err := c.doRequestWithQuery(ctx, "GET", "/api/v1/messages", params, nil, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetHealth returns the relay's health status for the selected scope
func (c *Client) GetHealth(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	err := c.doRequest(ctx, "GET", "/health", nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to get health status: %w", err)
	}
	return &resp, nil
}

// IsAuthenticated returns whether the client has a token
func (c *Client) IsAuthenticated() bool {
	return c.token != ""
}

// GetToken returns the current authentication token
func (c *Client) GetToken() string {
	return c.token
}

// SetToken sets the authentication token (useful for testing or token reuse)
func (c *Client) SetToken(token string) {
	c.token = token
}

// doRequestWithQuery performs an HTTP request with query parameters
func (c *Client) doRequestWithQuery(ctx context.Context, method, path string, queryParams url.Values, reqBody interface{}, respBody interface{}) error {
	u := &url.URL{Path: path}
	if len(queryParams) > 0 {
		u.RawQuery = queryParams.Encode()
	}
	fullURL := c.baseURL.ResolveReference(u)

	var bodyReader io.Reader
	if reqBody != nil {
		jsonBody, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL.String(), bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return parseAPIError(resp.StatusCode, resp.Status, bodyBytes)
	}

	if respBody != nil {
		if err := json.Unmarshal(bodyBytes, respBody); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// doRequest performs an HTTP request without query parameters
func (c *Client) doRequest(ctx context.Context, method, path string, reqBody interface{}, respBody interface{}) error {
	return c.doRequestWithQuery(ctx, method, path, nil, reqBody, respBody)
}

// parseAPIError distinguishes admission rejections from plain transport
// errors. Rejections carry a machine-readable kind and surface as
// *RejectionError so callers can branch on the reason.
func parseAPIError(statusCode int, status string, body []byte) error {
	var rejection RejectionError
	if err := json.Unmarshal(body, &rejection); err == nil && rejection.Kind != "" {
		rejection.StatusCode = statusCode
		return &rejection
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return fmt.Errorf("API error (%d): %s", statusCode, errResp.Error)
	}
	return fmt.Errorf("API error (%d): %s - %s", statusCode, status, string(body))
}
