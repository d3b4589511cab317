package osmapi

import (
	"context"
	"encoding/xml"
	"io"
	"io/ioutil"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/omniscale/go-osmapi/log"
)

// DefaultBaseURL is the endpoint of the public OpenStreetMap API.
const DefaultBaseURL = "https://api.openstreetmap.org/api/0.6"

// Config configures a Client. The zero value is a usable anonymous client
// for the public API.
type Config struct {
	// BaseURL is the API endpoint including the version prefix, without
	// trailing slash. Defaults to DefaultBaseURL.
	BaseURL string
	// Auth adds credentials to all mutating requests. Anonymous if nil;
	// mutating calls will then fail with an APIError from the server.
	Auth Authorizer
	// UserAgent is sent with every request.
	UserAgent string
	// Client is an optional custom HTTP client. Timeouts and cancellation
	// are handled by the HTTP client and the request contexts; this
	// library adds no retries and no timeouts of its own.
	Client *http.Client
}

// Client calls the OSM editing API. All methods are single request/response
// cycles; a Client holds no mutable state and is safe for concurrent use.
type Client struct {
	baseURL   string
	auth      Authorizer
	userAgent string
	client    *http.Client
}

// New prepares a Client. No connection is made until the first call.
func New(config Config) *Client {
	c := &Client{
		baseURL:   strings.TrimSuffix(config.BaseURL, "/"),
		auth:      config.Auth,
		userAgent: config.UserAgent,
		client:    config.Client,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.auth == nil {
		c.auth = anonymous{}
	}
	if c.userAgent == "" {
		c.userAgent = "go-osmapi/" + Version
	}
	if c.client == nil {
		c.client = newHTTPClient()
	}
	return c
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// request sends a single request and returns the raw body of a successful
// response. Responses with a non-2xx status are returned as *APIError with
// the body preserved.
func (c *Client) request(ctx context.Context, method, path string, query url.Values, body io.Reader, authed bool) ([]byte, error) {
	url := c.baseURL + path
	if len(query) > 0 {
		url += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, errors.Wrapf(err, "building %s request for %s", method, url)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	}
	if authed {
		if err := c.auth.Authorize(req); err != nil {
			return nil, errors.Wrapf(err, "authorizing %s request for %s", method, url)
		}
	}
	log.Printf("[debug] %s %s", method, url)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "sending %s request to %s", method, url)
	}
	defer resp.Body.Close()
	buf, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading response from %s", url)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(buf)),
		}
	}
	return buf, nil
}

// getOSM fetches and decodes an <osm> document.
func (c *Client) getOSM(ctx context.Context, path string, query url.Values) (*osmFile, error) {
	buf, err := c.request(ctx, "GET", path, query, nil, false)
	if err != nil {
		return nil, err
	}
	f := &osmFile{}
	if err := xml.Unmarshal(buf, f); err != nil {
		return nil, errors.Wrapf(err, "decoding response from %s%s", c.baseURL, path)
	}
	return f, nil
}
