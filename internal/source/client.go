package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// StatusError is returned when a source API answers with a non-200 status.
type StatusError struct {
	URL  string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("got response code %d on %s: %s", e.Code, e.URL, e.Body)
}

// IsTransient reports whether a fetch may succeed when repeated: network
// errors and 429 or 5xx answers. Context cancellation, other status codes and
// decoding errors are final.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= http.StatusInternalServerError
	}
	var ne net.Error
	return errors.As(err, &ne)
}

// Client is a small JSON-over-HTTP client shared by the adapters.
type Client struct {
	httpClient *http.Client
	user       string
	password   string
}

// NewClient wraps httpClient. A nil httpClient means http.DefaultClient.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient}
}

// WithBasicAuth returns a copy of c that sends HTTP basic credentials.
func (c *Client) WithBasicAuth(user, password string) *Client {
	cp := *c
	cp.user = user
	cp.password = password
	return &cp
}

// response is a fully-read HTTP response.
type response struct {
	body   []byte
	header http.Header
}

// get performs a GET on endpoint with the given query parameters.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (*response, error) {
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		endpoint += sep + params.Encode()
	}
	return c.do(ctx, http.MethodGet, endpoint, nil)
}

// postJSON POSTs payload encoded as JSON.
func (c *Client) postJSON(ctx context.Context, endpoint string, payload any) (*response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, endpoint, data)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) (*response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.user != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: endpoint, Code: resp.StatusCode, Body: truncate(string(data), 200)}
	}
	return &response{body: data, header: resp.Header}, nil
}

// nextLink extracts the rel="next" target from an RFC 8288 Link header.
func nextLink(h http.Header) string {
	for _, link := range h.Values("Link") {
		for _, part := range strings.Split(link, ",") {
			segs := strings.Split(part, ";")
			if len(segs) < 2 {
				continue
			}
			target := strings.Trim(strings.TrimSpace(segs[0]), "<>")
			for _, p := range segs[1:] {
				if strings.ReplaceAll(strings.TrimSpace(p), " ", "") == `rel="next"` {
					return target
				}
			}
		}
	}
	return ""
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
