package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// TokenSource yields the bearer token for the next request. When no user is
// signed in it should return the empty string and the anon key is used alone.
type TokenSource func() string

// Client talks to a PostgREST-style data API ({base}/rest/v1/{table}).
type Client struct {
	BaseURL string
	AnonKey string
	Token   TokenSource
	HTTP    *http.Client
}

func NewClient(baseURL, anonKey string, timeout time.Duration, token TokenSource) *Client {
	return &Client{
		BaseURL: baseURL,
		AnonKey: anonKey,
		Token:   token,
		HTTP: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) endpoint(table string, query url.Values) string {
	u := fmt.Sprintf("%s/rest/v1/%s", c.BaseURL, table)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do issues one request and returns the raw body. Non-2xx responses become a
// *contract.RemoteError built by the caller via remoteFailure.
func (c *Client) do(ctx context.Context, method, rawURL string, payload interface{}, prefer string) ([]byte, int, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, 0, err
	}

	req.Header.Set("apikey", c.AnonKey)
	req.Header.Set("Content-Type", "application/json")
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	bearer := c.AnonKey
	if c.Token != nil {
		if t := c.Token(); t != "" {
			bearer = t
		}
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	return data, resp.StatusCode, nil
}
