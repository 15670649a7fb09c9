// Package catalog fetches the remote vehicle catalog.
package catalog

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Endpoint is the vehicle category of the public catalog service.
const Endpoint = "https://dummyjson.com/products/category/vehicle"

// Client issues catalog requests. It does not retry, cache or log.
type Client struct {
	endpoint   string
	httpClient *http.Client
	validator  *validator.Validate
}

// NewClient constructs a catalog client. An empty endpoint selects Endpoint and a nil
// httpClient selects a client without a timeout.
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if endpoint == "" {
		endpoint = Endpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
		validator:  validator.New(),
	}
}

// Endpoint returns the URL the client fetches.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Fetch performs one GET against the catalog endpoint.
func (c *Client) Fetch(ctx context.Context) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return Response{}, &TransportError{Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, &TransportError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, &HTTPError{Status: resp.StatusCode}
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if ctx.Err() != nil {
			return Response{}, &TransportError{Err: ctx.Err()}
		}
		return Response{}, &ParseError{Err: err}
	}
	if err := c.validator.Struct(out); err != nil {
		return Response{}, &ParseError{Err: err}
	}
	return out, nil
}
