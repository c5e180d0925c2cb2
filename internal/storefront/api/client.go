// Package api is the client of the remote product and order API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	sferrors "github.com/abgdnv/storefront/internal/storefront/errors"
	"github.com/abgdnv/storefront/internal/storefront/model"
	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/google/uuid"
)

// maxBodyBytes caps every response body read from the remote API.
const maxBodyBytes = 10 << 20

// OrderPostResult is the decoded answer to an order submission.
// Exactly one of Orders and Created is set, neither when the body was empty.
type OrderPostResult struct {
	Orders  []model.Order
	Created *model.Order
}

// Client calls the remote API. It is safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL *url.URL
	paths   config.APIPaths
	logger  *slog.Logger
}

// NewClient creates a client for cfg. transport may be nil, http.DefaultTransport is used then.
func NewClient(cfg config.APIConfig, transport http.RoundTripper, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api base URL %q: %w", cfg.BaseURL, err)
	}
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Client{
		http:    &http.Client{Transport: transport, Timeout: cfg.Timeout},
		baseURL: base,
		paths:   cfg.Paths,
		logger:  logger.With("component", "api"),
	}, nil
}

// FetchProducts returns the product catalog.
func (c *Client) FetchProducts(ctx context.Context) ([]model.Product, error) {
	body, err := c.do(ctx, http.MethodGet, c.endpoint(c.paths.Products, nil), nil)
	if err != nil {
		return nil, err
	}
	var products []model.Product
	if err := decode(body, &products); err != nil {
		return nil, fmt.Errorf("products: %w", err)
	}
	return products, nil
}

// FetchOrders returns the order history.
func (c *Client) FetchOrders(ctx context.Context) ([]model.Order, error) {
	body, err := c.do(ctx, http.MethodGet, c.endpoint(c.paths.Orders, nil), nil)
	if err != nil {
		return nil, err
	}
	var orders []model.Order
	if err := decode(body, &orders); err != nil {
		return nil, fmt.Errorf("orders: %w", err)
	}
	return orders, nil
}

// AddOrder posts order. The API may answer with the whole order list or with the created order.
func (c *Client) AddOrder(ctx context.Context, order model.Order) (*OrderPostResult, error) {
	payload, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, c.endpoint(c.paths.AddOrder, nil), payload)
	if err != nil {
		return nil, err
	}
	body = bytes.TrimSpace(body)
	result := &OrderPostResult{}
	switch {
	case len(body) == 0 || string(body) == "null":
		return result, nil
	case body[0] == '[':
		if err := decode(body, &result.Orders); err != nil {
			return nil, fmt.Errorf("add order: %w", err)
		}
		if result.Orders == nil {
			result.Orders = []model.Order{}
		}
	default:
		var created model.Order
		if err := decode(body, &created); err != nil {
			return nil, fmt.Errorf("add order: %w", err)
		}
		result.Created = &created
	}
	return result, nil
}

// FetchProductByID returns the product with the given id, nil when the API has none.
func (c *Client) FetchProductByID(ctx context.Context, id string) (*model.Product, error) {
	body, err := c.do(ctx, http.MethodGet, c.endpoint(c.paths.Products, url.Values{"id": {id}}), nil)
	if err != nil {
		return nil, err
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || string(body) == "null" {
		return nil, nil
	}
	if body[0] == '[' {
		var products []model.Product
		if err := decode(body, &products); err != nil {
			return nil, fmt.Errorf("product %s: %w", id, err)
		}
		if len(products) == 0 {
			return nil, nil
		}
		return &products[0], nil
	}
	var product model.Product
	if err := decode(body, &product); err != nil {
		return nil, fmt.Errorf("product %s: %w", id, err)
	}
	return &product, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do performs one request and returns the response body of a 2xx answer.
func (c *Client) do(ctx context.Context, method, target string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", sferrors.ErrNetwork, method, target, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID, ok := web.GetRequestID(ctx)
	if !ok {
		reqID = uuid.NewString()
	}
	req.Header.Set(web.HeaderRequestID, reqID)

	c.logger.DebugContext(ctx, "Calling remote API", "method", method, "url", target)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", sferrors.ErrNetwork, method, target, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		c.logger.WarnContext(ctx, "Remote API returned an error status", "method", method, "url", target, "status", resp.StatusCode)
		return nil, &sferrors.StatusError{Method: method, URL: target, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s %s: %w", sferrors.ErrNetwork, method, target, err)
	}
	c.logger.DebugContext(ctx, "Remote API answered", "method", method, "url", target, "status", resp.StatusCode, "bytes", len(body))
	return body, nil
}

func decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %w", sferrors.ErrMalformedResponse, err)
	}
	return nil
}
