// Package api talks to the shop backend over JSON/HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"storefront/internal/domain"
)

// Recorder receives one observation per backend call.
type Recorder interface {
	RecordAPIRequest(operation string, duration time.Duration, err error)
}

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Client fetches products and places orders. Every call is a single
// attempt bounded only by the caller's context.
type Client struct {
	baseURL  string
	cdnURL   string
	http     *http.Client
	recorder Recorder
	logger   *log.Entry
}

type Option func(*Client)

func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

func WithLogger(logger *log.Entry) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a client for baseURL; relative product images are prefixed
// with cdnURL. A nil httpClient means http.DefaultClient.
func New(baseURL, cdnURL string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	discard := log.New()
	discard.SetOutput(io.Discard)
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		cdnURL:  strings.TrimRight(cdnURL, "/"),
		http:    httpClient,
		logger:  log.NewEntry(discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListProducts returns the whole catalog.
func (c *Client) ListProducts(ctx context.Context) (domain.ProductList, error) {
	var list domain.ProductList
	if err := c.do(ctx, "list_products", http.MethodGet, "/product", nil, &list); err != nil {
		return domain.ProductList{}, err
	}
	for i := range list.Items {
		list.Items[i].Image = c.imageURL(list.Items[i].Image)
	}
	return list, nil
}

// GetProduct returns one product. A 404 wraps domain.ErrNotFound.
func (c *Client) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := c.do(ctx, "get_product", http.MethodGet, "/product/"+url.PathEscape(id), nil, &p)
	if err != nil {
		return domain.Product{}, err
	}
	p.Image = c.imageURL(p.Image)
	return p, nil
}

// SubmitOrder places an order.
func (c *Client) SubmitOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	if len(req.Items) == 0 {
		return domain.OrderResult{}, domain.ErrEmptyOrder
	}
	var res domain.OrderResult
	if err := c.do(ctx, "submit_order", http.MethodPost, "/order", req, &res); err != nil {
		return domain.OrderResult{}, err
	}
	return res, nil
}

func (c *Client) imageURL(image string) string {
	if image == "" || strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return image
	}
	if !strings.HasPrefix(image, "/") {
		image = "/" + image
	}
	return c.cdnURL + image
}

func (c *Client) do(ctx context.Context, operation, method, path string, body, out any) (err error) {
	start := time.Now()
	defer func() {
		if c.recorder != nil {
			c.recorder.RecordAPIRequest(operation, time.Since(start), err)
		}
		if err != nil {
			c.logger.WithError(err).WithField("operation", operation).Warn("api request failed")
		}
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", operation, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func responseError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", domain.ErrNotFound, apiErr)
	}
	return apiErr
}
