package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/chunwon/market/services/recommendation-service/internal/domain"
)

// Client talks to an external catalog service over HTTP. Timeouts map to
// domain.ErrDependencyTimeout; a timed-out call is retried once with
// whatever budget remains on the request context.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) Product(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := c.getJSON(ctx, fmt.Sprintf("%s/api/products/%d", c.baseURL, id), &p)
	return p, err
}

func (c *Client) Products(ctx context.Context, ids []int64) ([]domain.Product, error) {
	body, err := json.Marshal(map[string][]int64{"productIds": ids})
	if err != nil {
		return nil, err
	}
	var out []domain.Product
	if err := c.postJSON(ctx, c.baseURL+"/api/products/batch", body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) All(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	if err := c.getJSON(ctx, c.baseURL+"/api/products", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	return c.doJSON(ctx, http.MethodGet, url, nil, v)
}

func (c *Client) postJSON(ctx context.Context, url string, body []byte, v any) error {
	return c.doJSON(ctx, http.MethodPost, url, body, v)
}

func (c *Client) doJSON(ctx context.Context, method, url string, body []byte, v any) error {
	err := c.once(ctx, method, url, body, v)
	if !errors.Is(err, domain.ErrDependencyTimeout) {
		return err
	}
	// One retry on timeout, bounded by the caller's remaining deadline.
	if ctx.Err() != nil {
		return domain.ErrDependencyTimeout
	}
	return c.once(ctx, method, url, body, v)
}

func (c *Client) once(ctx context.Context, method, url string, body []byte, v any) error {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return domain.ErrDependencyTimeout
		}
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrProductNotFound
	case resp.StatusCode >= 400:
		return fmt.Errorf("catalog: %s %s: unexpected status %d", method, url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
