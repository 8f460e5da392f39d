package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/irsalhamdi/wholesale-storefront/core/claims"
	"github.com/irsalhamdi/wholesale-storefront/core/nat"
)

// RemoteError is a non-2xx answer from the backend.
type RemoteError struct {
	Status  int
	Message string
	kind    error
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend responded %d", e.Status)
	}
	return fmt.Sprintf("backend responded %d: %s", e.Status, e.Message)
}

func (e *RemoteError) Unwrap() error { return e.kind }

// Client speaks JSON over HTTP to the backend service.
type Client struct {
	base string
	http *http.Client
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend url %q: unsupported scheme", baseURL)
	}

	return &Client{
		base: strings.TrimRight(u.String(), "/"),
		http: &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) GetProducts(ctx context.Context) ([]Product, error) {
	var ps []Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &ps); err != nil {
		return nil, fmt.Errorf("getting products: %w", err)
	}
	return ps, nil
}

func (c *Client) GetProduct(ctx context.Context, id nat.Nat) (Product, error) {
	var p Product
	if err := c.do(ctx, http.MethodGet, "/products/"+id.String(), nil, &p); err != nil {
		return Product{}, fmt.Errorf("getting product[%s]: %w", id, err)
	}
	return p, nil
}

func (c *Client) AddProduct(ctx context.Context, p ProductNew) (nat.Nat, error) {
	var out struct {
		ID nat.Nat `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/products", p, &out); err != nil {
		return nat.Nat{}, fmt.Errorf("adding product: %w", err)
	}
	return out.ID, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id nat.Nat, p ProductNew) error {
	if err := c.do(ctx, http.MethodPut, "/products/"+id.String(), p, nil); err != nil {
		return fmt.Errorf("updating product[%s]: %w", id, err)
	}
	return nil
}

func (c *Client) DeleteProduct(ctx context.Context, id nat.Nat) error {
	if err := c.do(ctx, http.MethodDelete, "/products/"+id.String(), nil, nil); err != nil {
		return fmt.Errorf("deleting product[%s]: %w", id, err)
	}
	return nil
}

func (c *Client) PlaceOrder(ctx context.Context, items []OrderItem, customer CustomerDetails) (nat.Nat, error) {
	in := struct {
		Items    []OrderItem     `json:"items"`
		Customer CustomerDetails `json:"customer"`
	}{items, customer}

	var out struct {
		ID nat.Nat `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/orders", in, &out); err != nil {
		return nat.Nat{}, fmt.Errorf("placing order: %w", err)
	}
	return out.ID, nil
}

func (c *Client) GetAllOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, fmt.Errorf("getting orders: %w", err)
	}
	return orders, nil
}

func (c *Client) IsCallerAdmin(ctx context.Context) (bool, error) {
	var out struct {
		IsAdmin bool `json:"isAdmin"`
	}
	if err := c.do(ctx, http.MethodGet, "/roles/caller/admin", nil, &out); err != nil {
		return false, fmt.Errorf("checking caller role: %w", err)
	}
	return out.IsAdmin, nil
}

func (c *Client) AssignCallerUserRole(ctx context.Context, principal string, role claims.Role) error {
	in := struct {
		Role claims.Role `json:"role"`
	}{role}

	err := c.do(ctx, http.MethodPut, "/roles/"+url.PathEscape(principal), in, nil)
	var re *RemoteError
	if errors.As(err, &re) && re.Status == http.StatusConflict {
		re.kind = ErrAdminExists
	}
	if err != nil {
		return fmt.Errorf("assigning role %s to %s: %w", role, principal, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := claims.Lookup(ctx); id != nil && id.Token != "" {
		req.Header.Set("Authorization", "Bearer "+id.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return remoteError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func remoteError(resp *http.Response) error {
	re := &RemoteError{Status: resp.StatusCode}

	var er struct {
		Error string `json:"error"`
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err := json.Unmarshal(b, &er); err == nil {
		re.Message = er.Error
	} else {
		re.Message = strings.TrimSpace(string(b))
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		re.kind = ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		re.kind = ErrUnauthorized
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		re.kind = ErrInvalid
	}
	return re
}
