package oms

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
	"time"
)

// Client is an HTTP JSON client for the order service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client targeting the order service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// ListOrders retrieves the full order collection.
func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.doJSON(ctx, http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder retrieves a single order by identifier.
func (c *Client) GetOrder(ctx context.Context, id int) (*Order, error) {
	var order Order
	err := c.doJSON(ctx, http.MethodGet, "/orders/"+strconv.Itoa(id), nil, &order)
	if err != nil {
		if isNotFound(err) {
			return nil, &NotFoundError{Kind: "order", ID: id}
		}
		return nil, err
	}
	return &order, nil
}

// CreateOrder submits a new order and returns the created Order.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	var order Order
	if err := c.doJSON(ctx, http.MethodPost, "/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CancelOrder requests cancellation of an open order by identifier.
func (c *Client) CancelOrder(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodDelete, "/orders/"+strconv.Itoa(id), nil, nil)
}

// ListExecutions retrieves the full execution collection.
func (c *Client) ListExecutions(ctx context.Context) ([]Execution, error) {
	var execs []Execution
	if err := c.doJSON(ctx, http.MethodGet, "/executions", nil, &execs); err != nil {
		return nil, err
	}
	return execs, nil
}

// GetExecution retrieves a single execution by identifier.
func (c *Client) GetExecution(ctx context.Context, id int) (*Execution, error) {
	var exec Execution
	err := c.doJSON(ctx, http.MethodGet, "/executions/"+strconv.Itoa(id), nil, &exec)
	if err != nil {
		if isNotFound(err) {
			return nil, &NotFoundError{Kind: "execution", ID: id}
		}
		return nil, err
	}
	return &exec, nil
}

// CreateSecurityDefinitionRequest submits a security-definition request.
func (c *Client) CreateSecurityDefinitionRequest(ctx context.Context, req SecurityDefinitionRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/securitydefinitionrequest", req, nil)
}

// SubmitOrderForm posts the order-ticket field set URL-encoded to the legacy
// form action path. It carries the same fields as CreateOrder and no
// additional logic.
func (c *Client) SubmitOrderForm(ctx context.Context, action string, req CreateOrderRequest) error {
	form := url.Values{
		"side":                {req.Side},
		"quantity":            {req.Quantity.String()},
		"symbol":              {req.Symbol},
		"security_type":       {req.SecurityType},
		"ordType":             {req.OrdType},
		"price":               {req.Price},
		"stopPrice":           {req.StopPrice},
		"account":             {req.Account},
		"tif":                 {req.TIF},
		"session":             {req.Session},
		"maturity_month_year": {req.MaturityMonthYear},
		"maturity_day":        {strconv.Itoa(req.MaturityDay)},
		"put_or_call":         {strconv.Itoa(req.PutOrCall)},
		"strike_price":        {req.StrikePrice},
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+action, strings.NewReader(form.Encode()))
	if err != nil {
		return &NetworkError{Op: "POST " + action, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &NetworkError{Op: "POST " + action, Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return &NetworkError{Op: "POST " + action, Err: fmt.Errorf("status %s", resp.Status)}
	}
	return nil
}

// statusError marks a non-2xx response so callers can map 404s to
// NotFoundError before wrapping.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

func isNotFound(err error) bool {
	ne, ok := err.(*NetworkError)
	if !ok {
		return false
	}
	se, ok := ne.Err.(*statusError)
	return ok && se.code == http.StatusNotFound
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &NetworkError{Op: op, Err: err}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		io.Copy(io.Discard, resp.Body)
		return &NetworkError{Op: op, Err: &statusError{code: resp.StatusCode}}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
