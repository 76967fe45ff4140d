// Package supabase is a small client for the parts of the Supabase REST API
// this service uses: PostgREST table access, RPC, and password sign-in.
package supabase

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

type Config struct {
	URL        string
	APIKey     string
	HTTPClient *http.Client
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("APIKey is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}, nil
}

// From starts a query on a table.
func (c *Client) From(table string) *QueryBuilder {
	return &QueryBuilder{client: c, table: table, params: url.Values{}}
}

// QueryBuilder accumulates PostgREST query parameters.
type QueryBuilder struct {
	client *Client
	table  string
	params url.Values
	orders []string
	count  string
}

func (q *QueryBuilder) Select(columns string) *QueryBuilder {
	q.params.Set("select", columns)
	return q
}

func (q *QueryBuilder) Eq(column string, value any) *QueryBuilder {
	q.params.Add(column, fmt.Sprintf("eq.%v", value))
	return q
}

// Or adds a disjunction of raw PostgREST conditions, e.g. "content.ilike.*x*".
func (q *QueryBuilder) Or(conditions ...string) *QueryBuilder {
	q.params.Add("or", "("+strings.Join(conditions, ",")+")")
	return q
}

func (q *QueryBuilder) Order(column string, ascending bool) *QueryBuilder {
	dir := "asc"
	if !ascending {
		dir = "desc"
	}
	q.orders = append(q.orders, column+"."+dir)
	return q
}

func (q *QueryBuilder) Limit(n int) *QueryBuilder {
	q.params.Set("limit", strconv.Itoa(n))
	return q
}

func (q *QueryBuilder) Offset(n int) *QueryBuilder {
	if n > 0 {
		q.params.Set("offset", strconv.Itoa(n))
	}
	return q
}

// Count asks PostgREST to report the total row count in Content-Range.
func (q *QueryBuilder) Count(countType string) *QueryBuilder {
	q.count = countType
	return q
}

func (q *QueryBuilder) url() string {
	params := url.Values{}
	for k, v := range q.params {
		params[k] = append([]string(nil), v...)
	}
	if len(q.orders) > 0 {
		params.Set("order", strings.Join(q.orders, ","))
	}
	reqURL := fmt.Sprintf("%s/rest/v1/%s", q.client.baseURL, url.PathEscape(q.table))
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	return reqURL
}

func (q *QueryBuilder) Execute(ctx context.Context) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.url(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if q.count != "" {
		req.Header.Set("Prefer", "count="+q.count)
	}
	return q.client.do(req)
}

func (q *QueryBuilder) ExecuteInsert(ctx context.Context, data any) (*Response, error) {
	return q.write(ctx, http.MethodPost, data)
}

func (q *QueryBuilder) ExecuteUpdate(ctx context.Context, data any) (*Response, error) {
	return q.write(ctx, http.MethodPatch, data)
}

func (q *QueryBuilder) ExecuteDelete(ctx context.Context) (*Response, error) {
	return q.write(ctx, http.MethodDelete, nil)
}

func (q *QueryBuilder) write(ctx context.Context, method string, data any) (*Response, error) {
	var body io.Reader
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshal data: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, q.url(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Prefer", "return=representation")

	return q.client.do(req)
}

// RPC calls a Postgres function exposed by PostgREST.
func (c *Client) RPC(ctx context.Context, fn string, params any) (*Response, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}

	reqURL := fmt.Sprintf("%s/rest/v1/rpc/%s", c.baseURL, url.PathEscape(fn))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// SignInWithPassword exchanges email and password for a session at the
// Supabase Auth endpoint. Rejected credentials come back as an error status
// on the response, not as a Go error.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Response, *AuthResponse, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, nil, fmt.Errorf("marshal credentials: %w", err)
	}

	reqURL := c.baseURL + "/auth/v1/token?grant_type=password"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return resp, nil, nil
	}

	var auth AuthResponse
	if err := resp.JSON(&auth); err != nil {
		return resp, nil, fmt.Errorf("unmarshal auth response: %w", err)
	}
	return resp, &auth, nil
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	User        *User  `json:"user"`
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Error returns a non-nil error for 4xx and 5xx responses.
func (r *Response) Error() error {
	if r.StatusCode < 400 {
		return nil
	}
	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(r.Body, &errResp); err == nil {
		if errResp.Message != "" {
			return fmt.Errorf("supabase error: %s", errResp.Message)
		}
		if errResp.Error != "" {
			return fmt.Errorf("supabase error: %s", errResp.Error)
		}
	}
	return fmt.Errorf("supabase error: status %d", r.StatusCode)
}

// TotalCount parses the total from a Content-Range header such as "0-5/42"
// or "*/0".
func (r *Response) TotalCount() (int, error) {
	cr := r.Headers.Get("Content-Range")
	idx := strings.LastIndex(cr, "/")
	if idx < 0 {
		return 0, fmt.Errorf("missing total in Content-Range %q", cr)
	}
	total, err := strconv.Atoi(cr[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("invalid total in Content-Range %q: %w", cr, err)
	}
	return total, nil
}

func (c *Client) do(req *http.Request) (*Response, error) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Headers:    resp.Header,
	}, nil
}
