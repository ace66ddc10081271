package restsource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	datagrid "github.com/goliatone/go-datagrid/components/datagrid"
)

// HTTPConfig configures the REST client.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// HTTPClient talks to the rental backend search and column registry endpoints.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the backend at cfg.BaseURL.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("restsource: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  httpClient,
	}, nil
}

// Search calls GET {base}/{module}/search with the page and filter values as
// query parameters. The page index is sent zero based.
func (c *HTTPClient) Search(ctx context.Context, moduleKey string, query datagrid.RowQuery) (datagrid.RowPage, error) {
	if moduleKey == "" {
		return datagrid.RowPage{}, fmt.Errorf("restsource: module key is required")
	}
	params := searchParams(query)
	var resp searchResponse
	path := "/" + url.PathEscape(moduleKey) + "/search?" + params.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return datagrid.RowPage{}, err
	}
	return resp.toPage(), nil
}

// FetchColumns calls GET {base}/column-registry for one user and module. A 404
// means nothing was stored yet and yields no descriptors.
func (c *HTTPClient) FetchColumns(ctx context.Context, userID, moduleKey string) ([]datagrid.ColumnDescriptor, error) {
	params := url.Values{"userId": {userID}, "moduleKey": {moduleKey}}
	var resp []columnPayload
	err := c.do(ctx, http.MethodGet, "/column-registry?"+params.Encode(), nil, &resp)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]datagrid.ColumnDescriptor, len(resp))
	for i, col := range resp {
		out[i] = col.toDescriptor(moduleKey)
	}
	return out, nil
}

// SaveColumns calls PUT {base}/column-registry with the full descriptor set.
func (c *HTTPClient) SaveColumns(ctx context.Context, userID, moduleKey string, columns []datagrid.ColumnDescriptor) error {
	req := saveColumnsRequest{UserID: userID, ModuleKey: moduleKey, Columns: make([]columnPayload, len(columns))}
	for i, col := range columns {
		req.Columns[i] = columnPayload{
			ColumnHeader:            col.ColumnHeader,
			ColumnHeaderDescription: col.ColumnHeaderDescription,
			OrderIndex:              col.OrderIndex,
			IsSelected:              col.IsSelected,
		}
	}
	return c.do(ctx, http.MethodPut, "/column-registry", req, nil)
}

type remoteError struct {
	status int
	body   string
}

func (e *remoteError) Error() string {
	return fmt.Sprintf("restsource: remote error %d: %s", e.status, e.body)
}

func isNotFound(err error) bool {
	re, ok := err.(*remoteError)
	return ok && re.status == http.StatusNotFound
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload any, target any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("restsource: encode payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("restsource: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("restsource: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return &remoteError{status: resp.StatusCode, body: strings.TrimSpace(buf.String())}
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("restsource: decode response: %w", err)
	}
	return nil
}

// searchParams flattens the filter object into query values. Multi-select
// values are comma joined; keys are emitted in sorted order.
func searchParams(query datagrid.RowQuery) url.Values {
	params := url.Values{}
	params.Set("page", strconv.Itoa(query.Page.PageIndex))
	if query.Page.PageSize > 0 {
		params.Set("size", strconv.Itoa(query.Page.PageSize))
	}
	keys := make([]string, 0, len(query.Filters))
	for k := range query.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := query.Filters[k].(type) {
		case nil:
		case []string:
			if len(v) > 0 {
				params.Set(k, strings.Join(v, ","))
			}
		case string:
			if v != "" {
				params.Set(k, v)
			}
		default:
			params.Set(k, fmt.Sprint(v))
		}
	}
	return params
}

type searchResponse struct {
	Content       []map[string]any `json:"content"`
	TotalElements int              `json:"totalElements"`
}

func (r searchResponse) toPage() datagrid.RowPage {
	rows := make([]datagrid.Row, len(r.Content))
	for i, item := range r.Content {
		rows[i] = datagrid.Row(item)
	}
	return datagrid.RowPage{Rows: rows, TotalRecords: r.TotalElements}
}

type columnPayload struct {
	ColumnHeader            string `json:"columnHeader"`
	ColumnHeaderDescription string `json:"columnHeaderDescription"`
	OrderIndex              int    `json:"orderIndex"`
	IsSelected              bool   `json:"isSelected"`
}

func (p columnPayload) toDescriptor(moduleKey string) datagrid.ColumnDescriptor {
	return datagrid.ColumnDescriptor{
		ModuleKey:               moduleKey,
		ColumnHeader:            p.ColumnHeader,
		ColumnHeaderDescription: p.ColumnHeaderDescription,
		OrderIndex:              p.OrderIndex,
		IsSelected:              p.IsSelected,
	}
}

type saveColumnsRequest struct {
	UserID    string          `json:"userId"`
	ModuleKey string          `json:"moduleKey"`
	Columns   []columnPayload `json:"columns"`
}
