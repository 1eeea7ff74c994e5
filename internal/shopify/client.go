// Package shopify wraps the Shopify Admin REST API: paginated listing
// with Link-header cursors, shop metadata for credential validation,
// and webhook registration. The client never retries; retry policy
// belongs to the caller.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Credentials identifies one tenant's store and token.
type Credentials struct {
	ShopDomain  string
	AccessToken string
}

// Client talks to one store's Admin API. The http.Client is shared and
// must carry a timeout; every upstream call is bounded by it.
type Client struct {
	creds      Credentials
	apiVersion string
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a client for one store.
func NewClient(creds Credentials, apiVersion string, httpClient *http.Client, log *zap.Logger) *Client {
	return &Client{
		creds:      creds,
		apiVersion: apiVersion,
		httpClient: httpClient,
		log:        log,
	}
}

func (c *Client) baseURL() string {
	return fmt.Sprintf("https://%s/admin/api/%s", c.creds.ShopDomain, c.apiVersion)
}

// ListCustomers fetches one page of customers. An empty nextPageInfo
// means end-of-stream.
func (c *Client) ListCustomers(ctx context.Context, limit int, pageInfo string) ([]map[string]any, string, error) {
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	if pageInfo != "" {
		query.Set("page_info", pageInfo)
	}
	return c.fetchList(ctx, "customers", query)
}

// ListProducts fetches one page of products.
func (c *Client) ListProducts(ctx context.Context, limit int, pageInfo string) ([]map[string]any, string, error) {
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	if pageInfo != "" {
		query.Set("page_info", pageInfo)
	}
	return c.fetchList(ctx, "products", query)
}

// ListOrders fetches one page of orders. sinceID bounds the first page
// of an incremental sync to orders newer than the given external id;
// it is only valid when pageInfo is empty, the upstream rejects mixing
// a cursor with filters.
func (c *Client) ListOrders(ctx context.Context, limit int, pageInfo string, sinceID int64) ([]map[string]any, string, error) {
	query := url.Values{"limit": {strconv.Itoa(limit)}, "status": {"any"}}
	if pageInfo != "" {
		query.Set("page_info", pageInfo)
	} else if sinceID > 0 {
		query.Set("since_id", strconv.FormatInt(sinceID, 10))
	}
	return c.fetchList(ctx, "orders", query)
}

// GetShopInfo fetches store metadata. Onboarding uses it to validate
// credentials before creating the tenant.
func (c *Client) GetShopInfo(ctx context.Context) (map[string]any, error) {
	body, err := c.get(ctx, "shop", c.baseURL()+"/shop.json")
	if err != nil {
		return nil, err
	}

	var payload struct {
		Shop map[string]any `json:"shop"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &FetchError{Resource: "shop", Shop: c.creds.ShopDomain, Err: fmt.Errorf("decode response: %w", err)}
	}
	return payload.Shop, nil
}

// ListWebhooks returns the webhooks currently registered for the store.
func (c *Client) ListWebhooks(ctx context.Context) ([]map[string]any, error) {
	body, err := c.get(ctx, "webhooks", c.baseURL()+"/webhooks.json")
	if err != nil {
		return nil, err
	}

	var payload struct {
		Webhooks []map[string]any `json:"webhooks"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &FetchError{Resource: "webhooks", Shop: c.creds.ShopDomain, Err: fmt.Errorf("decode response: %w", err)}
	}
	return payload.Webhooks, nil
}

// RegisterWebhook subscribes the given address to a topic.
func (c *Client) RegisterWebhook(ctx context.Context, topic, address string) error {
	payload := map[string]any{
		"webhook": map[string]any{
			"topic":   topic,
			"address": address,
			"format":  "json",
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook subscription: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+"/webhooks.json", bytes.NewReader(body))
	if err != nil {
		return &FetchError{Resource: "webhooks", Shop: c.creds.ShopDomain, Err: err}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &FetchError{Resource: "webhooks", Shop: c.creds.ShopDomain, Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError("webhooks", resp.StatusCode)
	}
	return nil
}

// fetchList performs one paginated list call and extracts the
// next-page cursor from the Link response header.
func (c *Client) fetchList(ctx context.Context, resource string, query url.Values) ([]map[string]any, string, error) {
	reqURL := fmt.Sprintf("%s/%s.json?%s", c.baseURL(), resource, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, "", &FetchError{Resource: resource, Shop: c.creds.ShopDomain, Err: err}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", &FetchError{Resource: resource, Shop: c.creds.ShopDomain, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, "", c.statusError(resource, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &FetchError{Resource: resource, Shop: c.creds.ShopDomain, Err: fmt.Errorf("read response: %w", err)}
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, "", &FetchError{Resource: resource, Shop: c.creds.ShopDomain, Err: fmt.Errorf("decode response: %w", err)}
	}

	var records []map[string]any
	if raw, ok := payload[resource]; ok {
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, "", &FetchError{Resource: resource, Shop: c.creds.ShopDomain, Err: fmt.Errorf("decode %s list: %w", resource, err)}
		}
	}

	return records, extractPageInfo(resp.Header.Get("Link")), nil
}

func (c *Client) get(ctx context.Context, resource, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &FetchError{Resource: resource, Shop: c.creds.ShopDomain, Err: err}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Resource: resource, Shop: c.creds.ShopDomain, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, c.statusError(resource, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("X-Shopify-Access-Token", c.creds.AccessToken)
	req.Header.Set("Content-Type", "application/json")
}

func (c *Client) statusError(resource string, status int) error {
	err := fmt.Errorf("unexpected status %d", status)
	switch status {
	case http.StatusUnauthorized, http.StatusPaymentRequired, http.StatusForbidden:
		err = ErrCredentialRejected
	}
	return &FetchError{Resource: resource, Shop: c.creds.ShopDomain, StatusCode: status, Err: err}
}

var pageInfoPattern = regexp.MustCompile(`[?&]page_info=([^&>]+)`)

// extractPageInfo pulls the rel="next" page_info token out of a Link
// header. No next link means the stream is exhausted.
func extractPageInfo(linkHeader string) string {
	if linkHeader == "" {
		return ""
	}

	for _, link := range strings.Split(linkHeader, ",") {
		if !strings.Contains(link, `rel="next"`) {
			continue
		}
		match := pageInfoPattern.FindStringSubmatch(link)
		if match == nil {
			return ""
		}
		token, err := url.QueryUnescape(match[1])
		if err != nil {
			return match[1]
		}
		return token
	}
	return ""
}
