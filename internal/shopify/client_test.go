package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewTLSServer(handler)
	t.Cleanup(srv.Close)

	creds := Credentials{
		ShopDomain:  strings.TrimPrefix(srv.URL, "https://"),
		AccessToken: "shpat_test",
	}
	return NewClient(creds, "2024-01", srv.Client(), zap.NewNop()), srv
}

func TestListCustomers_FollowsLinkHeaderPagination(t *testing.T) {
	var requests []string
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.RawQuery)
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))
		assert.Equal(t, "/admin/api/2024-01/customers.json", r.URL.Path)

		switch r.URL.Query().Get("page_info") {
		case "":
			w.Header().Set("Link", `<https://example.myshopify.com/admin/api/2024-01/customers.json?limit=2&page_info=cursor2>; rel="next"`)
			fmt.Fprint(w, `{"customers":[{"id":1},{"id":2}]}`)
		case "cursor2":
			fmt.Fprint(w, `{"customers":[{"id":3}]}`)
		default:
			t.Errorf("unexpected page_info %q", r.URL.Query().Get("page_info"))
		}
	})
	_ = srv

	records, next, err := client.ListCustomers(context.Background(), 2, "")
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "cursor2", next)

	records, next, err = client.ListCustomers(context.Background(), 2, next)
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Empty(t, next)
	assert.Len(t, requests, 2)
}

func TestListOrders_SinceIDOnlyOnFirstPage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "any", q.Get("status"))

		if q.Get("page_info") == "" {
			assert.Equal(t, "100", q.Get("since_id"))
			w.Header().Set("Link", `<https://x/admin?page_info=nextpage>; rel="next"`)
			fmt.Fprint(w, `{"orders":[{"id":101}]}`)
			return
		}
		assert.Empty(t, q.Get("since_id"))
		fmt.Fprint(w, `{"orders":[{"id":102}]}`)
	})

	records, next, err := client.ListOrders(context.Background(), 50, "", 100)
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "nextpage", next)

	records, next, err = client.ListOrders(context.Background(), 50, next, 100)
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Empty(t, next)
}

func TestListProducts_CredentialRejection(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, _, err := client.ListProducts(context.Background(), 50, "")

	assert.True(t, errors.Is(err, ErrCredentialRejected))

	var fetchErr *FetchError
	assert.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "products", fetchErr.Resource)
	assert.Equal(t, http.StatusUnauthorized, fetchErr.StatusCode)
}

func TestListProducts_TransientFailureIsNotCredentialError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, _, err := client.ListProducts(context.Background(), 50, "")

	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrCredentialRejected))
}

func TestGetShopInfo(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2024-01/shop.json", r.URL.Path)
		fmt.Fprint(w, `{"shop":{"id":99,"name":"Acme Store"}}`)
	})

	shop, err := client.GetShopInfo(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, "Acme Store", shop["name"])
}

func TestRegisterWebhook(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/api/2024-01/webhooks.json", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
	})

	err := client.RegisterWebhook(context.Background(), "orders/create", "https://app.example.com/webhooks/shopify")

	assert.NoError(t, err)
}

func TestListWebhooks(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"webhooks":[{"id":1,"topic":"orders/create"}]}`)
	})

	hooks, err := client.ListWebhooks(context.Background())

	assert.NoError(t, err)
	assert.Len(t, hooks, 1)
	assert.Equal(t, "orders/create", hooks[0]["topic"])
}

func TestExtractPageInfo(t *testing.T) {
	next := `<https://shop.myshopify.com/admin/api/2024-01/orders.json?limit=250&page_info=abc123>; rel="next"`
	prev := `<https://shop.myshopify.com/admin/api/2024-01/orders.json?limit=250&page_info=zzz>; rel="previous"`

	assert.Equal(t, "abc123", extractPageInfo(next))
	assert.Equal(t, "abc123", extractPageInfo(prev+", "+next))
	assert.Empty(t, extractPageInfo(prev))
	assert.Empty(t, extractPageInfo(""))
}
