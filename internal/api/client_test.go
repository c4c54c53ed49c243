package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

type stubRecorder struct {
	operations []string
	failures   int
}

func (s *stubRecorder) RecordAPIRequest(operation string, _ time.Duration, err error) {
	s.operations = append(s.operations, operation)
	if err != nil {
		s.failures++
	}
}

func TestListProductsRewritesImages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/weblarek/product", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total":2,"items":[
			{"id":"a","title":"A","image":"/5_Dots.svg","category":"софт-скил","price":750},
			{"id":"b","title":"B","image":"https://elsewhere/b.svg","category":"другое","price":null}
		]}`))
	}))
	defer srv.Close()

	rec := &stubRecorder{}
	client := New(srv.URL+"/api/weblarek", "https://cdn.test/content/weblarek/", srv.Client(), WithRecorder(rec))

	list, err := client.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, "https://cdn.test/content/weblarek/5_Dots.svg", list.Items[0].Image)
	assert.Equal(t, "https://elsewhere/b.svg", list.Items[1].Image)
	assert.True(t, list.Items[0].Price.Decimal.Equal(decimal.NewFromInt(750)))
	assert.False(t, list.Items[1].Price.Valid)
	assert.Equal(t, domain.CategorySoftSkill, list.Items[0].Category)
	assert.Equal(t, []string{"list_products"}, rec.operations)
}

func TestGetProduct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/product/a":
			_, _ = w.Write([]byte(`{"id":"a","title":"A","image":"a.svg","price":10}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"NotFound"}`))
		}
	}))
	defer srv.Close()

	client := New(srv.URL, "https://cdn.test", nil)

	p, err := client.GetProduct(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/a.svg", p.Image)

	_, err = client.GetProduct(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "NotFound", apiErr.Message)
}

func TestSubmitOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/order", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "card", body["payment"])
		assert.Equal(t, float64(300), body["total"])
		assert.Equal(t, []any{"a", "b"}, body["items"])

		_, _ = w.Write([]byte(`{"id":"order-1","total":300}`))
	}))
	defer srv.Close()

	client := New(srv.URL, "", srv.Client())
	res, err := client.SubmitOrder(context.Background(), domain.OrderRequest{
		Payment: domain.PaymentCard,
		Address: "Main st 1",
		Email:   "a@b.c",
		Phone:   "+7",
		Total:   decimal.NewFromInt(300),
		Items:   []string{"a", "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, "order-1", res.ID)
	assert.True(t, res.Total.Equal(decimal.NewFromInt(300)))
}

func TestSubmitEmptyOrder(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		calls++
	}))
	defer srv.Close()

	rec := &stubRecorder{}
	client := New(srv.URL, "", srv.Client(), WithRecorder(rec))
	_, err := client.SubmitOrder(context.Background(), domain.OrderRequest{
		Payment: domain.PaymentCash,
		Total:   decimal.NewFromInt(300),
	})
	assert.ErrorIs(t, err, domain.ErrEmptyOrder)
	assert.Zero(t, calls)
	assert.Empty(t, rec.operations)
}

func TestErrorStatusWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	rec := &stubRecorder{}
	client := New(srv.URL, "", srv.Client(), WithRecorder(rec))
	_, err := client.SubmitOrder(context.Background(), domain.OrderRequest{Items: []string{"a"}})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, rec.failures)
}

func TestCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(srv.URL, "", srv.Client()).ListProducts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
