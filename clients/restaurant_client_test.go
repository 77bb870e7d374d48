package clients

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *RestaurantClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRestaurantClient(srv.URL+"/", 2*time.Second, zap.NewNop())
}

func TestIntrospect(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/introspect", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "vi", r.Header.Get("Accept-Language"))

		var body models.TokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "tok-1", body.Token)

		_, _ = w.Write([]byte(`{"code":0,"result":{"valid":true}}`))
	})

	valid, err := client.Introspect(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestIntrospectInvalid(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":0,"result":{"valid":false}}`))
	})

	valid, err := client.Introspect(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestEnvelopeErrorOnNonZeroCode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":1006,"message":"Unauthenticated"}`))
	})

	_, err := client.Refresh(context.Background(), "old")

	var envErr *EnvelopeError
	require.ErrorAs(t, err, &envErr)
	assert.Equal(t, 1006, envErr.Code)
	assert.Equal(t, http.StatusUnauthorized, envErr.HTTPStatus)
	assert.Equal(t, "Unauthenticated", envErr.Message)
}

func TestDecodeErrorOnMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway timeout</html>`))
	})

	_, err := client.ListCategories(context.Background())

	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, "GET /categories", decErr.Endpoint)
}

func TestDecodeErrorOnWrongShape(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":0,"result":{"valid":"yes"}}`))
	})

	_, err := client.Introspect(context.Background(), "t")

	var decErr *DecodeError
	assert.ErrorAs(t, err, &decErr)
}

func TestDecodeErrorOnIncompleteEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"empty object", `{}`, errMissingCode},
		{"result only", `{"result":{"id":1}}`, errMissingCode},
		{"code without result", `{"code":0}`, errMissingResult},
		{"null result", `{"code":0,"result":null}`, errMissingResult},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/user/myInfo", r.URL.Path)
				_, _ = w.Write([]byte(tt.body))
			})

			user, err := client.MyInfo(context.Background(), "tok")

			assert.Nil(t, user)
			var decErr *DecodeError
			require.ErrorAs(t, err, &decErr)
			assert.Equal(t, "GET /user/myInfo", decErr.Endpoint)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestListWithoutResultIsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":0}`))
	})

	categories, err := client.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestRefresh(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/refresh", r.URL.Path)
		_, _ = w.Write([]byte(`{"code":0,"result":{"token":"new-token","authenticated":true}}`))
	})

	token, err := client.Refresh(context.Background(), "old")
	require.NoError(t, err)
	assert.Equal(t, "new-token", token)
}

func TestRefreshEmptyToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":0,"result":{"token":""}}`))
	})

	_, err := client.Refresh(context.Background(), "old")
	var decErr *DecodeError
	assert.ErrorAs(t, err, &decErr)
}

func TestFoodsByIDs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/foods/by-ids", r.URL.Path)
		assert.Equal(t, "5,8", r.URL.Query().Get("ids"))
		_, _ = w.Write([]byte(`{"code":0,"result":[{"id":5,"name":"Pho","price":50000,"thumbnail":"pho.jpg"}]}`))
	})

	foods, err := client.FoodsByIDs(context.Background(), []int64{5, 8})
	require.NoError(t, err)
	require.Len(t, foods, 1)
	assert.Equal(t, "Pho", foods[0].Name)
}

func TestListFoodsQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "12", q.Get("limit"))
		assert.Equal(t, "0", q.Get("page"))
		assert.Equal(t, "bun cha", q.Get("keyword"))
		assert.Equal(t, "3", q.Get("category_id"))
		assert.Equal(t, "", q.Get("section_id"))
		_, _ = w.Write([]byte(`{"code":0,"result":{"foodResponseList":[{"id":1,"active":true}],"totalPages":4}}`))
	})

	cat := int64(3)
	page, err := client.ListFoods(context.Background(), models.FoodQuery{Limit: 12, Keyword: "bun cha", CategoryID: &cat})
	require.NoError(t, err)
	assert.Equal(t, 4, page.TotalPages)
	assert.Len(t, page.Foods, 1)
}

func TestCreatePaymentURL(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body models.PaymentURLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 110000.0, body.Amount)
		assert.Equal(t, "vi", body.Language)
		_, _ = w.Write([]byte(`{"status":"OK","data":"https://pay.test/vpcpay.html?vnp_TxnRef=123"}`))
	})

	out, err := client.CreatePaymentURL(context.Background(), "tok", &models.PaymentURLRequest{Amount: 110000, Language: "vi"})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.test/vpcpay.html?vnp_TxnRef=123", out.URL)
}

func TestCreatePaymentURLRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"FAILED"}`))
	})

	_, err := client.CreatePaymentURL(context.Background(), "tok", &models.PaymentURLRequest{Amount: 1})
	var envErr *EnvelopeError
	require.ErrorAs(t, err, &envErr)
	assert.Equal(t, "FAILED", envErr.Message)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewRestaurantClient(srv.URL, time.Second, zap.NewNop())
	srv.Close()

	_, err := client.ListPayments(context.Background())
	require.Error(t, err)

	var envErr *EnvelopeError
	var decErr *DecodeError
	assert.False(t, errors.As(err, &envErr))
	assert.False(t, errors.As(err, &decErr))
}

func TestUpdateOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/order/77", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"status": "CANCELLED"}, body)
		_, _ = w.Write([]byte(`{"code":0,"result":null}`))
	})

	err := client.UpdateOrder(context.Background(), "tok", 77, &models.UpdateOrderRequest{Status: models.OrderCancelled})
	assert.NoError(t, err)
}
