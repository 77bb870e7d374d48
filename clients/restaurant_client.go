package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"storefront-service/models"

	"go.uber.org/zap"
)

// RestaurantAPI is the subset of the restaurant backend the storefront uses.
type RestaurantAPI interface {
	Login(ctx context.Context, phoneNumber, password string) (*models.AuthResult, error)
	MyInfo(ctx context.Context, token string) (*models.User, error)
	Introspect(ctx context.Context, token string) (bool, error)
	Refresh(ctx context.Context, token string) (string, error)

	FoodsByIDs(ctx context.Context, ids []int64) ([]models.Food, error)
	ListFoods(ctx context.Context, q models.FoodQuery) (*models.FoodPage, error)
	GetFood(ctx context.Context, id int64) (*models.Food, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListSections(ctx context.Context) ([]models.Section, error)
	ListTables(ctx context.Context, startTime, endTime string) ([]models.Table, error)
	ListPayments(ctx context.Context) ([]models.PaymentMethod, error)

	CreateOrder(ctx context.Context, token string, req *models.CreateOrderRequest) (*models.Order, error)
	OrdersByUser(ctx context.Context, token string, userID int64) ([]models.Order, error)
	OrderDetails(ctx context.Context, token string, orderID int64) ([]models.OrderDetail, error)
	UpdateOrder(ctx context.Context, token string, orderID int64, req *models.UpdateOrderRequest) error
	CreatePaymentURL(ctx context.Context, token string, req *models.PaymentURLRequest) (*models.PaymentURLResponse, error)
	PaymentResult(ctx context.Context, token, txnRef string) error
}

// DecodeError means the upstream body did not have the expected shape.
type DecodeError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s (status %d): %v", e.Endpoint, e.Status, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EnvelopeError is a well-formed upstream reply that signals failure.
type EnvelopeError struct {
	Endpoint   string
	HTTPStatus int
	Code       int
	Message    string
}

func (e *EnvelopeError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s failed: code=%d status=%d: %s", e.Endpoint, e.Code, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("%s failed: code=%d status=%d", e.Endpoint, e.Code, e.HTTPStatus)
}

type RestaurantClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewRestaurantClient(baseURL string, timeout time.Duration, logger *zap.Logger) *RestaurantClient {
	return &RestaurantClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (r *RestaurantClient) do(ctx context.Context, method, path string, query url.Values, token string, payload any) (*http.Response, error) {
	u := r.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "vi")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn("restaurant request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	r.logger.Debug("restaurant request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)
	return resp, nil
}

var (
	errMissingCode   = errors.New("envelope has no code")
	errMissingResult = errors.New("envelope has no result")
)

// call performs a request and validates the {code, result} envelope.
// Pointer results must be present; a missing or null result is a DecodeError.
func call[T any](ctx context.Context, r *RestaurantClient, method, path string, query url.Values, token string, payload any) (T, error) {
	var zero T
	endpoint := method + " " + path

	resp, err := r.do(ctx, method, path, query, token, payload)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()

	var env models.Envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return zero, &DecodeError{Endpoint: endpoint, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode >= http.StatusBadRequest || (env.Code != nil && *env.Code != 0) {
		envErr := &EnvelopeError{Endpoint: endpoint, HTTPStatus: resp.StatusCode, Message: env.Message}
		if env.Code != nil {
			envErr.Code = *env.Code
		}
		return zero, envErr
	}
	if env.Code == nil {
		return zero, &DecodeError{Endpoint: endpoint, Status: resp.StatusCode, Err: errMissingCode}
	}
	if isNilPointer(env.Result) {
		return zero, &DecodeError{Endpoint: endpoint, Status: resp.StatusCode, Err: errMissingResult}
	}
	return env.Result, nil
}

func isNilPointer[T any](v T) bool {
	rv := reflect.ValueOf(&v).Elem()
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func (r *RestaurantClient) Login(ctx context.Context, phoneNumber, password string) (*models.AuthResult, error) {
	return call[*models.AuthResult](ctx, r, http.MethodPost, "/auth/log-in", nil, "",
		models.LoginRequest{PhoneNumber: phoneNumber, Password: password})
}

func (r *RestaurantClient) MyInfo(ctx context.Context, token string) (*models.User, error) {
	return call[*models.User](ctx, r, http.MethodGet, "/user/myInfo", nil, token, nil)
}

// Introspect asks the backend whether token is still valid.
func (r *RestaurantClient) Introspect(ctx context.Context, token string) (bool, error) {
	res, err := call[*models.IntrospectResult](ctx, r, http.MethodPost, "/auth/introspect", nil, token,
		models.TokenRequest{Token: token})
	if err != nil {
		return false, err
	}
	return res != nil && res.Valid, nil
}

// Refresh exchanges token for a new one.
func (r *RestaurantClient) Refresh(ctx context.Context, token string) (string, error) {
	res, err := call[*models.AuthResult](ctx, r, http.MethodPost, "/auth/refresh", nil, "",
		models.TokenRequest{Token: token})
	if err != nil {
		return "", err
	}
	if res == nil || res.Token == "" {
		return "", &DecodeError{Endpoint: "POST /auth/refresh", Status: http.StatusOK, Err: fmt.Errorf("empty token")}
	}
	return res.Token, nil
}

func (r *RestaurantClient) FoodsByIDs(ctx context.Context, ids []int64) ([]models.Food, error) {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	q := url.Values{"ids": {strings.Join(parts, ",")}}
	return call[[]models.Food](ctx, r, http.MethodGet, "/foods/by-ids", q, "", nil)
}

func (r *RestaurantClient) ListFoods(ctx context.Context, fq models.FoodQuery) (*models.FoodPage, error) {
	q := url.Values{
		"limit":       {strconv.Itoa(fq.Limit)},
		"page":        {strconv.Itoa(fq.Page)},
		"keyword":     {fq.Keyword},
		"category_id": {optionalID(fq.CategoryID)},
		"section_id":  {optionalID(fq.SectionID)},
	}
	return call[*models.FoodPage](ctx, r, http.MethodGet, "/foods", q, "", nil)
}

func (r *RestaurantClient) GetFood(ctx context.Context, id int64) (*models.Food, error) {
	return call[*models.Food](ctx, r, http.MethodGet, "/foods/"+strconv.FormatInt(id, 10), nil, "", nil)
}

func (r *RestaurantClient) ListCategories(ctx context.Context) ([]models.Category, error) {
	return call[[]models.Category](ctx, r, http.MethodGet, "/categories", nil, "", nil)
}

func (r *RestaurantClient) ListSections(ctx context.Context) ([]models.Section, error) {
	return call[[]models.Section](ctx, r, http.MethodGet, "/sections", nil, "", nil)
}

func (r *RestaurantClient) ListTables(ctx context.Context, startTime, endTime string) ([]models.Table, error) {
	var q url.Values
	if startTime != "" && endTime != "" {
		q = url.Values{"startTime": {startTime}, "endTime": {endTime}}
	}
	return call[[]models.Table](ctx, r, http.MethodGet, "/tables", q, "", nil)
}

func (r *RestaurantClient) ListPayments(ctx context.Context) ([]models.PaymentMethod, error) {
	return call[[]models.PaymentMethod](ctx, r, http.MethodGet, "/payments", nil, "", nil)
}

func (r *RestaurantClient) CreateOrder(ctx context.Context, token string, req *models.CreateOrderRequest) (*models.Order, error) {
	return call[*models.Order](ctx, r, http.MethodPost, "/order", nil, token, req)
}

func (r *RestaurantClient) OrdersByUser(ctx context.Context, token string, userID int64) ([]models.Order, error) {
	return call[[]models.Order](ctx, r, http.MethodGet, "/order/user/"+strconv.FormatInt(userID, 10), nil, token, nil)
}

func (r *RestaurantClient) OrderDetails(ctx context.Context, token string, orderID int64) ([]models.OrderDetail, error) {
	return call[[]models.OrderDetail](ctx, r, http.MethodGet, "/order-details/orders/"+strconv.FormatInt(orderID, 10), nil, token, nil)
}

func (r *RestaurantClient) UpdateOrder(ctx context.Context, token string, orderID int64, req *models.UpdateOrderRequest) error {
	_, err := call[json.RawMessage](ctx, r, http.MethodPut, "/order/"+strconv.FormatInt(orderID, 10), nil, token, req)
	return err
}

// CreatePaymentURL asks the backend for a VNPay redirect URL. This endpoint
// answers {status, data} instead of the usual envelope.
func (r *RestaurantClient) CreatePaymentURL(ctx context.Context, token string, req *models.PaymentURLRequest) (*models.PaymentURLResponse, error) {
	const endpoint = "POST /payments/create_payment_url"

	resp, err := r.do(ctx, http.MethodPost, "/payments/create_payment_url", nil, token, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out models.PaymentURLResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &DecodeError{Endpoint: endpoint, Status: resp.StatusCode, Err: err}
	}
	if out.Status != "OK" || out.URL == "" {
		return nil, &EnvelopeError{Endpoint: endpoint, HTTPStatus: resp.StatusCode, Message: out.Status}
	}
	return &out, nil
}

func (r *RestaurantClient) PaymentResult(ctx context.Context, token, txnRef string) error {
	_, err := call[json.RawMessage](ctx, r, http.MethodPost, "/payments/result/"+url.PathEscape(txnRef), nil, token, nil)
	return err
}

func optionalID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}
