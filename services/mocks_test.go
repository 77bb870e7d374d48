package services_test

import (
	"context"
	"testing"

	"storefront-service/database"
	"storefront-service/models"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// --- Mock Restaurant API ---

type MockRestaurantAPI struct {
	mock.Mock
}

func (m *MockRestaurantAPI) Login(ctx context.Context, phoneNumber, password string) (*models.AuthResult, error) {
	args := m.Called(ctx, phoneNumber, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthResult), args.Error(1)
}

func (m *MockRestaurantAPI) MyInfo(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRestaurantAPI) Introspect(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockRestaurantAPI) Refresh(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func (m *MockRestaurantAPI) FoodsByIDs(ctx context.Context, ids []int64) ([]models.Food, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Food), args.Error(1)
}

func (m *MockRestaurantAPI) ListFoods(ctx context.Context, q models.FoodQuery) (*models.FoodPage, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FoodPage), args.Error(1)
}

func (m *MockRestaurantAPI) GetFood(ctx context.Context, id int64) (*models.Food, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Food), args.Error(1)
}

func (m *MockRestaurantAPI) ListCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockRestaurantAPI) ListSections(ctx context.Context) ([]models.Section, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Section), args.Error(1)
}

func (m *MockRestaurantAPI) ListTables(ctx context.Context, startTime, endTime string) ([]models.Table, error) {
	args := m.Called(ctx, startTime, endTime)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Table), args.Error(1)
}

func (m *MockRestaurantAPI) ListPayments(ctx context.Context) ([]models.PaymentMethod, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PaymentMethod), args.Error(1)
}

func (m *MockRestaurantAPI) CreateOrder(ctx context.Context, token string, req *models.CreateOrderRequest) (*models.Order, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockRestaurantAPI) OrdersByUser(ctx context.Context, token string, userID int64) ([]models.Order, error) {
	args := m.Called(ctx, token, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockRestaurantAPI) OrderDetails(ctx context.Context, token string, orderID int64) ([]models.OrderDetail, error) {
	args := m.Called(ctx, token, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OrderDetail), args.Error(1)
}

func (m *MockRestaurantAPI) UpdateOrder(ctx context.Context, token string, orderID int64, req *models.UpdateOrderRequest) error {
	args := m.Called(ctx, token, orderID, req)
	return args.Error(0)
}

func (m *MockRestaurantAPI) CreatePaymentURL(ctx context.Context, token string, req *models.PaymentURLRequest) (*models.PaymentURLResponse, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentURLResponse), args.Error(1)
}

func (m *MockRestaurantAPI) PaymentResult(ctx context.Context, token, txnRef string) error {
	args := m.Called(ctx, token, txnRef)
	return args.Error(0)
}

// --- Mock Publisher ---

type recordingPublisher struct {
	events []models.CheckoutEvent
	err    error
}

func (p *recordingPublisher) PublishCheckout(_ context.Context, event models.CheckoutEvent) error {
	p.events = append(p.events, event)
	return p.err
}

// --- Failing Store ---

type failingStore struct {
	database.KVStore
	err error
}

func (f *failingStore) Get(context.Context, string, string) (string, bool, error) {
	return "", false, f.err
}

func (f *failingStore) SetMany(context.Context, string, map[string]string) error {
	return f.err
}

// --- Helpers ---

func testLogger(t *testing.T) *zap.Logger {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	return logger
}
