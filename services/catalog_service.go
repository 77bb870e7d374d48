package services

import (
	"context"
	"errors"
	"net/http"

	"storefront-service/apperrors"
	"storefront-service/clients"
	"storefront-service/models"

	"go.uber.org/zap"
)

const (
	defaultFoodPageSize = 12
	maxFoodPageSize     = 100
)

// CatalogService exposes the restaurant menu to the storefront.
type CatalogService interface {
	ListFoods(ctx context.Context, q models.FoodQuery) (*models.FoodPage, error)
	GetFood(ctx context.Context, id int64) (*models.Food, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListSections(ctx context.Context) ([]models.Section, error)
	ListTables(ctx context.Context, startTime, endTime string) ([]models.Table, error)
	ListPayments(ctx context.Context) ([]models.PaymentMethod, error)
}

type catalogServiceImpl struct {
	api    clients.RestaurantAPI
	logger *zap.Logger
}

func NewCatalogService(api clients.RestaurantAPI, logger *zap.Logger) CatalogService {
	return &catalogServiceImpl{api: api, logger: logger}
}

// ListFoods takes a 1-based page and returns only active foods.
func (s *catalogServiceImpl) ListFoods(ctx context.Context, q models.FoodQuery) (*models.FoodPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = defaultFoodPageSize
	}
	if q.Limit > maxFoodPageSize {
		q.Limit = maxFoodPageSize
	}
	q.Page--

	page, err := s.api.ListFoods(ctx, q)
	if err != nil {
		return nil, s.upstream("list foods", err)
	}
	if page == nil {
		return &models.FoodPage{Foods: []models.Food{}}, nil
	}

	active := make([]models.Food, 0, len(page.Foods))
	for _, f := range page.Foods {
		if f.Active {
			active = append(active, f)
		}
	}
	page.Foods = active
	return page, nil
}

func (s *catalogServiceImpl) GetFood(ctx context.Context, id int64) (*models.Food, error) {
	if id <= 0 {
		return nil, apperrors.ErrInvalidFoodID
	}
	food, err := s.api.GetFood(ctx, id)
	if err != nil {
		return nil, s.upstream("get food", err)
	}
	if food == nil {
		return nil, apperrors.ErrNotFound
	}
	return food, nil
}

func (s *catalogServiceImpl) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.api.ListCategories(ctx)
	if err != nil {
		return nil, s.upstream("list categories", err)
	}
	return categories, nil
}

func (s *catalogServiceImpl) ListSections(ctx context.Context) ([]models.Section, error) {
	sections, err := s.api.ListSections(ctx)
	if err != nil {
		return nil, s.upstream("list sections", err)
	}
	return sections, nil
}

// ListTables returns table availability for a time window. Both bounds
// must be given together.
func (s *catalogServiceImpl) ListTables(ctx context.Context, startTime, endTime string) ([]models.Table, error) {
	if (startTime == "") != (endTime == "") {
		return nil, apperrors.Invalid(apperrors.ErrBadRequest, "startTime and endTime must be given together")
	}
	tables, err := s.api.ListTables(ctx, startTime, endTime)
	if err != nil {
		return nil, s.upstream("list tables", err)
	}
	return tables, nil
}

func (s *catalogServiceImpl) ListPayments(ctx context.Context) ([]models.PaymentMethod, error) {
	payments, err := s.api.ListPayments(ctx)
	if err != nil {
		return nil, s.upstream("list payments", err)
	}
	return payments, nil
}

// upstream maps a client error to an application error. A 404 from the
// backend stays a 404.
func (s *catalogServiceImpl) upstream(op string, err error) error {
	var envErr *clients.EnvelopeError
	if errors.As(err, &envErr) && envErr.HTTPStatus == http.StatusNotFound {
		return apperrors.Wrap(apperrors.ErrNotFound, err)
	}
	s.logger.Error("Catalog request failed", zap.String("op", op), zap.Error(err))
	return apperrors.Wrap(apperrors.ErrUpstream, err)
}
