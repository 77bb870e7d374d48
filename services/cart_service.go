package services

import (
	"context"
	"fmt"

	"storefront-service/apperrors"
	"storefront-service/clients"
	"storefront-service/database"
	"storefront-service/models"

	"go.uber.org/zap"
)

// CartService owns every session's cart. Each mutation is persisted before
// the call returns.
type CartService interface {
	GetCart(ctx context.Context, sessionID string) (*models.CartSummary, error)
	AddItem(ctx context.Context, sessionID string, foodID int64, quantity int, price float64) (*models.CartSummary, error)
	IncrementItem(ctx context.Context, sessionID string, foodID int64) (*models.CartSummary, error)
	DecrementItem(ctx context.Context, sessionID string, foodID int64) (*models.CartSummary, error)
	RemoveItem(ctx context.Context, sessionID string, foodID int64) (*models.CartSummary, error)
	ClearCart(ctx context.Context, sessionID string) error
	ReleaseOrdered(ctx context.Context, sessionID string, ordered []models.CartLine) error
	Details(ctx context.Context, sessionID string) (*models.CartDetails, error)
}

type cartServiceImpl struct {
	store        database.KVStore
	api          clients.RestaurantAPI
	locks        *sessionLocks
	taxRate      float64
	imageBaseURL string
	logger       *zap.Logger
}

// NewCartService creates a CartService. Food thumbnails in Details are
// resolved against apiBaseURL.
func NewCartService(store database.KVStore, api clients.RestaurantAPI, apiBaseURL string, taxRate float64, logger *zap.Logger) CartService {
	return &cartServiceImpl{
		store:        store,
		api:          api,
		locks:        newSessionLocks(),
		taxRate:      taxRate,
		imageBaseURL: apiBaseURL + "/foods/images/",
		logger:       logger,
	}
}

func (s *cartServiceImpl) load(ctx context.Context, sessionID string) (*models.Cart, error) {
	cartJSON, _, err := s.store.Get(ctx, sessionID, models.KeyCart)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	pricesJSON, _, err := s.store.Get(ctx, sessionID, models.KeyProductPrices)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}

	cart, err := models.DecodeCart([]byte(cartJSON), []byte(pricesJSON))
	if err != nil {
		s.logger.Error("Corrupt cart state", zap.String("session_id", sessionID), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.ErrCorruptState, err)
	}
	if missing := cart.MissingPrices(); len(missing) > 0 {
		s.logger.Warn("Cart lines without cached price", zap.String("session_id", sessionID), zap.Int64s("food_ids", missing))
	}
	return cart, nil
}

func (s *cartServiceImpl) save(ctx context.Context, sessionID string, cart *models.Cart) error {
	cartJSON, pricesJSON, err := cart.Encode()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.store.SetMany(ctx, sessionID, map[string]string{
		models.KeyCart:          string(cartJSON),
		models.KeyProductPrices: string(pricesJSON),
	}); err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return nil
}

// mutate runs fn on the session's cart under the session lock and persists
// the result when fn succeeds.
func (s *cartServiceImpl) mutate(ctx context.Context, sessionID string, fn func(*models.Cart) error) (*models.CartSummary, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(cart); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sessionID, cart); err != nil {
		return nil, err
	}

	summary := cart.Summary(s.taxRate)
	return &summary, nil
}

func (s *cartServiceImpl) GetCart(ctx context.Context, sessionID string) (*models.CartSummary, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	summary := cart.Summary(s.taxRate)
	return &summary, nil
}

func (s *cartServiceImpl) AddItem(ctx context.Context, sessionID string, foodID int64, quantity int, price float64) (*models.CartSummary, error) {
	if foodID <= 0 {
		return nil, apperrors.ErrInvalidFoodID
	}
	if quantity < 1 {
		return nil, apperrors.Invalid(apperrors.ErrInvalidQuantity, "quantity must be at least 1")
	}
	if price <= 0 {
		return nil, apperrors.ErrInvalidPrice
	}

	summary, err := s.mutate(ctx, sessionID, func(c *models.Cart) error {
		if !c.Add(foodID, quantity, price) {
			return quantityLimit(foodID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cart item added",
		zap.String("session_id", sessionID),
		zap.Int64("food_id", foodID),
		zap.Int("quantity", quantity),
		zap.Float64("price", price),
	)
	return summary, nil
}

func (s *cartServiceImpl) IncrementItem(ctx context.Context, sessionID string, foodID int64) (*models.CartSummary, error) {
	return s.mutate(ctx, sessionID, func(c *models.Cart) error {
		qty, ok := c.Quantity(foodID)
		if !ok {
			return apperrors.ErrItemNotInCart
		}
		if qty >= models.MaxQuantity {
			return quantityLimit(foodID)
		}
		c.Increment(foodID)
		return nil
	})
}

func (s *cartServiceImpl) DecrementItem(ctx context.Context, sessionID string, foodID int64) (*models.CartSummary, error) {
	return s.mutate(ctx, sessionID, func(c *models.Cart) error {
		if !c.Decrement(foodID) {
			return apperrors.ErrItemNotInCart
		}
		return nil
	})
}

// RemoveItem drops foodID and its cached price. Removing an absent id is a no-op.
func (s *cartServiceImpl) RemoveItem(ctx context.Context, sessionID string, foodID int64) (*models.CartSummary, error) {
	return s.mutate(ctx, sessionID, func(c *models.Cart) error {
		if c.Remove(foodID) {
			s.logger.Info("Cart item removed", zap.String("session_id", sessionID), zap.Int64("food_id", foodID))
		}
		return nil
	})
}

// ClearCart overwrites the stored cart without reading it, so it also
// recovers a session whose cart data is corrupt.
func (s *cartServiceImpl) ClearCart(ctx context.Context, sessionID string) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	if err := s.save(ctx, sessionID, models.NewCart()); err != nil {
		return err
	}
	s.logger.Info("Cart cleared", zap.String("session_id", sessionID))
	return nil
}

// ReleaseOrdered takes the ordered quantities out of the cart under the
// session lock. Lines added while the order was being placed stay.
func (s *cartServiceImpl) ReleaseOrdered(ctx context.Context, sessionID string, ordered []models.CartLine) error {
	_, err := s.mutate(ctx, sessionID, func(c *models.Cart) error {
		for _, line := range ordered {
			c.Take(line.FoodID, line.Quantity)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("Ordered items released from cart", zap.String("session_id", sessionID), zap.Int("lines", len(ordered)))
	return nil
}

func quantityLimit(foodID int64) error {
	return apperrors.Invalid(apperrors.ErrInvalidQuantity, fmt.Sprintf("quantity of food %d cannot exceed %d", foodID, models.MaxQuantity))
}

// Details joins the cart with catalog data. Lines whose food no longer
// exists upstream are left out of the items and totals.
func (s *cartServiceImpl) Details(ctx context.Context, sessionID string) (*models.CartDetails, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	details := &models.CartDetails{Items: []models.CartItemDetail{}}
	if cart.Len() == 0 {
		return details, nil
	}

	foods, err := s.api.FoodsByIDs(ctx, cart.FoodIDs())
	if err != nil {
		s.logger.Error("Failed to load cart foods", zap.String("session_id", sessionID), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.ErrUpstream, err)
	}
	byID := make(map[int64]models.Food, len(foods))
	for _, f := range foods {
		byID[f.ID] = f
	}

	hydrated := models.NewCart()
	for _, line := range cart.Lines() {
		food, ok := byID[line.FoodID]
		if !ok {
			continue
		}
		if _, hasPrice := cart.Price(line.FoodID); !hasPrice {
			continue
		}
		hydrated.Add(line.FoodID, line.Quantity, line.UnitPrice)
		details.Items = append(details.Items, models.CartItemDetail{
			CartLine:    line,
			Name:        food.Name,
			Description: food.Description,
			Thumbnail:   s.imageBaseURL + food.Thumbnail,
		})
	}

	summary := hydrated.Summary(s.taxRate)
	details.TotalItems = summary.TotalItems
	details.Subtotal = summary.Subtotal
	details.Tax = summary.Tax
	details.Total = summary.Total
	return details, nil
}
