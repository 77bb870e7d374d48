package services

import (
	"context"

	"storefront-service/clients"
	"storefront-service/database"
	"storefront-service/models"

	"go.uber.org/zap"
)

// TokenGuard hands out a usable auth token for a session, refreshing it
// once when the backend no longer accepts it.
type TokenGuard interface {
	EnsureValidToken(ctx context.Context, sessionID string) (string, bool)
}

type tokenGuardImpl struct {
	store  database.KVStore
	api    clients.RestaurantAPI
	logger *zap.Logger
}

func NewTokenGuard(store database.KVStore, api clients.RestaurantAPI, logger *zap.Logger) TokenGuard {
	return &tokenGuardImpl{store: store, api: api, logger: logger}
}

// EnsureValidToken introspects the stored token on every call. An
// introspection failure counts as invalid and triggers a single refresh.
// The second return value is false when the session has no usable token.
func (g *tokenGuardImpl) EnsureValidToken(ctx context.Context, sessionID string) (string, bool) {
	token, ok, err := g.store.Get(ctx, sessionID, models.KeyAuthToken)
	if err != nil {
		g.logger.Error("Failed to read auth token", zap.String("session_id", sessionID), zap.Error(err))
		return "", false
	}
	if !ok || token == "" {
		return "", false
	}

	valid, err := g.api.Introspect(ctx, token)
	if err != nil {
		g.logger.Warn("Token introspection failed", zap.String("session_id", sessionID), zap.Error(err))
	}
	if valid {
		return token, true
	}

	refreshed, err := g.api.Refresh(ctx, token)
	if err != nil {
		g.logger.Warn("Token refresh failed", zap.String("session_id", sessionID), zap.Error(err))
		return "", false
	}
	if err := g.store.Set(ctx, sessionID, models.KeyAuthToken, refreshed); err != nil {
		g.logger.Error("Failed to persist refreshed token", zap.String("session_id", sessionID), zap.Error(err))
		return "", false
	}

	g.logger.Info("Auth token refreshed", zap.String("session_id", sessionID))
	return refreshed, true
}
