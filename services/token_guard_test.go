package services_test

import (
	"context"
	"errors"
	"testing"

	"storefront-service/database"
	"storefront-service/models"
	"storefront-service/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTokenGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("No stored token", func(t *testing.T) {
		api := &MockRestaurantAPI{}
		guard := services.NewTokenGuard(database.NewMemoryKVStore(), api, testLogger(t))

		token, ok := guard.EnsureValidToken(ctx, "s1")
		assert.False(t, ok)
		assert.Empty(t, token)
		api.AssertNotCalled(t, "Introspect", mock.Anything, mock.Anything)
	})

	t.Run("Valid token is returned as is", func(t *testing.T) {
		store := database.NewMemoryKVStore()
		require.NoError(t, store.Set(ctx, "s1", models.KeyAuthToken, "tok-1"))
		api := &MockRestaurantAPI{}
		api.On("Introspect", mock.Anything, "tok-1").Return(true, nil).Once()

		guard := services.NewTokenGuard(store, api, testLogger(t))
		token, ok := guard.EnsureValidToken(ctx, "s1")

		assert.True(t, ok)
		assert.Equal(t, "tok-1", token)
		api.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
		api.AssertExpectations(t)
	})

	t.Run("Invalid token triggers exactly one refresh", func(t *testing.T) {
		store := database.NewMemoryKVStore()
		require.NoError(t, store.Set(ctx, "s1", models.KeyAuthToken, "old"))
		api := &MockRestaurantAPI{}
		api.On("Introspect", mock.Anything, "old").Return(false, nil).Once()
		api.On("Refresh", mock.Anything, "old").Return("new", nil).Once()

		guard := services.NewTokenGuard(store, api, testLogger(t))
		token, ok := guard.EnsureValidToken(ctx, "s1")

		assert.True(t, ok)
		assert.Equal(t, "new", token)
		stored, _, _ := store.Get(ctx, "s1", models.KeyAuthToken)
		assert.Equal(t, "new", stored)
		api.AssertNumberOfCalls(t, "Refresh", 1)
		api.AssertExpectations(t)
	})

	t.Run("Introspection failure counts as invalid", func(t *testing.T) {
		store := database.NewMemoryKVStore()
		require.NoError(t, store.Set(ctx, "s1", models.KeyAuthToken, "old"))
		api := &MockRestaurantAPI{}
		api.On("Introspect", mock.Anything, "old").Return(false, errors.New("connection reset")).Once()
		api.On("Refresh", mock.Anything, "old").Return("new", nil).Once()

		guard := services.NewTokenGuard(store, api, testLogger(t))
		token, ok := guard.EnsureValidToken(ctx, "s1")

		assert.True(t, ok)
		assert.Equal(t, "new", token)
		api.AssertNumberOfCalls(t, "Refresh", 1)
	})

	t.Run("Failed refresh yields no token", func(t *testing.T) {
		store := database.NewMemoryKVStore()
		require.NoError(t, store.Set(ctx, "s1", models.KeyAuthToken, "old"))
		api := &MockRestaurantAPI{}
		api.On("Introspect", mock.Anything, "old").Return(false, nil).Once()
		api.On("Refresh", mock.Anything, "old").Return("", errors.New("expired")).Once()

		guard := services.NewTokenGuard(store, api, testLogger(t))
		token, ok := guard.EnsureValidToken(ctx, "s1")

		assert.False(t, ok)
		assert.Empty(t, token)
		stored, _, _ := store.Get(ctx, "s1", models.KeyAuthToken)
		assert.Equal(t, "old", stored)
		api.AssertNumberOfCalls(t, "Refresh", 1)
	})
}
