package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"storefront-service/apperrors"
	"storefront-service/clients"
	"storefront-service/database"
	"storefront-service/models"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

// SessionService manages the signed-in user of a storefront session.
type SessionService interface {
	Login(ctx context.Context, sessionID, phoneNumber, password string) (*models.SessionInfo, error)
	Logout(ctx context.Context, sessionID string) error
	CurrentUser(ctx context.Context, sessionID string) (*models.User, error)
	Role(ctx context.Context, sessionID string) (string, error)
	Session(ctx context.Context, sessionID string) (*models.SessionInfo, error)
}

type sessionServiceImpl struct {
	store  database.KVStore
	api    clients.RestaurantAPI
	logger *zap.Logger
}

func NewSessionService(store database.KVStore, api clients.RestaurantAPI, logger *zap.Logger) SessionService {
	return &sessionServiceImpl{store: store, api: api, logger: logger}
}

func (s *sessionServiceImpl) Login(ctx context.Context, sessionID, phoneNumber, password string) (*models.SessionInfo, error) {
	if phoneNumber == "" || password == "" {
		return nil, apperrors.Invalid(apperrors.ErrBadRequest, "phone_number and password are required")
	}

	res, err := s.api.Login(ctx, phoneNumber, password)
	if err != nil {
		var envErr *clients.EnvelopeError
		if errors.As(err, &envErr) {
			s.logger.Info("Login rejected", zap.String("session_id", sessionID), zap.Int("code", envErr.Code))
			return nil, apperrors.Wrap(apperrors.ErrInvalidCredentials, err)
		}
		s.logger.Error("Login request failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.ErrUpstream, err)
	}
	if res == nil || !res.Authenticated || res.Token == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	role, err := scopeFromToken(res.Token)
	if err != nil {
		s.logger.Warn("Token carries no readable scope", zap.String("session_id", sessionID), zap.Error(err))
	}
	// The previous user's profile must not outlive their token.
	if err := s.store.Delete(ctx, sessionID, models.KeyUserResponse); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	if err := s.store.SetMany(ctx, sessionID, map[string]string{
		models.KeyAuthToken: res.Token,
		models.KeyUserRole:  role,
	}); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}

	info := &models.SessionInfo{Authenticated: true, Role: role}

	// A login still succeeds when the profile lookup fails; the user is
	// fetched again on the next login.
	user, err := s.api.MyInfo(ctx, res.Token)
	if err == nil && user == nil {
		err = errors.New("empty user profile")
	}
	if err != nil {
		s.logger.Warn("Failed to load user profile", zap.String("session_id", sessionID), zap.Error(err))
		return info, nil
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.store.Set(ctx, sessionID, models.KeyUserResponse, string(raw)); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	info.User = user

	s.logger.Info("User logged in",
		zap.String("session_id", sessionID),
		zap.Int64("user_id", user.ID),
		zap.String("role", role),
	)
	return info, nil
}

// Logout forgets the token and cached profile. The cart is kept.
func (s *sessionServiceImpl) Logout(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID, models.KeyAuthToken, models.KeyUserResponse, models.KeyUserRole); err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err)
	}
	s.logger.Info("User logged out", zap.String("session_id", sessionID))
	return nil
}

// CurrentUser returns the cached profile or ErrNotAuthenticated.
func (s *sessionServiceImpl) CurrentUser(ctx context.Context, sessionID string) (*models.User, error) {
	raw, ok, err := s.store.Get(ctx, sessionID, models.KeyUserResponse)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	if !ok || raw == "" {
		return nil, apperrors.ErrNotAuthenticated
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Error("Corrupt user profile", zap.String("session_id", sessionID), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.ErrCorruptState, err)
	}
	return &user, nil
}

func (s *sessionServiceImpl) Role(ctx context.Context, sessionID string) (string, error) {
	role, _, err := s.store.Get(ctx, sessionID, models.KeyUserRole)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return role, nil
}

func (s *sessionServiceImpl) Session(ctx context.Context, sessionID string) (*models.SessionInfo, error) {
	token, _, err := s.store.Get(ctx, sessionID, models.KeyAuthToken)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	if token == "" {
		return &models.SessionInfo{}, nil
	}

	info := &models.SessionInfo{Authenticated: true}
	if info.Role, err = s.Role(ctx, sessionID); err != nil {
		return nil, err
	}
	user, err := s.CurrentUser(ctx, sessionID)
	switch {
	case err == nil:
		info.User = user
	case !errors.Is(err, apperrors.ErrNotAuthenticated):
		return nil, err
	}
	return info, nil
}

// scopeFromToken reads the scope claim without verifying the signature.
// The backend owns the signing key; the storefront only displays the role.
func scopeFromToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	scope, ok := claims["scope"].(string)
	if !ok {
		return "", fmt.Errorf("scope claim missing")
	}
	return scope, nil
}
