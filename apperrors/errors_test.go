package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsSentinelIdentity(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("loading cart: %w", Wrap(ErrCorruptState, cause))

	assert.ErrorIs(t, err, ErrCorruptState)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrStorage)
	assert.Equal(t, http.StatusInternalServerError, From(err).Code)
}

func TestFromDefaultsToInternal(t *testing.T) {
	appErr := From(errors.New("plain"))
	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
	assert.Equal(t, "Internal server error: plain", appErr.Error())
}

func TestErrorMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ErrorMiddleware())
	router.GET("/missing", func(c *gin.Context) {
		_ = c.Error(ErrItemNotInCart)
	})
	router.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	recorder := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/missing", nil)
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.JSONEq(t, `{"code":404,"message":"Item not in cart"}`, recorder.Body.String())

	recorder = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/ok", nil)
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestInvalidCarriesDetail(t *testing.T) {
	err := Invalid(ErrInvalidReservation, "table_id is required")

	assert.ErrorIs(t, err, ErrInvalidReservation)
	assert.Equal(t, "Invalid reservation: table_id is required", err.Error())
	assert.JSONEq(t, `{"code":400,"message":"Invalid reservation","detail":"table_id is required"}`, err.JSON())
}
