package tests

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"expertchat/internal/adapter/api/handler"
	"expertchat/pkg/errors"
	"expertchat/pkg/response"
)

func TestHealthCheck(t *testing.T) {
	// Setup
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// Define the handler
	healthHandler := func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}

	// Assertions
	if assert.NoError(t, healthHandler(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "ok")
	}
}

func TestGetCountriesCatalog(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/countries", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	roomHandler := handler.NewRoomHandler(nil)

	if assert.NoError(t, roomHandler.GetCountries(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"success":true`)
		assert.Contains(t, rec.Body.String(), "United States")
		assert.Contains(t, rec.Body.String(), `"code":"us"`)
	}
}

func TestErrorEnvelope(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/rooms/x/messages", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := response.Error(c, errors.GuestLimit("Guest message limit reached"))

	if assert.NoError(t, err) {
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "GUEST_LIMIT_REACHED")
		assert.Contains(t, rec.Body.String(), `"success":false`)
	}
}
