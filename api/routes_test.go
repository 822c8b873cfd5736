package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/portal-apr/portal-apr-backend/dto"
	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/usecases"
	"github.com/portal-apr/portal-apr-backend/utils"
)

type mockTokenValidator struct {
	mock.Mock
}

func (m *mockTokenValidator) Validate(ctx context.Context, token string) (models.Credentials, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(models.Credentials), args.Error(1)
}

func testRouter(validator *mockTokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	conf := Configuration{
		Env:            "test",
		PortalAppUrl:   "https://portal.apr.test",
		DefaultTimeout: 5 * time.Second,
		PaymentTimeout: 5 * time.Second,
	}
	addRoutes(r, conf, usecases.Usecases{}, utils.NewAuthentication(validator))
	return r
}

func TestRoutes_RequireAuthentication(t *testing.T) {
	router := testRouter(new(mockTokenValidator))

	for _, path := range []string{"/credentials", "/socios", "/boletas", "/admin/users"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestRoutes_InvalidToken(t *testing.T) {
	validator := new(mockTokenValidator)
	validator.On("Validate", mock.Anything, "expired").
		Return(models.Credentials{}, models.UnAuthorizedError)
	router := testRouter(validator)

	req := httptest.NewRequest(http.MethodGet, "/credentials", nil)
	req.Header.Set("Authorization", "Bearer expired")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	validator.AssertExpectations(t)
}

func TestRoutes_Credentials(t *testing.T) {
	creds := models.Credentials{
		Role:          models.SOCIO,
		ActorIdentity: models.Identity{SocioId: "socio-1", Name: "Juana Pérez"},
	}
	validator := new(mockTokenValidator)
	validator.On("Validate", mock.Anything, "token").Return(creds, nil)
	router := testRouter(validator)

	req := httptest.NewRequest(http.MethodGet, "/credentials", nil)
	req.Header.Set("Authorization", "Bearer token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Credentials dto.Credentials `json:"credentials"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "SOCIO", body.Credentials.Role)
	assert.Equal(t, "socio-1", body.Credentials.ActorIdentity.SocioId)
}

func TestRoutes_ChatWebsocketAcceptsQueryToken(t *testing.T) {
	validator := new(mockTokenValidator)
	validator.On("Validate", mock.Anything, "bad").
		Return(models.Credentials{}, models.UnAuthorizedError)
	router := testRouter(validator)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chat/ws?token=bad", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	validator.AssertExpectations(t)
}
