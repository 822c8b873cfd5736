package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/portal-apr/portal-apr-backend/models"
)

type MockValidator struct {
	mock.Mock
}

func (m *MockValidator) Validate(ctx context.Context, token string) (models.Credentials, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(models.Credentials), args.Error(1)
}

func TestAuthedBy(t *testing.T) {
	gin.SetMode(gin.TestMode)

	socio := models.Credentials{
		ActorIdentity: models.Identity{SocioId: "socio-1"},
		Role:          models.SOCIO,
	}

	tests := []struct {
		name           string
		methods        []AuthType
		target         string
		setupHeaders   func(*http.Request)
		setupValidator func(*MockValidator)
		expectedStatus int
	}{
		{
			name:    "success with BearerToken",
			methods: []AuthType{BearerToken},
			setupHeaders: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer test-token")
			},
			setupValidator: func(v *MockValidator) {
				v.On("Validate", mock.Anything, "test-token").Return(socio, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:    "success with QueryToken",
			methods: []AuthType{BearerToken, QueryToken},
			target:  "/test?token=query-token",
			setupValidator: func(v *MockValidator) {
				v.On("Validate", mock.Anything, "query-token").Return(socio, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "query token not accepted",
			methods:        []AuthType{BearerToken},
			target:         "/test?token=query-token",
			setupValidator: func(v *MockValidator) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:    "invalid bearer token format",
			methods: []AuthType{BearerToken},
			setupHeaders: func(r *http.Request) {
				r.Header.Set("Authorization", "InvalidFormat")
			},
			setupValidator: func(v *MockValidator) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:    "unauthorized when validation fails",
			methods: []AuthType{BearerToken},
			setupHeaders: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer expired")
			},
			setupValidator: func(v *MockValidator) {
				v.On("Validate", mock.Anything, "expired").
					Return(models.Credentials{}, errors.Wrap(models.UnAuthorizedError, "token is expired"))
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:    "internal error while validating",
			methods: []AuthType{BearerToken},
			setupHeaders: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer test-token")
			},
			setupValidator: func(v *MockValidator) {
				v.On("Validate", mock.Anything, "test-token").
					Return(models.Credentials{}, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "empty authorization header",
			methods:        []AuthType{BearerToken},
			setupValidator: func(v *MockValidator) {},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := new(MockValidator)
			tt.setupValidator(validator)
			auth := NewAuthentication(validator)

			w := httptest.NewRecorder()
			_, engine := gin.CreateTestContext(w)

			engine.GET("/test", auth.AuthedBy(tt.methods...), func(c *gin.Context) {
				creds, exists := CredentialsFromCtx(c.Request.Context())
				assert.True(t, exists, "credentials should be set in context")
				assert.Equal(t, socio, creds)
				c.Status(http.StatusOK)
			})

			target := tt.target
			if target == "" {
				target = "/test"
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.setupHeaders != nil {
				tt.setupHeaders(req)
			}

			engine.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			validator.AssertExpectations(t)
		})
	}
}
