package utils

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/portal-apr/portal-apr-backend/models"
)

type AuthType int

const (
	BearerToken AuthType = iota
	// token passed as the "token" query parameter, for websocket upgrades where browsers
	// cannot set headers
	QueryToken
)

func identityAttrs(creds models.Credentials) []any {
	attrs := []any{slog.String("Role", creds.Role.String())}
	switch {
	case creds.ActorIdentity.UserId != "":
		attrs = append(attrs, slog.String("UserId", creds.ActorIdentity.UserId))
	case creds.ActorIdentity.SocioId != "":
		attrs = append(attrs, slog.String("SocioId", creds.ActorIdentity.SocioId))
	}
	return attrs
}

type validator interface {
	Validate(ctx context.Context, token string) (models.Credentials, error)
}

type Authentication struct {
	Validator validator
}

func NewAuthentication(validator validator) Authentication {
	return Authentication{
		Validator: validator,
	}
}

func (a *Authentication) AuthedBy(methods ...AuthType) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		token := ""
		if slices.Contains(methods, BearerToken) {
			bearer, err := ParseAuthorizationBearerHeader(c.Request.Header)
			if err != nil {
				_ = c.Error(fmt.Errorf("could not parse authorization header: %w", err))
				c.AbortWithStatus(http.StatusBadRequest)
				return
			}
			token = bearer
		}
		if token == "" && slices.Contains(methods, QueryToken) {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		credentials, err := a.Validator.Validate(ctx, token)
		if err != nil {
			if errors.Is(err, models.UnAuthorizedError) || errors.Is(err, models.NotFoundError) {
				_ = c.Error(fmt.Errorf("validator.Validate error: %w", err))
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}

			LogAndReportSentryError(ctx, err)
			LoggerFromContext(ctx).ErrorContext(ctx,
				"errors while validating token", "error", err)

			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		newContext := StoreCredentialsInContext(ctx, credentials)
		logger := LoggerFromContext(newContext).With(identityAttrs(credentials)...)
		c.Request = c.Request.WithContext(StoreLoggerInContext(newContext, logger))
		c.Next()
	}
}

func ParseAuthorizationBearerHeader(header http.Header) (string, error) {
	authorization := header.Get("Authorization")
	if authorization == "" {
		return "", nil
	}

	authHeader := strings.Split(authorization, "Bearer ")
	if len(authHeader) != 2 {
		return "", fmt.Errorf("malformed token: %w", models.UnAuthorizedError)
	}
	return authHeader[1], nil
}
