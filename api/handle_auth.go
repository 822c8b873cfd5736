package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/portal-apr/portal-apr-backend/dto"
	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/usecases"
	"github.com/portal-apr/portal-apr-backend/utils"
)

func presentToken(c *gin.Context, token string, expiresAt time.Time, creds models.Credentials) {
	c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		Credentials: dto.AdaptCredentialDto(creds),
	})
}

func handleAdminLogin(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		var body dto.AdminLoginBody
		if err := c.ShouldBindJSON(&body); err != nil {
			presentBindingError(c, err)
			return
		}

		token, expiresAt, creds, err := uc.NewTokenGenerator().AdminLogin(c.Request.Context(), body.Email, body.Password)
		if presentError(c, err) {
			return
		}
		presentToken(c, token, expiresAt, creds)
	}
}

func handleSocioLogin(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		var body dto.SocioLoginBody
		if err := c.ShouldBindJSON(&body); err != nil {
			presentBindingError(c, err)
			return
		}

		token, expiresAt, creds, err := uc.NewTokenGenerator().SocioLogin(c.Request.Context(), body.Rut, body.Password)
		if presentError(c, err) {
			return
		}
		presentToken(c, token, expiresAt, creds)
	}
}

func handleGetCredentials() func(c *gin.Context) {
	return func(c *gin.Context) {
		creds, _ := utils.CredentialsFromCtx(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"credentials": dto.AdaptCredentialDto(creds),
		})
	}
}
