package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/portal-apr/portal-apr-backend/usecases"
)

func handleLivenessProbe(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		usecase := uc.NewLivenessUsecase()
		liveness, err := usecase.Liveness(c.Request.Context())
		if presentError(c, err) {
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"mood":           "Agua para todos",
			"schema_version": liveness.SchemaVersion,
		})
	}
}
