package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/portal-apr/portal-apr-backend/dto"
	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/pure_utils"
	"github.com/portal-apr/portal-apr-backend/usecases"
	"github.com/portal-apr/portal-apr-backend/utils"
)

// ownSocioId defaults a socio_id filter to the socio calling
func ownSocioId(ctx context.Context, socioId string) string {
	creds, _ := utils.CredentialsFromCtx(ctx)
	if socioId == "" && creds.Role == models.SOCIO {
		return creds.ActorIdentity.SocioId
	}
	return socioId
}

func handleListSocios(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var filters dto.SocioFilters
		var pagination dto.PaginationAndSorting
		if err := c.ShouldBindQuery(&filters); err != nil {
			presentBindingError(c, err)
			return
		}
		if err := c.ShouldBindQuery(&pagination); err != nil {
			presentBindingError(c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewSocioUsecase()
		socios, err := usecase.ListSocios(ctx, dto.AdaptSocioFilters(filters), dto.AdaptPaginationAndSorting(pagination))
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"socios": pure_utils.Map(socios, dto.AdaptSocioDto),
		})
	}
}

func handleGetSocio(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		socioId, err := requiredUuidParam(c, "socio_id")
		if presentError(c, err) {
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewSocioUsecase()
		socio, err := usecase.GetSocio(ctx, socioId)
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"socio": dto.AdaptSocioDto(socio),
		})
	}
}

func handlePostSocio(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var body dto.CreateSocioBody
		if err := c.ShouldBindJSON(&body); err != nil {
			presentBindingError(c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewSocioUsecase()
		socio, err := usecase.CreateSocio(ctx, dto.AdaptCreateSocioInput(body))
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"socio": dto.AdaptSocioDto(socio),
		})
	}
}

func handlePatchSocio(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		socioId, err := requiredUuidParam(c, "socio_id")
		if presentError(c, err) {
			return
		}
		var body dto.UpdateSocioBody
		if err := c.ShouldBindJSON(&body); err != nil {
			presentBindingError(c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewSocioUsecase()
		socio, err := usecase.UpdateSocio(ctx, dto.AdaptUpdateSocioInput(socioId, body))
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"socio": dto.AdaptSocioDto(socio),
		})
	}
}

func handleSetSocioPassword(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		socioId, err := requiredUuidParam(c, "socio_id")
		if presentError(c, err) {
			return
		}
		var body dto.SetPasswordBody
		if err := c.ShouldBindJSON(&body); err != nil {
			presentBindingError(c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewSocioUsecase()
		if presentError(c, usecase.SetSocioPassword(ctx, socioId, body.Password)) {
			return
		}
		c.Status(http.StatusNoContent)
	}
}
