package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/portal-apr/portal-apr-backend/dto"
	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/pure_utils"
	"github.com/portal-apr/portal-apr-backend/usecases"
)

func handleListBoletas(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var filters dto.BoletaFilters
		var pagination dto.PaginationAndSorting
		if err := c.ShouldBindQuery(&filters); err != nil {
			presentBindingError(c, err)
			return
		}
		if err := c.ShouldBindQuery(&pagination); err != nil {
			presentBindingError(c, err)
			return
		}
		filters.SocioId = ownSocioId(ctx, filters.SocioId)

		usecase := usecasesWithCreds(ctx, uc).NewBoletaUsecase()
		boletas, err := usecase.ListBoletas(ctx, dto.AdaptBoletaFilters(filters), dto.AdaptPaginationAndSorting(pagination))
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"boletas": pure_utils.Map(boletas, dto.AdaptBoletaDto),
		})
	}
}

func handleGetBoleta(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		boletaId, err := requiredUuidParam(c, "boleta_id")
		if presentError(c, err) {
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewBoletaUsecase()
		boleta, err := usecase.GetBoleta(ctx, boletaId)
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"boleta": dto.AdaptBoletaDto(boleta),
		})
	}
}

func handleIssueBoletas(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var body dto.IssueBoletasBody
		if err := c.ShouldBindJSON(&body); err != nil {
			presentBindingError(c, err)
			return
		}
		periodo := models.Periodo(body.Periodo)

		usecase := usecasesWithCreds(ctx, uc).NewBoletaUsecase()
		if body.SocioId == "" {
			if presentError(c, usecase.EnqueueIssuePeriod(ctx, periodo)) {
				return
			}
			c.JSON(http.StatusAccepted, gin.H{
				"periodo": periodo,
			})
			return
		}

		boleta, err := usecase.IssueBoleta(ctx, body.SocioId, periodo)
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"boleta": dto.AdaptBoletaDto(boleta),
		})
	}
}

func handleAnnulBoleta(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		boletaId, err := requiredUuidParam(c, "boleta_id")
		if presentError(c, err) {
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewBoletaUsecase()
		boleta, err := usecase.AnnulBoleta(ctx, boletaId)
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"boleta": dto.AdaptBoletaDto(boleta),
		})
	}
}

func handleExportBoletas(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var body dto.ExportBoletasBody
		if err := c.ShouldBindJSON(&body); err != nil {
			presentBindingError(c, err)
			return
		}
		periodo := models.Periodo(body.Periodo)

		usecase := usecasesWithCreds(ctx, uc).NewBoletaUsecase()
		if !body.Sync {
			if presentError(c, usecase.EnqueueExportPeriod(ctx, periodo)) {
				return
			}
			c.JSON(http.StatusAccepted, gin.H{
				"periodo": periodo,
			})
			return
		}

		result, err := usecase.ExportPeriod(ctx, periodo)
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"export": dto.AdaptExportResultDto(result),
		})
	}
}
