package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/portal-apr/portal-apr-backend/dto"
	"github.com/portal-apr/portal-apr-backend/pure_utils"
	"github.com/portal-apr/portal-apr-backend/usecases"
)

func handleListTarifas(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usecase := usecasesWithCreds(ctx, uc).NewTarifaUsecase()
		tarifas, err := usecase.ListTarifas(ctx)
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"tarifas": pure_utils.Map(tarifas, dto.AdaptTarifaDto),
		})
	}
}

func handleGetActiveTarifa(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usecase := usecasesWithCreds(ctx, uc).NewTarifaUsecase()
		tarifa, err := usecase.GetActiveTarifa(ctx)
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"tarifa": dto.AdaptTarifaDto(tarifa),
		})
	}
}

func handleGetTarifa(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		tarifaId, err := requiredUuidParam(c, "tarifa_id")
		if presentError(c, err) {
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewTarifaUsecase()
		tarifa, err := usecase.GetTarifa(ctx, tarifaId)
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"tarifa": dto.AdaptTarifaDto(tarifa),
		})
	}
}

func handlePostTarifa(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var body dto.CreateTarifaBody
		if err := c.ShouldBindJSON(&body); err != nil {
			presentBindingError(c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewTarifaUsecase()
		tarifa, err := usecase.CreateTarifa(ctx, dto.AdaptCreateTarifaInput(body))
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"tarifa": dto.AdaptTarifaDto(tarifa),
		})
	}
}

func handlePatchTarifa(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		tarifaId, err := requiredUuidParam(c, "tarifa_id")
		if presentError(c, err) {
			return
		}
		var body dto.UpdateTarifaBody
		if err := c.ShouldBindJSON(&body); err != nil {
			presentBindingError(c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewTarifaUsecase()
		tarifa, err := usecase.UpdateTarifa(ctx, dto.AdaptUpdateTarifaInput(tarifaId, body))
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"tarifa": dto.AdaptTarifaDto(tarifa),
		})
	}
}

func handleActivateTarifa(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		tarifaId, err := requiredUuidParam(c, "tarifa_id")
		if presentError(c, err) {
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewTarifaUsecase()
		tarifa, err := usecase.ActivateTarifa(ctx, tarifaId)
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"tarifa": dto.AdaptTarifaDto(tarifa),
		})
	}
}

func handleSimulateTarifa(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var body dto.SimulateBody
		if err := c.ShouldBindJSON(&body); err != nil {
			presentBindingError(c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewTarifaUsecase()
		cargos, err := usecase.Simulate(ctx, body.ConsumoM3, body.TarifaId)
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"cargos": dto.AdaptCargosDto(cargos),
		})
	}
}
