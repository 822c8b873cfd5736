package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/portal-apr/portal-apr-backend/dto"
	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/pure_utils"
	"github.com/portal-apr/portal-apr-backend/usecases"
)

func handleListPagos(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var filters dto.PagoFilters
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

		usecase := usecasesWithCreds(ctx, uc).NewPagoUsecase()
		pagos, err := usecase.ListPagos(ctx, dto.AdaptPagoFilters(filters), dto.AdaptPaginationAndSorting(pagination))
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"pagos": pure_utils.Map(pagos, dto.AdaptPagoDto),
		})
	}
}

func handleGetPago(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		pagoId, err := requiredUuidParam(c, "pago_id")
		if presentError(c, err) {
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewPagoUsecase()
		pago, err := usecase.GetPago(ctx, pagoId)
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"pago": dto.AdaptPagoDto(pago),
		})
	}
}

func handleListMetodosPago(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		usecase := usecasesWithCreds(c.Request.Context(), uc).NewPagoUsecase()
		c.JSON(http.StatusOK, gin.H{
			"metodos": usecase.OnlineMetodos(),
		})
	}
}

func handleCheckout(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var body dto.CheckoutBody
		if err := c.ShouldBindJSON(&body); err != nil {
			presentBindingError(c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewPagoUsecase()
		checkout, err := usecase.StartCheckout(ctx, models.CheckoutInput{
			SocioId:   ownSocioId(ctx, ""),
			BoletaIds: body.BoletaIds,
			Metodo:    models.MetodoPagoFrom(body.Metodo),
		})
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusCreated, dto.AdaptCheckoutDto(checkout))
	}
}

func handleManualPayment(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var body dto.ManualPaymentBody
		if err := c.ShouldBindJSON(&body); err != nil {
			presentBindingError(c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewPagoUsecase()
		pago, err := usecase.RegisterManualPayment(ctx, dto.AdaptManualPaymentInput(body))
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"pago": dto.AdaptPagoDto(pago),
		})
	}
}

func handleAnnulPago(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		pagoId, err := requiredUuidParam(c, "pago_id")
		if presentError(c, err) {
			return
		}
		var body dto.AnnulPagoBody
		if err := c.ShouldBindJSON(&body); err != nil {
			presentBindingError(c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewPagoUsecase()
		pago, err := usecase.AnnulPago(ctx, pagoId, body.Motivo)
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"pago": dto.AdaptPagoDto(pago),
		})
	}
}
