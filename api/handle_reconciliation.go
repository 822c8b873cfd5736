package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/portal-apr/portal-apr-backend/dto"
	"github.com/portal-apr/portal-apr-backend/pure_utils"
	"github.com/portal-apr/portal-apr-backend/usecases"
)

func handleRunReconciliation(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usecase := usecasesWithCreds(ctx, uc).NewReconciliationUsecase()
		run, err := usecase.RunNow(ctx)
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"run": dto.AdaptReconciliationRunDto(run),
		})
	}
}

func handleListReconciliationRuns(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var pagination dto.PaginationAndSorting
		if err := c.ShouldBindQuery(&pagination); err != nil {
			presentBindingError(c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewReconciliationUsecase()
		runs, err := usecase.ListRuns(ctx, dto.AdaptPaginationAndSorting(pagination))
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"runs": pure_utils.Map(runs, dto.AdaptReconciliationRunDto),
		})
	}
}
