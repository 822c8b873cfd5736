package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/portal-apr/portal-apr-backend/dto"
	"github.com/portal-apr/portal-apr-backend/pure_utils"
	"github.com/portal-apr/portal-apr-backend/usecases"
)

func handleListLecturas(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var filters dto.LecturaFilters
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

		usecase := usecasesWithCreds(ctx, uc).NewLecturaUsecase()
		lecturas, err := usecase.ListLecturas(ctx, dto.AdaptLecturaFilters(filters), dto.AdaptPaginationAndSorting(pagination))
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"lecturas": pure_utils.Map(lecturas, dto.AdaptLecturaDto),
		})
	}
}

func handlePostLectura(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var body dto.CreateLecturaBody
		if err := c.ShouldBindJSON(&body); err != nil {
			presentBindingError(c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewLecturaUsecase()
		lectura, err := usecase.RegisterLectura(ctx, dto.AdaptCreateLecturaInput(body))
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"lectura": dto.AdaptLecturaDto(lectura),
		})
	}
}

// handlePostLecturasBatch answers 200 even when some readings fail: the result of each reading
// is in the response.
func handlePostLecturasBatch(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var body dto.CreateLecturasBatchBody
		if err := c.ShouldBindJSON(&body); err != nil {
			presentBindingError(c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewLecturaUsecase()
		results, err := usecase.RegisterLecturas(ctx, pure_utils.Map(body.Lecturas, dto.AdaptCreateLecturaInput))
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"results": pure_utils.Map(results, dto.AdaptLecturaResultDto),
		})
	}
}
