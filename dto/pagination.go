package dto

import "github.com/portal-apr/portal-apr-backend/models"

type PaginationAndSorting struct {
	Offset int    `form:"offset" binding:"omitempty,min=0"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Order  string `form:"order" binding:"omitempty,oneof=ASC DESC asc desc"`
}

func AdaptPaginationAndSorting(input PaginationAndSorting) models.PaginationAndSorting {
	order := models.SortingOrderDesc
	if input.Order == "ASC" || input.Order == "asc" {
		order = models.SortingOrderAsc
	}
	return models.PaginationAndSorting{
		Offset: input.Offset,
		Limit:  input.Limit,
		Order:  order,
	}.WithDefaults()
}
