package models

const (
	DefaultPaginationLimit = 50
	MaxPaginationLimit     = 500
)

type PaginationAndSorting struct {
	Offset int
	Limit  int
	Order  SortingOrder
}

type SortingOrder string

const (
	SortingOrderAsc  SortingOrder = "ASC"
	SortingOrderDesc SortingOrder = "DESC"
)

func (p PaginationAndSorting) WithDefaults() PaginationAndSorting {
	if p.Limit <= 0 {
		p.Limit = DefaultPaginationLimit
	}
	if p.Limit > MaxPaginationLimit {
		p.Limit = MaxPaginationLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Order != SortingOrderAsc {
		p.Order = SortingOrderDesc
	}
	return p
}
