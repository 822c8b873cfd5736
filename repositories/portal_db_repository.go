package repositories

// PortalDbRepository holds the queries on the portal database. Every method takes the
// executor it runs on, so that callers decide about transactions.
type PortalDbRepository struct{}

func NewPortalDbRepository() *PortalDbRepository {
	return &PortalDbRepository{}
}
