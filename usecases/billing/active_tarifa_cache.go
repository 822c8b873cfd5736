package billing

import (
	"context"
	"sync"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories"
	"github.com/portal-apr/portal-apr-backend/utils"
)

const activeTarifaKey = "active"

type activeTarifaRepository interface {
	GetActiveTarifa(ctx context.Context, exec repositories.Executor) (*models.Tarifa, error)
}

// ActiveTarifaCache keeps the active tarifa in memory. Writers on tarifas must call Invalidate,
// which only reaches the cache of their own process: other processes see the change after
// utils.GlobalCacheDuration, or on Refresh.
type ActiveTarifaCache struct {
	repository activeTarifaRepository
	cache      *expirable.LRU[string, models.Tarifa]
	// serializes loads so that a burst of issuances hits the database once
	loadMu sync.Mutex
}

func NewActiveTarifaCache(repository activeTarifaRepository) *ActiveTarifaCache {
	return &ActiveTarifaCache{
		repository: repository,
		cache:      expirable.NewLRU[string, models.Tarifa](1, nil, utils.GlobalCacheDuration()),
	}
}

// Get returns the active tarifa, or ErrNoActiveTarifa.
func (c *ActiveTarifaCache) Get(ctx context.Context, exec repositories.Executor) (models.Tarifa, error) {
	if tarifa, ok := c.cache.Get(activeTarifaKey); ok {
		return tarifa, nil
	}

	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	if tarifa, ok := c.cache.Get(activeTarifaKey); ok {
		return tarifa, nil
	}

	return c.load(ctx, exec)
}

// Refresh reads the active tarifa from the database and caches it.
func (c *ActiveTarifaCache) Refresh(ctx context.Context, exec repositories.Executor) (models.Tarifa, error) {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	c.cache.Purge()
	return c.load(ctx, exec)
}

func (c *ActiveTarifaCache) load(ctx context.Context, exec repositories.Executor) (models.Tarifa, error) {
	tarifa, err := c.repository.GetActiveTarifa(ctx, exec)
	if err != nil {
		return models.Tarifa{}, err
	}
	if tarifa == nil {
		return models.Tarifa{}, models.ErrNoActiveTarifa
	}
	c.cache.Add(activeTarifaKey, *tarifa)
	return *tarifa, nil
}

func (c *ActiveTarifaCache) Invalidate() {
	c.cache.Purge()
}
