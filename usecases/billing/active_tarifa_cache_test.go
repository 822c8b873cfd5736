package billing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories"
)

type activeTarifaTable struct {
	active *models.Tarifa
	reads  int
}

func (r *activeTarifaTable) GetActiveTarifa(ctx context.Context, exec repositories.Executor) (*models.Tarifa, error) {
	r.reads++
	return r.active, nil
}

func TestActiveTarifaCache_Refresh(t *testing.T) {
	table := &activeTarifaTable{active: &models.Tarifa{Id: "tarifa-2023"}}
	cache := NewActiveTarifaCache(table)

	tarifa, err := cache.Get(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "tarifa-2023", tarifa.Id)

	// activated by another process
	table.active = &models.Tarifa{Id: "tarifa-2024"}
	reads := table.reads

	tarifa, err = cache.Refresh(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "tarifa-2024", tarifa.Id)
	assert.Equal(t, reads+1, table.reads)
}

func TestActiveTarifaCache_noActiveTarifa(t *testing.T) {
	cache := NewActiveTarifaCache(&activeTarifaTable{})

	_, err := cache.Get(context.Background(), nil)
	assert.ErrorIs(t, err, models.ErrNoActiveTarifa)

	_, err = cache.Refresh(context.Background(), nil)
	assert.ErrorIs(t, err, models.ErrNoActiveTarifa)
}
