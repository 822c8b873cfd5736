package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLatestMigrationVersion(t *testing.T) {
	assert.Equal(t, int64(20250101000005), LatestMigrationVersion())
}
