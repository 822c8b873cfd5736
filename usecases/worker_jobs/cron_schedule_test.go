package worker_jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronSchedule(t *testing.T) {
	schedule, err := NewCronSchedule("0 6 1 * *")
	require.NoError(t, err)

	current := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 4, 1, 6, 0, 0, 0, time.UTC), schedule.Next(current))

	current = time.Date(2024, 4, 1, 6, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC), schedule.Next(current), "strictly after the current tick")
}

func TestCronScheduleInvalid(t *testing.T) {
	_, err := NewCronSchedule("every monday")
	assert.Error(t, err)
}
