package usecases

import (
	"github.com/riverqueue/river"

	"github.com/portal-apr/portal-apr-backend/usecases/worker_jobs"
)

const (
	numberWorkersPerQueue = 4
)

// TaskQueues are the river queues consumed by the worker. Manual enqueues land on the default
// queue, periodic jobs on their own.
func TaskQueues() map[string]river.QueueConfig {
	return map[string]river.QueueConfig{
		river.QueueDefault:               {MaxWorkers: numberWorkersPerQueue},
		worker_jobs.BILLING_QUEUE:        {MaxWorkers: 1},
		worker_jobs.RECONCILIATION_QUEUE: {MaxWorkers: 1},
	}
}
