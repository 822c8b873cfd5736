package worker_jobs

import (
	"time"

	"github.com/adhocore/gronx"
	"github.com/cockroachdb/errors"
	"github.com/riverqueue/river"

	"github.com/portal-apr/portal-apr-backend/models"
)

// cronSchedule makes a cron expression usable as a river periodic schedule
type cronSchedule struct {
	expression string
}

func NewCronSchedule(expression string) (river.PeriodicSchedule, error) {
	if !gronx.New().IsValid(expression) {
		return nil, errors.Wrapf(models.BadParameterError, "invalid cron expression %q", expression)
	}
	return cronSchedule{expression: expression}, nil
}

func (s cronSchedule) Next(current time.Time) time.Time {
	next, err := gronx.NextTickAfter(s.expression, current, false)
	if err != nil {
		// cannot happen on a validated expression: postpone rather than spin
		return current.Add(24 * time.Hour)
	}
	return next
}
