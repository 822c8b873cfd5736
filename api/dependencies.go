package api

import (
	"github.com/segmentio/analytics-go/v3"

	"github.com/portal-apr/portal-apr-backend/usecases"
	"github.com/portal-apr/portal-apr-backend/utils"
)

type dependencies struct {
	Authentication utils.Authentication
	SegmentClient  analytics.Client
}

func InitDependencies(conf Configuration, uc usecases.Usecases) dependencies {
	if conf.DisableSegment {
		conf.SegmentWriteKey = ""
	}
	segmentClient := analytics.New(conf.SegmentWriteKey)

	return dependencies{
		Authentication: utils.NewAuthentication(uc.NewTokenValidator()),
		SegmentClient:  segmentClient,
	}
}
