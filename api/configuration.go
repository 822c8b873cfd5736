package api

import (
	"time"
)

type Configuration struct {
	Env                 string
	AppName             string
	AppVersion          string
	Port                string
	PublicApiUrl        string
	PortalAppUrl        string
	RequestLoggingLevel string
	TokenLifetimeMinute int
	SegmentWriteKey     string
	DisableSegment      bool
	DefaultTimeout      time.Duration
	// checkouts and manual payments call the gateways, they get a longer timeout
	PaymentTimeout   time.Duration
	EnablePrometheus bool
}
