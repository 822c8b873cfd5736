package utils

// contextKey is unexported so that only the Store/FromCtx helpers of this package touch the
// values.
type contextKey int

const (
	credentialsKey contextKey = iota
	loggerKey
	segmentClientKey
	tracerKey
)
