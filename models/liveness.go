package models

type Liveness struct {
	SchemaVersion int64
}
