package observability

import "go.uber.org/zap"

// Field constructors re-exported so callers log through this package only.
//
//nolint:gochecknoglobals // aliases of zap constructors
var (
	String   = zap.String
	Strings  = zap.Strings
	Int      = zap.Int
	Int64    = zap.Int64
	Bool     = zap.Bool
	Float64  = zap.Float64
	Duration = zap.Duration
	Error    = zap.Error
)
