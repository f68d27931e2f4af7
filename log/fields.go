package log

import "go.uber.org/zap"

var (
	Any        = zap.Any
	Bool       = zap.Bool
	Duration   = zap.Duration
	Float      = zap.Float64
	Float32    = zap.Float32
	Int        = zap.Int
	Int32      = zap.Int32
	Uint       = zap.Uint
	Uint32     = zap.Uint32
	String     = zap.String
	Strings    = zap.Strings
	Stringer   = zap.Stringer
	Time       = zap.Time
	ErrorField = zap.Error
	Namespace  = zap.Namespace
)
