package pipeline

import "errors"

var (
	ErrSourceOpenFailed  = errors.New("failed to open input source")
	ErrComputeFailed     = errors.New("statistics computation failed")
	ErrMetricsPushFailed = errors.New("failed to push metrics")
)
