package stats

import "errors"

var (
	ErrSourceFailed = errors.New("iteration source failed")
	ErrAwaitFailed  = errors.New("awaited item failed")
)
