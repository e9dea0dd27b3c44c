package model

import "github.com/ringnet/ringd/domain/consensus/model/externalapi"

// PastMedianTimeManager provides a method to resolve the
// past median time of a chain
type PastMedianTimeManager interface {
	MedianTimestamp(window []uint64) uint64
	PastMedianTime(chainContext *externalapi.ChainContext) (median uint64, isActive bool)
}
