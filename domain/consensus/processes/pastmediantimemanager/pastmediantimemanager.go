package pastmediantimemanager

import (
	"github.com/ringnet/ringd/domain/consensus/model"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/utils/mathutil"
)

// pastMedianTimeManager provides a method to resolve the
// past median time of a chain
type pastMedianTimeManager struct {
	timestampCheckWindow uint64
}

// New instantiates a new PastMedianTimeManager
func New(timestampCheckWindow uint64) model.PastMedianTimeManager {
	return &pastMedianTimeManager{
		timestampCheckWindow: timestampCheckWindow,
	}
}

// MedianTimestamp returns the median of window. An even-length window
// yields the rounded down mean of its two middle elements.
func (pmtm *pastMedianTimeManager) MedianTimestamp(window []uint64) uint64 {
	return mathutil.Median(window)
}

// PastMedianTime returns the median timestamp a block extending
// chainContext must exceed. isActive is false while the chain is shorter
// than the timestamp check window, in which case any timestamp passes.
func (pmtm *pastMedianTimeManager) PastMedianTime(chainContext *externalapi.ChainContext) (median uint64, isActive bool) {
	window := chainContext.TimestampWindow
	if uint64(len(window)) < pmtm.timestampCheckWindow {
		return 0, false
	}
	return pmtm.MedianTimestamp(window[uint64(len(window))-pmtm.timestampCheckWindow:]), true
}
