package blockvalidator

import (
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/infrastructure/logger"
)

// ValidateBlockInContext runs every contextual check of candidate on top of
// chainContext
func (v *blockValidator) ValidateBlockInContext(candidate *externalapi.BlockCandidate,
	chainContext *externalapi.ChainContext) error {

	onEnd := logger.LogAndMeasureExecutionTime(log, "ValidateBlockInContext")
	defer onEnd()

	err := v.ValidateHeaderInContext(candidate, chainContext)
	if err != nil {
		return err
	}
	return v.ValidateBodyInContext(candidate, chainContext)
}
