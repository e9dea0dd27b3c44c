package blockvalidator

import (
	"github.com/ringnet/ringd/domain/chainparams"
	"github.com/ringnet/ringd/domain/consensus/model"
	"github.com/ringnet/ringd/util/mstime"
)

// blockValidator exposes a set of validation classes, after which
// it's possible to determine whether either a block is valid
type blockValidator struct {
	params *chainparams.Params
	clock  mstime.Clock

	powManager            model.PowManager
	pastMedianTimeManager model.PastMedianTimeManager
	weightManager         model.WeightManager
	coinbaseManager       model.CoinbaseManager
	hardForkManager       model.HardForkManager
	transactionValidator  model.TransactionValidator
}

// New instantiates a new BlockValidator
func New(params *chainparams.Params,
	clock mstime.Clock,

	powManager model.PowManager,
	pastMedianTimeManager model.PastMedianTimeManager,
	weightManager model.WeightManager,
	coinbaseManager model.CoinbaseManager,
	hardForkManager model.HardForkManager,
	transactionValidator model.TransactionValidator,
) model.BlockValidator {

	return &blockValidator{
		params: params,
		clock:  clock,

		powManager:            powManager,
		pastMedianTimeManager: pastMedianTimeManager,
		weightManager:         weightManager,
		coinbaseManager:       coinbaseManager,
		hardForkManager:       hardForkManager,
		transactionValidator:  transactionValidator,
	}
}
