package coinbasemanager

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/chainparams"
	"github.com/ringnet/ringd/domain/consensus/model"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
	"github.com/ringnet/ringd/domain/consensus/utils/mathutil"
)

const (
	bytesPerKB = 1024

	// minFeePerByte is the lowest dynamic fee per byte
	minFeePerByte = 1
)

type coinbaseManager struct {
	params        *chainparams.Params
	weightManager model.WeightManager
}

// New instantiates a new CoinbaseManager
func New(params *chainparams.Params, weightManager model.WeightManager) model.CoinbaseManager {
	return &coinbaseManager{
		params:        params,
		weightManager: weightManager,
	}
}

// BaseReward returns the reward of a block of at most the median weight,
// given the coins generated before it
func (c *coinbaseManager) BaseReward(alreadyGeneratedCoins uint64, version externalapi.HardForkVersion) uint64 {
	targetMinutes := c.params.TargetTime(version) / 60
	emissionSpeedFactor := c.params.EmissionSpeedFactorPerMinute - (targetMinutes - 1)
	tailEmission := c.params.FinalSubsidyPerMinute * targetMinutes

	if alreadyGeneratedCoins >= c.params.MoneySupply {
		return tailEmission
	}
	baseReward := (c.params.MoneySupply - alreadyGeneratedCoins) >> emissionSpeedFactor
	return mathutil.Max(baseReward, tailEmission)
}

// BlockReward applies the weight penalty to baseReward. Blocks up to the
// median weight get the full reward, blocks above twice the median are
// invalid, and in between the penalty grows quadratically.
func (c *coinbaseManager) BlockReward(baseReward uint64, blockWeight uint64, medianWeight uint64) (uint64, error) {
	if blockWeight <= medianWeight {
		return baseReward, nil
	}
	if blockWeight > 2*medianWeight {
		return 0, errors.Wrapf(ruleerrors.ErrBlockTooLarge, "block weight %d is above "+
			"twice the median weight %d", blockWeight, medianWeight)
	}

	// baseReward * (2*median - weight) * weight / median / median
	product := new(uint256.Int).Mul(uint256.NewInt(baseReward), uint256.NewInt(2*medianWeight-blockWeight))
	product.Mul(product, uint256.NewInt(blockWeight))
	median := uint256.NewInt(medianWeight)
	product.Div(product, median)
	product.Div(product, median)
	if !product.IsUint64() {
		return 0, errors.Wrapf(ruleerrors.ErrNumericOverflow, "penalized reward of %d overflows", baseReward)
	}
	return product.Uint64(), nil
}

// MinimumFee returns the lowest fee a transaction of the given weight must
// pay to be included on top of chainContext
func (c *coinbaseManager) MinimumFee(transactionWeight uint64, chainContext *externalapi.ChainContext) (uint64, error) {
	version := chainContext.HardForkVersion
	if version < c.params.PerByteFeeVersion {
		kilobytes := (transactionWeight + bytesPerKB - 1) / bytesPerKB
		fee, ok := mathutil.MulDiv(c.params.FeePerKB, kilobytes, 1)
		if !ok {
			return 0, errors.Wrapf(ruleerrors.ErrNumericOverflow, "fee of a %d bytes "+
				"transaction overflows", transactionWeight)
		}
		return fee, nil
	}

	feePerByte, err := c.dynamicFeePerByte(chainContext)
	if err != nil {
		return 0, err
	}
	fee, ok := mathutil.MulDiv(feePerByte, transactionWeight, 1)
	if !ok {
		return 0, errors.Wrapf(ruleerrors.ErrNumericOverflow, "fee of a %d bytes "+
			"transaction overflows", transactionWeight)
	}
	return fee, nil
}

func (c *coinbaseManager) dynamicFeePerByte(chainContext *externalapi.ChainContext) (uint64, error) {
	version := chainContext.HardForkVersion
	baseReward := c.BaseReward(chainContext.AlreadyGeneratedCoins, version)
	medianWeight := mathutil.Max(chainContext.EffectiveMedianWeight, c.weightManager.PenaltyFreeZone(version))

	feePerByte, ok := mathutil.MulDiv(baseReward, c.params.DynamicFeeReferenceWeight, medianWeight)
	if !ok {
		return 0, errors.Wrapf(ruleerrors.ErrNumericOverflow, "dynamic fee of reward %d overflows", baseReward)
	}
	feePerByte /= medianWeight
	feePerByte -= feePerByte / 20
	return mathutil.Max(feePerByte, minFeePerByte), nil
}
