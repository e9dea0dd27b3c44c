package blockbuilder

import (
	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/chainparams"
	"github.com/ringnet/ringd/domain/consensus/model"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/utils/consensushashing"
	"github.com/ringnet/ringd/domain/consensus/utils/serialization"
	"github.com/ringnet/ringd/infrastructure/logger"
	"github.com/ringnet/ringd/util/mstime"
)

type blockBuilder struct {
	params *chainparams.Params
	clock  mstime.Clock

	pastMedianTimeManager model.PastMedianTimeManager
	coinbaseManager       model.CoinbaseManager
}

// New instantiates a new BlockBuilder
func New(
	params *chainparams.Params,
	clock mstime.Clock,

	pastMedianTimeManager model.PastMedianTimeManager,
	coinbaseManager model.CoinbaseManager,
) model.BlockBuilder {

	return &blockBuilder{
		params:                params,
		clock:                 clock,
		pastMedianTimeManager: pastMedianTimeManager,
		coinbaseManager:       coinbaseManager,
	}
}

// BuildBlock builds a block extending chainContext with the given
// transactions and a miner transaction paying the full reward and the fees
// to minerKey. The nonce is left zero.
func (bb *blockBuilder) BuildBlock(chainContext *externalapi.ChainContext, minerKey externalapi.ECPoint,
	transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "BuildBlock")
	defer onEnd()

	return bb.buildBlock(chainContext, minerKey, transactions)
}

func (bb *blockBuilder) buildBlock(chainContext *externalapi.ChainContext, minerKey externalapi.ECPoint,
	transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error) {

	header := bb.buildHeader(chainContext)

	transactionHashes := make([]*externalapi.DomainHash, len(transactions))
	transactionsWeight := uint64(0)
	fees := uint64(0)
	for i, tx := range transactions {
		hash, err := consensushashing.TransactionHash(tx)
		if err != nil {
			return nil, err
		}
		weight, err := serialization.TransactionSize(tx)
		if err != nil {
			return nil, err
		}
		transactionHashes[i] = hash
		transactionsWeight += weight
		if fees+tx.Fee < fees {
			return nil, errors.New("transaction fees overflow")
		}
		fees += tx.Fee
	}

	minerTransaction, err := bb.newBlockMinerTransaction(chainContext, header, minerKey, transactionsWeight, fees)
	if err != nil {
		return nil, err
	}

	return &externalapi.DomainBlock{
		Header:            header,
		MinerTransaction:  minerTransaction,
		TransactionHashes: transactionHashes,
		Transactions:      transactions,
	}, nil
}

func (bb *blockBuilder) buildHeader(chainContext *externalapi.ChainContext) *externalapi.DomainBlockHeader {
	prevHash := chainContext.TopHash
	if chainContext.IsEmpty() {
		prevHash = externalapi.ZeroHash
	}

	return &externalapi.DomainBlockHeader{
		MajorVersion: uint8(chainContext.HardForkVersion),
		MinorVersion: uint8(bb.newBlockVote(chainContext)),
		Timestamp:    bb.newBlockTimestamp(chainContext),
		PrevHash:     prevHash,
	}
}

// newBlockVote votes for the latest fork the network knows of
func (bb *blockBuilder) newBlockVote(chainContext *externalapi.ChainContext) externalapi.HardForkVersion {
	vote := chainContext.HardForkVersion
	for _, activation := range bb.params.HardForks {
		if activation.Version > vote {
			vote = activation.Version
		}
	}
	return vote
}

// newBlockTimestamp chooses the maximum between the current time and one
// second after the median timestamp
func (bb *blockBuilder) newBlockTimestamp(chainContext *externalapi.ChainContext) uint64 {
	timestamp := mstime.UnixSeconds(bb.clock)
	median, isActive := bb.pastMedianTimeManager.PastMedianTime(chainContext)
	if isActive && timestamp <= median {
		timestamp = median + 1
	}
	return timestamp
}

func (bb *blockBuilder) newBlockMinerTransaction(chainContext *externalapi.ChainContext,
	header *externalapi.DomainBlockHeader, minerKey externalapi.ECPoint,
	transactionsWeight uint64, fees uint64) (*externalapi.DomainTransaction, error) {

	height := chainContext.NextHeight()
	version := externalapi.TransactionVersionTransparent
	if chainContext.HardForkVersion >= bb.params.ConfidentialMinerOutputsVersion {
		version = externalapi.TransactionVersionConfidential
	}

	baseReward := bb.coinbaseManager.BaseReward(chainContext.AlreadyGeneratedCoins, chainContext.HardForkVersion)
	minerTransaction := &externalapi.DomainTransaction{
		Version:    version,
		UnlockTime: height + bb.params.MinedMoneyUnlockWindow,
		Inputs: []*externalapi.DomainTransactionInput{
			{Type: externalapi.InputTypeGen, Height: height},
		},
		Outputs: []*externalapi.DomainTransactionOutput{
			{Amount: baseReward + fees, Key: minerKey},
		},
	}

	// A penalized reward only shortens the miner transaction, so the
	// weight computed with the full reward is an upper bound
	minerTransactionWeight, err := serialization.TransactionSize(minerTransaction)
	if err != nil {
		return nil, err
	}
	weight := serialization.HeaderSize(header) + minerTransactionWeight + transactionsWeight
	reward, err := bb.coinbaseManager.BlockReward(baseReward, weight, chainContext.EffectiveMedianWeight)
	if err != nil {
		return nil, err
	}
	minerTransaction.Outputs[0].Amount = reward + fees
	return minerTransaction, nil
}
