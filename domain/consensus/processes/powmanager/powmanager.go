package powmanager

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/chainparams"
	"github.com/ringnet/ringd/domain/consensus/model"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
	"github.com/ringnet/ringd/domain/consensus/utils/pow"
)

type powManager struct {
	params       *chainparams.Params
	datasetCache *datasetCache
}

// New instantiates a new PowManager that keeps up to datasetCacheSize
// proof-of-work datasets in memory
func New(params *chainparams.Params, datasetCacheSize int) (model.PowManager, error) {
	datasetCache, err := newDatasetCache(datasetCacheSize, &pow.DatasetConfig{
		CacheItems:  params.DatasetCacheItems,
		Items:       params.DatasetItems,
		Parents:     params.DatasetParents,
		CacheRounds: params.DatasetCacheRounds,
		Accesses:    params.DatasetAccesses,
	})
	if err != nil {
		return nil, err
	}
	return &powManager{
		params:       params,
		datasetCache: datasetCache,
	}, nil
}

// PowHash computes the proof-of-work hash of the block at height. Dataset
// hashes need the seed block to be in chainContext; if it is not, the
// returned error is an ErrMissingParent.
func (pm *powManager) PowHash(blockHashingBlob []byte, height uint64,
	chainContext *externalapi.ChainContext) (*externalapi.DomainHash, error) {

	algorithm := pm.params.PowAlgorithmAtHeight(height)
	switch algorithm {
	case chainparams.PowAlgorithmKeccak:
		return pow.KeccakHash(blockHashingBlob), nil
	case chainparams.PowAlgorithmArgon2id:
		return pow.Argon2idHash(blockHashingBlob, pm.params.Argon2Time, pm.params.Argon2MemoryKiB), nil
	case chainparams.PowAlgorithmDataset:
		seed, err := pm.PowSeed(height, chainContext)
		if err != nil {
			return nil, err
		}
		handle, err := pm.datasetCache.get(seed)
		if err != nil {
			return nil, err
		}
		defer handle.release()
		return handle.dataset.Hash(blockHashingBlob), nil
	default:
		return nil, errors.Errorf("unknown proof-of-work algorithm %d at height %d", algorithm, height)
	}
}

// PowSeed returns the seed the proof-of-work hash of the block at height
// depends on, or nil if its algorithm has none
func (pm *powManager) PowSeed(height uint64, chainContext *externalapi.ChainContext) (*externalapi.DomainHash, error) {
	if pm.params.PowAlgorithmAtHeight(height) != chainparams.PowAlgorithmDataset {
		return nil, nil
	}
	seedHeight := pow.SeedHeight(height, pm.params.DatasetEpochBlocks, pm.params.DatasetEpochLag)
	for _, seedHash := range chainContext.SeedHashes {
		if seedHash.Height == seedHeight {
			return seedHash.Hash, nil
		}
	}
	return nil, errors.Wrapf(ruleerrors.ErrMissingParent, "the seed block at height %d "+
		"of the block at height %d is not known", seedHeight, height)
}

// CheckPowHash returns whether powHash satisfies difficulty
func (pm *powManager) CheckPowHash(powHash *externalapi.DomainHash, difficulty *uint256.Int) bool {
	return pow.CheckProofOfWork(powHash, difficulty)
}

// VerifyPow computes the proof-of-work hash of the block at height and
// checks it against difficulty
func (pm *powManager) VerifyPow(blockHashingBlob []byte, height uint64, difficulty *uint256.Int,
	chainContext *externalapi.ChainContext) (bool, error) {

	if pm.params.SkipProofOfWork {
		return true, nil
	}
	powHash, err := pm.PowHash(blockHashingBlob, height, chainContext)
	if err != nil {
		return false, err
	}
	return pm.CheckPowHash(powHash, difficulty), nil
}
