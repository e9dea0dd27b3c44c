// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainparams

import (
	"math"

	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// HardForkActivation is one entry of a network's hard fork table. The fork
// activates at the first height >= Height at which at least Threshold
// percent of the vote window voted for Version or above. Algorithm is the
// proof-of-work algorithm used from Height on.
type HardForkActivation struct {
	Version   externalapi.HardForkVersion `json:"version"`
	Height    uint64                      `json:"height"`
	Threshold uint64                      `json:"threshold"`
	Algorithm PowAlgorithm                `json:"algorithm"`
}

// VotesNeeded returns the number of votes needed out of window
func (activation *HardForkActivation) VotesNeeded(window uint64) uint64 {
	return (activation.Threshold*window + 99) / 100
}

// RingSizeRule bounds the ring size of every input from FromVersion on. A
// zero Max means unbounded.
type RingSizeRule struct {
	FromVersion externalapi.HardForkVersion
	Min         uint64
	Max         uint64
}

// TransactionVersionRule restricts the allowed transaction versions from
// FromVersion on.
type TransactionVersionRule struct {
	FromVersion externalapi.HardForkVersion
	MinVersion  uint16
	MaxVersion  uint16
}

// Params defines a network by its consensus parameters.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// GenesisBlock defines the first block of the chain.
	GenesisBlock *externalapi.DomainBlock

	// HardForks is the hard fork table, sorted by version and height.
	// The first entry must be V1 at height 0.
	HardForks []HardForkActivation

	// HardForkVoteWindow is the number of recent blocks whose votes count
	// towards a fork activation.
	HardForkVoteWindow uint64

	// DifficultyWindow is the number of blocks fed to the difficulty
	// algorithm, DifficultyCut the number of outlier timestamps dropped
	// at each end and DifficultyLag the number of newest blocks ignored.
	DifficultyWindow uint64
	DifficultyCut    uint64
	DifficultyLag    uint64

	// TargetTimePerBlockV1 applies before V2, TargetTimePerBlock after.
	// Both are in seconds.
	TargetTimePerBlockV1 uint64
	TargetTimePerBlock   uint64

	// TimestampCheckWindow is the number of recent timestamps whose median
	// a new block's timestamp must exceed.
	TimestampCheckWindow uint64

	// FutureTimeLimit is how far ahead of the local clock a block
	// timestamp may be, in seconds.
	FutureTimeLimit uint64

	// ShortTermWeightWindow and LongTermWeightWindow are the lengths of
	// the block weight windows.
	ShortTermWeightWindow uint64
	LongTermWeightWindow  uint64

	// MinedMoneyUnlockWindow is the number of blocks miner outputs stay
	// locked for.
	MinedMoneyUnlockWindow uint64

	// SpendableAge is the number of blocks an output must be buried under
	// before it may be used as a ring member.
	SpendableAge uint64

	// MoneySupply, EmissionSpeedFactorPerMinute and FinalSubsidyPerMinute
	// define the emission curve.
	MoneySupply                  uint64
	EmissionSpeedFactorPerMinute uint64
	FinalSubsidyPerMinute        uint64

	// FeePerKB is the minimum fee per started kilobyte before
	// PerByteFeeVersion.
	FeePerKB uint64

	// PerByteFeeVersion is the fork from which the dynamic per-byte fee
	// applies.
	PerByteFeeVersion externalapi.HardForkVersion

	// DynamicFeeReferenceWeight is the reference transaction weight of the
	// dynamic fee formula.
	DynamicFeeReferenceWeight uint64

	// CoinbaseBlobReservedSize is the part of the penalty-free zone kept
	// free for the miner transaction.
	CoinbaseBlobReservedSize uint64

	// ConfidentialMinerOutputsVersion is the fork from which miner outputs
	// are indexed in the confidential bucket.
	ConfidentialMinerOutputsVersion externalapi.HardForkVersion

	RingSizeRules           []RingSizeRule
	TransactionVersionRules []TransactionVersionRule

	// RangeProofBits is the number of bits covered by an output range
	// proof, bounding every confidential amount to [0, 2^RangeProofBits).
	RangeProofBits int

	// Argon2 parameters of PowAlgorithmArgon2id
	Argon2Time      uint32
	Argon2MemoryKiB uint32

	// Dataset parameters of PowAlgorithmDataset. The seed changes every
	// DatasetEpochBlocks, DatasetEpochLag blocks after the epoch boundary.
	DatasetEpochBlocks uint64
	DatasetEpochLag    uint64
	DatasetCacheItems  uint64
	DatasetItems       uint64
	DatasetParents     uint64
	DatasetCacheRounds uint64
	DatasetAccesses    uint64

	// SkipProofOfWork indicates whether proof of work should be checked.
	SkipProofOfWork bool
}

// ActivationForVersion returns the table entry of the given version
func (p *Params) ActivationForVersion(version externalapi.HardForkVersion) (*HardForkActivation, bool) {
	for i := range p.HardForks {
		if p.HardForks[i].Version == version {
			return &p.HardForks[i], true
		}
	}
	return nil, false
}

// NextActivation returns the table entry following the given version
func (p *Params) NextActivation(version externalapi.HardForkVersion) (*HardForkActivation, bool) {
	for i := range p.HardForks {
		if p.HardForks[i].Version > version {
			return &p.HardForks[i], true
		}
	}
	return nil, false
}

// PowAlgorithmAtHeight returns the proof-of-work algorithm of the block at
// the given height
func (p *Params) PowAlgorithmAtHeight(height uint64) PowAlgorithm {
	algorithm := p.HardForks[0].Algorithm
	for _, activation := range p.HardForks {
		if activation.Height > height {
			break
		}
		algorithm = activation.Algorithm
	}
	return algorithm
}

// TargetTime returns the target time per block in seconds under the given
// fork
func (p *Params) TargetTime(version externalapi.HardForkVersion) uint64 {
	if version < externalapi.HardForkV2 {
		return p.TargetTimePerBlockV1
	}
	return p.TargetTimePerBlock
}

// RingSizeBounds returns the allowed ring size range under the given fork
func (p *Params) RingSizeBounds(version externalapi.HardForkVersion) (min, max uint64) {
	min, max = 1, math.MaxUint64
	for _, rule := range p.RingSizeRules {
		if rule.FromVersion > version {
			break
		}
		min, max = rule.Min, rule.Max
		if max == 0 {
			max = math.MaxUint64
		}
	}
	return min, max
}

// TransactionVersionBounds returns the allowed transaction version range
// under the given fork
func (p *Params) TransactionVersionBounds(version externalapi.HardForkVersion) (min, max uint16) {
	min, max = externalapi.TransactionVersionTransparent, externalapi.TransactionVersionTransparent
	for _, rule := range p.TransactionVersionRules {
		if rule.FromVersion > version {
			break
		}
		min, max = rule.MinVersion, rule.MaxVersion
	}
	return min, max
}

// Validate checks the internal consistency of the parameters
func (p *Params) Validate() error {
	if len(p.HardForks) == 0 {
		return errors.Errorf("%s: empty hard fork table", p.Name)
	}
	if p.HardForks[0].Version != externalapi.HardForkV1 || p.HardForks[0].Height != 0 {
		return errors.Errorf("%s: the hard fork table must start with V1 at height 0", p.Name)
	}
	for i := 1; i < len(p.HardForks); i++ {
		previous, current := p.HardForks[i-1], p.HardForks[i]
		if current.Version <= previous.Version || current.Height < previous.Height {
			return errors.Errorf("%s: hard fork %s at height %d does not follow %s at height %d",
				p.Name, current.Version, current.Height, previous.Version, previous.Height)
		}
		if current.Version > externalapi.LatestHardForkVersion {
			return errors.Errorf("%s: unknown hard fork version %d", p.Name, current.Version)
		}
		if current.Threshold > 100 {
			return errors.Errorf("%s: hard fork %s threshold %d is above 100", p.Name, current.Version, current.Threshold)
		}
	}
	if p.DifficultyWindow < 2 || 2*p.DifficultyCut > p.DifficultyWindow-2 {
		return errors.Errorf("%s: difficulty window %d cannot cut %d timestamps at each end",
			p.Name, p.DifficultyWindow, p.DifficultyCut)
	}
	if p.TimestampCheckWindow == 0 || p.ShortTermWeightWindow == 0 || p.LongTermWeightWindow == 0 ||
		p.HardForkVoteWindow == 0 {
		return errors.Errorf("%s: windows must not be empty", p.Name)
	}
	if p.TargetTimePerBlockV1 == 0 || p.TargetTimePerBlock == 0 {
		return errors.Errorf("%s: target time per block must be positive", p.Name)
	}
	if p.RangeProofBits <= 0 || p.RangeProofBits > 64 {
		return errors.Errorf("%s: range proof bits must be in [1, 64], got %d", p.Name, p.RangeProofBits)
	}
	if p.DatasetEpochBlocks == 0 || p.DatasetEpochBlocks&(p.DatasetEpochBlocks-1) != 0 {
		return errors.Errorf("%s: dataset epoch %d must be a power of two", p.Name, p.DatasetEpochBlocks)
	}
	if p.DatasetCacheItems == 0 || p.DatasetItems == 0 {
		return errors.Errorf("%s: the proof-of-work dataset must not be empty", p.Name)
	}
	return nil
}

// Clone returns a copy of the parameters whose tables can be modified
// without affecting p
func (p *Params) Clone() *Params {
	clone := *p
	clone.HardForks = append([]HardForkActivation(nil), p.HardForks...)
	clone.RingSizeRules = append([]RingSizeRule(nil), p.RingSizeRules...)
	clone.TransactionVersionRules = append([]TransactionVersionRule(nil), p.TransactionVersionRules...)
	return &clone
}
