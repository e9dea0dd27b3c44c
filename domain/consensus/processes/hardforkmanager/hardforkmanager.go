package hardforkmanager

import (
	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/chainparams"
	"github.com/ringnet/ringd/domain/consensus/model"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
)

// hardForkManager decides which rules apply to the next block from the
// hard fork table and the votes of recent blocks
type hardForkManager struct {
	params *chainparams.Params
}

// New instantiates a new HardForkManager
func New(params *chainparams.Params) model.HardForkManager {
	return &hardForkManager{params: params}
}

// CheckBlockVersion checks that the block's major version is the version
// required of it and that it does not vote for an older one
func (hfm *hardForkManager) CheckBlockVersion(header *externalapi.DomainBlockHeader,
	chainContext *externalapi.ChainContext) error {

	version, err := externalapi.HardForkVersionFromByte(header.MajorVersion)
	if err != nil {
		return errors.Wrapf(ruleerrors.ErrUnsupportedVersion, "%s", err)
	}
	if version != chainContext.HardForkVersion {
		return errors.Wrapf(ruleerrors.ErrUnsupportedVersion, "block major version %s "+
			"is not the expected %s", version, chainContext.HardForkVersion)
	}

	vote := externalapi.HardForkVersionFromVote(header.MinorVersion)
	if vote < version {
		return errors.Wrapf(ruleerrors.ErrUnsupportedVersion, "block votes for %s "+
			"which is older than its version %s", vote, version)
	}
	return nil
}

// NextHardForkVersion returns the version required of the block after
// lastHeight, given the version required of lastHeight and the votes of the
// vote window ending at lastHeight. Several forks may activate at once.
func (hfm *hardForkManager) NextHardForkVersion(current externalapi.HardForkVersion, lastHeight uint64,
	votes []externalapi.HardForkVersion) externalapi.HardForkVersion {

	for {
		activation, ok := hfm.params.NextActivation(current)
		if !ok {
			return current
		}
		if lastHeight+1 < activation.Height {
			return current
		}
		if votesFor(votes, activation.Version) < activation.VotesNeeded(hfm.params.HardForkVoteWindow) {
			return current
		}
		log.Infof("Hard fork %s activates at height %d", activation.Version, lastHeight+1)
		current = activation.Version
	}
}

// VoteWindow returns the number of recent blocks whose votes are counted
func (hfm *hardForkManager) VoteWindow() uint64 {
	return hfm.params.HardForkVoteWindow
}

// votesFor counts the votes for version or any later version
func votesFor(votes []externalapi.HardForkVersion, version externalapi.HardForkVersion) uint64 {
	count := uint64(0)
	for _, vote := range votes {
		if vote >= version {
			count++
		}
	}
	return count
}
