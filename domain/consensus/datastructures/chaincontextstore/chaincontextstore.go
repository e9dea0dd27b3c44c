package chaincontextstore

import (
	"sync"
	"sync/atomic"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/chainparams"
	"github.com/ringnet/ringd/domain/consensus/model"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
	"github.com/ringnet/ringd/domain/consensus/utils/multiset"
)

// chainContextStore owns the chain context. The current context is
// published through an atomic pointer, so readers never block and never see
// a partially built context.
type chainContextStore struct {
	params                *chainparams.Params
	difficultyManager     model.DifficultyManager
	pastMedianTimeManager model.PastMedianTimeManager
	weightManager         model.WeightManager
	hardForkManager       model.HardForkManager

	current atomic.Pointer[externalapi.ChainContext]
	halted  atomic.Bool

	// commitLock serializes commits. There is a single committer, so it
	// is never contended.
	commitLock sync.Mutex
}

// New instantiates a new ChainContextStore starting from initial, usually
// the context loaded from the chain state. A nil initial context starts an
// empty chain that the genesis block extends.
func New(params *chainparams.Params,
	difficultyManager model.DifficultyManager,
	pastMedianTimeManager model.PastMedianTimeManager,
	weightManager model.WeightManager,
	hardForkManager model.HardForkManager,
	initial *externalapi.ChainContext) (model.ChainContextStore, error) {

	store := &chainContextStore{
		params:                params,
		difficultyManager:     difficultyManager,
		pastMedianTimeManager: pastMedianTimeManager,
		weightManager:         weightManager,
		hardForkManager:       hardForkManager,
	}

	if initial == nil {
		initial = EmptyChainContext(params, weightManager)
	}
	err := store.checkWindows(initial)
	if err != nil {
		return nil, err
	}
	if initial.KeyImageSet == nil {
		return nil, errors.Wrap(ruleerrors.ErrCorruptedWindow, "the initial context has no key image set")
	}

	store.current.Store(initial)
	return store, nil
}

// EmptyChainContext returns the context of a chain with no blocks
func EmptyChainContext(params *chainparams.Params, weightManager model.WeightManager) *externalapi.ChainContext {
	firstVersion := params.HardForks[0].Version
	chainContext := &externalapi.ChainContext{
		HardForkVersion:       firstVersion,
		EffectiveMedianWeight: weightManager.PenaltyFreeZone(firstVersion),
		OutputAmountIndex:     make(map[uint64]uint64),
		KeyImageSet:           multiset.New(),
	}
	chainContext.NextDifficulty.SetOne()
	return chainContext
}

func (s *chainContextStore) Current() *externalapi.ChainContext {
	return s.current.Load()
}

func (s *chainContextStore) IsHalted() bool {
	return s.halted.Load()
}

// Commit applies an accepted block extending the current context, hands
// the block and the resulting context to writer and only then publishes the
// resulting context. A reader that sees the new context therefore also sees
// the key images and outputs of the block in the indexes writer maintains.
// Any error it returns is a StateError, after which the store refuses every
// further commit.
func (s *chainContextStore) Commit(block *externalapi.AcceptedBlock,
	writer model.ChainStateWriter) (*externalapi.ChainContext, error) {

	s.commitLock.Lock()
	defer s.commitLock.Unlock()

	if s.halted.Load() {
		return nil, errors.Wrapf(ruleerrors.ErrStoreHalted, "cannot commit block %s at height %d",
			block.Hash, block.Height)
	}

	next, err := s.commit(block)
	if err != nil {
		s.halted.Store(true)
		log.Criticalf("Chain context store halted: %s", err)
		return nil, err
	}
	if writer != nil {
		err = writer.PersistAcceptedBlock(block, next)
		if err != nil {
			s.halted.Store(true)
			log.Criticalf("Chain context store halted, block %s at height %d was not persisted: %s",
				block.Hash, block.Height, err)
			return nil, ruleerrors.NewErrPersistFailed(err)
		}
	}
	s.current.Store(next)
	log.Debugf("Committed block %s at height %d", block.Hash, block.Height)
	return next, nil
}

func (s *chainContextStore) commit(block *externalapi.AcceptedBlock) (*externalapi.ChainContext, error) {
	current := s.current.Load()
	if block.Height != current.NextHeight() {
		return nil, errors.Wrapf(ruleerrors.ErrOutOfOrderCommit, "block %s at height %d "+
			"does not extend height %d", block.Hash, block.Height, current.Height)
	}

	expectedPrevHash := current.TopHash
	if current.IsEmpty() {
		expectedPrevHash = externalapi.ZeroHash
	}
	if !block.Header.PrevHash.Equal(expectedPrevHash) {
		return nil, errors.Wrapf(ruleerrors.ErrOutOfOrderCommit, "block %s at height %d "+
			"does not extend %s", block.Hash, block.Height, expectedPrevHash)
	}

	next, err := s.applyBlock(current, block)
	if err != nil {
		return nil, err
	}
	err = s.checkWindows(next)
	if err != nil {
		return nil, err
	}
	return next, nil
}

func (s *chainContextStore) NextDifficulty(chainContext *externalapi.ChainContext) (*uint256.Int, error) {
	return s.difficultyManager.NextDifficulty(chainContext.DifficultyTimestamps,
		chainContext.DifficultyCumulative, chainContext.HardForkVersion)
}

func (s *chainContextStore) MedianTimestamp(chainContext *externalapi.ChainContext) uint64 {
	return s.pastMedianTimeManager.MedianTimestamp(chainContext.TimestampWindow)
}

func (s *chainContextStore) EffectiveWeightLimit(chainContext *externalapi.ChainContext) uint64 {
	return s.weightManager.EffectiveWeightLimit(chainContext)
}
