package chainstatedb

import (
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
	"github.com/ringnet/ringd/infrastructure/db/database"
	"github.com/ringnet/ringd/infrastructure/logger"
	"github.com/willf/bloom"
)

// DefaultExpectedKeyImages sizes the key image filter when nothing better
// is known
const DefaultExpectedKeyImages = 1_000_000

const keyImageFilterFalsePositiveRate = 0.001

var (
	keyImagesBucket   = database.MakeBucket([]byte("key-images"))
	outputsBucket     = database.MakeBucket([]byte("outputs"))
	blockHashesBucket = database.MakeBucket([]byte("block-hashes"))
	chainContextKey   = database.MakeBucket([]byte("chain-state")).Key([]byte("context"))
)

// ChainStateDB keeps the spent key images, the created outputs and the
// latest chain context in a database. It implements the key image index,
// output index, chain state loader and chain state writer of a consensus
// instance.
//
// A bloom filter holding every spent key image sits in front of the key
// image bucket, so that most lookups of unspent key images never reach
// the database.
type ChainStateDB struct {
	db database.Database

	filterLock     sync.RWMutex
	keyImageFilter *bloom.BloomFilter
}

// New returns a ChainStateDB on top of db. The key image filter is sized for
// about expectedKeyImages key images and filled from the key images already
// in db.
func New(db database.Database, expectedKeyImages uint) (*ChainStateDB, error) {
	csdb := &ChainStateDB{
		db:             db,
		keyImageFilter: bloom.NewWithEstimates(expectedKeyImages, keyImageFilterFalsePositiveRate),
	}
	err := csdb.fillKeyImageFilter()
	if err != nil {
		return nil, err
	}
	return csdb, nil
}

func (csdb *ChainStateDB) fillKeyImageFilter() error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "fillKeyImageFilter")
	defer onEnd()

	cursor, err := csdb.db.Cursor(keyImagesBucket)
	if err != nil {
		return err
	}
	defer cursor.Close()

	count := 0
	for cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			return err
		}
		csdb.keyImageFilter.Add(key.Suffix())
		count++
	}
	log.Debugf("Loaded %d spent key images into the key image filter", count)
	return nil
}

func keyImageKey(keyImage externalapi.KeyImage) *database.Key {
	return keyImagesBucket.Key(keyImage[:])
}

// outputKey orders the outputs of a bucket by global index
func outputKey(amount uint64, globalIndex uint64) *database.Key {
	var suffix [16]byte
	binary.BigEndian.PutUint64(suffix[:8], amount)
	binary.BigEndian.PutUint64(suffix[8:], globalIndex)
	return outputsBucket.Key(suffix[:])
}

func blockHashKey(height uint64) *database.Key {
	var suffix [8]byte
	binary.BigEndian.PutUint64(suffix[:], height)
	return blockHashesBucket.Key(suffix[:])
}

// IsSpent returns whether a committed block spent keyImage. The database is
// queried only when the filter reports a possible hit.
func (csdb *ChainStateDB) IsSpent(keyImage externalapi.KeyImage) (bool, error) {
	csdb.filterLock.RLock()
	maybeSpent := csdb.keyImageFilter.Test(keyImage[:])
	csdb.filterLock.RUnlock()
	if !maybeSpent {
		return false, nil
	}
	return csdb.db.Has(keyImageKey(keyImage))
}

// Resolve returns the output at globalIndex in the given amount bucket
func (csdb *ChainStateDB) Resolve(amount uint64, globalIndex uint64) (*externalapi.OutputCommitment, error) {
	outputBytes, err := csdb.db.Get(outputKey(amount, globalIndex))
	if err != nil {
		if database.IsNotFoundError(err) {
			return nil, errors.Wrapf(ruleerrors.ErrOutputNotFound, "output %d of amount %d", globalIndex, amount)
		}
		return nil, err
	}
	return deserializeOutputCommitment(outputBytes)
}

// BlockHash returns the hash of the accepted block at height
func (csdb *ChainStateDB) BlockHash(height uint64) (*externalapi.DomainHash, error) {
	hashBytes, err := csdb.db.Get(blockHashKey(height))
	if err != nil {
		return nil, err
	}
	return externalapi.NewDomainHashFromByteSlice(hashBytes)
}

// LoadChainContext returns the persisted chain context, or nil if nothing
// was persisted yet
func (csdb *ChainStateDB) LoadChainContext() (*externalapi.ChainContext, error) {
	contextBytes, err := csdb.db.Get(chainContextKey)
	if err != nil {
		if database.IsNotFoundError(err) {
			log.Infof("No chain state found, starting an empty chain")
			return nil, nil
		}
		return nil, err
	}
	chainContext, err := deserializeChainContext(contextBytes)
	if err != nil {
		return nil, err
	}
	log.Infof("Loaded chain state at height %d (%s)", chainContext.Height, chainContext.TopHash)
	return chainContext, nil
}

// PersistAcceptedBlock stores what block spent and created along with the
// chain context it produced, in a single database transaction
func (csdb *ChainStateDB) PersistAcceptedBlock(block *externalapi.AcceptedBlock,
	chainContext *externalapi.ChainContext) error {

	dbTx, err := csdb.db.Begin()
	if err != nil {
		return err
	}
	defer dbTx.RollbackUnlessClosed()

	for _, keyImage := range block.KeyImages {
		err := dbTx.Put(keyImageKey(keyImage), nil)
		if err != nil {
			return err
		}
	}
	for _, createdOutput := range block.CreatedOutputs {
		outputBytes, err := serializeOutputCommitment(createdOutput.Output)
		if err != nil {
			return err
		}
		err = dbTx.Put(outputKey(createdOutput.AmountBucket, createdOutput.GlobalIndex), outputBytes)
		if err != nil {
			return err
		}
	}
	err = dbTx.Put(blockHashKey(block.Height), block.Hash.ByteSlice())
	if err != nil {
		return err
	}

	contextBytes, err := serializeChainContext(chainContext)
	if err != nil {
		return err
	}
	err = dbTx.Put(chainContextKey, contextBytes)
	if err != nil {
		return err
	}

	// The filter learns the key images before they are committed, so it
	// never misses a key image the database holds.
	csdb.filterLock.Lock()
	for _, keyImage := range block.KeyImages {
		csdb.keyImageFilter.Add(keyImage[:])
	}
	csdb.filterLock.Unlock()

	return dbTx.Commit()
}
