package pow

import (
	"encoding/binary"
	"runtime"
	"sync"

	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/utils/hashes"
	"github.com/pkg/errors"
)

const itemSize = externalapi.DomainHashSize

type item [itemSize]byte

const fnvPrime = 0x01000193

func fnv(a, b uint32) uint32 {
	return a*fnvPrime ^ b
}

func (it *item) word(i int) uint32 {
	return binary.LittleEndian.Uint32(it[i*4:])
}

func (it *item) mix(other *item) {
	for i := 0; i < itemSize/4; i++ {
		binary.LittleEndian.PutUint32(it[i*4:], fnv(it.word(i), other.word(i)))
	}
}

func blake2b(key []byte, data ...[]byte) item {
	writer := hashes.NewBlake2bWriter(key)
	for _, d := range data {
		writer.InfallibleWrite(d)
	}
	return *writer.Finalize().ByteArray()
}

// DatasetConfig sizes a dataset
type DatasetConfig struct {
	CacheItems  uint64
	Items       uint64
	Parents     uint64
	CacheRounds uint64
	Accesses    uint64
}

// Dataset is the read-only table the dataset proof of work reads from. It
// is derived from a seed hash and is safe for concurrent use once built.
type Dataset struct {
	seed     externalapi.DomainHash
	items    []item
	accesses uint64
}

// NewDataset builds the dataset of seed. This is expensive: a small cache is
// derived sequentially from the seed, then every dataset item is mixed from
// pseudo-randomly chosen cache items.
func NewDataset(seed *externalapi.DomainHash, config *DatasetConfig) (*Dataset, error) {
	if config.CacheItems == 0 || config.Items == 0 {
		return nil, errors.Errorf("cannot build an empty dataset")
	}
	cache := buildCache(seed, config.CacheItems, config.CacheRounds)

	items := make([]item, config.Items)
	workers := uint64(runtime.NumCPU())
	chunk := (config.Items + workers - 1) / workers
	var wg sync.WaitGroup
	for start := uint64(0); start < config.Items; start += chunk {
		end := start + chunk
		if end > config.Items {
			end = config.Items
		}
		wg.Add(1)
		go func(start, end uint64) {
			defer wg.Done()
			for i := start; i < end; i++ {
				items[i] = datasetItem(cache, i, config.Parents)
			}
		}(start, end)
	}
	wg.Wait()

	return &Dataset{seed: *seed, items: items, accesses: config.Accesses}, nil
}

func buildCache(seed *externalapi.DomainHash, size uint64, rounds uint64) []item {
	cache := make([]item, size)
	cache[0] = blake2b(nil, seed.ByteSlice())
	for i := uint64(1); i < size; i++ {
		cache[i] = blake2b(nil, cache[i-1][:])
	}
	for round := uint64(0); round < rounds; round++ {
		for i := uint64(0); i < size; i++ {
			previous := cache[(i+size-1)%size]
			other := &cache[uint64(cache[i].word(0))%size]
			for j := range previous {
				previous[j] ^= other[j]
			}
			cache[i] = blake2b(nil, previous[:])
		}
	}
	return cache
}

func datasetItem(cache []item, index uint64, parents uint64) item {
	size := uint64(len(cache))
	var indexBytes [8]byte
	binary.LittleEndian.PutUint64(indexBytes[:], index)
	mix := blake2b(indexBytes[:], cache[index%size][:])
	for parent := uint64(0); parent < parents; parent++ {
		parentIndex := uint64(fnv(uint32(index^parent), mix.word(int(parent%(itemSize/4))))) % size
		mix.mix(&cache[parentIndex])
	}
	return blake2b(nil, mix[:])
}

// Seed returns the seed hash the dataset was built from
func (d *Dataset) Seed() *externalapi.DomainHash {
	seed := d.seed
	return &seed
}

// Hash returns the dataset proof-of-work hash of a block hashing blob
func (d *Dataset) Hash(blob []byte) *externalapi.DomainHash {
	header := hashes.Keccak256(d.seed.ByteSlice(), blob)
	rng := newxoShiRo256PlusPlus(header)
	mix := item(*header.ByteArray())
	size := uint64(len(d.items))
	for access := uint64(0); access < d.accesses; access++ {
		index := (rng.Uint64() ^ uint64(mix.word(0))) % size
		mix.mix(&d.items[index])
	}
	return hashes.Keccak256(header.ByteSlice(), mix[:])
}
