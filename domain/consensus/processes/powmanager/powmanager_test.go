package powmanager

import (
	"sync"
	"testing"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/chainparams"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
	"github.com/ringnet/ringd/domain/consensus/utils/pow"
)

func datasetParams() *chainparams.Params {
	params := chainparams.SimnetParams.Clone()
	params.HardForks[1].Algorithm = chainparams.PowAlgorithmDataset
	params.DatasetCacheItems = 16
	params.DatasetItems = 64
	return params
}

func seedHash(b byte) *externalapi.DomainHash {
	return externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{b})
}

func TestPowHashSelectsAlgorithmByHeight(t *testing.T) {
	params := chainparams.SimnetParams.Clone()
	params.HardForks[1].Algorithm = chainparams.PowAlgorithmArgon2id
	pm, err := New(params, 1)
	if err != nil {
		t.Fatalf("New: %+v", err)
	}

	blob := []byte("header")
	keccakHash, err := pm.PowHash(blob, 0, &externalapi.ChainContext{})
	if err != nil {
		t.Fatalf("PowHash: %+v", err)
	}
	if !keccakHash.Equal(pow.KeccakHash(blob)) {
		t.Fatalf("expected the keccak hash at height 0")
	}

	argon2Hash, err := pm.PowHash(blob, 1, &externalapi.ChainContext{})
	if err != nil {
		t.Fatalf("PowHash: %+v", err)
	}
	if !argon2Hash.Equal(pow.Argon2idHash(blob, params.Argon2Time, params.Argon2MemoryKiB)) {
		t.Fatalf("expected the argon2id hash at height 1")
	}
}

func TestPowHashMissingSeed(t *testing.T) {
	pm, err := New(datasetParams(), 1)
	if err != nil {
		t.Fatalf("New: %+v", err)
	}
	chainContext := &externalapi.ChainContext{
		SeedHashes: []externalapi.SeedHash{{Height: 0, Hash: seedHash(1)}},
	}

	// Height 30 is seeded by height 16
	_, err = pm.PowHash([]byte("header"), 30, chainContext)
	if !errors.Is(err, ruleerrors.ErrMissingParent) {
		t.Fatalf("expected ErrMissingParent, got %v", err)
	}

	seed, err := pm.PowSeed(20, chainContext)
	if err != nil {
		t.Fatalf("PowSeed: %+v", err)
	}
	if !seed.Equal(seedHash(1)) {
		t.Fatalf("expected the genesis seed at height 20, got %s", seed)
	}
}

func TestDatasetIsBuiltOnceUnderConcurrentUse(t *testing.T) {
	pm, err := New(datasetParams(), 2)
	if err != nil {
		t.Fatalf("New: %+v", err)
	}
	chainContext := &externalapi.ChainContext{
		SeedHashes: []externalapi.SeedHash{{Height: 16, Hash: seedHash(2)}},
	}

	const workers = 16
	hashes := make([]*externalapi.DomainHash, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hashes[i], errs[i] = pm.PowHash([]byte("header"), 30, chainContext)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("PowHash: %+v", errs[i])
		}
		if !hashes[i].Equal(hashes[0]) {
			t.Fatalf("worker %d computed a different hash", i)
		}
	}
	built := pm.(*powManager).datasetCache.builtDatasets.Load()
	if built != 1 {
		t.Fatalf("expected the dataset to be built once, got %d builds", built)
	}
}

func TestDatasetEvictionKeepsHeldHandles(t *testing.T) {
	cache, err := newDatasetCache(1, &pow.DatasetConfig{CacheItems: 8, Items: 16, Parents: 2, CacheRounds: 1, Accesses: 4})
	if err != nil {
		t.Fatalf("newDatasetCache: %+v", err)
	}

	held, err := cache.get(seedHash(1))
	if err != nil {
		t.Fatalf("get: %+v", err)
	}
	other, err := cache.get(seedHash(2))
	if err != nil {
		t.Fatalf("get: %+v", err)
	}
	other.release()

	if held.dataset == nil {
		t.Fatalf("an evicted dataset was dropped while still held")
	}
	held.release()
	if held.dataset != nil {
		t.Fatalf("expected the evicted dataset to be dropped once released")
	}
	if other.dataset == nil {
		t.Fatalf("the cached dataset was dropped")
	}
}

func TestVerifyPow(t *testing.T) {
	params := chainparams.SimnetParams.Clone()
	pm, err := New(params, 1)
	if err != nil {
		t.Fatalf("New: %+v", err)
	}
	chainContext := &externalapi.ChainContext{}
	ok, err := pm.VerifyPow([]byte("header"), 1, uint256.NewInt(1), chainContext)
	if err != nil {
		t.Fatalf("VerifyPow: %+v", err)
	}
	if !ok {
		t.Fatalf("every hash satisfies difficulty 1")
	}

	ok, err = pm.VerifyPow([]byte("header"), 1, new(uint256.Int).Lsh(uint256.NewInt(1), 255), chainContext)
	if err != nil {
		t.Fatalf("VerifyPow: %+v", err)
	}
	if ok {
		t.Fatalf("expected a huge difficulty to be unsatisfied")
	}

	params.SkipProofOfWork = true
	ok, err = pm.VerifyPow([]byte("header"), 1, new(uint256.Int).Lsh(uint256.NewInt(1), 255), chainContext)
	if err != nil || !ok {
		t.Fatalf("expected skipped proof of work to pass, got %t, %v", ok, err)
	}
}
