package powmanager

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/utils/pow"
	"github.com/ringnet/ringd/infrastructure/logger"
)

// datasetHandle shares a dataset between the cache and its users. The
// dataset is dropped once the cache evicted it and every user released it.
type datasetHandle struct {
	dataset  *pow.Dataset
	refCount atomic.Int32
}

func (h *datasetHandle) acquire() {
	h.refCount.Add(1)
}

func (h *datasetHandle) release() {
	if h.refCount.Add(-1) == 0 {
		log.Debugf("Releasing the dataset of seed %s", h.dataset.Seed())
		h.dataset = nil
	}
}

// datasetBuild is an in-progress dataset construction that later requests
// for the same seed wait on
type datasetBuild struct {
	done chan struct{}
	err  error
}

// datasetCache keeps the datasets of the most recently used seeds. Each
// dataset is built exactly once no matter how many workers ask for it.
type datasetCache struct {
	config *pow.DatasetConfig

	lock     sync.Mutex
	datasets *lru.Cache[externalapi.DomainHash, *datasetHandle]
	builds   map[externalapi.DomainHash]*datasetBuild

	builtDatasets atomic.Uint64
}

func newDatasetCache(size int, config *pow.DatasetConfig) (*datasetCache, error) {
	datasets, err := lru.NewWithEvict(size, func(seed externalapi.DomainHash, handle *datasetHandle) {
		log.Debugf("Evicting the dataset of seed %s", seed)
		handle.release()
	})
	if err != nil {
		return nil, errors.Wrapf(err, "could not create a dataset cache of size %d", size)
	}
	return &datasetCache{
		config:   config,
		datasets: datasets,
		builds:   make(map[externalapi.DomainHash]*datasetBuild),
	}, nil
}

// get returns an acquired handle to the dataset of seed, building it if
// needed. The caller must release it.
func (dc *datasetCache) get(seed *externalapi.DomainHash) (*datasetHandle, error) {
	for {
		dc.lock.Lock()
		if handle, ok := dc.datasets.Get(*seed); ok {
			handle.acquire()
			dc.lock.Unlock()
			return handle, nil
		}

		if build, ok := dc.builds[*seed]; ok {
			dc.lock.Unlock()
			<-build.done
			if build.err != nil {
				return nil, build.err
			}
			continue
		}

		build := &datasetBuild{done: make(chan struct{})}
		dc.builds[*seed] = build
		dc.lock.Unlock()

		handle, err := dc.build(seed)

		dc.lock.Lock()
		delete(dc.builds, *seed)
		if err == nil {
			// One reference for the cache and one for the caller
			handle.acquire()
			handle.acquire()
			dc.datasets.Add(*seed, handle)
		}
		build.err = err
		close(build.done)
		dc.lock.Unlock()

		return handle, err
	}
}

func (dc *datasetCache) build(seed *externalapi.DomainHash) (*datasetHandle, error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "datasetCache.build")
	defer onEnd()

	log.Infof("Building the proof-of-work dataset of seed %s", seed)
	dataset, err := pow.NewDataset(seed, dc.config)
	if err != nil {
		return nil, err
	}
	dc.builtDatasets.Add(1)
	return &datasetHandle{dataset: dataset}, nil
}
