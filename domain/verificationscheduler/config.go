package verificationscheduler

import (
	"runtime"

	"github.com/pkg/errors"
)

const (
	// DefaultQueueCapacity is the default number of requests that may wait
	// for a worker
	DefaultQueueCapacity = 1024

	// DefaultMaxPendingBlocks is the default number of verified blocks that
	// may wait for their parent to be committed
	DefaultMaxPendingBlocks = 64

	// DefaultBatchSize is the default maximum number of transactions whose
	// signatures are verified as one batch
	DefaultBatchSize = 16
)

// Config holds the sizes of a Scheduler. Zero values select the defaults.
type Config struct {
	Workers          int
	QueueCapacity    int
	MaxPendingBlocks int
	BatchSize        int
}

func (config Config) withDefaults() Config {
	if config.Workers == 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.QueueCapacity == 0 {
		config.QueueCapacity = DefaultQueueCapacity
	}
	if config.MaxPendingBlocks == 0 {
		config.MaxPendingBlocks = DefaultMaxPendingBlocks
	}
	if config.BatchSize == 0 {
		config.BatchSize = DefaultBatchSize
	}
	return config
}

func (config Config) validate() error {
	if config.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", config.Workers)
	}
	if config.QueueCapacity < 0 {
		return errors.Errorf("queue capacity must not be negative, got %d", config.QueueCapacity)
	}
	if config.MaxPendingBlocks < 0 {
		return errors.Errorf("max pending blocks must not be negative, got %d", config.MaxPendingBlocks)
	}
	if config.BatchSize < 0 {
		return errors.Errorf("batch size must not be negative, got %d", config.BatchSize)
	}
	return nil
}
