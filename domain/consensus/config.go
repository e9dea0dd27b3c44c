package consensus

import (
	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/chainparams"
	"github.com/ringnet/ringd/domain/consensus/model"
	"github.com/ringnet/ringd/util/mstime"
)

const (
	defaultVerifiedTransactionCacheSize = 10_000
	defaultDatasetCacheSize             = 2
)

// Config is a descriptor that holds the parameters and the collaborators
// needed by a consensus instance
type Config struct {
	*chainparams.Params

	// Clock is used for the future timestamp rule. Defaults to the system
	// clock.
	Clock mstime.Clock

	VerifiedTransactionCacheSize uint
	DatasetCacheSize             int

	// KeyImageIndex and OutputIndex default to in-memory stores that are
	// kept up to date with every committed block
	KeyImageIndex model.KeyImageIndex
	OutputIndex   model.OutputIndex

	// ChainStateLoader seeds the chain context. A nil loader starts an
	// empty chain.
	ChainStateLoader model.ChainStateLoader

	// ChainStateWriters are handed every accepted block, in order
	ChainStateWriters []model.ChainStateWriter
}

func (config *Config) validate() error {
	if config.Params == nil {
		return errors.New("consensus config has no network params")
	}
	if (config.KeyImageIndex == nil) != (config.OutputIndex == nil) {
		return errors.New("the key image index and the output index must either both be set or both " +
			"default to in-memory stores")
	}
	return config.Params.Validate()
}

func (config *Config) withDefaults() *Config {
	withDefaults := *config
	if withDefaults.Clock == nil {
		withDefaults.Clock = mstime.SystemClock()
	}
	if withDefaults.VerifiedTransactionCacheSize == 0 {
		withDefaults.VerifiedTransactionCacheSize = defaultVerifiedTransactionCacheSize
	}
	if withDefaults.DatasetCacheSize == 0 {
		withDefaults.DatasetCacheSize = defaultDatasetCacheSize
	}
	withDefaults.ChainStateWriters = append([]model.ChainStateWriter(nil), config.ChainStateWriters...)
	return &withDefaults
}
