package consensus

import (
	"fmt"

	"github.com/ringnet/ringd/domain/chainparams"
	"github.com/ringnet/ringd/domain/consensus/datastructures/chaincontextstore"
	"github.com/ringnet/ringd/domain/consensus/datastructures/keyimagestore"
	"github.com/ringnet/ringd/domain/consensus/datastructures/outputstore"
	"github.com/ringnet/ringd/domain/consensus/datastructures/verifiedtxcache"
	"github.com/ringnet/ringd/domain/consensus/model"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/model/testapi"
	"github.com/ringnet/ringd/domain/consensus/processes/blockbuilder"
	"github.com/ringnet/ringd/domain/consensus/processes/blockprocessor"
	"github.com/ringnet/ringd/domain/consensus/processes/blockvalidator"
	"github.com/ringnet/ringd/domain/consensus/processes/coinbasemanager"
	"github.com/ringnet/ringd/domain/consensus/processes/difficultymanager"
	"github.com/ringnet/ringd/domain/consensus/processes/hardforkmanager"
	"github.com/ringnet/ringd/domain/consensus/processes/pastmediantimemanager"
	"github.com/ringnet/ringd/domain/consensus/processes/powmanager"
	"github.com/ringnet/ringd/domain/consensus/processes/transactionvalidator"
	"github.com/ringnet/ringd/domain/consensus/processes/weightmanager"
	"github.com/ringnet/ringd/util/mstime"
)

// Factory instantiates new Consensuses
type Factory interface {
	NewConsensus(config *Config) (externalapi.Consensus, error)
	NewTestConsensus(params *chainparams.Params, testName string) (testapi.TestConsensus, error)
}

type factory struct{}

// NewFactory creates a new Consensus factory
func NewFactory() Factory {
	return &factory{}
}

// NewConsensus instantiates a new Consensus
func (f *factory) NewConsensus(config *Config) (externalapi.Consensus, error) {
	c, err := f.newConsensus(config)
	if err != nil {
		return nil, err
	}
	return c.consensus, nil
}

// managers holds every process of a consensus instance, for tests to reach
type managers struct {
	*consensus

	params                *chainparams.Params
	clock                 mstime.Clock
	powManager            model.PowManager
	difficultyManager     model.DifficultyManager
	pastMedianTimeManager model.PastMedianTimeManager
	weightManager         model.WeightManager
	coinbaseManager       model.CoinbaseManager
	hardForkManager       model.HardForkManager
	keyImageStore         *keyimagestore.KeyImageStore
	outputStore           *outputstore.OutputStore
}

func (f *factory) newConsensus(config *Config) (*managers, error) {
	err := config.validate()
	if err != nil {
		return nil, err
	}
	config = config.withDefaults()
	params := config.Params

	// Processes without state
	difficultyManager := difficultymanager.New(params)
	pastMedianTimeManager := pastmediantimemanager.New(params.TimestampCheckWindow)
	weightManager := weightmanager.New(params)
	coinbaseManager := coinbasemanager.New(params, weightManager)
	hardForkManager := hardforkmanager.New(params)
	powManager, err := powmanager.New(params, config.DatasetCacheSize)
	if err != nil {
		return nil, err
	}

	// Data Structures
	var initialChainContext *externalapi.ChainContext
	if config.ChainStateLoader != nil {
		initialChainContext, err = config.ChainStateLoader.LoadChainContext()
		if err != nil {
			return nil, err
		}
	}
	chainContextStore, err := chaincontextstore.New(params,
		difficultyManager,
		pastMedianTimeManager,
		weightManager,
		hardForkManager,
		initialChainContext)
	if err != nil {
		return nil, err
	}

	keyImageIndex := config.KeyImageIndex
	outputIndex := config.OutputIndex
	var keyImageStore *keyimagestore.KeyImageStore
	var outputStore *outputstore.OutputStore
	writers := chainStateWriters(config.ChainStateWriters)
	if keyImageIndex == nil {
		keyImageStore = keyimagestore.New()
		outputStore = outputstore.New()
		keyImageIndex = keyImageStore
		outputIndex = outputStore
		writers = append(chainStateWriters{keyImageStore, outputStore}, writers...)
	}
	verifiedTransactionCache := verifiedtxcache.New(config.VerifiedTransactionCacheSize)

	// Validators and processors
	transactionValidator := transactionvalidator.New(params,
		weightManager,
		coinbaseManager,
		keyImageIndex,
		outputIndex,
		verifiedTransactionCache)
	blockValidator := blockvalidator.New(params,
		config.Clock,
		powManager,
		pastMedianTimeManager,
		weightManager,
		coinbaseManager,
		hardForkManager,
		transactionValidator)
	blockProcessor := blockprocessor.New(params,
		blockValidator,
		weightManager,
		chainContextStore,
		writers)

	log.Debugf("Consensus for %s starts at %s", params.Name, describeChainContext(chainContextStore.Current()))

	return &managers{
		consensus: &consensus{
			chainContextStore:    chainContextStore,
			blockProcessor:       blockProcessor,
			blockValidator:       blockValidator,
			transactionValidator: transactionValidator,
		},
		params:                params,
		clock:                 config.Clock,
		powManager:            powManager,
		difficultyManager:     difficultyManager,
		pastMedianTimeManager: pastMedianTimeManager,
		weightManager:         weightManager,
		coinbaseManager:       coinbaseManager,
		hardForkManager:       hardForkManager,
		keyImageStore:         keyImageStore,
		outputStore:           outputStore,
	}, nil
}

// NewTestConsensus instantiates a consensus with in-memory collaborators
// and a fixed clock that AddBlock advances
func (f *factory) NewTestConsensus(params *chainparams.Params, testName string) (testapi.TestConsensus, error) {
	genesisTimestamp := uint64(0)
	if params.GenesisBlock != nil {
		genesisTimestamp = params.GenesisBlock.Header.Timestamp
	}
	clock := mstime.NewFixedClock(mstime.UnixMilliToTime(int64(genesisTimestamp) * 1000))

	m, err := f.newConsensus(&Config{
		Params: params,
		Clock:  clock,
	})
	if err != nil {
		return nil, err
	}

	blockBuilder := blockbuilder.New(params, clock, m.pastMedianTimeManager, m.coinbaseManager)
	log.Debugf("Test consensus %s created", testName)
	return &testConsensus{
		managers:     m,
		testName:     testName,
		fixedClock:   clock,
		blockBuilder: blockbuilder.NewTestBlockBuilder(blockBuilder, m.powManager),
	}, nil
}

func describeChainContext(chainContext *externalapi.ChainContext) string {
	if chainContext.IsEmpty() {
		return "an empty chain"
	}
	return fmt.Sprintf("height %d (%s)", chainContext.Height, chainContext.TopHash)
}
