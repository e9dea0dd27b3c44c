package chainparams

import (
	"math"

	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
)

const (
	hardForkVoteWindow         = 10080
	difficultyWindow           = 720
	difficultyCut              = 60
	difficultyLag              = 15
	targetTimePerBlockV1       = 60
	targetTimePerBlock         = 120
	timestampCheckWindow       = 60
	futureTimeLimit            = 60 * 60 * 2
	shortTermWeightWindow      = 100
	longTermWeightWindow       = 100000
	minedMoneyUnlockWindow     = 60
	spendableAge               = 10
	emissionSpeedFactor        = 20
	finalSubsidyPerMinute      = 300000000000
	feePerKB                   = 10000000000
	dynamicFeeReferenceWeight  = 3000
	coinbaseBlobReservedSize   = 600
	datasetEpochBlocks         = 2048
	datasetEpochLag            = 64
	mainnetArgon2MemoryKiB     = 4 * 1024
	mainnetDatasetCacheItems   = 1 << 18
	mainnetDatasetItems        = 1 << 22
	datasetParents             = 16
	datasetCacheRounds         = 3
	datasetAccesses            = 64
	mainnetRangeProofBits      = 64
	simnetRangeProofBits       = 32
	simnetDatasetEpochBlocks   = 16
	simnetDatasetEpochLag      = 4
	simnetDatasetCacheItems    = 64
	simnetDatasetItems         = 1024
	simnetArgon2MemoryKiB      = 64
	simnetDifficultyWindow     = 24
	simnetDifficultyCut        = 2
	simnetDifficultyLag        = 2
	simnetTimestampCheckWindow = 5
)

var defaultRingSizeRules = []RingSizeRule{
	{FromVersion: externalapi.HardForkV1, Min: 1},
	{FromVersion: externalapi.HardForkV2, Min: 3},
	{FromVersion: externalapi.HardForkV6, Min: 5},
	{FromVersion: externalapi.HardForkV7, Min: 7},
	{FromVersion: externalapi.HardForkV8, Min: 11, Max: 11},
	{FromVersion: externalapi.HardForkV15, Min: 16, Max: 16},
}

var defaultTransactionVersionRules = []TransactionVersionRule{
	{FromVersion: externalapi.HardForkV1, MinVersion: 1, MaxVersion: 1},
	{FromVersion: externalapi.HardForkV4, MinVersion: 1, MaxVersion: 2},
	{FromVersion: externalapi.HardForkV6, MinVersion: 2, MaxVersion: 2},
}

func hardForkTable(heights [externalapi.LatestHardForkVersion]uint64) []HardForkActivation {
	table := make([]HardForkActivation, len(heights))
	for i, height := range heights {
		version := externalapi.HardForkVersion(i + 1)
		algorithm := PowAlgorithmKeccak
		switch {
		case version >= externalapi.HardForkV12:
			algorithm = PowAlgorithmDataset
		case version >= externalapi.HardForkV7:
			algorithm = PowAlgorithmArgon2id
		}
		table[i] = HardForkActivation{Version: version, Height: height, Algorithm: algorithm}
	}
	return table
}

func baseParams(name string, hardForks []HardForkActivation) Params {
	return Params{
		Name:                            name,
		HardForks:                       hardForks,
		HardForkVoteWindow:              hardForkVoteWindow,
		DifficultyWindow:                difficultyWindow,
		DifficultyCut:                   difficultyCut,
		DifficultyLag:                   difficultyLag,
		TargetTimePerBlockV1:            targetTimePerBlockV1,
		TargetTimePerBlock:              targetTimePerBlock,
		TimestampCheckWindow:            timestampCheckWindow,
		FutureTimeLimit:                 futureTimeLimit,
		ShortTermWeightWindow:           shortTermWeightWindow,
		LongTermWeightWindow:            longTermWeightWindow,
		MinedMoneyUnlockWindow:          minedMoneyUnlockWindow,
		SpendableAge:                    spendableAge,
		MoneySupply:                     math.MaxUint64,
		EmissionSpeedFactorPerMinute:    emissionSpeedFactor,
		FinalSubsidyPerMinute:           finalSubsidyPerMinute,
		FeePerKB:                        feePerKB,
		PerByteFeeVersion:               externalapi.HardForkV8,
		DynamicFeeReferenceWeight:       dynamicFeeReferenceWeight,
		CoinbaseBlobReservedSize:        coinbaseBlobReservedSize,
		ConfidentialMinerOutputsVersion: externalapi.HardForkV4,
		RingSizeRules:                   defaultRingSizeRules,
		TransactionVersionRules:         defaultTransactionVersionRules,
		RangeProofBits:                  mainnetRangeProofBits,
		Argon2Time:                      1,
		Argon2MemoryKiB:                 mainnetArgon2MemoryKiB,
		DatasetEpochBlocks:              datasetEpochBlocks,
		DatasetEpochLag:                 datasetEpochLag,
		DatasetCacheItems:               mainnetDatasetCacheItems,
		DatasetItems:                    mainnetDatasetItems,
		DatasetParents:                  datasetParents,
		DatasetCacheRounds:              datasetCacheRounds,
		DatasetAccesses:                 datasetAccesses,
	}
}

// MainnetParams defines the network parameters for the main network.
var MainnetParams = func() Params {
	params := baseParams("ringd-mainnet", hardForkTable([externalapi.LatestHardForkVersion]uint64{
		0, 1009827, 1141317, 1220516, 1288616, 1400000, 1546000, 1685555,
		1686275, 1788000, 1788720, 1978433, 2210000, 2210720, 2688888, 2689608,
	}))
	params.GenesisBlock = genesisBlock(genesisNonceMainnet, params.MinedMoneyUnlockWindow)
	return params
}()

// TestnetParams defines the network parameters for the test network.
var TestnetParams = func() Params {
	params := baseParams("ringd-testnet", hardForkTable([externalapi.LatestHardForkVersion]uint64{
		0, 624634, 800500, 801219, 802660, 971400, 1057027, 1057058,
		1057778, 1154318, 1155038, 1308737, 1543939, 1544659, 1982800, 1983520,
	}))
	params.GenesisBlock = genesisBlock(genesisNonceTestnet, params.MinedMoneyUnlockWindow)
	return params
}()

// StagenetParams defines the network parameters for the staging network.
var StagenetParams = func() Params {
	params := baseParams("ringd-stagenet", hardForkTable([externalapi.LatestHardForkVersion]uint64{
		0, 32000, 33000, 34000, 35000, 36000, 37000, 176456,
		177176, 269000, 269720, 454721, 675405, 676125, 1151000, 1151720,
	}))
	params.GenesisBlock = genesisBlock(genesisNonceStagenet, params.MinedMoneyUnlockWindow)
	return params
}()

// SimnetParams defines the network parameters for the simulation test
// network. It runs the latest rules from height 1, with small windows, small
// rings and a small proof-of-work dataset.
var SimnetParams = func() Params {
	params := baseParams("ringd-simnet", []HardForkActivation{
		{Version: externalapi.HardForkV1, Height: 0, Algorithm: PowAlgorithmKeccak},
		{Version: externalapi.LatestHardForkVersion, Height: 1, Algorithm: PowAlgorithmKeccak},
	})
	params.DifficultyWindow = simnetDifficultyWindow
	params.DifficultyCut = simnetDifficultyCut
	params.DifficultyLag = simnetDifficultyLag
	params.TimestampCheckWindow = simnetTimestampCheckWindow
	params.HardForkVoteWindow = 32
	params.ShortTermWeightWindow = 10
	params.LongTermWeightWindow = 50
	params.MinedMoneyUnlockWindow = 2
	params.SpendableAge = 2
	params.RingSizeRules = []RingSizeRule{{FromVersion: externalapi.HardForkV1, Min: 1, Max: 16}}
	params.TransactionVersionRules = []TransactionVersionRule{
		{FromVersion: externalapi.HardForkV1, MinVersion: 1, MaxVersion: 2},
	}
	params.RangeProofBits = simnetRangeProofBits
	params.Argon2MemoryKiB = simnetArgon2MemoryKiB
	params.DatasetEpochBlocks = simnetDatasetEpochBlocks
	params.DatasetEpochLag = simnetDatasetEpochLag
	params.DatasetCacheItems = simnetDatasetCacheItems
	params.DatasetItems = simnetDatasetItems
	params.GenesisBlock = genesisBlock(genesisNonceSimnet, params.MinedMoneyUnlockWindow)
	return params
}()

// AllNets lists the parameters of every known network
func AllNets() []*Params {
	return []*Params{&MainnetParams, &TestnetParams, &StagenetParams, &SimnetParams}
}
