package coinbasemanager

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/chainparams"
	"github.com/ringnet/ringd/domain/consensus/model"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/processes/weightmanager"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
)

func newTestCoinbaseManager() model.CoinbaseManager {
	params := &chainparams.MainnetParams
	return New(params, weightmanager.New(params))
}

func TestBaseReward(t *testing.T) {
	c := newTestCoinbaseManager()
	tests := []struct {
		name                  string
		alreadyGeneratedCoins uint64
		version               externalapi.HardForkVersion
		expected              uint64
	}{
		{"first block", 0, externalapi.HardForkV1, math.MaxUint64 >> 20},
		{"first block with two minute blocks", 0, externalapi.HardForkV2, math.MaxUint64 >> 19},
		{"tail emission", math.MaxUint64 - 1, externalapi.HardForkV1, 300000000000},
		{"tail emission with two minute blocks", math.MaxUint64 - 1, externalapi.HardForkV16, 600000000000},
		{"exhausted supply", math.MaxUint64, externalapi.HardForkV16, 600000000000},
	}
	for _, test := range tests {
		reward := c.BaseReward(test.alreadyGeneratedCoins, test.version)
		if reward != test.expected {
			t.Fatalf("%s: expected %d, got %d", test.name, test.expected, reward)
		}
	}
}

func TestBlockRewardPenalty(t *testing.T) {
	c := newTestCoinbaseManager()
	tests := []struct {
		name        string
		blockWeight uint64
		expected    uint64
	}{
		{"below the median", 50, 1000},
		{"exactly the median", 100, 1000},
		{"half way to the limit", 150, 750},
		{"exactly twice the median", 200, 0},
	}
	for _, test := range tests {
		reward, err := c.BlockReward(1000, test.blockWeight, 100)
		if err != nil {
			t.Fatalf("%s: BlockReward: %+v", test.name, err)
		}
		if reward != test.expected {
			t.Fatalf("%s: expected %d, got %d", test.name, test.expected, reward)
		}
	}

	_, err := c.BlockReward(1000, 201, 100)
	if !errors.Is(err, ruleerrors.ErrBlockTooLarge) {
		t.Fatalf("expected ErrBlockTooLarge above twice the median, got %v", err)
	}
}

func TestMinimumFee(t *testing.T) {
	c := newTestCoinbaseManager()
	tests := []struct {
		name              string
		chainContext      *externalapi.ChainContext
		transactionWeight uint64
		expected          uint64
	}{
		{
			name:              "one started kilobyte",
			chainContext:      &externalapi.ChainContext{HardForkVersion: externalapi.HardForkV7},
			transactionWeight: 1,
			expected:          10000000000,
		},
		{
			name:              "exactly one kilobyte",
			chainContext:      &externalapi.ChainContext{HardForkVersion: externalapi.HardForkV7},
			transactionWeight: 1024,
			expected:          10000000000,
		},
		{
			name:              "two started kilobytes",
			chainContext:      &externalapi.ChainContext{HardForkVersion: externalapi.HardForkV7},
			transactionWeight: 1025,
			expected:          20000000000,
		},
		{
			// 600000000000 * 3000 / 300000^2 * 19/20 = 19000 per byte
			name: "dynamic fee of 19000 per byte",
			chainContext: &externalapi.ChainContext{
				HardForkVersion:       externalapi.HardForkV8,
				AlreadyGeneratedCoins: math.MaxUint64 - 1,
				EffectiveMedianWeight: 300000,
			},
			transactionWeight: 1000,
			expected:          19000000,
		},
		{
			name: "dynamic fee never uses a median below the penalty free zone",
			chainContext: &externalapi.ChainContext{
				HardForkVersion:       externalapi.HardForkV8,
				AlreadyGeneratedCoins: math.MaxUint64 - 1,
			},
			transactionWeight: 1000,
			expected:          19000000,
		},
		{
			name: "dynamic fee floor of one per byte",
			chainContext: &externalapi.ChainContext{
				HardForkVersion:       externalapi.HardForkV8,
				AlreadyGeneratedCoins: math.MaxUint64 - 1,
				EffectiveMedianWeight: 100000000,
			},
			transactionWeight: 1000,
			expected:          1000,
		},
	}
	for _, test := range tests {
		fee, err := c.MinimumFee(test.transactionWeight, test.chainContext)
		if err != nil {
			t.Fatalf("%s: MinimumFee: %+v", test.name, err)
		}
		if fee != test.expected {
			t.Fatalf("%s: expected a fee of %d atomic units for %d bytes, got %d",
				test.name, test.expected, test.transactionWeight, fee)
		}
	}
}
