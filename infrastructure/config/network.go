package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/chainparams"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
)

// NetworkFlags holds the network configuration, that is which network is selected.
type NetworkFlags struct {
	Testnet            bool   `long:"testnet" description:"Use the test network"`
	Stagenet           bool   `long:"stagenet" description:"Use the staging network"`
	Simnet             bool   `long:"simnet" description:"Use the simulation test network"`
	OverrideParamsFile string `long:"override-params-file" description:"Overrides network params (allowed only on simnet)"`
	SkipPow            bool   `long:"skip-pow" description:"Do not verify proof of work (allowed only on simnet)"`

	ActiveNetParams *chainparams.Params
}

type overrideHardForkConfig struct {
	Version   uint8   `json:"version"`
	Height    uint64  `json:"height"`
	Threshold uint64  `json:"threshold"`
	Algorithm *string `json:"algorithm"`
}

type overrideParamsConfig struct {
	HardForks             []overrideHardForkConfig `json:"hardForks"`
	DifficultyWindow      *uint64                  `json:"difficultyWindow"`
	DifficultyCut         *uint64                  `json:"difficultyCut"`
	DifficultyLag         *uint64                  `json:"difficultyLag"`
	TimestampCheckWindow  *uint64                  `json:"timestampCheckWindow"`
	ShortTermWeightWindow *uint64                  `json:"shortTermWeightWindow"`
	LongTermWeightWindow  *uint64                  `json:"longTermWeightWindow"`
	HardForkVoteWindow    *uint64                  `json:"hardForkVoteWindow"`
	TargetTimePerBlock    *uint64                  `json:"targetTimePerBlock"`
	TargetTimePerBlockV1  *uint64                  `json:"targetTimePerBlockV1"`
	DatasetEpochBlocks    *uint64                  `json:"datasetEpochBlocks"`
	DatasetEpochLag       *uint64                  `json:"datasetEpochLag"`
}

// ResolveNetwork parses the network command line argument and sets ActiveNetParams accordingly.
// It returns error if more than one network was selected, nil otherwise.
func (networkFlags *NetworkFlags) ResolveNetwork(parser *flags.Parser) error {
	// Default value is main-net
	activeNetParams := &chainparams.MainnetParams
	// Multiple networks can't be selected simultaneously.
	numNets := 0
	if networkFlags.Testnet {
		numNets++
		activeNetParams = &chainparams.TestnetParams
	}
	if networkFlags.Stagenet {
		numNets++
		activeNetParams = &chainparams.StagenetParams
	}
	if networkFlags.Simnet {
		numNets++
		activeNetParams = &chainparams.SimnetParams
	}
	if numNets > 1 {
		message := "Multiple networks parameters (testnet, stagenet, simnet) cannot be used " +
			"together. Please choose only one network"
		err := errors.Errorf(message)
		if parser != nil {
			fmt.Fprintln(os.Stderr, err)
			parser.WriteHelp(os.Stderr)
		}
		return err
	}

	// The params are cloned so that overrides never leak into the
	// package-level tables
	networkFlags.ActiveNetParams = activeNetParams.Clone()

	if networkFlags.SkipPow {
		if !networkFlags.Simnet {
			return errors.Errorf("skip-pow is allowed only when using simnet")
		}
		networkFlags.ActiveNetParams.SkipProofOfWork = true
	}

	err := networkFlags.overrideParams()
	if err != nil {
		return err
	}
	return networkFlags.ActiveNetParams.Validate()
}

// NetParams returns the ActiveNetParams
func (networkFlags *NetworkFlags) NetParams() *chainparams.Params {
	return networkFlags.ActiveNetParams
}

func (networkFlags *NetworkFlags) overrideParams() error {
	if networkFlags.OverrideParamsFile == "" {
		return nil
	}

	if !networkFlags.Simnet {
		return errors.Errorf("override-params-file is allowed only when using simnet")
	}

	overrideParamsFile, err := os.Open(networkFlags.OverrideParamsFile)
	if err != nil {
		return errors.WithStack(err)
	}
	defer overrideParamsFile.Close()

	decoder := json.NewDecoder(overrideParamsFile)
	decoder.DisallowUnknownFields()
	config := &overrideParamsConfig{}
	err = decoder.Decode(config)
	if err != nil {
		return errors.Wrapf(err, "couldn't decode %s", networkFlags.OverrideParamsFile)
	}

	params := networkFlags.ActiveNetParams
	if config.HardForks != nil {
		hardForks := make([]chainparams.HardForkActivation, len(config.HardForks))
		for i, hardFork := range config.HardForks {
			version, err := externalapi.HardForkVersionFromByte(hardFork.Version)
			if err != nil {
				return err
			}
			hardForks[i] = chainparams.HardForkActivation{
				Version:   version,
				Height:    hardFork.Height,
				Threshold: hardFork.Threshold,
			}
			if hardFork.Algorithm != nil {
				hardForks[i].Algorithm, err = chainparams.PowAlgorithmFromString(*hardFork.Algorithm)
				if err != nil {
					return err
				}
			}
		}
		params.HardForks = hardForks
	}

	overrides := []struct {
		value  *uint64
		target *uint64
	}{
		{config.DifficultyWindow, &params.DifficultyWindow},
		{config.DifficultyCut, &params.DifficultyCut},
		{config.DifficultyLag, &params.DifficultyLag},
		{config.TimestampCheckWindow, &params.TimestampCheckWindow},
		{config.ShortTermWeightWindow, &params.ShortTermWeightWindow},
		{config.LongTermWeightWindow, &params.LongTermWeightWindow},
		{config.HardForkVoteWindow, &params.HardForkVoteWindow},
		{config.TargetTimePerBlock, &params.TargetTimePerBlock},
		{config.TargetTimePerBlockV1, &params.TargetTimePerBlockV1},
		{config.DatasetEpochBlocks, &params.DatasetEpochBlocks},
		{config.DatasetEpochLag, &params.DatasetEpochLag},
	}
	for _, override := range overrides {
		if override.value != nil {
			*override.target = *override.value
		}
	}

	return nil
}
