package testutils

import (
	"testing"

	"github.com/ringnet/ringd/domain/chainparams"
)

// ForAllNets runs the passed testFunc with all available networks
// if skipPow = true - proof of work checks pass for every block, like in tests that build blocks by hand
func ForAllNets(t *testing.T, skipPow bool, testFunc func(*testing.T, *chainparams.Params)) {
	for _, params := range chainparams.AllNets() {
		params := params.Clone()
		t.Run(params.Name, func(t *testing.T) {
			t.Parallel()
			params.SkipProofOfWork = skipPow
			t.Logf("Running test for %s", params.Name)
			testFunc(t, params)
		})
	}
}

// SimnetParams returns a copy of the simnet parameters that tests may modify
func SimnetParams(skipPow bool) *chainparams.Params {
	params := chainparams.SimnetParams.Clone()
	params.SkipProofOfWork = skipPow
	return params
}
