package hardforkmanager

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/chainparams"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
)

func votesOf(count int, vote externalapi.HardForkVersion) []externalapi.HardForkVersion {
	votes := make([]externalapi.HardForkVersion, count)
	for i := range votes {
		votes[i] = vote
	}
	return votes
}

func TestNextHardForkVersionAtTableHeights(t *testing.T) {
	params := &chainparams.MainnetParams
	hfm := New(params)

	current := externalapi.HardForkV1
	for i := 1; i < len(params.HardForks); i++ {
		activation := params.HardForks[i]
		before := hfm.NextHardForkVersion(current, activation.Height-2, nil)
		if before != current {
			t.Fatalf("expected %s to stay active below height %d, got %s", current, activation.Height, before)
		}
		after := hfm.NextHardForkVersion(current, activation.Height-1, nil)
		if after != activation.Version {
			t.Fatalf("expected %s to activate at height %d, got %s", activation.Version, activation.Height, after)
		}
		current = after
	}
	if current != externalapi.LatestHardForkVersion {
		t.Fatalf("expected to end on %s, got %s", externalapi.LatestHardForkVersion, current)
	}
}

func TestNextHardForkVersionActivatesSeveralForks(t *testing.T) {
	hfm := New(&chainparams.MainnetParams)
	version := hfm.NextHardForkVersion(externalapi.HardForkV1, 10000000, nil)
	if version != externalapi.LatestHardForkVersion {
		t.Fatalf("expected every fork to activate at once, got %s", version)
	}
}

func TestNextHardForkVersionCountsVotes(t *testing.T) {
	params := chainparams.SimnetParams.Clone()
	params.HardForkVoteWindow = 10
	params.HardForks[1].Threshold = 80
	hfm := New(params)

	tests := []struct {
		name     string
		votes    []externalapi.HardForkVersion
		expected externalapi.HardForkVersion
	}{
		{"no votes", nil, externalapi.HardForkV1},
		{"votes for an older version", votesOf(10, externalapi.HardForkV2), externalapi.HardForkV1},
		{"one vote short", votesOf(7, externalapi.LatestHardForkVersion), externalapi.HardForkV1},
		{"exactly the threshold", votesOf(8, externalapi.LatestHardForkVersion), externalapi.LatestHardForkVersion},
	}
	for _, test := range tests {
		version := hfm.NextHardForkVersion(externalapi.HardForkV1, 100, test.votes)
		if version != test.expected {
			t.Fatalf("%s: expected %s, got %s", test.name, test.expected, version)
		}
	}
}

func TestCheckBlockVersion(t *testing.T) {
	hfm := New(&chainparams.MainnetParams)
	chainContext := &externalapi.ChainContext{HardForkVersion: externalapi.HardForkV5}

	tests := []struct {
		name          string
		major, minor  uint8
		expectedError bool
	}{
		{"matching version and vote", 5, 5, false},
		{"vote for a later version", 5, 6, false},
		{"vote for an unknown version", 5, 200, false},
		{"older major version", 4, 5, true},
		{"newer major version", 6, 6, true},
		{"unknown major version", 0, 5, true},
		{"vote for an older version", 5, 4, true},
		{"zero vote", 5, 0, true},
	}
	for _, test := range tests {
		header := &externalapi.DomainBlockHeader{MajorVersion: test.major, MinorVersion: test.minor}
		err := hfm.CheckBlockVersion(header, chainContext)
		if test.expectedError {
			if !errors.Is(err, ruleerrors.ErrUnsupportedVersion) {
				t.Fatalf("%s: expected ErrUnsupportedVersion, got %v", test.name, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: CheckBlockVersion: %+v", test.name, err)
		}
	}
}
