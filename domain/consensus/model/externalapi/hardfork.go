package externalapi

import (
	"fmt"

	"github.com/pkg/errors"
)

// HardForkVersion identifies a set of consensus rules. Block major versions
// are HardForkVersions, and block minor versions are votes for one.
type HardForkVersion uint8

// Known hard fork versions
const (
	HardForkV1 HardForkVersion = iota + 1
	HardForkV2
	HardForkV3
	HardForkV4
	HardForkV5
	HardForkV6
	HardForkV7
	HardForkV8
	HardForkV9
	HardForkV10
	HardForkV11
	HardForkV12
	HardForkV13
	HardForkV14
	HardForkV15
	HardForkV16

	// LatestHardForkVersion is the newest version this node knows
	LatestHardForkVersion = HardForkV16
)

// HardForkVersionFromByte parses a block major version. Unknown versions are
// an error.
func HardForkVersionFromByte(version uint8) (HardForkVersion, error) {
	if version < uint8(HardForkV1) || version > uint8(LatestHardForkVersion) {
		return 0, errors.Errorf("unknown hard fork version %d", version)
	}
	return HardForkVersion(version), nil
}

// HardForkVersionFromVote parses a block minor version. A zero vote is a vote
// for V1 and a vote for an unknown future version counts as a vote for the
// latest known one.
func HardForkVersionFromVote(vote uint8) HardForkVersion {
	if vote == 0 {
		return HardForkV1
	}
	if vote > uint8(LatestHardForkVersion) {
		return LatestHardForkVersion
	}
	return HardForkVersion(vote)
}

// InRange returns whether start <= version < end
func (version HardForkVersion) InRange(start, end HardForkVersion) bool {
	return version >= start && version < end
}

// Next returns the version after this one and false if this is the latest
func (version HardForkVersion) Next() (HardForkVersion, bool) {
	if version >= LatestHardForkVersion {
		return 0, false
	}
	return version + 1, true
}

func (version HardForkVersion) String() string {
	return fmt.Sprintf("V%d", uint8(version))
}
