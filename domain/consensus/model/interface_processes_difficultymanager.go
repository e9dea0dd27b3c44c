package model

import (
	"github.com/holiman/uint256"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
)

// DifficultyManager provides a method to resolve the
// difficulty value of the next block
type DifficultyManager interface {
	NextDifficulty(timestamps []uint64, cumulativeDifficulties []uint256.Int,
		version externalapi.HardForkVersion) (*uint256.Int, error)
}
