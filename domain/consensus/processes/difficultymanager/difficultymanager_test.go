package difficultymanager

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/ringnet/ringd/domain/chainparams"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
	"github.com/pkg/errors"
)

func testParams() *chainparams.Params {
	params := chainparams.SimnetParams.Clone()
	params.DifficultyWindow = 10
	params.DifficultyCut = 2
	return params
}

// chainWindow returns timestamps spaced spacing seconds apart and the
// cumulative difficulty of blocks that were all mined at difficulty
func chainWindow(length int, spacing uint64, difficulty uint64) ([]uint64, []uint256.Int) {
	timestamps := make([]uint64, length)
	cumulative := make([]uint256.Int, length)
	for i := 0; i < length; i++ {
		timestamps[i] = 1000 + uint64(i)*spacing
		cumulative[i] = *uint256.NewInt(uint64(i+1) * difficulty)
	}
	return timestamps, cumulative
}

func TestNextDifficultyShortWindows(t *testing.T) {
	dm := New(testParams())
	for _, length := range []int{0, 1} {
		timestamps, cumulative := chainWindow(length, 120, 100)
		difficulty, err := dm.NextDifficulty(timestamps, cumulative, externalapi.HardForkV16)
		if err != nil {
			t.Fatalf("NextDifficulty: %+v", err)
		}
		if difficulty.Uint64() != 1 {
			t.Fatalf("window of length %d: expected difficulty 1, got %s", length, difficulty.Dec())
		}
	}
}

func TestNextDifficultyStableAtTarget(t *testing.T) {
	params := testParams()
	dm := New(params)
	tests := []struct {
		name     string
		spacing  uint64
		expected uint64
	}{
		{name: "on target", spacing: 120, expected: 1000},
		{name: "twice as slow", spacing: 240, expected: 500},
		{name: "twice as fast", spacing: 60, expected: 2000},
	}
	for _, test := range tests {
		timestamps, cumulative := chainWindow(int(params.DifficultyWindow), test.spacing, 1000)
		difficulty, err := dm.NextDifficulty(timestamps, cumulative, externalapi.HardForkV16)
		if err != nil {
			t.Fatalf("%s: NextDifficulty: %+v", test.name, err)
		}
		if difficulty.Uint64() != test.expected {
			t.Fatalf("%s: expected difficulty %d, got %s", test.name, test.expected, difficulty.Dec())
		}
	}
}

func TestNextDifficultyUsesOldestEntries(t *testing.T) {
	params := testParams()
	dm := New(params)
	timestamps, cumulative := chainWindow(int(params.DifficultyWindow), 120, 1000)
	expected, err := dm.NextDifficulty(timestamps, cumulative, externalapi.HardForkV16)
	if err != nil {
		t.Fatalf("NextDifficulty: %+v", err)
	}

	// Entries past the window belong to lagging blocks and must not count
	laggingTimestamps := append(timestamps, 1, 2)
	laggingCumulative := append(cumulative, *uint256.NewInt(1 << 60), *uint256.NewInt(1 << 61))
	difficulty, err := dm.NextDifficulty(laggingTimestamps, laggingCumulative, externalapi.HardForkV16)
	if err != nil {
		t.Fatalf("NextDifficulty: %+v", err)
	}
	if !difficulty.Eq(expected) {
		t.Fatalf("lagging blocks changed the difficulty from %s to %s", expected.Dec(), difficulty.Dec())
	}
}

func TestNextDifficultyRoundsUp(t *testing.T) {
	params := testParams()
	params.DifficultyWindow = 2
	params.DifficultyCut = 0
	dm := New(params)
	// 7 work at a 120 second target is 840
	tests := []struct {
		timeSpan uint64
		expected uint64
	}{
		{timeSpan: 3, expected: 280},
		{timeSpan: 9, expected: 94},
		{timeSpan: 0, expected: 840},
	}
	for _, test := range tests {
		timestamps := []uint64{100, 100 + test.timeSpan}
		cumulative := []uint256.Int{*uint256.NewInt(10), *uint256.NewInt(17)}
		difficulty, err := dm.NextDifficulty(timestamps, cumulative, externalapi.HardForkV16)
		if err != nil {
			t.Fatalf("NextDifficulty: %+v", err)
		}
		if difficulty.Uint64() != test.expected {
			t.Fatalf("time span %d: expected %d, got %s", test.timeSpan, test.expected, difficulty.Dec())
		}
	}
}

func TestNextDifficultyTargetTimeByVersion(t *testing.T) {
	params := testParams()
	params.DifficultyWindow = 2
	params.DifficultyCut = 0
	dm := New(params)
	timestamps := []uint64{100, 160}
	cumulative := []uint256.Int{*uint256.NewInt(0), *uint256.NewInt(600)}

	v1Difficulty, err := dm.NextDifficulty(timestamps, cumulative, externalapi.HardForkV1)
	if err != nil {
		t.Fatalf("NextDifficulty: %+v", err)
	}
	v2Difficulty, err := dm.NextDifficulty(timestamps, cumulative, externalapi.HardForkV2)
	if err != nil {
		t.Fatalf("NextDifficulty: %+v", err)
	}
	if v1Difficulty.Uint64() != 600 || v2Difficulty.Uint64() != 1200 {
		t.Fatalf("unexpected difficulties %s and %s", v1Difficulty.Dec(), v2Difficulty.Dec())
	}
}

func TestNextDifficultyErrors(t *testing.T) {
	dm := New(testParams())
	_, err := dm.NextDifficulty([]uint64{1, 2}, []uint256.Int{*uint256.NewInt(1)}, externalapi.HardForkV16)
	if !errors.Is(err, ruleerrors.ErrCorruptedWindow) {
		t.Fatalf("expected ErrCorruptedWindow, got %+v", err)
	}

	huge := new(uint256.Int).Lsh(uint256.NewInt(1), 127)
	_, err = dm.NextDifficulty([]uint64{1, 2}, []uint256.Int{*uint256.NewInt(0), *huge}, externalapi.HardForkV16)
	if !errors.Is(err, ruleerrors.ErrNumericOverflow) {
		t.Fatalf("expected ErrNumericOverflow, got %+v", err)
	}
}
