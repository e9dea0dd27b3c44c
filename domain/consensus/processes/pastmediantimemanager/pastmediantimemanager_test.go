package pastmediantimemanager

import (
	"testing"

	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
)

func TestMedianTimestamp(t *testing.T) {
	pmtm := New(5)
	tests := []struct {
		window   []uint64
		expected uint64
	}{
		{window: []uint64{100, 110, 120, 130, 140}, expected: 120},
		{window: []uint64{140, 100, 130, 110, 120}, expected: 120},
		{window: []uint64{100, 110, 120, 131}, expected: 115},
		{window: []uint64{100, 111}, expected: 105},
		{window: []uint64{7}, expected: 7},
	}
	for _, test := range tests {
		median := pmtm.MedianTimestamp(test.window)
		if median != test.expected {
			t.Fatalf("MedianTimestamp(%v): expected %d, got %d", test.window, test.expected, median)
		}
	}
}

func TestPastMedianTime(t *testing.T) {
	pmtm := New(5)

	_, isActive := pmtm.PastMedianTime(&externalapi.ChainContext{TimestampWindow: []uint64{1, 2, 3, 4}})
	if isActive {
		t.Fatalf("the timestamp check is active on a window shorter than the check window")
	}

	chainContext := &externalapi.ChainContext{TimestampWindow: []uint64{1, 100, 110, 120, 130, 140}}
	median, isActive := pmtm.PastMedianTime(chainContext)
	if !isActive {
		t.Fatalf("the timestamp check is inactive on a full window")
	}
	if median != 120 {
		t.Fatalf("expected past median time 120, got %d", median)
	}
}
