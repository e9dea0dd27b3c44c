package externalapi

import (
	"reflect"
	"testing"

	"github.com/holiman/uint256"
)

func testBlock() *DomainBlock {
	commitment := ECPoint{9}
	transaction := &DomainTransaction{
		Version: TransactionVersionConfidential,
		Inputs: []*DomainTransactionInput{{
			Type:       InputTypeToKey,
			KeyOffsets: []uint64{3, 1},
			KeyImage:   KeyImage{7},
			RingMembers: []*OutputCommitment{
				{Key: ECPoint{1}, Commitment: ECPoint{2}, Height: 3},
				{Key: ECPoint{4}, Commitment: ECPoint{5}, Height: 6},
			},
		}},
		Outputs: []*DomainTransactionOutput{{Key: ECPoint{8}, Commitment: &commitment}},
		Extra:   []byte{1, 2, 3},
		Fee:     10,
		Signature: &RingCTSignature{
			PseudoOutputs:  []ECPoint{{6}},
			RingSignatures: []*RingSignature{{Members: []*RingSignatureMember{{KeyL: ECPoint{1}}}}},
			RangeProofs:    []*RangeProof{{Bits: []*RangeProofBit{{Commitment: ECPoint{2}}}}},
		},
	}
	return &DomainBlock{
		Header: &DomainBlockHeader{
			MajorVersion: 1,
			MinorVersion: 2,
			Timestamp:    3,
			PrevHash:     NewDomainHashFromByteArray(&[DomainHashSize]byte{4}),
			Nonce:        5,
		},
		MinerTransaction: &DomainTransaction{
			Version: TransactionVersionTransparent,
			Inputs:  []*DomainTransactionInput{{Type: InputTypeGen, Height: 1}},
			Outputs: []*DomainTransactionOutput{{Amount: 100, Key: ECPoint{3}}},
		},
		TransactionHashes: []*DomainHash{NewDomainHashFromByteArray(&[DomainHashSize]byte{6})},
		Transactions:      []*DomainTransaction{transaction},
	}
}

func TestDomainBlockClone(t *testing.T) {
	block := testBlock()
	clone := block.Clone()
	if !reflect.DeepEqual(block, clone) {
		t.Fatalf("Clone differs from the original")
	}

	clone.Header.Nonce++
	clone.Transactions[0].Inputs[0].KeyOffsets[0]++
	clone.Transactions[0].Inputs[0].RingMembers[0].Height++
	*clone.Transactions[0].Outputs[0].Commitment = ECPoint{}
	clone.Transactions[0].Signature.RingSignatures[0].Members[0].KeyL = ECPoint{}
	clone.Transactions[0].Signature.RangeProofs[0].Bits[0].Commitment = ECPoint{}
	clone.Transactions[0].Extra[0] = 0
	clone.MinerTransaction.Outputs[0].Amount = 0

	if !reflect.DeepEqual(block, testBlock()) {
		t.Fatalf("Modifying a clone modified the original")
	}
}

func TestDomainBlockCloneKeepsMissingBodies(t *testing.T) {
	block := testBlock()
	block.Transactions[0] = nil
	clone := block.Clone()
	if clone.Transactions[0] != nil {
		t.Fatalf("Expected a missing body to stay missing")
	}
}

func TestAbsoluteKeyOffsets(t *testing.T) {
	tests := []struct {
		relative []uint64
		absolute []uint64
		ok       bool
	}{
		{relative: []uint64{}, absolute: []uint64{}, ok: true},
		{relative: []uint64{5}, absolute: []uint64{5}, ok: true},
		{relative: []uint64{5, 1, 10}, absolute: []uint64{5, 6, 16}, ok: true},
		{relative: []uint64{^uint64(0), 1}, ok: false},
	}
	for i, test := range tests {
		input := &DomainTransactionInput{KeyOffsets: test.relative}
		absolute, ok := input.AbsoluteKeyOffsets()
		if ok != test.ok {
			t.Fatalf("test %d: expected ok %t, got %t", i, test.ok, ok)
		}
		if ok && !reflect.DeepEqual(absolute, test.absolute) {
			t.Fatalf("test %d: expected %v, got %v", i, test.absolute, absolute)
		}
	}
}

func TestChainContextClone(t *testing.T) {
	context := &ChainContext{
		Height:                4,
		TopHash:               NewDomainHashFromByteArray(&[DomainHashSize]byte{1}),
		HardForkVersion:       HardForkV2,
		NextDifficulty:        *uint256.NewInt(10),
		TimestampWindow:       []uint64{1, 2, 3},
		LongTermWeightWindow:  []uint64{7, 5},
		SortedLongTermWeights: []uint64{5, 7},
		DifficultyCumulative:  []uint256.Int{*uint256.NewInt(1)},
		HardForkVotes:         []HardForkVersion{HardForkV1, HardForkV2},
		SeedHashes:            []SeedHash{{Height: 0, Hash: NewDomainHashFromByteArray(&[DomainHashSize]byte{2})}},
		OutputAmountIndex:     map[uint64]uint64{0: 5, 100: 1},
	}
	clone := context.Clone()
	if !reflect.DeepEqual(context, clone) {
		t.Fatalf("Clone differs from the original")
	}

	clone.TimestampWindow[0] = 100
	clone.SortedLongTermWeights[0] = 100
	clone.DifficultyCumulative[0] = *uint256.NewInt(100)
	clone.HardForkVotes[0] = HardForkV2
	clone.OutputAmountIndex[0] = 100
	clone.NextDifficulty.SetUint64(1)
	if context.TimestampWindow[0] != 1 || context.SortedLongTermWeights[0] != 5 ||
		context.DifficultyCumulative[0].Uint64() != 1 ||
		context.HardForkVotes[0] != HardForkV1 || context.OutputAmountIndex[0] != 5 ||
		context.NextDifficulty.Uint64() != 10 {
		t.Fatalf("Modifying a clone modified the original")
	}

	if context.NextHeight() != 5 || context.TopTimestamp() != 3 || context.OutputCount(100) != 1 {
		t.Fatalf("Unexpected accessors on %+v", context)
	}
	empty := &ChainContext{}
	if !empty.IsEmpty() || empty.NextHeight() != 0 || empty.TopTimestamp() != 0 {
		t.Fatalf("Unexpected accessors on an empty context")
	}
}
