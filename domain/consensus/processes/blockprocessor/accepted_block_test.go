package blockprocessor

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/processes/weightmanager"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
	"github.com/ringnet/ringd/domain/consensus/utils/ringct"
	"github.com/ringnet/ringd/domain/consensus/utils/testutils"
)

func TestAcceptedBlock(t *testing.T) {
	params := testutils.SimnetParams(true)
	chainContext := testutils.NewTestChain(t, params, 10).Context
	chainContext.OutputAmountIndex[0] = 5
	chainContext.OutputAmountIndex[7] = 2

	bp := New(params, nil, weightmanager.New(params), nil, nil)

	confidentialCommitment := externalapi.ECPoint{0x02, 0x01}
	block := &externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			MajorVersion: uint8(chainContext.HardForkVersion),
			MinorVersion: uint8(chainContext.HardForkVersion),
			PrevHash:     chainContext.TopHash,
		},
		MinerTransaction: &externalapi.DomainTransaction{
			Version:    externalapi.TransactionVersionConfidential,
			UnlockTime: 11 + params.MinedMoneyUnlockWindow,
			Inputs:     []*externalapi.DomainTransactionInput{{Type: externalapi.InputTypeGen, Height: 11}},
			Outputs: []*externalapi.DomainTransactionOutput{
				{Amount: 100, Key: externalapi.ECPoint{0x02, 0xa0}},
				{Amount: 50, Key: externalapi.ECPoint{0x02, 0xa1}},
			},
		},
		Transactions: []*externalapi.DomainTransaction{
			{
				Version: externalapi.TransactionVersionConfidential,
				Fee:     10,
				Inputs: []*externalapi.DomainTransactionInput{
					{Type: externalapi.InputTypeToKey, KeyImage: externalapi.KeyImage{0x02, 0x01}},
					{Type: externalapi.InputTypeToKey, KeyImage: externalapi.KeyImage{0x02, 0x02}},
				},
				Outputs: []*externalapi.DomainTransactionOutput{
					{Key: externalapi.ECPoint{0x02, 0xb0}, Commitment: &confidentialCommitment},
					{Key: externalapi.ECPoint{0x02, 0xb1}, Commitment: &confidentialCommitment},
				},
			},
			{
				Version:    externalapi.TransactionVersionTransparent,
				UnlockTime: 40,
				Fee:        20,
				Inputs: []*externalapi.DomainTransactionInput{
					{Type: externalapi.InputTypeToKey, Amount: 44, KeyImage: externalapi.KeyImage{0x02, 0x03}},
				},
				Outputs: []*externalapi.DomainTransactionOutput{
					{Amount: 7, Key: externalapi.ECPoint{0x02, 0xc0}},
					{Amount: 7, Key: externalapi.ECPoint{0x02, 0xc1}},
				},
			},
		},
	}
	candidate := &externalapi.BlockCandidate{
		Block:  block,
		Hash:   testutils.HashOfHeight(11),
		Height: 11,
		Weight: 1000,
	}

	acceptedBlock, err := bp.AcceptedBlock(candidate, chainContext)
	if err != nil {
		t.Fatalf("AcceptedBlock: %+v", err)
	}

	if acceptedBlock.Height != 11 || !acceptedBlock.Hash.Equal(candidate.Hash) {
		t.Fatalf("Unexpected accepted block %d (%s)", acceptedBlock.Height, acceptedBlock.Hash)
	}
	if acceptedBlock.GeneratedCoins != 120 {
		t.Fatalf("Expected 120 generated coins, got %d", acceptedBlock.GeneratedCoins)
	}
	if len(acceptedBlock.KeyImages) != 3 || acceptedBlock.KeyImages[2] != (externalapi.KeyImage{0x02, 0x03}) {
		t.Fatalf("Unexpected key images %v", acceptedBlock.KeyImages)
	}
	if !acceptedBlock.Difficulty.Eq(&chainContext.NextDifficulty) {
		t.Fatalf("The block difficulty is not the difficulty required of it")
	}

	expectedOutputs := []struct {
		bucket      uint64
		globalIndex uint64
		key         externalapi.ECPoint
		commitment  externalapi.ECPoint
		unlockTime  uint64
	}{
		{0, 5, externalapi.ECPoint{0x02, 0xa0}, ringct.ZeroCommit(100), 11 + params.MinedMoneyUnlockWindow},
		{0, 6, externalapi.ECPoint{0x02, 0xa1}, ringct.ZeroCommit(50), 11 + params.MinedMoneyUnlockWindow},
		{0, 7, externalapi.ECPoint{0x02, 0xb0}, confidentialCommitment, 0},
		{0, 8, externalapi.ECPoint{0x02, 0xb1}, confidentialCommitment, 0},
		{7, 2, externalapi.ECPoint{0x02, 0xc0}, ringct.ZeroCommit(7), 40},
		{7, 3, externalapi.ECPoint{0x02, 0xc1}, ringct.ZeroCommit(7), 40},
	}
	if len(acceptedBlock.CreatedOutputs) != len(expectedOutputs) {
		t.Fatalf("Expected %d created outputs, got %d", len(expectedOutputs), len(acceptedBlock.CreatedOutputs))
	}
	for i, expected := range expectedOutputs {
		created := acceptedBlock.CreatedOutputs[i]
		if created.AmountBucket != expected.bucket || created.GlobalIndex != expected.globalIndex {
			t.Fatalf("Output %d: expected index %d of bucket %d, got index %d of bucket %d", i,
				expected.globalIndex, expected.bucket, created.GlobalIndex, created.AmountBucket)
		}
		if created.Output.Key != expected.key || created.Output.Commitment != expected.commitment {
			t.Fatalf("Output %d: unexpected key or commitment", i)
		}
		if created.Output.Height != 11 || created.Output.UnlockTime != expected.unlockTime {
			t.Fatalf("Output %d: expected height 11 and unlock time %d, got %d and %d", i,
				expected.unlockTime, created.Output.Height, created.Output.UnlockTime)
		}
	}

	candidate.Height = 12
	_, err = bp.AcceptedBlock(candidate, chainContext)
	if !errors.Is(err, ruleerrors.ErrOutOfOrderCommit) {
		t.Fatalf("Expected ErrOutOfOrderCommit, got %+v", err)
	}
}

func TestGeneratedCoinsWhenMinerClaimsLessThanFees(t *testing.T) {
	block := &externalapi.DomainBlock{
		MinerTransaction: &externalapi.DomainTransaction{
			Outputs: []*externalapi.DomainTransactionOutput{{Amount: 5}},
		},
		Transactions: []*externalapi.DomainTransaction{{Fee: 8}},
	}
	generated, err := generatedCoins(block)
	if err != nil {
		t.Fatalf("generatedCoins: %+v", err)
	}
	if generated != 0 {
		t.Fatalf("Expected no generated coins, got %d", generated)
	}
}
