package blockvalidator_test

import (
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/consensus"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/model/testapi"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
	"github.com/ringnet/ringd/domain/consensus/utils/consensushashing"
	"github.com/ringnet/ringd/domain/consensus/utils/ringct"
	"github.com/ringnet/ringd/domain/consensus/utils/testutils"
)

func setupTestConsensus(t *testing.T, skipPow bool, testName string) testapi.TestConsensus {
	tc, err := consensus.NewFactory().NewTestConsensus(testutils.SimnetParams(skipPow), testName)
	if err != nil {
		t.Fatalf("Error setting up consensus: %+v", err)
	}
	err = tc.AddGenesisBlock()
	if err != nil {
		t.Fatalf("AddGenesisBlock: %+v", err)
	}
	return tc
}

func newKey(t *testing.T) (*secp256k1.ModNScalar, externalapi.ECPoint) {
	secretKey, err := ringct.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %+v", err)
	}
	publicKey, err := ringct.PublicKey(secretKey)
	if err != nil {
		t.Fatalf("PublicKey: %+v", err)
	}
	return secretKey, publicKey
}

// spendableOutputs mines count blocks paying fresh keys, then enough blocks
// for their outputs to mature
func spendableOutputs(t *testing.T, tc testapi.TestConsensus, count int) []*testutils.OwnedOutput {
	outputs := make([]*testutils.OwnedOutput, count)
	for i := range outputs {
		secretKey, publicKey := newKey(t)
		globalIndex := tc.ChainContext().OutputCount(0)
		block, err := tc.AddBlock(publicKey, nil)
		if err != nil {
			t.Fatalf("AddBlock: %+v", err)
		}
		output, err := tc.OutputStore().Resolve(0, globalIndex)
		if err != nil {
			t.Fatalf("Resolve: %+v", err)
		}
		outputs[i] = &testutils.OwnedOutput{
			SecretKey:   secretKey,
			Mask:        new(secp256k1.ModNScalar).SetInt(1),
			Amount:      block.MinerTransaction.Outputs[0].Amount,
			GlobalIndex: globalIndex,
			Output:      output,
		}
	}

	params := tc.Params()
	maturity := params.SpendableAge
	if params.MinedMoneyUnlockWindow > maturity {
		maturity = params.MinedMoneyUnlockWindow
	}
	for i := uint64(0); i < maturity; i++ {
		_, publicKey := newKey(t)
		_, err := tc.AddBlock(publicKey, nil)
		if err != nil {
			t.Fatalf("AddBlock: %+v", err)
		}
	}
	return outputs
}

func spend(t *testing.T, tc testapi.TestConsensus, output *testutils.OwnedOutput) *externalapi.DomainTransaction {
	chain := &testutils.TestChain{
		Params:    tc.Params(),
		Outputs:   tc.OutputStore(),
		KeyImages: tc.KeyImageStore(),
		Context:   tc.ChainContext().Clone(),
	}
	return chain.SpendTransaction(t, externalapi.TransactionVersionConfidential,
		[]*testutils.OwnedOutput{output}, 2, []uint64{1000, 2000}, output.Amount-3000)
}

func TestValidateBlockInIsolation(t *testing.T) {
	tc := setupTestConsensus(t, false, "TestValidateBlockInIsolation")
	outputs := spendableOutputs(t, tc, 2)

	_, publicKey := newKey(t)
	transactions := []*externalapi.DomainTransaction{spend(t, tc, outputs[0]), spend(t, tc, outputs[1])}
	block, err := tc.BuildBlock(publicKey, transactions)
	if err != nil {
		t.Fatalf("BuildBlock: %+v", err)
	}

	chainContext := tc.ChainContext()
	candidate, err := tc.BlockValidator().ValidateBlockInIsolation(block, chainContext)
	if err != nil {
		t.Fatalf("ValidateBlockInIsolation: %+v", err)
	}
	if candidate.Height != chainContext.NextHeight() {
		t.Fatalf("Expected candidate height %d, got %d", chainContext.NextHeight(), candidate.Height)
	}
	blockHash, err := consensushashing.BlockHash(block)
	if err != nil {
		t.Fatalf("BlockHash: %+v", err)
	}
	if !candidate.Hash.Equal(blockHash) {
		t.Fatalf("Candidate hash %s is not the block hash", candidate.Hash)
	}
	if candidate.PowHash == nil {
		t.Fatalf("The proof-of-work hash was not computed")
	}
	if len(candidate.SignatureErrors) != len(transactions) {
		t.Fatalf("Expected %d signature results, got %d", len(transactions), len(candidate.SignatureErrors))
	}
	for i, signatureErr := range candidate.SignatureErrors {
		if signatureErr != nil {
			t.Fatalf("Signature of transaction %d is invalid: %+v", i, signatureErr)
		}
	}
	minimumWeight := uint64(0)
	for _, tx := range transactions {
		minimumWeight += tx.Weight
	}
	if candidate.Weight <= minimumWeight {
		t.Fatalf("Candidate weight %d does not cover its transactions (%d)", candidate.Weight, minimumWeight)
	}

	err = tc.BlockValidator().ValidateBlockInContext(candidate, chainContext)
	if err != nil {
		t.Fatalf("ValidateBlockInContext: %+v", err)
	}
}

func TestValidateBlockInIsolationSkipsPow(t *testing.T) {
	tc := setupTestConsensus(t, true, "TestValidateBlockInIsolationSkipsPow")

	_, publicKey := newKey(t)
	block, err := tc.BuildBlock(publicKey, nil)
	if err != nil {
		t.Fatalf("BuildBlock: %+v", err)
	}
	candidate, err := tc.BlockValidator().ValidateBlockInIsolation(block, tc.ChainContext())
	if err != nil {
		t.Fatalf("ValidateBlockInIsolation: %+v", err)
	}
	if candidate.PowHash != nil {
		t.Fatalf("The proof-of-work hash is computed although proof of work is skipped")
	}

	chainContext := tc.ChainContext().Clone()
	chainContext.NextDifficulty.Lsh(&chainContext.NextDifficulty, 250)
	err = tc.BlockValidator().ValidateHeaderInContext(candidate, chainContext)
	if err != nil {
		t.Fatalf("ValidateHeaderInContext: %+v", err)
	}
}

func TestValidateBlockInIsolationErrors(t *testing.T) {
	tc := setupTestConsensus(t, false, "TestValidateBlockInIsolationErrors")
	outputs := spendableOutputs(t, tc, 2)
	firstSpend := spend(t, tc, outputs[0])
	secondSpend := spend(t, tc, outputs[1])

	tests := []struct {
		name         string
		transactions []*externalapi.DomainTransaction
		mutate       func(block *externalapi.DomainBlock)
		expectedErr  error
	}{
		{
			name: "no miner transaction",
			mutate: func(block *externalapi.DomainBlock) {
				block.MinerTransaction = nil
			},
			expectedErr: ruleerrors.ErrMalformedBlock,
		},
		{
			name: "two generation inputs",
			mutate: func(block *externalapi.DomainBlock) {
				minerTransaction := block.MinerTransaction
				minerTransaction.Inputs = append(minerTransaction.Inputs, minerTransaction.Inputs[0].Clone())
			},
			expectedErr: ruleerrors.ErrInvalidMinerTransaction,
		},
		{
			name: "miner transaction of the wrong version",
			mutate: func(block *externalapi.DomainBlock) {
				block.MinerTransaction.Version = externalapi.TransactionVersionTransparent
			},
			expectedErr: ruleerrors.ErrInvalidMinerTransaction,
		},
		{
			name: "miner output with a commitment",
			mutate: func(block *externalapi.DomainBlock) {
				commitment := ringct.ZeroCommit(block.MinerTransaction.Outputs[0].Amount)
				block.MinerTransaction.Outputs[0].Commitment = &commitment
			},
			expectedErr: ruleerrors.ErrInvalidMinerTransaction,
		},
		{
			name:         "duplicate transaction ids",
			transactions: []*externalapi.DomainTransaction{firstSpend},
			mutate: func(block *externalapi.DomainBlock) {
				block.TransactionHashes = append(block.TransactionHashes, block.TransactionHashes[0])
				block.Transactions = append(block.Transactions, block.Transactions[0])
			},
			expectedErr: ruleerrors.ErrMalformedBlock,
		},
		{
			name:         "transaction does not hash to its id",
			transactions: []*externalapi.DomainTransaction{firstSpend, secondSpend},
			mutate: func(block *externalapi.DomainBlock) {
				block.Transactions[0], block.Transactions[1] = block.Transactions[1], block.Transactions[0]
			},
			expectedErr: ruleerrors.ErrMalformedTransaction,
		},
		{
			name:         "key image spent twice in the block",
			transactions: []*externalapi.DomainTransaction{firstSpend, spend(t, tc, outputs[0])},
			expectedErr:  ruleerrors.ErrDoubleSpend,
		},
		{
			name:         "malformed transaction",
			transactions: []*externalapi.DomainTransaction{spend(t, tc, outputs[1])},
			mutate: func(block *externalapi.DomainBlock) {
				block.Transactions[0].Outputs = nil
				hash, err := consensushashing.TransactionHash(block.Transactions[0])
				if err != nil {
					t.Fatalf("TransactionHash: %+v", err)
				}
				block.TransactionHashes[0] = hash
			},
			expectedErr: ruleerrors.ErrMalformedTransaction,
		},
		{
			name:         "transaction with an unknown input type",
			transactions: []*externalapi.DomainTransaction{spend(t, tc, outputs[1])},
			mutate: func(block *externalapi.DomainBlock) {
				block.Transactions[0].Inputs[0].Type = 9
			},
			expectedErr: ruleerrors.ErrMalformedTransaction,
		},
		{
			name:         "transaction with a missing input",
			transactions: []*externalapi.DomainTransaction{spend(t, tc, outputs[1])},
			mutate: func(block *externalapi.DomainBlock) {
				block.Transactions[0].Inputs[0] = nil
			},
			expectedErr: ruleerrors.ErrMalformedTransaction,
		},
		{
			name:         "transaction with a missing ring signature",
			transactions: []*externalapi.DomainTransaction{spend(t, tc, outputs[1])},
			mutate: func(block *externalapi.DomainBlock) {
				block.Transactions[0].Signature.RingSignatures[0] = nil
			},
			expectedErr: ruleerrors.ErrMalformedTransaction,
		},
		{
			name:         "transaction with a missing range proof",
			transactions: []*externalapi.DomainTransaction{spend(t, tc, outputs[1])},
			mutate: func(block *externalapi.DomainBlock) {
				block.Transactions[0].Signature.RangeProofs = []*externalapi.RangeProof{nil}
			},
			expectedErr: ruleerrors.ErrMalformedTransaction,
		},
		{
			name: "missing miner output",
			mutate: func(block *externalapi.DomainBlock) {
				block.MinerTransaction.Outputs[0] = nil
			},
			expectedErr: ruleerrors.ErrInvalidMinerTransaction,
		},
	}

	for _, test := range tests {
		_, publicKey := newKey(t)
		block, err := tc.BuildBlock(publicKey, test.transactions)
		if err != nil {
			t.Fatalf("%s: BuildBlock: %+v", test.name, err)
		}
		if test.mutate != nil {
			test.mutate(block)
		}

		_, err = tc.BlockValidator().ValidateBlockInIsolation(block, tc.ChainContext())
		if !errors.Is(err, test.expectedErr) {
			t.Fatalf("%s: expected %s, got %+v", test.name, test.expectedErr, err)
		}
		if ruleerrors.Classify(err) != ruleerrors.CategoryRejection {
			t.Fatalf("%s: expected a rejection, got %s", test.name, ruleerrors.Classify(err))
		}
	}
}

func TestValidateBlockInContextErrors(t *testing.T) {
	tc := setupTestConsensus(t, false, "TestValidateBlockInContextErrors")
	outputs := spendableOutputs(t, tc, 1)
	transaction := spend(t, tc, outputs[0])

	_, publicKey := newKey(t)
	block, err := tc.BuildBlock(publicKey, []*externalapi.DomainTransaction{transaction})
	if err != nil {
		t.Fatalf("BuildBlock: %+v", err)
	}
	candidate, err := tc.BlockValidator().ValidateBlockInIsolation(block, tc.ChainContext())
	if err != nil {
		t.Fatalf("ValidateBlockInIsolation: %+v", err)
	}

	tests := []struct {
		name        string
		mutate      func(chainContext *externalapi.ChainContext)
		expectedErr error
	}{
		{
			name: "insufficient work",
			mutate: func(chainContext *externalapi.ChainContext) {
				chainContext.NextDifficulty.Lsh(&chainContext.NextDifficulty, 250)
			},
			expectedErr: ruleerrors.ErrInsufficientWork,
		},
		{
			name: "block too large",
			mutate: func(chainContext *externalapi.ChainContext) {
				chainContext.EffectiveMedianWeight = candidate.Weight/2 - 1
			},
			expectedErr: ruleerrors.ErrBlockTooLarge,
		},
		{
			name: "block above the median pays the full reward",
			mutate: func(chainContext *externalapi.ChainContext) {
				chainContext.EffectiveMedianWeight = candidate.Weight/2 + 1
			},
			expectedErr: ruleerrors.ErrInvalidReward,
		},
		{
			name: "version no longer active",
			mutate: func(chainContext *externalapi.ChainContext) {
				chainContext.HardForkVersion = externalapi.HardForkV1
			},
			expectedErr: ruleerrors.ErrUnsupportedVersion,
		},
	}

	for _, test := range tests {
		chainContext := tc.ChainContext().Clone()
		test.mutate(chainContext)
		err := tc.BlockValidator().ValidateBlockInContext(candidate, chainContext)
		if !errors.Is(err, test.expectedErr) {
			t.Fatalf("%s: expected %s, got %+v", test.name, test.expectedErr, err)
		}
	}

	// The same block is valid once the key image was not spent yet
	err = tc.BlockValidator().ValidateBlockInContext(candidate, tc.ChainContext())
	if err != nil {
		t.Fatalf("ValidateBlockInContext: %+v", err)
	}
	err = tc.KeyImageStore().PersistAcceptedBlock(&externalapi.AcceptedBlock{
		KeyImages: []externalapi.KeyImage{transaction.Inputs[0].KeyImage},
	}, nil)
	if err != nil {
		t.Fatalf("PersistAcceptedBlock: %+v", err)
	}
	err = tc.BlockValidator().ValidateBlockInContext(candidate, tc.ChainContext())
	if !errors.Is(err, ruleerrors.ErrDoubleSpend) {
		t.Fatalf("Expected ErrDoubleSpend, got %+v", err)
	}
}
