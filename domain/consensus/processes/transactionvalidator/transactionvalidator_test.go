package transactionvalidator_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/chainparams"
	"github.com/ringnet/ringd/domain/consensus/datastructures/verifiedtxcache"
	"github.com/ringnet/ringd/domain/consensus/model"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/processes/coinbasemanager"
	"github.com/ringnet/ringd/domain/consensus/processes/transactionvalidator"
	"github.com/ringnet/ringd/domain/consensus/processes/weightmanager"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
	"github.com/ringnet/ringd/domain/consensus/utils/consensushashing"
	"github.com/ringnet/ringd/domain/consensus/utils/testutils"
)

const (
	testTopHeight = 100
	testRingSize  = 4
	generousFee   = 1_000_000_000_000
)

type testSetup struct {
	chain     *testutils.TestChain
	cache     model.VerifiedTransactionCache
	validator model.TransactionValidator
}

func newTestSetup(t *testing.T) *testSetup {
	params := testutils.SimnetParams(false)
	chain := testutils.NewTestChain(t, params, testTopHeight)
	cache := verifiedtxcache.New(100)
	return &testSetup{
		chain:     chain,
		cache:     cache,
		validator: newValidator(params, chain, cache),
	}
}

func newValidator(params *chainparams.Params, chain *testutils.TestChain,
	cache model.VerifiedTransactionCache) model.TransactionValidator {

	weightManager := weightmanager.New(params)
	return transactionvalidator.New(params, weightManager, coinbasemanager.New(params, weightManager),
		chain.KeyImages, chain.Outputs, cache)
}

// confidentialTransaction returns a valid two-output confidential spend of
// a fresh mature output
func (s *testSetup) confidentialTransaction(t *testing.T) *externalapi.DomainTransaction {
	spend := s.chain.AddOutput(t, true, generousFee+3000, 10)
	return s.chain.SpendTransaction(t, externalapi.TransactionVersionConfidential,
		[]*testutils.OwnedOutput{spend}, testRingSize, []uint64{1000, 2000}, generousFee)
}

func TestValidateTransaction(t *testing.T) {
	s := newTestSetup(t)

	tx := s.confidentialTransaction(t)
	err := s.validator.ValidateTransaction(tx, s.chain.Context)
	if err != nil {
		t.Fatalf("ValidateTransaction: %+v", err)
	}
	if tx.Weight == 0 {
		t.Fatalf("expected the transaction weight to be populated")
	}
	if len(tx.Inputs[0].RingMembers) != testRingSize {
		t.Fatalf("expected %d ring members, got %d", testRingSize, len(tx.Inputs[0].RingMembers))
	}

	spend := s.chain.AddOutput(t, false, generousFee+500, 10)
	transparentTx := s.chain.SpendTransaction(t, externalapi.TransactionVersionTransparent,
		[]*testutils.OwnedOutput{spend}, testRingSize, []uint64{500}, generousFee)
	err = s.validator.ValidateTransaction(transparentTx, s.chain.Context)
	if err != nil {
		t.Fatalf("ValidateTransaction of a transparent transaction: %+v", err)
	}
}

func TestValidateTransactionErrors(t *testing.T) {
	tests := []struct {
		name             string
		build            func(t *testing.T, s *testSetup) *externalapi.DomainTransaction
		expectedError    error
		expectedCategory ruleerrors.Category
	}{
		{
			name: "unsupported version",
			build: func(t *testing.T, s *testSetup) *externalapi.DomainTransaction {
				spend := s.chain.AddOutput(t, true, generousFee+1000, 10)
				return s.chain.SpendTransaction(t, 3, []*testutils.OwnedOutput{spend}, testRingSize,
					[]uint64{1000}, generousFee)
			},
			expectedError:    ruleerrors.ErrUnsupportedVersion,
			expectedCategory: ruleerrors.CategoryRejection,
		},
		{
			name: "same key image twice",
			build: func(t *testing.T, s *testSetup) *externalapi.DomainTransaction {
				spend := s.chain.AddOutput(t, true, generousFee+1000, 10)
				return s.chain.SpendTransaction(t, externalapi.TransactionVersionConfidential,
					[]*testutils.OwnedOutput{spend, spend}, testRingSize, []uint64{1000}, 2*generousFee+1000)
			},
			expectedError:    ruleerrors.ErrMalformedTransaction,
			expectedCategory: ruleerrors.CategoryRejection,
		},
		{
			name: "repeated ring member",
			build: func(t *testing.T, s *testSetup) *externalapi.DomainTransaction {
				tx := s.confidentialTransaction(t)
				tx.Inputs[0].KeyOffsets[1] = 0
				return tx
			},
			expectedError:    ruleerrors.ErrMalformedTransaction,
			expectedCategory: ruleerrors.CategoryRejection,
		},
		{
			name: "transparent fee does not balance",
			build: func(t *testing.T, s *testSetup) *externalapi.DomainTransaction {
				spend := s.chain.AddOutput(t, false, generousFee+500, 10)
				return s.chain.SpendTransaction(t, externalapi.TransactionVersionTransparent,
					[]*testutils.OwnedOutput{spend}, testRingSize, []uint64{400}, generousFee)
			},
			expectedError:    ruleerrors.ErrMalformedTransaction,
			expectedCategory: ruleerrors.CategoryRejection,
		},
		{
			name: "spent key image",
			build: func(t *testing.T, s *testSetup) *externalapi.DomainTransaction {
				tx := s.confidentialTransaction(t)
				s.chain.KeyImages.Add(tx.Inputs[0].KeyImage)
				return tx
			},
			expectedError:    ruleerrors.ErrDoubleSpend,
			expectedCategory: ruleerrors.CategoryRejection,
		},
		{
			name: "ring member beyond the chain",
			build: func(t *testing.T, s *testSetup) *externalapi.DomainTransaction {
				tx := s.confidentialTransaction(t)
				tx.Inputs[0].KeyOffsets[len(tx.Inputs[0].KeyOffsets)-1] += 1000
				return tx
			},
			expectedError:    ruleerrors.ErrMissingRingMember,
			expectedCategory: ruleerrors.CategoryDeferred,
		},
		{
			name: "immature ring member",
			build: func(t *testing.T, s *testSetup) *externalapi.DomainTransaction {
				spend := s.chain.AddOutput(t, true, generousFee+1000, testTopHeight)
				return s.chain.SpendTransaction(t, externalapi.TransactionVersionConfidential,
					[]*testutils.OwnedOutput{spend}, testRingSize, []uint64{1000}, generousFee)
			},
			expectedError:    ruleerrors.ErrImmatureRingMember,
			expectedCategory: ruleerrors.CategoryRejection,
		},
		{
			name: "locked ring member",
			build: func(t *testing.T, s *testSetup) *externalapi.DomainTransaction {
				spend := s.chain.AddOutput(t, true, generousFee+1000, 10)
				spend.Output.UnlockTime = testTopHeight + 50
				return s.chain.SpendTransaction(t, externalapi.TransactionVersionConfidential,
					[]*testutils.OwnedOutput{spend}, testRingSize, []uint64{1000}, generousFee)
			},
			expectedError:    ruleerrors.ErrImmatureRingMember,
			expectedCategory: ruleerrors.CategoryRejection,
		},
		{
			name: "insufficient fee",
			build: func(t *testing.T, s *testSetup) *externalapi.DomainTransaction {
				spend := s.chain.AddOutput(t, true, 1001, 10)
				return s.chain.SpendTransaction(t, externalapi.TransactionVersionConfidential,
					[]*testutils.OwnedOutput{spend}, testRingSize, []uint64{1000}, 1)
			},
			expectedError:    ruleerrors.ErrInsufficientFee,
			expectedCategory: ruleerrors.CategoryRejection,
		},
		{
			name: "unknown input type",
			build: func(t *testing.T, s *testSetup) *externalapi.DomainTransaction {
				tx := s.confidentialTransaction(t)
				tx.Inputs[0].Type = 9
				return tx
			},
			expectedError:    ruleerrors.ErrMalformedTransaction,
			expectedCategory: ruleerrors.CategoryRejection,
		},
		{
			name: "missing output",
			build: func(t *testing.T, s *testSetup) *externalapi.DomainTransaction {
				tx := s.confidentialTransaction(t)
				tx.Outputs[1] = nil
				return tx
			},
			expectedError:    ruleerrors.ErrMalformedTransaction,
			expectedCategory: ruleerrors.CategoryRejection,
		},
		{
			name: "missing ring signature member",
			build: func(t *testing.T, s *testSetup) *externalapi.DomainTransaction {
				tx := s.confidentialTransaction(t)
				tx.Signature.RingSignatures[0].Members[1] = nil
				return tx
			},
			expectedError:    ruleerrors.ErrMalformedTransaction,
			expectedCategory: ruleerrors.CategoryRejection,
		},
		{
			name: "missing range proof bit",
			build: func(t *testing.T, s *testSetup) *externalapi.DomainTransaction {
				tx := s.confidentialTransaction(t)
				tx.Signature.RangeProofs[0].Bits[0] = nil
				return tx
			},
			expectedError:    ruleerrors.ErrMalformedTransaction,
			expectedCategory: ruleerrors.CategoryRejection,
		},
		{
			name: "forged ring signature",
			build: func(t *testing.T, s *testSetup) *externalapi.DomainTransaction {
				tx := s.confidentialTransaction(t)
				tx.Signature.RingSignatures[0].Members[0].KeyResponse[31] ^= 1
				return tx
			},
			expectedError:    ruleerrors.ErrInvalidRingSignature,
			expectedCategory: ruleerrors.CategoryRejection,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := newTestSetup(t)
			tx := test.build(t, s)
			err := s.validator.ValidateTransaction(tx, s.chain.Context)
			if !errors.Is(err, test.expectedError) {
				t.Fatalf("expected %s, got %+v", test.expectedError, err)
			}
			category := ruleerrors.Classify(err)
			if category != test.expectedCategory {
				t.Fatalf("expected category %s, got %s", test.expectedCategory, category)
			}
		})
	}
}

func TestMissingRingMemberKnownToContext(t *testing.T) {
	s := newTestSetup(t)
	tx := s.confidentialTransaction(t)

	// A context claiming more outputs than the index holds
	s.chain.Context.OutputAmountIndex[0] += 10
	tx.Inputs[0].KeyOffsets[len(tx.Inputs[0].KeyOffsets)-1] += 5
	err := s.validator.ValidateTransaction(tx, s.chain.Context)

	var missing ruleerrors.MissingRingMember
	if !errors.As(err, &missing) {
		t.Fatalf("expected a MissingRingMember, got %+v", err)
	}
	if missing.Amount != 0 {
		t.Fatalf("expected the confidential bucket, got %d", missing.Amount)
	}
}

func populatedTransactions(t *testing.T, s *testSetup, count int) []*externalapi.DomainTransaction {
	transactions := make([]*externalapi.DomainTransaction, count)
	for i := range transactions {
		transactions[i] = s.confidentialTransaction(t)
	}
	for _, tx := range transactions {
		err := s.validator.ValidateTransactionInIsolation(tx, s.chain.Context.HardForkVersion)
		if err != nil {
			t.Fatalf("ValidateTransactionInIsolation: %+v", err)
		}
		err = s.validator.PopulateWithRingMembers(tx, s.chain.Context)
		if err != nil {
			t.Fatalf("PopulateWithRingMembers: %+v", err)
		}
	}
	return transactions
}

func transactionHash(t *testing.T, tx *externalapi.DomainTransaction) *externalapi.DomainHash {
	hash, err := consensushashing.TransactionHash(tx)
	if err != nil {
		t.Fatalf("TransactionHash: %+v", err)
	}
	return hash
}

func TestVerifyTransactionSignaturesBatch(t *testing.T) {
	s := newTestSetup(t)
	transactions := populatedTransactions(t, s, 8)

	results, err := s.validator.VerifyTransactionSignatures(transactions)
	if err != nil {
		t.Fatalf("VerifyTransactionSignatures: %+v", err)
	}
	for i, result := range results {
		if result != nil {
			t.Fatalf("transaction %d: unexpected error %+v", i, result)
		}
	}
}

func TestVerifyTransactionSignaturesReportsOnlyInvalid(t *testing.T) {
	s := newTestSetup(t)
	transactions := populatedTransactions(t, s, 8)

	const forgedIndex = 3
	forged := transactions[forgedIndex].Signature.RangeProofs[0].Bits[5]
	forged.S0[31] ^= 1

	results, err := s.validator.VerifyTransactionSignatures(transactions)
	if err != nil {
		t.Fatalf("VerifyTransactionSignatures: %+v", err)
	}
	for i, result := range results {
		if i == forgedIndex {
			if !errors.Is(result, ruleerrors.ErrInvalidRingSignature) {
				t.Fatalf("expected ErrInvalidRingSignature for the forged transaction, got %+v", result)
			}
			continue
		}
		if result != nil {
			t.Fatalf("transaction %d: unexpected error %+v", i, result)
		}
		if !s.cache.Contains(transactionHash(t, transactions[i])) {
			t.Fatalf("transaction %d was not cached", i)
		}
	}
	if s.cache.Contains(transactionHash(t, transactions[forgedIndex])) {
		t.Fatalf("the forged transaction was cached")
	}
}

func TestVerifyTransactionSignaturesCacheHit(t *testing.T) {
	s := newTestSetup(t)
	tx := s.confidentialTransaction(t)
	err := s.validator.ValidateTransaction(tx, s.chain.Context)
	if err != nil {
		t.Fatalf("ValidateTransaction: %+v", err)
	}

	// Unresolved rings can not be verified, so only a cache hit passes
	for _, input := range tx.Inputs {
		input.RingMembers = nil
	}
	results, err := s.validator.VerifyTransactionSignatures([]*externalapi.DomainTransaction{tx})
	if err != nil {
		t.Fatalf("VerifyTransactionSignatures: %+v", err)
	}
	if results[0] != nil {
		t.Fatalf("expected a cache hit, got %+v", results[0])
	}

	uncachedValidator := newValidator(s.chain.Params, s.chain, verifiedtxcache.New(100))
	_, err = uncachedValidator.VerifyTransactionSignatures([]*externalapi.DomainTransaction{tx})
	if err == nil {
		t.Fatalf("expected verifying unresolved rings to fail")
	}
}
