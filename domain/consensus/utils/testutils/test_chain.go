package testutils

import (
	"sort"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ringnet/ringd/domain/chainparams"
	"github.com/ringnet/ringd/domain/consensus/datastructures/keyimagestore"
	"github.com/ringnet/ringd/domain/consensus/datastructures/outputstore"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/processes/weightmanager"
	"github.com/ringnet/ringd/domain/consensus/utils/multiset"
	"github.com/ringnet/ringd/domain/consensus/utils/ringct"
)

// TestChain is a hand-built chain state for validating transactions
// without committing blocks. Its Context may be modified until it is handed
// to a validator.
type TestChain struct {
	Params    *chainparams.Params
	Outputs   *outputstore.OutputStore
	KeyImages *keyimagestore.KeyImageStore
	Context   *externalapi.ChainContext
}

// OwnedOutput is an output created in a TestChain along with the secrets
// needed to spend it
type OwnedOutput struct {
	SecretKey   *secp256k1.ModNScalar
	Mask        *secp256k1.ModNScalar
	Amount      uint64
	Bucket      uint64
	GlobalIndex uint64
	Output      *externalapi.OutputCommitment
}

// NewTestChain returns a chain whose top block is at height, running the
// rules active at height+1
func NewTestChain(t *testing.T, params *chainparams.Params, height uint64) *TestChain {
	version := params.HardForks[0].Version
	for _, activation := range params.HardForks {
		if activation.Height <= height+1 {
			version = activation.Version
		}
	}

	chainContext := &externalapi.ChainContext{
		Height:                height,
		TopHash:               HashOfHeight(height),
		HardForkVersion:       version,
		EffectiveMedianWeight: weightmanager.New(params).PenaltyFreeZone(version),
		OutputAmountIndex:     make(map[uint64]uint64),
		KeyImageSet:           multiset.New(),
	}
	chainContext.NextDifficulty.SetOne()
	for i := uint64(0); i < params.TimestampCheckWindow && i <= height; i++ {
		chainContext.TimestampWindow = append(chainContext.TimestampWindow,
			TimestampOfHeight(params, height-uint64(len(chainContext.TimestampWindow))))
	}
	sort.Slice(chainContext.TimestampWindow, func(i, j int) bool {
		return chainContext.TimestampWindow[i] < chainContext.TimestampWindow[j]
	})

	return &TestChain{
		Params:    params,
		Outputs:   outputstore.New(),
		KeyImages: keyimagestore.New(),
		Context:   chainContext,
	}
}

// HashOfHeight returns a made up block hash for height
func HashOfHeight(height uint64) *externalapi.DomainHash {
	var hash [externalapi.DomainHashSize]byte
	for i := 0; i < 8; i++ {
		hash[i] = byte(height >> (8 * i))
	}
	hash[externalapi.DomainHashSize-1] = 0xcc
	return externalapi.NewDomainHashFromByteArray(&hash)
}

// TimestampOfHeight returns the timestamp of a block mined exactly on
// target at height
func TimestampOfHeight(params *chainparams.Params, height uint64) uint64 {
	return 1_600_000_000 + height*params.TargetTimePerBlock
}

// AddOutput creates an output at the given height and indexes it. Transparent
// outputs go in the bucket of their amount, confidential ones in bucket zero.
func (tc *TestChain) AddOutput(t *testing.T, confidential bool, amount uint64, height uint64) *OwnedOutput {
	secretKey := randomScalar(t)
	mask := randomScalar(t)
	key, err := ringct.PublicKey(secretKey)
	if err != nil {
		t.Fatalf("PublicKey: %+v", err)
	}

	bucket := amount
	commitment := ringct.ZeroCommit(amount)
	if confidential {
		bucket = 0
		commitment, err = ringct.Commit(amount, mask)
		if err != nil {
			t.Fatalf("Commit: %+v", err)
		}
	} else {
		mask.SetInt(0)
	}

	globalIndex := tc.Context.OutputCount(bucket)
	output := &externalapi.OutputCommitment{Key: key, Commitment: commitment, Height: height}
	err = tc.Outputs.Add(bucket, globalIndex, output)
	if err != nil {
		t.Fatalf("Add: %+v", err)
	}
	tc.Context.OutputAmountIndex[bucket] = globalIndex + 1

	return &OwnedOutput{
		SecretKey:   secretKey,
		Mask:        mask,
		Amount:      amount,
		Bucket:      bucket,
		GlobalIndex: globalIndex,
		Output:      output,
	}
}

// SpendTransaction returns a signed transaction spending spends, each hidden
// in a ring of ringSize members of its bucket, and paying outputAmounts.
// Missing decoys are created at height zero. The ring members of the
// returned transaction are not populated.
func (tc *TestChain) SpendTransaction(t *testing.T, version uint16, spends []*OwnedOutput, ringSize int,
	outputAmounts []uint64, fee uint64) *externalapi.DomainTransaction {

	confidential := version >= externalapi.TransactionVersionConfidential
	tx := &externalapi.DomainTransaction{Version: version, Fee: fee}
	inputSecrets := make([]*ringct.InputSecret, len(spends))
	for i, spend := range spends {
		for tc.Context.OutputCount(spend.Bucket) < uint64(ringSize) {
			tc.AddOutput(t, confidential, spend.Amount, 0)
		}

		ring := []uint64{spend.GlobalIndex}
		for index := uint64(0); len(ring) < ringSize; index++ {
			if index != spend.GlobalIndex {
				ring = append(ring, index)
			}
		}
		sort.Slice(ring, func(a, b int) bool { return ring[a] < ring[b] })

		realIndex := 0
		offsets := make([]uint64, ringSize)
		ringMembers := make([]*externalapi.OutputCommitment, ringSize)
		previous := uint64(0)
		for j, globalIndex := range ring {
			if globalIndex == spend.GlobalIndex {
				realIndex = j
			}
			offsets[j] = globalIndex - previous
			previous = globalIndex
			member, err := tc.Outputs.Resolve(spend.Bucket, globalIndex)
			if err != nil {
				t.Fatalf("Resolve: %+v", err)
			}
			ringMembers[j] = member
		}

		keyImage, err := ringct.KeyImage(spend.SecretKey)
		if err != nil {
			t.Fatalf("KeyImage: %+v", err)
		}
		input := &externalapi.DomainTransactionInput{
			Type:        externalapi.InputTypeToKey,
			KeyOffsets:  offsets,
			KeyImage:    keyImage,
			RingMembers: ringMembers,
		}
		if !confidential {
			input.Amount = spend.Amount
		}
		tx.Inputs = append(tx.Inputs, input)
		inputSecrets[i] = &ringct.InputSecret{
			SecretKey: spend.SecretKey,
			RealIndex: realIndex,
			Amount:    spend.Amount,
			Mask:      spend.Mask,
		}
	}

	outputSecrets := make([]*ringct.OutputSecret, len(outputAmounts))
	for i, amount := range outputAmounts {
		key, err := ringct.PublicKey(randomScalar(t))
		if err != nil {
			t.Fatalf("PublicKey: %+v", err)
		}
		output := &externalapi.DomainTransactionOutput{Key: key}
		if !confidential {
			output.Amount = amount
		}
		tx.Outputs = append(tx.Outputs, output)
		outputSecrets[i] = &ringct.OutputSecret{Amount: amount, Mask: randomScalar(t)}
	}

	err := ringct.SignTransaction(tx, inputSecrets, outputSecrets, tc.Params.RangeProofBits)
	if err != nil {
		t.Fatalf("SignTransaction: %+v", err)
	}
	for _, input := range tx.Inputs {
		input.RingMembers = nil
	}
	return tx
}

func randomScalar(t *testing.T) *secp256k1.ModNScalar {
	scalar, err := ringct.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %+v", err)
	}
	return scalar
}
