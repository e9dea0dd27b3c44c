package main

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ringnet/ringd/domain/consensus"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/utils/consensushashing"
	"github.com/ringnet/ringd/domain/consensus/utils/ringct"
	"github.com/ringnet/ringd/domain/consensus/utils/testutils"
	"github.com/ringnet/ringd/domain/verificationscheduler"
)

func newPublicKey(t *testing.T) (*secp256k1.ModNScalar, externalapi.ECPoint) {
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

// sourceBlocks returns the blocks of a simnet chain, genesis first, whose
// last block spends the first miner output
func sourceBlocks(t *testing.T) []*externalapi.DomainBlock {
	tc, err := consensus.NewFactory().NewTestConsensus(testutils.SimnetParams(true), "TestRingverify-source")
	if err != nil {
		t.Fatalf("NewTestConsensus: %+v", err)
	}
	err = tc.AddGenesisBlock()
	if err != nil {
		t.Fatalf("AddGenesisBlock: %+v", err)
	}
	blocks := []*externalapi.DomainBlock{tc.Params().GenesisBlock.Clone()}

	secretKey, publicKey := newPublicKey(t)
	globalIndex := tc.ChainContext().OutputCount(0)
	minedBlock, err := tc.AddBlock(publicKey, nil)
	if err != nil {
		t.Fatalf("AddBlock: %+v", err)
	}
	blocks = append(blocks, minedBlock)
	output, err := tc.OutputStore().Resolve(0, globalIndex)
	if err != nil {
		t.Fatalf("Resolve: %+v", err)
	}
	for i := 0; i < 4; i++ {
		_, publicKey := newPublicKey(t)
		block, err := tc.AddBlock(publicKey, nil)
		if err != nil {
			t.Fatalf("AddBlock: %+v", err)
		}
		blocks = append(blocks, block)
	}

	owned := &testutils.OwnedOutput{
		SecretKey:   secretKey,
		Mask:        new(secp256k1.ModNScalar).SetInt(1),
		Amount:      minedBlock.MinerTransaction.Outputs[0].Amount,
		GlobalIndex: globalIndex,
		Output:      output,
	}
	chain := &testutils.TestChain{
		Params:    tc.Params(),
		Outputs:   tc.OutputStore(),
		KeyImages: tc.KeyImageStore(),
		Context:   tc.ChainContext().Clone(),
	}
	spend := chain.SpendTransaction(t, externalapi.TransactionVersionConfidential,
		[]*testutils.OwnedOutput{owned}, 2, []uint64{1000, 2000}, owned.Amount-3000)
	_, publicKey = newPublicKey(t)
	block, err := tc.AddBlock(publicKey, []*externalapi.DomainTransaction{spend})
	if err != nil {
		t.Fatalf("AddBlock: %+v", err)
	}
	return append(blocks, block)
}

func TestBlockFileRoundTrip(t *testing.T) {
	blocks := sourceBlocks(t)

	buffer := &bytes.Buffer{}
	err := writeBlocks(buffer, blocks)
	if err != nil {
		t.Fatalf("writeBlocks: %+v", err)
	}
	decoded, err := readBlocks(bufio.NewReader(bytes.NewReader(buffer.Bytes())))
	if err != nil {
		t.Fatalf("readBlocks: %+v", err)
	}
	if len(decoded) != len(blocks) {
		t.Fatalf("Expected %d blocks, got %d", len(blocks), len(decoded))
	}
	for i := range blocks {
		decodedHash, err := consensushashing.BlockHash(decoded[i])
		if err != nil {
			t.Fatalf("BlockHash: %+v", err)
		}
		expectedHash, err := consensushashing.BlockHash(blocks[i])
		if err != nil {
			t.Fatalf("BlockHash: %+v", err)
		}
		if !decodedHash.Equal(expectedHash) {
			t.Fatalf("Block %d changed across a round trip", i)
		}
		for j, transaction := range decoded[i].Transactions {
			transactionHash, err := consensushashing.TransactionHash(transaction)
			if err != nil {
				t.Fatalf("TransactionHash: %+v", err)
			}
			if !transactionHash.Equal(blocks[i].TransactionHashes[j]) {
				t.Fatalf("Transaction %d of block %d changed across a round trip", j, i)
			}
		}
	}

	_, err = readBlocks(bufio.NewReader(bytes.NewReader(buffer.Bytes()[:buffer.Len()-1])))
	if err == nil {
		t.Fatalf("Expected an error for a truncated block file")
	}
}

func TestVerifyBlocks(t *testing.T) {
	blocks := sourceBlocks(t)

	c, err := consensus.NewFactory().NewConsensus(&consensus.Config{Params: testutils.SimnetParams(true)})
	if err != nil {
		t.Fatalf("NewConsensus: %+v", err)
	}
	scheduler, err := verificationscheduler.New(c, verificationscheduler.Config{Workers: 2, QueueCapacity: 2}, nil)
	if err != nil {
		t.Fatalf("New: %+v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	out := &bytes.Buffer{}
	summary := &verificationSummary{}
	err = verifyBlocks(context.Background(), scheduler, blocks, out, summary)
	if err != nil {
		t.Fatalf("verifyBlocks: %+v", err)
	}
	if summary.accepted != len(blocks) || summary.rejected != 0 || summary.deferred != 0 {
		t.Fatalf("Expected every block to be accepted, got %s", summary)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != len(blocks) {
		t.Fatalf("Expected one line per block, got %q", out.String())
	}
	if c.ChainContext().Height != uint64(len(blocks)-1) {
		t.Fatalf("Expected the chain top at height %d, got %d", len(blocks)-1, c.ChainContext().Height)
	}
}
