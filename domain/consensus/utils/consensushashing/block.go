package consensushashing

import (
	"bytes"

	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/utils/hashes"
	"github.com/ringnet/ringd/domain/consensus/utils/serialization"
	"github.com/pkg/errors"
)

// BlockHashingBlob returns the bytes that identify a block and that its
// proof of work is computed over: the header, the tree hash of the miner
// transaction and the transaction hashes, and the transaction count.
func BlockHashingBlob(block *externalapi.DomainBlock) ([]byte, error) {
	buf := &bytes.Buffer{}
	err := serialization.SerializeHeader(buf, block.Header)
	if err != nil {
		panic(errors.Wrap(err, "writing to a bytes.Buffer never fails"))
	}

	minerTransactionHash, err := TransactionHash(block.MinerTransaction)
	if err != nil {
		return nil, errors.Wrap(err, "miner transaction")
	}
	transactionHashes := make([]*externalapi.DomainHash, 0, len(block.TransactionHashes)+1)
	transactionHashes = append(transactionHashes, minerTransactionHash)
	transactionHashes = append(transactionHashes, block.TransactionHashes...)
	buf.Write(TreeHash(transactionHashes).ByteSlice())

	err = serialization.WriteVarInt(buf, uint64(len(transactionHashes)))
	if err != nil {
		panic(errors.Wrap(err, "writing to a bytes.Buffer never fails"))
	}
	return buf.Bytes(), nil
}

// BlockHash returns the given block's hash: the hash of its length-prefixed
// hashing blob
func BlockHash(block *externalapi.DomainBlock) (*externalapi.DomainHash, error) {
	blob, err := BlockHashingBlob(block)
	if err != nil {
		return nil, err
	}
	return BlockHashFromBlob(blob), nil
}

// BlockHashFromBlob returns the block hash of a precomputed hashing blob
func BlockHashFromBlob(blob []byte) *externalapi.DomainHash {
	writer := hashes.NewKeccakWriter()
	err := serialization.WriteVarInt(writer, uint64(len(blob)))
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Hash digest should never return an error"))
	}
	writer.InfallibleWrite(blob)
	return writer.Finalize()
}
