package serialization

import (
	"bytes"
	"io"

	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// SerializeHeader writes the wire encoding of header to w
func SerializeHeader(w io.Writer, header *externalapi.DomainBlockHeader) error {
	return WriteElements(w,
		VarInt(header.MajorVersion),
		VarInt(header.MinorVersion),
		VarInt(header.Timestamp),
		header.PrevHash,
		header.Nonce,
	)
}

// DeserializeHeader reads a header written by SerializeHeader
func DeserializeHeader(r io.Reader) (*externalapi.DomainBlockHeader, error) {
	var majorVersion, minorVersion, timestamp VarInt
	header := &externalapi.DomainBlockHeader{}
	err := ReadElements(r, &majorVersion, &minorVersion, &timestamp, &header.PrevHash, &header.Nonce)
	if err != nil {
		return nil, err
	}
	if majorVersion > 0xff || minorVersion > 0xff {
		return nil, errors.Wrapf(ErrMalformed, "block version %d.%d does not fit in a byte",
			majorVersion, minorVersion)
	}
	header.MajorVersion = uint8(majorVersion)
	header.MinorVersion = uint8(minorVersion)
	header.Timestamp = uint64(timestamp)
	return header, nil
}

// HeaderSize returns the length of the wire encoding of header
func HeaderSize(header *externalapi.DomainBlockHeader) uint64 {
	buf := &bytes.Buffer{}
	err := SerializeHeader(buf, header)
	if err != nil {
		panic(errors.Wrap(err, "writing to a bytes.Buffer never fails"))
	}
	return uint64(buf.Len())
}

// SerializeBlock writes the wire encoding of block to w. Transaction bodies
// are not part of a block's encoding; only their hashes are.
func SerializeBlock(w io.Writer, block *externalapi.DomainBlock) error {
	err := SerializeHeader(w, block.Header)
	if err != nil {
		return err
	}
	err = SerializeTransaction(w, block.MinerTransaction)
	if err != nil {
		return err
	}
	err = WriteVarInt(w, uint64(len(block.TransactionHashes)))
	if err != nil {
		return err
	}
	for _, hash := range block.TransactionHashes {
		err = WriteElement(w, hash)
		if err != nil {
			return err
		}
	}
	return nil
}

// DeserializeBlock reads a block written by SerializeBlock. The returned
// block has no transaction bodies.
func DeserializeBlock(r io.Reader) (*externalapi.DomainBlock, error) {
	header, err := DeserializeHeader(r)
	if err != nil {
		return nil, err
	}
	minerTransaction, err := DeserializeTransaction(r)
	if err != nil {
		return nil, err
	}
	count, err := readCount(r, maxTransactionsPerBlock)
	if err != nil {
		return nil, err
	}
	hashes := make([]*externalapi.DomainHash, count)
	for i := range hashes {
		err = ReadElement(r, &hashes[i])
		if err != nil {
			return nil, err
		}
	}
	return &externalapi.DomainBlock{
		Header:            header,
		MinerTransaction:  minerTransaction,
		TransactionHashes: hashes,
		Transactions:      make([]*externalapi.DomainTransaction, count),
	}, nil
}

const maxTransactionsPerBlock = 0x10000

func readCount(r io.Reader, max uint64) (int, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return 0, err
	}
	if count > max {
		return 0, errors.Wrapf(ErrMalformed, "element count %d exceeds %d", count, max)
	}
	return int(count), nil
}
