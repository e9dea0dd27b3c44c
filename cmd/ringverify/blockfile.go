package main

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/utils/serialization"
)

// A block file holds a sequence of entries. Each entry is a block followed
// by the bodies of its transactions, in the order of its transaction hashes.

func readBlockFile(path string) ([]*externalapi.DomainBlock, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer file.Close()

	blocks, err := readBlocks(bufio.NewReader(file))
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't read %s", path)
	}
	return blocks, nil
}

func readBlocks(r *bufio.Reader) ([]*externalapi.DomainBlock, error) {
	var blocks []*externalapi.DomainBlock
	for {
		_, err := r.Peek(1)
		if errors.Is(err, io.EOF) {
			return blocks, nil
		}
		if err != nil {
			return nil, errors.WithStack(err)
		}

		block, err := serialization.DeserializeBlock(r)
		if err != nil {
			return nil, errors.Wrapf(err, "block %d", len(blocks))
		}
		for i := range block.Transactions {
			block.Transactions[i], err = serialization.DeserializeTransaction(r)
			if err != nil {
				return nil, errors.Wrapf(err, "transaction %d of block %d", i, len(blocks))
			}
		}
		blocks = append(blocks, block)
	}
}

func writeBlocks(w io.Writer, blocks []*externalapi.DomainBlock) error {
	for i, block := range blocks {
		if len(block.Transactions) != len(block.TransactionHashes) {
			return errors.Errorf("block %d lists %d transactions but carries %d bodies",
				i, len(block.TransactionHashes), len(block.Transactions))
		}
		err := serialization.SerializeBlock(w, block)
		if err != nil {
			return err
		}
		for _, transaction := range block.Transactions {
			err := serialization.SerializeTransaction(w, transaction)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
