package externalapi

// DomainBlock is a block as submitted for verification. Transactions holds
// the bodies of TransactionHashes in the same order. A nil body means the
// transaction is not known locally.
type DomainBlock struct {
	Header            *DomainBlockHeader
	MinerTransaction  *DomainTransaction
	TransactionHashes []*DomainHash
	Transactions      []*DomainTransaction
}

// Clone returns a clone of DomainBlock
func (block *DomainBlock) Clone() *DomainBlock {
	transactionsClone := make([]*DomainTransaction, len(block.Transactions))
	for i, tx := range block.Transactions {
		if tx != nil {
			transactionsClone[i] = tx.Clone()
		}
	}

	var minerTransactionClone *DomainTransaction
	if block.MinerTransaction != nil {
		minerTransactionClone = block.MinerTransaction.Clone()
	}

	return &DomainBlock{
		Header:            block.Header.Clone(),
		MinerTransaction:  minerTransactionClone,
		TransactionHashes: CloneHashes(block.TransactionHashes),
		Transactions:      transactionsClone,
	}
}

// DomainBlockHeader represents the header part of a block
type DomainBlockHeader struct {
	MajorVersion uint8
	MinorVersion uint8
	Timestamp    uint64
	PrevHash     *DomainHash
	Nonce        uint32
}

// Clone returns a clone of DomainBlockHeader
func (header *DomainBlockHeader) Clone() *DomainBlockHeader {
	clone := *header
	return &clone
}
