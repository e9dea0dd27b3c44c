package externalapi

// Consensus verifies blocks and transactions against the chain context and
// commits accepted blocks
type Consensus interface {
	ChainContext() *ChainContext
	IsHalted() bool

	VerifyTransaction(transaction *DomainTransaction) (*VerificationOutcome, error)
	VerifyTransactions(transactions []*DomainTransaction) ([]*VerificationOutcome, error)

	VerifyBlock(block *DomainBlock) (*VerificationOutcome, error)
	ValidateBlockInIsolation(block *DomainBlock, chainContext *ChainContext) (*BlockCandidate, error)
	InsertBlockCandidate(candidate *BlockCandidate) (*VerificationOutcome, error)
}
