package model

import "github.com/ringnet/ringd/domain/consensus/model/externalapi"

// VerifiedTransactionCache remembers transactions whose signatures were
// verified
type VerifiedTransactionCache interface {
	Add(transactionHash *externalapi.DomainHash)
	Contains(transactionHash *externalapi.DomainHash) bool
}
