package model

import (
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
)

// TransactionValidator exposes a set of validation classes, after which
// it's possible to determine whether a transaction is valid
type TransactionValidator interface {
	ValidateTransactionInIsolation(transaction *externalapi.DomainTransaction, version externalapi.HardForkVersion) error
	PopulateWithRingMembers(transaction *externalapi.DomainTransaction, chainContext *externalapi.ChainContext) error
	ValidateTransactionInContext(transaction *externalapi.DomainTransaction, chainContext *externalapi.ChainContext) error
	VerifyTransactionSignatures(transactions []*externalapi.DomainTransaction) ([]error, error)
	ValidateTransaction(transaction *externalapi.DomainTransaction, chainContext *externalapi.ChainContext) error
}
