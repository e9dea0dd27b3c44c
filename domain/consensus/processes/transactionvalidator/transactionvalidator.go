package transactionvalidator

import (
	"github.com/ringnet/ringd/domain/chainparams"
	"github.com/ringnet/ringd/domain/consensus/model"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
)

// transactionValidator exposes a set of validation classes, after which
// it's possible to determine whether either a transaction is valid
type transactionValidator struct {
	params                   *chainparams.Params
	weightManager            model.WeightManager
	coinbaseManager          model.CoinbaseManager
	keyImageIndex            model.KeyImageIndex
	outputIndex              model.OutputIndex
	verifiedTransactionCache model.VerifiedTransactionCache
}

// New instantiates a new TransactionValidator
func New(params *chainparams.Params,
	weightManager model.WeightManager,
	coinbaseManager model.CoinbaseManager,
	keyImageIndex model.KeyImageIndex,
	outputIndex model.OutputIndex,
	verifiedTransactionCache model.VerifiedTransactionCache) model.TransactionValidator {

	return &transactionValidator{
		params:                   params,
		weightManager:            weightManager,
		coinbaseManager:          coinbaseManager,
		keyImageIndex:            keyImageIndex,
		outputIndex:              outputIndex,
		verifiedTransactionCache: verifiedTransactionCache,
	}
}

// ValidateTransaction runs every check on a single transaction on top of
// chainContext. It populates the transaction's weight and ring members.
func (v *transactionValidator) ValidateTransaction(tx *externalapi.DomainTransaction,
	chainContext *externalapi.ChainContext) error {

	err := v.ValidateTransactionInIsolation(tx, chainContext.HardForkVersion)
	if err != nil {
		return err
	}
	err = v.PopulateWithRingMembers(tx, chainContext)
	if err != nil {
		return err
	}
	err = v.ValidateTransactionInContext(tx, chainContext)
	if err != nil {
		return err
	}
	signatureErrors, err := v.VerifyTransactionSignatures([]*externalapi.DomainTransaction{tx})
	if err != nil {
		return err
	}
	return signatureErrors[0]
}
