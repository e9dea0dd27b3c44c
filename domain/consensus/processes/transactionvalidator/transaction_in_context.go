package transactionvalidator

import (
	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
)

// unlockTimeHeightLimit separates unlock heights from unlock timestamps
const unlockTimeHeightLimit = 500000000

// ValidateTransactionInContext validates the transaction against the chain:
// unspent key images, mature ring members and a sufficient fee. The ring
// members must be populated.
func (v *transactionValidator) ValidateTransactionInContext(tx *externalapi.DomainTransaction,
	chainContext *externalapi.ChainContext) error {

	err := v.checkKeyImagesUnspent(tx)
	if err != nil {
		return err
	}

	err = v.checkRingMembersMaturity(tx, chainContext)
	if err != nil {
		return err
	}

	return v.checkTransactionFee(tx, chainContext)
}

func (v *transactionValidator) checkKeyImagesUnspent(tx *externalapi.DomainTransaction) error {
	for i, input := range tx.Inputs {
		isSpent, err := v.keyImageIndex.IsSpent(input.KeyImage)
		if err != nil {
			return err
		}
		if isSpent {
			return errors.Wrapf(ruleerrors.ErrDoubleSpend, "key image %s of input %d "+
				"is already spent", input.KeyImage, i)
		}
	}
	return nil
}

func (v *transactionValidator) checkRingMembersMaturity(tx *externalapi.DomainTransaction,
	chainContext *externalapi.ChainContext) error {

	nextHeight := chainContext.NextHeight()
	for i, input := range tx.Inputs {
		if len(input.RingMembers) != len(input.KeyOffsets) {
			return errors.Errorf("ring members of input %d are not populated", i)
		}
		for j, member := range input.RingMembers {
			if member.Height+v.params.SpendableAge > nextHeight {
				return errors.Wrapf(ruleerrors.ErrImmatureRingMember, "ring member %d of input %d "+
					"was created at height %d and cannot be spent before height %d",
					j, i, member.Height, member.Height+v.params.SpendableAge)
			}
			if !isUnlocked(member.UnlockTime, chainContext) {
				return errors.Wrapf(ruleerrors.ErrImmatureRingMember, "ring member %d of input %d "+
					"is locked until %d", j, i, member.UnlockTime)
			}
		}
	}
	return nil
}

// isUnlocked returns whether an output with the given unlock time may be
// spent by the block extending chainContext. Unlock times below
// unlockTimeHeightLimit are heights, the rest are timestamps.
func isUnlocked(unlockTime uint64, chainContext *externalapi.ChainContext) bool {
	if unlockTime < unlockTimeHeightLimit {
		return unlockTime <= chainContext.NextHeight()
	}
	return unlockTime <= chainContext.TopTimestamp()
}

func (v *transactionValidator) checkTransactionFee(tx *externalapi.DomainTransaction,
	chainContext *externalapi.ChainContext) error {

	minimumFee, err := v.coinbaseManager.MinimumFee(tx.Weight, chainContext)
	if err != nil {
		return err
	}
	if tx.Fee < minimumFee {
		return errors.Wrapf(ruleerrors.ErrInsufficientFee, "transaction of weight %d pays %d "+
			"which is below the minimum fee %d", tx.Weight, tx.Fee, minimumFee)
	}
	return nil
}
