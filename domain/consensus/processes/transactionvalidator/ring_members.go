package transactionvalidator

import (
	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
)

// PopulateWithRingMembers resolves the ring members of every input through
// the output index. Members beyond the outputs known to chainContext, or
// unknown to the index, yield an ErrMissingRingMember.
func (v *transactionValidator) PopulateWithRingMembers(tx *externalapi.DomainTransaction,
	chainContext *externalapi.ChainContext) error {

	for i, input := range tx.Inputs {
		ringMembers, err := v.resolveRing(input, chainContext)
		if err != nil {
			return errors.Wrapf(err, "input %d", i)
		}
		input.RingMembers = ringMembers
	}
	return nil
}

func (v *transactionValidator) resolveRing(input *externalapi.DomainTransactionInput,
	chainContext *externalapi.ChainContext) ([]*externalapi.OutputCommitment, error) {

	if input.Type != externalapi.InputTypeToKey {
		return nil, errors.Wrap(ruleerrors.ErrMalformedTransaction, "generation inputs have no ring")
	}
	globalIndexes, ok := input.AbsoluteKeyOffsets()
	if !ok {
		return nil, errors.Wrap(ruleerrors.ErrMalformedTransaction, "key offsets overflow")
	}

	// Confidential inputs have a zero amount, which is the confidential
	// bucket
	bucket := input.Amount
	outputCount := chainContext.OutputCount(bucket)
	ringMembers := make([]*externalapi.OutputCommitment, len(globalIndexes))
	for j, globalIndex := range globalIndexes {
		if globalIndex >= outputCount {
			return nil, ruleerrors.NewErrMissingRingMember(bucket, globalIndex)
		}
		member, err := v.outputIndex.Resolve(bucket, globalIndex)
		if err != nil {
			if errors.Is(err, ruleerrors.ErrOutputNotFound) {
				return nil, ruleerrors.NewErrMissingRingMember(bucket, globalIndex)
			}
			return nil, err
		}
		ringMembers[j] = member
	}
	return ringMembers, nil
}
