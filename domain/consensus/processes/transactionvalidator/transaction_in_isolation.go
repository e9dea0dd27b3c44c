package transactionvalidator

import (
	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
	"github.com/ringnet/ringd/domain/consensus/utils/ringct"
	"github.com/ringnet/ringd/domain/consensus/utils/serialization"
)

// ValidateTransactionInIsolation validates the parts of the transaction
// that do not depend on the chain, under the rules of the given fork. It
// populates the transaction's weight.
func (v *transactionValidator) ValidateTransactionInIsolation(tx *externalapi.DomainTransaction,
	version externalapi.HardForkVersion) error {

	err := checkTransactionParts(tx)
	if err != nil {
		return err
	}

	err = v.checkTransactionVersion(tx, version)
	if err != nil {
		return err
	}

	err = v.checkInputsAndOutputsCount(tx)
	if err != nil {
		return err
	}

	err = v.checkInputs(tx, version)
	if err != nil {
		return err
	}

	err = v.checkDuplicateKeyImages(tx)
	if err != nil {
		return err
	}

	err = v.checkOutputs(tx)
	if err != nil {
		return err
	}

	err = v.checkTransparentFee(tx)
	if err != nil {
		return err
	}

	err = v.checkSignatureShape(tx)
	if err != nil {
		return err
	}

	return v.checkTransactionWeight(tx, version)
}

// checkTransactionParts checks that nothing the other checks dereference
// is missing
func checkTransactionParts(tx *externalapi.DomainTransaction) error {
	if tx == nil {
		return errors.Wrap(ruleerrors.ErrMalformedTransaction, "transaction is missing")
	}
	for i, input := range tx.Inputs {
		if input == nil {
			return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "input %d is missing", i)
		}
	}
	for i, output := range tx.Outputs {
		if output == nil {
			return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "output %d is missing", i)
		}
	}
	if tx.Signature == nil {
		return nil
	}
	for i, ringSignature := range tx.Signature.RingSignatures {
		if ringSignature == nil {
			return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "ring signature %d is missing", i)
		}
		for j, member := range ringSignature.Members {
			if member == nil {
				return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "member %d of ring "+
					"signature %d is missing", j, i)
			}
		}
	}
	for i, rangeProof := range tx.Signature.RangeProofs {
		if rangeProof == nil {
			return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "range proof %d is missing", i)
		}
		for j, bit := range rangeProof.Bits {
			if bit == nil {
				return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "bit %d of range "+
					"proof %d is missing", j, i)
			}
		}
	}
	return nil
}

func (v *transactionValidator) checkTransactionVersion(tx *externalapi.DomainTransaction,
	version externalapi.HardForkVersion) error {

	minVersion, maxVersion := v.params.TransactionVersionBounds(version)
	if tx.Version < minVersion || tx.Version > maxVersion {
		return errors.Wrapf(ruleerrors.ErrUnsupportedVersion, "transaction version %d is not "+
			"in [%d, %d] under %s", tx.Version, minVersion, maxVersion, version)
	}
	return nil
}

func (v *transactionValidator) checkInputsAndOutputsCount(tx *externalapi.DomainTransaction) error {
	if len(tx.Inputs) == 0 {
		return errors.Wrap(ruleerrors.ErrMalformedTransaction, "transaction has no inputs")
	}
	if len(tx.Outputs) == 0 {
		return errors.Wrap(ruleerrors.ErrMalformedTransaction, "transaction has no outputs")
	}
	return nil
}

func (v *transactionValidator) checkInputs(tx *externalapi.DomainTransaction, version externalapi.HardForkVersion) error {
	minRingSize, maxRingSize := v.params.RingSizeBounds(version)
	confidential := tx.IsConfidential()
	for i, input := range tx.Inputs {
		if input.Type != externalapi.InputTypeToKey {
			return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "input %d is a generation input", i)
		}

		ringSize := uint64(len(input.KeyOffsets))
		if ringSize < minRingSize || ringSize > maxRingSize {
			return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "input %d has a ring of %d members "+
				"which is not in [%d, %d]", i, ringSize, minRingSize, maxRingSize)
		}
		for j := 1; j < len(input.KeyOffsets); j++ {
			if input.KeyOffsets[j] == 0 {
				return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "input %d references "+
					"ring member %d twice", i, j)
			}
		}
		if _, ok := input.AbsoluteKeyOffsets(); !ok {
			return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "key offsets of input %d overflow", i)
		}

		if confidential && input.Amount != 0 {
			return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "input %d of a confidential "+
				"transaction has an explicit amount", i)
		}
		if !confidential && input.Amount == 0 {
			return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "input %d of a transparent "+
				"transaction has no amount", i)
		}

		if _, err := ringct.DecodePoint(input.KeyImage); err != nil {
			return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "key image of input %d: %s", i, err)
		}
	}
	return nil
}

func (v *transactionValidator) checkDuplicateKeyImages(tx *externalapi.DomainTransaction) error {
	keyImages := make(map[externalapi.KeyImage]int, len(tx.Inputs))
	for i, input := range tx.Inputs {
		if first, exists := keyImages[input.KeyImage]; exists {
			return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "inputs %d and %d spend "+
				"the same key image %s", first, i, input.KeyImage)
		}
		keyImages[input.KeyImage] = i
	}
	return nil
}

func (v *transactionValidator) checkOutputs(tx *externalapi.DomainTransaction) error {
	confidential := tx.IsConfidential()
	totalOut := uint64(0)
	for i, output := range tx.Outputs {
		if _, err := ringct.DecodePoint(output.Key); err != nil {
			return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "key of output %d: %s", i, err)
		}

		if confidential {
			if output.Amount != 0 {
				return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "output %d of a confidential "+
					"transaction has an explicit amount", i)
			}
			if output.Commitment == nil {
				return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "output %d has no commitment", i)
			}
			if _, err := ringct.DecodePoint(*output.Commitment); err != nil {
				return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "commitment of output %d: %s", i, err)
			}
			continue
		}

		if output.Amount == 0 {
			return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "output %d of a transparent "+
				"transaction has no amount", i)
		}
		if output.Commitment != nil {
			return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "output %d of a transparent "+
				"transaction has a commitment", i)
		}
		newTotalOut := totalOut + output.Amount
		if newTotalOut < totalOut {
			return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "total output amount overflows at output %d", i)
		}
		totalOut = newTotalOut
	}
	return nil
}

// checkTransparentFee checks that a transparent transaction pays exactly
// the difference between its inputs and outputs
func (v *transactionValidator) checkTransparentFee(tx *externalapi.DomainTransaction) error {
	if tx.IsConfidential() {
		return nil
	}

	totalIn := uint64(0)
	for i, input := range tx.Inputs {
		newTotalIn := totalIn + input.Amount
		if newTotalIn < totalIn {
			return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "total input amount overflows at input %d", i)
		}
		totalIn = newTotalIn
	}

	// Output amounts were checked not to overflow
	totalOut := uint64(0)
	for _, output := range tx.Outputs {
		totalOut += output.Amount
	}

	if totalIn < totalOut {
		return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "transaction spends %d "+
			"but its inputs only hold %d", totalOut, totalIn)
	}
	if tx.Fee != totalIn-totalOut {
		return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "transaction fee is %d "+
			"but its inputs minus outputs are %d", tx.Fee, totalIn-totalOut)
	}
	return nil
}

func (v *transactionValidator) checkSignatureShape(tx *externalapi.DomainTransaction) error {
	signature := tx.Signature
	if signature == nil {
		return errors.Wrap(ruleerrors.ErrMalformedTransaction, "transaction has no signature")
	}
	if len(signature.RingSignatures) != len(tx.Inputs) {
		return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "transaction has %d inputs "+
			"but %d ring signatures", len(tx.Inputs), len(signature.RingSignatures))
	}
	for i, ringSignature := range signature.RingSignatures {
		if ringSignature == nil || len(ringSignature.Members) != len(tx.Inputs[i].KeyOffsets) {
			return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "ring signature %d does "+
				"not match the ring of its input", i)
		}
	}

	if !tx.IsConfidential() {
		if len(signature.PseudoOutputs) != 0 || len(signature.RangeProofs) != 0 {
			return errors.Wrap(ruleerrors.ErrMalformedTransaction, "transparent transaction "+
				"carries confidential signature data")
		}
		return nil
	}

	if len(signature.PseudoOutputs) != len(tx.Inputs) {
		return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "transaction has %d inputs "+
			"but %d pseudo outputs", len(tx.Inputs), len(signature.PseudoOutputs))
	}
	if len(signature.RangeProofs) != len(tx.Outputs) {
		return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "transaction has %d outputs "+
			"but %d range proofs", len(tx.Outputs), len(signature.RangeProofs))
	}
	for i, rangeProof := range signature.RangeProofs {
		if rangeProof == nil || len(rangeProof.Bits) != v.params.RangeProofBits {
			return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "range proof %d does "+
				"not cover %d bits", i, v.params.RangeProofBits)
		}
	}
	return nil
}

func (v *transactionValidator) checkTransactionWeight(tx *externalapi.DomainTransaction,
	version externalapi.HardForkVersion) error {

	weight, err := serialization.TransactionSize(tx)
	if err != nil {
		return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "%s", err)
	}
	tx.Weight = weight
	maxWeight := v.weightManager.MaxTransactionWeight(version)
	if tx.Weight > maxWeight {
		return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "transaction weight %d "+
			"is above the limit %d", tx.Weight, maxWeight)
	}
	return nil
}
