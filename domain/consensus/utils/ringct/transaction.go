package ringct

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/utils/consensushashing"
	"github.com/pkg/errors"
)

// TransactionChecks returns the equations that hold if and only if tx's
// signatures are valid. The ring members of every input must already be
// resolved. Confidential transactions additionally prove that every output
// amount is in range and that inputs balance outputs plus the fee.
func TransactionChecks(tx *externalapi.DomainTransaction, rangeProofBits int) (*Checks, error) {
	signature := tx.Signature
	if signature == nil {
		return nil, errors.Wrap(ErrSignatureShape, "transaction has no signature")
	}
	if len(signature.RingSignatures) != len(tx.Inputs) {
		return nil, errors.Wrapf(ErrSignatureShape, "transaction has %d inputs but %d ring signatures",
			len(tx.Inputs), len(signature.RingSignatures))
	}
	confidential := tx.IsConfidential()
	if confidential {
		if len(signature.PseudoOutputs) != len(tx.Inputs) {
			return nil, errors.Wrapf(ErrSignatureShape, "transaction has %d inputs but %d pseudo outputs",
				len(tx.Inputs), len(signature.PseudoOutputs))
		}
		if len(signature.RangeProofs) != len(tx.Outputs) {
			return nil, errors.Wrapf(ErrSignatureShape, "transaction has %d outputs but %d range proofs",
				len(tx.Outputs), len(signature.RangeProofs))
		}
	} else if len(signature.PseudoOutputs) != 0 || len(signature.RangeProofs) != 0 {
		return nil, errors.Wrap(ErrSignatureShape, "transparent transaction carries confidential signature data")
	}

	messageHash, err := consensushashing.SignatureMessage(tx)
	if err != nil {
		return nil, errors.Wrapf(ErrSignatureShape, "%s", err)
	}
	message := messageHash.ByteSlice()
	checks := &Checks{}
	var balance *linearCheck
	if confidential {
		balance = checks.newCheck()
	}
	one := new(scalar).SetInt(1)
	for i, input := range tx.Inputs {
		if input.Type != externalapi.InputTypeToKey {
			return nil, errors.Wrapf(ErrSignatureShape, "input %d does not spend a key", i)
		}
		if len(input.RingMembers) == 0 || len(input.RingMembers) != len(input.KeyOffsets) {
			return nil, errors.Errorf("ring members of input %d are not resolved", i)
		}
		var pseudoOutput *point
		if confidential {
			var err error
			pseudoOutput, err = DecodePoint(signature.PseudoOutputs[i])
			if err != nil {
				return nil, err
			}
			balance.add(one, pseudoOutput)
		}
		err := addRingSignatureChecks(checks, message, input.KeyImage, input.RingMembers,
			pseudoOutput, signature.RingSignatures[i])
		if err != nil {
			return nil, errors.Wrapf(err, "input %d", i)
		}
	}

	if !confidential {
		// Transparent amounts are balanced by the caller
		return checks, nil
	}

	for i, output := range tx.Outputs {
		if output.Commitment == nil {
			return nil, errors.Wrapf(ErrSignatureShape, "output %d has no commitment", i)
		}
		commitment, err := DecodePoint(*output.Commitment)
		if err != nil {
			return nil, err
		}
		balance.subtract(commitment)
		err = addRangeProofChecks(checks, *output.Commitment, signature.RangeProofs[i], rangeProofBits)
		if err != nil {
			return nil, errors.Wrapf(err, "output %d", i)
		}
	}
	balance.addH(new(scalar).Set(amountScalar(tx.Fee)).Negate())
	return checks, nil
}

// VerifyTransaction checks tx's signatures on their own
func VerifyTransaction(tx *externalapi.DomainTransaction, rangeProofBits int) (bool, error) {
	checks, err := TransactionChecks(tx, rangeProofBits)
	if err != nil {
		return false, err
	}
	return checks.Verify(), nil
}

// InputSecret is what the owner of a ring member knows about it
type InputSecret struct {
	SecretKey *secp256k1.ModNScalar
	RealIndex int
	Amount    uint64
	// Mask is the blinding factor of the real member's commitment
	Mask *secp256k1.ModNScalar
}

// OutputSecret is the amount and blinding factor of a confidential output
type OutputSecret struct {
	Amount uint64
	Mask   *secp256k1.ModNScalar
}

// SignTransaction fills tx.Signature. Inputs must carry their key images
// and resolved ring members. For confidential transactions the output
// commitments, pseudo outputs and range proofs are produced as well, and
// tx.Fee must already be set.
func SignTransaction(tx *externalapi.DomainTransaction, inputs []*InputSecret,
	outputs []*OutputSecret, rangeProofBits int) error {

	if len(inputs) != len(tx.Inputs) {
		return errors.Errorf("got %d input secrets for %d inputs", len(inputs), len(tx.Inputs))
	}
	confidential := tx.IsConfidential()
	signature := &externalapi.RingCTSignature{}
	pseudoMasks := make([]*scalar, len(inputs))

	if confidential {
		if len(outputs) != len(tx.Outputs) {
			return errors.Errorf("got %d output secrets for %d outputs", len(outputs), len(tx.Outputs))
		}
		outputMaskSum := new(scalar)
		for i, output := range outputs {
			commitment, err := Commit(output.Amount, output.Mask)
			if err != nil {
				return err
			}
			tx.Outputs[i].Commitment = &commitment
			outputMaskSum.Add(output.Mask)
		}

		pseudoMaskSum := new(scalar)
		signature.PseudoOutputs = make([]externalapi.ECPoint, len(inputs))
		for i, input := range inputs {
			if i == len(inputs)-1 {
				pseudoMasks[i] = new(scalar).Set(pseudoMaskSum).Negate().Add(outputMaskSum)
			} else {
				var err error
				pseudoMasks[i], err = RandomScalar()
				if err != nil {
					return err
				}
				pseudoMaskSum.Add(pseudoMasks[i])
			}
			pseudoOutput, err := Commit(input.Amount, pseudoMasks[i])
			if err != nil {
				return err
			}
			signature.PseudoOutputs[i] = pseudoOutput
		}

		signature.RangeProofs = make([]*externalapi.RangeProof, len(outputs))
		for i, output := range outputs {
			proof, err := proveRange(*tx.Outputs[i].Commitment, output.Amount, output.Mask, rangeProofBits)
			if err != nil {
				return errors.Wrapf(err, "output %d", i)
			}
			signature.RangeProofs[i] = proof
		}
	}

	tx.Signature = signature
	messageHash, err := consensushashing.SignatureMessage(tx)
	if err != nil {
		return err
	}
	message := messageHash.ByteSlice()
	signature.RingSignatures = make([]*externalapi.RingSignature, len(inputs))
	for i, secret := range inputs {
		signer := &ringSigner{
			message:      message,
			ring:         tx.Inputs[i].RingMembers,
			realIndex:    secret.RealIndex,
			secretKey:    secret.SecretKey,
			keyImage:     tx.Inputs[i].KeyImage,
			confidential: confidential,
		}
		if confidential {
			pseudoOutput, err := DecodePoint(signature.PseudoOutputs[i])
			if err != nil {
				return err
			}
			signer.pseudoOutput = pseudoOutput
			signer.commitmentSecret = new(scalar).Set(pseudoMasks[i]).Negate().Add(secret.Mask)
		}
		ringSignature, err := signer.sign()
		if err != nil {
			return errors.Wrapf(err, "input %d", i)
		}
		signature.RingSignatures[i] = ringSignature
	}
	return nil
}
