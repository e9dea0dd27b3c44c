package serialization

import (
	"bytes"
	"io"

	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

const (
	inputTagGen   = 0xff
	inputTagToKey = 0x02

	maxInputs       = 0x1000
	maxOutputs      = 0x1000
	maxRingSize     = 0x400
	maxRangeBits    = 64
	maxSignatureSet = maxInputs
)

// SerializeTransactionPrefix writes everything of tx that its signatures
// sign: version, unlock time, inputs, outputs and extra.
func SerializeTransactionPrefix(w io.Writer, tx *externalapi.DomainTransaction) error {
	err := WriteElements(w, VarInt(tx.Version), VarInt(tx.UnlockTime), VarInt(len(tx.Inputs)))
	if err != nil {
		return err
	}
	for i, input := range tx.Inputs {
		if input == nil {
			return errors.Wrapf(ErrMalformed, "input %d is missing", i)
		}
		err = serializeInput(w, input)
		if err != nil {
			return err
		}
	}
	err = WriteVarInt(w, uint64(len(tx.Outputs)))
	if err != nil {
		return err
	}
	for i, output := range tx.Outputs {
		if output == nil {
			return errors.Wrapf(ErrMalformed, "output %d is missing", i)
		}
		err = WriteElements(w, VarInt(output.Amount), output.Key, output.Commitment != nil)
		if err != nil {
			return err
		}
		if output.Commitment != nil {
			err = WriteElement(w, *output.Commitment)
			if err != nil {
				return err
			}
		}
	}
	return WriteElement(w, tx.Extra)
}

func serializeInput(w io.Writer, input *externalapi.DomainTransactionInput) error {
	switch input.Type {
	case externalapi.InputTypeGen:
		return WriteElements(w, uint8(inputTagGen), VarInt(input.Height))
	case externalapi.InputTypeToKey:
		err := WriteElements(w, uint8(inputTagToKey), VarInt(input.Amount), VarInt(len(input.KeyOffsets)))
		if err != nil {
			return err
		}
		for _, offset := range input.KeyOffsets {
			err = WriteVarInt(w, offset)
			if err != nil {
				return err
			}
		}
		return WriteElement(w, input.KeyImage)
	}
	return errors.Wrapf(ErrMalformed, "unknown input type %d", input.Type)
}

// SerializeSignatureBase writes the part of the signature material that is
// signed along with the prefix: the fee and the pseudo-outputs
func SerializeSignatureBase(w io.Writer, tx *externalapi.DomainTransaction) error {
	err := WriteVarInt(w, tx.Fee)
	if err != nil {
		return err
	}
	if tx.Signature == nil {
		return WriteVarInt(w, 0)
	}
	err = WriteVarInt(w, uint64(len(tx.Signature.PseudoOutputs)))
	if err != nil {
		return err
	}
	for _, pseudoOutput := range tx.Signature.PseudoOutputs {
		err = WriteElement(w, pseudoOutput)
		if err != nil {
			return err
		}
	}
	return nil
}

// SerializeTransaction writes the full wire encoding of tx
func SerializeTransaction(w io.Writer, tx *externalapi.DomainTransaction) error {
	err := SerializeTransactionPrefix(w, tx)
	if err != nil {
		return err
	}
	err = WriteElement(w, tx.Signature != nil)
	if err != nil || tx.Signature == nil {
		return err
	}

	confidential := tx.IsConfidential()
	if confidential {
		err = SerializeSignatureBase(w, tx)
		if err != nil {
			return err
		}
	}

	err = WriteVarInt(w, uint64(len(tx.Signature.RingSignatures)))
	if err != nil {
		return err
	}
	for i, ringSignature := range tx.Signature.RingSignatures {
		if ringSignature == nil {
			return errors.Wrapf(ErrMalformed, "ring signature %d is missing", i)
		}
		err = WriteVarInt(w, uint64(len(ringSignature.Members)))
		if err != nil {
			return err
		}
		for j, member := range ringSignature.Members {
			if member == nil {
				return errors.Wrapf(ErrMalformed, "member %d of ring signature %d is missing", j, i)
			}
			err = WriteElements(w, member.KeyL, member.KeyR, member.KeyResponse)
			if err != nil {
				return err
			}
			if confidential {
				err = WriteElements(w, member.CommitmentL, member.CommitmentResponse)
				if err != nil {
					return err
				}
			}
		}
	}

	err = WriteVarInt(w, uint64(len(tx.Signature.RangeProofs)))
	if err != nil {
		return err
	}
	for i, rangeProof := range tx.Signature.RangeProofs {
		if rangeProof == nil {
			return errors.Wrapf(ErrMalformed, "range proof %d is missing", i)
		}
		err = WriteVarInt(w, uint64(len(rangeProof.Bits)))
		if err != nil {
			return err
		}
		for j, bit := range rangeProof.Bits {
			if bit == nil {
				return errors.Wrapf(ErrMalformed, "bit %d of range proof %d is missing", j, i)
			}
			err = WriteElements(w, bit.Commitment, bit.L0, bit.L1, bit.S0, bit.S1)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// TransactionSize returns the length of the full wire encoding of tx. It
// fails only if tx has missing parts or an unknown input type.
func TransactionSize(tx *externalapi.DomainTransaction) (uint64, error) {
	buf := &bytes.Buffer{}
	err := SerializeTransaction(buf, tx)
	if err != nil {
		return 0, err
	}
	return uint64(buf.Len()), nil
}

// DeserializeTransaction reads a transaction written by SerializeTransaction
func DeserializeTransaction(r io.Reader) (*externalapi.DomainTransaction, error) {
	var version, unlockTime VarInt
	err := ReadElements(r, &version, &unlockTime)
	if err != nil {
		return nil, err
	}
	if version > 0xffff {
		return nil, errors.Wrapf(ErrMalformed, "transaction version %d does not fit in 16 bits", version)
	}
	tx := &externalapi.DomainTransaction{Version: uint16(version), UnlockTime: uint64(unlockTime)}

	inputCount, err := readCount(r, maxInputs)
	if err != nil {
		return nil, err
	}
	tx.Inputs = make([]*externalapi.DomainTransactionInput, inputCount)
	for i := range tx.Inputs {
		tx.Inputs[i], err = deserializeInput(r)
		if err != nil {
			return nil, err
		}
	}

	outputCount, err := readCount(r, maxOutputs)
	if err != nil {
		return nil, err
	}
	tx.Outputs = make([]*externalapi.DomainTransactionOutput, outputCount)
	for i := range tx.Outputs {
		var amount VarInt
		var hasCommitment bool
		output := &externalapi.DomainTransactionOutput{}
		err = ReadElements(r, &amount, &output.Key, &hasCommitment)
		if err != nil {
			return nil, err
		}
		output.Amount = uint64(amount)
		if hasCommitment {
			output.Commitment = &externalapi.ECPoint{}
			err = ReadElement(r, output.Commitment)
			if err != nil {
				return nil, err
			}
		}
		tx.Outputs[i] = output
	}

	err = ReadElement(r, &tx.Extra)
	if err != nil {
		return nil, err
	}

	var hasSignature bool
	err = ReadElement(r, &hasSignature)
	if err != nil {
		return nil, err
	}
	if !hasSignature {
		return tx, nil
	}
	tx.Signature, err = deserializeSignature(r, tx)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func deserializeInput(r io.Reader) (*externalapi.DomainTransactionInput, error) {
	var tag uint8
	err := ReadElement(r, &tag)
	if err != nil {
		return nil, err
	}
	switch tag {
	case inputTagGen:
		var height VarInt
		err = ReadElement(r, &height)
		if err != nil {
			return nil, err
		}
		return &externalapi.DomainTransactionInput{Type: externalapi.InputTypeGen, Height: uint64(height)}, nil

	case inputTagToKey:
		var amount VarInt
		err = ReadElement(r, &amount)
		if err != nil {
			return nil, err
		}
		offsetCount, err := readCount(r, maxRingSize)
		if err != nil {
			return nil, err
		}
		input := &externalapi.DomainTransactionInput{
			Type:       externalapi.InputTypeToKey,
			Amount:     uint64(amount),
			KeyOffsets: make([]uint64, offsetCount),
		}
		for i := range input.KeyOffsets {
			input.KeyOffsets[i], err = ReadVarInt(r)
			if err != nil {
				return nil, err
			}
		}
		err = ReadElement(r, &input.KeyImage)
		if err != nil {
			return nil, err
		}
		return input, nil
	}
	return nil, errors.Wrapf(ErrMalformed, "unknown input tag 0x%x", tag)
}

func deserializeSignature(r io.Reader, tx *externalapi.DomainTransaction) (*externalapi.RingCTSignature, error) {
	signature := &externalapi.RingCTSignature{}
	confidential := tx.IsConfidential()
	if confidential {
		var fee VarInt
		err := ReadElement(r, &fee)
		if err != nil {
			return nil, err
		}
		tx.Fee = uint64(fee)
		pseudoOutputCount, err := readCount(r, maxInputs)
		if err != nil {
			return nil, err
		}
		signature.PseudoOutputs = make([]externalapi.ECPoint, pseudoOutputCount)
		for i := range signature.PseudoOutputs {
			err = ReadElement(r, &signature.PseudoOutputs[i])
			if err != nil {
				return nil, err
			}
		}
	}

	ringSignatureCount, err := readCount(r, maxSignatureSet)
	if err != nil {
		return nil, err
	}
	signature.RingSignatures = make([]*externalapi.RingSignature, ringSignatureCount)
	for i := range signature.RingSignatures {
		memberCount, err := readCount(r, maxRingSize)
		if err != nil {
			return nil, err
		}
		members := make([]*externalapi.RingSignatureMember, memberCount)
		for j := range members {
			member := &externalapi.RingSignatureMember{}
			err = ReadElements(r, &member.KeyL, &member.KeyR, &member.KeyResponse)
			if err != nil {
				return nil, err
			}
			if confidential {
				err = ReadElements(r, &member.CommitmentL, &member.CommitmentResponse)
				if err != nil {
					return nil, err
				}
			}
			members[j] = member
		}
		signature.RingSignatures[i] = &externalapi.RingSignature{Members: members}
	}

	rangeProofCount, err := readCount(r, maxSignatureSet)
	if err != nil {
		return nil, err
	}
	signature.RangeProofs = make([]*externalapi.RangeProof, rangeProofCount)
	for i := range signature.RangeProofs {
		bitCount, err := readCount(r, maxRangeBits)
		if err != nil {
			return nil, err
		}
		bits := make([]*externalapi.RangeProofBit, bitCount)
		for j := range bits {
			bit := &externalapi.RangeProofBit{}
			err = ReadElements(r, &bit.Commitment, &bit.L0, &bit.L1, &bit.S0, &bit.S1)
			if err != nil {
				return nil, err
			}
			bits[j] = bit
		}
		signature.RangeProofs[i] = &externalapi.RangeProof{Bits: bits}
	}
	return signature, nil
}
