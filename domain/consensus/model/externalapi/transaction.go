package externalapi

// Transaction versions
const (
	// TransactionVersionTransparent transactions carry explicit amounts
	// and a single-row ring signature per input.
	TransactionVersionTransparent uint16 = 1

	// TransactionVersionConfidential transactions hide amounts in
	// commitments and carry a two-row ring signature per input, a
	// pseudo-output per input and a range proof per output.
	TransactionVersionConfidential uint16 = 2
)

// DomainTransaction represents a transaction
type DomainTransaction struct {
	Version    uint16
	UnlockTime uint64
	Inputs     []*DomainTransactionInput
	Outputs    []*DomainTransactionOutput
	Extra      []byte

	// Fee is explicit. Transparent transactions must pay exactly their
	// input amounts minus their output amounts.
	Fee       uint64
	Signature *RingCTSignature

	// Weight is populated during validation
	Weight uint64
}

// Clone returns a deep clone of the transaction
func (tx *DomainTransaction) Clone() *DomainTransaction {
	inputsClone := make([]*DomainTransactionInput, len(tx.Inputs))
	for i, input := range tx.Inputs {
		inputsClone[i] = input.Clone()
	}

	outputsClone := make([]*DomainTransactionOutput, len(tx.Outputs))
	for i, output := range tx.Outputs {
		outputsClone[i] = output.Clone()
	}

	var signatureClone *RingCTSignature
	if tx.Signature != nil {
		signatureClone = tx.Signature.Clone()
	}

	return &DomainTransaction{
		Version:    tx.Version,
		UnlockTime: tx.UnlockTime,
		Inputs:     inputsClone,
		Outputs:    outputsClone,
		Extra:      append([]byte(nil), tx.Extra...),
		Fee:        tx.Fee,
		Signature:  signatureClone,
		Weight:     tx.Weight,
	}
}

// IsConfidential returns whether the transaction hides its amounts
func (tx *DomainTransaction) IsConfidential() bool {
	return tx.Version >= TransactionVersionConfidential
}

// InputType distinguishes generation inputs from spends
type InputType uint8

// Input types
const (
	InputTypeGen InputType = iota
	InputTypeToKey
)

// DomainTransactionInput represents a transaction input. Generation inputs
// only use Height. Spends reference a ring of prior outputs of the same
// amount bucket through relative KeyOffsets.
type DomainTransactionInput struct {
	Type       InputType
	Height     uint64
	Amount     uint64
	KeyOffsets []uint64
	KeyImage   KeyImage

	// RingMembers is populated during validation, in KeyOffsets order
	RingMembers []*OutputCommitment
}

// Clone returns a clone of the input
func (input *DomainTransactionInput) Clone() *DomainTransactionInput {
	var ringMembersClone []*OutputCommitment
	if input.RingMembers != nil {
		ringMembersClone = make([]*OutputCommitment, len(input.RingMembers))
		for i, member := range input.RingMembers {
			memberClone := *member
			ringMembersClone[i] = &memberClone
		}
	}
	return &DomainTransactionInput{
		Type:        input.Type,
		Height:      input.Height,
		Amount:      input.Amount,
		KeyOffsets:  append([]uint64(nil), input.KeyOffsets...),
		KeyImage:    input.KeyImage,
		RingMembers: ringMembersClone,
	}
}

// AbsoluteKeyOffsets converts the relative key offsets of the input into
// global output indices. The second return value is false if the sum
// overflows.
func (input *DomainTransactionInput) AbsoluteKeyOffsets() ([]uint64, bool) {
	absolute := make([]uint64, len(input.KeyOffsets))
	var sum uint64
	for i, offset := range input.KeyOffsets {
		if sum+offset < sum {
			return nil, false
		}
		sum += offset
		absolute[i] = sum
	}
	return absolute, true
}

// DomainTransactionOutput represents a transaction output. Confidential
// outputs have a zero Amount and carry a Commitment.
type DomainTransactionOutput struct {
	Amount     uint64
	Key        ECPoint
	Commitment *ECPoint
}

// Clone returns a clone of the output
func (output *DomainTransactionOutput) Clone() *DomainTransactionOutput {
	clone := *output
	if output.Commitment != nil {
		commitmentClone := *output.Commitment
		clone.Commitment = &commitmentClone
	}
	return &clone
}

// OutputCommitment is a previously created output as resolved through the
// output index, used as a ring member.
type OutputCommitment struct {
	Key        ECPoint
	Commitment ECPoint
	Height     uint64
	UnlockTime uint64
}

// RingCTSignature holds all the signature material of a transaction
type RingCTSignature struct {
	PseudoOutputs  []ECPoint
	RingSignatures []*RingSignature
	RangeProofs    []*RangeProof
}

// Clone returns a deep clone of the signature material
func (signature *RingCTSignature) Clone() *RingCTSignature {
	ringSignaturesClone := make([]*RingSignature, len(signature.RingSignatures))
	for i, ringSignature := range signature.RingSignatures {
		membersClone := make([]*RingSignatureMember, len(ringSignature.Members))
		for j, member := range ringSignature.Members {
			memberClone := *member
			membersClone[j] = &memberClone
		}
		ringSignaturesClone[i] = &RingSignature{Members: membersClone}
	}

	rangeProofsClone := make([]*RangeProof, len(signature.RangeProofs))
	for i, rangeProof := range signature.RangeProofs {
		bitsClone := make([]*RangeProofBit, len(rangeProof.Bits))
		for j, bit := range rangeProof.Bits {
			bitClone := *bit
			bitsClone[j] = &bitClone
		}
		rangeProofsClone[i] = &RangeProof{Bits: bitsClone}
	}

	return &RingCTSignature{
		PseudoOutputs:  append([]ECPoint(nil), signature.PseudoOutputs...),
		RingSignatures: ringSignaturesClone,
		RangeProofs:    rangeProofsClone,
	}
}

// RingSignature is a linkable ring signature over one input. It publishes
// every intermediate commitment so that its equations can be batched.
type RingSignature struct {
	Members []*RingSignatureMember
}

// RingSignatureMember holds the per ring member equations of a RingSignature.
// The commitment row is only used by confidential transactions.
type RingSignatureMember struct {
	KeyL               ECPoint
	KeyR               ECPoint
	KeyResponse        ECScalar
	CommitmentL        ECPoint
	CommitmentResponse ECScalar
}

// RangeProof proves an output commitment hides an amount in [0, 2^len(Bits))
type RangeProof struct {
	Bits []*RangeProofBit
}

// RangeProofBit is a two member ring signature proving Commitment hides
// either 0 or 2^i
type RangeProofBit struct {
	Commitment ECPoint
	L0         ECPoint
	L1         ECPoint
	S0         ECScalar
	S1         ECScalar
}
