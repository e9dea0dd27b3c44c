package ringct

import (
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// MaxRangeProofBits is the largest supported range proof width
const MaxRangeProofBits = 64

func rangeChallenge(commitment externalapi.ECPoint, index int,
	bitCommitment externalapi.ECPoint, l externalapi.ECPoint) *scalar {

	return hashToScalar("ringd/range-challenge", commitment[:], []byte{byte(index)}, bitCommitment[:], l[:])
}

// addRangeProofChecks appends the equations proving that commitment hides
// an amount below 2^bits. Each bit commitment carries a two member ring
// signature showing it commits to either 0 or 2^i.
func addRangeProofChecks(checks *Checks, commitment externalapi.ECPoint,
	proof *externalapi.RangeProof, bits int) error {

	if proof == nil {
		return errors.Wrap(ErrSignatureShape, "range proof is missing")
	}
	if len(proof.Bits) != bits {
		return errors.Wrapf(ErrSignatureShape, "range proof has %d bits, expected %d", len(proof.Bits), bits)
	}
	committed, err := DecodePoint(commitment)
	if err != nil {
		return err
	}

	sum := checks.newCheck().subtract(committed)
	one := new(scalar).SetInt(1)
	for i, bit := range proof.Bits {
		if bit == nil {
			return errors.Wrapf(ErrSignatureShape, "bit %d of the range proof is missing", i)
		}
		bitCommitment, err := DecodePoint(bit.Commitment)
		if err != nil {
			return err
		}
		l0, err := DecodePoint(bit.L0)
		if err != nil {
			return err
		}
		l1, err := DecodePoint(bit.L1)
		if err != nil {
			return err
		}
		s0, err := decodeScalar(bit.S0)
		if err != nil {
			return err
		}
		s1, err := decodeScalar(bit.S1)
		if err != nil {
			return err
		}

		c0 := rangeChallenge(commitment, i, bit.Commitment, bit.L1)
		c1 := rangeChallenge(commitment, i, bit.Commitment, bit.L0)

		checks.newCheck().addG(s0).add(c0, bitCommitment).subtract(l0)
		negatedPower := new(scalar).Mul2(c1, amountScalar(1<<uint(i))).Negate()
		checks.newCheck().addG(s1).add(c1, bitCommitment).addH(negatedPower).subtract(l1)

		sum.add(one, bitCommitment)
	}
	return nil
}

func proveRange(commitment externalapi.ECPoint, amount uint64, mask *scalar, bits int) (*externalapi.RangeProof, error) {
	if bits <= 0 || bits > MaxRangeProofBits {
		return nil, errors.Errorf("unsupported range proof width %d", bits)
	}
	if bits < MaxRangeProofBits && amount>>uint(bits) != 0 {
		return nil, errors.Errorf("amount %d does not fit in %d bits", amount, bits)
	}

	proofBits := make([]*externalapi.RangeProofBit, bits)
	maskSum := new(scalar)
	for i := 0; i < bits; i++ {
		var bitMask *scalar
		if i == bits-1 {
			bitMask = new(scalar).Set(maskSum).Negate().Add(mask)
		} else {
			var err error
			bitMask, err = RandomScalar()
			if err != nil {
				return nil, err
			}
			maskSum.Add(bitMask)
		}

		isSet := amount&(1<<uint(i)) != 0
		var value uint64
		if isSet {
			value = 1 << uint(i)
		}
		bitCommitmentPoint := commit(value, bitMask)
		bitCommitment, err := encodePoint(bitCommitmentPoint)
		if err != nil {
			return nil, err
		}
		// The second ring member is the bit commitment minus 2^i*H
		power := scalarMult(amountScalar(1<<uint(i)), &generatorH)
		shifted := addPoints(bitCommitmentPoint, negatePoint(power))

		nonce, err := RandomScalar()
		if err != nil {
			return nil, err
		}
		fake, err := RandomScalar()
		if err != nil {
			return nil, err
		}
		proofBit := &externalapi.RangeProofBit{Commitment: bitCommitment}
		if isSet {
			proofBit.L1 = mustEncodePoint(scalarBaseMult(nonce))
			c0 := rangeChallenge(commitment, i, bitCommitment, proofBit.L1)
			proofBit.L0, err = encodePoint(addPoints(scalarBaseMult(fake), scalarMult(c0, bitCommitmentPoint)))
			if err != nil {
				return nil, err
			}
			c1 := rangeChallenge(commitment, i, bitCommitment, proofBit.L0)
			proofBit.S0 = encodeScalar(fake)
			proofBit.S1 = encodeScalar(new(scalar).Mul2(c1, bitMask).Negate().Add(nonce))
		} else {
			proofBit.L0 = mustEncodePoint(scalarBaseMult(nonce))
			c1 := rangeChallenge(commitment, i, bitCommitment, proofBit.L0)
			proofBit.L1, err = encodePoint(addPoints(scalarBaseMult(fake), scalarMult(c1, shifted)))
			if err != nil {
				return nil, err
			}
			c0 := rangeChallenge(commitment, i, bitCommitment, proofBit.L1)
			proofBit.S1 = encodeScalar(fake)
			proofBit.S0 = encodeScalar(new(scalar).Mul2(c0, bitMask).Negate().Add(nonce))
		}
		proofBits[i] = proofBit
	}
	return &externalapi.RangeProof{Bits: proofBits}, nil
}
