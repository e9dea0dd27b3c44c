package ringct

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// ErrSignatureShape indicates a signature whose structure does not match the
// transaction it signs
var ErrSignatureShape = errors.New("signature does not match transaction shape")

func ringChallenge(message []byte, keyImage externalapi.KeyImage,
	previous *externalapi.RingSignatureMember, confidential bool) *scalar {

	if confidential {
		return hashToScalar("ringd/ring-challenge", message, keyImage[:],
			previous.KeyL[:], previous.KeyR[:], previous.CommitmentL[:])
	}
	return hashToScalar("ringd/ring-challenge", message, keyImage[:], previous.KeyL[:], previous.KeyR[:])
}

// addRingSignatureChecks appends the equations of a single input's ring
// signature. pseudoOutput is nil for transparent inputs, in which case
// only the key row is signed.
func addRingSignatureChecks(checks *Checks, message []byte, keyImage externalapi.KeyImage,
	ring []*externalapi.OutputCommitment, pseudoOutput *point, signature *externalapi.RingSignature) error {

	if signature == nil {
		return errors.Wrap(ErrSignatureShape, "ring signature is missing")
	}
	if len(signature.Members) != len(ring) {
		return errors.Wrapf(ErrSignatureShape, "ring signature has %d members but the ring has %d",
			len(signature.Members), len(ring))
	}
	image, err := DecodePoint(keyImage)
	if err != nil {
		return err
	}
	confidential := pseudoOutput != nil
	var negatedPseudoOutput *point
	if confidential {
		negatedPseudoOutput = negatePoint(pseudoOutput)
	}

	for i, member := range signature.Members {
		if member == nil {
			return errors.Wrapf(ErrSignatureShape, "ring signature member %d is missing", i)
		}
	}

	ringSize := len(ring)
	for i, member := range signature.Members {
		key, err := DecodePoint(ring[i].Key)
		if err != nil {
			return err
		}
		keyL, err := DecodePoint(member.KeyL)
		if err != nil {
			return err
		}
		keyR, err := DecodePoint(member.KeyR)
		if err != nil {
			return err
		}
		keyResponse, err := decodeScalar(member.KeyResponse)
		if err != nil {
			return err
		}

		challenge := ringChallenge(message, keyImage, signature.Members[(i+ringSize-1)%ringSize], confidential)
		imageBase := keyImageBase(ring[i].Key)

		checks.newCheck().addG(keyResponse).add(challenge, key).subtract(keyL)
		checks.newCheck().add(keyResponse, &imageBase).add(challenge, image).subtract(keyR)

		if !confidential {
			continue
		}
		commitment, err := DecodePoint(ring[i].Commitment)
		if err != nil {
			return err
		}
		commitmentL, err := DecodePoint(member.CommitmentL)
		if err != nil {
			return err
		}
		commitmentResponse, err := decodeScalar(member.CommitmentResponse)
		if err != nil {
			return err
		}
		checks.newCheck().addG(commitmentResponse).
			add(challenge, commitment).add(challenge, negatedPseudoOutput).
			subtract(commitmentL)
	}
	return nil
}

// PublicKey returns secretKey*G
func PublicKey(secretKey *secp256k1.ModNScalar) (externalapi.ECPoint, error) {
	return encodePoint(scalarBaseMult(secretKey))
}

// KeyImage returns the key image of the output key owned by secretKey
func KeyImage(secretKey *secp256k1.ModNScalar) (externalapi.KeyImage, error) {
	publicKey, err := PublicKey(secretKey)
	if err != nil {
		return externalapi.KeyImage{}, err
	}
	imageBase := keyImageBase(publicKey)
	return encodePoint(scalarMult(secretKey, &imageBase))
}

type ringSigner struct {
	message      []byte
	ring         []*externalapi.OutputCommitment
	realIndex    int
	secretKey    *scalar
	keyImage     externalapi.KeyImage
	confidential bool
	pseudoOutput *point
	// commitmentSecret is the discrete log of ring[realIndex].Commitment - pseudoOutput
	commitmentSecret *scalar
}

func (s *ringSigner) sign() (*externalapi.RingSignature, error) {
	ringSize := len(s.ring)
	if s.realIndex < 0 || s.realIndex >= ringSize {
		return nil, errors.Errorf("real index %d is outside a ring of size %d", s.realIndex, ringSize)
	}
	image, err := DecodePoint(s.keyImage)
	if err != nil {
		return nil, err
	}
	var negatedPseudoOutput *point
	if s.confidential {
		negatedPseudoOutput = negatePoint(s.pseudoOutput)
	}

	members := make([]*externalapi.RingSignatureMember, ringSize)
	keyNonce, err := RandomScalar()
	if err != nil {
		return nil, err
	}
	commitmentNonce, err := RandomScalar()
	if err != nil {
		return nil, err
	}
	realBase := keyImageBase(s.ring[s.realIndex].Key)
	members[s.realIndex] = &externalapi.RingSignatureMember{
		KeyL: mustEncodePoint(scalarBaseMult(keyNonce)),
		KeyR: mustEncodePoint(scalarMult(keyNonce, &realBase)),
	}
	if s.confidential {
		members[s.realIndex].CommitmentL = mustEncodePoint(scalarBaseMult(commitmentNonce))
	}

	for offset := 1; offset < ringSize; offset++ {
		i := (s.realIndex + offset) % ringSize
		challenge := ringChallenge(s.message, s.keyImage, members[(i+ringSize-1)%ringSize], s.confidential)

		key, err := DecodePoint(s.ring[i].Key)
		if err != nil {
			return nil, err
		}
		keyResponse, err := RandomScalar()
		if err != nil {
			return nil, err
		}
		imageBase := keyImageBase(s.ring[i].Key)
		keyL, err := encodePoint(addPoints(scalarBaseMult(keyResponse), scalarMult(challenge, key)))
		if err != nil {
			return nil, err
		}
		keyR, err := encodePoint(addPoints(scalarMult(keyResponse, &imageBase), scalarMult(challenge, image)))
		if err != nil {
			return nil, err
		}
		member := &externalapi.RingSignatureMember{
			KeyL:        keyL,
			KeyR:        keyR,
			KeyResponse: encodeScalar(keyResponse),
		}

		if s.confidential {
			commitment, err := DecodePoint(s.ring[i].Commitment)
			if err != nil {
				return nil, err
			}
			commitmentResponse, err := RandomScalar()
			if err != nil {
				return nil, err
			}
			difference := addPoints(commitment, negatedPseudoOutput)
			commitmentL, err := encodePoint(addPoints(scalarBaseMult(commitmentResponse), scalarMult(challenge, difference)))
			if err != nil {
				return nil, err
			}
			member.CommitmentL = commitmentL
			member.CommitmentResponse = encodeScalar(commitmentResponse)
		}
		members[i] = member
	}

	// Close the ring at the real index
	challenge := ringChallenge(s.message, s.keyImage, members[(s.realIndex+ringSize-1)%ringSize], s.confidential)
	keyResponse := new(scalar).Mul2(challenge, s.secretKey).Negate().Add(keyNonce)
	members[s.realIndex].KeyResponse = encodeScalar(keyResponse)
	if s.confidential {
		commitmentResponse := new(scalar).Mul2(challenge, s.commitmentSecret).Negate().Add(commitmentNonce)
		members[s.realIndex].CommitmentResponse = encodeScalar(commitmentResponse)
	}

	return &externalapi.RingSignature{Members: members}, nil
}
